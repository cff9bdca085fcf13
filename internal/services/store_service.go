package services

import (
	"context"
	"errors"
	"time"

	"microstore/internal/links"
	"microstore/internal/models"
	"microstore/internal/repositories"
	"microstore/internal/slug"
	"microstore/internal/validation"

	"github.com/sirupsen/logrus"
)

// FailureNotice is shown to the creator when the store could not be saved.
const FailureNotice = "Failed to create store. Please try again."

// CollisionNotice is shown when the collision guard refuses a taken slug.
const CollisionNotice = "A store with this address already exists. Please try again or choose a different shop name."

// SuffixSource supplies the random suffix of a new form session.
type SuffixSource interface {
	Suffix() string
}

// EventPublisher announces newly created stores.
type EventPublisher interface {
	PublishStoreCreated(event map[string]interface{}) error
}

// StoreServiceConfig holds the settings of a StoreService.
type StoreServiceConfig struct {
	PublicOrigin         string        // Scheme and host used in share URLs
	RejectSlugCollisions bool          // Use conditional writes instead of last-write-wins
	Timeout              time.Duration // Bound on each repository call; zero means none
	Logger               logrus.FieldLogger
}

// StoreService runs the store creation and display flows.
type StoreService struct {
	repo      repositories.StoreRepository
	suffixes  SuffixSource
	publisher EventPublisher // optional
	cfg       StoreServiceConfig
	log       logrus.FieldLogger
}

// NewStoreService creates a new StoreService. publisher may be nil.
func NewStoreService(repo repositories.StoreRepository, suffixes SuffixSource, publisher EventPublisher, cfg StoreServiceConfig) *StoreService {
	log := cfg.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &StoreService{
		repo:      repo,
		suffixes:  suffixes,
		publisher: publisher,
		cfg:       cfg,
		log:       log.WithField("component", "store_service"),
	}
}

// Start opens a blank form session with a fresh suffix.
func (s *StoreService) Start() models.FormState {
	return models.FormState{
		Phase:  models.PhaseEditing,
		Form:   models.StoreForm{Products: make([]models.ProductInput, models.MaxProducts)},
		Suffix: s.suffixes.Suffix(),
	}
}

// Resume rebuilds an editing session from submitted input. A suffix that
// did not come from a SuffixSource is replaced.
func (s *StoreService) Resume(form models.StoreForm, suffix string) models.FormState {
	if !slug.IsSuffix(suffix) {
		suffix = s.suffixes.Suffix()
	}
	state := models.FormState{Phase: models.PhaseEditing, Suffix: suffix}
	return state.WithForm(form)
}

// Reset leaves a successful session for a new blank one. Entered values are
// not carried over. Any other state is returned unchanged.
func (s *StoreService) Reset(state models.FormState) models.FormState {
	if state.Phase != models.PhaseSuccess {
		return state
	}
	return s.Start()
}

// PreviewSlug is the slug the session would be saved under right now.
func (s *StoreService) PreviewSlug(state models.FormState) string {
	if state.Slug != "" {
		return state.Slug
	}
	return slug.Generate(state.Form.ShopName, state.Suffix)
}

// ShareURL returns the public address for key.
func (s *StoreService) ShareURL(key string) string {
	return links.Share(s.cfg.PublicOrigin, key)
}

// Submit validates the session and, if the form is accepted, writes the
// store. It returns the success state, or the editing state with a notice.
// The repository is never called for a rejected form.
func (s *StoreService) Submit(ctx context.Context, state models.FormState) models.FormState {
	if state.Phase != models.PhaseEditing {
		return state
	}

	store, err := validation.Validate(state.Form)
	if err != nil {
		s.log.WithError(err).Debug("store form rejected")
		return state.WithNotice(models.ReasonRejected, err.Error())
	}

	state.Phase = models.PhaseSubmitting
	state.Reason = models.ReasonNone
	state.Notice = ""
	key := slug.Generate(store.ShopName, state.Suffix)

	if err := s.write(ctx, key, &store); err != nil {
		if errors.Is(err, repositories.ErrSlugTaken) {
			s.log.WithField("slug", key).Warn("slug collision refused")
			// A new suffix gives the retry a different address.
			state.Suffix = s.suffixes.Suffix()
			return state.WithNotice(models.ReasonCollision, CollisionNotice)
		}
		s.log.WithError(err).WithField("slug", key).Error("failed to write store")
		return state.WithNotice(models.ReasonFailed, FailureNotice)
	}

	state.Phase = models.PhaseSuccess
	state.Slug = key
	state.ShareURL = s.ShareURL(key)
	s.log.WithFields(logrus.Fields{"slug": key, "products": len(store.Products)}).Info("store created")

	s.announce(key, state.ShareURL, &store)
	return state
}

func (s *StoreService) write(ctx context.Context, key string, store *models.Store) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if s.cfg.RejectSlugCollisions {
		return s.repo.Create(ctx, key, store)
	}
	return s.repo.Put(ctx, key, store)
}

// announce publishes the creation event. Failures are logged only; the store
// already exists at this point.
func (s *StoreService) announce(key, shareURL string, store *models.Store) {
	if s.publisher == nil {
		return
	}
	event := map[string]interface{}{
		"slug":      key,
		"shopName":  store.ShopName,
		"shareURL":  shareURL,
		"products":  len(store.Products),
		"createdAt": store.CreatedAt.UTC().Format(time.RFC3339),
	}
	if err := s.publisher.PublishStoreCreated(event); err != nil {
		s.log.WithError(err).WithField("slug", key).Warn("failed to publish store created event")
	}
}

func (s *StoreService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.cfg.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.cfg.Timeout)
}
