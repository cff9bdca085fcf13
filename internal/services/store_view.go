package services

import (
	"context"
	"errors"

	"microstore/internal/links"
	"microstore/internal/models"
	"microstore/internal/repositories"

	"github.com/sirupsen/logrus"
)

// Outcome is the result of loading a store page.
type Outcome int

const (
	OutcomeFound Outcome = iota
	OutcomeAbsent
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeFound:
		return "found"
	case OutcomeAbsent:
		return "absent"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// StoreLinks are the buyer actions derived from a store.
type StoreLinks struct {
	Call     string
	WhatsApp string
	UPI      string
}

// StoreView is what the public store page renders. Absent and Failed look
// the same to a visitor; Outcome and Err keep them apart.
type StoreView struct {
	Outcome Outcome
	Slug    string
	Store   *models.Store
	Links   StoreLinks
	Err     error // Set only for OutcomeFailed
}

// Found reports whether the page has a store to show.
func (v StoreView) Found() bool {
	return v.Outcome == OutcomeFound
}

// Display loads the store at key for its public page.
func (s *StoreService) Display(ctx context.Context, key string) StoreView {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	store, err := s.repo.Get(ctx, key)
	switch {
	case err == nil:
		return StoreView{
			Outcome: OutcomeFound,
			Slug:    key,
			Store:   store,
			Links: StoreLinks{
				Call:     links.Tel(store.Phone),
				WhatsApp: links.WhatsAppOrder(store.Phone, store.ShopName),
				UPI:      links.UPIPay(store.UPI, store.ShopName),
			},
		}
	case errors.Is(err, repositories.ErrStoreNotFound):
		s.log.WithField("slug", key).Debug("store not found")
		return StoreView{Outcome: OutcomeAbsent, Slug: key}
	default:
		s.log.WithError(err).WithFields(logrus.Fields{"slug": key}).Error("failed to read store")
		return StoreView{Outcome: OutcomeFailed, Slug: key, Err: err}
	}
}
