package handlers

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"

	"microstore/internal/links"
	"microstore/internal/models"
	"microstore/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/sirupsen/logrus"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// StoreHandler serves the creation form and the public store pages.
type StoreHandler struct {
	service *services.StoreService
	log     logrus.FieldLogger
}

// NewStoreHandler creates a new StoreHandler.
func NewStoreHandler(service *services.StoreService, log logrus.FieldLogger) *StoreHandler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &StoreHandler{
		service: service,
		log:     log.WithField("component", "store_handler"),
	}
}

// RegisterRoutes registers the store routes with the Fiber app.
func (h *StoreHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/", h.HandleForm)
	router.Post("/", h.HandleCreate)
	router.Get("/store/:slug", h.HandleStore)
}

type formPage struct {
	State      models.FormState
	Products   []models.ProductInput
	PreviewURL string
}

type successPage struct {
	State         models.FormState
	StoreURL      string
	WhatsAppShare template.URL
}

type storePage struct {
	Store    *models.Store
	Call     template.URL
	WhatsApp template.URL
	UPI      template.URL
}

// HandleForm renders a blank form for a new session.
func (h *StoreHandler) HandleForm(c *fiber.Ctx) error {
	return h.renderForm(c, fiber.StatusOK, h.service.Start())
}

// HandleCreate validates and saves a submitted form.
func (h *StoreHandler) HandleCreate(c *fiber.Ctx) error {
	state := h.service.Resume(readForm(c), c.FormValue("suffix"))
	next := h.service.Submit(c.UserContext(), state)

	if next.Phase == models.PhaseSuccess {
		return h.render(c, fiber.StatusCreated, "success", successPage{
			State:    next,
			StoreURL: "/store/" + next.Slug,
			// Built from our own origin and slug.
			WhatsAppShare: template.URL(links.WhatsAppShare(next.ShareURL)),
		})
	}

	status := fiber.StatusUnprocessableEntity
	switch next.Reason {
	case models.ReasonFailed:
		status = fiber.StatusInternalServerError
	case models.ReasonCollision:
		status = fiber.StatusConflict
	}
	return h.renderForm(c, status, next)
}

// HandleStore renders the public page of a store. Missing stores and read
// failures both get the not-found page.
func (h *StoreHandler) HandleStore(c *fiber.Ctx) error {
	view := h.service.Display(c.UserContext(), c.Params("slug"))
	if !view.Found() {
		h.log.WithFields(logrus.Fields{"slug": view.Slug, "outcome": view.Outcome.String()}).Info("store page not found")
		return h.render(c, fiber.StatusNotFound, "not_found", nil)
	}

	// Links are derived from validated phone and UPI values.
	return h.render(c, fiber.StatusOK, "store", storePage{
		Store:    view.Store,
		Call:     template.URL(view.Links.Call),
		WhatsApp: template.URL(view.Links.WhatsApp),
		UPI:      template.URL(view.Links.UPI),
	})
}

func (h *StoreHandler) renderForm(c *fiber.Ctx, status int, state models.FormState) error {
	page := formPage{
		State:    state,
		Products: productSlots(state.Form.Products),
	}
	if strings.TrimSpace(state.Form.ShopName) != "" {
		page.PreviewURL = h.service.ShareURL(h.service.PreviewSlug(state))
	}
	return h.render(c, status, "form", page)
}

func (h *StoreHandler) render(c *fiber.Ctx, status int, name string, data interface{}) error {
	var buf bytes.Buffer
	if err := pages.ExecuteTemplate(&buf, name, data); err != nil {
		h.log.WithError(err).WithField("template", name).Error("failed to render page")
		return fiber.NewError(fiber.StatusInternalServerError, "could not render page")
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.Status(status).Send(buf.Bytes())
}

// readForm collects the form fields. Only MaxProducts product slots are read.
// Values are copied out of the request buffer, which fasthttp reuses once
// the handler returns.
func readForm(c *fiber.Ctx) models.StoreForm {
	value := func(key string) string {
		return utils.CopyString(c.FormValue(key))
	}
	form := models.StoreForm{
		ShopName:    value("shopName"),
		Description: value("description"),
		Phone:       value("phone"),
		UPI:         value("upi"),
		Products:    make([]models.ProductInput, models.MaxProducts),
	}
	for i := range form.Products {
		form.Products[i] = models.ProductInput{
			Name:  value(fmt.Sprintf("product_name_%d", i)),
			Price: value(fmt.Sprintf("product_price_%d", i)),
		}
	}
	return form
}

// productSlots pads or trims products to exactly MaxProducts entries.
func productSlots(products []models.ProductInput) []models.ProductInput {
	slots := make([]models.ProductInput, models.MaxProducts)
	copy(slots, products)
	return slots
}
