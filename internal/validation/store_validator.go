// Package validation turns raw creation form input into a store record.
package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"microstore/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// ErrRejected matches every *Rejection returned by Validate.
var ErrRejected = errors.New("store form rejected")

// Rejection explains why a form was refused. Field names the offending
// input using the document field name.
type Rejection struct {
	Field   string
	Message string
}

func (r *Rejection) Error() string {
	return r.Message
}

// Is makes errors.Is(err, ErrRejected) hold for any rejection.
func (r *Rejection) Is(target error) bool {
	return target == ErrRejected
}

func reject(field, message string) *Rejection {
	return &Rejection{Field: field, Message: message}
}

var (
	mobilePattern = regexp.MustCompile(`^[6789][0-9]{9}$`)
	upiPattern    = regexp.MustCompile(`^[\w.-]+@[\w.-]+$`)

	validate = newValidator()
)

func newValidator() *validator.Validate {
	v := validator.New()
	// Registration only fails on an empty tag or a nil func.
	_ = v.RegisterValidation("in_mobile", func(fl validator.FieldLevel) bool {
		return mobilePattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("upi_id", func(fl validator.FieldLevel) bool {
		return upiPattern.MatchString(fl.Field().String())
	})
	return v
}

// Validate checks form field by field and returns the first failure as a
// *Rejection. Checks run in a fixed order: shop name, description, phone,
// UPI id, product presence, product prices.
//
// On success the returned store carries trimmed values and only the product
// slots that had both a name and a price. Slug and CreatedAt are left unset.
func Validate(form models.StoreForm) (models.Store, error) {
	shopName := strings.TrimSpace(form.ShopName)
	if validate.Var(shopName, "min=3,max=50") != nil {
		return models.Store{}, reject("shopName", "Shop Name must be between 3 and 50 characters long.")
	}

	description := strings.TrimSpace(form.Description)
	if validate.Var(description, "max=200") != nil {
		return models.Store{}, reject("description", "Description must be at most 200 characters long.")
	}

	// Phone and UPI are matched as typed: surrounding spaces are an error.
	if validate.Var(form.Phone, "in_mobile") != nil {
		return models.Store{}, reject("phone", "Please enter a valid 10-digit mobile number starting with 6, 7, 8 or 9.")
	}
	if validate.Var(form.UPI, "upi_id") != nil {
		return models.Store{}, reject("upi", "Please enter a valid UPI ID (e.g. username@upi).")
	}

	products := FilterProducts(form.Products)
	if len(products) == 0 {
		return models.Store{}, reject("products", "Please add at least one product with a name and price.")
	}
	if len(products) > models.MaxProducts {
		return models.Store{}, reject("products", fmt.Sprintf("You can add at most %d products.", models.MaxProducts))
	}

	for _, p := range products {
		price, err := decimal.NewFromString(p.Price)
		if err != nil || !price.IsPositive() {
			return models.Store{}, reject("products", fmt.Sprintf("Invalid price for %q. Please enter a number greater than zero.", p.Name))
		}
	}

	return models.Store{
		ShopName:    shopName,
		Description: description,
		Phone:       strings.TrimSpace(form.Phone),
		UPI:         strings.TrimSpace(form.UPI),
		Products:    products,
	}, nil
}

// FilterProducts drops every slot whose trimmed name or trimmed price is
// empty and trims the rest. Order is preserved.
func FilterProducts(slots []models.ProductInput) []models.Product {
	products := make([]models.Product, 0, len(slots))
	for _, slot := range slots {
		name := strings.TrimSpace(slot.Name)
		price := strings.TrimSpace(slot.Price)
		if name == "" || price == "" {
			continue
		}
		products = append(products, models.Product{Name: name, Price: price})
	}
	return products
}
