package services

import (
	"storefront/internal/domain"

	"github.com/go-playground/validator/v10"
)

// Validator checks the buyer form before an order is submitted.
type Validator interface {
	Validate(form domain.BuyerForm) error
}

// NopValidator accepts every form, including empty fields.
type NopValidator struct{}

func (NopValidator) Validate(domain.BuyerForm) error { return nil }

// FieldValidator enforces the `validate` tags on domain.BuyerForm: all fields
// present and a well-formed email.
type FieldValidator struct {
	validate *validator.Validate
}

func NewFieldValidator() *FieldValidator {
	return &FieldValidator{validate: validator.New()}
}

func (v *FieldValidator) Validate(form domain.BuyerForm) error {
	return v.validate.Struct(form)
}
