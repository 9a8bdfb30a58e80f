package domain

import (
	"errors"
	"fmt"
)

var ErrUnknownField = errors.New("unknown form field")

type Field string

const (
	FieldName    Field = "name"
	FieldEmail   Field = "email"
	FieldAddress Field = "address"
)

func ParseField(s string) (Field, error) {
	switch f := Field(s); f {
	case FieldName, FieldEmail, FieldAddress:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownField, s)
}

type BuyerForm struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Address string `json:"address" validate:"required"`
}

// SetField updates exactly one field. Fields outside the known set are ignored;
// callers obtain a Field through ParseField.
func (f *BuyerForm) SetField(field Field, value string) {
	switch field {
	case FieldName:
		f.Name = value
	case FieldEmail:
		f.Email = value
	case FieldAddress:
		f.Address = value
	}
}

func (f *BuyerForm) Reset() {
	*f = BuyerForm{}
}

func (f BuyerForm) IsEmpty() bool {
	return f == BuyerForm{}
}
