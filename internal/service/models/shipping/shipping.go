package shipping

import (
	"github.com/go-playground/validator/v10"
)

// Details is the shipping snapshot copied onto an order at creation time.
// It is never re-derived from a live profile afterwards.
type Details struct {
	Name    string `json:"name"    db:"ship_name"    validate:"required"`
	Address string `json:"address" db:"ship_address" validate:"required"`
	Phone   string `json:"phone"   db:"ship_phone"   validate:"required"`
	Pincode string `json:"pincode" db:"ship_pincode" validate:"omitempty,len=6,numeric"`
}

var validate = validator.New()

// Validate checks that name, address and phone are present and that the
// pincode, when supplied, is exactly six digits.
func (d *Details) Validate() error {
	return validate.Struct(d)
}
