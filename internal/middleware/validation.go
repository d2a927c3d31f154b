package middleware

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator checks decoded request parameters against their struct tags.
// Field names in errors come from the `query` tag, then `json`.
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a validator that reports parameter names as clients send them.
func NewValidator() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, key := range []string{"query", "json"} {
			name := strings.SplitN(fld.Tag.Get(key), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})
	return &Validator{validate: v}
}

// Struct validates v. A failure is a validator.ValidationErrors, which the
// error handler renders as 400 with one entry per field.
func (v *Validator) Struct(s interface{}) error {
	return v.validate.Struct(s)
}
