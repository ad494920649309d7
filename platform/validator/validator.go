// Package validator provides validation infrastructure for the application.
// This is part of the platform layer and contains no business logic.
package validator

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Dutch postal code: four digits, the first non-zero, followed by two letters. SA, SD and SS
// are never issued.
var postcodePattern = regexp.MustCompile(`^[1-9][0-9]{3}(?:[A-RT-Z][A-Z]|S[BCE-RT-Z])$`)

// Validator wraps the go-playground validator for structured validation.
type Validator struct {
	v *validator.Validate
}

// New creates a new Validator instance with the shared "postcode" rule registered.
// Domain-specific validation rules can be registered using RegisterValidation.
func New() *Validator {
	v := validator.New()
	_ = v.RegisterValidation("postcode", validatePostcode)
	return &Validator{v: v}
}

// Struct validates a struct based on validation tags.
func (val *Validator) Struct(s any) error {
	return val.v.Struct(s)
}

// Var validates a single variable against a tag.
func (val *Validator) Var(field any, tag string) error {
	return val.v.Var(field, tag)
}

// RegisterValidation registers a custom validation function.
func (val *Validator) RegisterValidation(tag string, fn validator.Func) error {
	return val.v.RegisterValidation(tag, fn)
}

// NormalizePostcode upper-cases a postal code and strips whitespace.
func NormalizePostcode(raw string) string {
	return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(raw), " ", ""))
}

func validatePostcode(fl validator.FieldLevel) bool {
	return postcodePattern.MatchString(NormalizePostcode(fl.Field().String()))
}
