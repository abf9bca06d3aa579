// Package types holds all shared data structures (models) used across
// the application. Keeping them in one place prevents import cycles:
// handlers, storage, and utils can all import types without depending
// on each other.
package types

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Student is a student record as stored in (and returned from) the
// students table. ID is assigned by the store and is never taken from a
// client payload.
type Student struct {
	ID             string `json:"id"`
	Name           string `json:"std_name"`
	Class          int    `json:"std_class"`
	RegistrationNo string `json:"std_registration_no"`
	Phone          string `json:"std_phone"`
}

// StudentInput is the set of client-settable fields shared by the create
// and update payloads.
//
// Class is a pointer so that "required" checks presence rather than a
// non-zero value: {"std_class": 0} is accepted, a missing std_class is not.
type StudentInput struct {
	Name           string `json:"std_name"            validate:"required"`
	Class          *int   `json:"std_class"           validate:"required"`
	RegistrationNo string `json:"std_registration_no" validate:"required"`
	Phone          string `json:"std_phone"           validate:"required"`
}

// StudentCreate is the body of POST /students/.
type StudentCreate struct {
	StudentInput
}

// StudentUpdate is the body of PUT /students/{reg_no}. All four fields are
// required: an update replaces the record, it never merges.
type StudentUpdate struct {
	StudentInput
}

// ClassValue returns the class, or 0 when it was not supplied.
func (in StudentInput) ClassValue() int {
	if in.Class == nil {
		return 0
	}
	return *in.Class
}

// validate is shared by all callers; a *validator.Validate caches struct
// metadata and is safe for concurrent use.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON name (std_name, not Name).
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks the struct tags of v. The returned error, if any, is a
// validator.ValidationErrors.
func Validate(v any) error {
	return validate.Struct(v)
}
