package validation

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// EmailTag is the struct tag that applies the user email rule.
const EmailTag = "useremail"

// emailPattern accepts dotted or quoted local parts and either a bracketed
// IPv4 literal or a dotted hostname whose last label has at least two letters.
// Unquoted local parts reject every Unicode space separator, not only ASCII ones.
var emailPattern = regexp.MustCompile(
	`^(([^<>()\[\]\\.,;:\s\v\p{Z}\x{FEFF}@"]+(\.[^<>()\[\]\\.,;:\s\v\p{Z}\x{FEFF}@"]+)*)|(".+"))@` +
		`((\[[0-9]{1,3}\.[0-9]{1,3}\.[0-9]{1,3}\.[0-9]{1,3}\])|(([a-zA-Z\-0-9]+\.)+[a-zA-Z]{2,}))$`,
)

// IsEmail reports whether s has the shape of an email address.
func IsEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// New returns a validator that knows the user email rule and reports
// fields by their JSON names.
func New() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	// registration only fails on an empty tag or nil func
	_ = v.RegisterValidation(EmailTag, func(fl validator.FieldLevel) bool {
		return IsEmail(fl.Field().String())
	})

	return v
}
