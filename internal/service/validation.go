package service

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var (
	personNameRegexp  = regexp.MustCompile(`^[A-Za-z][A-Za-z \-]{1,14}$`)
	phoneDigitsRegexp = regexp.MustCompile(`^\d{10}$`)
	oldNICRegexp      = regexp.MustCompile(`^\d{9}[VvXx]$`)
	newNICRegexp      = regexp.MustCompile(`^\d{12}$`)
)

// NewValidator builds the shared validator with the domain rules:
// personname (2-15 letters, spaces, hyphens), phonedigits (exactly 10
// digits), nic (old 9-digit+V/X or new 12-digit format), dateonly
// (YYYY-MM-DD) and examyear.
func NewValidator() *validator.Validate {
	v := validator.New()

	must := func(tag string, fn validator.Func) {
		if err := v.RegisterValidation(tag, fn); err != nil {
			panic(fmt.Sprintf("failed to register validation %q: %v", tag, err))
		}
	}

	must("personname", func(fl validator.FieldLevel) bool {
		return personNameRegexp.MatchString(fl.Field().String())
	})

	must("phonedigits", func(fl validator.FieldLevel) bool {
		return phoneDigitsRegexp.MatchString(fl.Field().String())
	})

	must("nic", func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		return oldNICRegexp.MatchString(value) || newNICRegexp.MatchString(value)
	})

	must("dateonly", func(fl validator.FieldLevel) bool {
		_, err := time.Parse("2006-01-02", fl.Field().String())
		return err == nil
	})

	must("examyear", func(fl validator.FieldLevel) bool {
		year := fl.Field().Int()
		return year >= 2000 && year <= 2100
	})

	return v
}

// validationError flattens validator output into one ErrInvalidInput with
// the offending fields named, so the handler can return it verbatim.
func validationError(err error) error {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fmt.Sprintf("%s (%s)", fe.Field(), fe.Tag()))
	}
	return fmt.Errorf("%w: %s", ErrInvalidInput, strings.Join(fields, ", "))
}

// NormalizeNIC upper-cases the letter suffix of an old-format national id
// so V/v and X/x compare and hash identically.
func NormalizeNIC(nic string) string {
	return strings.ToUpper(strings.TrimSpace(nic))
}
