// Package validate runs struct-tag validation on request payloads and
// converts failures into apperr validation errors.
package validate

import (
	"fmt"
	"reflect"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/iliyamo/store-rating/internal/apperr"
	"github.com/iliyamo/store-rating/internal/model"
)

// PasswordSymbols is the set of symbols a password must draw at least one
// character from.
const PasswordSymbols = "!@#$%^&*"

const (
	passwordMinLen = 8
	passwordMaxLen = 16
)

var v = newValidator()

func newValidator() *validator.Validate {
	val := validator.New(validator.WithRequiredStructEnabled())
	val.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" || tag == "-" {
			return f.Name
		}
		return tag
	})
	_ = val.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		return PasswordOK(fl.Field().String())
	})
	_ = val.RegisterValidation("role", func(fl validator.FieldLevel) bool {
		_, err := model.ParseRole(fl.Field().String())
		return err == nil
	})
	return val
}

// PasswordOK reports whether p is 8 to 16 characters long with at least
// one uppercase letter and one symbol from PasswordSymbols.
func PasswordOK(p string) bool {
	n := utf8.RuneCountInString(p)
	if n < passwordMinLen || n > passwordMaxLen {
		return false
	}
	var upper, symbol bool
	for _, r := range p {
		if unicode.IsUpper(r) {
			upper = true
		}
		if strings.ContainsRune(PasswordSymbols, r) {
			symbol = true
		}
	}
	return upper && symbol
}

// Struct validates s and returns a VALIDATION_ERROR with one message per
// failing field.
func Struct(s any) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return apperr.Wrap(apperr.CodeValidation, err, "validation failed")
	}
	details := make(map[string]string, len(errs))
	for _, fe := range errs {
		details[fe.Field()] = message(fe)
	}
	return apperr.Validation(summary(errs)).WithDetails(details)
}

// summary picks the first failing field so clients that only show a single
// message still get something specific.
func summary(errs validator.ValidationErrors) string {
	fe := errs[0]
	return fmt.Sprintf("%s %s", fe.Field(), message(fe))
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "email":
		return "must be a valid email"
	case "password":
		return fmt.Sprintf("must be %d-%d characters with at least one uppercase letter and one of %s",
			passwordMinLen, passwordMaxLen, PasswordSymbols)
	case "role":
		return "must be one of USER, ADMIN, OWNER"
	case "oneof":
		return "must be one of " + fe.Param()
	}
	return "is invalid"
}
