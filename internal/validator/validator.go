package validator

import (
	"fmt"
	"reflect"
	"regexp"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/minhngvn/cinema-booking-api/internal/domain"
	"github.com/shopspring/decimal"
)

var hasSpecialRgx = regexp.MustCompile(`[!@#$%^&*]`)

func NewValidator() *validator.Validate {
	validator := validator.New(validator.WithRequiredStructEnabled())

	validator.RegisterValidation("password", validatePassword)
	validator.RegisterValidation("seat_id", validateSeatLabel)

	// Expose decimal amounts as floats so numeric tags like gt apply.
	validator.RegisterCustomTypeFunc(decimalToFloat, decimal.Decimal{})

	return validator
}

func decimalToFloat(field reflect.Value) interface{} {
	if d, ok := field.Interface().(decimal.Decimal); ok {
		f, _ := d.Float64()
		return f
	}

	return nil
}

func validateSeatLabel(fl validator.FieldLevel) bool {
	_, err := domain.ParseSeatID(fl.Field().String())
	return err == nil
}

func validatePassword(fl validator.FieldLevel) bool {
	password := fl.Field().String()

	if len(password) < 8 || len(password) > 25 {
		return false
	}

	containsUpper, containsLower, containsDigit, containsSpecial := false, false, false, false

	for _, ch := range password {
		switch {
		case unicode.IsUpper(ch):
			containsUpper = true
		case unicode.IsLower(ch):
			containsLower = true
		case unicode.IsDigit(ch):
			containsDigit = true
		case hasSpecialRgx.MatchString(string(ch)):
			containsSpecial = true
		}
	}

	return containsUpper && containsLower && containsDigit && containsSpecial
}

// ValidationMessage converts validator errors into readable messages
func ValidationMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must contain at least %s items or characters", err.Param())
	case "max":
		return fmt.Sprintf("must contain at most %s items or characters", err.Param())
	case "alpha":
		return "must contain only letters"
	case "unique":
		return "must not contain duplicates"
	case "gt":
		return fmt.Sprintf("must be greater than %s", err.Param())
	case "seat_id":
		return "must be a seat label like C7"
	case "password":
		return "must be at least 8 characters long and include at least one uppercase letter, one lowercase letter, " +
			"one number, and one special character (!@#$%^&*)."
	default:
		return "is invalid"
	}
}
