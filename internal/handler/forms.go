package handler

import (
	"errors"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// bindingMessage turns a form binding error into one line for the page, the
// same way backend validation errors are joined.
func bindingMessage(err error) string {
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return "Please check the form and try again"
	}

	msgs := make([]string, 0, len(ves))
	for _, fe := range ves {
		field := fieldLabel(fe.Field())
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, field+" is required")
		case "min":
			msgs = append(msgs, field+" must be at least "+fe.Param())
		case "email":
			msgs = append(msgs, field+" must be a valid email address")
		case "oneof":
			msgs = append(msgs, field+" must be one of "+strings.ReplaceAll(fe.Param(), " ", ", "))
		default:
			msgs = append(msgs, field+" is invalid")
		}
	}
	return strings.Join(msgs, ", ")
}

// fieldLabel turns PassengerPhone into "passenger phone" and DriverID into "driver id".
func fieldLabel(name string) string {
	var b strings.Builder
	prevUpper := true
	for _, r := range name {
		upper := unicode.IsUpper(r)
		if upper && !prevUpper {
			b.WriteByte(' ')
		}
		prevUpper = upper
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}
