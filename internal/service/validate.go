package service

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"password-dashboard/internal/passwordrules"
)

const (
	msgRequired     = "This field is required."
	msgInvalidEmail = "Invalid email address."
	msgEmailTaken   = "That email is taken. Please choose a different one."

	msgPictureTooLarge = "Image dimensions are too large."
)

var validate = validator.New()

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func checkRequired(ve *ValidationError, field, value string) bool {
	if strings.TrimSpace(value) == "" {
		ve.Add(field, msgRequired)
		return false
	}
	return true
}

func checkEmail(ve *ValidationError, field, email string) {
	if !checkRequired(ve, field, email) {
		return
	}
	if err := validate.Var(email, "email"); err != nil {
		ve.Add(field, msgInvalidEmail)
	}
}

func checkPassword(ve *ValidationError, field, password string) {
	if password == "" {
		ve.Add(field, msgRequired)
		return
	}
	for _, v := range passwordrules.Validate(password) {
		ve.Add(field, v.Message)
	}
}

func checkLength(ve *ValidationError, field, value string, lo, hi int) {
	n := utf8.RuneCountInString(value)
	if n < lo || n > hi {
		ve.Add(field, fmt.Sprintf("Field must be between %d and %d characters long.", lo, hi))
	}
}
