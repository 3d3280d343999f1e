package utils

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var Validate *validator.Validate

var usernameRegex = regexp.MustCompile(`^[\w.@+-]+$`)

func InitValidator() {
	Validate = validator.New()

	// Same rule the registration form enforces: letters, digits and
	// @/./+/-/_ only, and "me" is reserved for the /users/me/ route.
	_ = Validate.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		if !usernameRegex.MatchString(value) {
			return false
		}
		return strings.ToLower(value) != "me"
	})
}
