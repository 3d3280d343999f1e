package presenters

import (
	"errors"
	"fmt"
	"strings"

	"foodgram-backend/domain"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// The API speaks the original frontend's wire language: conflicts and
// validation failures arrive as {"errors": ...} or {"field": [...]},
// missing resources and auth failures as {"detail": ...}, and lists
// as {count, next, previous, results}.

type Page struct {
	Count    int64       `json:"count"`
	Next     *string     `json:"next"`
	Previous *string     `json:"previous"`
	Results  interface{} `json:"results"`
}

func Success(c *fiber.Ctx, status int, data interface{}) error {
	return c.Status(status).JSON(data)
}

func NoContent(c *fiber.Ctx) error {
	return c.SendStatus(fiber.StatusNoContent)
}

func Errors(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": err.Error()})
}

func Detail(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"detail": message})
}

// ValidationErrors renders field-keyed message lists the way the
// original API reports body validation, falling back to the plain
// error shape for anything that is not a validator failure.
func ValidationErrors(c *fiber.Ctx, err error) error {
	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return Errors(c, err)
	}

	out := make(map[string][]string, len(fieldErrors))
	for _, fe := range fieldErrors {
		field := strings.ToLower(fe.Field())
		out[field] = append(out[field], validationMessage(fe))
	}
	return c.Status(fiber.StatusBadRequest).JSON(out)
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "max":
		return fmt.Sprintf("Ensure this field has no more than %s characters.", fe.Param())
	case "min":
		return fmt.Sprintf("Ensure this value is greater than or equal to %s.", fe.Param())
	case "username":
		return "Enter a valid username."
	default:
		return fmt.Sprintf("Invalid value for constraint %q.", fe.Tag())
	}
}

// Paginated wraps results with absolute next/previous page links
// derived from the current request URL.
func Paginated(c *fiber.Ctx, count int64, page, limit int, results interface{}) error {
	return c.Status(fiber.StatusOK).JSON(Page{
		Count:    count,
		Next:     pageLink(c, page+1, limit, count),
		Previous: pageLink(c, page-1, limit, count),
		Results:  results,
	})
}

func pageLink(c *fiber.Ctx, page, limit int, count int64) *string {
	if page < 1 || int64(page-1)*int64(limit) >= count {
		return nil
	}
	link := fmt.Sprintf("%s%s?page=%d&limit=%d", c.BaseURL(), c.Path(), page, limit)
	return &link
}

// DomainError maps service sentinel errors onto the wire: unknown
// resources become 404 details, everything else a 400 error message.
func DomainError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrRecipeNotFound),
		errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrTagNotFound),
		errors.Is(err, domain.ErrIngredientNotFound),
		errors.Is(err, domain.ErrNotFound):
		return Detail(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrUnauthorizedRecipeAccess):
		return Detail(c, fiber.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrTokenExpired),
		errors.Is(err, domain.ErrTokenInvalid),
		errors.Is(err, domain.ErrTokenNotFound):
		return Detail(c, fiber.StatusUnauthorized, err.Error())
	default:
		return Errors(c, err)
	}
}
