// Package common holds the response envelopes, error mapping and request
// binding shared by the HTTP handlers.
package common

import (
	"errors"
	"reflect"
	"strings"

	"github.com/amirasaad/ledger/pkg/domain"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Response defines the standard API response structure for success cases.
type Response struct {
	Status  int    `json:"status"`         // HTTP status code
	Message string `json:"message"`        // Human-readable explanation
	Data    any    `json:"data,omitempty"` // Response data
}

// ProblemDetails follows RFC 9457 Problem Details for HTTP APIs.
type ProblemDetails struct {
	Type     string `json:"type,omitempty"`     // A URI reference that identifies the problem type
	Title    string `json:"title"`              // Short, human-readable summary
	Status   int    `json:"status"`             // HTTP status code
	Detail   string `json:"detail,omitempty"`   // Human-readable explanation
	Instance string `json:"instance,omitempty"` // URI reference that identifies the specific occurrence
	Errors   any    `json:"errors,omitempty"`   // Optional: additional error details
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ErrorToStatusCode maps an error kind to its HTTP status. The mapping is part
// of the API contract.
func ErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return fiber.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, domain.ErrBusinessRule):
		return fiber.StatusUnprocessableEntity
	default:
		return fiber.StatusInternalServerError
	}
}

// ProblemDetailsJSON writes an RFC 9457 response. The status comes from err
// unless an int is passed in args; a string in args overrides the detail and
// any other value is reported under "errors". Storage failures never expose
// their cause.
func ProblemDetailsJSON(c *fiber.Ctx, title string, err error, args ...any) error {
	status := fiber.StatusInternalServerError
	if err != nil {
		status = ErrorToStatusCode(err)
	}
	pd := ProblemDetails{
		Type:     "about:blank",
		Title:    title,
		Instance: c.OriginalURL(),
	}
	if err != nil && status != fiber.StatusInternalServerError {
		pd.Detail = err.Error()
	}
	for _, arg := range args {
		switch v := arg.(type) {
		case int:
			status = v
		case string:
			pd.Detail = v
		case nil:
		default:
			pd.Errors = v
		}
	}
	if pd.Detail == "" && status == fiber.StatusInternalServerError {
		pd.Detail = "internal error"
	}
	pd.Status = status
	c.Set(fiber.HeaderContentType, "application/problem+json")
	return c.Status(status).JSON(pd)
}

// SuccessResponseJSON writes the standard success envelope.
func SuccessResponseJSON(c *fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(Response{
		Status:  status,
		Message: message,
		Data:    data,
	})
}

// BindAndValidate parses the request body and validates it using go-playground/validator.
// Returns a pointer to the struct (populated), or writes an error response and returns nil.
func BindAndValidate[T any](c *fiber.Ctx) (*T, error) {
	var input T
	if err := c.BodyParser(&input); err != nil {
		return nil, ProblemDetailsJSON(c, "Invalid request body", nil, err.Error(), fiber.StatusBadRequest)
	}
	if err := validate.Struct(input); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return nil, ProblemDetailsJSON(c, "Validation failed", nil, fieldErrors(verrs), fiber.StatusBadRequest)
		}
		return nil, ProblemDetailsJSON(c, "Validation failed", nil, err.Error(), fiber.StatusBadRequest)
	}
	return &input, nil
}

func fieldErrors(verrs validator.ValidationErrors) map[string]string {
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		out[fe.Field()] = fe.Tag()
	}
	return out
}

// ParseID reads a UUID path parameter.
func ParseID(c *fiber.Ctx, param string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(param))
	if err != nil {
		return uuid.Nil, domain.NewValidationError(param + " must be a valid UUID")
	}
	return id, nil
}

// TokenSubject returns the verified subject of the request's JWT, if the
// request carries one.
func TokenSubject(c *fiber.Ctx) (string, bool) {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok || token == nil {
		return "", false
	}
	sub, err := token.Claims.GetSubject()
	if err != nil || sub == "" {
		return "", false
	}
	return sub, true
}
