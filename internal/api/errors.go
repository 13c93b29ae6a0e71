package api

import (
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/matzehuels/helmdraw/pkg/errors"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Code     errors.Code `json:"code"`
	Message  string      `json:"message"`
	Fragment string      `json:"fragment,omitempty"`
	Node     *int        `json:"node,omitempty"`
	Edge     *int        `json:"edge,omitempty"`
}

// statusFor maps an error code to its HTTP status.
func statusFor(code errors.Code) int {
	switch code {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidFormat, errors.ErrCodeInvalidStyle,
		errors.ErrCodeNotationSyntax:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodeDocumentNotFound:
		return http.StatusNotFound
	case errors.ErrCodeUnresolvedMonomer, errors.ErrCodeStructuralInvariant,
		errors.ErrCodeLayoutUnsupportedMotif, errors.ErrCodeLayoutOverlap:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeUnsupported:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

// errorResponse converts err into a response body and status. Errors
// without a code are reported as internal and their text is not exposed.
func errorResponse(err error) (int, ErrorResponse) {
	var e *errors.Error
	if !errors.As(err, &e) {
		return http.StatusInternalServerError, ErrorResponse{
			Code:    errors.ErrCodeInternal,
			Message: "internal error",
		}
	}
	resp := ErrorResponse{Code: e.Code, Message: e.Message, Fragment: e.Fragment}
	if e.Code == errors.ErrCodeInternal {
		resp.Message = "internal error"
	}
	if e.Node != errors.NoHandle {
		n := e.Node
		resp.Node = &n
	}
	if e.Edge != errors.NoHandle {
		id := e.Edge
		resp.Edge = &id
	}
	return statusFor(e.Code), resp
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validationError turns validator failures into one INVALID_INPUT error
// listing every failing field.
func validationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid request")
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, formatFieldError(fe))
	}
	return errors.New(errors.ErrCodeInvalidInput, "%s", strings.Join(msgs, "; "))
}

func formatFieldError(e validator.FieldError) string {
	field := e.Field()
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, e.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s", field, e.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(e.Param(), " ", ", "))
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
