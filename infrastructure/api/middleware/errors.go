package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	"github.com/helixml/segalloc/application/service"
	"github.com/helixml/segalloc/domain/allocation"
	"github.com/helixml/segalloc/domain/textgrid"
	"github.com/helixml/segalloc/infrastructure/api/jsonapi"
	"github.com/helixml/segalloc/internal/database"
)

// APIError is an error with an explicit HTTP status.
type APIError struct {
	code    int
	message string
	cause   error
}

// NewAPIError creates an APIError.
func NewAPIError(code int, message string, cause error) *APIError {
	return &APIError{code: code, message: message, cause: cause}
}

// Code returns the HTTP status code.
func (e *APIError) Code() int { return e.code }

// Message returns the client-facing message.
func (e *APIError) Message() string { return e.message }

// Error implements error.
func (e *APIError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("api error %d: %s: %v", e.code, e.message, e.cause)
	}
	return fmt.Sprintf("api error %d: %s", e.code, e.message)
}

// Unwrap returns the cause.
func (e *APIError) Unwrap() error { return e.cause }

// Classify maps err to an HTTP status and a client-facing title.
func Classify(err error) (int, string) {
	var apiErr *APIError
	var validationErrs validator.ValidationErrors
	var maxBytes *http.MaxBytesError

	switch {
	case errors.As(err, &apiErr):
		return apiErr.code, apiErr.message
	case errors.As(err, &validationErrs):
		return http.StatusUnprocessableEntity, "validation failed"
	case errors.As(err, &maxBytes), errors.Is(err, service.ErrTooLarge):
		return http.StatusRequestEntityTooLarge, "file is too large"
	case errors.Is(err, database.ErrNotFound), errors.Is(err, service.ErrSessionNotFound):
		return http.StatusNotFound, "not found"
	case errors.Is(err, allocation.ErrInvariantViolation):
		return http.StatusInternalServerError, textgrid.MessageUnhandledError
	case errors.Is(err, allocation.ErrProvideBothTiers):
		return http.StatusConflict, err.Error()
	case errors.Is(err, textgrid.ErrTierNotFound),
		errors.Is(err, textgrid.ErrTierNameRequired),
		errors.Is(err, textgrid.ErrEncoding):
		return http.StatusBadRequest, textgrid.Message(err)
	case errors.Is(err, allocation.ErrNoSegments),
		errors.Is(err, allocation.ErrUnknownSegment),
		errors.Is(err, allocation.ErrUnknownCommand),
		errors.Is(err, service.ErrEmptyContent),
		errors.Is(err, service.ErrUnknownFormat):
		return http.StatusBadRequest, "bad request"
	default:
		return http.StatusInternalServerError, textgrid.MessageUnhandledError
	}
}

// WriteError writes err as a JSON:API error document. Server errors are
// logged at ERROR, client errors at DEBUG.
func WriteError(w http.ResponseWriter, r *http.Request, err error, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	status, title := Classify(err)
	attrs := []any{
		slog.String("request_id", chimiddleware.GetReqID(r.Context())),
		slog.String("path", r.URL.Path),
		slog.Int("status", status),
		slog.Any("error", err),
	}
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", attrs...)
	} else {
		logger.Debug("request rejected", attrs...)
	}

	var errs []jsonapi.Error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		for _, fe := range validationErrs {
			e := jsonapi.NewError(strconv.Itoa(status), title, fieldMessage(fe))
			e.Source = &jsonapi.ErrorSource{Pointer: "/" + fe.Field()}
			errs = append(errs, e)
		}
	} else {
		detail := err.Error()
		if status >= http.StatusInternalServerError {
			detail = ""
		}
		errs = append(errs, jsonapi.NewError(strconv.Itoa(status), title, detail))
	}

	WriteJSONAPI(w, status, jsonapi.NewErrorResponse(errs...))
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_without":
		return fe.Field() + " is required"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "nefield":
		return fmt.Sprintf("%s must differ from %s", fe.Field(), fe.Param())
	default:
		return fe.Field() + " is invalid"
	}
}

// WriteJSON writes v as JSON with status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	writeEncoded(w, "application/json", status, v)
}

// WriteJSONAPI writes v as a JSON:API document with status.
func WriteJSONAPI(w http.ResponseWriter, status int, v any) {
	writeEncoded(w, jsonapi.MediaType, status, v)
}

func writeEncoded(w http.ResponseWriter, contentType string, status int, v any) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}
