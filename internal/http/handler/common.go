package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"runtime/debug"
	"strings"

	"github.com/garmentiq/revenue-forecast-api/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	msgServerError = "Server Error"
	msgBadJSON     = "Invalid request body"
	maxBodyBytes   = 5 << 20
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	_ = v.RegisterValidation("garment_email", func(fl validator.FieldLevel) bool {
		return domain.IsValidEmail(domain.NormalizeEmail(fl.Field().String()))
	})
	_ = v.RegisterValidation("industry", func(fl validator.FieldLevel) bool {
		return domain.Industry(fl.Field().String()).IsValid()
	})
	return v
}

// Responder writes JSON envelopes and maps domain errors to status codes
type Responder struct {
	logger      *zap.Logger
	development bool
}

// NewResponder creates a responder. Development mode adds stack traces to 500 responses.
func NewResponder(logger *zap.Logger, development bool) *Responder {
	return &Responder{logger: logger, development: development}
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// respondData sends {success: true, data}
func respondData(w http.ResponseWriter, status int, data interface{}) {
	respondJSON(w, status, domain.Envelope{Success: true, Data: data})
}

// respondList sends {success: true, count, data}
func respondList(w http.ResponseWriter, count int, data interface{}) {
	respondJSON(w, http.StatusOK, domain.Envelope{Success: true, Count: &count, Data: data})
}

// respondWithError sends {success: false, error}
func respondWithError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, domain.Envelope{Success: false, Error: message})
}

// statusFor maps a domain error kind to its HTTP status
func statusFor(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindValidation, domain.KindDuplicate, domain.KindInsufficientData:
		return http.StatusBadRequest
	case domain.KindUnauthenticated, domain.KindInvalidCredentials:
		return http.StatusUnauthorized
	case domain.KindForbidden:
		return http.StatusForbidden
	case domain.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Error writes the envelope for err. Unexpected errors are logged and hidden behind "Server Error".
func (rs *Responder) Error(w http.ResponseWriter, r *http.Request, err error) {
	var de *domain.Error
	if errors.As(err, &de) && de.Kind != domain.KindInternal && de.Kind != domain.KindIntegrity {
		respondJSON(w, statusFor(de.Kind), domain.Envelope{Success: false, Error: de.Message, Errors: de.Fields})
		return
	}

	rs.logger.Error("request failed",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)

	env := domain.Envelope{Success: false, Error: msgServerError}
	if de != nil && de.Kind == domain.KindIntegrity {
		env.Error = de.Message
	}
	if rs.development {
		env.Stack = fmt.Sprintf("%v\n%s", err, debug.Stack())
	}
	respondJSON(w, http.StatusInternalServerError, env)
}

// decode reads a JSON body into dst and validates it
func decode(r *http.Request, dst interface{}) error {
	body := http.MaxBytesReader(nil, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return domain.NewValidationError("Request body is required")
		}
		return &domain.Error{Kind: domain.KindValidation, Message: msgBadJSON, Err: err}
	}
	return validateStruct(dst)
}

// validateStruct converts validator failures into a field validation error
func validateStruct(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return domain.NewValidationError(err.Error())
	}

	fields := make(map[string]string, len(ve))
	messages := make([]string, 0, len(ve))
	for _, fe := range ve {
		msg := formatValidationError(fe)
		fields[fieldPath(fe)] = msg
		messages = append(messages, fmt.Sprintf("%s: %s", fieldPath(fe), msg))
	}
	return domain.NewFieldValidationError("Validation Error: "+strings.Join(messages, ", "), fields)
}

// fieldPath drops the root struct name from the namespace, e.g. "dataEntries[1].revenue"
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

// formatValidationError creates a human-readable validation error message
func formatValidationError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required"
	case "max":
		return fmt.Sprintf("Must be at most %s", fe.Param())
	case "min":
		return fmt.Sprintf("Must be at least %s", fe.Param())
	case "gte":
		return fmt.Sprintf("Must be greater than or equal to %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("Must be one of: %s", fe.Param())
	default:
		return domain.GetValidationMessage(fe.Tag())
	}
}

// pathID parses the {id} URL parameter
func pathID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, domain.NewFieldValidationError("Invalid id", map[string]string{"id": "Must be a valid UUID"})
	}
	return id, nil
}

// NotFound answers unknown routes
func NotFound(w http.ResponseWriter, r *http.Request) {
	respondWithError(w, http.StatusNotFound, "API route not found")
}

// MethodNotAllowed answers known routes called with the wrong method
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
}
