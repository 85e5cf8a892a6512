package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"math"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/crucial707/blog/internal/models"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
)

// ErrMessageInternal is the generic message for 500 responses. Do not expose internal details to clients.
const ErrMessageInternal = "internal server error"

// Envelope is the body of every API response.
type Envelope struct {
	Success bool                   `json:"success"`
	Data    any                    `json:"data,omitempty"`
	Message string                 `json:"message,omitempty"`
	Error   string                 `json:"error,omitempty"`
	Count   *int                   `json:"count,omitempty"`
	Meta    *models.PaginationMeta `json:"meta,omitempty"`
	Fields  map[string]string      `json:"fields,omitempty"`
}

// JSON writes env with the given status.
func JSON(w http.ResponseWriter, status int, env Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(env)
}

// OK writes a 200 success envelope around data.
func OK(w http.ResponseWriter, data any, message string) {
	JSON(w, http.StatusOK, Envelope{Success: true, Data: data, Message: message})
}

// JSONError sends a JSON error envelope.
func JSONError(w http.ResponseWriter, message string, status int) {
	JSON(w, status, Envelope{Success: false, Error: message})
}

// JSONValidationError sends an error envelope with field-level details.
func JSONValidationError(w http.ResponseWriter, message string, fields map[string]string, status int) {
	JSON(w, status, Envelope{Success: false, Error: message, Fields: fields})
}

// internalError logs err with the request ID and sends a generic 500.
func internalError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	slog.Error(msg,
		"request_id", chimw.GetReqID(r.Context()),
		"method", r.Method,
		"path", r.URL.Path,
		"error", err)
	JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
}

// decodeJSON decodes the request body into dst, answering 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			JSONError(w, "request body too large", http.StatusRequestEntityTooLarge)
			return false
		}
		JSONError(w, "invalid JSON", http.StatusBadRequest)
		return false
	}
	return true
}

// ==========================
// Validation
// ==========================

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report JSON field names rather than Go field names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validationFields runs struct validation and returns field -> problem, or nil when valid.
func validationFields(input any) map[string]string {
	err := validate.Struct(input)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"_": err.Error()}
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = describe(fe)
	}
	return fields
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "required"
	case "email":
		return "must be a valid email"
	case "url":
		return "must be a valid URL"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "oneof":
		return "must be one of " + fe.Param()
	case "hexcolor":
		return "must be a hex color"
	case "alphanum":
		return "must contain only letters and digits"
	}
	return "is invalid"
}

// ==========================
// Request parameters
// ==========================

// urlID parses the chi URL parameter name as a positive integer.
func urlID(r *http.Request, name string) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// queryInt returns the query parameter as an int, or fallback when missing or below min.
func queryInt(r *http.Request, name string, fallback, min int) int {
	if v := r.URL.Query().Get(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= min {
			return n
		}
	}
	return fallback
}

// pageParams reads page/limit with limit clamped to [1, maxLimit].
func pageParams(r *http.Request, defaultLimit, maxLimit int) (page, limit, offset int) {
	page = queryInt(r, "page", 1, 1)
	limit = queryInt(r, "limit", defaultLimit, 1)
	if limit > maxLimit {
		limit = maxLimit
	}
	if maxPage := math.MaxInt/limit + 1; page > maxPage {
		page = maxPage
	}
	return page, limit, (page - 1) * limit
}

func intPtr(n int) *int { return &n }
