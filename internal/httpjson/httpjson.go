// Package httpjson writes JSON responses and maps domain errors to HTTP statuses.
package httpjson

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/SarthakSoni31/Driven-backend/internal/domain"
)

const maxLimit = 100

type Responder struct {
	logger *slog.Logger
}

func NewResponder(logger *slog.Logger) *Responder {
	return &Responder{logger: logger}
}

func (r *Responder) JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		r.logger.Error("failed to encode response", "error", err)
	}
}

func (r *Responder) Error(w http.ResponseWriter, status int, message string) {
	r.JSON(w, status, map[string]string{"error": message})
}

// Fail writes the response for err. Errors that are not one of the domain
// kinds are logged and hidden behind a generic 500.
func (r *Responder) Fail(w http.ResponseWriter, err error, msg string, args ...any) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		body := map[string]string{"error": verr.Reason}
		if verr.Field != "" {
			body["field"] = verr.Field
		}
		r.JSON(w, http.StatusBadRequest, body)
	case errors.Is(err, domain.ErrValidation):
		r.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		r.Error(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrConflict):
		r.Error(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		r.Error(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrInvalidCode):
		r.Error(w, http.StatusUnauthorized, err.Error())
	default:
		r.logger.Error(msg, append([]any{"error", err}, args...)...)
		r.Error(w, http.StatusInternalServerError, "internal server error")
	}
}

// Decode reads a JSON body into dst. A malformed body is a validation error.
func Decode(req *http.Request, dst any) error {
	if err := json.NewDecoder(req.Body).Decode(dst); err != nil {
		return domain.Invalid("", "invalid request body")
	}
	return nil
}

// PageFrom reads the page and limit query parameters. Missing or
// non-positive values fall back to the defaults.
func PageFrom(req *http.Request) domain.Page {
	p := domain.Page{Number: domain.DefaultPage, Limit: domain.DefaultLimit}
	if n, err := strconv.Atoi(req.URL.Query().Get("page")); err == nil && n > 0 {
		p.Number = n
	}
	if n, err := strconv.Atoi(req.URL.Query().Get("limit")); err == nil && n > 0 {
		p.Limit = min(n, maxLimit)
	}
	return p
}
