package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"editorial_catalog/internal/domain"
)

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Kind    string            `json:"kind"`
	Error   string            `json:"error"`
	Status  int               `json:"status"`
	Details map[string]string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// errorResponse maps a service error to its status and body. Unknown errors
// become a generic 500 so internals never reach the client.
func errorResponse(err error) ErrorBody {
	var (
		notFound domain.NotFoundError
		verr     domain.ValidationError
		enumErr  domain.InvalidEnumError
		slugErr  domain.SlugConflictError
		refErr   domain.ReferentialConflictError
	)

	switch {
	case errors.As(err, &notFound):
		return ErrorBody{
			Kind:    "not_found",
			Error:   err.Error(),
			Status:  http.StatusNotFound,
			Details: map[string]string{string(notFound.Entity): notFound.Key},
		}
	case errors.As(err, &slugErr):
		return ErrorBody{
			Kind:    "slug_conflict",
			Error:   err.Error(),
			Status:  http.StatusConflict,
			Details: map[string]string{"slug": slugErr.Slug},
		}
	case errors.As(err, &refErr):
		return ErrorBody{
			Kind:    "referential_conflict",
			Error:   err.Error(),
			Status:  http.StatusConflict,
			Details: map[string]string{"articles": strconv.FormatInt(refErr.Count, 10)},
		}
	case errors.As(err, &enumErr):
		return ErrorBody{
			Kind:    "invalid_enum",
			Error:   err.Error(),
			Status:  http.StatusBadRequest,
			Details: map[string]string{enumErr.Field: enumErr.Value},
		}
	case errors.As(err, &verr):
		return ErrorBody{
			Kind:    "validation",
			Error:   "validation failed",
			Status:  http.StatusUnprocessableEntity,
			Details: verr.Fields(),
		}
	}
	return ErrorBody{Kind: "internal", Error: "internal server error", Status: http.StatusInternalServerError}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	body := errorResponse(err)
	if body.Status == http.StatusInternalServerError {
		h.logger.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
	}
	writeJSON(w, body.Status, body)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dest any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dest); err != nil {
		var verr domain.ValidationError
		verr.Add("body", "malformed JSON: "+err.Error())
		h.writeError(w, r, verr)
		return false
	}
	return true
}

const maxBodyBytes = 1 << 20

func pathID(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		var verr domain.ValidationError
		verr.Add(name, "must be a positive integer")
		return 0, verr
	}
	return id, nil
}

func queryInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		var verr domain.ValidationError
		verr.Add(name, "must be an integer")
		return 0, verr
	}
	return n, nil
}
