package router

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/controlai/controlai/internal/apperror"
)

const (
	maxBodyBytes = 1 << 20
	retryAfter   = "1"
)

type errorResponse struct {
	Error string `json:"error"`
}

func (rt *router) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if body == nil {
		return
	}

	if err := json.NewEncoder(w).Encode(body); err != nil {
		rt.logger.Error("Failed to encode response", "error", err)
	}
}

// writeError maps err to a status code. Inconsistent aggregates are logged as
// defects, other internal failures as errors.
func (rt *router) writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := apperror.KindOf(err)
	status := statusFor(kind)

	switch kind {
	case apperror.KindInconsistent:
		rt.logger.Error("Aggregate invariant broken",
			"defect", true,
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
	case apperror.KindInternal:
		rt.logger.Error("Request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	case apperror.KindUnavailable:
		w.Header().Set("Retry-After", retryAfter)
		rt.logger.Warn("Storage busy", "method", r.Method, "path", r.URL.Path, "error", err)
	case apperror.KindInvalid, apperror.KindNotFound, apperror.KindUnauthorized:
	}

	rt.writeJSON(w, status, errorResponse{Error: apperror.Message(err)})
}

func statusFor(kind apperror.Kind) int {
	switch kind {
	case apperror.KindInvalid:
		return http.StatusBadRequest
	case apperror.KindUnauthorized:
		return http.StatusUnauthorized
	case apperror.KindNotFound:
		return http.StatusNotFound
	case apperror.KindUnavailable:
		return http.StatusServiceUnavailable
	case apperror.KindInconsistent, apperror.KindInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperror.Invalid("request body is required")
		}
		return apperror.Invalid(fmt.Sprintf("invalid request body: %v", err))
	}

	return nil
}

func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperror.Invalid("invalid " + name)
	}
	return id, nil
}
