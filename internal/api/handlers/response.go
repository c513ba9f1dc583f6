package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	domainerrors "github.com/Cheertaboi/tips-console/internal/errors"
)

const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error   domainerrors.Code `json:"error"`
	Message string            `json:"message"`
	Details any               `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps err to its status and error body. Errors outside the
// domain set are logged and reported as INTERNAL without their cause.
func writeError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	var de *domainerrors.Error
	if !errors.As(err, &de) {
		de = domainerrors.Internal("internal error", err)
	}
	status := de.HTTPStatus()
	if status >= http.StatusInternalServerError {
		logger.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", chimw.GetReqID(r.Context()),
			"error", err,
		)
	}
	writeJSON(w, status, errorResponse{Error: de.Code, Message: de.Message, Details: de.Details})
}

// decodeJSON decodes a bounded request body into v, rejecting unknown fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return domainerrors.Validation("request body is empty")
		}
		return domainerrors.Validationf("invalid request body: %v", err)
	}
	return nil
}

func intParam(r *http.Request, name string) (int, error) {
	raw := chi.URLParam(r, name)
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domainerrors.ValidationWithDetails("invalid path parameter",
			map[string]string{name: "must be an integer"})
	}
	return n, nil
}
