package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Cheertaboi/tips-console/internal/composition"
	"github.com/Cheertaboi/tips-console/internal/models"
	"github.com/Cheertaboi/tips-console/internal/service"
	"github.com/Cheertaboi/tips-console/internal/validation"
)

// --- Request / Response DTOs ---

type AddTipsRequest struct {
	TipIDs []string `json:"tip_ids" validate:"required,min=1,max=100,dive,required"`
}

type MoveTipRequest struct {
	Direction string `json:"direction" validate:"required,oneof=up down"`
}

type EditFieldRequest struct {
	Field string `json:"field" validate:"required,oneof=match league prediction odds risk status date"`
	Value string `json:"value"`
}

type sessionResponse struct {
	composition.Session
	Dirty bool `json:"dirty"`
}

type addTipsResponse struct {
	sessionResponse
	service.AddResult
}

type saveResponse struct {
	Package models.Package `json:"package"`
}

func newSessionResponse(s composition.Session) sessionResponse {
	return sessionResponse{Session: s, Dirty: s.Dirty()}
}

// --- Handler struct & constructor ---

type SessionHandler struct {
	composer  *service.Composer
	validator *validation.Validator
	logger    *slog.Logger
}

func NewSessionHandler(composer *service.Composer, v *validation.Validator, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{composer: composer, validator: v, logger: logger}
}

// decode reads and validates a request body.
func (h *SessionHandler) decode(w http.ResponseWriter, r *http.Request, v any) error {
	if err := decodeJSON(w, r, v); err != nil {
		return err
	}
	return h.validator.Validate(v)
}

// --- Handlers ---

// Open handles POST /api/v1/packages/{id}/sessions
func (h *SessionHandler) Open(w http.ResponseWriter, r *http.Request) {
	s, err := h.composer.Open(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, newSessionResponse(s))
}

// Get handles GET /api/v1/sessions/{sid}
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	s, err := h.composer.Session(chi.URLParam(r, "sid"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, newSessionResponse(s))
}

// AddTips handles POST /api/v1/sessions/{sid}/tips
func (h *SessionHandler) AddTips(w http.ResponseWriter, r *http.Request) {
	var req AddTipsRequest
	if err := h.decode(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	s, res, err := h.composer.AddTips(chi.URLParam(r, "sid"), req.TipIDs)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, addTipsResponse{sessionResponse: newSessionResponse(s), AddResult: res})
}

// RemoveTip handles DELETE /api/v1/sessions/{sid}/tips/{index}
func (h *SessionHandler) RemoveTip(w http.ResponseWriter, r *http.Request) {
	index, err := intParam(r, "index")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	h.respond(w, r)(h.composer.RemoveTip(chi.URLParam(r, "sid"), index))
}

// MoveTip handles POST /api/v1/sessions/{sid}/tips/{index}/move
func (h *SessionHandler) MoveTip(w http.ResponseWriter, r *http.Request) {
	index, err := intParam(r, "index")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	var req MoveTipRequest
	if err := h.decode(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	h.respond(w, r)(h.composer.MoveTip(chi.URLParam(r, "sid"), index, composition.Direction(req.Direction)))
}

// DuplicateTip handles POST /api/v1/sessions/{sid}/tips/{index}/duplicate
func (h *SessionHandler) DuplicateTip(w http.ResponseWriter, r *http.Request) {
	index, err := intParam(r, "index")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	h.respond(w, r)(h.composer.DuplicateTip(chi.URLParam(r, "sid"), index))
}

// EditField handles PATCH /api/v1/sessions/{sid}/tips/{index}
func (h *SessionHandler) EditField(w http.ResponseWriter, r *http.Request) {
	index, err := intParam(r, "index")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	var req EditFieldRequest
	if err := h.decode(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	h.respond(w, r)(h.composer.EditField(chi.URLParam(r, "sid"), index, composition.Field(req.Field), req.Value))
}

// Save handles POST /api/v1/sessions/{sid}/save
func (h *SessionHandler) Save(w http.ResponseWriter, r *http.Request) {
	pkg, err := h.composer.Save(r.Context(), chi.URLParam(r, "sid"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, saveResponse{Package: pkg})
}

// Cancel handles DELETE /api/v1/sessions/{sid}
func (h *SessionHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	if err := h.composer.Cancel(chi.URLParam(r, "sid")); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// respond writes the session or the error of a composer edit.
func (h *SessionHandler) respond(w http.ResponseWriter, r *http.Request) func(composition.Session, error) {
	return func(s composition.Session, err error) {
		if err != nil {
			writeError(w, r, h.logger, err)
			return
		}
		writeJSON(w, http.StatusOK, newSessionResponse(s))
	}
}
