package handler

import (
	"encoding/json"
	"net/http"

	"mentorhub/internal/availability/service"
	apperrors "mentorhub/pkg/errors"
	httputil "mentorhub/pkg/http"
	"mentorhub/pkg/logger"
	"mentorhub/pkg/model"
	"mentorhub/pkg/session"

	"github.com/julienschmidt/httprouter"
)

type AvailabilityHandler struct {
	service service.AvailabilityService
	log     *logger.Logger
}

func NewAvailabilityHandler(service service.AvailabilityService, log *logger.Logger) *AvailabilityHandler {
	return &AvailabilityHandler{
		service: service,
		log:     log,
	}
}

type replaceRequest struct {
	Slots   []*model.AvailabilitySlot `json:"slots"`
	Version int64                     `json:"version"`
}

// GetForMentor returns an approved mentor's published availability.
func (h *AvailabilityHandler) GetForMentor(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	availability, err := h.service.GetPublic(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetForMentor", err)
		return
	}

	if err := httputil.WriteSuccess(w, availability); err != nil {
		h.log.Error("failed to write success response", "handler", "GetForMentor", "error", err)
	}
}

// GetOwn returns the caller's availability, version included, for edit
// flows.
func (h *AvailabilityHandler) GetOwn(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		h.writeError(w, "GetOwn", apperrors.Unauthorized("Authentication required"))
		return
	}

	availability, err := h.service.Get(r.Context(), sess.UserID)
	if err != nil {
		h.writeError(w, "GetOwn", err)
		return
	}

	if err := httputil.WriteSuccess(w, availability); err != nil {
		h.log.Error("failed to write success response", "handler", "GetOwn", "error", err)
	}
}

func (h *AvailabilityHandler) AddSlot(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		h.writeError(w, "AddSlot", apperrors.Unauthorized("Authentication required"))
		return
	}

	var slot model.AvailabilitySlot
	if err := json.NewDecoder(r.Body).Decode(&slot); err != nil {
		h.writeError(w, "AddSlot", apperrors.InvalidInput("Invalid request body"))
		return
	}

	created, err := h.service.AddSlot(r.Context(), sess, &slot)
	if err != nil {
		h.writeError(w, "AddSlot", err)
		return
	}

	if err := httputil.WriteCreated(w, created); err != nil {
		h.log.Error("failed to write created response", "handler", "AddSlot", "error", err)
	}
}

func (h *AvailabilityHandler) DeleteSlot(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		h.writeError(w, "DeleteSlot", apperrors.Unauthorized("Authentication required"))
		return
	}

	if err := h.service.DeleteSlot(r.Context(), sess, ps.ByName("slotId")); err != nil {
		h.writeError(w, "DeleteSlot", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *AvailabilityHandler) Replace(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		h.writeError(w, "Replace", apperrors.Unauthorized("Authentication required"))
		return
	}

	var req replaceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Replace", apperrors.InvalidInput("Invalid request body"))
		return
	}

	availability, err := h.service.Replace(r.Context(), sess, service.ReplaceInput{
		Slots:   req.Slots,
		Version: req.Version,
	})
	if err != nil {
		h.writeError(w, "Replace", err)
		return
	}

	if err := httputil.WriteSuccess(w, availability); err != nil {
		h.log.Error("failed to write success response", "handler", "Replace", "error", err)
	}
}

func (h *AvailabilityHandler) writeError(w http.ResponseWriter, handlerName string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handlerName, "error", writeErr)
	}
}

func (h *AvailabilityHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/mentors/:id/availability", h.GetForMentor)
	router.GET("/api/v1/availability", h.GetOwn)
	router.PUT("/api/v1/availability", h.Replace)
	router.POST("/api/v1/availability/slots", h.AddSlot)
	router.DELETE("/api/v1/availability/slots/:slotId", h.DeleteSlot)
}
