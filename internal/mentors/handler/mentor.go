package handler

import (
	"encoding/json"
	"net/http"

	"mentorhub/internal/mentors/service"
	apperrors "mentorhub/pkg/errors"
	httputil "mentorhub/pkg/http"
	"mentorhub/pkg/logger"
	"mentorhub/pkg/model"
	"mentorhub/pkg/session"

	"github.com/julienschmidt/httprouter"
)

type MentorHandler struct {
	service service.MentorService
	log     *logger.Logger
}

func NewMentorHandler(service service.MentorService, log *logger.Logger) *MentorHandler {
	return &MentorHandler{
		service: service,
		log:     log,
	}
}

type rejectRequest struct {
	Reason string `json:"reason"`
}

func (h *MentorHandler) Apply(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		h.writeError(w, "Apply", apperrors.Unauthorized("Authentication required"))
		return
	}

	var input service.ApplyInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.writeError(w, "Apply", apperrors.InvalidInput("Invalid request body"))
		return
	}

	profile, err := h.service.Apply(r.Context(), sess, input)
	if err != nil {
		h.writeError(w, "Apply", err)
		return
	}

	if err := httputil.WriteCreated(w, profile); err != nil {
		h.log.Error("failed to write created response", "handler", "Apply", "error", err)
	}
}

func (h *MentorHandler) UpdateOwn(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		h.writeError(w, "UpdateOwn", apperrors.Unauthorized("Authentication required"))
		return
	}

	var input service.UpdateProfileInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.writeError(w, "UpdateOwn", apperrors.InvalidInput("Invalid request body"))
		return
	}

	profile, err := h.service.UpdateOwn(r.Context(), sess, input)
	if err != nil {
		h.writeError(w, "UpdateOwn", err)
		return
	}

	if err := httputil.WriteSuccess(w, profile); err != nil {
		h.log.Error("failed to write success response", "handler", "UpdateOwn", "error", err)
	}
}

func (h *MentorHandler) Browse(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "Browse", err)
		return
	}

	query := r.URL.Query()
	profiles, total, err := h.service.Browse(r.Context(), service.BrowseInput{
		Search:    query.Get("q"),
		Expertise: query.Get("expertise"),
		Limit:     limit,
		Offset:    offset,
	})
	if err != nil {
		h.writeError(w, "Browse", err)
		return
	}

	if err := httputil.WritePaginated(w, profiles, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "Browse", "error", err)
	}
}

func (h *MentorHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		h.writeError(w, "GetByID", apperrors.Unauthorized("Authentication required"))
		return
	}

	profile, err := h.service.GetByID(r.Context(), sess, ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, profile); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "error", err)
	}
}

func (h *MentorHandler) ListForModeration(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		h.writeError(w, "ListForModeration", apperrors.Unauthorized("Authentication required"))
		return
	}

	status := model.MentorPending
	if raw := r.URL.Query().Get("status"); raw != "" {
		switch model.MentorStatus(raw) {
		case model.MentorPending, model.MentorApproved, model.MentorRejected:
			status = model.MentorStatus(raw)
		default:
			h.writeError(w, "ListForModeration", apperrors.InvalidInput("status must be pending, approved or rejected"))
			return
		}
	}

	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "ListForModeration", err)
		return
	}

	profiles, total, err := h.service.ListForModeration(r.Context(), sess, status, limit, offset)
	if err != nil {
		h.writeError(w, "ListForModeration", err)
		return
	}

	if err := httputil.WritePaginated(w, profiles, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "ListForModeration", "error", err)
	}
}

func (h *MentorHandler) Approve(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		h.writeError(w, "Approve", apperrors.Unauthorized("Authentication required"))
		return
	}

	profile, err := h.service.Approve(r.Context(), sess, ps.ByName("id"))
	if err != nil {
		h.writeError(w, "Approve", err)
		return
	}

	if err := httputil.WriteSuccess(w, profile); err != nil {
		h.log.Error("failed to write success response", "handler", "Approve", "error", err)
	}
}

func (h *MentorHandler) Reject(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		h.writeError(w, "Reject", apperrors.Unauthorized("Authentication required"))
		return
	}

	var req rejectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Reject", apperrors.InvalidInput("Invalid request body"))
		return
	}

	profile, err := h.service.Reject(r.Context(), sess, ps.ByName("id"), req.Reason)
	if err != nil {
		h.writeError(w, "Reject", err)
		return
	}

	if err := httputil.WriteSuccess(w, profile); err != nil {
		h.log.Error("failed to write success response", "handler", "Reject", "error", err)
	}
}

func (h *MentorHandler) writeError(w http.ResponseWriter, handlerName string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handlerName, "error", writeErr)
	}
}

func (h *MentorHandler) RegisterRoutes(router *httprouter.Router) {
	// Applying is a POST on the collection; a static /mentors/apply
	// would collide with the :id wildcard.
	router.GET("/api/v1/mentors", h.Browse)
	router.POST("/api/v1/mentors", h.Apply)
	router.GET("/api/v1/mentors/:id", h.GetByID)
	router.PUT("/api/v1/me/mentor-profile", h.UpdateOwn)

	router.GET("/api/v1/admin/mentors", h.ListForModeration)
	router.POST("/api/v1/admin/mentors/:id/approve", h.Approve)
	router.POST("/api/v1/admin/mentors/:id/reject", h.Reject)
}
