package handler

import (
	"encoding/json"
	"net/http"

	"mentorhub/internal/bookings/service"
	apperrors "mentorhub/pkg/errors"
	httputil "mentorhub/pkg/http"
	"mentorhub/pkg/logger"
	"mentorhub/pkg/model"
	"mentorhub/pkg/session"

	"github.com/julienschmidt/httprouter"
)

type BookingHandler struct {
	service service.BookingService
	log     *logger.Logger
}

func NewBookingHandler(service service.BookingService, log *logger.Logger) *BookingHandler {
	return &BookingHandler{
		service: service,
		log:     log,
	}
}

// actionRequest is the shared body for lifecycle mutations. Every
// mutation must echo the version it read.
type actionRequest struct {
	BookingVersion int64  `json:"booking_version"`
	Reason         string `json:"reason,omitempty"`
	MeetingLink    string `json:"meeting_link,omitempty"`
	Rating         int    `json:"rating,omitempty"`
	Feedback       string `json:"feedback,omitempty"`
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		h.writeError(w, "Create", apperrors.Unauthorized("Authentication required"))
		return
	}

	var input service.CreateBookingInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.writeError(w, "Create", apperrors.InvalidInput("Invalid request body"))
		return
	}

	booking, err := h.service.Request(r.Context(), sess, input)
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, booking); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "error", err)
	}
}

func (h *BookingHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		h.writeError(w, "GetByID", apperrors.Unauthorized("Authentication required"))
		return
	}

	booking, err := h.service.GetByID(r.Context(), sess, ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "error", err)
	}
}

func (h *BookingHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		h.writeError(w, "List", apperrors.Unauthorized("Authentication required"))
		return
	}

	query := r.URL.Query()

	role := model.ActorMentee
	switch query.Get("role") {
	case "", "mentee":
	case "mentor":
		role = model.ActorMentor
	default:
		h.writeError(w, "List", apperrors.InvalidInput("role must be 'mentor' or 'mentee'"))
		return
	}

	filter, ok := model.ParseBookingFilter(query.Get("filter"))
	if !ok {
		h.writeError(w, "List", apperrors.InvalidInput("unknown filter: "+query.Get("filter")))
		return
	}

	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	bookings, total, err := h.service.List(r.Context(), sess, service.ListBookingsInput{
		Role:   role,
		Filter: filter,
		Search: query.Get("q"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	if err := httputil.WritePaginated(w, bookings, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "List", "error", err)
	}
}

func (h *BookingHandler) Confirm(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h.action(w, r, ps, "Confirm", func(sess *session.Session, id string, req actionRequest) (*model.Booking, error) {
		return h.service.Confirm(r.Context(), sess, id, req.BookingVersion)
	})
}

func (h *BookingHandler) Decline(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h.action(w, r, ps, "Decline", func(sess *session.Session, id string, req actionRequest) (*model.Booking, error) {
		return h.service.Decline(r.Context(), sess, id, req.BookingVersion, req.Reason)
	})
}

func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h.action(w, r, ps, "Cancel", func(sess *session.Session, id string, req actionRequest) (*model.Booking, error) {
		return h.service.Cancel(r.Context(), sess, id, req.BookingVersion, req.Reason)
	})
}

func (h *BookingHandler) AddMeetingLink(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h.action(w, r, ps, "AddMeetingLink", func(sess *session.Session, id string, req actionRequest) (*model.Booking, error) {
		return h.service.AddMeetingLink(r.Context(), sess, id, req.BookingVersion, req.MeetingLink)
	})
}

func (h *BookingHandler) AddFeedback(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h.action(w, r, ps, "AddFeedback", func(sess *session.Session, id string, req actionRequest) (*model.Booking, error) {
		return h.service.AddFeedback(r.Context(), sess, id, req.BookingVersion, req.Rating, req.Feedback)
	})
}

func (h *BookingHandler) action(
	w http.ResponseWriter,
	r *http.Request,
	ps httprouter.Params,
	name string,
	invoke func(sess *session.Session, id string, req actionRequest) (*model.Booking, error),
) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		h.writeError(w, name, apperrors.Unauthorized("Authentication required"))
		return
	}

	var req actionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, name, apperrors.InvalidInput("Invalid request body"))
		return
	}

	version, err := httputil.ExtractVersion(req.BookingVersion)
	if err != nil {
		h.writeError(w, name, err)
		return
	}
	req.BookingVersion = version

	booking, err := invoke(sess, ps.ByName("id"), req)
	if err != nil {
		h.writeError(w, name, err)
		return
	}

	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.log.Error("failed to write success response", "handler", name, "error", err)
	}
}

func (h *BookingHandler) writeError(w http.ResponseWriter, handlerName string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handlerName, "error", writeErr)
	}
}

func (h *BookingHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/bookings", h.Create)
	router.GET("/api/v1/bookings", h.List)
	router.GET("/api/v1/bookings/:id", h.GetByID)
	router.POST("/api/v1/bookings/:id/confirm", h.Confirm)
	router.POST("/api/v1/bookings/:id/decline", h.Decline)
	router.POST("/api/v1/bookings/:id/cancel", h.Cancel)
	router.POST("/api/v1/bookings/:id/meeting-link", h.AddMeetingLink)
	router.POST("/api/v1/bookings/:id/feedback", h.AddFeedback)
}
