package handler

import (
	"encoding/json"
	"net/http"

	"dometriks/internal/engineers/service"
	httputil "dometriks/pkg/http"
	"dometriks/pkg/logger"
	"dometriks/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type EngineerHandler struct {
	engineers   service.EngineerService
	assignments service.AssignmentService
	log         *logger.Logger
}

func NewEngineerHandler(engineers service.EngineerService, assignments service.AssignmentService, log *logger.Logger) *EngineerHandler {
	return &EngineerHandler{
		engineers:   engineers,
		assignments: assignments,
		log:         log,
	}
}

func (h *EngineerHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "GetAll", err)
		return
	}

	status := model.EngineerAccountStatus(r.URL.Query().Get("status"))

	engineers, total, err := h.engineers.GetAll(r.Context(), status, limit, offset)
	if err != nil {
		h.writeError(w, "GetAll", err)
		return
	}

	if err := httputil.WritePaginated(w, engineers, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "GetAll", "operation", "WritePaginated", "error", err)
	}
}

func (h *EngineerHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	engineer, err := h.engineers.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	h.writeSuccess(w, "GetByID", engineer)
}

func (h *EngineerHandler) UpdateLocation(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var update model.LocationUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		h.writeBadBody(w, "UpdateLocation")
		return
	}

	engineer, err := h.engineers.UpdateLocation(r.Context(), ps.ByName("id"), &update)
	if err != nil {
		h.writeError(w, "UpdateLocation", err)
		return
	}

	h.writeSuccess(w, "UpdateLocation", engineer)
}

func (h *EngineerHandler) UpdateStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var update model.EngineerStatusUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		h.writeBadBody(w, "UpdateStatus")
		return
	}

	engineer, err := h.engineers.UpdateStatus(r.Context(), ps.ByName("id"), update.Status)
	if err != nil {
		h.writeError(w, "UpdateStatus", err)
		return
	}

	h.writeSuccess(w, "UpdateStatus", engineer)
}

func (h *EngineerHandler) Dashboard(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	dashboard, err := h.engineers.Dashboard(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "Dashboard", err)
		return
	}

	h.writeSuccess(w, "Dashboard", dashboard)
}

func (h *EngineerHandler) NearbyBookings(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	bookings, err := h.assignments.NearbyBookings(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "NearbyBookings", err)
		return
	}

	h.writeSuccess(w, "NearbyBookings", bookings)
}

func (h *EngineerHandler) AcceptBooking(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	booking, err := h.assignments.Claim(r.Context(), ps.ByName("id"), ps.ByName("bookingId"))
	if err != nil {
		h.writeError(w, "AcceptBooking", err)
		return
	}

	h.writeSuccess(w, "AcceptBooking", booking)
}

func (h *EngineerHandler) UpdateBookingStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var update model.BookingStatusUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		h.writeBadBody(w, "UpdateBookingStatus")
		return
	}

	booking, err := h.assignments.MarkSurveyDone(r.Context(), ps.ByName("id"), ps.ByName("bookingId"), update.Status)
	if err != nil {
		h.writeError(w, "UpdateBookingStatus", err)
		return
	}

	h.writeSuccess(w, "UpdateBookingStatus", booking)
}

func (h *EngineerHandler) CompleteBooking(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req model.CompletionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeBadBody(w, "CompleteBooking")
		return
	}

	booking, err := h.assignments.Complete(r.Context(), ps.ByName("id"), ps.ByName("bookingId"), &req)
	if err != nil {
		h.writeError(w, "CompleteBooking", err)
		return
	}

	h.writeSuccess(w, "CompleteBooking", booking)
}

func (h *EngineerHandler) MyJobs(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	bookings, err := h.assignments.MyJobs(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "MyJobs", err)
		return
	}

	h.writeSuccess(w, "MyJobs", bookings)
}

func (h *EngineerHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *EngineerHandler) writeSuccess(w http.ResponseWriter, handler string, data any) {
	if err := httputil.WriteSuccess(w, data); err != nil {
		h.log.Error("failed to write success response", "handler", handler, "operation", "WriteSuccess", "error", err)
	}
}

func (h *EngineerHandler) writeBadBody(w http.ResponseWriter, handler string) {
	if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
		Error: "Invalid request body",
	}); writeErr != nil {
		h.log.Error("failed to write JSON response", "handler", handler, "operation", "WriteJSON", "error", writeErr)
	}
}

func (h *EngineerHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/engineers", h.GetAll)
	router.GET("/api/v1/engineers/:id", h.GetByID)
	router.PATCH("/api/v1/engineers/:id/status", h.UpdateStatus)
	router.PATCH("/api/v1/engineers/:id/location", h.UpdateLocation)
	router.GET("/api/v1/engineers/:id/dashboard", h.Dashboard)
	router.GET("/api/v1/engineers/:id/nearby-bookings", h.NearbyBookings)
	router.GET("/api/v1/engineers/:id/my-jobs", h.MyJobs)
	router.PATCH("/api/v1/engineers/:id/bookings/:bookingId/accept", h.AcceptBooking)
	router.PATCH("/api/v1/engineers/:id/bookings/:bookingId/status", h.UpdateBookingStatus)
	router.POST("/api/v1/engineers/:id/bookings/:bookingId/complete", h.CompleteBooking)
}
