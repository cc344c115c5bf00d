package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"

	"vetsched/internal/appointments/service"
	apperrors "vetsched/pkg/errors"
	httputil "vetsched/pkg/http"
	"vetsched/pkg/logger"
	"vetsched/pkg/model"
)

type AppointmentHandler struct {
	service service.AppointmentService
	log     *logger.Logger
}

func NewAppointmentHandler(service service.AppointmentService, log *logger.Logger) *AppointmentHandler {
	return &AppointmentHandler{
		service: service,
		log:     log,
	}
}

func (h *AppointmentHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/appointments", h.Create)
	router.GET("/api/v1/appointments/id/:id", h.GetByID)
	router.PATCH("/api/v1/appointments/id/:id", h.Update)
	router.PUT("/api/v1/appointments/id/:id/cancel", h.Cancel)
	router.GET("/api/v1/appointments/patient/:patientId", h.ListByPatient)
	router.GET("/api/v1/appointments/veterinarian/:veterinarianId", h.ListByVeterinarian)
	router.GET("/api/v1/appointments/date/:date", h.ListByDate)
	router.GET("/api/v1/appointments/range", h.ListByDateRange)
	router.GET("/api/v1/appointments/today", h.ListToday)
	router.GET("/api/v1/appointments/upcoming", h.ListUpcoming)
}

// actor identifies who performs the mutation; the gateway fills this header
// from the verified token.
func actor(r *http.Request) string {
	return r.Header.Get("X-User-Id")
}

// bearer is the credential passed through to the registries for validation
// and enrichment lookups.
func bearer(r *http.Request) string {
	return r.Header.Get("Authorization")
}

func (h *AppointmentHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var appt model.Appointment
	if err := json.NewDecoder(r.Body).Decode(&appt); err != nil {
		h.writeError(w, "Create", apperrors.InvalidInput("Invalid request body"))
		return
	}

	enriched, err := h.service.Create(r.Context(), &appt, actor(r), bearer(r))
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, enriched); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "error", err)
	}
}

func (h *AppointmentHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	enriched, err := h.service.GetByID(r.Context(), ps.ByName("id"), bearer(r))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, enriched); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "error", err)
	}
}

func (h *AppointmentHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var patch model.AppointmentUpdate
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		h.writeError(w, "Update", apperrors.InvalidInput("Invalid request body"))
		return
	}

	enriched, err := h.service.Update(r.Context(), ps.ByName("id"), &patch, actor(r), bearer(r))
	if err != nil {
		h.writeError(w, "Update", err)
		return
	}

	if err := httputil.WriteSuccess(w, enriched); err != nil {
		h.log.Error("failed to write success response", "handler", "Update", "error", err)
	}
}

func (h *AppointmentHandler) Cancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	enriched, err := h.service.Cancel(r.Context(), ps.ByName("id"), actor(r), bearer(r))
	if err != nil {
		h.writeError(w, "Cancel", err)
		return
	}

	if err := httputil.WriteSuccess(w, enriched); err != nil {
		h.log.Error("failed to write success response", "handler", "Cancel", "error", err)
	}
}

func (h *AppointmentHandler) ListByPatient(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	patientID, err := strconv.ParseInt(ps.ByName("patientId"), 10, 64)
	if err != nil {
		h.writeError(w, "ListByPatient", apperrors.InvalidInput("Patient ID must be a number"))
		return
	}

	enriched, err := h.service.ListByPatient(r.Context(), patientID, bearer(r))
	if err != nil {
		h.writeError(w, "ListByPatient", err)
		return
	}

	if err := httputil.WriteSuccess(w, enriched); err != nil {
		h.log.Error("failed to write success response", "handler", "ListByPatient", "error", err)
	}
}

func (h *AppointmentHandler) ListByVeterinarian(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	veterinarianID, err := strconv.ParseInt(ps.ByName("veterinarianId"), 10, 64)
	if err != nil {
		h.writeError(w, "ListByVeterinarian", apperrors.InvalidInput("Veterinarian ID must be a number"))
		return
	}

	enriched, err := h.service.ListByVeterinarian(r.Context(), veterinarianID, bearer(r))
	if err != nil {
		h.writeError(w, "ListByVeterinarian", err)
		return
	}

	if err := httputil.WriteSuccess(w, enriched); err != nil {
		h.log.Error("failed to write success response", "handler", "ListByVeterinarian", "error", err)
	}
}

func (h *AppointmentHandler) ListByDate(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	enriched, err := h.service.ListByDate(r.Context(), ps.ByName("date"), bearer(r))
	if err != nil {
		h.writeError(w, "ListByDate", err)
		return
	}

	if err := httputil.WriteSuccess(w, enriched); err != nil {
		h.log.Error("failed to write success response", "handler", "ListByDate", "error", err)
	}
}

func (h *AppointmentHandler) ListByDateRange(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	query := r.URL.Query()

	enriched, err := h.service.ListByDateRange(r.Context(), query.Get("from"), query.Get("to"), bearer(r))
	if err != nil {
		h.writeError(w, "ListByDateRange", err)
		return
	}

	if err := httputil.WriteSuccess(w, enriched); err != nil {
		h.log.Error("failed to write success response", "handler", "ListByDateRange", "error", err)
	}
}

func (h *AppointmentHandler) ListToday(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	enriched, err := h.service.ListToday(r.Context(), bearer(r))
	if err != nil {
		h.writeError(w, "ListToday", err)
		return
	}

	if err := httputil.WriteSuccess(w, enriched); err != nil {
		h.log.Error("failed to write success response", "handler", "ListToday", "error", err)
	}
}

func (h *AppointmentHandler) ListUpcoming(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	enriched, err := h.service.ListUpcoming(r.Context(), bearer(r))
	if err != nil {
		h.writeError(w, "ListUpcoming", err)
		return
	}

	if err := httputil.WriteSuccess(w, enriched); err != nil {
		h.log.Error("failed to write success response", "handler", "ListUpcoming", "error", err)
	}
}

func (h *AppointmentHandler) writeError(w http.ResponseWriter, handlerName string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handlerName, "error", writeErr)
	}
}
