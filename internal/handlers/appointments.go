package handlers

import (
	"github.com/gin-gonic/gin"

	"hms-server/internal/middleware"
	"hms-server/internal/models"
	"hms-server/internal/services"
	"hms-server/internal/utils"
)

// AppointmentHandler handles appointment-related requests.
type AppointmentHandler struct {
	Appointments *services.AppointmentService
}

// NewAppointmentHandler creates a new AppointmentHandler.
func NewAppointmentHandler(appointments *services.AppointmentService) *AppointmentHandler {
	return &AppointmentHandler{Appointments: appointments}
}

// UpdateStatusRequest represents the request body for a status change.
type UpdateStatusRequest struct {
	Status models.AppointmentStatus `json:"status"`
}

// CreateAppointment books an appointment for the calling patient.
func (h *AppointmentHandler) CreateAppointment(c *gin.Context) {
	patientID, ok := caller(c)
	if !ok {
		return
	}
	var req services.CreateAppointmentInput
	if !utils.BindJSON(c, &req) {
		return
	}

	appt, err := h.Appointments.Create(c.Request.Context(), patientID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Created(c, "Appointment booked successfully", appt)
}

// GetMyAppointments lists the caller's appointments.
func (h *AppointmentHandler) GetMyAppointments(c *gin.Context) {
	userID, ok := caller(c)
	if !ok {
		return
	}
	role, _ := middleware.GetUserRoleFromContext(c)

	appts, err := h.Appointments.ListForCaller(c.Request.Context(), userID, role)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, "Appointments fetched successfully", appts)
}

// GetAllAppointments lists every appointment (admin).
func (h *AppointmentHandler) GetAllAppointments(c *gin.Context) {
	appts, err := h.Appointments.ListAll(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, "Appointments fetched successfully", appts)
}

// CancelAppointment deletes the caller's pending appointment.
func (h *AppointmentHandler) CancelAppointment(c *gin.Context) {
	userID, ok := caller(c)
	if !ok {
		return
	}

	if err := h.Appointments.Cancel(c.Request.Context(), c.Param("id"), userID); err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, "Appointment cancelled", nil)
}

// UpdateAppointmentStatus lets the owning doctor set the status.
func (h *AppointmentHandler) UpdateAppointmentStatus(c *gin.Context) {
	doctorID, ok := caller(c)
	if !ok {
		return
	}
	var req UpdateStatusRequest
	if !utils.BindJSON(c, &req) {
		return
	}

	appt, err := h.Appointments.UpdateStatus(c.Request.Context(), c.Param("id"), doctorID, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, "Appointment status updated", appt)
}
