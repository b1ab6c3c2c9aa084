package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"hms-server/internal/models"
	"hms-server/internal/utils"
)

// AppointmentService books appointments and drives their status.
type AppointmentService struct {
	db *gorm.DB
}

// NewAppointmentService creates an AppointmentService.
func NewAppointmentService(db *gorm.DB) *AppointmentService {
	return &AppointmentService{db: db}
}

// CreateAppointmentInput is a patient's booking request.
type CreateAppointmentInput struct {
	DoctorID string    `json:"doctor" validate:"required"`
	Date     time.Time `json:"date" validate:"required"`
	Reason   string    `json:"reason" validate:"required,max=500"`
}

func selectDoctorProfile(db *gorm.DB) *gorm.DB {
	return db.Select("id", "name", "specialty")
}

func selectPatientProfile(db *gorm.DB) *gorm.DB {
	return db.Select("id", "name", "email")
}

// Create books a slot for patientID. Both unique indexes are checked by the
// single insert, so of two concurrent bookings for one slot only one succeeds.
// Dates are kept at millisecond precision, the finest every dialect stores.
func (s *AppointmentService) Create(ctx context.Context, patientID string, in CreateAppointmentInput) (*models.AppointmentView, error) {
	in.Reason = strings.TrimSpace(in.Reason)
	if err := utils.Validate(in); err != nil {
		return nil, ValidationError(utils.FormatValidationError(err))
	}

	var doctor models.User
	err := s.db.WithContext(ctx).Scopes(selectDoctorProfile).
		Where("id = ? AND role = ?", in.DoctorID, models.RoleDoctor).
		First(&doctor).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrDoctorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find doctor %s: %w", in.DoctorID, err)
	}

	appt := &models.Appointment{
		PatientID: patientID,
		DoctorID:  doctor.ID,
		Date:      in.Date.UTC().Truncate(time.Millisecond),
		Reason:    in.Reason,
		Status:    models.StatusPending,
	}
	if err := s.db.WithContext(ctx).Omit("Patient", "Doctor").Create(appt).Error; err != nil {
		if isDuplicateKey(err) {
			return nil, ErrSlotTaken
		}
		return nil, fmt.Errorf("create appointment: %w", err)
	}

	appt.Doctor = &doctor
	view := appt.View()
	return &view, nil
}

// ListForCaller returns the caller's appointments, newest date first, joined
// with the counterpart's profile.
func (s *AppointmentService) ListForCaller(ctx context.Context, callerID string, role models.Role) ([]models.AppointmentView, error) {
	q := s.db.WithContext(ctx).Order("date desc")
	switch role {
	case models.RolePatient:
		q = q.Where("patient_id = ?", callerID).Preload("Doctor", selectDoctorProfile)
	case models.RoleDoctor:
		q = q.Where("doctor_id = ?", callerID).Preload("Patient", selectPatientProfile)
	default:
		return nil, ErrRoleNotSupported
	}

	var appts []models.Appointment
	if err := q.Find(&appts).Error; err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	return appointmentViews(appts), nil
}

// ListAll returns every appointment joined with both parties.
func (s *AppointmentService) ListAll(ctx context.Context) ([]models.AppointmentView, error) {
	var appts []models.Appointment
	err := s.db.WithContext(ctx).
		Preload("Doctor", selectDoctorProfile).
		Preload("Patient", selectPatientProfile).
		Order("date desc").
		Find(&appts).Error
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	return appointmentViews(appts), nil
}

// Cancel deletes a PENDING appointment owned by callerID.
func (s *AppointmentService) Cancel(ctx context.Context, apptID, callerID string) error {
	appt, err := s.find(ctx, apptID)
	if err != nil {
		return err
	}
	if appt.PatientID != callerID {
		return ErrNotOwner
	}
	if appt.Status != models.StatusPending {
		return ErrNotPending
	}

	// The status guard keeps a confirmation that raced this request.
	res := s.db.WithContext(ctx).
		Where("id = ? AND status = ?", apptID, models.StatusPending).
		Delete(&models.Appointment{})
	if res.Error != nil {
		return fmt.Errorf("delete appointment %s: %w", apptID, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotPending
	}
	return nil
}

// UpdateStatus sets the status of an appointment owned by doctor callerID.
// Any settable status may replace any other.
func (s *AppointmentService) UpdateStatus(ctx context.Context, apptID, callerID string, status models.AppointmentStatus) (*models.AppointmentView, error) {
	if !status.Settable() {
		return nil, ErrInvalidStatus
	}
	appt, err := s.find(ctx, apptID)
	if err != nil {
		return nil, err
	}
	if appt.DoctorID != callerID {
		return nil, ErrNotOwner
	}

	err = s.db.WithContext(ctx).Model(appt).Update("status", status).Error
	if err != nil {
		return nil, fmt.Errorf("update appointment %s status: %w", apptID, err)
	}
	appt.Status = status
	view := appt.View()
	return &view, nil
}

func (s *AppointmentService) find(ctx context.Context, id string) (*models.Appointment, error) {
	var appt models.Appointment
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&appt).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrAppointmentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find appointment %s: %w", id, err)
	}
	return &appt, nil
}

func appointmentViews(appts []models.Appointment) []models.AppointmentView {
	out := make([]models.AppointmentView, 0, len(appts))
	for i := range appts {
		out = append(out, appts[i].View())
	}
	return out
}
