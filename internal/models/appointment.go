package models

import (
	"time"
)

// AppointmentStatus represents the status of an appointment
type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "PENDING"
	StatusConfirmed AppointmentStatus = "CONFIRMED"
	StatusCompleted AppointmentStatus = "COMPLETED"
	StatusCancelled AppointmentStatus = "CANCELLED"
)

// Settable reports whether a doctor may set the appointment to s.
// PENDING is only ever the initial state.
func (s AppointmentStatus) Settable() bool {
	switch s {
	case StatusConfirmed, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Appointment is a booking between a patient and a doctor. Neither party may
// hold two appointments at the same instant; the two unique indexes enforce it.
type Appointment struct {
	BaseModel
	PatientID string            `gorm:"size:36;not null;uniqueIndex:idx_appointments_patient_date" json:"patientId"`
	DoctorID  string            `gorm:"size:36;not null;uniqueIndex:idx_appointments_doctor_date" json:"doctorId"`
	Date      time.Time         `gorm:"not null;uniqueIndex:idx_appointments_patient_date;uniqueIndex:idx_appointments_doctor_date" json:"date"`
	Reason    string            `gorm:"size:500;not null" json:"reason"`
	Status    AppointmentStatus `gorm:"size:20;default:'PENDING';index" json:"status"`

	// Relations (not always preloaded)
	Patient *User `gorm:"foreignKey:PatientID" json:"-"`
	Doctor  *User `gorm:"foreignKey:DoctorID" json:"-"`
}

// AppointmentView is the API representation of an appointment with whichever
// counterpart profiles were loaded.
type AppointmentView struct {
	ID        string            `json:"id"`
	PatientID string            `json:"patientId"`
	DoctorID  string            `json:"doctorId"`
	Date      time.Time         `json:"date"`
	Reason    string            `json:"reason"`
	Status    AppointmentStatus `json:"status"`
	Patient   *PublicProfile    `json:"patient,omitempty"`
	Doctor    *PublicProfile    `json:"doctor,omitempty"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

// View converts the appointment for API responses.
func (a *Appointment) View() AppointmentView {
	return AppointmentView{
		ID:        a.ID,
		PatientID: a.PatientID,
		DoctorID:  a.DoctorID,
		Date:      a.Date,
		Reason:    a.Reason,
		Status:    a.Status,
		Patient:   a.Patient.PatientProfile(),
		Doctor:    a.Doctor.DoctorProfile(),
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}
