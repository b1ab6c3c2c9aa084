package client

import "time"

// User is the sanitized account returned by the auth endpoints.
type User struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Role           string    `json:"role"`
	MedicalHistory string    `json:"medicalHistory,omitempty"`
	Specialty      string    `json:"specialty,omitempty"`
	IsActive       bool      `json:"isActive"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Profile is the reduced view of a user joined onto appointments and documents.
type Profile struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email,omitempty"`
	Specialty string `json:"specialty,omitempty"`
}

// Doctor is an entry of the public doctor directory.
type Doctor struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Specialty string `json:"specialty"`
}

// Appointment is a booking joined with the counterpart's profile.
type Appointment struct {
	ID        string    `json:"id"`
	PatientID string    `json:"patientId"`
	DoctorID  string    `json:"doctorId"`
	Date      time.Time `json:"date"`
	Reason    string    `json:"reason"`
	Status    string    `json:"status"`
	Patient   *Profile  `json:"patient,omitempty"`
	Doctor    *Profile  `json:"doctor,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Document is the metadata of an uploaded file.
type Document struct {
	ID           string    `json:"id"`
	PatientID    string    `json:"patientId"`
	FileName     string    `json:"fileName"`
	FilePath     string    `json:"filePath"`
	FileType     string    `json:"fileType"`
	DocumentType string    `json:"documentType"`
	Patient      *Profile  `json:"patient,omitempty"`
	UploadedBy   *Profile  `json:"uploadedBy,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// RegisterRequest is the public signup payload. Role defaults to PATIENT.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

// BookingRequest asks for a slot with a doctor at Date.
type BookingRequest struct {
	DoctorID string    `json:"doctor"`
	Date     time.Time `json:"date"`
	Reason   string    `json:"reason"`
}

// CreateUserRequest is the admin account creation payload. Specialty only
// matters for doctors and defaults to OPD.
type CreateUserRequest struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	Password       string `json:"password"`
	Role           string `json:"role"`
	Specialty      string `json:"specialty,omitempty"`
	MedicalHistory string `json:"medicalHistory,omitempty"`
}

type authResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
