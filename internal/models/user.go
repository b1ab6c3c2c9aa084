package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Role enum
type Role string

const (
	RolePatient Role = "PATIENT"
	RoleDoctor  Role = "DOCTOR"
	RoleAdmin   Role = "ADMIN"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RolePatient, RoleDoctor, RoleAdmin:
		return true
	}
	return false
}

// Specialty is a doctor's department.
type Specialty string

const (
	SpecialtyOPD           Specialty = "OPD"
	SpecialtySkinCare      Specialty = "Skin care"
	SpecialtyENT           Specialty = "ENT"
	SpecialtyDermatologist Specialty = "Dermatologist"
	SpecialtyOther         Specialty = "OTHER"
)

// Valid reports whether s is one of the known specialties.
func (s Specialty) Valid() bool {
	switch s {
	case SpecialtyOPD, SpecialtySkinCare, SpecialtyENT, SpecialtyDermatologist, SpecialtyOther:
		return true
	}
	return false
}

// User represents a user in the system
type User struct {
	BaseModel
	Name           string    `gorm:"size:100;not null" json:"name"`
	Email          string    `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Password       string    `gorm:"size:255;not null" json:"-"` // Never send password in JSON
	Role           Role      `gorm:"size:20;default:'PATIENT'" json:"role"`
	MedicalHistory string    `gorm:"type:text" json:"medicalHistory"`
	Specialty      Specialty `gorm:"size:50;default:'OPD'" json:"specialty"`
	IsActive       bool      `gorm:"default:true" json:"isActive"`
}

// UserSanitized represents the user data that is safe to send in API responses.
type UserSanitized struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Role           Role      `json:"role"`
	MedicalHistory string    `json:"medicalHistory,omitempty"`
	Specialty      Specialty `json:"specialty,omitempty"`
	IsActive       bool      `json:"isActive"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// PublicProfile is the projection of a user that other parties may see.
// Doctors expose their specialty, patients their email.
type PublicProfile struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Specialty Specialty `json:"specialty,omitempty"`
}

// SetPassword hashes a password and sets it on the user
func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashedPassword)
	return nil
}

// CheckPassword compares a password with the user's hashed password
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
	return err == nil
}

// Sanitize creates a UserSanitized struct from a User model, excluding sensitive data.
func (u *User) Sanitize() UserSanitized {
	return UserSanitized{
		ID:             u.ID,
		Name:           u.Name,
		Email:          u.Email,
		Role:           u.Role,
		MedicalHistory: u.MedicalHistory,
		Specialty:      u.Specialty,
		IsActive:       u.IsActive,
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
	}
}

// DoctorProfile returns {id, name, specialty}. A nil user yields nil.
func (u *User) DoctorProfile() *PublicProfile {
	if u == nil {
		return nil
	}
	return &PublicProfile{ID: u.ID, Name: u.Name, Specialty: u.Specialty}
}

// PatientProfile returns {id, name, email}. A nil user yields nil.
func (u *User) PatientProfile() *PublicProfile {
	if u == nil {
		return nil
	}
	return &PublicProfile{ID: u.ID, Name: u.Name, Email: u.Email}
}
