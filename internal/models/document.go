package models

import (
	"time"
)

// DocumentType represents the kind of uploaded document
type DocumentType string

const (
	DocumentPrescription  DocumentType = "PRESCRIPTION"
	DocumentLabResult     DocumentType = "LAB_RESULT"
	DocumentMedicalReport DocumentType = "MEDICAL_REPORT"
	DocumentOther         DocumentType = "OTHER"
)

// Valid reports whether t is one of the known document types.
func (t DocumentType) Valid() bool {
	switch t {
	case DocumentPrescription, DocumentLabResult, DocumentMedicalReport, DocumentOther:
		return true
	}
	return false
}

// Document holds metadata for a file a doctor uploaded for a patient.
// The bytes live in file storage under FilePath.
type Document struct {
	BaseModel
	PatientID    string       `gorm:"size:36;not null;index" json:"patientId"`
	UploadedByID string       `gorm:"size:36;not null;index" json:"uploadedById"`
	FileName     string       `gorm:"size:255;not null" json:"fileName"`
	FilePath     string       `gorm:"size:512;not null" json:"filePath"`
	FileType     string       `gorm:"size:100;not null" json:"fileType"`
	DocumentType DocumentType `gorm:"size:30;default:'OTHER'" json:"documentType"`

	// Relations
	Patient    *User `gorm:"foreignKey:PatientID" json:"-"`
	UploadedBy *User `gorm:"foreignKey:UploadedByID" json:"-"`
}

// DocumentView is the API representation of a document.
type DocumentView struct {
	ID           string         `json:"id"`
	PatientID    string         `json:"patientId"`
	FileName     string         `json:"fileName"`
	FilePath     string         `json:"filePath"`
	FileType     string         `json:"fileType"`
	DocumentType DocumentType   `json:"documentType"`
	Patient      *PublicProfile `json:"patient,omitempty"`
	UploadedBy   *PublicProfile `json:"uploadedBy,omitempty"`
	CreatedAt    time.Time      `json:"createdAt"`
}

// View converts the document for API responses.
func (d *Document) View() DocumentView {
	return DocumentView{
		ID:           d.ID,
		PatientID:    d.PatientID,
		FileName:     d.FileName,
		FilePath:     d.FilePath,
		FileType:     d.FileType,
		DocumentType: d.DocumentType,
		Patient:      d.Patient.PatientProfile(),
		UploadedBy:   d.UploadedBy.DoctorProfile(),
		CreatedAt:    d.CreatedAt,
	}
}
