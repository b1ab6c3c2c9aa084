package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"gorm.io/gorm"

	"hms-server/internal/models"
	"hms-server/internal/utils"
)

// sniffLen is how many leading bytes are inspected to detect a MIME type.
const sniffLen = 3072

// FileStore holds the bytes of uploaded documents.
type FileStore interface {
	Save(name string, r io.Reader) (string, error)
	Remove(relPath string) error
}

// DocumentService stores uploaded documents and their metadata.
type DocumentService struct {
	db    *gorm.DB
	files FileStore
}

// NewDocumentService creates a DocumentService.
func NewDocumentService(db *gorm.DB, files FileStore) *DocumentService {
	return &DocumentService{db: db, files: files}
}

// UploadInput describes one uploaded file. Content nil means no file was sent.
type UploadInput struct {
	PatientID    string              `json:"patient" validate:"required"`
	UploaderID   string              `json:"-" validate:"required"`
	DocumentType models.DocumentType `json:"documentType" validate:"omitempty,oneof=PRESCRIPTION LAB_RESULT MEDICAL_REPORT OTHER"`
	FileName     string              `json:"fileName"`
	FileType     string              `json:"fileType"`
	Content      io.Reader           `json:"-" validate:"-"`
}

// Upload writes the file first and then its metadata, so a stored record
// always points at bytes that landed.
func (s *DocumentService) Upload(ctx context.Context, in UploadInput) (*models.DocumentView, error) {
	if in.Content == nil {
		return nil, ErrNoFile
	}
	in.PatientID = strings.TrimSpace(in.PatientID)
	if err := utils.Validate(in); err != nil {
		return nil, ValidationError(utils.FormatValidationError(err))
	}
	if in.DocumentType == "" {
		in.DocumentType = models.DocumentOther
	}
	if in.FileName == "" {
		in.FileName = "document"
	}

	content := in.Content
	if in.FileType == "" || in.FileType == "application/octet-stream" {
		var err error
		in.FileType, content, err = sniff(in.Content)
		if err != nil {
			return nil, fmt.Errorf("read upload: %w", err)
		}
	}

	relPath, err := s.files.Save(in.FileName, content)
	if err != nil {
		return nil, fmt.Errorf("store upload: %w", err)
	}

	doc := &models.Document{
		PatientID:    in.PatientID,
		UploadedByID: in.UploaderID,
		FileName:     in.FileName,
		FilePath:     relPath,
		FileType:     in.FileType,
		DocumentType: in.DocumentType,
	}
	if err := s.db.WithContext(ctx).Omit("Patient", "UploadedBy").Create(doc).Error; err != nil {
		if rmErr := s.files.Remove(relPath); rmErr != nil {
			log.Printf("documents: failed to remove orphaned file %s: %v", relPath, rmErr)
		}
		return nil, fmt.Errorf("create document: %w", err)
	}

	var uploader models.User
	err = s.db.WithContext(ctx).Scopes(selectDoctorProfile).Where("id = ?", in.UploaderID).First(&uploader).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("load uploader %s: %w", in.UploaderID, err)
	}
	if err == nil {
		doc.UploadedBy = &uploader
	}
	view := doc.View()
	return &view, nil
}

// ListForPatient returns a patient's documents, newest first.
func (s *DocumentService) ListForPatient(ctx context.Context, patientID string) ([]models.DocumentView, error) {
	var docs []models.Document
	err := s.db.WithContext(ctx).
		Where("patient_id = ?", patientID).
		Preload("UploadedBy", selectDoctorProfile).
		Order("created_at desc").
		Find(&docs).Error
	if err != nil {
		return nil, fmt.Errorf("list documents for %s: %w", patientID, err)
	}
	return documentViews(docs), nil
}

// ListAll returns every document joined with patient and uploader.
func (s *DocumentService) ListAll(ctx context.Context) ([]models.DocumentView, error) {
	var docs []models.Document
	err := s.db.WithContext(ctx).
		Preload("UploadedBy", selectDoctorProfile).
		Preload("Patient", selectPatientProfile).
		Order("created_at desc").
		Find(&docs).Error
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return documentViews(docs), nil
}

// Delete removes the metadata record. The stored file is removed on a best
// effort basis; failure is logged and the record is deleted regardless.
func (s *DocumentService) Delete(ctx context.Context, docID string) error {
	var doc models.Document
	err := s.db.WithContext(ctx).Where("id = ?", docID).First(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrDocumentNotFound
	}
	if err != nil {
		return fmt.Errorf("find document %s: %w", docID, err)
	}

	if err := s.files.Remove(doc.FilePath); err != nil {
		log.Printf("documents: failed to delete file %s: %v", doc.FilePath, err)
	}

	if err := s.db.WithContext(ctx).Delete(&doc).Error; err != nil {
		return fmt.Errorf("delete document %s: %w", docID, err)
	}
	return nil
}

// sniff detects the MIME type from the leading bytes and returns a reader
// that still yields the whole content.
func sniff(r io.Reader) (string, io.Reader, error) {
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return "", nil, err
	}
	head = head[:n]
	mtype := mimetype.Detect(head).String()
	// Drop parameters such as "; charset=utf-8".
	if i := strings.IndexByte(mtype, ';'); i >= 0 {
		mtype = mtype[:i]
	}
	return mtype, io.MultiReader(bytes.NewReader(head), r), nil
}

func documentViews(docs []models.Document) []models.DocumentView {
	out := make([]models.DocumentView, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].View())
	}
	return out
}
