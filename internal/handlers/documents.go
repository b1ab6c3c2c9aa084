package handlers

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"hms-server/internal/models"
	"hms-server/internal/services"
	"hms-server/internal/utils"
)

// Form fields accepted for the uploaded file, in order of preference.
var uploadFields = []string{"document", "file"}

// DocumentHandler handles document upload and retrieval.
type DocumentHandler struct {
	Documents *services.DocumentService
	MaxBytes  int64
}

// NewDocumentHandler creates a new DocumentHandler.
func NewDocumentHandler(documents *services.DocumentService, maxBytes int64) *DocumentHandler {
	return &DocumentHandler{Documents: documents, MaxBytes: maxBytes}
}

// UploadDocument stores a file a doctor uploads for a patient.
func (h *DocumentHandler) UploadDocument(c *gin.Context) {
	uploaderID, ok := caller(c)
	if !ok {
		return
	}
	if h.MaxBytes > 0 {
		// Allow some room for the other multipart fields.
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxBytes+1<<20)
	}

	file, header, err := formFile(c)
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		utils.BadRequest(c, fmt.Sprintf("File exceeds the %d MB limit", h.MaxBytes>>20))
		return
	case err != nil && !errors.Is(err, http.ErrMissingFile):
		utils.ValidationError(c, "Invalid multipart form")
		return
	}

	in := services.UploadInput{
		PatientID:    c.PostForm("patient"),
		UploaderID:   uploaderID,
		DocumentType: models.DocumentType(c.PostForm("documentType")),
	}
	if file != nil {
		defer file.Close()
		if h.MaxBytes > 0 && header.Size > h.MaxBytes {
			utils.BadRequest(c, fmt.Sprintf("File exceeds the %d MB limit", h.MaxBytes>>20))
			return
		}
		in.FileName = header.Filename
		in.FileType = header.Header.Get("Content-Type")
		in.Content = file
	}

	doc, err := h.Documents.Upload(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Created(c, "Document uploaded successfully", doc)
}

func formFile(c *gin.Context) (multipart.File, *multipart.FileHeader, error) {
	var lastErr error
	for _, field := range uploadFields {
		file, header, err := c.Request.FormFile(field)
		if err == nil {
			return file, header, nil
		}
		lastErr = err
		if !errors.Is(err, http.ErrMissingFile) {
			return nil, nil, err
		}
	}
	return nil, nil, lastErr
}

// GetMyDocuments lists the calling patient's documents.
func (h *DocumentHandler) GetMyDocuments(c *gin.Context) {
	patientID, ok := caller(c)
	if !ok {
		return
	}
	h.listForPatient(c, patientID)
}

// GetPatientDocuments lets a doctor list any patient's documents.
func (h *DocumentHandler) GetPatientDocuments(c *gin.Context) {
	h.listForPatient(c, c.Param("patientId"))
}

func (h *DocumentHandler) listForPatient(c *gin.Context, patientID string) {
	docs, err := h.Documents.ListForPatient(c.Request.Context(), patientID)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, "Documents fetched successfully", docs)
}

// GetAllDocuments lists every document (admin).
func (h *DocumentHandler) GetAllDocuments(c *gin.Context) {
	docs, err := h.Documents.ListAll(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, "Documents fetched successfully", docs)
}

// DeleteDocument removes a document and its file (admin).
func (h *DocumentHandler) DeleteDocument(c *gin.Context) {
	if err := h.Documents.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, "Document removed", nil)
}
