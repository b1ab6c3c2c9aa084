package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// Kind classifies a service failure so the transport layer can pick a status code.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindBadRequest
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
)

// Error is a failure with a user-facing message.
type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func newError(kind Kind, msg string) *Error { return &Error{Kind: kind, Msg: msg} }

// ValidationError wraps a message describing a malformed or incomplete input.
func ValidationError(msg string) *Error { return newError(KindValidation, msg) }

// KindOf reports the kind of err, or KindInternal for anything unclassified.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

var (
	ErrEmailTaken          = newError(KindConflict, "User already exists")
	ErrInvalidCredentials  = newError(KindUnauthorized, "Invalid credentials")
	ErrUserNotFound        = newError(KindNotFound, "User not found")
	ErrPasswordTooLong     = newError(KindValidation, "password must be at most 72 bytes")
	ErrDoctorNotFound      = newError(KindNotFound, "Doctor not found")
	ErrSlotTaken           = newError(KindConflict, "Appointment time slot is already booked.")
	ErrAppointmentNotFound = newError(KindNotFound, "Appointment not found")
	ErrNotOwner            = newError(KindUnauthorized, "User not authorized")
	ErrNotPending          = newError(KindBadRequest, "Cannot cancel a confirmed or completed appointment")
	ErrInvalidStatus       = newError(KindBadRequest, "Invalid status")
	ErrRoleNotSupported    = newError(KindBadRequest, "No appointments found for this role.")
	ErrNoFile              = newError(KindBadRequest, "Please upload a file")
	ErrDocumentNotFound    = newError(KindNotFound, "Document not found")
)

// isDuplicateKey reports a unique index violation. Dialects with error
// translation return gorm.ErrDuplicatedKey; the message check covers the rest.
func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate entry") ||
		strings.Contains(msg, "duplicate key")
}
