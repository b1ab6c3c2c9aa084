package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"sync"
)

// ErrNotAuthenticated is returned by calls that need a token when the
// session holds none.
var ErrNotAuthenticated = errors.New("client: not authenticated")

// Session holds the client-side identity. It is safe for concurrent use.
type Session struct {
	client *Client

	mu    sync.RWMutex
	token string
	user  *User
}

// NewSession starts a session, optionally restored from a stored token.
// Call Load to fetch the user behind a restored token.
func (c *Client) NewSession(token string) *Session {
	return &Session{client: c, token: token}
}

// Token returns the bearer token, or "" when signed out.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// User returns a copy of the signed-in user, or nil.
func (s *Session) User() *User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// Authenticated reports whether the session holds both a token and a user.
func (s *Session) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != "" && s.user != nil
}

func (s *Session) set(token string, user *User) {
	s.mu.Lock()
	s.token, s.user = token, user
	s.mu.Unlock()
}

func (s *Session) clear() { s.set("", nil) }

// Register signs up and signs in.
func (s *Session) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	var res authResult
	if err := s.client.doJSON(ctx, http.MethodPost, "/auth/register", "", req, &res); err != nil {
		return nil, err
	}
	s.set(res.Token, &res.User)
	return s.User(), nil
}

// Login signs in with an email and password.
func (s *Session) Login(ctx context.Context, email, password string) (*User, error) {
	var res authResult
	body := map[string]string{"email": email, "password": password}
	if err := s.client.doJSON(ctx, http.MethodPost, "/auth/login", "", body, &res); err != nil {
		return nil, err
	}
	s.set(res.Token, &res.User)
	return s.User(), nil
}

// Load resolves the stored token into a user. A 401 clears the session.
func (s *Session) Load(ctx context.Context) (*User, error) {
	token := s.Token()
	if token == "" {
		return nil, ErrNotAuthenticated
	}
	var user User
	err := s.client.doJSON(ctx, http.MethodGet, "/auth/me", token, nil, &user)
	var apiErr *APIError
	switch {
	case errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized:
		s.clear()
		return nil, err
	case err != nil:
		return nil, err
	}
	s.set(token, &user)
	return s.User(), nil
}

// Logout revokes the token server-side and always clears local state.
func (s *Session) Logout(ctx context.Context) error {
	token := s.Token()
	defer s.clear()
	if token == "" {
		return nil
	}
	return s.client.doJSON(ctx, http.MethodPost, "/auth/logout", token, nil, nil)
}

func (s *Session) authed() (string, error) {
	token := s.Token()
	if token == "" {
		return "", ErrNotAuthenticated
	}
	return token, nil
}

func (s *Session) call(ctx context.Context, method, path string, in, out interface{}) error {
	token, err := s.authed()
	if err != nil {
		return err
	}
	return s.client.doJSON(ctx, method, path, token, in, out)
}

// Doctors lists the doctor directory.
func (s *Session) Doctors(ctx context.Context) ([]Doctor, error) {
	var doctors []Doctor
	if err := s.call(ctx, http.MethodGet, "/users/doctors", nil, &doctors); err != nil {
		return nil, err
	}
	return doctors, nil
}

// Users lists every account. Admin only.
func (s *Session) Users(ctx context.Context) ([]User, error) {
	var users []User
	if err := s.call(ctx, http.MethodGet, "/users", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// CreateUser creates an account of any role. Admin only.
func (s *Session) CreateUser(ctx context.Context, req CreateUserRequest) (*User, error) {
	var user User
	if err := s.call(ctx, http.MethodPost, "/users", req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// BookAppointment books a slot with a doctor. Patient only.
func (s *Session) BookAppointment(ctx context.Context, req BookingRequest) (*Appointment, error) {
	var appt Appointment
	if err := s.call(ctx, http.MethodPost, "/appointments", req, &appt); err != nil {
		return nil, err
	}
	return &appt, nil
}

// MyAppointments lists the caller's appointments, newest date first.
func (s *Session) MyAppointments(ctx context.Context) ([]Appointment, error) {
	return s.appointments(ctx, "/appointments/my")
}

// AllAppointments lists every appointment with both parties. Admin only.
func (s *Session) AllAppointments(ctx context.Context) ([]Appointment, error) {
	return s.appointments(ctx, "/appointments/all")
}

func (s *Session) appointments(ctx context.Context, path string) ([]Appointment, error) {
	var appts []Appointment
	if err := s.call(ctx, http.MethodGet, path, nil, &appts); err != nil {
		return nil, err
	}
	return appts, nil
}

// CancelAppointment deletes one of the caller's pending appointments.
func (s *Session) CancelAppointment(ctx context.Context, id string) error {
	return s.call(ctx, http.MethodDelete, "/appointments/"+url.PathEscape(id), nil, nil)
}

// UpdateAppointmentStatus sets the status of an appointment the calling
// doctor owns.
func (s *Session) UpdateAppointmentStatus(ctx context.Context, id, status string) (*Appointment, error) {
	var appt Appointment
	body := map[string]string{"status": status}
	if err := s.call(ctx, http.MethodPut, "/appointments/"+url.PathEscape(id)+"/status", body, &appt); err != nil {
		return nil, err
	}
	return &appt, nil
}

// UploadDocument sends content as a multipart form. An empty documentType
// lets the server default it.
func (s *Session) UploadDocument(ctx context.Context, patientID, documentType, fileName string, content io.Reader) (*Document, error) {
	token, err := s.authed()
	if err != nil {
		return nil, err
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	if err := writer.WriteField("patient", patientID); err != nil {
		return nil, fmt.Errorf("write form: %w", err)
	}
	if documentType != "" {
		if err := writer.WriteField("documentType", documentType); err != nil {
			return nil, fmt.Errorf("write form: %w", err)
		}
	}
	part, err := writer.CreateFormFile("document", fileName)
	if err != nil {
		return nil, fmt.Errorf("write form: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, fmt.Errorf("copy file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("write form: %w", err)
	}

	var doc Document
	if err := s.client.do(ctx, http.MethodPost, "/documents", token, body, writer.FormDataContentType(), &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// MyDocuments lists the calling patient's documents.
func (s *Session) MyDocuments(ctx context.Context) ([]Document, error) {
	return s.documents(ctx, "/documents/my")
}

// PatientDocuments lists a patient's documents. Doctor only.
func (s *Session) PatientDocuments(ctx context.Context, patientID string) ([]Document, error) {
	return s.documents(ctx, "/documents/patient/"+url.PathEscape(patientID))
}

// AllDocuments lists every document. Admin only.
func (s *Session) AllDocuments(ctx context.Context) ([]Document, error) {
	return s.documents(ctx, "/documents/all")
}

func (s *Session) documents(ctx context.Context, path string) ([]Document, error) {
	var docs []Document
	if err := s.call(ctx, http.MethodGet, path, nil, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

// DeleteDocument removes a document and its file. Admin only.
func (s *Session) DeleteDocument(ctx context.Context, id string) error {
	return s.call(ctx, http.MethodDelete, "/documents/"+url.PathEscape(id), nil, nil)
}
