package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"hms-server/internal/models"
	"hms-server/internal/utils"
)

// TokenMinter issues session tokens for a user id.
type TokenMinter interface {
	Issue(userID string) (string, error)
}

// UserService persists users and checks their credentials.
type UserService struct {
	db     *gorm.DB
	tokens TokenMinter
}

// NewUserService creates a UserService.
func NewUserService(db *gorm.DB, tokens TokenMinter) *UserService {
	return &UserService{db: db, tokens: tokens}
}

// RegisterInput is a self-service signup.
type RegisterInput struct {
	Name     string      `json:"name" validate:"required,max=100"`
	Email    string      `json:"email" validate:"required,email,max=255"`
	Password string      `json:"password" validate:"required,min=8,max=72"`
	Role     models.Role `json:"role" validate:"omitempty,oneof=PATIENT DOCTOR ADMIN"`
}

// CreateUserInput is an admin-initiated account creation.
type CreateUserInput struct {
	Name           string           `json:"name" validate:"required,max=100"`
	Email          string           `json:"email" validate:"required,email,max=255"`
	Password       string           `json:"password" validate:"required,min=8,max=72"`
	Role           models.Role      `json:"role" validate:"required,oneof=PATIENT DOCTOR ADMIN"`
	Specialty      models.Specialty `json:"specialty" validate:"omitempty,oneof='OPD' 'Skin care' 'ENT' 'Dermatologist' 'OTHER'"`
	MedicalHistory string           `json:"medicalHistory" validate:"max=10000"`
}

// AuthResult is returned by Register and Authenticate.
type AuthResult struct {
	Token string               `json:"token"`
	User  models.UserSanitized `json:"user"`
}

// DoctorSummary is the projection used by patient-facing doctor pickers.
type DoctorSummary struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	Specialty models.Specialty `json:"specialty"`
}

const maxPasswordBytes = 72

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a user and issues a session token for it.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)
	if err := utils.Validate(in); err != nil {
		return nil, ValidationError(utils.FormatValidationError(err))
	}
	if in.Role == "" {
		in.Role = models.RolePatient
	}

	user := &models.User{
		Name:      in.Name,
		Email:     in.Email,
		Role:      in.Role,
		Specialty: models.SpecialtyOPD,
		IsActive:  true,
	}
	if err := s.insert(ctx, user, in.Password); err != nil {
		return nil, err
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &AuthResult{Token: token, User: user.Sanitize()}, nil
}

// Authenticate checks an email and password pair. Unknown email and wrong
// password fail identically.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*AuthResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, ValidationError("Please provide an email and password")
	}

	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	if !user.CheckPassword(password) {
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &AuthResult{Token: token, User: user.Sanitize()}, nil
}

// GetByID loads a user without its password hash.
func (s *UserService) GetByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Omit("password").Where("id = ?", id).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user %s: %w", id, err)
	}
	return &user, nil
}

// ListAll returns every user, newest first.
func (s *UserService) ListAll(ctx context.Context) ([]models.UserSanitized, error) {
	var users []models.User
	if err := s.db.WithContext(ctx).Omit("password").Order("created_at desc").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	out := make([]models.UserSanitized, 0, len(users))
	for i := range users {
		out = append(out, users[i].Sanitize())
	}
	return out, nil
}

// ListDoctors returns the public summary of every doctor.
func (s *UserService) ListDoctors(ctx context.Context) ([]DoctorSummary, error) {
	doctors := make([]DoctorSummary, 0)
	err := s.db.WithContext(ctx).Model(&models.User{}).
		Select("id", "name", "specialty").
		Where("role = ?", models.RoleDoctor).
		Order("name asc").
		Scan(&doctors).Error
	if err != nil {
		return nil, fmt.Errorf("list doctors: %w", err)
	}
	return doctors, nil
}

// CreateAsAdmin creates a user of any role without issuing a token.
func (s *UserService) CreateAsAdmin(ctx context.Context, in CreateUserInput) (*models.UserSanitized, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)
	if err := utils.Validate(in); err != nil {
		return nil, ValidationError(utils.FormatValidationError(err))
	}
	if in.Specialty == "" {
		in.Specialty = models.SpecialtyOPD
	}

	user := &models.User{
		Name:           in.Name,
		Email:          in.Email,
		Role:           in.Role,
		Specialty:      in.Specialty,
		MedicalHistory: in.MedicalHistory,
		IsActive:       true,
	}
	if err := s.insert(ctx, user, in.Password); err != nil {
		return nil, err
	}
	sanitized := user.Sanitize()
	return &sanitized, nil
}

// insert hashes the password and creates the row. Email uniqueness is left
// to the unique index so concurrent signups cannot both succeed.
func (s *UserService) insert(ctx context.Context, user *models.User, password string) error {
	// bcrypt rejects inputs over 72 bytes; the validator's max counts runes.
	if len(password) > maxPasswordBytes {
		return ErrPasswordTooLong
	}
	if err := user.SetPassword(password); err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if isDuplicateKey(err) {
			return ErrEmailTaken
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}
