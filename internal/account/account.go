// Package account provides registration, credential checks, and profile
// management for citizen and admin users. Credentials are compared in
// plaintext, matching the original design; this is not a security layer.
package account

import (
	"errors"
	"fmt"
	"strings"

	"grievgo/backend/internal/config"
	"grievgo/backend/internal/models"
)

var (
	// ErrCredentialMismatch is deliberately generic: callers must not reveal
	// which field was wrong, to avoid account enumeration.
	ErrCredentialMismatch = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("an account with this email already exists")
	ErrValidation         = errors.New("required field missing or invalid")
	ErrNotFound           = errors.New("account not found")
)

// Storage defines the storage methods required by the account service.
// Keeping it narrow lets the service be tested without the full store.
type Storage interface {
	SaveUser(user *models.User) error
	GetUserByEmail(email string) (*models.User, error)
}

// Service handles account business logic on top of the storage layer.
type Service struct {
	Storage Storage
}

// NewService creates a new account service.
func NewService(s Storage) *Service {
	return &Service{Storage: s}
}

// RegisterCitizen creates a citizen account. The phone number doubles as the
// login credential.
func (s *Service) RegisterCitizen(name, email, phone string) (*models.User, error) {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(email) == "" || strings.TrimSpace(phone) == "" {
		return nil, fmt.Errorf("%w: name, email and phone are required", ErrValidation)
	}
	if err := s.ensureEmailFree(email); err != nil {
		return nil, err
	}

	user := &models.User{
		Name:  name,
		Email: email,
		Role:  models.RoleCitizen,
		Phone: phone,
	}
	if err := s.Storage.SaveUser(user); err != nil {
		return nil, err
	}
	return user, nil
}

// RegisterAdmin creates a departmental administrator account scoped to one
// fixed department.
func (s *Service) RegisterAdmin(name, email, password, department string) (*models.User, error) {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(email) == "" || password == "" {
		return nil, fmt.Errorf("%w: name, email and password are required", ErrValidation)
	}
	if !config.IsKnownDepartment(department) {
		return nil, fmt.Errorf("%w: unknown department %q", ErrValidation, department)
	}
	if err := s.ensureEmailFree(email); err != nil {
		return nil, err
	}

	user := &models.User{
		Name:       name,
		Email:      email,
		Role:       models.RoleAdmin,
		Department: department,
		Password:   password,
	}
	if err := s.Storage.SaveUser(user); err != nil {
		return nil, err
	}
	return user, nil
}

// LoginCitizen checks a citizen's email + phone pair.
func (s *Service) LoginCitizen(email, phone string) (*models.User, error) {
	user, err := s.Storage.GetUserByEmail(email)
	if err != nil {
		return nil, err
	}
	if user == nil || !user.IsCitizen() || user.Phone != phone {
		return nil, ErrCredentialMismatch
	}
	return user, nil
}

// LoginAdmin checks an admin's email + password pair.
func (s *Service) LoginAdmin(email, password string) (*models.User, error) {
	user, err := s.Storage.GetUserByEmail(email)
	if err != nil {
		return nil, err
	}
	if user == nil || !user.IsAdmin() || user.Password != password {
		return nil, ErrCredentialMismatch
	}
	return user, nil
}

// UpdateProfile edits the mutable profile fields. Empty arguments leave the
// current value in place. Email and role are fixed after registration.
func (s *Service) UpdateProfile(email, name, phone string) (*models.User, error) {
	user, err := s.Storage.GetUserByEmail(email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, email)
	}

	if strings.TrimSpace(name) != "" {
		user.Name = name
	}
	if strings.TrimSpace(phone) != "" && user.IsCitizen() {
		user.Phone = phone
	}
	if err := s.Storage.SaveUser(user); err != nil {
		return nil, err
	}
	return user, nil
}

// ChangePassword replaces an admin's password after verifying the old one.
func (s *Service) ChangePassword(email, oldPassword, newPassword string) error {
	if newPassword == "" {
		return fmt.Errorf("%w: new password is required", ErrValidation)
	}

	user, err := s.Storage.GetUserByEmail(email)
	if err != nil {
		return err
	}
	if user == nil || !user.IsAdmin() || user.Password != oldPassword {
		return ErrCredentialMismatch
	}

	user.Password = newPassword
	return s.Storage.SaveUser(user)
}

// Get returns the account for an email, or ErrNotFound.
func (s *Service) Get(email string) (*models.User, error) {
	user, err := s.Storage.GetUserByEmail(email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, email)
	}
	return user, nil
}

// FlaggedForReview reports whether the account has accrued enough misuse
// strikes to warrant manual review.
func FlaggedForReview(u *models.User) bool {
	return u.MisuseStrikes >= config.StrikeReviewThreshold
}

func (s *Service) ensureEmailFree(email string) error {
	existing, err := s.Storage.GetUserByEmail(email)
	if err != nil {
		return err
	}
	if existing != nil {
		return ErrEmailTaken
	}
	return nil
}
