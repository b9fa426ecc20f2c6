package models

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Roles a user account can hold.
const (
	RoleCitizen = "Citizen"
	RoleAdmin   = "Admin"
)

// User представляє обліковий запис у системі: громадянин, що подає скарги,
// або адміністратор департаменту, що їх розглядає.
type User struct {
	ID   string `gorm:"primaryKey" json:"id"` // UUID
	Name string `gorm:"type:text;not null" json:"name"`
	// Email is the case-insensitive unique key; stored lowercased.
	Email string `gorm:"uniqueIndex;not null" json:"email"`
	Role  string `gorm:"type:text;not null" json:"role"`

	// Citizen-only: the phone number doubles as the login credential.
	Phone string `json:"phone,omitempty"`

	// Admin-only fields. Password is compared in plaintext client-side in the
	// original design; kept as-is rather than inventing a security model.
	Department string `json:"department,omitempty"`
	Password   string `json:"password,omitempty"`

	// MisuseStrikes is incremented only by the lifecycle engine when a
	// grievance is rejected as a false complaint. Never decremented.
	MisuseStrikes int `json:"misuseStrikes,omitempty"`
}

// BeforeCreate — це хук GORM, який викликається перед створенням запису.
// Він генерує UUID, якщо ID ще не встановлено, і нормалізує email.
func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	u.Email = NormalizeEmail(u.Email)
	return
}

// NormalizeEmail lowercases and trims an email for case-insensitive matching.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// IsCitizen reports whether the account is a citizen account.
func (u *User) IsCitizen() bool { return u.Role == RoleCitizen }

// IsAdmin reports whether the account is a departmental administrator.
func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }
