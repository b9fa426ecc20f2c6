package models

import (
	"time"

	"github.com/lib/pq" // needed for pq.StringArray
)

// Status is the lifecycle state of a grievance.
type Status string

const (
	StatusFiled       Status = "Filed"
	StatusUnderReview Status = "Under Review"
	StatusApproved    Status = "Approved"
	StatusRejected    Status = "Rejected"
)

// IsTerminal reports whether no further transition may originate from s.
func (s Status) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// IsValid reports whether s is one of the four known lifecycle states.
func (s Status) IsValid() bool {
	switch s {
	case StatusFiled, StatusUnderReview, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Grievance is a citizen-filed complaint tracked through a fixed lifecycle.
// The ID is a zero-padded sequential token ("GRV001") scoped to the entire
// grievance set; ComplainantEmail is the join key back to the User record.
type Grievance struct {
	ID               string `gorm:"primaryKey" json:"id"`
	ComplainantName  string `gorm:"type:text;not null" json:"complainantName"`
	ComplainantEmail string `gorm:"type:text;not null;index" json:"complainantEmail"`
	// DateFiled is a calendar date ("2006-01-02"), not a timestamp. Immutable.
	DateFiled    string `gorm:"type:text;not null" json:"dateFiled"`
	Organization string `gorm:"type:text;not null" json:"organization"`
	Description  string `gorm:"type:text;not null" json:"description"`
	Status       Status `gorm:"type:text;not null" json:"status"`
	// AISolution is set at most by explicit admin action; empty until generated.
	AISolution string `gorm:"type:text" json:"aiSolution,omitempty"`

	// DocumentNames mirrors the attachment filenames for quick intake-time
	// dedupe; the bytes live in GrievanceDocument rows.
	DocumentNames pq.StringArray      `gorm:"type:text[]" json:"documentNames,omitempty"`
	Documents     []GrievanceDocument `gorm:"foreignKey:GrievanceID;constraint:OnDelete:CASCADE" json:"documents,omitempty"`

	History []HistoryEntry `gorm:"foreignKey:GrievanceID;constraint:OnDelete:CASCADE" json:"history"`

	// Optional geolocation captured at filing time. Immutable.
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// CurrentHistory returns the most recent history entry, or nil when the
// trail is empty (which never happens for a grievance created through the
// lifecycle engine).
func (g *Grievance) CurrentHistory() *HistoryEntry {
	if len(g.History) == 0 {
		return nil
	}
	return &g.History[len(g.History)-1]
}

// HistoryEntry is one append-only record in a grievance's status trail.
type HistoryEntry struct {
	ID          uint   `gorm:"primaryKey" json:"-"`
	GrievanceID string `gorm:"index;not null" json:"-"`
	Status      Status `gorm:"type:text;not null" json:"status"`
	// Date is a calendar date ("2006-01-02").
	Date            string `gorm:"type:text;not null" json:"date"`
	Notes           string `gorm:"type:text" json:"notes"`
	RejectionReason string `gorm:"type:text" json:"rejectionReason,omitempty"`
}

// GrievanceDocument is an opaque attachment. Content is never parsed.
type GrievanceDocument struct {
	ID          uint   `gorm:"primaryKey" json:"-"`
	GrievanceID string `gorm:"index;not null" json:"-"`
	Name        string `gorm:"type:text;not null" json:"name"`
	Content     []byte `gorm:"type:bytea" json:"content,omitempty"`
}
