// Package lifecycle owns the grievance state machine: creation with
// near-duplicate rejection, status transitions with an append-only history
// trail, rejection reasons, and misuse-strike accrual on the filer's account.
package lifecycle

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"grievgo/backend/internal/config"
	"grievgo/backend/internal/models"
	"grievgo/backend/internal/similarity"
	"grievgo/backend/internal/storage"
)

// Failure values callers branch on. These are returned, never panicked;
// the caller decides the user-facing message.
var (
	ErrDuplicate         = errors.New("description too similar to a prior grievance by the same filer")
	ErrNotFound          = errors.New("grievance not found")
	ErrInvalidTransition = errors.New("no transition may originate from a terminal status")
	ErrValidation        = errors.New("required field missing or invalid")
	ErrSpam              = errors.New("description classified as spam")
)

// SpamClassifier is the external AI classification collaborator. It must
// fail open: implementations return false on any error.
type SpamClassifier interface {
	IsSpam(text string) bool
}

// Draft holds everything a citizen submits when filing a grievance.
type Draft struct {
	ComplainantName  string
	ComplainantEmail string
	Organization     string
	Description      string
	Documents        []models.GrievanceDocument
	Latitude         *float64
	Longitude        *float64
}

// Service handles the business logic of the grievance lifecycle.
type Service struct {
	Storage    storage.Storage
	Classifier SpamClassifier

	// Now is swappable in tests; defaults to time.Now.
	Now func() time.Time
}

// NewService creates a new lifecycle service. classifier may be nil, which
// disables the spam gate.
func NewService(s storage.Storage, classifier SpamClassifier) *Service {
	return &Service{
		Storage:    s,
		Classifier: classifier,
		Now:        time.Now,
	}
}

// Create validates and persists a new grievance.
//
// The draft's description is compared against every prior grievance filed
// under the same email; any bigram similarity above the threshold fails with
// ErrDuplicate and performs no mutation. On success the grievance starts
// Filed with a single seeded history entry dated today.
func (s *Service) Create(draft Draft) (*models.Grievance, error) {
	if err := s.validate(draft); err != nil {
		return nil, err
	}

	if s.Classifier != nil && s.Classifier.IsSpam(draft.Description) {
		return nil, ErrSpam
	}

	email := models.NormalizeEmail(draft.ComplainantEmail)
	prior, err := s.Storage.GetGrievancesByEmail(email)
	if err != nil {
		return nil, err
	}
	for _, g := range prior {
		if similarity.Score(draft.Description, g.Description) > config.SimilarityThreshold {
			return nil, fmt.Errorf("%w (matches %s)", ErrDuplicate, g.ID)
		}
	}

	seq, err := s.Storage.NextGrievanceSeq()
	if err != nil {
		return nil, fmt.Errorf("failed to assign grievance id: %w", err)
	}

	today := s.today()
	grievance := &models.Grievance{
		ID:               FormatID(seq),
		ComplainantName:  draft.ComplainantName,
		ComplainantEmail: email,
		DateFiled:        today,
		Organization:     draft.Organization,
		Description:      draft.Description,
		Status:           models.StatusFiled,
		Latitude:         draft.Latitude,
		Longitude:        draft.Longitude,
		History: []models.HistoryEntry{{
			Status: models.StatusFiled,
			Date:   today,
			Notes:  config.FiledNote,
		}},
	}
	attachDocuments(grievance, draft.Documents)

	if err := s.Storage.CreateGrievance(grievance); err != nil {
		return nil, err
	}

	s.publish(models.GrievanceEvent{
		Kind:             "filed",
		GrievanceID:      grievance.ID,
		Organization:     grievance.Organization,
		Status:           grievance.Status,
		ComplainantEmail: grievance.ComplainantEmail,
	})

	return grievance, nil
}

// Transition moves a grievance to newStatus, appending a history entry.
//
// Terminal statuses (Approved, Rejected) accept no further transitions;
// attempting one is a hard ErrInvalidTransition. A rejection with the
// false-complaint reason increments the filer's misuse strikes by exactly
// one — no other rejection reason carries a strike.
func (s *Service) Transition(grievanceID string, newStatus models.Status, reason, notes string) (*models.Grievance, error) {
	if !newStatus.IsValid() || newStatus == models.StatusFiled {
		return nil, fmt.Errorf("%w: cannot transition to %q", ErrInvalidTransition, newStatus)
	}

	grievance, err := s.Storage.GetGrievanceByID(grievanceID)
	if err != nil {
		return nil, err
	}
	if grievance == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, grievanceID)
	}
	if grievance.Status.IsTerminal() {
		return nil, fmt.Errorf("%w: %s is already %s", ErrInvalidTransition, grievanceID, grievance.Status)
	}

	if newStatus != models.StatusRejected {
		reason = ""
	}
	if notes == "" {
		notes = fmt.Sprintf("Status updated to %s by department admin", newStatus)
	}

	entry := models.HistoryEntry{
		GrievanceID:     grievance.ID,
		Status:          newStatus,
		Date:            s.today(),
		Notes:           notes,
		RejectionReason: reason,
	}
	if err := s.Storage.AppendHistory(&entry); err != nil {
		return nil, err
	}
	grievance.History = append(grievance.History, entry)
	grievance.Status = newStatus
	if err := s.Storage.SaveGrievance(grievance); err != nil {
		return nil, err
	}

	if newStatus == models.StatusRejected && reason == config.ReasonFalseComplaint {
		strikes, err := s.Storage.IncrementMisuseStrikes(grievance.ComplainantEmail)
		if err != nil {
			// The transition itself already happened; losing a strike is
			// reported, not rolled back.
			log.Printf("ERROR: Failed to record misuse strike for %s: %v", grievance.ComplainantEmail, err)
		} else if strikes >= config.StrikeReviewThreshold {
			log.Printf("INFO: account %s reached %d misuse strikes, flagged for review", grievance.ComplainantEmail, strikes)
		}
	}

	s.publish(models.GrievanceEvent{
		Kind:             "transitioned",
		GrievanceID:      grievance.ID,
		Organization:     grievance.Organization,
		Status:           newStatus,
		RejectionReason:  reason,
		ComplainantEmail: grievance.ComplainantEmail,
	})

	return grievance, nil
}

// AttachSolution sets the grievance's AI-drafted solution. Overwriting is
// allowed and idempotent; status and history are untouched.
func (s *Service) AttachSolution(grievanceID, solutionText string) (*models.Grievance, error) {
	grievance, err := s.Storage.GetGrievanceByID(grievanceID)
	if err != nil {
		return nil, err
	}
	if grievance == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, grievanceID)
	}

	grievance.AISolution = solutionText
	if err := s.Storage.SaveGrievance(grievance); err != nil {
		return nil, err
	}

	s.publish(models.GrievanceEvent{
		Kind:         "solution",
		GrievanceID:  grievance.ID,
		Organization: grievance.Organization,
		Status:       grievance.Status,
	})

	return grievance, nil
}

// FormatID renders a sequence number as a grievance id ("GRV001").
// The pad is a minimum width; the id keeps growing past 999.
func FormatID(seq int64) string {
	return fmt.Sprintf("%s%0*d", config.GrievanceIDPrefix, config.GrievanceIDWidth, seq)
}

func (s *Service) validate(draft Draft) error {
	if strings.TrimSpace(draft.ComplainantName) == "" {
		return fmt.Errorf("%w: complainant name", ErrValidation)
	}
	if strings.TrimSpace(draft.ComplainantEmail) == "" {
		return fmt.Errorf("%w: complainant email", ErrValidation)
	}
	if strings.TrimSpace(draft.Description) == "" {
		return fmt.Errorf("%w: description", ErrValidation)
	}
	if !config.IsKnownDepartment(draft.Organization) {
		return fmt.Errorf("%w: unknown department %q", ErrValidation, draft.Organization)
	}
	return nil
}

// attachDocuments copies documents onto the grievance, deduplicating by
// filename at intake time (first occurrence wins).
func attachDocuments(g *models.Grievance, docs []models.GrievanceDocument) {
	seen := make(map[string]bool, len(docs))
	for _, doc := range docs {
		if doc.Name == "" || seen[doc.Name] {
			continue
		}
		seen[doc.Name] = true
		g.Documents = append(g.Documents, models.GrievanceDocument{
			Name:    doc.Name,
			Content: doc.Content,
		})
		g.DocumentNames = append(g.DocumentNames, doc.Name)
	}
}

func (s *Service) today() string {
	return s.Now().Format("2006-01-02")
}

// publish is best-effort: a lost event never fails the operation itself.
func (s *Service) publish(ev models.GrievanceEvent) {
	if err := s.Storage.PublishGrievanceEvent(ev); err != nil {
		log.Printf("ERROR: Failed to publish grievance event %s/%s: %v", ev.Kind, ev.GrievanceID, err)
	}
}
