package lifecycle_test

import (
	"testing"
	"time"

	"grievgo/backend/internal/config"
	"grievgo/backend/internal/lifecycle"
	"grievgo/backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// fixedClock pins "today" so date assertions are deterministic.
var fixedClock = func() time.Time {
	return time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
}

const fixedDate = "2026-08-30"

// spamClassifier is a stub lifecycle.SpamClassifier with a fixed verdict.
type spamClassifier struct{ verdict bool }

func (c spamClassifier) IsSpam(string) bool { return c.verdict }

func newService(s *MockStorage) *lifecycle.Service {
	svc := lifecycle.NewService(s, nil)
	svc.Now = fixedClock
	return svc
}

func validDraft() lifecycle.Draft {
	return lifecycle.Draft{
		ComplainantName:  "Alex Ray",
		ComplainantEmail: "alex.ray@example.com",
		Organization:     "Municipal Corporation",
		Description:      "Pothole on Main Street near 12th Ave",
	}
}

// TestCreateSeedsFiledHistory verifies a fresh grievance starts Filed with
// exactly one history entry dated today.
func TestCreateSeedsFiledHistory(t *testing.T) {
	storageMock := new(MockStorage)
	storageMock.On("GetGrievancesByEmail", "alex.ray@example.com").Return([]models.Grievance{}, nil)
	storageMock.On("NextGrievanceSeq").Return(int64(1), nil)
	storageMock.On("CreateGrievance", mock.AnythingOfType("*models.Grievance")).Return(nil)
	storageMock.On("PublishGrievanceEvent", mock.AnythingOfType("models.GrievanceEvent")).Return(nil)

	svc := newService(storageMock)
	g, err := svc.Create(validDraft())

	require.NoError(t, err)
	assert.Equal(t, "GRV001", g.ID)
	assert.Equal(t, models.StatusFiled, g.Status)
	assert.Equal(t, fixedDate, g.DateFiled)
	require.Len(t, g.History, 1)
	assert.Equal(t, models.StatusFiled, g.History[0].Status)
	assert.Equal(t, fixedDate, g.History[0].Date)
	assert.Equal(t, config.FiledNote, g.History[0].Notes)
	storageMock.AssertExpectations(t)
}

// TestCreateRejectsNearDuplicate reproduces scenario A: a near-identical
// re-filing by the same citizen fails with ErrDuplicate and nothing persists.
func TestCreateRejectsNearDuplicate(t *testing.T) {
	storageMock := new(MockStorage)
	storageMock.On("GetGrievancesByEmail", "alex.ray@example.com").Return([]models.Grievance{
		{ID: "GRV001", Description: "Pothole on Main Street near 12th Ave"},
	}, nil)

	svc := newService(storageMock)
	draft := validDraft()
	draft.Description = "pothole on main street near 12th ave!!"
	g, err := svc.Create(draft)

	assert.Nil(t, g)
	assert.ErrorIs(t, err, lifecycle.ErrDuplicate)
	storageMock.AssertNotCalled(t, "NextGrievanceSeq")
	storageMock.AssertNotCalled(t, "CreateGrievance", mock.Anything)
}

// TestCreateAllowsUnrelatedDescription: only prior grievances by the same
// filer count, and dissimilar text must pass.
func TestCreateAllowsUnrelatedDescription(t *testing.T) {
	storageMock := new(MockStorage)
	storageMock.On("GetGrievancesByEmail", "alex.ray@example.com").Return([]models.Grievance{
		{ID: "GRV001", Description: "Garbage not collected in Sector 14 for a week"},
	}, nil)
	storageMock.On("NextGrievanceSeq").Return(int64(2), nil)
	storageMock.On("CreateGrievance", mock.AnythingOfType("*models.Grievance")).Return(nil)
	storageMock.On("PublishGrievanceEvent", mock.AnythingOfType("models.GrievanceEvent")).Return(nil)

	svc := newService(storageMock)
	g, err := svc.Create(validDraft())

	require.NoError(t, err)
	assert.Equal(t, "GRV002", g.ID)
}

// TestCreateValidation covers the required-field checks.
func TestCreateValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*lifecycle.Draft)
	}{
		{"empty description", func(d *lifecycle.Draft) { d.Description = "   " }},
		{"empty name", func(d *lifecycle.Draft) { d.ComplainantName = "" }},
		{"empty email", func(d *lifecycle.Draft) { d.ComplainantEmail = "" }},
		{"unknown department", func(d *lifecycle.Draft) { d.Organization = "Sanitation Dept" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			storageMock := new(MockStorage)
			svc := newService(storageMock)

			draft := validDraft()
			tt.mutate(&draft)
			_, err := svc.Create(draft)

			assert.ErrorIs(t, err, lifecycle.ErrValidation)
			storageMock.AssertNotCalled(t, "CreateGrievance", mock.Anything)
		})
	}
}

// TestCreateSpamGate verifies the classifier blocks submission before any
// storage reads happen, and that a nil classifier disables the gate.
func TestCreateSpamGate(t *testing.T) {
	storageMock := new(MockStorage)
	svc := lifecycle.NewService(storageMock, spamClassifier{verdict: true})
	svc.Now = fixedClock

	_, err := svc.Create(validDraft())
	assert.ErrorIs(t, err, lifecycle.ErrSpam)
	storageMock.AssertNotCalled(t, "GetGrievancesByEmail", mock.Anything)
}

// TestCreateDeduplicatesDocumentNames: filename collisions within one
// grievance keep the first occurrence only.
func TestCreateDeduplicatesDocumentNames(t *testing.T) {
	storageMock := new(MockStorage)
	storageMock.On("GetGrievancesByEmail", mock.Anything).Return([]models.Grievance{}, nil)
	storageMock.On("NextGrievanceSeq").Return(int64(7), nil)
	storageMock.On("CreateGrievance", mock.AnythingOfType("*models.Grievance")).Return(nil)
	storageMock.On("PublishGrievanceEvent", mock.AnythingOfType("models.GrievanceEvent")).Return(nil)

	svc := newService(storageMock)
	draft := validDraft()
	draft.Documents = []models.GrievanceDocument{
		{Name: "photo.jpg", Content: []byte("first")},
		{Name: "bill.pdf", Content: []byte("bill")},
		{Name: "photo.jpg", Content: []byte("second")},
	}
	g, err := svc.Create(draft)

	require.NoError(t, err)
	require.Len(t, g.Documents, 2)
	assert.Equal(t, []string{"photo.jpg", "bill.pdf"}, []string(g.DocumentNames))
	assert.Equal(t, []byte("first"), g.Documents[0].Content, "first occurrence wins")
}

// TestTransitionNotFound checks the NotFound failure path.
func TestTransitionNotFound(t *testing.T) {
	storageMock := new(MockStorage)
	storageMock.On("GetGrievanceByID", "GRV999").Return(nil, nil)

	svc := newService(storageMock)
	_, err := svc.Transition("GRV999", models.StatusApproved, "", "")

	assert.ErrorIs(t, err, lifecycle.ErrNotFound)
}

// TestTransitionFalseComplaintStrike reproduces scenario B: rejecting as a
// false complaint appends one history entry and adds exactly one strike.
func TestTransitionFalseComplaintStrike(t *testing.T) {
	grievance := &models.Grievance{
		ID:               "GRV001",
		ComplainantEmail: "alex.ray@example.com",
		Organization:     "Municipal Corporation",
		Status:           models.StatusFiled,
		History: []models.HistoryEntry{
			{Status: models.StatusFiled, Date: fixedDate, Notes: config.FiledNote},
		},
	}

	storageMock := new(MockStorage)
	storageMock.On("GetGrievanceByID", "GRV001").Return(grievance, nil)
	storageMock.On("AppendHistory", mock.AnythingOfType("*models.HistoryEntry")).Return(nil)
	storageMock.On("SaveGrievance", mock.AnythingOfType("*models.Grievance")).Return(nil)
	storageMock.On("IncrementMisuseStrikes", "alex.ray@example.com").Return(1, nil).Once()
	storageMock.On("PublishGrievanceEvent", mock.AnythingOfType("models.GrievanceEvent")).Return(nil)

	svc := newService(storageMock)
	g, err := svc.Transition("GRV001", models.StatusRejected, config.ReasonFalseComplaint, "no evidence")

	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, g.Status)
	require.Len(t, g.History, 2)
	last := g.History[len(g.History)-1]
	assert.Equal(t, models.StatusRejected, last.Status)
	assert.Equal(t, config.ReasonFalseComplaint, last.RejectionReason)
	assert.Equal(t, "no evidence", last.Notes)
	storageMock.AssertExpectations(t)
}

// TestTransitionOtherReasonsCarryNoStrike: only the false-complaint reason
// touches the filer's account.
func TestTransitionOtherReasonsCarryNoStrike(t *testing.T) {
	for _, reason := range []string{config.ReasonDuplicate, config.ReasonInsufficientEvidence, config.ReasonOther} {
		grievance := &models.Grievance{
			ID:               "GRV002",
			ComplainantEmail: "alex.ray@example.com",
			Status:           models.StatusUnderReview,
			History:          []models.HistoryEntry{{Status: models.StatusFiled}, {Status: models.StatusUnderReview}},
		}

		storageMock := new(MockStorage)
		storageMock.On("GetGrievanceByID", "GRV002").Return(grievance, nil)
		storageMock.On("AppendHistory", mock.Anything).Return(nil)
		storageMock.On("SaveGrievance", mock.Anything).Return(nil)
		storageMock.On("PublishGrievanceEvent", mock.Anything).Return(nil)

		svc := newService(storageMock)
		_, err := svc.Transition("GRV002", models.StatusRejected, reason, "")

		require.NoError(t, err)
		storageMock.AssertNotCalled(t, "IncrementMisuseStrikes", mock.Anything)
	}
}

// TestTransitionTerminalIsHardError: no sequence of transitions can move a
// grievance out of Approved or Rejected.
func TestTransitionTerminalIsHardError(t *testing.T) {
	for _, terminal := range []models.Status{models.StatusApproved, models.StatusRejected} {
		grievance := &models.Grievance{ID: "GRV003", Status: terminal}

		storageMock := new(MockStorage)
		storageMock.On("GetGrievanceByID", "GRV003").Return(grievance, nil)

		svc := newService(storageMock)
		for _, target := range []models.Status{models.StatusUnderReview, models.StatusApproved, models.StatusRejected} {
			_, err := svc.Transition("GRV003", target, "", "")
			assert.ErrorIs(t, err, lifecycle.ErrInvalidTransition, "from %s to %s", terminal, target)
		}
		storageMock.AssertNotCalled(t, "AppendHistory", mock.Anything)
	}
}

// TestTransitionSkipsUnderReview: Filed may jump straight to Approved.
func TestTransitionSkipsUnderReview(t *testing.T) {
	grievance := &models.Grievance{
		ID:      "GRV004",
		Status:  models.StatusFiled,
		History: []models.HistoryEntry{{Status: models.StatusFiled}},
	}

	storageMock := new(MockStorage)
	storageMock.On("GetGrievanceByID", "GRV004").Return(grievance, nil)
	storageMock.On("AppendHistory", mock.Anything).Return(nil)
	storageMock.On("SaveGrievance", mock.Anything).Return(nil)
	storageMock.On("PublishGrievanceEvent", mock.Anything).Return(nil)

	svc := newService(storageMock)
	g, err := svc.Transition("GRV004", models.StatusApproved, "", "")

	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, g.Status)
	last := g.History[len(g.History)-1]
	assert.Contains(t, last.Notes, "Approved", "default note is templated from the status")
}

// TestTransitionReasonIgnoredUnlessRejected: a reason passed with Approved
// is dropped rather than stored.
func TestTransitionReasonIgnoredUnlessRejected(t *testing.T) {
	grievance := &models.Grievance{
		ID:      "GRV005",
		Status:  models.StatusFiled,
		History: []models.HistoryEntry{{Status: models.StatusFiled}},
	}

	storageMock := new(MockStorage)
	storageMock.On("GetGrievanceByID", "GRV005").Return(grievance, nil)
	storageMock.On("AppendHistory", mock.Anything).Return(nil)
	storageMock.On("SaveGrievance", mock.Anything).Return(nil)
	storageMock.On("PublishGrievanceEvent", mock.Anything).Return(nil)

	svc := newService(storageMock)
	g, err := svc.Transition("GRV005", models.StatusApproved, config.ReasonFalseComplaint, "")

	require.NoError(t, err)
	assert.Empty(t, g.History[len(g.History)-1].RejectionReason)
	storageMock.AssertNotCalled(t, "IncrementMisuseStrikes", mock.Anything)
}

// TestAttachSolutionOverwrites verifies idempotent overwrite without
// touching status or history.
func TestAttachSolutionOverwrites(t *testing.T) {
	grievance := &models.Grievance{
		ID:         "GRV006",
		Status:     models.StatusUnderReview,
		AISolution: "old draft",
		History:    []models.HistoryEntry{{Status: models.StatusFiled}, {Status: models.StatusUnderReview}},
	}

	storageMock := new(MockStorage)
	storageMock.On("GetGrievanceByID", "GRV006").Return(grievance, nil)
	storageMock.On("SaveGrievance", mock.Anything).Return(nil)
	storageMock.On("PublishGrievanceEvent", mock.Anything).Return(nil)

	svc := newService(storageMock)
	g, err := svc.AttachSolution("GRV006", "new draft")

	require.NoError(t, err)
	assert.Equal(t, "new draft", g.AISolution)
	assert.Equal(t, models.StatusUnderReview, g.Status)
	assert.Len(t, g.History, 2, "history is untouched")
	storageMock.AssertNotCalled(t, "AppendHistory", mock.Anything)
}

// TestAttachSolutionNotFound checks the NotFound failure path.
func TestAttachSolutionNotFound(t *testing.T) {
	storageMock := new(MockStorage)
	storageMock.On("GetGrievanceByID", "GRV404").Return(nil, nil)

	svc := newService(storageMock)
	_, err := svc.AttachSolution("GRV404", "anything")

	assert.ErrorIs(t, err, lifecycle.ErrNotFound)
}

// TestFormatID pins the zero-padded id format and its growth past the pad.
func TestFormatID(t *testing.T) {
	assert.Equal(t, "GRV001", lifecycle.FormatID(1))
	assert.Equal(t, "GRV042", lifecycle.FormatID(42))
	assert.Equal(t, "GRV999", lifecycle.FormatID(999))
	assert.Equal(t, "GRV1000", lifecycle.FormatID(1000))
}
