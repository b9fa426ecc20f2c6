package notify_test

import (
	"os"
	"path/filepath"
	"testing"

	"grievgo/backend/internal/localization"
	"grievgo/backend/internal/models"
	"grievgo/backend/internal/notify"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLocalizer(t *testing.T) *localization.Localizer {
	t.Helper()
	dir := t.TempDir()
	body := `{
		"grievance.filed": "A new grievance %s has been filed with %s.",
		"grievance.transitioned": "Grievance %s is now %s.",
		"grievance.solution": "A suggested resolution was attached to grievance %s."
	}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "en.json"), []byte(body), 0o644))
	l, err := localization.NewLocalizer(dir)
	require.NoError(t, err)
	return l
}

func TestFormatEvent(t *testing.T) {
	l := testLocalizer(t)

	filed := notify.FormatEvent(l, "en", models.GrievanceEvent{
		Kind: "filed", GrievanceID: "GRV001", Organization: "Electricity Board",
	})
	assert.Equal(t, "A new grievance GRV001 has been filed with Electricity Board.", filed)

	moved := notify.FormatEvent(l, "en", models.GrievanceEvent{
		Kind: "transitioned", GrievanceID: "GRV001", Status: models.StatusApproved,
	})
	assert.Equal(t, "Grievance GRV001 is now Approved.", moved)

	rejected := notify.FormatEvent(l, "en", models.GrievanceEvent{
		Kind: "transitioned", GrievanceID: "GRV002", Status: models.StatusRejected,
		RejectionReason: "False Complaint",
	})
	assert.Equal(t, "Grievance GRV002 is now Rejected. (False Complaint)", rejected)

	solution := notify.FormatEvent(l, "en", models.GrievanceEvent{
		Kind: "solution", GrievanceID: "GRV003",
	})
	assert.Equal(t, "A suggested resolution was attached to grievance GRV003.", solution)

	assert.Empty(t, notify.FormatEvent(l, "en", models.GrievanceEvent{Kind: "unknown"}))
}

func TestParseDeptChats(t *testing.T) {
	chats := notify.ParseDeptChats("Electricity Board=-100123, Water Supply Department=-100456")
	assert.Equal(t, map[string]int64{
		"Electricity Board":       -100123,
		"Water Supply Department": -100456,
	}, chats)

	// Malformed entries are skipped, not fatal.
	chats = notify.ParseDeptChats("Electricity Board=-1,broken,Health Department=abc,")
	assert.Equal(t, map[string]int64{"Electricity Board": -1}, chats)

	assert.Empty(t, notify.ParseDeptChats(""))
}
