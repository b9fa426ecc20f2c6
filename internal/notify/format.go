package notify

import (
	"fmt"

	"grievgo/backend/internal/localization"
	"grievgo/backend/internal/models"
)

// FormatEvent renders one grievance event as a notification message.
// Unknown event kinds render as "" and are not sent.
func FormatEvent(l *localization.Localizer, lang string, ev models.GrievanceEvent) string {
	switch ev.Kind {
	case "filed":
		return fmt.Sprintf(l.GetString(lang, localization.KeyGrievanceFiled), ev.GrievanceID, ev.Organization)
	case "transitioned":
		text := fmt.Sprintf(l.GetString(lang, localization.KeyGrievanceTransitioned), ev.GrievanceID, ev.Status)
		if ev.RejectionReason != "" {
			text += fmt.Sprintf(" (%s)", ev.RejectionReason)
		}
		return text
	case "solution":
		return fmt.Sprintf(l.GetString(lang, localization.KeyGrievanceSolution), ev.GrievanceID)
	default:
		return ""
	}
}
