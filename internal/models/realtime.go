package models

// VoiceEvent is the wire shape exchanged with a browser over the voice-intake
// WebSocket. Type discriminates the payload; unused fields are omitted.
type VoiceEvent struct {
	Type string `json:"type"` // "start", "transcript", "speech_end", "stop", "re_record", "confirm", "back", "location", "document", "submit", "cancel", "state", "draft", "error", "submitted", "unsupported"

	// Client -> server
	Transcript string   `json:"transcript,omitempty"` // one recognized segment
	Final      bool     `json:"final,omitempty"`      // segment is final, not partial
	ErrorCode  string   `json:"error_code,omitempty"` // speech errors: "permission_denied", "no_speech", other
	Latitude   *float64 `json:"latitude,omitempty"`
	Longitude  *float64 `json:"longitude,omitempty"`
	Name       string   `json:"name,omitempty"`    // document filename
	Content    []byte   `json:"content,omitempty"` // document bytes (base64 over the wire)

	// Editable draft fields (both directions)
	Department  string `json:"department,omitempty"`
	Description string `json:"description,omitempty"`

	// Server -> client
	State       string `json:"state,omitempty"`
	Error       string `json:"error,omitempty"`
	GrievanceID string `json:"grievance_id,omitempty"`
}

// GrievanceEvent is published on Redis Pub/Sub whenever the lifecycle engine
// mutates a grievance, and consumed by the department notifier.
type GrievanceEvent struct {
	Kind             string `json:"kind"` // "filed", "transitioned", "solution"
	GrievanceID      string `json:"grievance_id"`
	Organization     string `json:"organization"`
	Status           Status `json:"status,omitempty"`
	RejectionReason  string `json:"rejection_reason,omitempty"`
	ComplainantEmail string `json:"complainant_email,omitempty"`
}
