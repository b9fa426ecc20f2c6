package voicehub

import "grievgo/backend/internal/models"

// Client is one transport-level connection carrying a voice-intake session.
// It abstracts the underlying connection so the hub can manage WebSocket
// clients and test doubles uniformly.
type Client interface {
	// GetSessionID returns the id of the session this client carries.
	GetSessionID() string
	// GetSession returns the session state machine behind the connection.
	GetSession() *Session

	// GetSendChannel returns the channel on which server-side events are
	// queued for delivery to this client.
	GetSendChannel() chan<- models.VoiceEvent

	// Run starts the client's read and write pumps.
	Run()
	// Close shuts the connection down and cancels the session.
	Close()
}
