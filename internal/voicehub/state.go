package voicehub

// State is the explicit state of one voice-intake session. Every transition
// is enumerated in Session.HandleEvent; an unhandled state is a bug, not a
// silent fallthrough.
type State int

const (
	StateIdle State = iota
	StateListening
	StateProcessing
	StateConfirming
	StateUploading
	StateSubmitting
	StateClosed
	StateUnsupported
)

var stateNames = map[State]string{
	StateIdle:        "idle",
	StateListening:   "listening",
	StateProcessing:  "processing",
	StateConfirming:  "confirming",
	StateUploading:   "uploading",
	StateSubmitting:  "submitting",
	StateClosed:      "closed",
	StateUnsupported: "unsupported",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}

// IsFinal reports whether the session accepts no further events.
func (s State) IsFinal() bool {
	return s == StateClosed || s == StateUnsupported
}

// Speech-capture error codes the browser device distinguishes.
const (
	SpeechErrPermissionDenied = "permission_denied"
	SpeechErrNoSpeech         = "no_speech"
)

// Event types exchanged over the voice-intake WebSocket.
const (
	// client -> server
	EventStart       = "start"
	EventTranscript  = "transcript"
	EventSpeechEnd   = "speech_end"
	EventSpeechError = "speech_error"
	EventStop        = "stop"
	EventReRecord    = "re_record"
	EventDraft       = "draft"
	EventConfirm     = "confirm"
	EventBack        = "back"
	EventLocation    = "location"
	EventDocument    = "document"
	EventSubmit      = "submit"
	EventCancel      = "cancel"
	EventUnsupported = "unsupported"

	// server -> client
	EventState     = "state"
	EventError     = "error"
	EventSubmitted = "submitted"
)
