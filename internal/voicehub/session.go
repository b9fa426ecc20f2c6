package voicehub

import (
	"errors"
	"log"
	"strings"
	"sync"

	"grievgo/backend/internal/ai"
	"grievgo/backend/internal/config"
	"grievgo/backend/internal/departments"
	"grievgo/backend/internal/lifecycle"
	"grievgo/backend/internal/models"
)

// Parser is the external AI collaborator that turns a transcript into a
// structured grievance draft.
type Parser interface {
	ParseGrievance(transcript string, departmentList []string) (*ai.Parsed, error)
}

// Creator is the lifecycle engine's creation entry point.
type Creator interface {
	Create(draft lifecycle.Draft) (*models.Grievance, error)
}

// Session is one voice-intake flow for one citizen: a single-active-session
// state machine from idle through listening, processing, confirming,
// uploading and submitting. The parse and create calls resolve
// asynchronously; a generation counter makes sure a stale completion (after
// cancel or re-record) can never corrupt the session.
type Session struct {
	ID           string
	CitizenName  string
	CitizenEmail string

	parser  Parser
	creator Creator
	send    chan<- models.VoiceEvent

	mu        sync.Mutex
	state     State
	gen       int // bumped on every transition that invalidates in-flight work
	segments  []string
	dept      string
	desc      string
	documents []models.GrievanceDocument
	latitude  *float64
	longitude *float64

	// pending holds AI work scheduled by the current HandleEvent call; it is
	// dispatched only after the lock is released, because the completion path
	// (finishParse/finishSubmit) re-acquires it.
	pending func()

	// runAsync runs in-flight AI work; swappable in tests for determinism.
	runAsync func(fn func())
}

// NewSession creates an idle voice-intake session. send may be nil (tests).
func NewSession(id, citizenName, citizenEmail string, parser Parser, creator Creator, send chan<- models.VoiceEvent) *Session {
	return &Session{
		ID:           id,
		CitizenName:  citizenName,
		CitizenEmail: citizenEmail,
		parser:       parser,
		creator:      creator,
		send:         send,
		state:        StateIdle,
		runAsync:     func(fn func()) { go fn() },
	}
}

// State returns the session's current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Transcript returns the accumulated final transcript segments joined in
// arrival order.
func (s *Session) Transcript() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return strings.Join(s.segments, " ")
}

// Draft returns the current editable draft fields.
func (s *Session) Draft() (department, description string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dept, s.desc
}

// Cancel closes the session from any state. In-flight parse or submit
// results are discarded and nothing is persisted.
func (s *Session) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.IsFinal() {
		return
	}
	s.toState(StateClosed)
}

// HandleEvent processes one client event against the current state. Events
// that are not valid in the current state are answered with an error event
// and leave the state untouched.
func (s *Session) HandleEvent(ev models.VoiceEvent) {
	s.mu.Lock()
	s.dispatch(ev)
	fn := s.pending
	s.pending = nil
	s.mu.Unlock()

	if fn != nil {
		s.runAsync(fn)
	}
}

// dispatch routes one event to the current state's handler. Callers hold s.mu.
func (s *Session) dispatch(ev models.VoiceEvent) {
	if s.state.IsFinal() {
		return
	}

	// Cross-state events first: cancellation and best-effort location.
	switch ev.Type {
	case EventCancel:
		s.toState(StateClosed)
		return
	case EventUnsupported:
		// Speech capability is absent; the whole flow short-circuits.
		s.toState(StateUnsupported)
		return
	case EventLocation:
		// Geolocation resolves whenever it resolves; it never blocks the flow.
		s.latitude, s.longitude = ev.Latitude, ev.Longitude
		return
	}

	switch s.state {
	case StateIdle:
		s.handleIdle(ev)
	case StateListening:
		s.handleListening(ev)
	case StateProcessing:
		// Suspended on the AI parse; only cancel (handled above) applies.
		s.reject(ev)
	case StateConfirming:
		s.handleConfirming(ev)
	case StateUploading:
		s.handleUploading(ev)
	case StateSubmitting:
		// Suspended on attachment assembly + create; only cancel applies.
		s.reject(ev)
	case StateClosed, StateUnsupported:
		// Final; unreachable (guarded above).
	}
}

func (s *Session) handleIdle(ev models.VoiceEvent) {
	switch ev.Type {
	case EventStart:
		s.segments = nil
		s.toState(StateListening)
	default:
		s.reject(ev)
	}
}

func (s *Session) handleListening(ev models.VoiceEvent) {
	switch ev.Type {
	case EventTranscript:
		// Partial segments are display-only; only final ones accumulate.
		if ev.Final && strings.TrimSpace(ev.Transcript) != "" {
			s.segments = append(s.segments, strings.TrimSpace(ev.Transcript))
		}
	case EventStop, EventSpeechEnd:
		// Either explicit user stop or the device's own end-of-speech signal.
		s.beginProcessing()
	case EventSpeechError:
		switch ev.ErrorCode {
		case SpeechErrPermissionDenied:
			s.toState(StateUnsupported)
		case SpeechErrNoSpeech:
			s.emitError("No speech was detected. Please try again.")
			s.toState(StateIdle)
		default:
			s.emitError("Speech capture failed. Please try again.")
			s.toState(StateIdle)
		}
	default:
		s.reject(ev)
	}
}

// beginProcessing hands the accumulated transcript to the AI parser. An
// empty transcript returns straight to idle without invoking the parser.
func (s *Session) beginProcessing() {
	transcript := strings.TrimSpace(strings.Join(s.segments, " "))
	if transcript == "" {
		s.toState(StateIdle)
		return
	}

	s.toState(StateProcessing)
	gen := s.gen
	s.pending = func() {
		parsed, err := s.parser.ParseGrievance(transcript, config.Departments)
		s.finishParse(gen, parsed, err)
	}
}

func (s *Session) finishParse(gen int, parsed *ai.Parsed, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Stale completion: the session was cancelled or moved on.
	if s.gen != gen || s.state != StateProcessing {
		return
	}

	if err != nil {
		log.Printf("ERROR: transcript parse failed for session %s: %v", s.ID, err)
		s.emitError("Could not understand the complaint. Please try again.")
		s.toState(StateIdle)
		return
	}

	// An unrecognized department resets to empty, forcing a manual pick
	// rather than rejecting the whole parse.
	s.dept = departments.Reconcile(parsed.Department)
	s.desc = parsed.Description
	s.toState(StateConfirming)
	s.emit(models.VoiceEvent{
		Type:        EventDraft,
		Department:  s.dept,
		Description: s.desc,
	})
}

func (s *Session) handleConfirming(ev models.VoiceEvent) {
	switch ev.Type {
	case EventDraft:
		// The user may freely edit both fields before proceeding.
		s.dept = ev.Department
		s.desc = ev.Description
	case EventReRecord:
		s.segments = nil
		s.toState(StateListening)
	case EventConfirm:
		s.toState(StateUploading)
	default:
		s.reject(ev)
	}
}

func (s *Session) handleUploading(ev models.VoiceEvent) {
	switch ev.Type {
	case EventDocument:
		if ev.Name != "" {
			s.documents = append(s.documents, models.GrievanceDocument{
				Name:    ev.Name,
				Content: ev.Content,
			})
		}
	case EventBack:
		s.toState(StateConfirming)
	case EventSubmit:
		s.beginSubmitting()
	default:
		s.reject(ev)
	}
}

func (s *Session) beginSubmitting() {
	draft := lifecycle.Draft{
		ComplainantName:  s.CitizenName,
		ComplainantEmail: s.CitizenEmail,
		Organization:     s.dept,
		Description:      s.desc,
		Documents:        append([]models.GrievanceDocument(nil), s.documents...),
		Latitude:         s.latitude,
		Longitude:        s.longitude,
	}

	s.toState(StateSubmitting)
	gen := s.gen
	s.pending = func() {
		grievance, err := s.creator.Create(draft)
		s.finishSubmit(gen, grievance, err)
	}
}

func (s *Session) finishSubmit(gen int, grievance *models.Grievance, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.gen != gen || s.state != StateSubmitting {
		return
	}

	if err != nil {
		// Duplicate (and any other rejection) returns to confirming, not
		// idle, preserving the user's edited text.
		switch {
		case errors.Is(err, lifecycle.ErrDuplicate):
			s.emitError("This looks identical to a grievance you already filed.")
		case errors.Is(err, lifecycle.ErrSpam):
			s.emitError("This complaint was flagged as spam and cannot be submitted.")
		case errors.Is(err, lifecycle.ErrValidation):
			s.emitError("Please pick a department and fill in the description.")
		default:
			log.Printf("ERROR: voice submission failed for session %s: %v", s.ID, err)
			s.emitError("Submission failed. Please try again.")
		}
		s.toState(StateConfirming)
		return
	}

	s.emit(models.VoiceEvent{Type: EventSubmitted, GrievanceID: grievance.ID})
	s.toState(StateClosed)
}

// toState transitions and announces the new state. Callers hold s.mu.
func (s *Session) toState(next State) {
	s.state = next
	s.gen++
	s.emit(models.VoiceEvent{Type: EventState, State: next.String()})
}

// reject answers an event that is invalid in the current state.
func (s *Session) reject(ev models.VoiceEvent) {
	s.emit(models.VoiceEvent{
		Type:  EventError,
		Error: "event " + ev.Type + " not allowed while " + s.state.String(),
		State: s.state.String(),
	})
}

func (s *Session) emitError(msg string) {
	s.emit(models.VoiceEvent{Type: EventError, Error: msg})
}

// emit is non-blocking: a slow client loses events rather than wedging the
// state machine.
func (s *Session) emit(ev models.VoiceEvent) {
	if s.send == nil {
		return
	}
	select {
	case s.send <- ev:
	default:
		log.Printf("WARNING: dropping event %s for slow session %s", ev.Type, s.ID)
	}
}
