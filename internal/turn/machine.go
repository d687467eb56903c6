package turn

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/insidejustjoin/justjoin-sub002/internal/media"
	"github.com/insidejustjoin/justjoin-sub002/internal/speech"
	"github.com/insidejustjoin/justjoin-sub002/pkg/logger"
)

// Player is the turn-facing subset of the playback controller.
type Player interface {
	Play(ctx context.Context, text, language string) speech.PlaybackResult
	Cancel()
}

// Listener is the turn-facing subset of voice capture.
type Listener interface {
	Listen(ctx context.Context, language string) (string, error)
	Stop()
}

// Recorder is the turn-facing subset of the media capture pipeline.
type Recorder interface {
	Start(kind media.Kind) error
	Stop() *media.Blob
}

// Sender ships finished recording blobs off the critical path.
type Sender interface {
	UploadAsync(blob *media.Blob, sessionID string)
}

// Machine sequences one interview session's phases. All conversation
// logic is driven by the caller's goroutine; EndInterview may preempt
// from another one.
type Machine struct {
	api      API
	player   Player
	listener Listener
	recorder Recorder
	uploader Sender

	mu                sync.Mutex
	phase             Phase
	degraded          bool
	submitting        bool
	sessionID         string
	endReason         string
	language          string
	question          *Question
	questionStartedAt time.Time
}

func NewMachine(api API, player Player, listener Listener, recorder Recorder, uploader Sender) *Machine {
	return &Machine{
		api:      api,
		player:   player,
		listener: listener,
		recorder: recorder,
		uploader: uploader,
		phase:    PhaseLoading,
	}
}

// Phase returns the current phase snapshot.
func (m *Machine) Phase() Phase {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.phase
}

// Degraded reports whether speech is unavailable and the session is in
// the typed-text fallback mode.
func (m *Machine) Degraded() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.degraded
}

// Question returns the question currently on the table.
func (m *Machine) Question() *Question {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.question
}

// SessionID returns the server session identifier, empty before Start.
func (m *Machine) SessionID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessionID
}

// Start creates the server session and plays the opening message, ending
// armed for the first answer.
func (m *Machine) Start(ctx context.Context, req StartRequest) error {
	m.mu.Lock()
	if m.phase != PhaseLoading {
		phase := m.phase
		m.mu.Unlock()
		return fmt.Errorf("session already started (phase %s)", phase)
	}
	m.mu.Unlock()

	res, err := m.api.Start(ctx, req)

	m.mu.Lock()
	if m.phase != PhaseLoading {
		// EndInterview preempted the start call. The session was created
		// after the user already left, so close it server-side and
		// discard the result.
		reason := m.endReason
		m.mu.Unlock()
		if err == nil {
			if reason == "" {
				reason = "user_ended"
			}
			if e := m.api.End(ctx, res.SessionID, reason); e != nil {
				logger.Warn("end-session call failed for preempted start",
					zap.String("session", res.SessionID), zap.Error(e))
			}
		}
		return nil
	}
	if err != nil {
		m.phase = PhaseError
		m.mu.Unlock()
		return err
	}
	m.sessionID = res.SessionID
	m.language = req.Language
	m.question = res.NextQuestion
	m.phase = PhasePlaying
	m.mu.Unlock()

	m.speak(ctx, res.Message)
	return m.arm()
}

// speak plays one interviewer utterance. Synthesis failure degrades to
// typed input; either way the machine proceeds.
func (m *Machine) speak(ctx context.Context, text string) {
	result := m.player.Play(ctx, text, m.language)
	if errors.Is(result.Err, speech.ErrUnavailable) {
		m.mu.Lock()
		m.degraded = true
		m.mu.Unlock()
	}
}

// arm moves Playing to Armed and restarts the response clock.
func (m *Machine) arm() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.phase == PhaseComplete {
		// The interview ended while the utterance played.
		return nil
	}
	next, err := Transition(m.phase, EventPlaybackDone)
	if err != nil {
		return err
	}
	m.phase = next
	m.questionStartedAt = time.Now()
	return nil
}

// BeginRecording is the explicit user action that opens a recording
// window and listens for one utterance. Refused outside Armed, which
// guards re-entrancy during Playing and Submitting.
func (m *Machine) BeginRecording(ctx context.Context) error {
	m.mu.Lock()
	if m.phase != PhaseArmed {
		phase := m.phase
		m.mu.Unlock()
		return fmt.Errorf("cannot begin recording from phase %s", phase)
	}
	m.phase = PhaseRecording
	sessionID := m.sessionID
	language := m.language
	m.mu.Unlock()

	if err := m.recorder.Start(media.KindVideo); err != nil {
		logger.Warn("recording window failed to open", zap.Error(err))
	}

	transcript, err := m.listener.Listen(ctx, language)

	// The window closes with the utterance; its upload never joins the
	// turn's critical path.
	if blob := m.recorder.Stop(); blob != nil {
		m.uploader.UploadAsync(blob, sessionID)
	}

	m.mu.Lock()
	if m.phase != PhaseRecording {
		// EndInterview preempted the turn; discard the late transcript.
		m.mu.Unlock()
		return nil
	}
	if errors.Is(err, speech.ErrUnavailable) {
		m.degraded = true
		m.phase = PhaseArmed
		m.mu.Unlock()
		return nil
	}
	if transcript == "" {
		// No speech: re-arm without contacting the server.
		m.phase = PhaseArmed
		m.mu.Unlock()
		return nil
	}
	m.mu.Unlock()

	return m.submitTranscript(ctx, transcript)
}

// StopRecording is the explicit user "stop" action. The machine stays in
// Recording until the transcript resolves.
func (m *Machine) StopRecording() {
	m.listener.Stop()
}

// SubmitTyped is the typed-text fallback path, bypassing playback and
// recording entirely. Legal only while armed.
func (m *Machine) SubmitTyped(ctx context.Context, text string) error {
	m.mu.Lock()
	if m.submitting {
		m.mu.Unlock()
		return nil
	}
	if m.phase != PhaseArmed {
		phase := m.phase
		m.mu.Unlock()
		return fmt.Errorf("cannot submit from phase %s", phase)
	}
	m.mu.Unlock()

	if text == "" {
		return fmt.Errorf("empty answer")
	}
	return m.submitTranscript(ctx, text)
}

// submitTranscript issues the one allowed submission for this turn. A
// second attempt while one is pending is a no-op.
func (m *Machine) submitTranscript(ctx context.Context, text string) error {
	m.mu.Lock()
	if m.submitting {
		m.mu.Unlock()
		return nil
	}
	next, err := Transition(m.phase, EventTranscriptReady)
	if err != nil {
		m.mu.Unlock()
		return err
	}
	m.phase = next
	m.submitting = true
	sessionID := m.sessionID
	questionID := m.question.ID
	responseTime := time.Since(m.questionStartedAt).Seconds()
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		m.submitting = false
		m.mu.Unlock()
	}()

	res, err := m.api.SubmitAnswer(ctx, sessionID, questionID, text, responseTime)

	m.mu.Lock()
	if m.phase != PhaseSubmitting {
		// EndInterview already left the session; discard the result.
		m.mu.Unlock()
		return nil
	}
	if err != nil {
		m.phase = PhaseError
		m.mu.Unlock()
		return err
	}
	if res.IsComplete {
		m.phase = PhaseComplete
		m.mu.Unlock()
		return nil
	}
	m.question = res.NextQuestion
	m.phase = PhasePlaying
	m.mu.Unlock()

	m.speak(ctx, res.Message)
	return m.arm()
}

// EndInterview preempts whatever is in flight: recording and playback are
// forcibly stopped, then the end call is issued regardless of any pending
// submission's outcome.
func (m *Machine) EndInterview(ctx context.Context, reason string) error {
	m.mu.Lock()
	if m.phase == PhaseComplete {
		m.mu.Unlock()
		return nil
	}
	m.phase = PhaseComplete
	m.endReason = reason
	sessionID := m.sessionID
	m.mu.Unlock()

	if blob := m.recorder.Stop(); blob != nil {
		m.uploader.UploadAsync(blob, sessionID)
	}
	m.player.Cancel()
	m.listener.Stop()

	if sessionID == "" {
		return nil
	}
	if err := m.api.End(ctx, sessionID, reason); err != nil {
		logger.Warn("end-session call failed", zap.String("session", sessionID), zap.Error(err))
		return err
	}
	return nil
}
