package turn

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insidejustjoin/justjoin-sub002/internal/media"
	"github.com/insidejustjoin/justjoin-sub002/internal/speech"
)

type fakeAPI struct {
	mu          sync.Mutex
	startRes    *StartResponse
	startErr    error
	startGate   chan struct{}
	startCalls  int
	submitQueue []*SubmitResponse
	submitErr   error
	submitGate  chan struct{}
	submitCalls int
	endCalls    int
	endSessions []string
	endReason   string
}

func (f *fakeAPI) Start(ctx context.Context, req StartRequest) (*StartResponse, error) {
	f.mu.Lock()
	f.startCalls++
	gate := f.startGate
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	if f.startErr != nil {
		return nil, f.startErr
	}
	return f.startRes, nil
}

func (f *fakeAPI) started() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.startCalls
}

func (f *fakeAPI) SubmitAnswer(ctx context.Context, sessionID string, questionID uint, text string, responseTime float64) (*SubmitResponse, error) {
	f.mu.Lock()
	f.submitCalls++
	gate := f.submitGate
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.submitQueue) == 0 {
		return nil, fmt.Errorf("no scripted response")
	}
	res := f.submitQueue[0]
	f.submitQueue = f.submitQueue[1:]
	return res, nil
}

func (f *fakeAPI) End(ctx context.Context, sessionID, reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.endCalls++
	f.endSessions = append(f.endSessions, sessionID)
	f.endReason = reason
	return nil
}

func (f *fakeAPI) submitted() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.submitCalls
}

type fakePlayer struct {
	mu     sync.Mutex
	played []string
	err    error
	cancel int
}

func (p *fakePlayer) Play(ctx context.Context, text, language string) speech.PlaybackResult {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.played = append(p.played, text)
	return speech.PlaybackResult{Completed: p.err == nil, Err: p.err}
}

func (p *fakePlayer) Cancel() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cancel++
}

type listenResult struct {
	text string
	err  error
}

type fakeListener struct {
	mu      sync.Mutex
	results []listenResult
	waiting chan struct{}
	stops   int
}

func (l *fakeListener) Listen(ctx context.Context, language string) (string, error) {
	l.mu.Lock()
	if len(l.results) > 0 {
		r := l.results[0]
		l.results = l.results[1:]
		l.mu.Unlock()
		return r.text, r.err
	}
	ch := make(chan struct{})
	l.waiting = ch
	l.mu.Unlock()
	select {
	case <-ch:
	case <-ctx.Done():
	}
	return "", nil
}

func (l *fakeListener) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.stops++
	if l.waiting != nil {
		close(l.waiting)
		l.waiting = nil
	}
}

type fakeRecorder struct {
	mu     sync.Mutex
	starts int
	stops  int
	blob   *media.Blob
	err    error
}

func (r *fakeRecorder) Start(kind media.Kind) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.starts++
	return r.err
}

func (r *fakeRecorder) Stop() *media.Blob {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stops++
	blob := r.blob
	r.blob = nil
	return blob
}

type fakeSender struct {
	mu      sync.Mutex
	uploads []string
}

func (s *fakeSender) UploadAsync(blob *media.Blob, sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uploads = append(s.uploads, sessionID)
}

func (s *fakeSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.uploads)
}

func scriptedStart() *StartResponse {
	return &StartResponse{
		SessionID:    "sess-1",
		ApplicantID:  "app-1",
		Message:      "welcome, first question",
		NextQuestion: &Question{ID: 1, Order: 1, Text: "Tell me about yourself."},
		Progress:     &Progress{Current: 1, Total: 3},
	}
}

func newTestMachine(api *fakeAPI) (*Machine, *fakePlayer, *fakeListener, *fakeRecorder, *fakeSender) {
	player := &fakePlayer{}
	listener := &fakeListener{}
	recorder := &fakeRecorder{}
	sender := &fakeSender{}
	return NewMachine(api, player, listener, recorder, sender), player, listener, recorder, sender
}

func TestStartEndsArmed(t *testing.T) {
	api := &fakeAPI{startRes: scriptedStart()}
	m, player, _, _, _ := newTestMachine(api)

	require.NoError(t, m.Start(context.Background(), StartRequest{ConsentGiven: true, Language: "en"}))
	assert.Equal(t, PhaseArmed, m.Phase())
	assert.Equal(t, "sess-1", m.SessionID())
	require.NotNil(t, m.Question())
	assert.Equal(t, uint(1), m.Question().ID)
	assert.Equal(t, []string{"welcome, first question"}, player.played)
}

func TestStartFailureEntersError(t *testing.T) {
	api := &fakeAPI{startErr: fmt.Errorf("boom")}
	m, _, _, _, _ := newTestMachine(api)

	require.Error(t, m.Start(context.Background(), StartRequest{}))
	assert.Equal(t, PhaseError, m.Phase())
}

func TestRecordingTurnAdvancesQuestion(t *testing.T) {
	api := &fakeAPI{
		startRes: scriptedStart(),
		submitQueue: []*SubmitResponse{{
			Message:      "next up",
			NextQuestion: &Question{ID: 2, Order: 2, Text: "Why this role?"},
			Progress:     &Progress{Current: 2, Total: 3},
		}},
	}
	m, player, listener, recorder, sender := newTestMachine(api)
	listener.results = []listenResult{{text: "my answer"}}
	recorder.blob = &media.Blob{Kind: media.KindVideo, Data: []byte("x")}

	require.NoError(t, m.Start(context.Background(), StartRequest{ConsentGiven: true}))
	require.NoError(t, m.BeginRecording(context.Background()))

	assert.Equal(t, PhaseArmed, m.Phase())
	assert.Equal(t, uint(2), m.Question().ID)
	assert.Equal(t, 1, api.submitted())
	assert.Equal(t, 1, sender.count())
	assert.Len(t, player.played, 2)
}

func TestNoSpeechReArmsWithoutServerCalls(t *testing.T) {
	api := &fakeAPI{startRes: scriptedStart()}
	m, _, listener, recorder, sender := newTestMachine(api)
	listener.results = []listenResult{{text: ""}}
	recorder.blob = &media.Blob{Kind: media.KindVideo, Data: []byte("x")}

	require.NoError(t, m.Start(context.Background(), StartRequest{ConsentGiven: true}))
	require.NoError(t, m.BeginRecording(context.Background()))

	assert.Equal(t, PhaseArmed, m.Phase())
	assert.Equal(t, 0, api.submitted())
	// The silent window still ships its recording.
	assert.Equal(t, 1, sender.count())

	// The turn can be retried immediately.
	api.submitQueue = []*SubmitResponse{{IsComplete: true, Summary: &Summary{QuestionsAnswered: 1}}}
	listener.results = []listenResult{{text: "second try"}}
	require.NoError(t, m.BeginRecording(context.Background()))
	assert.Equal(t, PhaseComplete, m.Phase())
}

func TestSpeechUnavailableDegrades(t *testing.T) {
	api := &fakeAPI{startRes: scriptedStart()}
	m, _, listener, _, _ := newTestMachine(api)
	listener.results = []listenResult{{err: speech.ErrUnavailable}}

	require.NoError(t, m.Start(context.Background(), StartRequest{ConsentGiven: true}))
	require.NoError(t, m.BeginRecording(context.Background()))

	assert.Equal(t, PhaseArmed, m.Phase())
	assert.True(t, m.Degraded())
	assert.Equal(t, 0, api.submitted())

	// Typed answers keep working in degraded mode.
	api.submitQueue = []*SubmitResponse{{IsComplete: true, Summary: &Summary{}}}
	require.NoError(t, m.SubmitTyped(context.Background(), "typed instead"))
	assert.Equal(t, PhaseComplete, m.Phase())
	assert.Equal(t, 1, api.submitted())
}

func TestBeginRecordingRefusedOutsideArmed(t *testing.T) {
	api := &fakeAPI{startRes: scriptedStart()}
	m, _, _, _, _ := newTestMachine(api)

	assert.Error(t, m.BeginRecording(context.Background()))

	require.NoError(t, m.Start(context.Background(), StartRequest{ConsentGiven: true}))
	require.NoError(t, m.EndInterview(context.Background(), "user_ended"))
	assert.Error(t, m.BeginRecording(context.Background()))
}

func TestSubmitTypedRejectedWhilePending(t *testing.T) {
	gate := make(chan struct{})
	api := &fakeAPI{
		startRes:    scriptedStart(),
		submitGate:  gate,
		submitQueue: []*SubmitResponse{{IsComplete: true, Summary: &Summary{}}},
	}
	m, _, _, _, _ := newTestMachine(api)
	require.NoError(t, m.Start(context.Background(), StartRequest{ConsentGiven: true}))

	done := make(chan error, 1)
	go func() { done <- m.SubmitTyped(context.Background(), "first") }()

	require.Eventually(t, func() bool { return api.submitted() == 1 }, time.Second, 5*time.Millisecond)

	// A second attempt while the first is in flight is a silent no-op.
	require.NoError(t, m.SubmitTyped(context.Background(), "second"))
	assert.Equal(t, 1, api.submitted())

	close(gate)
	require.NoError(t, <-done)
	assert.Equal(t, PhaseComplete, m.Phase())
	assert.Equal(t, 1, api.submitted())
}

func TestSubmitFailureEntersError(t *testing.T) {
	api := &fakeAPI{startRes: scriptedStart(), submitErr: fmt.Errorf("network down")}
	m, _, _, _, _ := newTestMachine(api)
	require.NoError(t, m.Start(context.Background(), StartRequest{ConsentGiven: true}))

	require.Error(t, m.SubmitTyped(context.Background(), "answer"))
	assert.Equal(t, PhaseError, m.Phase())
}

func TestEndInterviewPreemptsRecording(t *testing.T) {
	api := &fakeAPI{startRes: scriptedStart()}
	m, player, listener, recorder, _ := newTestMachine(api)
	require.NoError(t, m.Start(context.Background(), StartRequest{ConsentGiven: true}))

	done := make(chan error, 1)
	go func() { done <- m.BeginRecording(context.Background()) }()

	require.Eventually(t, func() bool {
		listener.mu.Lock()
		defer listener.mu.Unlock()
		return listener.waiting != nil
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, m.EndInterview(context.Background(), "user_ended"))
	require.NoError(t, <-done)

	assert.Equal(t, PhaseComplete, m.Phase())
	// The late, empty transcript was discarded without a submission.
	assert.Equal(t, 0, api.submitted())
	assert.Equal(t, 1, api.endCalls)
	assert.Equal(t, "user_ended", api.endReason)
	assert.Equal(t, 1, player.cancel)
	assert.GreaterOrEqual(t, recorder.stops, 1)
}

func TestEndInterviewPreemptsStart(t *testing.T) {
	gate := make(chan struct{})
	api := &fakeAPI{startRes: scriptedStart(), startGate: gate}
	m, player, _, _, _ := newTestMachine(api)

	done := make(chan error, 1)
	go func() { done <- m.Start(context.Background(), StartRequest{ConsentGiven: true}) }()

	require.Eventually(t, func() bool { return api.started() == 1 }, time.Second, 5*time.Millisecond)

	require.NoError(t, m.EndInterview(context.Background(), "user_ended"))
	assert.Equal(t, PhaseComplete, m.Phase())

	close(gate)
	require.NoError(t, <-done)

	// The late start response is discarded: no opening message, no
	// resurrection, and the orphaned server session gets closed.
	assert.Empty(t, player.played)
	assert.Equal(t, PhaseComplete, m.Phase())
	assert.Empty(t, m.SessionID())
	assert.Equal(t, []string{"sess-1"}, api.endSessions)
	assert.Equal(t, "user_ended", api.endReason)
}

func TestEndInterviewIsIdempotent(t *testing.T) {
	api := &fakeAPI{startRes: scriptedStart()}
	m, _, _, _, _ := newTestMachine(api)
	require.NoError(t, m.Start(context.Background(), StartRequest{ConsentGiven: true}))

	require.NoError(t, m.EndInterview(context.Background(), "user_ended"))
	require.NoError(t, m.EndInterview(context.Background(), "user_ended"))
	assert.Equal(t, 1, api.endCalls)
}

func TestPlaybackFailureDegradesButProceeds(t *testing.T) {
	api := &fakeAPI{startRes: scriptedStart()}
	m, player, _, _, _ := newTestMachine(api)
	player.err = speech.ErrUnavailable

	require.NoError(t, m.Start(context.Background(), StartRequest{ConsentGiven: true}))
	assert.Equal(t, PhaseArmed, m.Phase())
	assert.True(t, m.Degraded())
}
