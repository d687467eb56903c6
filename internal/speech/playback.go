// Package speech wraps the opaque synthesis and recognition capabilities
// behind small facades the turn machine can drive and tests can fake.
package speech

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/insidejustjoin/justjoin-sub002/pkg/logger"
)

// ErrUnavailable is returned when the underlying capability cannot be
// initialized at all. The turn machine degrades to typed input on it.
var ErrUnavailable = errors.New("speech capability unavailable")

// Synthesizer turns text into audible speech. Speak blocks until the
// utterance finishes or ctx is cancelled.
type Synthesizer interface {
	Speak(ctx context.Context, text, language string) error
}

// PlaybackResult reports how one utterance resolved. Completed and failed
// playback are both "ready to proceed" for the caller.
type PlaybackResult struct {
	Completed bool
	Err       error
}

// Playback is the utterance playback controller. At most one utterance is
// audible at a time; starting a new one cancels its predecessor.
type Playback struct {
	synth Synthesizer

	mu     sync.Mutex
	active context.Context
	cancel context.CancelFunc
	muted  bool
}

func NewPlayback(synth Synthesizer) *Playback {
	return &Playback{synth: synth}
}

// Play cancels any previous utterance and speaks text. When muted it
// resolves immediately so the turn machine is never blocked by muting.
func (p *Playback) Play(ctx context.Context, text, language string) PlaybackResult {
	p.mu.Lock()
	if p.cancel != nil {
		p.cancel()
	}
	if p.muted {
		p.mu.Unlock()
		return PlaybackResult{Completed: true}
	}
	utterCtx, cancel := context.WithCancel(ctx)
	p.active = utterCtx
	p.cancel = cancel
	p.mu.Unlock()

	err := p.synth.Speak(utterCtx, text, language)

	cancel()
	p.mu.Lock()
	// Deregister only if no newer utterance has taken the slot, so a
	// finishing call never cancels its successor.
	if p.active == utterCtx {
		p.active = nil
		p.cancel = nil
	}
	p.mu.Unlock()

	if err != nil {
		if errors.Is(err, ErrUnavailable) {
			return PlaybackResult{Err: ErrUnavailable}
		}
		logger.Warn("utterance playback failed", zap.Error(err))
		return PlaybackResult{Err: err}
	}
	return PlaybackResult{Completed: true}
}

// Cancel silences the current utterance, if any.
func (p *Playback) Cancel() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
}

// SetMuted toggles audible output. Utterances still resolve while muted.
func (p *Playback) SetMuted(muted bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.muted = muted
}
