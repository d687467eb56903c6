package speech

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/insidejustjoin/justjoin-sub002/pkg/logger"
)

// Recognizer captures a single spoken utterance and returns its best-effort
// transcript. It stops on silence or a terminal recognition event; an empty
// transcript means no speech was detected.
type Recognizer interface {
	Recognize(ctx context.Context, language string) (string, error)
}

// VoiceCapture listens for one utterance at a time. Non-continuous: each
// Listen call captures one utterance and returns; there is no retry loop.
type VoiceCapture struct {
	rec Recognizer

	mu     sync.Mutex
	cancel context.CancelFunc
}

func NewVoiceCapture(rec Recognizer) *VoiceCapture {
	return &VoiceCapture{rec: rec}
}

// Listen blocks until a transcript, silence, or a recognition error. Both
// no-speech and recognition errors come back as an empty transcript with a
// nil error: the caller re-arms without a server round trip either way.
// Only ErrUnavailable is surfaced, so the caller can drop to typed input.
func (v *VoiceCapture) Listen(ctx context.Context, language string) (string, error) {
	listenCtx, cancel := context.WithCancel(ctx)
	v.mu.Lock()
	v.cancel = cancel
	v.mu.Unlock()

	defer func() {
		v.mu.Lock()
		v.cancel = nil
		v.mu.Unlock()
		cancel()
	}()

	transcript, err := v.rec.Recognize(listenCtx, language)
	if err != nil {
		if errors.Is(err, ErrUnavailable) {
			return "", ErrUnavailable
		}
		logger.Warn("speech recognition failed, re-arming", zap.Error(err))
		return "", nil
	}
	return strings.TrimSpace(transcript), nil
}

// Stop ends the current utterance capture early. The in-flight Listen call
// still returns (possibly with an empty transcript).
func (v *VoiceCapture) Stop() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.cancel != nil {
		v.cancel()
	}
}
