package media

import (
	"context"
	"time"

	"github.com/insidejustjoin/justjoin-sub002/pkg/metrics"
)

// Quality tiers for a capture window.
const (
	TierLow    = 0
	TierMedium = 1
	TierHigh   = 2
)

// Constraints are the fixed acquisition settings for a recording window.
type Constraints struct {
	EchoCancellation bool
	NoiseSuppression bool
	AutoGainControl  bool
	MinVideoWidth    int
	MinSampleRate    int
}

// DefaultConstraints mirror what the capture front end requests.
func DefaultConstraints() Constraints {
	return Constraints{
		EchoCancellation: true,
		NoiseSuppression: true,
		AutoGainControl:  true,
		MinVideoWidth:    640,
		MinSampleRate:    44100,
	}
}

// ClassifyQuality maps the observed stream capabilities to a tier.
func ClassifyQuality(kind Kind, videoWidth, sampleRate int) int {
	switch kind {
	case KindVideo:
		switch {
		case videoWidth >= 1280:
			return TierHigh
		case videoWidth >= 640:
			return TierMedium
		default:
			return TierLow
		}
	default:
		switch {
		case sampleRate >= 48000:
			return TierHigh
		case sampleRate >= 44100:
			return TierMedium
		default:
			return TierLow
		}
	}
}

// qualitySampler re-samples a live stream's capabilities on an interval
// and publishes the tier. It runs beside the turn machine and never gates
// conversational transitions.
func qualitySampler(ctx context.Context, kind Kind, stream Stream, m *metrics.Metrics, interval time.Duration) {
	if m == nil {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.ObserveCaptureQuality(string(kind), ClassifyQuality(kind, stream.VideoWidth(), stream.SampleRate()))
		}
	}
}
