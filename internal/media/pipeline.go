// Package media acquires camera/microphone streams per recording window
// and packages what they produce for best-effort upload.
package media

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/insidejustjoin/justjoin-sub002/pkg/logger"
	"github.com/insidejustjoin/justjoin-sub002/pkg/metrics"
)

type Kind string

const (
	KindVideo Kind = "video"
	KindAudio Kind = "audio"
)

// Device hands out live capture streams. Acquire requests camera+mic for
// video, mic-only for audio. A permission denial returns an error; the
// pipeline treats that as "no segments this window", never as fatal.
type Device interface {
	Acquire(kind Kind, c Constraints) (Stream, error)
}

// Stream is one live device stream producing data chunks until closed.
type Stream interface {
	Chunks() <-chan []byte
	VideoWidth() int
	SampleRate() int
	Close() error
}

// Blob is one finished recording window's packaged output.
type Blob struct {
	Kind     Kind
	Data     []byte
	Mimetype string
	Started  time.Time
	Stopped  time.Time
}

type window struct {
	kind     Kind
	stream   Stream
	buf      bytes.Buffer
	started  time.Time
	stopCh   chan struct{}
	doneCh   chan struct{}
	stopOnce sync.Once
}

// Pipeline owns the device handle for the lifetime of one recording
// window. The window must be fully stopped before a new one opens.
type Pipeline struct {
	device   Device
	metrics  *metrics.Metrics
	interval time.Duration

	mu      sync.Mutex
	current *window
}

func NewPipeline(device Device, m *metrics.Metrics) *Pipeline {
	return &Pipeline{
		device:   device,
		metrics:  m,
		interval: 5 * time.Second,
	}
}

// Start opens a new recording window. A denied device permission is not an
// error for the caller: the window simply yields no segment.
func (p *Pipeline) Start(kind Kind) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.current != nil {
		return fmt.Errorf("recording window already open for %s", p.current.kind)
	}

	stream, err := p.device.Acquire(kind, DefaultConstraints())
	if err != nil {
		logger.Warn("device acquisition failed, window yields no segments",
			zap.String("kind", string(kind)), zap.Error(err))
		return nil
	}

	w := &window{
		kind:    kind,
		stream:  stream,
		started: time.Now(),
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}
	p.current = w

	samplerCtx, cancelSampler := context.WithCancel(context.Background())
	go qualitySampler(samplerCtx, kind, stream, p.metrics, p.interval)

	go func() {
		defer close(w.doneCh)
		defer cancelSampler()
		for {
			select {
			case chunk, ok := <-stream.Chunks():
				if !ok {
					return
				}
				w.buf.Write(chunk)
			case <-w.stopCh:
				// Drain whatever the stream already produced.
				for {
					select {
					case chunk, ok := <-stream.Chunks():
						if !ok {
							return
						}
						w.buf.Write(chunk)
					default:
						return
					}
				}
			}
		}
	}()

	return nil
}

// Stop finalizes the current window into a single blob and releases the
// device stream. Returns nil when no window produced data (e.g. the
// device permission was denied at Start).
func (p *Pipeline) Stop() *Blob {
	p.mu.Lock()
	w := p.current
	p.current = nil
	p.mu.Unlock()

	if w == nil {
		return nil
	}

	w.stopOnce.Do(func() { close(w.stopCh) })
	<-w.doneCh
	if err := w.stream.Close(); err != nil {
		logger.Warn("device stream release failed", zap.Error(err))
	}

	if w.buf.Len() == 0 {
		return nil
	}
	return &Blob{
		Kind:     w.kind,
		Data:     w.buf.Bytes(),
		Mimetype: mimetypeFor(w.kind),
		Started:  w.started,
		Stopped:  time.Now(),
	}
}

// Active reports whether a recording window is currently open.
func (p *Pipeline) Active() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current != nil
}

func mimetypeFor(kind Kind) string {
	if kind == KindVideo {
		return "video/webm"
	}
	return "audio/webm"
}
