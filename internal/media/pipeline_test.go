package media

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStream struct {
	chunks     chan []byte
	videoWidth int
	sampleRate int
	closed     bool
}

func newFakeStream(width, rate int) *fakeStream {
	return &fakeStream{chunks: make(chan []byte, 16), videoWidth: width, sampleRate: rate}
}

func (s *fakeStream) Chunks() <-chan []byte { return s.chunks }
func (s *fakeStream) VideoWidth() int       { return s.videoWidth }
func (s *fakeStream) SampleRate() int       { return s.sampleRate }
func (s *fakeStream) Close() error {
	s.closed = true
	return nil
}

type fakeDevice struct {
	stream *fakeStream
	err    error
	kinds  []Kind
}

func (d *fakeDevice) Acquire(kind Kind, c Constraints) (Stream, error) {
	d.kinds = append(d.kinds, kind)
	if d.err != nil {
		return nil, d.err
	}
	return d.stream, nil
}

func TestWindowBuffersChunks(t *testing.T) {
	stream := newFakeStream(1280, 48000)
	p := NewPipeline(&fakeDevice{stream: stream}, nil)

	require.NoError(t, p.Start(KindVideo))
	assert.True(t, p.Active())

	stream.chunks <- []byte("abc")
	stream.chunks <- []byte("def")
	close(stream.chunks)

	blob := p.Stop()
	require.NotNil(t, blob)
	assert.Equal(t, KindVideo, blob.Kind)
	assert.Equal(t, []byte("abcdef"), blob.Data)
	assert.Equal(t, "video/webm", blob.Mimetype)
	assert.True(t, stream.closed)
	assert.False(t, p.Active())
}

func TestWindowExclusivity(t *testing.T) {
	stream := newFakeStream(640, 44100)
	p := NewPipeline(&fakeDevice{stream: stream}, nil)

	require.NoError(t, p.Start(KindVideo))
	assert.Error(t, p.Start(KindAudio))

	close(stream.chunks)
	p.Stop()

	// A fully stopped window frees the device for the next one.
	stream2 := newFakeStream(0, 44100)
	p2 := NewPipeline(&fakeDevice{stream: stream2}, nil)
	require.NoError(t, p2.Start(KindAudio))
}

func TestPermissionDeniedYieldsNoSegment(t *testing.T) {
	p := NewPipeline(&fakeDevice{err: fmt.Errorf("permission denied")}, nil)

	// Denial is not an error for the caller.
	require.NoError(t, p.Start(KindVideo))
	assert.False(t, p.Active())
	assert.Nil(t, p.Stop())
}

func TestEmptyWindowYieldsNoBlob(t *testing.T) {
	stream := newFakeStream(640, 44100)
	p := NewPipeline(&fakeDevice{stream: stream}, nil)

	require.NoError(t, p.Start(KindAudio))
	close(stream.chunks)
	assert.Nil(t, p.Stop())
	assert.True(t, stream.closed)
}

func TestStopWithoutStart(t *testing.T) {
	p := NewPipeline(&fakeDevice{}, nil)
	assert.Nil(t, p.Stop())
}

func TestClassifyQuality(t *testing.T) {
	cases := []struct {
		kind  Kind
		width int
		rate  int
		want  int
	}{
		{KindVideo, 1920, 0, TierHigh},
		{KindVideo, 1280, 0, TierHigh},
		{KindVideo, 640, 0, TierMedium},
		{KindVideo, 320, 0, TierLow},
		{KindAudio, 0, 48000, TierHigh},
		{KindAudio, 0, 44100, TierMedium},
		{KindAudio, 0, 16000, TierLow},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ClassifyQuality(tc.kind, tc.width, tc.rate),
			"kind=%s width=%d rate=%d", tc.kind, tc.width, tc.rate)
	}
}
