package recorder_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/beakerhub/beakerhub/pkg/domain/types"
	"github.com/beakerhub/beakerhub/pkg/service/recorder"
)

type fakeStream struct {
	chunks   chan []byte
	paused   int
	resumed  int
	stopped  int
	released int
}

func newFakeStream(chunks ...[]byte) *fakeStream {
	ch := make(chan []byte, len(chunks))
	for _, c := range chunks {
		ch <- c
	}
	return &fakeStream{chunks: ch}
}

func (s *fakeStream) Pause() error  { s.paused++; return nil }
func (s *fakeStream) Resume() error { s.resumed++; return nil }
func (s *fakeStream) Stop() error {
	s.stopped++
	if s.stopped == 1 {
		close(s.chunks)
	}
	return nil
}
func (s *fakeStream) Release() error        { s.released++; return nil }
func (s *fakeStream) Chunks() <-chan []byte { return s.chunks }

type fakeSource struct {
	streams []*fakeStream
	err     error
	next    int
}

func (s *fakeSource) Acquire(ctx context.Context) (recorder.Stream, error) {
	if s.err != nil {
		return nil, s.err
	}
	st := s.streams[s.next]
	s.next++
	return st, nil
}

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) advance(d time.Duration) { c.now = c.now.Add(d) }

func TestRecorderLifecycle(t *testing.T) {
	ctx := context.Background()

	stream := newFakeStream([]byte("aaa"), []byte("bbb"))
	clock := &fakeClock{now: time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)}
	r := recorder.New(&fakeSource{streams: []*fakeStream{stream}}, recorder.WithNowFunc(clock.Now))

	gt.Value(t, r.State()).Equal(types.RecorderStateIdle)
	gt.NoError(t, r.Start(ctx)).Required()
	gt.Value(t, r.State()).Equal(types.RecorderStateRecording)

	clock.advance(10 * time.Second)
	gt.Value(t, r.Elapsed()).Equal(10 * time.Second)

	artifact, err := r.Stop()
	gt.NoError(t, err).Required()
	gt.Value(t, r.State()).Equal(types.RecorderStateStopped)
	gt.Value(t, artifact.Duration()).Equal(10 * time.Second)
	gt.Value(t, artifact.MIMEType()).Equal("audio/wav")

	data, err := artifact.Bytes()
	gt.NoError(t, err).Required()
	gt.Value(t, string(data)).Equal("aaabbb")

	gt.Number(t, stream.released).Equal(1)
}

func TestRecorderPauseFreezesElapsed(t *testing.T) {
	ctx := context.Background()

	stream := newFakeStream()
	clock := &fakeClock{now: time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)}
	r := recorder.New(&fakeSource{streams: []*fakeStream{stream}}, recorder.WithNowFunc(clock.Now))

	gt.NoError(t, r.Start(ctx)).Required()
	clock.advance(5 * time.Second)

	gt.NoError(t, r.Pause())
	gt.Value(t, r.State()).Equal(types.RecorderStatePaused)
	clock.advance(time.Minute)
	gt.Value(t, r.Elapsed()).Equal(5 * time.Second)

	gt.NoError(t, r.Resume())
	clock.advance(3 * time.Second)
	gt.Value(t, r.Elapsed()).Equal(8 * time.Second)

	artifact, err := r.Stop()
	gt.NoError(t, err).Required()
	gt.Value(t, artifact.Duration()).Equal(8 * time.Second)
	gt.Number(t, stream.paused).Equal(1)
	gt.Number(t, stream.resumed).Equal(1)
}

func TestRecorderNoOpTransitions(t *testing.T) {
	ctx := context.Background()

	stream := newFakeStream()
	r := recorder.New(&fakeSource{streams: []*fakeStream{stream}})

	// pause, resume and stop all no-op from idle
	gt.NoError(t, r.Pause())
	gt.NoError(t, r.Resume())
	artifact, err := r.Stop()
	gt.NoError(t, err)
	gt.Value(t, artifact).Nil()
	gt.Value(t, r.State()).Equal(types.RecorderStateIdle)

	gt.NoError(t, r.Start(ctx)).Required()
	gt.NoError(t, r.Resume())
	gt.Value(t, r.State()).Equal(types.RecorderStateRecording)
}

func TestRecorderStartInvalidatesArtifact(t *testing.T) {
	ctx := context.Background()

	first := newFakeStream([]byte("one"))
	second := newFakeStream([]byte("two"))
	r := recorder.New(&fakeSource{streams: []*fakeStream{first, second}})

	gt.NoError(t, r.Start(ctx)).Required()
	artifact, err := r.Stop()
	gt.NoError(t, err).Required()

	gt.NoError(t, r.Start(ctx)).Required()
	_, err = artifact.Bytes()
	gt.Value(t, err).NotNil()
}

func TestRecorderStartWhileRecordingReleasesPrior(t *testing.T) {
	ctx := context.Background()

	first := newFakeStream()
	second := newFakeStream()
	r := recorder.New(&fakeSource{streams: []*fakeStream{first, second}})

	gt.NoError(t, r.Start(ctx)).Required()
	gt.NoError(t, r.Start(ctx)).Required()

	gt.Number(t, first.released).Equal(1)
	gt.Value(t, r.State()).Equal(types.RecorderStateRecording)
}

func TestRecorderResetFromAnyState(t *testing.T) {
	ctx := context.Background()

	stream := newFakeStream([]byte("data"))
	r := recorder.New(&fakeSource{streams: []*fakeStream{stream}})

	gt.NoError(t, r.Start(ctx)).Required()
	r.Reset()

	gt.Value(t, r.State()).Equal(types.RecorderStateIdle)
	gt.Value(t, r.Elapsed()).Equal(time.Duration(0))
	gt.Number(t, stream.released).Equal(1)

	r.Reset()
	gt.Value(t, r.State()).Equal(types.RecorderStateIdle)
}

func TestRecorderCaptureUnavailable(t *testing.T) {
	ctx := context.Background()

	r := recorder.New(nil)
	err := r.Start(ctx)
	gt.Bool(t, errors.Is(err, types.ErrCaptureUnavailable)).True()

	denied := recorder.New(&fakeSource{err: types.ErrPermissionDenied})
	err = denied.Start(ctx)
	gt.Bool(t, errors.Is(err, types.ErrPermissionDenied)).True()
	gt.Value(t, denied.State()).Equal(types.RecorderStateIdle)
}
