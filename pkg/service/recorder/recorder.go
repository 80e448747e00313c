package recorder

import (
	"bytes"
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/beakerhub/beakerhub/pkg/domain/types"
	"github.com/beakerhub/beakerhub/pkg/utils/logging"
)

// Stream is one live capture session obtained from a Source. Release must be
// safe to call more than once and after Stop.
type Stream interface {
	Pause() error
	Resume() error
	// Stop ends capture and closes the channel returned by Chunks.
	Stop() error
	Release() error
	Chunks() <-chan []byte
}

// Source hands out capture streams, one at a time per Recorder.
type Source interface {
	Acquire(ctx context.Context) (Stream, error)
}

// Artifact is a finished recording. It becomes unusable once the recorder
// starts a new session or is reset.
type Artifact struct {
	data     []byte
	mimeType string
	duration time.Duration
	revoked  atomic.Bool
}

func (a *Artifact) MIMEType() string        { return a.mimeType }
func (a *Artifact) Duration() time.Duration { return a.duration }

// Bytes returns the recorded audio, or an error when the artifact has been
// invalidated by a later Start or Reset.
func (a *Artifact) Bytes() ([]byte, error) {
	if a.revoked.Load() {
		return nil, goerr.New("audio artifact has been invalidated")
	}
	return a.data, nil
}

func (a *Artifact) invalidate() {
	a.revoked.Store(true)
}

type Option func(*Recorder)

func WithNowFunc(fn func() time.Time) Option {
	return func(r *Recorder) {
		r.now = fn
	}
}

// Recorder drives a capture stream through idle, recording, paused and
// stopped. All methods are safe for concurrent use.
type Recorder struct {
	mu     sync.Mutex
	source Source
	now    func() time.Time

	state     types.RecorderState
	stream    Stream
	collected chan [][]byte
	elapsed   time.Duration
	segStart  time.Time
	artifact  *Artifact
}

func New(source Source, opts ...Option) *Recorder {
	r := &Recorder{
		source: source,
		now:    time.Now,
		state:  types.RecorderStateIdle,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Recorder) State() types.RecorderState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Elapsed reports recorded time: advancing while recording, frozen while
// paused, and final once stopped.
func (r *Recorder) Elapsed() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state == types.RecorderStateRecording {
		return r.elapsed + r.now().Sub(r.segStart)
	}
	return r.elapsed
}

// Start acquires a capture stream and begins a new recording. A stream held
// from an earlier session is released first, and any artifact issued by a
// previous Stop is invalidated.
func (r *Recorder) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.source == nil {
		return goerr.Wrap(types.ErrCaptureUnavailable, "no capture source configured")
	}

	if r.stream != nil {
		r.releaseLocked()
	}
	if r.artifact != nil {
		r.artifact.invalidate()
		r.artifact = nil
	}

	stream, err := r.source.Acquire(ctx)
	if err != nil {
		return goerr.Wrap(err, "failed to acquire capture stream")
	}

	r.stream = stream
	r.collected = collect(stream.Chunks())
	r.elapsed = 0
	r.segStart = r.now()
	r.state = types.RecorderStateRecording

	return nil
}

// collect drains the stream until its chunk channel closes, then delivers
// everything gathered in one send.
func collect(ch <-chan []byte) chan [][]byte {
	out := make(chan [][]byte, 1)
	go func() {
		var buf [][]byte
		for c := range ch {
			buf = append(buf, c)
		}
		out <- buf
	}()
	return out
}

// Pause freezes elapsed time and chunk accumulation. A no-op unless recording.
func (r *Recorder) Pause() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != types.RecorderStateRecording {
		return nil
	}
	if err := r.stream.Pause(); err != nil {
		return goerr.Wrap(err, "failed to pause capture stream")
	}

	r.elapsed += r.now().Sub(r.segStart)
	r.state = types.RecorderStatePaused
	return nil
}

// Resume continues a paused recording. A no-op unless paused.
func (r *Recorder) Resume() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != types.RecorderStatePaused {
		return nil
	}
	if err := r.stream.Resume(); err != nil {
		return goerr.Wrap(err, "failed to resume capture stream")
	}

	r.segStart = r.now()
	r.state = types.RecorderStateRecording
	return nil
}

// Stop ends the session, releases the capture stream and assembles the
// accumulated chunks into an artifact. From idle or stopped it is a no-op and
// returns the previous artifact, if any.
func (r *Recorder) Stop() (*Artifact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != types.RecorderStateRecording && r.state != types.RecorderStatePaused {
		return r.artifact, nil
	}

	if r.state == types.RecorderStateRecording {
		r.elapsed += r.now().Sub(r.segStart)
	}

	if err := r.stream.Stop(); err != nil {
		r.releaseLocked()
		r.state = types.RecorderStateStopped
		return nil, goerr.Wrap(err, "failed to stop capture stream")
	}

	chunks := <-r.collected
	r.releaseLocked()
	r.collected = nil

	var buf bytes.Buffer
	for _, c := range chunks {
		buf.Write(c)
	}

	r.artifact = &Artifact{
		data:     buf.Bytes(),
		mimeType: "audio/wav",
		duration: r.elapsed,
	}
	r.state = types.RecorderStateStopped

	return r.artifact, nil
}

// Reset releases any held stream, invalidates any issued artifact and returns
// to idle. This is the recovery path from any state.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.releaseLocked()
	if r.artifact != nil {
		r.artifact.invalidate()
		r.artifact = nil
	}
	r.collected = nil
	r.elapsed = 0
	r.state = types.RecorderStateIdle
}

func (r *Recorder) releaseLocked() {
	if r.stream == nil {
		return
	}
	if err := r.stream.Release(); err != nil {
		logging.Default().Warn("failed to release capture stream", "error", err)
	}
	r.stream = nil
}
