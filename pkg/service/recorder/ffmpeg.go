package recorder

import (
	"bytes"
	"context"
	"io"
	"os/exec"
	"strings"
	"sync"
	"syscall"

	"github.com/m-mizutani/goerr/v2"

	"github.com/beakerhub/beakerhub/pkg/domain/types"
)

const chunkSize = 32 * 1024

// FFmpegSource captures microphone audio through an ffmpeg child process
// writing 16kHz mono WAV to stdout.
type FFmpegSource struct {
	binary string
	format string
	device string
}

// NewFFmpegSource builds a source for the given input format and device,
// e.g. ("avfoundation", ":default") on macOS or ("alsa", "default") on Linux.
func NewFFmpegSource(format, device string) *FFmpegSource {
	return &FFmpegSource{
		binary: "ffmpeg",
		format: format,
		device: device,
	}
}

func (s *FFmpegSource) Acquire(ctx context.Context) (Stream, error) {
	if _, err := exec.LookPath(s.binary); err != nil {
		return nil, goerr.Wrap(types.ErrCaptureUnavailable, "ffmpeg not found in PATH")
	}

	cmd := exec.Command(s.binary,
		"-f", s.format,
		"-i", s.device,
		"-ac", "1",
		"-ar", "16000",
		"-f", "wav",
		"-",
	)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, goerr.Wrap(types.ErrCaptureUnavailable, "failed to open ffmpeg stdout")
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return nil, goerr.Wrap(types.ErrCaptureUnavailable, "failed to start ffmpeg", goerr.V("error", err))
	}

	st := &ffmpegStream{
		cmd:     cmd,
		stderr:  &stderr,
		chunks:  make(chan []byte, 16),
		drained: make(chan struct{}),
	}
	go st.drain(stdout)

	return st, nil
}

type ffmpegStream struct {
	cmd     *exec.Cmd
	stderr  *bytes.Buffer
	chunks  chan []byte
	drained chan struct{}
	release sync.Once
}

func (s *ffmpegStream) drain(r io.Reader) {
	defer close(s.drained)
	defer close(s.chunks)
	for {
		buf := make([]byte, chunkSize)
		n, err := r.Read(buf)
		if n > 0 {
			s.chunks <- buf[:n]
		}
		if err != nil {
			return
		}
	}
}

func (s *ffmpegStream) Chunks() <-chan []byte {
	return s.chunks
}

func (s *ffmpegStream) Pause() error {
	if err := s.cmd.Process.Signal(syscall.SIGSTOP); err != nil {
		return goerr.Wrap(err, "failed to suspend ffmpeg")
	}
	return nil
}

func (s *ffmpegStream) Resume() error {
	if err := s.cmd.Process.Signal(syscall.SIGCONT); err != nil {
		return goerr.Wrap(err, "failed to resume ffmpeg")
	}
	return nil
}

func (s *ffmpegStream) Stop() error {
	// ffmpeg finalizes the WAV stream and exits on SIGINT
	if err := s.cmd.Process.Signal(syscall.SIGINT); err != nil {
		return goerr.Wrap(err, "failed to interrupt ffmpeg")
	}
	// Wait must not run while the stdout pipe is still being read; the final
	// WAV bytes arrive between the signal and EOF.
	<-s.drained
	if err := s.cmd.Wait(); err != nil {
		msg := strings.ToLower(s.stderr.String())
		if strings.Contains(msg, "permission denied") || strings.Contains(msg, "operation not permitted") {
			return goerr.Wrap(types.ErrPermissionDenied, "microphone access refused")
		}
	}
	return nil
}

func (s *ffmpegStream) Release() error {
	s.release.Do(func() {
		if s.cmd.ProcessState == nil {
			_ = s.cmd.Process.Kill()
			<-s.drained
			_ = s.cmd.Wait()
		}
	})
	return nil
}
