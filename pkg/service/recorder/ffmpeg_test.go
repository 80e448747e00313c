package recorder

import (
	"bytes"
	"os/exec"
	"testing"

	"github.com/m-mizutani/gt"
)

// Stop must not reap the child before the stdout drain hits EOF; the bytes
// written between the interrupt and process exit are part of the recording.
func TestFFmpegStreamStopDrainsStdout(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}

	cmd := exec.Command("sh", "-c", "printf final-wav-bytes; exec sleep 30")
	stdout, err := cmd.StdoutPipe()
	gt.NoError(t, err).Required()
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	gt.NoError(t, cmd.Start()).Required()

	st := &ffmpegStream{
		cmd:     cmd,
		stderr:  &stderr,
		chunks:  make(chan []byte, 16),
		drained: make(chan struct{}),
	}
	go st.drain(stdout)

	first, ok := <-st.chunks
	gt.Bool(t, ok).True()

	gt.NoError(t, st.Stop())

	buf := append([]byte{}, first...)
	for c := range st.chunks {
		buf = append(buf, c...)
	}
	gt.Value(t, string(buf)).Equal("final-wav-bytes")

	gt.NoError(t, st.Release())
}
