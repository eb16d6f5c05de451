package probe

import (
	"fmt"
	"io"
	"os/exec"
	"time"

	"github.com/creack/pty"
)

// drainTimeout bounds how long terminal output is drained after
// the probe exits.
const drainTimeout = 2 * time.Second

// runWithPTY runs cmd attached to a new pseudo-terminal and copies
// what it writes to the terminal into out.
func runWithPTY(cmd *exec.Cmd, out io.Writer) error {
	tty, err := pty.StartWithSize(cmd, &pty.Winsize{Rows: 24, Cols: 80})
	if err != nil {
		return fmt.Errorf("start pseudo-terminal: %w", err)
	}
	defer tty.Close()

	drained := make(chan struct{})
	go func() {
		_, _ = io.Copy(out, tty)
		close(drained)
	}()

	err = cmd.Wait()
	select {
	case <-drained:
	case <-time.After(drainTimeout):
	}
	return err
}
