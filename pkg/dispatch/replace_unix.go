//go:build unix

package dispatch

import (
	"fmt"
	"os"
	"os/exec"
	"syscall"
)

var (
	execFunc  = syscall.Exec
	chdirFunc = os.Chdir
)

// replace switches to the driver directory and replaces the
// current process image with the driver.
func replace(inv Invocation) error {
	path, err := exec.LookPath(inv.Path)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", inv.Path, err)
	}
	if inv.Dir != "" {
		if err := chdirFunc(inv.Dir); err != nil {
			return fmt.Errorf("enter %s: %w", inv.Dir, err)
		}
	}
	if err := execFunc(path, inv.Argv, inv.Env); err != nil {
		return fmt.Errorf("exec %s: %w", path, err)
	}
	return nil
}
