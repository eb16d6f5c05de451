//go:build !unix

package dispatch

import "fmt"

func replace(inv Invocation) error {
	return fmt.Errorf("process replacement is not supported on this host: %s", inv.Path)
}
