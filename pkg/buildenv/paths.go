package buildenv

import (
	"os"
	"path/filepath"
)

// TclCandidates are Tcl support directories relative to the install
// root, in probe order: POSIX layout first, then Windows.
var TclCandidates = [][]string{
	{"lib", "tcl", "tcl"},
	{"tcl"},
}

// TerminfoCandidates are system terminfo databases, in order.
var TerminfoCandidates = []string{
	"/etc/terminfo",
	"/lib/terminfo",
	"/usr/share/terminfo",
}

// ExistsFunc reports whether a filesystem path exists.
type ExistsFunc func(path string) bool

// PathExists is the default ExistsFunc.
func PathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// InstallRoot derives the distribution root from the interpreter
// executable: the parent of the directory holding it.
func InstallRoot(executable string) string {
	if executable == "" {
		return ""
	}
	return filepath.Dir(filepath.Dir(executable))
}

// ResolveTclLibrary returns the first existing Tcl candidate under
// root, falling back to an ambient TCL_LIBRARY value.
func ResolveTclLibrary(
	root string,
	ambient string,
	exists ExistsFunc,
) string {
	if root != "" {
		for _, parts := range TclCandidates {
			candidate := filepath.Join(
				append([]string{root}, parts...)...,
			)
			if exists(candidate) {
				return candidate
			}
		}
	}
	return ambient
}

// ResolveTerminfoDirs returns the existing terminfo candidates. It
// returns nil when the caller already set TERMINFO_DIRS.
func ResolveTerminfoDirs(
	ambientSet bool,
	exists ExistsFunc,
) []string {
	if ambientSet {
		return nil
	}
	var dirs []string
	for _, p := range TerminfoCandidates {
		if exists(p) {
			dirs = append(dirs, p)
		}
	}
	return dirs
}
