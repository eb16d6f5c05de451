package buildenv

import (
	"sort"
	"strings"
)

// OptionSeparator joins build-option tokens in BUILD_OPTIONS, e.g.
// "freethreaded+pgo+lto".
const OptionSeparator = "+"

// Well-known build-option tokens.
const (
	OptionStatic       = "static"
	OptionFreethreaded = "freethreaded"
	OptionDebug        = "debug"
	OptionPGO          = "pgo"
	OptionLTO          = "lto"
	OptionNoOpt        = "noopt"
)

// OptionSet is an unordered set of active build-option tokens.
type OptionSet map[string]struct{}

// ParseOptions splits a BUILD_OPTIONS string into a set. Empty
// tokens are dropped and surrounding whitespace is trimmed.
func ParseOptions(s string) OptionSet {
	set := OptionSet{}
	for _, tok := range strings.Split(s, OptionSeparator) {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		set[tok] = struct{}{}
	}
	return set
}

// NewOptionSet builds a set from the given tokens.
func NewOptionSet(tokens ...string) OptionSet {
	return ParseOptions(strings.Join(tokens, OptionSeparator))
}

// Has reports whether token is active.
func (o OptionSet) Has(token string) bool {
	_, ok := o[token]
	return ok
}

// Tokens returns the active tokens sorted.
func (o OptionSet) Tokens() []string {
	out := make([]string, 0, len(o))
	for tok := range o {
		out = append(out, tok)
	}
	sort.Strings(out)
	return out
}

// Clone returns an independent copy.
func (o OptionSet) Clone() OptionSet {
	out := make(OptionSet, len(o))
	for tok := range o {
		out[tok] = struct{}{}
	}
	return out
}

func (o OptionSet) String() string {
	return strings.Join(o.Tokens(), OptionSeparator)
}
