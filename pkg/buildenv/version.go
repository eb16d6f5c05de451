package buildenv

import (
	"fmt"
	"strconv"
	"strings"
)

// Version is a runtime major.minor version.
type Version struct {
	Major int `json:"major" yaml:"major"`
	Minor int `json:"minor" yaml:"minor"`
}

// V is shorthand for Version{major, minor}.
func V(major, minor int) Version {
	return Version{Major: major, Minor: minor}
}

// ParseVersion parses "3.12" (a trailing patch component such as
// "3.12.4" is accepted and ignored).
func ParseVersion(s string) (Version, error) {
	parts := strings.Split(strings.TrimSpace(s), ".")
	if len(parts) < 2 {
		return Version{}, fmt.Errorf(
			"invalid version %q: want major.minor", s,
		)
	}
	major, err := strconv.Atoi(parts[0])
	if err != nil {
		return Version{}, fmt.Errorf(
			"invalid major version in %q: %w", s, err,
		)
	}
	minor, err := strconv.Atoi(parts[1])
	if err != nil {
		return Version{}, fmt.Errorf(
			"invalid minor version in %q: %w", s, err,
		)
	}
	if major < 0 || minor < 0 {
		return Version{}, fmt.Errorf(
			"invalid version %q: negative component", s,
		)
	}
	return Version{Major: major, Minor: minor}, nil
}

// MustParseVersion is ParseVersion that panics on error. Intended
// for literals.
func MustParseVersion(s string) Version {
	v, err := ParseVersion(s)
	if err != nil {
		panic(err)
	}
	return v
}

// Compare returns -1, 0 or 1.
func (v Version) Compare(o Version) int {
	switch {
	case v.Major != o.Major:
		if v.Major < o.Major {
			return -1
		}
		return 1
	case v.Minor < o.Minor:
		return -1
	case v.Minor > o.Minor:
		return 1
	}
	return 0
}

// Less reports whether v sorts before o.
func (v Version) Less(o Version) bool { return v.Compare(o) < 0 }

// AtLeast reports whether v >= o.
func (v Version) AtLeast(o Version) bool { return v.Compare(o) >= 0 }

// IsZero reports whether v is the zero version.
func (v Version) IsZero() bool { return v == Version{} }

func (v Version) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// MarshalText implements encoding.TextMarshaler.
func (v Version) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler so versions
// can be written as "3.12" in YAML, JSON and flags.
func (v *Version) UnmarshalText(text []byte) error {
	parsed, err := ParseVersion(string(text))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}
