package matrix

import (
	"digital.vasic.distverify/pkg/buildenv"
)

// Domain describes the environments the matrix must cover.
type Domain struct {
	Families []buildenv.Family
	Versions []buildenv.Version

	// Options are the build-option tokens whose every subset is
	// part of the domain.
	Options []string
}

// DefaultDomain is the documented support domain: both OS families,
// runtime 3.9 through 3.14, and every combination of the common
// build options.
func DefaultDomain() Domain {
	var versions []buildenv.Version
	for minor := 9; minor <= 14; minor++ {
		versions = append(versions, buildenv.V(3, minor))
	}
	return Domain{
		Families: buildenv.Families,
		Versions: versions,
		Options: []string{
			buildenv.OptionStatic,
			buildenv.OptionFreethreaded,
			buildenv.OptionDebug,
			buildenv.OptionPGO,
			buildenv.OptionLTO,
		},
	}
}

// Environments enumerates the domain. Terminal, display and Tcl
// library presence are each taken both ways.
func (d Domain) Environments() []buildenv.Environment {
	subsets := 1 << len(d.Options)
	var out []buildenv.Environment
	for _, family := range d.Families {
		for _, version := range d.Versions {
			for mask := 0; mask < subsets; mask++ {
				var tokens []string
				for i, opt := range d.Options {
					if mask&(1<<i) != 0 {
						tokens = append(tokens, opt)
					}
				}
				for ambient := 0; ambient < 8; ambient++ {
					env := buildenv.Environment{
						OS:      family,
						Version: version,
						Options: buildenv.NewOptionSet(tokens...),
					}
					if ambient&1 != 0 {
						env.Terminal = "xterm"
					}
					if ambient&2 != 0 {
						env.Display = ":0"
					}
					if ambient&4 != 0 {
						env.Paths.TclLibrary = "tcl"
					}
					out = append(out, env)
				}
			}
		}
	}
	return out
}

// CheckCoverage resolves every feature against every environment in
// d and returns each gap or overlap found.
func (m *Matrix) CheckCoverage(d Domain) []*GapError {
	var gaps []*GapError
	envs := d.Environments()
	for _, f := range m.Features() {
		for _, env := range envs {
			if _, gap := f.resolve(env); gap != nil {
				gaps = append(gaps, gap)
			}
		}
	}
	return gaps
}
