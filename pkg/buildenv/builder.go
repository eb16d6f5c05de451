package buildenv

import "fmt"

// Identity is what the interpreter under test reports about itself.
type Identity struct {
	OSName     string `json:"os_name"`
	Version    []int  `json:"version"`
	Executable string `json:"executable"`
}

// Overrides pin parts of the environment instead of deriving them
// from the interpreter. Zero values mean "not overridden".
type Overrides struct {
	OS           Family
	Version      Version
	BuildOptions *string
}

// Builder assembles an Environment from an interpreter identity and
// the ambient variables exposed by a Loader.
type Builder struct {
	loader Loader
	exists ExistsFunc
}

// NewBuilder creates a Builder. A nil exists func uses PathExists.
func NewBuilder(loader Loader, exists ExistsFunc) *Builder {
	if exists == nil {
		exists = PathExists
	}
	return &Builder{loader: loader, exists: exists}
}

// FromIdentity builds the environment for a live interpreter.
func (b *Builder) FromIdentity(
	id Identity,
	ov Overrides,
) (Environment, error) {
	family := ov.OS
	if family == "" {
		f, err := ParseFamily(id.OSName)
		if err != nil {
			return Environment{}, fmt.Errorf(
				"interpreter identity: %w", err,
			)
		}
		family = f
	}

	version := ov.Version
	if version.IsZero() {
		if len(id.Version) < 2 {
			return Environment{}, fmt.Errorf(
				"interpreter identity: version %v is incomplete",
				id.Version,
			)
		}
		version = V(id.Version[0], id.Version[1])
	}

	return b.build(family, version, InstallRoot(id.Executable), ov), nil
}

// Synthetic builds an environment without an interpreter, for
// resolving the matrix offline.
func (b *Builder) Synthetic(
	family Family,
	version Version,
	ov Overrides,
) Environment {
	return b.build(family, version, "", ov)
}

func (b *Builder) build(
	family Family,
	version Version,
	root string,
	ov Overrides,
) Environment {
	options := b.loader.Get(EnvBuildOptions)
	if ov.BuildOptions != nil {
		options = *ov.BuildOptions
	}
	_, terminfoSet := b.loader.Lookup(EnvTerminfoDirs)

	return Environment{
		OS:       family,
		Version:  version,
		Options:  ParseOptions(options),
		Terminal: b.loader.Get(EnvTerm),
		Display:  b.loader.Get(EnvDisplay),
		Paths: Paths{
			InstallRoot: root,
			TclLibrary: ResolveTclLibrary(
				root, b.loader.Get(EnvTclLibrary), b.exists,
			),
			TerminfoDirs: ResolveTerminfoDirs(
				terminfoSet, b.exists,
			),
		},
	}
}
