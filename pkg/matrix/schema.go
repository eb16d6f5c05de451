package matrix

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"gopkg.in/yaml.v3"
)

//go:embed schema.cue
var schemaCUE []byte

// SchemaError lists every schema violation found in one file.
type SchemaError struct {
	File     string
	Problems []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf(
		"%s: invalid matrix: %s", e.File, strings.Join(e.Problems, "; "),
	)
}

// ValidateSchema checks a YAML or JSON matrix document against the
// #Matrix definition.
func ValidateSchema(data []byte, source string) error {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf(
			"failed to parse matrix from %s: %w", source, err,
		)
	}
	encoded, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf(
			"failed to convert matrix %s for validation: %w",
			source, err,
		)
	}

	ctx := cuecontext.New()
	schema := ctx.CompileBytes(schemaCUE, cue.Filename("schema.cue"))
	if schema.Err() != nil {
		return fmt.Errorf(
			"internal error: failed to compile schema: %w", schema.Err(),
		)
	}
	root := schema.LookupPath(cue.ParsePath("#Matrix"))
	if root.Err() != nil {
		return fmt.Errorf(
			"internal error: schema definition #Matrix not found: %w",
			root.Err(),
		)
	}

	user := ctx.CompileBytes(encoded, cue.Filename(source))
	if user.Err() != nil {
		return schemaError(source, user.Err())
	}
	if err := root.Unify(user).Validate(cue.Concrete(true)); err != nil {
		return schemaError(source, err)
	}
	return nil
}

func schemaError(source string, err error) error {
	se := &SchemaError{File: source}
	for _, e := range cueerrors.Errors(err) {
		msg := e.Error()
		if path := strings.Join(cueerrors.Path(e), "."); path != "" &&
			!strings.HasPrefix(msg, path) {
			msg = path + ": " + msg
		}
		se.Problems = append(se.Problems, msg)
	}
	if len(se.Problems) == 0 {
		se.Problems = []string{err.Error()}
	}
	return se
}
