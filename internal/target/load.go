package target

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"
)

//go:embed schema.cue
var schemaCUE string

//go:embed targets.yaml
var defaultTargetsYAML []byte

// document is the YAML shape of a targets file.
type document struct {
	Tables map[string]tableDoc `yaml:"tables"`
}

type tableDoc struct {
	Default   *Pair           `yaml:"default"`
	Target    *float64        `yaml:"target"`
	Tolerance *float64        `yaml:"tolerance"`
	Entries   map[string]Pair `yaml:"entries"`
}

// LoadError describes an invalid targets document.
type LoadError struct {
	Path    string
	Message string
	Err     error
}

func (e *LoadError) Error() string {
	prefix := "targets"
	if e.Path != "" {
		prefix = e.Path
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Message)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// LoadFile reads and validates a targets YAML file.
func LoadFile(path string) (Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Set{}, &LoadError{Path: path, Message: "failed to read file", Err: err}
	}
	set, err := Parse(data)
	if err != nil {
		var le *LoadError
		if errors.As(err, &le) {
			le.Path = path
		}
		return Set{}, err
	}
	return set, nil
}

// Parse decodes a targets document, rejecting unknown fields, then checks it
// against the embedded CUE schema.
func Parse(data []byte) (Set, error) {
	var doc document
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return Set{}, &LoadError{Message: "failed to parse YAML", Err: err}
	}
	if len(doc.Tables) == 0 {
		return Set{}, &LoadError{Message: "no tables defined"}
	}

	if err := validateSchema(data); err != nil {
		return Set{}, err
	}

	tables := make([]Table, 0, len(doc.Tables))
	for name, td := range doc.Tables {
		t, err := td.table(name)
		if err != nil {
			return Set{}, err
		}
		tables = append(tables, t)
	}
	return NewSet(tables...), nil
}

// DefaultSet returns the dashboard's built-in target tables.
func DefaultSet() Set {
	set, err := Parse(defaultTargetsYAML)
	if err != nil {
		panic(fmt.Sprintf("built-in targets are invalid: %v", err))
	}
	return set
}

func (td tableDoc) table(name string) (Table, error) {
	t := Table{Name: name, Entries: td.Entries}
	if t.Entries == nil {
		t.Entries = map[string]Pair{}
	}
	switch {
	case td.Default != nil && td.Target != nil:
		return Table{}, &LoadError{Message: fmt.Sprintf("table %q: default and target are mutually exclusive", name)}
	case td.Default != nil:
		t.Default = *td.Default
	case td.Target != nil:
		tolerance := 1.0
		if td.Tolerance != nil {
			tolerance = *td.Tolerance
		}
		t.Default = FromTarget(*td.Target, tolerance)
	default:
		return Table{}, &LoadError{Message: fmt.Sprintf("table %q: a default pair or target is required", name)}
	}
	return t, nil
}

// validateSchema unifies the raw document with the CUE schema.
func validateSchema(data []byte) error {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return &LoadError{Message: "failed to parse YAML", Err: err}
	}

	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return &LoadError{Message: "invalid target schema", Err: err}
	}

	value := ctx.Encode(raw)
	if err := value.Err(); err != nil {
		return &LoadError{Message: "failed to encode document", Err: err}
	}

	if err := schema.Unify(value).Validate(cue.Concrete(true)); err != nil {
		return &LoadError{Message: "schema validation failed", Err: err}
	}
	return nil
}
