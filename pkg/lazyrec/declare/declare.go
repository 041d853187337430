package declare

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/randalmurphal/lazyrec/pkg/lazyrec"
	"github.com/randalmurphal/lazyrec/pkg/lazyrec/registry"
)

// Sentinel errors for building declarative specifications.
var (
	// ErrNoFields indicates the file declares no fields.
	ErrNoFields = errors.New("no fields declared")

	// ErrUnknownKind indicates a field uses an unregistered kind.
	ErrUnknownKind = errors.New("unknown field kind")

	// ErrEmptyDefinition indicates a field definition sets none of
	// template, first_of, expr, const, or kind.
	ErrEmptyDefinition = errors.New("empty field definition")
)

// Lookup resolves a name while a declarative field evaluates.
// ok is false when the name is unknown; a non-nil error is a
// propagated compute failure from a sibling field.
type Lookup func(name string) (value any, ok bool, err error)

// File is the on-disk shape of a declarative specification.
type File struct {
	Fields map[string]Definition `yaml:"fields" json:"fields"`
}

// Definition declares how one field derives its value.
// Exactly one of Template, FirstOf, Expr, or Const should be set;
// Kind selects a custom registered kind instead, with the whole
// definition passed to its builder.
type Definition struct {
	// Kind names a registered field kind. Empty means infer from
	// whichever built-in key is set.
	Kind string `yaml:"kind,omitempty" json:"kind,omitempty"`

	// Template is a placeholder string, e.g. "${first} ${last}".
	// Placeholders resolve against source keys first, then sibling
	// record fields (computed lazily).
	Template string `yaml:"template,omitempty" json:"template,omitempty"`

	// FirstOf lists names tried in order; the first truthy value wins.
	FirstOf []string `yaml:"first_of,omitempty" json:"first_of,omitempty"`

	// Expr is a boolean expression, e.g. "age >= 18".
	Expr string `yaml:"expr,omitempty" json:"expr,omitempty"`

	// Const is a literal value.
	Const any `yaml:"const,omitempty" json:"const,omitempty"`

	// Args carries free-form parameters for custom kinds.
	Args map[string]any `yaml:"args,omitempty" json:"args,omitempty"`
}

// BuilderFunc turns a definition into a compute function.
type BuilderFunc func(name string, def Definition) (lazyrec.ComputeFunc[map[string]any], error)

// kinds holds the registered field-kind builders.
var kinds = registry.New[string, BuilderFunc]()

func init() {
	kinds.Register("template", buildTemplate)
	kinds.Register("first_of", buildFirstOf)
	kinds.Register("expr", buildExpr)
	kinds.Register("const", buildConst)
}

// RegisterKind registers a custom field kind, replacing any existing
// builder with the same name. Definitions select it with "kind: name".
func RegisterKind(name string, builder BuilderFunc) {
	if name == "" {
		panic("declare: kind name cannot be empty")
	}
	if builder == nil {
		panic("declare: kind builder cannot be nil")
	}
	kinds.Register(name, builder)
}

// Kinds returns the registered kind names in sorted order.
func Kinds() []string {
	names := kinds.Keys()
	sort.Strings(names)
	return names
}

// FromFile loads a declarative specification from a file,
// auto-detecting format by extension.
// Supported extensions: .yaml, .yml, .json
func FromFile(path string) (*lazyrec.Spec[map[string]any], error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read spec file: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		return FromYAML(data)
	case ".json":
		return FromJSON(data)
	default:
		return nil, fmt.Errorf("unsupported spec file extension: %s", ext)
	}
}

// FromYAML parses YAML data and builds the specification.
func FromYAML(data []byte) (*lazyrec.Spec[map[string]any], error) {
	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	return Build(file)
}

// FromJSON parses JSON data and builds the specification.
func FromJSON(data []byte) (*lazyrec.Spec[map[string]any], error) {
	var file File
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}
	return Build(file)
}

// Build turns a parsed File into a specification builder. The caller
// may chain additional Field calls before compiling:
//
//	spec, err := declare.FromFile("person.yaml")
//	if err != nil { ... }
//	factory := spec.Compile(lazyrec.WithLogger(logger))
func Build(file File) (*lazyrec.Spec[map[string]any], error) {
	if len(file.Fields) == 0 {
		return nil, ErrNoFields
	}

	// Deterministic build order keeps error reporting stable.
	names := make([]string, 0, len(file.Fields))
	for name := range file.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	spec := lazyrec.NewSpec[map[string]any]()
	for _, name := range names {
		if name == "" || strings.ContainsAny(name, " \t\n\r") {
			return nil, fmt.Errorf("invalid field name %q", name)
		}

		def := file.Fields[name]
		kind := def.Kind
		if kind == "" {
			kind = inferKind(def)
		}
		if kind == "" {
			return nil, fmt.Errorf("field %s: %w", name, ErrEmptyDefinition)
		}

		builder, ok := kinds.Get(kind)
		if !ok {
			return nil, fmt.Errorf("field %s: %w: %s", name, ErrUnknownKind, kind)
		}

		fn, err := builder(name, def)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", name, err)
		}
		spec.Field(name, fn)
	}
	return spec, nil
}

// inferKind picks the built-in kind from whichever definition key is set.
func inferKind(def Definition) string {
	switch {
	case def.Template != "":
		return "template"
	case len(def.FirstOf) > 0:
		return "first_of"
	case def.Expr != "":
		return "expr"
	case def.Const != nil:
		return "const"
	default:
		return ""
	}
}

// scope builds the resolution scope for one evaluation: source keys
// shadow sibling record fields, and sibling reads go through the
// record's normal lazy path.
func scope(rec lazyrec.View, src map[string]any) Lookup {
	return func(name string) (any, bool, error) {
		if v, ok := src[name]; ok {
			return v, true, nil
		}
		return rec.Get(name)
	}
}

// buildTemplate builds a compute function that expands placeholders.
func buildTemplate(name string, def Definition) (lazyrec.ComputeFunc[map[string]any], error) {
	if def.Template == "" {
		return nil, errors.New("template is required")
	}
	tmpl := def.Template
	return func(rec lazyrec.View, src map[string]any) (any, error) {
		return expand(tmpl, scope(rec, src))
	}, nil
}

// buildFirstOf builds a compute function returning the first truthy
// candidate. Unknown names are skipped; no truthy candidate yields nil.
func buildFirstOf(name string, def Definition) (lazyrec.ComputeFunc[map[string]any], error) {
	if len(def.FirstOf) == 0 {
		return nil, errors.New("first_of requires at least one name")
	}
	candidates := append([]string(nil), def.FirstOf...)
	return func(rec lazyrec.View, src map[string]any) (any, error) {
		lookup := scope(rec, src)
		for _, candidate := range candidates {
			v, ok, err := lookup(candidate)
			if err != nil {
				return nil, err
			}
			if ok && isTruthy(v) {
				return v, nil
			}
		}
		return nil, nil
	}, nil
}

// buildExpr builds a compute function evaluating a boolean expression.
func buildExpr(name string, def Definition) (lazyrec.ComputeFunc[map[string]any], error) {
	if def.Expr == "" {
		return nil, errors.New("expr is required")
	}
	expression := def.Expr
	return func(rec lazyrec.View, src map[string]any) (any, error) {
		return evaluate(expression, scope(rec, src))
	}, nil
}

// buildConst builds a compute function returning a literal.
func buildConst(name string, def Definition) (lazyrec.ComputeFunc[map[string]any], error) {
	if def.Const == nil {
		return nil, errors.New("const requires a value")
	}
	value := def.Const
	return func(lazyrec.View, map[string]any) (any, error) {
		return value, nil
	}, nil
}
