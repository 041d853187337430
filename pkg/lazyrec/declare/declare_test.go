package declare

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/lazyrec/pkg/lazyrec"
)

// personYAML is the canonical declarative specification used in tests.
const personYAML = `
fields:
  name:
    template: "${first} ${last}"
  phone:
    first_of: [mobile, home]
  contact:
    template: "${name} / ${phone}"
  adult:
    expr: "age >= 18"
  plan:
    const: free
`

// landoSource is the matching source map.
var landoSource = map[string]any{
	"first":  "Lando",
	"last":   "Calrissian",
	"mobile": "555-123-1234",
	"home":   "555-555-5555",
	"age":    47,
}

// TestFromYAML_EndToEnd builds the full specification and exercises
// every built-in kind over a record.
func TestFromYAML_EndToEnd(t *testing.T) {
	spec, err := FromYAML([]byte(personYAML))
	require.NoError(t, err)

	rec := spec.Compile().New(landoSource)

	assert.Equal(t, "Lando Calrissian", rec.MustGet("name"))
	assert.Equal(t, "555-123-1234", rec.MustGet("phone"))
	assert.Equal(t, true, rec.MustGet("adult"))
	assert.Equal(t, "free", rec.MustGet("plan"))

	// Templates reach sibling fields through the lazy path.
	assert.Equal(t, "Lando Calrissian / 555-123-1234", rec.MustGet("contact"))
}

// TestFromYAML_SiblingMemoization verifies template sibling reads share
// the record's memoization.
func TestFromYAML_SiblingMemoization(t *testing.T) {
	nameComputes := 0
	RegisterKind("counted_name", func(name string, def Definition) (lazyrec.ComputeFunc[map[string]any], error) {
		return func(rec lazyrec.View, src map[string]any) (any, error) {
			nameComputes++
			return expand("${first} ${last}", scope(rec, src))
		}, nil
	})

	spec, err := FromYAML([]byte(`
fields:
  name:
    kind: counted_name
  greeting:
    template: "Hello ${name}"
`))
	require.NoError(t, err)

	rec := spec.Compile().New(landoSource)
	assert.Equal(t, "Hello Lando Calrissian", rec.MustGet("greeting"))
	assert.Equal(t, "Lando Calrissian", rec.MustGet("name"))
	assert.Equal(t, 1, nameComputes)
}

// TestFromYAML_FirstOfFallback verifies first_of skips empty candidates.
func TestFromYAML_FirstOfFallback(t *testing.T) {
	spec, err := FromYAML([]byte(`
fields:
  phone:
    first_of: [mobile, home]
`))
	require.NoError(t, err)

	rec := spec.Compile().New(map[string]any{
		"mobile": "",
		"home":   "555-555-5555",
	})
	assert.Equal(t, "555-555-5555", rec.MustGet("phone"))

	// No truthy candidate at all yields nil, present.
	empty := spec.Compile().New(map[string]any{})
	v, ok, err := empty.Get("phone")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Nil(t, v)
}

// TestFromYAML_Errors covers malformed files and definitions.
func TestFromYAML_Errors(t *testing.T) {
	testCases := []struct {
		name string
		yaml string
		want error
	}{
		{"no fields", "fields: {}", ErrNoFields},
		{"empty definition", "fields:\n  name: {}", ErrEmptyDefinition},
		{"unknown kind", "fields:\n  name:\n    kind: nope", ErrUnknownKind},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := FromYAML([]byte(tc.yaml))
			assert.ErrorIs(t, err, tc.want)
		})
	}

	t.Run("invalid yaml", func(t *testing.T) {
		_, err := FromYAML([]byte(":"))
		assert.Error(t, err)
	})

	t.Run("invalid field name", func(t *testing.T) {
		_, err := FromYAML([]byte("fields:\n  \"bad name\":\n    const: 1"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid field name")
	})
}

// TestFromJSON verifies the JSON front end.
func TestFromJSON(t *testing.T) {
	spec, err := FromJSON([]byte(`{"fields":{"name":{"template":"${first} ${last}"}}}`))
	require.NoError(t, err)

	rec := spec.Compile().New(landoSource)
	assert.Equal(t, "Lando Calrissian", rec.MustGet("name"))
}

// TestFromFile verifies extension detection.
func TestFromFile(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "spec.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(personYAML), 0o644))

	spec, err := FromFile(yamlPath)
	require.NoError(t, err)
	rec := spec.Compile().New(landoSource)
	assert.Equal(t, "Lando Calrissian", rec.MustGet("name"))

	t.Run("unsupported extension", func(t *testing.T) {
		badPath := filepath.Join(dir, "spec.toml")
		require.NoError(t, os.WriteFile(badPath, []byte(""), 0o644))
		_, err := FromFile(badPath)
		assert.ErrorContains(t, err, "unsupported spec file extension")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := FromFile(filepath.Join(dir, "missing.yaml"))
		assert.Error(t, err)
	})
}

// TestRegisterKind verifies custom kinds with args.
func TestRegisterKind(t *testing.T) {
	RegisterKind("upper", func(name string, def Definition) (lazyrec.ComputeFunc[map[string]any], error) {
		of, _ := def.Args["of"].(string)
		return func(rec lazyrec.View, src map[string]any) (any, error) {
			v, _, err := scope(rec, src)(of)
			if err != nil {
				return nil, err
			}
			s, _ := v.(string)
			return strings.ToUpper(s), nil
		}, nil
	})
	assert.Contains(t, Kinds(), "upper")

	spec, err := FromYAML([]byte(`
fields:
  name:
    template: "${first} ${last}"
  shout:
    kind: upper
    args:
      of: name
`))
	require.NoError(t, err)

	rec := spec.Compile().New(landoSource)
	assert.Equal(t, "LANDO CALRISSIAN", rec.MustGet("shout"))
}

// TestRegisterKind_Panics verifies misuse panics.
func TestRegisterKind_Panics(t *testing.T) {
	assert.Panics(t, func() { RegisterKind("", nil) })
	assert.Panics(t, func() { RegisterKind("x", nil) })
}

// TestBuild_ChainsWithProgrammaticFields verifies the returned spec is
// still open for Field calls.
func TestBuild_ChainsWithProgrammaticFields(t *testing.T) {
	spec, err := FromYAML([]byte(personYAML))
	require.NoError(t, err)

	spec.Field("extra", func(rec lazyrec.View, src map[string]any) (any, error) {
		return len(src), nil
	})
	rec := spec.Compile().New(landoSource)
	assert.Equal(t, 5, rec.MustGet("extra"))
}
