package lazyrec

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// ComputeFunc derives one field's value from the source.
//
// The rec parameter is a read-only handle to the record being computed,
// so a compute function can read sibling fields by name. Reads through
// rec follow the normal lazy path: a sibling that has not been computed
// yet is computed (and memoized) on the spot.
//
// A returned error propagates to the caller of Get and is never memoized;
// the next Get on the same field invokes the function again.
type ComputeFunc[S any] func(rec View, source S) (any, error)

// Spec is a mutable builder for a field specification.
// Use NewSpec to create one, then chain Field calls and Compile:
//
//	factory := lazyrec.NewSpec[Person]().
//	    Field("name", fullName).
//	    Field("phone", bestPhone).
//	    Compile()
//
// Spec is NOT thread-safe during building. Build from a single goroutine,
// then Compile() into an immutable Factory that can be safely shared.
type Spec[S any] struct {
	mu     sync.RWMutex
	fields map[string]ComputeFunc[S]
}

// NewSpec creates a new specification builder for source type S.
func NewSpec[S any]() *Spec[S] {
	return &Spec[S]{
		fields: make(map[string]ComputeFunc[S]),
	}
}

// Field adds a named compute function to the specification.
// Returns the spec for method chaining.
//
// Panics if:
//   - name is empty
//   - name contains whitespace (space, tab, newline)
//   - fn is nil
//   - name already exists in the specification
func (s *Spec[S]) Field(name string, fn ComputeFunc[S]) *Spec[S] {
	if name == "" {
		panic("lazyrec: field name cannot be empty")
	}

	if strings.ContainsAny(name, " \t\n\r") {
		panic("lazyrec: field name cannot contain whitespace")
	}

	if fn == nil {
		panic("lazyrec: compute function cannot be nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.fields[name]; exists {
		panic(fmt.Sprintf("lazyrec: duplicate field name: %s", name))
	}

	s.fields[name] = fn
	return s
}

// Compile freezes the specification into an immutable Factory.
//
// Field names enumerate in sorted order on every record the factory
// produces; expando fields written later follow in insertion order.
// No compute function is invoked at compile time or at record
// construction time.
func (s *Spec[S]) Compile(opts ...Option) *Factory[S] {
	s.mu.RLock()
	defer s.mu.RUnlock()

	fields := make(map[string]ComputeFunc[S], len(s.fields))
	keys := make([]string, 0, len(s.fields))
	for name, fn := range s.fields {
		fields[name] = fn
		keys = append(keys, name)
	}
	sort.Strings(keys)

	cfg := defaultFactoryConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Factory[S]{
		fields: fields,
		keys:   keys,
		cfg:    cfg,
	}
}

// New builds a Factory directly from a field map, for callers that
// already hold the full specification. Equivalent to chaining Field
// for every entry and compiling, including the panic-based validation.
func New[S any](fields map[string]ComputeFunc[S], opts ...Option) *Factory[S] {
	spec := NewSpec[S]()
	for name, fn := range fields {
		spec.Field(name, fn)
	}
	return spec.Compile(opts...)
}

// Factory stamps out independent lazy records from one compiled
// specification. Factory is immutable and safe for concurrent use;
// the records it produces are not (each record is single-owner).
type Factory[S any] struct {
	fields map[string]ComputeFunc[S]
	keys   []string
	cfg    factoryConfig
}

// Fields returns the specification's field names in enumeration order.
// The returned slice must not be modified.
func (f *Factory[S]) Fields() []string {
	return f.keys
}

// Len returns the number of fields in the specification.
func (f *Factory[S]) Len() int {
	return len(f.fields)
}

// compute returns the compute function for a field, if declared.
func (f *Factory[S]) compute(name string) (ComputeFunc[S], bool) {
	fn, ok := f.fields[name]
	return fn, ok
}
