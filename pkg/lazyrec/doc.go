/*
Package lazyrec builds lazy records: mutable, record-like values whose
fields are computed from a source value on first access, then memoized.

# Overview

A field specification maps field names to compute functions. Compiling
a specification yields an immutable Factory; each record the factory
produces owns independent state, so one specification can back many
records. Nothing is computed at compile or construction time: a
field's compute function runs on the first read of that field, and the
result is cached until the field is deleted or overwritten.

# Basic Usage

	type Person struct {
	    First, Last, Mobile, Home string
	}

	factory := lazyrec.NewSpec[Person]().
	    Field("name", func(rec lazyrec.View, p Person) (any, error) {
	        return p.First + " " + p.Last, nil
	    }).
	    Field("phone", func(rec lazyrec.View, p Person) (any, error) {
	        if p.Mobile != "" {
	            return p.Mobile, nil
	        }
	        return p.Home, nil
	    }).
	    Compile()

	rec := factory.New(Person{First: "Lando", Last: "Calrissian", Mobile: "555-123-1234"})
	name, _, _ := rec.Get("name") // "Lando Calrissian", computed now

# Sibling Fields

Compute functions receive a read-only View of their own record, so one
field can derive from another. Sibling reads follow the same lazy path
and participate in the same memoization:

	Field("contactInfo", func(rec lazyrec.View, p Person) (any, error) {
	    return fmt.Sprintf("%v / %v", rec.MustGet("name"), rec.MustGet("phone")), nil
	})

There is no cycle detection by default: a field that transitively reads
itself recurses unbounded. Opt into fail-fast detection with
WithCycleGuard.

# Mutation

Records behave like ordinary mutable records. Set overrides any
computed value (and admits "expando" fields the specification never
declared); Delete tombstones a field so reads report absent until a
Set clears the tombstone. One asymmetry is preserved deliberately: Has
and Describe keep reporting declared fields after deletion, while Get
and Keys treat them as absent until rewritten.

# Serialization

Record implements json.Marshaler by walking its live keys and reading
each, so any JSON consumer triggers exactly the lazy compute-and-memoize
path, includes expando fields, and omits tombstoned ones. Snapshot()
does the same into a plain map.

# Observability

Logging, metrics, and tracing are opt-in at Compile time:

	factory := spec.Compile(
	    lazyrec.WithLogger(logger),
	    lazyrec.WithMetrics(observability.NewMetricsRecorder()),
	    lazyrec.WithTracing(observability.NewSpanManager()),
	)

Logs carry record_id and field. OpenTelemetry metrics:
lazyrec.field.computations, lazyrec.field.compute_latency_ms, etc.

# Thread Safety

  - Spec[S] is NOT safe for concurrent use during building
  - Factory[S] IS safe for concurrent use (immutable)
  - Record[S] is NOT safe for concurrent use; each record assumes a
    single owner, and sharing one requires external mutual exclusion

# Subpackages

  - declare: YAML-defined field specifications for map sources
  - observability: logging, metrics, and tracing helpers
  - query: dotted-path reads across nested records and maps
  - registry: generic thread-safe registry used by declare
*/
package lazyrec
