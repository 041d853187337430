package lazyrec

// Descriptor describes one field of a record without necessarily
// materializing it.
//
// For a materialized field, HasValue is true and Value carries the
// stored value. For a declared field that has not materialized,
// Describe returns a synthetic descriptor with Computed set and no
// value; describing a field never runs its compute function.
type Descriptor struct {
	// Name is the field name.
	Name string
	// Value is the stored value when HasValue is true.
	Value any
	// HasValue reports whether Value carries a materialized value.
	HasValue bool
	// Computed reports whether the specification declares a compute
	// function for the field.
	Computed bool
	// Enumerable, Writable, and Configurable are always true for
	// fields the record knows about; they exist so generic
	// record-consuming callers can treat descriptors uniformly.
	Enumerable   bool
	Writable     bool
	Configurable bool
}

// Describe returns the field's descriptor, with ok false when the
// field is neither materialized nor declared.
//
// Like Has, Describe ignores tombstones for declared fields: a
// deleted specification field still yields a (valueless) descriptor.
func (r *Record[S]) Describe(name string) (Descriptor, bool) {
	_, declared := r.factory.compute(name)

	if _, dead := r.tombstones[name]; !dead {
		if v, ok := r.store[name]; ok {
			return Descriptor{
				Name:         name,
				Value:        v,
				HasValue:     true,
				Computed:     declared,
				Enumerable:   true,
				Writable:     true,
				Configurable: true,
			}, true
		}
	}

	if declared {
		return Descriptor{
			Name:         name,
			Computed:     true,
			Enumerable:   true,
			Writable:     true,
			Configurable: true,
		}, true
	}

	return Descriptor{}, false
}
