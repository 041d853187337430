package lazyrec

import (
	jsoniter "github.com/json-iterator/go"
)

var jsonCfg = jsoniter.ConfigCompatibleWithStandardLibrary

// MarshalJSON serializes the record as a plain JSON object by walking
// Keys() and reading each field through the same lazy compute-and-memoize
// path an explicit Get takes. Declared fields that have not been read
// yet are computed (and memoized) here; expando fields are included;
// tombstoned fields are omitted.
//
// Fields appear in enumeration order. A compute function failure
// aborts marshaling with that error.
func (r *Record[S]) MarshalJSON() ([]byte, error) {
	stream := jsonCfg.BorrowStream(nil)
	defer jsonCfg.ReturnStream(stream)

	stream.WriteObjectStart()
	first := true
	for _, name := range r.Keys() {
		v, ok, err := r.Get(name)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		if !first {
			stream.WriteMore()
		}
		first = false
		stream.WriteObjectField(name)
		stream.WriteVal(v)
	}
	stream.WriteObjectEnd()

	if stream.Error != nil {
		return nil, stream.Error
	}
	out := make([]byte, len(stream.Buffer()))
	copy(out, stream.Buffer())
	return out, nil
}

// Snapshot materializes every live field into a plain map, triggering
// the same lazy path as MarshalJSON. The map is a copy; mutating it
// does not affect the record.
func (r *Record[S]) Snapshot() (map[string]any, error) {
	out := make(map[string]any, r.Len())
	for _, name := range r.Keys() {
		v, ok, err := r.Get(name)
		if err != nil {
			return nil, err
		}
		if ok {
			out[name] = v
		}
	}
	return out, nil
}
