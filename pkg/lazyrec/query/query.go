// Package query provides read-only dotted-path reads across lazy
// records and the nested values they hold.
//
// Paths descend through anything field-addressable: a lazyrec record
// (its View satisfies Source, so every hop triggers the normal
// lazy-compute-and-memoize path), plain maps, and nested combinations
// of the two:
//
//	v, ok, err := query.Resolve(rec, "contact.phone")
//
// Queries never mutate: they read through the same accessor surface
// any other consumer would.
package query

import (
	"errors"
	"fmt"
	"strings"
)

// Source is anything addressable by field name. lazyrec.View
// satisfies it, so records and their Views can be queried directly.
type Source interface {
	Get(name string) (value any, ok bool, err error)
}

// ErrBadPath indicates an empty path or an empty path segment.
var ErrBadPath = errors.New("malformed query path")

// Resolve reads the value at a dotted path, descending through nested
// sources and maps. ok is false when any hop is absent; an error from
// an intermediate hop (a failed lazy computation) propagates.
//
// A hop into a value that is neither a Source nor a map reports
// absent rather than failing: the path simply does not exist there.
func Resolve(src Source, path string) (any, bool, error) {
	if path == "" {
		return nil, false, ErrBadPath
	}

	segments := strings.Split(path, ".")
	var current any

	v, ok, err := step(src, segments[0], path)
	if err != nil || !ok {
		return nil, false, err
	}
	current = v

	for _, segment := range segments[1:] {
		v, ok, err := stepValue(current, segment, path)
		if err != nil || !ok {
			return nil, false, err
		}
		current = v
	}
	return current, true, nil
}

// Select resolves several paths into a plain map keyed by path.
// Absent paths are omitted; the first error aborts.
func Select(src Source, paths ...string) (map[string]any, error) {
	out := make(map[string]any, len(paths))
	for _, path := range paths {
		v, ok, err := Resolve(src, path)
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", path, err)
		}
		if ok {
			out[path] = v
		}
	}
	return out, nil
}

// step reads one segment from a Source.
func step(src Source, segment, path string) (any, bool, error) {
	if segment == "" {
		return nil, false, fmt.Errorf("%w: %s", ErrBadPath, path)
	}
	return src.Get(segment)
}

// stepValue reads one segment from an arbitrary intermediate value.
func stepValue(v any, segment, path string) (any, bool, error) {
	if segment == "" {
		return nil, false, fmt.Errorf("%w: %s", ErrBadPath, path)
	}
	switch val := v.(type) {
	case Source:
		return val.Get(segment)
	case map[string]any:
		out, ok := val[segment]
		return out, ok, nil
	case map[string]string:
		out, ok := val[segment]
		return out, ok, nil
	default:
		return nil, false, nil
	}
}
