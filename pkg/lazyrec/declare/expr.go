package declare

import (
	"encoding/json"
	"fmt"
	"strings"
)

// evaluate evaluates a boolean expression against the lookup scope.
// Supports: ==, !=, <, >, <=, >=, and, or, not, !, contains
func evaluate(expr string, lookup Lookup) (bool, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return false, nil
	}

	// Negation with "not " prefix
	if strings.HasPrefix(expr, "not ") {
		result, err := evaluate(strings.TrimPrefix(expr, "not "), lookup)
		if err != nil {
			return false, err
		}
		return !result, nil
	}

	// Negation with "!" prefix
	if strings.HasPrefix(expr, "!") {
		result, err := evaluate(strings.TrimPrefix(expr, "!"), lookup)
		if err != nil {
			return false, err
		}
		return !result, nil
	}

	// AND (split on first " and ")
	if parts := strings.SplitN(expr, " and ", 2); len(parts) == 2 {
		left, err := evaluate(parts[0], lookup)
		if err != nil {
			return false, err
		}
		right, err := evaluate(parts[1], lookup)
		if err != nil {
			return false, err
		}
		return left && right, nil
	}

	// OR (split on first " or ")
	if parts := strings.SplitN(expr, " or ", 2); len(parts) == 2 {
		left, err := evaluate(parts[0], lookup)
		if err != nil {
			return false, err
		}
		right, err := evaluate(parts[1], lookup)
		if err != nil {
			return false, err
		}
		return left || right, nil
	}

	// Binary operators, longer operators first to avoid partial matches.
	type binaryOp struct {
		op      string
		compare func(left, right any) bool
	}
	ops := []binaryOp{
		{"==", func(l, r any) bool { return fmt.Sprintf("%v", l) == fmt.Sprintf("%v", r) }},
		{"!=", func(l, r any) bool { return fmt.Sprintf("%v", l) != fmt.Sprintf("%v", r) }},
		{">=", func(l, r any) bool { return toFloat64(l) >= toFloat64(r) }},
		{"<=", func(l, r any) bool { return toFloat64(l) <= toFloat64(r) }},
		{">", func(l, r any) bool { return toFloat64(l) > toFloat64(r) }},
		{"<", func(l, r any) bool { return toFloat64(l) < toFloat64(r) }},
		{" contains ", func(l, r any) bool {
			return strings.Contains(fmt.Sprintf("%v", l), fmt.Sprintf("%v", r))
		}},
	}

	for _, op := range ops {
		if parts := strings.SplitN(expr, op.op, 2); len(parts) == 2 {
			left, err := resolve(strings.TrimSpace(parts[0]), lookup)
			if err != nil {
				return false, err
			}
			right, err := resolve(strings.TrimSpace(parts[1]), lookup)
			if err != nil {
				return false, err
			}
			return op.compare(left, right), nil
		}
	}

	// Single value - check truthiness.
	val, err := resolve(expr, lookup)
	if err != nil {
		return false, err
	}
	return isTruthy(val), nil
}

// resolve turns a token into a value: quoted strings, booleans, null,
// and numbers are literals; anything else goes through the lookup and
// falls back to a bare string literal when unknown.
func resolve(s string, lookup Lookup) (any, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", nil
	}

	// Quoted string (single or double quotes)
	if (strings.HasPrefix(s, "'") && strings.HasSuffix(s, "'")) ||
		(strings.HasPrefix(s, "\"") && strings.HasSuffix(s, "\"")) {
		if len(s) < 2 {
			return "", nil
		}
		return s[1 : len(s)-1], nil
	}

	// Boolean and null literals
	switch strings.ToLower(s) {
	case "true":
		return true, nil
	case "false":
		return false, nil
	case "null", "nil":
		return nil, nil
	}

	// Number (json.Number for precise parsing)
	var num json.Number
	if err := json.Unmarshal([]byte(s), &num); err == nil {
		if i, err := num.Int64(); err == nil {
			return i, nil
		}
		if f, err := num.Float64(); err == nil {
			return f, nil
		}
	}

	// Name in scope
	if v, ok, err := lookup(s); err != nil {
		return nil, err
	} else if ok {
		return v, nil
	}

	// Unquoted identifier not in scope: string literal.
	return s, nil
}

// isTruthy returns whether a value is truthy.
// nil is false, bools return their value, empty strings are false,
// zero numbers are false, everything else is true.
func isTruthy(v any) bool {
	if v == nil {
		return false
	}
	switch val := v.(type) {
	case bool:
		return val
	case string:
		return val != ""
	case int:
		return val != 0
	case int64:
		return val != 0
	case int32:
		return val != 0
	case float64:
		return val != 0
	case float32:
		return val != 0
	default:
		return true
	}
}

// toFloat64 converts a value to float64 for numeric comparison.
// Returns 0 for values that cannot be converted.
func toFloat64(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case float32:
		return float64(val)
	case int:
		return float64(val)
	case int64:
		return float64(val)
	case int32:
		return float64(val)
	case string:
		var f float64
		_, _ = fmt.Sscanf(val, "%f", &f)
		return f
	default:
		return 0
	}
}
