package declare

import (
	"fmt"
	"regexp"
	"strings"
)

// placeholderPattern matches ${name} - name can contain alphanumerics
// and underscore.
var placeholderPattern = regexp.MustCompile(`\$\{([a-zA-Z_][a-zA-Z0-9_]*)\}`)

// expand replaces every ${name} placeholder in s with the value the
// lookup resolves for it, formatted with %v.
//
// Unknown names collect into an *UndefinedVariableError; a lookup
// error (a failed sibling computation) aborts immediately.
func expand(s string, lookup Lookup) (string, error) {
	if s == "" {
		return "", nil
	}

	var missing []string
	var lookupErr error

	result := placeholderPattern.ReplaceAllStringFunc(s, func(match string) string {
		if lookupErr != nil {
			return match
		}
		name := match[2 : len(match)-1]
		v, ok, err := lookup(name)
		if err != nil {
			lookupErr = err
			return match
		}
		if !ok {
			missing = append(missing, name)
			return match
		}
		return fmt.Sprintf("%v", v)
	})

	if lookupErr != nil {
		return "", lookupErr
	}
	if len(missing) > 0 {
		return "", &UndefinedVariableError{Names: missing}
	}
	return result, nil
}

// UndefinedVariableError is returned when a template references names
// the resolution scope does not know.
type UndefinedVariableError struct {
	// Names is the list of undefined variable names.
	Names []string
}

// Error implements the error interface.
func (e *UndefinedVariableError) Error() string {
	if len(e.Names) == 1 {
		return fmt.Sprintf("undefined variable: %s", e.Names[0])
	}
	return fmt.Sprintf("undefined variables: %s", strings.Join(e.Names, ", "))
}
