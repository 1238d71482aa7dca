package compose

import (
	"fmt"
	"strings"
)

// LookupFunc resolves a variable name during interpolation. The second
// return value reports whether the variable is set at all, which matters for
// the ${VAR:-default} form.
type LookupFunc func(name string) (string, bool)

// Interpolate substitutes compose-style variable references in raw descriptor
// text before it is parsed as YAML:
//
//	$VAR          simple reference
//	${VAR}        braced reference
//	${VAR:-def}   default when VAR is unset or empty
//	$$            literal dollar sign
//
// Unset variables without a default expand to the empty string, matching
// docker compose.
func Interpolate(input string, lookup LookupFunc) (string, error) {
	var out strings.Builder
	out.Grow(len(input))

	for i := 0; i < len(input); i++ {
		ch := input[i]
		if ch != '$' {
			out.WriteByte(ch)
			continue
		}
		if i+1 >= len(input) {
			out.WriteByte('$')
			break
		}

		next := input[i+1]
		switch {
		case next == '$':
			out.WriteByte('$')
			i++
		case next == '{':
			end := strings.IndexByte(input[i+2:], '}')
			if end < 0 {
				return "", fmt.Errorf("unterminated variable reference at offset %d", i)
			}
			expr := input[i+2 : i+2+end]
			value, err := resolveBraced(expr, lookup)
			if err != nil {
				return "", err
			}
			out.WriteString(value)
			i += 2 + end
		case isNameStart(next):
			j := i + 1
			for j < len(input) && isNameChar(input[j]) {
				j++
			}
			value, _ := lookup(input[i+1 : j])
			out.WriteString(value)
			i = j - 1
		default:
			// A dollar followed by something that cannot start a variable
			// name is passed through untouched.
			out.WriteByte('$')
		}
	}

	return out.String(), nil
}

func resolveBraced(expr string, lookup LookupFunc) (string, error) {
	name, def, hasDefault := strings.Cut(expr, ":-")
	if name == "" {
		return "", fmt.Errorf("empty variable name in ${%s}", expr)
	}
	for i := 0; i < len(name); i++ {
		if !isNameChar(name[i]) {
			return "", fmt.Errorf("invalid variable name %q in ${%s}", name, expr)
		}
	}

	value, ok := lookup(name)
	if hasDefault && (!ok || value == "") {
		return def, nil
	}
	return value, nil
}

func isNameStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isNameChar(c byte) bool {
	return isNameStart(c) || (c >= '0' && c <= '9')
}
