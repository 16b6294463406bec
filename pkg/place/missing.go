package place

import "strings"

// placeholders are the tokens connectors emit in place of values they
// do not know. A field holding one of these is missing, not present.
var placeholders = map[string]struct{}{
	"N/A": {},
	"n/a": {},
	"NA":  {},
	"-":   {},
	"–":   {},
	"—":   {},
}

// Missing reports whether a field value is a missing sentinel: nil,
// an empty or whitespace-only string, a placeholder token, or an empty
// collection. Merge strategies filter candidates through this predicate
// before comparing anything.
func Missing(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return MissingString(t)
	case *string:
		return t == nil || MissingString(*t)
	case *float64:
		return t == nil
	case *int:
		return t == nil
	case []string:
		return len(t) == 0
	case []any:
		return len(t) == 0
	case map[string]any:
		return len(t) == 0
	case Module:
		return len(t) == 0
	default:
		return false
	}
}

// MissingString reports whether a string value is missing: empty,
// whitespace-only, or a placeholder token.
func MissingString(s string) bool {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return true
	}
	_, ok := placeholders[trimmed]
	return ok
}
