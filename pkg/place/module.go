package place

// Module is a nested, schema-variable structured attribute tree attached
// to an observation conditionally by entity class. Values are plain
// decoded YAML/JSON: nested objects are map[string]any, arrays are
// []any, leaves are scalars.
type Module map[string]any

// Copy returns a deep copy of the module tree. Merge steps copy before
// mutating so that source observations stay immutable.
func (m Module) Copy() Module {
	if m == nil {
		return nil
	}
	out := make(Module, len(m))
	for k, v := range m {
		out[k] = copyValue(v)
	}
	return out
}

func copyValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = copyValue(val)
		}
		return out
	case Module:
		return map[string]any(t.Copy())
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = copyValue(val)
		}
		return out
	case []string:
		out := make([]string, len(t))
		copy(out, t)
		return out
	default:
		return v
	}
}
