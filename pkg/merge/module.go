package merge

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/agentstation/placemap/pkg/place"
)

// MergeModules deep-merges module trees given in descending trust
// order (the modules field-group cascade). Per key: maps recurse,
// arrays concatenate then deduplicate and sort, and on scalar conflicts
// or type mismatches the earlier tree's value wins wholesale — values
// never splice across type boundaries. A key present in only one tree
// passes through. Missing leaves are filtered before comparison, so a
// placeholder from a trusted source never shadows a real value from a
// weaker one. Source trees are never mutated.
func MergeModules(trees ...place.Module) place.Module {
	merged := make(place.Module)
	for _, tree := range trees {
		mergeInto(merged, tree)
	}
	return merged
}

// mergeInto folds src into dst. dst values come from more trusted
// sources and win every conflict.
func mergeInto(dst, src map[string]any) {
	for key, sv := range src {
		if place.Missing(sv) {
			continue
		}
		dv, ok := dst[key]
		if !ok || place.Missing(dv) {
			dst[key] = copyPruned(sv)
			continue
		}
		dst[key] = mergeValue(dv, sv)
	}
}

// mergeValue merges one key's values. Only like shapes combine: map
// with map recurses, list with list unions. Anything else keeps dst.
func mergeValue(dst, src any) any {
	if d, ok := asMap(dst); ok {
		if s, ok := asMap(src); ok {
			mergeInto(d, s)
			return d
		}
		return dst
	}
	if d, ok := asList(dst); ok {
		if s, ok := asList(src); ok {
			return unionLists(d, s)
		}
		return dst
	}
	return dst
}

// unionLists concatenates two arrays, deduplicates by canonical
// encoding, and sorts by the same encoding, so the result never
// depends on which source contributed which element.
func unionLists(a, b []any) []any {
	type keyed struct {
		key   string
		value any
	}
	seen := make(map[string]struct{}, len(a)+len(b))
	items := make([]keyed, 0, len(a)+len(b))
	add := func(values []any) {
		for _, v := range values {
			if place.Missing(v) {
				continue
			}
			k := encode(v)
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			items = append(items, keyed{key: k, value: copyPruned(v)})
		}
	}
	add(a)
	add(b)
	sort.Slice(items, func(i, j int) bool { return items[i].key < items[j].key })
	out := make([]any, 0, len(items))
	for _, it := range items {
		out = append(out, it.value)
	}
	return out
}

// copyPruned deep-copies a module value, dropping missing leaves, so
// merged trees neither alias their source observations nor carry
// placeholder sentinels.
func copyPruned(v any) any {
	if m, ok := asMap(v); ok {
		out := make(map[string]any, len(m))
		for k, mv := range m {
			if place.Missing(mv) {
				continue
			}
			out[k] = copyPruned(mv)
		}
		return out
	}
	if s, ok := asList(v); ok {
		out := make([]any, 0, len(s))
		for _, sv := range s {
			if place.Missing(sv) {
				continue
			}
			out = append(out, copyPruned(sv))
		}
		return out
	}
	return v
}

// asMap matches the map variants a decoded module tree can carry.
func asMap(v any) (map[string]any, bool) {
	switch t := v.(type) {
	case map[string]any:
		return t, true
	case place.Module:
		return t, true
	}
	return nil, false
}

// asList matches the array variants a decoded module tree can carry.
// []string values come back widened to []any.
func asList(v any) ([]any, bool) {
	switch t := v.(type) {
	case []any:
		return t, true
	case []string:
		out := make([]any, len(t))
		for i, s := range t {
			out[i] = s
		}
		return out, true
	}
	return nil, false
}

// encode renders a value as a stable dedupe and sort key. Nested
// structures use their JSON encoding, which sorts map keys; scalars
// print directly.
func encode(v any) string {
	if _, ok := asMap(v); ok {
		if data, err := json.Marshal(v); err == nil {
			return string(data)
		}
	}
	if _, ok := asList(v); ok {
		if data, err := json.Marshal(v); err == nil {
			return string(data)
		}
	}
	return fmt.Sprint(v)
}
