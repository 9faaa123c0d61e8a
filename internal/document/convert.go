package document

import (
	"sort"
)

// FromAny converts plain Go values into a Node. Keys of map[string]any are
// sorted because Go maps carry no order.
func FromAny(v any) Node {
	switch x := v.(type) {
	case Node:
		return x
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		m := NewMap()
		for _, k := range keys {
			m.Set(k, FromAny(x[k]))
		}
		return m
	case []any:
		seq := make(Sequence, len(x))
		for i, item := range x {
			seq[i] = FromAny(item)
		}
		return seq
	case []string:
		seq := make(Sequence, len(x))
		for i, item := range x {
			seq[i] = Scalar{Value: item}
		}
		return seq
	default:
		return Scalar{Value: v}
	}
}

// ToAny converts a Node back into plain Go values. Field order is lost.
func ToAny(n Node) any {
	switch v := n.(type) {
	case *Map:
		if v == nil {
			return nil
		}
		out := make(map[string]any, v.Len())
		v.Range(func(key string, value Node) bool {
			out[key] = ToAny(value)
			return true
		})
		return out
	case Sequence:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = ToAny(item)
		}
		return out
	case Scalar:
		return v.Value
	default:
		return nil
	}
}
