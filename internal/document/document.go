// Package document models JSON-shaped documents as an explicit recursive type.
//
// A Node is exactly one of Scalar, Sequence or *Map. Maps keep their keys in
// insertion order so that decoding and re-encoding a document never shuffles
// its fields.
package document

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Node is a document fragment.
type Node interface {
	isNode()
}

// Scalar holds a string, json.Number, bool, nil or Go numeric value.
type Scalar struct {
	Value any
}

// Sequence is a positionally ordered list of nodes.
type Sequence []Node

// Map is an insertion-ordered mapping of field names to nodes.
type Map struct {
	fields *orderedmap.OrderedMap[string, Node]
}

func (Scalar) isNode()   {}
func (Sequence) isNode() {}
func (*Map) isNode()     {}

// NewMap returns an empty map.
func NewMap() *Map {
	return &Map{fields: orderedmap.New[string, Node]()}
}

// Set stores value under key. An existing key keeps its position.
func (m *Map) Set(key string, value Node) {
	m.fields.Set(key, value)
}

// Get returns the node stored under key.
func (m *Map) Get(key string) (Node, bool) {
	return m.fields.Get(key)
}

// Delete removes key and reports whether it was present.
func (m *Map) Delete(key string) bool {
	_, ok := m.fields.Delete(key)
	return ok
}

// Len returns the number of fields.
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return m.fields.Len()
}

// Keys returns the field names in order.
func (m *Map) Keys() []string {
	keys := make([]string, 0, m.Len())
	m.Range(func(key string, _ Node) bool {
		keys = append(keys, key)
		return true
	})
	return keys
}

// Range calls fn for every field in order until fn returns false.
func (m *Map) Range(fn func(key string, value Node) bool) {
	if m == nil {
		return
	}
	for pair := m.fields.Oldest(); pair != nil; pair = pair.Next() {
		if !fn(pair.Key, pair.Value) {
			return
		}
	}
}

// IsRecordSequence reports whether every element of seq is a *Map.
// An empty sequence counts as a record sequence.
func IsRecordSequence(seq Sequence) bool {
	for _, item := range seq {
		if _, ok := item.(*Map); !ok {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of n.
func Clone(n Node) Node {
	switch v := n.(type) {
	case *Map:
		if v == nil {
			return v
		}
		out := NewMap()
		v.Range(func(key string, value Node) bool {
			out.Set(key, Clone(value))
			return true
		})
		return out
	case Sequence:
		if v == nil {
			return v
		}
		out := make(Sequence, len(v))
		for i, item := range v {
			out[i] = Clone(item)
		}
		return out
	default:
		return n
	}
}
