package mapping

import (
	"strings"
	"sync/atomic"

	"github.com/jonesrussell/north-cloud/elastic-tool/internal/document"
)

// Mapper maps documents through a schema. It builds its lookup Table on the
// first Map call; Refresh builds a new one after the schema changed. Tables are
// swapped atomically so Map and Refresh may run concurrently.
type Mapper struct {
	source func() (Properties, Aliases)
	table  atomic.Pointer[Table]
}

// Stats describes a single Map call.
type Stats struct {
	// Pruned counts input keys dropped because the schema does not declare them.
	Pruned int
}

// NewMapper returns an unprepared mapper for the given schema.
func NewMapper(props Properties, aliases Aliases) *Mapper {
	return newMapper(func() (Properties, Aliases) { return props, aliases })
}

// newMapper returns an unprepared mapper that reads its schema from source
// every time it builds a table.
func newMapper(source func() (Properties, Aliases)) *Mapper {
	return &Mapper{source: source}
}

func (m *Mapper) build() *Table {
	return Build(m.source())
}

// Prepared reports whether the lookup table has been built.
func (m *Mapper) Prepared() bool {
	return m.table.Load() != nil
}

// Refresh rebuilds the lookup table from the schema and returns it.
func (m *Mapper) Refresh() *Table {
	t := m.build()
	m.table.Store(t)
	return t
}

// Table returns the lookup table, building it when the mapper is unprepared.
func (m *Mapper) Table() *Table {
	if t := m.table.Load(); t != nil {
		return t
	}
	t := m.build()
	if m.table.CompareAndSwap(nil, t) {
		return t
	}
	return m.table.Load()
}

// Map returns a new document holding the schema's view of doc. doc is not modified.
func (m *Mapper) Map(doc *document.Map) *document.Map {
	return m.Table().Map(doc)
}

// MapWithStats is Map that also reports what was dropped.
func (m *Mapper) MapWithStats(doc *document.Map) (*document.Map, Stats) {
	return m.Table().MapWithStats(doc)
}

// Map returns a new document holding the table's view of doc.
func (t *Table) Map(doc *document.Map) *document.Map {
	out, _ := t.MapWithStats(doc)
	return out
}

// MapWithStats is Map that also reports what was dropped.
func (t *Table) MapWithStats(doc *document.Map) (*document.Map, Stats) {
	var stats Stats
	return t.buildMap(doc, "", &stats), stats
}

// buildMap maps the fields of node that the schema declares under parent.
// Fields are visited in input order and the result is reordered to declaration order.
// Input keys containing the path separator are never declared and are dropped.
// An alias whose canonical field lives on another level writes the canonical key
// at the alias's level.
func (t *Table) buildMap(node *document.Map, parent string, stats *Stats) *document.Map {
	result := document.NewMap()

	node.Range(func(key string, value document.Node) bool {
		if strings.Contains(key, pathSeparator) {
			stats.Pruned++
			return true
		}
		entry, ok := t.entries[joinPath(parent, key)]
		if !ok {
			stats.Pruned++
			return true
		}

		if !entry.Type.IsNesting() {
			result.Set(entry.Key, Cast(value, entry.Type))
			return true
		}

		if nested, keep := t.buildNested(value, entry, stats); keep {
			result.Set(entry.Key, nested)
		} else {
			stats.Pruned++
		}
		return true
	})

	return reorder(result, t.order(parent))
}

// buildNested maps the value of an object or nested field. Records in a
// sequence are mapped at the field's own path, the same level as a single
// record. Non-record values cannot be mapped and are dropped.
func (t *Table) buildNested(value document.Node, entry *Entry, stats *Stats) (document.Node, bool) {
	switch v := value.(type) {
	case *document.Map:
		return t.buildMap(v, entry.Path, stats), true
	case document.Sequence:
		if !document.IsRecordSequence(v) {
			v = records(v, stats)
		}
		out := make(document.Sequence, 0, len(v))
		for _, item := range v {
			out = append(out, t.buildMap(item.(*document.Map), entry.Path, stats))
		}
		return out, true
	default:
		return nil, false
	}
}

// records returns the *document.Map elements of seq, counting the rest as pruned.
func records(seq document.Sequence, stats *Stats) document.Sequence {
	out := make(document.Sequence, 0, len(seq))
	for _, item := range seq {
		if _, ok := item.(*document.Map); ok {
			out = append(out, item)
			continue
		}
		stats.Pruned++
	}
	return out
}

// reorder places the keys listed in order first, then the remaining keys as found.
func reorder(m *document.Map, order []string) *document.Map {
	out := document.NewMap()
	for _, key := range order {
		if v, ok := m.Get(key); ok {
			out.Set(key, v)
		}
	}
	m.Range(func(key string, value document.Node) bool {
		if _, ok := out.Get(key); !ok {
			out.Set(key, value)
		}
		return true
	})
	return out
}
