package mapping

import (
	"sort"
)

const pathSeparator = "."

// Entry is the precomputed lookup row for one dotted path.
type Entry struct {
	// Key is the canonical field name written to mapped output.
	Key string
	// Path is the canonical dotted path. Alias entries share it with their field.
	Path string
	// Parent is the canonical dotted path of the enclosing field, "" at the top level.
	Parent string
	Type   FieldType
	// Children lists the immediate child names of a nesting field in declaration order.
	Children []string
}

// Table is a flattened schema keyed by dotted path. A Table is immutable once built.
type Table struct {
	entries map[string]*Entry
	// root lists the top-level leaf fields in declaration order.
	root    []string
	aliases int
}

// Build flattens props and merges the aliases into the result.
func Build(props Properties, aliases Aliases) *Table {
	t := Flatten(props)
	t.mergeAliases(NormalizeAliases(aliases))
	return t
}

// Flatten turns a schema tree into a Table without aliases.
func Flatten(props Properties) *Table {
	t := &Table{entries: make(map[string]*Entry)}
	t.flatten(props, "")

	for _, f := range props {
		if !f.EffectiveType().IsNesting() {
			t.root = append(t.root, f.Name)
		}
	}
	return t
}

func (t *Table) flatten(props Properties, parent string) {
	for _, f := range props {
		path := joinPath(parent, f.Name)
		e := &Entry{
			Key:    f.Name,
			Path:   path,
			Parent: parent,
			Type:   f.EffectiveType(),
		}
		if e.Type.IsNesting() {
			e.Children = make([]string, 0, len(f.Properties))
			for _, child := range f.Properties {
				e.Children = append(e.Children, child.Name)
			}
			t.flatten(f.Properties, path)
		}
		t.entries[path] = e
	}
}

// Lookup returns the entry for a dotted path. Alias paths resolve to a copy of
// their canonical entry.
func (t *Table) Lookup(path string) (Entry, bool) {
	e, ok := t.entries[path]
	if !ok {
		return Entry{}, false
	}
	return *e, true
}

// RootOrder returns the top-level leaf field names in declaration order.
func (t *Table) RootOrder() []string {
	return append([]string(nil), t.root...)
}

// Paths returns every lookup path, aliases included, sorted.
func (t *Table) Paths() []string {
	paths := make([]string, 0, len(t.entries))
	for p := range t.entries {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Len returns the number of lookup paths.
func (t *Table) Len() int {
	return len(t.entries)
}

// AliasCount returns the number of alias paths that resolved to a declared field.
func (t *Table) AliasCount() int {
	return t.aliases
}

// order returns the declared child order for the fields under parent.
func (t *Table) order(parent string) []string {
	if parent == "" {
		return t.root
	}
	if e, ok := t.entries[parent]; ok {
		return e.Children
	}
	return nil
}

func joinPath(parent, key string) string {
	if parent == "" {
		return key
	}
	return parent + pathSeparator + key
}
