package mapping

import (
	"sort"
)

// Aliases declares alternative input names for schema fields. Each level
// accepts three shapes:
//
//	uid: id               # alias -> canonical field at this level
//	name: [title, label]  # canonical field -> its aliases
//	stock:                # aliases for the children of a nesting field
//	  qty: quantity
type Aliases map[string]any

// NormalizeAliases flattens an alias tree into alias dotted path -> canonical dotted path.
func NormalizeAliases(tree Aliases) map[string]string {
	out := make(map[string]string)
	normalizeAliases(tree, "", out)
	return out
}

func normalizeAliases(tree map[string]any, parent string, out map[string]string) {
	for _, key := range sortedKeys(tree) {
		switch v := tree[key].(type) {
		case string:
			out[joinPath(parent, key)] = joinPath(parent, v)
		case []string:
			for _, alias := range v {
				out[joinPath(parent, alias)] = joinPath(parent, key)
			}
		case []any:
			for _, item := range v {
				if alias, ok := item.(string); ok {
					out[joinPath(parent, alias)] = joinPath(parent, key)
				}
			}
		case Aliases:
			normalizeAliases(v, joinPath(parent, key), out)
		case map[string]any:
			normalizeAliases(v, joinPath(parent, key), out)
		}
	}
}

// mergeAliases adds an entry under every alias path whose canonical path is a
// declared field. Aliases never shadow declared fields and never resolve
// through other aliases; unresolved aliases are dropped.
func (t *Table) mergeAliases(aliases map[string]string) {
	declared := make(map[string]*Entry, len(t.entries))
	for path, e := range t.entries {
		declared[path] = e
	}

	paths := make([]string, 0, len(aliases))
	for alias := range aliases {
		paths = append(paths, alias)
	}
	sort.Strings(paths)

	for _, alias := range paths {
		canonical, ok := declared[aliases[alias]]
		if !ok {
			continue
		}
		if _, taken := declared[alias]; taken {
			continue
		}
		clone := *canonical
		t.entries[alias] = &clone
		t.aliases++
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
