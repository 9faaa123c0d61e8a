package registry

import (
	"fmt"
	"strings"

	"github.com/jonesrussell/north-cloud/elastic-tool/internal/elasticsearch"
)

// Selection is the result of resolving index ids.
type Selection struct {
	Indices []*elasticsearch.Index
	// NotFound holds one message per unknown id.
	NotFound []string
}

// Empty reports whether nothing was selected or reported missing.
func (s Selection) Empty() bool {
	return len(s.Indices) == 0 && len(s.NotFound) == 0
}

// ParseIDs splits comma-separated ids, trimming blanks and dropping empties.
func ParseIDs(values ...string) []string {
	var ids []string
	for _, v := range values {
		for _, id := range strings.Split(v, ",") {
			if id = strings.TrimSpace(id); id != "" {
				ids = append(ids, id)
			}
		}
	}
	return ids
}

// Select resolves ids within group ("" for every group). The id "all" selects
// every index of the group. Duplicate ids are selected once, in first-seen order.
func (r *Registry) Select(ids []string, group string) Selection {
	candidates := r.InGroup(group)

	for _, id := range ids {
		if id == SelectAll {
			return Selection{Indices: candidates}
		}
	}

	byID := make(map[string]*elasticsearch.Index, len(candidates))
	for _, idx := range candidates {
		byID[idx.ID] = idx
	}

	var sel Selection
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		idx, ok := byID[id]
		if !ok {
			sel.NotFound = append(sel.NotFound, notFoundMessage(id, group))
			continue
		}
		sel.Indices = append(sel.Indices, idx)
	}
	return sel
}

func notFoundMessage(id, group string) string {
	if group == "" {
		return fmt.Sprintf("Index %q not found.", id)
	}
	return fmt.Sprintf("Index %q not found in group %s.", id, group)
}
