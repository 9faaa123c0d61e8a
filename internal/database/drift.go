package database

import (
	"context"
	"fmt"
	"sort"
)

// Drift is an index whose last applied schema version differs from the
// configured one.
type Drift struct {
	IndexID        string
	AppliedVersion string
	CurrentVersion string
}

// SchemaDrift compares the configured schema version of every index against
// the version last applied to it. Indices without a journaled mapping are
// not reported.
func SchemaDrift(ctx context.Context, journal Journal, current map[string]string) ([]Drift, error) {
	applied, err := journal.LatestSchemaVersions(ctx)
	if err != nil {
		return nil, fmt.Errorf("load applied schema versions: %w", err)
	}

	var drifts []Drift
	for id, version := range current {
		last, ok := applied[id]
		if !ok || last == version {
			continue
		}
		drifts = append(drifts, Drift{IndexID: id, AppliedVersion: last, CurrentVersion: version})
	}
	sort.Slice(drifts, func(i, j int) bool { return drifts[i].IndexID < drifts[j].IndexID })
	return drifts, nil
}
