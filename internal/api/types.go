package api

import (
	"github.com/jonesrussell/north-cloud/elastic-tool/internal/document"
	"github.com/jonesrussell/north-cloud/elastic-tool/internal/elasticsearch"
	"github.com/jonesrussell/north-cloud/elastic-tool/internal/service"
)

// RegistryResponse lists everything the registry knows.
type RegistryResponse struct {
	Connections []ConnectionInfo `json:"connections"`
	Schemas     []SchemaInfo     `json:"schemas"`
	Indices     []IndexInfo      `json:"indices"`
}

type ConnectionInfo struct {
	ID    string   `json:"id"`
	Hosts []string `json:"hosts"`
}

type SchemaInfo struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Version string `json:"version,omitempty"`
	// Fields counts resolvable paths, aliases included.
	Fields  int `json:"fields"`
	Aliases int `json:"aliases"`
}

type IndexInfo struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Group      string `json:"group,omitempty"`
	Connection string `json:"connection"`
	Schema     string `json:"schema,omitempty"`
}

func newIndexInfo(idx *elasticsearch.Index) IndexInfo {
	return IndexInfo{
		ID:         idx.ID,
		Name:       idx.Name,
		Group:      idx.Group,
		Connection: idx.Connection().ID(),
		Schema:     idx.SchemaID(),
	}
}

// ActionRequest is the optional body of an action request.
type ActionRequest struct {
	Include []string `json:"include"`
	Force   bool     `json:"force"`
}

type ReportResponse struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Schema  string   `json:"schema,omitempty"`
	Group   string   `json:"group,omitempty"`
	Summary []string `json:"summary"`
	Status  string   `json:"status"`
	Error   string   `json:"error,omitempty"`
}

func newReportResponse(r service.Report) ReportResponse {
	out := ReportResponse{
		ID:      r.ID,
		Name:    r.Name,
		Schema:  r.Schema,
		Group:   r.Group,
		Summary: r.Summary,
		Status:  r.Status,
	}
	if r.Err != nil {
		out.Error = r.Err.Error()
	}
	return out
}

type StatsResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Schema      string `json:"schema,omitempty"`
	Health      string `json:"health,omitempty"`
	Status      string `json:"status,omitempty"`
	DocsCount   string `json:"docs_count,omitempty"`
	DocsDeleted string `json:"docs_deleted,omitempty"`
	Segments    int64  `json:"segments"`
	StoreSize   string `json:"store_size,omitempty"`
	Error       string `json:"error,omitempty"`
}

func newStatsResponse(row service.StatsRow) StatsResponse {
	out := StatsResponse{
		ID:          row.ID,
		Name:        row.Name,
		Schema:      row.Schema,
		Health:      row.Stats.Health,
		Status:      row.Stats.Status,
		DocsCount:   row.Stats.DocsCount,
		DocsDeleted: row.Stats.DocsDeleted,
		Segments:    row.Stats.Segments,
		StoreSize:   row.Stats.StoreSize,
	}
	if row.Err != nil {
		out.Error = row.Err.Error()
	}
	return out
}

// DocumentResponse carries a mapped document.
type DocumentResponse struct {
	ID       string        `json:"id,omitempty"`
	Document *document.Map `json:"document"`
	Pruned   int           `json:"pruned"`
}
