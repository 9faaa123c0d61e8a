package cli

import (
	"io"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/jonesrussell/north-cloud/elastic-tool/internal/registry"
	"github.com/jonesrussell/north-cloud/elastic-tool/internal/service"
)

const (
	summaryWidth = 34
	none         = "-"
)

func newTable(out io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleLight)
	return t
}

func orNone(s string) string {
	if s == "" {
		return none
	}
	return s
}

// Listing kinds accepted by the list command.
const (
	listAll     = "all"
	listSchemas = "schemas"
	listIndices = "indices"
)

func renderList(out io.Writer, reg *registry.Registry, kind string) {
	t := newTable(out)
	t.AppendHeader(table.Row{"TYPE", "GROUP", "ID", "NAME", "USING SCHEMA ID"})

	if kind == listAll || kind == listSchemas {
		for _, s := range reg.Schemas() {
			t.AppendRow(table.Row{"SCHEMA", none, s.ID, s.Name, none})
		}
	}
	if kind == listAll || kind == listIndices {
		for _, idx := range reg.Indices() {
			t.AppendRow(table.Row{"INDEX", orNone(idx.Group), idx.ID, idx.Name, orNone(idx.SchemaID())})
		}
	}
	t.Render()
}

func renderSelection(out io.Writer, sel registry.Selection) {
	t := newTable(out)
	t.AppendHeader(table.Row{"GROUP", "ID", "NAME", "SCHEMA ID"})
	for _, idx := range sel.Indices {
		t.AppendRow(table.Row{orNone(idx.Group), idx.ID, idx.Name, orNone(idx.SchemaID())})
	}
	t.Render()
}

func renderReports(out io.Writer, reports []service.Report) {
	t := newTable(out)
	t.AppendHeader(table.Row{"GROUP", "ID", "NAME", "SCHEMA ID", "SUMMARY", "STATUS"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "SUMMARY", WidthMax: summaryWidth},
	})
	for i, r := range reports {
		t.AppendRow(table.Row{
			orNone(r.Group), r.ID, r.Name, orNone(r.Schema),
			strings.Join(r.Summary, "\n"), r.Status,
		})
		if i < len(reports)-1 {
			t.AppendSeparator()
		}
	}
	t.Render()
}

func renderStats(out io.Writer, rows []service.StatsRow) {
	t := newTable(out)
	t.AppendHeader(table.Row{
		"ID", "NAME", "SCHEMA ID", "STATUS", "HEALTH",
		"DOCS COUNT", "DOCS DELETED", "SEGMENTS", "STORE SIZE",
	})
	for _, r := range rows {
		if r.Err != nil {
			t.AppendRow(table.Row{r.ID, r.Name, orNone(r.Schema), service.StatusNotOK, "UNKNOWN", 0, 0, 0, 0})
			continue
		}
		t.AppendRow(table.Row{
			r.ID, r.Name, orNone(r.Schema), service.StatusOK,
			strings.ToUpper(orNone(r.Stats.Health)),
			orZero(r.Stats.DocsCount), orZero(r.Stats.DocsDeleted),
			strconv.FormatInt(r.Stats.Segments, 10), orZero(r.Stats.StoreSize),
		})
	}
	t.Render()
}

func orZero(s string) string {
	if s == "" {
		return "0"
	}
	return s
}
