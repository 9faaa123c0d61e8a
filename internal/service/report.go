package service

import "github.com/jonesrussell/north-cloud/elastic-tool/internal/elasticsearch"

// Report statuses.
const (
	StatusPending = "PROCESSING"
	StatusOK      = "OK"
	StatusNotOK   = "NOT OK"
)

// Report is the outcome of an action on one index.
type Report struct {
	ID      string
	Name    string
	Schema  string
	Group   string
	Summary []string
	Status  string
	Err     error

	steps map[string]int
}

// Progress is called with a snapshot of the report whenever it changes.
type Progress func(Report)

func newReport(idx *elasticsearch.Index) *Report {
	return &Report{
		ID:     idx.ID,
		Name:   idx.Name,
		Schema: idx.SchemaID(),
		Group:  idx.Group,
		Status: StatusPending,
		steps:  make(map[string]int),
	}
}

// line sets the summary line of step, replacing the previous text of that step.
func (r *Report) line(step, text string) {
	if i, ok := r.steps[step]; ok {
		r.Summary[i] = text
		return
	}
	r.steps[step] = len(r.Summary)
	r.Summary = append(r.Summary, text)
}

func (r *Report) snapshot() Report {
	out := *r
	out.Summary = append([]string(nil), r.Summary...)
	out.steps = nil
	return out
}
