package service

import (
	"context"
	"time"

	"github.com/jonesrussell/north-cloud/elastic-tool/internal/database"
	"github.com/jonesrussell/north-cloud/elastic-tool/internal/elasticsearch"
	"github.com/jonesrussell/north-cloud/elastic-tool/internal/logger"
	"github.com/jonesrussell/north-cloud/elastic-tool/internal/metrics"
)

// IndexService applies actions to indices, journaling and counting each one.
type IndexService struct {
	journal database.Journal
	metrics metrics.Recorder
	log     logger.Logger
}

// NewIndexService creates a new index service
func NewIndexService(journal database.Journal, rec metrics.Recorder, log logger.Logger) *IndexService {
	if journal == nil {
		journal = database.NopJournal{}
	}
	if rec == nil {
		rec = metrics.Nop{}
	}
	return &IndexService{journal: journal, metrics: rec, log: log}
}

// Run applies action to every index in turn. A failing index does not stop
// the others; its report carries the error. progress may be nil.
func (s *IndexService) Run(
	ctx context.Context, action Action, indices []*elasticsearch.Index, opts Options, progress Progress,
) ([]Report, error) {
	if _, err := ParseAction(string(action)); err != nil {
		return nil, err
	}
	if err := ValidateInclude(opts.Include); err != nil {
		return nil, err
	}

	reports := make([]Report, 0, len(indices))
	for _, idx := range indices {
		reports = append(reports, s.runOne(ctx, action, idx, opts, progress))
	}
	return reports, nil
}

func (s *IndexService) runOne(
	ctx context.Context, action Action, idx *elasticsearch.Index, opts Options, progress Progress,
) Report {
	rep := newReport(idx)
	notify := func() {
		if progress != nil {
			progress(rep.snapshot())
		}
	}
	notify()

	log := s.requestLogger(ctx)
	start := time.Now()
	mappingApplied, err := s.apply(ctx, action, idx, opts, rep, notify)
	elapsed := time.Since(start)

	if err != nil {
		rep.Status = StatusNotOK
		rep.Err = err
		log.Error("Index action failed",
			logger.String("action", string(action)),
			logger.String("index_id", idx.ID),
			logger.String("index_name", idx.Name),
			logger.Error(err),
		)
	} else {
		rep.Status = StatusOK
		log.Info("Index action completed",
			logger.String("action", string(action)),
			logger.String("index_id", idx.ID),
			logger.String("index_name", idx.Name),
			logger.Duration("duration", elapsed),
		)
	}
	notify()

	s.metrics.IndexOperation(string(action), err == nil, elapsed)
	s.record(ctx, action, idx, mappingApplied, err, elapsed)

	return rep.snapshot()
}

// requestLogger tags the service logger with the request id carried by ctx.
func (s *IndexService) requestLogger(ctx context.Context) logger.Logger {
	if id := logger.RequestID(ctx); id != "" {
		return s.log.With(logger.String("request_id", id))
	}
	return s.log
}

// apply runs the steps of action. It reports whether the schema mapping was put.
func (s *IndexService) apply(
	ctx context.Context, action Action, idx *elasticsearch.Index, opts Options, rep *Report, notify func(),
) (bool, error) {
	exists, err := idx.Exists(ctx)
	if err != nil {
		return false, err
	}
	rep.line("exists", "* Index exists: "+yesNo(exists))
	notify()

	run := func(key, pending, done string, fn func(context.Context) error) error {
		rep.line(key, pending)
		notify()
		if err := fn(ctx); err != nil {
			return err
		}
		rep.line(key, done)
		notify()
		return nil
	}

	switch action {
	case ActionCreate:
		if err = run("create_index", "* Creating index", "* Index was created", idx.Create); err != nil {
			return false, err
		}
		if opts.includes(IncludeMapping) {
			return s.putMapping(idx, run)
		}
		return false, nil

	case ActionUpdate:
		return s.update(ctx, idx, opts, rep, notify, run)

	case ActionDelete:
		return false, run("delete_index", "* Deleting index", "* Index was deleted", idx.Delete)

	case ActionOpen:
		return false, run("open_index", "* Opening index", "* Index was opened", idx.Open)

	case ActionClose:
		return false, run("close_index", "* Closing index", "* Index was closed", idx.Close)

	case ActionRefresh:
		return false, run("refresh_index", "* Refreshing index", "* Index was refreshed", idx.Refresh)

	case ActionReadOnly:
		return false, run("read_only", "* Blocking writes", "* Index is read-only",
			func(ctx context.Context) error { return idx.ReadOnly(ctx, true) })

	case ActionWritable:
		return false, run("read_only", "* Removing write block", "* Index is writable",
			func(ctx context.Context) error { return idx.ReadOnly(ctx, false) })
	}
	return false, nil
}

type stepFunc func(key, pending, done string, fn func(context.Context) error) error

func (s *IndexService) update(
	ctx context.Context, idx *elasticsearch.Index, opts Options, rep *Report, notify func(), run stepFunc,
) (bool, error) {
	include := opts.Include
	if len(include) == 0 {
		include = []string{IncludeIndex}
	}
	opts.Include = include

	if opts.Force {
		if err := run("close_index", "* Closing index", "* Index was closed", idx.Close); err != nil {
			return false, err
		}
	}

	if opts.includes(IncludeIndex) {
		rep.line("update_index", "* Updating index")
		notify()
		changed, err := idx.Update(ctx)
		if err != nil {
			return false, err
		}
		if changed {
			rep.line("update_index", "* Index was updated")
		} else {
			rep.line("update_index", "* No settings to update")
		}
		notify()
	}

	var applied bool
	if opts.includes(IncludeMapping) {
		var err error
		if applied, err = s.putMapping(idx, run); err != nil {
			return false, err
		}
	}

	if opts.Force {
		if err := run("open_index", "* Opening index", "* Index was opened", idx.Open); err != nil {
			return applied, err
		}
	}
	return applied, nil
}

func (s *IndexService) putMapping(idx *elasticsearch.Index, run stepFunc) (bool, error) {
	err := run("apply_mapping", "* Applying index mapping", "* Index mapping was applied", idx.UpdateMapping)
	return err == nil, err
}

func (s *IndexService) record(
	ctx context.Context, action Action, idx *elasticsearch.Index, mappingApplied bool, err error, elapsed time.Duration,
) {
	op := database.Operation{
		IndexID:   idx.ID,
		IndexName: idx.Name,
		Action:    string(action),
		SchemaID:  idx.SchemaID(),
		Success:   err == nil,
		Duration:  elapsed,
	}
	if mappingApplied && idx.Schema != nil {
		op.SchemaVersion = idx.Schema.Version
	}
	if err != nil {
		op.Error = err.Error()
	}

	if jerr := s.journal.Record(ctx, op); jerr != nil {
		s.requestLogger(ctx).Warn("Failed to journal index operation",
			logger.String("action", string(action)),
			logger.String("index_id", idx.ID),
			logger.Error(jerr),
		)
	}
}

// StatsRow is the state of one index.
type StatsRow struct {
	ID     string
	Name   string
	Schema string
	Stats  elasticsearch.Stats
	Err    error
}

// Stats collects the state of every index. Failures are reported per row.
func (s *IndexService) Stats(ctx context.Context, indices []*elasticsearch.Index) []StatsRow {
	rows := make([]StatsRow, 0, len(indices))
	for _, idx := range indices {
		row := StatsRow{ID: idx.ID, Name: idx.Name, Schema: idx.SchemaID()}
		row.Stats, row.Err = idx.Stats(ctx)
		if row.Err != nil {
			s.log.Warn("Failed to get index stats",
				logger.String("index_id", idx.ID),
				logger.Error(row.Err),
			)
		}
		rows = append(rows, row)
	}
	return rows
}

// CheckSchemaDrift warns about every index whose last applied schema version
// differs from the configured one.
func (s *IndexService) CheckSchemaDrift(ctx context.Context, indices []*elasticsearch.Index) ([]database.Drift, error) {
	current := make(map[string]string, len(indices))
	for _, idx := range indices {
		if idx.Schema != nil && idx.Schema.Version != "" {
			current[idx.ID] = idx.Schema.Version
		}
	}

	drifts, err := database.SchemaDrift(ctx, s.journal, current)
	if err != nil {
		return nil, err
	}
	for _, d := range drifts {
		s.log.Warn("Index mapping version drift detected",
			logger.String("index_id", d.IndexID),
			logger.String("applied_version", d.AppliedVersion),
			logger.String("current_version", d.CurrentVersion),
		)
	}
	return drifts, nil
}

func yesNo(b bool) string {
	if b {
		return "YES"
	}
	return "NO"
}
