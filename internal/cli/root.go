// Package cli implements the elastic-tool command line.
package cli

import (
	"context"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/jonesrussell/north-cloud/elastic-tool/internal/bootstrap"
	"github.com/jonesrussell/north-cloud/elastic-tool/internal/config"
	"github.com/jonesrussell/north-cloud/elastic-tool/internal/database"
	"github.com/jonesrussell/north-cloud/elastic-tool/internal/elasticsearch"
	"github.com/jonesrussell/north-cloud/elastic-tool/internal/logger"
	"github.com/jonesrussell/north-cloud/elastic-tool/internal/registry"
)

// Options configure the command tree. Zero values use the process streams.
type Options struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
	// Interactive reports whether the user can answer prompts.
	Interactive func() bool
	// ElasticsearchOptions are applied to every connection.
	ElasticsearchOptions []elasticsearch.Option
	// Logger replaces the configured logger.
	Logger logger.Logger
}

type app struct {
	opts       Options
	configPath string

	cfg     *config.Config
	log     logger.Logger
	reg     *registry.Registry
	journal database.Journal
	db      *database.Connection
}

// NewRootCommand builds the elastic-tool command tree.
func NewRootCommand(opts Options) *cobra.Command {
	if opts.In == nil {
		opts.In = os.Stdin
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Err == nil {
		opts.Err = os.Stderr
	}
	if opts.Interactive == nil {
		opts.Interactive = stdinIsTerminal
	}

	a := &app{opts: opts}

	root := &cobra.Command{
		Use:           "elastic-tool",
		Short:         "Manage Elasticsearch indices and map documents through schemas",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPostRun: func(*cobra.Command, []string) {
			a.close()
		},
	}
	root.SetIn(opts.In)
	root.SetOut(opts.Out)
	root.SetErr(opts.Err)
	root.PersistentFlags().StringVar(&a.configPath, "config", "",
		"config file (default is $CONFIG_PATH or ./config.yml)")

	root.AddCommand(
		a.listCommand(),
		a.mapCommand(),
		a.statsCommand(),
	)
	for _, spec := range indexCommands {
		root.AddCommand(a.indexCommand(spec))
	}
	return root
}

// Execute runs the command line with the process streams.
func Execute(ctx context.Context) error {
	root := NewRootCommand(Options{})
	return root.ExecuteContext(ctx)
}

// load reads the configuration and builds the registry once.
func (a *app) load() error {
	if a.reg != nil {
		return nil
	}

	cfg, err := bootstrap.LoadConfig(a.configPath)
	if err != nil {
		return err
	}

	log := a.opts.Logger
	if log == nil {
		// Keep stdout for tables.
		if log, err = bootstrap.CreateLogger(cfg, "stderr"); err != nil {
			return err
		}
	}

	reg, err := registry.Build(cfg, log, a.opts.ElasticsearchOptions...)
	if err != nil {
		return err
	}

	a.cfg, a.log, a.reg = cfg, log, reg
	return nil
}

// openJournal connects the operation journal when the database is enabled.
func (a *app) openJournal(ctx context.Context) database.Journal {
	if a.journal != nil {
		return a.journal
	}
	journal, db, err := bootstrap.SetupJournal(ctx, a.cfg, a.log)
	if err != nil {
		a.log.Warn("Operation journal unavailable", logger.Error(err))
		journal = database.NopJournal{}
	}
	a.journal, a.db = journal, db
	return journal
}

func (a *app) close() {
	if a.db != nil {
		if err := a.db.Close(); err != nil && a.log != nil {
			a.log.Warn("Failed to close database connection", logger.Error(err))
		}
		a.db = nil
	}
	if a.log != nil {
		_ = a.log.Sync()
	}
}

func stdinIsTerminal() bool {
	fd := os.Stdin.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
