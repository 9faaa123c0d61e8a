package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonesrussell/north-cloud/elastic-tool/internal/registry"
	"github.com/jonesrussell/north-cloud/elastic-tool/internal/service"
)

const indexArgHelp = "index ids separated by comma, or `all`"

// errActionFailed is returned when at least one index failed.
var errActionFailed = errors.New("something went wrong! Check the log for more information")

type indexCommandSpec struct {
	use     string
	short   string
	action  service.Action
	include bool
	// force is the help of --force, empty when the command has none.
	force string
	// off switches readonly-index to the writable action.
	off bool
}

var indexCommands = []indexCommandSpec{
	{use: "create-index", short: "Create indices", action: service.ActionCreate, include: true},
	{
		use: "update-index", short: "Update index settings and mapping", action: service.ActionUpdate, include: true,
		force: "close the index before applying changes and open it afterwards",
	},
	{
		use: "delete-index", short: "Delete indices", action: service.ActionDelete,
		force: "delete without asking for confirmation",
	},
	{use: "open-index", short: "Open indices", action: service.ActionOpen},
	{use: "close-index", short: "Close indices", action: service.ActionClose},
	{use: "refresh-index", short: "Refresh indices", action: service.ActionRefresh},
	{use: "readonly-index", short: "Block writes to indices", action: service.ActionReadOnly, off: true},
}

type indexFlags struct {
	group   string
	include string
	force   bool
	off     bool
}

func (a *app) indexCommand(spec indexCommandSpec) *cobra.Command {
	var flags indexFlags

	cmd := &cobra.Command{
		Use:   spec.use + " <index>",
		Short: spec.short,
		Long:  spec.short + ". The index argument takes " + indexArgHelp + ".",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			action := spec.action
			if spec.off && flags.off {
				action = service.ActionWritable
			}
			return a.runIndexAction(cmd, action, args[0], flags)
		},
	}

	cmd.Flags().StringVarP(&flags.group, "group", "g", "", "only indices that belong to the group")
	if spec.include {
		cmd.Flags().StringVarP(&flags.include, "include", "i", "",
			"parts to process, comma separated: index, mapping (create always includes index; update defaults to index)")
	}
	if spec.force != "" {
		cmd.Flags().BoolVarP(&flags.force, "force", "f", false, spec.force)
	}
	if spec.off {
		cmd.Flags().BoolVar(&flags.off, "off", false, "remove the write block instead")
	}
	return cmd
}

func (a *app) runIndexAction(cmd *cobra.Command, action service.Action, arg string, flags indexFlags) error {
	if err := a.load(); err != nil {
		return err
	}
	out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()

	sel := a.reg.Select(registry.ParseIDs(arg), flags.group)
	if sel.Empty() {
		fmt.Fprintln(errOut, "No index found.")
		return nil
	}
	if len(sel.NotFound) > 0 {
		for _, msg := range sel.NotFound {
			fmt.Fprintln(errOut, msg)
		}
		return registry.ErrIndexNotFound
	}

	include := registry.ParseIDs(strings.ToLower(flags.include))
	if err := service.ValidateInclude(include); err != nil {
		return err
	}

	renderSelection(out, sel)
	if action.Destructive() && !flags.force {
		if err := a.confirm("The listed indices will be affected. Do you wish to continue?"); err != nil {
			return err
		}
	}

	svc := service.NewIndexService(a.openJournal(cmd.Context()), nil, a.log)
	reports, err := svc.Run(cmd.Context(), action, sel.Indices,
		service.Options{Include: include, Force: flags.force}, progressPrinter(errOut))
	if err != nil {
		return err
	}

	renderReports(out, reports)

	var failed []string
	for _, r := range reports {
		if r.Err != nil {
			failed = append(failed, fmt.Sprintf("%s: %v", r.ID, r.Err))
		}
	}
	if len(failed) > 0 {
		fmt.Fprintln(errOut, strings.Join(failed, "\n"))
		return errActionFailed
	}
	return nil
}

// progressPrinter writes each new or changed summary line of a report.
func progressPrinter(w io.Writer) service.Progress {
	last := make(map[string]string)
	return func(r service.Report) {
		if len(r.Summary) == 0 {
			return
		}
		line := r.Summary[len(r.Summary)-1]
		if last[r.ID] == line {
			return
		}
		last[r.ID] = line
		fmt.Fprintf(w, "[%s] %s\n", r.ID, strings.TrimPrefix(line, "* "))
	}
}
