package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonesrussell/north-cloud/elastic-tool/internal/registry"
	"github.com/jonesrussell/north-cloud/elastic-tool/internal/service"
)

func (a *app) statsCommand() *cobra.Command {
	var (
		group    string
		interval int
	)

	cmd := &cobra.Command{
		Use:   "stats-index <index>",
		Short: "Show index statistics",
		Long:  "Show index statistics. The index argument takes " + indexArgHelp + ".",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(); err != nil {
				return err
			}
			out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()

			sel := a.reg.Select(registry.ParseIDs(args[0]), group)
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

			svc := service.NewIndexService(nil, nil, a.log)
			ctx := cmd.Context()
			for {
				renderStats(out, svc.Stats(ctx, sel.Indices))
				if interval <= 0 {
					return nil
				}
				select {
				case <-ctx.Done():
					return nil
				case <-time.After(time.Duration(interval) * time.Second):
				}
			}
		},
	}

	cmd.Flags().StringVarP(&group, "group", "g", "", "only indices that belong to the group")
	cmd.Flags().IntVar(&interval, "interval", 0, "refresh every N seconds until interrupted")
	return cmd
}
