package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonesrussell/north-cloud/elastic-tool/internal/document"
	"github.com/jonesrussell/north-cloud/elastic-tool/internal/service"
)

const stdinArg = "-"

func (a *app) mapCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "map <schema> [file|-]",
		Short: "Map a JSON document through a schema and print the result",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(); err != nil {
				return err
			}

			source := stdinArg
			if len(args) == 2 {
				source = args[1]
			}
			data, err := a.readInput(source)
			if err != nil {
				return err
			}

			doc, err := document.ParseMap(data)
			if err != nil {
				return fmt.Errorf("parse %s: %w", source, err)
			}

			svc := service.NewDocumentService(a.reg, nil, a.log)
			mapped, stats, err := svc.Map(args[0], doc)
			if err != nil {
				return err
			}

			body, err := json.MarshalIndent(mapped, "", "  ")
			if err != nil {
				return fmt.Errorf("encode document: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(body))
			if stats.Pruned > 0 {
				fmt.Fprintf(cmd.ErrOrStderr(), "%d field(s) pruned\n", stats.Pruned)
			}
			return nil
		},
	}
}

func (a *app) readInput(source string) ([]byte, error) {
	if source == stdinArg {
		data, err := io.ReadAll(a.opts.In)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(source)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", source, err)
	}
	return data, nil
}
