package cli

import (
	"github.com/spf13/cobra"
)

func (a *app) listCommand() *cobra.Command {
	return &cobra.Command{
		Use:       "list [all|schemas|indices]",
		Short:     "List the configured schemas and indices",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{listAll, listSchemas, listIndices},
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(); err != nil {
				return err
			}

			kind := listAll
			if len(args) == 1 {
				switch args[0] {
				case listSchemas, listIndices:
					kind = args[0]
				}
			}
			renderList(cmd.OutOrStdout(), a.reg, kind)
			return nil
		},
	}
}
