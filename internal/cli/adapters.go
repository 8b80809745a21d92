package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newAdaptersCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "adapters",
		Short: "List registered adapter backends",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range app.Server.Adapters() {
				fmt.Fprintln(app.Out, name)
			}
			return nil
		},
	}
}
