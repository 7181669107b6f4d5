package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"kics/internal/version"
)

func newVersionCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(app.Out, "kics %s (commit %s, built %s)\n",
				version.Version, version.GitCommit, version.BuildTime)
			return err
		},
	}
}
