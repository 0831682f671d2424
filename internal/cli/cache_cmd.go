package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/daoban/internal/cli/formatter"
)

func newCacheCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "cache",
		Short: "List what the local cache holds",
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := app.Store.CacheEntries(commandContext(cmd))
			if err != nil {
				return fmt.Errorf("reading local cache: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatCacheEntries(entries))
			return nil
		},
	}
}
