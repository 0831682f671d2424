package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/daoban/internal/cli/formatter"
	"github.com/alexanderramin/daoban/internal/domain"
)

func newRotationCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rotation",
		Short: "Show or change the shift rotation",
	}

	cmd.AddCommand(
		newRotationShowCmd(app),
		newRotationSetCmd(app),
	)

	return cmd
}

func newRotationShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show rotation settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatRotation(app.Store.Snapshot().Settings))
			return nil
		},
	}
}

func newRotationSetCmd(app *App) *cobra.Command {
	var startDate string
	var initialTask int

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Change the rotation start date or initial task",
		RunE: func(cmd *cobra.Command, args []string) error {
			var patch domain.RotationPatch
			if cmd.Flags().Changed("start-date") {
				d, err := domain.ParseDateKey(startDate)
				if err != nil {
					return err
				}
				patch.StartDate = &d
			}
			if cmd.Flags().Changed("initial-task") {
				patch.InitialTaskID = &initialTask
			}
			if patch.IsEmpty() {
				return errors.New("nothing to change (use --start-date or --initial-task)")
			}

			if !app.Store.UpdateSettings(patch) {
				return fmt.Errorf("rotation settings rejected: initial task must be between 1 and %d",
					len(app.Store.Snapshot().Settings.Tasks))
			}
			if err := flush(commandContext(cmd), app); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatRotation(app.Store.Snapshot().Settings))
			return nil
		},
	}

	cmd.Flags().StringVar(&startDate, "start-date", "", "First day of task 1 (YYYY-MM-DD)")
	cmd.Flags().IntVar(&initialTask, "initial-task", 1, "Task the rotation starts on")

	return cmd
}
