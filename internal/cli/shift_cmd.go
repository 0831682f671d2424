package cli

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/alexanderramin/daoban/internal/cli/formatter"
	"github.com/alexanderramin/daoban/internal/domain"
	"github.com/alexanderramin/daoban/internal/rotation"
)

func newTodayCmd(app *App) *cobra.Command {
	var dateFlag string

	cmd := &cobra.Command{
		Use:   "today",
		Short: "Show the shift for today or a given date",
		RunE: func(cmd *cobra.Command, args []string) error {
			today := app.today()
			day := today
			if dateFlag != "" {
				d, err := domain.ParseDateKey(dateFlag)
				if err != nil {
					return err
				}
				day = d
			}

			doc := app.Store.Snapshot()
			sh := app.Store.CurrentShift(day)
			task, _ := doc.Settings.TaskByID(sh.TaskID)
			flags := doc.MarkedDates[domain.DateKey(day)]
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatShift(sh, task, flags, today))
			return nil
		},
	}

	cmd.Flags().StringVar(&dateFlag, "date", "", "Date to show (YYYY-MM-DD)")

	return cmd
}

func newCalendarCmd(app *App) *cobra.Command {
	var monthFlag string
	var interactive bool

	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Show a month of shifts and marks",
		RunE: func(cmd *cobra.Command, args []string) error {
			today := app.today()
			month := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.Local)
			if monthFlag != "" {
				m, err := domain.ParseMonthKey(monthFlag)
				if err != nil {
					return err
				}
				month = m
			}

			if interactive {
				if !app.interactive() {
					return fmt.Errorf("--interactive needs a terminal")
				}
				p := tea.NewProgram(newCalendarModel(app, month, today),
					tea.WithContext(commandContext(cmd)),
					tea.WithOutput(cmd.OutOrStdout()))
				if _, err := p.Run(); err != nil {
					return err
				}
				return flush(commandContext(cmd), app)
			}

			doc := app.Store.Snapshot()
			shifts := rotation.Month(doc.Settings, month.Year(), month.Month())
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatCalendar(shifts, doc.MarkedDates, today))
			return nil
		},
	}

	cmd.Flags().StringVar(&monthFlag, "month", "", "Month to show (YYYY-MM)")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Browse months interactively")

	return cmd
}

func newMarkCmd(app *App) *cobra.Command {
	markType := markTypeValue(domain.MarkLeave)

	cmd := &cobra.Command{
		Use:   "mark DATE [TYPE]",
		Short: "Toggle a mark (leave, double, overtime, doubleOvertime) on a date",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := domain.ParseDateKey(args[0])
			if err != nil {
				return err
			}
			if len(args) == 2 {
				if err := markType.Set(args[1]); err != nil {
					return err
				}
			}
			t := domain.MarkType(markType)

			if !app.Store.MarkDate(date, t) {
				return fmt.Errorf("could not mark %s as %s", args[0], t)
			}
			if err := flush(commandContext(cmd), app); err != nil {
				return err
			}

			flags := app.Store.Snapshot().MarkedDates[domain.DateKey(date)]
			state := formatter.Dim("cleared")
			if flags.Has(t) {
				state = formatter.StyleGreen.Render("set")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n", formatter.Bold(domain.DateKey(date)), formatter.MarkBadge(t), state)
			return nil
		},
	}

	cmd.Flags().VarP(&markType, "type", "t", "Mark type: leave, double, overtime, doubleOvertime")

	return cmd
}
