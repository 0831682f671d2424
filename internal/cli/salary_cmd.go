package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/alexanderramin/daoban/internal/cli/formatter"
	"github.com/alexanderramin/daoban/internal/domain"
	"github.com/alexanderramin/daoban/internal/payroll"
)

// salaryFlags maps flag names to the well-known salary components.
var salaryFlags = []struct {
	flag, field, usage string
}{
	{"base", domain.SalaryBase, "Base salary"},
	{"performance", domain.SalaryPerformance, "Performance pay"},
	{"seniority", domain.SalarySeniority, "Seniority pay"},
	{"insurance", domain.SalaryInsurance, "Insurance deduction"},
	{"education", domain.SalaryEducation, "Education allowance"},
}

func addSalaryFlags(fs *pflag.FlagSet, extra *map[string]string) {
	for _, f := range salaryFlags {
		fs.String(f.flag, "", f.usage)
	}
	fs.StringToStringVar(extra, "set", nil, "Other components as name=amount")
}

// salaryFromFlags collects the components given on the command line.
func salaryFromFlags(fs *pflag.FlagSet, extra map[string]string) (domain.SalarySettings, error) {
	out := domain.SalarySettings{}
	for _, f := range salaryFlags {
		if !fs.Changed(f.flag) {
			continue
		}
		raw, _ := fs.GetString(f.flag)
		v, err := domain.ParseAmount(f.field, raw)
		if err != nil {
			return nil, err
		}
		out[f.field] = v
	}
	for field, raw := range extra {
		v, err := domain.ParseAmount(field, raw)
		if err != nil {
			return nil, err
		}
		out[field] = v
	}
	return out, nil
}

func newSalaryCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "salary",
		Short: "Show or change salary settings",
	}

	cmd.AddCommand(
		newSalaryShowCmd(app),
		newSalarySetCmd(app),
		newSalaryMonthCmd(app),
	)

	return cmd
}

func newSalaryShowCmd(app *App) *cobra.Command {
	var monthFlag string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the salary in force for a month",
		RunE: func(cmd *cobra.Command, args []string) error {
			month := monthFlag
			if month == "" {
				month = domain.MonthKey(app.today())
			}
			return showSalary(cmd, app, month)
		},
	}

	cmd.Flags().StringVar(&monthFlag, "month", "", "Month to show (YYYY-MM)")

	return cmd
}

func newSalarySetCmd(app *App) *cobra.Command {
	var extra map[string]string

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Change the default salary components",
		RunE: func(cmd *cobra.Command, args []string) error {
			fields, err := salaryFromFlags(cmd.Flags(), extra)
			if err != nil {
				return err
			}
			if len(fields) == 0 {
				return errors.New("nothing to change (use --base, --performance, --seniority, --insurance, --education or --set)")
			}
			if !app.Store.UpdateSalarySettings(fields) {
				return errors.New("salary settings rejected")
			}
			if err := flush(commandContext(cmd), app); err != nil {
				return err
			}
			return showSalary(cmd, app, domain.MonthKey(app.today()))
		},
	}

	addSalaryFlags(cmd.Flags(), &extra)

	return cmd
}

func newSalaryMonthCmd(app *App) *cobra.Command {
	var extra map[string]string
	var remove bool

	cmd := &cobra.Command{
		Use:   "month YYYY-MM",
		Short: "Set or remove the salary override for one month",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			month := args[0]
			if _, err := domain.ParseMonthKey(month); err != nil {
				return err
			}

			update := domain.MonthlyUpdate{Month: month, Delete: remove}
			if !remove {
				fields, err := salaryFromFlags(cmd.Flags(), extra)
				if err != nil {
					return err
				}
				if len(fields) == 0 {
					return errors.New("give at least one component, or --delete")
				}
				// Unset components start from the current override, then defaults.
				update.Settings = app.Store.EffectiveSalary(month)
				for k, v := range fields {
					update.Settings[k] = v
				}
			}

			if !app.Store.UpdateMonthlySalarySettings(update) {
				return fmt.Errorf("monthly salary for %s rejected", month)
			}
			if err := flush(commandContext(cmd), app); err != nil {
				return err
			}
			return showSalary(cmd, app, month)
		},
	}

	addSalaryFlags(cmd.Flags(), &extra)
	cmd.Flags().BoolVar(&remove, "delete", false, "Remove the override for this month")

	return cmd
}

func showSalary(cmd *cobra.Command, app *App, month string) error {
	sum, err := payroll.Summarize(month, app.Store.Snapshot())
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(),
		formatter.FormatSalary(sum.Month, sum.Salary, sum.Overridden, sum.Marks, payroll.IsDeduction))
	return nil
}
