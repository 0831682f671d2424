package formatter

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/alexanderramin/daoban/internal/domain"
	"github.com/alexanderramin/daoban/internal/rotation"
)

// FormatShift renders the shift box shown by "today".
func FormatShift(sh rotation.Shift, task domain.TaskDef, flags domain.MarkFlags, today time.Time) string {
	var b strings.Builder

	name := sh.TaskName
	if name == "" {
		name = fmt.Sprintf("Task %d", sh.TaskID)
	}
	b.WriteString(Bold(name) + "  " + ShiftIndicator(sh.ShiftType) + "\n\n")

	b.WriteString(fmt.Sprintf("  %s  %s %s\n", StyleDim.Render("DATE "),
		sh.Date.Format("Mon Jan 2, 2006"), Dim("("+RelativeDay(sh.Date, today)+")")))
	b.WriteString(fmt.Sprintf("  %s  %d\n", StyleDim.Render("TASK "), sh.TaskID))
	if task.RestTime != "" {
		b.WriteString(fmt.Sprintf("  %s  %s\n", StyleDim.Render("REST "), task.RestTime))
	}
	if task.SleepTime != "" {
		b.WriteString(fmt.Sprintf("  %s  %s\n", StyleDim.Render("SLEEP"), task.SleepTime))
	}
	b.WriteString(fmt.Sprintf("  %s  day %d of cycle", StyleDim.Render("CYCLE"), sh.Position+1))
	if badges := MarkBadges(flags); badges != "" {
		b.WriteString(fmt.Sprintf("\n  %s  %s", StyleDim.Render("MARKS"), badges))
	}

	return RenderBox("Shift", b.String())
}

// FormatCalendar renders one row per day of a month with its shift and marks.
func FormatCalendar(shifts []rotation.Shift, marks domain.MarkedDates, today time.Time) string {
	if len(shifts) == 0 {
		return Dim("No days to show.")
	}

	headers := []string{"DATE", "DAY", "TASK", "SHIFT", "MARKS"}
	rows := make([][]string, 0, len(shifts))
	for _, sh := range shifts {
		date := domain.DateKey(sh.Date)
		if rotation.DaysBetween(today, sh.Date) == 0 {
			date = StyleHeader.Render(date)
		}
		task := sh.TaskName
		if task == "" {
			task = strconv.Itoa(sh.TaskID)
		}
		rows = append(rows, []string{
			date,
			Weekday(sh.Date),
			task,
			ShiftStyle(sh.ShiftType).Render(string(sh.ShiftType)),
			MarkBadges(marks[domain.DateKey(sh.Date)]),
		})
	}

	title := Header(shifts[0].Date.Format("January 2006"))
	return title + "\n" + RenderTable(headers, rows)
}

// FormatRotation renders rotation settings and the task list.
func FormatRotation(s domain.RotationSettings) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("  %s  %s\n", StyleDim.Render("START  "), domain.DateKey(s.StartDate)))
	b.WriteString(fmt.Sprintf("  %s  %d\n", StyleDim.Render("INITIAL"), s.InitialTaskID))
	b.WriteString(fmt.Sprintf("  %s  %d days\n\n", StyleDim.Render("CYCLE  "), rotation.CycleLength(len(s.Tasks))))

	rows := make([][]string, 0, len(s.Tasks))
	for _, t := range s.Tasks {
		rows = append(rows, []string{strconv.Itoa(t.ID), t.Name, t.RestTime, t.TaskClass})
	}
	b.WriteString(RenderTable([]string{"ID", "NAME", "REST", "CLASS"}, rows, 0))

	return RenderBox("Rotation", strings.TrimRight(b.String(), "\n"))
}

// FormatSalary renders the resolved salary of a month with its totals.
// Deduction reports which components are withheld.
func FormatSalary(month string, salary domain.SalarySettings, overridden bool, marks map[domain.MarkType]int, deduction func(string) bool) string {
	var b strings.Builder

	source := Dim("defaults")
	if overridden {
		source = StylePurple.Render("monthly override")
	}
	b.WriteString(Bold(month) + "  " + source + "\n\n")

	var earnings, deductions float64
	rows := make([][]string, 0, len(salary))
	for _, field := range salary.Keys() {
		v := salary[field]
		amount := FormatAmount(v)
		if deduction(field) {
			deductions += v
			amount = StyleRed.Render("-" + amount)
		} else {
			earnings += v
		}
		rows = append(rows, []string{field, amount})
	}
	b.WriteString(RenderTable([]string{"COMPONENT", "AMOUNT"}, rows, 1))

	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  %s  %s\n", StyleDim.Render("EARNINGS  "), FormatAmount(earnings)))
	b.WriteString(fmt.Sprintf("  %s  %s\n", StyleDim.Render("DEDUCTIONS"), FormatAmount(deductions)))
	b.WriteString(fmt.Sprintf("  %s  %s", StyleDim.Render("NET       "), StyleGreen.Render(FormatAmount(earnings-deductions))))

	if line := markSummary(marks); line != "" {
		b.WriteString("\n\n" + line)
	}
	return RenderBox("Salary", b.String())
}

func markSummary(marks map[domain.MarkType]int) string {
	var parts []string
	for _, t := range domain.MarkTypes {
		if n := marks[t]; n > 0 {
			parts = append(parts, fmt.Sprintf("%s %d", MarkBadge(t), n))
		}
	}
	return strings.Join(parts, "  •  ")
}

// FormatSyncSummary is the one-line result of a sync.
func FormatSyncSummary(username string, doc domain.Document) string {
	return fmt.Sprintf("%s %s  %s",
		StyleGreen.Render("✔ Synced"),
		Bold(username),
		Dim(fmt.Sprintf("%d tasks  •  %d marked days  •  %d monthly overrides",
			len(doc.Settings.Tasks), len(doc.MarkedDates), len(doc.MonthlySalarySettings))))
}
