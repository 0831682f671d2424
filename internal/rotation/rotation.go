// Package rotation derives which shift falls on a given day from the
// rotation start date and task list.
package rotation

import (
	"time"

	"github.com/alexanderramin/daoban/internal/domain"
)

// DaysPerSubcycle is how many consecutive days each task covers:
// one day shift, one night shift, one rest day.
const DaysPerSubcycle = 3

// defaultTaskCount keeps the classic 18-day cycle when no tasks are configured.
const defaultTaskCount = 6

// Shift is the rotation slot for one calendar day.
type Shift struct {
	Date      time.Time
	TaskID    int
	TaskName  string
	TaskClass string
	ShiftType domain.ShiftType
	DaysDiff  int
	Position  int
}

// CycleLength returns the period of a rotation with taskCount tasks.
func CycleLength(taskCount int) int {
	if taskCount <= 0 {
		taskCount = defaultTaskCount
	}
	return taskCount * DaysPerSubcycle
}

// DaysBetween counts calendar days from start to day, ignoring time of day
// and DST transitions. It is negative when day precedes start.
func DaysBetween(start, day time.Time) int {
	sy, sm, sd := start.Date()
	dy, dm, dd := day.Date()
	a := time.Date(sy, sm, sd, 0, 0, 0, 0, time.UTC)
	b := time.Date(dy, dm, dd, 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}

// CurrentShift returns the shift on today for a rotation that starts with
// task 1 on startDate.
func CurrentShift(startDate time.Time, tasks []domain.TaskDef, today time.Time) Shift {
	return shiftAt(startDate, 1, tasks, today)
}

// ForSettings returns the shift on day for the given rotation settings,
// honouring InitialTaskID.
func ForSettings(s domain.RotationSettings, day time.Time) Shift {
	return shiftAt(s.StartDate, s.InitialTaskID, s.Tasks, day)
}

// Month returns one Shift per day of the given month.
func Month(s domain.RotationSettings, year int, month time.Month) []Shift {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.Local)
	days := first.AddDate(0, 1, -1).Day()
	out := make([]Shift, 0, days)
	for d := 0; d < days; d++ {
		out = append(out, ForSettings(s, first.AddDate(0, 0, d)))
	}
	return out
}

func shiftAt(startDate time.Time, initialTaskID int, tasks []domain.TaskDef, day time.Time) Shift {
	taskCount := len(tasks)
	if taskCount == 0 {
		taskCount = defaultTaskCount
	}
	length := CycleLength(taskCount)

	daysDiff := DaysBetween(startDate, day)
	position := ((daysDiff % length) + length) % length

	offset := 0
	if initialTaskID > 1 {
		offset = initialTaskID - 1
	}
	taskID := (position/DaysPerSubcycle+offset)%taskCount + 1

	sh := Shift{
		Date:      domain.Midnight(day),
		TaskID:    taskID,
		ShiftType: shiftType(position % DaysPerSubcycle),
		DaysDiff:  daysDiff,
		Position:  position,
	}
	for _, t := range tasks {
		if t.ID == taskID {
			sh.TaskName = t.Name
			sh.TaskClass = t.TaskClass
			break
		}
	}
	return sh
}

func shiftType(cyclePosition int) domain.ShiftType {
	switch cyclePosition {
	case 0:
		return domain.ShiftDay
	case 1:
		return domain.ShiftNight
	default:
		return domain.ShiftRest
	}
}
