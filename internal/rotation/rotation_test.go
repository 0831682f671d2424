package rotation

import (
	"testing"
	"time"

	"github.com/alexanderramin/daoban/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var start = time.Date(2025, 1, 1, 0, 0, 0, 0, time.Local)

func TestCurrentShift_StartDateIsPositionZero(t *testing.T) {
	sh := CurrentShift(start, domain.DefaultTasks(), start)
	assert.Equal(t, 0, sh.Position)
	assert.Equal(t, 0, sh.DaysDiff)
	assert.Equal(t, 1, sh.TaskID)
	assert.Equal(t, "一采", sh.TaskName)
	assert.Equal(t, domain.ShiftDay, sh.ShiftType)
}

func TestCurrentShift_Sequence(t *testing.T) {
	tasks := domain.DefaultTasks()
	cases := []struct {
		offset    int
		taskID    int
		shiftType domain.ShiftType
	}{
		{1, 1, domain.ShiftNight},
		{2, 1, domain.ShiftRest},
		{3, 2, domain.ShiftDay},
		{8, 3, domain.ShiftRest},
		{17, 6, domain.ShiftRest},
		{18, 1, domain.ShiftDay},
		{-1, 6, domain.ShiftRest},
		{-18, 1, domain.ShiftDay},
		{-19, 6, domain.ShiftRest},
	}
	for _, tc := range cases {
		sh := CurrentShift(start, tasks, start.AddDate(0, 0, tc.offset))
		assert.Equal(t, tc.taskID, sh.TaskID, "offset %d", tc.offset)
		assert.Equal(t, tc.shiftType, sh.ShiftType, "offset %d", tc.offset)
		assert.Equal(t, tc.offset, sh.DaysDiff, "offset %d", tc.offset)
	}
}

func TestCurrentShift_PositionAlwaysInRange(t *testing.T) {
	tasks := domain.DefaultTasks()
	for offset := -400; offset <= 400; offset++ {
		sh := CurrentShift(start, tasks, start.AddDate(0, 0, offset))
		require.GreaterOrEqual(t, sh.Position, 0)
		require.Less(t, sh.Position, 18)
	}
}

func TestCurrentShift_IgnoresTimeOfDay(t *testing.T) {
	tasks := domain.DefaultTasks()
	day := start.AddDate(0, 0, 40)
	base := CurrentShift(start, tasks, day)

	for _, h := range []time.Duration{1 * time.Minute, 7 * time.Hour, 23*time.Hour + 59*time.Minute} {
		got := CurrentShift(start.Add(h), tasks, day.Add(h/2))
		assert.Equal(t, base.Position, got.Position)
		assert.Equal(t, base.TaskID, got.TaskID)
	}
}

func TestCurrentShift_CycleFollowsTaskCount(t *testing.T) {
	tasks := domain.DefaultTasks()[:4]
	sh := CurrentShift(start, tasks, start.AddDate(0, 0, 12))
	assert.Equal(t, 0, sh.Position)
	assert.Equal(t, 12, CycleLength(len(tasks)))
}

func TestForSettings_InitialTaskOffsetsRotation(t *testing.T) {
	s := domain.DefaultRotation(start)
	s.InitialTaskID = 4

	sh := ForSettings(s, start)
	assert.Equal(t, 4, sh.TaskID)
	assert.Equal(t, "一休", sh.TaskName)

	sh = ForSettings(s, start.AddDate(0, 0, 9))
	assert.Equal(t, 1, sh.TaskID)
}

func TestMonth_OneShiftPerDay(t *testing.T) {
	s := domain.DefaultRotation(start)
	days := Month(s, 2024, time.February)
	require.Len(t, days, 29)
	assert.Equal(t, 1, days[0].Date.Day())
	assert.Equal(t, 29, days[28].Date.Day())
	assert.Equal(t, DaysBetween(start, days[0].Date), days[0].DaysDiff)
}

func TestDaysBetween_AcrossDST(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		t.Skip("tzdata unavailable")
	}
	a := time.Date(2025, 3, 29, 12, 0, 0, 0, loc)
	b := time.Date(2025, 3, 31, 0, 30, 0, 0, loc)
	assert.Equal(t, 2, DaysBetween(a, b))
}
