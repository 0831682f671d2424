package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// TaskDef is one slot of the shift rotation.
type TaskDef struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	RestTime  string `json:"restTime"`
	SleepTime string `json:"sleepTime,omitempty"`
	TaskClass string `json:"taskClass"`
}

// RotationSettings describes the recurring shift rotation. StartDate is always
// local midnight.
type RotationSettings struct {
	StartDate     time.Time
	InitialTaskID int
	Tasks         []TaskDef
}

// DefaultTasks returns the six-slot rotation the app ships with.
func DefaultTasks() []TaskDef {
	return []TaskDef{
		{ID: 1, Name: "一采", RestTime: "3小时", TaskClass: "task-1"},
		{ID: 2, Name: "二采", RestTime: "2小时", TaskClass: "task-2"},
		{ID: 3, Name: "三采", RestTime: "休息", TaskClass: "task-3"},
		{ID: 4, Name: "一休", RestTime: "休息", TaskClass: "task-4"},
		{ID: 5, Name: "二休", RestTime: "休息", TaskClass: "task-5"},
		{ID: 6, Name: "三休", RestTime: "休息", TaskClass: "task-6"},
	}
}

// DefaultRotation returns the default rotation anchored at today.
func DefaultRotation(today time.Time) RotationSettings {
	return RotationSettings{
		StartDate:     Midnight(today),
		InitialTaskID: 1,
		Tasks:         DefaultTasks(),
	}
}

// Validate checks that task ids are unique and densely cover 1..len(Tasks)
// and that InitialTaskID names one of them.
func (r RotationSettings) Validate() error {
	if len(r.Tasks) == 0 {
		return &ValidationError{Field: "settings.tasks", Reason: "at least one task is required"}
	}
	seen := make(map[int]bool, len(r.Tasks))
	for _, t := range r.Tasks {
		if t.ID < 1 || t.ID > len(r.Tasks) {
			return &ValidationError{Field: "settings.tasks", Reason: fmt.Sprintf("task id %d outside 1..%d", t.ID, len(r.Tasks))}
		}
		if seen[t.ID] {
			return &ValidationError{Field: "settings.tasks", Reason: fmt.Sprintf("duplicate task id %d", t.ID)}
		}
		seen[t.ID] = true
	}
	if r.InitialTaskID < 1 || r.InitialTaskID > len(r.Tasks) {
		return &ValidationError{Field: "settings.initialTaskId", Reason: fmt.Sprintf("%d is not a task id", r.InitialTaskID)}
	}
	return nil
}

// Normalize repairs settings that cannot drive the calculator: a missing
// start date becomes today, an invalid task list becomes the default one and
// an unknown initial task becomes 1. It returns a note per repair.
func (r *RotationSettings) Normalize(today time.Time) []string {
	var notes []string
	if r.StartDate.IsZero() {
		r.StartDate = Midnight(today)
		notes = append(notes, "settings.startDate defaulted to today")
	} else {
		r.StartDate = Midnight(r.StartDate)
	}
	if len(r.Tasks) == 0 || (RotationSettings{Tasks: r.Tasks, InitialTaskID: 1}).Validate() != nil {
		r.Tasks = DefaultTasks()
		notes = append(notes, "settings.tasks reset to defaults")
	}
	if r.InitialTaskID < 1 || r.InitialTaskID > len(r.Tasks) {
		r.InitialTaskID = 1
		notes = append(notes, "settings.initialTaskId reset to 1")
	}
	return notes
}

// TaskByID returns the task with the given id.
func (r RotationSettings) TaskByID(id int) (TaskDef, bool) {
	for _, t := range r.Tasks {
		if t.ID == id {
			return t, true
		}
	}
	return TaskDef{}, false
}

// Clone returns a copy that shares no slices with r.
func (r RotationSettings) Clone() RotationSettings {
	out := r
	if r.Tasks != nil {
		out.Tasks = append([]TaskDef(nil), r.Tasks...)
	}
	return out
}

type rotationWire struct {
	StartDate     string    `json:"startDate"`
	InitialTaskID int       `json:"initialTaskId"`
	Tasks         []TaskDef `json:"tasks"`
}

func (r RotationSettings) MarshalJSON() ([]byte, error) {
	w := rotationWire{InitialTaskID: r.InitialTaskID, Tasks: r.Tasks}
	if !r.StartDate.IsZero() {
		w.StartDate = FormatWireDate(r.StartDate)
	}
	if w.Tasks == nil {
		w.Tasks = []TaskDef{}
	}
	return json.Marshal(w)
}

// UnmarshalJSON merges the encoded fields into r; absent fields keep their
// current value.
func (r *RotationSettings) UnmarshalJSON(data []byte) error {
	var p RotationPatch
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	p.Apply(r)
	return nil
}

// RotationPatch is a partial update of RotationSettings. Nil fields are left
// untouched when applied.
type RotationPatch struct {
	StartDate     *time.Time
	InitialTaskID *int
	Tasks         []TaskDef
}

// Apply merges p into r and normalizes the start date.
func (p RotationPatch) Apply(r *RotationSettings) {
	if p.StartDate != nil {
		r.StartDate = Midnight(*p.StartDate)
	}
	if p.InitialTaskID != nil {
		r.InitialTaskID = *p.InitialTaskID
	}
	if p.Tasks != nil {
		r.Tasks = append([]TaskDef(nil), p.Tasks...)
	}
}

// IsEmpty reports whether applying p would change nothing.
func (p RotationPatch) IsEmpty() bool {
	return p.StartDate == nil && p.InitialTaskID == nil && p.Tasks == nil
}

func (p *RotationPatch) UnmarshalJSON(data []byte) error {
	var raw struct {
		StartDate     json.RawMessage `json:"startDate"`
		InitialTaskID *float64        `json:"initialTaskId"`
		Tasks         []TaskDef       `json:"tasks"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decoding settings: %w", err)
	}

	if start, ok, err := decodeStartDate(raw.StartDate); err != nil {
		return err
	} else if ok {
		p.StartDate = &start
	}
	if raw.InitialTaskID != nil {
		id := int(*raw.InitialTaskID)
		p.InitialTaskID = &id
	}
	p.Tasks = raw.Tasks
	return nil
}

// decodeStartDate accepts a date string or a unix-millisecond number. A
// missing or null value reports ok=false.
func decodeStartDate(raw json.RawMessage) (time.Time, bool, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return time.Time{}, false, nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return time.Time{}, false, fmt.Errorf("decoding startDate: %w", err)
		}
		if s == "" {
			return time.Time{}, false, nil
		}
		t, err := ParseWireDate(s)
		if err != nil {
			return time.Time{}, false, err
		}
		return t, true, nil
	}
	var ms float64
	if err := json.Unmarshal(raw, &ms); err != nil {
		return time.Time{}, false, &ValidationError{Field: "startDate", Reason: "must be a date string or epoch milliseconds"}
	}
	return Midnight(time.UnixMilli(int64(ms)).In(time.Local)), true, nil
}
