package domain

import "fmt"

// MarkType is one of the flags a calendar day can carry.
type MarkType string

const (
	MarkLeave          MarkType = "leave"
	MarkDouble         MarkType = "double"
	MarkOvertime       MarkType = "overtime"
	MarkDoubleOvertime MarkType = "doubleOvertime"
)

// MarkTypes lists every mark type in display order.
var MarkTypes = []MarkType{MarkLeave, MarkDouble, MarkOvertime, MarkDoubleOvertime}

// ParseMarkType validates a mark label.
func ParseMarkType(s string) (MarkType, error) {
	for _, t := range MarkTypes {
		if string(t) == s {
			return t, nil
		}
	}
	return "", &ValidationError{Field: "mark", Reason: fmt.Sprintf("%q is not one of leave, double, overtime, doubleOvertime", s)}
}

// ShiftType is the position inside a task's three-day sub-cycle.
type ShiftType string

const (
	ShiftDay   ShiftType = "day"
	ShiftNight ShiftType = "night"
	ShiftRest  ShiftType = "rest"
)
