package domain

import (
	"bytes"
	"encoding/json"
	"sort"
)

// MarkFlags is the set of marks on a single day.
type MarkFlags struct {
	Leave          bool `json:"leave,omitempty"`
	Double         bool `json:"double,omitempty"`
	Overtime       bool `json:"overtime,omitempty"`
	DoubleOvertime bool `json:"doubleOvertime,omitempty"`
}

func (f *MarkFlags) flag(t MarkType) *bool {
	switch t {
	case MarkLeave:
		return &f.Leave
	case MarkDouble:
		return &f.Double
	case MarkOvertime:
		return &f.Overtime
	case MarkDoubleOvertime:
		return &f.DoubleOvertime
	}
	return nil
}

// Has reports whether t is set.
func (f MarkFlags) Has(t MarkType) bool {
	p := f.flag(t)
	return p != nil && *p
}

// Toggle flips t and returns the new value.
func (f *MarkFlags) Toggle(t MarkType) bool {
	p := f.flag(t)
	if p == nil {
		return false
	}
	*p = !*p
	return *p
}

// IsZero reports whether no flag is set.
func (f MarkFlags) IsZero() bool {
	return f == MarkFlags{}
}

// Types returns the set flags in display order.
func (f MarkFlags) Types() []MarkType {
	var out []MarkType
	for _, t := range MarkTypes {
		if f.Has(t) {
			out = append(out, t)
		}
	}
	return out
}

// UnmarshalJSON accepts a flag object or a legacy single label.
func (f *MarkFlags) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var label string
		if err := json.Unmarshal(data, &label); err != nil {
			return err
		}
		*f = MarkFlags{}
		t, err := ParseMarkType(label)
		if err != nil {
			return err
		}
		f.Toggle(t)
		return nil
	}
	type plain MarkFlags
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return &ValidationError{Field: "markedDates", Reason: "entry must be a label or flag object"}
	}
	*f = MarkFlags(p)
	return nil
}

// MarkedDates maps a date-key (YYYY-MM-DD) to the marks on that day. Days
// with no flags set are not stored.
type MarkedDates map[string]MarkFlags

// Clone returns a copy.
func (m MarkedDates) Clone() MarkedDates {
	if m == nil {
		return nil
	}
	out := make(MarkedDates, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Toggle flips mark t on the given date-key and prunes the entry if it
// ends up empty. It returns the new value of the flag.
func (m MarkedDates) Toggle(dateKey string, t MarkType) bool {
	flags := m[dateKey]
	on := flags.Toggle(t)
	if flags.IsZero() {
		delete(m, dateKey)
	} else {
		m[dateKey] = flags
	}
	return on
}

// Keys returns the date-keys in ascending order.
func (m MarkedDates) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// UnmarshalJSON skips entries it cannot read instead of failing the whole
// document, and drops empty flag sets.
func (m *MarkedDates) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*m = nil
		return nil
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return &ValidationError{Field: "markedDates", Reason: "must be an object"}
	}
	out := make(MarkedDates, len(raw))
	for key, v := range raw {
		var flags MarkFlags
		if err := json.Unmarshal(v, &flags); err != nil || flags.IsZero() {
			continue
		}
		out[key] = flags
	}
	*m = out
	return nil
}
