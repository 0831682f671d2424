package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// MonthlySalarySettings maps a month-key (YYYY-MM) to the salary override for
// that month. This keyed mapping is the canonical encoding; the legacy
// array-of-records form is accepted on decode and migrated.
type MonthlySalarySettings map[string]SalarySettings

// MonthlyUpdate sets or removes the override for one month.
type MonthlyUpdate struct {
	Month    string
	Settings SalarySettings
	Delete   bool
}

// Validate checks the month-key and that a non-delete update carries settings.
func (u MonthlyUpdate) Validate() error {
	if _, err := ParseMonthKey(u.Month); err != nil {
		return err
	}
	if !u.Delete && u.Settings == nil {
		return &ValidationError{Field: "monthlySalarySettings", Reason: "settings are required unless deleting"}
	}
	return nil
}

// Clone returns a deep copy.
func (m MonthlySalarySettings) Clone() MonthlySalarySettings {
	if m == nil {
		return nil
	}
	out := make(MonthlySalarySettings, len(m))
	for k, v := range m {
		out[k] = v.Clone()
	}
	return out
}

// Months returns the month-keys in ascending order.
func (m MonthlySalarySettings) Months() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Sanitize drops entries whose key is not a month-key or whose value is
// missing, and repairs the required numeric fields of the rest. It returns a
// human-readable note per change for logging.
func (m MonthlySalarySettings) Sanitize() []string {
	var notes []string
	for _, month := range m.Months() {
		settings := m[month]
		if _, err := ParseMonthKey(month); err != nil || settings == nil {
			delete(m, month)
			notes = append(notes, fmt.Sprintf("dropped invalid month %q", month))
			continue
		}
		for _, field := range settings.Repair(RequiredSalaryFields...) {
			notes = append(notes, fmt.Sprintf("repaired %s.%s", month, field))
		}
	}
	return notes
}

// UnmarshalJSON accepts either the keyed mapping or an array of
// {month, ...fields} records. Entries that are not objects are skipped.
func (m *MonthlySalarySettings) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*m = nil
		return nil
	}
	out := make(MonthlySalarySettings)

	if len(data) > 0 && data[0] == '[' {
		var records []json.RawMessage
		if err := json.Unmarshal(data, &records); err != nil {
			return &ValidationError{Field: "monthlySalarySettings", Reason: "malformed array"}
		}
		for _, raw := range records {
			var rec map[string]any
			if err := json.Unmarshal(raw, &rec); err != nil || rec == nil {
				continue
			}
			month, _ := rec["month"].(string)
			if month == "" {
				continue
			}
			delete(rec, "month")
			out[month], _ = CoerceSalary(rec)
		}
		*m = out
		return nil
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return &ValidationError{Field: "monthlySalarySettings", Reason: "must be an object or array"}
	}
	for month, v := range raw {
		var fields map[string]any
		if err := json.Unmarshal(v, &fields); err != nil || fields == nil {
			continue
		}
		out[month], _ = CoerceSalary(fields)
	}
	*m = out
	return nil
}
