package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Well-known salary components.
const (
	SalaryBase        = "baseSalary"
	SalaryPerformance = "performance"
	SalarySeniority   = "seniority"
	SalaryInsurance   = "insurance"
	SalaryEducation   = "education"
)

// RequiredSalaryFields must be present and numeric in every monthly override
// before it is sent to the backend.
var RequiredSalaryFields = []string{SalaryBase, SalaryPerformance, SalarySeniority, SalaryInsurance}

// SalarySettings maps a component name to its amount.
type SalarySettings map[string]float64

// DefaultSalarySettings returns all well-known components set to zero.
func DefaultSalarySettings() SalarySettings {
	return SalarySettings{
		SalaryBase:        0,
		SalaryPerformance: 0,
		SalarySeniority:   0,
		SalaryInsurance:   0,
		SalaryEducation:   0,
	}
}

// Clone returns an independent copy.
func (s SalarySettings) Clone() SalarySettings {
	if s == nil {
		return nil
	}
	out := make(SalarySettings, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Keys returns the component names in sorted order.
func (s SalarySettings) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Repair replaces non-finite amounts with 0 and fills any missing required
// field with 0. It returns the names of the fields it touched.
func (s SalarySettings) Repair(required ...string) []string {
	var repaired []string
	for _, k := range s.Keys() {
		if v := s[k]; math.IsNaN(v) || math.IsInf(v, 0) {
			s[k] = 0
			repaired = append(repaired, k)
		}
	}
	for _, k := range required {
		if _, ok := s[k]; !ok {
			s[k] = 0
			repaired = append(repaired, k)
		}
	}
	return repaired
}

// UnmarshalJSON coerces every value to a number. Values that cannot be
// coerced become 0 rather than failing the whole document.
func (s *SalarySettings) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return &ValidationError{Field: "salarySettings", Reason: "must be an object"}
	}
	if raw == nil {
		*s = nil
		return nil
	}
	out, _ := CoerceSalary(raw)
	*s = out
	return nil
}

// CoerceSalary converts a loosely typed mapping into SalarySettings and
// reports which fields had to be repaired.
func CoerceSalary(raw map[string]any) (SalarySettings, []string) {
	out := make(SalarySettings, len(raw))
	var repaired []string
	for k, v := range raw {
		n, ok := coerceNumber(v)
		if !ok {
			repaired = append(repaired, k)
		}
		out[k] = n
	}
	sort.Strings(repaired)
	return out, repaired
}

// coerceNumber follows the loose numeric conversion the web client applied:
// numbers pass through, numeric strings parse, booleans become 1/0, and
// everything else is 0.
func coerceNumber(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return 0, false
		}
		return x, true
	case string:
		trimmed := strings.TrimSpace(x)
		if trimmed == "" {
			return 0, false
		}
		n, err := strconv.ParseFloat(trimmed, 64)
		if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return n, true
	case bool:
		if x {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

// ParseAmount parses user input for a salary component.
func ParseAmount(field, s string) (float64, error) {
	n, ok := coerceNumber(s)
	if !ok {
		return 0, &ValidationError{Field: field, Reason: fmt.Sprintf("%q is not a number", s)}
	}
	return n, nil
}
