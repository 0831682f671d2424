package domain

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSalarySettings_DecodeCoercesValues(t *testing.T) {
	var s SalarySettings
	body := `{"baseSalary":"4200.5","performance":800,"seniority":"abc","insurance":null,"education":true}`
	require.NoError(t, json.Unmarshal([]byte(body), &s))

	assert.Equal(t, 4200.5, s[SalaryBase])
	assert.Equal(t, 800.0, s[SalaryPerformance])
	assert.Equal(t, 0.0, s[SalarySeniority])
	assert.Equal(t, 0.0, s[SalaryInsurance])
	assert.Equal(t, 1.0, s[SalaryEducation])
}

func TestCoerceSalary_ReportsRepairs(t *testing.T) {
	_, repaired := CoerceSalary(map[string]any{
		"baseSalary":  "12x",
		"performance": 3.0,
		"insurance":   []any{1},
	})
	assert.Equal(t, []string{"baseSalary", "insurance"}, repaired)
}

func TestSalarySettings_RepairFillsRequired(t *testing.T) {
	s := SalarySettings{SalaryBase: math.NaN(), SalaryEducation: 10}
	repaired := s.Repair(RequiredSalaryFields...)

	assert.ElementsMatch(t, []string{SalaryBase, SalaryPerformance, SalarySeniority, SalaryInsurance}, repaired)
	assert.Equal(t, 0.0, s[SalaryBase])
	assert.Equal(t, 10.0, s[SalaryEducation])
}

func TestParseAmount(t *testing.T) {
	n, err := ParseAmount("baseSalary", " 3000 ")
	require.NoError(t, err)
	assert.Equal(t, 3000.0, n)

	_, err = ParseAmount("baseSalary", "lots")
	assert.ErrorContains(t, err, "baseSalary")
}

func TestMonthlySalarySettings_DecodeLegacyArray(t *testing.T) {
	var m MonthlySalarySettings
	body := `[{"month":"2025-01","baseSalary":"5000","performance":100},{"baseSalary":1},{"month":"2025-02","insurance":"x"}]`
	require.NoError(t, json.Unmarshal([]byte(body), &m))

	assert.Equal(t, []string{"2025-01", "2025-02"}, m.Months())
	assert.Equal(t, 5000.0, m["2025-01"][SalaryBase])
	_, hasMonthField := m["2025-01"]["month"]
	assert.False(t, hasMonthField)
	assert.Equal(t, 0.0, m["2025-02"][SalaryInsurance])
}

func TestMonthlySalarySettings_DecodeSkipsNonObjects(t *testing.T) {
	var m MonthlySalarySettings
	require.NoError(t, json.Unmarshal([]byte(`{"2025-01":{"baseSalary":1},"2025-02":"oops","2025-03":null}`), &m))
	assert.Equal(t, []string{"2025-01"}, m.Months())
}

func TestMonthlySalarySettings_Sanitize(t *testing.T) {
	m := MonthlySalarySettings{
		"2025-04": {SalaryBase: 1},
		"April":   {SalaryBase: 2},
		"2025-05": nil,
	}
	notes := m.Sanitize()

	assert.Equal(t, []string{"2025-04"}, m.Months())
	assert.Equal(t, 0.0, m["2025-04"][SalaryInsurance])
	assert.Contains(t, notes, `dropped invalid month "April"`)
	assert.Contains(t, notes, `dropped invalid month "2025-05"`)
	assert.Contains(t, notes, "repaired 2025-04.insurance")
}

func TestMonthlyUpdate_Validate(t *testing.T) {
	assert.NoError(t, MonthlyUpdate{Month: "2025-06", Settings: SalarySettings{}}.Validate())
	assert.NoError(t, MonthlyUpdate{Month: "2025-06", Delete: true}.Validate())
	assert.Error(t, MonthlyUpdate{Month: "2025-06"}.Validate())
	assert.Error(t, MonthlyUpdate{Month: "June", Settings: SalarySettings{}}.Validate())
}

func TestMonthlySalarySettings_DecodeLegacyArraySkipsNonObjects(t *testing.T) {
	var m MonthlySalarySettings
	body := `[{"month":"2024-01","baseSalary":"5000"},null,5,"x",[1],{"month":"2024-02","baseSalary":1}]`
	require.NoError(t, json.Unmarshal([]byte(body), &m))

	assert.Equal(t, []string{"2024-01", "2024-02"}, m.Months())
	assert.Equal(t, 5000.0, m["2024-01"][SalaryBase])
}
