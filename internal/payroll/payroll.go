// Package payroll resolves the salary that applies to a month and summarizes
// the marked days that affect it.
package payroll

import (
	"sort"
	"strings"

	"github.com/alexanderramin/daoban/internal/domain"
)

// deductionFields are subtracted from, rather than added to, the total.
var deductionFields = map[string]bool{
	domain.SalaryInsurance: true,
}

// IsDeduction reports whether a salary component is withheld.
func IsDeduction(field string) bool {
	return deductionFields[field]
}

// Resolve returns the salary in force for month. The month's override wins
// field by field; fields it does not set fall back to defaults.
func Resolve(month string, defaults domain.SalarySettings, overrides domain.MonthlySalarySettings) domain.SalarySettings {
	out := defaults.Clone()
	if out == nil {
		out = domain.SalarySettings{}
	}
	for k, v := range overrides[month] {
		out[k] = v
	}
	return out
}

// MonthSummary is the payroll view of one month.
type MonthSummary struct {
	Month      string
	Overridden bool
	Salary     domain.SalarySettings
	Marks      map[domain.MarkType]int
	MarkedDays []string
	Earnings   float64
	Deductions float64
	Net        float64
}

// Summarize builds the summary for month from doc.
func Summarize(month string, doc domain.Document) (MonthSummary, error) {
	if _, err := domain.ParseMonthKey(month); err != nil {
		return MonthSummary{}, err
	}

	_, overridden := doc.MonthlySalarySettings[month]
	sum := MonthSummary{
		Month:      month,
		Overridden: overridden,
		Salary:     Resolve(month, doc.SalarySettings, doc.MonthlySalarySettings),
		Marks:      make(map[domain.MarkType]int, len(domain.MarkTypes)),
	}
	for _, field := range sum.Salary.Keys() {
		if IsDeduction(field) {
			sum.Deductions += sum.Salary[field]
		} else {
			sum.Earnings += sum.Salary[field]
		}
	}
	sum.Net = sum.Earnings - sum.Deductions

	prefix := month + "-"
	for dateKey, flags := range doc.MarkedDates {
		if !strings.HasPrefix(dateKey, prefix) || flags.IsZero() {
			continue
		}
		sum.MarkedDays = append(sum.MarkedDays, dateKey)
		for _, t := range flags.Types() {
			sum.Marks[t]++
		}
	}
	sort.Strings(sum.MarkedDays)
	return sum, nil
}
