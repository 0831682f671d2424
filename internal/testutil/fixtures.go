package testutil

import (
	"time"

	"github.com/alexanderramin/daoban/internal/domain"
)

// Day returns local midnight for the given calendar date.
func Day(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.Local)
}

// DocumentOption adjusts a test document.
type DocumentOption func(*domain.Document)

func WithStartDate(d time.Time) DocumentOption {
	return func(doc *domain.Document) {
		doc.Settings.StartDate = domain.Midnight(d)
	}
}

func WithInitialTask(id int) DocumentOption {
	return func(doc *domain.Document) {
		doc.Settings.InitialTaskID = id
	}
}

func WithTasks(tasks ...domain.TaskDef) DocumentOption {
	return func(doc *domain.Document) {
		doc.Settings.Tasks = tasks
	}
}

func WithSalary(field string, amount float64) DocumentOption {
	return func(doc *domain.Document) {
		doc.SalarySettings[field] = amount
	}
}

func WithMonthlyOverride(month string, settings domain.SalarySettings) DocumentOption {
	return func(doc *domain.Document) {
		doc.MonthlySalarySettings[month] = settings
	}
}

func WithMark(dateKey string, types ...domain.MarkType) DocumentOption {
	return func(doc *domain.Document) {
		for _, t := range types {
			doc.MarkedDates.Toggle(dateKey, t)
		}
	}
}

// NewTestDocument returns a default document anchored at 2024-01-01 with
// opts applied.
func NewTestDocument(opts ...DocumentOption) domain.Document {
	doc := domain.DefaultDocument(Day(2024, time.January, 1))
	doc.SalarySettings = domain.SalarySettings{
		domain.SalaryBase:        5000,
		domain.SalaryPerformance: 1200,
		domain.SalarySeniority:   300,
		domain.SalaryInsurance:   450,
		domain.SalaryEducation:   0,
	}
	for _, opt := range opts {
		opt(&doc)
	}
	return doc
}
