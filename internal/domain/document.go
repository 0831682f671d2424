package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// Document is everything the backend stores for one user.
type Document struct {
	Settings              RotationSettings      `json:"settings"`
	SalarySettings        SalarySettings        `json:"salarySettings"`
	MonthlySalarySettings MonthlySalarySettings `json:"monthlySalarySettings"`
	MarkedDates           MarkedDates           `json:"markedDates"`
}

// DefaultDocument returns a fresh document anchored at today.
func DefaultDocument(today time.Time) Document {
	return Document{
		Settings:              DefaultRotation(today),
		SalarySettings:        DefaultSalarySettings(),
		MonthlySalarySettings: MonthlySalarySettings{},
		MarkedDates:           MarkedDates{},
	}
}

// Clone returns a deep copy.
func (d Document) Clone() Document {
	return Document{
		Settings:              d.Settings.Clone(),
		SalarySettings:        d.SalarySettings.Clone(),
		MonthlySalarySettings: d.MonthlySalarySettings.Clone(),
		MarkedDates:           d.MarkedDates.Clone(),
	}
}

// PrepareForSave returns a copy with monthly overrides sanitized and the
// default salary repaired, plus notes describing every repair.
func (d Document) PrepareForSave() (Document, []string) {
	out := d.Clone()
	if out.SalarySettings == nil {
		out.SalarySettings = DefaultSalarySettings()
	}
	var notes []string
	for _, f := range out.SalarySettings.Repair() {
		notes = append(notes, fmt.Sprintf("repaired salarySettings.%s", f))
	}
	if out.MonthlySalarySettings == nil {
		out.MonthlySalarySettings = MonthlySalarySettings{}
	}
	notes = append(notes, out.MonthlySalarySettings.Sanitize()...)
	if out.MarkedDates == nil {
		out.MarkedDates = MarkedDates{}
	}
	return out, notes
}

// DocumentPatch is a document as received from the backend, where any top
// level field may be absent. Nil fields leave the target untouched.
type DocumentPatch struct {
	Settings              *RotationPatch        `json:"settings"`
	SalarySettings        SalarySettings        `json:"salarySettings"`
	MonthlySalarySettings MonthlySalarySettings `json:"monthlySalarySettings"`
	MarkedDates           MarkedDates           `json:"markedDates"`
}

// Apply merges the known fields of p into d.
func (p DocumentPatch) Apply(d *Document) {
	if p.Settings != nil {
		p.Settings.Apply(&d.Settings)
	}
	if p.SalarySettings != nil {
		d.SalarySettings = p.SalarySettings.Clone()
	}
	if p.MonthlySalarySettings != nil {
		d.MonthlySalarySettings = p.MonthlySalarySettings.Clone()
	}
	if p.MarkedDates != nil {
		d.MarkedDates = p.MarkedDates.Clone()
	}
}

// DecodeDocumentPatch decodes a backend payload. Some deployments wrap the
// document in {"data": {...}}; both shapes are accepted.
func DecodeDocumentPatch(body []byte) (DocumentPatch, error) {
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && len(envelope.Data) > 0 && envelope.Data[0] == '{' {
		body = envelope.Data
	}
	var p DocumentPatch
	if err := json.Unmarshal(body, &p); err != nil {
		return DocumentPatch{}, fmt.Errorf("decoding user document: %w", err)
	}
	return p, nil
}
