package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentPatch_ApplyKeepsMissingFields(t *testing.T) {
	doc := DefaultDocument(time.Date(2025, 1, 1, 0, 0, 0, 0, time.Local))
	doc.MarkedDates["2025-01-05"] = MarkFlags{Leave: true}
	doc.SalarySettings[SalaryBase] = 4000

	patch, err := DecodeDocumentPatch([]byte(`{"settings":{"initialTaskId":3},"monthlySalarySettings":{"2025-02":{"baseSalary":4500}}}`))
	require.NoError(t, err)
	patch.Apply(&doc)

	assert.Equal(t, 3, doc.Settings.InitialTaskID)
	assert.Len(t, doc.Settings.Tasks, 6)
	assert.True(t, doc.Settings.StartDate.Equal(time.Date(2025, 1, 1, 0, 0, 0, 0, time.Local)))
	assert.Equal(t, 4000.0, doc.SalarySettings[SalaryBase])
	assert.Equal(t, MarkFlags{Leave: true}, doc.MarkedDates["2025-01-05"])
	assert.Equal(t, 4500.0, doc.MonthlySalarySettings["2025-02"][SalaryBase])
}

func TestDecodeDocumentPatch_DataEnvelope(t *testing.T) {
	patch, err := DecodeDocumentPatch([]byte(`{"success":true,"data":{"markedDates":{"2025-01-01":"overtime"}}}`))
	require.NoError(t, err)
	assert.Equal(t, MarkedDates{"2025-01-01": {Overtime: true}}, patch.MarkedDates)
	assert.Nil(t, patch.Settings)
}

func TestDocument_JSONRoundTrip(t *testing.T) {
	doc := DefaultDocument(time.Date(2025, 6, 10, 9, 0, 0, 0, time.Local))
	doc.MonthlySalarySettings["2025-06"] = SalarySettings{SalaryBase: 5100, SalaryInsurance: 320}
	doc.MarkedDates["2025-06-11"] = MarkFlags{Double: true}

	data, err := json.Marshal(doc)
	require.NoError(t, err)

	back := DefaultDocument(time.Now())
	require.NoError(t, json.Unmarshal(data, &back))

	if diff := cmp.Diff(doc, back); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestDocument_PrepareForSave(t *testing.T) {
	doc := Document{
		Settings:              DefaultRotation(time.Now()),
		MonthlySalarySettings: MonthlySalarySettings{"bad": {}, "2025-07": {SalaryBase: 1}},
	}
	out, notes := doc.PrepareForSave()

	assert.NotNil(t, out.SalarySettings)
	assert.NotNil(t, out.MarkedDates)
	assert.Equal(t, []string{"2025-07"}, out.MonthlySalarySettings.Months())
	assert.NotEmpty(t, notes)
	assert.Contains(t, doc.MonthlySalarySettings, "bad", "original document is not modified")
}

func TestDocument_CloneIsDeep(t *testing.T) {
	doc := DefaultDocument(time.Now())
	doc.MonthlySalarySettings["2025-01"] = SalarySettings{SalaryBase: 1}
	c := doc.Clone()
	c.MonthlySalarySettings["2025-01"][SalaryBase] = 2
	c.MarkedDates["2025-01-01"] = MarkFlags{Leave: true}

	assert.Equal(t, 1.0, doc.MonthlySalarySettings["2025-01"][SalaryBase])
	assert.Empty(t, doc.MarkedDates)
}

func TestDecodeDocumentPatch_LegacyMonthlyArrayWithNonObjectEntries(t *testing.T) {
	patch, err := DecodeDocumentPatch([]byte(`{"monthlySalarySettings":[{"month":"2024-01","baseSalary":"5000"},null,5],"markedDates":{"2024-01-03":{"leave":true}}}`))
	require.NoError(t, err)

	assert.Equal(t, 5000.0, patch.MonthlySalarySettings["2024-01"][SalaryBase])
	assert.Len(t, patch.MonthlySalarySettings, 1)
	assert.True(t, patch.MarkedDates["2024-01-03"].Leave)
}
