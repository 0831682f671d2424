package cli

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/daoban/internal/domain"
)

func press(t *testing.T, m tea.Model, keys ...tea.KeyMsg) calendarModel {
	t.Helper()
	for _, k := range keys {
		m, _ = m.Update(k)
	}
	cm, ok := m.(calendarModel)
	require.True(t, ok)
	return cm
}

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestCalendarModel_StartsOnToday(t *testing.T) {
	env := newTestEnv(t)
	m := newCalendarModel(env.app, firstOfMonth(now), now)

	assert.Equal(t, "2024-03-10", domain.DateKey(m.selected))
	view := m.View()
	assert.Contains(t, view, "MARCH 2024")
	assert.Contains(t, view, "2024-03-10")
}

func TestCalendarModel_Navigation(t *testing.T) {
	env := newTestEnv(t)
	var m tea.Model = newCalendarModel(env.app, firstOfMonth(now), now)

	cm := press(t, m, tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, "2024-04-01", domain.DateKey(cm.selected))

	cm = press(t, cm, tea.KeyMsg{Type: tea.KeyLeft}, tea.KeyMsg{Type: tea.KeyLeft})
	assert.Equal(t, "2024-02-01", domain.DateKey(cm.selected))
	assert.Contains(t, cm.View(), "FEBRUARY 2024")

	cm = press(t, cm, tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, "2024-01-31", domain.DateKey(cm.selected))

	cm = press(t, cm, runeKey('t'))
	assert.Equal(t, "2024-03-10", domain.DateKey(cm.selected))
}

func TestCalendarModel_ToggleMark(t *testing.T) {
	env := newTestEnv(t)
	var m tea.Model = newCalendarModel(env.app, firstOfMonth(now), now)

	cm := press(t, m, tea.KeyMsg{Type: tea.KeyDown}, runeKey('3'))
	assert.True(t, env.store.Snapshot().MarkedDates["2024-03-11"].Overtime)
	assert.Contains(t, cm.status, "2024-03-11")
	assert.Contains(t, cm.View(), "11*")

	press(t, cm, runeKey('3'))
	assert.Empty(t, env.store.Snapshot().MarkedDates)
}

func TestCalendarModel_Quit(t *testing.T) {
	env := newTestEnv(t)
	m := newCalendarModel(env.app, time.Date(2024, 5, 1, 0, 0, 0, 0, time.Local), now)

	_, cmd := m.Update(runeKey('q'))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}
