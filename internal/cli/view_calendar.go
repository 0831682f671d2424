package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/alexanderramin/daoban/internal/cli/formatter"
	"github.com/alexanderramin/daoban/internal/domain"
	"github.com/alexanderramin/daoban/internal/rotation"
)

type calendarKeyMap struct {
	PrevMonth key.Binding
	NextMonth key.Binding
	PrevDay   key.Binding
	NextDay   key.Binding
	Today     key.Binding
	Mark      key.Binding
	Quit      key.Binding
}

func defaultCalendarKeys() calendarKeyMap {
	return calendarKeyMap{
		PrevMonth: key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/→", "month")),
		NextMonth: key.NewBinding(key.WithKeys("right", "l")),
		PrevDay:   key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/↓", "day")),
		NextDay:   key.NewBinding(key.WithKeys("down", "j")),
		Today:     key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "today")),
		Mark:      key.NewBinding(key.WithKeys("1", "2", "3", "4"), key.WithHelp("1-4", "toggle mark")),
		Quit:      key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k calendarKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.PrevMonth, k.PrevDay, k.Today, k.Mark, k.Quit}
}

func (k calendarKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

// calendarModel is a month grid with one selected day. Marks toggled here
// go through the store like the mark command.
type calendarModel struct {
	app      *App
	today    time.Time
	selected time.Time
	keys     calendarKeyMap
	help     help.Model
	status   string
}

func newCalendarModel(app *App, month, today time.Time) calendarModel {
	selected := month
	if month.Year() == today.Year() && month.Month() == today.Month() {
		selected = domain.Midnight(today)
	}
	return calendarModel{
		app:      app,
		today:    today,
		selected: selected,
		keys:     defaultCalendarKeys(),
		help:     help.New(),
	}
}

func (m calendarModel) Init() tea.Cmd { return nil }

func (m calendarModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
	case tea.KeyMsg:
		m.status = ""
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.PrevDay):
			m.selected = m.selected.AddDate(0, 0, -1)
		case key.Matches(msg, m.keys.NextDay):
			m.selected = m.selected.AddDate(0, 0, 1)
		case key.Matches(msg, m.keys.PrevMonth):
			m.selected = firstOfMonth(m.selected).AddDate(0, -1, 0)
		case key.Matches(msg, m.keys.NextMonth):
			m.selected = firstOfMonth(m.selected).AddDate(0, 1, 0)
		case key.Matches(msg, m.keys.Today):
			m.selected = domain.Midnight(m.today)
		case key.Matches(msg, m.keys.Mark):
			m.toggle(msg.String())
		}
	}
	return m, nil
}

func (m *calendarModel) toggle(k string) {
	idx := int(k[0] - '1')
	if idx < 0 || idx >= len(domain.MarkTypes) {
		return
	}
	t := domain.MarkTypes[idx]
	if !m.app.Store.MarkDate(m.selected, t) {
		m.status = formatter.StyleRed.Render("could not mark " + domain.DateKey(m.selected))
		return
	}
	m.status = fmt.Sprintf("toggled %s on %s", formatter.MarkBadge(t), domain.DateKey(m.selected))
}

func (m calendarModel) View() string {
	doc := m.app.Store.Snapshot()
	first := firstOfMonth(m.selected)
	shifts := rotation.Month(doc.Settings, first.Year(), first.Month())

	var b strings.Builder
	b.WriteString(formatter.Header(first.Format("January 2006")) + "\n\n")

	cell := lipgloss.NewStyle().Width(5).Align(lipgloss.Right)
	for _, wd := range []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"} {
		b.WriteString(cell.Render(formatter.Dim(wd)))
	}
	b.WriteString("\n")

	b.WriteString(strings.Repeat(cell.Render(""), int(first.Weekday())))
	for _, sh := range shifts {
		label := fmt.Sprintf("%d", sh.Date.Day())
		if !doc.MarkedDates[domain.DateKey(sh.Date)].IsZero() {
			label += "*"
		}
		style := formatter.ShiftStyle(sh.ShiftType)
		switch {
		case sameDay(sh.Date, m.selected):
			style = style.Reverse(true)
		case sameDay(sh.Date, m.today):
			style = style.Underline(true)
		}
		b.WriteString(cell.Render(style.Render(label)))
		if sh.Date.Weekday() == time.Saturday {
			b.WriteString("\n")
		}
	}
	b.WriteString("\n\n")

	sh := rotation.ForSettings(doc.Settings, m.selected)
	name := sh.TaskName
	if name == "" {
		name = fmt.Sprintf("Task %d", sh.TaskID)
	}
	b.WriteString(fmt.Sprintf("%s  %s  %s  %s\n",
		formatter.Bold(domain.DateKey(m.selected)),
		name,
		formatter.ShiftIndicator(sh.ShiftType),
		formatter.MarkBadges(doc.MarkedDates[domain.DateKey(m.selected)])))
	if m.status != "" {
		b.WriteString(m.status + "\n")
	}
	b.WriteString("\n" + m.help.View(m.keys))
	return b.String()
}

func firstOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.Local)
}

func sameDay(a, b time.Time) bool {
	return rotation.DaysBetween(a, b) == 0
}
