package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/daoban/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

// Gruvbox-inspired color palette.
var (
	ColorGreen  = lipgloss.Color("#8ec07c")
	ColorYellow = lipgloss.Color("#fabd2f")
	ColorRed    = lipgloss.Color("#fb4934")
	ColorBlue   = lipgloss.Color("#83a598")
	ColorPurple = lipgloss.Color("#d3869b")
	ColorDim    = lipgloss.Color("#928374")
	ColorFg     = lipgloss.Color("#ebdbb2")
	ColorHeader = lipgloss.Color("#fe8019")
)

// Predefined lipgloss styles.
var (
	StyleGreen  = lipgloss.NewStyle().Foreground(ColorGreen)
	StyleYellow = lipgloss.NewStyle().Foreground(ColorYellow)
	StyleRed    = lipgloss.NewStyle().Foreground(ColorRed)
	StyleBlue   = lipgloss.NewStyle().Foreground(ColorBlue)
	StylePurple = lipgloss.NewStyle().Foreground(ColorPurple)
	StyleDim    = lipgloss.NewStyle().Foreground(ColorDim)
	StyleFg     = lipgloss.NewStyle().Foreground(ColorFg)
	StyleHeader = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)
	StyleBold   = lipgloss.NewStyle().Foreground(ColorFg).Bold(true)
)

// ShiftStyle returns the style used for a shift type.
func ShiftStyle(t domain.ShiftType) lipgloss.Style {
	switch t {
	case domain.ShiftDay:
		return StyleYellow
	case domain.ShiftNight:
		return StyleBlue
	case domain.ShiftRest:
		return StyleGreen
	default:
		return StyleDim
	}
}

// ShiftIndicator returns a colored shift label such as "☀ DAY".
func ShiftIndicator(t domain.ShiftType) string {
	switch t {
	case domain.ShiftDay:
		return StyleYellow.Render("☀ DAY")
	case domain.ShiftNight:
		return StyleBlue.Render("☾ NIGHT")
	case domain.ShiftRest:
		return StyleGreen.Render("● REST")
	default:
		return StyleDim.Render("● UNKNOWN")
	}
}

// MarkBadge returns a short colored label for a mark type.
func MarkBadge(t domain.MarkType) string {
	switch t {
	case domain.MarkLeave:
		return StylePurple.Render("leave")
	case domain.MarkDouble:
		return StyleHeader.Render("x2")
	case domain.MarkOvertime:
		return StyleRed.Render("OT")
	case domain.MarkDoubleOvertime:
		return StyleRed.Render("OTx2")
	default:
		return StyleDim.Render(string(t))
	}
}

// MarkBadges renders every set flag, or an empty string.
func MarkBadges(flags domain.MarkFlags) string {
	types := flags.Types()
	if len(types) == 0 {
		return ""
	}
	parts := make([]string, 0, len(types))
	for _, t := range types {
		parts = append(parts, MarkBadge(t))
	}
	return strings.Join(parts, " ")
}

// Header renders a section header with the orange header style and an underline.
func Header(text string) string {
	upper := strings.ToUpper(text)
	line := strings.Repeat("─", lipgloss.Width(upper))
	return fmt.Sprintf("%s\n%s", StyleHeader.Render(upper), StyleDim.Render(line))
}

// Dim renders text in the muted/dim color.
func Dim(text string) string {
	return StyleDim.Render(text)
}

// Bold renders text in bold with the foreground color.
func Bold(text string) string {
	return StyleBold.Render(text)
}
