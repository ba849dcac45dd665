package output

import "github.com/charmbracelet/lipgloss"

// Console palette
var (
	colorAccent = lipgloss.Color("39")
	colorPass   = lipgloss.Color("42")
	colorFail   = lipgloss.Color("196")
	colorWarn   = lipgloss.Color("214")
	colorMuted  = lipgloss.Color("245")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorAccent)

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			MarginTop(1)

	labelStyle = lipgloss.NewStyle().Foreground(colorMuted)

	passStyle = lipgloss.NewStyle().Bold(true).Foreground(colorPass)
	failStyle = lipgloss.NewStyle().Bold(true).Foreground(colorFail)
	warnStyle = lipgloss.NewStyle().Foreground(colorWarn)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorAccent).
			Padding(0, 1)

	headerCellStyle = lipgloss.NewStyle().Bold(true)
)

// badge renders a pass/fail marker.
func badge(ok bool, pass, fail string) string {
	if ok {
		return passStyle.Render(pass)
	}
	return failStyle.Render(fail)
}
