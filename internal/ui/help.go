package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// renderHelp renders the help overlay.
func (m Model) renderHelp() string {
	styles := m.theme.Styles()

	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render("Keyboard Shortcuts"))
	b.WriteString("\n\n")
	b.WriteString(styles.AccentText.Render("Tasks"))
	b.WriteString("\n")
	for _, row := range [][2]string{{"j/k", "Move down/up"}, {"g/G", "Go to top/bottom"}} {
		b.WriteString(helpLine(styles, row[0], row[1]))
	}
	for _, binding := range m.keys.helpBindings() {
		h := binding.Help()
		b.WriteString(helpLine(styles, h.Key, h.Desc))
	}
	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render("Press any key to close"))

	box := styles.Box.Padding(1, 2).Render(b.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

func helpLine(styles Styles, keys, desc string) string {
	return styles.WarningText.Width(12).Render(keys) + styles.Text.Render(desc) + "\n"
}
