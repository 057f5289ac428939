package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// renderHeader renders the account and connection status bar.
func (m Model) renderHeader() string {
	styles := m.theme.Styles()
	bg := lipgloss.Color(m.theme.Surface)
	on := func(s lipgloss.Style) lipgloss.Style { return s.Background(bg) }
	sep := on(lipgloss.NewStyle()).Render("  ")

	parts := []string{styles.Logo.Render("raywatch")}

	snap := m.snapshot
	switch {
	case snap.LastError != nil && !snap.HasProfile:
		last := "soon"
		if !m.lastUpdated.IsZero() {
			last = m.lastUpdated.Format("15:04:05")
		}
		parts = append(parts,
			on(styles.DangerText).Render(strings.ToUpper(classifyError(snap.LastError))),
			on(styles.WarningText).Render("Retrying..."),
			on(styles.MutedText).Render(last),
		)
	case !snap.HasProfile:
		parts = append(parts, on(styles.MutedText).Render("Connecting to "+m.domain+"..."))
	default:
		p := snap.Profile
		user := p.UserName
		if user == "" {
			user = p.Name
		}
		parts = append(parts,
			on(styles.Text).Render(fmt.Sprintf("%s (%d)", user, p.UserID)),
			on(styles.MutedText).Render("platform "+fmt.Sprint(p.Platform)),
			on(styles.AccentText).Render(m.domain),
			on(styles.Text).Render(fmt.Sprintf("%d tasks", snap.TaskTotal)),
		)
		if snap.IsOffline() {
			parts = append(parts, on(styles.DangerText).Render("OFFLINE "+classifyError(snap.LastError)))
		} else if snap.LastError != nil {
			parts = append(parts, on(styles.WarningText).Render(classifyError(snap.LastError)))
		}
		if !snap.LastUpdated.IsZero() {
			age := humanizeDuration(m.now().Sub(snap.LastUpdated))
			parts = append(parts, on(styles.FaintText).Render("updated "+age))
		}
	}

	return styles.Header.Width(m.width).Render(strings.Join(parts, sep))
}

// renderFooter shows the last action result and the key hint.
func (m Model) renderFooter() string {
	styles := m.theme.Styles()
	left := m.notice
	if m.pending {
		left = m.spinner.View() + " working..."
	}
	hint := "x stop  s start  T theme  ? help  q quit"
	if left == "" {
		return styles.Footer.Width(m.width).Render(hint)
	}
	return styles.Footer.Width(m.width).Render(left + "  |  " + hint)
}
