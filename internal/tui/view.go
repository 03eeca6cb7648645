package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/portlist/nu_plugin_port_list/internal/pipeline"
)

func (m MainModel) View() string {
	if m.quitting {
		return ""
	}

	title := titleStyle.Render("port list")
	if m.version != "" {
		title += " " + footerStyle.Render(m.version)
	}

	var switches []string
	for _, sw := range pipeline.Switches {
		label := fmt.Sprintf("%c %s", sw.Short, sw.Long)
		if *m.flags.Ref(sw.Long) {
			switches = append(switches, activeSwitchStyle.Render(label))
		} else {
			switches = append(switches, inactiveSwitchStyle.Render(label))
		}
	}

	status := fmt.Sprintf("%d rows", len(m.rows))
	switch {
	case m.loading:
		status = "Loading..."
	case m.statusMsg != "":
		status = errorStyle.Render(m.statusMsg)
	}

	footer := footerStyle.Render("↑/↓ move • r refresh • " + shortKeys() + " toggle switch • q quit")

	body := lipgloss.JoinVertical(lipgloss.Left,
		title,
		strings.Join(switches, " "),
		m.table.View(),
		status,
		footer,
	)
	if m.width > 0 {
		return baseStyle.Width(m.width - 2).Render(body)
	}
	return baseStyle.Render(body)
}

func shortKeys() string {
	keys := make([]string, 0, len(pipeline.Switches))
	for _, sw := range pipeline.Switches {
		keys = append(keys, string(sw.Short))
	}
	return strings.Join(keys, "/")
}
