package tui

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
)

func (m Model) View() string {
	switch m.mode {
	case detailView:
		return m.renderDetailView()
	case confirmArchiveView:
		return m.renderConfirmArchiveView()
	default:
		return m.renderListView()
	}
}

func (m Model) renderListView() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(fmt.Sprintf("Pending handoffs (%d)", len(m.handoffs))))
	b.WriteString("\n")

	switch {
	case !m.loaded && m.err == nil:
		b.WriteString(dimStyle.Render("Loading...") + "\n")
	case len(m.handoffs) == 0:
		b.WriteString(dimStyle.Render("Nothing pending.") + "\n")
	}

	now := m.now()
	for i, h := range m.handoffs {
		line := fmt.Sprintf("%s  %-6s  %s  %s",
			shortID(h.ID),
			modeStyle(h.Mode).Render(string(h.Mode)),
			truncate(h.Summary, m.summaryWidth()),
			dimStyle.Render(fmt.Sprintf("%s, %s", h.Author, humanize.RelTime(h.CreatedAt, now, "ago", "from now"))),
		)
		if i == m.cursor {
			b.WriteString(selectedRowStyle.Render(line))
		} else {
			b.WriteString(rowStyle.Render(line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.renderStatusLine())
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m Model) renderDetailView() string {
	h := m.selected()
	if h == nil {
		return "No handoff selected"
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("%s %s", modeStyle(h.Mode).Render(string(h.Mode)), shortID(h.ID))))
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(m.renderStatusLine())
	b.WriteString(dimStyle.Render("esc back | a archive | ↑/↓ scroll | q quit"))
	return b.String()
}

func (m Model) renderConfirmArchiveView() string {
	h := m.selected()
	if h == nil {
		return "No handoff selected"
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("ARCHIVE HANDOFF"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("ID:      %s\n", h.ID))
	b.WriteString(fmt.Sprintf("Mode:    %s\n", h.Mode))
	b.WriteString(fmt.Sprintf("Summary: %s\n", h.Summary))
	b.WriteString(fmt.Sprintf("From:    %s\n", h.Author))
	if len(h.Tags) > 0 {
		b.WriteString(fmt.Sprintf("Tags:    %s\n", strings.Join(h.Tags, ", ")))
	}
	b.WriteString("\n")
	b.WriteString(warningStyle.Render("It will no longer be included by receive.") + "\n\n")
	b.WriteString("Archive this handoff? [y/N]\n\n")
	b.WriteString(dimStyle.Render("y = confirm | n/Esc = cancel"))
	return b.String()
}

func (m Model) renderStatusLine() string {
	switch {
	case m.err != nil:
		return errorStyle.Render("Error: "+m.err.Error()) + "\n"
	case m.message != "":
		return messageStyle.Render(m.message) + "\n"
	}
	return ""
}

func (m Model) summaryWidth() int {
	if m.width <= 0 {
		return 60
	}
	return max(m.width-40, 20)
}

// truncate shortens s to maxLen runes, ending in "..." when cut.
func truncate(s string, maxLen int) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
