package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Rounded border runes.
const (
	cornerTopLeft     = "╭"
	cornerTopRight    = "╮"
	cornerBottomLeft  = "╰"
	cornerBottomRight = "╯"
	edgeHorizontal    = "─"
	edgeVertical      = "│"
)

// RenderWithTitleBorder draws content inside a rounded box of the given outer
// size with leftTitle and rightTitle set into the top edge. Either title may
// be empty; titles that do not fit are truncated, then dropped right first.
func RenderWithTitleBorder(content, leftTitle, rightTitle string, width, height int, focused bool) string {
	borderColor := lipgloss.TerminalColor(BorderDefaultColor)
	if focused {
		borderColor = BorderFocusedColor
	}
	edge := lipgloss.NewStyle().Foreground(borderColor)
	title := lipgloss.NewStyle().Foreground(TextPrimaryColor).Bold(focused)

	inner := max(width-2, 1)
	rows := max(height-2, 1)

	body := lipgloss.NewStyle().Width(inner).Height(rows).MaxHeight(rows).Render(content)
	lines := strings.Split(body, "\n")

	var b strings.Builder
	b.WriteString(topEdge(leftTitle, rightTitle, inner, edge, title))
	for i := range rows {
		line := ""
		if i < len(lines) {
			line = lines[i]
		}
		if pad := inner - lipgloss.Width(line); pad > 0 {
			line += strings.Repeat(" ", pad)
		}
		b.WriteString("\n" + edge.Render(edgeVertical) + line + edge.Render(edgeVertical))
	}
	b.WriteString("\n" + edge.Render(cornerBottomLeft+strings.Repeat(edgeHorizontal, inner)+cornerBottomRight))
	return b.String()
}

// topEdge renders ╭─ Left ──── Right ─╮ exactly inner+2 cells wide.
func topEdge(left, right string, inner int, edge, title lipgloss.Style) string {
	// Each title costs its width plus "─ " before and " " after.
	const overhead = 3
	if right != "" && lipgloss.Width(left)+lipgloss.Width(right)+2*overhead+1 > inner {
		right = ""
	}
	if left != "" {
		if room := inner - overhead - 1; room < 1 {
			left = ""
		} else {
			left = TruncateString(left, room)
		}
	}

	used := 0
	var b strings.Builder
	b.WriteString(edge.Render(cornerTopLeft))
	if left != "" {
		b.WriteString(edge.Render(edgeHorizontal+" ") + title.Render(left) + edge.Render(" "))
		used += lipgloss.Width(left) + overhead
	}
	tail := ""
	if right != "" {
		tail = edge.Render(" ") + title.Render(right) + edge.Render(" "+edgeHorizontal)
		used += lipgloss.Width(right) + overhead
	}
	b.WriteString(edge.Render(strings.Repeat(edgeHorizontal, max(inner-used, 0))))
	b.WriteString(tail)
	b.WriteString(edge.Render(cornerTopRight))
	return b.String()
}
