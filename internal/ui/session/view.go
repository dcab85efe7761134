package session

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/zjrosen/breathe/internal/breathing/domain"
	"github.com/zjrosen/breathe/internal/ui/styles"
)

const maxListWidth = 32

func listWidth(total int) int {
	return max(min(maxListWidth, total/3), 12)
}

// View renders the session screen.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	footer := m.footerView()
	bodyHeight := max(m.height-lipgloss.Height(footer), 3)
	lw := listWidth(m.width)
	mw := max(m.width-lw, 10)

	running := m.state.Running
	list := styles.RenderWithTitleBorder(m.listView(lw-4), "Exercises", fmt.Sprint(len(m.entries)), lw, bodyHeight, !running)

	right := ""
	if running {
		right = styles.FormatStep(m.state.StepIndex, m.state.StepCount())
	}
	detail := styles.RenderWithTitleBorder(m.mainView(mw-4), "Session", right, mw, bodyHeight, running)

	body := lipgloss.JoinHorizontal(lipgloss.Top, list, detail)
	return m.zones.Scan(lipgloss.JoinVertical(lipgloss.Left, body, footer))
}

func (m Model) listView(width int) string {
	if len(m.entries) == 0 {
		return styles.MutedStyle.Render("No exercises")
	}

	active := ""
	if m.state.Running && m.state.Exercise != nil {
		active = m.state.Exercise.ID
	}

	lines := make([]string, 0, len(m.entries))
	for i, e := range m.entries {
		marker := "  "
		if e.Exercise.ID == active {
			marker = "● "
		}
		name := styles.TruncateString(e.Exercise.Name, max(width-2, 1))

		var line string
		switch {
		case i == m.cursor:
			line = styles.SelectedItemStyle.Render("> " + name)
		case e.Exercise.ID == active:
			line = styles.ActiveItemStyle.Render(marker + name)
		default:
			line = marker + name
		}
		lines = append(lines, " "+m.zones.Mark(m.zoneID(i), line))
	}
	return strings.Join(lines, "\n")
}

func (m Model) mainView(width int) string {
	width = max(width, 10)

	ex := m.selected()
	if m.state.Running && m.state.Exercise != nil {
		ex = m.state.Exercise
	}
	if ex == nil {
		return styles.MutedStyle.Render("Add an exercise to get started.")
	}

	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render(ex.Name))
	b.WriteString("\n")
	if ex.Description != "" {
		b.WriteString(styles.DescriptionStyle.Render(wordwrap.String(ex.Description, width)))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if m.state.Running {
		instruction, _ := m.state.Instruction()
		b.WriteString(styles.CountdownStyle.Render(styles.FormatCountdown(m.state.Remaining)))
		b.WriteString("\n")
		b.WriteString(styles.InstructionStyle.Render(wordwrap.String(instruction, width)))
		b.WriteString("\n")
		b.WriteString(styles.MutedStyle.Render(styles.FormatStep(m.state.StepIndex, m.state.StepCount())))
		b.WriteString("\n")
	} else {
		b.WriteString(styles.MutedStyle.Render(fmt.Sprintf("Pattern %s · %ds per cycle", ex.Pattern(), ex.CycleSeconds())))
		b.WriteString("\n\n")
		b.WriteString(styles.SelectedItemStyle.Render("Press enter to start " + ex.Name))
		b.WriteString("\n")
	}

	if m.opts.ShowBenefits && len(ex.Benefits) > 0 {
		b.WriteString("\n")
		b.WriteString(m.benefitsView(ex, width))
	}
	return b.String()
}

func (m Model) benefitsView(ex *domain.Exercise, width int) string {
	if m.md != nil {
		var src strings.Builder
		src.WriteString("### Benefits\n\n")
		for _, benefit := range ex.Benefits {
			src.WriteString("- " + benefit + "\n")
		}
		out, err := m.md.Render(src.String())
		if err == nil {
			return strings.Trim(out, "\n")
		}
	}

	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render("Benefits"))
	for _, benefit := range ex.Benefits {
		b.WriteString("\n" + styles.DescriptionStyle.Render(wordwrap.String("• "+benefit, width)))
	}
	return b.String()
}

func (m Model) footerView() string {
	lines := []string{m.channelsView()}
	if m.warning != "" {
		lines = append(lines, styles.WarningStyle.Render("⚠ "+styles.TruncateString(m.warning, max(m.width-2, 1))))
	}
	lines = append(lines, m.help.View(m.keys))
	return strings.Join(lines, "\n")
}

func (m Model) channelsView() string {
	channels := m.host.Channels()
	if len(channels) == 0 {
		return styles.MutedStyle.Render(" No ambient tracks")
	}

	status := "off"
	if m.host.AmbientOn() {
		status = "on"
	}
	parts := []string{fmt.Sprintf(" Ambient %s · %d%%", status, m.host.Volume())}
	for i, ch := range channels {
		label := fmt.Sprintf("%d %s %s %d%%", i+1, styles.ChannelIndicator(ch.Playing), ch.ID, ch.Percent())
		switch {
		case !m.host.ChannelEnabled(ch.ID):
			label = styles.MutedStyle.Render(label + " (off)")
		case ch.Playing:
			label = styles.PlayingStyle.Render(label)
		}
		parts = append(parts, label)
	}
	return strings.Join(parts, "   ")
}
