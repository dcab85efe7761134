package cmd

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/zjrosen/breathe/internal/config"
	"github.com/zjrosen/breathe/internal/ui/empty"
	"github.com/zjrosen/breathe/internal/ui/session"
)

func runTUI(cmd *cobra.Command, _ []string) error {
	notifier := session.NewNotifier()
	a, err := newApp(cmd.Context(), cfg, appHooks{
		OnChange:  notifier.OnChange,
		OnWarning: notifier.OnWarning,
		OnReload:  notifier.OnReload,
	})
	if err != nil {
		return err
	}
	defer a.Close()

	var model tea.Model
	if len(a.registry.All()) == 0 {
		model = empty.New(config.ExpandPath(cfg.Exercises.UserDir))
	} else {
		zones := zone.New()
		defer zones.Close()
		model = session.New(a.host, a.registry, notifier, session.Options{
			ShowBenefits:   cfg.UI.ShowBenefits,
			RenderMarkdown: cfg.UI.RenderMarkdown,
			MarkdownStyle:  markdownStyle(),
			Zones:          zones,
		})
	}

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running interface: %w", err)
	}
	return nil
}

// markdownStyle picks a glamour style once, before bubbletea owns the terminal.
func markdownStyle() string {
	if termenv.NewOutput(os.Stdout).Profile == termenv.Ascii {
		return "notty"
	}
	if lipgloss.HasDarkBackground() {
		return "dark"
	}
	return "light"
}
