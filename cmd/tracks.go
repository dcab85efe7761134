package cmd

import (
	"fmt"
	"io"
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/zjrosen/breathe/internal/audio/command"
	"github.com/zjrosen/breathe/internal/config"
)

var tracksCmd = &cobra.Command{
	Use:   "tracks",
	Short: "List configured ambient tracks",
	Long:  `Display each ambient track from audio.tracks, the file it resolves to, and the audio player that will be used.`,
	RunE:  runTracks,
}

func init() {
	rootCmd.AddCommand(tracksCmd)
}

func runTracks(cmd *cobra.Command, _ []string) error {
	printTracks(cmd.OutOrStdout(), cfg, exec.LookPath)
	return nil
}

func printTracks(w io.Writer, c config.Config, lookPath func(string) (string, error)) {
	fmt.Fprintln(w, "Ambient Tracks:")
	resolved := resolveTracks(c)
	if len(c.Audio.Tracks) == 0 {
		fmt.Fprintln(w, "  (none)")
	}

	byID := make(map[string]string, len(resolved))
	for _, t := range resolved {
		byID[t.ID] = t.Source
	}
	width := 0
	for _, t := range c.Audio.Tracks {
		width = max(width, len(t.ID))
	}
	for _, t := range c.Audio.Tracks {
		path, ok := byID[t.ID]
		if !ok {
			path = "(unavailable)"
		}
		fmt.Fprintf(w, "  %-*s  %s -> %s\n", width, t.ID, t.Source, path)
	}

	fmt.Fprintln(w)
	switch {
	case !c.Audio.Enabled || c.Audio.Player == config.PlayerNone:
		fmt.Fprintln(w, "Player: disabled")
	default:
		p, err := command.Detect(c.Audio.Player, lookPath)
		if err != nil {
			fmt.Fprintf(w, "Player: unavailable (%v)\n", err)
			return
		}
		fmt.Fprintf(w, "Player: %s\n", p.Name)
	}
	fmt.Fprintf(w, "Master volume: %d%%\n", c.Audio.MasterVolume)
}
