package styles

import (
	"fmt"

	"github.com/mattn/go-runewidth"
)

// FormatCountdown renders a remaining-seconds value for display.
func FormatCountdown(seconds int) string {
	if seconds == 1 {
		return "1 second"
	}
	return fmt.Sprintf("%d seconds", seconds)
}

// FormatStep renders a 0-based step index as "Step i of n".
func FormatStep(index, count int) string {
	return fmt.Sprintf("Step %d of %d", index+1, count)
}

// ChannelIndicator returns ▶ for a playing channel and ⏸ otherwise.
func ChannelIndicator(playing bool) string {
	if playing {
		return "▶"
	}
	return "⏸"
}

// TruncateString shortens s to at most maxWidth cells, ending in "..." when cut.
func TruncateString(s string, maxWidth int) string {
	if maxWidth < 1 {
		return ""
	}
	if runewidth.StringWidth(s) <= maxWidth {
		return s
	}
	if maxWidth <= 3 {
		return runewidth.Truncate(s, maxWidth, "")
	}
	return runewidth.Truncate(s, maxWidth, "...")
}
