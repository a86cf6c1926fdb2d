package tracker

import (
	"fmt"
	"strings"
	"time"

	"sleeptrack/internal/modules/sleep/domain"
	"sleeptrack/internal/modules/sleep/dto"
)

// HistoryFormatter renders the night list for display.
type HistoryFormatter func(nights []dto.NightOutput) string

// FormatHistory prints one line per night in the order given.
func FormatHistory(nights []dto.NightOutput) string {
	if len(nights) == 0 {
		return ""
	}
	var sb strings.Builder
	for i, n := range nights {
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "#%d  %s", n.ID, n.StartTime.Local().Format("Mon Jan 2 15:04"))
		if n.Open {
			sb.WriteString("  in progress")
			continue
		}
		fmt.Fprintf(&sb, " → %s  %s", n.EndTime.Local().Format("15:04"), n.EndTime.Sub(n.StartTime).Round(time.Minute))
		if n.Rated {
			fmt.Fprintf(&sb, "  quality %d/%d", n.Quality, domain.MaxQuality)
		} else {
			sb.WriteString("  not rated")
		}
	}
	return sb.String()
}
