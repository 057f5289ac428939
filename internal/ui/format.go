package ui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/five82/rayvision/internal/rayvision"
)

// humanizeDuration renders d as a short "2h 3m" style string.
func humanizeDuration(d time.Duration) string {
	if d < time.Second {
		return "now"
	}
	secs := int64(d / time.Second)
	days := secs / 86400
	hours := (secs % 86400) / 3600
	mins := (secs % 3600) / 60
	switch {
	case days > 0:
		if hours > 0 {
			return fmt.Sprintf("%dd %dh", days, hours)
		}
		return fmt.Sprintf("%dd", days)
	case hours > 0:
		if mins > 0 {
			return fmt.Sprintf("%dh %dm", hours, mins)
		}
		return fmt.Sprintf("%dh", hours)
	case mins > 0:
		return fmt.Sprintf("%dm", mins)
	default:
		return fmt.Sprintf("%ds", secs)
	}
}

// truncateMiddle shortens s to at most limit runes, keeping both ends.
func truncateMiddle(s string, limit int) string {
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if limit <= 0 || len(runes) <= limit {
		return s
	}
	if limit <= 3 {
		return string(runes[:limit])
	}
	head := (limit - 1) / 2
	tail := limit - 1 - head
	return string(runes[:head]) + "…" + string(runes[len(runes)-tail:])
}

// truncateEnd shortens s to at most limit runes.
func truncateEnd(s string, limit int) string {
	runes := []rune(s)
	if limit <= 0 || len(runes) <= limit {
		return s
	}
	if limit == 1 {
		return "…"
	}
	return string(runes[:limit-1]) + "…"
}

// formatMillis renders a server epoch-millisecond timestamp.
func formatMillis(ms int64, now time.Time) string {
	if ms <= 0 {
		return "-"
	}
	t := time.UnixMilli(ms)
	if t.Year() == now.Year() && t.YearDay() == now.YearDay() {
		return t.Format("15:04:05")
	}
	return t.Format("Jan 02 15:04")
}

func formatProgress(task rayvision.TaskSummary) string {
	if task.TotalFrames <= 0 {
		return "-"
	}
	pct := task.DoneFrames * 100 / task.TotalFrames
	return fmt.Sprintf("%d/%d %3d%%", task.DoneFrames, task.TotalFrames, pct)
}

// classifyError turns a poll error into a short operator-facing label.
func classifyError(err error) string {
	if err == nil {
		return ""
	}
	var te *rayvision.TransportError
	if errors.As(err, &te) {
		switch te.Kind {
		case rayvision.KindTimeout:
			return "timed out"
		case rayvision.KindDecode:
			return "bad response"
		case rayvision.KindCancelled:
			return "cancelled"
		default:
			return "unreachable"
		}
	}
	var ae *rayvision.APIError
	if errors.As(err, &ae) {
		return fmt.Sprintf("api error %d", ae.Code)
	}
	var pe *rayvision.ParameterError
	if errors.As(err, &pe) {
		return "rejected parameters"
	}
	var se *rayvision.SigningError
	if errors.As(err, &se) {
		return "bad credentials"
	}
	return "error"
}
