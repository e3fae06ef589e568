package main

import (
	"fmt"
	"strings"
	"time"

	"grabd/internal/message"
)

// preview flattens an entry's content to a single display line.
func preview(e message.Entry, width int) string {
	s := e.Content
	if len(e.Payload) > 0 {
		s = fmt.Sprintf("<image %s>", humanSize(e.SourceSize))
	}
	s = strings.Join(strings.Fields(s), " ")
	if len(s) > width {
		s = s[:width-1] + "…"
	}
	return s
}

func humanSize(n int) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MiB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KiB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}

func humanAge(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds ago", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return t.Format("2006-01-02 15:04")
	}
}

func printEntries(entries []message.Entry) {
	for _, e := range entries {
		fmt.Printf("%-26s  %-7s  %-16s  %s\n", e.ID, e.Category, humanAge(e.Timestamp), preview(e, 60))
	}
}
