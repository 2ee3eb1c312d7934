// Package util provides text helpers shared by the renderers and the viewer.
package util

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// TruncateANSI truncates a string to maxWidth visual columns, adding "..." if truncated.
// ANSI escape codes and wide characters are measured by their visual width.
func TruncateANSI(s string, maxWidth int) string {
	if maxWidth <= 3 {
		return "..."
	}
	if lipgloss.Width(s) <= maxWidth {
		return s
	}
	// ansi.Truncate includes the tail in the final width calculation
	return ansi.Truncate(s, maxWidth, "...")
}

// FitANSI returns s truncated or right-padded with spaces to exactly width
// visual columns. Widths below one yield an empty string.
func FitANSI(s string, width int) string {
	if width <= 0 {
		return ""
	}
	w := lipgloss.Width(s)
	switch {
	case w > width && width <= 3:
		return ansi.Truncate(s, width, "")
	case w > width:
		s = TruncateANSI(s, width)
		w = lipgloss.Width(s)
	}
	if w < width {
		s += strings.Repeat(" ", width-w)
	}
	return s
}

// FormatWeeks renders a duration in weeks with at most one decimal, the
// unit planners estimate in ("2w", "1.5w", "0w").
func FormatWeeks(d time.Duration) string {
	weeks := d.Hours() / (7 * 24)
	return strconv.FormatFloat(roundTenth(weeks), 'f', -1, 64) + "w"
}

// FormatDate renders a timestamp as YYYY-MM-DD, or "-" for the zero time.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(time.DateOnly)
}

// JoinLimited joins up to limit values with ", " and summarizes the rest.
func JoinLimited(values []string, limit int) string {
	if limit <= 0 || len(values) <= limit {
		return strings.Join(values, ", ")
	}
	return fmt.Sprintf("%s (+%d more)", strings.Join(values[:limit], ", "), len(values)-limit)
}

func roundTenth(v float64) float64 {
	r, _ := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 1, 64), 64)
	return r
}
