package render

import (
	"fmt"
	"strings"

	"github.com/Tsess/jira-planning/internal/planner"
	"github.com/Tsess/jira-planning/internal/util"
)

// Warnings renders the warnings panel, or an empty string when the pass
// produced nothing worth flagging. width bounds each line; zero means
// DefaultWidth.
func Warnings(r *planner.Result, width int) string {
	if r == nil {
		return ""
	}
	lines := r.Warnings()
	if len(lines) == 0 {
		return ""
	}
	if width <= 0 {
		width = DefaultWidth
	}
	// border and padding take four columns
	inner := max(width-4, 10)

	var b strings.Builder
	b.WriteString(Warning.Bold(true).Render(fmt.Sprintf("%d warning(s)", len(lines))))
	for _, line := range lines {
		b.WriteByte('\n')
		b.WriteString(util.TruncateANSI("• "+line, inner))
	}
	return WarningBox.Render(b.String())
}
