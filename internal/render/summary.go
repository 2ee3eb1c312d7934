package render

import (
	"fmt"
	"strings"

	"github.com/Tsess/jira-planning/internal/planner"
	"github.com/Tsess/jira-planning/internal/util"
)

// Summary renders the analysis block: projected finish, critical path,
// late items and bottleneck teams.
func Summary(r *planner.Result) string {
	if r == nil {
		return ""
	}
	an := r.Analysis

	placed, unscheduled, excluded := 0, 0, 0
	for _, a := range r.Assignments {
		switch {
		case a.Excluded:
			excluded++
		case a.Unscheduled:
			unscheduled++
		default:
			placed++
		}
	}

	var b strings.Builder
	b.WriteString(Title.Render("Summary"))
	b.WriteByte('\n')
	line := func(label, value string) {
		b.WriteString(RowLabel.Render(util.FitANSI(label, labelWidth)))
		b.WriteByte(' ')
		b.WriteString(value)
		b.WriteByte('\n')
	}
	line("items", fmt.Sprintf("%d scheduled, %d unscheduled, %d excluded", placed, unscheduled, excluded))
	line("finish", util.FormatDate(an.Finish))
	if len(an.CriticalPath) > 0 {
		line("critical path", strings.Join(an.CriticalPath, " → "))
	}
	if len(an.LateItems) > 0 {
		line("late", Error.Render(util.JoinLimited(an.LateItems, 10)))
	}
	if len(an.BottleneckTeams) > 0 {
		line("bottlenecks", Warning.Render(strings.Join(an.BottleneckTeams, ", ")))
	}
	if len(r.DroppedEdges) > 0 {
		dropped := make([]string, len(r.DroppedEdges))
		for i, e := range r.DroppedEdges {
			dropped[i] = e.Prerequisite + "→" + e.Dependent
		}
		line("dropped edges", Warning.Render(strings.Join(dropped, ", ")))
	}
	return strings.TrimRight(b.String(), "\n")
}
