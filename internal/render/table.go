package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/Tsess/jira-planning/internal/planner"
	"github.com/Tsess/jira-planning/internal/scenario"
	"github.com/Tsess/jira-planning/internal/util"
)

var tableHeaders = []string{"KEY", "TEAM", "ASSIGNEE", "START", "END", "DURATION", "REASON", "BOUND"}

// Table lists every assignment of the selected teams, sorted by key.
// Unscheduled items show "-" for their dates and the blockers they wait on
// in the BOUND column.
func Table(r *planner.Result, filter *TeamFilter) string {
	var rows [][]string
	var excluded []bool
	if r != nil {
		for _, a := range r.Assignments {
			if !filter.Match(a.Team) {
				continue
			}
			rows = append(rows, assignmentRow(a))
			excluded = append(excluded, a.Excluded)
		}
	}
	if len(rows) == 0 {
		return Muted.Render("no assignments to show")
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(BorderColor)).
		Headers(tableHeaders...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return TableHeader
			case row >= 0 && row < len(excluded) && excluded[row]:
				return TableCell.Foreground(MutedColor)
			default:
				return TableCell
			}
		})
	return t.Render()
}

func assignmentRow(a scenario.Assignment) []string {
	assignee := a.Assignee
	if assignee == "" {
		assignee = "-"
	}
	start, end, duration := "-", "-", "-"
	if a.Placed() {
		start = util.FormatDate(a.Start)
		end = util.FormatDate(a.End)
		duration = util.FormatWeeks(a.Duration)
	}
	bound := string(a.BoundBy)
	if len(a.BlockedBy) > 0 {
		bound = "blocked by " + util.JoinLimited(a.BlockedBy, 3)
	}
	if bound == "" {
		bound = "-"
	}
	reason := string(a.Reason)
	if a.InCycle {
		reason += " (cycle)"
	}
	return []string{a.Key, a.Team, assignee, start, end, duration, strings.ReplaceAll(reason, "_", " "), bound}
}
