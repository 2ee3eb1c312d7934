// Package render formats scheduling results for the terminal: a per-team
// timeline of packed rows, a flat assignment table, the warnings panel and
// a short analysis summary.
package render

import (
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/Tsess/jira-planning/internal/planner"
	"github.com/Tsess/jira-planning/internal/scenario"
	"github.com/Tsess/jira-planning/internal/util"
)

// DefaultWidth is used when the output is not a terminal.
const DefaultWidth = 100

const (
	labelWidth = 14
	minBarCols = 10
)

// TerminalWidth returns the width of stdout, or DefaultWidth when stdout
// is not a terminal.
func TerminalWidth() int {
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	return DefaultWidth
}

// Options controls timeline rendering.
type Options struct {
	// Width is the total line width. Zero means DefaultWidth.
	Width int

	// Filter limits the teams shown. Nil shows every team.
	Filter *TeamFilter

	// HideExcluded drops the excluded row pool.
	HideExcluded bool
}

func (o Options) width() int {
	if o.Width <= 0 {
		return DefaultWidth
	}
	return max(o.Width, labelWidth+1+minBarCols)
}

// Timeline draws every selected team as a block of rows. Each row is one
// assignee's track; items are bars scaled to the span of the visible
// schedule and labeled with their key.
func Timeline(r *planner.Result, opts Options) string {
	teams := visibleTeams(r, opts.Filter)
	if len(teams) == 0 {
		return Muted.Render("no teams to show")
	}

	byKey := make(map[string]scenario.Assignment, len(r.Assignments))
	for _, a := range r.Assignments {
		byKey[a.Key] = a
	}
	late := make(map[string]bool, len(r.Analysis.LateItems))
	for _, k := range r.Analysis.LateItems {
		late[k] = true
	}

	scale, ok := newTimeScale(teams, byKey, opts)
	var b strings.Builder
	if ok {
		b.WriteString(scale.axis())
		b.WriteByte('\n')
	}

	for i, team := range teams {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(TeamHeader.Render(team.Team))
		b.WriteByte('\n')
		if ok {
			for _, row := range team.Rows {
				b.WriteString(scale.row(rowLabel(row.Assignee, false), row, byKey, late))
				b.WriteByte('\n')
			}
			if !opts.HideExcluded {
				for _, row := range team.ExcludedRows {
					b.WriteString(scale.row(rowLabel(row.Assignee, true), row, byKey, late))
					b.WriteByte('\n')
				}
			}
		}
		if len(team.Unplaced) > 0 {
			b.WriteString(Muted.Render(util.FitANSI("unplaced", labelWidth) + " " + util.JoinLimited(team.Unplaced, 8)))
			b.WriteByte('\n')
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func visibleTeams(r *planner.Result, filter *TeamFilter) []scenario.TeamLanes {
	if r == nil || r.Layout == nil {
		return nil
	}
	var out []scenario.TeamLanes
	for _, t := range r.Layout.Teams {
		if filter.Match(t.Team) {
			out = append(out, t)
		}
	}
	return out
}

func rowLabel(assignee string, excluded bool) string {
	if assignee == "" {
		assignee = "unassigned"
	}
	if excluded {
		return "~" + assignee
	}
	return assignee
}

// timeScale maps instants onto bar columns.
type timeScale struct {
	start time.Time
	span  time.Duration
	cols  int
}

func newTimeScale(teams []scenario.TeamLanes, byKey map[string]scenario.Assignment, opts Options) (timeScale, bool) {
	var start, end time.Time
	seen := false
	visit := func(rows []scenario.Row) {
		for _, row := range rows {
			for _, k := range row.Items {
				a := byKey[k]
				if !seen || a.Start.Before(start) {
					start = a.Start
				}
				if !seen || a.End.After(end) {
					end = a.End
				}
				seen = true
			}
		}
	}
	for _, t := range teams {
		visit(t.Rows)
		if !opts.HideExcluded {
			visit(t.ExcludedRows)
		}
	}
	if !seen {
		return timeScale{}, false
	}
	span := end.Sub(start)
	if span <= 0 {
		span = 7 * 24 * time.Hour
	}
	return timeScale{start: start, span: span, cols: opts.width() - labelWidth - 1}, true
}

func (s timeScale) col(t time.Time) int {
	c := int(float64(t.Sub(s.start)) / float64(s.span) * float64(s.cols))
	return min(max(c, 0), s.cols)
}

// axis prints the first and last date above the bars.
func (s timeScale) axis() string {
	first := util.FormatDate(s.start)
	last := util.FormatDate(s.start.Add(s.span))
	gap := max(1, s.cols-len(first)-len(last))
	return Muted.Render(strings.Repeat(" ", labelWidth+1) + first + strings.Repeat(" ", gap) + last)
}

// row draws the bars of one row. Cells are owned by at most one item;
// runs of cells with the same owner are styled together.
func (s timeScale) row(label string, row scenario.Row, byKey map[string]scenario.Assignment, late map[string]bool) string {
	cells := make([]rune, s.cols)
	owner := make([]int, s.cols)
	for i := range cells {
		cells[i] = ' '
		owner[i] = -1
	}

	styles := make([]lipgloss.Style, len(row.Items))
	for i, key := range row.Items {
		a := byKey[key]
		styles[i] = barStyle(a, i, late[key])

		c0 := min(s.col(a.Start), s.cols-1)
		c1 := max(s.col(a.End), c0+1)
		text := []rune(key)
		for c := c0; c < c1 && c < s.cols; c++ {
			owner[c] = i
			if j := c - c0; j < len(text) {
				cells[c] = text[j]
			} else {
				cells[c] = ' '
			}
		}
	}

	var b strings.Builder
	b.WriteString(RowLabel.Render(util.FitANSI(label, labelWidth)))
	b.WriteByte(' ')
	for i := 0; i < s.cols; {
		j := i
		for j < s.cols && owner[j] == owner[i] {
			j++
		}
		run := string(cells[i:j])
		if owner[i] < 0 {
			b.WriteString(run)
		} else {
			b.WriteString(styles[owner[i]].Render(run))
		}
		i = j
	}
	return b.String()
}

func barStyle(a scenario.Assignment, pos int, late bool) lipgloss.Style {
	switch {
	case a.Excluded:
		return barExcluded
	case late:
		return barLate
	case a.InCycle:
		return barCycle
	case a.Reason == scenario.ReasonDone:
		return barDone
	case pos%2 == 1:
		return barAlternate
	default:
		return barScheduled
	}
}
