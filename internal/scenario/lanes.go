package scenario

import (
	"slices"
	"strings"
	"time"
)

// Row is one display track in a team's timeline.
type Row struct {
	Index int `json:"index"`

	// Assignee is the person who owns the row. Empty means no assigned item
	// has claimed it; such rows hold only unassigned items.
	Assignee string `json:"assignee,omitempty"`

	// Items are the keys placed on the row, in start order.
	Items []string `json:"items"`

	frontier time.Time
}

// TeamLanes is the row layout of one team.
type TeamLanes struct {
	Team string `json:"team"`
	Rows []Row  `json:"rows"`

	// ExcludedRows is the separate pool for excluded items. Its indices are
	// independent of Rows.
	ExcludedRows []Row `json:"excluded_rows,omitempty"`

	// Unplaced lists unscheduled items, sorted by key. They have no extent
	// on the timeline and therefore no row.
	Unplaced []string `json:"unplaced,omitempty"`
}

// RowRef locates an item in a [Layout].
type RowRef struct {
	Team     string
	Row      int
	Excluded bool
}

// Layout is the row assignment for every team, sorted by team name.
type Layout struct {
	Teams []TeamLanes `json:"teams"`

	index map[string]RowRef
}

// Row returns where key was placed. ok is false for unplaced or unknown items.
func (l *Layout) Row(key string) (RowRef, bool) {
	ref, ok := l.index[key]
	return ref, ok
}

// Team returns the lanes of one team.
func (l *Layout) Team(name string) (TeamLanes, bool) {
	for _, t := range l.Teams {
		if t.Team == name {
			return t, true
		}
	}
	return TeamLanes{}, false
}

// AssignLanes packs assignments into rows per team so that every row shows
// a single person's timeline.
//
// Assignments are taken in (start, key) order. An assigned item goes on the
// first row its assignee already owns that is free at its start, otherwise
// on the first free unclaimed row, which it then claims, otherwise on a new
// row. Unassigned items only ever use unclaimed rows. Excluded assignments
// are packed the same way into a separate pool; unscheduled ones are listed
// as unplaced.
func AssignLanes(assignments []Assignment) *Layout {
	byTeam := make(map[string]*teamBuckets)
	for _, a := range assignments {
		team := a.Team
		if team == "" {
			team = DefaultTeam
		}
		b, ok := byTeam[team]
		if !ok {
			b = &teamBuckets{}
			byTeam[team] = b
		}
		switch {
		case a.Unscheduled:
			b.unplaced = append(b.unplaced, a.Key)
		case a.Excluded:
			b.excluded = append(b.excluded, a)
		default:
			b.primary = append(b.primary, a)
		}
	}

	teams := make([]string, 0, len(byTeam))
	for team := range byTeam {
		teams = append(teams, team)
	}
	slices.Sort(teams)

	layout := &Layout{index: make(map[string]RowRef, len(assignments))}
	for _, team := range teams {
		b := byTeam[team]
		slices.Sort(b.unplaced)
		lanes := TeamLanes{
			Team:         team,
			Rows:         packRows(b.primary),
			ExcludedRows: packRows(b.excluded),
			Unplaced:     b.unplaced,
		}
		for _, r := range lanes.Rows {
			for _, k := range r.Items {
				layout.index[k] = RowRef{Team: team, Row: r.Index}
			}
		}
		for _, r := range lanes.ExcludedRows {
			for _, k := range r.Items {
				layout.index[k] = RowRef{Team: team, Row: r.Index, Excluded: true}
			}
		}
		layout.Teams = append(layout.Teams, lanes)
	}
	return layout
}

type teamBuckets struct {
	primary  []Assignment
	excluded []Assignment
	unplaced []string
}

func packRows(assignments []Assignment) []Row {
	sorted := slices.Clone(assignments)
	slices.SortFunc(sorted, func(a, b Assignment) int {
		if c := a.Start.Compare(b.Start); c != 0 {
			return c
		}
		return strings.Compare(a.Key, b.Key)
	})

	var rows []Row
	for _, a := range sorted {
		i := pickRow(rows, a)
		if i < 0 {
			rows = append(rows, Row{Index: len(rows), Assignee: a.Assignee})
			i = len(rows) - 1
		}
		r := &rows[i]
		r.Items = append(r.Items, a.Key)
		if a.End.After(r.frontier) {
			r.frontier = a.End
		}
		if r.Assignee == "" {
			r.Assignee = a.Assignee
		}
	}
	return rows
}

// pickRow returns the row a should go on, or -1 when a new row is needed.
func pickRow(rows []Row, a Assignment) int {
	free := func(r Row) bool { return !a.Start.Before(r.frontier) }
	if a.Assignee != "" {
		for i, r := range rows {
			if r.Assignee == a.Assignee && free(r) {
				return i
			}
		}
	}
	for i, r := range rows {
		if r.Assignee == "" && free(r) {
			return i
		}
	}
	return -1
}
