package scenario

import (
	"slices"
	"strings"
	"time"
)

// Analysis summarizes a schedule for the planning dashboard.
type Analysis struct {
	// CriticalPath is the chain of prerequisites that ends at the latest
	// finishing item, in execution order.
	CriticalPath []string `json:"critical_path,omitempty"`

	// LateItems end after the quarter end or after their own due date.
	LateItems []string `json:"late_items,omitempty"`

	// BottleneckTeams had at least one item delayed by their lane limit,
	// most delayed first.
	BottleneckTeams []string `json:"bottleneck_teams,omitempty"`

	// Finish is the end of the latest placed item.
	Finish time.Time `json:"finish"`
}

// Analyze derives the critical path, late items and bottleneck teams from a
// schedule. A zero quarterEnd disables the quarter check.
func Analyze(items []WorkItem, sched ScheduleResult, quarterEnd time.Time) Analysis {
	placed := make(map[string]Assignment, len(sched.Assignments))
	for _, a := range sched.Assignments {
		if a.Placed() {
			placed[a.Key] = a
		}
	}

	var out Analysis
	out.CriticalPath, out.Finish = criticalPath(sched.Assignments, placed)

	due := make(map[string]time.Time)
	for _, item := range items {
		if item.DueDate != nil {
			due[item.Key] = *item.DueDate
		}
	}
	for _, a := range sched.Assignments {
		if !a.Placed() {
			continue
		}
		late := !quarterEnd.IsZero() && a.End.After(quarterEnd)
		if d, ok := due[a.Key]; ok && a.End.After(d) {
			late = true
		}
		if late {
			out.LateItems = append(out.LateItems, a.Key)
		}
	}

	for team, n := range sched.CapacityDelays {
		if n > 0 {
			out.BottleneckTeams = append(out.BottleneckTeams, team)
		}
	}
	slices.SortFunc(out.BottleneckTeams, func(a, b string) int {
		if da, db := sched.CapacityDelays[a], sched.CapacityDelays[b]; da != db {
			return db - da
		}
		return strings.Compare(a, b)
	})
	return out
}

func criticalPath(assignments []Assignment, placed map[string]Assignment) ([]string, time.Time) {
	var last *Assignment
	for i := range assignments {
		a := &assignments[i]
		if !a.Placed() {
			continue
		}
		if last == nil || a.End.After(last.End) {
			last = a
		}
	}
	if last == nil {
		return nil, time.Time{}
	}

	path := []string{last.Key}
	cur := *last
	for {
		var driver *Assignment
		for _, p := range cur.BlockedBy {
			pa, ok := placed[p]
			if !ok {
				continue
			}
			if driver == nil || pa.End.After(driver.End) {
				driver = &pa
			}
		}
		if driver == nil {
			break
		}
		path = append(path, driver.Key)
		cur = *driver
	}
	slices.Reverse(path)
	return path, last.End
}
