// Package conflict independently checks a schedule for per-assignee
// overlaps.
//
// The detector is a diagnostic: it never feeds back into scheduling or row
// layout. A correct scheduler never produces a conflict, so any [Record]
// points at either a scheduler defect or inconsistent input data and is
// surfaced as a warning rather than corrected.
package conflict

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/Tsess/jira-planning/internal/scenario"
)

// Interval is a half-open time span [Start, End).
type Interval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Duration returns the length of the interval.
func (i Interval) Duration() time.Duration {
	return i.End.Sub(i.Start)
}

// Record is an overlap between two items of the same assignee.
type Record struct {
	Assignee string   `json:"assignee"`
	First    string   `json:"first"`
	Second   string   `json:"second"`
	Overlap  Interval `json:"overlap"`
}

// String formats the record for the warnings panel.
func (r Record) String() string {
	return fmt.Sprintf("%s: %s overlaps %s from %s to %s",
		r.Assignee, r.First, r.Second,
		r.Overlap.Start.Format(time.DateOnly), r.Overlap.End.Format(time.DateOnly))
}

// Detect reports overlapping assignments per assignee.
//
// Excluded, unscheduled and unassigned assignments are skipped. Each
// assignee's assignments are sorted by start (then end, then key) and only
// adjacent pairs are compared, which is enough because a valid schedule never
// lets a third item sit between two overlapping ones. Records are ordered by
// assignee, then by position in that assignee's timeline. The input slice is
// not modified.
func Detect(assignments []scenario.Assignment) []Record {
	byAssignee := make(map[string][]scenario.Assignment)
	for _, a := range assignments {
		if a.Excluded || a.Unscheduled || a.Assignee == "" {
			continue
		}
		byAssignee[a.Assignee] = append(byAssignee[a.Assignee], a)
	}

	assignees := make([]string, 0, len(byAssignee))
	for name := range byAssignee {
		assignees = append(assignees, name)
	}
	slices.Sort(assignees)

	var records []Record
	for _, name := range assignees {
		timeline := byAssignee[name]
		slices.SortFunc(timeline, compareStart)
		for i := 0; i+1 < len(timeline); i++ {
			cur, next := timeline[i], timeline[i+1]
			if !cur.End.After(next.Start) {
				continue
			}
			end := cur.End
			if next.End.Before(end) {
				end = next.End
			}
			records = append(records, Record{
				Assignee: name,
				First:    cur.Key,
				Second:   next.Key,
				Overlap:  Interval{Start: next.Start, End: end},
			})
		}
	}
	return records
}

func compareStart(a, b scenario.Assignment) int {
	if c := a.Start.Compare(b.Start); c != 0 {
		return c
	}
	if c := a.End.Compare(b.End); c != 0 {
		return c
	}
	return strings.Compare(a.Key, b.Key)
}
