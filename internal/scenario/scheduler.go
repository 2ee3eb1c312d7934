package scenario

import (
	"fmt"
	"math"
	"slices"
	"strings"
	"time"
)

// priorityRanks orders tracker priority names; lower runs first.
var priorityRanks = map[string]int{
	"blocker":  0,
	"highest":  0,
	"critical": 1,
	"high":     2,
	"major":    3,
	"medium":   3,
	"minor":    4,
	"low":      5,
	"trivial":  6,
	"lowest":   6,
}

const unrankedPriority = 999

// PriorityRank returns the rank of a tracker priority name. Unknown or empty
// priorities sort after every known one.
func PriorityRank(priority string) int {
	if r, ok := priorityRanks[strings.ToLower(strings.TrimSpace(priority))]; ok {
		return r
	}
	return unrankedPriority
}

// ScheduleResult is the output of [Schedule].
type ScheduleResult struct {
	// Assignments holds one entry per scheduled item, sorted by key.
	Assignments []Assignment

	// Edges are the precedence edges that were honored, after cycle breaking.
	Edges []Edge

	// Dropped are the edges removed to break cycles.
	Dropped []Edge

	Anomalies []Anomaly

	// CapacityDelays counts, per team, the items whose start was pushed back
	// by the team lane limit.
	CapacityDelays map[string]int
}

// scheduler holds the bookkeeping of a single Schedule call.
type scheduler struct {
	opts      Options
	items     map[string]WorkItem
	graph     *depGraph
	cursors   map[string]time.Time
	lanes     map[string]*lanePool
	placed    map[string]Assignment
	inCycle   map[string]bool
	delays    map[string]int
	anomalies []Anomaly
}

// Schedule places every item on the timeline.
//
// Items are visited in topological order of edges; among items that are
// ready at the same time, done items come first, then in-progress ones, then
// by explicit Order, tracker priority and key. Each item starts at the
// latest of the baseline, the end of its prerequisites, its assignee's
// previous item and, when the team has a lane limit, the earliest free lane.
//
// Excluded items and edges touching items outside the set are ignored.
// Cycles are broken by dropping one edge per cycle; see breakCycles.
func Schedule(items []WorkItem, edges []Edge, opts Options) ScheduleResult {
	s := &scheduler{
		opts:    opts,
		items:   make(map[string]WorkItem, len(items)),
		cursors: make(map[string]time.Time),
		lanes:   make(map[string]*lanePool),
		placed:  make(map[string]Assignment, len(items)),
		inCycle: make(map[string]bool),
		delays:  make(map[string]int),
	}

	keys := make([]string, 0, len(items))
	for _, item := range items {
		if item.Excluded || item.Key == "" {
			continue
		}
		if _, dup := s.items[item.Key]; dup {
			continue
		}
		s.items[item.Key] = item
		keys = append(keys, item.Key)
	}

	s.graph = newDepGraph(keys, edges)

	var dropped []Edge
	for _, b := range s.graph.breakCycles() {
		dropped = append(dropped, b.Dropped)
		for _, k := range b.Members {
			s.inCycle[k] = true
		}
		edge := b.Dropped
		s.anomalies = append(s.anomalies, Anomaly{
			Kind:     AnomalyCycle,
			Severity: SeverityWarning,
			Items:    b.Members,
			Edge:     &edge,
			Message: fmt.Sprintf("dependency cycle among %s; ignoring %s → %s",
				strings.Join(b.Members, ", "), edge.Prerequisite, edge.Dependent),
		})
	}

	for _, key := range s.graph.topoOrder(s.runsBefore) {
		s.place(s.items[key])
	}

	out := make([]Assignment, 0, len(s.placed))
	for _, key := range s.graph.nodes {
		out = append(out, s.placed[key])
	}

	return ScheduleResult{
		Assignments:    out,
		Edges:          s.graph.edges(),
		Dropped:        dropped,
		Anomalies:      s.anomalies,
		CapacityDelays: s.delays,
	}
}

// runsBefore is the tie-break among ready items.
func (s *scheduler) runsBefore(a, b string) bool {
	ia, ib := s.items[a], s.items[b]
	if sa, sb := statusRank(ia), statusRank(ib); sa != sb {
		return sa < sb
	}
	if oa, ob := orderRank(ia), orderRank(ib); oa != ob {
		return oa < ob
	}
	if pa, pb := PriorityRank(ia.Priority), PriorityRank(ib.Priority); pa != pb {
		return pa < pb
	}
	return a < b
}

func statusRank(item WorkItem) int {
	switch CategorizeStatus(item.Status) {
	case StatusDone:
		return 0
	case StatusInProgress:
		return 1
	default:
		return 2
	}
}

func orderRank(item WorkItem) int {
	if item.Order > 0 {
		return item.Order
	}
	return math.MaxInt
}

func (s *scheduler) place(item WorkItem) {
	team := item.TeamName()
	prereqs := slices.Clone(s.graph.pred[item.Key])
	a := Assignment{
		Key:       item.Key,
		Assignee:  item.Assignee,
		Team:      team,
		InCycle:   s.inCycle[item.Key],
		BlockedBy: prereqs,
	}

	if s.opts.policy() == PolicyBlockUntilResolved {
		var waiting []string
		for _, p := range prereqs {
			if s.placed[p].Unscheduled {
				waiting = append(waiting, p)
			}
		}
		if len(waiting) > 0 {
			s.unschedule(&a, ReasonBlockedByUnscheduled,
				fmt.Sprintf("%s waits on unscheduled %s", item.Key, strings.Join(waiting, ", ")))
			return
		}
	}

	duration, reason, ok := s.duration(item, team)
	if !ok {
		s.unschedule(&a, ReasonMissingEstimate, fmt.Sprintf("%s has no usable estimate", item.Key))
		return
	}
	a.Duration = duration
	a.Reason = reason

	start, bound := s.opts.Baseline, BoundBaseline
	for _, p := range prereqs {
		if pa := s.placed[p]; pa.Placed() && pa.End.After(start) {
			start, bound = pa.End, BoundDependency
		}
	}
	if item.Assignee != "" {
		if cur, ok := s.cursors[item.Assignee]; ok && cur.After(start) {
			start, bound = cur, BoundAssignee
		}
	}

	if limit := s.opts.laneLimit(team, item.Assignee); limit > 0 && duration > 0 {
		pool, ok := s.lanes[team]
		if !ok {
			pool = newLanePool(limit, s.opts.Baseline)
			s.lanes[team] = pool
		}
		lane := pool.earliest()
		if pool.frontier[lane].After(start) {
			start, bound = pool.frontier[lane], BoundCapacity
			s.delays[team]++
		}
		pool.frontier[lane] = start.Add(duration)
	}

	a.Start = start
	a.End = start.Add(duration)
	a.BoundBy = bound
	if item.Assignee != "" {
		s.cursors[item.Assignee] = a.End
	}
	s.placed[item.Key] = a
}

// duration returns the time an item still needs. ok is false when the item
// cannot be placed for lack of an estimate.
func (s *scheduler) duration(item WorkItem, team string) (time.Duration, Reason, bool) {
	switch CategorizeStatus(item.Status) {
	case StatusDone:
		return 0, ReasonDone, true
	case StatusInProgress:
		if item.Estimate == nil || *item.Estimate <= 0 {
			return 0, "", false
		}
		return itemDuration(*item.Estimate, s.opts, team) / 2, ReasonInProgress, true
	default:
		if item.Estimate == nil || *item.Estimate <= 0 {
			return 0, "", false
		}
		return itemDuration(*item.Estimate, s.opts, team), ReasonScheduled, true
	}
}

func (s *scheduler) unschedule(a *Assignment, reason Reason, message string) {
	a.Unscheduled = true
	a.Reason = reason
	s.placed[a.Key] = *a
	s.anomalies = append(s.anomalies, Anomaly{
		Kind:     AnomalyUnscheduled,
		Severity: SeverityInfo,
		Items:    []string{a.Key},
		Message:  message,
	})
}

// PlaceExcluded lays excluded items on the timeline for display only. Each
// starts at the baseline; none touches cursors, lanes or edges.
func PlaceExcluded(items []WorkItem, opts Options) []Assignment {
	var out []Assignment
	for _, item := range items {
		if !item.Excluded || item.Key == "" {
			continue
		}
		team := item.TeamName()
		a := Assignment{
			Key:      item.Key,
			Assignee: item.Assignee,
			Team:     team,
			Excluded: true,
			Reason:   ReasonExcluded,
		}
		if item.Estimate == nil || *item.Estimate <= 0 {
			a.Unscheduled = true
		} else {
			a.Duration = itemDuration(*item.Estimate, opts, team)
			a.Start = opts.Baseline
			a.End = opts.Baseline.Add(a.Duration)
			a.BoundBy = BoundBaseline
		}
		out = append(out, a)
	}
	slices.SortFunc(out, func(x, y Assignment) int { return strings.Compare(x.Key, y.Key) })
	return out
}
