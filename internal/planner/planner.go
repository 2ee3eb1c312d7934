package planner

import (
	"fmt"
	"slices"
	"strings"
	"sync/atomic"
	"time"

	"github.com/Tsess/jira-planning/internal/conflict"
	"github.com/Tsess/jira-planning/internal/logging"
	"github.com/Tsess/jira-planning/internal/scenario"
)

// Input is the snapshot handed to one pass.
type Input struct {
	Items   []scenario.WorkItem
	Options scenario.Options

	// QuarterEnd marks items ending after it as late. Zero disables the check.
	QuarterEnd time.Time
}

// Result is everything a pass produces.
type Result struct {
	// Assignments covers every item with a key, included and excluded,
	// sorted by key.
	Assignments []scenario.Assignment `json:"assignments"`

	// Edges are the precedence edges the schedule honors.
	Edges []scenario.Edge `json:"edges"`

	// DroppedEdges were removed to break dependency cycles.
	DroppedEdges []scenario.Edge `json:"dropped_edges,omitempty"`

	Layout    *scenario.Layout   `json:"layout"`
	Conflicts []conflict.Record  `json:"conflicts,omitempty"`
	Anomalies []scenario.Anomaly `json:"anomalies,omitempty"`
	Analysis  scenario.Analysis  `json:"analysis"`
}

// Assignment returns the assignment for key.
func (r *Result) Assignment(key string) (scenario.Assignment, bool) {
	i, found := slices.BinarySearchFunc(r.Assignments, key, func(a scenario.Assignment, k string) int {
		return strings.Compare(a.Key, k)
	})
	if !found {
		return scenario.Assignment{}, false
	}
	return r.Assignments[i], true
}

// Warnings returns the lines for the warnings panel: warning-level anomalies
// followed by overlap conflicts.
func (r *Result) Warnings() []string {
	var out []string
	for _, a := range r.Anomalies {
		if a.Severity == scenario.SeverityWarning {
			out = append(out, a.Message)
		}
	}
	for _, c := range r.Conflicts {
		out = append(out, "overlap: "+c.String())
	}
	return out
}

// Run executes one pass. It never fails: problems in the input come back as
// anomalies next to a best-effort schedule. The input is copied before use.
func Run(in Input) *Result {
	items, anomalies := snapshotItems(in.Items)

	edges, linkAnomalies := scenario.NormalizeLinks(items)
	anomalies = append(anomalies, linkAnomalies...)

	sched := scenario.Schedule(items, edges, in.Options)
	anomalies = append(anomalies, sched.Anomalies...)

	assignments := slices.Concat(sched.Assignments, scenario.PlaceExcluded(items, in.Options))
	slices.SortFunc(assignments, func(a, b scenario.Assignment) int {
		return strings.Compare(a.Key, b.Key)
	})

	return &Result{
		Assignments:  assignments,
		Edges:        sched.Edges,
		DroppedEdges: sched.Dropped,
		Layout:       scenario.AssignLanes(assignments),
		Conflicts:    conflict.Detect(assignments),
		Anomalies:    anomalies,
		Analysis:     scenario.Analyze(items, sched, in.QuarterEnd),
	}
}

// snapshotItems deep-copies the items, dropping those without a key and
// repeated keys after their first occurrence.
func snapshotItems(items []scenario.WorkItem) ([]scenario.WorkItem, []scenario.Anomaly) {
	out := make([]scenario.WorkItem, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	var anomalies []scenario.Anomaly
	for i, item := range items {
		item.Key = strings.TrimSpace(item.Key)
		if item.Key == "" {
			anomalies = append(anomalies, scenario.Anomaly{
				Kind:     scenario.AnomalyMissingKey,
				Severity: scenario.SeverityWarning,
				Message:  fmt.Sprintf("item #%d (%q) has no key and was skipped", i, item.Title),
			})
			continue
		}
		if _, dup := seen[item.Key]; dup {
			anomalies = append(anomalies, scenario.Anomaly{
				Kind:     scenario.AnomalyDuplicateKey,
				Severity: scenario.SeverityWarning,
				Items:    []string{item.Key},
				Message:  fmt.Sprintf("%s appears more than once; keeping the first", item.Key),
			})
			continue
		}
		seen[item.Key] = struct{}{}

		item.Links = slices.Clone(item.Links)
		if item.Estimate != nil {
			v := *item.Estimate
			item.Estimate = &v
		}
		if item.DueDate != nil {
			d := *item.DueDate
			item.DueDate = &d
		}
		out = append(out, item)
	}
	return out, anomalies
}

// Planner runs passes and logs their outcome.
type Planner struct {
	logger *logging.Logger
	passes atomic.Int64
}

// New creates a Planner. Without WithLogger it logs nothing.
func New(opts ...Option) *Planner {
	p := &Planner{logger: logging.NopLogger()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Plan runs a pass and logs a summary, every anomaly and every conflict.
func (p *Planner) Plan(in Input) *Result {
	pass := p.passes.Add(1)
	log := p.logger.WithPass(pass)

	started := time.Now()
	result := Run(in)

	for _, a := range result.Anomalies {
		if a.Severity == scenario.SeverityWarning {
			log.Warn("anomaly", "kind", string(a.Kind), "items", a.Items, "message", a.Message)
		} else {
			log.Debug("anomaly", "kind", string(a.Kind), "items", a.Items, "message", a.Message)
		}
	}
	for _, c := range result.Conflicts {
		log.Error("schedule overlap",
			"assignee", c.Assignee,
			"first", c.First,
			"second", c.Second,
			"overlap", c.Overlap.Duration().String(),
		)
	}

	for _, t := range result.Layout.Teams {
		log.WithTeam(t.Team).Debug("team layout",
			"rows", len(t.Rows),
			"excluded_rows", len(t.ExcludedRows),
			"unplaced", len(t.Unplaced),
		)
	}

	unscheduled := 0
	for _, a := range result.Assignments {
		if a.Unscheduled {
			unscheduled++
		}
	}
	log.Info("scheduling pass complete",
		"items", len(in.Items),
		"edges", len(result.Edges),
		"dropped_edges", len(result.DroppedEdges),
		"unscheduled", unscheduled,
		"anomalies", len(result.Anomalies),
		"conflicts", len(result.Conflicts),
		"teams", len(result.Layout.Teams),
		"duration_ms", time.Since(started).Milliseconds(),
	)
	return result
}
