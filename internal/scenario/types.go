package scenario

import (
	"strings"
	"time"
)

// DefaultTeam is the team name used for items that carry no team.
const DefaultTeam = "Unassigned"

// DefaultPointDuration is how long one story point takes at full capacity.
// Two weeks per point matches the planning sheets the tool replaced.
const DefaultPointDuration = 14 * 24 * time.Hour

// RawLink is a relation record exactly as the tracker reported it. The
// direction of Type depends on which side of the link the record was read
// from; only [NormalizeLinks] interprets it.
type RawLink struct {
	Type string `json:"type" yaml:"type"`
	Key  string `json:"key" yaml:"key"`
}

// WorkItem is one tracker issue in the snapshot handed to a pass.
type WorkItem struct {
	Key      string `json:"key" yaml:"key"`
	Title    string `json:"title,omitempty" yaml:"title,omitempty"`
	Assignee string `json:"assignee,omitempty" yaml:"assignee,omitempty"`
	Team     string `json:"team,omitempty" yaml:"team,omitempty"`
	Status   string `json:"status,omitempty" yaml:"status,omitempty"`
	Epic     string `json:"epic,omitempty" yaml:"epic,omitempty"`

	// Estimate is the size in story points. Nil means the item was never
	// estimated.
	Estimate *float64 `json:"estimate,omitempty" yaml:"estimate,omitempty"`

	// Priority is the tracker priority name ("High", "Blocker", ...).
	Priority string `json:"priority,omitempty" yaml:"priority,omitempty"`

	// Order is an explicit rank. Lower runs first; zero means unranked.
	Order int `json:"order,omitempty" yaml:"order,omitempty"`

	// DueDate marks the item late when its scheduled end falls after it.
	DueDate *time.Time `json:"due_date,omitempty" yaml:"due_date,omitempty"`

	// Excluded marks capacity noise: the item is laid out in its own row
	// pool but never takes part in precedence or overlap reasoning.
	Excluded bool `json:"excluded,omitempty" yaml:"excluded,omitempty"`

	Links []RawLink `json:"links,omitempty" yaml:"links,omitempty"`
}

// TeamName returns the item's team, or [DefaultTeam] when it has none.
func (w WorkItem) TeamName() string {
	if t := strings.TrimSpace(w.Team); t != "" {
		return t
	}
	return DefaultTeam
}

// Edge is a canonical precedence constraint: Dependent cannot start before
// Prerequisite ends.
type Edge struct {
	Prerequisite string `json:"prerequisite"`
	Dependent    string `json:"dependent"`
}

// StatusCategory buckets free-form tracker statuses.
type StatusCategory int

const (
	StatusTodo StatusCategory = iota
	StatusInProgress
	StatusDone
)

// CategorizeStatus maps a tracker status name to its category. Unknown
// statuses are treated as not started.
func CategorizeStatus(status string) StatusCategory {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "done", "closed", "resolved", "killed", "cancelled", "canceled":
		return StatusDone
	case "in progress", "in review", "in dev", "in development", "in qa":
		return StatusInProgress
	default:
		return StatusTodo
	}
}

// Reason explains how an assignment was produced.
type Reason string

const (
	ReasonScheduled            Reason = "scheduled"
	ReasonDone                 Reason = "already_done"
	ReasonInProgress           Reason = "in_progress"
	ReasonMissingEstimate      Reason = "missing_estimate"
	ReasonBlockedByUnscheduled Reason = "blocked_by_unscheduled"
	ReasonExcluded             Reason = "excluded"
)

// Bound names the constraint that fixed an assignment's start time.
type Bound string

const (
	BoundBaseline   Bound = "baseline"
	BoundDependency Bound = "dependency"
	BoundAssignee   Bound = "assignee"
	BoundCapacity   Bound = "capacity"
)

// Assignment is the scheduler's placement of one item. Start and End are
// zero for unscheduled assignments.
type Assignment struct {
	Key         string        `json:"key"`
	Assignee    string        `json:"assignee,omitempty"`
	Team        string        `json:"team"`
	Start       time.Time     `json:"start"`
	End         time.Time     `json:"end"`
	Duration    time.Duration `json:"duration"`
	Unscheduled bool          `json:"unscheduled,omitempty"`
	Excluded    bool          `json:"excluded,omitempty"`
	InCycle     bool          `json:"in_cycle,omitempty"`
	Reason      Reason        `json:"reason"`
	BoundBy     Bound         `json:"bound_by,omitempty"`
	BlockedBy   []string      `json:"blocked_by,omitempty"`
}

// Placed reports whether the assignment occupies time on the timeline.
func (a Assignment) Placed() bool {
	return !a.Unscheduled
}

// UnscheduledPolicy decides how an item without a date affects the items
// that depend on it.
type UnscheduledPolicy string

const (
	// PolicyCompleteAtBaseline treats an unscheduled prerequisite as
	// finished at the baseline, so its dependents are not held back.
	PolicyCompleteAtBaseline UnscheduledPolicy = "complete"

	// PolicyBlockUntilResolved leaves every transitive dependent of an
	// unscheduled item unscheduled as well.
	PolicyBlockUntilResolved UnscheduledPolicy = "block"
)

// LaneMode decides what a capacity lane stands for.
type LaneMode string

const (
	// LaneModeTeam limits concurrent items per team with TeamLanes.
	LaneModeTeam LaneMode = "team"

	// LaneModeAssignee treats every assignee as their own single lane, which
	// assignee serialization already enforces. TeamLanes is ignored and the
	// unassigned items of a team share one lane.
	LaneModeAssignee LaneMode = "assignee"
)

// Options carries the scenario knobs for one pass.
type Options struct {
	// Baseline is the earliest start for any item.
	Baseline time.Time

	// PointDuration converts story points into time. Zero means
	// [DefaultPointDuration].
	PointDuration time.Duration

	// TeamLanes limits how many items of a team may run at once. Teams
	// missing from the map, or with a limit <= 0, are unlimited.
	TeamLanes map[string]int

	// CapacityFactors scales durations per team; 0.5 doubles them. Missing
	// teams use 1.
	CapacityFactors map[string]float64

	// Policy defaults to [PolicyCompleteAtBaseline].
	Policy UnscheduledPolicy

	// LaneMode defaults to [LaneModeTeam].
	LaneMode LaneMode
}

func (o Options) pointDuration() time.Duration {
	if o.PointDuration <= 0 {
		return DefaultPointDuration
	}
	return o.PointDuration
}

func (o Options) policy() UnscheduledPolicy {
	if o.Policy == PolicyBlockUntilResolved {
		return PolicyBlockUntilResolved
	}
	return PolicyCompleteAtBaseline
}

// laneLimit is the number of concurrent lanes an item draws from, or zero
// when it is not lane limited.
func (o Options) laneLimit(team, assignee string) int {
	if o.LaneMode == LaneModeAssignee {
		if assignee != "" {
			return 0
		}
		return 1
	}
	return o.TeamLanes[team]
}

func (o Options) capacityFactor(team string) float64 {
	f, ok := o.CapacityFactors[team]
	if !ok || f <= 0 {
		return 1
	}
	return max(0.1, f)
}

// Severity ranks an anomaly for the warnings panel.
type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// AnomalyKind classifies non-fatal problems found during a pass.
type AnomalyKind string

const (
	AnomalyMalformedLink AnomalyKind = "malformed_link"
	AnomalyUnknownType   AnomalyKind = "unknown_link_type"
	AnomalyUnknownItem   AnomalyKind = "unknown_item"
	AnomalySelfLink      AnomalyKind = "self_link"
	AnomalyCycle         AnomalyKind = "cycle"
	AnomalyUnscheduled   AnomalyKind = "unscheduled"
	AnomalyDuplicateKey  AnomalyKind = "duplicate_key"
	AnomalyMissingKey    AnomalyKind = "missing_key"
)

// Anomaly is a non-fatal issue recorded next to a best-effort result.
type Anomaly struct {
	Kind     AnomalyKind `json:"kind"`
	Severity Severity    `json:"severity"`
	Items    []string    `json:"items,omitempty"`
	Edge     *Edge       `json:"edge,omitempty"`
	Message  string      `json:"message"`
}
