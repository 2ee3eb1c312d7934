// Package planner runs one complete scheduling pass over a snapshot of work
// items.
//
// A pass normalizes links, schedules included items, lays excluded items out
// in their own pool, assigns display rows, re-checks the schedule for
// per-assignee overlaps and derives the critical path:
//
//	items ──▶ scenario.NormalizeLinks ──▶ scenario.Schedule ──┬──▶ scenario.AssignLanes ──▶ Layout
//	                                                          └──▶ conflict.Detect ──────▶ Conflicts
//
// [Run] is a pure function of its [Input]. [Planner] wraps it with pass
// numbering and structured logging for long-lived hosts such as the watch
// command; logging is the only side effect it adds.
//
// # Usage
//
//	p := planner.New(planner.WithLogger(logger))
//	result := p.Plan(planner.Input{
//	    Items:      items,
//	    Options:    scenario.Options{Baseline: start},
//	    QuarterEnd: end,
//	})
//	for _, w := range result.Warnings() {
//	    fmt.Println(w)
//	}
package planner
