// Package scenario computes what-if delivery schedules for a snapshot of
// tracker work items.
//
// A scheduling pass runs three stages, each depending only on the ones
// before it:
//
//   - [NormalizeLinks] turns the tracker's asymmetric relation records into
//     canonical prerequisite → dependent [Edge] values. The relation mapping
//     table in links.go is the only place "blocks" versus "is blocked by" is
//     interpreted.
//   - [Schedule] places every included item on the timeline, honoring edges,
//     per-assignee serialization and optional per-team lane limits. Cycles
//     are broken deterministically and reported as anomalies.
//   - [AssignLanes] packs the resulting assignments into display rows so
//     that one row always shows one person's continuous timeline.
//
// Overlap verification lives in the separate conflict package so that it
// can act as an independent check on this one.
//
// # Purity
//
// Nothing in this package performs I/O, logs, or keeps state between calls.
// Identical inputs produce identical outputs, so callers may cache results
// by input value or throw away a pass that was superseded by newer data.
// Callers must not mutate the item slice while a pass is running.
//
// # Anomalies
//
// No input makes a pass fail. Malformed links, broken cycles and items that
// cannot be placed are returned as [Anomaly] values next to a best-effort
// schedule.
package scenario
