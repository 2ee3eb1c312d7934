package scenario

import (
	"math"
	"time"
)

// LaneCount is the number of concurrent lanes a team gets from its head
// count and per-person WIP limit. Both are floored at one.
func LaneCount(teamSize, wipLimit int) int {
	return max(1, teamSize) * max(1, wipLimit)
}

// CapacityFactor is the share of a planning window a team can actually work:
// the window minus vacation, further reduced by the sick-leave buffer. The
// result is floored at 0.1 so durations stay finite.
func CapacityFactor(windowWeeks, vacationWeeks, sickLeaveBuffer float64) float64 {
	windowWeeks = math.Max(0.1, windowWeeks)
	effective := math.Max(0.1, windowWeeks-math.Max(0, vacationWeeks))
	factor := math.Max(0.1, effective/windowWeeks)
	return factor * math.Max(0.1, 1-sickLeaveBuffer)
}

// itemDuration converts a story point estimate into time for team.
func itemDuration(points float64, opts Options, team string) time.Duration {
	d := float64(opts.pointDuration()) * points / opts.capacityFactor(team)
	return time.Duration(d).Round(time.Minute)
}

// lanePool tracks when each of a team's concurrent lanes frees up.
type lanePool struct {
	frontier []time.Time
}

func newLanePool(lanes int, baseline time.Time) *lanePool {
	p := &lanePool{frontier: make([]time.Time, max(1, lanes))}
	for i := range p.frontier {
		p.frontier[i] = baseline
	}
	return p
}

// earliest returns the lane that frees up first, lowest index on ties.
func (p *lanePool) earliest() int {
	best := 0
	for i := 1; i < len(p.frontier); i++ {
		if p.frontier[i].Before(p.frontier[best]) {
			best = i
		}
	}
	return best
}
