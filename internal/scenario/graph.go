package scenario

import (
	"container/heap"
	"slices"
	"strings"
)

// depGraph is the precedence graph over the items of one pass. Node and
// adjacency lists are kept sorted so every traversal is deterministic.
type depGraph struct {
	nodes []string
	succ  map[string][]string
	pred  map[string][]string
}

// newDepGraph builds a graph over keys. Edges with an endpoint outside keys
// are ignored.
func newDepGraph(keys []string, edges []Edge) *depGraph {
	g := &depGraph{
		nodes: slices.Clone(keys),
		succ:  make(map[string][]string, len(keys)),
		pred:  make(map[string][]string, len(keys)),
	}
	slices.Sort(g.nodes)
	inSet := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		inSet[k] = struct{}{}
	}
	for _, e := range edges {
		if e.Prerequisite == e.Dependent {
			continue
		}
		if _, ok := inSet[e.Prerequisite]; !ok {
			continue
		}
		if _, ok := inSet[e.Dependent]; !ok {
			continue
		}
		if slices.Contains(g.succ[e.Prerequisite], e.Dependent) {
			continue
		}
		g.succ[e.Prerequisite] = append(g.succ[e.Prerequisite], e.Dependent)
		g.pred[e.Dependent] = append(g.pred[e.Dependent], e.Prerequisite)
	}
	for _, k := range g.nodes {
		slices.Sort(g.succ[k])
		slices.Sort(g.pred[k])
	}
	return g
}

func (g *depGraph) removeEdge(e Edge) {
	g.succ[e.Prerequisite] = slices.DeleteFunc(g.succ[e.Prerequisite], func(k string) bool { return k == e.Dependent })
	g.pred[e.Dependent] = slices.DeleteFunc(g.pred[e.Dependent], func(k string) bool { return k == e.Prerequisite })
}

func (g *depGraph) edges() []Edge {
	var out []Edge
	for _, from := range g.nodes {
		for _, to := range g.succ[from] {
			out = append(out, Edge{Prerequisite: from, Dependent: to})
		}
	}
	return out
}

// findCycle runs a depth-first search from the smallest key, visiting
// successors in ascending order, and returns the nodes of the first cycle
// closed by a back edge, in path order. It returns nil for an acyclic graph.
func (g *depGraph) findCycle() []string {
	const (
		white = iota
		grey
		black
	)
	state := make(map[string]int, len(g.nodes))
	var stack []string
	var cycle []string

	var visit func(n string) bool
	visit = func(n string) bool {
		state[n] = grey
		stack = append(stack, n)
		for _, m := range g.succ[n] {
			switch state[m] {
			case grey:
				cycle = slices.Clone(stack[slices.Index(stack, m):])
				return true
			case white:
				if visit(m) {
					return true
				}
			}
		}
		stack = stack[:len(stack)-1]
		state[n] = black
		return false
	}

	for _, n := range g.nodes {
		if state[n] == white && visit(n) {
			return cycle
		}
	}
	return nil
}

// cycleBreak records one edge removed to make the graph acyclic.
type cycleBreak struct {
	Dropped Edge
	Members []string
}

// breakCycles removes edges until the graph is acyclic. For each cycle found
// by findCycle, the edge leaving the member with the lexicographically
// largest key is dropped, so X→Y→Z→X loses Z→X.
func (g *depGraph) breakCycles() []cycleBreak {
	var breaks []cycleBreak
	for {
		cycle := g.findCycle()
		if cycle == nil {
			return breaks
		}
		worst := 0
		for i := range cycle {
			if strings.Compare(cycle[i], cycle[worst]) > 0 {
				worst = i
			}
		}
		drop := Edge{Prerequisite: cycle[worst], Dependent: cycle[(worst+1)%len(cycle)]}
		g.removeEdge(drop)

		members := slices.Clone(cycle)
		slices.Sort(members)
		breaks = append(breaks, cycleBreak{Dropped: drop, Members: members})
	}
}

// topoOrder returns the nodes in Kahn order. Among items whose prerequisites
// are all placed, less picks the next one. The graph must be acyclic.
func (g *depGraph) topoOrder(less func(a, b string) bool) []string {
	indegree := make(map[string]int, len(g.nodes))
	for _, n := range g.nodes {
		indegree[n] = len(g.pred[n])
	}
	ready := &readyQueue{less: less}
	for _, n := range g.nodes {
		if indegree[n] == 0 {
			ready.keys = append(ready.keys, n)
		}
	}
	heap.Init(ready)

	order := make([]string, 0, len(g.nodes))
	for ready.Len() > 0 {
		n := heap.Pop(ready).(string)
		order = append(order, n)
		for _, m := range g.succ[n] {
			indegree[m]--
			if indegree[m] == 0 {
				heap.Push(ready, m)
			}
		}
	}
	return order
}

// readyQueue is a min-heap of item keys ordered by less.
type readyQueue struct {
	keys []string
	less func(a, b string) bool
}

func (q *readyQueue) Len() int           { return len(q.keys) }
func (q *readyQueue) Less(i, j int) bool { return q.less(q.keys[i], q.keys[j]) }
func (q *readyQueue) Swap(i, j int)      { q.keys[i], q.keys[j] = q.keys[j], q.keys[i] }
func (q *readyQueue) Push(x any)         { q.keys = append(q.keys, x.(string)) }
func (q *readyQueue) Pop() any {
	old := q.keys
	n := len(old)
	k := old[n-1]
	q.keys = old[:n-1]
	return k
}
