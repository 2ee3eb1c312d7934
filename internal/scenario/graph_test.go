package scenario

import (
	"slices"
	"testing"
)

func TestBreakCycles(t *testing.T) {
	tests := []struct {
		name        string
		keys        []string
		edges       []Edge
		wantDropped []Edge
		wantMembers [][]string
	}{
		{
			name:  "acyclic graph is untouched",
			keys:  []string{"A", "B", "C"},
			edges: []Edge{{"A", "B"}, {"B", "C"}},
		},
		{
			name:        "three cycle loses the edge out of the largest key",
			keys:        []string{"X", "Y", "Z"},
			edges:       []Edge{{"X", "Y"}, {"Y", "Z"}, {"Z", "X"}},
			wantDropped: []Edge{{"Z", "X"}},
			wantMembers: [][]string{{"X", "Y", "Z"}},
		},
		{
			name:        "two disjoint cycles",
			keys:        []string{"A", "B", "C", "D"},
			edges:       []Edge{{"A", "B"}, {"B", "A"}, {"C", "D"}, {"D", "C"}},
			wantDropped: []Edge{{"B", "A"}, {"D", "C"}},
			wantMembers: [][]string{{"A", "B"}, {"C", "D"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newDepGraph(tt.keys, tt.edges)
			breaks := g.breakCycles()

			var dropped []Edge
			var members [][]string
			for _, b := range breaks {
				dropped = append(dropped, b.Dropped)
				members = append(members, b.Members)
			}
			if !slices.Equal(dropped, tt.wantDropped) {
				t.Errorf("dropped = %v, want %v", dropped, tt.wantDropped)
			}
			if !slices.EqualFunc(members, tt.wantMembers, slices.Equal) {
				t.Errorf("members = %v, want %v", members, tt.wantMembers)
			}
			if g.findCycle() != nil {
				t.Error("graph still has a cycle")
			}
		})
	}
}

func TestNewDepGraph_IgnoresForeignAndSelfEdges(t *testing.T) {
	g := newDepGraph([]string{"B", "A"}, []Edge{{"A", "B"}, {"A", "B"}, {"A", "A"}, {"A", "Q"}})
	if want := []Edge{{"A", "B"}}; !slices.Equal(g.edges(), want) {
		t.Errorf("edges() = %v, want %v", g.edges(), want)
	}
	if !slices.Equal(g.nodes, []string{"A", "B"}) {
		t.Errorf("nodes = %v, want sorted", g.nodes)
	}
}

func TestTopoOrder(t *testing.T) {
	g := newDepGraph([]string{"A", "B", "C", "D"}, []Edge{{"C", "A"}, {"D", "B"}})
	got := g.topoOrder(func(a, b string) bool { return a < b })
	if want := []string{"C", "A", "D", "B"}; !slices.Equal(got, want) {
		t.Errorf("topoOrder() = %v, want %v", got, want)
	}

	// a custom tie-break runs D first
	got = g.topoOrder(func(a, b string) bool { return a > b })
	if got[0] != "D" {
		t.Errorf("topoOrder(desc)[0] = %q, want D", got[0])
	}
}
