package conflict

import (
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/Tsess/jira-planning/internal/scenario"
)

var day0 = time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)

func at(key, assignee string, startDay, days int) scenario.Assignment {
	start := day0.AddDate(0, 0, startDay)
	return scenario.Assignment{
		Key:      key,
		Assignee: assignee,
		Start:    start,
		End:      start.AddDate(0, 0, days),
	}
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name string
		in   []scenario.Assignment
		want []Record
	}{
		{
			name: "back to back is not an overlap",
			in:   []scenario.Assignment{at("A", "alice", 0, 7), at("B", "alice", 7, 7)},
		},
		{
			name: "different assignees may overlap",
			in:   []scenario.Assignment{at("A", "alice", 0, 7), at("B", "bob", 3, 7)},
		},
		{
			name: "one overlapping pair",
			in:   []scenario.Assignment{at("B", "alice", 3, 7), at("A", "alice", 0, 7)},
			want: []Record{{
				Assignee: "alice", First: "A", Second: "B",
				Overlap: Interval{Start: day0.AddDate(0, 0, 3), End: day0.AddDate(0, 0, 7)},
			}},
		},
		{
			name: "contained item ends the overlap early",
			in:   []scenario.Assignment{at("A", "alice", 0, 10), at("B", "alice", 2, 3)},
			want: []Record{{
				Assignee: "alice", First: "A", Second: "B",
				Overlap: Interval{Start: day0.AddDate(0, 0, 2), End: day0.AddDate(0, 0, 5)},
			}},
		},
		{
			name: "records ordered by assignee",
			in: []scenario.Assignment{
				at("Z1", "zoe", 0, 5), at("Z2", "zoe", 1, 5),
				at("A1", "amy", 0, 5), at("A2", "amy", 4, 5),
			},
			want: []Record{
				{Assignee: "amy", First: "A1", Second: "A2", Overlap: Interval{Start: day0.AddDate(0, 0, 4), End: day0.AddDate(0, 0, 5)}},
				{Assignee: "zoe", First: "Z1", Second: "Z2", Overlap: Interval{Start: day0.AddDate(0, 0, 1), End: day0.AddDate(0, 0, 5)}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Detect(tt.in)
			if !slices.Equal(got, tt.want) {
				t.Errorf("Detect() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestDetect_SkipsNonParticipants(t *testing.T) {
	excluded := at("X", "alice", 0, 7)
	excluded.Excluded = true
	unscheduled := scenario.Assignment{Key: "U", Assignee: "alice", Unscheduled: true}

	in := []scenario.Assignment{
		at("A", "alice", 0, 7),
		excluded,
		unscheduled,
		at("N1", "", 0, 7),
		at("N2", "", 0, 7),
	}
	if got := Detect(in); len(got) != 0 {
		t.Errorf("Detect() = %+v, want no records", got)
	}
}

func TestDetect_DoesNotMutateInput(t *testing.T) {
	in := []scenario.Assignment{at("B", "alice", 3, 7), at("A", "alice", 0, 7)}
	before := slices.Clone(in)
	Detect(in)
	if !slices.EqualFunc(in, before, func(a, b scenario.Assignment) bool { return a.Key == b.Key }) {
		t.Errorf("input reordered: %v", in)
	}
}

func TestRecordString(t *testing.T) {
	r := Record{
		Assignee: "alice", First: "A", Second: "B",
		Overlap: Interval{Start: day0, End: day0.AddDate(0, 0, 2)},
	}
	s := r.String()
	for _, want := range []string{"alice", "A overlaps B", "2025-01-06", "2025-01-08"} {
		if !strings.Contains(s, want) {
			t.Errorf("String() = %q, missing %q", s, want)
		}
	}
	if r.Overlap.Duration() != 48*time.Hour {
		t.Errorf("Duration() = %v, want 48h", r.Overlap.Duration())
	}
}
