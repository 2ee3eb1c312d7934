package snapshot

import (
	"path/filepath"
	"slices"
	"testing"
	"time"

	apperrors "github.com/Tsess/jira-planning/internal/errors"
	"github.com/Tsess/jira-planning/internal/scenario"
	"github.com/Tsess/jira-planning/internal/testutil"
)

const yamlSnapshot = `
baseline: 2025-01-06
quarter_end: 2025-03-31
lane_limits:
  Platform: 2
items:
  - key: PLAT-1
    title: Auth service
    assignee: alice
    team: Platform
    status: To Do
    estimate: 2
    priority: High
    links:
      - type: blocks
        key: PLAT-2
  - key: PLAT-2
    assignee: alice
    team: Platform
    estimate: 1.5
    due_date: 2025-02-14
  - key: MOB-1
    team: Mobile
    status: Killed
  - key: MOB-2
    team: Mobile
    labels: [tech-debt]
    estimate: 1
`

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		path    string
		want    Format
		wantErr bool
	}{
		{"q3.yaml", FormatYAML, false},
		{"q3.YML", FormatYAML, false},
		{"/tmp/export.json", FormatJSON, false},
		{"notes.txt", "", true},
		{"noext", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := DetectFormat(tt.path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("DetectFormat() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !apperrors.Is(err, apperrors.ErrUnknownFormat) {
				t.Errorf("error %v should wrap ErrUnknownFormat", err)
			}
			if got != tt.want {
				t.Errorf("DetectFormat() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLoad_YAML(t *testing.T) {
	path := testutil.WriteFile(t, "q1.yaml", yamlSnapshot)

	snap, err := Load(path, WithExclusions([]string{"killed"}, []string{"Tech-Debt"}))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if snap.Source != path {
		t.Errorf("Source = %q, want %q", snap.Source, path)
	}
	if snap.Format != FormatYAML {
		t.Errorf("Format = %q, want %q", snap.Format, FormatYAML)
	}
	if want := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC); !snap.Baseline.Equal(want) {
		t.Errorf("Baseline = %v, want %v", snap.Baseline, want)
	}
	if want := time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC); !snap.QuarterEnd.Equal(want) {
		t.Errorf("QuarterEnd = %v, want %v", snap.QuarterEnd, want)
	}
	if snap.LaneLimits["Platform"] != 2 {
		t.Errorf("LaneLimits[Platform] = %d, want 2", snap.LaneLimits["Platform"])
	}
	if len(snap.Items) != 4 {
		t.Fatalf("len(Items) = %d, want 4", len(snap.Items))
	}

	first := snap.Items[0]
	if first.Key != "PLAT-1" || first.Assignee != "alice" || first.Priority != "High" {
		t.Errorf("first item = %+v", first)
	}
	if first.Estimate == nil || *first.Estimate != 2 {
		t.Errorf("first.Estimate = %v, want 2", first.Estimate)
	}
	if len(first.Links) != 1 || first.Links[0] != (scenario.RawLink{Type: "blocks", Key: "PLAT-2"}) {
		t.Errorf("first.Links = %v", first.Links)
	}

	second := snap.Items[1]
	if second.DueDate == nil || !second.DueDate.Equal(time.Date(2025, 2, 14, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("second.DueDate = %v, want 2025-02-14", second.DueDate)
	}

	if snap.Items[0].Excluded || snap.Items[1].Excluded {
		t.Error("platform items should not be excluded")
	}
	if !snap.Items[2].Excluded {
		t.Error("MOB-1 should be excluded by status")
	}
	if !snap.Items[3].Excluded {
		t.Error("MOB-2 should be excluded by label")
	}

	if got, want := snap.Teams(), []string{"Mobile", "Platform"}; !slices.Equal(got, want) {
		t.Errorf("Teams() = %v, want %v", got, want)
	}
}

func TestLoad_JSON(t *testing.T) {
	path := testutil.WriteFile(t, "q1.json", `{
		"baseline": "2025-01-06",
		"items": [
			{"key": "A", "estimate": 1, "links": [{"type": "is blocked by", "key": "B"}]},
			{"key": "B", "estimate": 2, "due_date": "2025-01-20"},
			{"key": "C"}
		]
	}`)

	snap, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if snap.Format != FormatJSON {
		t.Errorf("Format = %q, want %q", snap.Format, FormatJSON)
	}
	if len(snap.Items) != 3 {
		t.Fatalf("len(Items) = %d, want 3", len(snap.Items))
	}
	if snap.Items[2].Estimate != nil {
		t.Errorf("C.Estimate = %v, want nil", *snap.Items[2].Estimate)
	}
	if snap.Items[1].DueDate == nil {
		t.Error("B.DueDate should be set")
	}
	if got, want := snap.Teams(), []string{scenario.DefaultTeam}; !slices.Equal(got, want) {
		t.Errorf("Teams() = %v, want %v", got, want)
	}
}

func TestLoad_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
		if !apperrors.Is(err, apperrors.ErrSnapshotNotFound) {
			t.Errorf("Load() error = %v, want ErrSnapshotNotFound", err)
		}
		if apperrors.IsRetryable(err) {
			t.Error("missing file should not be retryable")
		}
	})

	t.Run("unknown extension", func(t *testing.T) {
		_, err := Load(testutil.WriteFile(t, "q1.csv", "key\nA\n"))
		if !apperrors.Is(err, apperrors.ErrUnknownFormat) {
			t.Errorf("Load() error = %v, want ErrUnknownFormat", err)
		}
	})

	t.Run("malformed yaml", func(t *testing.T) {
		path := testutil.WriteFile(t, "q1.yaml", "items: [\n  - key: A\n")
		_, err := Load(path)
		if !apperrors.Is(err, apperrors.ErrSnapshotInvalid) {
			t.Fatalf("Load() error = %v, want ErrSnapshotInvalid", err)
		}
		if !apperrors.IsRetryable(err) {
			t.Error("decode failure should be retryable")
		}
		var snapErr *apperrors.SnapshotError
		if !apperrors.As(err, &snapErr) || snapErr.Path != path {
			t.Errorf("error should carry path %q: %v", path, err)
		}
	})

	t.Run("bad due date", func(t *testing.T) {
		_, err := Load(testutil.WriteFile(t, "q1.json", `{"items": [{"key": "A", "due_date": "next week"}]}`))
		if !apperrors.Is(err, apperrors.ErrSnapshotInvalid) {
			t.Errorf("Load() error = %v, want ErrSnapshotInvalid", err)
		}
	})
}

func TestDecode_UnknownFormat(t *testing.T) {
	_, err := Decode([]byte("{}"), Format("toml"))
	if !apperrors.Is(err, apperrors.ErrUnknownFormat) {
		t.Errorf("Decode() error = %v, want ErrUnknownFormat", err)
	}
}
