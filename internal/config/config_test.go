package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	apperrors "github.com/Tsess/jira-planning/internal/errors"
	"github.com/Tsess/jira-planning/internal/scenario"
	"github.com/Tsess/jira-planning/internal/testutil"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg == nil {
		t.Fatal("Default() returned nil")
	}

	// Verify default scenario config
	if cfg.Scenario.SPToWeeks != 2.0 {
		t.Errorf("Scenario.SPToWeeks = %v, want 2.0", cfg.Scenario.SPToWeeks)
	}
	if cfg.Scenario.WIPLimit != 1 {
		t.Errorf("Scenario.WIPLimit = %d, want 1", cfg.Scenario.WIPLimit)
	}
	if cfg.Scenario.SickLeaveBuffer != 0.1 {
		t.Errorf("Scenario.SickLeaveBuffer = %v, want 0.1", cfg.Scenario.SickLeaveBuffer)
	}
	if cfg.Scenario.UnscheduledPolicy != "complete" {
		t.Errorf("Scenario.UnscheduledPolicy = %q, want %q", cfg.Scenario.UnscheduledPolicy, "complete")
	}

	// Verify default snapshot config
	if cfg.Snapshot.StoryPointsField != "customfield_10004" {
		t.Errorf("Snapshot.StoryPointsField = %q, want %q", cfg.Snapshot.StoryPointsField, "customfield_10004")
	}

	// Verify default logging and output config
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "info")
	}
	if cfg.Output.Format != "table" {
		t.Errorf("Output.Format = %q, want %q", cfg.Output.Format, "table")
	}
}

func TestScenarioConfig_PointDuration(t *testing.T) {
	tests := []struct {
		weeks    float64
		expected time.Duration
	}{
		{2.0, 14 * 24 * time.Hour},
		{0.5, 84 * time.Hour},
		{1, 7 * 24 * time.Hour},
		{0, scenario.DefaultPointDuration},
		{-1, scenario.DefaultPointDuration},
	}

	for _, tt := range tests {
		cfg := ScenarioConfig{SPToWeeks: tt.weeks}
		if got := cfg.PointDuration(); got != tt.expected {
			t.Errorf("PointDuration() with %v weeks = %v, want %v", tt.weeks, got, tt.expected)
		}
	}
}

func TestScenarioConfig_Dates(t *testing.T) {
	cfg := ScenarioConfig{StartDate: "2025-01-06", QuarterEndDate: "2025-03-31"}

	start, err := cfg.Baseline()
	if err != nil {
		t.Fatalf("Baseline() error = %v", err)
	}
	if want := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC); !start.Equal(want) {
		t.Errorf("Baseline() = %v, want %v", start, want)
	}

	if got := cfg.WindowWeeks(); got != 12 {
		t.Errorf("WindowWeeks() = %v, want 12", got)
	}

	empty := ScenarioConfig{}
	if got, err := empty.Baseline(); err != nil || !got.IsZero() {
		t.Errorf("empty Baseline() = %v, %v; want zero time, nil", got, err)
	}
	if got := empty.WindowWeeks(); got != defaultWindowWeeks {
		t.Errorf("empty WindowWeeks() = %v, want %v", got, defaultWindowWeeks)
	}

	bad := ScenarioConfig{StartDate: "06/01/2025"}
	if _, err := bad.Baseline(); err == nil {
		t.Error("Baseline() with bad date should fail")
	}
}

func TestScenarioConfig_TeamLanes(t *testing.T) {
	// Keys are lowercase, the way viper hands them back.
	cfg := ScenarioConfig{
		WIPLimit:   2,
		TeamSizes:  map[string]int{"platform": 3, "mobile": 2},
		LaneLimits: map[string]int{"mobile": 1, "data": 0},
	}

	lanes := cfg.TeamLanes([]string{"Platform", "Mobile", "Data", "Web"})

	tests := []struct {
		team  string
		lanes int
		ok    bool
	}{
		{"Platform", 6, true},
		{"Mobile", 1, true},
		{"Data", 0, false},
		{"Web", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.team, func(t *testing.T) {
			got, ok := lanes[tt.team]
			if ok != tt.ok || got != tt.lanes {
				t.Errorf("TeamLanes()[%q] = %d, %v; want %d, %v", tt.team, got, ok, tt.lanes, tt.ok)
			}
		})
	}
}

func TestScenarioConfig_CapacityFactors(t *testing.T) {
	cfg := ScenarioConfig{
		StartDate:       "2025-01-06",
		QuarterEndDate:  "2025-03-31",
		SickLeaveBuffer: 0.1,
		VacationWeeks:   map[string]float64{"platform": 3},
	}

	factors := cfg.CapacityFactors([]string{"Platform", "Mobile"})

	tests := []struct {
		team string
		want float64
	}{
		{"Platform", 0.75 * 0.9},
		{"Mobile", 0.9},
	}
	for _, tt := range tests {
		if got := factors[tt.team]; math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("CapacityFactors()[%q] = %v, want %v", tt.team, got, tt.want)
		}
	}
}

func TestScenarioConfig_Options(t *testing.T) {
	fallback := time.Date(2025, 2, 3, 0, 0, 0, 0, time.UTC)

	t.Run("fallback baseline", func(t *testing.T) {
		cfg := Default().Scenario
		opts, err := cfg.Options([]string{"Platform"}, fallback)
		if err != nil {
			t.Fatalf("Options() error = %v", err)
		}
		if !opts.Baseline.Equal(fallback) {
			t.Errorf("Baseline = %v, want %v", opts.Baseline, fallback)
		}
		if opts.Policy != scenario.PolicyCompleteAtBaseline {
			t.Errorf("Policy = %q, want %q", opts.Policy, scenario.PolicyCompleteAtBaseline)
		}
		if opts.PointDuration != 14*24*time.Hour {
			t.Errorf("PointDuration = %v, want 336h", opts.PointDuration)
		}
	})

	t.Run("configured baseline wins", func(t *testing.T) {
		cfg := Default().Scenario
		cfg.StartDate = "2025-01-06"
		cfg.UnscheduledPolicy = "block"
		opts, err := cfg.Options(nil, fallback)
		if err != nil {
			t.Fatalf("Options() error = %v", err)
		}
		if want := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC); !opts.Baseline.Equal(want) {
			t.Errorf("Baseline = %v, want %v", opts.Baseline, want)
		}
		if opts.Policy != scenario.PolicyBlockUntilResolved {
			t.Errorf("Policy = %q, want %q", opts.Policy, scenario.PolicyBlockUntilResolved)
		}
	})

	t.Run("bad start date", func(t *testing.T) {
		cfg := Default().Scenario
		cfg.StartDate = "soon"
		if _, err := cfg.Options(nil, fallback); err == nil {
			t.Error("Options() should fail on an unparsable start date")
		}
	})
}

func TestValidPolicies(t *testing.T) {
	policies := ValidPolicies()

	expected := []string{"complete", "block"}
	if len(policies) != len(expected) {
		t.Fatalf("ValidPolicies() length = %d, want %d", len(policies), len(expected))
	}
	for i, p := range expected {
		if policies[i] != p {
			t.Errorf("ValidPolicies()[%d] = %q, want %q", i, policies[i], p)
		}
	}
}

func TestConfigDir(t *testing.T) {
	// Test with XDG_CONFIG_HOME set
	t.Run("with XDG_CONFIG_HOME", func(t *testing.T) {
		original := os.Getenv("XDG_CONFIG_HOME")
		defer func() { _ = os.Setenv("XDG_CONFIG_HOME", original) }()

		_ = os.Setenv("XDG_CONFIG_HOME", "/custom/config")
		result := ConfigDir()
		expected := "/custom/config/jira-planning"
		if result != expected {
			t.Errorf("ConfigDir() = %q, want %q", result, expected)
		}
	})

	// Test without XDG_CONFIG_HOME
	t.Run("without XDG_CONFIG_HOME", func(t *testing.T) {
		original := os.Getenv("XDG_CONFIG_HOME")
		defer func() { _ = os.Setenv("XDG_CONFIG_HOME", original) }()

		_ = os.Setenv("XDG_CONFIG_HOME", "")
		result := ConfigDir()

		// Should be based on home directory
		home, _ := os.UserHomeDir()
		expected := filepath.Join(home, ".config", "jira-planning")
		if result != expected {
			t.Errorf("ConfigDir() = %q, want %q", result, expected)
		}
	})
}

func TestConfigFile(t *testing.T) {
	original := os.Getenv("XDG_CONFIG_HOME")
	defer func() { _ = os.Setenv("XDG_CONFIG_HOME", original) }()

	_ = os.Setenv("XDG_CONFIG_HOME", "/custom/config")
	result := ConfigFile()
	expected := "/custom/config/jira-planning/config.yaml"
	if result != expected {
		t.Errorf("ConfigFile() = %q, want %q", result, expected)
	}
}

func TestLoadFile(t *testing.T) {
	path := testutil.WriteFile(t, "config.yaml", `
scenario:
  sp_to_weeks: 4
  lane_mode: assignee
  lane_limits:
    Platform: 3
`)

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if cfg.Scenario.SPToWeeks != 4 || cfg.Scenario.LaneMode != "assignee" {
		t.Errorf("Scenario = %+v", cfg.Scenario)
	}
	if cfg.Snapshot.StoryPointsField != "customfield_10004" {
		t.Errorf("StoryPointsField = %q, want the default", cfg.Snapshot.StoryPointsField)
	}
	if got := cfg.Scenario.TeamLanes([]string{"Platform"}); got["Platform"] != 3 {
		t.Errorf("TeamLanes() = %v, want Platform:3", got)
	}
	opts, err := cfg.Scenario.Options(nil, time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("Options() error = %v", err)
	}
	if opts.LaneMode != scenario.LaneModeAssignee {
		t.Errorf("Options().LaneMode = %q", opts.LaneMode)
	}
}

func TestLoadFile_Invalid(t *testing.T) {
	path := testutil.WriteFile(t, "config.yaml", "scenario:\n  sp_to_weeks: -1\n")
	_, err := LoadFile(path)
	if !apperrors.Is(err, apperrors.ErrConfigInvalid) {
		t.Errorf("LoadFile() error = %v, want ErrConfigInvalid", err)
	}

	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("LoadFile() on a missing file should fail")
	}
}
