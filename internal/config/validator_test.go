package config

import (
	"strings"
	"testing"

	apperrors "github.com/Tsess/jira-planning/internal/errors"
)

func TestValidationError_Error(t *testing.T) {
	err := ValidationError{
		Field:   "test.field",
		Value:   123,
		Message: "must be greater than zero",
	}

	expected := "test.field: must be greater than zero (got: 123)"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
}

func TestValidationErrors_Error(t *testing.T) {
	t.Run("empty errors", func(t *testing.T) {
		var errs ValidationErrors
		if errs.Error() != "" {
			t.Errorf("Error() for empty = %q, want empty string", errs.Error())
		}
	})

	t.Run("single error", func(t *testing.T) {
		errs := ValidationErrors{
			{Field: "test.field", Value: 123, Message: "is invalid"},
		}
		expected := "test.field: is invalid (got: 123)"
		if errs.Error() != expected {
			t.Errorf("Error() = %q, want %q", errs.Error(), expected)
		}
	})

	t.Run("multiple errors", func(t *testing.T) {
		errs := ValidationErrors{
			{Field: "field1", Value: "bad", Message: "is invalid"},
			{Field: "field2", Value: -1, Message: "must be positive"},
		}
		result := errs.Error()
		if !strings.Contains(result, "2 validation errors") {
			t.Errorf("Error() should mention 2 errors: %s", result)
		}
		if !strings.Contains(result, "field1") || !strings.Contains(result, "field2") {
			t.Errorf("Error() should mention both fields: %s", result)
		}
	})
}

func TestValidationErrors_IsConfigInvalid(t *testing.T) {
	var err error = ValidationErrors{{Field: "output.format", Value: "xml", Message: "bad"}}
	if !apperrors.Is(err, apperrors.ErrConfigInvalid) {
		t.Error("Is(ErrConfigInvalid) = false, want true")
	}
	if apperrors.Is(err, apperrors.ErrSnapshotInvalid) {
		t.Error("Is(ErrSnapshotInvalid) = true, want false")
	}
}

func TestConfig_Validate_DefaultConfig(t *testing.T) {
	cfg := Default()
	errs := cfg.Validate()
	if len(errs) != 0 {
		t.Errorf("Default config should be valid, got %d errors: %v", len(errs), errs)
	}
}

func TestConfig_Validate_Scenario(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		field  string
	}{
		{"bad start date", func(c *Config) { c.Scenario.StartDate = "2025/01/06" }, "scenario.start_date"},
		{"bad quarter end", func(c *Config) { c.Scenario.QuarterEndDate = "Q1" }, "scenario.quarter_end_date"},
		{"quarter end before start", func(c *Config) {
			c.Scenario.StartDate = "2025-03-01"
			c.Scenario.QuarterEndDate = "2025-01-01"
		}, "scenario.quarter_end_date"},
		{"zero sp_to_weeks", func(c *Config) { c.Scenario.SPToWeeks = 0 }, "scenario.sp_to_weeks"},
		{"zero wip_limit", func(c *Config) { c.Scenario.WIPLimit = 0 }, "scenario.wip_limit"},
		{"negative sick leave", func(c *Config) { c.Scenario.SickLeaveBuffer = -0.1 }, "scenario.sickleave_buffer"},
		{"full sick leave", func(c *Config) { c.Scenario.SickLeaveBuffer = 1 }, "scenario.sickleave_buffer"},
		{"unknown policy", func(c *Config) { c.Scenario.UnscheduledPolicy = "ignore" }, "scenario.unscheduled_policy"},
		{"unknown lane mode", func(c *Config) { c.Scenario.LaneMode = "person" }, "scenario.lane_mode"},
		{"empty team", func(c *Config) { c.Scenario.TeamSizes = map[string]int{"platform": 0} }, "scenario.team_sizes.platform"},
		{"negative lane limit", func(c *Config) { c.Scenario.LaneLimits = map[string]int{"mobile": -1} }, "scenario.lane_limits.mobile"},
		{"negative vacation", func(c *Config) { c.Scenario.VacationWeeks = map[string]float64{"data": -2} }, "scenario.vacation_weeks.data"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			errs := cfg.Validate()
			if len(errs) != 1 {
				t.Fatalf("Validate() returned %d errors, want 1: %v", len(errs), errs)
			}
			if errs[0].Field != tt.field {
				t.Errorf("Field = %q, want %q", errs[0].Field, tt.field)
			}
		})
	}
}

func TestConfig_Validate_ScenarioValid(t *testing.T) {
	cfg := Default()
	cfg.Scenario.StartDate = "2025-01-06"
	cfg.Scenario.QuarterEndDate = "2025-03-31"
	cfg.Scenario.UnscheduledPolicy = "block"
	cfg.Scenario.TeamSizes = map[string]int{"platform": 4}
	cfg.Scenario.LaneLimits = map[string]int{"mobile": 0}
	cfg.Scenario.SickLeaveBuffer = 0

	if errs := cfg.Validate(); len(errs) != 0 {
		t.Errorf("Validate() returned errors for valid scenario: %v", errs)
	}
}

func TestConfig_Validate_Snapshot(t *testing.T) {
	cfg := Default()
	cfg.Snapshot.StoryPointsField = "  "

	errs := cfg.Validate()
	if len(errs) != 1 || errs[0].Field != "snapshot.story_points_field" {
		t.Errorf("Validate() = %v, want one snapshot.story_points_field error", errs)
	}
}

func TestConfig_Validate_Logging(t *testing.T) {
	tests := []struct {
		name     string
		level    string
		hasError bool
	}{
		{"valid debug", "debug", false},
		{"valid info", "info", false},
		{"valid warn", "warn", false},
		{"valid error", "error", false},
		{"empty is valid", "", false},
		{"invalid level", "verbose", true},
		{"case sensitive", "INFO", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Logging.Level = tt.level
			errs := cfg.Validate()
			hasError := len(errs) > 0
			if hasError != tt.hasError {
				t.Errorf("Validate() hasError = %v, want %v (errors: %v)", hasError, tt.hasError, errs)
			}
		})
	}
}

func TestConfig_Validate_Output(t *testing.T) {
	tests := []struct {
		name     string
		modify   func(*Config)
		hasError bool
	}{
		{"json format", func(c *Config) { c.Output.Format = "json" }, false},
		{"unknown format", func(c *Config) { c.Output.Format = "xml" }, true},
		{"negative width", func(c *Config) { c.Output.Width = -10 }, true},
		{"fixed width", func(c *Config) { c.Output.Width = 120 }, false},
		{"valid glob", func(c *Config) { c.Output.TeamFilter = "plat*" }, false},
		{"alternatives glob", func(c *Config) { c.Output.TeamFilter = "{mobile,web}" }, false},
		{"broken glob", func(c *Config) { c.Output.TeamFilter = "[plat" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			errs := cfg.Validate()
			hasError := len(errs) > 0
			if hasError != tt.hasError {
				t.Errorf("Validate() hasError = %v, want %v (errors: %v)", hasError, tt.hasError, errs)
			}
		})
	}
}

func TestConfig_Validate_MultipleErrors(t *testing.T) {
	cfg := Default()
	cfg.Scenario.SPToWeeks = -1
	cfg.Logging.Level = "loud"
	cfg.Output.Format = "pdf"

	errs := cfg.Validate()
	if len(errs) != 3 {
		t.Errorf("Validate() returned %d errors, want 3: %v", len(errs), errs)
	}
}
