package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/gobwas/glob"

	apperrors "github.com/Tsess/jira-planning/internal/errors"
	"github.com/Tsess/jira-planning/internal/logging"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "scenario.sp_to_weeks")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// Is lets callers match any config validation failure with ErrConfigInvalid.
func (e ValidationErrors) Is(target error) bool {
	return target == apperrors.ErrConfigInvalid
}

// ValidLogLevels returns the accepted log levels in the lowercase form used
// by the config file.
func ValidLogLevels() []string {
	levels := logging.ValidLevels()
	for i, l := range levels {
		levels[i] = strings.ToLower(l)
	}
	return levels
}

// ValidOutputFormats returns the list of valid output formats
func ValidOutputFormats() []string {
	return []string{"table", "json"}
}

// Validate checks the Config for invalid values and returns all validation errors found
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	errors = append(errors, c.validateScenario()...)
	errors = append(errors, c.validateSnapshot()...)
	errors = append(errors, c.validateLogging()...)
	errors = append(errors, c.validateOutput()...)

	return errors
}

// validateScenario validates the ScenarioConfig
func (c *Config) validateScenario() []ValidationError {
	var errors []ValidationError
	s := c.Scenario

	start, err := s.Baseline()
	if err != nil {
		errors = append(errors, ValidationError{
			Field:   "scenario.start_date",
			Value:   s.StartDate,
			Message: "must be a date in YYYY-MM-DD form",
		})
	}
	end, err := s.QuarterEnd()
	if err != nil {
		errors = append(errors, ValidationError{
			Field:   "scenario.quarter_end_date",
			Value:   s.QuarterEndDate,
			Message: "must be a date in YYYY-MM-DD form",
		})
	}
	if !start.IsZero() && !end.IsZero() && !end.After(start) {
		errors = append(errors, ValidationError{
			Field:   "scenario.quarter_end_date",
			Value:   s.QuarterEndDate,
			Message: "must be after scenario.start_date",
		})
	}

	if s.SPToWeeks <= 0 {
		errors = append(errors, ValidationError{
			Field:   "scenario.sp_to_weeks",
			Value:   s.SPToWeeks,
			Message: "must be positive",
		})
	}

	if s.WIPLimit < 1 {
		errors = append(errors, ValidationError{
			Field:   "scenario.wip_limit",
			Value:   s.WIPLimit,
			Message: "must be at least 1",
		})
	}

	if s.SickLeaveBuffer < 0 || s.SickLeaveBuffer >= 1 {
		errors = append(errors, ValidationError{
			Field:   "scenario.sickleave_buffer",
			Value:   s.SickLeaveBuffer,
			Message: "must be in [0, 1)",
		})
	}

	if s.UnscheduledPolicy != "" && !slices.Contains(ValidPolicies(), s.UnscheduledPolicy) {
		errors = append(errors, ValidationError{
			Field:   "scenario.unscheduled_policy",
			Value:   s.UnscheduledPolicy,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidPolicies(), ", ")),
		})
	}

	if s.LaneMode != "" && !slices.Contains(ValidLaneModes(), s.LaneMode) {
		errors = append(errors, ValidationError{
			Field:   "scenario.lane_mode",
			Value:   s.LaneMode,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLaneModes(), ", ")),
		})
	}

	for _, team := range sortedKeys(s.TeamSizes) {
		if s.TeamSizes[team] < 1 {
			errors = append(errors, ValidationError{
				Field:   "scenario.team_sizes." + team,
				Value:   s.TeamSizes[team],
				Message: "must be at least 1",
			})
		}
	}
	for _, team := range sortedKeys(s.LaneLimits) {
		if s.LaneLimits[team] < 0 {
			errors = append(errors, ValidationError{
				Field:   "scenario.lane_limits." + team,
				Value:   s.LaneLimits[team],
				Message: "must be non-negative",
			})
		}
	}
	for _, team := range sortedKeys(s.VacationWeeks) {
		if s.VacationWeeks[team] < 0 {
			errors = append(errors, ValidationError{
				Field:   "scenario.vacation_weeks." + team,
				Value:   s.VacationWeeks[team],
				Message: "must be non-negative",
			})
		}
	}

	return errors
}

// validateSnapshot validates the SnapshotConfig
func (c *Config) validateSnapshot() []ValidationError {
	var errors []ValidationError

	if strings.TrimSpace(c.Snapshot.StoryPointsField) == "" {
		errors = append(errors, ValidationError{
			Field:   "snapshot.story_points_field",
			Value:   c.Snapshot.StoryPointsField,
			Message: "must not be empty",
		})
	}

	return errors
}

// validateLogging validates the LoggingConfig
func (c *Config) validateLogging() []ValidationError {
	var errors []ValidationError

	if c.Logging.Level != "" && !slices.Contains(ValidLogLevels(), c.Logging.Level) {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogLevels(), ", ")),
		})
	}

	if strings.ContainsRune(c.Logging.Dir, '\x00') {
		errors = append(errors, ValidationError{
			Field:   "logging.dir",
			Value:   c.Logging.Dir,
			Message: "path contains invalid null character",
		})
	}

	return errors
}

// validateOutput validates the OutputConfig
func (c *Config) validateOutput() []ValidationError {
	var errors []ValidationError

	if c.Output.Format != "" && !slices.Contains(ValidOutputFormats(), c.Output.Format) {
		errors = append(errors, ValidationError{
			Field:   "output.format",
			Value:   c.Output.Format,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidOutputFormats(), ", ")),
		})
	}

	if c.Output.Width < 0 {
		errors = append(errors, ValidationError{
			Field:   "output.width",
			Value:   c.Output.Width,
			Message: "must be non-negative",
		})
	}

	if c.Output.TeamFilter != "" {
		if _, err := glob.Compile(c.Output.TeamFilter); err != nil {
			errors = append(errors, ValidationError{
				Field:   "output.team_filter",
				Value:   c.Output.TeamFilter,
				Message: fmt.Sprintf("invalid glob pattern: %v", err),
			})
		}
	}

	return errors
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
