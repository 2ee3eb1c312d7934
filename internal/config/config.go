package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/Tsess/jira-planning/internal/scenario"
)

// Config represents the complete planner configuration
type Config struct {
	Scenario ScenarioConfig `mapstructure:"scenario" yaml:"scenario"`
	Snapshot SnapshotConfig `mapstructure:"snapshot" yaml:"snapshot"`
	Logging  LoggingConfig  `mapstructure:"logging" yaml:"logging"`
	Output   OutputConfig   `mapstructure:"output" yaml:"output"`
}

// ScenarioConfig holds the knobs that shape a scheduling pass.
//
// Team names are map keys, and viper lowercases map keys when it reads a
// config file. Lookups through [ScenarioConfig.Options] therefore match
// teams case-insensitively.
type ScenarioConfig struct {
	// StartDate is the baseline as YYYY-MM-DD. Empty means the snapshot's
	// own baseline, or today when the snapshot has none.
	StartDate string `mapstructure:"start_date" yaml:"start_date"`
	// QuarterEndDate is the end of the planning window as YYYY-MM-DD.
	// Items ending after it are reported late. Empty disables the check.
	QuarterEndDate string `mapstructure:"quarter_end_date" yaml:"quarter_end_date"`
	// SPToWeeks is how many weeks one story point takes (default: 2.0)
	SPToWeeks float64 `mapstructure:"sp_to_weeks" yaml:"sp_to_weeks"`
	// WIPLimit is the number of items one person works on at once (default: 1)
	WIPLimit int `mapstructure:"wip_limit" yaml:"wip_limit"`
	// TeamSizes maps team name to head count. A team's lane limit is
	// size * wip_limit unless LaneLimits overrides it.
	TeamSizes map[string]int `mapstructure:"team_sizes" yaml:"team_sizes,omitempty"`
	// LaneLimits maps team name to an explicit concurrent-item limit.
	// Zero means unlimited.
	LaneLimits map[string]int `mapstructure:"lane_limits" yaml:"lane_limits,omitempty"`
	// VacationWeeks maps team name to vacation weeks inside the window.
	VacationWeeks map[string]float64 `mapstructure:"vacation_weeks" yaml:"vacation_weeks,omitempty"`
	// SickLeaveBuffer is the share of capacity reserved for sick leave (default: 0.1)
	SickLeaveBuffer float64 `mapstructure:"sickleave_buffer" yaml:"sickleave_buffer"`
	// UnscheduledPolicy is "complete" or "block" (default: "complete")
	UnscheduledPolicy string `mapstructure:"unscheduled_policy" yaml:"unscheduled_policy"`
	// LaneMode is "team" or "assignee" (default: "team"). In assignee mode
	// team lane limits are ignored for assigned items and unassigned items
	// share a single lane per team.
	LaneMode string `mapstructure:"lane_mode" yaml:"lane_mode"`
}

// SnapshotConfig controls how tracker exports are turned into work items
type SnapshotConfig struct {
	// StoryPointsField is the Jira custom field holding the estimate
	StoryPointsField string `mapstructure:"story_points_field" yaml:"story_points_field"`
	// TeamField is the Jira field holding the team. Empty means the first
	// component is used.
	TeamField string `mapstructure:"team_field" yaml:"team_field"`
	// EpicField is the Jira field holding the epic key. Empty means the
	// parent issue is used.
	EpicField string `mapstructure:"epic_field" yaml:"epic_field"`
	// ExcludeStatuses marks items in these statuses as excluded
	ExcludeStatuses []string `mapstructure:"exclude_statuses" yaml:"exclude_statuses"`
	// ExcludeLabels marks items carrying any of these labels as excluded
	ExcludeLabels []string `mapstructure:"exclude_labels" yaml:"exclude_labels"`
}

// LoggingConfig controls debug logging behavior
type LoggingConfig struct {
	// Level is the log level: "debug", "info", "warn", "error" (default: "info")
	Level string `mapstructure:"level" yaml:"level"`
	// Dir is where planner.log is written. Empty logs to stderr.
	Dir string `mapstructure:"dir" yaml:"dir"`
}

// OutputConfig controls how results are printed
type OutputConfig struct {
	// Format is "table" or "json" (default: "table")
	Format string `mapstructure:"format" yaml:"format"`
	// Width is the timeline width in columns. Zero means the terminal width.
	Width int `mapstructure:"width" yaml:"width"`
	// TeamFilter is a glob over team names; only matching teams are shown
	TeamFilter string `mapstructure:"team_filter" yaml:"team_filter"`
}

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		Scenario: ScenarioConfig{
			SPToWeeks:         2.0,
			WIPLimit:          1,
			TeamSizes:         map[string]int{},
			LaneLimits:        map[string]int{},
			VacationWeeks:     map[string]float64{},
			SickLeaveBuffer:   0.1,
			UnscheduledPolicy: string(scenario.PolicyCompleteAtBaseline),
			LaneMode:          string(scenario.LaneModeTeam),
		},
		Snapshot: SnapshotConfig{
			StoryPointsField: "customfield_10004",
			ExcludeStatuses:  []string{"Killed", "Duplicate"},
			ExcludeLabels:    []string{},
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Output: OutputConfig{
			Format: "table",
		},
	}
}

// EnvPrefix is the prefix of environment variables overriding config keys,
// e.g. JIRA_PLANNING_SCENARIO_WIP_LIMIT for scenario.wip_limit.
const EnvPrefix = "JIRA_PLANNING"

// SetDefaults registers default values with viper
func SetDefaults() {
	setDefaults(viper.GetViper())
}

func setDefaults(v *viper.Viper) {
	defaults := Default()

	// Scenario defaults
	v.SetDefault("scenario.start_date", defaults.Scenario.StartDate)
	v.SetDefault("scenario.quarter_end_date", defaults.Scenario.QuarterEndDate)
	v.SetDefault("scenario.sp_to_weeks", defaults.Scenario.SPToWeeks)
	v.SetDefault("scenario.wip_limit", defaults.Scenario.WIPLimit)
	v.SetDefault("scenario.team_sizes", defaults.Scenario.TeamSizes)
	v.SetDefault("scenario.lane_limits", defaults.Scenario.LaneLimits)
	v.SetDefault("scenario.vacation_weeks", defaults.Scenario.VacationWeeks)
	v.SetDefault("scenario.sickleave_buffer", defaults.Scenario.SickLeaveBuffer)
	v.SetDefault("scenario.unscheduled_policy", defaults.Scenario.UnscheduledPolicy)
	v.SetDefault("scenario.lane_mode", defaults.Scenario.LaneMode)

	// Snapshot defaults
	v.SetDefault("snapshot.story_points_field", defaults.Snapshot.StoryPointsField)
	v.SetDefault("snapshot.team_field", defaults.Snapshot.TeamField)
	v.SetDefault("snapshot.epic_field", defaults.Snapshot.EpicField)
	v.SetDefault("snapshot.exclude_statuses", defaults.Snapshot.ExcludeStatuses)
	v.SetDefault("snapshot.exclude_labels", defaults.Snapshot.ExcludeLabels)

	// Logging defaults
	v.SetDefault("logging.level", defaults.Logging.Level)
	v.SetDefault("logging.dir", defaults.Logging.Dir)

	// Output defaults
	v.SetDefault("output.format", defaults.Output.Format)
	v.SetDefault("output.width", defaults.Output.Width)
	v.SetDefault("output.team_filter", defaults.Output.TeamFilter)
}

// Load reads the configuration from viper into a Config struct and validates it
func Load() (*Config, error) {
	return decode(viper.GetViper())
}

// LoadFile reads and validates the config file at path on a fresh viper
// instance, with the same defaults and environment overrides as Load. The
// global viper state is left untouched, so watch mode can re-read an
// edited file and keep the previous config if the new one is invalid.
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}
	return decode(v)
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	// Check XDG_CONFIG_HOME first
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "jira-planning")
	}
	// Fall back to ~/.config/jira-planning
	home, err := os.UserHomeDir()
	if err != nil {
		return ".jira-planning"
	}
	return filepath.Join(home, ".config", "jira-planning")
}

// ConfigFile returns the path to the config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// defaultWindowWeeks is the planning window used for capacity when no
// quarter end is configured.
const defaultWindowWeeks = 13.0

// Baseline parses StartDate. The zero time is returned when it is empty.
func (s *ScenarioConfig) Baseline() (time.Time, error) {
	return parseDate(s.StartDate)
}

// QuarterEnd parses QuarterEndDate. The zero time is returned when it is empty.
func (s *ScenarioConfig) QuarterEnd() (time.Time, error) {
	return parseDate(s.QuarterEndDate)
}

// PointDuration converts SPToWeeks into a duration.
func (s *ScenarioConfig) PointDuration() time.Duration {
	if s.SPToWeeks <= 0 {
		return scenario.DefaultPointDuration
	}
	return time.Duration(s.SPToWeeks * float64(7*24*time.Hour))
}

// WindowWeeks is the length of the planning window in weeks: start to
// quarter end when both are set, otherwise one quarter.
func (s *ScenarioConfig) WindowWeeks() float64 {
	start, err1 := s.Baseline()
	end, err2 := s.QuarterEnd()
	if err1 != nil || err2 != nil || start.IsZero() || end.IsZero() || !end.After(start) {
		return defaultWindowWeeks
	}
	return end.Sub(start).Hours() / (7 * 24)
}

// TeamLanes returns the lane limit of every configured team, keyed by the
// team names in teams. Explicit lane_limits win over team_size * wip_limit.
// Teams with neither get no entry and are unlimited.
func (s *ScenarioConfig) TeamLanes(teams []string) map[string]int {
	out := make(map[string]int)
	for _, team := range teams {
		if limit, ok := lookupFold(s.LaneLimits, team); ok {
			if limit > 0 {
				out[team] = limit
			}
			continue
		}
		if size, ok := lookupFold(s.TeamSizes, team); ok {
			out[team] = scenario.LaneCount(size, s.WIPLimit)
		}
	}
	return out
}

// CapacityFactors returns the share of the window each team can work,
// keyed by the team names in teams. Every team pays the sick-leave buffer;
// teams with vacation weeks lose those too.
func (s *ScenarioConfig) CapacityFactors(teams []string) map[string]float64 {
	window := s.WindowWeeks()
	out := make(map[string]float64, len(teams))
	for _, team := range teams {
		vacation, _ := lookupFold(s.VacationWeeks, team)
		out[team] = scenario.CapacityFactor(window, vacation, s.SickLeaveBuffer)
	}
	return out
}

// Options assembles the scheduling options for a snapshot containing teams.
// fallback is used as the baseline when StartDate is empty.
func (s *ScenarioConfig) Options(teams []string, fallback time.Time) (scenario.Options, error) {
	baseline, err := s.Baseline()
	if err != nil {
		return scenario.Options{}, err
	}
	if baseline.IsZero() {
		baseline = fallback
	}
	return scenario.Options{
		Baseline:        baseline,
		PointDuration:   s.PointDuration(),
		TeamLanes:       s.TeamLanes(teams),
		CapacityFactors: s.CapacityFactors(teams),
		Policy:          scenario.UnscheduledPolicy(s.UnscheduledPolicy),
		LaneMode:        scenario.LaneMode(s.LaneMode),
	}, nil
}

// ValidPolicies returns the list of valid unscheduled policy values
func ValidPolicies() []string {
	return []string{string(scenario.PolicyCompleteAtBaseline), string(scenario.PolicyBlockUntilResolved)}
}

// ValidLaneModes returns the list of valid lane modes
func ValidLaneModes() []string {
	return []string{string(scenario.LaneModeTeam), string(scenario.LaneModeAssignee)}
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	return time.ParseInLocation(time.DateOnly, s, time.UTC)
}

func lookupFold[V any](m map[string]V, key string) (V, bool) {
	if v, ok := m[key]; ok {
		return v, true
	}
	for k, v := range m {
		if strings.EqualFold(k, key) {
			return v, true
		}
	}
	var zero V
	return zero, false
}
