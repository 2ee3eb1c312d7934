// Package config provides CLI commands for managing jira-planning configuration.
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	appconfig "github.com/Tsess/jira-planning/internal/config"
	apperrors "github.com/Tsess/jira-planning/internal/errors"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or modify jira-planning configuration",
	Long: `View or modify jira-planning configuration.

Without arguments, displays the current configuration.
Use subcommands to modify settings or create a config file.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value in the user's config file.

Keys use dot notation, e.g.:
  jira-planning config set scenario.sp_to_weeks 1.5
  jira-planning config set scenario.unscheduled_policy block
  jira-planning config set output.team_filter 'Plat*'

Valid keys:
  scenario.start_date          - Baseline date (YYYY-MM-DD)
  scenario.quarter_end_date    - Items ending later are late (YYYY-MM-DD)
  scenario.sp_to_weeks         - Weeks per story point
  scenario.wip_limit           - Parallel items per team member
  scenario.sickleave_buffer    - Share of time lost to sick leave [0, 1)
  scenario.unscheduled_policy  - complete or block
  scenario.lane_mode           - team or assignee
  snapshot.story_points_field  - Jira field holding story points
  snapshot.team_field          - Jira field holding the team
  snapshot.epic_field          - Jira field holding the epic key
  logging.level                - debug, info, warn or error
  logging.dir                  - Directory for planner.log
  output.format                - table or json
  output.width                 - Timeline width (0 = terminal width)
  output.team_filter           - Glob over team names`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a default config file",
	Long:  `Create a default config file at ~/.config/jira-planning/config.yaml with all available options.`,
	RunE:  runConfigInit,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show the config file path",
	RunE:  runConfigPath,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)
}

// Register adds the config command tree to parent.
func Register(parent *cobra.Command) {
	parent.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := appconfig.Load()
	if err != nil {
		return err
	}
	return writeConfig(cmd.OutOrStdout(), cfg, viper.ConfigFileUsed())
}

func writeConfig(w io.Writer, cfg *appconfig.Config, used string) error {
	if used != "" {
		fmt.Fprintf(w, "# Config file: %s\n", used)
	} else {
		fmt.Fprintln(w, "# Config file: (none - using defaults)")
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return enc.Close()
}

// settableKeys maps each key accepted by `config set` to its value kind.
var settableKeys = map[string]string{
	"scenario.start_date":         "date",
	"scenario.quarter_end_date":   "date",
	"scenario.sp_to_weeks":        "float",
	"scenario.wip_limit":          "int",
	"scenario.sickleave_buffer":   "float",
	"scenario.unscheduled_policy": "policy",
	"scenario.lane_mode":          "lane_mode",
	"snapshot.story_points_field": "string",
	"snapshot.team_field":         "string",
	"snapshot.epic_field":         "string",
	"logging.level":               "level",
	"logging.dir":                 "string",
	"output.format":               "format",
	"output.width":                "int",
	"output.team_filter":          "string",
}

// parseSetting converts a raw `config set` value to the type stored in the
// config file.
func parseSetting(key, value string) (any, error) {
	kind, ok := settableKeys[key]
	if !ok {
		return nil, apperrors.NewNotFoundError("configuration key", key)
	}

	switch kind {
	case "policy":
		return oneOf(key, value, appconfig.ValidPolicies())
	case "lane_mode":
		return oneOf(key, value, appconfig.ValidLaneModes())
	case "level":
		return oneOf(key, strings.ToLower(value), appconfig.ValidLogLevels())
	case "format":
		return oneOf(key, value, appconfig.ValidOutputFormats())
	case "date":
		if value == "" {
			return value, nil
		}
		probe := appconfig.Default()
		probe.Scenario.StartDate = value
		if _, err := probe.Scenario.Baseline(); err != nil {
			return nil, fmt.Errorf("invalid value for %s: expected YYYY-MM-DD", key)
		}
		return value, nil
	case "float":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid value for %s: expected a number", key)
		}
		if f < 0 {
			return nil, fmt.Errorf("invalid value for %s: must be non-negative", key)
		}
		return f, nil
	case "int":
		n, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("invalid value for %s: expected integer", key)
		}
		if n < 0 {
			return nil, fmt.Errorf("invalid value for %s: must be non-negative", key)
		}
		return n, nil
	default:
		return value, nil
	}
}

func oneOf(key, value string, valid []string) (any, error) {
	if !slices.Contains(valid, value) {
		return nil, fmt.Errorf("invalid value for %s: %s\nValid options: %s",
			key, value, strings.Join(valid, ", "))
	}
	return value, nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key := args[0]
	typedValue, err := parseSetting(key, args[1])
	if err != nil {
		return err
	}

	// Ensure config directory exists
	configDir := appconfig.ConfigDir()
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	viper.Set(key, typedValue)

	configFile := appconfig.ConfigFile()
	if err := viper.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Set %s = %v\n", key, typedValue)
	fmt.Fprintf(out, "Config saved to %s\n", configFile)
	return nil
}

// defaultConfigContent is written by `config init`.
const defaultConfigContent = `# jira-planning configuration

scenario:
  # Baseline for the schedule (YYYY-MM-DD). Empty means the snapshot's
  # start date, or today.
  start_date: ""
  # Items ending after this date are reported as late
  quarter_end_date: ""
  # Weeks of work per story point at full capacity
  sp_to_weeks: 2.0
  # Items each team member works on at once
  wip_limit: 1
  # Team sizes; lanes per team = size * wip_limit
  team_sizes: {}
  # Explicit lanes per team (overrides team_sizes)
  lane_limits: {}
  # Vacation weeks per team over the planning window
  vacation_weeks: {}
  # Share of time lost to sick leave, applied to every team
  sickleave_buffer: 0.1
  # What an unscheduled prerequisite means for its dependents:
  #   complete - treat it as done at the baseline
  #   block    - leave dependents unscheduled too
  unscheduled_policy: complete
  # What a capacity lane stands for:
  #   team     - lane limits per team
  #   assignee - one lane per person; unassigned items share one per team
  lane_mode: team

snapshot:
  # Jira custom field holding story points
  story_points_field: customfield_10004
  # Jira field holding the team (empty = first component)
  team_field: ""
  # Jira field holding the epic key (empty = parent issue)
  epic_field: ""
  # Items with these statuses or labels are laid out separately and never
  # constrain the schedule
  exclude_statuses: [Killed, Duplicate]
  exclude_labels: []

logging:
  # debug, info, warn or error
  level: info
  # Directory for planner.log (empty = stderr with --verbose)
  dir: ""

output:
  # table or json
  format: table
  # Timeline width (0 = terminal width)
  width: 0
  # Glob over team names, e.g. "Plat*" or "{Platform,Mobile}"
  team_filter: ""
`

func runConfigInit(cmd *cobra.Command, args []string) error {
	configDir := appconfig.ConfigDir()
	configFile := appconfig.ConfigFile()

	// Check if config file already exists
	if _, err := os.Stat(configFile); err == nil {
		return fmt.Errorf("config file already exists at %s\nUse 'jira-planning config set' to modify values", configFile)
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(configFile, []byte(defaultConfigContent), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created config file at %s\n", configFile)
	fmt.Fprintln(out, "Edit this file to set team sizes, lane limits and dates.")
	return nil
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	configFile := appconfig.ConfigFile()

	if viper.ConfigFileUsed() != "" {
		fmt.Fprintf(out, "Active config: %s\n", viper.ConfigFileUsed())
	} else {
		fmt.Fprintf(out, "Default path: %s (not created)\n", configFile)
	}

	fmt.Fprintln(out, "\nSearch paths:")
	fmt.Fprintf(out, "  1. %s\n", filepath.Join(appconfig.ConfigDir(), "config.yaml"))
	fmt.Fprintln(out, "  2. ./config.yaml (current directory)")
	fmt.Fprintln(out, "\nEnvironment variables: JIRA_PLANNING_* (e.g., JIRA_PLANNING_SCENARIO_WIP_LIMIT)")
	return nil
}
