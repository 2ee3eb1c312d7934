// Package cmd wires the jira-planning command line.
package cmd

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	configcmd "github.com/Tsess/jira-planning/internal/cmd/config"
	"github.com/Tsess/jira-planning/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "jira-planning",
	Short: "Schedule tracker work items into per-team lanes",
	Long: `jira-planning turns a snapshot of tracker issues into a dated schedule.

It resolves blocking links into precedence constraints, breaks dependency
cycles, schedules items under per-assignee and per-team capacity limits,
packs the result into one display row per person and cross-checks the
outcome for overlapping assignments.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.config/jira-planning/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-dir", "", "write logs to planner.log in this directory")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "log to stderr when no log directory is set")
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("logging.dir", rootCmd.PersistentFlags().Lookup("log-dir"))

	configcmd.Register(rootCmd)
}

func initConfig() {
	// Set defaults first so they're available even without a config file
	config.SetDefaults()

	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(config.ConfigDir())
		viper.AddConfigPath(".")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix(config.EnvPrefix)
	// Replace dots with underscores for nested keys in env vars
	// e.g., JIRA_PLANNING_SCENARIO_WIP_LIMIT for scenario.wip_limit
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file if it exists (ignore error if not found)
	_ = viper.ReadInConfig()
}
