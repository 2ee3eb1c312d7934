package cmd

import (
	"github.com/spf13/cobra"

	"github.com/Tsess/jira-planning/internal/render"
	"github.com/Tsess/jira-planning/internal/tui"
)

var viewCmd = &cobra.Command{
	Use:   "view <snapshot>",
	Short: "Browse the schedule interactively",
	Long: `Open the schedule in an interactive viewer.

The viewer switches between the timeline and the item table, filters teams
by glob and reloads automatically when the snapshot or config file changes.
Press ? inside the viewer for key bindings.`,
	Args: cobra.ExactArgs(1),
	RunE: runView,
}

var (
	viewTeam    string
	viewPolicy  string
	viewNoWatch bool
)

func init() {
	viewCmd.Flags().StringVarP(&viewTeam, "team", "t", "", "initial team filter (glob)")
	viewCmd.Flags().StringVar(&viewPolicy, "policy", "", "unscheduled policy override (complete, block)")
	viewCmd.Flags().BoolVar(&viewNoWatch, "no-watch", false, "do not reload on file changes")
	rootCmd.AddCommand(viewCmd)
}

func runView(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := openLogger(cmd, cfg)
	if err != nil {
		return err
	}
	defer logger.Close()

	policy, err := policyOverride(viewPolicy)
	if err != nil {
		return err
	}
	team := viewTeam
	if team == "" {
		team = cfg.Output.TeamFilter
	}
	filter, err := render.NewTeamFilter(team)
	if err != nil {
		return err
	}

	runner := newPassRunner(cfg, args[0], policy, logger.WithSnapshot(args[0]))
	var paths []string
	if !viewNoWatch {
		paths = runner.watchPaths()
	}

	app := tui.New(runner.run, args[0], filter, paths, runner.logger)
	return app.Run(cmd.Context())
}
