package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	apperrors "github.com/Tsess/jira-planning/internal/errors"
	"github.com/Tsess/jira-planning/internal/planner"
	"github.com/Tsess/jira-planning/internal/render"
	"github.com/Tsess/jira-planning/internal/watch"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule <snapshot>",
	Short: "Schedule a snapshot and print the timeline",
	Long: `Schedule a snapshot of work items and print the result.

The snapshot is a YAML or JSON file listing items, or a raw Jira search
response (.json with an "issues" array). The default output is the
warnings panel, the per-team timeline and a summary. --table prints one
line per item instead; --json prints the full pass result.

With --watch the snapshot (and the config file, if any) is watched and
the schedule is printed again after every change.

Examples:
  # Print the timeline for one team
  jira-planning schedule sprint.yaml --team Platform

  # Hold back everything that depends on an unestimated item
  jira-planning schedule export.json --policy block

  # Machine-readable output
  jira-planning schedule sprint.yaml --json`,
	Args: cobra.ExactArgs(1),
	RunE: runSchedule,
}

var (
	scheduleJSON         bool
	scheduleTable        bool
	scheduleWatch        bool
	scheduleTeam         string
	scheduleWidth        int
	schedulePolicy       string
	scheduleHideExcluded bool
)

func init() {
	scheduleCmd.Flags().BoolVar(&scheduleJSON, "json", false, "print the pass result as JSON")
	scheduleCmd.Flags().BoolVar(&scheduleTable, "table", false, "print one row per item instead of the timeline")
	scheduleCmd.Flags().BoolVarP(&scheduleWatch, "watch", "w", false, "re-run whenever the snapshot or config changes")
	scheduleCmd.Flags().StringVarP(&scheduleTeam, "team", "t", "", "only show teams matching this glob")
	scheduleCmd.Flags().IntVar(&scheduleWidth, "width", 0, "output width (default: terminal width)")
	scheduleCmd.Flags().StringVar(&schedulePolicy, "policy", "", "unscheduled policy override (complete, block)")
	scheduleCmd.Flags().BoolVar(&scheduleHideExcluded, "hide-excluded", false, "do not draw excluded items")
	rootCmd.AddCommand(scheduleCmd)
}

// scheduleOutput holds the presentation settings of one schedule run.
type scheduleOutput struct {
	json         bool
	table        bool
	width        int
	filter       *render.TeamFilter
	hideExcluded bool
}

func runSchedule(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := openLogger(cmd, cfg)
	if err != nil {
		return err
	}
	defer logger.Close()

	policy, err := policyOverride(schedulePolicy)
	if err != nil {
		return err
	}

	team := scheduleTeam
	if team == "" {
		team = cfg.Output.TeamFilter
	}
	filter, err := render.NewTeamFilter(team)
	if err != nil {
		return err
	}

	out := scheduleOutput{
		json:         scheduleJSON || cfg.Output.Format == "json",
		table:        scheduleTable,
		width:        firstPositive(scheduleWidth, cfg.Output.Width),
		filter:       filter,
		hideExcluded: scheduleHideExcluded,
	}
	if out.width == 0 && !out.json {
		out.width = render.TerminalWidth()
	}

	runner := newPassRunner(cfg, args[0], policy, logger.WithSnapshot(args[0]))
	w := cmd.OutOrStdout()

	result, err := runner.run()
	if err != nil && !scheduleWatch {
		return err
	}
	printPass(w, result, err, out)
	if !scheduleWatch {
		return nil
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return watchSchedule(ctx, w, runner, out)
}

// watchSchedule reprints the schedule after every change until ctx is done.
// Passes that fail to load are reported and the watch continues.
func watchSchedule(ctx context.Context, w io.Writer, runner *passRunner, out scheduleOutput) error {
	changes := make(chan string, 1)
	watcher, err := watch.New(runner.watchPaths(), func(path string) {
		select {
		case changes <- path:
		default:
		}
	}, watch.WithLogger(runner.logger))
	if err != nil {
		return err
	}
	watcher.Start()
	defer watcher.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case path := <-changes:
			runner.logger.Info("re-running after change", "path", path)
			if !out.json {
				// clear screen and home cursor
				fmt.Fprint(w, "\033[H\033[2J")
			}
			result, err := runner.run()
			switch {
			case err == nil:
			case apperrors.IsRetryable(err) || apperrors.GetSeverity(err) < apperrors.SeverityError:
				runner.logger.Warn("pass failed", "error", err.Error(), "retryable", apperrors.IsRetryable(err))
			default:
				runner.logger.Error("pass failed", "error", err.Error())
			}
			if cerr := runner.configError(); cerr != nil {
				fmt.Fprintln(w, render.Warning.Render("config not reloaded: "+cerr.Error()))
			}
			printPass(w, result, err, out)
		}
	}
}

func printPass(w io.Writer, result *planner.Result, err error, out scheduleOutput) {
	if err != nil {
		fmt.Fprintln(w, render.Error.Render("error: "+err.Error()))
		return
	}
	if out.json {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			fmt.Fprintf(w, `{"error": %q}`+"\n", err.Error())
			return
		}
		fmt.Fprintln(w, string(data))
		return
	}

	if warnings := render.Warnings(result, out.width); warnings != "" {
		fmt.Fprintln(w, warnings)
		fmt.Fprintln(w)
	}
	if out.table {
		fmt.Fprintln(w, render.Table(result, out.filter))
	} else {
		fmt.Fprintln(w, render.Timeline(result, render.Options{
			Width:        out.width,
			Filter:       out.filter,
			HideExcluded: out.hideExcluded,
		}))
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, render.Summary(result))
}

func firstPositive(values ...int) int {
	for _, v := range values {
		if v > 0 {
			return v
		}
	}
	return 0
}
