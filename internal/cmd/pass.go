package cmd

import (
	"bytes"
	"maps"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Tsess/jira-planning/internal/config"
	"github.com/Tsess/jira-planning/internal/logging"
	"github.com/Tsess/jira-planning/internal/planner"
	"github.com/Tsess/jira-planning/internal/snapshot"
)

// passRunner loads a snapshot and runs one scheduling pass over it. It is
// reused across passes in watch and view mode, and picks up edits to the
// config file between passes.
type passRunner struct {
	mu      sync.Mutex
	cfg     *config.Config
	path    string
	policy  string
	now     func() time.Time
	logger  *logging.Logger
	planner *planner.Planner

	configPath string
	configData []byte
	configErr  error
}

func newPassRunner(cfg *config.Config, path, policy string, logger *logging.Logger) *passRunner {
	r := &passRunner{
		cfg:     cfg,
		path:    path,
		policy:  policy,
		now:     time.Now,
		logger:  logger,
		planner: planner.New(planner.WithLogger(logger)),
	}
	r.trackConfig(viper.ConfigFileUsed())
	return r
}

// trackConfig remembers the config file cfg was read from, so later passes
// can tell when it was edited.
func (r *passRunner) trackConfig(path string) {
	r.configPath = path
	r.configData = nil
	r.configErr = nil
	if path != "" {
		r.configData, _ = os.ReadFile(path)
	}
}

// refreshConfig re-reads the config file when its content changed since
// the last pass. An unreadable or invalid file is logged and the previous
// config stays in use.
func (r *passRunner) refreshConfig() {
	if r.configPath == "" {
		return
	}
	data, err := os.ReadFile(r.configPath)
	if err != nil {
		r.configErr = err
		r.logger.Warn("config file unreadable, keeping previous config", "path", r.configPath, "error", err.Error())
		return
	}
	if bytes.Equal(data, r.configData) {
		return
	}
	cfg, err := config.LoadFile(r.configPath)
	if err != nil {
		r.configErr = err
		r.logger.Warn("config reload failed, keeping previous config", "path", r.configPath, "error", err.Error())
		return
	}
	r.cfg = cfg
	r.configData = data
	r.configErr = nil
	r.logger.Info("config reloaded", "path", r.configPath)
}

// load reads the snapshot with the configured field map and exclusions.
func (r *passRunner) load() (*snapshot.Snapshot, error) {
	fields := snapshot.FieldMap{
		StoryPoints: r.cfg.Snapshot.StoryPointsField,
		Team:        r.cfg.Snapshot.TeamField,
		Epic:        r.cfg.Snapshot.EpicField,
	}
	if fields.StoryPoints == "" {
		fields.StoryPoints = snapshot.DefaultFieldMap().StoryPoints
	}
	return snapshot.Load(r.path,
		snapshot.WithFieldMap(fields),
		snapshot.WithExclusions(r.cfg.Snapshot.ExcludeStatuses, r.cfg.Snapshot.ExcludeLabels),
	)
}

// input builds the pass input. Dates stored in the snapshot apply when the
// config leaves them unset; snapshot lane limits override configured ones.
func (r *passRunner) input(snap *snapshot.Snapshot) (planner.Input, error) {
	fallback := snap.Baseline
	if fallback.IsZero() {
		now := r.now().UTC()
		fallback = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	}

	sc := r.cfg.Scenario
	if r.policy != "" {
		sc.UnscheduledPolicy = r.policy
	}
	opts, err := sc.Options(snap.Teams(), fallback)
	if err != nil {
		return planner.Input{}, err
	}
	if len(snap.LaneLimits) > 0 {
		lanes := make(map[string]int, len(opts.TeamLanes)+len(snap.LaneLimits))
		maps.Copy(lanes, opts.TeamLanes)
		maps.Copy(lanes, snap.LaneLimits)
		opts.TeamLanes = lanes
	}

	quarterEnd, err := sc.QuarterEnd()
	if err != nil {
		return planner.Input{}, err
	}
	if quarterEnd.IsZero() {
		quarterEnd = snap.QuarterEnd
	}

	return planner.Input{Items: snap.Items, Options: opts, QuarterEnd: quarterEnd}, nil
}

// run loads the snapshot and plans it with the current config.
func (r *passRunner) run() (*planner.Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.refreshConfig()
	snap, err := r.load()
	if err != nil {
		return nil, err
	}
	for _, msg := range snap.Warnings {
		r.logger.Warn("snapshot value dropped", "detail", msg)
	}
	in, err := r.input(snap)
	if err != nil {
		return nil, err
	}
	return r.planner.Plan(in), nil
}

// configError returns the error of the last failed config reload, or nil
// when the config in use matches the file.
func (r *passRunner) configError() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.configErr
}

// watchPaths lists the files whose change should trigger a new pass.
func (r *passRunner) watchPaths() []string {
	paths := []string{r.path}
	if r.configPath != "" {
		paths = append(paths, r.configPath)
	}
	return paths
}

// loadConfig reads and validates the configuration.
func loadConfig() (*config.Config, error) {
	return config.Load()
}

// openLogger returns the command logger. Logs go to the configured
// directory; without one they go to stderr only with --verbose.
func openLogger(cmd *cobra.Command, cfg *config.Config) (*logging.Logger, error) {
	var logger *logging.Logger
	switch verbose, _ := cmd.Flags().GetBool("verbose"); {
	case cfg.Logging.Dir != "":
		l, err := logging.NewLogger(cfg.Logging.Dir, cfg.Logging.Level)
		if err != nil {
			return nil, err
		}
		logger = l
	case verbose:
		logger = logging.NewWriterLogger(cmd.ErrOrStderr(), cfg.Logging.Level)
	default:
		logger = logging.NopLogger()
	}
	return logger.WithCommand(cmd.Name()), nil
}

// policyOverride returns the --policy flag value, validated.
func policyOverride(policy string) (string, error) {
	if policy == "" {
		return "", nil
	}
	for _, p := range config.ValidPolicies() {
		if p == policy {
			return policy, nil
		}
	}
	return "", config.ValidationErrors{{
		Field:   "policy",
		Value:   policy,
		Message: "must be one of " + joinQuoted(config.ValidPolicies()),
	}}
}

func joinQuoted(values []string) string {
	return "'" + strings.Join(values, "', '") + "'"
}
