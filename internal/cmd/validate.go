package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	apperrors "github.com/Tsess/jira-planning/internal/errors"
	"github.com/Tsess/jira-planning/internal/planner"
	"github.com/Tsess/jira-planning/internal/scenario"
)

var validateCmd = &cobra.Command{
	Use:   "validate <snapshot>",
	Short: "Check a snapshot for data problems",
	Long: `Check a snapshot for problems that degrade the schedule.

This command runs one scheduling pass and reports:
  - Link records that are malformed, of an unknown type or point at
    items missing from the snapshot
  - Dependency cycles and the edges dropped to break them
  - Items left unscheduled (missing estimates, blocked prerequisites)
  - Overlapping assignments for the same person

The exit code indicates the result:
  0 - No warnings (informational findings are allowed)
  1 - Warnings were found, or the snapshot could not be loaded

Examples:
  # Validate a snapshot
  jira-planning validate sprint.yaml

  # Validate with JSON output for CI
  jira-planning validate --json export.json`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

var validateJSON bool

func init() {
	validateCmd.Flags().BoolVar(&validateJSON, "json", false, "Output validation result as JSON")
	rootCmd.AddCommand(validateCmd)
}

// ValidationOutput represents the JSON output format for validation results.
type ValidationOutput struct {
	Valid         bool               `json:"valid"`
	FilePath      string             `json:"file_path"`
	ItemCount     int                `json:"item_count"`
	WarningCount  int                `json:"warning_count"`
	InfoCount     int                `json:"info_count"`
	ConflictCount int                `json:"conflict_count"`
	Anomalies     []scenario.Anomaly `json:"anomalies,omitempty"`
	DroppedEdges  []scenario.Edge    `json:"dropped_edges,omitempty"`
	LoadError     string             `json:"load_error,omitempty"`
}

func runValidate(cmd *cobra.Command, args []string) error {
	filePath := args[0]
	w := cmd.OutOrStdout()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := openLogger(cmd, cfg)
	if err != nil {
		return err
	}
	defer logger.Close()

	runner := newPassRunner(cfg, filePath, "", logger.WithSnapshot(filePath))
	result, err := runner.run()
	if err != nil {
		if validateJSON {
			return outputJSON(w, ValidationOutput{FilePath: filePath, LoadError: err.Error()})
		}
		return err
	}

	output := summarizeValidation(filePath, result)
	if validateJSON {
		return outputJSON(w, output)
	}
	return outputHuman(w, output)
}

func summarizeValidation(filePath string, result *planner.Result) ValidationOutput {
	out := ValidationOutput{
		FilePath:      filePath,
		ItemCount:     len(result.Assignments),
		ConflictCount: len(result.Conflicts),
		Anomalies:     result.Anomalies,
		DroppedEdges:  result.DroppedEdges,
	}
	for _, a := range result.Anomalies {
		if a.Severity == scenario.SeverityWarning {
			out.WarningCount++
		} else {
			out.InfoCount++
		}
	}
	out.Valid = out.WarningCount == 0 && out.ConflictCount == 0
	return out
}

// outputJSON prints the validation output as formatted JSON.
// Returns a silentError if validation failed to signal exit code 1.
func outputJSON(w io.Writer, output ValidationOutput) error {
	data, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		// --json must always print valid JSON
		fmt.Fprintf(w, `{"valid": false, "file_path": %q, "load_error": "internal error: failed to marshal output: %s"}`+"\n",
			output.FilePath, err.Error())
		return &silentError{}
	}
	fmt.Fprintln(w, string(data))

	if !output.Valid {
		return &silentError{}
	}
	return nil
}

// silentError signals that validation failed but output was already provided.
// Used to set exit code 1 without Cobra printing a duplicate error message.
type silentError struct{}

func (e *silentError) Error() string {
	return "validation failed"
}

// IsSilent reports whether err was already reported to the user.
func IsSilent(err error) bool {
	var s *silentError
	return apperrors.As(err, &s)
}

func outputHuman(w io.Writer, output ValidationOutput) error {
	fmt.Fprintf(w, "Validating: %s\n\n", output.FilePath)
	fmt.Fprintf(w, "  Items: %d\n", output.ItemCount)
	fmt.Fprintf(w, "  Warnings: %d, Info: %d, Overlaps: %d\n\n", output.WarningCount, output.InfoCount, output.ConflictCount)

	if output.Valid {
		fmt.Fprintln(w, "Status: VALID")
	} else {
		fmt.Fprintln(w, "Status: INVALID")
	}

	printAnomalies(w, "Warnings:", output.Anomalies, scenario.SeverityWarning)
	printAnomalies(w, "Info:", output.Anomalies, scenario.SeverityInfo)

	if len(output.DroppedEdges) > 0 {
		fmt.Fprintln(w, "\nDropped edges:")
		for _, e := range output.DroppedEdges {
			fmt.Fprintf(w, "  %s -> %s\n", e.Prerequisite, e.Dependent)
		}
	}

	if !output.Valid {
		return fmt.Errorf("snapshot has %d warning(s) and %d overlap(s)", output.WarningCount, output.ConflictCount)
	}
	return nil
}

func printAnomalies(w io.Writer, title string, anomalies []scenario.Anomaly, severity scenario.Severity) {
	printed := false
	for _, a := range anomalies {
		if a.Severity != severity {
			continue
		}
		if !printed {
			fmt.Fprintln(w, "\n"+title)
			printed = true
		}
		fmt.Fprintf(w, "  [%s] %s\n", a.Kind, a.Message)
	}
}
