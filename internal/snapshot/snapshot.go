// Package snapshot turns files on disk into the work item set handed to a
// scheduling pass.
//
// Two inputs are understood: a planner snapshot (YAML or JSON) listing
// items explicitly, and a saved Jira search response, recognized by its
// top-level "issues" array. Both end up as a [Snapshot]; neither path
// interprets link direction, which is left to the scheduling core.
package snapshot

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	apperrors "github.com/Tsess/jira-planning/internal/errors"
	"github.com/Tsess/jira-planning/internal/scenario"
)

// Format identifies a snapshot encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
	FormatJira Format = "jira"
)

// Snapshot is a decoded work item set plus the scenario hints stored with it.
type Snapshot struct {
	Source string
	Format Format

	// Baseline and QuarterEnd are zero when the file does not set them.
	Baseline   time.Time
	QuarterEnd time.Time

	// LaneLimits overrides configured lane limits for this snapshot only.
	LaneLimits map[string]int

	Items []scenario.WorkItem

	// Warnings lists field values that were dropped while decoding.
	Warnings []string
}

// Teams returns the distinct team names of the items, sorted.
func (s *Snapshot) Teams() []string {
	seen := make(map[string]struct{})
	var teams []string
	for _, item := range s.Items {
		name := item.TeamName()
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		teams = append(teams, name)
	}
	slices.Sort(teams)
	return teams
}

// Option configures decoding.
type Option func(*decoder)

// WithFieldMap sets the Jira field names used by [ParseJiraSearch].
func WithFieldMap(fields FieldMap) Option {
	return func(d *decoder) {
		d.fields = fields
	}
}

// WithExclusions marks items whose status or any label matches one of the
// given names (case-insensitive) as excluded.
func WithExclusions(statuses, labels []string) Option {
	return func(d *decoder) {
		d.excludeStatuses = lowerSet(statuses)
		d.excludeLabels = lowerSet(labels)
	}
}

type decoder struct {
	fields          FieldMap
	excludeStatuses map[string]struct{}
	excludeLabels   map[string]struct{}
}

func newDecoder(opts []Option) *decoder {
	d := &decoder{fields: DefaultFieldMap()}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// excluded applies the configured exclusion rules.
func (d *decoder) excluded(status string, labels []string) bool {
	if _, ok := d.excludeStatuses[strings.ToLower(strings.TrimSpace(status))]; ok {
		return true
	}
	for _, l := range labels {
		if _, ok := d.excludeLabels[strings.ToLower(strings.TrimSpace(l))]; ok {
			return true
		}
	}
	return false
}

// DetectFormat picks the decoder from the file extension.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", apperrors.NewSnapshotError("cannot tell the format from the file extension", apperrors.ErrUnknownFormat).
			WithPath(path)
	}
}

// Load reads and decodes the snapshot at path. A JSON file holding a Jira
// search response is decoded with [ParseJiraSearch].
//
// A missing file wraps ErrSnapshotNotFound. A file that fails to decode
// wraps ErrSnapshotInvalid and is marked retryable, since it may be caught
// mid-write.
func Load(path string, opts ...Option) (*Snapshot, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		cause := err
		if os.IsNotExist(err) {
			cause = apperrors.ErrSnapshotNotFound
		}
		return nil, apperrors.NewSnapshotError("read failed", cause).WithPath(path)
	}

	snap, err := Decode(data, format, opts...)
	if err != nil {
		var snapErr *apperrors.SnapshotError
		if apperrors.As(err, &snapErr) {
			snapErr.WithPath(path)
		}
		return nil, err
	}
	snap.Source = path
	return snap, nil
}

// Decode parses data in the given format.
func Decode(data []byte, format Format, opts ...Option) (*Snapshot, error) {
	d := newDecoder(opts)

	var doc document
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, invalid(format, err)
		}
	case FormatJSON:
		if looksLikeJiraSearch(data) {
			return d.jiraSearch(data)
		}
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, invalid(format, err)
		}
	case FormatJira:
		return d.jiraSearch(data)
	default:
		return nil, apperrors.NewSnapshotError("unsupported format", apperrors.ErrUnknownFormat).
			WithFormat(string(format))
	}

	return d.fromDocument(doc, format)
}

func invalid(format Format, cause error) *apperrors.SnapshotError {
	return apperrors.NewSnapshotError("decode failed", fmt.Errorf("%w: %w", apperrors.ErrSnapshotInvalid, cause)).
		WithFormat(string(format)).
		WithRetryable(true)
}

// document is the planner snapshot file layout.
type document struct {
	Baseline   string         `yaml:"baseline" json:"baseline"`
	QuarterEnd string         `yaml:"quarter_end" json:"quarter_end"`
	LaneLimits map[string]int `yaml:"lane_limits" json:"lane_limits"`
	Items      []item         `yaml:"items" json:"items"`
}

// item mirrors scenario.WorkItem with dates as plain strings, so YAML and
// JSON files can both write them as YYYY-MM-DD.
type item struct {
	Key      string             `yaml:"key" json:"key"`
	Title    string             `yaml:"title" json:"title"`
	Assignee string             `yaml:"assignee" json:"assignee"`
	Team     string             `yaml:"team" json:"team"`
	Status   string             `yaml:"status" json:"status"`
	Epic     string             `yaml:"epic" json:"epic"`
	Estimate *float64           `yaml:"estimate" json:"estimate"`
	Priority string             `yaml:"priority" json:"priority"`
	Order    int                `yaml:"order" json:"order"`
	DueDate  string             `yaml:"due_date" json:"due_date"`
	Excluded bool               `yaml:"excluded" json:"excluded"`
	Labels   []string           `yaml:"labels" json:"labels"`
	Links    []scenario.RawLink `yaml:"links" json:"links"`
}

func (d *decoder) fromDocument(doc document, format Format) (*Snapshot, error) {
	snap := &Snapshot{Format: format, LaneLimits: doc.LaneLimits}

	var err error
	if snap.Baseline, err = parseDate(doc.Baseline); err != nil {
		return nil, invalid(format, apperrors.Wrap(err, "baseline"))
	}
	if snap.QuarterEnd, err = parseDate(doc.QuarterEnd); err != nil {
		return nil, invalid(format, apperrors.Wrap(err, "quarter_end"))
	}

	snap.Items = make([]scenario.WorkItem, 0, len(doc.Items))
	for _, it := range doc.Items {
		due, err := parseDate(it.DueDate)
		if err != nil {
			return nil, invalid(format, apperrors.Wrapf(err, "item %s due_date", it.Key))
		}
		w := scenario.WorkItem{
			Key:      strings.TrimSpace(it.Key),
			Title:    it.Title,
			Assignee: it.Assignee,
			Team:     it.Team,
			Status:   it.Status,
			Epic:     it.Epic,
			Estimate: it.Estimate,
			Priority: it.Priority,
			Order:    it.Order,
			Excluded: it.Excluded || d.excluded(it.Status, it.Labels),
			Links:    it.Links,
		}
		if !due.IsZero() {
			w.DueDate = &due
		}
		snap.Items = append(snap.Items, w)
	}
	return snap, nil
}

func looksLikeJiraSearch(data []byte) bool {
	var probe struct {
		Issues json.RawMessage `json:"issues"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return false
	}
	trimmed := bytes.TrimSpace(probe.Issues)
	return len(trimmed) > 0 && trimmed[0] == '['
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.ParseInLocation(time.DateOnly, s, time.UTC); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

func lowerSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		if v = strings.ToLower(strings.TrimSpace(v)); v != "" {
			set[v] = struct{}{}
		}
	}
	return set
}
