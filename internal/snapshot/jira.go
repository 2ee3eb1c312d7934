package snapshot

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	apperrors "github.com/Tsess/jira-planning/internal/errors"
	"github.com/Tsess/jira-planning/internal/scenario"
)

// FieldMap names the Jira fields that carry planner data. Story points and
// teams live in instance-specific custom fields.
type FieldMap struct {
	// StoryPoints is the numeric estimate field.
	StoryPoints string
	// Team holds the owning team. Empty means the first component.
	Team string
	// Epic holds the epic key. Empty means the parent issue.
	Epic string
}

// DefaultFieldMap returns the field names of a stock Jira Cloud instance.
func DefaultFieldMap() FieldMap {
	return FieldMap{StoryPoints: "customfield_10004"}
}

// ParseJiraSearch converts a Jira search response into work items, in the
// order the response lists them. Issue links are copied as raw relation
// text from whichever side the response reports; they are not interpreted.
// A link element that does not decode becomes an empty link so that link
// normalization reports it, and an unparseable estimate is left unset.
func ParseJiraSearch(data []byte, fields FieldMap) ([]scenario.WorkItem, error) {
	snap, err := (&decoder{fields: fields}).jiraSearch(data)
	if err != nil {
		return nil, err
	}
	return snap.Items, nil
}

type jiraSearch struct {
	Issues []jiraIssue `json:"issues"`
}

type jiraIssue struct {
	Key    string                     `json:"key"`
	Fields map[string]json.RawMessage `json:"fields"`
}

type jiraNamed struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	Value       string `json:"value"`
	Key         string `json:"key"`
}

// label returns the first non-empty naming attribute.
func (n jiraNamed) label() string {
	for _, s := range []string{n.DisplayName, n.Name, n.Value, n.Key} {
		if s != "" {
			return s
		}
	}
	return ""
}

type jiraLink struct {
	Type struct {
		Name    string `json:"name"`
		Inward  string `json:"inward"`
		Outward string `json:"outward"`
	} `json:"type"`
	InwardIssue  *jiraNamed `json:"inwardIssue"`
	OutwardIssue *jiraNamed `json:"outwardIssue"`
}

func (d *decoder) jiraSearch(data []byte) (*Snapshot, error) {
	var resp jiraSearch
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, invalid(FormatJira, err)
	}

	snap := &Snapshot{Format: FormatJira, Items: make([]scenario.WorkItem, 0, len(resp.Issues))}
	for _, issue := range resp.Issues {
		w, labels, warnings, err := d.jiraItem(issue)
		if err != nil {
			return nil, invalid(FormatJira, apperrors.Wrapf(err, "issue %s", issue.Key))
		}
		for _, msg := range warnings {
			snap.Warnings = append(snap.Warnings, fmt.Sprintf("issue %s: %s", issue.Key, msg))
		}
		w.Excluded = d.excluded(w.Status, labels)
		snap.Items = append(snap.Items, w)
	}
	return snap, nil
}

// jiraItem decodes one issue. Field problems that only cost a single value
// are returned as warnings; an error rejects the whole response.
func (d *decoder) jiraItem(issue jiraIssue) (w scenario.WorkItem, labels, warnings []string, err error) {
	f := issue.Fields
	w = scenario.WorkItem{
		Key:      strings.TrimSpace(issue.Key),
		Title:    stringField(f["summary"]),
		Assignee: namedField(f["assignee"]),
		Status:   namedField(f["status"]),
		Priority: namedField(f["priority"]),
	}

	if d.fields.Team != "" {
		w.Team = namedField(f[d.fields.Team])
	} else {
		w.Team = namedField(f["components"])
	}
	if d.fields.Epic != "" {
		w.Epic = namedField(f[d.fields.Epic])
	} else {
		w.Epic = keyField(f["parent"])
	}

	if d.fields.StoryPoints != "" {
		points, perr := numberField(f[d.fields.StoryPoints])
		if perr != nil {
			warnings = append(warnings, fmt.Sprintf("%s: estimate ignored: %v", d.fields.StoryPoints, perr))
		}
		w.Estimate = points
	}

	if due := stringField(f["duedate"]); due != "" {
		t, derr := parseDate(due)
		if derr != nil {
			return w, nil, nil, apperrors.Wrap(derr, "duedate")
		}
		w.DueDate = &t
	}

	var rawLinks []json.RawMessage
	if raw := f["issuelinks"]; !isNull(raw) {
		if lerr := json.Unmarshal(raw, &rawLinks); lerr != nil {
			warnings = append(warnings, fmt.Sprintf("issuelinks ignored: %v", lerr))
		}
	}
	for i, raw := range rawLinks {
		var l jiraLink
		if lerr := json.Unmarshal(raw, &l); lerr != nil {
			warnings = append(warnings, fmt.Sprintf("issuelinks[%d]: %v", i, lerr))
			w.Links = append(w.Links, scenario.RawLink{})
			continue
		}
		switch {
		case l.OutwardIssue != nil:
			w.Links = append(w.Links, scenario.RawLink{Type: firstNonEmpty(l.Type.Outward, l.Type.Name), Key: l.OutwardIssue.Key})
		case l.InwardIssue != nil:
			w.Links = append(w.Links, scenario.RawLink{Type: firstNonEmpty(l.Type.Inward, l.Type.Name), Key: l.InwardIssue.Key})
		}
	}

	if raw := f["labels"]; !isNull(raw) {
		if lerr := json.Unmarshal(raw, &labels); lerr != nil {
			warnings = append(warnings, fmt.Sprintf("labels ignored: %v", lerr))
			labels = nil
		}
	}
	return w, labels, warnings, nil
}

func isNull(raw json.RawMessage) bool {
	s := strings.TrimSpace(string(raw))
	return s == "" || s == "null"
}

func stringField(raw json.RawMessage) string {
	if isNull(raw) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// namedField reads a field that Jira may encode as a string, an object with
// a name-like attribute, or an array of either. Arrays yield their first
// element.
func namedField(raw json.RawMessage) string {
	if isNull(raw) {
		return ""
	}
	if s := stringField(raw); s != "" {
		return s
	}
	var obj jiraNamed
	if err := json.Unmarshal(raw, &obj); err == nil {
		return obj.label()
	}
	var arr []json.RawMessage
	if err := json.Unmarshal(raw, &arr); err == nil && len(arr) > 0 {
		return namedField(arr[0])
	}
	return ""
}

func keyField(raw json.RawMessage) string {
	if isNull(raw) {
		return ""
	}
	var obj jiraNamed
	if err := json.Unmarshal(raw, &obj); err != nil {
		return ""
	}
	return obj.Key
}

// numberField accepts a JSON number or a numeric string.
func numberField(raw json.RawMessage) (*float64, error) {
	if isNull(raw) {
		return nil, nil
	}
	var v float64
	if err := json.Unmarshal(raw, &v); err == nil {
		return &v, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("not a number: %s", raw)
	}
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
