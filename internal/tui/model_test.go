package tui

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"

	"github.com/Tsess/jira-planning/internal/planner"
	"github.com/Tsess/jira-planning/internal/render"
	"github.com/Tsess/jira-planning/internal/scenario"
)

func points(v float64) *float64 { return &v }

func testLoader() (Loader, *int) {
	calls := 0
	baseline := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)
	return func() (*planner.Result, error) {
		calls++
		return planner.Run(planner.Input{
			Items: []scenario.WorkItem{
				{Key: "PLAT-1", Team: "Platform", Assignee: "alice", Estimate: points(1)},
				{Key: "MOB-1", Team: "Mobile", Assignee: "bob", Estimate: points(1)},
			},
			Options: scenario.Options{Baseline: baseline},
		}), nil
	}, &calls
}

// sized returns a model that has received a window size and its first pass.
func sized(t *testing.T, load Loader) Model {
	t.Helper()
	m := NewModel(load, "snapshot.yaml", nil)
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	m = updated.(Model)

	msg := m.loadCmd()()
	updated, _ = m.Update(msg)
	return updated.(Model)
}

func press(m Model, keys ...string) Model {
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "tab":
			msg = tea.KeyMsg{Type: tea.KeyTab}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		updated, _ := m.Update(msg)
		m = updated.(Model)
	}
	return m
}

func TestModel_InitialPass(t *testing.T) {
	load, calls := testLoader()
	m := sized(t, load)

	if *calls != 1 {
		t.Errorf("loader calls = %d, want 1", *calls)
	}
	if m.result == nil {
		t.Fatal("expected a result after the first pass")
	}
	view := ansi.Strip(m.View())
	for _, want := range []string{"jira-planning", "snapshot.yaml", "pass 1", "PLAT-1", "MOB-1", "Summary"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestModel_NotReadyView(t *testing.T) {
	load, _ := testLoader()
	m := NewModel(load, "", nil)
	if got := m.View(); got != "initializing…" {
		t.Errorf("View() before sizing = %q", got)
	}
}

func TestModel_ToggleViews(t *testing.T) {
	load, _ := testLoader()
	m := sized(t, load)

	m = press(m, "tab")
	if m.mode != viewTable {
		t.Fatalf("mode = %v, want table", m.mode)
	}
	if !strings.Contains(ansi.Strip(m.viewport.View()), "ASSIGNEE") {
		t.Error("table view missing header")
	}

	m = press(m, "tab", "s")
	if m.mode != viewTimeline {
		t.Errorf("mode = %v, want timeline", m.mode)
	}
	if m.showSummary {
		t.Error("summary should be hidden after pressing s")
	}
}

func TestModel_Filter(t *testing.T) {
	load, _ := testLoader()
	m := sized(t, load)

	// the summary is not filtered
	m = press(m, "s", "/")
	if !m.filtering {
		t.Fatal("expected filter mode after /")
	}
	m = press(m, "M", "o", "b", "*", "enter")
	if m.filtering {
		t.Error("filter mode should end on enter")
	}
	if got := m.filter.String(); got != "Mob*" {
		t.Errorf("filter = %q, want %q", got, "Mob*")
	}
	body := ansi.Strip(m.body())
	if strings.Contains(body, "PLAT-1") || !strings.Contains(body, "MOB-1") {
		t.Errorf("filtered body wrong:\n%s", body)
	}

	m = press(m, "esc")
	if m.filter != nil {
		t.Error("esc should clear the filter")
	}
}

func TestModel_BadFilterKeepsEditing(t *testing.T) {
	load, _ := testLoader()
	m := sized(t, load)

	m = press(m, "/", "[", "enter")
	if !m.filtering {
		t.Error("an invalid pattern should keep the filter input open")
	}
	if m.err == nil {
		t.Error("expected an error for an invalid pattern")
	}
}

func TestModel_FailedReloadKeepsResult(t *testing.T) {
	load, _ := testLoader()
	m := sized(t, load)
	previous := m.result

	updated, _ := m.Update(resultMsg{err: errors.New("snapshot is half written"), at: time.Now()})
	m = updated.(Model)

	if m.result != previous {
		t.Error("failed reload replaced the last good result")
	}
	if !strings.Contains(ansi.Strip(m.View()), "snapshot is half written") {
		t.Error("reload error not shown in footer")
	}
	if m.passes != 2 {
		t.Errorf("passes = %d, want 2", m.passes)
	}
}

func TestModel_ReloadMsgRunsLoader(t *testing.T) {
	load, calls := testLoader()
	m := sized(t, load)

	_, cmd := m.Update(ReloadMsg{Path: "snapshot.yaml"})
	if cmd == nil {
		t.Fatal("ReloadMsg should return a load command")
	}
	if _, ok := cmd().(resultMsg); !ok {
		t.Error("load command should produce a resultMsg")
	}
	if *calls != 2 {
		t.Errorf("loader calls = %d, want 2", *calls)
	}
}

func TestModel_Quit(t *testing.T) {
	load, _ := testLoader()
	m := sized(t, load)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}

func TestNewModel_InitialFilter(t *testing.T) {
	f, err := render.NewTeamFilter("Platform")
	if err != nil {
		t.Fatal(err)
	}
	m := NewModel(nil, "", f)
	if m.filterInput.Value() != "Platform" {
		t.Errorf("filter input = %q, want Platform", m.filterInput.Value())
	}
	if _, ok := m.loadCmd()().(resultMsg); !ok {
		t.Error("loadCmd without loader should still return a resultMsg")
	}
}
