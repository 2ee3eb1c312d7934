package tui

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Tsess/jira-planning/internal/planner"
	"github.com/Tsess/jira-planning/internal/render"
)

// Loader produces a fresh pass result, usually by re-reading the snapshot.
type Loader func() (*planner.Result, error)

// ReloadMsg asks the model to run the loader again. The watcher sends one
// per change to a watched file.
type ReloadMsg struct {
	Path string
}

type resultMsg struct {
	result *planner.Result
	err    error
	at     time.Time
}

type viewMode int

const (
	viewTimeline viewMode = iota
	viewTable
)

// headerLines and footerLines frame the viewport.
const (
	headerLines = 2
	footerLines = 2
)

// Model holds the viewer state.
type Model struct {
	load   Loader
	source string

	result   *planner.Result
	err      error
	loadedAt time.Time
	passes   int

	mode         viewMode
	showSummary  bool
	hideExcluded bool
	filter       *render.TeamFilter
	filterInput  textinput.Model
	filtering    bool

	viewport viewport.Model
	help     help.Model
	keys     keyMap

	width  int
	height int
	ready  bool
}

// NewModel creates a viewer model. source names the snapshot in the header.
func NewModel(load Loader, source string, filter *render.TeamFilter) Model {
	ti := textinput.New()
	ti.Prompt = "team: "
	ti.Placeholder = "glob, e.g. Plat*"
	ti.CharLimit = 100
	ti.Width = 40
	if filter != nil {
		ti.SetValue(filter.String())
	}

	return Model{
		load:        load,
		source:      source,
		filter:      filter,
		filterInput: ti,
		showSummary: true,
		help:        help.New(),
		keys:        defaultKeyMap(),
	}
}

func (m Model) Init() tea.Cmd {
	return m.loadCmd()
}

func (m Model) loadCmd() tea.Cmd {
	load := m.load
	return func() tea.Msg {
		if load == nil {
			return resultMsg{err: fmt.Errorf("no loader configured"), at: time.Now()}
		}
		r, err := load()
		return resultMsg{result: r, err: err, at: time.Now()}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		bodyHeight := max(msg.Height-headerLines-footerLines, 1)
		if !m.ready {
			m.viewport = viewport.New(msg.Width, bodyHeight)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = bodyHeight
		}
		m.help.Width = msg.Width
		m.refresh()
		return m, nil

	case ReloadMsg:
		return m, m.loadCmd()

	case resultMsg:
		m.passes++
		m.loadedAt = msg.at
		m.err = msg.err
		// a failed reload keeps the last good result on screen
		if msg.err == nil && msg.result != nil {
			m.result = msg.result
		}
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		if m.filtering {
			return m.updateFilter(msg)
		}
		return m.updateKeys(msg)
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.ToggleView):
		if m.mode == viewTimeline {
			m.mode = viewTable
		} else {
			m.mode = viewTimeline
		}
		m.refresh()
		m.viewport.GotoTop()
		return m, nil
	case key.Matches(msg, m.keys.Summary):
		m.showSummary = !m.showSummary
		m.refresh()
		return m, nil
	case key.Matches(msg, m.keys.Excluded):
		m.hideExcluded = !m.hideExcluded
		m.refresh()
		return m, nil
	case key.Matches(msg, m.keys.Filter):
		m.filtering = true
		m.filterInput.Focus()
		return m, textinput.Blink
	case key.Matches(msg, m.keys.ClearFilter):
		m.filter = nil
		m.filterInput.SetValue("")
		m.refresh()
		return m, nil
	case key.Matches(msg, m.keys.Reload):
		return m, m.loadCmd()
	case key.Matches(msg, m.keys.Top):
		m.viewport.GotoTop()
		return m, nil
	case key.Matches(msg, m.keys.Bottom):
		m.viewport.GotoBottom()
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		f, err := render.NewTeamFilter(strings.TrimSpace(m.filterInput.Value()))
		if err != nil {
			m.err = err
			return m, nil
		}
		m.filter = f
		m.err = nil
		m.filtering = false
		m.filterInput.Blur()
		m.refresh()
		m.viewport.GotoTop()
		return m, nil
	case tea.KeyEsc:
		m.filtering = false
		m.filterInput.Blur()
		m.filterInput.SetValue(m.filter.String())
		return m, nil
	}

	var cmd tea.Cmd
	m.filterInput, cmd = m.filterInput.Update(msg)
	return m, cmd
}

// refresh re-renders the body into the viewport.
func (m *Model) refresh() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.body())
}

func (m Model) body() string {
	if m.result == nil {
		if m.err != nil {
			return render.Error.Render(m.err.Error())
		}
		return render.Muted.Render("loading…")
	}

	var sections []string
	if w := render.Warnings(m.result, m.width); w != "" {
		sections = append(sections, w)
	}
	switch m.mode {
	case viewTable:
		sections = append(sections, render.Table(m.result, m.filter))
	default:
		sections = append(sections, render.Timeline(m.result, render.Options{
			Width:        m.width,
			Filter:       m.filter,
			HideExcluded: m.hideExcluded,
		}))
	}
	if m.showSummary {
		sections = append(sections, render.Summary(m.result))
	}
	return strings.Join(sections, "\n\n")
}

func (m Model) View() string {
	if !m.ready {
		return "initializing…"
	}

	var b strings.Builder
	b.WriteString(m.header())
	b.WriteByte('\n')
	b.WriteString(m.viewport.View())
	b.WriteByte('\n')
	b.WriteString(m.footer())
	return b.String()
}

func (m Model) header() string {
	title := render.Title.Render("jira-planning")
	if m.source != "" {
		title += " " + render.Muted.Render(filepath.Base(m.source))
	}
	mode := "timeline"
	if m.mode == viewTable {
		mode = "table"
	}
	status := fmt.Sprintf("%s · pass %d", mode, m.passes)
	if !m.loadedAt.IsZero() {
		status += " · " + m.loadedAt.Format("15:04:05")
	}
	if f := m.filter.String(); f != "" {
		status += " · team " + f
	}
	return title + "\n" + render.Muted.Render(status)
}

func (m Model) footer() string {
	var status string
	switch {
	case m.filtering:
		status = m.filterInput.View()
	case m.err != nil:
		status = render.Error.Render("error: " + m.err.Error())
	}
	return status + "\n" + m.help.View(m.keys)
}
