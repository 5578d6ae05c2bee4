package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"encore/internal/recommend"
)

// Recommender runs a recommendation request. Implemented by recommend.Engine.
type Recommender interface {
	Recommend(ctx context.Context, req recommend.Request) (*recommend.ResultSet, error)
}

// ViewState represents the current view in the TUI.
type ViewState int

const (
	LoadingView ViewState = iota
	ResultListView
	ErrorView
)

// Model represents the TUI application state.
type Model struct {
	ctx       context.Context
	view      ViewState
	engine    Recommender
	request   recommend.Request
	width     int
	height    int
	trackList list.Model
	results   *recommend.ResultSet
	err       error
	help      help.Model
	keys      keyMap
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, engine Recommender, request recommend.Request) *Model {
	return &Model{
		ctx:     ctx,
		view:    LoadingView,
		engine:  engine,
		request: request,
		help:    help.New(),
		keys:    newKeyMap(),
	}
}

// Init initializes the TUI by running the recommendation request.
func (m *Model) Init() tea.Cmd {
	return m.fetchResults()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.trackList.Width() == 0 {
			m.trackList.SetSize(msg.Width-4, msg.Height-8)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case ResultListView:
			return m.handleResultListKeys(msg)
		case ErrorView, LoadingView:
			return m.handleTerminalKeys(msg)
		}

	case resultsFetchedMsg:
		if msg.err != nil {
			m.err = msg.err
			m.view = ErrorView
			return m, nil
		}
		m.results = msg.results
		m.err = nil
		items := make([]list.Item, len(msg.results.Tracks))
		for i, track := range msg.results.Tracks {
			items[i] = trackItem{track: track}
		}
		m.trackList = list.New(items, list.NewDefaultDelegate(), 0, 0)
		m.trackList.Title = fmt.Sprintf("Recommendations (%s, %s)", msg.results.Mode, msg.results.Source)
		m.trackList.SetSize(m.width-4, m.height-8)
		m.view = ResultListView
		return m, nil
	}

	if m.view == ResultListView {
		var cmd tea.Cmd
		m.trackList, cmd = m.trackList.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case LoadingView:
		return m.renderLoading()
	case ResultListView:
		return m.renderResultList()
	case ErrorView:
		return m.renderError()
	default:
		return ""
	}
}

func (m *Model) handleResultListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "r":
		m.view = LoadingView
		return m, m.fetchResults()
	}

	var cmd tea.Cmd
	m.trackList, cmd = m.trackList.Update(msg)
	return m, cmd
}

func (m *Model) handleTerminalKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "r":
		if m.view == ErrorView {
			m.view = LoadingView
			return m, m.fetchResults()
		}
	}
	return m, nil
}

func (m *Model) fetchResults() tea.Cmd {
	return func() tea.Msg {
		results, err := m.engine.Recommend(m.ctx, m.request)
		return resultsFetchedMsg{results: results, err: err}
	}
}

func (m *Model) renderLoading() string {
	title := styles.title.Render("Fetching recommendations...")
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.quit})
	return fmt.Sprintf("%s\n\n%s", title, helpView)
}

func (m *Model) renderResultList() string {
	helpKeys := []key.Binding{m.keys.reroll, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n\n%s", m.trackList.View(), helpView)
}

func (m *Model) renderError() string {
	title := styles.err.Render(fmt.Sprintf("Request failed: %v", m.err))
	hint := styles.help.Render("Press r to retry, q to quit")
	return fmt.Sprintf("%s\n\n%s", title, hint)
}
