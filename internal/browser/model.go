// Package browser is the interactive terminal front end over the session
// gate, loader and query engine.
package browser

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/tOgg1/plasmid-browser/internal/browser/styles"
	"github.com/tOgg1/plasmid-browser/internal/loader"
	"github.com/tOgg1/plasmid-browser/internal/logging"
	"github.com/tOgg1/plasmid-browser/internal/models"
	"github.com/tOgg1/plasmid-browser/internal/query"
	"github.com/tOgg1/plasmid-browser/internal/session"
	"github.com/tOgg1/plasmid-browser/internal/viewstate"
)

type mode int

const (
	modeBrowse mode = iota
	modeSearch
	modeSignIn
)

// Config configures the browser model.
type Config struct {
	// ClientID is shown in the sign-in prompt.
	ClientID string
	// Theme is a styles theme name.
	Theme string
	// PageSize defaults to query.PageSize.
	PageSize int
	// Credentials signs in immediately when Token is set.
	Credentials session.Credentials
}

// Model is the bubbletea model for the plasmid browser.
type Model struct {
	gate   *session.Gate
	loader *loader.Loader
	state  viewstate.State
	logger zerolog.Logger

	pageSize int
	clientID string
	theme    styles.Theme
	initial  session.Credentials

	mode       mode
	search     textinput.Model
	tokenInput textinput.Model
	signInErr  string
	spinner    spinner.Model
	keys       keyMap
	help       help.Model
	showHelp   bool

	width  int
	height int

	ctx    context.Context
	cancel context.CancelFunc
}

type datasetLoadedMsg struct {
	ticket  loader.Ticket
	dataset models.Dataset
	err     error
}

// NewModel creates a browser over gate and ldr.
func NewModel(gate *session.Gate, ldr *loader.Loader, cfg Config) *Model {
	if cfg.PageSize <= 0 {
		cfg.PageSize = query.PageSize
	}

	search := textinput.New()
	search.Prompt = "Search: "
	search.Placeholder = "e.g. NRC4 mCherry, kan, box A1"
	search.CharLimit = 256

	tokenInput := textinput.New()
	tokenInput.Prompt = "ID token: "
	tokenInput.Placeholder = "paste the id token from your identity provider"
	tokenInput.EchoMode = textinput.EchoPassword
	tokenInput.EchoCharacter = '•'

	ctx, cancel := context.WithCancel(context.Background())
	return &Model{
		gate:       gate,
		loader:     ldr,
		state:      viewstate.New(),
		logger:     logging.Component("browser"),
		pageSize:   cfg.PageSize,
		clientID:   strings.TrimSpace(cfg.ClientID),
		theme:      styles.Lookup(cfg.Theme),
		initial:    cfg.Credentials,
		search:     search,
		tokenInput: tokenInput,
		spinner:    spinner.New(spinner.WithSpinner(spinner.Dot)),
		keys:       newKeyMap(),
		help:       help.New(),
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Run starts the browser in the alternate screen and blocks until it exits.
func Run(gate *session.Gate, ldr *loader.Loader, cfg Config) error {
	model := NewModel(gate, ldr, cfg)
	defer model.Close()

	program := tea.NewProgram(model, tea.WithAltScreen())
	_, err := program.Run()
	return err
}

// Close cancels in-flight loads.
func (m *Model) Close() {
	if m != nil && m.cancel != nil {
		m.cancel()
	}
}

func (m *Model) Init() tea.Cmd {
	if strings.TrimSpace(m.initial.Token) != "" {
		if cmd := m.completeSignIn(m.initial); cmd != nil {
			return cmd
		}
	}
	if _, ok := m.gate.Credentials(); ok {
		return nil
	}
	return m.openSignIn()
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = typed.Width
		m.height = typed.Height
		m.help.Width = typed.Width
		return m, nil
	case datasetLoadedMsg:
		m.loader.Commit(typed.ticket, typed.dataset, typed.err)
		m.clampPage()
		return m, nil
	case spinner.TickMsg:
		if !m.loader.Status().Loading() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(typed)
		return m, cmd
	case tea.KeyMsg:
		switch m.mode {
		case modeSignIn:
			return m, m.updateSignIn(typed)
		case modeSearch:
			return m, m.updateSearch(typed)
		default:
			return m, m.updateBrowse(typed)
		}
	}

	switch m.mode {
	case modeSignIn:
		var cmd tea.Cmd
		m.tokenInput, cmd = m.tokenInput.Update(msg)
		return m, cmd
	case modeSearch:
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) updateBrowse(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.quit):
		m.Close()
		return tea.Quit
	case key.Matches(msg, m.keys.toggleHelp):
		m.showHelp = !m.showHelp
		m.help.ShowAll = m.showHelp
		return nil
	case key.Matches(msg, m.keys.search):
		m.mode = modeSearch
		m.search.SetValue(m.state.Search)
		m.search.CursorEnd()
		return m.search.Focus()
	case key.Matches(msg, m.keys.signIn):
		return m.openSignIn()
	case key.Matches(msg, m.keys.reload):
		return m.startLoad()
	}

	snap := m.snapshot()
	switch {
	case key.Matches(msg, m.keys.nextMember):
		m.state.SetMember(viewstate.Cycle(snap.MemberOptions, m.state.Member, 1))
	case key.Matches(msg, m.keys.prevMember):
		m.state.SetMember(viewstate.Cycle(snap.MemberOptions, m.state.Member, -1))
	case key.Matches(msg, m.keys.nextWorksheet):
		m.state.SetWorksheet(viewstate.Cycle(snap.WorksheetOptions, m.state.Worksheet, 1))
	case key.Matches(msg, m.keys.prevWorksheet):
		m.state.SetWorksheet(viewstate.Cycle(snap.WorksheetOptions, m.state.Worksheet, -1))
	case key.Matches(msg, m.keys.nextSort):
		m.cycleSort(1)
	case key.Matches(msg, m.keys.prevSort):
		m.cycleSort(-1)
	case key.Matches(msg, m.keys.sortColumn):
		idx := int(msg.String()[0] - '1')
		if idx >= 0 && idx < len(models.Columns) {
			m.state.SetSort(models.Columns[idx].Key)
		}
	case key.Matches(msg, m.keys.nextPage):
		m.state.NextPage(snap.PageCount)
	case key.Matches(msg, m.keys.prevPage):
		m.state.PrevPage()
	case key.Matches(msg, m.keys.firstPage):
		m.state.FirstPage()
	case key.Matches(msg, m.keys.lastPage):
		m.state.LastPage(snap.PageCount)
	case key.Matches(msg, m.keys.clearFilters):
		m.state.SetSearch("")
		m.state.SetMember(query.All)
	}
	m.clampPage()
	return nil
}

func (m *Model) updateSearch(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "ctrl+c":
		m.Close()
		return tea.Quit
	case "enter", "esc", "tab":
		m.mode = modeBrowse
		m.search.Blur()
		return nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if value := m.search.Value(); value != m.state.Search {
		m.state.SetSearch(value)
		m.clampPage()
	}
	return cmd
}

func (m *Model) updateSignIn(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "ctrl+c":
		m.Close()
		return tea.Quit
	case "esc":
		if _, ok := m.gate.Credentials(); !ok {
			return nil
		}
		m.gate.CancelSignIn()
		m.closeSignIn()
		return nil
	case "enter":
		creds := session.Credentials{Token: m.tokenInput.Value()}
		if strings.TrimSpace(creds.Token) == "" {
			m.signInErr = session.ErrEmptyToken.Error()
			return nil
		}
		return m.completeSignIn(creds)
	}
	var cmd tea.Cmd
	m.tokenInput, cmd = m.tokenInput.Update(msg)
	return cmd
}

func (m *Model) openSignIn() tea.Cmd {
	m.gate.BeginSignIn()
	m.mode = modeSignIn
	m.signInErr = ""
	m.tokenInput.Reset()
	m.search.Blur()
	return m.tokenInput.Focus()
}

func (m *Model) closeSignIn() {
	m.mode = modeBrowse
	m.signInErr = ""
	m.tokenInput.Reset()
	m.tokenInput.Blur()
}

// completeSignIn hands credentials to the gate and loads when the token is
// new. Re-submitting the held token closes the prompt without a reload.
func (m *Model) completeSignIn(creds session.Credentials) tea.Cmd {
	changed, err := m.gate.Complete(creds)
	if err != nil {
		m.signInErr = err.Error()
		m.mode = modeSignIn
		return nil
	}
	m.closeSignIn()
	if !changed {
		return nil
	}
	held, _ := m.gate.Credentials()
	m.logger.Info().Str("identity", held.Identity).Msg("signed in")
	return m.startLoad()
}

// startLoad begins a new load generation for the held token. Results from
// older generations are discarded on arrival.
func (m *Model) startLoad() tea.Cmd {
	creds, ok := m.gate.Credentials()
	if !ok {
		return nil
	}
	ticket := m.loader.Begin()
	return tea.Batch(m.spinner.Tick, m.fetchCmd(ticket, creds.Token))
}

func (m *Model) fetchCmd(ticket loader.Ticket, token string) tea.Cmd {
	ctx := m.ctx
	ldr := m.loader
	return func() tea.Msg {
		ds, err := ldr.Fetch(ctx, token)
		return datasetLoadedMsg{ticket: ticket, dataset: ds, err: err}
	}
}

func (m *Model) cycleSort(step int) {
	options := sortOptions()
	field, dir, err := viewstate.ParseSortOption(viewstate.Cycle(options, m.state.SortOption(), step))
	if err != nil {
		return
	}
	m.state.SetSortOrder(field, dir)
}

func (m *Model) snapshot() viewstate.Snapshot {
	ds, _ := m.loader.Snapshot()
	return m.state.View(ds, m.pageSize)
}

// clampPage keeps the page inside the page count of the current dataset and
// filters. Call it after anything that can shrink the result set.
func (m *Model) clampPage() {
	ds, _ := m.loader.Snapshot()
	m.state.Clamp(query.Derive(ds, m.state.Params(), m.pageSize).PageCount)
}

// sortOptions lists every column in both directions, as "field:dir".
func sortOptions() []string {
	out := make([]string, 0, len(models.Columns)*2)
	for _, col := range models.Columns {
		out = append(out, col.Key+":"+string(query.Asc), col.Key+":"+string(query.Desc))
	}
	return out
}

// State returns the current view state.
func (m *Model) State() viewstate.State {
	return m.state
}

var _ tea.Model = (*Model)(nil)
