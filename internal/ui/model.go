package ui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/rayvision/internal/prefs"
	"github.com/five82/rayvision/internal/rayvision"
	"github.com/five82/rayvision/internal/state"
)

// Options configures the UI.
type Options struct {
	Context   context.Context
	Poster    rayvision.Poster
	Store     *state.Store
	Domain    string
	PollTick  time.Duration
	Prefs     prefs.Prefs
	PrefsPath string
}

// Model is the root application state for Bubble Tea.
type Model struct {
	ctx       context.Context
	poster    rayvision.Poster
	store     *state.Store
	domain    string
	pollTick  time.Duration
	prefs     prefs.Prefs
	prefsPath string
	keys      keyMap

	theme    Theme
	width    int
	height   int
	ready    bool
	showHelp bool

	snapshot    state.Snapshot
	lastUpdated time.Time

	table   table.Model
	spinner spinner.Model
	pending bool   // an action is in flight
	notice  string // result of the last action
	now     func() time.Time
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	pollTick := opts.PollTick
	if pollTick <= 0 {
		pollTick = time.Second
	}

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	theme := GetTheme(opts.Prefs.Theme)
	t := table.New(
		table.WithColumns(taskColumns(80)),
		table.WithFocused(true),
		table.WithHeight(10),
		table.WithStyles(theme.TableStyles()),
	)

	return Model{
		ctx:       ctx,
		poster:    opts.Poster,
		store:     opts.Store,
		domain:    opts.Domain,
		pollTick:  pollTick,
		prefs:     opts.Prefs,
		prefsPath: prefsPath,
		keys:      DefaultKeyMap(),
		theme:     theme,
		table:     t,
		spinner:   spinner.New(spinner.WithSpinner(spinner.Dot)),
		now:       time.Now,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tickCmd(m.pollTick), m.spinner.Tick}
	if m.store != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.store))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.layoutTable()
		return m, nil

	case tickMsg:
		var cmds []tea.Cmd
		if m.store != nil {
			cmds = append(cmds, fetchSnapshotCmd(m.store))
		}
		cmds = append(cmds, tickCmd(m.pollTick))
		return m, tea.Batch(cmds...)

	case snapshotMsg:
		m.snapshot = state.Snapshot(msg)
		m.lastUpdated = m.now()
		m.refreshRows()
		return m, nil

	case actionMsg:
		m.pending = false
		if msg.err != nil {
			m.notice = fmt.Sprintf("%s %s failed: %s", msg.verb, msg.task, classifyError(msg.err))
		} else {
			m.notice = fmt.Sprintf("%s %s", msg.verb, msg.task)
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		m.theme.Styles().Box.Render(m.table.View()),
		m.renderFooter(),
	)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		// Any key closes help
		m.showHelp = false
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.table.SetStyles(m.theme.TableStyles())
		m.prefs.Theme = m.theme.Name
		if m.prefsPath != "" {
			if err := prefs.Save(m.prefsPath, m.prefs); err != nil {
				m.notice = fmt.Sprintf("save prefs failed: %v", err)
			}
		}
		return m, nil

	case key.Matches(msg, m.keys.Refresh):
		if m.store == nil {
			return m, nil
		}
		return m, fetchSnapshotCmd(m.store)

	case key.Matches(msg, m.keys.StopTask):
		return m.runAction("stopped", rayvision.StopTasks)

	case key.Matches(msg, m.keys.StartTask):
		return m.runAction("started", rayvision.StartTasks)
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

type taskAction func(ctx context.Context, p rayvision.Poster, ids ...int64) error

func (m Model) runAction(verb string, action taskAction) (tea.Model, tea.Cmd) {
	task, ok := m.selectedTask()
	if !ok || m.poster == nil || m.pending {
		return m, nil
	}
	m.pending = true
	m.notice = ""
	ctx, poster, label := m.ctx, m.poster, taskLabel(task)
	return m, func() tea.Msg {
		return actionMsg{verb: verb, task: label, err: action(ctx, poster, task.ID)}
	}
}

func (m Model) selectedTask() (rayvision.TaskSummary, bool) {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.snapshot.Tasks) {
		return rayvision.TaskSummary{}, false
	}
	return m.snapshot.Tasks[i], true
}

func (m *Model) layoutTable() {
	cols := taskColumns(m.width)
	m.table.SetColumns(cols)
	// Header, footer and the box border take four lines.
	m.table.SetHeight(max(m.height-4, 3))
	m.refreshRows()
}

func (m *Model) refreshRows() {
	cols := taskColumns(m.width)
	m.table.SetRows(taskRows(m.snapshot.Tasks, cols[1].Width, m.now()))
	n := len(m.snapshot.Tasks)
	switch {
	case n == 0:
	case m.table.Cursor() < 0:
		m.table.SetCursor(0)
	case m.table.Cursor() >= n:
		m.table.SetCursor(n - 1)
	}
}

// Messages

type tickMsg time.Time

type snapshotMsg state.Snapshot

type actionMsg struct {
	verb string
	task string
	err  error
}

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetchSnapshotCmd(store *state.Store) tea.Cmd {
	return func() tea.Msg {
		return snapshotMsg(store.Snapshot())
	}
}

// Run starts the Bubble Tea program and blocks until the user quits or the
// context is cancelled.
func Run(opts Options) error {
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(m.ctx))
	_, err := p.Run()
	if err != nil && m.ctx.Err() != nil {
		return nil
	}
	return err
}
