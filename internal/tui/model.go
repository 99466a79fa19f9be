package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/kelsos/atom-tasks/internal/flows"
	"github.com/kelsos/atom-tasks/internal/logger"
	"github.com/kelsos/atom-tasks/internal/models"
	"github.com/kelsos/atom-tasks/internal/notify"
	"github.com/kelsos/atom-tasks/internal/router"
	"github.com/kelsos/atom-tasks/internal/theme"
)

const toastTTL = 4 * time.Second

type view int

const (
	viewLogin view = iota
	viewTasks
)

// Deps is what the UI needs from the composition root
type Deps struct {
	Router    *router.Router
	Sessions  router.SessionReader
	Theme     *theme.Manager
	StartPath string

	NewLogin func(flows.Dialogs, notify.Notifier, router.Navigator) *flows.LoginFlow
	NewTasks func(flows.Dialogs, notify.Notifier, router.Navigator) *flows.TaskListFlow
}

type toast struct {
	n       notify.Notification
	expires time.Time
}

type Model struct {
	deps   Deps
	bridge *Bridge
	guard  *router.Guard
	ctx    context.Context
	cancel context.CancelFunc

	view  view
	route router.Route

	login    *flows.LoginFlow
	email    textinput.Model
	loginErr string

	tasks       *flows.TaskListFlow
	unsubscribe func()
	items       []models.Task
	cursor      int

	dialogs []*dialog
	toasts  []toast

	styles         styles
	unsubscribeThm func()
	spinner        spinner.Model
	width          int
	height         int
	quit           bool
	now            func() time.Time
}

func NewModel(deps Deps, bridge *Bridge) *Model {
	ctx, cancel := context.WithCancel(context.Background())

	email := textinput.New()
	email.Placeholder = "you@example.com"
	email.CharLimit = 254
	email.Width = 40
	email.Prompt = "Email: "

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := &Model{
		deps:    deps,
		bridge:  bridge,
		ctx:     ctx,
		cancel:  cancel,
		email:   email,
		spinner: sp,
		styles:  newStyles(deps.Theme.Palette()),
		width:   80,
		height:  24,
		now:     time.Now,
	}

	// Guard notices are raised inside Update; they go straight to the toast
	// list instead of through the bridge.
	m.guard = router.NewGuard(deps.Sessions, notify.Func(m.pushToast))
	m.login = deps.NewLogin(bridge, bridge, bridge)
	m.unsubscribeThm = deps.Theme.Subscribe(func(bool) {
		m.styles = newStyles(m.deps.Theme.Palette())
	})
	return m
}

func (m *Model) Init() tea.Cmd {
	start := m.deps.StartPath
	if start == "" {
		start = router.LoginPath
	}
	return tea.Batch(
		m.spinner.Tick,
		func() tea.Msg { return navigateMsg{start} },
	)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m, m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		for _, d := range m.dialogs {
			d.resize(msg.Width)
		}

	case navigateMsg:
		return m, m.navigate(msg.path)

	case notifyMsg:
		m.pushToast(msg.n)

	case confirmRequestMsg:
		m.dialogs = append(m.dialogs, newConfirmDialog(msg.id, msg.req))

	case formRequestMsg:
		d := newFormDialog(msg.id, msg.req, m.width)
		m.dialogs = append(m.dialogs, d)
		if len(m.dialogs) == 1 {
			return m, d.focusCmd()
		}

	case loginDoneMsg:
		m.handleLoginDone(msg.err)

	case tasksChangedMsg:
		m.refreshItems()

	case taskOpDoneMsg:
		m.refreshItems()
		if msg.err != nil {
			logger.Debug("Task operation finished with error: %v", msg.err)
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.pruneToasts()
		return m, cmd
	}

	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if msg.String() == "ctrl+c" {
		return m.quitCmd()
	}

	if len(m.dialogs) > 0 {
		return m.updateDialog(msg)
	}

	switch m.view {
	case viewLogin:
		return m.handleLoginKey(msg)
	case viewTasks:
		return m.handleTasksKey(msg)
	}
	return nil
}

func (m *Model) quitCmd() tea.Cmd {
	m.quit = true
	return tea.Quit
}

// navigate applies the guard and switches views
func (m *Model) navigate(path string) tea.Cmd {
	route := m.deps.Router.Resolve(path)
	if d := m.guard.CanActivate(route); !d.Allow {
		route = m.deps.Router.Resolve(d.Redirect)
	}

	logger.Debug("Navigating to %s", route.Path)
	m.route = route
	m.closeTasks()

	switch route.Name {
	case router.RouteTasks:
		return m.enterTasks(route)
	default:
		return m.enterLogin()
	}
}

func (m *Model) enterLogin() tea.Cmd {
	m.view = viewLogin
	m.loginErr = ""
	if err := m.login.Enter(); err != nil {
		logger.Error("Failed to reset login: %v", err)
	}
	m.email.SetValue("")
	return m.email.Focus()
}

func (m *Model) enterTasks(route router.Route) tea.Cmd {
	m.view = viewTasks
	m.email.Blur()
	m.items = nil
	m.cursor = 0

	flow := m.deps.NewTasks(m.bridge, m.bridge, m.bridge)
	m.tasks = flow
	m.unsubscribe = flow.OnChange(func() { m.bridge.send(tasksChangedMsg{}) })

	ctx := m.ctx
	return func() tea.Msg {
		return taskOpDoneMsg{err: flow.Activate(ctx, route)}
	}
}

func (m *Model) closeTasks() {
	if m.unsubscribe != nil {
		m.unsubscribe()
		m.unsubscribe = nil
	}
	if m.tasks != nil {
		m.tasks.Close()
		m.tasks = nil
	}
}

// shutdown releases everything the model holds once the program exits
func (m *Model) shutdown() {
	m.closeTasks()
	if m.unsubscribeThm != nil {
		m.unsubscribeThm()
	}
	m.cancel()
}

func (m *Model) pushToast(n notify.Notification) {
	m.toasts = append(m.toasts, toast{n: n, expires: m.now().Add(toastTTL)})
	if len(m.toasts) > 3 {
		m.toasts = m.toasts[len(m.toasts)-3:]
	}
}

func (m *Model) pruneToasts() {
	now := m.now()
	kept := m.toasts[:0]
	for _, t := range m.toasts {
		if now.Before(t.expires) {
			kept = append(kept, t)
		}
	}
	m.toasts = kept
}

func (m *Model) toggleTheme() {
	if _, err := m.deps.Theme.Toggle(); err != nil {
		m.pushToast(notify.Notification{Level: notify.Error, Message: "Could not save the theme preference."})
	}
}

func (m *Model) View() string {
	if m.quit {
		return "Bye!\n"
	}

	var s strings.Builder

	switch m.view {
	case viewLogin:
		s.WriteString(m.loginView())
	case viewTasks:
		s.WriteString(m.tasksView())
	}

	if len(m.dialogs) > 0 {
		s.WriteString("\n\n")
		s.WriteString(m.dialogs[0].view(m.styles))
	}

	if len(m.toasts) > 0 {
		s.WriteString("\n\n")
		for _, t := range m.toasts {
			s.WriteString(m.styles.toasts[t.n.Level].Render(t.n.Message))
			s.WriteString("\n")
		}
	}

	return s.String()
}

func (m *Model) themeLabel() string {
	if m.deps.Theme.IsDark() {
		return "dark"
	}
	return "light"
}

func (m *Model) footer(keys string) string {
	return m.styles.footer.Render(fmt.Sprintf("%s | theme: %s", keys, m.themeLabel()))
}
