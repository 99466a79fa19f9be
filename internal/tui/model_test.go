package tui

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kelsos/atom-tasks/internal/flows"
	"github.com/kelsos/atom-tasks/internal/models"
	"github.com/kelsos/atom-tasks/internal/notify"
	"github.com/kelsos/atom-tasks/internal/router"
	"github.com/kelsos/atom-tasks/internal/session"
	"github.com/kelsos/atom-tasks/internal/storage"
	"github.com/kelsos/atom-tasks/internal/testutil"
	"github.com/kelsos/atom-tasks/internal/theme"
)

type fixture struct {
	model    *Model
	bridge   *Bridge
	sessions *session.Store
	local    storage.Local
	users    *testutil.FakeUsers
	tasks    *testutil.FakeTasks
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	fx := &fixture{
		local:  storage.NewMemoryStore(),
		users:  &testutil.FakeUsers{Lookup: models.UserLookup{ID: "user123", Exists: true}},
		tasks:  testutil.NewFakeTasks(),
		bridge: NewBridge(),
	}
	fx.sessions = session.NewStore(fx.local)

	var tasks []models.Task
	_ = json.Unmarshal([]byte(`[
		{"id": "1", "userId": "user123", "title": "Older", "created_at": "2024-01-01T10:00:00Z"},
		{"id": "2", "userId": "user123", "title": "Newer", "created_at": {"seconds": 1717200000, "nanoseconds": 0}}
	]`), &tasks)
	for _, task := range tasks {
		fx.tasks.AddTask(task)
	}

	deps := Deps{
		Router:   router.New(),
		Sessions: fx.sessions,
		Theme:    theme.NewManager(fx.local, func() bool { return false }),
		NewLogin: func(d flows.Dialogs, n notify.Notifier, nav router.Navigator) *flows.LoginFlow {
			return flows.NewLoginFlow(flows.LoginDeps{Users: fx.users, Sessions: fx.sessions, Dialogs: d, Notifier: n, Navigator: nav})
		},
		NewTasks: func(d flows.Dialogs, n notify.Notifier, nav router.Navigator) *flows.TaskListFlow {
			return flows.NewTaskListFlow(flows.TaskListDeps{Tasks: fx.tasks, Sessions: fx.sessions, Dialogs: d, Notifier: n, Navigator: nav})
		},
	}
	fx.model = NewModel(deps, fx.bridge)
	t.Cleanup(fx.model.shutdown)
	return fx
}

// send feeds msg to the model and runs the resulting command once, feeding
// back flow results. Cursor blink commands are left to time out.
func (fx *fixture) send(msg tea.Msg) {
	_, cmd := fx.model.Update(msg)
	if cmd == nil {
		return
	}

	out := make(chan tea.Msg, 1)
	go func() { out <- cmd() }()

	select {
	case res := <-out:
		switch res.(type) {
		case loginDoneMsg, taskOpDoneMsg, navigateMsg:
			fx.model.Update(res)
		}
	case <-time.After(2 * time.Second):
	}
}

func keys(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestNavigate_GuardRedirectsWithoutSession(t *testing.T) {
	fx := newFixture(t)

	fx.send(navigateMsg{"/tasks/user123"})

	if fx.model.view != viewLogin || fx.model.route.Path != router.LoginPath {
		t.Fatalf("expected login view, got %v %s", fx.model.view, fx.model.route.Path)
	}
	if len(fx.model.toasts) != 1 || fx.model.toasts[0].n.Message != router.MsgInvalidSession {
		t.Fatalf("unexpected toasts %+v", fx.model.toasts)
	}
}

func TestLogin_SubmitStoresSession(t *testing.T) {
	fx := newFixture(t)
	fx.send(navigateMsg{"/login"})

	fx.send(keys("test@example.com"))
	fx.send(tea.KeyMsg{Type: tea.KeyEnter})

	want := session.Session{UserID: "user123", Email: "test@example.com"}
	if got := fx.sessions.Get(); got == nil || *got != want {
		t.Fatalf("session = %+v", got)
	}
}

func TestLogin_ShowsValidationError(t *testing.T) {
	fx := newFixture(t)
	fx.send(navigateMsg{"/login"})

	fx.send(keys("not-an-email"))
	fx.send(tea.KeyMsg{Type: tea.KeyEnter})

	if fx.model.loginErr == "" {
		t.Fatal("expected inline validation error")
	}
	if len(fx.users.FindCalls) != 0 {
		t.Error("invalid email must not be looked up")
	}
}

func TestTasks_LoadAndToggle(t *testing.T) {
	fx := newFixture(t)
	_ = fx.sessions.Set("user123", "test@example.com")

	fx.send(navigateMsg{"/tasks/user123"})
	if fx.model.view != viewTasks || len(fx.model.items) != 2 {
		t.Fatalf("expected two tasks, got view %v items %d", fx.model.view, len(fx.model.items))
	}
	if fx.model.items[0].ID != "2" {
		t.Errorf("expected newest first, got %s", fx.model.items[0].ID)
	}

	fx.send(keys("j"))
	fx.send(keys("x"))

	if fx.model.cursor != 1 || !fx.model.items[1].Completed {
		t.Errorf("toggle not applied: cursor %d items %+v", fx.model.cursor, fx.model.items)
	}
}

func TestTheme_ToggleKey(t *testing.T) {
	fx := newFixture(t)
	fx.send(navigateMsg{"/login"})

	fx.send(tea.KeyMsg{Type: tea.KeyCtrlT})

	if !fx.model.deps.Theme.IsDark() {
		t.Fatal("expected dark theme after toggle")
	}
	if v, _, _ := fx.local.GetItem(theme.StorageKey); v != "true" {
		t.Errorf("stored %q", v)
	}
}

func TestConfirmDialog(t *testing.T) {
	fx := newFixture(t)
	fx.send(navigateMsg{"/login"})

	id, p := fx.bridge.confirms.Register()
	fx.send(confirmRequestMsg{id: id, req: flows.ConfirmRequest{Title: "Create account?"}})
	if len(fx.model.dialogs) != 1 {
		t.Fatal("dialog not shown")
	}

	fx.send(keys("y"))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if ok, err := p.Await(ctx); err != nil || !ok {
		t.Fatalf("confirm = %v, %v", ok, err)
	}
	if len(fx.model.dialogs) != 0 {
		t.Error("dialog not closed")
	}
}

func TestFormDialog(t *testing.T) {
	fx := newFixture(t)

	id, p := fx.bridge.forms.Register()
	fx.send(formRequestMsg{id: id, req: flows.TaskFormRequest{Heading: "New task"}})

	fx.send(tea.KeyMsg{Type: tea.KeyCtrlS})
	if fx.model.dialogs[0].err == "" {
		t.Fatal("empty form must not be accepted")
	}

	fx.send(keys("Buy milk"))
	fx.send(tea.KeyMsg{Type: tea.KeyTab})
	fx.send(keys("2 liters"))
	fx.send(tea.KeyMsg{Type: tea.KeyCtrlS})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	answer, err := p.Await(ctx)
	if err != nil || !answer.ok {
		t.Fatalf("form = %+v, %v", answer, err)
	}
	if answer.input != (models.TaskInput{Title: "Buy milk", Description: "2 liters"}) {
		t.Errorf("unexpected input %+v", answer.input)
	}
}

func TestToastsExpire(t *testing.T) {
	fx := newFixture(t)
	now := time.Now()
	fx.model.now = func() time.Time { return now }

	fx.model.Update(notifyMsg{notify.Notification{Level: notify.Success, Message: "Task created successfully"}})
	if len(fx.model.toasts) != 1 {
		t.Fatal("toast not shown")
	}

	now = now.Add(toastTTL + time.Second)
	fx.model.pruneToasts()
	if len(fx.model.toasts) != 0 {
		t.Error("toast did not expire")
	}
}
