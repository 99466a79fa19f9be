package flows_test

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	apperrors "github.com/kelsos/atom-tasks/internal/errors"
	"github.com/kelsos/atom-tasks/internal/flows"
	"github.com/kelsos/atom-tasks/internal/models"
	"github.com/kelsos/atom-tasks/internal/notify"
	"github.com/kelsos/atom-tasks/internal/session"
	"github.com/kelsos/atom-tasks/internal/storage"
	"github.com/kelsos/atom-tasks/internal/testutil"
)

type loginFixture struct {
	flow     *flows.LoginFlow
	users    *testutil.FakeUsers
	sessions *session.Store
	dialogs  *testutil.Dialogs
	notes    *testutil.Notifications
	nav      *testutil.Navigator
}

func newLoginFixture(users *testutil.FakeUsers) *loginFixture {
	fx := &loginFixture{
		users:    users,
		sessions: session.NewStore(storage.NewMemoryStore()),
		dialogs:  &testutil.Dialogs{},
		notes:    &testutil.Notifications{},
		nav:      &testutil.Navigator{},
	}
	fx.flow = flows.NewLoginFlow(flows.LoginDeps{
		Users:     fx.users,
		Sessions:  fx.sessions,
		Dialogs:   fx.dialogs,
		Notifier:  fx.notes,
		Navigator: fx.nav,
	})
	return fx
}

func TestLogin_ExistingUser(t *testing.T) {
	fx := newLoginFixture(&testutil.FakeUsers{Lookup: models.UserLookup{ID: "user123", Exists: true}})

	res, err := fx.flow.Submit(context.Background(), "test@example.com")
	if err != nil {
		t.Fatal(err)
	}

	want := session.Session{UserID: "user123", Email: "test@example.com"}
	if got := fx.sessions.Get(); got == nil || *got != want {
		t.Errorf("session = %+v, want %+v", got, want)
	}
	if fx.nav.Last() != "/tasks/user123" || res.Path != "/tasks/user123" || res.Outcome != flows.LoginExisting {
		t.Errorf("unexpected result %+v, navigation %v", res, fx.nav.Paths)
	}
	if fx.flow.State() != flows.LoginFound {
		t.Errorf("state = %s", fx.flow.State())
	}
	if len(fx.dialogs.ConfirmRequests) != 0 {
		t.Error("existing user must not be asked to confirm")
	}
}

func TestLogin_CreatesUserOnConfirm(t *testing.T) {
	tests := []struct {
		name    string
		findErr error
	}{
		{"exists false", nil},
		{"http not found", apperrors.NewOperationError("find user", apperrors.KindNotFound, "User not found", nil).WithStatus(http.StatusNotFound)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := newLoginFixture(&testutil.FakeUsers{
				Lookup:    models.UserLookup{Exists: false},
				FindErr:   tt.findErr,
				CreatedID: "new-user-123",
			})
			fx.dialogs.Confirms = []bool{true}

			res, err := fx.flow.Submit(context.Background(), "new@example.com")
			if err != nil {
				t.Fatal(err)
			}
			if res.Outcome != flows.LoginCreated {
				t.Errorf("outcome = %v", res.Outcome)
			}
			if id, _ := fx.sessions.UserID(); id != "new-user-123" {
				t.Errorf("session user = %q", id)
			}
			if email, _ := fx.sessions.Email(); email != "new@example.com" {
				t.Errorf("session email = %q", email)
			}
			if fx.nav.Last() != "/tasks/new-user-123" {
				t.Errorf("navigation = %v", fx.nav.Paths)
			}
			if len(fx.users.CreateCalls) != 1 || fx.users.CreateCalls[0] != "new@example.com" {
				t.Errorf("create calls = %v", fx.users.CreateCalls)
			}
		})
	}
}

func TestLogin_DeclineCreation(t *testing.T) {
	fx := newLoginFixture(&testutil.FakeUsers{Lookup: models.UserLookup{Exists: false}})
	fx.dialogs.Confirms = []bool{false}

	res, err := fx.flow.Submit(context.Background(), "new@example.com")
	if err != nil {
		t.Fatal(err)
	}
	if res.Outcome != flows.LoginDeclined || fx.flow.State() != flows.LoginIdle {
		t.Errorf("unexpected result %+v state %s", res, fx.flow.State())
	}
	if len(fx.users.CreateCalls) != 0 || fx.sessions.IsAuthenticated() || len(fx.nav.Paths) != 0 {
		t.Error("declining must not create a user, a session or navigate")
	}
}

func TestLogin_Failures(t *testing.T) {
	tests := []struct {
		name    string
		users   *testutil.FakeUsers
		confirm bool
		wantMsg string
	}{
		{
			name:    "transport error",
			users:   &testutil.FakeUsers{FindErr: apperrors.NewOperationError("find user", apperrors.KindTransport, "", errors.New("connection refused"))},
			wantMsg: flows.MsgVerifyFailed,
		},
		{
			name:    "server error",
			users:   &testutil.FakeUsers{FindErr: apperrors.NewOperationError("find user", apperrors.KindTransport, "boom", nil).WithStatus(500)},
			wantMsg: flows.MsgVerifyFailed,
		},
		{
			name:    "application error",
			users:   &testutil.FakeUsers{FindErr: apperrors.Application("find user", "Lookup disabled", 200)},
			wantMsg: "Lookup disabled",
		},
		{
			name:    "create fails",
			users:   &testutil.FakeUsers{CreateErr: apperrors.Application("create user", "nope", 200)},
			confirm: true,
			wantMsg: flows.MsgCreateFailed,
		},
		{
			name:    "create returns no id",
			users:   &testutil.FakeUsers{},
			confirm: true,
			wantMsg: flows.MsgCreateFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := newLoginFixture(tt.users)
			fx.dialogs.Confirms = []bool{tt.confirm}

			if _, err := fx.flow.Submit(context.Background(), "test@example.com"); err == nil {
				t.Fatal("expected error")
			}
			last, ok := fx.notes.Last()
			if !ok || last.Level != notify.Error || last.Message != tt.wantMsg {
				t.Errorf("notification = %+v, want %q", last, tt.wantMsg)
			}
			if fx.flow.State() != flows.LoginIdle {
				t.Errorf("state = %s, want %s", fx.flow.State(), flows.LoginIdle)
			}
			if fx.flow.Busy() {
				t.Error("input must be re-enabled after a failure")
			}
			if fx.sessions.IsAuthenticated() {
				t.Error("failure must not leave a session")
			}
		})
	}
}

func TestLogin_InvalidEmailMakesNoCall(t *testing.T) {
	for _, email := range []string{"", "   ", "not-an-email", "a@"} {
		fx := newLoginFixture(&testutil.FakeUsers{})
		_, err := fx.flow.Submit(context.Background(), email)
		if !apperrors.IsKind(err, apperrors.KindValidation) {
			t.Errorf("%q: expected validation error, got %v", email, err)
		}
		if len(fx.users.FindCalls) != 0 {
			t.Errorf("%q: lookup must not be called", email)
		}
	}
}

func TestLogin_RejectsOverlappingSubmit(t *testing.T) {
	users := &testutil.FakeUsers{
		Lookup: models.UserLookup{ID: "user123", Exists: true},
		Block:  make(chan struct{}),
	}
	fx := newLoginFixture(users)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if _, err := fx.flow.Submit(context.Background(), "test@example.com"); err != nil {
			t.Errorf("first submit failed: %v", err)
		}
	}()

	deadline := time.Now().Add(2 * time.Second)
	for !fx.flow.Busy() {
		if time.Now().After(deadline) {
			t.Fatal("first submit never started")
		}
		time.Sleep(time.Millisecond)
	}

	if _, err := fx.flow.Submit(context.Background(), "test@example.com"); !errors.Is(err, apperrors.ErrBusy) {
		t.Errorf("expected ErrBusy, got %v", err)
	}

	close(users.Block)
	wg.Wait()

	if len(users.FindCalls) != 1 {
		t.Errorf("expected one lookup, got %d", len(users.FindCalls))
	}
}

func TestLogin_EnterClearsSession(t *testing.T) {
	fx := newLoginFixture(&testutil.FakeUsers{})
	_ = fx.sessions.Set("user123", "test@example.com")

	if err := fx.flow.Enter(); err != nil {
		t.Fatal(err)
	}
	if fx.sessions.IsAuthenticated() {
		t.Fatal("entering login must clear the session")
	}
}
