package flows

import (
	"context"
	"fmt"
	"strings"
	"sync"

	apperrors "github.com/kelsos/atom-tasks/internal/errors"
	"github.com/kelsos/atom-tasks/internal/logger"
	"github.com/kelsos/atom-tasks/internal/models"
	"github.com/kelsos/atom-tasks/internal/notify"
	"github.com/kelsos/atom-tasks/internal/router"
)

const (
	MsgVerifyFailed = "Could not verify the email. Please try again."
	MsgCreateFailed = "Could not create the user. Please try again."
)

type LoginState int

const (
	LoginIdle LoginState = iota
	LoginSubmitting
	LoginFound
	LoginNotFound
	LoginError
)

func (s LoginState) String() string {
	switch s {
	case LoginSubmitting:
		return "submitting"
	case LoginFound:
		return "found"
	case LoginNotFound:
		return "not_found"
	case LoginError:
		return "error"
	default:
		return "idle"
	}
}

type LoginOutcome int

const (
	// LoginExisting means an existing user was found
	LoginExisting LoginOutcome = iota + 1
	// LoginCreated means a new user was created after confirmation
	LoginCreated
	// LoginDeclined means the user chose not to create an account
	LoginDeclined
)

type LoginResult struct {
	Outcome LoginOutcome
	UserID  string
	Path    string
}

type LoginDeps struct {
	Users     UserAPI
	Sessions  SessionStore
	Dialogs   Dialogs
	Notifier  notify.Notifier
	Navigator router.Navigator
}

// LoginFlow resolves an email to a user, creating one on confirmation, and
// opens that user's task view.
type LoginFlow struct {
	deps     LoginDeps
	controls controls

	mu    sync.Mutex
	state LoginState
}

func NewLoginFlow(deps LoginDeps) *LoginFlow {
	if deps.Notifier == nil {
		deps.Notifier = notify.Discard
	}
	return &LoginFlow{deps: deps}
}

// Enter is called when the login screen is shown. Any existing session is
// discarded.
func (f *LoginFlow) Enter() error {
	f.setState(LoginIdle)
	if err := f.deps.Sessions.Clear(); err != nil {
		return fmt.Errorf("failed to clear session on login: %w", err)
	}
	return nil
}

func (f *LoginFlow) State() LoginState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Busy reports whether the email input is disabled
func (f *LoginFlow) Busy() bool {
	return f.controls.isBusy(ControlEmail)
}

func (f *LoginFlow) setState(s LoginState) {
	f.mu.Lock()
	f.state = s
	f.mu.Unlock()
}

// Submit resolves email. Invalid input and a second submit while one is in
// flight are rejected before any call is made.
func (f *LoginFlow) Submit(ctx context.Context, email string) (*LoginResult, error) {
	email = strings.TrimSpace(email)
	if err := checkInput("login", models.EmailRequest{Email: email}); err != nil {
		return nil, err
	}

	release, err := f.controls.acquire(ControlEmail)
	if err != nil {
		return nil, err
	}
	defer release()

	f.setState(LoginSubmitting)
	logger.Info("Looking up user %s", email)

	lookup, err := f.deps.Users.FindByEmail(ctx, email)
	switch {
	case err == nil && lookup.Exists:
		return f.establish(LoginExisting, lookup.ID, email)
	case err == nil, apperrors.IsNotFound(err):
		return f.offerCreate(ctx, email)
	case apperrors.IsKind(err, apperrors.KindApplication):
		f.fail(err, serverMessage(err, MsgVerifyFailed))
		return nil, err
	default:
		f.fail(err, MsgVerifyFailed)
		return nil, err
	}
}

func (f *LoginFlow) offerCreate(ctx context.Context, email string) (*LoginResult, error) {
	f.setState(LoginNotFound)

	confirmed, err := f.deps.Dialogs.Confirm(ctx, ConfirmRequest{
		Title:       "Create account?",
		Message:     fmt.Sprintf("No account exists for %s. Do you want to create one?", email),
		ConfirmText: "Create",
		CancelText:  "Cancel",
	})
	if err != nil {
		f.setState(LoginIdle)
		return nil, fmt.Errorf("confirmation dialog failed: %w", err)
	}
	if !confirmed {
		logger.Debug("Account creation declined for %s", email)
		f.setState(LoginIdle)
		return &LoginResult{Outcome: LoginDeclined}, nil
	}

	f.setState(LoginSubmitting)
	id, err := f.deps.Users.Create(ctx, email)
	if err != nil {
		f.fail(err, MsgCreateFailed)
		return nil, err
	}
	if id == "" {
		err := apperrors.Application("create user", "no user id returned", 0)
		f.fail(err, MsgCreateFailed)
		return nil, err
	}

	return f.establish(LoginCreated, id, email)
}

func (f *LoginFlow) establish(outcome LoginOutcome, userID, email string) (*LoginResult, error) {
	if err := f.deps.Sessions.Set(userID, email); err != nil {
		f.fail(err, MsgVerifyFailed)
		return nil, err
	}

	path := router.TasksPath(userID)
	f.setState(LoginFound)
	logger.Info("Logged in as %s (%s)", email, userID)

	if f.deps.Navigator != nil {
		f.deps.Navigator.Navigate(path)
	}
	return &LoginResult{Outcome: outcome, UserID: userID, Path: path}, nil
}

func (f *LoginFlow) fail(err error, message string) {
	logger.Error("Login failed: %v", err)
	f.setState(LoginError)
	notify.Send(f.deps.Notifier, notify.Error, message)
	// the error is only reported; the form goes back to idle
	f.setState(LoginIdle)
}

// serverMessage returns the message the backend attached to err, or fallback
func serverMessage(err error, fallback string) string {
	var opErr *apperrors.OperationError
	if apperrors.As(err, &opErr) && opErr.Message != "" {
		return opErr.Message
	}
	return fallback
}
