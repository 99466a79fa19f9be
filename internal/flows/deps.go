// Package flows holds the screen logic of the client: resolving a user by
// email on the login screen and managing the task list of the logged-in user.
// Flows talk to the outside world only through the interfaces declared here,
// so the TUI and the CLI drive the same code.
package flows

import (
	"context"

	"github.com/kelsos/atom-tasks/internal/models"
	"github.com/kelsos/atom-tasks/internal/session"
)

// UserAPI is the backend surface used by the login flow
type UserAPI interface {
	FindByEmail(ctx context.Context, email string) (*models.UserLookup, error)
	Create(ctx context.Context, email string) (string, error)
}

// TaskAPI is the backend surface used by the task list flow
type TaskAPI interface {
	ListForUser(ctx context.Context, userID string) ([]models.Task, error)
	Create(ctx context.Context, userID string, input models.TaskInput) error
	Update(ctx context.Context, id models.TaskID, input models.TaskInput) error
	UpdateStatus(ctx context.Context, id models.TaskID, completed bool) error
	Delete(ctx context.Context, id models.TaskID) error
}

// SessionStore is the session lifecycle the flows need
type SessionStore interface {
	Set(userID, email string) error
	Get() *session.Session
	Clear() error
}

type ConfirmRequest struct {
	Title       string
	Message     string
	ConfirmText string
	CancelText  string
}

type TaskFormRequest struct {
	Heading string
	Initial models.TaskInput
}

// Dialogs asks the user something and waits for the answer. A dismissed
// dialog is not an error.
type Dialogs interface {
	Confirm(ctx context.Context, req ConfirmRequest) (bool, error)
	TaskForm(ctx context.Context, req TaskFormRequest) (models.TaskInput, bool, error)
}
