package tui

import (
	"context"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kelsos/atom-tasks/internal/async"
	apperrors "github.com/kelsos/atom-tasks/internal/errors"
	"github.com/kelsos/atom-tasks/internal/flows"
	"github.com/kelsos/atom-tasks/internal/models"
	"github.com/kelsos/atom-tasks/internal/notify"
)

type formAnswer struct {
	input models.TaskInput
	ok    bool
}

// Bridge lets flows running outside the UI loop reach the screen. It must
// never be called from inside Update, since Send blocks until the loop reads.
type Bridge struct {
	mu      sync.Mutex
	program *tea.Program

	confirms *async.Registry[bool]
	forms    *async.Registry[formAnswer]
}

func NewBridge() *Bridge {
	return &Bridge{
		confirms: async.NewRegistry[bool](),
		forms:    async.NewRegistry[formAnswer](),
	}
}

func (b *Bridge) attach(p *tea.Program) {
	b.mu.Lock()
	b.program = p
	b.mu.Unlock()
}

func (b *Bridge) send(msg tea.Msg) {
	b.mu.Lock()
	p := b.program
	b.mu.Unlock()

	if p != nil {
		p.Send(msg)
	}
}

// shutdown releases every flow still waiting on a dialog
func (b *Bridge) shutdown() {
	b.confirms.RejectAll(apperrors.ErrViewClosed)
	b.forms.RejectAll(apperrors.ErrViewClosed)
}

func (b *Bridge) Notify(n notify.Notification) {
	b.send(notifyMsg{n})
}

func (b *Bridge) Navigate(path string) {
	b.send(navigateMsg{path})
}

func (b *Bridge) Confirm(ctx context.Context, req flows.ConfirmRequest) (bool, error) {
	id, p := b.confirms.Register()
	b.send(confirmRequestMsg{id: id, req: req})
	return p.Await(ctx)
}

func (b *Bridge) TaskForm(ctx context.Context, req flows.TaskFormRequest) (models.TaskInput, bool, error) {
	id, p := b.forms.Register()
	b.send(formRequestMsg{id: id, req: req})

	answer, err := p.Await(ctx)
	if err != nil {
		return models.TaskInput{}, false, err
	}
	return answer.input, answer.ok, nil
}

// Messages delivered to the UI loop
type (
	navigateMsg struct{ path string }
	notifyMsg   struct{ n notify.Notification }

	confirmRequestMsg struct {
		id  uint64
		req flows.ConfirmRequest
	}
	formRequestMsg struct {
		id  uint64
		req flows.TaskFormRequest
	}

	loginDoneMsg    struct{ err error }
	tasksChangedMsg struct{}
	taskOpDoneMsg   struct{ err error }
)
