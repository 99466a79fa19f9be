package flows

import (
	"context"
	"fmt"
	"slices"
	"sync"

	apperrors "github.com/kelsos/atom-tasks/internal/errors"
	"github.com/kelsos/atom-tasks/internal/logger"
	"github.com/kelsos/atom-tasks/internal/models"
	"github.com/kelsos/atom-tasks/internal/notify"
	"github.com/kelsos/atom-tasks/internal/router"
)

const (
	MsgTaskCreated   = "Task created successfully"
	MsgTaskUpdated   = "Task updated successfully"
	MsgTaskDeleted   = "Task deleted successfully"
	MsgTaskCompleted = "Task marked as completed"
	MsgTaskPending   = "Task marked as pending"

	defaultEmail = "User"
)

// action describes a task operation for user-facing failure messages
type action struct {
	doing string
	do    string
}

var (
	actionLoad   = action{"loading tasks", "load the tasks"}
	actionCreate = action{"creating task", "create the task"}
	actionUpdate = action{"updating task", "update the task"}
	actionDelete = action{"deleting task", "delete the task"}
	actionStatus = action{"updating status", "update the status"}
)

type TaskListDeps struct {
	Tasks     TaskAPI
	Sessions  SessionStore
	Dialogs   Dialogs
	Notifier  notify.Notifier
	Navigator router.Navigator
}

// TaskListFlow owns the in-memory task list of the task view. After Close,
// results of calls still in flight are dropped.
type TaskListFlow struct {
	deps     TaskListDeps
	controls controls

	mu      sync.Mutex
	userID  string
	email   string
	tasks   []models.Task
	loading int
	closed  bool

	// fetchSeq numbers list fetches; appliedSeq is the newest one shown
	fetchSeq   uint64
	appliedSeq uint64

	listeners map[int]func()
	nextID    int
}

func NewTaskListFlow(deps TaskListDeps) *TaskListFlow {
	if deps.Notifier == nil {
		deps.Notifier = notify.Discard
	}
	return &TaskListFlow{deps: deps, listeners: make(map[int]func())}
}

// Activate binds the flow to the user in route and loads their tasks. A
// route that does not match the stored session ends the session.
func (f *TaskListFlow) Activate(ctx context.Context, route router.Route) error {
	userID, ok := route.UserID()
	if !ok {
		return f.invalidSession("user id not provided", apperrors.ErrMissingUserID)
	}

	sess := f.deps.Sessions.Get()
	if sess == nil || sess.UserID != userID {
		return f.invalidSession("invalid user id", apperrors.ErrSessionMismatch)
	}

	email := sess.Email
	if email == "" {
		email = defaultEmail
	}

	f.mu.Lock()
	f.userID = userID
	f.email = email
	f.mu.Unlock()

	return f.Load(ctx)
}

func (f *TaskListFlow) invalidSession(reason string, err error) error {
	logger.Warn("Leaving task view: %s", reason)
	notify.Send(f.deps.Notifier, notify.Error, fmt.Sprintf("Invalid session: %s. Please log in again.", reason))
	if clearErr := f.deps.Sessions.Clear(); clearErr != nil {
		logger.Error("Failed to clear session: %v", clearErr)
	}
	f.navigate(router.LoginPath)
	return err
}

// Load fetches the full task list for the bound user
func (f *TaskListFlow) Load(ctx context.Context) error {
	release, err := f.controls.acquire(ControlLoad)
	if err != nil {
		return err
	}
	defer release()

	return f.fetch(ctx)
}

// fetch loads the list outside the load control. When fetches overlap, a
// result older than the one already applied is dropped, so a reload issued
// after a mutation always wins over a load that started before it.
func (f *TaskListFlow) fetch(ctx context.Context) error {
	f.mu.Lock()
	userID := f.userID
	f.fetchSeq++
	seq := f.fetchSeq
	f.mu.Unlock()

	done := f.startLoading()
	tasks, err := f.deps.Tasks.ListForUser(ctx, userID)
	done()

	if f.isClosed() {
		return apperrors.ErrViewClosed
	}
	if err != nil {
		f.report(actionLoad, err)
		return err
	}
	if tasks == nil {
		tasks = []models.Task{}
	}

	f.mu.Lock()
	if seq < f.appliedSeq {
		f.mu.Unlock()
		logger.Debug("Dropping stale task list %d, %d already applied", seq, f.appliedSeq)
		return nil
	}
	f.appliedSeq = seq
	f.tasks = tasks
	f.mu.Unlock()

	logger.Debug("Loaded %d tasks for %s", len(tasks), userID)
	f.changed()
	return nil
}

// supersedeFetches marks the local list as newer than every fetch started
// so far. Callers hold f.mu.
func (f *TaskListFlow) supersedeFetches() {
	f.appliedSeq = f.fetchSeq + 1
	f.fetchSeq = f.appliedSeq
}

// Create asks for a new task and submits it. Dismissing the form is not an
// error.
func (f *TaskListFlow) Create(ctx context.Context) error {
	release, err := f.controls.acquire(ControlCreate)
	if err != nil {
		return err
	}
	defer release()

	input, ok, err := f.deps.Dialogs.TaskForm(ctx, TaskFormRequest{Heading: "New task"})
	if err != nil || !ok {
		return err
	}
	if err := checkInput("create task", input); err != nil {
		return err
	}

	f.mu.Lock()
	userID := f.userID
	f.mu.Unlock()

	done := f.startLoading()
	err = f.deps.Tasks.Create(ctx, userID, input)
	done()

	return f.afterMutation(ctx, actionCreate, MsgTaskCreated, err)
}

// Edit asks for new title and description of task id and submits them
func (f *TaskListFlow) Edit(ctx context.Context, id models.TaskID) error {
	release, err := f.controls.acquire(ControlEdit + id.String())
	if err != nil {
		return err
	}
	defer release()

	task, ok := f.find(id)
	if !ok {
		return apperrors.ErrTaskNotFound
	}

	input, ok, err := f.deps.Dialogs.TaskForm(ctx, TaskFormRequest{
		Heading: "Edit task",
		Initial: models.TaskInput{Title: task.Title, Description: task.Description},
	})
	if err != nil || !ok {
		return err
	}
	if err := checkInput("update task", input); err != nil {
		return err
	}

	done := f.startLoading()
	err = f.deps.Tasks.Update(ctx, id, input)
	done()

	return f.afterMutation(ctx, actionUpdate, MsgTaskUpdated, err)
}

// afterMutation reports the outcome of a create or update and reloads the
// list on success.
func (f *TaskListFlow) afterMutation(ctx context.Context, a action, successMsg string, err error) error {
	if f.isClosed() {
		return apperrors.ErrViewClosed
	}
	if err != nil {
		f.report(a, err)
		return err
	}

	notify.Send(f.deps.Notifier, notify.Success, successMsg)
	return f.fetch(ctx)
}

// Toggle flips the completion flag of task id immediately and reverts it if
// the backend rejects the change.
func (f *TaskListFlow) Toggle(ctx context.Context, id models.TaskID) error {
	release, err := f.controls.acquire(ControlToggle + id.String())
	if err != nil {
		return err
	}
	defer release()

	f.mu.Lock()
	idx := slices.IndexFunc(f.tasks, func(t models.Task) bool { return t.ID == id })
	if idx < 0 {
		f.mu.Unlock()
		return apperrors.ErrTaskNotFound
	}
	previous := f.tasks[idx].Completed
	f.tasks[idx].Completed = !previous
	f.mu.Unlock()
	f.changed()

	done := f.startLoading()
	err = f.deps.Tasks.UpdateStatus(ctx, id, !previous)
	done()

	if f.isClosed() {
		return apperrors.ErrViewClosed
	}
	if err != nil {
		f.setCompleted(id, previous)
		f.report(actionStatus, err)
		return err
	}

	msg := MsgTaskPending
	if !previous {
		msg = MsgTaskCompleted
	}
	notify.Send(f.deps.Notifier, notify.Success, msg)
	return nil
}

func (f *TaskListFlow) setCompleted(id models.TaskID, completed bool) {
	f.mu.Lock()
	for i := range f.tasks {
		if f.tasks[i].ID == id {
			f.tasks[i].Completed = completed
			break
		}
	}
	f.mu.Unlock()
	f.changed()
}

// Delete asks for confirmation and removes task id. The list is updated in
// place instead of being reloaded.
func (f *TaskListFlow) Delete(ctx context.Context, id models.TaskID) error {
	release, err := f.controls.acquire(ControlDelete + id.String())
	if err != nil {
		return err
	}
	defer release()

	task, ok := f.find(id)
	if !ok {
		return apperrors.ErrTaskNotFound
	}

	confirmed, err := f.deps.Dialogs.Confirm(ctx, ConfirmRequest{
		Title:       "Confirm deletion",
		Message:     fmt.Sprintf("Delete task %q?", task.Title),
		ConfirmText: "Delete",
		CancelText:  "Cancel",
	})
	if err != nil || !confirmed {
		return err
	}

	done := f.startLoading()
	err = f.deps.Tasks.Delete(ctx, id)
	done()

	if f.isClosed() {
		return apperrors.ErrViewClosed
	}
	if err != nil {
		f.report(actionDelete, err)
		return err
	}

	f.mu.Lock()
	f.tasks, _ = models.RemoveByID(f.tasks, id)
	f.supersedeFetches()
	f.mu.Unlock()

	notify.Send(f.deps.Notifier, notify.Success, MsgTaskDeleted)
	f.changed()
	return nil
}

// Logout ends the session and returns to the login screen
func (f *TaskListFlow) Logout() error {
	f.Close()
	if err := f.deps.Sessions.Clear(); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	f.navigate(router.LoginPath)
	return nil
}

// Close tears the view down and releases its listeners
func (f *TaskListFlow) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	f.listeners = make(map[int]func())
}

// OnChange registers fn to be called whenever the list or loading flag
// changes. The returned function unregisters it.
func (f *TaskListFlow) OnChange(fn func()) func() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.nextID++
	id := f.nextID
	f.listeners[id] = fn
	return func() {
		f.mu.Lock()
		delete(f.listeners, id)
		f.mu.Unlock()
	}
}

func (f *TaskListFlow) changed() {
	f.mu.Lock()
	fns := make([]func(), 0, len(f.listeners))
	for _, fn := range f.listeners {
		fns = append(fns, fn)
	}
	f.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// Tasks returns the list newest first
func (f *TaskListFlow) Tasks() []models.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	return models.SortByCreatedDesc(f.tasks)
}

func (f *TaskListFlow) Loading() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loading > 0
}

// Busy reports whether control has a call in flight
func (f *TaskListFlow) Busy(control string) bool {
	return f.controls.isBusy(control)
}

func (f *TaskListFlow) UserID() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.userID
}

func (f *TaskListFlow) UserEmail() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.email
}

func (f *TaskListFlow) find(id models.TaskID) (models.Task, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	idx := slices.IndexFunc(f.tasks, func(t models.Task) bool { return t.ID == id })
	if idx < 0 {
		return models.Task{}, false
	}
	return f.tasks[idx], true
}

func (f *TaskListFlow) startLoading() func() {
	f.mu.Lock()
	f.loading++
	f.mu.Unlock()
	f.changed()

	return func() {
		f.mu.Lock()
		f.loading--
		f.mu.Unlock()
		f.changed()
	}
}

func (f *TaskListFlow) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func (f *TaskListFlow) navigate(path string) {
	if f.deps.Navigator != nil {
		f.deps.Navigator.Navigate(path)
	}
}

// report tells the user why a failed. Backend-reported failures carry the
// server message; everything else gets a fixed retry hint.
func (f *TaskListFlow) report(a action, err error) {
	logger.Error("Failed %s: %v", a.doing, err)

	msg := fmt.Sprintf("Could not %s. Please try again.", a.do)
	if apperrors.IsKind(err, apperrors.KindApplication) {
		msg = fmt.Sprintf("Error %s: %s", a.doing, serverMessage(err, "unknown error"))
	}
	notify.Send(f.deps.Notifier, notify.Error, msg)
}
