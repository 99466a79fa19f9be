// Package testutil provides in-memory fakes for exercising the flows.
package testutil

import (
	"context"
	"sync"

	"github.com/kelsos/atom-tasks/internal/flows"
	"github.com/kelsos/atom-tasks/internal/models"
	"github.com/kelsos/atom-tasks/internal/notify"
)

// FakeUsers is an in-memory implementation of flows.UserAPI
type FakeUsers struct {
	mu sync.Mutex

	Lookup    models.UserLookup
	CreatedID string

	// Error injection for testing
	FindErr   error
	CreateErr error

	FindCalls   []string
	CreateCalls []string

	// Block, when set, is waited on by FindByEmail before answering
	Block chan struct{}
}

func (f *FakeUsers) FindByEmail(ctx context.Context, email string) (*models.UserLookup, error) {
	f.mu.Lock()
	f.FindCalls = append(f.FindCalls, email)
	block := f.Block
	f.mu.Unlock()

	if block != nil {
		<-block
	}
	if f.FindErr != nil {
		return nil, f.FindErr
	}
	lookup := f.Lookup
	return &lookup, nil
}

func (f *FakeUsers) Create(ctx context.Context, email string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.CreateCalls = append(f.CreateCalls, email)
	if f.CreateErr != nil {
		return "", f.CreateErr
	}
	return f.CreatedID, nil
}

// FakeTasks is an in-memory implementation of flows.TaskAPI
type FakeTasks struct {
	mu    sync.Mutex
	tasks map[string][]models.Task

	// Error injection for testing
	ListErr   error
	CreateErr error
	UpdateErr error
	StatusErr error
	DeleteErr error

	Calls []string

	// BeforeStatus, when set, runs before UpdateStatus answers
	BeforeStatus func()
	// AfterList, when set, runs after ListForUser took its snapshot
	AfterList func()
}

func NewFakeTasks() *FakeTasks {
	return &FakeTasks{tasks: make(map[string][]models.Task)}
}

// AddTask stores a task for its owner
func (f *FakeTasks) AddTask(task models.Task) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks[task.UserID] = append(f.tasks[task.UserID], task)
}

func (f *FakeTasks) record(call string) {
	f.mu.Lock()
	f.Calls = append(f.Calls, call)
	f.mu.Unlock()
}

func (f *FakeTasks) ListForUser(ctx context.Context, userID string) ([]models.Task, error) {
	f.record("list " + userID)
	if f.ListErr != nil {
		return nil, f.ListErr
	}
	f.mu.Lock()
	snapshot := append([]models.Task(nil), f.tasks[userID]...)
	after := f.AfterList
	f.mu.Unlock()

	if after != nil {
		after()
	}
	return snapshot, nil
}

func (f *FakeTasks) Create(ctx context.Context, userID string, input models.TaskInput) error {
	f.record("create " + userID)
	if f.CreateErr != nil {
		return f.CreateErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks[userID] = append(f.tasks[userID], models.Task{
		ID:          models.TaskID(input.Title),
		UserID:      userID,
		Title:       input.Title,
		Description: input.Description,
	})
	return nil
}

func (f *FakeTasks) Update(ctx context.Context, id models.TaskID, input models.TaskInput) error {
	f.record("update " + id.String())
	if f.UpdateErr != nil {
		return f.UpdateErr
	}
	f.each(id, func(t *models.Task) {
		t.Title = input.Title
		t.Description = input.Description
	})
	return nil
}

func (f *FakeTasks) UpdateStatus(ctx context.Context, id models.TaskID, completed bool) error {
	f.record("status " + id.String())
	if f.BeforeStatus != nil {
		f.BeforeStatus()
	}
	if f.StatusErr != nil {
		return f.StatusErr
	}
	f.each(id, func(t *models.Task) { t.Completed = completed })
	return nil
}

func (f *FakeTasks) Delete(ctx context.Context, id models.TaskID) error {
	f.record("delete " + id.String())
	if f.DeleteErr != nil {
		return f.DeleteErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for user, tasks := range f.tasks {
		f.tasks[user], _ = models.RemoveByID(tasks, id)
	}
	return nil
}

func (f *FakeTasks) each(id models.TaskID, fn func(*models.Task)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, tasks := range f.tasks {
		for i := range tasks {
			if tasks[i].ID == id {
				fn(&tasks[i])
			}
		}
	}
}

// Notifications records every notification it receives
type Notifications struct {
	mu  sync.Mutex
	All []notify.Notification
}

func (n *Notifications) Notify(x notify.Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.All = append(n.All, x)
}

// Last returns the most recent notification
func (n *Notifications) Last() (notify.Notification, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.All) == 0 {
		return notify.Notification{}, false
	}
	return n.All[len(n.All)-1], true
}

// Navigator records every navigation
type Navigator struct {
	mu    sync.Mutex
	Paths []string
}

func (n *Navigator) Navigate(path string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Paths = append(n.Paths, path)
}

func (n *Navigator) Last() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.Paths) == 0 {
		return ""
	}
	return n.Paths[len(n.Paths)-1]
}

// FormAnswer is a scripted answer to a task form
type FormAnswer struct {
	Input models.TaskInput
	OK    bool
}

// Dialogs answers dialogs from scripted queues. An empty queue dismisses the
// dialog.
type Dialogs struct {
	mu       sync.Mutex
	Confirms []bool
	Forms    []FormAnswer

	ConfirmRequests []flows.ConfirmRequest
	FormRequests    []flows.TaskFormRequest
}

func (d *Dialogs) Confirm(ctx context.Context, req flows.ConfirmRequest) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ConfirmRequests = append(d.ConfirmRequests, req)
	if len(d.Confirms) == 0 {
		return false, nil
	}
	answer := d.Confirms[0]
	d.Confirms = d.Confirms[1:]
	return answer, nil
}

func (d *Dialogs) TaskForm(ctx context.Context, req flows.TaskFormRequest) (models.TaskInput, bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.FormRequests = append(d.FormRequests, req)
	if len(d.Forms) == 0 {
		return models.TaskInput{}, false, nil
	}
	answer := d.Forms[0]
	d.Forms = d.Forms[1:]
	return answer.Input, answer.OK, nil
}
