package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
)

// TaskID is an opaque task identifier; the backend may send it as a string
// or as a number.
type TaskID string

func (id *TaskID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = TaskID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("task id must be a string or number: %w", err)
	}
	*id = TaskID(n.String())
	return nil
}

func (id TaskID) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(string(id))), nil
}

func (id TaskID) String() string {
	return string(id)
}

type Task struct {
	ID          TaskID    `json:"id"`
	UserID      string    `json:"userId"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Completed   bool      `json:"completed"`
	CreatedAt   Timestamp `json:"created_at"`
	UpdatedAt   Timestamp `json:"updatedAt"`
}

// TaskInput is the body for creating a task and for editing title and description
type TaskInput struct {
	Title       string `json:"title" validate:"required,max=100"`
	Description string `json:"description" validate:"required,max=500"`
}

type TaskStatusUpdate struct {
	Completed bool `json:"completed"`
}

type TasksResponse = APIResponse[[]Task]

// SortByCreatedDesc returns a copy of tasks ordered newest first. Tasks
// without a usable timestamp follow the dated ones in their original order.
func SortByCreatedDesc(tasks []Task) []Task {
	dated := make([]Task, 0, len(tasks))
	var undated []Task
	for _, t := range tasks {
		if t.CreatedAt.Valid() {
			dated = append(dated, t)
		} else {
			undated = append(undated, t)
		}
	}

	slices.SortStableFunc(dated, func(a, b Task) int {
		return b.CreatedAt.Time.Compare(a.CreatedAt.Time)
	})
	return append(dated, undated...)
}

// RemoveByID returns a copy of tasks without the first entry matching id,
// and whether an entry was removed.
func RemoveByID(tasks []Task, id TaskID) ([]Task, bool) {
	idx := slices.IndexFunc(tasks, func(t Task) bool { return t.ID == id })
	if idx < 0 {
		return slices.Clone(tasks), false
	}
	out := make([]Task, 0, len(tasks)-1)
	out = append(out, tasks[:idx]...)
	out = append(out, tasks[idx+1:]...)
	return out, true
}
