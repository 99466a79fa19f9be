package services

import (
	"context"
	"fmt"

	apperrors "github.com/kelsos/atom-tasks/internal/errors"
	"github.com/kelsos/atom-tasks/internal/logger"
	"github.com/kelsos/atom-tasks/internal/models"
	"github.com/kelsos/atom-tasks/internal/signing"
)

// TaskService handles task-related operations
type TaskService struct {
	client *signing.Client
}

// NewTaskService creates a new task service
func NewTaskService(client *signing.Client) *TaskService {
	return &TaskService{client: client}
}

// GetAll retrieves every task regardless of owner
func (s *TaskService) GetAll(ctx context.Context) ([]models.Task, error) {
	return s.list(ctx, "list tasks", "tasks")
}

// ListForUser retrieves the tasks owned by userID
func (s *TaskService) ListForUser(ctx context.Context, userID string) ([]models.Task, error) {
	return s.list(ctx, "load tasks", "tasks/user/"+pathID(userID))
}

func (s *TaskService) list(ctx context.Context, op, endpoint string) ([]models.Task, error) {
	var response models.TasksResponse
	if err := s.client.HTTP().Get(ctx, endpoint, nil, nil, &response); err != nil {
		return nil, apperrors.Classify(op, err)
	}
	if err := checkResponse(op, &response); err != nil {
		return nil, err
	}

	logger.Debug("Loaded %d tasks from %s", len(response.Data), endpoint)
	return response.Data, nil
}

// Create adds a task for userID
func (s *TaskService) Create(ctx context.Context, userID string, input models.TaskInput) error {
	const op = "create task"

	var response models.StatusResponse
	if err := s.client.PostSigned(ctx, "tasks/user/"+pathID(userID), input, nil, &response); err != nil {
		return apperrors.Classify(op, err)
	}
	return checkResponse(op, &response)
}

// Update replaces the title and description of a task
func (s *TaskService) Update(ctx context.Context, id models.TaskID, input models.TaskInput) error {
	const op = "update task"

	var response models.StatusResponse
	if err := s.client.PutSigned(ctx, "tasks/"+pathID(id.String()), input, nil, &response); err != nil {
		return apperrors.Classify(op, err)
	}
	return checkResponse(op, &response)
}

// UpdateStatus sets the completion flag of a task
func (s *TaskService) UpdateStatus(ctx context.Context, id models.TaskID, completed bool) error {
	op := fmt.Sprintf("update task %s status", id)

	var response models.StatusResponse
	endpoint := "tasks/" + pathID(id.String()) + "/status"
	if err := s.client.PatchSigned(ctx, endpoint, models.TaskStatusUpdate{Completed: completed}, nil, &response); err != nil {
		return apperrors.Classify(op, err)
	}
	return checkResponse(op, &response)
}

// Delete removes a task
func (s *TaskService) Delete(ctx context.Context, id models.TaskID) error {
	const op = "delete task"

	// stays nil when the backend answers with an empty body
	var response *models.StatusResponse
	if err := s.client.HTTP().Delete(ctx, "tasks/"+pathID(id.String()), nil, &response); err != nil {
		return apperrors.Classify(op, err)
	}
	if response == nil {
		return nil
	}
	return checkResponse(op, response)
}
