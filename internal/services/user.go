package services

import (
	"context"

	apperrors "github.com/kelsos/atom-tasks/internal/errors"
	"github.com/kelsos/atom-tasks/internal/logger"
	"github.com/kelsos/atom-tasks/internal/models"
	"github.com/kelsos/atom-tasks/internal/signing"
)

// UserService handles user-related operations
type UserService struct {
	client *signing.Client
}

// NewUserService creates a new user service
func NewUserService(client *signing.Client) *UserService {
	return &UserService{client: client}
}

// GetAll retrieves every user known to the backend
func (s *UserService) GetAll(ctx context.Context) ([]models.User, error) {
	const op = "list users"

	var response models.UsersResponse
	if err := s.client.HTTP().Get(ctx, "users", nil, nil, &response); err != nil {
		return nil, apperrors.Classify(op, err)
	}
	if err := checkResponse(op, &response); err != nil {
		return nil, err
	}

	logger.Debug("Found %d users", len(response.Data))
	return response.Data, nil
}

// FindByEmail looks a user up by email. A user that does not exist is
// reported either as Exists=false or as a not-found error, depending on the
// backend.
func (s *UserService) FindByEmail(ctx context.Context, email string) (*models.UserLookup, error) {
	const op = "find user"

	var response models.UserLookupResponse
	if err := s.client.PostSigned(ctx, "users/find", models.EmailRequest{Email: email}, nil, &response); err != nil {
		return nil, apperrors.Classify(op, err)
	}
	if err := checkResponse(op, &response); err != nil {
		return nil, err
	}

	logger.Debug("Lookup for %s: exists=%t", email, response.Data.Exists)
	return &response.Data, nil
}

// Create registers a new user for email and returns its id
func (s *UserService) Create(ctx context.Context, email string) (string, error) {
	const op = "create user"
	logger.Info("Creating user %s", email)

	var response models.CreatedResponse
	if err := s.client.PostSigned(ctx, "users/create", models.EmailRequest{Email: email}, nil, &response); err != nil {
		return "", apperrors.Classify(op, err)
	}
	if err := checkResponse(op, &response); err != nil {
		return "", err
	}

	return response.Data.ID, nil
}
