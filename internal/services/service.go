package services

import (
	"net/url"

	apperrors "github.com/kelsos/atom-tasks/internal/errors"
	"github.com/kelsos/atom-tasks/internal/models"
)

// checkResponse turns a success:false envelope into an application error
func checkResponse[T any](op string, resp *models.APIResponse[T]) error {
	if !resp.Success {
		return apperrors.Application(op, resp.Message, resp.StatusCode)
	}
	return nil
}

func pathID(id string) string {
	return url.PathEscape(id)
}
