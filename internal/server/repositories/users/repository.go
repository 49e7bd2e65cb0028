// Package users stores account credentials.
package users

import (
	"context"

	"github.com/dmitrijs2005/shiftdesk/internal/server/models"
)

type Repository interface {
	// Create inserts user. A taken username yields common.ErrorAlreadyExists.
	Create(ctx context.Context, user *models.User) (*models.User, error)
	// GetByUsername returns common.ErrorNotFound when no such user exists.
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}
