// Package profiles stores user profile records. Three backends exist:
// Postgres rows, JSON documents in an S3 bucket and an in-memory map.
package profiles

import (
	"context"

	"github.com/dmitrijs2005/shiftdesk/internal/models"
)

type Repository interface {
	// Create fails with common.ErrorAlreadyExists when uid already has a profile.
	Create(ctx context.Context, p *models.Profile) error
	// Get returns common.ErrorNotFound when uid has no profile.
	Get(ctx context.Context, uid string) (*models.Profile, error)
}
