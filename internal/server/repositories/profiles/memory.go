package profiles

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/shiftdesk/internal/common"
	"github.com/dmitrijs2005/shiftdesk/internal/models"
)

type MemoryRepository struct {
	mu       sync.RWMutex
	profiles map[string]*models.Profile
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{profiles: make(map[string]*models.Profile)}
}

func (r *MemoryRepository) Create(_ context.Context, p *models.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.profiles[p.UID]; ok {
		return common.ErrorAlreadyExists
	}
	r.profiles[p.UID] = p.Clone()
	return nil
}

func (r *MemoryRepository) Get(_ context.Context, uid string) (*models.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.profiles[uid]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return p.Clone(), nil
}
