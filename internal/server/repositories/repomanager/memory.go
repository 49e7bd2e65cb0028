package repomanager

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/shiftdesk/internal/dbx"
	"github.com/dmitrijs2005/shiftdesk/internal/server/repositories/profiles"
	"github.com/dmitrijs2005/shiftdesk/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/shiftdesk/internal/server/repositories/users"
)

// MemoryRepositoryManager keeps everything in process memory. The db
// arguments of the factories are ignored. WithTx only serialises callers;
// there is no rollback.
type MemoryRepositoryManager struct {
	txMu          sync.Mutex
	users         *users.MemoryRepository
	profiles      profiles.Repository
	refreshTokens *refreshtokens.MemoryRepository
}

var _ RepositoryManager = (*MemoryRepositoryManager)(nil)

func NewMemoryRepositoryManager(opts ...Option) *MemoryRepositoryManager {
	o := applyOptions(opts)
	m := &MemoryRepositoryManager{
		users:         users.NewMemoryRepository(),
		profiles:      o.profiles,
		refreshTokens: refreshtokens.NewMemoryRepository(),
	}
	if m.profiles == nil {
		m.profiles = profiles.NewMemoryRepository()
	}
	return m
}

func (m *MemoryRepositoryManager) RunMigrations(context.Context) error { return nil }

func (m *MemoryRepositoryManager) DB() dbx.DBTX { return nil }

func (m *MemoryRepositoryManager) WithTx(ctx context.Context, fn func(ctx context.Context, tx dbx.DBTX) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()
	return fn(ctx, nil)
}

func (m *MemoryRepositoryManager) Users(dbx.DBTX) users.Repository { return m.users }

func (m *MemoryRepositoryManager) Profiles(dbx.DBTX) profiles.Repository { return m.profiles }

func (m *MemoryRepositoryManager) RefreshTokens(dbx.DBTX) refreshtokens.Repository {
	return m.refreshTokens
}

func (m *MemoryRepositoryManager) Close() error { return nil }
