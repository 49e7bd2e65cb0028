// Package repomanager hands out repositories bound to a connection or a
// transaction, so services can compose several of them atomically.
package repomanager

import (
	"context"

	"github.com/dmitrijs2005/shiftdesk/internal/dbx"
	"github.com/dmitrijs2005/shiftdesk/internal/server/repositories/profiles"
	"github.com/dmitrijs2005/shiftdesk/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/shiftdesk/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(ctx context.Context) error
	// DB is the handle for work outside a transaction.
	DB() dbx.DBTX
	// WithTx runs fn in a transaction; fn passes tx to the factories below.
	WithTx(ctx context.Context, fn func(ctx context.Context, tx dbx.DBTX) error) error
	Users(db dbx.DBTX) users.Repository
	Profiles(db dbx.DBTX) profiles.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	Close() error
}

type options struct {
	profiles profiles.Repository
}

type Option func(*options)

// WithProfileRepository serves profiles from repo (for example the S3
// backend) instead of the manager's own store. Writes to it are not part of
// WithTx transactions.
func WithProfileRepository(repo profiles.Repository) Option {
	return func(o *options) { o.profiles = repo }
}

func applyOptions(opts []Option) options {
	var o options
	for _, fn := range opts {
		fn(&o)
	}
	return o
}
