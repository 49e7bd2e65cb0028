// Package storage provides the key-value persistence media the console keeps
// its session record in.
//
// Two scopes exist:
//   - ScopeDevice: an SQLite file that survives restarts (see SQLiteStorage);
//   - ScopeSession: process memory that ends with the console (see MemoryStorage).
//
// Both satisfy KeyValue. GetItem returns (nil, nil) for an absent key.
package storage

import (
	"context"
	"errors"
	"fmt"
)

// Scope selects how long persisted items live.
type Scope string

const (
	ScopeDevice  Scope = "device"
	ScopeSession Scope = "session"
)

var ErrUnknownScope = errors.New("unknown storage scope")

// KeyValue is the persistence surface used by the session store.
type KeyValue interface {
	GetItem(ctx context.Context, key string) ([]byte, error)
	SetItem(ctx context.Context, key string, value []byte) error
	RemoveItem(ctx context.Context, key string) error
}

// Open returns the medium for scope. dsn is only used by ScopeDevice.
// The returned close function releases the underlying resources.
func Open(ctx context.Context, scope Scope, dsn string) (KeyValue, func() error, error) {
	switch scope {
	case ScopeSession:
		return NewMemoryStorage(), func() error { return nil }, nil
	case ScopeDevice:
		db, err := OpenDatabase(ctx, dsn)
		if err != nil {
			return nil, nil, err
		}
		return NewSQLiteStorage(db), db.Close, nil
	default:
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownScope, scope)
	}
}
