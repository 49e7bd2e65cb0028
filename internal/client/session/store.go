package session

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/shiftdesk/internal/client/storage"
	"github.com/dmitrijs2005/shiftdesk/internal/common"
	"github.com/dmitrijs2005/shiftdesk/internal/logging"
)

// Store is the read-modify-clear contract over the session slot.
type Store interface {
	Policy() Policy
	// Load returns (nil, nil) when there is no usable record. A corrupt
	// record is removed and reported as absent; only a failing medium
	// produces an error.
	Load(ctx context.Context) (*Record, error)
	// Save overwrites the slot unconditionally.
	Save(ctx context.Context, rec Record) error
	// Clear removes the slot. Clearing an empty slot is not an error.
	Clear(ctx context.Context) error
}

// KVStore implements Store on top of a storage.KeyValue medium.
type KVStore struct {
	kv     storage.KeyValue
	policy Policy
	key    string
	logger logging.Logger
}

var _ Store = (*KVStore)(nil)

func NewKVStore(kv storage.KeyValue, policy Policy, logger logging.Logger) *KVStore {
	return &KVStore{
		kv:     kv,
		policy: policy,
		key:    common.SessionKey,
		logger: logger.With("module", "session_store", "policy", string(policy)),
	}
}

func (s *KVStore) Policy() Policy { return s.policy }

func (s *KVStore) Load(ctx context.Context) (*Record, error) {
	data, err := s.kv.GetItem(ctx, s.key)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if data == nil {
		return nil, nil
	}

	rec, err := Decode(s.policy, data)
	if err != nil {
		s.logger.Warn(ctx, "discarding session record", "error", err)
		if rmErr := s.kv.RemoveItem(ctx, s.key); rmErr != nil {
			s.logger.Error(ctx, "failed to remove corrupt session record", "error", rmErr)
		}
		return nil, nil
	}
	return rec, nil
}

func (s *KVStore) Save(ctx context.Context, rec Record) error {
	data, err := Encode(s.policy, rec)
	if err != nil {
		return err
	}
	if err := s.kv.SetItem(ctx, s.key, data); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *KVStore) Clear(ctx context.Context) error {
	if err := s.kv.RemoveItem(ctx, s.key); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
