// Package memory provides in-memory implementations of storage ports,
// used in tests and as single-process fallbacks.
package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/starfeed/starfeed/domain/key"
	"github.com/starfeed/starfeed/domain/ledger"
	"github.com/starfeed/starfeed/domain/plan"
	"github.com/starfeed/starfeed/ports"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicateOwner is returned when a second active key is created
// for an owner who already holds one.
var ErrDuplicateOwner = errors.New("owner already has an active key")

// KeyStore is an in-memory implementation of ports.KeyStore.
type KeyStore struct {
	mu   sync.RWMutex
	keys map[string]key.Key // by ID

	// FailRecord makes RecordHits fail (for testing persistence-failure
	// handling in the recorder).
	FailRecord bool

	// RecordDelay makes RecordHits sleep before applying the batch (for
	// testing shutdown flush ordering in the recorder).
	RecordDelay time.Duration
}

// NewKeyStore creates an empty in-memory key store.
func NewKeyStore() *KeyStore {
	return &KeyStore{keys: make(map[string]key.Key)}
}

// GetByPrefix retrieves keys matching a secret prefix.
func (s *KeyStore) GetByPrefix(ctx context.Context, prefix string) ([]key.Key, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []key.Key
	for _, k := range s.keys {
		if k.Prefix == prefix {
			out = append(out, k)
		}
	}
	return out, nil
}

// GetByOwner retrieves the key owned by a user.
func (s *KeyStore) GetByOwner(ctx context.Context, ownerID string) (key.Key, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, k := range s.keys {
		if k.OwnerID == ownerID {
			return k, nil
		}
	}
	return key.Key{}, ErrNotFound
}

// GetByID retrieves a key by ID.
func (s *KeyStore) GetByID(ctx context.Context, id string) (key.Key, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	k, ok := s.keys[id]
	if !ok {
		return key.Key{}, ErrNotFound
	}
	return k, nil
}

// Create stores a new key. At most one key may exist per owner.
func (s *KeyStore) Create(ctx context.Context, k key.Key) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.keys {
		if existing.OwnerID == k.OwnerID && existing.RevokedAt == nil {
			return ErrDuplicateOwner
		}
	}
	s.keys[k.ID] = k
	return nil
}

// Revoke marks a key as revoked.
func (s *KeyStore) Revoke(ctx context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	k, ok := s.keys[id]
	if !ok {
		return ErrNotFound
	}
	k.RevokedAt = &at
	s.keys[id] = k
	return nil
}

// UpdateQuota sets the plan and quota fields on a key.
func (s *KeyStore) UpdateQuota(ctx context.Context, id string, planID plan.ID, freeQuota, purchasedQuota int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	k, ok := s.keys[id]
	if !ok {
		return ErrNotFound
	}
	k.PlanID = planID
	k.FreeQuota = freeQuota
	k.PurchasedQuota = purchasedQuota
	s.keys[id] = k
	return nil
}

// RecordHits applies a batch of accepted calls to the key's ledger.
func (s *KeyStore) RecordHits(ctx context.Context, id string, hits []ledger.Hit) error {
	if s.RecordDelay > 0 {
		time.Sleep(s.RecordDelay)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailRecord {
		return errors.New("record failure injected")
	}

	k, ok := s.keys[id]
	if !ok {
		return ErrNotFound
	}
	k.Usage = ledger.RecordAll(k.Usage, hits)
	s.keys[id] = k
	return nil
}

// Ensure interface compliance.
var _ ports.KeyStore = (*KeyStore)(nil)
