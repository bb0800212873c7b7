package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/starfeed/starfeed/domain/key"
	"github.com/starfeed/starfeed/ports"
)

// ErrActiveKeyExists is returned by Issue when the user already holds
// an active key. Rotate replaces it instead.
var ErrActiveKeyExists = errors.New("user already holds an active key")

// KeyService issues and revokes API keys.
type KeyService struct {
	keys      ports.KeyStore
	users     ports.UserStore
	clock     ports.Clock
	logger    zerolog.Logger
	keyPrefix string
}

// NewKeyService creates a key service.
func NewKeyService(keys ports.KeyStore, users ports.UserStore, clock ports.Clock, logger zerolog.Logger, keyPrefix string) *KeyService {
	return &KeyService{
		keys:      keys,
		users:     users,
		clock:     clock,
		logger:    logger,
		keyPrefix: keyPrefix,
	}
}

// Issue creates a key for a user who has none. The raw secret is
// returned exactly once and never stored.
func (s *KeyService) Issue(ctx context.Context, ownerID string) (rawSecret string, k key.Key, err error) {
	if _, err := s.users.Get(ctx, ownerID); err != nil {
		return "", key.Key{}, fmt.Errorf("load user: %w", err)
	}
	if existing, err := s.keys.GetByOwner(ctx, ownerID); err == nil && existing.Active() {
		return "", key.Key{}, ErrActiveKeyExists
	}

	rawSecret, k = key.Generate(s.keyPrefix)
	k = k.WithOwner(ownerID)

	if err := s.keys.Create(ctx, k); err != nil {
		return "", key.Key{}, fmt.Errorf("store key: %w", err)
	}

	s.logger.Info().Str("key_id", k.ID).Str("owner_id", ownerID).Msg("key issued")
	return rawSecret, k, nil
}

// Rotate revokes the user's current key (if any) and issues a fresh
// one carrying over the plan and quota fields. Usage counters do not
// carry over: the rotation starts a clean ledger but the monthly
// window effectively restarts, which is acceptable because rotation is
// rare and operator-driven.
func (s *KeyService) Rotate(ctx context.Context, ownerID string) (rawSecret string, k key.Key, err error) {
	old, err := s.keys.GetByOwner(ctx, ownerID)
	if err == nil && old.Active() {
		if err := s.keys.Revoke(ctx, old.ID, s.clock.Now()); err != nil {
			return "", key.Key{}, fmt.Errorf("revoke old key: %w", err)
		}
	}

	rawSecret, k = key.Generate(s.keyPrefix)
	k = k.WithOwner(ownerID)
	if err == nil {
		// Carry the paid plan across the rotation.
		k.PlanID = old.PlanID
		k.FreeQuota = old.FreeQuota
		k.PurchasedQuota = old.PurchasedQuota
	}

	if err := s.keys.Create(ctx, k); err != nil {
		return "", key.Key{}, fmt.Errorf("store key: %w", err)
	}

	s.logger.Info().Str("key_id", k.ID).Str("owner_id", ownerID).Msg("key rotated")
	return rawSecret, k, nil
}

// Revoke disables a key by id.
func (s *KeyService) Revoke(ctx context.Context, keyID string) error {
	if err := s.keys.Revoke(ctx, keyID, s.clock.Now()); err != nil {
		return err
	}
	s.logger.Info().Str("key_id", keyID).Msg("key revoked")
	return nil
}
