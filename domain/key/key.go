// Package key provides API key value types and pure validation functions.
// This package has NO dependencies on I/O or external packages beyond
// hashing.
package key

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/starfeed/starfeed/domain/ledger"
	"github.com/starfeed/starfeed/domain/plan"
	"golang.org/x/crypto/bcrypt"
)

// PrefixLen is the number of leading secret characters stored in clear
// for lookup.
const PrefixLen = 12

// Key represents one issued bearer credential and its quota state
// (immutable value type). At most one key exists per owner.
type Key struct {
	ID             string
	OwnerID        string
	Hash           []byte // bcrypt hash of the full secret
	Prefix         string // first 12 chars of the secret, for lookup
	PlanID         plan.ID
	FreeQuota      int64
	PurchasedQuota int64
	RevokedAt      *time.Time // nil = active
	CreatedAt      time.Time
	Usage          ledger.Usage
}

// TotalQuota is the effective monthly call ceiling.
func (k Key) TotalQuota() int64 {
	return k.FreeQuota + k.PurchasedQuota
}

// Active reports whether the key can pass the gate.
func (k Key) Active() bool {
	return k.RevokedAt == nil
}

// ValidationResult represents the outcome of key validation (value type).
type ValidationResult struct {
	Valid  bool
	Key    Key    // populated only if Valid
	Reason string // populated only if !Valid
}

// Reasons for gate failure.
const (
	ReasonValid   = ""
	ReasonMissing = "missing_api_key"
	ReasonInvalid = "invalid_api_key" // unknown and revoked are indistinguishable
	ReasonQuota   = "quota_exceeded"
)

// Generate creates a new API key secret with the given prefix.
// Returns the raw secret (shown to the user exactly once) and the Key
// value to store. The raw secret is prefix + 64 hex chars.
func Generate(prefix string) (rawSecret string, k Key) {
	randomBytes := make([]byte, 32)
	if _, err := rand.Read(randomBytes); err != nil {
		panic(fmt.Sprintf("crypto/rand failed: %v", err))
	}
	rawSecret = prefix + hex.EncodeToString(randomBytes)

	hash, err := bcrypt.GenerateFromPassword([]byte(rawSecret), bcrypt.DefaultCost)
	if err != nil {
		panic(fmt.Sprintf("bcrypt failed: %v", err))
	}

	idBytes := make([]byte, 8)
	rand.Read(idBytes)

	free := plan.FreeTier()
	k = Key{
		ID:        "key_" + hex.EncodeToString(idBytes),
		Hash:      hash,
		Prefix:    rawSecret[:PrefixLen],
		PlanID:    free.ID,
		FreeQuota: free.Quota,
		CreatedAt: time.Now().UTC(),
	}
	return rawSecret, k
}

// Matches reports whether rawSecret is the secret this key was issued
// with.
func (k Key) Matches(rawSecret string) bool {
	return bcrypt.CompareHashAndPassword(k.Hash, []byte(rawSecret)) == nil
}

// WithOwner returns a copy of the key bound to an owner.
func (k Key) WithOwner(ownerID string) Key {
	k.OwnerID = ownerID
	return k
}
