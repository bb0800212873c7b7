package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/starfeed/starfeed/domain/key"
	"github.com/starfeed/starfeed/domain/ledger"
	"github.com/starfeed/starfeed/domain/plan"
	"github.com/starfeed/starfeed/ports"
)

// ErrDuplicateOwner is returned when a second active key is created
// for an owner who already holds one.
var ErrDuplicateOwner = errors.New("owner already has an active key")

// KeyStore implements ports.KeyStore using SQLite.
type KeyStore struct {
	db *DB
}

// NewKeyStore creates a new SQLite key store.
func NewKeyStore(db *DB) *KeyStore {
	return &KeyStore{db: db}
}

const keyColumns = `id, owner_id, hash, prefix, plan_id, free_quota, purchased_quota,
	revoked_at, created_at, lifetime_hits, monthly, daily, endpoints, last_used_at`

// GetByPrefix retrieves keys matching a secret prefix.
func (s *KeyStore) GetByPrefix(ctx context.Context, prefix string) ([]key.Key, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+keyColumns+`
		FROM api_keys
		WHERE prefix = ?
	`, prefix)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []key.Key
	for rows.Next() {
		k, err := scanKey(rows)
		if err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// GetByOwner retrieves the key owned by a user.
func (s *KeyStore) GetByOwner(ctx context.Context, ownerID string) (key.Key, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+keyColumns+`
		FROM api_keys
		WHERE owner_id = ?
		ORDER BY created_at DESC
		LIMIT 1
	`, ownerID)
	return scanKeyRow(row)
}

// GetByID retrieves a key by ID.
func (s *KeyStore) GetByID(ctx context.Context, id string) (key.Key, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+keyColumns+`
		FROM api_keys
		WHERE id = ?
	`, id)
	return scanKeyRow(row)
}

// Create stores a new key. A partial unique index on owner_id guards
// the one-active-key-per-owner invariant even under concurrent issues.
func (s *KeyStore) Create(ctx context.Context, k key.Key) error {
	monthly, daily, endpoints, err := marshalUsage(k.Usage)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO api_keys (`+keyColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, k.ID, k.OwnerID, k.Hash, k.Prefix, string(k.PlanID), k.FreeQuota, k.PurchasedQuota,
		nullTime(k.RevokedAt), k.CreatedAt, k.Usage.LifetimeHits,
		monthly, daily, endpoints, zeroNullTime(k.Usage.LastUsedAt))
	// The only unique index on api_keys is the owner-active one; a
	// duplicate id surfaces as a primary-key constraint instead.
	var sqlErr sqlite3.Error
	if errors.As(err, &sqlErr) && sqlErr.ExtendedCode == sqlite3.ErrConstraintUnique {
		return ErrDuplicateOwner
	}
	return err
}

// Revoke marks a key as revoked.
func (s *KeyStore) Revoke(ctx context.Context, id string, at time.Time) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE api_keys SET revoked_at = ? WHERE id = ? AND revoked_at IS NULL
	`, at, id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateQuota sets the plan and quota fields on a key.
func (s *KeyStore) UpdateQuota(ctx context.Context, id string, planID plan.ID, freeQuota, purchasedQuota int64) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE api_keys SET plan_id = ?, free_quota = ?, purchased_quota = ? WHERE id = ?
	`, string(planID), freeQuota, purchasedQuota, id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// RecordHits applies a batch of accepted calls to the key's ledger.
// The read-modify-write runs in one transaction so concurrent batches
// for the same key serialize instead of losing counts.
func (s *KeyStore) RecordHits(ctx context.Context, id string, hits []ledger.Hit) error {
	if len(hits) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, `
		SELECT lifetime_hits, monthly, daily, endpoints, last_used_at
		FROM api_keys
		WHERE id = ?
	`, id)

	var u ledger.Usage
	var monthly, daily, endpoints string
	var lastUsed sql.NullTime
	err = row.Scan(&u.LifetimeHits, &monthly, &daily, &endpoints, &lastUsed)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if err := unmarshalUsage(monthly, daily, endpoints, &u); err != nil {
		return err
	}
	if lastUsed.Valid {
		u.LastUsedAt = lastUsed.Time
	}

	u = ledger.RecordAll(u, hits)

	monthlyOut, dailyOut, endpointsOut, err := marshalUsage(u)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `
		UPDATE api_keys
		SET lifetime_hits = ?, monthly = ?, daily = ?, endpoints = ?, last_used_at = ?
		WHERE id = ?
	`, u.LifetimeHits, monthlyOut, dailyOut, endpointsOut, zeroNullTime(u.LastUsedAt), id)
	if err != nil {
		return err
	}
	return tx.Commit()
}

func scanKey(rows *sql.Rows) (key.Key, error) {
	var k key.Key
	var planID string
	var monthly, daily, endpoints string
	var revokedAt, lastUsed sql.NullTime

	err := rows.Scan(
		&k.ID, &k.OwnerID, &k.Hash, &k.Prefix, &planID, &k.FreeQuota, &k.PurchasedQuota,
		&revokedAt, &k.CreatedAt, &k.Usage.LifetimeHits, &monthly, &daily, &endpoints, &lastUsed,
	)
	if err != nil {
		return key.Key{}, err
	}
	return finishKey(k, planID, monthly, daily, endpoints, revokedAt, lastUsed)
}

func scanKeyRow(row *sql.Row) (key.Key, error) {
	var k key.Key
	var planID string
	var monthly, daily, endpoints string
	var revokedAt, lastUsed sql.NullTime

	err := row.Scan(
		&k.ID, &k.OwnerID, &k.Hash, &k.Prefix, &planID, &k.FreeQuota, &k.PurchasedQuota,
		&revokedAt, &k.CreatedAt, &k.Usage.LifetimeHits, &monthly, &daily, &endpoints, &lastUsed,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return key.Key{}, ErrNotFound
	}
	if err != nil {
		return key.Key{}, err
	}
	return finishKey(k, planID, monthly, daily, endpoints, revokedAt, lastUsed)
}

func finishKey(k key.Key, planID, monthly, daily, endpoints string, revokedAt, lastUsed sql.NullTime) (key.Key, error) {
	k.PlanID = plan.ID(planID)
	if err := unmarshalUsage(monthly, daily, endpoints, &k.Usage); err != nil {
		return key.Key{}, err
	}
	if revokedAt.Valid {
		k.RevokedAt = &revokedAt.Time
	}
	if lastUsed.Valid {
		k.Usage.LastUsedAt = lastUsed.Time
	}
	return k, nil
}

func marshalUsage(u ledger.Usage) (monthly, daily, endpoints string, err error) {
	m, err := json.Marshal(emptySlice(u.Monthly))
	if err != nil {
		return "", "", "", err
	}
	d, err := json.Marshal(emptySlice(u.Daily))
	if err != nil {
		return "", "", "", err
	}
	e, err := json.Marshal(emptySliceStat(u.Endpoints))
	if err != nil {
		return "", "", "", err
	}
	return string(m), string(d), string(e), nil
}

func unmarshalUsage(monthly, daily, endpoints string, u *ledger.Usage) error {
	if monthly != "" && monthly != "null" {
		if err := json.Unmarshal([]byte(monthly), &u.Monthly); err != nil {
			return err
		}
	}
	if daily != "" && daily != "null" {
		if err := json.Unmarshal([]byte(daily), &u.Daily); err != nil {
			return err
		}
	}
	if endpoints != "" && endpoints != "null" {
		if err := json.Unmarshal([]byte(endpoints), &u.Endpoints); err != nil {
			return err
		}
	}
	return nil
}

func emptySlice(s []ledger.PeriodCount) []ledger.PeriodCount {
	if s == nil {
		return []ledger.PeriodCount{}
	}
	return s
}

func emptySliceStat(s []ledger.EndpointStat) []ledger.EndpointStat {
	if s == nil {
		return []ledger.EndpointStat{}
	}
	return s
}

// nullTime converts a *time.Time to sql.NullTime.
func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

// zeroNullTime converts a possibly-zero time.Time to sql.NullTime.
func zeroNullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t, Valid: true}
}

// Ensure interface compliance.
var _ ports.KeyStore = (*KeyStore)(nil)
