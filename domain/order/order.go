// Package order provides the payment order value type and its status
// state machine. All functions are pure - no side effects.
package order

import (
	"time"

	"github.com/starfeed/starfeed/domain/plan"
)

// Status is the lifecycle state of an order.
type Status string

const (
	StatusCreated  Status = "created"
	StatusPaid     Status = "paid"
	StatusFailed   Status = "failed"
	StatusRefunded Status = "refunded"
)

// Terminal reports whether no further transition is defined out of s.
// Refund out of paid is an operator action, so paid is terminal from
// the payment flow's point of view but not absolutely.
func (s Status) Terminal() bool {
	return s == StatusFailed || s == StatusRefunded
}

// CanTransition reports whether from -> to is a legal transition.
// All transitions are one-way; nothing ever returns to created.
func CanTransition(from, to Status) bool {
	switch from {
	case StatusCreated:
		return to == StatusPaid || to == StatusFailed
	case StatusPaid:
		return to == StatusRefunded
	default:
		return false
	}
}

// Order is one payment attempt (value type). The plan fields are a
// snapshot taken at creation and never change afterwards, so later
// catalog changes cannot alter what a past order granted.
type Order struct {
	ID               string
	OwnerID          string
	PlanID           plan.ID
	PlanLabel        string
	QuotaGranted     int64
	AmountMinor      int64
	Currency         string
	GatewayOrderID   string // unique, assigned by the payment processor
	GatewayPaymentID string // set only after payment completes
	GatewaySignature string // set only after payment completes
	Status           Status
	Note             string // operator note on manual credit
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// New builds a created-state order snapshotting the given tier.
func New(id, ownerID string, t plan.Tier, gatewayOrderID string, now time.Time) Order {
	return Order{
		ID:             id,
		OwnerID:        ownerID,
		PlanID:         t.ID,
		PlanLabel:      t.Label,
		QuotaGranted:   t.Quota,
		AmountMinor:    t.PriceMinor,
		Currency:       t.Currency,
		GatewayOrderID: gatewayOrderID,
		Status:         StatusCreated,
		CreatedAt:      now.UTC(),
		UpdatedAt:      now.UTC(),
	}
}
