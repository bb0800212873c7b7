package order

import (
	"testing"
	"time"

	"github.com/starfeed/starfeed/domain/plan"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to Status
		want     bool
	}{
		{StatusCreated, StatusPaid, true},
		{StatusCreated, StatusFailed, true},
		{StatusPaid, StatusRefunded, true},
		{StatusCreated, StatusRefunded, false},
		{StatusPaid, StatusCreated, false},
		{StatusPaid, StatusFailed, false},
		{StatusFailed, StatusCreated, false},
		{StatusFailed, StatusPaid, false},
		{StatusRefunded, StatusPaid, false},
		{StatusRefunded, StatusCreated, false},
	}

	for _, tt := range tests {
		if got := CanTransition(tt.from, tt.to); got != tt.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestTerminal(t *testing.T) {
	if StatusCreated.Terminal() {
		t.Error("created must not be terminal")
	}
	if !StatusFailed.Terminal() || !StatusRefunded.Terminal() {
		t.Error("failed and refunded must be terminal")
	}
}

func TestNew_SnapshotsPlan(t *testing.T) {
	pro, _ := plan.Lookup(plan.Pro)
	now := time.Date(2026, 8, 10, 12, 0, 0, 0, time.UTC)

	o := New("ord_1", "user_1", pro, "gw_order_1", now)

	if o.Status != StatusCreated {
		t.Errorf("Status = %s, want created", o.Status)
	}
	if o.PlanID != plan.Pro || o.PlanLabel != "Pro" {
		t.Errorf("plan snapshot = %s/%s", o.PlanID, o.PlanLabel)
	}
	if o.QuotaGranted != 10000 {
		t.Errorf("QuotaGranted = %d, want 10000", o.QuotaGranted)
	}
	if o.AmountMinor != 49900 || o.Currency != "INR" {
		t.Errorf("amount = %d %s, want 49900 INR", o.AmountMinor, o.Currency)
	}
	if o.GatewayPaymentID != "" || o.GatewaySignature != "" {
		t.Error("payment fields must be empty at creation")
	}
}
