package payment

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/starfeed/starfeed/domain/payment"
	"github.com/starfeed/starfeed/ports"
)

// DummyGateway is a test/demo gateway that never talks to a processor.
// Order ids are deterministic and signatures verify against a fixed
// secret, so the full checkout flow can be exercised offline.
type DummyGateway struct {
	secret  string
	counter atomic.Int64
}

// NewDummyGateway creates a dummy gateway with the given secret.
func NewDummyGateway(secret string) *DummyGateway {
	return &DummyGateway{secret: secret}
}

// Name returns the gateway name.
func (g *DummyGateway) Name() string {
	return "dummy"
}

// AccountID returns a fake account id.
func (g *DummyGateway) AccountID() string {
	return "acct_dummy"
}

// CreateOrder returns a deterministic order id.
func (g *DummyGateway) CreateOrder(ctx context.Context, amountMinor int64, currency, receipt string) (string, error) {
	n := g.counter.Add(1)
	return fmt.Sprintf("order_dummy_%d", n), nil
}

// VerifySignature verifies against the dummy secret.
func (g *DummyGateway) VerifySignature(gatewayOrderID, paymentID, signature string) bool {
	return payment.Verify(g.secret, gatewayOrderID, paymentID, signature)
}

// Sign produces a valid signature for an order/payment pair. Tests and
// the demo client use this to simulate a successful checkout.
func (g *DummyGateway) Sign(gatewayOrderID, paymentID string) string {
	return payment.Signature(g.secret, gatewayOrderID, paymentID)
}

// Ensure interface compliance.
var _ ports.PaymentGateway = (*DummyGateway)(nil)
