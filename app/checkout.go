package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/starfeed/starfeed/adapters/metrics"
	"github.com/starfeed/starfeed/domain/order"
	"github.com/starfeed/starfeed/domain/plan"
	"github.com/starfeed/starfeed/ports"
)

// Checkout flow errors, mapped to HTTP statuses in web/.
var (
	ErrUnknownPlan       = errors.New("unknown plan")
	ErrFreePlan          = errors.New("free plan cannot be purchased")
	ErrNoActiveKey       = errors.New("no active API key")
	ErrNotAnUpgrade      = errors.New("plan does not increase quota")
	ErrSignatureMismatch = errors.New("payment signature mismatch")
	ErrOrderNotFound     = errors.New("order not found or already processed")
	ErrNotPaid           = errors.New("order is not paid")
	ErrCreditFailed      = errors.New("quota credit failed")
)

// CheckoutService runs the plan purchase flow: order creation, payment
// verification, and quota credit.
type CheckoutService struct {
	orders  ports.OrderStore
	keys    ports.KeyStore
	gateway ports.PaymentGateway
	clock   ports.Clock
	idGen   ports.IDGenerator
	metrics *metrics.Collector
	logger  zerolog.Logger
}

// CheckoutDeps contains dependencies for CheckoutService.
type CheckoutDeps struct {
	Orders  ports.OrderStore
	Keys    ports.KeyStore
	Gateway ports.PaymentGateway
	Clock   ports.Clock
	IDGen   ports.IDGenerator
	Metrics *metrics.Collector
	Logger  zerolog.Logger
}

// NewCheckoutService creates a checkout service.
func NewCheckoutService(deps CheckoutDeps) *CheckoutService {
	return &CheckoutService{
		orders:  deps.Orders,
		keys:    deps.Keys,
		gateway: deps.Gateway,
		clock:   deps.Clock,
		idGen:   deps.IDGen,
		metrics: deps.Metrics,
		logger:  deps.Logger,
	}
}

// CreateOrder opens a payment order for ownerID to buy planID.
// The gateway order is created first; the local row is written only
// after the processor accepted the order.
func (s *CheckoutService) CreateOrder(ctx context.Context, ownerID string, planID plan.ID) (order.Order, error) {
	tier, ok := plan.Lookup(planID)
	if !ok {
		return order.Order{}, ErrUnknownPlan
	}
	if tier.IsFree() {
		return order.Order{}, ErrFreePlan
	}

	k, err := s.keys.GetByOwner(ctx, ownerID)
	if err != nil || !k.Active() {
		return order.Order{}, ErrNoActiveKey
	}
	if tier.Quota <= k.TotalQuota() {
		return order.Order{}, ErrNotAnUpgrade
	}

	id := "ord_" + s.idGen.New()
	gatewayOrderID, err := s.gateway.CreateOrder(ctx, tier.PriceMinor, tier.Currency, id)
	if err != nil {
		return order.Order{}, fmt.Errorf("create gateway order: %w", err)
	}

	o := order.New(id, ownerID, tier, gatewayOrderID, s.clock.Now())
	if err := s.orders.Create(ctx, o); err != nil {
		return order.Order{}, fmt.Errorf("store order: %w", err)
	}

	if s.metrics != nil {
		s.metrics.OrdersCreated.WithLabelValues(string(tier.ID)).Inc()
	}
	s.logger.Info().Str("order_id", o.ID).Str("plan", string(tier.ID)).
		Str("owner_id", ownerID).Msg("order created")
	return o, nil
}

// VerifyPayment reconciles a completed checkout onto the owner's key.
// The signature is checked before any store access; a mismatch mutates
// nothing. The created-status lookup doubles as the idempotency guard:
// a replayed verification finds no pending order and fails cleanly.
func (s *CheckoutService) VerifyPayment(ctx context.Context, ownerID, gatewayOrderID, paymentID, signature string) (order.Order, error) {
	if !s.gateway.VerifySignature(gatewayOrderID, paymentID, signature) {
		s.countVerify("signature_mismatch")
		s.logger.Warn().Str("gateway_order_id", gatewayOrderID).
			Str("owner_id", ownerID).Msg("payment signature mismatch")
		return order.Order{}, ErrSignatureMismatch
	}

	o, err := s.orders.GetPending(ctx, gatewayOrderID, ownerID)
	if err != nil {
		s.countVerify("order_not_found")
		return order.Order{}, ErrOrderNotFound
	}

	now := s.clock.Now()
	if err := s.orders.MarkPaid(ctx, o.ID, paymentID, signature, now); err != nil {
		// Lost the race against a concurrent verification.
		s.countVerify("order_not_found")
		return order.Order{}, ErrOrderNotFound
	}
	o.Status = order.StatusPaid
	o.GatewayPaymentID = paymentID
	o.GatewaySignature = signature
	o.UpdatedAt = now.UTC()

	if err := s.credit(ctx, o); err != nil {
		// Paid but not credited. Surfaced so the operator can run a
		// manual credit; never retried automatically.
		s.countVerify("credit_failed")
		s.logger.Error().Err(err).Str("order_id", o.ID).Msg("quota credit failed after payment")
		return o, ErrCreditFailed
	}

	s.countVerify("ok")
	s.logger.Info().Str("order_id", o.ID).Str("plan", string(o.PlanID)).
		Str("owner_id", ownerID).Msg("payment verified, quota credited")
	return o, nil
}

// ManualCredit re-applies the quota credit for a paid order. Recovery
// for a failed auto-credit, not a payment bypass: the order must
// already be paid.
func (s *CheckoutService) ManualCredit(ctx context.Context, orderID, note string) (order.Order, error) {
	o, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return order.Order{}, ErrOrderNotFound
	}
	if o.Status != order.StatusPaid {
		return order.Order{}, ErrNotPaid
	}

	if err := s.credit(ctx, o); err != nil {
		return o, ErrCreditFailed
	}

	o.Note = note
	s.logger.Info().Str("order_id", o.ID).Str("note", note).Msg("manual credit applied")
	return o, nil
}

// credit sets the owner's key to exactly the purchased tier's quota.
// purchasedQuota = max(0, tier.Quota - freeQuota): an absolute ceiling,
// not a stacking top-up.
func (s *CheckoutService) credit(ctx context.Context, o order.Order) error {
	tier, ok := plan.Lookup(o.PlanID)
	if !ok {
		return fmt.Errorf("order %s references unknown plan %s", o.ID, o.PlanID)
	}

	k, err := s.keys.GetByOwner(ctx, o.OwnerID)
	if err != nil {
		return fmt.Errorf("load key for owner %s: %w", o.OwnerID, err)
	}

	purchased := plan.CreditedQuota(tier, k.FreeQuota)
	if err := s.keys.UpdateQuota(ctx, k.ID, tier.ID, k.FreeQuota, purchased); err != nil {
		return fmt.Errorf("update quota: %w", err)
	}

	if s.metrics != nil {
		s.metrics.QuotasCredited.WithLabelValues(string(tier.ID)).Inc()
	}
	return nil
}

// Refund marks a paid order refunded with an operator note. The quota
// is not clawed back automatically.
func (s *CheckoutService) Refund(ctx context.Context, orderID, note string) error {
	o, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return ErrOrderNotFound
	}
	if o.Status != order.StatusPaid {
		return ErrNotPaid
	}
	return s.orders.UpdateStatus(ctx, orderID, order.StatusRefunded, note, s.clock.Now())
}

func (s *CheckoutService) countVerify(result string) {
	if s.metrics != nil {
		s.metrics.VerifyResults.WithLabelValues(result).Inc()
	}
}
