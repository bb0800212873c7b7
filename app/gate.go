// Package app provides application services that orchestrate domain
// logic over the ports.
package app

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/starfeed/starfeed/adapters/metrics"
	"github.com/starfeed/starfeed/domain/key"
	"github.com/starfeed/starfeed/domain/ledger"
	"github.com/starfeed/starfeed/ports"
)

// GateService decides whether a metered API call may proceed.
type GateService struct {
	keys      ports.KeyStore
	recorder  ports.LedgerRecorder
	clock     ports.Clock
	metrics   *metrics.Collector
	logger    zerolog.Logger
	keyPrefix string
}

// GateDeps contains dependencies for GateService.
type GateDeps struct {
	Keys     ports.KeyStore
	Recorder ports.LedgerRecorder
	Clock    ports.Clock
	Metrics  *metrics.Collector
	Logger   zerolog.Logger
}

// NewGateService creates a gate service. keyPrefix is the expected
// secret prefix, e.g. "sf_".
func NewGateService(deps GateDeps, keyPrefix string) *GateService {
	return &GateService{
		keys:      deps.Keys,
		recorder:  deps.Recorder,
		clock:     deps.Clock,
		metrics:   deps.Metrics,
		logger:    deps.Logger,
		keyPrefix: keyPrefix,
	}
}

// Decision is the outcome of authorizing one call.
type Decision struct {
	Allowed bool
	Reason  string // key.Reason* when !Allowed
	Key     key.Key
	Quota   ledger.CheckResult
}

// Authorize runs the full gate sequence for one call: secret format,
// prefix lookup, hash match, revocation, then the quota check. The
// quota check runs before recording, so a rejected call is never
// counted. On success the hit is queued on the detached recorder; the
// caller does not wait for persistence.
func (s *GateService) Authorize(ctx context.Context, rawSecret, endpoint string) Decision {
	now := s.clock.Now()

	matched, reason := s.resolve(ctx, rawSecret, now)
	if reason != "" {
		return s.deny(reason)
	}

	check := ledger.Check(matched.Usage, matched.TotalQuota(), now)
	if !check.Allowed {
		if s.metrics != nil {
			s.metrics.GateDecisions.WithLabelValues(key.ReasonQuota).Inc()
			s.metrics.QuotaRejections.WithLabelValues(string(matched.PlanID)).Inc()
		}
		return Decision{Reason: key.ReasonQuota, Key: matched, Quota: check}
	}

	s.recorder.Record(matched.ID, endpoint, now)
	if s.metrics != nil {
		s.metrics.GateDecisions.WithLabelValues("allowed").Inc()
	}
	return Decision{Allowed: true, Key: matched, Quota: check}
}

// Identify resolves a raw secret to its key without touching the quota
// ledger. For surfaces that need the caller's identity but are not
// metered, like checkout.
func (s *GateService) Identify(ctx context.Context, rawSecret string) (key.Key, string) {
	return s.resolve(ctx, rawSecret, s.clock.Now())
}

// resolve runs secret format check, prefix lookup, hash match and
// revocation. Returns the matched key, or a key.Reason* string.
func (s *GateService) resolve(ctx context.Context, rawSecret string, now time.Time) (key.Key, string) {
	if rawSecret == "" {
		return key.Key{}, key.ReasonMissing
	}

	prefix, ok := key.ValidateFormat(rawSecret, s.keyPrefix)
	if !ok {
		return key.Key{}, key.ReasonInvalid
	}

	candidates, err := s.keys.GetByPrefix(ctx, prefix)
	if err != nil {
		s.logger.Error().Err(err).Msg("gate: key lookup failed")
		return key.Key{}, key.ReasonInvalid
	}

	for _, k := range candidates {
		if k.Matches(rawSecret) {
			if v := key.Validate(k, now); !v.Valid {
				return key.Key{}, v.Reason
			}
			return k, ""
		}
	}
	return key.Key{}, key.ReasonInvalid
}

func (s *GateService) deny(reason string) Decision {
	if s.metrics != nil {
		s.metrics.GateDecisions.WithLabelValues(reason).Inc()
	}
	return Decision{Reason: reason}
}
