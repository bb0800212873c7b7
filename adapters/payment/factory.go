package payment

import (
	"fmt"

	"github.com/starfeed/starfeed/ports"
)

// Config selects and configures a payment gateway.
type Config struct {
	Provider string // "razorpay" or "dummy"
	Razorpay RazorpayConfig
	// DummySecret signs dummy-gateway payments.
	DummySecret string
}

// New creates a payment gateway from config.
func New(cfg Config) (ports.PaymentGateway, error) {
	switch cfg.Provider {
	case "razorpay":
		if cfg.Razorpay.KeyID == "" || cfg.Razorpay.KeySecret == "" {
			return nil, fmt.Errorf("razorpay requires key_id and key_secret")
		}
		return NewRazorpayGateway(cfg.Razorpay), nil
	case "dummy", "":
		secret := cfg.DummySecret
		if secret == "" {
			secret = "dummy-secret"
		}
		return NewDummyGateway(secret), nil
	default:
		return nil, fmt.Errorf("unknown payment provider: %s", cfg.Provider)
	}
}
