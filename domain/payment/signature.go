// Package payment provides pure payment-signature verification.
// The processor signs orderID + "|" + paymentID with HMAC-SHA256 over
// the shared secret; verification recomputes and compares in constant
// time. Any mismatch is a hard failure - callers must not retry.
package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Signature computes the expected hex signature for an order/payment
// pair. This is a PURE function.
func Signature(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify reports whether signature matches the expected signature for
// the order/payment pair, using a constant-time comparison.
func Verify(secret, orderID, paymentID, signature string) bool {
	expected := Signature(secret, orderID, paymentID)
	return hmac.Equal([]byte(expected), []byte(signature))
}
