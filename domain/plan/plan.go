// Package plan defines the static plan catalog.
// The catalog is a closed enumeration compiled into the binary: plan
// changes require a deploy, never a data migration, so orders keep the
// snapshot they were created with even if the catalog changes later.
// This package has NO dependencies on I/O or external packages.
package plan

import "fmt"

// ID identifies a plan tier.
type ID string

// The full set of plan tiers. There are no others.
const (
	Free    ID = "free"
	Starter ID = "starter"
	Pro     ID = "pro"
	Ultra   ID = "ultra"
)

// Tier carries the fixed attributes of one plan tier (immutable value type).
type Tier struct {
	ID         ID
	Label      string
	PriceMinor int64 // minor currency units (paise)
	Currency   string
	Quota      int64 // monthly call ceiling
	QuotaLabel string
}

// tiers is the authoritative catalog, in display order.
var tiers = [...]Tier{
	{ID: Free, Label: "Free", PriceMinor: 0, Currency: "INR", Quota: 500, QuotaLabel: "500 calls/month"},
	{ID: Starter, Label: "Starter", PriceMinor: 19900, Currency: "INR", Quota: 5000, QuotaLabel: "5,000 calls/month"},
	{ID: Pro, Label: "Pro", PriceMinor: 49900, Currency: "INR", Quota: 10000, QuotaLabel: "10,000 calls/month"},
	{ID: Ultra, Label: "Ultra", PriceMinor: 199900, Currency: "INR", Quota: 50000, QuotaLabel: "50,000 calls/month"},
}

// Tiers returns the catalog in display order.
func Tiers() []Tier {
	out := make([]Tier, len(tiers))
	copy(out, tiers[:])
	return out
}

// Lookup resolves a plan id to its tier.
// This is a PURE function.
func Lookup(id ID) (Tier, bool) {
	for _, t := range tiers {
		if t.ID == id {
			return t, true
		}
	}
	return Tier{}, false
}

// Valid reports whether id names a known tier.
func (id ID) Valid() bool {
	_, ok := Lookup(id)
	return ok
}

// IsFree reports whether the tier is the free tier.
func (t Tier) IsFree() bool {
	return t.ID == Free
}

// CreditedQuota returns the purchased quota to set on a key when the
// tier is credited: the key's total must equal exactly the tier's quota,
// so the purchase sets an absolute ceiling instead of stacking.
// This is a PURE function.
func CreditedQuota(t Tier, freeQuota int64) int64 {
	q := t.Quota - freeQuota
	if q < 0 {
		return 0
	}
	return q
}

// PriceDisplay renders the tier price in major units, e.g. "INR 199.00".
func (t Tier) PriceDisplay() string {
	return fmt.Sprintf("%s %d.%02d", t.Currency, t.PriceMinor/100, t.PriceMinor%100)
}

// FreeTier returns the free tier.
func FreeTier() Tier {
	t, _ := Lookup(Free)
	return t
}
