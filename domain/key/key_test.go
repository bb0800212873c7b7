package key

import (
	"strings"
	"testing"
	"time"
)

func TestGenerate(t *testing.T) {
	raw, k := Generate("sf_")

	if !strings.HasPrefix(raw, "sf_") {
		t.Errorf("raw secret %q missing prefix", raw)
	}
	if len(raw) != 3+64 {
		t.Errorf("len(raw) = %d, want 67", len(raw))
	}
	if k.Prefix != raw[:PrefixLen] {
		t.Errorf("stored prefix %q != first 12 chars of secret", k.Prefix)
	}
	if !k.Matches(raw) {
		t.Error("generated key does not match its own secret")
	}
	if k.Matches(raw[:len(raw)-1] + "0") {
		t.Error("key matched a different secret")
	}
	if k.PlanID != "free" || k.FreeQuota != 500 || k.PurchasedQuota != 0 {
		t.Errorf("new key plan/quota = %s/%d/%d, want free/500/0", k.PlanID, k.FreeQuota, k.PurchasedQuota)
	}
	if !k.Active() {
		t.Error("new key should be active")
	}
}

func TestGenerate_Unique(t *testing.T) {
	a, _ := Generate("sf_")
	b, _ := Generate("sf_")
	if a == b {
		t.Error("two generated secrets were identical")
	}
}

func TestTotalQuota(t *testing.T) {
	k := Key{FreeQuota: 500, PurchasedQuota: 9500}
	if k.TotalQuota() != 10000 {
		t.Errorf("TotalQuota = %d, want 10000", k.TotalQuota())
	}
}

func TestValidate_Revoked(t *testing.T) {
	now := time.Now().UTC()
	revoked := now.Add(-time.Hour)
	k := Key{ID: "key_1", RevokedAt: &revoked}

	res := Validate(k, now)
	if res.Valid {
		t.Fatal("revoked key validated")
	}
	if res.Reason != ReasonInvalid {
		t.Errorf("reason = %q, want %q (revoked must look like unknown)", res.Reason, ReasonInvalid)
	}
}

func TestValidate_Active(t *testing.T) {
	res := Validate(Key{ID: "key_1"}, time.Now().UTC())
	if !res.Valid {
		t.Errorf("active key failed validation: %q", res.Reason)
	}
}

func TestValidateFormat(t *testing.T) {
	raw, _ := Generate("sf_")

	tests := []struct {
		name   string
		secret string
		valid  bool
	}{
		{"well formed", raw, true},
		{"wrong prefix", "xx_" + raw[3:], false},
		{"too short", "sf_abc123", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		prefix, valid := ValidateFormat(tt.secret, "sf_")
		if valid != tt.valid {
			t.Errorf("%s: valid = %v, want %v", tt.name, valid, tt.valid)
		}
		if valid && prefix != tt.secret[:PrefixLen] {
			t.Errorf("%s: prefix = %q, want %q", tt.name, prefix, tt.secret[:PrefixLen])
		}
	}
}
