package app_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/starfeed/starfeed/adapters/auth"
	"github.com/starfeed/starfeed/adapters/clock"
	"github.com/starfeed/starfeed/adapters/hasher"
	"github.com/starfeed/starfeed/adapters/idgen"
	"github.com/starfeed/starfeed/adapters/memory"
	"github.com/starfeed/starfeed/app"
	"github.com/starfeed/starfeed/domain/plan"
	"github.com/starfeed/starfeed/ports"
)

func newKeyFixture(t *testing.T) (*app.KeyService, *memory.KeyStore, *memory.UserStore) {
	t.Helper()

	keys := memory.NewKeyStore()
	users := memory.NewUserStore()
	clk := clock.NewFixed(time.Date(2026, 6, 10, 12, 0, 0, 0, time.UTC))

	u := ports.User{ID: "user-1", Email: "a@b.c", Role: "user", Status: "active"}
	if err := users.Create(context.Background(), u); err != nil {
		t.Fatalf("create user: %v", err)
	}

	return app.NewKeyService(keys, users, clk, zerolog.Nop(), "sf_"), keys, users
}

func TestKeyService_Issue(t *testing.T) {
	svc, keys, _ := newKeyFixture(t)
	ctx := context.Background()

	raw, k, err := svc.Issue(ctx, "user-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if !strings.HasPrefix(raw, "sf_") || len(raw) != 3+64 {
		t.Errorf("raw secret = %q, want sf_ + 64 hex chars", raw)
	}
	if k.PlanID != plan.Free || k.FreeQuota != 500 || k.PurchasedQuota != 0 {
		t.Errorf("new key should start on free tier: %+v", k)
	}

	stored, err := keys.GetByID(ctx, k.ID)
	if err != nil {
		t.Fatalf("get key: %v", err)
	}
	if !stored.Matches(raw) {
		t.Error("stored hash should match the raw secret")
	}
	if stored.Prefix != raw[:12] {
		t.Errorf("Prefix = %s, want %s", stored.Prefix, raw[:12])
	}
}

func TestKeyService_Issue_UnknownUser(t *testing.T) {
	svc, _, _ := newKeyFixture(t)

	if _, _, err := svc.Issue(context.Background(), "user-nobody"); err == nil {
		t.Fatal("expected error for unknown user")
	}
}

func TestKeyService_Issue_SecondKeyRejected(t *testing.T) {
	svc, _, _ := newKeyFixture(t)
	ctx := context.Background()

	if _, _, err := svc.Issue(ctx, "user-1"); err != nil {
		t.Fatalf("first issue: %v", err)
	}
	if _, _, err := svc.Issue(ctx, "user-1"); err != app.ErrActiveKeyExists {
		t.Fatalf("second issue = %v, want ErrActiveKeyExists", err)
	}
}

func TestKeyService_Rotate_CarriesPlan(t *testing.T) {
	svc, keys, _ := newKeyFixture(t)
	ctx := context.Background()

	_, old, err := svc.Issue(ctx, "user-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if err := keys.UpdateQuota(ctx, old.ID, plan.Pro, 500, 9500); err != nil {
		t.Fatalf("update quota: %v", err)
	}

	raw2, fresh, err := svc.Rotate(ctx, "user-1")
	if err != nil {
		t.Fatalf("rotate: %v", err)
	}

	oldStored, _ := keys.GetByID(ctx, old.ID)
	if oldStored.Active() {
		t.Error("old key should be revoked")
	}

	if fresh.PlanID != plan.Pro || fresh.TotalQuota() != 10000 {
		t.Errorf("rotated key should carry the plan: %+v", fresh)
	}
	if oldStored.Matches(raw2) {
		t.Error("new secret must not match the old hash")
	}
}

func TestKeyService_Revoke(t *testing.T) {
	svc, keys, _ := newKeyFixture(t)
	ctx := context.Background()

	_, k, _ := svc.Issue(ctx, "user-1")
	if err := svc.Revoke(ctx, k.ID); err != nil {
		t.Fatalf("revoke: %v", err)
	}

	stored, _ := keys.GetByID(ctx, k.ID)
	if stored.Active() {
		t.Error("key should be revoked")
	}
}

func newTestTokenService() *auth.TokenService {
	return auth.NewTokenService("test-secret", time.Hour)
}

func TestUserService_LoginFlow(t *testing.T) {
	users := memory.NewUserStore()
	clk := clock.NewFixed(time.Date(2026, 6, 10, 12, 0, 0, 0, time.UTC))
	h := hasher.NewBcrypt(4) // low cost for tests
	tokens := newTestTokenService()

	svc := app.NewUserService(users, h, tokens, clk, idgen.NewSequential("u-"), zerolog.Nop())
	ctx := context.Background()

	u, err := svc.Register(ctx, "Admin@Starfeed.io", "Admin", "hunter22", "admin")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if u.Email != "admin@starfeed.io" {
		t.Errorf("Email = %s, want lowercased", u.Email)
	}

	token, got, err := svc.Login(ctx, "admin@starfeed.io", "hunter22")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if token == "" || got.ID != u.ID {
		t.Errorf("token = %q, user = %+v", token, got)
	}

	// Wrong password and unknown email fail identically.
	_, _, errWrong := svc.Login(ctx, "admin@starfeed.io", "nope")
	_, _, errUnknown := svc.Login(ctx, "ghost@starfeed.io", "hunter22")
	if errWrong != app.ErrInvalidCredentials || errUnknown != app.ErrInvalidCredentials {
		t.Errorf("errors = %v, %v, want ErrInvalidCredentials for both", errWrong, errUnknown)
	}

	// Suspended accounts cannot log in.
	u.Status = "suspended"
	users.Update(ctx, u)
	if _, _, err := svc.Login(ctx, "admin@starfeed.io", "hunter22"); err != app.ErrUserSuspended {
		t.Errorf("err = %v, want ErrUserSuspended", err)
	}
}
