package sqlite_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/starfeed/starfeed/adapters/sqlite"
	"github.com/starfeed/starfeed/domain/content"
	"github.com/starfeed/starfeed/domain/key"
	"github.com/starfeed/starfeed/domain/ledger"
	"github.com/starfeed/starfeed/domain/order"
	"github.com/starfeed/starfeed/domain/plan"
	"github.com/starfeed/starfeed/ports"
)

func setupTestDB(t *testing.T) (*sqlite.DB, func()) {
	t.Helper()

	f, err := os.CreateTemp("", "starfeed-test-*.db")
	if err != nil {
		t.Fatalf("create temp file: %v", err)
	}
	path := f.Name()
	f.Close()

	db, err := sqlite.Open(path)
	if err != nil {
		os.Remove(path)
		t.Fatalf("open database: %v", err)
	}

	if err := db.Migrate(); err != nil {
		db.Close()
		os.Remove(path)
		t.Fatalf("migrate: %v", err)
	}

	cleanup := func() {
		db.Close()
		os.Remove(path)
	}

	return db, cleanup
}

func createTestUser(t *testing.T, db *sqlite.DB, id string) {
	t.Helper()
	store := sqlite.NewUserStore(db)
	u := ports.User{
		ID:        id,
		Email:     id + "@example.com",
		Role:      "user",
		Status:    "active",
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	if err := store.Create(context.Background(), u); err != nil {
		t.Fatalf("create user: %v", err)
	}
}

// -----------------------------------------------------------------------------
// UserStore Tests
// -----------------------------------------------------------------------------

func TestUserStore_CreateAndGet(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	store := sqlite.NewUserStore(db)
	ctx := context.Background()

	user := ports.User{
		ID:        "user-1",
		Email:     "test@example.com",
		Name:      "Test User",
		Role:      "user",
		Status:    "active",
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}

	if err := store.Create(ctx, user); err != nil {
		t.Fatalf("create user: %v", err)
	}

	got, err := store.Get(ctx, user.ID)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}

	if got.ID != user.ID {
		t.Errorf("ID = %s, want %s", got.ID, user.ID)
	}
	if got.Email != user.Email {
		t.Errorf("Email = %s, want %s", got.Email, user.Email)
	}

	byEmail, err := store.GetByEmail(ctx, user.Email)
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if byEmail.ID != user.ID {
		t.Errorf("ID = %s, want %s", byEmail.ID, user.ID)
	}
}

func TestUserStore_DuplicateEmail(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	store := sqlite.NewUserStore(db)
	ctx := context.Background()
	now := time.Now().UTC()

	u1 := ports.User{ID: "user-1", Email: "dupe@example.com", Role: "user", Status: "active", CreatedAt: now, UpdatedAt: now}
	if err := store.Create(ctx, u1); err != nil {
		t.Fatalf("create user1: %v", err)
	}

	u2 := ports.User{ID: "user-2", Email: "dupe@example.com", Role: "user", Status: "active", CreatedAt: now, UpdatedAt: now}
	if err := store.Create(ctx, u2); err == nil {
		t.Fatal("expected error for duplicate email")
	}
}

func TestUserStore_NotFound(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	store := sqlite.NewUserStore(db)
	if _, err := store.Get(context.Background(), "nonexistent"); err != sqlite.ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

// -----------------------------------------------------------------------------
// KeyStore Tests
// -----------------------------------------------------------------------------

func TestKeyStore_CreateAndGetByPrefix(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	createTestUser(t, db, "user-1")
	store := sqlite.NewKeyStore(db)
	ctx := context.Background()

	k := key.Key{
		ID:        "key-1",
		OwnerID:   "user-1",
		Hash:      []byte("hash123"),
		Prefix:    "sf_123456789",
		PlanID:    plan.Free,
		FreeQuota: 500,
		CreatedAt: time.Now().UTC(),
	}

	if err := store.Create(ctx, k); err != nil {
		t.Fatalf("create key: %v", err)
	}

	keys, err := store.GetByPrefix(ctx, k.Prefix)
	if err != nil {
		t.Fatalf("get by prefix: %v", err)
	}
	if len(keys) != 1 {
		t.Fatalf("len = %d, want 1", len(keys))
	}

	got := keys[0]
	if got.ID != k.ID {
		t.Errorf("ID = %s, want %s", got.ID, k.ID)
	}
	if got.PlanID != plan.Free {
		t.Errorf("PlanID = %s, want free", got.PlanID)
	}
	if got.FreeQuota != 500 {
		t.Errorf("FreeQuota = %d, want 500", got.FreeQuota)
	}
}

func TestKeyStore_OneActiveKeyPerOwner(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	createTestUser(t, db, "user-1")
	store := sqlite.NewKeyStore(db)
	ctx := context.Background()
	now := time.Now().UTC()

	first := key.Key{
		ID:        "key-1",
		OwnerID:   "user-1",
		Hash:      []byte("hash1"),
		Prefix:    "sf_owner0001",
		PlanID:    plan.Free,
		FreeQuota: 500,
		CreatedAt: now,
	}
	if err := store.Create(ctx, first); err != nil {
		t.Fatalf("create first key: %v", err)
	}

	second := first
	second.ID = "key-2"
	second.Hash = []byte("hash2")
	second.Prefix = "sf_owner0002"
	if err := store.Create(ctx, second); err != sqlite.ErrDuplicateOwner {
		t.Fatalf("second active key = %v, want ErrDuplicateOwner", err)
	}

	// After revoking the first key the owner may get a new one.
	if err := store.Revoke(ctx, first.ID, now); err != nil {
		t.Fatalf("revoke first key: %v", err)
	}
	if err := store.Create(ctx, second); err != nil {
		t.Fatalf("create after revoke: %v", err)
	}
}

func TestKeyStore_Revoke(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	createTestUser(t, db, "user-1")
	store := sqlite.NewKeyStore(db)
	ctx := context.Background()

	k := key.Key{
		ID:        "key-1",
		OwnerID:   "user-1",
		Hash:      []byte("hash"),
		Prefix:    "sf_revoke123",
		PlanID:    plan.Free,
		CreatedAt: time.Now().UTC(),
	}
	store.Create(ctx, k)

	if err := store.Revoke(ctx, k.ID, time.Now().UTC()); err != nil {
		t.Fatalf("revoke key: %v", err)
	}

	got, err := store.GetByID(ctx, k.ID)
	if err != nil {
		t.Fatalf("get key: %v", err)
	}
	if got.RevokedAt == nil {
		t.Fatal("RevokedAt should not be nil")
	}

	// Revoking again is a no-op failure
	if err := store.Revoke(ctx, k.ID, time.Now().UTC()); err != sqlite.ErrNotFound {
		t.Errorf("second revoke = %v, want ErrNotFound", err)
	}
}

func TestKeyStore_UpdateQuota(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	createTestUser(t, db, "user-1")
	store := sqlite.NewKeyStore(db)
	ctx := context.Background()

	k := key.Key{
		ID:        "key-1",
		OwnerID:   "user-1",
		Hash:      []byte("hash"),
		Prefix:    "sf_quota1234",
		PlanID:    plan.Free,
		FreeQuota: 500,
		CreatedAt: time.Now().UTC(),
	}
	store.Create(ctx, k)

	if err := store.UpdateQuota(ctx, k.ID, plan.Pro, 500, 9500); err != nil {
		t.Fatalf("update quota: %v", err)
	}

	got, err := store.GetByID(ctx, k.ID)
	if err != nil {
		t.Fatalf("get key: %v", err)
	}
	if got.PlanID != plan.Pro {
		t.Errorf("PlanID = %s, want pro", got.PlanID)
	}
	if got.TotalQuota() != 10000 {
		t.Errorf("TotalQuota = %d, want 10000", got.TotalQuota())
	}
}

func TestKeyStore_RecordHits(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	createTestUser(t, db, "user-1")
	store := sqlite.NewKeyStore(db)
	ctx := context.Background()

	k := key.Key{
		ID:        "key-1",
		OwnerID:   "user-1",
		Hash:      []byte("hash"),
		Prefix:    "sf_hits12345",
		PlanID:    plan.Free,
		FreeQuota: 500,
		CreatedAt: time.Now().UTC(),
	}
	store.Create(ctx, k)

	at := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	hits := []ledger.Hit{
		{Endpoint: "GET /v1/celebrities", At: at},
		{Endpoint: "GET /v1/movies", At: at.Add(time.Minute)},
		{Endpoint: "GET /v1/celebrities", At: at.Add(2 * time.Minute)},
	}
	if err := store.RecordHits(ctx, k.ID, hits); err != nil {
		t.Fatalf("record hits: %v", err)
	}

	got, err := store.GetByID(ctx, k.ID)
	if err != nil {
		t.Fatalf("get key: %v", err)
	}
	if got.Usage.LifetimeHits != 3 {
		t.Errorf("LifetimeHits = %d, want 3", got.Usage.LifetimeHits)
	}
	if n := ledger.MonthUsage(got.Usage, at); n != 3 {
		t.Errorf("MonthUsage = %d, want 3", n)
	}
	if len(got.Usage.Endpoints) != 2 {
		t.Errorf("Endpoints len = %d, want 2", len(got.Usage.Endpoints))
	}

	// Second batch accumulates on top of the persisted ledger.
	if err := store.RecordHits(ctx, k.ID, hits[:1]); err != nil {
		t.Fatalf("record second batch: %v", err)
	}
	got, _ = store.GetByID(ctx, k.ID)
	if got.Usage.LifetimeHits != 4 {
		t.Errorf("LifetimeHits = %d, want 4", got.Usage.LifetimeHits)
	}
}

func TestKeyStore_RecordHits_UnknownKey(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	store := sqlite.NewKeyStore(db)
	hits := []ledger.Hit{{Endpoint: "GET /v1/movies", At: time.Now().UTC()}}
	if err := store.RecordHits(context.Background(), "nonexistent", hits); err != sqlite.ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

// -----------------------------------------------------------------------------
// OrderStore Tests
// -----------------------------------------------------------------------------

func TestOrderStore_MarkPaid_OptimisticLock(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	createTestUser(t, db, "user-1")
	store := sqlite.NewOrderStore(db)
	ctx := context.Background()
	now := time.Now().UTC()

	tier, _ := plan.Lookup(plan.Starter)
	o := order.New("ord-1", "user-1", tier, "rzp_order_1", now)
	if err := store.Create(ctx, o); err != nil {
		t.Fatalf("create order: %v", err)
	}

	pending, err := store.GetPending(ctx, "rzp_order_1", "user-1")
	if err != nil {
		t.Fatalf("get pending: %v", err)
	}
	if pending.ID != "ord-1" {
		t.Errorf("ID = %s, want ord-1", pending.ID)
	}

	if err := store.MarkPaid(ctx, o.ID, "pay_1", "sig_1", now); err != nil {
		t.Fatalf("mark paid: %v", err)
	}

	// Exactly one attempt wins: the second sees ErrNotFound.
	if err := store.MarkPaid(ctx, o.ID, "pay_2", "sig_2", now); err != sqlite.ErrNotFound {
		t.Errorf("second mark paid = %v, want ErrNotFound", err)
	}

	got, _ := store.Get(ctx, o.ID)
	if got.Status != order.StatusPaid {
		t.Errorf("Status = %s, want paid", got.Status)
	}
	if got.GatewayPaymentID != "pay_1" {
		t.Errorf("GatewayPaymentID = %s, want pay_1", got.GatewayPaymentID)
	}

	// Paid order no longer shows up as pending.
	if _, err := store.GetPending(ctx, "rzp_order_1", "user-1"); err != sqlite.ErrNotFound {
		t.Errorf("get pending after paid = %v, want ErrNotFound", err)
	}
}

func TestOrderStore_DuplicateGatewayOrderID(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	createTestUser(t, db, "user-1")
	store := sqlite.NewOrderStore(db)
	ctx := context.Background()
	now := time.Now().UTC()

	tier, _ := plan.Lookup(plan.Starter)
	if err := store.Create(ctx, order.New("ord-1", "user-1", tier, "rzp_order_1", now)); err != nil {
		t.Fatalf("create order: %v", err)
	}
	if err := store.Create(ctx, order.New("ord-2", "user-1", tier, "rzp_order_1", now)); err == nil {
		t.Fatal("expected error for duplicate gateway order id")
	}
}

func TestOrderStore_UpdateStatus_Transitions(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	createTestUser(t, db, "user-1")
	store := sqlite.NewOrderStore(db)
	ctx := context.Background()
	now := time.Now().UTC()

	tier, _ := plan.Lookup(plan.Pro)
	o := order.New("ord-1", "user-1", tier, "rzp_order_1", now)
	store.Create(ctx, o)

	// created -> failed is allowed.
	if err := store.UpdateStatus(ctx, o.ID, order.StatusFailed, "signature mismatch", now); err != nil {
		t.Fatalf("update status: %v", err)
	}

	// failed -> refunded is not.
	if err := store.UpdateStatus(ctx, o.ID, order.StatusRefunded, "", now); err != sqlite.ErrNotFound {
		t.Errorf("invalid transition = %v, want ErrNotFound", err)
	}
}

func TestOrderStore_List(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	createTestUser(t, db, "user-1")
	store := sqlite.NewOrderStore(db)
	ctx := context.Background()

	tier, _ := plan.Lookup(plan.Starter)
	for i := 0; i < 3; i++ {
		o := order.New("ord-"+string(rune('a'+i)), "user-1", tier, "rzp_"+string(rune('a'+i)),
			time.Now().UTC().Add(time.Duration(i)*time.Second))
		store.Create(ctx, o)
	}

	byOwner, err := store.ListByOwner(ctx, "user-1", 0, 0)
	if err != nil {
		t.Fatalf("list by owner: %v", err)
	}
	if len(byOwner) != 3 {
		t.Errorf("len = %d, want 3", len(byOwner))
	}

	byStatus, err := store.ListByStatus(ctx, order.StatusCreated, 2, 0)
	if err != nil {
		t.Fatalf("list by status: %v", err)
	}
	if len(byStatus) != 2 {
		t.Errorf("len = %d, want 2", len(byStatus))
	}
}

// -----------------------------------------------------------------------------
// ContentStore Tests
// -----------------------------------------------------------------------------

func TestContentStore_CelebrityRoundTrip(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	store := sqlite.NewContentStore(db)
	ctx := context.Background()
	now := time.Now().UTC()

	c := content.Celebrity{
		ID:          "cel-1",
		Name:        "Ana de Armas",
		Slug:        "ana-de-armas",
		Bio:         "Actress.",
		BirthDate:   "1988-04-30",
		Nationality: "Cuban",
		Tags:        []string{"actress", "fashion"},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := store.CreateCelebrity(ctx, c); err != nil {
		t.Fatalf("create celebrity: %v", err)
	}

	got, err := store.GetCelebrityBySlug(ctx, "ana-de-armas")
	if err != nil {
		t.Fatalf("get by slug: %v", err)
	}
	if got.Name != c.Name {
		t.Errorf("Name = %s, want %s", got.Name, c.Name)
	}
	if len(got.Tags) != 2 || got.Tags[0] != "actress" {
		t.Errorf("Tags = %v", got.Tags)
	}

	// Duplicate slug rejected.
	dup := c
	dup.ID = "cel-2"
	if err := store.CreateCelebrity(ctx, dup); err == nil {
		t.Fatal("expected error for duplicate slug")
	}

	got.Bio = "Updated bio."
	if err := store.UpdateCelebrity(ctx, got); err != nil {
		t.Fatalf("update celebrity: %v", err)
	}

	if err := store.DeleteCelebrity(ctx, "cel-1"); err != nil {
		t.Fatalf("delete celebrity: %v", err)
	}
	if _, err := store.GetCelebrityBySlug(ctx, "ana-de-armas"); err != sqlite.ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestContentStore_OutfitsByCelebrity(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	store := sqlite.NewContentStore(db)
	ctx := context.Background()
	now := time.Now().UTC()

	c := content.Celebrity{ID: "cel-1", Name: "Zendaya", Slug: "zendaya", CreatedAt: now, UpdatedAt: now}
	if err := store.CreateCelebrity(ctx, c); err != nil {
		t.Fatalf("create celebrity: %v", err)
	}

	for i := 0; i < 3; i++ {
		o := content.Outfit{
			ID:          "out-" + string(rune('a'+i)),
			CelebrityID: "cel-1",
			Title:       "Look " + string(rune('A'+i)),
			CreatedAt:   now.Add(time.Duration(i) * time.Second),
			UpdatedAt:   now,
		}
		if err := store.CreateOutfit(ctx, o); err != nil {
			t.Fatalf("create outfit %d: %v", i, err)
		}
	}

	outfits, err := store.ListOutfits(ctx, "cel-1", 0, 0)
	if err != nil {
		t.Fatalf("list outfits: %v", err)
	}
	if len(outfits) != 3 {
		t.Errorf("len = %d, want 3", len(outfits))
	}

	none, err := store.ListOutfits(ctx, "cel-other", 0, 0)
	if err != nil {
		t.Fatalf("list outfits: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("len = %d, want 0", len(none))
	}
}

func TestContentStore_ReviewsByMovie(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	store := sqlite.NewContentStore(db)
	ctx := context.Background()
	now := time.Now().UTC()

	m := content.Movie{ID: "mov-1", Title: "Dune", Slug: "dune", ReleaseYear: 2021, CreatedAt: now, UpdatedAt: now}
	if err := store.CreateMovie(ctx, m); err != nil {
		t.Fatalf("create movie: %v", err)
	}

	r := content.Review{ID: "rev-1", MovieID: "mov-1", AuthorID: "user-1", Rating: 5, Body: "Great.", CreatedAt: now, UpdatedAt: now}
	if err := store.CreateReview(ctx, r); err != nil {
		t.Fatalf("create review: %v", err)
	}

	reviews, err := store.ListReviews(ctx, "mov-1", 0, 0)
	if err != nil {
		t.Fatalf("list reviews: %v", err)
	}
	if len(reviews) != 1 || reviews[0].Rating != 5 {
		t.Errorf("reviews = %+v", reviews)
	}
}

// -----------------------------------------------------------------------------
// Migration Tests
// -----------------------------------------------------------------------------

func TestMigration_Idempotent(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	if err := db.Migrate(); err != nil {
		t.Fatalf("second migration: %v", err)
	}
}
