// Package ports defines interfaces (contracts) between layers.
// These interfaces enable dependency injection and testability.
// Implementations live in adapters/.
package ports

import (
	"context"
	"time"

	"github.com/starfeed/starfeed/domain/content"
	"github.com/starfeed/starfeed/domain/key"
	"github.com/starfeed/starfeed/domain/ledger"
	"github.com/starfeed/starfeed/domain/order"
	"github.com/starfeed/starfeed/domain/plan"
)

// -----------------------------------------------------------------------------
// Infrastructure Ports
// -----------------------------------------------------------------------------

// Clock abstracts time for testability.
type Clock interface {
	Now() time.Time
}

// IDGenerator generates unique identifiers.
type IDGenerator interface {
	New() string
}

// Hasher provides password hashing.
type Hasher interface {
	// Hash generates a hash from a plaintext value.
	Hash(plaintext string) ([]byte, error)

	// Compare checks if plaintext matches hash.
	Compare(hash []byte, plaintext string) bool
}

// -----------------------------------------------------------------------------
// Data Store Ports
// -----------------------------------------------------------------------------

// User represents a user account.
type User struct {
	ID           string
	Email        string
	Name         string
	PasswordHash []byte // bcrypt hash; empty for API-only users
	Role         string // "user", "admin", "superadmin"
	Status       string // "active", "suspended"
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserStore persists user accounts.
type UserStore interface {
	Get(ctx context.Context, id string) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	Create(ctx context.Context, u User) error
	Update(ctx context.Context, u User) error
	List(ctx context.Context, limit, offset int) ([]User, error)
	Count(ctx context.Context) (int, error)
}

// KeyStore persists API keys and their usage ledgers.
type KeyStore interface {
	// GetByPrefix retrieves keys matching a secret prefix (for the gate
	// lookup). Revoked keys are included; the caller validates.
	GetByPrefix(ctx context.Context, prefix string) ([]key.Key, error)

	// GetByOwner retrieves the key owned by a user (at most one).
	GetByOwner(ctx context.Context, ownerID string) (key.Key, error)

	// GetByID retrieves a key by ID.
	GetByID(ctx context.Context, id string) (key.Key, error)

	// Create stores a new key.
	Create(ctx context.Context, k key.Key) error

	// Revoke marks a key as revoked.
	Revoke(ctx context.Context, id string, at time.Time) error

	// UpdateQuota sets the plan and quota fields on a key.
	UpdateQuota(ctx context.Context, id string, planID plan.ID, freeQuota, purchasedQuota int64) error

	// RecordHits applies a batch of accepted calls to the key's ledger.
	// Implementations must apply the batch atomically with respect to
	// concurrent batches for the same key.
	RecordHits(ctx context.Context, id string, hits []ledger.Hit) error
}

// OrderStore persists payment orders.
type OrderStore interface {
	Create(ctx context.Context, o order.Order) error

	Get(ctx context.Context, id string) (order.Order, error)

	// GetPending retrieves the order for a gateway order id, scoped to
	// the owning user and status "created". Scoping by both keys is what
	// makes payment verification idempotent and forgery-resistant.
	GetPending(ctx context.Context, gatewayOrderID, ownerID string) (order.Order, error)

	// MarkPaid flips a created order to paid and stores the payment id
	// and signature. Returns ErrNotFound if the order is not in created
	// status: the status guard is the optimistic lock that lets exactly
	// one of two concurrent verify attempts win.
	MarkPaid(ctx context.Context, id, paymentID, signature string, at time.Time) error

	// UpdateStatus applies a status transition (failed, refunded).
	UpdateStatus(ctx context.Context, id string, status order.Status, note string, at time.Time) error

	ListByStatus(ctx context.Context, status order.Status, limit, offset int) ([]order.Order, error)
	ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]order.Order, error)
}

// CelebrityStore persists celebrity profiles.
type CelebrityStore interface {
	CreateCelebrity(ctx context.Context, c content.Celebrity) error
	UpdateCelebrity(ctx context.Context, c content.Celebrity) error
	DeleteCelebrity(ctx context.Context, id string) error
	GetCelebrityBySlug(ctx context.Context, slug string) (content.Celebrity, error)
	ListCelebrities(ctx context.Context, limit, offset int) ([]content.Celebrity, error)
}

// MovieStore persists movies.
type MovieStore interface {
	CreateMovie(ctx context.Context, m content.Movie) error
	UpdateMovie(ctx context.Context, m content.Movie) error
	DeleteMovie(ctx context.Context, id string) error
	GetMovieBySlug(ctx context.Context, slug string) (content.Movie, error)
	ListMovies(ctx context.Context, limit, offset int) ([]content.Movie, error)
}

// NewsStore persists news articles.
type NewsStore interface {
	CreateNews(ctx context.Context, n content.News) error
	UpdateNews(ctx context.Context, n content.News) error
	DeleteNews(ctx context.Context, id string) error
	GetNewsBySlug(ctx context.Context, slug string) (content.News, error)
	ListNews(ctx context.Context, limit, offset int) ([]content.News, error)
}

// OutfitStore persists outfits.
type OutfitStore interface {
	CreateOutfit(ctx context.Context, o content.Outfit) error
	UpdateOutfit(ctx context.Context, o content.Outfit) error
	DeleteOutfit(ctx context.Context, id string) error
	GetOutfit(ctx context.Context, id string) (content.Outfit, error)
	ListOutfits(ctx context.Context, celebrityID string, limit, offset int) ([]content.Outfit, error)
}

// ReviewStore persists reviews.
type ReviewStore interface {
	CreateReview(ctx context.Context, r content.Review) error
	DeleteReview(ctx context.Context, id string) error
	GetReview(ctx context.Context, id string) (content.Review, error)
	ListReviews(ctx context.Context, movieID string, limit, offset int) ([]content.Review, error)
}

// ContentStore bundles all content entity stores.
type ContentStore interface {
	CelebrityStore
	MovieStore
	NewsStore
	OutfitStore
	ReviewStore
}

// -----------------------------------------------------------------------------
// External Service Ports
// -----------------------------------------------------------------------------

// PaymentGateway interfaces with the payment processor.
type PaymentGateway interface {
	// Name returns the gateway name (e.g. "razorpay", "dummy").
	Name() string

	// AccountID returns the public account identifier clients need to
	// open the processor's checkout.
	AccountID() string

	// CreateOrder registers an order with the processor and returns the
	// processor-side order id.
	CreateOrder(ctx context.Context, amountMinor int64, currency, receipt string) (gatewayOrderID string, err error)

	// VerifySignature checks the processor's payment signature for an
	// order/payment pair.
	VerifySignature(gatewayOrderID, paymentID, signature string) bool
}

// -----------------------------------------------------------------------------
// Event Ports
// -----------------------------------------------------------------------------

// LedgerRecorder accepts accepted-call hits for asynchronous
// persistence. Record must be non-blocking: the gate never waits for
// counters to land.
type LedgerRecorder interface {
	// Record queues one accepted call.
	Record(keyID, endpoint string, at time.Time)

	// Flush forces persistence of queued hits.
	Flush(ctx context.Context) error

	// Close stops the recorder and flushes remaining hits.
	Close() error
}
