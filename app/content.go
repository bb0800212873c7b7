package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/starfeed/starfeed/domain/content"
	"github.com/starfeed/starfeed/ports"
)

// ErrInvalidContent wraps a domain validation message.
type ErrInvalidContent struct {
	Problem string
}

func (e ErrInvalidContent) Error() string {
	return e.Problem
}

// ErrContentNotFound is returned for missing content entities.
var ErrContentNotFound = errors.New("content not found")

// Listing limits for the public read API.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// ClampLimit normalizes a caller-supplied page size.
func ClampLimit(limit int) int {
	if limit <= 0 {
		return DefaultPageSize
	}
	if limit > MaxPageSize {
		return MaxPageSize
	}
	return limit
}

// ContentService orchestrates content reads and admin writes.
type ContentService struct {
	store ports.ContentStore
	clock ports.Clock
	idGen ports.IDGenerator
}

// NewContentService creates a content service.
func NewContentService(store ports.ContentStore, clock ports.Clock, idGen ports.IDGenerator) *ContentService {
	return &ContentService{store: store, clock: clock, idGen: idGen}
}

// ----- Celebrities -----

func (s *ContentService) CreateCelebrity(ctx context.Context, c content.Celebrity) (content.Celebrity, error) {
	if c.Slug == "" {
		c.Slug = content.Slugify(c.Name)
	}
	if problem := c.Validate(); problem != "" {
		return content.Celebrity{}, ErrInvalidContent{Problem: problem}
	}
	now := s.clock.Now().UTC()
	c.ID = "cel_" + s.idGen.New()
	c.CreatedAt = now
	c.UpdatedAt = now
	if err := s.store.CreateCelebrity(ctx, c); err != nil {
		return content.Celebrity{}, fmt.Errorf("create celebrity: %w", err)
	}
	return c, nil
}

func (s *ContentService) UpdateCelebrity(ctx context.Context, c content.Celebrity) (content.Celebrity, error) {
	if problem := c.Validate(); problem != "" {
		return content.Celebrity{}, ErrInvalidContent{Problem: problem}
	}
	c.UpdatedAt = s.clock.Now().UTC()
	if err := s.store.UpdateCelebrity(ctx, c); err != nil {
		return content.Celebrity{}, ErrContentNotFound
	}
	return c, nil
}

func (s *ContentService) DeleteCelebrity(ctx context.Context, id string) error {
	if err := s.store.DeleteCelebrity(ctx, id); err != nil {
		return ErrContentNotFound
	}
	return nil
}

func (s *ContentService) GetCelebrity(ctx context.Context, slug string) (content.Celebrity, error) {
	c, err := s.store.GetCelebrityBySlug(ctx, slug)
	if err != nil {
		return content.Celebrity{}, ErrContentNotFound
	}
	return c, nil
}

func (s *ContentService) ListCelebrities(ctx context.Context, limit, offset int) ([]content.Celebrity, error) {
	return s.store.ListCelebrities(ctx, ClampLimit(limit), offset)
}

// ----- Movies -----

func (s *ContentService) CreateMovie(ctx context.Context, m content.Movie) (content.Movie, error) {
	if m.Slug == "" {
		m.Slug = content.Slugify(m.Title)
	}
	if problem := m.Validate(); problem != "" {
		return content.Movie{}, ErrInvalidContent{Problem: problem}
	}
	now := s.clock.Now().UTC()
	m.ID = "mov_" + s.idGen.New()
	m.CreatedAt = now
	m.UpdatedAt = now
	if err := s.store.CreateMovie(ctx, m); err != nil {
		return content.Movie{}, fmt.Errorf("create movie: %w", err)
	}
	return m, nil
}

func (s *ContentService) UpdateMovie(ctx context.Context, m content.Movie) (content.Movie, error) {
	if problem := m.Validate(); problem != "" {
		return content.Movie{}, ErrInvalidContent{Problem: problem}
	}
	m.UpdatedAt = s.clock.Now().UTC()
	if err := s.store.UpdateMovie(ctx, m); err != nil {
		return content.Movie{}, ErrContentNotFound
	}
	return m, nil
}

func (s *ContentService) DeleteMovie(ctx context.Context, id string) error {
	if err := s.store.DeleteMovie(ctx, id); err != nil {
		return ErrContentNotFound
	}
	return nil
}

func (s *ContentService) GetMovie(ctx context.Context, slug string) (content.Movie, error) {
	m, err := s.store.GetMovieBySlug(ctx, slug)
	if err != nil {
		return content.Movie{}, ErrContentNotFound
	}
	return m, nil
}

func (s *ContentService) ListMovies(ctx context.Context, limit, offset int) ([]content.Movie, error) {
	return s.store.ListMovies(ctx, ClampLimit(limit), offset)
}

// ----- News -----

func (s *ContentService) CreateNews(ctx context.Context, n content.News) (content.News, error) {
	if n.Slug == "" {
		n.Slug = content.Slugify(n.Title)
	}
	if problem := n.Validate(); problem != "" {
		return content.News{}, ErrInvalidContent{Problem: problem}
	}
	now := s.clock.Now().UTC()
	n.ID = "news_" + s.idGen.New()
	if n.PublishedAt.IsZero() {
		n.PublishedAt = now
	}
	n.CreatedAt = now
	n.UpdatedAt = now
	if err := s.store.CreateNews(ctx, n); err != nil {
		return content.News{}, fmt.Errorf("create news: %w", err)
	}
	return n, nil
}

func (s *ContentService) UpdateNews(ctx context.Context, n content.News) (content.News, error) {
	if problem := n.Validate(); problem != "" {
		return content.News{}, ErrInvalidContent{Problem: problem}
	}
	n.UpdatedAt = s.clock.Now().UTC()
	if err := s.store.UpdateNews(ctx, n); err != nil {
		return content.News{}, ErrContentNotFound
	}
	return n, nil
}

func (s *ContentService) DeleteNews(ctx context.Context, id string) error {
	if err := s.store.DeleteNews(ctx, id); err != nil {
		return ErrContentNotFound
	}
	return nil
}

func (s *ContentService) GetNews(ctx context.Context, slug string) (content.News, error) {
	n, err := s.store.GetNewsBySlug(ctx, slug)
	if err != nil {
		return content.News{}, ErrContentNotFound
	}
	return n, nil
}

func (s *ContentService) ListNews(ctx context.Context, limit, offset int) ([]content.News, error) {
	return s.store.ListNews(ctx, ClampLimit(limit), offset)
}

// ----- Outfits -----

func (s *ContentService) CreateOutfit(ctx context.Context, o content.Outfit) (content.Outfit, error) {
	if problem := o.Validate(); problem != "" {
		return content.Outfit{}, ErrInvalidContent{Problem: problem}
	}
	now := s.clock.Now().UTC()
	o.ID = "out_" + s.idGen.New()
	o.CreatedAt = now
	o.UpdatedAt = now
	if err := s.store.CreateOutfit(ctx, o); err != nil {
		return content.Outfit{}, fmt.Errorf("create outfit: %w", err)
	}
	return o, nil
}

func (s *ContentService) UpdateOutfit(ctx context.Context, o content.Outfit) (content.Outfit, error) {
	if problem := o.Validate(); problem != "" {
		return content.Outfit{}, ErrInvalidContent{Problem: problem}
	}
	o.UpdatedAt = s.clock.Now().UTC()
	if err := s.store.UpdateOutfit(ctx, o); err != nil {
		return content.Outfit{}, ErrContentNotFound
	}
	return o, nil
}

func (s *ContentService) DeleteOutfit(ctx context.Context, id string) error {
	if err := s.store.DeleteOutfit(ctx, id); err != nil {
		return ErrContentNotFound
	}
	return nil
}

func (s *ContentService) GetOutfit(ctx context.Context, id string) (content.Outfit, error) {
	o, err := s.store.GetOutfit(ctx, id)
	if err != nil {
		return content.Outfit{}, ErrContentNotFound
	}
	return o, nil
}

func (s *ContentService) ListOutfits(ctx context.Context, celebrityID string, limit, offset int) ([]content.Outfit, error) {
	return s.store.ListOutfits(ctx, celebrityID, ClampLimit(limit), offset)
}

// ----- Reviews -----

func (s *ContentService) CreateReview(ctx context.Context, r content.Review) (content.Review, error) {
	if problem := r.Validate(); problem != "" {
		return content.Review{}, ErrInvalidContent{Problem: problem}
	}
	now := s.clock.Now().UTC()
	r.ID = "rev_" + s.idGen.New()
	r.CreatedAt = now
	r.UpdatedAt = now
	if err := s.store.CreateReview(ctx, r); err != nil {
		return content.Review{}, fmt.Errorf("create review: %w", err)
	}
	return r, nil
}

func (s *ContentService) DeleteReview(ctx context.Context, id string) error {
	if err := s.store.DeleteReview(ctx, id); err != nil {
		return ErrContentNotFound
	}
	return nil
}

func (s *ContentService) GetReview(ctx context.Context, id string) (content.Review, error) {
	r, err := s.store.GetReview(ctx, id)
	if err != nil {
		return content.Review{}, ErrContentNotFound
	}
	return r, nil
}

func (s *ContentService) ListReviews(ctx context.Context, movieID string, limit, offset int) ([]content.Review, error) {
	return s.store.ListReviews(ctx, movieID, ClampLimit(limit), offset)
}
