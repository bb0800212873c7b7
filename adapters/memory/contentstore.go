package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/starfeed/starfeed/domain/content"
	"github.com/starfeed/starfeed/ports"
)

// ContentStore is an in-memory implementation of ports.ContentStore.
type ContentStore struct {
	mu          sync.RWMutex
	celebrities map[string]content.Celebrity
	movies      map[string]content.Movie
	news        map[string]content.News
	outfits     map[string]content.Outfit
	reviews     map[string]content.Review
}

// NewContentStore creates an empty in-memory content store.
func NewContentStore() *ContentStore {
	return &ContentStore{
		celebrities: make(map[string]content.Celebrity),
		movies:      make(map[string]content.Movie),
		news:        make(map[string]content.News),
		outfits:     make(map[string]content.Outfit),
		reviews:     make(map[string]content.Review),
	}
}

// ----- Celebrities -----

func (s *ContentStore) CreateCelebrity(ctx context.Context, c content.Celebrity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.celebrities {
		if existing.Slug == c.Slug {
			return errors.New("slug already exists")
		}
	}
	s.celebrities[c.ID] = c
	return nil
}

func (s *ContentStore) UpdateCelebrity(ctx context.Context, c content.Celebrity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.celebrities[c.ID]; !ok {
		return ErrNotFound
	}
	s.celebrities[c.ID] = c
	return nil
}

func (s *ContentStore) DeleteCelebrity(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.celebrities[id]; !ok {
		return ErrNotFound
	}
	delete(s.celebrities, id)
	return nil
}

func (s *ContentStore) GetCelebrityBySlug(ctx context.Context, slug string) (content.Celebrity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, c := range s.celebrities {
		if c.Slug == slug {
			return c, nil
		}
	}
	return content.Celebrity{}, ErrNotFound
}

func (s *ContentStore) ListCelebrities(ctx context.Context, limit, offset int) ([]content.Celebrity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]content.Celebrity, 0, len(s.celebrities))
	for _, c := range s.celebrities {
		all = append(all, c)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	return page(all, limit, offset), nil
}

// ----- Movies -----

func (s *ContentStore) CreateMovie(ctx context.Context, m content.Movie) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.movies {
		if existing.Slug == m.Slug {
			return errors.New("slug already exists")
		}
	}
	s.movies[m.ID] = m
	return nil
}

func (s *ContentStore) UpdateMovie(ctx context.Context, m content.Movie) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.movies[m.ID]; !ok {
		return ErrNotFound
	}
	s.movies[m.ID] = m
	return nil
}

func (s *ContentStore) DeleteMovie(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.movies[id]; !ok {
		return ErrNotFound
	}
	delete(s.movies, id)
	return nil
}

func (s *ContentStore) GetMovieBySlug(ctx context.Context, slug string) (content.Movie, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, m := range s.movies {
		if m.Slug == slug {
			return m, nil
		}
	}
	return content.Movie{}, ErrNotFound
}

func (s *ContentStore) ListMovies(ctx context.Context, limit, offset int) ([]content.Movie, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]content.Movie, 0, len(s.movies))
	for _, m := range s.movies {
		all = append(all, m)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Title < all[j].Title })
	return page(all, limit, offset), nil
}

// ----- News -----

func (s *ContentStore) CreateNews(ctx context.Context, n content.News) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.news {
		if existing.Slug == n.Slug {
			return errors.New("slug already exists")
		}
	}
	s.news[n.ID] = n
	return nil
}

func (s *ContentStore) UpdateNews(ctx context.Context, n content.News) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.news[n.ID]; !ok {
		return ErrNotFound
	}
	s.news[n.ID] = n
	return nil
}

func (s *ContentStore) DeleteNews(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.news[id]; !ok {
		return ErrNotFound
	}
	delete(s.news, id)
	return nil
}

func (s *ContentStore) GetNewsBySlug(ctx context.Context, slug string) (content.News, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, n := range s.news {
		if n.Slug == slug {
			return n, nil
		}
	}
	return content.News{}, ErrNotFound
}

func (s *ContentStore) ListNews(ctx context.Context, limit, offset int) ([]content.News, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]content.News, 0, len(s.news))
	for _, n := range s.news {
		all = append(all, n)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].PublishedAt.After(all[j].PublishedAt) })
	return page(all, limit, offset), nil
}

// ----- Outfits -----

func (s *ContentStore) CreateOutfit(ctx context.Context, o content.Outfit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.outfits[o.ID] = o
	return nil
}

func (s *ContentStore) UpdateOutfit(ctx context.Context, o content.Outfit) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.outfits[o.ID]; !ok {
		return ErrNotFound
	}
	s.outfits[o.ID] = o
	return nil
}

func (s *ContentStore) DeleteOutfit(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.outfits[id]; !ok {
		return ErrNotFound
	}
	delete(s.outfits, id)
	return nil
}

func (s *ContentStore) GetOutfit(ctx context.Context, id string) (content.Outfit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.outfits[id]
	if !ok {
		return content.Outfit{}, ErrNotFound
	}
	return o, nil
}

func (s *ContentStore) ListOutfits(ctx context.Context, celebrityID string, limit, offset int) ([]content.Outfit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var all []content.Outfit
	for _, o := range s.outfits {
		if celebrityID == "" || o.CelebrityID == celebrityID {
			all = append(all, o)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	return page(all, limit, offset), nil
}

// ----- Reviews -----

func (s *ContentStore) CreateReview(ctx context.Context, r content.Review) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reviews[r.ID] = r
	return nil
}

func (s *ContentStore) DeleteReview(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.reviews[id]; !ok {
		return ErrNotFound
	}
	delete(s.reviews, id)
	return nil
}

func (s *ContentStore) GetReview(ctx context.Context, id string) (content.Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.reviews[id]
	if !ok {
		return content.Review{}, ErrNotFound
	}
	return r, nil
}

func (s *ContentStore) ListReviews(ctx context.Context, movieID string, limit, offset int) ([]content.Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var all []content.Review
	for _, r := range s.reviews {
		if movieID == "" || r.MovieID == movieID {
			all = append(all, r)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	return page(all, limit, offset), nil
}

func page[T any](all []T, limit, offset int) []T {
	if offset >= len(all) {
		return nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all
}

// Ensure interface compliance.
var _ ports.ContentStore = (*ContentStore)(nil)
