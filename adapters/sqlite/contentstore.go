package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/starfeed/starfeed/domain/content"
	"github.com/starfeed/starfeed/ports"
)

// ContentStore implements ports.ContentStore using SQLite.
type ContentStore struct {
	db *DB
}

// NewContentStore creates a new SQLite content store.
func NewContentStore(db *DB) *ContentStore {
	return &ContentStore{db: db}
}

// ----- Celebrities -----

func (s *ContentStore) CreateCelebrity(ctx context.Context, c content.Celebrity) error {
	tags, err := marshalStrings(c.Tags)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO celebrities (id, name, slug, bio, birth_date, nationality, tags, image_url, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, c.ID, c.Name, c.Slug, c.Bio, c.BirthDate, c.Nationality, tags, c.ImageURL, c.CreatedAt, c.UpdatedAt)
	return err
}

func (s *ContentStore) UpdateCelebrity(ctx context.Context, c content.Celebrity) error {
	tags, err := marshalStrings(c.Tags)
	if err != nil {
		return err
	}
	result, err := s.db.ExecContext(ctx, `
		UPDATE celebrities
		SET name = ?, slug = ?, bio = ?, birth_date = ?, nationality = ?, tags = ?, image_url = ?, updated_at = ?
		WHERE id = ?
	`, c.Name, c.Slug, c.Bio, c.BirthDate, c.Nationality, tags, c.ImageURL, c.UpdatedAt, c.ID)
	if err != nil {
		return err
	}
	return requireRow(result)
}

func (s *ContentStore) DeleteCelebrity(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM celebrities WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRow(result)
}

func (s *ContentStore) GetCelebrityBySlug(ctx context.Context, slug string) (content.Celebrity, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, slug, bio, birth_date, nationality, tags, image_url, created_at, updated_at
		FROM celebrities WHERE slug = ?
	`, slug)

	var c content.Celebrity
	var tags string
	err := row.Scan(&c.ID, &c.Name, &c.Slug, &c.Bio, &c.BirthDate, &c.Nationality, &tags, &c.ImageURL, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return content.Celebrity{}, ErrNotFound
	}
	if err != nil {
		return content.Celebrity{}, err
	}
	if err := unmarshalStrings(tags, &c.Tags); err != nil {
		return content.Celebrity{}, err
	}
	return c, nil
}

func (s *ContentStore) ListCelebrities(ctx context.Context, limit, offset int) ([]content.Celebrity, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, slug, bio, birth_date, nationality, tags, image_url, created_at, updated_at
		FROM celebrities ORDER BY name LIMIT ? OFFSET ?
	`, limitOrAll(limit), offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []content.Celebrity
	for rows.Next() {
		var c content.Celebrity
		var tags string
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.Bio, &c.BirthDate, &c.Nationality, &tags, &c.ImageURL, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		if err := unmarshalStrings(tags, &c.Tags); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// ----- Movies -----

func (s *ContentStore) CreateMovie(ctx context.Context, m content.Movie) error {
	castIDs, err := marshalStrings(m.CastIDs)
	if err != nil {
		return err
	}
	genres, err := marshalStrings(m.Genres)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO movies (id, title, slug, synopsis, release_year, cast_ids, genres, poster_url, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, m.ID, m.Title, m.Slug, m.Synopsis, m.ReleaseYear, castIDs, genres, m.PosterURL, m.CreatedAt, m.UpdatedAt)
	return err
}

func (s *ContentStore) UpdateMovie(ctx context.Context, m content.Movie) error {
	castIDs, err := marshalStrings(m.CastIDs)
	if err != nil {
		return err
	}
	genres, err := marshalStrings(m.Genres)
	if err != nil {
		return err
	}
	result, err := s.db.ExecContext(ctx, `
		UPDATE movies
		SET title = ?, slug = ?, synopsis = ?, release_year = ?, cast_ids = ?, genres = ?, poster_url = ?, updated_at = ?
		WHERE id = ?
	`, m.Title, m.Slug, m.Synopsis, m.ReleaseYear, castIDs, genres, m.PosterURL, m.UpdatedAt, m.ID)
	if err != nil {
		return err
	}
	return requireRow(result)
}

func (s *ContentStore) DeleteMovie(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM movies WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRow(result)
}

func (s *ContentStore) GetMovieBySlug(ctx context.Context, slug string) (content.Movie, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, title, slug, synopsis, release_year, cast_ids, genres, poster_url, created_at, updated_at
		FROM movies WHERE slug = ?
	`, slug)

	var m content.Movie
	var castIDs, genres string
	err := row.Scan(&m.ID, &m.Title, &m.Slug, &m.Synopsis, &m.ReleaseYear, &castIDs, &genres, &m.PosterURL, &m.CreatedAt, &m.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return content.Movie{}, ErrNotFound
	}
	if err != nil {
		return content.Movie{}, err
	}
	if err := unmarshalStrings(castIDs, &m.CastIDs); err != nil {
		return content.Movie{}, err
	}
	if err := unmarshalStrings(genres, &m.Genres); err != nil {
		return content.Movie{}, err
	}
	return m, nil
}

func (s *ContentStore) ListMovies(ctx context.Context, limit, offset int) ([]content.Movie, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, slug, synopsis, release_year, cast_ids, genres, poster_url, created_at, updated_at
		FROM movies ORDER BY title LIMIT ? OFFSET ?
	`, limitOrAll(limit), offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []content.Movie
	for rows.Next() {
		var m content.Movie
		var castIDs, genres string
		if err := rows.Scan(&m.ID, &m.Title, &m.Slug, &m.Synopsis, &m.ReleaseYear, &castIDs, &genres, &m.PosterURL, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, err
		}
		if err := unmarshalStrings(castIDs, &m.CastIDs); err != nil {
			return nil, err
		}
		if err := unmarshalStrings(genres, &m.Genres); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// ----- News -----

func (s *ContentStore) CreateNews(ctx context.Context, n content.News) error {
	celebIDs, err := marshalStrings(n.CelebrityIDs)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO news (id, title, slug, body, celebrity_ids, published_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, n.ID, n.Title, n.Slug, n.Body, celebIDs, n.PublishedAt, n.CreatedAt, n.UpdatedAt)
	return err
}

func (s *ContentStore) UpdateNews(ctx context.Context, n content.News) error {
	celebIDs, err := marshalStrings(n.CelebrityIDs)
	if err != nil {
		return err
	}
	result, err := s.db.ExecContext(ctx, `
		UPDATE news
		SET title = ?, slug = ?, body = ?, celebrity_ids = ?, published_at = ?, updated_at = ?
		WHERE id = ?
	`, n.Title, n.Slug, n.Body, celebIDs, n.PublishedAt, n.UpdatedAt, n.ID)
	if err != nil {
		return err
	}
	return requireRow(result)
}

func (s *ContentStore) DeleteNews(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM news WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRow(result)
}

func (s *ContentStore) GetNewsBySlug(ctx context.Context, slug string) (content.News, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, title, slug, body, celebrity_ids, published_at, created_at, updated_at
		FROM news WHERE slug = ?
	`, slug)

	var n content.News
	var celebIDs string
	err := row.Scan(&n.ID, &n.Title, &n.Slug, &n.Body, &celebIDs, &n.PublishedAt, &n.CreatedAt, &n.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return content.News{}, ErrNotFound
	}
	if err != nil {
		return content.News{}, err
	}
	if err := unmarshalStrings(celebIDs, &n.CelebrityIDs); err != nil {
		return content.News{}, err
	}
	return n, nil
}

func (s *ContentStore) ListNews(ctx context.Context, limit, offset int) ([]content.News, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, slug, body, celebrity_ids, published_at, created_at, updated_at
		FROM news ORDER BY published_at DESC LIMIT ? OFFSET ?
	`, limitOrAll(limit), offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []content.News
	for rows.Next() {
		var n content.News
		var celebIDs string
		if err := rows.Scan(&n.ID, &n.Title, &n.Slug, &n.Body, &celebIDs, &n.PublishedAt, &n.CreatedAt, &n.UpdatedAt); err != nil {
			return nil, err
		}
		if err := unmarshalStrings(celebIDs, &n.CelebrityIDs); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// ----- Outfits -----

func (s *ContentStore) CreateOutfit(ctx context.Context, o content.Outfit) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO outfits (id, celebrity_id, title, description, occasion, image_url, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, o.ID, o.CelebrityID, o.Title, o.Description, o.Occasion, o.ImageURL, o.CreatedAt, o.UpdatedAt)
	return err
}

func (s *ContentStore) UpdateOutfit(ctx context.Context, o content.Outfit) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE outfits
		SET celebrity_id = ?, title = ?, description = ?, occasion = ?, image_url = ?, updated_at = ?
		WHERE id = ?
	`, o.CelebrityID, o.Title, o.Description, o.Occasion, o.ImageURL, o.UpdatedAt, o.ID)
	if err != nil {
		return err
	}
	return requireRow(result)
}

func (s *ContentStore) DeleteOutfit(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM outfits WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRow(result)
}

func (s *ContentStore) GetOutfit(ctx context.Context, id string) (content.Outfit, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, celebrity_id, title, description, occasion, image_url, created_at, updated_at
		FROM outfits WHERE id = ?
	`, id)

	var o content.Outfit
	err := row.Scan(&o.ID, &o.CelebrityID, &o.Title, &o.Description, &o.Occasion, &o.ImageURL, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return content.Outfit{}, ErrNotFound
	}
	if err != nil {
		return content.Outfit{}, err
	}
	return o, nil
}

func (s *ContentStore) ListOutfits(ctx context.Context, celebrityID string, limit, offset int) ([]content.Outfit, error) {
	query := `
		SELECT id, celebrity_id, title, description, occasion, image_url, created_at, updated_at
		FROM outfits`
	args := []any{}
	if celebrityID != "" {
		query += ` WHERE celebrity_id = ?`
		args = append(args, celebrityID)
	}
	query += ` ORDER BY created_at DESC LIMIT ? OFFSET ?`
	args = append(args, limitOrAll(limit), offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []content.Outfit
	for rows.Next() {
		var o content.Outfit
		if err := rows.Scan(&o.ID, &o.CelebrityID, &o.Title, &o.Description, &o.Occasion, &o.ImageURL, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// ----- Reviews -----

func (s *ContentStore) CreateReview(ctx context.Context, r content.Review) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO reviews (id, movie_id, author_id, rating, body, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, r.ID, r.MovieID, r.AuthorID, r.Rating, r.Body, r.CreatedAt, r.UpdatedAt)
	return err
}

func (s *ContentStore) DeleteReview(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM reviews WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRow(result)
}

func (s *ContentStore) GetReview(ctx context.Context, id string) (content.Review, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, movie_id, author_id, rating, body, created_at, updated_at
		FROM reviews WHERE id = ?
	`, id)

	var r content.Review
	err := row.Scan(&r.ID, &r.MovieID, &r.AuthorID, &r.Rating, &r.Body, &r.CreatedAt, &r.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return content.Review{}, ErrNotFound
	}
	if err != nil {
		return content.Review{}, err
	}
	return r, nil
}

func (s *ContentStore) ListReviews(ctx context.Context, movieID string, limit, offset int) ([]content.Review, error) {
	query := `
		SELECT id, movie_id, author_id, rating, body, created_at, updated_at
		FROM reviews`
	args := []any{}
	if movieID != "" {
		query += ` WHERE movie_id = ?`
		args = append(args, movieID)
	}
	query += ` ORDER BY created_at DESC LIMIT ? OFFSET ?`
	args = append(args, limitOrAll(limit), offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []content.Review
	for rows.Next() {
		var r content.Review
		if err := rows.Scan(&r.ID, &r.MovieID, &r.AuthorID, &r.Rating, &r.Body, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func marshalStrings(s []string) (string, error) {
	if s == nil {
		s = []string{}
	}
	b, err := json.Marshal(s)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func unmarshalStrings(raw string, out *[]string) error {
	if raw == "" || raw == "null" {
		return nil
	}
	return json.Unmarshal([]byte(raw), out)
}

func requireRow(result sql.Result) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// Ensure interface compliance.
var _ ports.ContentStore = (*ContentStore)(nil)
