// Package content provides the platform's content entity value types
// and pure validation. All functions are deterministic with no side
// effects.
package content

import (
	"regexp"
	"strings"
	"time"
)

var slugRe = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// Slugify derives a URL slug from a display name.
// This is a PURE function.
func Slugify(name string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		case !lastDash:
			b.WriteByte('-')
			lastDash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// ValidSlug reports whether s is a well-formed slug.
func ValidSlug(s string) bool {
	return s != "" && len(s) <= 120 && slugRe.MatchString(s)
}

// Celebrity is a public profile (value type).
type Celebrity struct {
	ID          string
	Name        string
	Slug        string // unique
	Bio         string
	BirthDate   string // "2006-01-02", may be empty
	Nationality string
	Tags        []string
	ImageURL    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Validate returns a human-readable problem, or "" when valid.
func (c Celebrity) Validate() string {
	if strings.TrimSpace(c.Name) == "" {
		return "name is required"
	}
	if !ValidSlug(c.Slug) {
		return "slug must be lowercase letters, digits and dashes"
	}
	if c.BirthDate != "" {
		if _, err := time.Parse("2006-01-02", c.BirthDate); err != nil {
			return "birthDate must be YYYY-MM-DD"
		}
	}
	return ""
}

// Movie is a film record (value type).
type Movie struct {
	ID          string
	Title       string
	Slug        string // unique
	Synopsis    string
	ReleaseYear int
	CastIDs     []string // celebrity references
	Genres      []string
	PosterURL   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (m Movie) Validate() string {
	if strings.TrimSpace(m.Title) == "" {
		return "title is required"
	}
	if !ValidSlug(m.Slug) {
		return "slug must be lowercase letters, digits and dashes"
	}
	if m.ReleaseYear != 0 && (m.ReleaseYear < 1888 || m.ReleaseYear > time.Now().Year()+5) {
		return "releaseYear out of range"
	}
	return ""
}

// News is an article (value type).
type News struct {
	ID           string
	Title        string
	Slug         string // unique
	Body         string
	CelebrityIDs []string
	PublishedAt  time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (n News) Validate() string {
	if strings.TrimSpace(n.Title) == "" {
		return "title is required"
	}
	if !ValidSlug(n.Slug) {
		return "slug must be lowercase letters, digits and dashes"
	}
	if strings.TrimSpace(n.Body) == "" {
		return "body is required"
	}
	return ""
}

// Outfit is a celebrity outfit entry (value type).
type Outfit struct {
	ID          string
	CelebrityID string
	Title       string
	Description string
	Occasion    string
	ImageURL    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (o Outfit) Validate() string {
	if o.CelebrityID == "" {
		return "celebrityId is required"
	}
	if strings.TrimSpace(o.Title) == "" {
		return "title is required"
	}
	return ""
}

// Review is a movie review (value type).
type Review struct {
	ID        string
	MovieID   string
	AuthorID  string
	Rating    int // 1..5
	Body      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (r Review) Validate() string {
	if r.MovieID == "" {
		return "movieId is required"
	}
	if r.Rating < 1 || r.Rating > 5 {
		return "rating must be between 1 and 5"
	}
	return ""
}
