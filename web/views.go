package web

import (
	"time"

	"github.com/starfeed/starfeed/domain/content"
	"github.com/starfeed/starfeed/domain/order"
)

// JSON views over the domain value types. The domain stays free of
// serialization concerns; the wire shape is owned here.

type celebrityView struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Slug        string   `json:"slug"`
	Bio         string   `json:"bio,omitempty"`
	BirthDate   string   `json:"birthDate,omitempty"`
	Nationality string   `json:"nationality,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	ImageURL    string   `json:"imageUrl,omitempty"`
	CreatedAt   string   `json:"createdAt"`
	UpdatedAt   string   `json:"updatedAt"`
}

func viewCelebrity(c content.Celebrity) celebrityView {
	return celebrityView{
		ID:          c.ID,
		Name:        c.Name,
		Slug:        c.Slug,
		Bio:         c.Bio,
		BirthDate:   c.BirthDate,
		Nationality: c.Nationality,
		Tags:        c.Tags,
		ImageURL:    c.ImageURL,
		CreatedAt:   stamp(c.CreatedAt),
		UpdatedAt:   stamp(c.UpdatedAt),
	}
}

func (v celebrityView) toDomain() content.Celebrity {
	return content.Celebrity{
		ID:          v.ID,
		Name:        v.Name,
		Slug:        v.Slug,
		Bio:         v.Bio,
		BirthDate:   v.BirthDate,
		Nationality: v.Nationality,
		Tags:        v.Tags,
		ImageURL:    v.ImageURL,
	}
}

type movieView struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Slug        string   `json:"slug"`
	Synopsis    string   `json:"synopsis,omitempty"`
	ReleaseYear int      `json:"releaseYear,omitempty"`
	CastIDs     []string `json:"castIds,omitempty"`
	Genres      []string `json:"genres,omitempty"`
	PosterURL   string   `json:"posterUrl,omitempty"`
	CreatedAt   string   `json:"createdAt"`
	UpdatedAt   string   `json:"updatedAt"`
}

func viewMovie(m content.Movie) movieView {
	return movieView{
		ID:          m.ID,
		Title:       m.Title,
		Slug:        m.Slug,
		Synopsis:    m.Synopsis,
		ReleaseYear: m.ReleaseYear,
		CastIDs:     m.CastIDs,
		Genres:      m.Genres,
		PosterURL:   m.PosterURL,
		CreatedAt:   stamp(m.CreatedAt),
		UpdatedAt:   stamp(m.UpdatedAt),
	}
}

func (v movieView) toDomain() content.Movie {
	return content.Movie{
		ID:          v.ID,
		Title:       v.Title,
		Slug:        v.Slug,
		Synopsis:    v.Synopsis,
		ReleaseYear: v.ReleaseYear,
		CastIDs:     v.CastIDs,
		Genres:      v.Genres,
		PosterURL:   v.PosterURL,
	}
}

type newsView struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Slug         string   `json:"slug"`
	Body         string   `json:"body,omitempty"`
	CelebrityIDs []string `json:"celebrityIds,omitempty"`
	PublishedAt  string   `json:"publishedAt,omitempty"`
	CreatedAt    string   `json:"createdAt"`
	UpdatedAt    string   `json:"updatedAt"`
}

func viewNews(n content.News) newsView {
	return newsView{
		ID:           n.ID,
		Title:        n.Title,
		Slug:         n.Slug,
		Body:         n.Body,
		CelebrityIDs: n.CelebrityIDs,
		PublishedAt:  stamp(n.PublishedAt),
		CreatedAt:    stamp(n.CreatedAt),
		UpdatedAt:    stamp(n.UpdatedAt),
	}
}

func (v newsView) toDomain() content.News {
	n := content.News{
		ID:           v.ID,
		Title:        v.Title,
		Slug:         v.Slug,
		Body:         v.Body,
		CelebrityIDs: v.CelebrityIDs,
	}
	if v.PublishedAt != "" {
		if t, err := time.Parse(time.RFC3339, v.PublishedAt); err == nil {
			n.PublishedAt = t
		}
	}
	return n
}

type outfitView struct {
	ID          string `json:"id"`
	CelebrityID string `json:"celebrityId"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Occasion    string `json:"occasion,omitempty"`
	ImageURL    string `json:"imageUrl,omitempty"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
}

func viewOutfit(o content.Outfit) outfitView {
	return outfitView{
		ID:          o.ID,
		CelebrityID: o.CelebrityID,
		Title:       o.Title,
		Description: o.Description,
		Occasion:    o.Occasion,
		ImageURL:    o.ImageURL,
		CreatedAt:   stamp(o.CreatedAt),
		UpdatedAt:   stamp(o.UpdatedAt),
	}
}

func (v outfitView) toDomain() content.Outfit {
	return content.Outfit{
		ID:          v.ID,
		CelebrityID: v.CelebrityID,
		Title:       v.Title,
		Description: v.Description,
		Occasion:    v.Occasion,
		ImageURL:    v.ImageURL,
	}
}

type reviewView struct {
	ID        string `json:"id"`
	MovieID   string `json:"movieId"`
	AuthorID  string `json:"authorId,omitempty"`
	Rating    int    `json:"rating"`
	Body      string `json:"body,omitempty"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

func viewReview(r content.Review) reviewView {
	return reviewView{
		ID:        r.ID,
		MovieID:   r.MovieID,
		AuthorID:  r.AuthorID,
		Rating:    r.Rating,
		Body:      r.Body,
		CreatedAt: stamp(r.CreatedAt),
		UpdatedAt: stamp(r.UpdatedAt),
	}
}

func (v reviewView) toDomain() content.Review {
	return content.Review{
		ID:       v.ID,
		MovieID:  v.MovieID,
		AuthorID: v.AuthorID,
		Rating:   v.Rating,
		Body:     v.Body,
	}
}

type orderView struct {
	ID             string `json:"id"`
	OwnerID        string `json:"ownerId"`
	PlanID         string `json:"planId"`
	AmountMinor    int64  `json:"amount"`
	Currency       string `json:"currency"`
	QuotaGranted   int64  `json:"quotaGranted"`
	GatewayOrderID string `json:"gatewayOrderId"`
	Status         string `json:"status"`
	Note           string `json:"note,omitempty"`
	CreatedAt      string `json:"createdAt"`
	UpdatedAt      string `json:"updatedAt"`
}

func viewOrder(o order.Order) orderView {
	return orderView{
		ID:             o.ID,
		OwnerID:        o.OwnerID,
		PlanID:         string(o.PlanID),
		AmountMinor:    o.AmountMinor,
		Currency:       o.Currency,
		QuotaGranted:   o.QuotaGranted,
		GatewayOrderID: o.GatewayOrderID,
		Status:         string(o.Status),
		Note:           o.Note,
		CreatedAt:      stamp(o.CreatedAt),
		UpdatedAt:      stamp(o.UpdatedAt),
	}
}

func stamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func viewList[T, V any](items []T, view func(T) V) []V {
	out := make([]V, 0, len(items))
	for _, it := range items {
		out = append(out, view(it))
	}
	return out
}
