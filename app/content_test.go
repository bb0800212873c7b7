package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/starfeed/starfeed/adapters/clock"
	"github.com/starfeed/starfeed/adapters/idgen"
	"github.com/starfeed/starfeed/adapters/memory"
	"github.com/starfeed/starfeed/app"
	"github.com/starfeed/starfeed/domain/content"
)

func newContentService() *app.ContentService {
	return app.NewContentService(
		memory.NewContentStore(),
		clock.NewFixed(time.Date(2026, 6, 10, 12, 0, 0, 0, time.UTC)),
		idgen.NewSequential("id-"),
	)
}

func TestContentService_CreateCelebrity_SlugDerived(t *testing.T) {
	svc := newContentService()
	ctx := context.Background()

	c, err := svc.CreateCelebrity(ctx, content.Celebrity{Name: "Ana de Armas"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if c.Slug != "ana-de-armas" {
		t.Errorf("Slug = %s, want ana-de-armas", c.Slug)
	}
	if c.ID == "" || c.CreatedAt.IsZero() {
		t.Errorf("ID/timestamps not set: %+v", c)
	}

	got, err := svc.GetCelebrity(ctx, "ana-de-armas")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ID != c.ID {
		t.Errorf("ID = %s, want %s", got.ID, c.ID)
	}
}

func TestContentService_CreateCelebrity_Invalid(t *testing.T) {
	svc := newContentService()

	_, err := svc.CreateCelebrity(context.Background(), content.Celebrity{Name: "   "})
	var invalid app.ErrInvalidContent
	if !errors.As(err, &invalid) {
		t.Fatalf("err = %v, want ErrInvalidContent", err)
	}
}

func TestContentService_CreateReview_RatingBounds(t *testing.T) {
	svc := newContentService()
	ctx := context.Background()

	for _, rating := range []int{0, 6, -1} {
		_, err := svc.CreateReview(ctx, content.Review{MovieID: "mov-1", Rating: rating})
		var invalid app.ErrInvalidContent
		if !errors.As(err, &invalid) {
			t.Errorf("rating %d: err = %v, want ErrInvalidContent", rating, err)
		}
	}

	if _, err := svc.CreateReview(ctx, content.Review{MovieID: "mov-1", Rating: 3}); err != nil {
		t.Errorf("valid rating: %v", err)
	}
}

func TestContentService_GetMissing(t *testing.T) {
	svc := newContentService()
	ctx := context.Background()

	if _, err := svc.GetMovie(ctx, "nope"); !errors.Is(err, app.ErrContentNotFound) {
		t.Errorf("err = %v, want ErrContentNotFound", err)
	}
	if err := svc.DeleteNews(ctx, "nope"); !errors.Is(err, app.ErrContentNotFound) {
		t.Errorf("err = %v, want ErrContentNotFound", err)
	}
}

func TestClampLimit(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{0, 20},
		{-5, 20},
		{1, 1},
		{100, 100},
		{101, 100},
		{9999, 100},
	}
	for _, tt := range tests {
		if got := app.ClampLimit(tt.in); got != tt.want {
			t.Errorf("ClampLimit(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestContentService_ListOutfitsFilter(t *testing.T) {
	svc := newContentService()
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := svc.CreateOutfit(ctx, content.Outfit{CelebrityID: "cel-1", Title: "Look"}); err != nil {
			t.Fatalf("create outfit: %v", err)
		}
	}
	svc.CreateOutfit(ctx, content.Outfit{CelebrityID: "cel-2", Title: "Other"})

	got, err := svc.ListOutfits(ctx, "cel-1", 0, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("len = %d, want 2", len(got))
	}
}
