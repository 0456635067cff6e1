package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"quizblox-service/internal/domain"
)

type countingSource struct {
	calls      int
	categories []domain.Category
}

func (s *countingSource) Categories(ctx context.Context) ([]domain.Category, error) {
	s.calls++
	return s.categories, nil
}

func TestCategoryCacheCachesInRedis(t *testing.T) {
	mr := miniredis.RunT(t)

	source := &countingSource{categories: []domain.Category{
		{ID: 9, Name: "General Knowledge"},
		{ID: 18, Name: "Science: Computers"},
	}}
	cache := NewCategoryCache(newClient(mr), source, time.Hour)

	first, err := cache.Categories(context.Background())
	if err != nil {
		t.Fatalf("first Categories: %v", err)
	}
	if len(first) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(first))
	}
	if source.calls != 1 {
		t.Fatalf("expected 1 upstream call, got %d", source.calls)
	}

	second, err := cache.Categories(context.Background())
	if err != nil {
		t.Fatalf("second Categories: %v", err)
	}
	if source.calls != 1 {
		t.Fatalf("expected second call to hit the cache, upstream calls = %d", source.calls)
	}
	if len(second) != 2 || second[0].ID != 9 || second[1].Name != "Science: Computers" {
		t.Fatalf("unexpected cached categories: %+v", second)
	}
}

func TestCategoryCacheSortsByID(t *testing.T) {
	mr := miniredis.RunT(t)

	source := &countingSource{categories: []domain.Category{
		{ID: 22, Name: "Geography"},
		{ID: 9, Name: "General Knowledge"},
		{ID: 18, Name: "Science: Computers"},
	}}
	cache := NewCategoryCache(newClient(mr), source, time.Hour)

	if _, err := cache.Categories(context.Background()); err != nil {
		t.Fatalf("warm cache: %v", err)
	}

	categories, err := cache.Categories(context.Background())
	if err != nil {
		t.Fatalf("Categories: %v", err)
	}
	for i := 1; i < len(categories); i++ {
		if categories[i-1].ID >= categories[i].ID {
			t.Fatalf("categories not sorted by id: %+v", categories)
		}
	}
}

func TestCategoryCacheRefetchesAfterExpiry(t *testing.T) {
	mr := miniredis.RunT(t)

	source := &countingSource{categories: []domain.Category{{ID: 9, Name: "General Knowledge"}}}
	cache := NewCategoryCache(newClient(mr), source, time.Minute)

	if _, err := cache.Categories(context.Background()); err != nil {
		t.Fatalf("warm cache: %v", err)
	}
	mr.FastForward(2 * time.Minute)

	if _, err := cache.Categories(context.Background()); err != nil {
		t.Fatalf("Categories after expiry: %v", err)
	}
	if source.calls != 2 {
		t.Fatalf("expected refetch after expiry, upstream calls = %d", source.calls)
	}
}
