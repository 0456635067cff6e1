package redis

import (
	"context"
	"math/rand"
	"sort"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"quizblox-service/internal/app"
	"quizblox-service/internal/domain"
)

// CategoryCache caches the trivia category list in Redis (one hash, id ->
// name) and falls back to the upstream source on cache miss. The list
// changes rarely; caching it keeps the quiz setup screen off the remote API.
type CategoryCache struct {
	client   *redis.Client
	upstream app.CategorySource
	ttl      time.Duration
	sf       singleflight.Group
	rnd      *rand.Rand
}

func NewCategoryCache(client *redis.Client, upstream app.CategorySource, ttl time.Duration) *CategoryCache {
	return &CategoryCache{
		client:   client,
		upstream: upstream,
		ttl:      ttl,
		rnd:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *CategoryCache) Categories(ctx context.Context) ([]domain.Category, error) {
	cached, err := c.client.HGetAll(ctx, c.key()).Result()
	if err == nil && len(cached) > 0 {
		return categoriesFromCache(cached), nil
	}

	result, err, _ := c.sf.Do("categories", func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		cached, err := c.client.HGetAll(ctx, c.key()).Result()
		if err == nil && len(cached) > 0 {
			return categoriesFromCache(cached), nil
		}

		categories, err := c.upstream.Categories(ctx)
		if err != nil {
			return nil, err
		}

		if len(categories) > 0 {
			pipe := c.client.Pipeline()
			for _, category := range categories {
				pipe.HSet(ctx, c.key(), strconv.Itoa(category.ID), category.Name)
			}
			if ttl := c.ttlWithJitter(); ttl > 0 {
				pipe.Expire(ctx, c.key(), ttl)
			}
			_, _ = pipe.Exec(ctx)
		}
		return categories, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Category), nil
}

func (c *CategoryCache) key() string {
	return "trivia:categories"
}

func categoriesFromCache(cached map[string]string) []domain.Category {
	categories := make([]domain.Category, 0, len(cached))
	for idStr, name := range cached {
		id, err := strconv.Atoi(idStr)
		if err != nil {
			continue
		}
		categories = append(categories, domain.Category{ID: id, Name: name})
	}
	sort.Slice(categories, func(i, j int) bool {
		return categories[i].ID < categories[j].ID
	})
	return categories
}

func (c *CategoryCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
