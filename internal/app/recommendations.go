package app

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"aitrip_ai/internal/adapters/observability"
	"aitrip_ai/internal/domain"
)

const GeneratedMessage = "Recommendations generated successfully"

type RecommendationService struct {
	engine   domain.Recommender
	cache    domain.Cache
	cacheTTL time.Duration
}

// NewRecommendationService wires the engine behind an optional cache; a nil
// cache disables caching.
func NewRecommendationService(e domain.Recommender, c domain.Cache, ttl time.Duration) *RecommendationService {
	if c == nil {
		c = NoopCache{}
	}
	return &RecommendationService{engine: e, cache: c, cacheTTL: ttl}
}

func (s *RecommendationService) Generate(ctx context.Context, req domain.RecommendationRequest) (domain.RecommendationResponse, error) {
	req.Normalize()

	key, err := cacheKey(req)
	if err != nil {
		return domain.RecommendationResponse{}, err
	}

	var out domain.RecommendationResponse
	if ok, err := s.cache.Get(ctx, key, &out); err != nil {
		// cache trouble never fails a request
		log.Warn().Err(err).Str("key", key).Msg("recommendation cache read failed")
	} else if ok {
		observability.ObserveRecommendations("cache")
		return out, nil
	}

	recs, err := s.engine.Recommend(ctx, req)
	if err != nil {
		return domain.RecommendationResponse{}, fmt.Errorf("recommend with %s: %w", s.engine.Model(), err)
	}
	if recs == nil {
		recs = []domain.Recommendation{}
	}
	out = domain.RecommendationResponse{Recommendations: recs, Message: GeneratedMessage}

	if s.cacheTTL > 0 {
		if err := s.cache.Set(ctx, key, out, int(s.cacheTTL.Seconds())); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("recommendation cache write failed")
		}
	}
	observability.ObserveRecommendations("engine")

	log.Debug().
		Str("model", s.engine.Model()).
		Int("preferences", len(req.Preferences)).
		Int("results", len(out.Recommendations)).
		Msg("recommendations generated")
	return out, nil
}

func (s *RecommendationService) Popular(ctx context.Context) (domain.PopularDestinations, error) {
	ds, err := s.engine.Popular(ctx)
	if err != nil {
		return domain.PopularDestinations{}, fmt.Errorf("popular destinations: %w", err)
	}
	if ds == nil {
		ds = []domain.Destination{}
	}
	return domain.PopularDestinations{Destinations: ds}, nil
}

// cacheKey hashes the normalized request; preference order is significant.
func cacheKey(req domain.RecommendationRequest) (string, error) {
	b, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("cache key: %w", err)
	}
	sum := sha1.Sum(b)
	return "recs:" + hex.EncodeToString(sum[:]), nil
}

// NoopCache always misses.
type NoopCache struct{}

func (NoopCache) Get(ctx context.Context, key string, dst any) (bool, error)   { return false, nil }
func (NoopCache) Set(ctx context.Context, key string, v any, ttlSec int) error { return nil }
