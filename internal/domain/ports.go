package domain

import "context"

// Recommender is the recommendation engine. Only a placeholder exists today.
type Recommender interface {
	Recommend(ctx context.Context, req RecommendationRequest) ([]Recommendation, error)
	Popular(ctx context.Context) ([]Destination, error)
	Model() string
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
}

// Pinger is anything readiness can probe.
type Pinger interface {
	Ping(ctx context.Context) error
}
