package app_test

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"testing"
	"time"

	"aitrip_ai/internal/app"
	"aitrip_ai/internal/domain"
)

// ---- fakes ----

type fakeCache struct {
	store  map[string][]byte
	getErr error
	sets   int
}

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	if c.getErr != nil {
		return false, c.getErr
	}
	b, ok := c.store[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}

func (c *fakeCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	if c.store == nil {
		c.store = map[string][]byte{}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.store[key] = b
	c.sets++
	return nil
}

var _ domain.Cache = app.NoopCache{}

type countingEngine struct {
	*app.PlaceholderRecommender
	calls int
	err   error
}

func (e *countingEngine) Recommend(ctx context.Context, req domain.RecommendationRequest) ([]domain.Recommendation, error) {
	e.calls++
	if e.err != nil {
		return nil, e.err
	}
	return e.PlaceholderRecommender.Recommend(ctx, req)
}

func newEngine() *countingEngine {
	return &countingEngine{PlaceholderRecommender: app.NewPlaceholderRecommender("gpt-4")}
}

// ---- tests ----

var sample = domain.Recommendation{Place: "Sample Destination", Description: "A wonderful place to visit", Rating: 4.5}

func TestGenerate_EmptyRequest(t *testing.T) {
	svc := app.NewRecommendationService(newEngine(), nil, 0)

	out, err := svc.Generate(context.Background(), domain.RecommendationRequest{})
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if len(out.Recommendations) == 0 || out.Message == "" {
		t.Fatalf("expected non-empty response, got %+v", out)
	}
	if out.Recommendations[0] != sample || out.Message != app.GeneratedMessage {
		t.Fatalf("unexpected payload: %+v", out)
	}
}

func TestGenerate_ArbitraryPreferencesIgnored(t *testing.T) {
	svc := app.NewRecommendationService(newEngine(), nil, 0)
	days := 400
	dest := "  "
	req := domain.RecommendationRequest{
		Destination:  &dest,
		Preferences:  []string{"", "🍜 food", "<script>", "a very long tag that goes on and on"},
		DurationDays: &days,
	}

	out, err := svc.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if !reflect.DeepEqual(out.Recommendations, []domain.Recommendation{sample}) {
		t.Fatalf("unexpected recommendations: %+v", out.Recommendations)
	}
}

func TestGenerate_CacheMissThenHit(t *testing.T) {
	eng := newEngine()
	cache := &fakeCache{}
	svc := app.NewRecommendationService(eng, cache, 10*time.Minute)
	req := domain.RecommendationRequest{Preferences: []string{"beach"}}

	if _, err := svc.Generate(context.Background(), req); err != nil {
		t.Fatalf("err: %v", err)
	}
	out, err := svc.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if eng.calls != 1 || cache.sets != 1 {
		t.Fatalf("expected one engine call and one cache write, got calls=%d sets=%d", eng.calls, cache.sets)
	}
	if out.Recommendations[0] != sample {
		t.Fatalf("unexpected cached payload: %+v", out)
	}

	// different preference order is a different request
	if _, err := svc.Generate(context.Background(), domain.RecommendationRequest{Preferences: []string{"food", "beach"}}); err != nil {
		t.Fatalf("err: %v", err)
	}
	if eng.calls != 2 {
		t.Fatalf("expected a second engine call, got %d", eng.calls)
	}
}

func TestGenerate_NilAndEmptyPreferencesShareKey(t *testing.T) {
	eng := newEngine()
	svc := app.NewRecommendationService(eng, &fakeCache{}, time.Minute)

	_, _ = svc.Generate(context.Background(), domain.RecommendationRequest{})
	_, _ = svc.Generate(context.Background(), domain.RecommendationRequest{Preferences: []string{}})
	if eng.calls != 1 {
		t.Fatalf("expected normalized requests to hit the cache, got %d engine calls", eng.calls)
	}
}

func TestGenerate_ZeroTTLSkipsCacheWrite(t *testing.T) {
	cache := &fakeCache{}
	svc := app.NewRecommendationService(newEngine(), cache, 0)

	if _, err := svc.Generate(context.Background(), domain.RecommendationRequest{}); err != nil {
		t.Fatalf("err: %v", err)
	}
	if cache.sets != 0 {
		t.Fatalf("expected no cache writes, got %d", cache.sets)
	}
}

func TestGenerate_CacheErrorFallsThrough(t *testing.T) {
	eng := newEngine()
	svc := app.NewRecommendationService(eng, &fakeCache{getErr: errors.New("conn refused")}, time.Minute)

	out, err := svc.Generate(context.Background(), domain.RecommendationRequest{})
	if err != nil {
		t.Fatalf("cache error must not fail the request: %v", err)
	}
	if eng.calls != 1 || len(out.Recommendations) != 1 {
		t.Fatalf("expected engine result, got calls=%d out=%+v", eng.calls, out)
	}
}

func TestGenerate_EngineError(t *testing.T) {
	boom := errors.New("boom")
	eng := newEngine()
	eng.err = boom
	svc := app.NewRecommendationService(eng, nil, 0)

	if _, err := svc.Generate(context.Background(), domain.RecommendationRequest{}); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped engine error, got %v", err)
	}
}

func TestPopular_FixedOrderAndIdempotent(t *testing.T) {
	svc := app.NewRecommendationService(newEngine(), nil, 0)
	want := []domain.Destination{
		{Name: "Seoul", Country: "South Korea"},
		{Name: "Tokyo", Country: "Japan"},
		{Name: "Paris", Country: "France"},
	}

	first, err := svc.Popular(context.Background())
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if !reflect.DeepEqual(first.Destinations, want) {
		t.Fatalf("unexpected destinations: %+v", first.Destinations)
	}

	// mutating a result must not leak into the next call
	first.Destinations[0].Name = "Busan"
	second, _ := svc.Popular(context.Background())
	if !reflect.DeepEqual(second.Destinations, want) {
		t.Fatalf("second call changed: %+v", second.Destinations)
	}
}
