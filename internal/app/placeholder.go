package app

import (
	"context"

	"aitrip_ai/internal/domain"
)

// PlaceholderRecommender stands in for the model-backed engine, which does not
// exist yet. Inputs are accepted and ignored; the model name is only reported.
type PlaceholderRecommender struct{ model string }

func NewPlaceholderRecommender(model string) *PlaceholderRecommender {
	return &PlaceholderRecommender{model: model}
}

func (p *PlaceholderRecommender) Model() string { return p.model }

func (p *PlaceholderRecommender) Recommend(ctx context.Context, req domain.RecommendationRequest) ([]domain.Recommendation, error) {
	return []domain.Recommendation{
		{Place: "Sample Destination", Description: "A wonderful place to visit", Rating: 4.5},
	}, nil
}

func (p *PlaceholderRecommender) Popular(ctx context.Context) ([]domain.Destination, error) {
	return []domain.Destination{
		{Name: "Seoul", Country: "South Korea"},
		{Name: "Tokyo", Country: "Japan"},
		{Name: "Paris", Country: "France"},
	}, nil
}
