package domain

// RecommendationRequest is the body of POST /recommendations/. Every field is
// optional, so an empty object is a valid request.
type RecommendationRequest struct {
	Destination  *string  `json:"destination"`
	Preferences  []string `json:"preferences"`
	Budget       *string  `json:"budget"`
	DurationDays *int     `json:"duration_days"`
}

// Normalize fills defaults in place (preferences is never nil).
func (r *RecommendationRequest) Normalize() {
	if r.Preferences == nil {
		r.Preferences = []string{}
	}
}

type Recommendation struct {
	Place       string  `json:"place"`
	Description string  `json:"description"`
	Rating      float64 `json:"rating"`
}

type RecommendationResponse struct {
	Recommendations []Recommendation `json:"recommendations"`
	Message         string           `json:"message"`
}

type Destination struct {
	Name    string `json:"name"`
	Country string `json:"country"`
}

type PopularDestinations struct {
	Destinations []Destination `json:"destinations"`
}
