package domain

import "math"

// Category weights for the composite rating. Taste dominates; the remaining
// categories share the rest equally. Weights sum to 100.
const (
	WeightTaste        = 40
	WeightPresentation = 15
	WeightService      = 15
	WeightAmbiance     = 15
	WeightValue        = 15
)

// RatingBreakdown holds the five category scores of a review. A zero value
// means the category was not rated.
type RatingBreakdown struct {
	Taste        int `json:"taste"`
	Presentation int `json:"presentation"`
	Service      int `json:"service"`
	Ambiance     int `json:"ambiance"`
	Value        int `json:"value"`
}

// categoryScore pairs a category name with its score and weight, in the
// canonical category order.
func (b *RatingBreakdown) categories() []struct {
	name   string
	score  int
	weight int
} {
	return []struct {
		name   string
		score  int
		weight int
	}{
		{"taste", b.Taste, WeightTaste},
		{"presentation", b.Presentation, WeightPresentation},
		{"service", b.Service, WeightService},
		{"ambiance", b.Ambiance, WeightAmbiance},
		{"value", b.Value, WeightValue},
	}
}

// ComputeWeightedRating returns the weighted mean of the rated categories,
// rounded to one decimal place. Categories scored zero (or negative) count as
// not rated and contribute neither score nor weight. Returns 0 when nothing
// is rated.
//
// Rounding is half away from zero (math.Round), so 4.05 becomes 4.1 and
// -0 cannot occur since inputs are non-negative.
func (b *RatingBreakdown) ComputeWeightedRating() float64 {
	if b == nil {
		return 0
	}

	weightedSum := 0
	totalWeight := 0
	for _, c := range b.categories() {
		if c.score > 0 {
			weightedSum += c.score * c.weight
			totalWeight += c.weight
		}
	}

	if totalWeight == 0 {
		return 0
	}

	return Round1(float64(weightedSum) / float64(totalWeight))
}

// AllCategoriesRated reports whether every category carries a positive score.
func (b *RatingBreakdown) AllCategoriesRated() bool {
	if b == nil {
		return false
	}
	for _, c := range b.categories() {
		if c.score <= 0 {
			return false
		}
	}
	return true
}

// MissingCategories returns the names of unrated categories in canonical order.
func (b *RatingBreakdown) MissingCategories() []string {
	if b == nil {
		return []string{"taste", "presentation", "service", "ambiance", "value"}
	}
	var missing []string
	for _, c := range b.categories() {
		if c.score <= 0 {
			missing = append(missing, c.name)
		}
	}
	return missing
}

// Validate checks that a breakdown attached to a review is complete: all five
// categories present with scores in [1,5]. Partial breakdowns are rejected at
// the persistence boundary even though ComputeWeightedRating tolerates them.
func (b *RatingBreakdown) Validate() error {
	for _, c := range b.categories() {
		if c.score < 1 || c.score > 5 {
			return ErrIncompleteBreakdown
		}
	}
	return nil
}

// Round1 rounds to one decimal place, half away from zero.
func Round1(x float64) float64 {
	return math.Round(x*10) / 10
}
