package domain

import (
	"strings"
	"time"

	apperrors "github.com/codedits/bitecheck/pkg/errors"
)

// PriceRange is the enumerated price tier of a restaurant.
type PriceRange string

const (
	PriceBudget   PriceRange = "$"
	PriceModerate PriceRange = "$$"
	PriceUpscale  PriceRange = "$$$"
	PriceLuxury   PriceRange = "$$$$"
)

// Valid reports whether the price range is one of the four tiers.
func (p PriceRange) Valid() bool {
	switch p {
	case PriceBudget, PriceModerate, PriceUpscale, PriceLuxury:
		return true
	}
	return false
}

// minUsableImageLen is the threshold below which a restaurant image is
// considered unset and eligible for backfill from a review.
const minUsableImageLen = 5

// Restaurant is a listed restaurant. Rating and TotalReviews are derived
// state: they are always recomputable from the set of reviews whose
// restaurant_name equals Name exactly.
type Restaurant struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Cuisine      string     `json:"cuisine"`
	Location     string     `json:"location"`
	PriceRange   PriceRange `json:"price_range"`
	Description  string     `json:"description"`
	Image        string     `json:"image"`
	Featured     bool       `json:"featured"`
	Rating       float64    `json:"rating"`
	TotalReviews int        `json:"total_reviews"`
	// Incomplete marks restaurants materialized by reconciliation from
	// orphaned reviews; their descriptive fields were never supplied.
	Incomplete bool      `json:"incomplete,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// HasUsableImage reports whether the image field holds a real URL rather
// than an empty or placeholder value.
func (r *Restaurant) HasUsableImage() bool {
	return len(strings.TrimSpace(r.Image)) >= minUsableImageLen
}

// Validate checks the fields required for an explicitly created restaurant.
func (r *Restaurant) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return apperrors.InvalidInput("restaurant name is required")
	}
	if !r.PriceRange.Valid() {
		return apperrors.InvalidInput("price range must be one of $, $$, $$$, $$$$")
	}
	if r.Rating < 0 || r.Rating > 5 {
		return apperrors.InvalidInput("rating must be between 0 and 5")
	}
	if r.TotalReviews < 0 {
		return apperrors.InvalidInput("total reviews must not be negative")
	}
	return nil
}
