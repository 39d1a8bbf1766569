package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/codedits/bitecheck/pkg/errors"
)

// MaxCommentLength bounds the free-text comment of a review.
const MaxCommentLength = 500

// ErrIncompleteBreakdown is returned when a rating breakdown is supplied with
// one or more categories missing or out of range.
var ErrIncompleteBreakdown = errors.New("rating breakdown must score all five categories between 1 and 5")

// Review is a user's review of a restaurant. Reviews reference restaurants by
// exact name string, not by id: the join key is a deliberate denormalization
// and matching is case sensitive everywhere.
type Review struct {
	ID             string           `json:"id"`
	UserID         string           `json:"user_id"`
	Username       string           `json:"username"`
	RestaurantName string           `json:"restaurant_name"`
	Rating         float64          `json:"rating"`
	Comment        string           `json:"comment"`
	Images         []string         `json:"images"`
	Breakdown      *RatingBreakdown `json:"rating_breakdown,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

// Validate checks the review invariants that hold at creation time.
func (r *Review) Validate() error {
	if strings.TrimSpace(r.RestaurantName) == "" {
		return apperrors.InvalidInput("restaurant name is required")
	}
	if r.UserID == "" {
		return apperrors.InvalidInput("user id is required")
	}
	if r.Rating < 1 || r.Rating > 5 {
		return apperrors.InvalidInput("rating must be between 1 and 5")
	}
	if len(r.Comment) > MaxCommentLength {
		return apperrors.InvalidInput("comment must be at most 500 characters")
	}
	if r.Breakdown != nil {
		if err := r.Breakdown.Validate(); err != nil {
			return apperrors.InvalidInput(err.Error())
		}
		// The overall rating is computed by the submitting client, but it
		// must agree with the breakdown at creation time.
		if Round1(r.Rating) != r.Breakdown.ComputeWeightedRating() {
			return apperrors.InvalidInput("rating does not match the weighted rating of the breakdown")
		}
	}
	return nil
}

// OwnedBy reports whether the review belongs to the given user id. Stored ids
// may be canonical UUIDs or stringified variants; both forms compare equal.
func (r *Review) OwnedBy(userID string) bool {
	return SameID(r.UserID, userID)
}

// SameID compares two identifiers, tolerating canonical vs stringified UUID
// forms (case and brace/urn prefixes differ between producers).
func SameID(a, b string) bool {
	ua, errA := uuid.Parse(a)
	ub, errB := uuid.Parse(b)
	if errA == nil && errB == nil {
		return ua == ub
	}
	return a == b
}
