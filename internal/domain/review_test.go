package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "github.com/codedits/bitecheck/pkg/errors"
)

func validReview() *Review {
	return &Review{
		ID:             "7b8a2c44-9d1e-4f7a-b1c2-3d4e5f6a7b8c",
		UserID:         "0f8fad5b-d9cb-469f-a165-70867728950e",
		Username:       "alice",
		RestaurantName: "Lucali",
		Rating:         4.1,
		Comment:        "Great crust.",
		Breakdown:      &RatingBreakdown{Taste: 5, Presentation: 4, Service: 4, Ambiance: 3, Value: 3},
	}
}

func TestReviewValidate_Success(t *testing.T) {
	assert.NoError(t, validReview().Validate())
}

func TestReviewValidate_NoBreakdownIsFine(t *testing.T) {
	rv := validReview()
	rv.Breakdown = nil
	rv.Rating = 3
	assert.NoError(t, rv.Validate())
}

func TestReviewValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Review)
	}{
		{"empty restaurant name", func(r *Review) { r.RestaurantName = "   " }},
		{"missing user id", func(r *Review) { r.UserID = "" }},
		{"rating too low", func(r *Review) { r.Rating = 0.5 }},
		{"rating too high", func(r *Review) { r.Rating = 5.5 }},
		{"comment too long", func(r *Review) { r.Comment = strings.Repeat("x", MaxCommentLength+1) }},
		{"partial breakdown", func(r *Review) { r.Breakdown = &RatingBreakdown{Taste: 5} }},
		{"breakdown rating mismatch", func(r *Review) { r.Rating = 2.0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rv := validReview()
			tt.mutate(rv)
			assert.ErrorIs(t, rv.Validate(), apperrors.ErrInvalidInput)
		})
	}
}

func TestReviewOwnedBy_CanonicalAndStringifiedForms(t *testing.T) {
	rv := validReview()

	assert.True(t, rv.OwnedBy("0f8fad5b-d9cb-469f-a165-70867728950e"))
	// Case differences in the hex form resolve to the same UUID.
	assert.True(t, rv.OwnedBy("0F8FAD5B-D9CB-469F-A165-70867728950E"))
	// Braced form parses to the same UUID.
	assert.True(t, rv.OwnedBy("{0f8fad5b-d9cb-469f-a165-70867728950e}"))

	assert.False(t, rv.OwnedBy("11111111-1111-1111-1111-111111111111"))
}

func TestSameID_NonUUIDFallsBackToStringEquality(t *testing.T) {
	assert.True(t, SameID("legacy-7", "legacy-7"))
	assert.False(t, SameID("legacy-7", "legacy-8"))
	assert.False(t, SameID("legacy-7", "0f8fad5b-d9cb-469f-a165-70867728950e"))
}
