package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/codedits/bitecheck/internal/domain"
	"github.com/codedits/bitecheck/internal/event"
	"github.com/codedits/bitecheck/internal/imagestore"
	"github.com/codedits/bitecheck/internal/repository"
	apperrors "github.com/codedits/bitecheck/pkg/errors"
)

// imageCleanupTimeout bounds the detached deletion of orphaned review images.
const imageCleanupTimeout = 30 * time.Second

// CreateReviewInput holds the parameters for creating a review.
type CreateReviewInput struct {
	UserID         string
	Username       string
	RestaurantName string
	Rating         float64
	Comment        string
	Images         []string
	Breakdown      *domain.RatingBreakdown
}

// UpdateReviewInput holds the optional fields of a review update. Nil fields
// are left untouched.
type UpdateReviewInput struct {
	Rating    *float64
	Comment   *string
	Images    []string
	Breakdown *domain.RatingBreakdown
}

// ReviewListResult contains a page of reviews.
type ReviewListResult struct {
	Reviews    []domain.Review `json:"reviews"`
	TotalCount int             `json:"total_count"`
	Page       int             `json:"page"`
	PerPage    int             `json:"per_page"`
}

// ReviewService implements the business logic for review operations. Every
// mutation triggers an aggregate recompute for the affected restaurant so
// the stored rating state follows the review set.
type ReviewService struct {
	repo       repository.ReviewRepository
	aggregator Aggregator
	producer   *event.Producer
	images     imagestore.Store
	logger     *slog.Logger
}

// NewReviewService creates a new review service.
func NewReviewService(
	repo repository.ReviewRepository,
	aggregator Aggregator,
	producer *event.Producer,
	images imagestore.Store,
	logger *slog.Logger,
) *ReviewService {
	return &ReviewService{
		repo:       repo,
		aggregator: aggregator,
		producer:   producer,
		images:     images,
		logger:     logger,
	}
}

// CreateReview creates a new review and refreshes the restaurant's aggregate.
// The restaurant does not have to exist yet: reviews for unknown names are
// picked up by reconciliation. The restaurant name is trimmed here, once, and
// matched exactly (case-sensitive) everywhere downstream.
func (s *ReviewService) CreateReview(ctx context.Context, input *CreateReviewInput) (*domain.Review, error) {
	now := time.Now().UTC()
	review := &domain.Review{
		ID:             uuid.New().String(),
		UserID:         input.UserID,
		Username:       input.Username,
		RestaurantName: strings.TrimSpace(input.RestaurantName),
		Rating:         input.Rating,
		Comment:        input.Comment,
		Images:         input.Images,
		Breakdown:      input.Breakdown,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	// The rating is computed by the submitting client, never recomputed
	// here. Validate rejects a rating that disagrees with the breakdown.
	if err := review.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, review); err != nil {
		return nil, fmt.Errorf("create review: %w", err)
	}

	s.logger.InfoContext(ctx, "review created",
		slog.String("review_id", review.ID),
		slog.String("restaurant", review.RestaurantName),
		slog.String("user_id", review.UserID),
		slog.Float64("rating", review.Rating),
	)

	if err := s.producer.PublishReviewCreated(ctx, review); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish review.created event",
			slog.String("review_id", review.ID),
			slog.String("error", err.Error()),
		)
	}

	if err := s.aggregator.Recompute(ctx, review.RestaurantName); err != nil {
		s.logger.ErrorContext(ctx, "failed to recompute aggregates after create",
			slog.String("restaurant", review.RestaurantName),
			slog.String("error", err.Error()),
		)
	}

	return review, nil
}

// GetReview retrieves a review by its ID.
func (s *ReviewService) GetReview(ctx context.Context, id string) (*domain.Review, error) {
	review, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get review: %w", err)
	}
	return review, nil
}

// ListByRestaurant returns every review for the named restaurant in ascending
// creation order.
func (s *ReviewService) ListByRestaurant(ctx context.Context, restaurantName string) ([]domain.Review, error) {
	reviews, err := s.repo.ListByRestaurantName(ctx, strings.TrimSpace(restaurantName))
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	return reviews, nil
}

// ListByUser returns a page of reviews written by the given user.
func (s *ReviewService) ListByUser(ctx context.Context, userID string, page, perPage int) (*ReviewListResult, error) {
	if page <= 0 {
		page = 1
	}
	if perPage <= 0 || perPage > 100 {
		perPage = 20
	}

	reviews, total, err := s.repo.ListByUserID(ctx, userID, page, perPage)
	if err != nil {
		return nil, fmt.Errorf("list reviews by user: %w", err)
	}

	return &ReviewListResult{
		Reviews:    reviews,
		TotalCount: total,
		Page:       page,
		PerPage:    perPage,
	}, nil
}

// UpdateReview applies the given changes to a review owned by the user. The
// aggregate is recomputed only when the rating actually changed. A rating
// change without a new breakdown clears any stored breakdown: the old
// per-category scores no longer back the new overall rating.
func (s *ReviewService) UpdateReview(ctx context.Context, reviewID, userID string, input *UpdateReviewInput) (*domain.Review, error) {
	review, err := s.repo.GetByID(ctx, reviewID)
	if err != nil {
		return nil, fmt.Errorf("get review for update: %w", err)
	}

	if !review.OwnedBy(userID) {
		return nil, apperrors.Forbidden("review belongs to another user")
	}

	oldRating := review.Rating
	var removedImages []string

	if input.Comment != nil {
		review.Comment = *input.Comment
	}
	if input.Images != nil {
		removedImages = missingFrom(review.Images, input.Images)
		review.Images = input.Images
	}
	if input.Rating != nil {
		review.Rating = *input.Rating
		if input.Breakdown == nil {
			review.Breakdown = nil
		}
	}
	if input.Breakdown != nil {
		review.Breakdown = input.Breakdown
	}
	review.UpdatedAt = time.Now().UTC()

	if err := review.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, review); err != nil {
		return nil, fmt.Errorf("update review: %w", err)
	}

	s.logger.InfoContext(ctx, "review updated",
		slog.String("review_id", review.ID),
		slog.String("restaurant", review.RestaurantName),
		slog.Float64("rating", review.Rating),
	)

	if err := s.producer.PublishReviewUpdated(ctx, review); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish review.updated event",
			slog.String("review_id", review.ID),
			slog.String("error", err.Error()),
		)
	}

	if review.Rating != oldRating {
		if err := s.aggregator.Recompute(ctx, review.RestaurantName); err != nil {
			s.logger.ErrorContext(ctx, "failed to recompute aggregates after update",
				slog.String("restaurant", review.RestaurantName),
				slog.String("error", err.Error()),
			)
		}
	}

	s.cleanupImages(ctx, removedImages)

	return review, nil
}

// DeleteReview removes a review owned by the user and refreshes the
// restaurant's aggregate, which removes the restaurant itself when this was
// its last review. Hosted images are cleaned up without blocking the caller.
func (s *ReviewService) DeleteReview(ctx context.Context, reviewID, userID string) error {
	review, err := s.repo.GetByID(ctx, reviewID)
	if err != nil {
		return fmt.Errorf("get review for delete: %w", err)
	}

	if !review.OwnedBy(userID) {
		return apperrors.Forbidden("review belongs to another user")
	}

	if err := s.repo.DeleteByID(ctx, reviewID); err != nil {
		return fmt.Errorf("delete review: %w", err)
	}

	s.logger.InfoContext(ctx, "review deleted",
		slog.String("review_id", reviewID),
		slog.String("restaurant", review.RestaurantName),
	)

	if err := s.producer.PublishReviewDeleted(ctx, review); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish review.deleted event",
			slog.String("review_id", reviewID),
			slog.String("error", err.Error()),
		)
	}

	if err := s.aggregator.Recompute(ctx, review.RestaurantName); err != nil {
		s.logger.ErrorContext(ctx, "failed to recompute aggregates after delete",
			slog.String("restaurant", review.RestaurantName),
			slog.String("error", err.Error()),
		)
	}

	s.cleanupImages(ctx, review.Images)

	return nil
}

// cleanupImages deletes hosted images in a detached goroutine. Failures are
// logged and never surface to the caller.
func (s *ReviewService) cleanupImages(ctx context.Context, urls []string) {
	var keys []string
	for _, url := range urls {
		if key := imagestore.KeyFromURL(url); key != "" {
			keys = append(keys, key)
		}
	}
	if len(keys) == 0 {
		return
	}

	detached := context.WithoutCancel(ctx)

	go func() {
		cleanupCtx, cancel := context.WithTimeout(detached, imageCleanupTimeout)
		defer cancel()

		if failed := s.images.DeleteMany(cleanupCtx, keys); len(failed) > 0 {
			s.logger.WarnContext(cleanupCtx, "some review images were not deleted",
				slog.Int("failed", len(failed)),
			)
		}
	}()
}

// missingFrom returns the elements of old that are absent from current.
func missingFrom(old, current []string) []string {
	keep := make(map[string]struct{}, len(current))
	for _, v := range current {
		keep[v] = struct{}{}
	}

	var missing []string
	for _, v := range old {
		if _, ok := keep[v]; !ok {
			missing = append(missing, v)
		}
	}
	return missing
}
