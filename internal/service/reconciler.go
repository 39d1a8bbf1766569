package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/codedits/bitecheck/internal/domain"
	"github.com/codedits/bitecheck/internal/repository"
	apperrors "github.com/codedits/bitecheck/pkg/errors"
)

// ReconcileReport summarizes a reconciliation run.
type ReconcileReport struct {
	Checked   int       `json:"checked"`
	Created   int       `json:"created"`
	Repaired  int       `json:"repaired"`
	Removed   int       `json:"removed"`
	Unchanged int       `json:"unchanged"`
	Failed    int       `json:"failed"`
	StartedAt time.Time `json:"started_at"`
	Duration  string    `json:"duration"`
}

// ReconcilerService sweeps the full review set and repairs restaurant
// aggregates that drifted from it. It is the backstop for mutations whose
// follow-up recompute was lost.
type ReconcilerService struct {
	reviewRepo     repository.ReviewRepository
	restaurantRepo repository.RestaurantRepository
	logger         *slog.Logger
}

// NewReconcilerService creates a new reconciler service.
func NewReconcilerService(
	reviewRepo repository.ReviewRepository,
	restaurantRepo repository.RestaurantRepository,
	logger *slog.Logger,
) *ReconcilerService {
	return &ReconcilerService{
		reviewRepo:     reviewRepo,
		restaurantRepo: restaurantRepo,
		logger:         logger,
	}
}

// Run performs one reconciliation sweep. Every reviewed restaurant ends up
// existing with aggregates matching its reviews, and restaurants whose
// reviews are all gone lose their stale aggregates. The sweep is idempotent:
// a second run over unchanged data repairs nothing.
func (s *ReconcilerService) Run(ctx context.Context) (*ReconcileReport, error) {
	reconcileRunsTotal.Inc()

	started := time.Now().UTC()
	report := &ReconcileReport{StartedAt: started}

	reviewedNames, err := s.reviewRepo.DistinctRestaurantNames(ctx)
	if err != nil {
		return nil, fmt.Errorf("list reviewed restaurant names: %w", err)
	}

	reviewed := make(map[string]struct{}, len(reviewedNames))
	for _, name := range reviewedNames {
		reviewed[name] = struct{}{}
		s.reconcileName(ctx, name, report)
	}

	// Restaurants still carrying aggregates for reviews that no longer
	// exist: the missed deletion of a last review.
	aggregated, err := s.restaurantRepo.NamesWithAggregates(ctx)
	if err != nil {
		return nil, fmt.Errorf("list aggregated restaurant names: %w", err)
	}

	for _, name := range aggregated {
		if _, ok := reviewed[name]; ok {
			continue
		}
		report.Checked++
		if err := s.restaurantRepo.DeleteByName(ctx, name); err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			report.Failed++
			s.logger.ErrorContext(ctx, "failed to remove reviewless restaurant",
				slog.String("restaurant", name),
				slog.String("error", err.Error()),
			)
			continue
		}
		report.Removed++
		reconcileRepairsTotal.WithLabelValues("removed").Inc()
	}

	report.Duration = time.Since(started).String()

	s.logger.InfoContext(ctx, "reconciliation run finished",
		slog.Int("checked", report.Checked),
		slog.Int("created", report.Created),
		slog.Int("repaired", report.Repaired),
		slog.Int("removed", report.Removed),
		slog.Int("failed", report.Failed),
		slog.String("duration", report.Duration),
	)

	return report, nil
}

// reconcileName brings one restaurant in line with its reviews.
func (s *ReconcilerService) reconcileName(ctx context.Context, name string, report *ReconcileReport) {
	report.Checked++

	reviews, err := s.reviewRepo.ListByRestaurantName(ctx, name)
	if err != nil {
		report.Failed++
		s.logger.ErrorContext(ctx, "failed to list reviews during reconciliation",
			slog.String("restaurant", name),
			slog.String("error", err.Error()),
		)
		return
	}

	if len(reviews) == 0 {
		return
	}

	agg := domain.ComputeAggregate(reviews)

	rest, err := s.restaurantRepo.GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.createMissing(ctx, name, agg, reviews, report)
			return
		}
		report.Failed++
		s.logger.ErrorContext(ctx, "failed to load restaurant during reconciliation",
			slog.String("restaurant", name),
			slog.String("error", err.Error()),
		)
		return
	}

	var image *string
	if !rest.HasUsableImage() {
		if img := domain.RepresentativeImage(reviews); img != "" {
			image = &img
		}
	}

	if rest.Rating == agg.Rating && rest.TotalReviews == agg.TotalReviews {
		if image == nil {
			report.Unchanged++
			return
		}
		// Aggregates are fine but the restaurant has no usable image
		// while its reviews do.
		if err := s.restaurantRepo.UpdateAggregates(ctx, name, agg, image); err != nil {
			report.Failed++
			s.logger.ErrorContext(ctx, "failed to backfill restaurant image",
				slog.String("restaurant", name),
				slog.String("error", err.Error()),
			)
			return
		}
		report.Repaired++
		reconcileRepairsTotal.WithLabelValues("image_backfilled").Inc()
		s.logger.WarnContext(ctx, "backfilled restaurant image from reviews",
			slog.String("restaurant", name),
		)
		return
	}

	if err := s.restaurantRepo.UpdateAggregates(ctx, name, agg, image); err != nil {
		report.Failed++
		s.logger.ErrorContext(ctx, "failed to repair restaurant aggregates",
			slog.String("restaurant", name),
			slog.String("error", err.Error()),
		)
		return
	}

	report.Repaired++
	reconcileRepairsTotal.WithLabelValues("repaired").Inc()
	s.logger.WarnContext(ctx, "repaired drifted restaurant aggregates",
		slog.String("restaurant", name),
		slog.Float64("stored_rating", rest.Rating),
		slog.Float64("computed_rating", agg.Rating),
		slog.Int("stored_reviews", rest.TotalReviews),
		slog.Int("computed_reviews", agg.TotalReviews),
	)
}

// createMissing materializes a restaurant for orphaned reviews. The record is
// marked incomplete: only the name, aggregates and a representative image are
// known.
func (s *ReconcilerService) createMissing(ctx context.Context, name string, agg domain.Aggregate, reviews []domain.Review, report *ReconcileReport) {
	now := time.Now().UTC()
	rest := &domain.Restaurant{
		ID:           uuid.New().String(),
		Name:         name,
		Image:        domain.RepresentativeImage(reviews),
		Rating:       agg.Rating,
		TotalReviews: agg.TotalReviews,
		Incomplete:   true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.restaurantRepo.UpsertByName(ctx, rest); err != nil {
		report.Failed++
		s.logger.ErrorContext(ctx, "failed to materialize restaurant for orphaned reviews",
			slog.String("restaurant", name),
			slog.String("error", err.Error()),
		)
		return
	}

	report.Created++
	reconcileRepairsTotal.WithLabelValues("created").Inc()
	s.logger.WarnContext(ctx, "materialized restaurant for orphaned reviews",
		slog.String("restaurant", name),
		slog.Int("reviews", agg.TotalReviews),
	)
}

// Start runs reconciliation on the given interval until the context ends.
func (s *ReconcilerService) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Run(ctx); err != nil {
				s.logger.ErrorContext(ctx, "reconciliation run failed",
					slog.String("error", err.Error()),
				)
			}
		}
	}
}
