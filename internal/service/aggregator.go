package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/codedits/bitecheck/internal/domain"
	"github.com/codedits/bitecheck/internal/event"
	"github.com/codedits/bitecheck/internal/repository"
	apperrors "github.com/codedits/bitecheck/pkg/errors"
)

// Aggregator recomputes a restaurant's derived rating state from its reviews.
type Aggregator interface {
	Recompute(ctx context.Context, restaurantName string) error
}

// nameLocks hands out one mutex per restaurant name so concurrent mutations
// of the same restaurant serialize while distinct restaurants proceed in
// parallel.
type nameLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newNameLocks() *nameLocks {
	return &nameLocks{locks: make(map[string]*sync.Mutex)}
}

func (n *nameLocks) get(name string) *sync.Mutex {
	n.mu.Lock()
	defer n.mu.Unlock()

	l, ok := n.locks[name]
	if !ok {
		l = &sync.Mutex{}
		n.locks[name] = l
	}
	return l
}

// AggregatorService derives restaurant rating state from the review set.
// Reviews are the source of truth: the stored rating and review count are a
// cache that every mutation refreshes through Recompute.
type AggregatorService struct {
	reviewRepo     repository.ReviewRepository
	restaurantRepo repository.RestaurantRepository
	producer       *event.Producer
	logger         *slog.Logger
	locks          *nameLocks
}

// NewAggregatorService creates a new aggregator service.
func NewAggregatorService(
	reviewRepo repository.ReviewRepository,
	restaurantRepo repository.RestaurantRepository,
	producer *event.Producer,
	logger *slog.Logger,
) *AggregatorService {
	return &AggregatorService{
		reviewRepo:     reviewRepo,
		restaurantRepo: restaurantRepo,
		producer:       producer,
		logger:         logger,
		locks:          newNameLocks(),
	}
}

// Recompute rebuilds the named restaurant's aggregate from its current
// reviews. When the last review is gone the restaurant itself is removed.
// Calls for the same name serialize on a per-name lock.
func (s *AggregatorService) Recompute(ctx context.Context, restaurantName string) error {
	lock := s.locks.get(restaurantName)
	lock.Lock()
	defer lock.Unlock()

	reviews, err := s.reviewRepo.ListByRestaurantName(ctx, restaurantName)
	if err != nil {
		aggregateRecomputesTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("list reviews for %q: %w", restaurantName, err)
	}

	if len(reviews) == 0 {
		return s.removeRestaurant(ctx, restaurantName)
	}

	agg := domain.ComputeAggregate(reviews)

	rest, err := s.restaurantRepo.GetByName(ctx, restaurantName)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			// Orphaned reviews: the reconciliation job materializes the
			// missing restaurant.
			aggregateDriftTotal.Inc()
			aggregateRecomputesTotal.WithLabelValues("orphaned").Inc()
			s.logger.WarnContext(ctx, "reviews reference a missing restaurant",
				slog.String("restaurant", restaurantName),
				slog.Int("reviews", agg.TotalReviews),
			)
			return nil
		}
		aggregateRecomputesTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("get restaurant %q: %w", restaurantName, err)
	}

	if rest.Rating != agg.Rating || rest.TotalReviews != agg.TotalReviews {
		aggregateDriftTotal.Inc()
	}

	var image *string
	if !rest.HasUsableImage() {
		if img := domain.RepresentativeImage(reviews); img != "" {
			image = &img
		}
	}

	if err := s.restaurantRepo.UpdateAggregates(ctx, restaurantName, agg, image); err != nil {
		aggregateRecomputesTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("update aggregates for %q: %w", restaurantName, err)
	}

	aggregateRecomputesTotal.WithLabelValues("updated").Inc()
	s.logger.InfoContext(ctx, "restaurant aggregate recomputed",
		slog.String("restaurant", restaurantName),
		slog.Float64("rating", agg.Rating),
		slog.Int("total_reviews", agg.TotalReviews),
	)

	return nil
}

// removeRestaurant deletes a restaurant whose last review is gone. A
// restaurant that is already absent counts as success.
func (s *AggregatorService) removeRestaurant(ctx context.Context, restaurantName string) error {
	err := s.restaurantRepo.DeleteByName(ctx, restaurantName)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			aggregateRecomputesTotal.WithLabelValues("removed").Inc()
			return nil
		}
		aggregateRecomputesTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("delete restaurant %q: %w", restaurantName, err)
	}

	aggregateRecomputesTotal.WithLabelValues("removed").Inc()
	s.logger.InfoContext(ctx, "restaurant removed with its last review",
		slog.String("restaurant", restaurantName),
	)

	if err := s.producer.PublishRestaurantRemoved(ctx, restaurantName); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish restaurant.removed event",
			slog.String("restaurant", restaurantName),
			slog.String("error", err.Error()),
		)
	}

	return nil
}
