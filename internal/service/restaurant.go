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
	"github.com/codedits/bitecheck/internal/repository"
	apperrors "github.com/codedits/bitecheck/pkg/errors"
)

// CreateRestaurantInput holds the parameters for creating a restaurant.
type CreateRestaurantInput struct {
	Name        string
	Cuisine     string
	Location    string
	PriceRange  string
	Description string
	Image       string
	Featured    bool
}

// RestaurantListResult contains a page of restaurants.
type RestaurantListResult struct {
	Restaurants []domain.Restaurant `json:"restaurants"`
	TotalCount  int                 `json:"total_count"`
	Page        int                 `json:"page"`
	PerPage     int                 `json:"per_page"`
}

// RestaurantDetail is a restaurant together with its reviews.
type RestaurantDetail struct {
	Restaurant *domain.Restaurant `json:"restaurant"`
	Reviews    []domain.Review    `json:"reviews"`
}

// RestaurantService implements the business logic for restaurant operations.
// Rating and review-count fields are owned by the aggregator; this service
// never writes them directly.
type RestaurantService struct {
	repo       repository.RestaurantRepository
	reviewRepo repository.ReviewRepository
	producer   *event.Producer
	logger     *slog.Logger
}

// NewRestaurantService creates a new restaurant service.
func NewRestaurantService(
	repo repository.RestaurantRepository,
	reviewRepo repository.ReviewRepository,
	producer *event.Producer,
	logger *slog.Logger,
) *RestaurantService {
	return &RestaurantService{
		repo:       repo,
		reviewRepo: reviewRepo,
		producer:   producer,
		logger:     logger,
	}
}

// CreateRestaurant creates a new restaurant with zero aggregates. The name is
// trimmed here, once, and stored verbatim.
func (s *RestaurantService) CreateRestaurant(ctx context.Context, input *CreateRestaurantInput) (*domain.Restaurant, error) {
	now := time.Now().UTC()
	rest := &domain.Restaurant{
		ID:          uuid.New().String(),
		Name:        strings.TrimSpace(input.Name),
		Cuisine:     input.Cuisine,
		Location:    input.Location,
		PriceRange:  domain.PriceRange(input.PriceRange),
		Description: input.Description,
		Image:       input.Image,
		Featured:    input.Featured,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := rest.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, rest); err != nil {
		return nil, fmt.Errorf("create restaurant: %w", err)
	}

	s.logger.InfoContext(ctx, "restaurant created",
		slog.String("restaurant_id", rest.ID),
		slog.String("name", rest.Name),
	)

	return rest, nil
}

// GetRestaurant retrieves a restaurant by its ID.
func (s *RestaurantService) GetRestaurant(ctx context.Context, id string) (*domain.Restaurant, error) {
	rest, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get restaurant: %w", err)
	}
	return rest, nil
}

// GetRestaurantByName retrieves a restaurant and its reviews by exact name.
func (s *RestaurantService) GetRestaurantByName(ctx context.Context, name string) (*RestaurantDetail, error) {
	name = strings.TrimSpace(name)

	rest, err := s.repo.GetByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("get restaurant by name: %w", err)
	}

	reviews, err := s.reviewRepo.ListByRestaurantName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("list restaurant reviews: %w", err)
	}

	return &RestaurantDetail{Restaurant: rest, Reviews: reviews}, nil
}

// ListRestaurants returns a page of restaurants matching the filter.
func (s *RestaurantService) ListRestaurants(ctx context.Context, filter repository.RestaurantFilter) (*RestaurantListResult, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PerPage <= 0 || filter.PerPage > 100 {
		filter.PerPage = 20
	}

	restaurants, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list restaurants: %w", err)
	}

	return &RestaurantListResult{
		Restaurants: restaurants,
		TotalCount:  total,
		Page:        filter.Page,
		PerPage:     filter.PerPage,
	}, nil
}

// UpdateRestaurant applies the non-nil patch fields to the named restaurant.
func (s *RestaurantService) UpdateRestaurant(ctx context.Context, name string, patch repository.RestaurantPatch) (*domain.Restaurant, error) {
	name = strings.TrimSpace(name)

	if patch.PriceRange != nil && !domain.PriceRange(*patch.PriceRange).Valid() {
		return nil, apperrors.InvalidInput("price range must be one of $, $$, $$$, $$$$")
	}

	if err := s.repo.UpdateByName(ctx, name, patch); err != nil {
		return nil, fmt.Errorf("update restaurant: %w", err)
	}

	rest, err := s.repo.GetByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("reload restaurant: %w", err)
	}

	s.logger.InfoContext(ctx, "restaurant updated", slog.String("name", name))

	return rest, nil
}

// DeleteRestaurant removes a restaurant by name. Its reviews stay: the
// reconciliation job will materialize the restaurant again while reviews
// reference it.
func (s *RestaurantService) DeleteRestaurant(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)

	if err := s.repo.DeleteByName(ctx, name); err != nil {
		return fmt.Errorf("delete restaurant: %w", err)
	}

	s.logger.InfoContext(ctx, "restaurant deleted", slog.String("name", name))

	if err := s.producer.PublishRestaurantRemoved(ctx, name); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish restaurant.removed event",
			slog.String("restaurant", name),
			slog.String("error", err.Error()),
		)
	}

	return nil
}
