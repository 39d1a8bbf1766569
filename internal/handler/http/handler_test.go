package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/codedits/bitecheck/internal/domain"
	"github.com/codedits/bitecheck/internal/event"
	"github.com/codedits/bitecheck/internal/repository"
	"github.com/codedits/bitecheck/pkg/httputil"
	pkgkafka "github.com/codedits/bitecheck/pkg/kafka"
	"github.com/codedits/bitecheck/pkg/middleware"
)

const testUserID = "0f8fad5b-d9cb-469f-a165-70867728950e"

// =============================================================================
// Mock repositories
// =============================================================================

type mockReviewRepo struct {
	mock.Mock
}

func (m *mockReviewRepo) Create(ctx context.Context, review *domain.Review) error {
	args := m.Called(ctx, review)
	return args.Error(0)
}

func (m *mockReviewRepo) GetByID(ctx context.Context, id string) (*domain.Review, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Review), args.Error(1)
}

func (m *mockReviewRepo) ListByRestaurantName(ctx context.Context, name string) ([]domain.Review, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Review), args.Error(1)
}

func (m *mockReviewRepo) ListByUserID(ctx context.Context, userID string, page, perPage int) ([]domain.Review, int, error) {
	args := m.Called(ctx, userID, page, perPage)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Review), args.Int(1), args.Error(2)
}

func (m *mockReviewRepo) Update(ctx context.Context, review *domain.Review) error {
	args := m.Called(ctx, review)
	return args.Error(0)
}

func (m *mockReviewRepo) DeleteByID(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockReviewRepo) DeleteByUserID(ctx context.Context, userID string) ([]string, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *mockReviewRepo) DistinctRestaurantNames(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

type mockRestaurantRepo struct {
	mock.Mock
}

func (m *mockRestaurantRepo) Create(ctx context.Context, restaurant *domain.Restaurant) error {
	args := m.Called(ctx, restaurant)
	return args.Error(0)
}

func (m *mockRestaurantRepo) GetByID(ctx context.Context, id string) (*domain.Restaurant, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Restaurant), args.Error(1)
}

func (m *mockRestaurantRepo) GetByName(ctx context.Context, name string) (*domain.Restaurant, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Restaurant), args.Error(1)
}

func (m *mockRestaurantRepo) List(ctx context.Context, filter repository.RestaurantFilter) ([]domain.Restaurant, int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Restaurant), args.Int(1), args.Error(2)
}

func (m *mockRestaurantRepo) UpdateByName(ctx context.Context, name string, patch repository.RestaurantPatch) error {
	args := m.Called(ctx, name, patch)
	return args.Error(0)
}

func (m *mockRestaurantRepo) UpdateAggregates(ctx context.Context, name string, agg domain.Aggregate, image *string) error {
	args := m.Called(ctx, name, agg, image)
	return args.Error(0)
}

func (m *mockRestaurantRepo) UpsertByName(ctx context.Context, restaurant *domain.Restaurant) error {
	args := m.Called(ctx, restaurant)
	return args.Error(0)
}

func (m *mockRestaurantRepo) NamesWithAggregates(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *mockRestaurantRepo) DeleteByName(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}

type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepo) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockAggregator struct {
	mock.Mock
}

func (m *mockAggregator) Recompute(ctx context.Context, restaurantName string) error {
	args := m.Called(ctx, restaurantName)
	return args.Error(0)
}

// =============================================================================
// Test helpers
// =============================================================================

func handlerTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func handlerTestEventProducer() *event.Producer {
	logger := handlerTestLogger()
	kafkaCfg := pkgkafka.DefaultProducerConfig([]string{"localhost:9092"})
	kafkaProducer := pkgkafka.NewProducer(kafkaCfg, logger)
	return event.NewProducer(kafkaProducer, logger)
}

// fakeTokenValidator returns a middleware.TokenValidator that always succeeds
// with the given user.
func fakeTokenValidator(userID string) middleware.TokenValidator {
	return func(token string) (*middleware.Claims, error) {
		return &middleware.Claims{UserID: userID, Email: "alice@example.com", Username: "alice"}, nil
	}
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) httputil.Response {
	t.Helper()
	var resp httputil.Response
	err := json.NewDecoder(rec.Body).Decode(&resp)
	require.NoError(t, err)
	return resp
}

func sampleReview() *domain.Review {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	return &domain.Review{
		ID:             "550e8400-e29b-41d4-a716-446655440001",
		UserID:         testUserID,
		Username:       "alice",
		RestaurantName: "Lucali",
		Rating:         4.1,
		Comment:        "Great crust.",
		Images:         []string{},
		Breakdown: &domain.RatingBreakdown{
			Taste:        5,
			Presentation: 4,
			Service:      4,
			Ambiance:     3,
			Value:        3,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func sampleRestaurant() *domain.Restaurant {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	return &domain.Restaurant{
		ID:           "550e8400-e29b-41d4-a716-446655440002",
		Name:         "Lucali",
		Cuisine:      "Pizza",
		Location:     "Brooklyn",
		PriceRange:   domain.PriceModerate,
		Description:  "Thin crust institution.",
		Image:        "https://cdn.bitecheck.io/upload/restaurants/lucali.jpg",
		Rating:       4.1,
		TotalReviews: 1,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
