package repository

import (
	"context"

	"github.com/codedits/bitecheck/internal/domain"
)

// RestaurantFilter defines filter criteria for browsing restaurants.
type RestaurantFilter struct {
	Cuisine    *string
	Location   *string
	PriceRange *string
	Featured   *bool
	MinRating  *float64
	Search     *string
	Page       int
	PerPage    int
}

// RestaurantPatch carries the optional fields of a restaurant update. Nil
// fields are left untouched.
type RestaurantPatch struct {
	Cuisine     *string
	Location    *string
	PriceRange  *string
	Description *string
	Image       *string
	Featured    *bool
}

// RestaurantRepository defines the interface for restaurant persistence operations.
type RestaurantRepository interface {
	// Create inserts a new restaurant into the store.
	Create(ctx context.Context, restaurant *domain.Restaurant) error

	// GetByID retrieves a restaurant by its unique identifier.
	GetByID(ctx context.Context, id string) (*domain.Restaurant, error)

	// GetByName retrieves a restaurant by its exact name.
	GetByName(ctx context.Context, name string) (*domain.Restaurant, error)

	// List returns restaurants matching the given filter along with the total count.
	List(ctx context.Context, filter RestaurantFilter) ([]domain.Restaurant, int, error)

	// UpdateByName applies the non-nil fields of the patch to the named restaurant.
	UpdateByName(ctx context.Context, name string, patch RestaurantPatch) error

	// UpdateAggregates overwrites the derived rating state of the named
	// restaurant, optionally backfilling its image.
	UpdateAggregates(ctx context.Context, name string, agg domain.Aggregate, image *string) error

	// UpsertByName inserts a minimal restaurant record if none with the name
	// exists, otherwise refreshes its derived rating state.
	UpsertByName(ctx context.Context, restaurant *domain.Restaurant) error

	// NamesWithAggregates returns the names of restaurants whose stored
	// review count is greater than zero.
	NamesWithAggregates(ctx context.Context) ([]string, error)

	// DeleteByName removes a restaurant by its exact name.
	DeleteByName(ctx context.Context, name string) error
}

// ReviewRepository defines the interface for review persistence operations.
type ReviewRepository interface {
	// Create inserts a new review into the store.
	Create(ctx context.Context, review *domain.Review) error

	// GetByID retrieves a review by its unique identifier.
	GetByID(ctx context.Context, id string) (*domain.Review, error)

	// ListByRestaurantName returns every review for the named restaurant in
	// ascending creation order.
	ListByRestaurantName(ctx context.Context, name string) ([]domain.Review, error)

	// ListByUserID returns paginated reviews written by the given user along
	// with the total count.
	ListByUserID(ctx context.Context, userID string, page, perPage int) ([]domain.Review, int, error)

	// Update modifies an existing review in the store.
	Update(ctx context.Context, review *domain.Review) error

	// DeleteByID removes a review by its identifier.
	DeleteByID(ctx context.Context, id string) error

	// DeleteByUserID removes every review written by the given user and
	// returns the distinct restaurant names they covered.
	DeleteByUserID(ctx context.Context, userID string) ([]string, error)

	// DistinctRestaurantNames returns every restaurant name referenced by at
	// least one review.
	DistinctRestaurantNames(ctx context.Context) ([]string, error)
}

// UserRepository defines the interface for user persistence operations.
type UserRepository interface {
	// Create inserts a new user into the store.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by its unique identifier.
	GetByID(ctx context.Context, id string) (*domain.User, error)

	// GetByEmail retrieves a user by email address.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// Delete removes a user from the store by its identifier.
	Delete(ctx context.Context, id string) error
}
