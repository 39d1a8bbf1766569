package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/codedits/bitecheck/internal/domain"
	"github.com/codedits/bitecheck/internal/repository"
	"github.com/codedits/bitecheck/pkg/database"
	apperrors "github.com/codedits/bitecheck/pkg/errors"
)

const restaurantColumns = `id, name, cuisine, location, price_range, description, image, featured, rating, total_reviews, incomplete, created_at, updated_at`

// RestaurantRepository implements repository.RestaurantRepository using PostgreSQL.
type RestaurantRepository struct {
	pool database.DBTX
}

// NewRestaurantRepository creates a new PostgreSQL-backed restaurant repository.
func NewRestaurantRepository(pool database.DBTX) *RestaurantRepository {
	return &RestaurantRepository{pool: pool}
}

// Create inserts a new restaurant into the database.
func (r *RestaurantRepository) Create(ctx context.Context, rest *domain.Restaurant) error {
	query := `
		INSERT INTO restaurants (id, name, cuisine, location, price_range, description, image, featured, rating, total_reviews, incomplete, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err := r.pool.Exec(ctx, query,
		rest.ID,
		rest.Name,
		rest.Cuisine,
		rest.Location,
		rest.PriceRange,
		rest.Description,
		rest.Image,
		rest.Featured,
		rest.Rating,
		rest.TotalReviews,
		rest.Incomplete,
		rest.CreatedAt,
		rest.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("restaurant", "name", rest.Name)
		}
		return fmt.Errorf("insert restaurant: %w", err)
	}

	return nil
}

// GetByID retrieves a restaurant by its ID.
func (r *RestaurantRepository) GetByID(ctx context.Context, id string) (*domain.Restaurant, error) {
	query := `SELECT ` + restaurantColumns + ` FROM restaurants WHERE id = $1`
	return r.scanRestaurant(ctx, query, id)
}

// GetByName retrieves a restaurant by its exact name. Matching is case
// sensitive: reviews join restaurants on this string.
func (r *RestaurantRepository) GetByName(ctx context.Context, name string) (*domain.Restaurant, error) {
	query := `SELECT ` + restaurantColumns + ` FROM restaurants WHERE name = $1`
	return r.scanRestaurant(ctx, query, name)
}

// List returns restaurants matching the given filter with the total count.
func (r *RestaurantRepository) List(ctx context.Context, filter repository.RestaurantFilter) ([]domain.Restaurant, int, error) {
	var (
		conditions []string
		args       []any
		argIndex   = 1
	)

	if filter.Cuisine != nil {
		conditions = append(conditions, fmt.Sprintf("cuisine = $%d", argIndex))
		args = append(args, *filter.Cuisine)
		argIndex++
	}

	if filter.Location != nil {
		conditions = append(conditions, fmt.Sprintf("location ILIKE $%d", argIndex))
		args = append(args, "%"+*filter.Location+"%")
		argIndex++
	}

	if filter.PriceRange != nil {
		conditions = append(conditions, fmt.Sprintf("price_range = $%d", argIndex))
		args = append(args, *filter.PriceRange)
		argIndex++
	}

	if filter.Featured != nil {
		conditions = append(conditions, fmt.Sprintf("featured = $%d", argIndex))
		args = append(args, *filter.Featured)
		argIndex++
	}

	if filter.MinRating != nil {
		conditions = append(conditions, fmt.Sprintf("rating >= $%d", argIndex))
		args = append(args, *filter.MinRating)
		argIndex++
	}

	if filter.Search != nil {
		conditions = append(conditions, fmt.Sprintf("(name ILIKE $%d OR description ILIKE $%d)", argIndex, argIndex))
		args = append(args, "%"+*filter.Search+"%")
		argIndex++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	// Use count(*) OVER() for total count in a single query.
	query := fmt.Sprintf(`
		SELECT %s, count(*) OVER() AS total_count
		FROM restaurants
		%s
		ORDER BY rating DESC, total_reviews DESC
		LIMIT $%d OFFSET $%d`,
		restaurantColumns, whereClause, argIndex, argIndex+1,
	)

	limit := filter.PerPage
	if limit <= 0 {
		limit = 20
	}
	offset := 0
	if filter.Page > 1 {
		offset = (filter.Page - 1) * limit
	}

	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list restaurants: %w", err)
	}
	defer rows.Close()

	var (
		restaurants []domain.Restaurant
		totalCount  int
	)

	for rows.Next() {
		var rest domain.Restaurant

		if err := rows.Scan(
			&rest.ID,
			&rest.Name,
			&rest.Cuisine,
			&rest.Location,
			&rest.PriceRange,
			&rest.Description,
			&rest.Image,
			&rest.Featured,
			&rest.Rating,
			&rest.TotalReviews,
			&rest.Incomplete,
			&rest.CreatedAt,
			&rest.UpdatedAt,
			&totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("scan restaurant row: %w", err)
		}

		restaurants = append(restaurants, rest)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate restaurant rows: %w", err)
	}

	if restaurants == nil {
		restaurants = []domain.Restaurant{}
	}

	return restaurants, totalCount, nil
}

// UpdateByName applies the non-nil patch fields to the named restaurant.
func (r *RestaurantRepository) UpdateByName(ctx context.Context, name string, patch repository.RestaurantPatch) error {
	var (
		sets     []string
		args     []any
		argIndex = 1
	)

	set := func(column string, value any) {
		sets = append(sets, fmt.Sprintf("%s = $%d", column, argIndex))
		args = append(args, value)
		argIndex++
	}

	if patch.Cuisine != nil {
		set("cuisine", *patch.Cuisine)
	}
	if patch.Location != nil {
		set("location", *patch.Location)
	}
	if patch.PriceRange != nil {
		set("price_range", *patch.PriceRange)
	}
	if patch.Description != nil {
		set("description", *patch.Description)
	}
	if patch.Image != nil {
		set("image", *patch.Image)
	}
	if patch.Featured != nil {
		set("featured", *patch.Featured)
	}

	if len(sets) == 0 {
		return nil
	}

	set("updated_at", time.Now().UTC())

	query := fmt.Sprintf(`UPDATE restaurants SET %s WHERE name = $%d`, strings.Join(sets, ", "), argIndex)
	args = append(args, name)

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update restaurant: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("restaurant", name)
	}

	return nil
}

// UpdateAggregates overwrites the derived rating state of the named restaurant.
// A non-nil image backfills the image column in the same statement.
func (r *RestaurantRepository) UpdateAggregates(ctx context.Context, name string, agg domain.Aggregate, image *string) error {
	var (
		query string
		args  []any
	)

	if image != nil {
		query = `
			UPDATE restaurants
			SET rating = $1, total_reviews = $2, image = $3, updated_at = $4
			WHERE name = $5`
		args = []any{agg.Rating, agg.TotalReviews, *image, time.Now().UTC(), name}
	} else {
		query = `
			UPDATE restaurants
			SET rating = $1, total_reviews = $2, updated_at = $3
			WHERE name = $4`
		args = []any{agg.Rating, agg.TotalReviews, time.Now().UTC(), name}
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update restaurant aggregates: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("restaurant", name)
	}

	return nil
}

// UpsertByName inserts a minimal restaurant record for the name if none
// exists, otherwise refreshes its derived rating state. Existing descriptive
// fields are never overwritten.
func (r *RestaurantRepository) UpsertByName(ctx context.Context, rest *domain.Restaurant) error {
	query := `
		INSERT INTO restaurants (id, name, cuisine, location, price_range, description, image, featured, rating, total_reviews, incomplete, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (name) DO UPDATE
		SET rating = EXCLUDED.rating, total_reviews = EXCLUDED.total_reviews, updated_at = EXCLUDED.updated_at`

	_, err := r.pool.Exec(ctx, query,
		rest.ID,
		rest.Name,
		rest.Cuisine,
		rest.Location,
		rest.PriceRange,
		rest.Description,
		rest.Image,
		rest.Featured,
		rest.Rating,
		rest.TotalReviews,
		rest.Incomplete,
		rest.CreatedAt,
		rest.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert restaurant: %w", err)
	}

	return nil
}

// NamesWithAggregates returns the names of restaurants whose stored review
// count is greater than zero.
func (r *RestaurantRepository) NamesWithAggregates(ctx context.Context) ([]string, error) {
	query := `SELECT name FROM restaurants WHERE total_reviews > 0 ORDER BY name`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list restaurants with aggregates: %w", err)
	}
	defer rows.Close()

	var names []string

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan restaurant name: %w", err)
		}
		names = append(names, name)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate restaurant names: %w", err)
	}

	return names, nil
}

// DeleteByName removes a restaurant by its exact name.
func (r *RestaurantRepository) DeleteByName(ctx context.Context, name string) error {
	query := `DELETE FROM restaurants WHERE name = $1`

	ct, err := r.pool.Exec(ctx, query, name)
	if err != nil {
		return fmt.Errorf("delete restaurant: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("restaurant", name)
	}

	return nil
}

// scanRestaurant executes a query expected to return a single restaurant row.
func (r *RestaurantRepository) scanRestaurant(ctx context.Context, query string, args ...any) (*domain.Restaurant, error) {
	var rest domain.Restaurant

	err := r.pool.QueryRow(ctx, query, args...).Scan(
		&rest.ID,
		&rest.Name,
		&rest.Cuisine,
		&rest.Location,
		&rest.PriceRange,
		&rest.Description,
		&rest.Image,
		&rest.Featured,
		&rest.Rating,
		&rest.TotalReviews,
		&rest.Incomplete,
		&rest.CreatedAt,
		&rest.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan restaurant: %w", err)
	}

	return &rest, nil
}

// isUniqueViolation checks if the error is a PostgreSQL unique constraint violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "23505")
}
