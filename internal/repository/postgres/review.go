package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/codedits/bitecheck/internal/domain"
	"github.com/codedits/bitecheck/pkg/database"
	apperrors "github.com/codedits/bitecheck/pkg/errors"
)

const reviewColumns = `id, user_id, username, restaurant_name, rating, comment, images, rating_taste, rating_presentation, rating_service, rating_ambiance, rating_value, created_at, updated_at`

// ReviewRepository implements repository.ReviewRepository using PostgreSQL.
// The rating breakdown is stored as five nullable smallint columns that are
// either all set or all null.
type ReviewRepository struct {
	pool database.DBTX
}

// NewReviewRepository creates a new PostgreSQL-backed review repository.
func NewReviewRepository(pool database.DBTX) *ReviewRepository {
	return &ReviewRepository{pool: pool}
}

// Create inserts a new review into the database.
func (r *ReviewRepository) Create(ctx context.Context, rv *domain.Review) error {
	query := `
		INSERT INTO reviews (id, user_id, username, restaurant_name, rating, comment, images, rating_taste, rating_presentation, rating_service, rating_ambiance, rating_value, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	taste, presentation, service, ambiance, value := breakdownColumns(rv.Breakdown)

	_, err := r.pool.Exec(ctx, query,
		rv.ID,
		rv.UserID,
		rv.Username,
		rv.RestaurantName,
		rv.Rating,
		rv.Comment,
		rv.Images,
		taste,
		presentation,
		service,
		ambiance,
		value,
		rv.CreatedAt,
		rv.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert review: %w", err)
	}

	return nil
}

// GetByID retrieves a review by its ID.
func (r *ReviewRepository) GetByID(ctx context.Context, id string) (*domain.Review, error) {
	query := `SELECT ` + reviewColumns + ` FROM reviews WHERE id = $1`

	rv, err := scanReviewRow(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan review: %w", err)
	}

	return rv, nil
}

// ListByRestaurantName returns every review whose restaurant_name equals the
// given name, in ascending creation order. The comparison is case sensitive.
func (r *ReviewRepository) ListByRestaurantName(ctx context.Context, name string) ([]domain.Review, error) {
	query := `
		SELECT ` + reviewColumns + `
		FROM reviews
		WHERE restaurant_name = $1
		ORDER BY created_at ASC`

	rows, err := r.pool.Query(ctx, query, name)
	if err != nil {
		return nil, fmt.Errorf("list reviews by restaurant: %w", err)
	}
	defer rows.Close()

	return collectReviews(rows)
}

// ListByUserID returns paginated reviews written by the given user along with
// the total count.
func (r *ReviewRepository) ListByUserID(ctx context.Context, userID string, page, perPage int) ([]domain.Review, int, error) {
	limit := perPage
	if limit <= 0 {
		limit = 20
	}
	offset := 0
	if page > 1 {
		offset = (page - 1) * limit
	}

	query := `
		SELECT ` + reviewColumns + `, count(*) OVER() AS total_count
		FROM reviews
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list reviews by user: %w", err)
	}
	defer rows.Close()

	var (
		reviews    []domain.Review
		totalCount int
	)

	for rows.Next() {
		var (
			rv                                          domain.Review
			taste, presentation, service, ambiance, val *int16
		)

		if err := rows.Scan(
			&rv.ID,
			&rv.UserID,
			&rv.Username,
			&rv.RestaurantName,
			&rv.Rating,
			&rv.Comment,
			&rv.Images,
			&taste,
			&presentation,
			&service,
			&ambiance,
			&val,
			&rv.CreatedAt,
			&rv.UpdatedAt,
			&totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("scan review row: %w", err)
		}

		rv.Breakdown = breakdownFromColumns(taste, presentation, service, ambiance, val)
		reviews = append(reviews, rv)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate review rows: %w", err)
	}

	if reviews == nil {
		reviews = []domain.Review{}
	}

	return reviews, totalCount, nil
}

// Update modifies an existing review in the database.
func (r *ReviewRepository) Update(ctx context.Context, rv *domain.Review) error {
	query := `
		UPDATE reviews
		SET rating = $1, comment = $2, images = $3,
		    rating_taste = $4, rating_presentation = $5, rating_service = $6, rating_ambiance = $7, rating_value = $8,
		    updated_at = $9
		WHERE id = $10`

	taste, presentation, service, ambiance, value := breakdownColumns(rv.Breakdown)

	ct, err := r.pool.Exec(ctx, query,
		rv.Rating,
		rv.Comment,
		rv.Images,
		taste,
		presentation,
		service,
		ambiance,
		value,
		rv.UpdatedAt,
		rv.ID,
	)
	if err != nil {
		return fmt.Errorf("update review: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("review", rv.ID)
	}

	return nil
}

// DeleteByID removes a review by its ID.
func (r *ReviewRepository) DeleteByID(ctx context.Context, id string) error {
	query := `DELETE FROM reviews WHERE id = $1`

	ct, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete review: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("review", id)
	}

	return nil
}

// DeleteByUserID removes every review written by the given user and returns
// the distinct restaurant names the deleted reviews covered.
func (r *ReviewRepository) DeleteByUserID(ctx context.Context, userID string) ([]string, error) {
	query := `
		DELETE FROM reviews
		WHERE user_id = $1
		RETURNING restaurant_name`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("delete reviews by user: %w", err)
	}
	defer rows.Close()

	seen := make(map[string]struct{})
	var names []string

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan deleted review row: %w", err)
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate deleted review rows: %w", err)
	}

	return names, nil
}

// DistinctRestaurantNames returns every restaurant name referenced by at
// least one review.
func (r *ReviewRepository) DistinctRestaurantNames(ctx context.Context) ([]string, error) {
	query := `SELECT DISTINCT restaurant_name FROM reviews ORDER BY restaurant_name`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list distinct restaurant names: %w", err)
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

func collectReviews(rows pgx.Rows) ([]domain.Review, error) {
	var reviews []domain.Review

	for rows.Next() {
		rv, err := scanReviewRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan review row: %w", err)
		}
		reviews = append(reviews, *rv)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate review rows: %w", err)
	}

	if reviews == nil {
		reviews = []domain.Review{}
	}

	return reviews, nil
}

func scanReviewRow(row pgx.Row) (*domain.Review, error) {
	var (
		rv                                            domain.Review
		taste, presentation, service, ambiance, value *int16
	)

	if err := row.Scan(
		&rv.ID,
		&rv.UserID,
		&rv.Username,
		&rv.RestaurantName,
		&rv.Rating,
		&rv.Comment,
		&rv.Images,
		&taste,
		&presentation,
		&service,
		&ambiance,
		&value,
		&rv.CreatedAt,
		&rv.UpdatedAt,
	); err != nil {
		return nil, err
	}

	rv.Breakdown = breakdownFromColumns(taste, presentation, service, ambiance, value)
	return &rv, nil
}

// breakdownColumns flattens a breakdown into its five column values. A nil
// breakdown yields five NULLs.
func breakdownColumns(b *domain.RatingBreakdown) (taste, presentation, service, ambiance, value *int16) {
	if b == nil {
		return nil, nil, nil, nil, nil
	}

	asInt16 := func(v int) *int16 {
		n := int16(v)
		return &n
	}

	return asInt16(b.Taste), asInt16(b.Presentation), asInt16(b.Service), asInt16(b.Ambiance), asInt16(b.Value)
}

// breakdownFromColumns rebuilds a breakdown from the five columns. A row
// written without a breakdown has all five NULL.
func breakdownFromColumns(taste, presentation, service, ambiance, value *int16) *domain.RatingBreakdown {
	if taste == nil && presentation == nil && service == nil && ambiance == nil && value == nil {
		return nil
	}

	asInt := func(v *int16) int {
		if v == nil {
			return 0
		}
		return int(*v)
	}

	return &domain.RatingBreakdown{
		Taste:        asInt(taste),
		Presentation: asInt(presentation),
		Service:      asInt(service),
		Ambiance:     asInt(ambiance),
		Value:        asInt(value),
	}
}
