package postgres

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codedits/bitecheck/internal/domain"
	apperrors "github.com/codedits/bitecheck/pkg/errors"
)

var reviewColumnNames = []string{
	"id", "user_id", "username", "restaurant_name", "rating", "comment",
	"images", "rating_taste", "rating_presentation", "rating_service",
	"rating_ambiance", "rating_value", "created_at", "updated_at",
}

var reviewColumnNamesWithCount = append(append([]string{}, reviewColumnNames...), "total_count")

func sampleDBReview() domain.Review {
	return domain.Review{
		ID:             "review-1",
		UserID:         "user-1",
		Username:       "alice",
		RestaurantName: "Lucali",
		Rating:         4.1,
		Comment:        "Great crust.",
		Images:         []string{"https://img/a.jpg"},
		Breakdown:      &domain.RatingBreakdown{Taste: 5, Presentation: 4, Service: 4, Ambiance: 3, Value: 3},
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func reviewDBRow(rv domain.Review) []any {
	taste, presentation, service, ambiance, value := breakdownColumns(rv.Breakdown)
	return []any{
		rv.ID, rv.UserID, rv.Username, rv.RestaurantName, rv.Rating, rv.Comment,
		rv.Images, taste, presentation, service, ambiance, value,
		rv.CreatedAt, rv.UpdatedAt,
	}
}

func TestReviewRepository_Create_WithBreakdown(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewReviewRepository(mock)

	rv := sampleDBReview()

	mock.ExpectExec("INSERT INTO reviews").
		WithArgs(
			rv.ID, rv.UserID, rv.Username, rv.RestaurantName, rv.Rating, rv.Comment, rv.Images,
			int16Ptr(5), int16Ptr(4), int16Ptr(4), int16Ptr(3), int16Ptr(3),
			rv.CreatedAt, rv.UpdatedAt,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := repo.Create(context.Background(), &rv)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewRepository_Create_WithoutBreakdown(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewReviewRepository(mock)

	rv := sampleDBReview()
	rv.Breakdown = nil
	rv.Rating = 3

	mock.ExpectExec("INSERT INTO reviews").
		WithArgs(
			rv.ID, rv.UserID, rv.Username, rv.RestaurantName, rv.Rating, rv.Comment, rv.Images,
			(*int16)(nil), (*int16)(nil), (*int16)(nil), (*int16)(nil), (*int16)(nil),
			rv.CreatedAt, rv.UpdatedAt,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := repo.Create(context.Background(), &rv)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewRepository_GetByID_Success(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewReviewRepository(mock)

	rv := sampleDBReview()
	mock.ExpectQuery("SELECT .+ FROM reviews WHERE id").
		WithArgs(rv.ID).
		WillReturnRows(
			pgxmock.NewRows(reviewColumnNames).AddRow(reviewDBRow(rv)...),
		)

	result, err := repo.GetByID(context.Background(), rv.ID)
	require.NoError(t, err)
	assert.Equal(t, rv.ID, result.ID)
	assert.Equal(t, rv.RestaurantName, result.RestaurantName)
	require.NotNil(t, result.Breakdown)
	assert.Equal(t, 5, result.Breakdown.Taste)
	assert.Equal(t, 3, result.Breakdown.Value)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewRepository_GetByID_NotFound(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewReviewRepository(mock)

	mock.ExpectQuery("SELECT .+ FROM reviews WHERE id").
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	result, err := repo.GetByID(context.Background(), "missing")
	assert.Nil(t, result)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewRepository_ListByRestaurantName_AscendingOrder(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewReviewRepository(mock)

	first := sampleDBReview()
	second := sampleDBReview()
	second.ID = "review-2"
	second.Breakdown = nil
	second.CreatedAt = now.Add(1)

	mock.ExpectQuery("SELECT .+ FROM reviews WHERE restaurant_name = .+ ORDER BY created_at ASC").
		WithArgs("Lucali").
		WillReturnRows(
			pgxmock.NewRows(reviewColumnNames).
				AddRow(reviewDBRow(first)...).
				AddRow(reviewDBRow(second)...),
		)

	results, err := repo.ListByRestaurantName(context.Background(), "Lucali")
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "review-1", results[0].ID)
	assert.NotNil(t, results[0].Breakdown)
	assert.Equal(t, "review-2", results[1].ID)
	assert.Nil(t, results[1].Breakdown)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewRepository_ListByRestaurantName_Empty(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewReviewRepository(mock)

	mock.ExpectQuery("SELECT .+ FROM reviews WHERE restaurant_name").
		WithArgs("Nowhere").
		WillReturnRows(pgxmock.NewRows(reviewColumnNames))

	results, err := repo.ListByRestaurantName(context.Background(), "Nowhere")
	require.NoError(t, err)
	assert.NotNil(t, results)
	assert.Empty(t, results)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewRepository_ListByUserID_Paginated(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewReviewRepository(mock)

	rv := sampleDBReview()
	mock.ExpectQuery("SELECT .+ FROM reviews WHERE user_id").
		WithArgs(rv.UserID, 10, 0).
		WillReturnRows(
			pgxmock.NewRows(reviewColumnNamesWithCount).
				AddRow(append(reviewDBRow(rv), 25)...),
		)

	results, total, err := repo.ListByUserID(context.Background(), rv.UserID, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 25, total)
	require.Len(t, results, 1)
	assert.Equal(t, rv.ID, results[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewRepository_Update_Success(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewReviewRepository(mock)

	rv := sampleDBReview()

	mock.ExpectExec("UPDATE reviews").
		WithArgs(
			rv.Rating, rv.Comment, rv.Images,
			int16Ptr(5), int16Ptr(4), int16Ptr(4), int16Ptr(3), int16Ptr(3),
			rv.UpdatedAt, rv.ID,
		).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := repo.Update(context.Background(), &rv)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewRepository_Update_NotFound(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewReviewRepository(mock)

	rv := sampleDBReview()
	rv.ID = "missing"

	mock.ExpectExec("UPDATE reviews").
		WithArgs(
			rv.Rating, rv.Comment, rv.Images,
			int16Ptr(5), int16Ptr(4), int16Ptr(4), int16Ptr(3), int16Ptr(3),
			rv.UpdatedAt, rv.ID,
		).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.Update(context.Background(), &rv)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewRepository_DeleteByID(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewReviewRepository(mock)

	mock.ExpectExec("DELETE FROM reviews WHERE id").
		WithArgs("review-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	assert.NoError(t, repo.DeleteByID(context.Background(), "review-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewRepository_DeleteByUserID_ReturnsDistinctNames(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewReviewRepository(mock)

	mock.ExpectQuery("DELETE FROM reviews .+ RETURNING restaurant_name").
		WithArgs("user-1").
		WillReturnRows(
			pgxmock.NewRows([]string{"restaurant_name"}).
				AddRow("Lucali").
				AddRow("Di Fara").
				AddRow("Lucali"),
		)

	names, err := repo.DeleteByUserID(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"Lucali", "Di Fara"}, names)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewRepository_DistinctRestaurantNames(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewReviewRepository(mock)

	mock.ExpectQuery("SELECT DISTINCT restaurant_name FROM reviews").
		WillReturnRows(
			pgxmock.NewRows([]string{"restaurant_name"}).
				AddRow("Di Fara").
				AddRow("Lucali"),
		)

	names, err := repo.DistinctRestaurantNames(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Di Fara", "Lucali"}, names)
	assert.NoError(t, mock.ExpectationsWereMet())
}
