package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/codedits/bitecheck/internal/domain"
	"github.com/codedits/bitecheck/internal/imagestore/memory"
	"github.com/codedits/bitecheck/internal/service"
	apperrors "github.com/codedits/bitecheck/pkg/errors"
	"github.com/codedits/bitecheck/pkg/middleware"
)

func reviewTestHandler(repo *mockReviewRepo, agg *mockAggregator) *ReviewHandler {
	logger := handlerTestLogger()
	svc := service.NewReviewService(repo, agg, handlerTestEventProducer(), memory.New("https://cdn.bitecheck.io"), logger)
	return NewReviewHandler(svc, logger)
}

func reviewRouter(handler *ReviewHandler, userID string) *chi.Mux {
	r := chi.NewRouter()
	r.Route("/api/v1/reviews", func(r chi.Router) {
		r.Get("/{id}", handler.GetReview)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(fakeTokenValidator(userID)))

			r.Post("/", handler.CreateReview)
			r.Patch("/{id}", handler.UpdateReview)
			r.Delete("/{id}", handler.DeleteReview)
		})
	})
	r.Get("/api/v1/restaurants/{name}/reviews", handler.ListByRestaurant)
	return r
}

func TestCreateReview_Success(t *testing.T) {
	repo := new(mockReviewRepo)
	agg := new(mockAggregator)
	router := reviewRouter(reviewTestHandler(repo, agg), testUserID)

	repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Review")).Return(nil)
	agg.On("Recompute", mock.Anything, "Lucali").Return(nil)

	body := CreateReviewRequest{
		RestaurantName: "Lucali",
		Rating:         4.1,
		Comment:        "Great crust.",
		Breakdown: &BreakdownRequest{
			Taste:        5,
			Presentation: 4,
			Service:      4,
			Ambiance:     3,
			Value:        3,
		},
	}
	b, _ := json.Marshal(body)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/reviews", bytes.NewReader(b))
	req.Header.Set("Authorization", "Bearer test-token")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	resp := decodeResponse(t, rec)
	assert.Nil(t, resp.Error)
	require.NotNil(t, resp.Data)

	data := resp.Data.(map[string]any)
	assert.Equal(t, "Lucali", data["restaurant_name"])
	assert.Equal(t, testUserID, data["user_id"])
	repo.AssertExpectations(t)
	agg.AssertExpectations(t)
}

func TestCreateReview_Unauthenticated(t *testing.T) {
	repo := new(mockReviewRepo)
	agg := new(mockAggregator)
	router := reviewRouter(reviewTestHandler(repo, agg), testUserID)

	b, _ := json.Marshal(CreateReviewRequest{RestaurantName: "Lucali", Rating: 4.0})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/reviews", bytes.NewReader(b))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateReview_InvalidJSON(t *testing.T) {
	repo := new(mockReviewRepo)
	agg := new(mockAggregator)
	router := reviewRouter(reviewTestHandler(repo, agg), testUserID)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/reviews", bytes.NewReader([]byte(`{invalid`)))
	req.Header.Set("Authorization", "Bearer test-token")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "INVALID_INPUT", resp.Error.Code)
}

func TestCreateReview_ValidationError(t *testing.T) {
	repo := new(mockReviewRepo)
	agg := new(mockAggregator)
	router := reviewRouter(reviewTestHandler(repo, agg), testUserID)

	// Rating missing.
	b, _ := json.Marshal(CreateReviewRequest{RestaurantName: "Lucali"})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/reviews", bytes.NewReader(b))
	req.Header.Set("Authorization", "Bearer test-token")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateReview_BreakdownMismatch(t *testing.T) {
	repo := new(mockReviewRepo)
	agg := new(mockAggregator)
	router := reviewRouter(reviewTestHandler(repo, agg), testUserID)

	body := CreateReviewRequest{
		RestaurantName: "Lucali",
		Rating:         2.5,
		Breakdown: &BreakdownRequest{
			Taste:        5,
			Presentation: 4,
			Service:      4,
			Ambiance:     3,
			Value:        3,
		},
	}
	b, _ := json.Marshal(body)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/reviews", bytes.NewReader(b))
	req.Header.Set("Authorization", "Bearer test-token")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestGetReview_Success(t *testing.T) {
	repo := new(mockReviewRepo)
	agg := new(mockAggregator)
	router := reviewRouter(reviewTestHandler(repo, agg), testUserID)

	rv := sampleReview()
	repo.On("GetByID", mock.Anything, rv.ID).Return(rv, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/reviews/"+rv.ID, nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Data)

	data := resp.Data.(map[string]any)
	assert.Equal(t, rv.ID, data["id"])
	repo.AssertExpectations(t)
}

func TestGetReview_NotFound(t *testing.T) {
	repo := new(mockReviewRepo)
	agg := new(mockAggregator)
	router := reviewRouter(reviewTestHandler(repo, agg), testUserID)

	repo.On("GetByID", mock.Anything, "missing").Return(nil, apperrors.NotFound("review", "missing"))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/reviews/missing", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "NOT_FOUND", resp.Error.Code)
}

func TestListReviewsByRestaurant_Success(t *testing.T) {
	repo := new(mockReviewRepo)
	agg := new(mockAggregator)
	router := reviewRouter(reviewTestHandler(repo, agg), testUserID)

	repo.On("ListByRestaurantName", mock.Anything, "Lucali").
		Return([]domain.Review{*sampleReview()}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/restaurants/Lucali/reviews", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Data)

	reviews := resp.Data.([]any)
	assert.Len(t, reviews, 1)
	repo.AssertExpectations(t)
}

func TestUpdateReview_CommentOnly(t *testing.T) {
	repo := new(mockReviewRepo)
	agg := new(mockAggregator)
	router := reviewRouter(reviewTestHandler(repo, agg), testUserID)

	rv := sampleReview()
	repo.On("GetByID", mock.Anything, rv.ID).Return(rv, nil)
	repo.On("Update", mock.Anything, mock.AnythingOfType("*domain.Review")).Return(nil)

	comment := "Still the best slice in Brooklyn."
	b, _ := json.Marshal(UpdateReviewRequest{Comment: &comment})

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/reviews/"+rv.ID, bytes.NewReader(b))
	req.Header.Set("Authorization", "Bearer test-token")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	data := resp.Data.(map[string]any)
	assert.Equal(t, comment, data["comment"])
	agg.AssertNotCalled(t, "Recompute", mock.Anything, mock.Anything)
	repo.AssertExpectations(t)
}

func TestUpdateReview_OtherUser(t *testing.T) {
	repo := new(mockReviewRepo)
	agg := new(mockAggregator)
	router := reviewRouter(reviewTestHandler(repo, agg), "22222222-2222-2222-2222-222222222222")

	rv := sampleReview()
	repo.On("GetByID", mock.Anything, rv.ID).Return(rv, nil)

	comment := "hijacked"
	b, _ := json.Marshal(UpdateReviewRequest{Comment: &comment})

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/reviews/"+rv.ID, bytes.NewReader(b))
	req.Header.Set("Authorization", "Bearer test-token")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestDeleteReview_Success(t *testing.T) {
	repo := new(mockReviewRepo)
	agg := new(mockAggregator)
	router := reviewRouter(reviewTestHandler(repo, agg), testUserID)

	rv := sampleReview()
	repo.On("GetByID", mock.Anything, rv.ID).Return(rv, nil)
	repo.On("DeleteByID", mock.Anything, rv.ID).Return(nil)
	agg.On("Recompute", mock.Anything, "Lucali").Return(nil)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/reviews/"+rv.ID, nil)
	req.Header.Set("Authorization", "Bearer test-token")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	data := resp.Data.(map[string]any)
	assert.Equal(t, "deleted", data["status"])
	repo.AssertExpectations(t)
	agg.AssertExpectations(t)
}
