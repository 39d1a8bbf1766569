package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/codedits/bitecheck/internal/domain"
	"github.com/codedits/bitecheck/internal/service"
	"github.com/codedits/bitecheck/pkg/httputil"
	"github.com/codedits/bitecheck/pkg/middleware"
	"github.com/codedits/bitecheck/pkg/validator"
)

// ReviewHandler handles HTTP requests for review endpoints.
type ReviewHandler struct {
	service *service.ReviewService
	logger  *slog.Logger
}

// NewReviewHandler creates a new review HTTP handler.
func NewReviewHandler(svc *service.ReviewService, logger *slog.Logger) *ReviewHandler {
	return &ReviewHandler{service: svc, logger: logger}
}

// BreakdownRequest is the per-category rating portion of a review body.
type BreakdownRequest struct {
	Taste        int `json:"taste" validate:"required,gte=1,lte=5"`
	Presentation int `json:"presentation" validate:"required,gte=1,lte=5"`
	Service      int `json:"service" validate:"required,gte=1,lte=5"`
	Ambiance     int `json:"ambiance" validate:"required,gte=1,lte=5"`
	Value        int `json:"value" validate:"required,gte=1,lte=5"`
}

func (b *BreakdownRequest) toDomain() *domain.RatingBreakdown {
	if b == nil {
		return nil
	}
	return &domain.RatingBreakdown{
		Taste:        b.Taste,
		Presentation: b.Presentation,
		Service:      b.Service,
		Ambiance:     b.Ambiance,
		Value:        b.Value,
	}
}

// CreateReviewRequest is the JSON request body for creating a review.
type CreateReviewRequest struct {
	RestaurantName string            `json:"restaurant_name" validate:"required,min=1,max=200"`
	Rating         float64           `json:"rating" validate:"required,gte=1,lte=5"`
	Comment        string            `json:"comment" validate:"max=500"`
	Images         []string          `json:"images" validate:"omitempty,dive,url"`
	Breakdown      *BreakdownRequest `json:"rating_breakdown"`
}

// UpdateReviewRequest is the JSON request body for updating a review. All
// fields are optional.
type UpdateReviewRequest struct {
	Rating    *float64          `json:"rating" validate:"omitempty,gte=1,lte=5"`
	Comment   *string           `json:"comment" validate:"omitempty,max=500"`
	Images    []string          `json:"images" validate:"omitempty,dive,url"`
	Breakdown *BreakdownRequest `json:"rating_breakdown"`
}

// CreateReview handles POST /api/v1/reviews
func (h *ReviewHandler) CreateReview(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	username := middleware.UsernameFromContext(r.Context())
	if userID == "" {
		httputil.WriteJSON(w, http.StatusUnauthorized, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "UNAUTHORIZED", Message: "not authenticated"},
		})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req CreateReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	review, err := h.service.CreateReview(r.Context(), &service.CreateReviewInput{
		UserID:         userID,
		Username:       username,
		RestaurantName: req.RestaurantName,
		Rating:         req.Rating,
		Comment:        req.Comment,
		Images:         req.Images,
		Breakdown:      req.Breakdown.toDomain(),
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: review})
}

// GetReview handles GET /api/v1/reviews/{id}
func (h *ReviewHandler) GetReview(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	review, err := h.service.GetReview(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: review})
}

// ListByRestaurant handles GET /api/v1/restaurants/{name}/reviews
func (h *ReviewHandler) ListByRestaurant(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	reviews, err := h.service.ListByRestaurant(r.Context(), name)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: reviews})
}

// UpdateReview handles PATCH /api/v1/reviews/{id}
func (h *ReviewHandler) UpdateReview(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	id := chi.URLParam(r, "id")

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req UpdateReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	review, err := h.service.UpdateReview(r.Context(), id, userID, &service.UpdateReviewInput{
		Rating:    req.Rating,
		Comment:   req.Comment,
		Images:    req.Images,
		Breakdown: req.Breakdown.toDomain(),
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: review})
}

// DeleteReview handles DELETE /api/v1/reviews/{id}
func (h *ReviewHandler) DeleteReview(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	id := chi.URLParam(r, "id")

	if err := h.service.DeleteReview(r.Context(), id, userID); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{"id": id, "status": "deleted"}})
}
