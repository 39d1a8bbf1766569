package http

import (
	"log/slog"
	"net/http"

	"github.com/codedits/bitecheck/internal/service"
	"github.com/codedits/bitecheck/pkg/httputil"
	"github.com/codedits/bitecheck/pkg/middleware"
	"github.com/codedits/bitecheck/pkg/pagination"
)

// UserHandler handles HTTP requests for user profile endpoints.
type UserHandler struct {
	userService   *service.UserService
	reviewService *service.ReviewService
	logger        *slog.Logger
}

// NewUserHandler creates a new user HTTP handler.
func NewUserHandler(userService *service.UserService, reviewService *service.ReviewService, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		userService:   userService,
		reviewService: reviewService,
		logger:        logger,
	}
}

// GetProfile handles GET /api/v1/users/me
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	if userID == "" {
		httputil.WriteJSON(w, http.StatusUnauthorized, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "UNAUTHORIZED", Message: "not authenticated"},
		})
		return
	}

	user, err := h.userService.GetProfile(r.Context(), userID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: user})
}

// ListMyReviews handles GET /api/v1/users/me/reviews
func (h *UserHandler) ListMyReviews(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	if userID == "" {
		httputil.WriteJSON(w, http.StatusUnauthorized, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "UNAUTHORIZED", Message: "not authenticated"},
		})
		return
	}

	params := pagination.FromRequest(r)

	result, err := h.reviewService.ListByUser(r.Context(), userID, params.Page, params.PerPage)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: result})
}

// DeleteAccount handles DELETE /api/v1/users/me
func (h *UserHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	if userID == "" {
		httputil.WriteJSON(w, http.StatusUnauthorized, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "UNAUTHORIZED", Message: "not authenticated"},
		})
		return
	}

	if err := h.userService.DeleteAccount(r.Context(), userID); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{"id": userID, "status": "deleted"}})
}
