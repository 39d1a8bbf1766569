package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/codedits/bitecheck/internal/repository"
	"github.com/codedits/bitecheck/internal/service"
	"github.com/codedits/bitecheck/pkg/httputil"
	"github.com/codedits/bitecheck/pkg/validator"
)

// RestaurantHandler handles HTTP requests for restaurant endpoints.
type RestaurantHandler struct {
	service *service.RestaurantService
	logger  *slog.Logger
}

// NewRestaurantHandler creates a new restaurant HTTP handler.
func NewRestaurantHandler(svc *service.RestaurantService, logger *slog.Logger) *RestaurantHandler {
	return &RestaurantHandler{service: svc, logger: logger}
}

// CreateRestaurantRequest is the JSON request body for creating a restaurant.
type CreateRestaurantRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=200"`
	Cuisine     string `json:"cuisine" validate:"required,min=1,max=100"`
	Location    string `json:"location" validate:"required,min=1,max=200"`
	PriceRange  string `json:"price_range" validate:"required,oneof=$ $$ $$$ $$$$"`
	Description string `json:"description" validate:"max=2000"`
	Image       string `json:"image" validate:"omitempty,url"`
	Featured    bool   `json:"featured"`
}

// UpdateRestaurantRequest is the JSON request body for updating a restaurant.
// All fields are optional.
type UpdateRestaurantRequest struct {
	Cuisine     *string `json:"cuisine" validate:"omitempty,min=1,max=100"`
	Location    *string `json:"location" validate:"omitempty,min=1,max=200"`
	PriceRange  *string `json:"price_range" validate:"omitempty,oneof=$ $$ $$$ $$$$"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	Image       *string `json:"image" validate:"omitempty,url"`
	Featured    *bool   `json:"featured"`
}

// ListRestaurants handles GET /api/v1/restaurants
func (h *RestaurantHandler) ListRestaurants(w http.ResponseWriter, r *http.Request) {
	filter := repository.RestaurantFilter{
		Page:    1,
		PerPage: 20,
	}

	if v := r.URL.Query().Get("page"); v != "" {
		page, err := strconv.Atoi(v)
		if err != nil || page < 1 {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
				Error: &httputil.ErrorResponse{Code: "INVALID_PARAMETER", Message: "page must be a valid positive integer"},
			})
			return
		}
		filter.Page = page
	}
	if v := r.URL.Query().Get("per_page"); v != "" {
		perPage, err := strconv.Atoi(v)
		if err != nil || perPage < 1 || perPage > 100 {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
				Error: &httputil.ErrorResponse{Code: "INVALID_PARAMETER", Message: "per_page must be a valid integer between 1 and 100"},
			})
			return
		}
		filter.PerPage = perPage
	}
	if v := r.URL.Query().Get("cuisine"); v != "" {
		filter.Cuisine = &v
	}
	if v := r.URL.Query().Get("location"); v != "" {
		filter.Location = &v
	}
	if v := r.URL.Query().Get("price_range"); v != "" {
		filter.PriceRange = &v
	}
	if v := r.URL.Query().Get("featured"); v != "" {
		featured, err := strconv.ParseBool(v)
		if err != nil {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
				Error: &httputil.ErrorResponse{Code: "INVALID_PARAMETER", Message: "featured must be true or false"},
			})
			return
		}
		filter.Featured = &featured
	}
	if v := r.URL.Query().Get("min_rating"); v != "" {
		rating, err := strconv.ParseFloat(v, 64)
		if err != nil || rating < 0 || rating > 5 {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
				Error: &httputil.ErrorResponse{Code: "INVALID_PARAMETER", Message: "min_rating must be a number between 0 and 5"},
			})
			return
		}
		filter.MinRating = &rating
	}
	if v := r.URL.Query().Get("search"); v != "" {
		filter.Search = &v
	}

	result, err := h.service.ListRestaurants(r.Context(), filter)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: result})
}

// GetRestaurant handles GET /api/v1/restaurants/{idOrName}
// It accepts both a UUID and an exact restaurant name. Name lookups include
// the restaurant's reviews.
func (h *RestaurantHandler) GetRestaurant(w http.ResponseWriter, r *http.Request) {
	idOrName := chi.URLParam(r, "name")
	if idOrName == "" {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "restaurant id or name is required"},
		})
		return
	}

	if _, parseErr := uuid.Parse(idOrName); parseErr == nil {
		rest, err := h.service.GetRestaurant(r.Context(), idOrName)
		if err != nil {
			httputil.WriteError(w, r, err, h.logger)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: rest})
		return
	}

	detail, err := h.service.GetRestaurantByName(r.Context(), idOrName)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: detail})
}

// CreateRestaurant handles POST /api/v1/restaurants
func (h *RestaurantHandler) CreateRestaurant(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req CreateRestaurantRequest
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

	rest, err := h.service.CreateRestaurant(r.Context(), &service.CreateRestaurantInput{
		Name:        req.Name,
		Cuisine:     req.Cuisine,
		Location:    req.Location,
		PriceRange:  req.PriceRange,
		Description: req.Description,
		Image:       req.Image,
		Featured:    req.Featured,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: rest})
}

// UpdateRestaurant handles PATCH /api/v1/restaurants/{name}
func (h *RestaurantHandler) UpdateRestaurant(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req UpdateRestaurantRequest
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

	rest, err := h.service.UpdateRestaurant(r.Context(), name, repository.RestaurantPatch{
		Cuisine:     req.Cuisine,
		Location:    req.Location,
		PriceRange:  req.PriceRange,
		Description: req.Description,
		Image:       req.Image,
		Featured:    req.Featured,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: rest})
}

// DeleteRestaurant handles DELETE /api/v1/restaurants/{name}
func (h *RestaurantHandler) DeleteRestaurant(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	if err := h.service.DeleteRestaurant(r.Context(), name); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{"name": name, "status": "deleted"}})
}
