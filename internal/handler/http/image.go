package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/codedits/bitecheck/internal/imagestore"
	"github.com/codedits/bitecheck/pkg/httputil"
	"github.com/codedits/bitecheck/pkg/middleware"
)

const maxImageSize = 10 << 20 // 10 MiB

// ImageHandler handles review photo uploads. The returned URL is what
// clients put into a review's images list.
type ImageHandler struct {
	images imagestore.Store
	logger *slog.Logger
}

// NewImageHandler creates a new image HTTP handler.
func NewImageHandler(images imagestore.Store, logger *slog.Logger) *ImageHandler {
	return &ImageHandler{images: images, logger: logger}
}

// Upload handles POST /api/v1/images (multipart form, field "image").
func (h *ImageHandler) Upload(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	if userID == "" {
		httputil.WriteJSON(w, http.StatusUnauthorized, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "UNAUTHORIZED", Message: "not authenticated"},
		})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxImageSize)

	file, header, err := r.FormFile("image")
	if err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "multipart field \"image\" is required"},
		})
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "only image uploads are accepted"},
		})
		return
	}

	key := fmt.Sprintf("reviews/%s/%s%s", userID, uuid.New().String(), path.Ext(header.Filename))

	result, err := h.images.Upload(r.Context(), &imagestore.UploadInput{
		Key:         key,
		ContentType: contentType,
		Size:        header.Size,
		Data:        file,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: result})
}
