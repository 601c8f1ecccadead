package handlers

import (
	"net/http"
	"strconv"
	"time"

	"galleria/internal/common"
	"galleria/internal/models"
	"galleria/internal/services"

	"github.com/labstack/echo/v4"
)

const (
	maxImageSize     = 5 * 1024 * 1024 // 5MB per file
	signedURLExpiry  = 15 * time.Minute
	maxImagesPerCall = 10
)

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// ImageHandlers handles HTTP requests for product image galleries
type ImageHandlers struct {
	imageService services.ImageService
}

func NewImageHandlers(imageService services.ImageService) *ImageHandlers {
	return &ImageHandlers{imageService: imageService}
}

// UploadImages handles POST /admin/products/:id/images. It accepts one or
// more files under the "images" multipart field.
func (h *ImageHandlers) UploadImages(c echo.Context) error {
	ctx := c.Request().Context()

	productID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	form, err := c.MultipartForm()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Image files are required")
	}
	files := form.File["images"]
	if len(files) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "At least one image file is required")
	}
	if len(files) > maxImagesPerCall {
		return echo.NewHTTPError(http.StatusBadRequest, "Too many files in one request")
	}

	var uploads []services.ImageUpload
	var opened []interface{ Close() error }
	defer func() {
		for _, f := range opened {
			f.Close()
		}
	}()

	for _, file := range files {
		if file.Size > maxImageSize {
			return echo.NewHTTPError(http.StatusBadRequest, "Image size exceeds 5MB limit")
		}

		src, err := file.Open()
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to open uploaded file")
		}
		opened = append(opened, src)

		// Sniff the real content type; the client-supplied header is
		// not trusted.
		buffer := make([]byte, 512)
		n, err := src.Read(buffer)
		if err != nil && n == 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "Unable to read uploaded file")
		}
		contentType := http.DetectContentType(buffer[:n])
		if !allowedImageTypes[contentType] {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid file type. Only JPEG, PNG, GIF, and WebP images are allowed")
		}

		if _, err := src.Seek(0, 0); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to process uploaded file")
		}

		uploads = append(uploads, services.ImageUpload{
			Filename:    file.Filename,
			ContentType: contentType,
			Size:        file.Size,
			Reader:      src,
		})
	}

	images, err := h.imageService.Upload(ctx, productID, uploads)
	if err != nil {
		// A mid-batch failure still commits the earlier files; report them
		// so the client knows which uploads went through.
		if len(images) > 0 {
			return c.JSON(common.HTTPStatus(err), map[string]interface{}{
				"message": "Some images could not be uploaded",
				"error":   err.Error(),
				"images":  images,
			})
		}
		return echo.NewHTTPError(common.HTTPStatus(err), err.Error())
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"message": "Images uploaded successfully",
		"images":  images,
	})
}

// ListImages handles GET /products/:id/images
func (h *ImageHandlers) ListImages(c echo.Context) error {
	ctx := c.Request().Context()

	productID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	images, err := h.imageService.List(ctx, productID)
	if err != nil {
		return echo.NewHTTPError(common.HTTPStatus(err), err.Error())
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"images": images,
	})
}

// DeleteImage handles DELETE /admin/images/:id
func (h *ImageHandlers) DeleteImage(c echo.Context) error {
	ctx := c.Request().Context()

	imageID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.imageService.Delete(ctx, imageID); err != nil {
		return echo.NewHTTPError(common.HTTPStatus(err), err.Error())
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "Image deleted successfully",
	})
}

type reorderRequest struct {
	Images []struct {
		ID     string `json:"id"`
		IsMain bool   `json:"is_main"`
	} `json:"images"`
}

// ReorderImages handles PUT /admin/products/:id/images/order. The request
// lists every image of the product in its new display order; exactly one
// entry must be flagged as main.
func (h *ImageHandlers) ReorderImages(c echo.Context) error {
	ctx := c.Request().Context()

	productID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	var req reorderRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if len(req.Images) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "Image list is required")
	}

	images := make([]*models.ProductImage, 0, len(req.Images))
	for _, entry := range req.Images {
		imageID, err := common.ValidateUUID(entry.ID, "image id")
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		images = append(images, &models.ProductImage{
			ID:        imageID,
			ProductID: productID,
			IsMain:    entry.IsMain,
		})
	}

	if err := h.imageService.Reorder(ctx, productID, images); err != nil {
		return echo.NewHTTPError(common.HTTPStatus(err), err.Error())
	}

	ordered, err := h.imageService.List(ctx, productID)
	if err != nil {
		return echo.NewHTTPError(common.HTTPStatus(err), err.Error())
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "Images reordered successfully",
		"images":  ordered,
	})
}

// GetSignedURL handles GET /images/:id/url. An optional expiry query
// parameter (seconds, capped at one hour) overrides the default.
func (h *ImageHandlers) GetSignedURL(c echo.Context) error {
	ctx := c.Request().Context()

	imageID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	expiry := signedURLExpiry
	if expiryParam := c.QueryParam("expiry"); expiryParam != "" {
		seconds, err := strconv.Atoi(expiryParam)
		if err != nil || seconds <= 0 || seconds > 3600 {
			return echo.NewHTTPError(http.StatusBadRequest, "Expiry must be between 1 and 3600 seconds")
		}
		expiry = time.Duration(seconds) * time.Second
	}

	url, err := h.imageService.SignedURL(ctx, imageID, expiry)
	if err != nil {
		return echo.NewHTTPError(common.HTTPStatus(err), err.Error())
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"url":        url,
		"expires_in": int(expiry.Seconds()),
	})
}
