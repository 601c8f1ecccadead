package handlers

import (
	"net/http"

	"galleria/internal/common"
	"galleria/internal/models"
	"galleria/internal/services"

	"github.com/labstack/echo/v4"
)

// ContentHandlers handles HTTP requests for managed storefront copy
type ContentHandlers struct {
	contentService services.ContentService
}

func NewContentHandlers(contentService services.ContentService) *ContentHandlers {
	return &ContentHandlers{contentService: contentService}
}

// GetContent handles GET /content/:slug
func (h *ContentHandlers) GetContent(c echo.Context) error {
	ctx := c.Request().Context()

	section, err := h.contentService.GetBySlug(ctx, c.Param("slug"))
	if err != nil {
		return echo.NewHTTPError(common.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, section)
}

// ListContent handles GET /admin/content
func (h *ContentHandlers) ListContent(c echo.Context) error {
	ctx := c.Request().Context()

	sections, err := h.contentService.List(ctx)
	if err != nil {
		return echo.NewHTTPError(common.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"sections": sections,
	})
}

// UpsertContent handles PUT /admin/content/:slug
func (h *ContentHandlers) UpsertContent(c echo.Context) error {
	ctx := c.Request().Context()

	var req struct {
		Title    string  `json:"title"`
		Body     string  `json:"body"`
		ImageKey *string `json:"image_key"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	section := &models.ContentSection{
		Slug:     c.Param("slug"),
		Title:    req.Title,
		Body:     req.Body,
		ImageKey: req.ImageKey,
	}

	if err := h.contentService.Upsert(ctx, section); err != nil {
		return echo.NewHTTPError(common.HTTPStatus(err), err.Error())
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "Content updated successfully",
		"section": section,
	})
}
