package handlers

import (
	"net/http"
	"strings"

	"galleria/internal/common"
	"galleria/internal/models"
	"galleria/internal/repositories"
	"galleria/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// CategoryHandlers handles HTTP requests for categories
type CategoryHandlers struct {
	categoryRepo repositories.CategoryRepository
}

func NewCategoryHandlers(categoryRepo repositories.CategoryRepository) *CategoryHandlers {
	return &CategoryHandlers{categoryRepo: categoryRepo}
}

type categoryRequest struct {
	Name        string  `json:"name"`
	Slug        string  `json:"slug"`
	Description *string `json:"description"`
}

// CreateCategory handles POST /admin/categories
func (h *CategoryHandlers) CreateCategory(c echo.Context) error {
	ctx := c.Request().Context()

	var req categoryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if strings.TrimSpace(req.Name) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Category name is required")
	}

	slug := req.Slug
	if slug == "" {
		slug = services.Slugify(req.Name)
	}
	if err := common.ValidateSlug(slug, "slug"); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	category := &models.Category{
		ID:          uuid.New(),
		Name:        req.Name,
		Slug:        slug,
		Description: req.Description,
	}

	if err := h.categoryRepo.Create(ctx, category); err != nil {
		return echo.NewHTTPError(common.HTTPStatus(err), err.Error())
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"message":  "Category created successfully",
		"category": category,
	})
}

// ListCategories handles GET /categories
func (h *CategoryHandlers) ListCategories(c echo.Context) error {
	ctx := c.Request().Context()

	limit, offset := paginationParams(c)

	categories, err := h.categoryRepo.List(ctx, limit, offset)
	if err != nil {
		return echo.NewHTTPError(common.HTTPStatus(err), err.Error())
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"categories": categories,
	})
}

// GetCategory handles GET /categories/:id — accepts a UUID or a slug
func (h *CategoryHandlers) GetCategory(c echo.Context) error {
	ctx := c.Request().Context()

	idParam := c.Param("id")
	if categoryID, err := common.ValidateUUID(idParam, "id"); err == nil {
		category, err := h.categoryRepo.GetByID(ctx, categoryID)
		if err != nil {
			return echo.NewHTTPError(common.HTTPStatus(err), err.Error())
		}
		return c.JSON(http.StatusOK, category)
	}

	category, err := h.categoryRepo.GetBySlug(ctx, idParam)
	if err != nil {
		return echo.NewHTTPError(common.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, category)
}

// UpdateCategory handles PUT /admin/categories/:id
func (h *CategoryHandlers) UpdateCategory(c echo.Context) error {
	ctx := c.Request().Context()

	categoryID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	var req categoryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if strings.TrimSpace(req.Name) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Category name is required")
	}

	category, err := h.categoryRepo.GetByID(ctx, categoryID)
	if err != nil {
		return echo.NewHTTPError(common.HTTPStatus(err), err.Error())
	}

	category.Name = req.Name
	if req.Slug != "" {
		if err := common.ValidateSlug(req.Slug, "slug"); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		category.Slug = req.Slug
	}
	category.Description = req.Description

	if err := h.categoryRepo.Update(ctx, category); err != nil {
		return echo.NewHTTPError(common.HTTPStatus(err), err.Error())
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message":  "Category updated successfully",
		"category": category,
	})
}

// DeleteCategory handles DELETE /admin/categories/:id
func (h *CategoryHandlers) DeleteCategory(c echo.Context) error {
	ctx := c.Request().Context()

	categoryID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.categoryRepo.Delete(ctx, categoryID); err != nil {
		return echo.NewHTTPError(common.HTTPStatus(err), err.Error())
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "Category deleted successfully",
	})
}
