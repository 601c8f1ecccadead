package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"galleria/internal/common"
	"galleria/internal/models"
	"galleria/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// ProductHandlers handles HTTP requests for products
type ProductHandlers struct {
	productService services.ProductService
}

func NewProductHandlers(productService services.ProductService) *ProductHandlers {
	return &ProductHandlers{productService: productService}
}

type productRequest struct {
	Name        string  `json:"name"`
	Slug        string  `json:"slug"`
	CategoryID  *string `json:"category_id"`
	Description *string `json:"description"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock"`
	IsPublished bool    `json:"is_published"`
}

func (h *ProductHandlers) validateProduct(req *productRequest) error {
	if strings.TrimSpace(req.Name) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Product name is required")
	}
	if req.Price <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "Price must be positive")
	}
	if req.Stock < 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "Stock cannot be negative")
	}
	return nil
}

func (h *ProductHandlers) buildProduct(req *productRequest, product *models.Product) error {
	product.Name = req.Name
	product.Slug = req.Slug
	product.Description = req.Description
	product.Price = req.Price
	product.Stock = req.Stock
	product.IsPublished = req.IsPublished

	if req.CategoryID != nil && *req.CategoryID != "" {
		categoryID, err := common.ValidateUUID(*req.CategoryID, "category_id")
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid category ID")
		}
		product.CategoryID = &categoryID
	} else {
		product.CategoryID = nil
	}
	return nil
}

// CreateProduct handles POST /admin/products
func (h *ProductHandlers) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()

	var req productRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if err := h.validateProduct(&req); err != nil {
		return err
	}

	product := &models.Product{}
	if err := h.buildProduct(&req, product); err != nil {
		return err
	}

	if err := h.productService.Create(ctx, product); err != nil {
		return echo.NewHTTPError(common.HTTPStatus(err), err.Error())
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"message": "Product created successfully",
		"product": product,
	})
}

// ListProducts handles GET /products
func (h *ProductHandlers) ListProducts(c echo.Context) error {
	return h.list(c, true)
}

// ListAllProducts handles GET /admin/products (includes unpublished)
func (h *ProductHandlers) ListAllProducts(c echo.Context) error {
	return h.list(c, false)
}

func (h *ProductHandlers) list(c echo.Context, publishedOnly bool) error {
	ctx := c.Request().Context()

	limit, offset := paginationParams(c)

	query := c.QueryParam("q")
	var categoryID *uuid.UUID
	if categoryIDStr := c.QueryParam("category_id"); categoryIDStr != "" {
		catID, err := common.ValidateUUID(categoryIDStr, "category_id")
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid category ID")
		}
		categoryID = &catID
	}

	products, err := h.productService.Search(ctx, query, categoryID, publishedOnly, limit, offset)
	if err != nil {
		return echo.NewHTTPError(common.HTTPStatus(err), err.Error())
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"products": products,
		"limit":    limit,
		"offset":   offset,
	})
}

// GetProduct handles GET /products/:id — accepts a UUID or a slug.
// Unpublished products are indistinguishable from missing ones.
func (h *ProductHandlers) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()

	var product *models.Product
	var err error

	idParam := c.Param("id")
	if productID, uuidErr := common.ValidateUUID(idParam, "id"); uuidErr == nil {
		product, err = h.productService.GetByID(ctx, productID)
	} else {
		product, err = h.productService.GetBySlug(ctx, idParam)
	}
	if err != nil {
		return echo.NewHTTPError(common.HTTPStatus(err), err.Error())
	}
	if !product.IsPublished {
		return echo.NewHTTPError(http.StatusNotFound, "Product not found")
	}
	return c.JSON(http.StatusOK, product)
}

// UpdateProduct handles PUT /admin/products/:id
func (h *ProductHandlers) UpdateProduct(c echo.Context) error {
	ctx := c.Request().Context()

	productID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	var req productRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if err := h.validateProduct(&req); err != nil {
		return err
	}

	existing, err := h.productService.GetByID(ctx, productID)
	if err != nil {
		return echo.NewHTTPError(common.HTTPStatus(err), err.Error())
	}
	if err := h.buildProduct(&req, existing); err != nil {
		return err
	}

	if err := h.productService.Update(ctx, existing); err != nil {
		return echo.NewHTTPError(common.HTTPStatus(err), err.Error())
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "Product updated successfully",
		"product": existing,
	})
}

// DeleteProduct handles DELETE /admin/products/:id
func (h *ProductHandlers) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()

	productID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.productService.Delete(ctx, productID); err != nil {
		return echo.NewHTTPError(common.HTTPStatus(err), err.Error())
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "Product deleted successfully",
	})
}

func paginationParams(c echo.Context) (int, int) {
	limit := 10
	offset := 0

	if limitParam := c.QueryParam("limit"); limitParam != "" {
		if l, err := strconv.Atoi(limitParam); err == nil && l > 0 {
			limit = l
		}
	}
	if offsetParam := c.QueryParam("offset"); offsetParam != "" {
		if o, err := strconv.Atoi(offsetParam); err == nil && o >= 0 {
			offset = o
		}
	}

	limit, offset, _ = common.ValidatePaginationParams(limit, offset)
	return limit, offset
}
