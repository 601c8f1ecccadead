package handlers

import (
	"net/http"

	"galleria/internal/common"
	"galleria/internal/services"

	"github.com/labstack/echo/v4"
)

// OrderHandlers handles HTTP requests for checkout and order management
type OrderHandlers struct {
	orderService services.OrderService
}

func NewOrderHandlers(orderService services.OrderService) *OrderHandlers {
	return &OrderHandlers{orderService: orderService}
}

// Checkout handles POST /checkout. The cart token travels in the same
// X-Cart-Token header the cart endpoints use.
func (h *OrderHandlers) Checkout(c echo.Context) error {
	ctx := c.Request().Context()

	token := c.Request().Header.Get(cartTokenHeader)
	if token == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Cart token is required")
	}

	var req struct {
		CustomerName  string  `json:"customer_name"`
		CustomerEmail string  `json:"customer_email"`
		Phone         *string `json:"phone"`
		Address       string  `json:"address"`
		City          string  `json:"city"`
		PostalCode    *string `json:"postal_code"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	order, err := h.orderService.Checkout(ctx, &services.CheckoutRequest{
		CartToken:     token,
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		Phone:         req.Phone,
		Address:       req.Address,
		City:          req.City,
		PostalCode:    req.PostalCode,
	})
	if err != nil {
		return echo.NewHTTPError(common.HTTPStatus(err), err.Error())
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"message": "Order placed successfully",
		"order":   order,
	})
}

// ListOrders handles GET /admin/orders
func (h *OrderHandlers) ListOrders(c echo.Context) error {
	ctx := c.Request().Context()

	limit, offset := paginationParams(c)
	status := c.QueryParam("status")

	orders, err := h.orderService.List(ctx, status, limit, offset)
	if err != nil {
		return echo.NewHTTPError(common.HTTPStatus(err), err.Error())
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"orders": orders,
		"limit":  limit,
		"offset": offset,
	})
}

// GetOrder handles GET /admin/orders/:id
func (h *OrderHandlers) GetOrder(c echo.Context) error {
	ctx := c.Request().Context()

	orderID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	order, err := h.orderService.GetByID(ctx, orderID)
	if err != nil {
		return echo.NewHTTPError(common.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, order)
}

// UpdateOrderStatus handles PATCH /admin/orders/:id/status
func (h *OrderHandlers) UpdateOrderStatus(c echo.Context) error {
	ctx := c.Request().Context()

	orderID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := h.orderService.UpdateStatus(ctx, orderID, req.Status); err != nil {
		return echo.NewHTTPError(common.HTTPStatus(err), err.Error())
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "Order status updated",
		"status":  req.Status,
	})
}
