package handlers

import (
	"net/http"

	"galleria/internal/common"
	"galleria/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const cartTokenHeader = "X-Cart-Token"

// CartHandlers handles HTTP requests for visitor carts. The cart is
// identified by an opaque token the client stores and replays in the
// X-Cart-Token header; the first mutating call mints one.
type CartHandlers struct {
	cartService services.CartService
}

func NewCartHandlers(cartService services.CartService) *CartHandlers {
	return &CartHandlers{cartService: cartService}
}

func (h *CartHandlers) cartToken(c echo.Context, mintIfMissing bool) (string, error) {
	token := c.Request().Header.Get(cartTokenHeader)
	if token == "" {
		if !mintIfMissing {
			return "", echo.NewHTTPError(http.StatusBadRequest, "Cart token is required")
		}
		token = uuid.NewString()
	} else if _, err := uuid.Parse(token); err != nil {
		return "", echo.NewHTTPError(http.StatusBadRequest, "Invalid cart token")
	}
	c.Response().Header().Set(cartTokenHeader, token)
	return token, nil
}

// GetCart handles GET /cart
func (h *CartHandlers) GetCart(c echo.Context) error {
	ctx := c.Request().Context()

	token, err := h.cartToken(c, true)
	if err != nil {
		return err
	}

	cart, err := h.cartService.Get(ctx, token)
	if err != nil {
		return echo.NewHTTPError(common.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, cart)
}

type cartItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// AddItem handles POST /cart/items
func (h *CartHandlers) AddItem(c echo.Context) error {
	ctx := c.Request().Context()

	token, err := h.cartToken(c, true)
	if err != nil {
		return err
	}

	var req cartItemRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	productID, err := common.ValidateUUID(req.ProductID, "product_id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	cart, err := h.cartService.AddItem(ctx, token, productID, req.Quantity)
	if err != nil {
		return echo.NewHTTPError(common.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, cart)
}

// UpdateItem handles PUT /cart/items/:productId
func (h *CartHandlers) UpdateItem(c echo.Context) error {
	ctx := c.Request().Context()

	token, err := h.cartToken(c, false)
	if err != nil {
		return err
	}

	productID, err := common.ValidateUUID(c.Param("productId"), "productId")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	cart, err := h.cartService.UpdateItem(ctx, token, productID, req.Quantity)
	if err != nil {
		return echo.NewHTTPError(common.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, cart)
}

// RemoveItem handles DELETE /cart/items/:productId
func (h *CartHandlers) RemoveItem(c echo.Context) error {
	ctx := c.Request().Context()

	token, err := h.cartToken(c, false)
	if err != nil {
		return err
	}

	productID, err := common.ValidateUUID(c.Param("productId"), "productId")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	cart, err := h.cartService.RemoveItem(ctx, token, productID)
	if err != nil {
		return echo.NewHTTPError(common.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, cart)
}

// ClearCart handles DELETE /cart
func (h *CartHandlers) ClearCart(c echo.Context) error {
	ctx := c.Request().Context()

	token, err := h.cartToken(c, false)
	if err != nil {
		return err
	}

	if err := h.cartService.Clear(ctx, token); err != nil {
		return echo.NewHTTPError(common.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, map[string]string{
		"message": "Cart cleared",
	})
}
