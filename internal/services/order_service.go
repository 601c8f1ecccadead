package services

import (
	"context"
	"fmt"
	"log"

	"galleria/internal/common"
	"galleria/internal/models"
	"galleria/internal/repositories"

	"github.com/google/uuid"
)

// CheckoutRequest carries the customer details submitted with a cart token.
type CheckoutRequest struct {
	CartToken     string
	CustomerName  string
	CustomerEmail string
	Phone         *string
	Address       string
	City          string
	PostalCode    *string
}

type OrderService interface {
	// Checkout captures an order from the submitted cart. Prices and
	// totals are computed server-side from current product data.
	Checkout(ctx context.Context, req *CheckoutRequest) (*models.Order, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	List(ctx context.Context, status string, limit, offset int) ([]*models.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
}

type orderService struct {
	orderRepo   repositories.OrderRepository
	productRepo repositories.ProductRepository
	cartService CartService
	notifier    Notifier
}

func NewOrderService(orderRepo repositories.OrderRepository, productRepo repositories.ProductRepository, cartService CartService, notifier Notifier) OrderService {
	return &orderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		cartService: cartService,
		notifier:    notifier,
	}
}

func (s *orderService) Checkout(ctx context.Context, req *CheckoutRequest) (*models.Order, error) {
	if err := common.ValidateRequiredString(req.CustomerName, "customer name"); err != nil {
		return nil, common.InvalidInputf("%v", err)
	}
	if err := common.ValidateEmail(req.CustomerEmail, "customer email"); err != nil {
		return nil, common.InvalidInputf("%v", err)
	}
	if err := common.ValidateRequiredString(req.Address, "address"); err != nil {
		return nil, common.InvalidInputf("%v", err)
	}
	if err := common.ValidateRequiredString(req.City, "city"); err != nil {
		return nil, common.InvalidInputf("%v", err)
	}

	cart, err := s.cartService.Raw(ctx, req.CartToken)
	if err != nil {
		return nil, err
	}
	if len(cart.Items) == 0 {
		return nil, common.InvalidInputf("cart is empty")
	}

	order := &models.Order{
		ID:            uuid.New(),
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		Phone:         req.Phone,
		Address:       req.Address,
		City:          req.City,
		PostalCode:    req.PostalCode,
		Status:        models.OrderStatusPending,
	}

	for _, item := range cart.Items {
		product, err := s.productRepo.GetByID(ctx, item.ProductID)
		if err != nil {
			return nil, err
		}
		if !product.IsPublished {
			return nil, common.InvalidInputf("product %s is no longer available", product.Name)
		}
		if product.Stock < item.Quantity {
			return nil, common.InvalidInputf("insufficient stock for %s: %d available", product.Name, product.Stock)
		}

		order.Items = append(order.Items, &models.OrderItem{
			ID:          uuid.New(),
			OrderID:     order.ID,
			ProductID:   product.ID,
			ProductName: product.Name,
			Quantity:    item.Quantity,
			UnitPrice:   product.Price,
		})
		order.Total += product.Price * float64(item.Quantity)
	}

	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, err
	}

	if err := s.cartService.Clear(ctx, req.CartToken); err != nil {
		log.Printf("WARN: failed to clear cart %s after checkout: %v", req.CartToken, err)
	}

	subject := fmt.Sprintf("Order confirmation %s", order.ID)
	body := fmt.Sprintf("Thank you %s, we received your order for a total of %.2f.", order.CustomerName, order.Total)
	if err := s.notifier.SendEmail(ctx, order.CustomerEmail, subject, body); err != nil {
		log.Printf("WARN: order confirmation mail failed for %s: %v", order.ID, err)
	}

	return order, nil
}

func (s *orderService) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	return s.orderRepo.GetByID(ctx, id)
}

func (s *orderService) List(ctx context.Context, status string, limit, offset int) ([]*models.Order, error) {
	if status != "" {
		if err := common.ValidateOrderStatus(status); err != nil {
			return nil, common.InvalidInputf("%v", err)
		}
	}
	return s.orderRepo.List(ctx, status, limit, offset)
}

func (s *orderService) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	if err := common.ValidateOrderStatus(status); err != nil {
		return common.InvalidInputf("%v", err)
	}
	return s.orderRepo.UpdateStatus(ctx, id, status)
}
