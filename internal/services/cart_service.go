package services

import (
	"context"
	"time"

	"galleria/internal/caching"
	"galleria/internal/common"
	"galleria/internal/models"
	"galleria/internal/repositories"

	"github.com/google/uuid"
)

const cartTTL = 14 * 24 * time.Hour

// CartService keeps per-visitor carts in Redis keyed by a client-held token.
type CartService interface {
	Get(ctx context.Context, token string) (*models.CartView, error)
	AddItem(ctx context.Context, token string, productID uuid.UUID, quantity int) (*models.CartView, error)
	UpdateItem(ctx context.Context, token string, productID uuid.UUID, quantity int) (*models.CartView, error)
	RemoveItem(ctx context.Context, token string, productID uuid.UUID) (*models.CartView, error)
	Clear(ctx context.Context, token string) error

	// Raw returns the stored cart without product joins; checkout uses it.
	Raw(ctx context.Context, token string) (*models.Cart, error)
}

type cartService struct {
	productRepo  repositories.ProductRepository
	imageService ImageService
	cacheService caching.CacheService
}

func NewCartService(productRepo repositories.ProductRepository, imageService ImageService, cacheService caching.CacheService) CartService {
	return &cartService{
		productRepo:  productRepo,
		imageService: imageService,
		cacheService: cacheService,
	}
}

func (s *cartService) Raw(ctx context.Context, token string) (*models.Cart, error) {
	cart, err := s.cacheService.GetCart(ctx, token)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		cart = &models.Cart{Token: token, Items: []*models.CartItem{}}
	}
	return cart, nil
}

func (s *cartService) Get(ctx context.Context, token string) (*models.CartView, error) {
	cart, err := s.Raw(ctx, token)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, cart)
}

func (s *cartService) AddItem(ctx context.Context, token string, productID uuid.UUID, quantity int) (*models.CartView, error) {
	if quantity <= 0 {
		return nil, common.InvalidInputf("quantity must be positive")
	}

	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !product.IsPublished {
		return nil, common.NotFoundf("product %s", productID)
	}

	cart, err := s.Raw(ctx, token)
	if err != nil {
		return nil, err
	}

	found := false
	for _, item := range cart.Items {
		if item.ProductID == productID {
			item.Quantity += quantity
			found = true
			break
		}
	}
	if !found {
		cart.Items = append(cart.Items, &models.CartItem{ProductID: productID, Quantity: quantity})
	}

	if err := s.save(ctx, cart); err != nil {
		return nil, err
	}
	return s.view(ctx, cart)
}

func (s *cartService) UpdateItem(ctx context.Context, token string, productID uuid.UUID, quantity int) (*models.CartView, error) {
	if quantity < 0 {
		return nil, common.InvalidInputf("quantity cannot be negative")
	}

	cart, err := s.Raw(ctx, token)
	if err != nil {
		return nil, err
	}

	updated := false
	items := cart.Items[:0]
	for _, item := range cart.Items {
		if item.ProductID == productID {
			updated = true
			if quantity == 0 {
				continue // quantity zero removes the line
			}
			item.Quantity = quantity
		}
		items = append(items, item)
	}
	if !updated {
		return nil, common.NotFoundf("product %s not in cart", productID)
	}
	cart.Items = items

	if err := s.save(ctx, cart); err != nil {
		return nil, err
	}
	return s.view(ctx, cart)
}

func (s *cartService) RemoveItem(ctx context.Context, token string, productID uuid.UUID) (*models.CartView, error) {
	return s.UpdateItem(ctx, token, productID, 0)
}

func (s *cartService) Clear(ctx context.Context, token string) error {
	return s.cacheService.DeleteCart(ctx, token)
}

func (s *cartService) save(ctx context.Context, cart *models.Cart) error {
	cart.UpdatedAt = time.Now()
	return s.cacheService.SetCart(ctx, cart, cartTTL)
}

// view joins cart lines with current product data. Lines whose product
// disappeared or got unpublished are dropped from the view.
func (s *cartService) view(ctx context.Context, cart *models.Cart) (*models.CartView, error) {
	view := &models.CartView{Token: cart.Token, Items: []*models.CartViewItem{}}
	for _, item := range cart.Items {
		product, err := s.productRepo.GetByID(ctx, item.ProductID)
		if err != nil || !product.IsPublished {
			continue
		}

		viewItem := &models.CartViewItem{
			ProductID:   product.ID,
			ProductName: product.Name,
			UnitPrice:   product.Price,
			Quantity:    item.Quantity,
			LineTotal:   product.Price * float64(item.Quantity),
		}
		if images, err := s.imageService.List(ctx, product.ID); err == nil {
			for _, image := range images {
				if image.IsMain {
					viewItem.ImageURL = image.ImageURL
					break
				}
			}
		}
		view.Items = append(view.Items, viewItem)
		view.Subtotal += viewItem.LineTotal
	}
	return view, nil
}
