package services

import (
	"context"
	"log"
	"regexp"
	"strings"
	"time"

	"galleria/internal/caching"
	"galleria/internal/common"
	"galleria/internal/models"
	"galleria/internal/repositories"

	"github.com/google/uuid"
)

// productCacheTTL must stay well below the presigned URL expiry (15
// minutes); the cached product embeds presigned image URLs, and an entry
// served near the end of its life must still carry usable links.
const productCacheTTL = 5 * time.Minute

type ProductService interface {
	Create(ctx context.Context, product *models.Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	GetBySlug(ctx context.Context, slug string) (*models.Product, error)
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, publishedOnly bool, limit, offset int) ([]*models.Product, error)
	Search(ctx context.Context, query string, categoryID *uuid.UUID, publishedOnly bool, limit, offset int) ([]*models.Product, error)
}

type productService struct {
	productRepo  repositories.ProductRepository
	categoryRepo repositories.CategoryRepository
	imageService ImageService
	cacheService caching.CacheService
}

func NewProductService(productRepo repositories.ProductRepository, categoryRepo repositories.CategoryRepository, imageService ImageService, cacheService caching.CacheService) ProductService {
	return &productService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		imageService: imageService,
		cacheService: cacheService,
	}
}

func (s *productService) Create(ctx context.Context, product *models.Product) error {
	if product.Name == "" {
		return common.InvalidInputf("product name is required")
	}
	if product.Price <= 0 {
		return common.InvalidInputf("price must be positive")
	}
	if product.Stock < 0 {
		return common.InvalidInputf("stock cannot be negative")
	}

	if product.CategoryID != nil {
		if _, err := s.categoryRepo.GetByID(ctx, *product.CategoryID); err != nil {
			return err
		}
	}

	if product.Slug == "" {
		product.Slug = Slugify(product.Name)
	}
	if _, err := s.productRepo.GetBySlug(ctx, product.Slug); err == nil {
		return common.InvalidInputf("slug %s already exists", product.Slug)
	}

	product.ID = uuid.New()
	return s.productRepo.Create(ctx, product)
}

func (s *productService) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	// Cache errors never fail the read path.
	if cached, err := s.cacheService.GetProduct(ctx, id); cached != nil {
		return cached, nil
	} else if err != nil {
		log.Printf("WARN: cache error for product %s: %v", id.String(), err)
	}

	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	images, err := s.imageService.List(ctx, id)
	if err != nil {
		return nil, err
	}
	product.Images = images

	if cacheErr := s.cacheService.SetProduct(ctx, product, productCacheTTL); cacheErr != nil {
		log.Printf("WARN: failed to cache product %s: %v", id.String(), cacheErr)
	}

	return product, nil
}

func (s *productService) GetBySlug(ctx context.Context, slug string) (*models.Product, error) {
	product, err := s.productRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	images, err := s.imageService.List(ctx, product.ID)
	if err != nil {
		return nil, err
	}
	product.Images = images

	return product, nil
}

func (s *productService) Update(ctx context.Context, product *models.Product) error {
	if product.Name == "" {
		return common.InvalidInputf("product name is required")
	}
	if product.Price <= 0 {
		return common.InvalidInputf("price must be positive")
	}

	if product.CategoryID != nil {
		if _, err := s.categoryRepo.GetByID(ctx, *product.CategoryID); err != nil {
			return err
		}
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		return err
	}

	if cacheErr := s.cacheService.DeleteProduct(ctx, product.ID); cacheErr != nil {
		log.Printf("WARN: failed to invalidate cache for product %s: %v", product.ID.String(), cacheErr)
	}

	return nil
}

func (s *productService) Delete(ctx context.Context, id uuid.UUID) error {
	// Remove gallery blobs before the records disappear with the product.
	images, err := s.imageService.List(ctx, id)
	if err != nil {
		return err
	}
	for _, image := range images {
		if err := s.imageService.Delete(ctx, image.ID); err != nil {
			return err
		}
	}

	if err := s.productRepo.Delete(ctx, id); err != nil {
		return err
	}

	if cacheErr := s.cacheService.DeleteProduct(ctx, id); cacheErr != nil {
		log.Printf("WARN: failed to invalidate cache for product %s: %v", id.String(), cacheErr)
	}

	return nil
}

func (s *productService) List(ctx context.Context, publishedOnly bool, limit, offset int) ([]*models.Product, error) {
	products, err := s.productRepo.List(ctx, publishedOnly, limit, offset)
	if err != nil {
		return nil, err
	}
	s.attachImages(ctx, products)
	return products, nil
}

func (s *productService) Search(ctx context.Context, query string, categoryID *uuid.UUID, publishedOnly bool, limit, offset int) ([]*models.Product, error) {
	if query == "" && categoryID == nil {
		return s.List(ctx, publishedOnly, limit, offset)
	}

	products, err := s.productRepo.Search(ctx, common.SanitizeSearchQuery(query), categoryID, publishedOnly, limit, offset)
	if err != nil {
		return nil, err
	}
	s.attachImages(ctx, products)
	return products, nil
}

func (s *productService) attachImages(ctx context.Context, products []*models.Product) {
	for _, product := range products {
		images, err := s.imageService.List(ctx, product.ID)
		if err != nil {
			log.Printf("WARN: failed to load images for product %s: %v", product.ID.String(), err)
			continue
		}
		product.Images = images
	}
}

var slugStripPattern = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify derives a URL slug from a display name.
func Slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = slugStripPattern.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}
