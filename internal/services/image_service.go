package services

import (
	"context"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"time"

	"galleria/internal/caching"
	"galleria/internal/common"
	"galleria/internal/models"
	"galleria/internal/repositories"

	"github.com/google/uuid"
)

const imageBucket = "product-images"

// ImageUpload is one binary payload submitted for a product.
type ImageUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Reader      io.Reader
}

// ImageService manages a product's ordered image gallery: uploads paired
// with database records, invariant-maintaining deletion, and reordering.
// Ordering and main-image bookkeeping live in the repository transaction;
// this service pairs those mutations with the object-store lifecycle.
type ImageService interface {
	// Upload stores each payload and appends a record per payload. The
	// first image a product ever gets becomes its main image.
	Upload(ctx context.Context, productID uuid.UUID, uploads []ImageUpload) ([]*models.ProductImage, error)

	// List returns the product's images ordered by index, with presigned
	// URLs attached.
	List(ctx context.Context, productID uuid.UUID) ([]*models.ProductImage, error)

	// Delete removes the blob and the record, then closes the index gap
	// and re-promotes a main image if needed.
	Delete(ctx context.Context, imageID uuid.UUID) error

	// Reorder applies a caller-supplied permutation of the product's
	// images. The submitted records must designate exactly one main image.
	Reorder(ctx context.Context, productID uuid.UUID, images []*models.ProductImage) error

	// SignedURL returns a time-limited read URL for one image.
	SignedURL(ctx context.Context, imageID uuid.UUID, expiry time.Duration) (string, error)
}

type imageService struct {
	productRepo  repositories.ProductRepository
	imageRepo    repositories.ProductImageRepository
	storage      StorageService
	cacheService caching.CacheService
	urlExpiry    time.Duration
}

func NewImageService(productRepo repositories.ProductRepository, imageRepo repositories.ProductImageRepository, storage StorageService, cacheService caching.CacheService, urlExpiry time.Duration) ImageService {
	return &imageService{
		productRepo:  productRepo,
		imageRepo:    imageRepo,
		storage:      storage,
		cacheService: cacheService,
		urlExpiry:    urlExpiry,
	}
}

// invalidateProduct drops the cached product after a gallery mutation; the
// cached record embeds the image list, so it is stale the moment the
// gallery changes. Cache errors never fail the mutation.
func (s *imageService) invalidateProduct(ctx context.Context, productID uuid.UUID) {
	if err := s.cacheService.DeleteProduct(ctx, productID); err != nil {
		log.Printf("WARN: failed to invalidate cache for product %s: %v", productID.String(), err)
	}
}

func (s *imageService) Upload(ctx context.Context, productID uuid.UUID, uploads []ImageUpload) ([]*models.ProductImage, error) {
	if len(uploads) == 0 {
		return nil, common.InvalidInputf("at least one image is required")
	}

	if _, err := s.productRepo.GetByID(ctx, productID); err != nil {
		return nil, err
	}

	if err := s.storage.EnsureBucketExists(ctx, imageBucket); err != nil {
		return nil, common.StorageErr("ensure bucket", err)
	}

	// Even a partial batch leaves the cached product stale.
	var created []*models.ProductImage
	defer func() {
		if len(created) > 0 {
			s.invalidateProduct(ctx, productID)
		}
	}()

	for _, upload := range uploads {
		image := &models.ProductImage{
			ID:        uuid.New(),
			ProductID: productID,
			ImageKey:  objectKey(productID, upload.Filename),
		}

		if err := s.storage.UploadObject(ctx, imageBucket, image.ImageKey, upload.Reader, upload.Size, upload.ContentType); err != nil {
			return created, common.StorageErr(fmt.Sprintf("upload %s", upload.Filename), err)
		}

		if err := s.imageRepo.InsertAppend(ctx, image); err != nil {
			// The blob exists but no record references it. Remove it so
			// a failed insert never leaves an orphan in the bucket.
			if delErr := s.storage.DeleteObject(ctx, imageBucket, image.ImageKey); delErr != nil {
				log.Printf("WARN: orphaned object %s could not be removed: %v", image.ImageKey, delErr)
			}
			return created, common.PersistenceErr(fmt.Sprintf("insert image record for %s", upload.Filename), err)
		}

		if url, err := s.storage.GetPresignedURL(ctx, imageBucket, image.ImageKey, s.urlExpiry); err == nil {
			image.ImageURL = url
		}
		created = append(created, image)
	}

	return created, nil
}

func (s *imageService) List(ctx context.Context, productID uuid.UUID) ([]*models.ProductImage, error) {
	images, err := s.imageRepo.ListByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	for _, image := range images {
		url, err := s.storage.GetPresignedURL(ctx, imageBucket, image.ImageKey, s.urlExpiry)
		if err != nil {
			log.Printf("WARN: could not presign %s: %v", image.ImageKey, err)
			continue
		}
		image.ImageURL = url
	}
	return images, nil
}

func (s *imageService) Delete(ctx context.Context, imageID uuid.UUID) error {
	image, err := s.imageRepo.GetByID(ctx, imageID)
	if err != nil {
		return err
	}

	// Blob first: a record pointing at a missing blob is worse than a
	// stray blob, so a failed blob delete aborts the whole operation.
	if err := s.storage.DeleteObject(ctx, imageBucket, image.ImageKey); err != nil {
		return common.StorageErr(fmt.Sprintf("delete %s", image.ImageKey), err)
	}

	if err := s.imageRepo.DeleteAndResequence(ctx, imageID); err != nil {
		return err
	}

	s.invalidateProduct(ctx, image.ProductID)
	return nil
}

func (s *imageService) Reorder(ctx context.Context, productID uuid.UUID, images []*models.ProductImage) error {
	if len(images) == 0 {
		return common.InvalidInputf("reorder list cannot be empty")
	}

	mains := 0
	for _, image := range images {
		if image.IsMain {
			mains++
		}
	}
	if mains != 1 {
		return common.InvalidInputf("reorder must designate exactly one main image, got %d", mains)
	}

	if err := s.imageRepo.Reorder(ctx, productID, images); err != nil {
		return err
	}

	s.invalidateProduct(ctx, productID)
	return nil
}

func (s *imageService) SignedURL(ctx context.Context, imageID uuid.UUID, expiry time.Duration) (string, error) {
	image, err := s.imageRepo.GetByID(ctx, imageID)
	if err != nil {
		return "", err
	}

	url, err := s.storage.GetPresignedURL(ctx, imageBucket, image.ImageKey, expiry)
	if err != nil {
		return "", common.StorageErr(fmt.Sprintf("presign %s", image.ImageKey), err)
	}
	return url, nil
}

// objectKey produces a collision-free key; the original filename survives
// only as the extension.
func objectKey(productID uuid.UUID, filename string) string {
	return fmt.Sprintf("%s/%s%s", productID.String(), uuid.NewString(), filepath.Ext(filename))
}
