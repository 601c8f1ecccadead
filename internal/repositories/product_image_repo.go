package repositories

import (
	"context"
	"errors"

	"galleria/internal/common"
	"galleria/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ProductImageRepository owns the ordered image collection of a product.
// Every mutation runs in a single transaction that first takes a row lock
// on the owning product, so concurrent mutations on the same product are
// serialized and the two collection invariants (exactly one main image,
// contiguous zero-based positions) cannot be observed broken.
type ProductImageRepository interface {
	// InsertAppend appends the image at the end of the product's
	// collection. Position and IsMain are assigned inside the
	// transaction: position continues from the current count, and the
	// first image of a product becomes its main image.
	InsertAppend(ctx context.Context, image *models.ProductImage) error

	GetByID(ctx context.Context, id uuid.UUID) (*models.ProductImage, error)
	ListByProduct(ctx context.Context, productID uuid.UUID) ([]*models.ProductImage, error)

	// DeleteAndResequence removes the image and reassigns positions
	// 0..n-1 to the remaining images in their current order, promoting
	// the image now at position 0 to main.
	DeleteAndResequence(ctx context.Context, id uuid.UUID) error

	// Reorder rewrites position and main flag of every image of the
	// product from the supplied list; list position becomes the new
	// index. Other columns, image_key included, are left untouched.
	// The list must be a permutation of the product's images.
	Reorder(ctx context.Context, productID uuid.UUID, images []*models.ProductImage) error
}

type productImageRepo struct {
	db DB
}

func NewProductImageRepo(db DB) ProductImageRepository {
	return &productImageRepo{db: db}
}

// lockProduct serializes image-set mutations per product via a row lock
// held until the surrounding transaction ends.
func lockProduct(ctx context.Context, tx pgx.Tx, productID uuid.UUID) error {
	var id uuid.UUID
	err := tx.QueryRow(ctx, `SELECT id FROM products WHERE id = $1 FOR UPDATE`, productID).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return common.NotFoundf("product %s", productID)
		}
		return err
	}
	return nil
}

func (r *productImageRepo) InsertAppend(ctx context.Context, image *models.ProductImage) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := lockProduct(ctx, tx, image.ProductID); err != nil {
		return err
	}

	var count int
	err = tx.QueryRow(ctx, `SELECT COUNT(*) FROM product_images WHERE product_id = $1`, image.ProductID).Scan(&count)
	if err != nil {
		return err
	}

	image.Index = count
	image.IsMain = count == 0

	query := `
		INSERT INTO product_images (id, product_id, image_key, is_main, position, uploaded_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING uploaded_at
	`
	err = tx.QueryRow(ctx, query, image.ID, image.ProductID, image.ImageKey, image.IsMain, image.Index).Scan(&image.UploadedAt)
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *productImageRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.ProductImage, error) {
	image := &models.ProductImage{}
	query := `
		SELECT id, product_id, image_key, is_main, position, uploaded_at
		FROM product_images
		WHERE id = $1
	`
	err := r.db.QueryRow(ctx, query, id).Scan(&image.ID, &image.ProductID, &image.ImageKey, &image.IsMain, &image.Index, &image.UploadedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.NotFoundf("product image %s", id)
		}
		return nil, err
	}
	return image, nil
}

func (r *productImageRepo) ListByProduct(ctx context.Context, productID uuid.UUID) ([]*models.ProductImage, error) {
	query := `
		SELECT id, product_id, image_key, is_main, position, uploaded_at
		FROM product_images
		WHERE product_id = $1
		ORDER BY position ASC
	`
	rows, err := r.db.Query(ctx, query, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var images []*models.ProductImage
	for rows.Next() {
		image := &models.ProductImage{}
		if err := rows.Scan(&image.ID, &image.ProductID, &image.ImageKey, &image.IsMain, &image.Index, &image.UploadedAt); err != nil {
			return nil, err
		}
		images = append(images, image)
	}
	return images, rows.Err()
}

func (r *productImageRepo) DeleteAndResequence(ctx context.Context, id uuid.UUID) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var productID uuid.UUID
	err = tx.QueryRow(ctx, `SELECT product_id FROM product_images WHERE id = $1`, id).Scan(&productID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return common.NotFoundf("product image %s", id)
		}
		return err
	}

	if err := lockProduct(ctx, tx, productID); err != nil {
		return err
	}

	tag, err := tx.Exec(ctx, `DELETE FROM product_images WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		// Raced with a concurrent delete between the lookup and the lock.
		return common.NotFoundf("product image %s", id)
	}

	rows, err := tx.Query(ctx, `
		SELECT id FROM product_images
		WHERE product_id = $1
		ORDER BY position ASC
	`, productID)
	if err != nil {
		return err
	}
	remaining := []uuid.UUID{}
	for rows.Next() {
		var imageID uuid.UUID
		if err := rows.Scan(&imageID); err != nil {
			rows.Close()
			return err
		}
		remaining = append(remaining, imageID)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	// Deleting the last image leaves an empty set and nothing to promote.
	for i, imageID := range remaining {
		_, err := tx.Exec(ctx, `
			UPDATE product_images SET position = $1, is_main = $2 WHERE id = $3
		`, i, i == 0, imageID)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *productImageRepo) Reorder(ctx context.Context, productID uuid.UUID, images []*models.ProductImage) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := lockProduct(ctx, tx, productID); err != nil {
		return err
	}

	rows, err := tx.Query(ctx, `SELECT id FROM product_images WHERE product_id = $1`, productID)
	if err != nil {
		return err
	}
	existing := map[uuid.UUID]bool{}
	for rows.Next() {
		var imageID uuid.UUID
		if err := rows.Scan(&imageID); err != nil {
			rows.Close()
			return err
		}
		existing[imageID] = true
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	if len(images) != len(existing) {
		return common.InvalidInputf("reorder list has %d images, product %s has %d", len(images), productID, len(existing))
	}
	seen := map[uuid.UUID]bool{}
	for _, image := range images {
		if !existing[image.ID] {
			return common.NotFoundf("product image %s does not belong to product %s", image.ID, productID)
		}
		if seen[image.ID] {
			return common.InvalidInputf("product image %s listed twice", image.ID)
		}
		seen[image.ID] = true
	}

	// Only ordering columns change here. Callers routinely submit records
	// carrying just the id and main flag, so writing anything else would
	// clobber stored fields with zero values.
	for i, image := range images {
		_, err := tx.Exec(ctx, `
			UPDATE product_images
			SET position = $1, is_main = $2
			WHERE id = $3 AND product_id = $4
		`, i, image.IsMain, image.ID, productID)
		if err != nil {
			return err
		}
		image.Index = i
	}

	return tx.Commit(ctx)
}
