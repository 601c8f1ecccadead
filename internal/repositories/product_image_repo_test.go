package repositories

import (
	"context"
	"testing"
	"time"

	"galleria/internal/common"
	"galleria/internal/models"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type ProductImageRepoTestSuite struct {
	suite.Suite
	mock      pgxmock.PgxPoolIface
	repo      ProductImageRepository
	productID uuid.UUID
	context   context.Context
}

func (suite *ProductImageRepoTestSuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	assert.NoError(suite.T(), err)
	suite.mock = mock

	suite.repo = NewProductImageRepo(mock)
	suite.productID = uuid.New()
	suite.context = context.Background()
}

func (suite *ProductImageRepoTestSuite) TearDownTest() {
	suite.mock.Close()
}

func TestProductImageRepoTestSuite(t *testing.T) {
	suite.Run(t, new(ProductImageRepoTestSuite))
}

func (suite *ProductImageRepoTestSuite) expectProductLock() {
	suite.mock.ExpectQuery(`SELECT id FROM products WHERE id = \$1 FOR UPDATE`).
		WithArgs(suite.productID).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(suite.productID))
}

func (suite *ProductImageRepoTestSuite) TestInsertAppend_FirstImageBecomesMain() {
	image := &models.ProductImage{
		ID:        uuid.New(),
		ProductID: suite.productID,
		ImageKey:  suite.productID.String() + "/a.jpg",
	}

	suite.mock.ExpectBegin()
	suite.expectProductLock()
	suite.mock.ExpectQuery(`SELECT COUNT\(\*\) FROM product_images WHERE product_id = \$1`).
		WithArgs(suite.productID).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(0))
	suite.mock.ExpectQuery(`INSERT INTO product_images`).
		WithArgs(image.ID, suite.productID, image.ImageKey, true, 0).
		WillReturnRows(pgxmock.NewRows([]string{"uploaded_at"}).AddRow(time.Now()))
	suite.mock.ExpectCommit()

	err := suite.repo.InsertAppend(suite.context, image)
	assert.NoError(suite.T(), err)
	assert.True(suite.T(), image.IsMain)
	assert.Equal(suite.T(), 0, image.Index)
}

func (suite *ProductImageRepoTestSuite) TestInsertAppend_LaterImageAppendsAtEnd() {
	image := &models.ProductImage{
		ID:        uuid.New(),
		ProductID: suite.productID,
		ImageKey:  suite.productID.String() + "/b.jpg",
	}

	suite.mock.ExpectBegin()
	suite.expectProductLock()
	suite.mock.ExpectQuery(`SELECT COUNT\(\*\) FROM product_images WHERE product_id = \$1`).
		WithArgs(suite.productID).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(3))
	suite.mock.ExpectQuery(`INSERT INTO product_images`).
		WithArgs(image.ID, suite.productID, image.ImageKey, false, 3).
		WillReturnRows(pgxmock.NewRows([]string{"uploaded_at"}).AddRow(time.Now()))
	suite.mock.ExpectCommit()

	err := suite.repo.InsertAppend(suite.context, image)
	assert.NoError(suite.T(), err)
	assert.False(suite.T(), image.IsMain)
	assert.Equal(suite.T(), 3, image.Index)
}

func (suite *ProductImageRepoTestSuite) TestInsertAppend_UnknownProduct() {
	image := &models.ProductImage{
		ID:        uuid.New(),
		ProductID: suite.productID,
		ImageKey:  "orphan.jpg",
	}

	suite.mock.ExpectBegin()
	suite.mock.ExpectQuery(`SELECT id FROM products WHERE id = \$1 FOR UPDATE`).
		WithArgs(suite.productID).
		WillReturnRows(pgxmock.NewRows([]string{"id"}))
	suite.mock.ExpectRollback()

	err := suite.repo.InsertAppend(suite.context, image)
	assert.ErrorIs(suite.T(), err, common.ErrNotFound)
}

func (suite *ProductImageRepoTestSuite) TestDeleteAndResequence_ClosesGapAndPromotesMain() {
	imageID := uuid.New()
	remainingA := uuid.New()
	remainingB := uuid.New()

	suite.mock.ExpectBegin()
	suite.mock.ExpectQuery(`SELECT product_id FROM product_images WHERE id = \$1`).
		WithArgs(imageID).
		WillReturnRows(pgxmock.NewRows([]string{"product_id"}).AddRow(suite.productID))
	suite.expectProductLock()
	suite.mock.ExpectExec(`DELETE FROM product_images WHERE id = \$1`).
		WithArgs(imageID).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	suite.mock.ExpectQuery(`SELECT id FROM product_images`).
		WithArgs(suite.productID).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(remainingA).AddRow(remainingB))
	// Remaining images collapse to positions 0 and 1; the new head is main.
	suite.mock.ExpectExec(`UPDATE product_images SET position = \$1, is_main = \$2 WHERE id = \$3`).
		WithArgs(0, true, remainingA).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	suite.mock.ExpectExec(`UPDATE product_images SET position = \$1, is_main = \$2 WHERE id = \$3`).
		WithArgs(1, false, remainingB).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	suite.mock.ExpectCommit()

	err := suite.repo.DeleteAndResequence(suite.context, imageID)
	assert.NoError(suite.T(), err)
}

func (suite *ProductImageRepoTestSuite) TestDeleteAndResequence_LastImageLeavesEmptySet() {
	imageID := uuid.New()

	suite.mock.ExpectBegin()
	suite.mock.ExpectQuery(`SELECT product_id FROM product_images WHERE id = \$1`).
		WithArgs(imageID).
		WillReturnRows(pgxmock.NewRows([]string{"product_id"}).AddRow(suite.productID))
	suite.expectProductLock()
	suite.mock.ExpectExec(`DELETE FROM product_images WHERE id = \$1`).
		WithArgs(imageID).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	suite.mock.ExpectQuery(`SELECT id FROM product_images`).
		WithArgs(suite.productID).
		WillReturnRows(pgxmock.NewRows([]string{"id"}))
	suite.mock.ExpectCommit()

	err := suite.repo.DeleteAndResequence(suite.context, imageID)
	assert.NoError(suite.T(), err)
}

func (suite *ProductImageRepoTestSuite) TestDeleteAndResequence_UnknownImage() {
	imageID := uuid.New()

	suite.mock.ExpectBegin()
	suite.mock.ExpectQuery(`SELECT product_id FROM product_images WHERE id = \$1`).
		WithArgs(imageID).
		WillReturnRows(pgxmock.NewRows([]string{"product_id"}))
	suite.mock.ExpectRollback()

	err := suite.repo.DeleteAndResequence(suite.context, imageID)
	assert.ErrorIs(suite.T(), err, common.ErrNotFound)
}

func (suite *ProductImageRepoTestSuite) TestReorder_AppliesPermutation() {
	first := uuid.New()
	second := uuid.New()
	images := []*models.ProductImage{
		{ID: second, ProductID: suite.productID, ImageKey: "b.jpg", IsMain: true},
		{ID: first, ProductID: suite.productID, ImageKey: "a.jpg", IsMain: false},
	}

	suite.mock.ExpectBegin()
	suite.expectProductLock()
	suite.mock.ExpectQuery(`SELECT id FROM product_images WHERE product_id = \$1`).
		WithArgs(suite.productID).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(first).AddRow(second))
	suite.mock.ExpectExec(`UPDATE product_images\s+SET position = \$1, is_main = \$2\s+WHERE id = \$3 AND product_id = \$4`).
		WithArgs(0, true, second, suite.productID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	suite.mock.ExpectExec(`UPDATE product_images\s+SET position = \$1, is_main = \$2\s+WHERE id = \$3 AND product_id = \$4`).
		WithArgs(1, false, first, suite.productID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	suite.mock.ExpectCommit()

	err := suite.repo.Reorder(suite.context, suite.productID, images)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 0, images[0].Index)
	assert.Equal(suite.T(), 1, images[1].Index)
}

// The HTTP reorder payload carries only ids and main flags, so the records
// arrive without an image key. The rewrite must leave image_key alone
// rather than overwrite it with the empty string.
func (suite *ProductImageRepoTestSuite) TestReorder_KeylessRecordsLeaveImageKeyUntouched() {
	first := uuid.New()
	second := uuid.New()
	images := []*models.ProductImage{
		{ID: second, ProductID: suite.productID, IsMain: true},
		{ID: first, ProductID: suite.productID, IsMain: false},
	}

	suite.mock.ExpectBegin()
	suite.expectProductLock()
	suite.mock.ExpectQuery(`SELECT id FROM product_images WHERE product_id = \$1`).
		WithArgs(suite.productID).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(first).AddRow(second))
	suite.mock.ExpectExec(`UPDATE product_images\s+SET position = \$1, is_main = \$2\s+WHERE id = \$3 AND product_id = \$4`).
		WithArgs(0, true, second, suite.productID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	suite.mock.ExpectExec(`UPDATE product_images\s+SET position = \$1, is_main = \$2\s+WHERE id = \$3 AND product_id = \$4`).
		WithArgs(1, false, first, suite.productID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	suite.mock.ExpectCommit()

	err := suite.repo.Reorder(suite.context, suite.productID, images)
	assert.NoError(suite.T(), err)
}

func (suite *ProductImageRepoTestSuite) TestReorder_RejectsIncompleteList() {
	first := uuid.New()
	second := uuid.New()
	images := []*models.ProductImage{
		{ID: first, ProductID: suite.productID, IsMain: true},
	}

	suite.mock.ExpectBegin()
	suite.expectProductLock()
	suite.mock.ExpectQuery(`SELECT id FROM product_images WHERE product_id = \$1`).
		WithArgs(suite.productID).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(first).AddRow(second))
	suite.mock.ExpectRollback()

	err := suite.repo.Reorder(suite.context, suite.productID, images)
	assert.ErrorIs(suite.T(), err, common.ErrInvalidInput)
}

func (suite *ProductImageRepoTestSuite) TestReorder_RejectsForeignImage() {
	owned := uuid.New()
	foreign := uuid.New()
	images := []*models.ProductImage{
		{ID: foreign, ProductID: suite.productID, IsMain: true},
	}

	suite.mock.ExpectBegin()
	suite.expectProductLock()
	suite.mock.ExpectQuery(`SELECT id FROM product_images WHERE product_id = \$1`).
		WithArgs(suite.productID).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(owned))
	suite.mock.ExpectRollback()

	err := suite.repo.Reorder(suite.context, suite.productID, images)
	assert.ErrorIs(suite.T(), err, common.ErrNotFound)
}

func (suite *ProductImageRepoTestSuite) TestListByProduct_OrderedByPosition() {
	now := time.Now()
	idA := uuid.New()
	idB := uuid.New()

	suite.mock.ExpectQuery(`SELECT id, product_id, image_key, is_main, position, uploaded_at`).
		WithArgs(suite.productID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "product_id", "image_key", "is_main", "position", "uploaded_at"}).
			AddRow(idA, suite.productID, "a.jpg", true, 0, now).
			AddRow(idB, suite.productID, "b.jpg", false, 1, now))

	images, err := suite.repo.ListByProduct(suite.context, suite.productID)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), images, 2)
	assert.True(suite.T(), images[0].IsMain)
	assert.Equal(suite.T(), 0, images[0].Index)
	assert.Equal(suite.T(), 1, images[1].Index)
}

func (suite *ProductImageRepoTestSuite) TestGetByID_NotFound() {
	imageID := uuid.New()

	suite.mock.ExpectQuery(`SELECT id, product_id, image_key, is_main, position, uploaded_at`).
		WithArgs(imageID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "product_id", "image_key", "is_main", "position", "uploaded_at"}))

	_, err := suite.repo.GetByID(suite.context, imageID)
	assert.ErrorIs(suite.T(), err, common.ErrNotFound)
}
