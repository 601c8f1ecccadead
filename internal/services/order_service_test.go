package services

import (
	"context"
	"testing"

	"galleria/internal/common"
	"galleria/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) Create(ctx context.Context, order *models.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockOrderRepository) List(ctx context.Context, status string, limit, offset int) ([]*models.Order, error) {
	args := m.Called(ctx, status, limit, offset)
	return args.Get(0).([]*models.Order), args.Error(1)
}

func (m *MockOrderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

type MockCartService struct {
	mock.Mock
}

func (m *MockCartService) Get(ctx context.Context, token string) (*models.CartView, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CartView), args.Error(1)
}

func (m *MockCartService) AddItem(ctx context.Context, token string, productID uuid.UUID, quantity int) (*models.CartView, error) {
	args := m.Called(ctx, token, productID, quantity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CartView), args.Error(1)
}

func (m *MockCartService) UpdateItem(ctx context.Context, token string, productID uuid.UUID, quantity int) (*models.CartView, error) {
	args := m.Called(ctx, token, productID, quantity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CartView), args.Error(1)
}

func (m *MockCartService) RemoveItem(ctx context.Context, token string, productID uuid.UUID) (*models.CartView, error) {
	args := m.Called(ctx, token, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CartView), args.Error(1)
}

func (m *MockCartService) Clear(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockCartService) Raw(ctx context.Context, token string) (*models.Cart, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Cart), args.Error(1)
}

type OrderServiceTestSuite struct {
	suite.Suite
	orderRepo   *MockOrderRepository
	productRepo *MockProductRepository
	cartSvc     *MockCartService
	notifier    *MockNotifier
	service     OrderService
	token       string
	context     context.Context
}

func (suite *OrderServiceTestSuite) SetupTest() {
	suite.orderRepo = new(MockOrderRepository)
	suite.productRepo = new(MockProductRepository)
	suite.cartSvc = new(MockCartService)
	suite.notifier = new(MockNotifier)
	suite.service = NewOrderService(suite.orderRepo, suite.productRepo, suite.cartSvc, suite.notifier)
	suite.token = uuid.NewString()
	suite.context = context.Background()
}

func TestOrderServiceTestSuite(t *testing.T) {
	suite.Run(t, new(OrderServiceTestSuite))
}

func (suite *OrderServiceTestSuite) checkoutRequest() *CheckoutRequest {
	return &CheckoutRequest{
		CartToken:     suite.token,
		CustomerName:  "Asha",
		CustomerEmail: "asha@example.com",
		Address:       "12 Pottery Lane",
		City:          "Jaipur",
	}
}

func (suite *OrderServiceTestSuite) TestCheckout_SnapshotsPricesAndClearsCart() {
	product := &models.Product{ID: uuid.New(), Name: "Brass lamp", Price: 120, Stock: 3, IsPublished: true}
	cart := &models.Cart{
		Token: suite.token,
		Items: []*models.CartItem{{ProductID: product.ID, Quantity: 2}},
	}

	suite.cartSvc.On("Raw", suite.context, suite.token).Return(cart, nil)
	suite.productRepo.On("GetByID", suite.context, product.ID).Return(product, nil)
	suite.orderRepo.On("Create", suite.context, mock.MatchedBy(func(order *models.Order) bool {
		return len(order.Items) == 1 &&
			order.Items[0].ProductName == "Brass lamp" &&
			order.Items[0].UnitPrice == 120 &&
			order.Total == 240 &&
			order.Status == models.OrderStatusPending
	})).Return(nil)
	suite.cartSvc.On("Clear", suite.context, suite.token).Return(nil)
	suite.notifier.On("SendEmail", suite.context, "asha@example.com", mock.Anything, mock.Anything).Return(nil)

	order, err := suite.service.Checkout(suite.context, suite.checkoutRequest())
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 240.0, order.Total)
	suite.cartSvc.AssertCalled(suite.T(), "Clear", suite.context, suite.token)
}

func (suite *OrderServiceTestSuite) TestCheckout_EmptyCartRejected() {
	suite.cartSvc.On("Raw", suite.context, suite.token).Return(&models.Cart{Token: suite.token}, nil)

	_, err := suite.service.Checkout(suite.context, suite.checkoutRequest())
	assert.ErrorIs(suite.T(), err, common.ErrInvalidInput)
	suite.orderRepo.AssertNotCalled(suite.T(), "Create")
}

func (suite *OrderServiceTestSuite) TestCheckout_InsufficientStock() {
	product := &models.Product{ID: uuid.New(), Name: "Brass lamp", Price: 120, Stock: 1, IsPublished: true}
	cart := &models.Cart{
		Token: suite.token,
		Items: []*models.CartItem{{ProductID: product.ID, Quantity: 2}},
	}

	suite.cartSvc.On("Raw", suite.context, suite.token).Return(cart, nil)
	suite.productRepo.On("GetByID", suite.context, product.ID).Return(product, nil)

	_, err := suite.service.Checkout(suite.context, suite.checkoutRequest())
	assert.ErrorIs(suite.T(), err, common.ErrInvalidInput)
	suite.orderRepo.AssertNotCalled(suite.T(), "Create")
}

func (suite *OrderServiceTestSuite) TestCheckout_UnpublishedProductRejected() {
	product := &models.Product{ID: uuid.New(), Name: "Brass lamp", Price: 120, Stock: 3, IsPublished: false}
	cart := &models.Cart{
		Token: suite.token,
		Items: []*models.CartItem{{ProductID: product.ID, Quantity: 1}},
	}

	suite.cartSvc.On("Raw", suite.context, suite.token).Return(cart, nil)
	suite.productRepo.On("GetByID", suite.context, product.ID).Return(product, nil)

	_, err := suite.service.Checkout(suite.context, suite.checkoutRequest())
	assert.ErrorIs(suite.T(), err, common.ErrInvalidInput)
}

func (suite *OrderServiceTestSuite) TestCheckout_MissingEmail() {
	req := suite.checkoutRequest()
	req.CustomerEmail = "not-an-email"

	_, err := suite.service.Checkout(suite.context, req)
	assert.ErrorIs(suite.T(), err, common.ErrInvalidInput)
	suite.cartSvc.AssertNotCalled(suite.T(), "Raw")
}

func (suite *OrderServiceTestSuite) TestUpdateStatus_RejectsUnknownStatus() {
	err := suite.service.UpdateStatus(suite.context, uuid.New(), "teleported")
	assert.ErrorIs(suite.T(), err, common.ErrInvalidInput)
	suite.orderRepo.AssertNotCalled(suite.T(), "UpdateStatus")
}

func (suite *OrderServiceTestSuite) TestUpdateStatus_Valid() {
	orderID := uuid.New()
	suite.orderRepo.On("UpdateStatus", suite.context, orderID, models.OrderStatusShipped).Return(nil)

	err := suite.service.UpdateStatus(suite.context, orderID, models.OrderStatusShipped)
	assert.NoError(suite.T(), err)
	suite.orderRepo.AssertExpectations(suite.T())
}

func (suite *OrderServiceTestSuite) TestList_InvalidStatusFilter() {
	_, err := suite.service.List(suite.context, "bogus", 10, 0)
	assert.ErrorIs(suite.T(), err, common.ErrInvalidInput)
}
