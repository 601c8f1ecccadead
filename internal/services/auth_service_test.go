package services

import (
	"context"
	"testing"
	"time"

	"galleria/internal/common"
	"galleria/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	args := m.Called(ctx, id, passwordHash)
	return args.Error(0)
}

type MockPasswordResetRepository struct {
	mock.Mock
}

func (m *MockPasswordResetRepository) Create(ctx context.Context, reset *models.PasswordReset) error {
	args := m.Called(ctx, reset)
	return args.Error(0)
}

func (m *MockPasswordResetRepository) GetActiveByUserID(ctx context.Context, userID uuid.UUID) (*models.PasswordReset, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PasswordReset), args.Error(1)
}

func (m *MockPasswordResetRepository) MarkUsed(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockPasswordResetRepository) DeleteExpired(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type MockCacheService struct {
	mock.Mock
}

func (m *MockCacheService) GetProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockCacheService) SetProduct(ctx context.Context, product *models.Product, ttl time.Duration) error {
	args := m.Called(ctx, product, ttl)
	return args.Error(0)
}

func (m *MockCacheService) DeleteProduct(ctx context.Context, productID uuid.UUID) error {
	args := m.Called(ctx, productID)
	return args.Error(0)
}

func (m *MockCacheService) GetContent(ctx context.Context, slug string) (*models.ContentSection, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ContentSection), args.Error(1)
}

func (m *MockCacheService) SetContent(ctx context.Context, section *models.ContentSection, ttl time.Duration) error {
	args := m.Called(ctx, section, ttl)
	return args.Error(0)
}

func (m *MockCacheService) DeleteContent(ctx context.Context, slug string) error {
	args := m.Called(ctx, slug)
	return args.Error(0)
}

func (m *MockCacheService) GetCart(ctx context.Context, token string) (*models.Cart, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Cart), args.Error(1)
}

func (m *MockCacheService) SetCart(ctx context.Context, cart *models.Cart, ttl time.Duration) error {
	args := m.Called(ctx, cart, ttl)
	return args.Error(0)
}

func (m *MockCacheService) DeleteCart(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockCacheService) IsRateLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	args := m.Called(ctx, key, limit, window)
	return args.Bool(0), args.Error(1)
}

func (m *MockCacheService) IncrementRateLimit(ctx context.Context, key string, window time.Duration) error {
	args := m.Called(ctx, key, window)
	return args.Error(0)
}

func (m *MockCacheService) SetString(ctx context.Context, key string, value string, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

func (m *MockCacheService) GetString(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockCacheService) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockCacheService) InvalidateAllCache(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) SendEmail(ctx context.Context, to, subject, body string) error {
	args := m.Called(ctx, to, subject, body)
	return args.Error(0)
}

type AuthServiceTestSuite struct {
	suite.Suite
	userRepo  *MockUserRepository
	resetRepo *MockPasswordResetRepository
	cacheSvc  *MockCacheService
	notifier  *MockNotifier
	service   AuthService
	context   context.Context
}

func (suite *AuthServiceTestSuite) SetupTest() {
	suite.userRepo = new(MockUserRepository)
	suite.resetRepo = new(MockPasswordResetRepository)
	suite.cacheSvc = new(MockCacheService)
	suite.notifier = new(MockNotifier)
	suite.service = NewAuthService(suite.userRepo, suite.resetRepo, suite.cacheSvc, suite.notifier, "test-secret", 3600)
	suite.context = context.Background()
}

func TestAuthServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AuthServiceTestSuite))
}

func (suite *AuthServiceTestSuite) userWithPassword(password string) *models.User {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	assert.NoError(suite.T(), err)
	return &models.User{
		ID:           uuid.New(),
		Email:        "maker@example.com",
		PasswordHash: string(hash),
		Name:         "Maker",
		Role:         models.RoleCustomer,
	}
}

func (suite *AuthServiceTestSuite) TestSignup_CreatesCustomer() {
	suite.userRepo.On("Create", suite.context, mock.MatchedBy(func(user *models.User) bool {
		return user.Email == "maker@example.com" && user.Role == models.RoleCustomer && user.PasswordHash != "secret123"
	})).Return(nil)

	user, err := suite.service.Signup(suite.context, "maker@example.com", "secret123", "Maker")
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.RoleCustomer, user.Role)
	suite.userRepo.AssertExpectations(suite.T())
}

func (suite *AuthServiceTestSuite) TestSignup_RejectsShortPassword() {
	_, err := suite.service.Signup(suite.context, "maker@example.com", "abc", "Maker")
	assert.ErrorIs(suite.T(), err, common.ErrInvalidInput)
	suite.userRepo.AssertNotCalled(suite.T(), "Create")
}

func (suite *AuthServiceTestSuite) TestLogin_IssuesTokenWithRoleClaim() {
	user := suite.userWithPassword("secret123")
	user.Role = models.RoleAdmin
	suite.userRepo.On("GetByEmail", suite.context, user.Email).Return(user, nil)

	tokens, err := suite.service.Login(suite.context, user.Email, "secret123")
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "Bearer", tokens.TokenType)

	claims := &TokenClaims{}
	parsed, err := jwt.ParseWithClaims(tokens.AccessToken, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	assert.NoError(suite.T(), err)
	assert.True(suite.T(), parsed.Valid)
	assert.Equal(suite.T(), models.RoleAdmin, claims.Role)
	assert.Equal(suite.T(), user.ID.String(), claims.Subject)
}

func (suite *AuthServiceTestSuite) TestLogin_WrongPassword() {
	user := suite.userWithPassword("secret123")
	suite.userRepo.On("GetByEmail", suite.context, user.Email).Return(user, nil)

	_, err := suite.service.Login(suite.context, user.Email, "wrong")
	assert.ErrorIs(suite.T(), err, common.ErrInvalidInput)
}

func (suite *AuthServiceTestSuite) TestRequestPasswordReset_SendsHashedSingleUseCode() {
	user := suite.userWithPassword("secret123")
	suite.cacheSvc.On("IsRateLimited", suite.context, "otp:"+user.Email, 3, time.Hour).Return(false, nil)
	suite.userRepo.On("GetByEmail", suite.context, user.Email).Return(user, nil)

	var storedHash string
	suite.resetRepo.On("Create", suite.context, mock.MatchedBy(func(reset *models.PasswordReset) bool {
		storedHash = reset.CodeHash
		return reset.UserID == user.ID && time.Until(reset.ExpiresAt) > 9*time.Minute
	})).Return(nil)
	suite.cacheSvc.On("IncrementRateLimit", suite.context, "otp:"+user.Email, time.Hour).Return(nil)

	var mailedCode string
	suite.notifier.On("SendEmail", suite.context, user.Email, mock.Anything, mock.MatchedBy(func(body string) bool {
		mailedCode = body
		return true
	})).Return(nil)

	err := suite.service.RequestPasswordReset(suite.context, user.Email)
	assert.NoError(suite.T(), err)

	// The stored value is a digest, never the code itself.
	assert.Len(suite.T(), storedHash, 64)
	assert.NotContains(suite.T(), mailedCode, storedHash)
}

func (suite *AuthServiceTestSuite) TestRequestPasswordReset_RateLimited() {
	suite.cacheSvc.On("IsRateLimited", suite.context, "otp:maker@example.com", 3, time.Hour).Return(true, nil)

	err := suite.service.RequestPasswordReset(suite.context, "maker@example.com")
	assert.ErrorIs(suite.T(), err, common.ErrInvalidInput)
	suite.resetRepo.AssertNotCalled(suite.T(), "Create")
	suite.notifier.AssertNotCalled(suite.T(), "SendEmail")
}

func (suite *AuthServiceTestSuite) TestResetPassword_BurnsCodeBeforeUpdate() {
	user := suite.userWithPassword("oldpassword")
	reset := &models.PasswordReset{
		ID:        uuid.New(),
		UserID:    user.ID,
		CodeHash:  hashOTP("483920"),
		ExpiresAt: time.Now().Add(5 * time.Minute),
	}

	suite.userRepo.On("GetByEmail", suite.context, user.Email).Return(user, nil)
	suite.resetRepo.On("GetActiveByUserID", suite.context, user.ID).Return(reset, nil)
	suite.resetRepo.On("MarkUsed", suite.context, reset.ID).Return(nil)
	suite.userRepo.On("UpdatePassword", suite.context, user.ID, mock.Anything).Return(nil)

	err := suite.service.ResetPassword(suite.context, user.Email, "483920", "newpassword")
	assert.NoError(suite.T(), err)
	suite.resetRepo.AssertCalled(suite.T(), "MarkUsed", suite.context, reset.ID)
	suite.userRepo.AssertCalled(suite.T(), "UpdatePassword", suite.context, user.ID, mock.Anything)
}

func (suite *AuthServiceTestSuite) TestResetPassword_WrongCode() {
	user := suite.userWithPassword("oldpassword")
	reset := &models.PasswordReset{
		ID:        uuid.New(),
		UserID:    user.ID,
		CodeHash:  hashOTP("483920"),
		ExpiresAt: time.Now().Add(5 * time.Minute),
	}

	suite.userRepo.On("GetByEmail", suite.context, user.Email).Return(user, nil)
	suite.resetRepo.On("GetActiveByUserID", suite.context, user.ID).Return(reset, nil)

	err := suite.service.ResetPassword(suite.context, user.Email, "000000", "newpassword")
	assert.ErrorIs(suite.T(), err, common.ErrInvalidInput)
	suite.resetRepo.AssertNotCalled(suite.T(), "MarkUsed", suite.context, reset.ID)
	suite.userRepo.AssertNotCalled(suite.T(), "UpdatePassword", suite.context, user.ID, mock.Anything)
}

func (suite *AuthServiceTestSuite) TestResetPassword_NoActiveCode() {
	user := suite.userWithPassword("oldpassword")
	suite.userRepo.On("GetByEmail", suite.context, user.Email).Return(user, nil)
	suite.resetRepo.On("GetActiveByUserID", suite.context, user.ID).
		Return(nil, common.NotFoundf("no active reset for user %s", user.ID))

	err := suite.service.ResetPassword(suite.context, user.Email, "483920", "newpassword")
	assert.ErrorIs(suite.T(), err, common.ErrNotFound)
}

func (suite *AuthServiceTestSuite) TestCleanupExpiredResets() {
	suite.resetRepo.On("DeleteExpired", suite.context).Return(int64(4), nil)

	removed, err := suite.service.CleanupExpiredResets(suite.context)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), int64(4), removed)
}
