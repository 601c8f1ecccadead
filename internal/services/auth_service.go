package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log"
	"time"

	"galleria/internal/caching"
	"galleria/internal/common"
	"galleria/internal/models"
	"galleria/internal/repositories"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/gommon/random"
	"golang.org/x/crypto/bcrypt"
)

const (
	otpLength      = 6
	otpTTL         = 10 * time.Minute
	otpRateLimit   = 3
	otpRateWindow  = time.Hour
	minPasswordLen = 6
)

// AuthService handles credential authentication and the OTP-based
// password reset flow.
type AuthService interface {
	Signup(ctx context.Context, email, password, name string) (*models.User, error)
	Login(ctx context.Context, email, password string) (*models.TokenResponse, error)

	// RequestPasswordReset issues a single-use OTP and delivers it via
	// the notifier. A missing account is reported as not-found to the
	// handler, which decides what to reveal to the client.
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, email, code, newPassword string) error

	// CleanupExpiredResets purges spent OTP rows. Run weekly.
	CleanupExpiredResets(ctx context.Context) (int64, error)
}

// TokenClaims represents JWT claims
type TokenClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

type authService struct {
	userRepo  repositories.UserRepository
	resetRepo repositories.PasswordResetRepository
	cacheSvc  caching.CacheService
	notifier  Notifier
	jwtSecret []byte
	tokenTTL  int // seconds
}

func NewAuthService(userRepo repositories.UserRepository, resetRepo repositories.PasswordResetRepository, cacheSvc caching.CacheService, notifier Notifier, jwtSecret string, tokenTTLSeconds int) AuthService {
	return &authService{
		userRepo:  userRepo,
		resetRepo: resetRepo,
		cacheSvc:  cacheSvc,
		notifier:  notifier,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTLSeconds,
	}
}

func (s *authService) Signup(ctx context.Context, email, password, name string) (*models.User, error) {
	if err := common.ValidateEmail(email, "email"); err != nil {
		return nil, common.InvalidInputf("%v", err)
	}
	if len(password) < minPasswordLen {
		return nil, common.InvalidInputf("password must be at least %d characters", minPasswordLen)
	}
	if err := common.ValidateRequiredString(name, "name"); err != nil {
		return nil, common.InvalidInputf("%v", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(hashedPassword),
		Name:         name,
		Role:         models.RoleCustomer,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*models.TokenResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, common.InvalidInputf("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, common.InvalidInputf("invalid credentials")
	}

	now := time.Now()
	claims := TokenClaims{
		Role: user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "galleria-auth",
			Subject:   user.ID.String(),
			Audience:  jwt.ClaimStrings{"galleria-api"},
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(s.tokenTTL) * time.Second)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign JWT: %v", err)
	}

	return &models.TokenResponse{
		AccessToken: signed,
		TokenType:   "Bearer",
		ExpiresIn:   s.tokenTTL,
		UserID:      user.ID.String(),
		Role:        user.Role,
		IssuedAt:    now,
	}, nil
}

func (s *authService) RequestPasswordReset(ctx context.Context, email string) error {
	rateKey := fmt.Sprintf("otp:%s", email)
	limited, err := s.cacheSvc.IsRateLimited(ctx, rateKey, otpRateLimit, otpRateWindow)
	if err != nil {
		log.Printf("WARN: rate limit check failed for %s: %v", email, err)
	}
	if limited {
		return common.InvalidInputf("too many reset requests, try again later")
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return err
	}

	code := random.String(otpLength, random.Numeric)
	reset := &models.PasswordReset{
		ID:        uuid.New(),
		UserID:    user.ID,
		CodeHash:  hashOTP(code),
		ExpiresAt: time.Now().Add(otpTTL),
	}
	if err := s.resetRepo.Create(ctx, reset); err != nil {
		return err
	}

	if err := s.cacheSvc.IncrementRateLimit(ctx, rateKey, otpRateWindow); err != nil {
		log.Printf("WARN: rate limit increment failed for %s: %v", email, err)
	}

	subject := "Your password reset code"
	body := fmt.Sprintf("Your verification code is %s. It expires in %d minutes.", code, int(otpTTL.Minutes()))
	if err := s.notifier.SendEmail(ctx, user.Email, subject, body); err != nil {
		return fmt.Errorf("failed to deliver reset code: %w", err)
	}

	return nil
}

func (s *authService) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	if len(newPassword) < minPasswordLen {
		return common.InvalidInputf("password must be at least %d characters", minPasswordLen)
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return err
	}

	reset, err := s.resetRepo.GetActiveByUserID(ctx, user.ID)
	if err != nil {
		return err
	}

	if hashOTP(code) != reset.CodeHash {
		return common.InvalidInputf("invalid verification code")
	}

	// Single use: burn the code before touching the password so a retry
	// with the same code fails even if the update below errors.
	if err := s.resetRepo.MarkUsed(ctx, reset.ID); err != nil {
		return err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	return s.userRepo.UpdatePassword(ctx, user.ID, string(hashedPassword))
}

func (s *authService) CleanupExpiredResets(ctx context.Context) (int64, error) {
	return s.resetRepo.DeleteExpired(ctx)
}

func hashOTP(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}
