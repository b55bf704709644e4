package users

import (
	"context"
	"fmt"
	"time"

	"homechef-delivery/internal/models"
	"homechef-delivery/pkg/utils"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	accessTokenTTL     = 30 * 24 * time.Hour
	referralCodeLength = 8
)

// ServiceInterface defines methods for the account support checkout needs.
type ServiceInterface interface {
	GetProfile(ctx context.Context, userID string) (*models.User, error)
	FindByPhone(ctx context.Context, phone string) (*models.User, error)
	FindByReferralCode(ctx context.Context, code string) (*models.User, error)
	NewCheckoutAccount(name, phone, email string, referrer *models.User, signupBonus float64) (*models.User, error)
	IssueAccessToken(user *models.User) (string, error)
}

type Service struct {
	repo      RepositoryInterface
	jwtSecret string
}

func NewService(repo RepositoryInterface, jwtSecret string) ServiceInterface {
	return &Service{repo: repo, jwtSecret: jwtSecret}
}

func (s *Service) GetProfile(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = ""
	return user, nil
}

// FindByPhone returns ErrNotFound when no account uses the phone.
func (s *Service) FindByPhone(ctx context.Context, phone string) (*models.User, error) {
	if !utils.IsValidPhone(phone) {
		return nil, models.ErrInvalidPhone
	}
	return s.repo.FindByPhone(ctx, phone)
}

func (s *Service) FindByReferralCode(ctx context.Context, code string) (*models.User, error) {
	if code == "" {
		return nil, models.ErrNotFound
	}
	return s.repo.FindByReferralCode(ctx, code)
}

// NewCheckoutAccount builds, but does not store, an account for a guest placing
// an order. The password is random; the customer signs in with the returned
// access token and can reset it later. A referred account starts with signupBonus.
func (s *Service) NewCheckoutAccount(name, phone, email string, referrer *models.User, signupBonus float64) (*models.User, error) {
	password, err := utils.GenerateSecureToken(24)
	if err != nil {
		return nil, fmt.Errorf("service.NewCheckoutAccount: %w", err)
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("service.NewCheckoutAccount: failed to hash password: %w", err)
	}
	code, err := utils.GenerateReferralCode(referralCodeLength)
	if err != nil {
		return nil, fmt.Errorf("service.NewCheckoutAccount: %w", err)
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Name:         name,
		Phone:        phone,
		Email:        email,
		Role:         models.RoleCustomer,
		PasswordHash: string(hashed),
		ReferralCode: code,
	}
	if referrer != nil {
		user.ReferredBy = &referrer.ID
		user.BonusBalance = signupBonus
	}
	return user, nil
}

// IssueAccessToken signs the same claims the auth middleware reads.
func (s *Service) IssueAccessToken(user *models.User) (string, error) {
	claims := &models.JwtCustomClaims{
		UserID: user.ID,
		Phone:  user.Phone,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(accessTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return signed, nil
}
