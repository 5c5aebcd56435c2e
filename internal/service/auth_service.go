package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/taskflow/taskflow/internal/models"
	"github.com/taskflow/taskflow/pkg/auth"
)

// AuthService handles account registration, bearer-token issuance and
// revocation. Tokens are JWTs whose jti is persisted as a UserToken row;
// logout deletes the user's rows, revoking every outstanding token.
type AuthService struct {
	db        *gorm.DB
	tokens    *auth.TokenManager
	passwords *auth.PasswordManager
}

// NewAuthService creates an auth service.
func NewAuthService(db *gorm.DB, tokens *auth.TokenManager, passwords *auth.PasswordManager) *AuthService {
	return &AuthService{
		db:        db,
		tokens:    tokens,
		passwords: passwords,
	}
}

// Register creates a new user account.
func (s *AuthService) Register(ctx context.Context, email, password string) (*models.User, error) {
	if err := auth.ValidateEmail(email); err != nil {
		return nil, err
	}

	hash, err := s.passwords.HashPassword(password)
	if err != nil {
		return nil, err
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if count > 0 {
		return nil, ErrEmailTaken
	}

	user := models.User{Email: email, PasswordHash: hash}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	return &user, nil
}

// Login verifies credentials and issues a bearer token.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("find user: %w", err)
	}

	if err := s.passwords.ComparePassword(user.PasswordHash, password); err != nil {
		return "", ErrInvalidCredentials
	}

	token, jti, err := s.tokens.GenerateToken(user.ID, user.Email)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}

	record := models.UserToken{ID: jti, UserID: user.ID}
	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		return "", fmt.Errorf("persist token: %w", err)
	}

	return token, nil
}

// Logout revokes all of the user's outstanding tokens.
func (s *AuthService) Logout(ctx context.Context, userID uint) error {
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.UserToken{}).Error
	if err != nil {
		return fmt.Errorf("revoke tokens: %w", err)
	}
	return nil
}

// Authenticate validates a bearer token string and returns the user it
// belongs to. A token whose jti row has been deleted is rejected even if
// the JWT itself is still valid.
func (s *AuthService) Authenticate(ctx context.Context, tokenString string) (*models.User, error) {
	claims, err := s.tokens.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}

	var record models.UserToken
	err = s.db.WithContext(ctx).Where("id = ?", claims.ID).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, auth.ErrInvalidToken
		}
		return nil, fmt.Errorf("check token: %w", err)
	}

	userID, err := claims.UserID()
	if err != nil {
		return nil, err
	}

	var user models.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, auth.ErrInvalidToken
		}
		return nil, fmt.Errorf("load user: %w", err)
	}

	return &user, nil
}
