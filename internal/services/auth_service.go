// internal/services/auth_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/beatstore/backend/internal/config"
	"github.com/beatstore/backend/internal/models"
	"github.com/beatstore/backend/internal/utils"
)

type AuthService struct {
	db     *gorm.DB
	cfg    *config.Config
	tokens *utils.TokenIssuer
}

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"required,username"`
	Password string `json:"password" validate:"required,min=6"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"` // in seconds
}

func NewAuthService(db *gorm.DB, cfg *config.Config, tokens *utils.TokenIssuer) *AuthService {
	return &AuthService{
		db:     db,
		cfg:    cfg,
		tokens: tokens,
	}
}

func (s *AuthService) Register(req *RegisterRequest) (*models.User, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	// Check if user already exists
	var existing models.User
	if err := s.db.Where("email = ? OR username = ?", req.Email, req.Username).First(&existing).Error; err == nil {
		return nil, fmt.Errorf("%w: user with this email or username already exists", ErrConflict)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("database error: %w", err)
	}

	user := &models.User{
		Email:    req.Email,
		Username: req.Username,
		IsActive: true,
	}

	if err := user.SetPassword(req.Password); err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.db.Create(user).Error; err != nil {
		// A concurrent registration can slip past the precheck and lose
		// to the unique index instead.
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: user with this email or username already exists", ErrConflict)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

func (s *AuthService) Login(req *LoginRequest) (*TokenResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	user, err := s.verifyCredentials(req.Username, req.Password)
	if err != nil {
		return nil, err
	}

	ttl := time.Duration(s.cfg.JWT.AccessTTL) * time.Minute
	token, err := s.tokens.Generate(user.ID, user.Username, utils.TokenTypeUser, ttl)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	return &TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   int(ttl.Seconds()),
	}, nil
}

// AdminLogin verifies credentials and the admin flag, then issues a token
// carrying the admin claim. The claim is embedded at issuance: a demoted
// admin keeps outstanding admin tokens valid until they expire.
func (s *AuthService) AdminLogin(req *LoginRequest) (*TokenResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	user, err := s.verifyCredentials(req.Username, req.Password)
	if err != nil {
		return nil, err
	}

	if !user.IsAdmin {
		return nil, fmt.Errorf("%w: admin access required", ErrForbidden)
	}

	ttl := time.Duration(s.cfg.JWT.AdminTTL) * time.Minute
	token, err := s.tokens.Generate(user.ID, user.Username, utils.TokenTypeAdmin, ttl)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	return &TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   int(ttl.Seconds()),
	}, nil
}

func (s *AuthService) verifyCredentials(username, password string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if err := user.CheckPassword(password); err != nil {
		return nil, ErrInvalidCredentials
	}

	return &user, nil
}

func (s *AuthService) GetUserByUsername(username string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &user, nil
}
