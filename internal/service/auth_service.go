package service

import (
	"crypto/subtle"
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"

	"pinkilang/internal/config"
	"pinkilang/internal/models"
	"pinkilang/internal/utils"
)

var ErrInvalidCredentials = errors.New("invalid username or password")

// AuthService issues bearer tokens for the configured operator. The actor
// in a token ends up on every journal entry the operator writes.
type AuthService struct {
	cfg *config.Config
	now func() time.Time
}

func NewAuthService(cfg *config.Config) *AuthService {
	return &AuthService{cfg: cfg, now: time.Now}
}

func (s *AuthService) Login(req models.LoginRequest) (*models.LoginResponse, error) {
	if subtle.ConstantTimeCompare([]byte(req.Username), []byte(s.cfg.AdminUsername)) != 1 {
		return nil, ErrInvalidCredentials
	}
	if !s.checkPassword(req.Password) {
		return nil, ErrInvalidCredentials
	}

	token, err := utils.GenerateToken(req.Username, "admin", s.cfg.JWTSecret, s.cfg.JWTAccessExpire)
	if err != nil {
		return nil, err
	}
	return &models.LoginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   s.now().Add(s.cfg.JWTAccessExpire),
		Username:    req.Username,
		Role:        "admin",
	}, nil
}

// checkPassword compares against ADMIN_PASSWORD_HASH. Without a hash only
// development accepts the password "admin".
func (s *AuthService) checkPassword(password string) bool {
	if s.cfg.AdminPasswordHash == "" {
		return s.cfg.IsDevelopment() && password == "admin"
	}
	return bcrypt.CompareHashAndPassword([]byte(s.cfg.AdminPasswordHash), []byte(password)) == nil
}

// HashPassword produces a value for ADMIN_PASSWORD_HASH.
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}
