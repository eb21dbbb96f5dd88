package auth

import (
	"crypto/subtle"

	"github.com/garagem-ai/garagem/internal/api"
	"github.com/garagem-ai/garagem/internal/config"
)

// Service authenticates the single operator account configured at startup.
type Service struct {
	jwt          *JWTManager
	username     string
	passwordHash string
}

// NewService creates the operator auth service.
func NewService(jwt *JWTManager, cfg config.OperatorConfig) *Service {
	return &Service{
		jwt:          jwt,
		username:     cfg.Username,
		passwordHash: cfg.PasswordHash,
	}
}

// Login verifies operator credentials and issues an access token. Both the
// username comparison and the bcrypt check run on every attempt so timing
// does not reveal which field was wrong.
func (s *Service) Login(username, password string) (string, int64, error) {
	usernameOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.username)) == 1
	passwordOK := ComparePassword(s.passwordHash, password) == nil

	if !usernameOK || !passwordOK {
		return "", 0, api.ErrInvalidCredentials
	}
	return s.jwt.GenerateToken(username)
}

// JWT exposes the token manager for the HTTP middleware.
func (s *Service) JWT() *JWTManager {
	return s.jwt
}
