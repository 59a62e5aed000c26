package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenExpiry is the fixed validity window of portal tokens. Tokens are
// stateless: there is no revocation list, logout is client side.
const TokenExpiry = 24 * time.Hour

// Token audiences.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Claims is the payload carried by every portal token.
type Claims struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
	Type  string    `json:"type"`
	jwt.RegisteredClaims
}

// JWTService signs and verifies portal tokens.
type JWTService struct {
	secret []byte
}

// NewJWTService creates a new JWT service with the given secret.
func NewJWTService(secret string) *JWTService {
	return &JWTService{
		secret: []byte(secret),
	}
}

// Issue signs a token for the given subject and role.
func (s *JWTService) Issue(id uuid.UUID, email, role string) (string, error) {
	now := time.Now()
	claims := &Claims{
		ID:    id,
		Email: email,
		Type:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenExpiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Validate parses a token string and returns the claims.
func (s *JWTService) Validate(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}

	return claims, nil
}
