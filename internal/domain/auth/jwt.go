package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"hussiny/internal/core/apperror"
)

// Claims carried inside access tokens.
type Claims struct {
	UserID      int64    `json:"uid"`
	Email       string   `json:"email"`
	Name        string   `json:"name"`
	Role        string   `json:"role"`
	Permissions []string `json:"perms"`
	jwt.RegisteredClaims
}

// JWTService signs and parses access tokens.
type JWTService struct {
	secret []byte
	ttl    time.Duration
}

// NewJWTService creates a token service. A non-positive ttl defaults to 12h,
// roughly one shop shift.
func NewJWTService(secret string, ttl time.Duration) *JWTService {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &JWTService{secret: []byte(secret), ttl: ttl}
}

// Issue signs a token for the user.
func (s *JWTService) Issue(u *User, perms PermissionSet) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:      u.ID,
		Email:       u.Email,
		Name:        u.Name,
		Role:        u.RoleName,
		Permissions: perms,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.Email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", apperror.NewInternal(err)
	}
	return signed, nil
}

// Parse validates a token and returns its claims.
func (s *JWTService) Parse(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, apperror.NewUnauthorized("invalid or expired token")
	}
	return claims, nil
}
