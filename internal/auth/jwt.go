// jwt.go handles access token creation, signing, and verification. Tokens are
// never persisted: validity is purely a function of signature and expiry.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for any token that is malformed, mis-signed,
// expired, or carries the wrong signing algorithm.
var ErrInvalidToken = errors.New("invalid or expired token")

// Claims carries the admin identity an access token asserts: the admin's
// email and the organization they are authorized to act on.
type Claims struct {
	Email            string `json:"email"`
	OrganizationName string `json:"org"`
	jwt.RegisteredClaims
}

// TokenService signs and verifies access tokens. The signing key, algorithm,
// and token lifetime are process-wide configuration, not request-scoped; the
// service is constructed once at startup and shared.
type TokenService struct {
	secret []byte
	method jwt.SigningMethod
	expiry time.Duration
}

// NewTokenService creates a token service from configuration. The secret is
// required and the algorithm must be one of the HMAC family.
func NewTokenService(secret, algorithm string, expiry time.Duration) (*TokenService, error) {
	if secret == "" {
		return nil, errors.New("jwt secret is required; generate one with: openssl rand -hex 32")
	}

	var method jwt.SigningMethod
	switch algorithm {
	case "HS256":
		method = jwt.SigningMethodHS256
	case "HS384":
		method = jwt.SigningMethodHS384
	case "HS512":
		method = jwt.SigningMethodHS512
	default:
		return nil, fmt.Errorf("unsupported signing algorithm: %s", algorithm)
	}

	if expiry <= 0 {
		expiry = 30 * time.Minute
	}

	return &TokenService{secret: []byte(secret), method: method, expiry: expiry}, nil
}

// Issue creates a signed access token for an authenticated admin, embedding
// the email and organization-name claims plus the configured expiry.
func (s *TokenService) Issue(email, organizationName string) (string, error) {
	now := time.Now()
	claims := &Claims{
		Email:            email,
		OrganizationName: organizationName,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "org-registry",
			Subject:   email,
		},
	}

	return jwt.NewWithClaims(s.method, claims).SignedString(s.secret)
}

// Resolve parses and validates an access token and returns its claims. Any
// failure (bad signature, wrong algorithm, malformed token, expiry) is
// reported as ErrInvalidToken.
func (s *TokenService) Resolve(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// Expiry returns the configured token lifetime.
func (s *TokenService) Expiry() time.Duration {
	return s.expiry
}
