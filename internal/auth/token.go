package auth

import (
	"fmt"
	"time"

	"github.com/frahmantamala/exeat-management/internal"
	"github.com/golang-jwt/jwt/v5"
)

type JWTTokenGenerator struct {
	Secret         []byte
	AccessTokenTTL time.Duration
	now            func() time.Time
}

func NewJWTTokenGenerator(secret string, accessTTL time.Duration) *JWTTokenGenerator {
	if accessTTL <= 0 {
		accessTTL = 30 * time.Minute
	}
	return &JWTTokenGenerator{
		Secret:         []byte(secret),
		AccessTokenTTL: accessTTL,
		now:            time.Now,
	}
}

func (j *JWTTokenGenerator) TTL() time.Duration {
	return j.AccessTokenTTL
}

// GenerateAccessToken signs an HS256 token with sub=email and exp = iat + TTL.
func (j *JWTTokenGenerator) GenerateAccessToken(email string) (IssuedToken, error) {
	issuedAt := j.now().UTC().Truncate(time.Second)
	expiresAt := issuedAt.Add(j.AccessTokenTTL)

	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(j.Secret)
	if err != nil {
		return IssuedToken{}, fmt.Errorf("sign access token: %w", err)
	}

	return IssuedToken{Token: tokenString, IssuedAt: issuedAt, ExpiresAt: expiresAt}, nil
}

// ValidateToken verifies signature and expiry. Every failure maps to
// ErrNotAuthenticated so callers cannot tell the reasons apart.
func (j *JWTTokenGenerator) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return j.Secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(j.now),
	)
	if err != nil {
		return nil, internal.ErrNotAuthenticated.WithCause(err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject == "" || claims.IssuedAt == nil {
		return nil, internal.ErrNotAuthenticated
	}
	return claims, nil
}
