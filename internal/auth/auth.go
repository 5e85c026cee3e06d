package auth

import (
	"context"
	"time"

	coreUser "github.com/frahmantamala/exeat-management/internal/core/user"
	"github.com/golang-jwt/jwt/v5"
)

// Claims carries the subject email plus iat/exp.
type Claims struct {
	jwt.RegisteredClaims
}

// IssuedToken is a freshly signed access token and its validity window.
type IssuedToken struct {
	Token     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenGenerator signs and decodes access tokens.
type TokenGenerator interface {
	GenerateAccessToken(email string) (IssuedToken, error)
	ValidateToken(tokenString string) (*Claims, error)
	TTL() time.Duration
}

// Repository is the account storage the auth flows need.
type Repository interface {
	GetUserByEmail(ctx context.Context, email string) (*coreUser.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	CreateAccount(ctx context.Context, account *NewAccount) (*coreUser.User, error)
}

// ServiceAPI is what the HTTP layer calls.
type ServiceAPI interface {
	Authenticate(ctx context.Context, dto LoginDTO) (*AccessTokenResponse, error)
	Signup(ctx context.Context, dto SignupDTO) (*SignupResponse, error)
	ResolveIdentity(ctx context.Context, token string) (*coreUser.User, error)
	Revoke(ctx context.Context, token string) error
}

type AccessTokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

type SignupResponse struct {
	AccessTokenResponse
	User coreUser.View `json:"user"`
}

// NewAccount is everything signup writes in one transaction: the user row, and
// the matching profile (plus guardian for students).
type NewAccount struct {
	User              *coreUser.User
	Guardian          *coreUser.Guardian
	Student           *coreUser.Student
	Staff             *coreUser.Staff
	SecurityOperative *coreUser.SecurityOperative
}
