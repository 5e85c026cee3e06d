package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/frahmantamala/exeat-management/internal"
	"github.com/frahmantamala/exeat-management/internal/core/reference"
	coreUser "github.com/frahmantamala/exeat-management/internal/core/user"
	"github.com/frahmantamala/exeat-management/internal/revocation"
	"golang.org/x/crypto/bcrypt"
)

const TokenTypeBearer = "bearer"

// Service is the main auth service with dependencies
type Service struct {
	repo           Repository
	ledger         revocation.Ledger
	tokenGenerator TokenGenerator
	bcryptCost     int
	logger         *slog.Logger
	now            func() time.Time
}

// NewService creates a new auth service
func NewService(repo Repository, ledger revocation.Ledger, tokenGen TokenGenerator, bcryptCost int, logger *slog.Logger) *Service {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		repo:           repo,
		ledger:         ledger,
		tokenGenerator: tokenGen,
		bcryptCost:     bcryptCost,
		logger:         logger,
		now:            time.Now,
	}
}

// Authenticate checks an email/password pair and issues an access token.
// Unknown emails and wrong passwords fail the same way.
func (s *Service) Authenticate(ctx context.Context, dto LoginDTO) (*AccessTokenResponse, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	u, err := s.repo.GetUserByEmail(ctx, dto.Email)
	if err != nil {
		if errors.Is(err, internal.ErrUserNotFound) {
			s.logger.Warn("invalid login attempt", "email", dto.Email)
			return nil, internal.ErrInvalidCredentials
		}
		return nil, internal.NewInternalError("failed to load user", err)
	}

	if !s.VerifyPassword(dto.Password, u.HashedPassword) {
		s.logger.Warn("invalid login attempt", "email", dto.Email)
		return nil, internal.ErrInvalidCredentials
	}

	resp, err := s.issue(u.Email)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user logged in", "user_id", u.ID)
	return resp, nil
}

// Signup creates the user, its profile and (for students) the guardian in a
// single transaction, then logs the new user in.
func (s *Service) Signup(ctx context.Context, dto SignupDTO) (*SignupResponse, error) {
	dto.Normalize()
	userType, err := dto.Validate()
	if err != nil {
		return nil, err
	}

	taken, err := s.repo.EmailExists(ctx, dto.Email)
	if err != nil {
		return nil, internal.NewInternalError("failed to check email", err)
	}
	if taken {
		return nil, internal.ErrEmailTaken
	}

	hash, err := s.HashPassword(dto.Password)
	if err != nil {
		return nil, internal.NewInternalError("failed to hash password", err)
	}

	account := &NewAccount{
		User: &coreUser.User{
			FirstName:      dto.FirstName,
			LastName:       dto.LastName,
			Email:          dto.Email,
			PhoneNumber:    dto.PhoneNumber,
			HashedPassword: hash,
			IsActive:       true,
			UserType:       userType,
			// iat has second precision; a token minted right after signup must not predate the account
			TimeJoined: s.now().UTC().Truncate(time.Second),
		},
	}
	switch userType {
	case reference.UserTypeStudent:
		account.Guardian = &coreUser.Guardian{Name: dto.GuardianName, PhoneNumber: dto.GuardianPhoneNumber}
		account.Student = &coreUser.Student{
			MatriculationNumber:  dto.MatriculationNumber,
			CourseOfStudy:        dto.CourseOfStudy,
			GuardianRelationship: dto.GuardianRelationship,
		}
	case reference.UserTypeStaff:
		account.Staff = &coreUser.Staff{StaffID: dto.StaffID, Designation: dto.Designation}
	case reference.UserTypeSecurityOperative:
		account.SecurityOperative = &coreUser.SecurityOperative{SecurityID: dto.SecurityID, Designation: dto.Designation}
	}

	created, err := s.repo.CreateAccount(ctx, account)
	if err != nil {
		if errors.Is(err, internal.ErrEmailTaken) {
			return nil, internal.ErrEmailTaken
		}
		s.logger.Error("signup failed", "error", err, "email", dto.Email)
		return nil, internal.NewInternalError("failed to create account", err)
	}

	token, err := s.issue(created.Email)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user signed up", "user_id", created.ID, "user_type", userType.String())
	return &SignupResponse{AccessTokenResponse: *token, User: created.ToView()}, nil
}

// ResolveIdentity turns a bearer token into the user it was issued to. The
// token must verify, must not be revoked, must name an existing user and must
// not predate that user's account.
func (s *Service) ResolveIdentity(ctx context.Context, token string) (*coreUser.User, error) {
	if token == "" {
		return nil, internal.ErrNotAuthenticated
	}

	claims, err := s.tokenGenerator.ValidateToken(token)
	if err != nil {
		return nil, internal.ErrNotAuthenticated
	}

	revoked, err := s.ledger.IsRevoked(ctx, revocation.Signature(token))
	if err != nil {
		return nil, internal.NewInternalError("failed to check token revocation", err)
	}
	if revoked {
		return nil, internal.ErrNotAuthenticated
	}

	u, err := s.repo.GetUserByEmail(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, internal.ErrUserNotFound) {
			return nil, internal.ErrNotAuthenticated
		}
		return nil, internal.NewInternalError("failed to load user", err)
	}

	if u.TimeJoined.After(claims.IssuedAt.Time) {
		return nil, internal.ErrNotAuthenticated
	}

	return u, nil
}

// Revoke records the token's signature until the token would have expired.
func (s *Service) Revoke(ctx context.Context, token string) error {
	claims, err := s.tokenGenerator.ValidateToken(token)
	if err != nil {
		return internal.ErrNotAuthenticated
	}

	if err := s.ledger.Revoke(ctx, revocation.Signature(token), claims.ExpiresAt.Time); err != nil {
		return internal.NewInternalError("failed to revoke token", err)
	}

	s.logger.Info("token revoked", "subject", claims.Subject)
	return nil
}

// HashPassword creates a bcrypt hash of the password
func (s *Service) HashPassword(password string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
}

func (s *Service) VerifyPassword(password string, hash []byte) bool {
	return bcrypt.CompareHashAndPassword(hash, []byte(password)) == nil
}

func (s *Service) issue(email string) (*AccessTokenResponse, error) {
	issued, err := s.tokenGenerator.GenerateAccessToken(email)
	if err != nil {
		return nil, internal.NewInternalError("failed to issue token", err)
	}
	return &AccessTokenResponse{
		AccessToken: issued.Token,
		TokenType:   TokenTypeBearer,
		ExpiresIn:   int64(s.tokenGenerator.TTL().Seconds()),
	}, nil
}
