// Package profile resolves the role profile (student, staff or security
// operative) attached to a user account.
package profile

import (
	"context"
	"errors"
	"log/slog"

	"github.com/frahmantamala/exeat-management/internal"
	"github.com/frahmantamala/exeat-management/internal/core/reference"
	coreUser "github.com/frahmantamala/exeat-management/internal/core/user"
)

// Repository looks up profile rows by user id. Each method returns
// internal.ErrProfileNotFound when the row does not exist.
type Repository interface {
	GetStudentByUserID(ctx context.Context, userID int64) (*coreUser.Student, error)
	GetStaffByUserID(ctx context.Context, userID int64) (*coreUser.Staff, error)
	GetSecurityOperativeByUserID(ctx context.Context, userID int64) (*coreUser.SecurityOperative, error)
}

// Profile is the response of GET /account/profile.
type Profile struct {
	UserType string      `json:"user_type"`
	Profile  interface{} `json:"profile"`
}

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

func (s *Service) ResolveStudent(ctx context.Context, userID int64) (*coreUser.Student, error) {
	st, err := s.repo.GetStudentByUserID(ctx, userID)
	if err != nil {
		return nil, s.forbidden(err, userID, reference.UserTypeStudent)
	}
	return st, nil
}

func (s *Service) ResolveStaff(ctx context.Context, userID int64) (*coreUser.Staff, error) {
	st, err := s.repo.GetStaffByUserID(ctx, userID)
	if err != nil {
		return nil, s.forbidden(err, userID, reference.UserTypeStaff)
	}
	return st, nil
}

func (s *Service) ResolveSecurityOperative(ctx context.Context, userID int64) (*coreUser.SecurityOperative, error) {
	so, err := s.repo.GetSecurityOperativeByUserID(ctx, userID)
	if err != nil {
		return nil, s.forbidden(err, userID, reference.UserTypeSecurityOperative)
	}
	return so, nil
}

// GetProfile returns whichever profile the user has. Users without one (for
// example admins) get ErrProfileNotFound.
func (s *Service) GetProfile(ctx context.Context, userID int64) (*Profile, error) {
	if st, err := s.repo.GetStudentByUserID(ctx, userID); err == nil {
		return &Profile{UserType: reference.UserTypeStudent.String(), Profile: st}, nil
	} else if !errors.Is(err, internal.ErrProfileNotFound) {
		return nil, internal.NewInternalError("failed to load student profile", err)
	}

	if st, err := s.repo.GetStaffByUserID(ctx, userID); err == nil {
		return &Profile{UserType: reference.UserTypeStaff.String(), Profile: st}, nil
	} else if !errors.Is(err, internal.ErrProfileNotFound) {
		return nil, internal.NewInternalError("failed to load staff profile", err)
	}

	if so, err := s.repo.GetSecurityOperativeByUserID(ctx, userID); err == nil {
		return &Profile{UserType: reference.UserTypeSecurityOperative.String(), Profile: so}, nil
	} else if !errors.Is(err, internal.ErrProfileNotFound) {
		return nil, internal.NewInternalError("failed to load security profile", err)
	}

	s.logger.Warn("profile not found", "user_id", userID)
	return nil, internal.ErrProfileNotFound
}

func (s *Service) forbidden(err error, userID int64, role reference.UserType) error {
	if errors.Is(err, internal.ErrProfileNotFound) {
		return internal.ErrProfileForbidden
	}
	s.logger.Error("profile lookup failed", "error", err, "user_id", userID, "role", role.String())
	return internal.NewInternalError("failed to resolve profile", err)
}
