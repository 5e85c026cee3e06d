package user

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"path"
	"strings"

	"github.com/frahmantamala/exeat-management/internal"
	coreUser "github.com/frahmantamala/exeat-management/internal/core/user"
	"github.com/frahmantamala/exeat-management/internal/profile"
	"github.com/google/uuid"
)

// Repository is the account storage behind /account.
type Repository interface {
	GetByID(ctx context.Context, id int64) (*coreUser.User, error)
	EmailTaken(ctx context.Context, email string, exceptUserID int64) (bool, error)
	UpdateInfo(ctx context.Context, u *coreUser.User) error
	UpdatePassword(ctx context.Context, userID int64, hash []byte) error
	SetProfilePicture(ctx context.Context, userID int64, pictureID string) error
	// Delete removes the user, its profile rows and owned exeat requests in
	// one transaction.
	Delete(ctx context.Context, userID int64) error
}

// PasswordHasher is implemented by auth.Service.
type PasswordHasher interface {
	HashPassword(password string) ([]byte, error)
	VerifyPassword(password string, hash []byte) bool
}

type ProfileReader interface {
	GetProfile(ctx context.Context, userID int64) (*profile.Profile, error)
}

// PictureStore persists profile picture files by name.
type PictureStore interface {
	Save(ctx context.Context, name string, data []byte) error
	Remove(name string) error
}

var pictureExtensions = map[string]string{
	"image/jpeg": "jpeg",
	"image/png":  "png",
	"image/webp": "webp",
}

type Service struct {
	repo           Repository
	hasher         PasswordHasher
	profiles       ProfileReader
	pictures       PictureStore
	maxPictureSize int64
	logger         *slog.Logger
}

func NewService(repo Repository, hasher PasswordHasher, profiles ProfileReader, pictures PictureStore, maxPictureSize int64, logger *slog.Logger) *Service {
	return &Service{
		repo:           repo,
		hasher:         hasher,
		profiles:       profiles,
		pictures:       pictures,
		maxPictureSize: maxPictureSize,
		logger:         logger,
	}
}

func (s *Service) MaxPictureSize() int64 {
	return s.maxPictureSize
}

func (s *Service) GetAccount(ctx context.Context, userID int64) (*coreUser.View, error) {
	u, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	s.logger.Info("account info accessed", "user_id", userID)
	v := u.ToView()
	return &v, nil
}

// UpdateAccount applies whichever fields are set. An empty update changes
// nothing and returns the current account.
func (s *Service) UpdateAccount(ctx context.Context, userID int64, dto UpdateAccountDTO) (*coreUser.View, error) {
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	u, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	if dto.Empty() {
		s.logger.Warn("account update without changes", "user_id", userID)
		v := u.ToView()
		return &v, nil
	}

	if dto.Email != nil && !strings.EqualFold(*dto.Email, u.Email) {
		taken, err := s.repo.EmailTaken(ctx, *dto.Email, userID)
		if err != nil {
			return nil, internal.NewInternalError("failed to check email", err)
		}
		if taken {
			return nil, internal.ErrEmailTaken
		}
	}

	if dto.FirstName != nil {
		u.FirstName = *dto.FirstName
	}
	if dto.LastName != nil {
		u.LastName = *dto.LastName
	}
	if dto.Email != nil {
		u.Email = *dto.Email
	}

	if err := s.repo.UpdateInfo(ctx, u); err != nil {
		if errors.Is(err, internal.ErrEmailTaken) {
			return nil, internal.ErrEmailTaken
		}
		s.logger.Error("failed to update account", "error", err, "user_id", userID)
		return nil, internal.NewInternalError("failed to update account", err)
	}

	s.logger.Info("account information updated", "user_id", userID)
	v := u.ToView()
	return &v, nil
}

func (s *Service) ChangePassword(ctx context.Context, userID int64, dto ChangePasswordDTO) error {
	if err := dto.Validate(); err != nil {
		return err
	}

	u, err := s.load(ctx, userID)
	if err != nil {
		return err
	}

	if !s.hasher.VerifyPassword(dto.OldPassword, u.HashedPassword) {
		s.logger.Warn("incorrect old password", "user_id", userID)
		return internal.ErrIncorrectPassword
	}

	hash, err := s.hasher.HashPassword(dto.NewPassword)
	if err != nil {
		return internal.NewInternalError("failed to hash password", err)
	}
	if err := s.repo.UpdatePassword(ctx, userID, hash); err != nil {
		s.logger.Error("failed to update password", "error", err, "user_id", userID)
		return internal.NewInternalError("failed to update password", err)
	}

	s.logger.Info("password changed", "user_id", userID)
	return nil
}

func (s *Service) DeleteAccount(ctx context.Context, userID int64) error {
	u, err := s.load(ctx, userID)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, userID); err != nil {
		if errors.Is(err, internal.ErrUserNotFound) {
			return internal.ErrUserNotFound
		}
		s.logger.Error("failed to delete account", "error", err, "user_id", userID)
		return internal.NewInternalError("failed to delete account", err)
	}

	if u.ProfilePictureID != nil {
		if err := s.pictures.Remove(*u.ProfilePictureID); err != nil {
			s.logger.Warn("failed to remove profile picture", "error", err, "user_id", userID)
		}
	}

	s.logger.Info("account deleted", "user_id", userID)
	return nil
}

func (s *Service) GetProfile(ctx context.Context, userID int64) (*profile.Profile, error) {
	p, err := s.profiles.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	s.logger.Info("profile retrieved", "user_id", userID, "user_type", p.UserType)
	return p, nil
}

// UploadProfilePicture stores a JPEG, PNG or WebP image as the user's
// picture. The picture keeps its identifier across uploads.
func (s *Service) UploadProfilePicture(ctx context.Context, userID int64, data []byte) error {
	if int64(len(data)) > s.maxPictureSize {
		return internal.ErrPictureTooLarge
	}
	ext, ok := pictureExtensions[http.DetectContentType(data)]
	if !ok {
		return internal.ErrUnsupportedMedia
	}

	u, err := s.load(ctx, userID)
	if err != nil {
		return err
	}

	id := uuid.NewString()
	var previous string
	if u.ProfilePictureID != nil && *u.ProfilePictureID != "" {
		previous = *u.ProfilePictureID
		id = strings.TrimSuffix(previous, path.Ext(previous))
	}
	name := id + "." + ext

	if err := s.pictures.Save(ctx, name, data); err != nil {
		s.logger.Error("failed to store profile picture", "error", err, "user_id", userID)
		return internal.NewInternalError("failed to store profile picture", err)
	}
	if err := s.repo.SetProfilePicture(ctx, userID, name); err != nil {
		s.logger.Error("failed to record profile picture", "error", err, "user_id", userID)
		return internal.NewInternalError("failed to record profile picture", err)
	}
	if previous != "" && previous != name {
		if err := s.pictures.Remove(previous); err != nil {
			s.logger.Warn("failed to remove old profile picture", "error", err, "user_id", userID)
		}
	}

	s.logger.Info("profile picture uploaded", "user_id", userID, "picture", name)
	return nil
}

func (s *Service) load(ctx context.Context, userID int64) (*coreUser.User, error) {
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, internal.ErrUserNotFound) {
			return nil, internal.ErrUserNotFound
		}
		return nil, internal.NewInternalError("failed to load account", err)
	}
	return u, nil
}
