package postgres

import (
	"context"
	"errors"

	"github.com/frahmantamala/exeat-management/internal"
	userDatamodel "github.com/frahmantamala/exeat-management/internal/core/datamodel/user"
	coreUser "github.com/frahmantamala/exeat-management/internal/core/user"
	"gorm.io/gorm"
)

// ProfileRepository implements profile.Repository using GORM
type ProfileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// GetStudentByUserID loads the student row together with its guardian.
func (r *ProfileRepository) GetStudentByUserID(ctx context.Context, userID int64) (*coreUser.Student, error) {
	var row userDatamodel.Student
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&row).Error; err != nil {
		return nil, notFound(err)
	}

	var guardian userDatamodel.Guardian
	err := r.db.WithContext(ctx).Where("id = ?", row.GuardianID).First(&guardian).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return coreUser.StudentFromDataModel(&row, nil), nil
		}
		return nil, err
	}
	return coreUser.StudentFromDataModel(&row, &guardian), nil
}

func (r *ProfileRepository) GetStaffByUserID(ctx context.Context, userID int64) (*coreUser.Staff, error) {
	var row userDatamodel.Staff
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&row).Error; err != nil {
		return nil, notFound(err)
	}
	return coreUser.StaffFromDataModel(&row), nil
}

func (r *ProfileRepository) GetSecurityOperativeByUserID(ctx context.Context, userID int64) (*coreUser.SecurityOperative, error) {
	var row userDatamodel.SecurityOperative
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&row).Error; err != nil {
		return nil, notFound(err)
	}
	return coreUser.SecurityOperativeFromDataModel(&row), nil
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return internal.ErrProfileNotFound
	}
	return err
}
