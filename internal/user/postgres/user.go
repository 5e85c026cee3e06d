package postgres

import (
	"context"
	"errors"

	"github.com/frahmantamala/exeat-management/internal"
	exeatDatamodel "github.com/frahmantamala/exeat-management/internal/core/datamodel/exeat"
	userDatamodel "github.com/frahmantamala/exeat-management/internal/core/datamodel/user"
	coreUser "github.com/frahmantamala/exeat-management/internal/core/user"
	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*coreUser.User, error) {
	var row userDatamodel.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrUserNotFound
		}
		return nil, err
	}
	return coreUser.FromDataModel(&row), nil
}

func (r *UserRepository) EmailTaken(ctx context.Context, email string, exceptUserID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&userDatamodel.User{}).
		Where("email = ? AND id <> ?", email, exceptUserID).
		Count(&count).Error
	return count > 0, err
}

// UpdateInfo writes the personal fields only.
func (r *UserRepository) UpdateInfo(ctx context.Context, u *coreUser.User) error {
	err := r.db.WithContext(ctx).Model(&userDatamodel.User{}).
		Where("id = ?", u.ID).
		Updates(map[string]interface{}{
			"first_name": u.FirstName,
			"last_name":  u.LastName,
			"email":      u.Email,
		}).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return internal.ErrEmailTaken
	}
	return err
}

func (r *UserRepository) UpdatePassword(ctx context.Context, userID int64, hash []byte) error {
	return r.db.WithContext(ctx).Model(&userDatamodel.User{}).
		Where("id = ?", userID).
		Update("hashed_password", hash).Error
}

func (r *UserRepository) SetProfilePicture(ctx context.Context, userID int64, pictureID string) error {
	return r.db.WithContext(ctx).Model(&userDatamodel.User{}).
		Where("id = ?", userID).
		Update("profile_picture_id", pictureID).Error
}

// Delete removes the account and everything hanging off it. Exeats filed by
// a student go with the student; exeats reviewed by a staff member keep their
// status but lose the reviewer reference. Guardians shared with another
// student are kept.
func (r *UserRepository) Delete(ctx context.Context, userID int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var student userDatamodel.Student
		err := tx.Where("user_id = ?", userID).First(&student).Error
		switch {
		case err == nil:
			if err := tx.Where("student_id = ?", student.ID).Delete(&exeatDatamodel.ExeatRequest{}).Error; err != nil {
				return err
			}
			if err := tx.Delete(&student).Error; err != nil {
				return err
			}
			var siblings int64
			if err := tx.Model(&userDatamodel.Student{}).Where("guardian_id = ?", student.GuardianID).Count(&siblings).Error; err != nil {
				return err
			}
			if siblings == 0 {
				if err := tx.Where("id = ?", student.GuardianID).Delete(&userDatamodel.Guardian{}).Error; err != nil {
					return err
				}
			}
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return err
		}

		var staff userDatamodel.Staff
		err = tx.Where("user_id = ?", userID).First(&staff).Error
		switch {
		case err == nil:
			if err := tx.Model(&exeatDatamodel.ExeatRequest{}).
				Where("staff_id = ?", staff.ID).
				Update("staff_id", nil).Error; err != nil {
				return err
			}
			if err := tx.Delete(&staff).Error; err != nil {
				return err
			}
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return err
		}

		if err := tx.Where("user_id = ?", userID).Delete(&userDatamodel.SecurityOperative{}).Error; err != nil {
			return err
		}

		res := tx.Where("id = ?", userID).Delete(&userDatamodel.User{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return internal.ErrUserNotFound
		}
		return nil
	})
}
