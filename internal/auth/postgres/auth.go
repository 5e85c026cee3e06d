package postgres

import (
	"context"
	"errors"

	"github.com/frahmantamala/exeat-management/internal"
	"github.com/frahmantamala/exeat-management/internal/auth"
	userDatamodel "github.com/frahmantamala/exeat-management/internal/core/datamodel/user"
	coreUser "github.com/frahmantamala/exeat-management/internal/core/user"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db: db,
	}
}

func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*coreUser.User, error) {
	var row userDatamodel.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrUserNotFound
		}
		return nil, err
	}
	return coreUser.FromDataModel(&row), nil
}

func (r *Repository) EmailExists(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&userDatamodel.User{}).Where("email = ?", email).Count(&count).Error
	return count > 0, err
}

// CreateAccount writes the user and its profile atomically; if any insert
// fails nothing is left behind.
func (r *Repository) CreateAccount(ctx context.Context, account *auth.NewAccount) (*coreUser.User, error) {
	userRow := coreUser.ToDataModel(account.User)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(userRow).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return internal.ErrEmailTaken
			}
			return err
		}

		switch {
		case account.Student != nil:
			if account.Guardian == nil {
				return errors.New("student account without guardian")
			}
			guardianRow := &userDatamodel.Guardian{
				Name:        account.Guardian.Name,
				PhoneNumber: account.Guardian.PhoneNumber,
			}
			if err := tx.Create(guardianRow).Error; err != nil {
				return err
			}
			account.Guardian.ID = guardianRow.ID

			studentRow := &userDatamodel.Student{
				UserID:               userRow.ID,
				MatriculationNumber:  account.Student.MatriculationNumber,
				CourseOfStudy:        account.Student.CourseOfStudy,
				GuardianID:           guardianRow.ID,
				GuardianRelationship: account.Student.GuardianRelationship,
			}
			if err := tx.Create(studentRow).Error; err != nil {
				return err
			}
			account.Student.ID = studentRow.ID
			account.Student.UserID = userRow.ID
			account.Student.GuardianID = guardianRow.ID

		case account.Staff != nil:
			staffRow := &userDatamodel.Staff{
				UserID:      userRow.ID,
				StaffID:     account.Staff.StaffID,
				Designation: account.Staff.Designation,
			}
			if err := tx.Create(staffRow).Error; err != nil {
				return err
			}
			account.Staff.ID = staffRow.ID
			account.Staff.UserID = userRow.ID

		case account.SecurityOperative != nil:
			secRow := &userDatamodel.SecurityOperative{
				UserID:      userRow.ID,
				SecurityID:  account.SecurityOperative.SecurityID,
				Designation: account.SecurityOperative.Designation,
			}
			if err := tx.Create(secRow).Error; err != nil {
				return err
			}
			account.SecurityOperative.ID = secRow.ID
			account.SecurityOperative.UserID = userRow.ID

		default:
			return errors.New("account has no profile")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return coreUser.FromDataModel(userRow), nil
}
