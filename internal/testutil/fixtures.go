package testutil

import (
	"time"

	userDatamodel "github.com/frahmantamala/exeat-management/internal/core/datamodel/user"
	"github.com/frahmantamala/exeat-management/internal/core/reference"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DefaultPassword is the plain-text password of every fixture account.
const DefaultPassword = "password123"

// Joined is the time_joined stamped on fixture accounts.
var Joined = time.Date(2026, 1, 5, 8, 0, 0, 0, time.UTC)

func newUser(tx *gorm.DB, email string, userType reference.UserType) (*userDatamodel.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.MinCost)
	if err != nil {
		return nil, err
	}
	u := &userDatamodel.User{
		FirstName:      "Test",
		LastName:       userType.String(),
		Email:          email,
		PhoneNumber:    "+2348000000000",
		HashedPassword: hash,
		IsActive:       true,
		UserTypeID:     int64(userType),
		TimeJoined:     Joined,
	}
	return u, tx.Create(u).Error
}

func CreateStudent(db *gorm.DB, email string) (*userDatamodel.User, *userDatamodel.Student, error) {
	var (
		u  *userDatamodel.User
		st *userDatamodel.Student
	)
	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		if u, err = newUser(tx, email, reference.UserTypeStudent); err != nil {
			return err
		}
		g := &userDatamodel.Guardian{Name: "Guardian of " + email, PhoneNumber: "+2348011111111"}
		if err := tx.Create(g).Error; err != nil {
			return err
		}
		st = &userDatamodel.Student{
			UserID:               u.ID,
			MatriculationNumber:  "2021/12345",
			CourseOfStudy:        "Computer Science",
			GuardianID:           g.ID,
			GuardianRelationship: "parent",
		}
		return tx.Create(st).Error
	})
	return u, st, err
}

func CreateStaff(db *gorm.DB, email string) (*userDatamodel.User, *userDatamodel.Staff, error) {
	var (
		u  *userDatamodel.User
		st *userDatamodel.Staff
	)
	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		if u, err = newUser(tx, email, reference.UserTypeStaff); err != nil {
			return err
		}
		st = &userDatamodel.Staff{UserID: u.ID, StaffID: "STF-" + email, Designation: "Hall warden"}
		return tx.Create(st).Error
	})
	return u, st, err
}

func CreateSecurityOperative(db *gorm.DB, email string) (*userDatamodel.User, *userDatamodel.SecurityOperative, error) {
	var (
		u  *userDatamodel.User
		so *userDatamodel.SecurityOperative
	)
	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		if u, err = newUser(tx, email, reference.UserTypeSecurityOperative); err != nil {
			return err
		}
		so = &userDatamodel.SecurityOperative{UserID: u.ID, SecurityID: "SEC-" + email, Designation: "Gate officer"}
		return tx.Create(so).Error
	})
	return u, so, err
}

// CreateAdmin inserts a user with no profile row.
func CreateAdmin(db *gorm.DB, email string) (*userDatamodel.User, error) {
	return newUser(db, email, reference.UserTypeAdmin)
}
