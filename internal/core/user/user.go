// Package user holds the account and profile domain types shared by the auth,
// profile and account packages.
package user

import (
	"path"
	"time"

	userDatamodel "github.com/frahmantamala/exeat-management/internal/core/datamodel/user"
	"github.com/frahmantamala/exeat-management/internal/core/reference"
)

// ProfilePictureURLPrefix is where stored profile pictures are served from.
const ProfilePictureURLPrefix = "/static/profile_pictures"

type User struct {
	ID               int64
	FirstName        string
	LastName         string
	Email            string
	PhoneNumber      string
	HashedPassword   []byte
	IsActive         bool
	IsVerified       bool
	UserType         reference.UserType
	ProfilePictureID *string
	TimeJoined       time.Time
}

// View is the public representation of an account.
type View struct {
	ID             int64     `json:"id"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	Email          string    `json:"email"`
	PhoneNumber    string    `json:"phone_number"`
	UserType       string    `json:"user_type"`
	IsActive       bool      `json:"is_active"`
	IsVerified     bool      `json:"is_verified"`
	ProfilePicture *string   `json:"profile_picture"`
	TimeJoined     time.Time `json:"time_joined"`
}

func (u *User) ToView() View {
	var picture *string
	if u.ProfilePictureID != nil && *u.ProfilePictureID != "" {
		p := path.Join(ProfilePictureURLPrefix, *u.ProfilePictureID)
		picture = &p
	}
	return View{
		ID:             u.ID,
		FirstName:      u.FirstName,
		LastName:       u.LastName,
		Email:          u.Email,
		PhoneNumber:    u.PhoneNumber,
		UserType:       u.UserType.String(),
		IsActive:       u.IsActive,
		IsVerified:     u.IsVerified,
		ProfilePicture: picture,
		TimeJoined:     u.TimeJoined,
	}
}

type Guardian struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	PhoneNumber string `json:"phone_number"`
}

type Student struct {
	ID                   int64     `json:"id"`
	UserID               int64     `json:"user_id"`
	MatriculationNumber  string    `json:"matriculation_number"`
	CourseOfStudy        string    `json:"course_of_study"`
	GuardianID           int64     `json:"guardian_id"`
	GuardianRelationship string    `json:"guardian_relationship"`
	Guardian             *Guardian `json:"guardian,omitempty"`
}

type Staff struct {
	ID          int64  `json:"id"`
	UserID      int64  `json:"user_id"`
	StaffID     string `json:"staff_id"`
	Designation string `json:"designation"`
}

type SecurityOperative struct {
	ID          int64  `json:"id"`
	UserID      int64  `json:"user_id"`
	SecurityID  string `json:"security_id"`
	Designation string `json:"designation"`
}

func FromDataModel(m *userDatamodel.User) *User {
	return &User{
		ID:               m.ID,
		FirstName:        m.FirstName,
		LastName:         m.LastName,
		Email:            m.Email,
		PhoneNumber:      m.PhoneNumber,
		HashedPassword:   m.HashedPassword,
		IsActive:         m.IsActive,
		IsVerified:       m.IsVerified,
		UserType:         reference.UserType(m.UserTypeID),
		ProfilePictureID: m.ProfilePictureID,
		TimeJoined:       m.TimeJoined,
	}
}

func ToDataModel(u *User) *userDatamodel.User {
	return &userDatamodel.User{
		ID:               u.ID,
		FirstName:        u.FirstName,
		LastName:         u.LastName,
		Email:            u.Email,
		PhoneNumber:      u.PhoneNumber,
		HashedPassword:   u.HashedPassword,
		IsActive:         u.IsActive,
		IsVerified:       u.IsVerified,
		UserTypeID:       int64(u.UserType),
		ProfilePictureID: u.ProfilePictureID,
		TimeJoined:       u.TimeJoined,
	}
}

func StudentFromDataModel(m *userDatamodel.Student, g *userDatamodel.Guardian) *Student {
	s := &Student{
		ID:                   m.ID,
		UserID:               m.UserID,
		MatriculationNumber:  m.MatriculationNumber,
		CourseOfStudy:        m.CourseOfStudy,
		GuardianID:           m.GuardianID,
		GuardianRelationship: m.GuardianRelationship,
	}
	if g != nil {
		s.Guardian = &Guardian{ID: g.ID, Name: g.Name, PhoneNumber: g.PhoneNumber}
	}
	return s
}

func StaffFromDataModel(m *userDatamodel.Staff) *Staff {
	return &Staff{
		ID:          m.ID,
		UserID:      m.UserID,
		StaffID:     m.StaffID,
		Designation: m.Designation,
	}
}

func SecurityOperativeFromDataModel(m *userDatamodel.SecurityOperative) *SecurityOperative {
	return &SecurityOperative{
		ID:          m.ID,
		UserID:      m.UserID,
		SecurityID:  m.SecurityID,
		Designation: m.Designation,
	}
}
