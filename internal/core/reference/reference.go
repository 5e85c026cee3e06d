// Package reference holds the closed enumerations mirrored by the user_type and
// exeat_request_status lookup tables. Ids are stable and seeded at startup.
package reference

import (
	"fmt"
	"strings"

	errors "github.com/frahmantamala/exeat-management/internal"
)

type UserType int64

const (
	UserTypeAdmin             UserType = 1
	UserTypeStudent           UserType = 2
	UserTypeStaff             UserType = 3
	UserTypeSecurityOperative UserType = 4
)

var userTypeNames = map[UserType]string{
	UserTypeAdmin:             "admin",
	UserTypeStudent:           "student",
	UserTypeStaff:             "staff",
	UserTypeSecurityOperative: "security_operative",
}

func UserTypes() []UserType {
	return []UserType{UserTypeAdmin, UserTypeStudent, UserTypeStaff, UserTypeSecurityOperative}
}

func (t UserType) String() string {
	if name, ok := userTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("user_type(%d)", int64(t))
}

func (t UserType) Valid() bool {
	_, ok := userTypeNames[t]
	return ok
}

// ParseUserType maps a safe name ("student", "security_operative", ...) to its id.
func ParseUserType(name string) (UserType, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for id, n := range userTypeNames {
		if n == name {
			return id, nil
		}
	}
	return 0, errors.NewValidationFieldError("user_type", fmt.Sprintf("unknown user type %q", name), errors.ErrCodeInvalidUserType)
}

func UserTypeFromID(id int64) (UserType, error) {
	t := UserType(id)
	if !t.Valid() {
		return 0, errors.NewValidationError(fmt.Sprintf("unknown user type id %d", id), errors.ErrCodeInvalidUserType)
	}
	return t, nil
}

type ExeatStatus int64

const (
	StatusPending  ExeatStatus = 1
	StatusApproved ExeatStatus = 2
	StatusDenied   ExeatStatus = 3
)

var statusNames = map[ExeatStatus]string{
	StatusPending:  "pending",
	StatusApproved: "approved",
	StatusDenied:   "denied",
}

func ExeatStatuses() []ExeatStatus {
	return []ExeatStatus{StatusPending, StatusApproved, StatusDenied}
}

func (s ExeatStatus) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("status(%d)", int64(s))
}

func (s ExeatStatus) Valid() bool {
	_, ok := statusNames[s]
	return ok
}

func (s ExeatStatus) Terminal() bool {
	return s == StatusApproved || s == StatusDenied
}

func ParseExeatStatus(name string) (ExeatStatus, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for id, n := range statusNames {
		if n == name {
			return id, nil
		}
	}
	return 0, errors.NewValidationFieldError("status", fmt.Sprintf("unknown status %q", name), errors.ErrCodeInvalidStatus)
}

func ExeatStatusFromID(id int64) (ExeatStatus, error) {
	s := ExeatStatus(id)
	if !s.Valid() {
		return 0, errors.NewValidationError(fmt.Sprintf("unknown status id %d", id), errors.ErrCodeInvalidStatus)
	}
	return s, nil
}
