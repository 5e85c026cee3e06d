package auth

import (
	"regexp"
	"strings"

	errors "github.com/frahmantamala/exeat-management/internal"
	"github.com/frahmantamala/exeat-management/internal/core/common/validation"
	"github.com/frahmantamala/exeat-management/internal/core/reference"
)

var matriculationPattern = regexp.MustCompile(`^\d{4}/\d{4,5}$`)

const minPasswordLength = 8

// LoginDTO is the transport shape used by the HTTP handler to accept login requests.
type LoginDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (d LoginDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("email", d.Email).Required()
	v.Field("password", d.Password).Required()
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

// SignupDTO carries the account fields plus whichever profile fields the
// chosen user_type requires.
type SignupDTO struct {
	UserType    string `json:"user_type"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	PhoneNumber string `json:"phone_number"`

	MatriculationNumber  string `json:"matriculation_number,omitempty"`
	CourseOfStudy        string `json:"course_of_study,omitempty"`
	GuardianName         string `json:"guardian_name,omitempty"`
	GuardianPhoneNumber  string `json:"guardian_phone_number,omitempty"`
	GuardianRelationship string `json:"guardian_relationship,omitempty"`

	StaffID     string `json:"staff_id,omitempty"`
	SecurityID  string `json:"security_id,omitempty"`
	Designation string `json:"designation,omitempty"`
}

func (d *SignupDTO) Normalize() {
	d.Email = strings.TrimSpace(d.Email)
	d.FirstName = strings.TrimSpace(d.FirstName)
	d.LastName = strings.TrimSpace(d.LastName)
	d.PhoneNumber = strings.TrimSpace(d.PhoneNumber)
	d.MatriculationNumber = strings.TrimSpace(d.MatriculationNumber)
}

// Validate resolves the user type and checks the fields it requires. Admin
// accounts cannot be self-registered.
func (d SignupDTO) Validate() (reference.UserType, error) {
	userType, err := reference.ParseUserType(d.UserType)
	if err != nil {
		return 0, err
	}
	if userType == reference.UserTypeAdmin {
		return 0, errors.NewValidationFieldError("user_type", "Unsupported user type for profile creation.", errors.ErrCodeInvalidUserType)
	}

	v := validation.NewValidator()
	v.Field("email", d.Email).Required().Email()
	v.Field("password", d.Password).Required().MinLength(minPasswordLength)
	v.Field("first_name", d.FirstName).Required().MaxLength(100)
	v.Field("last_name", d.LastName).Required().MaxLength(100)
	v.Field("phone_number", d.PhoneNumber).Required().MaxLength(32)

	switch userType {
	case reference.UserTypeStudent:
		v.Field("matriculation_number", d.MatriculationNumber).
			Required().
			Matches(matriculationPattern, "matriculation_number must look like 2020/12345", errors.ErrCodeInvalidMatric)
		v.Field("course_of_study", d.CourseOfStudy).Required()
		v.Field("guardian_name", d.GuardianName).Required()
		v.Field("guardian_phone_number", d.GuardianPhoneNumber).Required()
		v.Field("guardian_relationship", d.GuardianRelationship).Required()
	case reference.UserTypeStaff:
		v.Field("staff_id", d.StaffID).Required()
		v.Field("designation", d.Designation).Required()
	case reference.UserTypeSecurityOperative:
		v.Field("security_id", d.SecurityID).Required()
		v.Field("designation", d.Designation).Required()
	}

	if err := v.Validate(); err != nil {
		return 0, err
	}
	return userType, nil
}
