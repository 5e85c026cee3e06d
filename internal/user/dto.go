package user

import (
	"strings"

	errors "github.com/frahmantamala/exeat-management/internal"
	"github.com/frahmantamala/exeat-management/internal/core/common/validation"
)

const minPasswordLength = 8

// UpdateAccountDTO carries the optional personal fields a user may change.
type UpdateAccountDTO struct {
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	Email     *string `json:"email,omitempty"`
}

func (dto *UpdateAccountDTO) Normalize() {
	for _, f := range []*string{dto.FirstName, dto.LastName, dto.Email} {
		if f != nil {
			*f = strings.TrimSpace(*f)
		}
	}
}

func (dto UpdateAccountDTO) Empty() bool {
	return dto.FirstName == nil && dto.LastName == nil && dto.Email == nil
}

func (dto UpdateAccountDTO) Validate() error {
	v := validation.NewValidator()
	if dto.FirstName != nil {
		v.Field("first_name", *dto.FirstName).Required().MaxLength(100)
	}
	if dto.LastName != nil {
		v.Field("last_name", *dto.LastName).Required().MaxLength(100)
	}
	if dto.Email != nil {
		v.Field("email", *dto.Email).Required().Email()
	}
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

type ChangePasswordDTO struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

func (dto ChangePasswordDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("old_password", dto.OldPassword).Required()
	v.Field("new_password", dto.NewPassword).Required().MinLength(minPasswordLength).
		Custom(func(interface{}) *errors.AppError {
			if dto.NewPassword != "" && dto.NewPassword == dto.OldPassword {
				return errors.NewValidationError("new_password must differ from old_password", errors.ErrCodeValidationFailed)
			}
			return nil
		})
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}
