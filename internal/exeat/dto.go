package exeat

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"

	errors "github.com/frahmantamala/exeat-management/internal"
	"github.com/frahmantamala/exeat-management/internal/core/common/validation"
	"github.com/frahmantamala/exeat-management/internal/core/reference"
)

const maxReasonLength = 255

// SubmitExeatDTO represents the request payload for submitting an exeat
type SubmitExeatDTO struct {
	LeaveStart time.Time `json:"leave_start"`
	LeaveEnd   time.Time `json:"leave_end"`
	Reason     string    `json:"reason"`
}

func (dto SubmitExeatDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("leave_start", dto.LeaveStart).Required().Before(dto.LeaveEnd, "leave_end", errors.ErrCodeInvalidLeaveWindow)
	v.Field("leave_end", dto.LeaveEnd).Required()
	v.Field("reason", dto.Reason).Required().MaxLength(maxReasonLength)
	if err := v.Validate(); err != nil {
		return liftSoleCode(err, errors.ErrCodeInvalidLeaveWindow)
	}
	return nil
}

// liftSoleCode promotes code to the top level when it is the only failure.
func liftSoleCode(err *errors.AppError, code errors.ErrorCode) *errors.AppError {
	details, ok := err.Details.(errors.ValidationErrors)
	if !ok || len(details.Errors) != 1 || details.Errors[0].Code != string(code) {
		return err
	}
	return errors.NewValidationError(details.Errors[0].Message, code).WithDetails(details)
}

// ReviewDTO carries the optional staff comment of an approve/deny call.
type ReviewDTO struct {
	Comment *string `json:"comment"`
}

// Normalize turns a blank comment into no comment.
func (dto *ReviewDTO) Normalize() {
	if dto.Comment != nil && strings.TrimSpace(*dto.Comment) == "" {
		dto.Comment = nil
	}
}

// ListQuery is a parsed listing request.
type ListQuery struct {
	Page      int
	PageSize  int
	Status    *reference.ExeatStatus
	Sort      SortField
	Ascending bool
}

func DefaultListQuery() ListQuery {
	return ListQuery{Page: 1, PageSize: DefaultPageSize, Sort: SortLastUpdated}
}

// ParseListQuery reads page, page_size, status, sort and ascending from the
// query string. When withStatus is false the status parameter is not read at
// all. Any malformed value fails the whole query with INVALID_QUERY.
func ParseListQuery(values url.Values, withStatus bool) (ListQuery, error) {
	q := DefaultListQuery()
	v := validation.NewValidator()

	page, err := intParam(values, "page", q.Page)
	v.Field("page", page).Custom(parseFailure(err)).IntBetween(1, math.MaxInt32, errors.ErrCodeInvalidQuery)
	q.Page = page

	size, err := intParam(values, "page_size", q.PageSize)
	v.Field("page_size", size).Custom(parseFailure(err)).IntBetween(1, MaxPageSize, errors.ErrCodeInvalidQuery)
	q.PageSize = size

	if raw := values.Get("sort"); raw != "" {
		q.Sort = SortField(strings.ToLower(raw))
	}
	v.Field("sort", string(q.Sort)).Custom(func(interface{}) *errors.AppError {
		if !q.Sort.Valid() {
			return errors.NewValidationError("sort must be one of last_updated, leave_start, leave_end", errors.ErrCodeInvalidQuery)
		}
		return nil
	})

	if raw := values.Get("ascending"); raw != "" {
		asc, err := strconv.ParseBool(raw)
		if err != nil {
			err = fmt.Errorf("ascending must be true or false")
		}
		v.Field("ascending", raw).Custom(parseFailure(err))
		q.Ascending = asc
	}

	if raw := values.Get("status"); withStatus && raw != "" {
		status, err := reference.ParseExeatStatus(raw)
		v.Field("status", raw).Custom(func(interface{}) *errors.AppError {
			if appErr, ok := errors.IsAppError(err); ok {
				return appErr
			}
			return nil
		})
		if err == nil {
			q.Status = &status
		}
	}

	if appErr := v.Validate(); appErr != nil {
		return ListQuery{}, errors.NewValidationError("Invalid query parameters", errors.ErrCodeInvalidQuery).WithDetails(appErr.Details)
	}
	return q, nil
}

func intParam(values url.Values, name string, def int) (int, error) {
	raw := values.Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", name)
	}
	return n, nil
}

func parseFailure(err error) validation.ValidatorFunc {
	return func(interface{}) *errors.AppError {
		if err != nil {
			return errors.NewValidationError(err.Error(), errors.ErrCodeInvalidQuery)
		}
		return nil
	}
}
