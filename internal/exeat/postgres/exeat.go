package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/frahmantamala/exeat-management/internal"
	exeatDatamodel "github.com/frahmantamala/exeat-management/internal/core/datamodel/exeat"
	"github.com/frahmantamala/exeat-management/internal/core/reference"
	"github.com/frahmantamala/exeat-management/internal/exeat"
	"gorm.io/gorm"
)

var sortColumns = map[exeat.SortField]string{
	exeat.SortLastUpdated: "COALESCE(staff_review_time, submission_time)",
	exeat.SortLeaveStart:  "leave_start",
	exeat.SortLeaveEnd:    "leave_end",
}

// ExeatRepository implements the exeat.Repository interface using GORM
type ExeatRepository struct {
	db *gorm.DB
}

// NewExeatRepository creates a new exeat repository
func NewExeatRepository(db *gorm.DB) *ExeatRepository {
	return &ExeatRepository{db: db}
}

func (r *ExeatRepository) Create(ctx context.Context, e *exeat.Exeat) error {
	row := exeat.ToDataModel(e)
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return err
	}
	e.ID = row.ID
	return nil
}

func (r *ExeatRepository) GetByID(ctx context.Context, id int64) (*exeat.Exeat, error) {
	var row exeatDatamodel.ExeatRequest
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		return nil, notFound(err)
	}
	return exeat.FromDataModel(&row), nil
}

func (r *ExeatRepository) FindVisible(ctx context.Context, scope exeat.Scope, id int64) (*exeat.Exeat, error) {
	var row exeatDatamodel.ExeatRequest
	if err := r.scoped(ctx, scope).Where("id = ?", id).First(&row).Error; err != nil {
		return nil, notFound(err)
	}
	return exeat.FromDataModel(&row), nil
}

func (r *ExeatRepository) Count(ctx context.Context, filter exeat.ListFilter) (int64, error) {
	var total int64
	err := r.filtered(ctx, filter).Count(&total).Error
	return total, err
}

func (r *ExeatRepository) List(ctx context.Context, filter exeat.ListFilter, offset, limit int) ([]*exeat.Exeat, error) {
	column, ok := sortColumns[filter.Sort]
	if !ok {
		return nil, fmt.Errorf("unsupported sort field %q", filter.Sort)
	}
	dir := "DESC"
	if filter.Ascending {
		dir = "ASC"
	}

	var rows []*exeatDatamodel.ExeatRequest
	err := r.filtered(ctx, filter).
		Order(fmt.Sprintf("%s %s, id %s", column, dir, dir)).
		Offset(offset).
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return exeat.FromDataModelSlice(rows), nil
}

// ApplyReview re-checks the pending state and writes the review inside one
// transaction. The UPDATE is conditional on status_id, so a concurrent
// reviewer that committed first leaves zero rows to update.
func (r *ExeatRepository) ApplyReview(ctx context.Context, id int64, review exeat.Review) (*exeat.Exeat, error) {
	var row exeatDatamodel.ExeatRequest

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&row).Error; err != nil {
			return notFound(err)
		}
		if row.StatusID != int64(reference.StatusPending) {
			return internal.ErrExeatNotPending
		}

		staffID := review.StaffID
		reviewedAt := review.ReviewedAt
		res := tx.Model(&exeatDatamodel.ExeatRequest{}).
			Where("id = ? AND status_id = ?", id, int64(reference.StatusPending)).
			Updates(map[string]interface{}{
				"status_id":         int64(review.Status),
				"staff_id":          staffID,
				"staff_review_time": reviewedAt,
				"staff_comment":     review.Comment,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return internal.ErrExeatNotPending
		}

		row.StatusID = int64(review.Status)
		row.StaffID = &staffID
		row.StaffReviewTime = &reviewedAt
		row.StaffComment = review.Comment
		return nil
	})
	if err != nil {
		return nil, err
	}
	return exeat.FromDataModel(&row), nil
}

func (r *ExeatRepository) scoped(ctx context.Context, scope exeat.Scope) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&exeatDatamodel.ExeatRequest{})
	switch scope.Role {
	case reference.UserTypeStudent:
		return q.Where("student_id = ?", scope.ProfileID)
	case reference.UserTypeStaff:
		// a reviewed row only loses its reviewer when that staff account is deleted
		return q.Where("(staff_id = ? OR (staff_id IS NULL AND status_id = ?))", scope.ProfileID, int64(reference.StatusPending))
	case reference.UserTypeSecurityOperative:
		return q.Where("status_id = ?", int64(reference.StatusApproved))
	default:
		return q.Where("1 = 0")
	}
}

func (r *ExeatRepository) filtered(ctx context.Context, filter exeat.ListFilter) *gorm.DB {
	q := r.scoped(ctx, filter.Scope)
	if filter.Status != nil {
		q = q.Where("status_id = ?", int64(*filter.Status))
	}
	return q
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return internal.ErrExeatNotFound
	}
	return err
}
