package exeat

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/frahmantamala/exeat-management/internal"
	"github.com/frahmantamala/exeat-management/internal/core/reference"
)

// Scope is the role-specific visibility rule a caller is bound to.
type Scope struct {
	Role      reference.UserType
	ProfileID int64
}

func StudentScope(studentID int64) Scope {
	return Scope{Role: reference.UserTypeStudent, ProfileID: studentID}
}

func StaffScope(staffID int64) Scope {
	return Scope{Role: reference.UserTypeStaff, ProfileID: staffID}
}

func SecurityScope() Scope {
	return Scope{Role: reference.UserTypeSecurityOperative}
}

// ListFilter is a scope plus the listing options the repository applies.
type ListFilter struct {
	Scope     Scope
	Status    *reference.ExeatStatus
	Sort      SortField
	Ascending bool
}

// Review is the state change written when staff decide on a request.
type Review struct {
	StaffID    int64
	Status     reference.ExeatStatus
	Comment    *string
	ReviewedAt time.Time
}

// Repository interface defines the data access methods for exeat requests
type Repository interface {
	Create(ctx context.Context, e *Exeat) error
	// GetByID ignores visibility; it returns internal.ErrExeatNotFound if absent.
	GetByID(ctx context.Context, id int64) (*Exeat, error)
	// FindVisible returns internal.ErrExeatNotFound when the id is absent or
	// outside the scope.
	FindVisible(ctx context.Context, scope Scope, id int64) (*Exeat, error)
	Count(ctx context.Context, filter ListFilter) (int64, error)
	List(ctx context.Context, filter ListFilter, offset, limit int) ([]*Exeat, error)
	// ApplyReview moves a pending request to its reviewed state atomically;
	// it returns internal.ErrExeatNotPending when the request is no longer
	// pending.
	ApplyReview(ctx context.Context, id int64, review Review) (*Exeat, error)
}

// Service handles exeat business logic
type Service struct {
	repo   Repository
	logger *slog.Logger
	now    func() time.Time
}

// NewService creates a new exeat service
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

// Submit files a new pending request for the student.
func (s *Service) Submit(ctx context.Context, studentID int64, dto SubmitExeatDTO) (*Exeat, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Warn("exeat validation failed", "error", err, "student_id", studentID)
		return nil, err
	}

	e := NewExeat(studentID, dto, s.now())
	if err := s.repo.Create(ctx, e); err != nil {
		s.logger.Error("failed to create exeat request", "error", err, "student_id", studentID)
		return nil, internal.NewInternalError("failed to submit exeat request", err)
	}

	s.logger.Info("exeat request submitted",
		"exeat_id", e.ID,
		"student_id", studentID,
		"leave_start", e.LeaveStart,
		"leave_end", e.LeaveEnd)

	return e, nil
}

// Review approves or denies a pending request. Any staff member may review
// any pending request; exactly one of several concurrent reviewers wins.
func (s *Service) Review(ctx context.Context, staffID, exeatID int64, decision Decision, dto ReviewDTO) (*Exeat, error) {
	dto.Normalize()

	e, err := s.repo.GetByID(ctx, exeatID)
	if err != nil {
		if errors.Is(err, internal.ErrExeatNotFound) {
			s.logger.Warn("exeat request not found for review", "exeat_id", exeatID, "decision", decision.String())
			return nil, internal.ErrExeatNotFound
		}
		return nil, internal.NewInternalError("failed to load exeat request", err)
	}

	if !e.CanBeReviewed() {
		s.logger.Warn("cannot review exeat request in current status",
			"exeat_id", exeatID,
			"current_status", e.Status.String())
		return nil, internal.ErrExeatNotPending
	}

	reviewed, err := s.repo.ApplyReview(ctx, exeatID, Review{
		StaffID:    staffID,
		Status:     decision.Status(),
		Comment:    dto.Comment,
		ReviewedAt: s.now().UTC(),
	})
	if err != nil {
		if errors.Is(err, internal.ErrExeatNotPending) || errors.Is(err, internal.ErrExeatNotFound) {
			s.logger.Warn("exeat review lost a race", "exeat_id", exeatID, "staff_id", staffID)
			return nil, err
		}
		s.logger.Error("failed to review exeat request", "error", err, "exeat_id", exeatID)
		return nil, internal.NewInternalError("failed to review exeat request", err)
	}

	s.logger.Info("exeat request reviewed",
		"exeat_id", exeatID,
		"staff_id", staffID,
		"status", reviewed.Status.String())

	return reviewed, nil
}

// List pages through the requests visible to scope. Security operatives only
// ever see approved requests; a status in q is ignored for them.
func (s *Service) List(ctx context.Context, scope Scope, q ListQuery) (*Page, error) {
	filter := ListFilter{
		Scope:     scope,
		Status:    q.Status,
		Sort:      q.Sort,
		Ascending: q.Ascending,
	}
	if scope.Role == reference.UserTypeSecurityOperative {
		filter.Status = nil
	}
	if filter.Sort == "" {
		filter.Sort = SortLastUpdated
	}
	pageSize := q.PageSize
	if pageSize == 0 {
		pageSize = DefaultPageSize
	}

	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		s.logger.Error("failed to count exeat requests", "error", err, "role", scope.Role.String())
		return nil, internal.NewInternalError("failed to list exeat requests", err)
	}

	w := ComputeWindow(total, q.Page, pageSize)
	if w.Empty() {
		return NewPage(total, w, nil), nil
	}

	items, err := s.repo.List(ctx, filter, w.Offset, w.Limit)
	if err != nil {
		s.logger.Error("failed to list exeat requests", "error", err, "role", scope.Role.String())
		return nil, internal.NewInternalError("failed to list exeat requests", err)
	}

	return NewPage(total, w, items), nil
}

// Get returns one request if scope can see it. Absent and invisible requests
// are indistinguishable.
func (s *Service) Get(ctx context.Context, scope Scope, exeatID int64) (*Exeat, error) {
	e, err := s.repo.FindVisible(ctx, scope, exeatID)
	if err != nil {
		if errors.Is(err, internal.ErrExeatNotFound) {
			return nil, internal.ErrExeatNotFound
		}
		s.logger.Error("failed to get exeat request", "error", err, "exeat_id", exeatID)
		return nil, internal.NewInternalError("failed to get exeat request", err)
	}
	return e, nil
}
