package exeat

import (
	"time"

	exeatDatamodel "github.com/frahmantamala/exeat-management/internal/core/datamodel/exeat"
	"github.com/frahmantamala/exeat-management/internal/core/reference"
)

type Exeat struct {
	ID              int64
	StudentID       int64
	LeaveStart      time.Time
	LeaveEnd        time.Time
	SubmissionTime  time.Time
	Reason          string
	Status          reference.ExeatStatus
	StaffID         *int64
	StaffReviewTime *time.Time
	StaffComment    *string
}

// View is the JSON shape returned by every exeat endpoint.
type View struct {
	ID             int64      `json:"id"`
	LeaveStart     time.Time  `json:"leave_start"`
	LeaveEnd       time.Time  `json:"leave_end"`
	SubmissionTime time.Time  `json:"submission_time"`
	Reason         string     `json:"reason"`
	Status         string     `json:"status"`
	StaffComment   *string    `json:"staff_comment"`
	StaffDate      *time.Time `json:"staff_date"`
}

// Decision is a staff verdict on a pending request.
type Decision int

const (
	DecisionApprove Decision = iota + 1
	DecisionDeny
)

func (d Decision) Status() reference.ExeatStatus {
	if d == DecisionApprove {
		return reference.StatusApproved
	}
	return reference.StatusDenied
}

func (d Decision) String() string {
	if d == DecisionApprove {
		return "approve"
	}
	return "deny"
}

func NewExeat(studentID int64, dto SubmitExeatDTO, now time.Time) *Exeat {
	return &Exeat{
		StudentID:      studentID,
		LeaveStart:     dto.LeaveStart.UTC(),
		LeaveEnd:       dto.LeaveEnd.UTC(),
		SubmissionTime: now.UTC(),
		Reason:         dto.Reason,
		Status:         reference.StatusPending,
	}
}

func (e *Exeat) CanBeReviewed() bool {
	return e.Status == reference.StatusPending
}

// LastUpdated is the review time when reviewed, otherwise the submission time.
func (e *Exeat) LastUpdated() time.Time {
	if e.StaffReviewTime != nil {
		return *e.StaffReviewTime
	}
	return e.SubmissionTime
}

func (e *Exeat) ToView() View {
	return View{
		ID:             e.ID,
		LeaveStart:     e.LeaveStart,
		LeaveEnd:       e.LeaveEnd,
		SubmissionTime: e.SubmissionTime,
		Reason:         e.Reason,
		Status:         e.Status.String(),
		StaffComment:   e.StaffComment,
		StaffDate:      e.StaffReviewTime,
	}
}

func ToDataModel(e *Exeat) *exeatDatamodel.ExeatRequest {
	return &exeatDatamodel.ExeatRequest{
		ID:              e.ID,
		StudentID:       e.StudentID,
		LeaveStart:      e.LeaveStart,
		LeaveEnd:        e.LeaveEnd,
		SubmissionTime:  e.SubmissionTime,
		Reason:          e.Reason,
		StatusID:        int64(e.Status),
		StaffID:         e.StaffID,
		StaffReviewTime: e.StaffReviewTime,
		StaffComment:    e.StaffComment,
	}
}

func FromDataModel(m *exeatDatamodel.ExeatRequest) *Exeat {
	return &Exeat{
		ID:              m.ID,
		StudentID:       m.StudentID,
		LeaveStart:      m.LeaveStart,
		LeaveEnd:        m.LeaveEnd,
		SubmissionTime:  m.SubmissionTime,
		Reason:          m.Reason,
		Status:          reference.ExeatStatus(m.StatusID),
		StaffID:         m.StaffID,
		StaffReviewTime: m.StaffReviewTime,
		StaffComment:    m.StaffComment,
	}
}

func FromDataModelSlice(rows []*exeatDatamodel.ExeatRequest) []*Exeat {
	result := make([]*Exeat, len(rows))
	for i, r := range rows {
		result[i] = FromDataModel(r)
	}
	return result
}
