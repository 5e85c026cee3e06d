package exeat

import "time"

type ExeatRequestStatus struct {
	ID         int64  `gorm:"primaryKey;autoIncrement:false"`
	StatusName string `gorm:"column:status_name;uniqueIndex;not null"`
}

func (ExeatRequestStatus) TableName() string {
	return "exeat_request_status"
}

type ExeatRequest struct {
	ID              int64      `gorm:"primaryKey"`
	StudentID       int64      `gorm:"column:student_id;not null;index"`
	LeaveStart      time.Time  `gorm:"column:leave_start;not null"`
	LeaveEnd        time.Time  `gorm:"column:leave_end;not null"`
	SubmissionTime  time.Time  `gorm:"column:submission_time;not null"`
	Reason          string     `gorm:"column:reason;size:255;not null"`
	StatusID        int64      `gorm:"column:status_id;not null;index"`
	StaffID         *int64     `gorm:"column:staff_id;index"`
	StaffReviewTime *time.Time `gorm:"column:staff_review_time"`
	StaffComment    *string    `gorm:"column:staff_comment"`
}

func (ExeatRequest) TableName() string {
	return "exeat_request"
}
