package user

import "time"

type UserType struct {
	ID       int64  `gorm:"primaryKey;autoIncrement:false"`
	TypeName string `gorm:"column:type_name;uniqueIndex;not null"`
}

func (UserType) TableName() string {
	return "user_type"
}

type User struct {
	ID               int64     `gorm:"primaryKey"`
	FirstName        string    `gorm:"column:first_name;not null"`
	LastName         string    `gorm:"column:last_name;not null"`
	Email            string    `gorm:"column:email;uniqueIndex;not null"`
	PhoneNumber      string    `gorm:"column:phone_number"`
	HashedPassword   []byte    `gorm:"column:hashed_password;not null"`
	IsActive         bool      `gorm:"column:is_active;not null"`
	IsVerified       bool      `gorm:"column:is_verified;not null"`
	UserTypeID       int64     `gorm:"column:user_type_id;not null;index"`
	ProfilePictureID *string   `gorm:"column:profile_picture_id"`
	TimeJoined       time.Time `gorm:"column:time_joined;not null"`
}

func (User) TableName() string {
	return "users"
}

type Guardian struct {
	ID          int64  `gorm:"primaryKey"`
	Name        string `gorm:"column:name;not null"`
	PhoneNumber string `gorm:"column:phone_number;not null"`
}

func (Guardian) TableName() string {
	return "guardian"
}

type Student struct {
	ID                   int64  `gorm:"primaryKey"`
	UserID               int64  `gorm:"column:user_id;not null;uniqueIndex"`
	MatriculationNumber  string `gorm:"column:matriculation_number;not null"`
	CourseOfStudy        string `gorm:"column:course_of_study;not null"`
	GuardianID           int64  `gorm:"column:guardian_id;not null"`
	GuardianRelationship string `gorm:"column:guardian_relationship;not null"`
}

func (Student) TableName() string {
	return "student"
}

type Staff struct {
	ID          int64  `gorm:"primaryKey"`
	UserID      int64  `gorm:"column:user_id;not null;uniqueIndex"`
	StaffID     string `gorm:"column:staff_id;not null"`
	Designation string `gorm:"column:designation;not null"`
}

func (Staff) TableName() string {
	return "staff"
}

type SecurityOperative struct {
	ID          int64  `gorm:"primaryKey"`
	UserID      int64  `gorm:"column:user_id;not null;uniqueIndex"`
	SecurityID  string `gorm:"column:security_id;not null"`
	Designation string `gorm:"column:designation;not null"`
}

func (SecurityOperative) TableName() string {
	return "security_operative"
}
