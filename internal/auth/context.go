package auth

import (
	"context"

	coreUser "github.com/frahmantamala/exeat-management/internal/core/user"
)

type ctxKey string

const (
	ContextUserKey              ctxKey = "user"
	ContextStudentKey           ctxKey = "student"
	ContextStaffKey             ctxKey = "staff"
	ContextSecurityOperativeKey ctxKey = "security_operative"
	ContextTokenKey             ctxKey = "token"
)

func UserFromContext(ctx context.Context) (*coreUser.User, bool) {
	u, ok := ctx.Value(ContextUserKey).(*coreUser.User)
	return u, ok && u != nil
}

func ContextWithUser(ctx context.Context, u *coreUser.User) context.Context {
	return context.WithValue(ctx, ContextUserKey, u)
}

func TokenFromContext(ctx context.Context) (string, bool) {
	t, ok := ctx.Value(ContextTokenKey).(string)
	return t, ok && t != ""
}

func StudentFromContext(ctx context.Context) (*coreUser.Student, bool) {
	s, ok := ctx.Value(ContextStudentKey).(*coreUser.Student)
	return s, ok && s != nil
}

func ContextWithStudent(ctx context.Context, s *coreUser.Student) context.Context {
	return context.WithValue(ctx, ContextStudentKey, s)
}

func StaffFromContext(ctx context.Context) (*coreUser.Staff, bool) {
	s, ok := ctx.Value(ContextStaffKey).(*coreUser.Staff)
	return s, ok && s != nil
}

func ContextWithStaff(ctx context.Context, s *coreUser.Staff) context.Context {
	return context.WithValue(ctx, ContextStaffKey, s)
}

func SecurityOperativeFromContext(ctx context.Context) (*coreUser.SecurityOperative, bool) {
	s, ok := ctx.Value(ContextSecurityOperativeKey).(*coreUser.SecurityOperative)
	return s, ok && s != nil
}

func ContextWithSecurityOperative(ctx context.Context, s *coreUser.SecurityOperative) context.Context {
	return context.WithValue(ctx, ContextSecurityOperativeKey, s)
}
