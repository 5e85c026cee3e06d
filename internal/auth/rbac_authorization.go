package auth

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/exeat-management/internal"
	coreUser "github.com/frahmantamala/exeat-management/internal/core/user"
	"github.com/frahmantamala/exeat-management/internal/transport"
)

// ProfileResolver finds the role profile attached to a user. Each method
// returns internal.ErrProfileForbidden when the user has no such profile.
type ProfileResolver interface {
	ResolveStudent(ctx context.Context, userID int64) (*coreUser.Student, error)
	ResolveStaff(ctx context.Context, userID int64) (*coreUser.Staff, error)
	ResolveSecurityOperative(ctx context.Context, userID int64) (*coreUser.SecurityOperative, error)
}

// RBACAuthorization gates routes on the caller's role profile. It must run
// after AuthMiddleware.
type RBACAuthorization struct {
	*transport.BaseHandler
	resolver ProfileResolver
}

func NewRBACAuthorization(resolver ProfileResolver, logger *slog.Logger) *RBACAuthorization {
	return &RBACAuthorization{
		BaseHandler: transport.NewBaseHandler(logger),
		resolver:    resolver,
	}
}

func (ra *RBACAuthorization) RequireStudent() func(http.Handler) http.Handler {
	return ra.require("student", func(ctx context.Context, userID int64) (context.Context, error) {
		s, err := ra.resolver.ResolveStudent(ctx, userID)
		if err != nil {
			return nil, err
		}
		return ContextWithStudent(ctx, s), nil
	})
}

func (ra *RBACAuthorization) RequireStaff() func(http.Handler) http.Handler {
	return ra.require("staff", func(ctx context.Context, userID int64) (context.Context, error) {
		s, err := ra.resolver.ResolveStaff(ctx, userID)
		if err != nil {
			return nil, err
		}
		return ContextWithStaff(ctx, s), nil
	})
}

func (ra *RBACAuthorization) RequireSecurityOperative() func(http.Handler) http.Handler {
	return ra.require("security_operative", func(ctx context.Context, userID int64) (context.Context, error) {
		s, err := ra.resolver.ResolveSecurityOperative(ctx, userID)
		if err != nil {
			return nil, err
		}
		return ContextWithSecurityOperative(ctx, s), nil
	})
}

func (ra *RBACAuthorization) require(role string, resolve func(ctx context.Context, userID int64) (context.Context, error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok {
				ra.Logger.Warn("authorization check failed: user not found in context")
				ra.HandleServiceError(w, internal.ErrNotAuthenticated)
				return
			}

			ctx, err := resolve(r.Context(), user.ID)
			if err != nil {
				ra.Logger.WarnContext(r.Context(), "access denied: profile required", "user_id", user.ID, "role", role, "error", err)
				ra.HandleServiceError(w, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
