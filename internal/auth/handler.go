package auth

import (
	"context"
	"encoding/json"
	"log/slog"
	"mime"
	"net/http"

	"github.com/frahmantamala/exeat-management/internal"
	"github.com/frahmantamala/exeat-management/internal/transport"
	"github.com/frahmantamala/exeat-management/pkg/logger"
)

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(svc ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     svc,
	}
}

// Login handles POST /token. It accepts the OAuth2 password form
// (username=email) as well as a JSON body of {email, password}.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var dto LoginDTO

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/x-www-form-urlencoded", "multipart/form-data":
		if err := r.ParseForm(); err != nil {
			h.HandleServiceError(w, internal.NewValidationError("invalid form body", internal.ErrCodeInvalidRequestBody))
			return
		}
		dto.Email = r.PostForm.Get("username")
		dto.Password = r.PostForm.Get("password")
	default:
		if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
			h.HandleServiceError(w, internal.NewValidationError("invalid request body", internal.ErrCodeInvalidRequestBody))
			return
		}
	}

	tokens, err := h.Service.Authenticate(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, tokens)
}

// Signup handles POST /signup.
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var dto SignupDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.HandleServiceError(w, internal.NewValidationError("invalid request body", internal.ErrCodeInvalidRequestBody))
		return
	}

	resp, err := h.Service.Signup(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, resp)
}

// Revoke handles POST /revoke; the caller's own token is revoked.
func (h *Handler) Revoke(w http.ResponseWriter, r *http.Request) {
	token, ok := TokenFromContext(r.Context())
	if !ok {
		token = h.ExtractTokenFromHeader(r)
	}

	if err := h.Service.Revoke(r.Context(), token); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// AuthMiddleware resolves the bearer token into a user and stores both on the
// request context. Any failure is a 401.
func (h *Handler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := h.ExtractTokenFromHeader(r)
		if token == "" {
			h.HandleServiceError(w, internal.ErrNotAuthenticated)
			return
		}

		u, err := h.Service.ResolveIdentity(r.Context(), token)
		if err != nil {
			h.Logger.Warn("auth middleware: identity resolution failed", "error", err)
			h.HandleServiceError(w, err)
			return
		}

		ctx := ContextWithUser(r.Context(), u)
		ctx = context.WithValue(ctx, ContextTokenKey, token)
		ctx = internal.ContextWithUserID(ctx, u.ID)
		ctx = logger.With(ctx, "user_id", u.ID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
