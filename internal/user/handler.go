package user

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/exeat-management/internal"
	"github.com/frahmantamala/exeat-management/internal/auth"
	coreUser "github.com/frahmantamala/exeat-management/internal/core/user"
	"github.com/frahmantamala/exeat-management/internal/profile"
	"github.com/frahmantamala/exeat-management/internal/transport"
	"github.com/frahmantamala/exeat-management/pkg/logger"
)

// multipartOverhead is the slack allowed on top of the picture size for the
// multipart envelope.
const multipartOverhead = 64 << 10

type ServiceAPI interface {
	GetAccount(ctx context.Context, userID int64) (*coreUser.View, error)
	UpdateAccount(ctx context.Context, userID int64, dto UpdateAccountDTO) (*coreUser.View, error)
	ChangePassword(ctx context.Context, userID int64, dto ChangePasswordDTO) error
	DeleteAccount(ctx context.Context, userID int64) error
	GetProfile(ctx context.Context, userID int64) (*profile.Profile, error)
	UploadProfilePicture(ctx context.Context, userID int64, data []byte) error
	MaxPictureSize() int64
}

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

// GetAccount handles GET /account
func (h *Handler) GetAccount(w http.ResponseWriter, r *http.Request) {
	u, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	view, err := h.Service.GetAccount(r.Context(), u.ID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, view)
}

// UpdateAccount handles PUT /account/update
func (h *Handler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	u, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	var dto UpdateAccountDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	view, err := h.Service.UpdateAccount(r.Context(), u.ID, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, view)
}

// ChangePassword handles PUT /account/change-password
func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	u, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	var dto ChangePasswordDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	if err := h.Service.ChangePassword(r.Context(), u.ID, dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteMessage(w, http.StatusOK, "Password updated successfully.")
}

// DeleteAccount handles DELETE /account/delete
func (h *Handler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	u, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	if err := h.Service.DeleteAccount(r.Context(), u.ID); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteMessage(w, http.StatusOK, "Account deleted successfully.")
}

// GetProfile handles GET /account/profile
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	u, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	p, err := h.Service.GetProfile(r.Context(), u.ID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, p)
}

// UploadProfilePicture handles POST /account/upload-profile-picture with a
// multipart "file" field.
func (h *Handler) UploadProfilePicture(w http.ResponseWriter, r *http.Request) {
	u, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	limit := h.Service.MaxPictureSize()
	r.Body = http.MaxBytesReader(w, r.Body, limit+multipartOverhead)
	if err := r.ParseMultipartForm(limit); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.HandleServiceError(w, internal.ErrPictureTooLarge)
			return
		}
		h.HandleServiceError(w, internal.NewValidationError("invalid multipart body", internal.ErrCodeInvalidRequestBody).WithCause(err))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.HandleServiceError(w, internal.NewValidationFieldError("file", "file is required", internal.ErrCodeValidationFailed))
		return
	}
	defer file.Close()

	if header.Size > limit {
		h.HandleServiceError(w, internal.ErrPictureTooLarge)
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, limit+1))
	if err != nil {
		h.HandleServiceError(w, internal.NewInternalError("failed to read upload", err))
		return
	}

	if err := h.Service.UploadProfilePicture(r.Context(), u.ID, data); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteMessage(w, http.StatusOK, "Profile picture uploaded successfully.")
}

func (h *Handler) currentUser(w http.ResponseWriter, r *http.Request) (*coreUser.User, bool) {
	u, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.Logger.Error("user not found in context", "path", r.URL.Path)
		h.HandleServiceError(w, internal.ErrNotAuthenticated)
		return nil, false
	}
	return u, true
}
