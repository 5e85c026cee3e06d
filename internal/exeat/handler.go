package exeat

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/exeat-management/internal"
	"github.com/frahmantamala/exeat-management/internal/auth"
	"github.com/frahmantamala/exeat-management/internal/transport"
	"github.com/frahmantamala/exeat-management/pkg/logger"
)

type ServiceAPI interface {
	Submit(ctx context.Context, studentID int64, dto SubmitExeatDTO) (*Exeat, error)
	Review(ctx context.Context, staffID, exeatID int64, decision Decision, dto ReviewDTO) (*Exeat, error)
	List(ctx context.Context, scope Scope, q ListQuery) (*Page, error)
	Get(ctx context.Context, scope Scope, exeatID int64) (*Exeat, error)
}

// Handler serves the student, staff and security exeat routes. The role
// profile is expected on the context, put there by auth.RBACAuthorization.
type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(service ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     service,
	}
}

// Submit handles POST /student/submit
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	student, ok := auth.StudentFromContext(r.Context())
	if !ok {
		h.HandleServiceError(w, internal.ErrProfileForbidden)
		return
	}

	var dto SubmitExeatDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	e, err := h.Service.Submit(r.Context(), student.ID, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, e.ToView())
}

// ListStudent handles GET /student/exeat
func (h *Handler) ListStudent(w http.ResponseWriter, r *http.Request) {
	student, ok := auth.StudentFromContext(r.Context())
	if !ok {
		h.HandleServiceError(w, internal.ErrProfileForbidden)
		return
	}
	h.list(w, r, StudentScope(student.ID), true)
}

// GetStudent handles GET /student/exeat/{id}
func (h *Handler) GetStudent(w http.ResponseWriter, r *http.Request) {
	student, ok := auth.StudentFromContext(r.Context())
	if !ok {
		h.HandleServiceError(w, internal.ErrProfileForbidden)
		return
	}
	h.get(w, r, StudentScope(student.ID))
}

// ListStaff handles GET /staff/exeat
func (h *Handler) ListStaff(w http.ResponseWriter, r *http.Request) {
	staff, ok := auth.StaffFromContext(r.Context())
	if !ok {
		h.HandleServiceError(w, internal.ErrProfileForbidden)
		return
	}
	h.list(w, r, StaffScope(staff.ID), true)
}

// GetStaff handles GET /staff/exeat/{id}
func (h *Handler) GetStaff(w http.ResponseWriter, r *http.Request) {
	staff, ok := auth.StaffFromContext(r.Context())
	if !ok {
		h.HandleServiceError(w, internal.ErrProfileForbidden)
		return
	}
	h.get(w, r, StaffScope(staff.ID))
}

// Approve handles POST /staff/approve/{id}
func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, DecisionApprove)
}

// Deny handles POST /staff/deny/{id}
func (h *Handler) Deny(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, DecisionDeny)
}

// ListSecurity handles GET /security/exeat
func (h *Handler) ListSecurity(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.SecurityOperativeFromContext(r.Context()); !ok {
		h.HandleServiceError(w, internal.ErrProfileForbidden)
		return
	}
	h.list(w, r, SecurityScope(), false)
}

// GetSecurity handles GET /security/exeat/{id}
func (h *Handler) GetSecurity(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.SecurityOperativeFromContext(r.Context()); !ok {
		h.HandleServiceError(w, internal.ErrProfileForbidden)
		return
	}
	h.get(w, r, SecurityScope())
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request, scope Scope, withStatus bool) {
	q, err := ParseListQuery(r.URL.Query(), withStatus)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	page, err := h.Service.List(r.Context(), scope, q)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, page)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request, scope Scope) {
	id, err := h.PathID(r, "id")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	e, err := h.Service.Get(r.Context(), scope, id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, e.ToView())
}

func (h *Handler) review(w http.ResponseWriter, r *http.Request, decision Decision) {
	staff, ok := auth.StaffFromContext(r.Context())
	if !ok {
		h.HandleServiceError(w, internal.ErrProfileForbidden)
		return
	}

	id, err := h.PathID(r, "id")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	dto, err := reviewFromRequest(r)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	e, err := h.Service.Review(r.Context(), staff.ID, id, decision, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, e.ToView())
}

// reviewFromRequest takes the comment from the "comment" query parameter, or
// failing that from an optional JSON body.
func reviewFromRequest(r *http.Request) (ReviewDTO, error) {
	var dto ReviewDTO
	if values, ok := r.URL.Query()["comment"]; ok && len(values) > 0 {
		dto.Comment = &values[0]
		return dto, nil
	}
	if r.Body == nil {
		return dto, nil
	}
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil && !errors.Is(err, io.EOF) {
		return dto, internal.NewValidationError("invalid request body", internal.ErrCodeInvalidRequestBody).WithCause(err)
	}
	return dto, nil
}
