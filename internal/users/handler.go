package users

import (
	"log/slog"
	"net/http"

	"github.com/SarthakSoni31/Driven-backend/internal/auth"
	"github.com/SarthakSoni31/Driven-backend/internal/httpjson"
	"github.com/SarthakSoni31/Driven-backend/internal/policy"
)

type Handler struct {
	service *Service
	policy  *policy.Policy
	resp    *httpjson.Responder
	logger  *slog.Logger
}

func NewHandler(service *Service, p *policy.Policy, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		policy:  p,
		resp:    httpjson.NewResponder(logger),
		logger:  logger,
	}
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.List(r.Context())
	if err != nil {
		h.resp.Fail(w, err, "failed to list users")
		return
	}
	h.resp.JSON(w, http.StatusOK, users)
}

func (h *Handler) HandleListRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.service.ListRoles(r.Context())
	if err != nil {
		h.resp.Fail(w, err, "failed to list roles")
		return
	}
	h.resp.JSON(w, http.StatusOK, roles)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r, policy.ActionView, policy.ResourceUser) {
		return
	}

	id := r.PathValue("id")
	user, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.resp.Fail(w, err, "failed to get user", "user_id", id)
		return
	}
	h.resp.JSON(w, http.StatusOK, user)
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r, policy.ActionCreate, policy.ResourceUser) {
		return
	}

	var in CreateUserInput
	if err := httpjson.Decode(r, &in); err != nil {
		h.resp.Fail(w, err, "invalid user body")
		return
	}

	user, err := h.service.Create(r.Context(), in)
	if err != nil {
		h.resp.Fail(w, err, "failed to create user")
		return
	}
	h.resp.JSON(w, http.StatusCreated, user)
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r, policy.ActionUpdate, policy.ResourceUser) {
		return
	}

	id := r.PathValue("id")
	var in UpdateUserInput
	if err := httpjson.Decode(r, &in); err != nil {
		h.resp.Fail(w, err, "invalid user body")
		return
	}

	user, err := h.service.Update(r.Context(), id, in)
	if err != nil {
		h.resp.Fail(w, err, "failed to update user", "user_id", id)
		return
	}
	h.resp.JSON(w, http.StatusOK, user)
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r, policy.ActionDelete, policy.ResourceUser) {
		return
	}

	id := r.PathValue("id")
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.resp.Fail(w, err, "failed to delete user", "user_id", id)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleGetRole(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r, policy.ActionView, policy.ResourceRole) {
		return
	}

	id := r.PathValue("id")
	role, err := h.service.GetRole(r.Context(), id)
	if err != nil {
		h.resp.Fail(w, err, "failed to get role", "role_id", id)
		return
	}
	h.resp.JSON(w, http.StatusOK, role)
}

func (h *Handler) HandleCreateRole(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r, policy.ActionCreate, policy.ResourceRole) {
		return
	}

	var in RoleInput
	if err := httpjson.Decode(r, &in); err != nil {
		h.resp.Fail(w, err, "invalid role body")
		return
	}

	role, err := h.service.CreateRole(r.Context(), in)
	if err != nil {
		h.resp.Fail(w, err, "failed to create role")
		return
	}
	h.resp.JSON(w, http.StatusCreated, role)
}

func (h *Handler) HandleUpdateRole(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r, policy.ActionUpdate, policy.ResourceRole) {
		return
	}

	id := r.PathValue("id")
	var in RoleInput
	if err := httpjson.Decode(r, &in); err != nil {
		h.resp.Fail(w, err, "invalid role body")
		return
	}

	role, err := h.service.UpdateRole(r.Context(), id, in)
	if err != nil {
		h.resp.Fail(w, err, "failed to update role", "role_id", id)
		return
	}
	h.resp.JSON(w, http.StatusOK, role)
}

func (h *Handler) HandleDeleteRole(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r, policy.ActionDelete, policy.ResourceRole) {
		return
	}

	id := r.PathValue("id")
	if err := h.service.DeleteRole(r.Context(), id); err != nil {
		h.resp.Fail(w, err, "failed to delete role", "role_id", id)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) authorize(w http.ResponseWriter, r *http.Request, action policy.Action, resource policy.Resource) bool {
	if err := auth.Authorize(r.Context(), h.policy, action, resource); err != nil {
		h.resp.Fail(w, err, "authorization failed")
		return false
	}
	return true
}
