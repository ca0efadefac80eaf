package blog

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
	page, err := h.service.List(r.Context(), httpjson.PageFrom(r))
	if err != nil {
		h.resp.Fail(w, err, "failed to list blogs")
		return
	}
	h.resp.JSON(w, http.StatusOK, page)
}

func (h *Handler) HandleGetBySlug(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")
	blog, err := h.service.BySlug(r.Context(), slug)
	if err != nil {
		h.resp.Fail(w, err, "failed to get blog", "slug", slug)
		return
	}
	h.resp.JSON(w, http.StatusOK, map[string]any{"success": true, "data": blog})
}

func (h *Handler) HandleAdminList(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r, policy.ActionView, policy.ResourceBlog) {
		return
	}
	h.HandleList(w, r)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r, policy.ActionView, policy.ResourceBlog) {
		return
	}

	id := r.PathValue("id")
	blog, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.resp.Fail(w, err, "failed to get blog", "blog_id", id)
		return
	}
	h.resp.JSON(w, http.StatusOK, blog)
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r, policy.ActionCreate, policy.ResourceBlog) {
		return
	}

	var in PostInput
	if err := httpjson.Decode(r, &in); err != nil {
		h.resp.Fail(w, err, "invalid blog body")
		return
	}

	actor, _ := auth.ActorFrom(r.Context())
	blog, err := h.service.Create(r.Context(), actor.UserID, in)
	if err != nil {
		h.resp.Fail(w, err, "failed to create blog")
		return
	}
	h.resp.JSON(w, http.StatusCreated, blog)
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r, policy.ActionUpdate, policy.ResourceBlog) {
		return
	}

	id := r.PathValue("id")
	var in PostInput
	if err := httpjson.Decode(r, &in); err != nil {
		h.resp.Fail(w, err, "invalid blog body")
		return
	}

	blog, err := h.service.Update(r.Context(), id, in)
	if err != nil {
		h.resp.Fail(w, err, "failed to update blog", "blog_id", id)
		return
	}
	h.resp.JSON(w, http.StatusOK, blog)
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r, policy.ActionDelete, policy.ResourceBlog) {
		return
	}

	id := r.PathValue("id")
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.resp.Fail(w, err, "failed to delete blog", "blog_id", id)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleListCategories(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r, policy.ActionView, policy.ResourceBlogCategory) {
		return
	}

	categories, err := h.service.ListCategories(r.Context())
	if err != nil {
		h.resp.Fail(w, err, "failed to list blog categories")
		return
	}
	h.resp.JSON(w, http.StatusOK, categories)
}

func (h *Handler) HandleCreateCategory(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r, policy.ActionCreate, policy.ResourceBlogCategory) {
		return
	}

	var in CategoryInput
	if err := httpjson.Decode(r, &in); err != nil {
		h.resp.Fail(w, err, "invalid blog category body")
		return
	}

	category, err := h.service.CreateCategory(r.Context(), in)
	if err != nil {
		h.resp.Fail(w, err, "failed to create blog category")
		return
	}
	h.resp.JSON(w, http.StatusCreated, category)
}

func (h *Handler) HandleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r, policy.ActionUpdate, policy.ResourceBlogCategory) {
		return
	}

	id := r.PathValue("id")
	var in CategoryInput
	if err := httpjson.Decode(r, &in); err != nil {
		h.resp.Fail(w, err, "invalid blog category body")
		return
	}

	category, err := h.service.UpdateCategory(r.Context(), id, in)
	if err != nil {
		h.resp.Fail(w, err, "failed to update blog category", "blog_category_id", id)
		return
	}
	h.resp.JSON(w, http.StatusOK, category)
}

func (h *Handler) HandleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r, policy.ActionDelete, policy.ResourceBlogCategory) {
		return
	}

	id := r.PathValue("id")
	if err := h.service.DeleteCategory(r.Context(), id); err != nil {
		h.resp.Fail(w, err, "failed to delete blog category", "blog_category_id", id)
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
