package catalog

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

func (h *Handler) HandleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.ListCategories(r.Context())
	if err != nil {
		h.resp.Fail(w, err, "failed to list categories")
		return
	}
	h.resp.JSON(w, http.StatusOK, categories)
}

func (h *Handler) HandleGetCategoryBySlug(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")
	category, err := h.service.CategoryBySlug(r.Context(), slug)
	if err != nil {
		h.resp.Fail(w, err, "failed to get category", "slug", slug)
		return
	}
	h.resp.JSON(w, http.StatusOK, category)
}

func (h *Handler) HandleListProducts(w http.ResponseWriter, r *http.Request) {
	page, err := h.service.ListProducts(r.Context(), httpjson.PageFrom(r))
	if err != nil {
		h.resp.Fail(w, err, "failed to list products")
		return
	}
	h.resp.JSON(w, http.StatusOK, page)
}

func (h *Handler) HandleGetProductBySlug(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")
	product, err := h.service.ProductBySlug(r.Context(), slug)
	if err != nil {
		h.resp.Fail(w, err, "failed to get product", "slug", slug)
		return
	}
	h.resp.JSON(w, http.StatusOK, map[string]any{"product": product})
}

// HandleCategoryTree returns the category rows as the console renders them
// for the calling actor.
func (h *Handler) HandleCategoryTree(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r, policy.ActionView, policy.ResourceCategory) {
		return
	}

	actor, _ := auth.ActorFrom(r.Context())
	rows, err := h.service.CategoryRows(r.Context(), actor.Role, h.policy)
	if err != nil {
		h.resp.Fail(w, err, "failed to build category tree")
		return
	}
	h.resp.JSON(w, http.StatusOK, rows)
}

func (h *Handler) HandleGetCategory(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r, policy.ActionView, policy.ResourceCategory) {
		return
	}

	id := r.PathValue("id")
	category, err := h.service.GetCategory(r.Context(), id)
	if err != nil {
		h.resp.Fail(w, err, "failed to get category", "category_id", id)
		return
	}
	h.resp.JSON(w, http.StatusOK, category)
}

func (h *Handler) HandleCreateCategory(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r, policy.ActionCreate, policy.ResourceCategory) {
		return
	}

	var in CategoryInput
	if err := httpjson.Decode(r, &in); err != nil {
		h.resp.Fail(w, err, "invalid category body")
		return
	}

	category, err := h.service.CreateCategory(r.Context(), in)
	if err != nil {
		h.resp.Fail(w, err, "failed to create category")
		return
	}
	h.resp.JSON(w, http.StatusCreated, category)
}

func (h *Handler) HandleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r, policy.ActionUpdate, policy.ResourceCategory) {
		return
	}

	id := r.PathValue("id")
	var in CategoryInput
	if err := httpjson.Decode(r, &in); err != nil {
		h.resp.Fail(w, err, "invalid category body")
		return
	}

	category, err := h.service.UpdateCategory(r.Context(), id, in)
	if err != nil {
		h.resp.Fail(w, err, "failed to update category", "category_id", id)
		return
	}
	h.resp.JSON(w, http.StatusOK, category)
}

func (h *Handler) HandleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r, policy.ActionDelete, policy.ResourceCategory) {
		return
	}

	id := r.PathValue("id")
	if err := h.service.DeleteCategory(r.Context(), id); err != nil {
		h.resp.Fail(w, err, "failed to delete category", "category_id", id)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleAdminListProducts(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r, policy.ActionView, policy.ResourceProduct) {
		return
	}
	h.HandleListProducts(w, r)
}

func (h *Handler) HandleGetProduct(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r, policy.ActionView, policy.ResourceProduct) {
		return
	}

	id := r.PathValue("id")
	product, err := h.service.GetProduct(r.Context(), id)
	if err != nil {
		h.resp.Fail(w, err, "failed to get product", "product_id", id)
		return
	}
	h.resp.JSON(w, http.StatusOK, product)
}

func (h *Handler) HandleCreateProduct(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r, policy.ActionCreate, policy.ResourceProduct) {
		return
	}

	var in ProductInput
	if err := httpjson.Decode(r, &in); err != nil {
		h.resp.Fail(w, err, "invalid product body")
		return
	}

	product, err := h.service.CreateProduct(r.Context(), in)
	if err != nil {
		h.resp.Fail(w, err, "failed to create product")
		return
	}
	h.resp.JSON(w, http.StatusCreated, product)
}

func (h *Handler) HandleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r, policy.ActionUpdate, policy.ResourceProduct) {
		return
	}

	id := r.PathValue("id")
	var in ProductInput
	if err := httpjson.Decode(r, &in); err != nil {
		h.resp.Fail(w, err, "invalid product body")
		return
	}

	product, err := h.service.UpdateProduct(r.Context(), id, in)
	if err != nil {
		h.resp.Fail(w, err, "failed to update product", "product_id", id)
		return
	}
	h.resp.JSON(w, http.StatusOK, product)
}

func (h *Handler) HandleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r, policy.ActionDelete, policy.ResourceProduct) {
		return
	}

	id := r.PathValue("id")
	if err := h.service.DeleteProduct(r.Context(), id); err != nil {
		h.resp.Fail(w, err, "failed to delete product", "product_id", id)
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
