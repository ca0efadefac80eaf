// Package admin renders the server-side admin console. Every page is
// gated by the access policy for the signed-in staff role.
package admin

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/SarthakSoni31/Driven-backend/internal/auth"
	"github.com/SarthakSoni31/Driven-backend/internal/blog"
	"github.com/SarthakSoni31/Driven-backend/internal/catalog"
	"github.com/SarthakSoni31/Driven-backend/internal/domain"
	"github.com/SarthakSoni31/Driven-backend/internal/httpjson"
	"github.com/SarthakSoni31/Driven-backend/internal/policy"
)

//go:embed templates/*.html
var templateFS embed.FS

const uncategorized = "Uncategorized"

type Catalog interface {
	CategoryRows(ctx context.Context, role string, p *policy.Policy) ([]catalog.Row, error)
	ListProducts(ctx context.Context, page domain.Page) (catalog.ProductPage, error)
}

type Blogs interface {
	List(ctx context.Context, page domain.Page) (blog.Page, error)
}

type Staff interface {
	List(ctx context.Context) ([]domain.User, error)
	ListRoles(ctx context.Context) ([]domain.Role, error)
}

type Feedback interface {
	List(ctx context.Context) ([]domain.Feedback, error)
}

type Orders interface {
	List(ctx context.Context) ([]domain.Order, error)
}

type Sources struct {
	Catalog  Catalog
	Blogs    Blogs
	Staff    Staff
	Feedback Feedback
	Orders   Orders
}

type Console struct {
	src    Sources
	policy *policy.Policy
	pages  map[string]*template.Template
	logger *slog.Logger
}

var funcs = template.FuncMap{
	"date": func(t time.Time) string { return t.Format("2006-01-02 15:04") },
	"join": strings.Join,
}

func NewConsole(src Sources, p *policy.Policy, logger *slog.Logger) (*Console, error) {
	pages := make(map[string]*template.Template)
	for _, name := range []string{"dashboard", "categories", "products", "blogs", "users", "roles", "feedback", "orders"} {
		t, err := template.New("layout.html").Funcs(funcs).
			ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, err
		}
		pages[name] = t
	}

	return &Console{
		src:    src,
		policy: p,
		pages:  pages,
		logger: logger,
	}, nil
}

type view struct {
	Title string
	Actor auth.Actor
	Data  any
}

func (c *Console) render(w http.ResponseWriter, r *http.Request, page, title string, data any) {
	actor, _ := auth.ActorFrom(r.Context())

	var buf bytes.Buffer
	if err := c.pages[page].Execute(&buf, view{Title: title, Actor: actor, Data: data}); err != nil {
		c.logger.Error("failed to render page", "error", err, "page", page)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (c *Console) fail(w http.ResponseWriter, err error, page string) {
	switch {
	case errors.Is(err, domain.ErrForbidden):
		http.Error(w, "forbidden", http.StatusForbidden)
	default:
		c.logger.Error("failed to load page", "error", err, "page", page)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

// allowed reports whether the actor may view resource, writing a 403
// otherwise.
func (c *Console) allowed(w http.ResponseWriter, r *http.Request, resource policy.Resource) bool {
	if err := auth.Authorize(r.Context(), c.policy, policy.ActionView, resource); err != nil {
		c.fail(w, err, string(resource))
		return false
	}
	return true
}

type dashboard struct {
	Products int
	Blogs    int
	Orders   int
	Feedback int
	Sections []policy.Resource
}

func (c *Console) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFrom(r.Context())
	if !ok {
		c.fail(w, domain.ErrForbidden, "dashboard")
		return
	}

	var d dashboard
	for _, res := range []policy.Resource{
		policy.ResourceCategory, policy.ResourceProduct, policy.ResourceBlog,
		policy.ResourceUser, policy.ResourceRole, policy.ResourceFeedback, policy.ResourceOrder,
	} {
		if c.policy.Allow(actor.Role, policy.ActionView, res) {
			d.Sections = append(d.Sections, res)
		}
	}

	ctx := r.Context()
	if c.policy.Allow(actor.Role, policy.ActionView, policy.ResourceProduct) {
		page, err := c.src.Catalog.ListProducts(ctx, domain.Page{Number: 1, Limit: 1})
		if err != nil {
			c.fail(w, err, "dashboard")
			return
		}
		d.Products = page.Total
	}
	if c.policy.Allow(actor.Role, policy.ActionView, policy.ResourceBlog) {
		page, err := c.src.Blogs.List(ctx, domain.Page{Number: 1, Limit: 1})
		if err != nil {
			c.fail(w, err, "dashboard")
			return
		}
		d.Blogs = page.TotalBlogs
	}
	if c.policy.Allow(actor.Role, policy.ActionView, policy.ResourceOrder) {
		orders, err := c.src.Orders.List(ctx)
		if err != nil {
			c.fail(w, err, "dashboard")
			return
		}
		d.Orders = len(orders)
	}
	if c.policy.Allow(actor.Role, policy.ActionView, policy.ResourceFeedback) {
		entries, err := c.src.Feedback.List(ctx)
		if err != nil {
			c.fail(w, err, "dashboard")
			return
		}
		d.Feedback = len(entries)
	}

	c.render(w, r, "dashboard", "Dashboard", d)
}

func (c *Console) HandleCategories(w http.ResponseWriter, r *http.Request) {
	if !c.allowed(w, r, policy.ResourceCategory) {
		return
	}
	actor, _ := auth.ActorFrom(r.Context())

	rows, err := c.src.Catalog.CategoryRows(r.Context(), actor.Role, c.policy)
	if err != nil {
		c.fail(w, err, "categories")
		return
	}
	c.render(w, r, "categories", "Categories", rows)
}

type productRow struct {
	domain.ProductDetail
	CategoryNames string
}

type productList struct {
	Rows []productRow
	Page catalog.ProductPage
}

func (c *Console) HandleProducts(w http.ResponseWriter, r *http.Request) {
	if !c.allowed(w, r, policy.ResourceProduct) {
		return
	}

	page, err := c.src.Catalog.ListProducts(r.Context(), httpjson.PageFrom(r))
	if err != nil {
		c.fail(w, err, "products")
		return
	}

	list := productList{Page: page, Rows: make([]productRow, 0, len(page.Products))}
	for _, p := range page.Products {
		list.Rows = append(list.Rows, productRow{ProductDetail: p, CategoryNames: categoryNames(p.Categories)})
	}
	c.render(w, r, "products", "Products", list)
}

func categoryNames(refs []domain.CategoryRef) string {
	if len(refs) == 0 {
		return uncategorized
	}
	names := make([]string, len(refs))
	for i, ref := range refs {
		names[i] = ref.Name
	}
	return strings.Join(names, ", ")
}

func (c *Console) HandleBlogs(w http.ResponseWriter, r *http.Request) {
	if !c.allowed(w, r, policy.ResourceBlog) {
		return
	}

	page, err := c.src.Blogs.List(r.Context(), httpjson.PageFrom(r))
	if err != nil {
		c.fail(w, err, "blogs")
		return
	}
	c.render(w, r, "blogs", "Blogs", page)
}

func (c *Console) HandleUsers(w http.ResponseWriter, r *http.Request) {
	if !c.allowed(w, r, policy.ResourceUser) {
		return
	}

	users, err := c.src.Staff.List(r.Context())
	if err != nil {
		c.fail(w, err, "users")
		return
	}
	c.render(w, r, "users", "Users", users)
}

func (c *Console) HandleRoles(w http.ResponseWriter, r *http.Request) {
	if !c.allowed(w, r, policy.ResourceRole) {
		return
	}

	roles, err := c.src.Staff.ListRoles(r.Context())
	if err != nil {
		c.fail(w, err, "roles")
		return
	}
	c.render(w, r, "roles", "Roles", roles)
}

func (c *Console) HandleFeedback(w http.ResponseWriter, r *http.Request) {
	if !c.allowed(w, r, policy.ResourceFeedback) {
		return
	}

	entries, err := c.src.Feedback.List(r.Context())
	if err != nil {
		c.fail(w, err, "feedback")
		return
	}
	c.render(w, r, "feedback", "Feedback", entries)
}

func (c *Console) HandleOrders(w http.ResponseWriter, r *http.Request) {
	if !c.allowed(w, r, policy.ResourceOrder) {
		return
	}

	orders, err := c.src.Orders.List(r.Context())
	if err != nil {
		c.fail(w, err, "orders")
		return
	}
	c.render(w, r, "orders", "Orders", orders)
}
