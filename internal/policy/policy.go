// Package policy decides which staff roles may perform which actions on which
// resources. Every admin handler and the category row renderer consult it.
package policy

import (
	"fmt"

	"github.com/SarthakSoni31/Driven-backend/internal/domain"
)

type Action string

const (
	ActionView   Action = "view"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

type Resource string

const (
	ResourceCategory     Resource = "category"
	ResourceProduct      Resource = "product"
	ResourceBlog         Resource = "blog"
	ResourceBlogCategory Resource = "blog_category"
	ResourceUser         Resource = "user"
	ResourceRole         Resource = "role"
	ResourceFeedback     Resource = "feedback"
	ResourceOrder        Resource = "order"
)

type rule struct {
	action   Action
	resource Resource
}

type Policy struct {
	rules map[rule]map[string]bool
}

func New() *Policy {
	return &Policy{rules: make(map[rule]map[string]bool)}
}

// Grant allows roles to perform action on resource.
func (p *Policy) Grant(resource Resource, action Action, roles ...string) *Policy {
	key := rule{action: action, resource: resource}
	if p.rules[key] == nil {
		p.rules[key] = make(map[string]bool)
	}
	for _, r := range roles {
		p.rules[key][r] = true
	}
	return p
}

// Allow reports whether role may perform action on resource. Admin may do
// everything.
func (p *Policy) Allow(role string, action Action, resource Resource) bool {
	if role == domain.RoleAdmin {
		return true
	}
	return p.rules[rule{action: action, resource: resource}][role]
}

func (p *Policy) Check(role string, action Action, resource Resource) error {
	if p.Allow(role, action, resource) {
		return nil
	}
	return fmt.Errorf("%w: role %q may not %s %s", domain.ErrForbidden, role, action, resource)
}

// Default is the access matrix of the console.
func Default() *Policy {
	staff := []string{domain.RoleEditor, domain.RoleCatalogueManager, domain.RoleBlogManager}
	catalogue := []string{domain.RoleEditor, domain.RoleCatalogueManager}
	blog := []string{domain.RoleEditor, domain.RoleBlogManager}

	p := New()
	for _, res := range []Resource{ResourceCategory, ResourceProduct} {
		p.Grant(res, ActionView, staff...).
			Grant(res, ActionCreate, catalogue...).
			Grant(res, ActionUpdate, catalogue...)
	}
	for _, res := range []Resource{ResourceBlog, ResourceBlogCategory} {
		p.Grant(res, ActionView, staff...).
			Grant(res, ActionCreate, blog...).
			Grant(res, ActionUpdate, blog...)
	}
	p.Grant(ResourceFeedback, ActionView, staff...)
	p.Grant(ResourceOrder, ActionView, catalogue...).
		Grant(ResourceOrder, ActionUpdate, domain.RoleEditor)

	return p
}
