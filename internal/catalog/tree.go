package catalog

import (
	"strings"
	"time"

	"github.com/SarthakSoni31/Driven-backend/internal/domain"
	"github.com/SarthakSoni31/Driven-backend/internal/policy"
)

type Node struct {
	Category domain.Category
	Children []*Node
}

// BuildTree links categories to their parents, keeping input order among
// siblings. A category whose parent is absent, unresolvable or part of a
// parent cycle becomes a root, so every input appears exactly once.
func BuildTree(categories []domain.Category) []*Node {
	nodes := make([]*Node, len(categories))
	byID := make(map[string]*Node, len(categories))
	for i := range categories {
		nodes[i] = &Node{Category: categories[i]}
		if _, dup := byID[categories[i].ID]; !dup {
			byID[categories[i].ID] = nodes[i]
		}
	}

	roots := make([]*Node, 0)
	for _, n := range nodes {
		parent := parentOf(n, byID)
		if parent == nil {
			roots = append(roots, n)
			continue
		}
		parent.Children = append(parent.Children, n)
	}
	return roots
}

func parentOf(n *Node, byID map[string]*Node) *Node {
	if n.Category.ParentID == nil {
		return nil
	}
	parent, ok := byID[*n.Category.ParentID]
	if !ok || parent == n {
		return nil
	}

	seen := map[*Node]bool{n: true}
	for cur := parent; cur.Category.ParentID != nil; {
		next, ok := byID[*cur.Category.ParentID]
		if !ok {
			break
		}
		if next == n {
			return nil
		}
		if seen[next] {
			break
		}
		seen[next] = true
		cur = next
	}
	return parent
}

type Row struct {
	ID          string                `json:"id"`
	Name        string                `json:"name"`
	DisplayName string                `json:"display_name"`
	Slug        string                `json:"slug"`
	Status      domain.CategoryStatus `json:"status"`
	Level       int                   `json:"level"`
	CreatedAt   time.Time             `json:"created_at"`
	CanEdit     bool                  `json:"can_edit"`
	CanDelete   bool                  `json:"can_delete"`
}

// RenderRows flattens the forest in pre-order. Nested rows are prefixed with
// two dashes per level.
func RenderRows(roots []*Node, role string, p *policy.Policy) []Row {
	canDelete := p.Allow(role, policy.ActionDelete, policy.ResourceCategory)

	rows := make([]Row, 0, len(roots))
	var walk func(n *Node, level int)
	walk = func(n *Node, level int) {
		rows = append(rows, Row{
			ID:          n.Category.ID,
			Name:        n.Category.Name,
			DisplayName: displayName(n.Category.Name, level),
			Slug:        n.Category.Slug,
			Status:      n.Category.Status,
			Level:       level,
			CreatedAt:   n.Category.CreatedAt,
			CanEdit:     true,
			CanDelete:   canDelete,
		})
		for _, c := range n.Children {
			walk(c, level+1)
		}
	}
	for _, r := range roots {
		walk(r, 0)
	}
	return rows
}

func displayName(name string, level int) string {
	if level == 0 {
		return name
	}
	return strings.Repeat("-", level*2) + " " + name
}

// CheckParent validates assigning parentID to the category selfID (empty
// for a new category). The parent must exist and must not be the category
// itself or one of its descendants.
func CheckParent(categories []domain.Category, selfID, parentID string) error {
	parents := make(map[string]*string, len(categories))
	for _, c := range categories {
		parents[c.ID] = c.ParentID
	}

	if _, ok := parents[parentID]; !ok {
		return domain.Invalid("parent_id", "parent category does not exist")
	}
	if selfID == "" {
		return nil
	}
	if parentID == selfID {
		return domain.Invalid("parent_id", "category cannot be its own parent")
	}

	seen := make(map[string]bool)
	for cur := parentID; ; {
		if cur == selfID {
			return domain.Invalid("parent_id", "parent category is a descendant of this category")
		}
		if seen[cur] {
			return nil
		}
		seen[cur] = true

		next := parents[cur]
		if next == nil {
			return nil
		}
		cur = *next
	}
}
