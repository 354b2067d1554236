package department

import (
	"sort"
	"time"
)

type Department struct {
	ID          string
	Name        string
	Code        string
	Description *string
	IsActive    bool
	ParentID    *string
	ManagerID   *string
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// Join
	ParentName  *string
	ManagerName *string
	MemberCount int
}

type Member struct {
	UserID     string    `json:"user_id"`
	Email      string    `json:"user_email"`
	FullName   string    `json:"user_name"`
	IsPrimary  bool      `json:"is_primary"`
	AssignedAt time.Time `json:"assigned_at"`
}

type TreeNode struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Code        string     `json:"code"`
	IsActive    bool       `json:"is_active"`
	ManagerName *string    `json:"manager_name,omitempty"`
	MemberCount int        `json:"user_count"`
	Children    []TreeNode `json:"children"`
}

// BuildTree nests departments under their parents, siblings sorted by name. Departments whose parent is not in
// the list become roots.
func BuildTree(departments []Department) []TreeNode {
	present := make(map[string]bool, len(departments))
	for _, d := range departments {
		present[d.ID] = true
	}

	children := make(map[string][]Department)
	var roots []Department
	for _, d := range departments {
		if d.ParentID == nil || !present[*d.ParentID] {
			roots = append(roots, d)
			continue
		}
		children[*d.ParentID] = append(children[*d.ParentID], d)
	}

	var build func(list []Department, seen map[string]bool) []TreeNode
	build = func(list []Department, seen map[string]bool) []TreeNode {
		sort.SliceStable(list, func(i, j int) bool { return list[i].Name < list[j].Name })
		nodes := make([]TreeNode, 0, len(list))
		for _, d := range list {
			if seen[d.ID] {
				continue
			}
			seen[d.ID] = true
			nodes = append(nodes, TreeNode{
				ID:          d.ID,
				Name:        d.Name,
				Code:        d.Code,
				IsActive:    d.IsActive,
				ManagerName: d.ManagerName,
				MemberCount: d.MemberCount,
				Children:    build(children[d.ID], seen),
			})
		}
		return nodes
	}
	return build(roots, make(map[string]bool, len(departments)))
}

// CreatesCycle reports whether making parentID the parent of id would loop. ancestors are the ids on the path
// from parentID up to its root.
func CreatesCycle(id, parentID string, ancestors []string) bool {
	if id == parentID {
		return true
	}
	for _, a := range ancestors {
		if a == id {
			return true
		}
	}
	return false
}
