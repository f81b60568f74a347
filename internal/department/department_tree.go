package department

import "sort"

type node struct {
	dept     DepartmentResponse
	children []*node
}

// arena indexes every department of a company by id so parent chains can be
// walked without further queries.
type arena map[string]*node

func newArena(depts []DepartmentResponse) arena {
	a := make(arena, len(depts))
	for _, d := range depts {
		a[d.ID] = &node{dept: d}
	}
	for _, n := range a {
		if parent, ok := a[n.dept.ParentID]; ok && n.dept.ParentID != n.dept.ID {
			parent.children = append(parent.children, n)
		}
	}
	return a
}

func (a arena) has(id string) bool {
	_, ok := a[id]
	return ok
}

// wouldCycle reports whether making parentID the parent of id closes a loop,
// i.e. parentID is id itself or one of its descendants.
func (a arena) wouldCycle(id, parentID string) bool {
	seen := make(map[string]bool)
	for cur := parentID; cur != ""; {
		if cur == id {
			return true
		}
		if seen[cur] {
			// existing data already loops; refuse to extend it
			return true
		}
		seen[cur] = true

		n, ok := a[cur]
		if !ok {
			return false
		}
		cur = n.dept.ParentID
	}
	return false
}

// roots returns the nested tree ordered by name at every level. Departments
// whose parent is missing (deleted) are promoted to roots.
func (a arena) roots() []DepartmentNode {
	var top []*node
	for _, n := range a {
		if n.dept.ParentID == "" || n.dept.ParentID == n.dept.ID || !a.has(n.dept.ParentID) {
			top = append(top, n)
		}
	}
	return buildNodes(top)
}

func buildNodes(nodes []*node) []DepartmentNode {
	sort.Slice(nodes, func(i, j int) bool {
		if nodes[i].dept.Name == nodes[j].dept.Name {
			return nodes[i].dept.ID < nodes[j].dept.ID
		}
		return nodes[i].dept.Name < nodes[j].dept.Name
	})

	out := make([]DepartmentNode, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, DepartmentNode{
			DepartmentResponse: n.dept,
			Children:           buildNodes(n.children),
		})
	}
	return out
}
