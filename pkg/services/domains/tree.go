package domains

import "github.com/de-tools/grc-admin/pkg/models/domain"

// BuildTree nests domains under their parents, keeping the input order among
// siblings. Domains whose parent is absent become roots.
func BuildTree(items []domain.ControlDomain, counts map[string]int) []*domain.DomainNode {
	nodes := make(map[string]*domain.DomainNode, len(items))
	for _, d := range items {
		nodes[d.ID] = &domain.DomainNode{
			Domain:       d,
			ControlCount: counts[d.ID],
			Children:     []*domain.DomainNode{},
		}
	}

	roots := []*domain.DomainNode{}
	for _, d := range items {
		node := nodes[d.ID]
		parent, ok := nodes[d.ParentID]
		if d.ParentID == "" || !ok || d.ParentID == d.ID {
			roots = append(roots, node)
			continue
		}
		parent.Children = append(parent.Children, node)
	}
	return roots
}

// createsCycle reports whether making parentID the parent of id would make id
// its own ancestor. parents maps each domain to its current parent.
func createsCycle(id, parentID string, parents map[string]string) bool {
	seen := map[string]bool{}
	for cur := parentID; cur != ""; cur = parents[cur] {
		if cur == id {
			return true
		}
		if seen[cur] {
			return false
		}
		seen[cur] = true
	}
	return false
}
