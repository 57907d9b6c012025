// Package catalog provides read-only access to the research taxonomy
// (category → area → focus → activity → phase → step → subcomponent).
// The engine consumes the Catalog interface only; the bundled provider
// holds the tree in memory, loaded from a YAML taxonomy file.
package catalog

import (
	"strings"

	"github.com/TaxRx/R-D-Direct-Research-sub001/internal/domain"
)

// Catalog is the taxonomy lookup contract consumed by the allocation
// engine. Lookups are tolerant: a miss is a (nil, false) result, never an
// error, because user-entered data may reference activities the catalog
// no longer carries.
type Catalog interface {
	NodeByID(id string) (*domain.TaxonomyNode, bool)
	ActivityByID(id string) (*domain.TaxonomyNode, bool)
	ChildrenOf(nodeID string) []*domain.TaxonomyNode
	LookupSubcomponent(activityName, subcomponentName string) (*domain.TaxonomyNode, bool)
}

// Memory is an in-memory Catalog over a flat node list.
type Memory struct {
	nodes    []*domain.TaxonomyNode
	byID     map[string]*domain.TaxonomyNode
	children map[string][]*domain.TaxonomyNode
}

// NewMemory indexes the given nodes. Child ordering follows input order.
func NewMemory(nodes []*domain.TaxonomyNode) *Memory {
	m := &Memory{
		nodes:    nodes,
		byID:     make(map[string]*domain.TaxonomyNode, len(nodes)),
		children: make(map[string][]*domain.TaxonomyNode),
	}
	for _, n := range nodes {
		m.byID[n.ID] = n
		if n.ParentID != "" {
			m.children[n.ParentID] = append(m.children[n.ParentID], n)
		}
	}
	return m
}

func (m *Memory) NodeByID(id string) (*domain.TaxonomyNode, bool) {
	n, ok := m.byID[id]
	return n, ok
}

func (m *Memory) ActivityByID(id string) (*domain.TaxonomyNode, bool) {
	n, ok := m.byID[id]
	if !ok || n.Level != domain.LevelActivity {
		return nil, false
	}
	return n, true
}

func (m *Memory) ChildrenOf(nodeID string) []*domain.TaxonomyNode {
	return m.children[nodeID]
}

// LookupSubcomponent resolves a subcomponent by name. Matching order:
// exact match scoped to the named activity, then case-insensitive
// substring scoped to the activity, then unscoped substring as a last
// resort.
func (m *Memory) LookupSubcomponent(activityName, subcomponentName string) (*domain.TaxonomyNode, bool) {
	scoped := m.subcomponentsUnder(activityName)

	for _, n := range scoped {
		if n.Name == subcomponentName {
			return n, true
		}
	}

	needle := strings.ToLower(subcomponentName)
	for _, n := range scoped {
		if strings.Contains(strings.ToLower(n.Name), needle) {
			return n, true
		}
	}

	for _, n := range m.nodes {
		if n.Level == domain.LevelSubcomponent && strings.Contains(strings.ToLower(n.Name), needle) {
			return n, true
		}
	}

	return nil, false
}

// subcomponentsUnder collects the subcomponents of every activity whose
// name matches (case-insensitively) the given activity name.
func (m *Memory) subcomponentsUnder(activityName string) []*domain.TaxonomyNode {
	var out []*domain.TaxonomyNode
	for _, n := range m.nodes {
		if n.Level != domain.LevelActivity || !strings.EqualFold(n.Name, activityName) {
			continue
		}
		for _, phase := range m.ChildrenOf(n.ID) {
			for _, step := range m.ChildrenOf(phase.ID) {
				out = append(out, m.ChildrenOf(step.ID)...)
			}
		}
	}
	return out
}

// ResolveSubcomponent resolves a user-entered subcomponent reference,
// which may be a catalog id or a display name, against the catalog.
// Name matching follows LookupSubcomponent's tolerant order.
func ResolveSubcomponent(c Catalog, activityName, idOrName string) (*domain.TaxonomyNode, bool) {
	if n, ok := c.NodeByID(idOrName); ok && n.Level == domain.LevelSubcomponent {
		return n, true
	}
	return c.LookupSubcomponent(activityName, idOrName)
}

// HasStep reports whether the activity has a phase with the given name
// containing a step with the given name. Used by validation to detect
// orphaned (phase, step) references.
func HasStep(c Catalog, activityID, phase, step string) bool {
	act, ok := c.ActivityByID(activityID)
	if !ok {
		return false
	}
	for _, p := range c.ChildrenOf(act.ID) {
		if !strings.EqualFold(p.Name, phase) {
			continue
		}
		for _, s := range c.ChildrenOf(p.ID) {
			if strings.EqualFold(s.Name, step) {
				return true
			}
		}
	}
	return false
}
