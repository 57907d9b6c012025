package domain

// NodeLevel identifies a level of the research taxonomy.
type NodeLevel string

const (
	LevelCategory     NodeLevel = "category"
	LevelArea         NodeLevel = "area"
	LevelFocus        NodeLevel = "focus"
	LevelActivity     NodeLevel = "activity"
	LevelPhase        NodeLevel = "phase"
	LevelStep         NodeLevel = "step"
	LevelSubcomponent NodeLevel = "subcomponent"
)

// taxonomyOrder maps each level to its depth, root first.
var taxonomyOrder = map[NodeLevel]int{
	LevelCategory:     0,
	LevelArea:         1,
	LevelFocus:        2,
	LevelActivity:     3,
	LevelPhase:        4,
	LevelStep:         5,
	LevelSubcomponent: 6,
}

// Depth returns the level's position in the hierarchy (category = 0).
// Unknown levels return -1.
func (l NodeLevel) Depth() int {
	d, ok := taxonomyOrder[l]
	if !ok {
		return -1
	}
	return d
}

// ParentLevel returns the level immediately above l, or "" for the root.
func (l NodeLevel) ParentLevel() NodeLevel {
	d := l.Depth()
	if d <= 0 {
		return ""
	}
	for lvl, depth := range taxonomyOrder {
		if depth == d-1 {
			return lvl
		}
	}
	return ""
}

// TaxonomyNode is one node of the research taxonomy
// (Category → Area → Focus → Activity → Phase → Step → Subcomponent).
// Names need not be unique; IDs must be. Every non-root node has exactly
// one parent one level up.
type TaxonomyNode struct {
	ID       string
	Name     string
	Level    NodeLevel
	ParentID string

	// Descriptive fields (optional, mostly populated at activity level
	// and below).
	Goal               string
	Hypothesis         string
	Uncertainties      string
	Alternatives       string
	DevelopmentProcess string

	// Hint is only meaningful for subcomponents.
	Hint string
}
