package domain

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// BusinessYear identifies one business's allocation record for one tax year.
type BusinessYear struct {
	BusinessID string
	Year       int
}

func (b BusinessYear) String() string {
	return fmt.Sprintf("%s/%d", b.BusinessID, b.Year)
}

// ActivityRef identifies one configured activity within a business year.
type ActivityRef struct {
	BusinessYear
	ActivityID string
}

// AllocationKey is the composite key for a subcomponent allocation.
// Phase and step names disambiguate subcomponents that share a name
// across steps. Keys are comparable and totally ordered.
type AllocationKey struct {
	Phase          string
	Step           string
	SubcomponentID string
}

// Compare returns -1, 0, or 1 ordering keys by (phase, step, subcomponent).
func (k AllocationKey) Compare(other AllocationKey) int {
	if c := strings.Compare(k.Phase, other.Phase); c != 0 {
		return c
	}
	if c := strings.Compare(k.Step, other.Step); c != 0 {
		return c
	}
	return strings.Compare(k.SubcomponentID, other.SubcomponentID)
}

const keySeparator = "__"

// Encode renders the key in its serialized form "phase__step__subID".
// Only used at storage/wire boundaries; in-memory lookups use the struct.
func (k AllocationKey) Encode() string {
	return k.Phase + keySeparator + k.Step + keySeparator + k.SubcomponentID
}

// ParseAllocationKey parses the serialized "phase__step__subID" form.
// The subcomponent ID may not contain the separator; phase and step are
// split on the first two occurrences.
func ParseAllocationKey(s string) (AllocationKey, error) {
	parts := strings.SplitN(s, keySeparator, 3)
	if len(parts) != 3 {
		return AllocationKey{}, fmt.Errorf("malformed allocation key %q", s)
	}
	return AllocationKey{Phase: parts[0], Step: parts[1], SubcomponentID: parts[2]}, nil
}

// SubcomponentAllocation is one selected subcomponent under an activity
// configuration, with the nested percentages that feed applied percent.
type SubcomponentAllocation struct {
	SubcomponentID   string
	SubcomponentName string
	Phase            string
	Step             string

	TimePercent      float64 // share of activity time occupied by this subcomponent's step
	FrequencyPercent float64 // share of the step's occurrences
	YearPercent      float64 // share of the year the work ran

	StartYear     int
	SelectedRoles []string
	IsNonRD       bool

	// Seq preserves insertion order within the activity. The sparse map
	// itself is unordered; even distribution and top-activity tie-breaks
	// depend on the order selections were made.
	Seq int

	// CatalogMiss records that the (phase, step) pair had no catalog
	// match at the time of selection. Advisory only; the allocation is
	// retained so the user can reconcile it.
	CatalogMiss bool
}

// Key returns the composite key identifying this allocation.
func (s *SubcomponentAllocation) Key() AllocationKey {
	return AllocationKey{Phase: s.Phase, Step: s.Step, SubcomponentID: s.SubcomponentID}
}

// ActivityConfiguration is one business-year's configuration of a single
// activity: its practice percent, non-R&D time, roles, and the sparse map
// of selected subcomponents.
//
// NonRDTime is an independent 0-100 indicator, not the complement of
// PracticePercent; a third "unaccounted" bucket is allowed.
type ActivityConfiguration struct {
	ID           string
	BusinessID   string
	Year         int
	ActivityID   string
	ActivityName string

	PracticePercent float64
	NonRDTime       float64
	Active          bool
	SelectedRoles   []string

	Subcomponents map[AllocationKey]*SubcomponentAllocation

	// LockedSteps holds step names whose time percent is user-pinned and
	// therefore excluded from even redistribution.
	LockedSteps []string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Ref returns the activity's identifying tuple.
func (c *ActivityConfiguration) Ref() ActivityRef {
	return ActivityRef{
		BusinessYear: BusinessYear{BusinessID: c.BusinessID, Year: c.Year},
		ActivityID:   c.ActivityID,
	}
}

// UpsertSubcomponent inserts or replaces the allocation under its
// composite key, allocating the sparse map on first use.
func (c *ActivityConfiguration) UpsertSubcomponent(sub *SubcomponentAllocation) {
	if c.Subcomponents == nil {
		c.Subcomponents = make(map[AllocationKey]*SubcomponentAllocation)
	}
	c.Subcomponents[sub.Key()] = sub
}

// RemoveSubcomponent deletes the allocation for the given key.
// Returns true if an entry was removed.
func (c *ActivityConfiguration) RemoveSubcomponent(key AllocationKey) bool {
	if c.Subcomponents == nil {
		return false
	}
	if _, ok := c.Subcomponents[key]; !ok {
		return false
	}
	delete(c.Subcomponents, key)
	return true
}

// SortedKeys returns the allocation keys in their canonical order.
func (c *ActivityConfiguration) SortedKeys() []AllocationKey {
	keys := make([]AllocationKey, 0, len(c.Subcomponents))
	for k := range c.Subcomponents {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Compare(keys[j]) < 0 })
	return keys
}

// OrderedSubcomponents returns allocations in insertion order (Seq),
// falling back to canonical key order for equal sequence numbers.
func (c *ActivityConfiguration) OrderedSubcomponents() []*SubcomponentAllocation {
	subs := make([]*SubcomponentAllocation, 0, len(c.Subcomponents))
	for _, s := range c.Subcomponents {
		subs = append(subs, s)
	}
	sort.Slice(subs, func(i, j int) bool {
		if subs[i].Seq != subs[j].Seq {
			return subs[i].Seq < subs[j].Seq
		}
		return subs[i].Key().Compare(subs[j].Key()) < 0
	})
	return subs
}

// NextSeq returns the next insertion sequence number for this activity.
func (c *ActivityConfiguration) NextSeq() int {
	max := 0
	for _, s := range c.Subcomponents {
		if s.Seq > max {
			max = s.Seq
		}
	}
	return max + 1
}

// StepNames returns the distinct (phase, step) step names in canonical
// key order, preserving first occurrence per step.
func (c *ActivityConfiguration) StepNames() []string {
	seen := make(map[string]bool)
	var steps []string
	for _, k := range c.SortedKeys() {
		if !seen[k.Step] {
			seen[k.Step] = true
			steps = append(steps, k.Step)
		}
	}
	return steps
}

// IsStepLocked reports whether the named step's time percent is pinned.
func (c *ActivityConfiguration) IsStepLocked(step string) bool {
	for _, s := range c.LockedSteps {
		if s == step {
			return true
		}
	}
	return false
}

// LockStep pins the named step's time percent. No-op if already locked.
func (c *ActivityConfiguration) LockStep(step string) {
	if c.IsStepLocked(step) {
		return
	}
	c.LockedSteps = append(c.LockedSteps, step)
}

// UnlockStep releases a pinned step. No-op if not locked.
func (c *ActivityConfiguration) UnlockStep(step string) {
	for i, s := range c.LockedSteps {
		if s == step {
			c.LockedSteps = append(c.LockedSteps[:i], c.LockedSteps[i+1:]...)
			return
		}
	}
}

// Clone returns a deep copy of the configuration.
func (c *ActivityConfiguration) Clone() *ActivityConfiguration {
	out := *c
	out.SelectedRoles = append([]string(nil), c.SelectedRoles...)
	out.LockedSteps = append([]string(nil), c.LockedSteps...)
	out.Subcomponents = make(map[AllocationKey]*SubcomponentAllocation, len(c.Subcomponents))
	for k, sub := range c.Subcomponents {
		cp := *sub
		cp.SelectedRoles = append([]string(nil), sub.SelectedRoles...)
		out.Subcomponents[k] = &cp
	}
	return &out
}

// ClampPercent bounds a percentage to [0, 100].
func ClampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// NormalizeRoles sorts and de-duplicates a role set, dropping empties.
func NormalizeRoles(roles []string) []string {
	seen := make(map[string]bool, len(roles))
	var out []string
	for _, r := range roles {
		if r == "" || seen[r] {
			continue
		}
		seen[r] = true
		out = append(out, r)
	}
	sort.Strings(out)
	return out
}
