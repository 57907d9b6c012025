package testutil

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/TaxRx/R-D-Direct-Research-sub001/internal/domain"
	"github.com/google/uuid"
)

var testSeqCounter atomic.Int64

// Configuration options
type ConfigOption func(*domain.ActivityConfiguration)

func WithPracticePercent(p float64) ConfigOption {
	return func(c *domain.ActivityConfiguration) {
		c.PracticePercent = p
	}
}

func WithNonRDTime(p float64) ConfigOption {
	return func(c *domain.ActivityConfiguration) {
		c.NonRDTime = p
	}
}

func WithInactive() ConfigOption {
	return func(c *domain.ActivityConfiguration) {
		c.Active = false
	}
}

func WithConfigRoles(roles ...string) ConfigOption {
	return func(c *domain.ActivityConfiguration) {
		c.SelectedRoles = domain.NormalizeRoles(roles)
	}
}

func WithBusinessYear(businessID string, year int) ConfigOption {
	return func(c *domain.ActivityConfiguration) {
		c.BusinessID = businessID
		c.Year = year
	}
}

// NewTestConfiguration builds an active configuration for the given activity
// with sensible defaults: 100% practice, zero non-R&D time, no subcomponents.
func NewTestConfiguration(activityID string, opts ...ConfigOption) *domain.ActivityConfiguration {
	now := time.Now().UTC()
	c := &domain.ActivityConfiguration{
		ID:              uuid.New().String(),
		BusinessID:      "test-business",
		Year:            2024,
		ActivityID:      activityID,
		ActivityName:    fmt.Sprintf("Activity %s", activityID),
		PracticePercent: 100,
		Active:          true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Allocation options
type AllocOption func(*domain.SubcomponentAllocation)

func WithPercents(timePct, freqPct, yearPct float64) AllocOption {
	return func(s *domain.SubcomponentAllocation) {
		s.TimePercent = timePct
		s.FrequencyPercent = freqPct
		s.YearPercent = yearPct
	}
}

func WithNonRD() AllocOption {
	return func(s *domain.SubcomponentAllocation) {
		s.IsNonRD = true
	}
}

func WithAllocRoles(roles ...string) AllocOption {
	return func(s *domain.SubcomponentAllocation) {
		s.SelectedRoles = domain.NormalizeRoles(roles)
	}
}

func WithCatalogMiss() AllocOption {
	return func(s *domain.SubcomponentAllocation) {
		s.CatalogMiss = true
	}
}

func WithSeq(seq int) AllocOption {
	return func(s *domain.SubcomponentAllocation) {
		s.Seq = seq
	}
}

// NewTestAllocation builds an allocation under the given (phase, step) with
// defaults of 100% frequency, 100% year, and a fresh insertion sequence.
func NewTestAllocation(phase, step, subID string, opts ...AllocOption) *domain.SubcomponentAllocation {
	s := &domain.SubcomponentAllocation{
		SubcomponentID:   subID,
		SubcomponentName: fmt.Sprintf("Subcomponent %s", subID),
		Phase:            phase,
		Step:             step,
		FrequencyPercent: 100,
		YearPercent:      100,
		StartYear:        2024,
		Seq:              int(testSeqCounter.Add(1)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}
