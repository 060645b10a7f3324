package rules

import (
	"sort"

	"github.com/cookieaudit/cookieaudit/internal/crawldb"
	"github.com/cookieaudit/cookieaudit/internal/matcher"
	"github.com/cookieaudit/cookieaudit/pkg/logger"
)

// Report collects the findings of one rule.
type Report[T any] struct {
	// Name is the base of the report file names, such as "method1".
	Name string
	// Details maps a site URL to the findings on that site.
	Details map[string][]T
	// Counts are violations per category slot.
	Counts [matcher.NumSlots]int
	// PerCMP are violations per consent management platform.
	PerCMP [crawldb.NumCMPs]int
	// Examined is the number of entries the rule looked at, and Sites the
	// sites they came from.
	Examined int
	Sites    map[string]struct{}
	// Extra holds rule specific counters and ExtraDomains rule specific
	// site lists.
	Extra        map[string]int
	ExtraDomains map[string]map[string]struct{}

	violations int
}

func newReport[T any](name string) *Report[T] {
	return &Report[T]{
		Name:         name,
		Details:      make(map[string][]T),
		Sites:        make(map[string]struct{}),
		Extra:        make(map[string]int),
		ExtraDomains: make(map[string]map[string]struct{}),
	}
}

func (r *Report[T]) examine(site string) {
	r.Examined++
	r.Sites[site] = struct{}{}
}

// add records a finding. Slots and CMP types out of range are not counted.
func (r *Report[T]) add(site string, cmp int, slot matcher.Slot, f T) {
	r.Details[site] = append(r.Details[site], f)
	r.violations++
	if slot >= 0 && int(slot) < matcher.NumSlots {
		r.Counts[slot]++
	}
	if cmp >= 0 && cmp < crawldb.NumCMPs {
		r.PerCMP[cmp]++
	}
}

func (r *Report[T]) addDomain(list, site string) {
	set, ok := r.ExtraDomains[list]
	if !ok {
		set = make(map[string]struct{})
		r.ExtraDomains[list] = set
	}
	set[site] = struct{}{}
}

// Violations returns the number of findings.
func (r *Report[T]) Violations() int {
	return r.violations
}

// Domains returns the sites with at least one finding, sorted.
func (r *Report[T]) Domains() []string {
	out := make([]string, 0, len(r.Details))
	for site := range r.Details {
		out = append(out, site)
	}
	sort.Strings(out)
	return out
}

// ExtraDomainList returns the sites of a rule specific list, sorted.
func (r *Report[T]) ExtraDomainList(list string) []string {
	out := make([]string, 0, len(r.ExtraDomains[list]))
	for site := range r.ExtraDomains[list] {
		out = append(out, site)
	}
	sort.Strings(out)
	return out
}

func (r *Report[T]) logCMP(log logger.Logger) {
	log.Info("Potential Violations per CMP Type: %v", r.PerCMP)
}

func slotOrInvalid(categoryID int) matcher.Slot {
	if s, ok := matcher.SlotOf(categoryID); ok {
		return s
	}
	return -1
}
