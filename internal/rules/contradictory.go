package rules

import (
	"slices"

	"github.com/cookieaudit/cookieaudit/internal/crawldb"
	"github.com/cookieaudit/cookieaudit/internal/matcher"
	"github.com/cookieaudit/cookieaudit/pkg/logger"
)

// NecessaryDomains names the ExtraDomains list of sites whose conflicting
// labels involve the necessary category.
const NecessaryDomains = "necessary"

// ContradictoryFinding is a cookie a site declares more than once with
// different labels. AdditionalLabels holds every later label that differed
// from the first.
type ContradictoryFinding struct {
	crawldb.ConsentEntry
	AdditionalLabels []int `json:"additional_labels"`
}

// Contradictory flags cookies that one site declares with differing labels.
func Contradictory(entries []crawldb.ConsentEntry, log logger.Logger) *Report[ContradictoryFinding] {
	log.Info("Running method 06: Contradictory Labels")
	r := newReport[ContradictoryFinding]("method6")

	byKey := make(map[string]*ContradictoryFinding)
	var order []*ContradictoryFinding
	for _, e := range entries {
		key := e.SiteURL + ";" + e.Name + ";" + e.Domain
		if f, ok := byKey[key]; ok {
			if f.CategoryID != e.CategoryID {
				f.AdditionalLabels = append(f.AdditionalLabels, e.CategoryID)
			}
			continue
		}
		f := &ContradictoryFinding{ConsentEntry: e, AdditionalLabels: []int{}}
		byKey[key] = f
		order = append(order, f)
	}

	for _, f := range order {
		r.examine(f.SiteURL)
		if len(f.AdditionalLabels) == 0 {
			continue
		}
		r.add(f.SiteURL, f.CMPType, slotOrInvalid(f.CategoryID), *f)
		if f.CategoryID == int(matcher.SlotNecessary) || slices.Contains(f.AdditionalLabels, int(matcher.SlotNecessary)) {
			r.Extra[NecessaryDomains]++
			r.addDomain(NecessaryDomains, f.SiteURL)
		}
	}

	log.Info("Total number of consent table entries: %d", r.Examined)
	log.Info("Number of declared cookies with multiple conflicting labels: %d", r.Violations())
	log.Info("Number of sites with working CMP and declared cookies in total: %d", len(r.Sites))
	log.Info("Number of sites that declare conflicting labels: %d", len(r.Details))
	log.Info("Number of conflicting labels with necessary cookies: %d", r.Extra[NecessaryDomains])
	log.Info("Number of sites that declare conflicting labels with necessary cookies: %d", len(r.ExtraDomains[NecessaryDomains]))
	r.logCMP(log)
	return r
}
