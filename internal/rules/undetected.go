package rules

import (
	"strings"

	"github.com/cookieaudit/cookieaudit/internal/crawldb"
	"github.com/cookieaudit/cookieaudit/internal/matcher"
	"github.com/cookieaudit/cookieaudit/pkg/logger"
)

// Cookie type ids that denote HTTP and HTML cookies. An id of 0 means the CMP
// did not record a type.
const (
	typeHTTP = 1
	typeHTML = 2
)

// Undetected lists HTTP and HTML cookies that a consent notice declares but
// the crawler never observed on that site. detected holds the per slot counts
// of declarations that were observed.
func Undetected(entries []crawldb.ConsentEntry, observed []crawldb.ObservedCookie, log logger.Logger) (r *Report[crawldb.ConsentEntry], detected [matcher.NumSlots]int) {
	log.Info("Listing out undetected cookies...")
	r = newReport[crawldb.ConsentEntry]("undetected")

	type nameDomain struct{ name, domain string }
	seen := make(map[string]map[nameDomain]struct{})
	for _, o := range observed {
		if !hasWorkingCMP(o.CMPType, o.CrawlState) {
			continue
		}
		set, ok := seen[o.SiteURL]
		if !ok {
			set = make(map[nameDomain]struct{})
			seen[o.SiteURL] = set
		}
		set[nameDomain{o.Name, matcher.CanonicalDomain(o.Host)}] = struct{}{}
	}

	for _, e := range entries {
		if e.TypeID != 0 && e.TypeID != typeHTTP && e.TypeID != typeHTML {
			continue
		}
		r.examine(e.SiteURL)

		found := false
		for _, d := range strings.Split(e.Domain, matcher.DomainSeparator) {
			if _, ok := seen[e.SiteURL][nameDomain{e.Name, matcher.CanonicalDomain(d)}]; ok {
				found = true
				break
			}
		}
		slot := slotOrInvalid(e.CategoryID)
		if found {
			if slot >= 0 {
				detected[slot]++
			}
			continue
		}
		r.add(e.SiteURL, e.CMPType, slot, e)
	}

	log.Info("Total cookies declared: %d", r.Examined)
	log.Info("Of those found: %v", detected)
	log.Info("Of those not found: %v", r.Counts)
	log.Info("Total sites: %d", len(r.Sites))
	log.Info("Sites with cookies that were not found: %d", len(r.Details))
	if len(r.Sites) > 0 {
		log.Info("Average number of undetected cookies per site: %.2f", float64(r.Violations())/float64(len(r.Sites)))
	}
	log.Info("Undetected cookies per CMP Type: %v", r.PerCMP)
	return r, detected
}
