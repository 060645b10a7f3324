package rules

import (
	"strings"

	"github.com/cookieaudit/cookieaudit/internal/crawldb"
	"github.com/cookieaudit/cookieaudit/internal/matcher"
	"github.com/cookieaudit/cookieaudit/pkg/logger"
)

type cookieIdent struct {
	name, domain, site string
}

// declaredDomains splits a declared domain field on "<br/>", or on commas when
// there is no "<br/>".
func declaredDomains(field string) []string {
	if strings.Contains(field, matcher.DomainSeparator) {
		return strings.Split(field, matcher.DomainSeparator)
	}
	return strings.Split(field, ",")
}

// Undeclared flags cookies observed on sites with a working CMP that the
// site's consent notice never declares. Cookies are identified by name,
// canonical domain and site; the first observation is reported.
func Undeclared(entries []crawldb.ConsentEntry, observed []crawldb.ObservedCookie, log logger.Logger) *Report[crawldb.ObservedCookie] {
	log.Info("Running method 05: Undeclared Cookies")
	r := newReport[crawldb.ObservedCookie]("method5")

	declared := make(map[cookieIdent]struct{})
	for _, e := range entries {
		for _, d := range declaredDomains(e.Domain) {
			declared[cookieIdent{e.Name, matcher.CanonicalDomain(strings.TrimSpace(d)), e.SiteURL}] = struct{}{}
		}
	}

	first := make(map[cookieIdent]struct{})
	for _, o := range observed {
		if !hasWorkingCMP(o.CMPType, o.CrawlState) {
			continue
		}
		id := cookieIdent{o.Name, matcher.CanonicalDomain(o.Host), o.SiteURL}
		if _, ok := first[id]; ok {
			continue
		}
		first[id] = struct{}{}
		r.examine(o.SiteURL)
		if _, ok := declared[id]; !ok {
			r.add(o.SiteURL, o.CMPType, -1, o)
		}
	}

	log.Info("Total cookies collected from websites with a CMP: %d", r.Examined)
	log.Info("Number of cookies that have not been found in consent notices: %d", r.Violations())
	log.Info("Total sites with a supported, functioning CMP: %d", len(r.Sites))
	log.Info("Number of sites with undeclared cookies on said CMP: %d", len(r.Details))
	r.logCMP(log)
	return r
}
