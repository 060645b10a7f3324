package rules

import (
	"github.com/cookieaudit/cookieaudit/internal/crawldb"
	"github.com/cookieaudit/cookieaudit/internal/matcher"
	"github.com/cookieaudit/cookieaudit/pkg/logger"
)

// WrongLabel flags declarations of a well known cookie, Google Analytics by
// default, whose label differs from the expected one. Unlabelled declarations
// are not flagged.
func WrongLabel(entries []crawldb.ConsentEntry, opts WrongLabelOptions, log logger.Logger) *Report[crawldb.ConsentEntry] {
	log.Info("Running method 01: Wrong Label for Known Cookie")
	r := newReport[crawldb.ConsentEntry]("method1")

	for _, e := range entries {
		if !opts.Name.MatchString(e.Name) || !opts.Domain.MatchString(e.Domain) {
			continue
		}
		r.examine(e.SiteURL)
		if e.CategoryID == opts.Expected || e.CategoryID == matcher.CategoryUnknown {
			continue
		}
		r.add(e.SiteURL, e.CMPType, slotOrInvalid(e.CategoryID), e)
	}

	log.Info("Total matching cookies found: %d", r.Examined)
	log.Info("Number of potential violations: %v", r.Counts)
	log.Info("Number of sites that have the cookie in total: %d", len(r.Sites))
	log.Info("Number of sites with potential violations: %d", len(r.Details))
	r.logCMP(log)
	return r
}
