package rules

import (
	"github.com/cookieaudit/cookieaudit/internal/crawldb"
	"github.com/cookieaudit/cookieaudit/pkg/logger"
)

// Unclassified flags declarations in the uncategorized category or with a
// category name meaning "unclassified". Such cookies usually cannot be
// rejected and carry no description.
func Unclassified(entries []crawldb.ConsentEntry, opts UnclassifiedOptions, log logger.Logger) *Report[crawldb.ConsentEntry] {
	log.Info("Running method 04: Unclassified Cookies")
	r := newReport[crawldb.ConsentEntry]("method4")

	for _, e := range entries {
		r.examine(e.SiteURL)
		if e.CategoryID == 4 || opts.CategoryName.MatchString(e.CategoryName) {
			r.add(e.SiteURL, e.CMPType, slotOrInvalid(e.CategoryID), e)
		}
	}

	log.Info("Total number of cookies: %d", r.Examined)
	log.Info("Number of unclassified cookies: %d", r.Violations())
	log.Info("Number of sites in total: %d", len(r.Sites))
	log.Info("Number of sites with unclassified cookies: %d", len(r.Details))
	r.logCMP(log)
	return r
}
