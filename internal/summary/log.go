package summary

import (
	"fmt"

	"github.com/cookieaudit/cookieaudit/pkg/logger"
)

var labelNames = []struct {
	id   int
	name string
}{
	{-1, "Unknown"},
	{0, "Necessary"},
	{1, "Functionality"},
	{2, "Analytics"},
	{3, "Advertising"},
	{4, "Uncategorised"},
	{99, "Social Media"},
}

func pct(r float64) string {
	return fmt.Sprintf("%.3f%%", r*100)
}

func section(log logger.Logger, title string) {
	log.Info("-------------------------------")
	log.Info("%s", title)
	log.Info("-------------------------------")
}

func (s Summary) log(log logger.Logger) {
	s.All.log(log, s.Total)
	s.WithoutUndeclared.log(log, s.Total)

	section(log, "Method 1-specific Statistics: Google Analytics misclassified")
	for _, l := range labelNames {
		n := s.WrongLabel.SitesByLabel[l.id]
		log.Info("Number of sites with GA misclassified as %s %d -- %s", l.name, n, pct(ratio(n, s.Total)))
	}
	s.WrongLabel.PerSite.log(log)

	section(log, "Method 2-specific Statistics: Majority Outliers")
	log.Info("Number of domains with outliers > %.2f: %d -- %s", MajorityHighRatio, s.Majority.HighRatioSites, pct(ratio(s.Majority.HighRatioSites, s.Total)))
	for _, l := range labelNames {
		n := s.Majority.SitesByLabel[l.id]
		log.Info("Number of sites with Outliers from Majority, classified as %s %d -- %s", l.name, n, pct(ratio(n, s.Total)))
	}
	for _, l := range labelNames {
		n := s.Majority.HighRatioSitesByLabel[l.id]
		log.Info("Number of sites with Outliers from Majority, ratio >%.2f, classified as %s %d -- %s", MajorityHighRatio, l.name, n, pct(ratio(n, s.Total)))
	}
	s.Majority.PerSite.log(log)

	section(log, "Method 3-specific Statistics: Expiration Time Deviation")
	log.Info("Sites with persistent deviation: %d -- %s", s.Expiry.WrongExpirySites, pct(ratio(s.Expiry.WrongExpirySites, s.Total)))
	log.Info("Sites with Persistent as Session: %d -- %s", s.Expiry.PersistentAsSessionSites, pct(ratio(s.Expiry.PersistentAsSessionSites, s.Total)))
	log.Info("Sites with Session as Persistent: %d -- %s", s.Expiry.SessionAsPersistentSites, pct(ratio(s.Expiry.SessionAsPersistentSites, s.Total)))
	log.Info("Expiration Ratio Histogram")
	for _, b := range s.Expiry.RatioHistogram {
		log.Info("[%g, %g): %d", b.Low, b.High, b.Count)
	}
	s.Expiry.PerSite.log(log)

	section(log, "Method 4-specific Statistics: Unclassified Cookies")
	s.Unclassified.log(log, "unclassified", s.Total)
	section(log, "Method 5-specific Statistics: Undeclared Cookies")
	s.Undeclared.log(log, "undeclared", s.Total)

	section(log, "Method 6-specific Statistics: Multiple Declarations")
	log.Info("Number of sites with necessary cookies that have 'analytics' or 'advertising' as dual label: %d -- %s",
		s.Contradictory.NecessaryDualSites, pct(ratio(s.Contradictory.NecessaryDualSites, s.Total)))
	log.Info("Number of sites with functional cookies that have 'analytics' or 'advertising' as dual label: %d -- %s",
		s.Contradictory.FunctionalityDualSites, pct(ratio(s.Contradictory.FunctionalityDualSites, s.Total)))
	s.Contradictory.PerSite.log(log)

	section(log, "Method 7-specific Statistics: Implicit Consent")
	s.ImplicitConsent.log(log)
	section(log, "Method 8-specific Statistics: Ignored Consent Choices")
	s.IgnoredChoices.log(log)
	if s.IgnoredChoicesCookiebot != nil {
		section(log, "Method 8-specific Statistics: Ignored Consent Choices (Only Cookiebot)")
		s.IgnoredChoicesCookiebot.log(log)
	}
}

func (d Distribution) log(log logger.Logger, total int) {
	section(log, "General Statistics -- "+d.Title)
	log.Info("Total Domain Count: %d", total)
	log.Info("Domains with at least 1 problem: %d -- %s", d.WithProblem, pct(d.Ratio))
	log.Info("Violation Counts per Method: %v", d.PerMethod)
	log.Info("Violation Ratio per Method: %.5f", d.MethodRatio)
	log.Info("Number of sites with the exact count of violations (as key): %v", d.Exact)
	for _, l := range d.Cumulative {
		if n, ok := d.Exact[l.AtLeast]; ok {
			log.Info("Exactly %d potential violations: %d -- %s", l.AtLeast, n, pct(ratio(n, total)))
		}
	}
	for _, l := range d.Cumulative {
		log.Info("Cumulative Distribution: at least %d potential violations: %d -- %s", l.AtLeast, l.Sites, pct(l.Ratio))
	}
}

func (p PerSite) log(log logger.Logger) {
	log.Info("Mean violation cookies per site: %.1f", p.Mean)
	log.Info("Median violation cookies per site: %.1f", p.Median)
	log.Info("Standard Deviation of violation cookies per site: %.1f", p.Stdev)
}

func (c CountStats) log(log logger.Logger, what string, total int) {
	log.Info("Number of sites with at least 5 %s cookies: %d -- %s", what, c.AtLeast5, pct(ratio(c.AtLeast5, total)))
	log.Info("Number of sites with at least 10 %s cookies: %d -- %s", what, c.AtLeast10, pct(ratio(c.AtLeast10, total)))
	log.Info("Number of sites with at least 25 %s cookies: %d -- %s", what, c.AtLeast25, pct(ratio(c.AtLeast25, total)))
	c.PerSite.log(log)
}

func (c ConsentStats) log(log logger.Logger) {
	log.Info("total domains of that run: %d", c.Total)
	log.Info("Number of sites that set any cookie other than 'necessary': %d -- %.2f%%", c.NonNecessarySites, c.NonNecessaryRatio*100)
	log.Info("Number of sites that set 'advertising' and 'analytics' cookies: %d -- %.2f%%", c.AnalyticsOrAdsSites, c.AnalyticsOrAdsRatio*100)
}
