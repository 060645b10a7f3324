package rules

import (
	"context"
	"fmt"

	"github.com/cookieaudit/cookieaudit/internal/crawldb"
	"github.com/cookieaudit/cookieaudit/internal/matcher"
	"github.com/cookieaudit/cookieaudit/pkg/logger"
)

// ByLabel holds one report per category slot.
type ByLabel [matcher.NumSlots]*Report[*matcher.Record]

func newByLabel(prefix string) ByLabel {
	var b ByLabel
	for _, s := range matcher.Slots() {
		b[s] = newReport[*matcher.Record](prefix + "_" + s.String())
	}
	return b
}

func (b ByLabel) counts() [matcher.NumSlots]int {
	var c [matcher.NumSlots]int
	for i, r := range b {
		c[i] = r.Violations()
	}
	return c
}

// ImplicitConsentReport buckets the cookies set while no consent was given.
// Cookiebot narrows the buckets to Cookiebot sites that never stored a
// consent cookie recording an interaction.
type ImplicitConsentReport struct {
	All       ByLabel
	Cookiebot ByLabel
}

// CookiebotUninteracted returns the Cookiebot sites with a consent cookie
// that never records an explicit choice.
func CookiebotUninteracted(ctx context.Context, src ConsentCookieSource, log logger.Logger) (map[string]struct{}, error) {
	all, err := src.ConsentCookieSites(ctx, crawldb.AllConsentCookies)
	if err != nil {
		return nil, fmt.Errorf("error: cannot list Cookiebot sites: %w", err)
	}
	log.Info("Total of %d domains for Cookiebot.", len(all))
	interacted, err := src.ConsentCookieSites(ctx, crawldb.InteractedConsent)
	if err != nil {
		return nil, fmt.Errorf("error: cannot list Cookiebot sites: %w", err)
	}
	log.Info("Set consent cookie for %d websites anyways.", len(interacted))
	for site := range interacted {
		delete(all, site)
	}
	return all, nil
}

// ImplicitConsent buckets every matched cookie by its declared label. On a
// crawl that never gives consent, any cookie outside the necessary bucket was
// set without consent.
func ImplicitConsent(res *matcher.Result, cookiebotSites map[string]struct{}, log logger.Logger) ImplicitConsentReport {
	log.Info("Running method 07: Implicit Consent")
	out := ImplicitConsentReport{
		All:       newByLabel("method7_cookies"),
		Cookiebot: newByLabel("method7_cookiebot_cookies"),
	}

	sites := make(map[string]struct{})
	for _, rec := range res.Sorted() {
		sites[rec.SiteURL] = struct{}{}
		out.All[rec.Label].add(rec.SiteURL, rec.CMPType, rec.Label, rec)
		if _, ok := cookiebotSites[rec.SiteURL]; ok {
			out.Cookiebot[rec.Label].add(rec.SiteURL, rec.CMPType, rec.Label, rec)
		}
	}

	all, cb := out.All.counts(), out.Cookiebot.counts()
	log.Info("Number of cookies: %d", len(res.Records))
	log.Info("Total number of domains: %d", len(sites))
	log.Info("Cookie counts per class: %v", all)
	log.Info("Cookie counts per class (cookiebot): %v", cb)
	log.Info("Sum of functional, analytics and advertising: %d", sumSlots(all, matcher.SlotFunctionality, matcher.SlotAdvertising))
	log.Info("Sum of functional, analytics and advertising (cookiebot): %d", sumSlots(cb, matcher.SlotFunctionality, matcher.SlotAdvertising))
	for _, s := range matcher.Slots() {
		log.Info("Total number of domains that created a cookie of label: '%s': %d", s, len(out.All[s].Details))
		log.Info("Total number of cookiebot domains that created a cookie of label: '%s': %d", s, len(out.Cookiebot[s].Details))
		log.Info("Cookies per CMP Type: %v", out.All[s].PerCMP)
	}
	return out
}

// IgnoredChoicesLabels is the number of label buckets reported by
// IgnoredChoices, necessary through uncategorized.
const IgnoredChoicesLabels = int(matcher.SlotUncategorized) + 1

// IgnoredChoices buckets the matched cookies of sites whose Cookiebot consent
// cookie confirms that every optional category was rejected.
func IgnoredChoices(res *matcher.Result, rejectedSites map[string]struct{}, log logger.Logger) ByLabel {
	log.Info("Running method 08: Ignored Choices")
	log.Info("Total of %d domains for Cookiebot where consent was confirmed rejected.", len(rejectedSites))
	out := newByLabel("method8_cookies")

	sites := make(map[string]struct{})
	total := 0
	for _, rec := range res.Sorted() {
		if _, ok := rejectedSites[rec.SiteURL]; !ok {
			continue
		}
		total++
		sites[rec.SiteURL] = struct{}{}
		out[rec.Label].add(rec.SiteURL, rec.CMPType, rec.Label, rec)
	}

	counts := out.counts()
	log.Info("Number of cookies: %d", total)
	log.Info("Total number of domains: %d", len(sites))
	log.Info("Cookie counts per class: %v", counts)
	log.Info("Sum of functional, analytics and advertising: %d", sumSlots(counts, matcher.SlotFunctionality, matcher.SlotAdvertising))
	for _, s := range matcher.Slots()[:IgnoredChoicesLabels] {
		log.Info("Total number of domains that created a cookie of label '%s': %d", s, len(out[s].Details))
		log.Info("Cookies per CMP Type: %v", out[s].PerCMP)
	}
	return out
}

func sumSlots(c [matcher.NumSlots]int, from, to matcher.Slot) int {
	n := 0
	for s := from; s <= to; s++ {
		n += c[s]
	}
	return n
}
