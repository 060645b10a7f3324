// Package stats computes first- and third-party ratios and unique name and
// domain counts for declared and observed cookies.
package stats

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/net/publicsuffix"

	"github.com/cookieaudit/cookieaudit/internal/crawldb"
	"github.com/cookieaudit/cookieaudit/pkg/logger"
)

var (
	schemePrefix = regexp.MustCompile(`^https?://`)
	wwwPrefix    = regexp.MustCompile(`^www[0-9]?`)
)

// UniformDomain brings a URL or a cookie domain into one form, so that
// "www.example.com", "https://example.com/" and ".example.com" compare equal.
func UniformDomain(s string) string {
	s = strings.TrimSpace(s)
	s = schemePrefix.ReplaceAllLiteralString(s, "")
	s = wwwPrefix.ReplaceAllLiteralString(s, "")
	s = strings.TrimPrefix(s, ".")
	return strings.TrimSuffix(s, "/")
}

// RegistrableDomain returns the eTLD+1 of a uniform domain, or the domain
// itself if it has none.
func RegistrableDomain(domain string) string {
	host := domain
	if i := strings.IndexAny(host, "/:"); i >= 0 {
		host = host[:i]
	}
	reg, err := publicsuffix.EffectiveTLDPlusOne(strings.ToLower(host))
	if err != nil {
		return domain
	}
	return reg
}

// Party holds the counts of one cookie table.
type Party struct {
	FirstParty               int     `json:"first_party"`
	ThirdParty               int     `json:"third_party"`
	FirstPartyRatio          float64 `json:"first_party_ratio"`
	ThirdPartyRatio          float64 `json:"third_party_ratio"`
	UniqueNames              int     `json:"unique_names"`
	UniqueDomains            int     `json:"unique_domains"`
	UniqueRegistrableDomains int     `json:"unique_registrable_domains"`
}

// Stats are the counts of declared and observed cookies.
type Stats struct {
	Declared Party `json:"declared"`
	Observed Party `json:"observed"`
}

type counter struct {
	first, third int
	names        map[string]struct{}
	domains      map[string]struct{}
	registrable  map[string]struct{}
}

func newCounter() *counter {
	return &counter{
		names:       make(map[string]struct{}),
		domains:     make(map[string]struct{}),
		registrable: make(map[string]struct{}),
	}
}

func (c *counter) party(site, domain string) {
	if UniformDomain(site) != UniformDomain(domain) {
		c.third++
	} else {
		c.first++
	}
}

func (c *counter) name(name, domain string) {
	c.names[name] = struct{}{}
	u := UniformDomain(domain)
	c.domains[u] = struct{}{}
	c.registrable[RegistrableDomain(u)] = struct{}{}
}

func (c *counter) result() Party {
	p := Party{
		FirstParty:               c.first,
		ThirdParty:               c.third,
		UniqueNames:              len(c.names),
		UniqueDomains:            len(c.domains),
		UniqueRegistrableDomains: len(c.registrable),
	}
	if total := c.first + c.third; total > 0 {
		p.FirstPartyRatio = float64(c.first) / float64(total)
		p.ThirdPartyRatio = float64(c.third) / float64(total)
	}
	return p
}

// Source streams both cookie tables.
type Source interface {
	EachConsentEntry(ctx context.Context, fn func(crawldb.ConsentEntry) error) error
	EachObservedCookie(ctx context.Context, fn func(crawldb.ObservedCookie) error) error
}

// Compute reads both tables from src. Every declared entry counts towards the
// party ratio; an observed cookie counts once per (site, name, domain, path).
func Compute(ctx context.Context, src Source, log logger.Logger) (Stats, error) {
	var s Stats

	declared := newCounter()
	err := src.EachConsentEntry(ctx, func(e crawldb.ConsentEntry) error {
		declared.party(e.SiteURL, e.Domain)
		declared.name(e.Name, e.Domain)
		return nil
	})
	if err != nil {
		return s, err
	}
	s.Declared = declared.result()

	observed := newCounter()
	seen := make(map[string]struct{})
	err = src.EachObservedCookie(ctx, func(c crawldb.ObservedCookie) error {
		ident := c.SiteURL + ";" + c.Name + ";" + c.Host + ";" + c.Path
		if _, ok := seen[ident]; !ok {
			seen[ident] = struct{}{}
			observed.party(c.SiteURL, c.Host)
		}
		observed.name(c.Name, c.Host)
		return nil
	})
	if err != nil {
		return s, err
	}
	s.Observed = observed.result()

	s.log(log)
	return s, nil
}

func (s Stats) log(log logger.Logger) {
	log.Info("Number of declared first-party cookies: %d -- %s", s.Declared.FirstParty, percent(s.Declared.FirstPartyRatio))
	log.Info("Number of declared third-party cookies: %d -- %s", s.Declared.ThirdParty, percent(s.Declared.ThirdPartyRatio))
	log.Info("Number of unique cookie names in consent table: %d", s.Declared.UniqueNames)
	log.Info("Number of unique domains in consent table: %d", s.Declared.UniqueDomains)
	log.Info("Number of unique registrable domains in consent table: %d", s.Declared.UniqueRegistrableDomains)
	log.Info("Number of actual first-party cookies: %d -- %s", s.Observed.FirstParty, percent(s.Observed.FirstPartyRatio))
	log.Info("Number of actual third-party cookies: %d -- %s", s.Observed.ThirdParty, percent(s.Observed.ThirdPartyRatio))
	log.Info("Number of unique cookie names in javascript_cookies table: %d", s.Observed.UniqueNames)
	log.Info("Number of unique domains in javascript_cookies table: %d", s.Observed.UniqueDomains)
	log.Info("Number of unique registrable domains in javascript_cookies table: %d", s.Observed.UniqueRegistrableDomains)
}

func percent(r float64) string {
	return fmt.Sprintf("%.2f%%", r*100)
}
