package rules

import (
	"context"

	"github.com/cookieaudit/cookieaudit/internal/crawldb"
)

// ConsentSource streams declared consent entries.
type ConsentSource interface {
	EachConsentEntry(ctx context.Context, fn func(crawldb.ConsentEntry) error) error
}

// CookieSource streams observed cookies.
type CookieSource interface {
	EachObservedCookie(ctx context.Context, fn func(crawldb.ObservedCookie) error) error
}

// ConsentCookieSource lists sites by the state of their Cookiebot consent
// cookie.
type ConsentCookieSource interface {
	ConsentCookieSites(ctx context.Context, filter crawldb.ConsentFilter) (map[string]struct{}, error)
}

// LoadConsentEntries reads every consent entry into memory.
func LoadConsentEntries(ctx context.Context, src ConsentSource) ([]crawldb.ConsentEntry, error) {
	var out []crawldb.ConsentEntry
	err := src.EachConsentEntry(ctx, func(c crawldb.ConsentEntry) error {
		out = append(out, c)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// LoadObservedCookies reads every observed cookie into memory.
func LoadObservedCookies(ctx context.Context, src CookieSource) ([]crawldb.ObservedCookie, error) {
	var out []crawldb.ObservedCookie
	err := src.EachObservedCookie(ctx, func(o crawldb.ObservedCookie) error {
		out = append(out, o)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// hasWorkingCMP reports whether the crawler found a supported CMP on the
// visit and extracted its notice.
func hasWorkingCMP(cmp, crawlState int) bool {
	return cmp != crawldb.NoCMP && crawlState == crawldb.CrawlSucceeded
}
