package rules

import (
	"fmt"
	"testing"
	"time"

	"github.com/cookieaudit/cookieaudit/internal/crawldb"
	"github.com/cookieaudit/cookieaudit/internal/matcher"
	"github.com/cookieaudit/cookieaudit/pkg/logger"
)

var nop = logger.NewNopLogger()

func entry(site, name, domain string, label int) crawldb.ConsentEntry {
	return crawldb.ConsentEntry{
		VisitID:    1,
		SiteURL:    site,
		CMPType:    crawldb.Cookiebot,
		Name:       name,
		Domain:     domain,
		CategoryID: label,
	}
}

func observed(site, name, host string) crawldb.ObservedCookie {
	return crawldb.ObservedCookie{
		VisitID:   1,
		SiteURL:   site,
		CMPType:   crawldb.Cookiebot,
		Name:      name,
		Host:      host,
		Path:      "/",
		Timestamp: "2021-03-01T12:00:00.000000Z",
	}
}

// matchedRow builds a matched row observed at second sec with the given
// lifetime in seconds; a negative lifetime makes a session cookie.
func matchedRow(site, name string, label int, consentExpiry string, sec int, lifetime int64) crawldb.MatchedCookie {
	r := crawldb.MatchedCookie{
		VisitID:       1,
		SiteURL:       site,
		CMPType:       crawldb.Cookiebot,
		Name:          name,
		Host:          "example.com",
		Path:          "/",
		ConsentDomain: "example.com",
		CategoryID:    label,
		ConsentExpiry: consentExpiry,
		Timestamp:     fmt.Sprintf("2021-03-01T12:00:%02d.000000Z", sec),
	}
	if lifetime < 0 {
		r.Session = true
		return r
	}
	start := int64(1614600000 + sec) // 2021-03-01T12:00:00Z
	r.ActualExpiry = unixToCrawler(start + lifetime)
	return r
}

func matched(t *testing.T, rows ...crawldb.MatchedCookie) *matcher.Result {
	t.Helper()
	m := matcher.New(nop)
	for _, r := range rows {
		if err := m.Add(r); err != nil {
			t.Fatalf("matcher rejected row: %v", err)
		}
	}
	return m.Result()
}

func unixToCrawler(sec int64) string {
	return time.Unix(sec, 0).UTC().Format("2006-01-02T15:04:05.000000Z")
}
