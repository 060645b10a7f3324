package rules

import (
	"testing"

	"github.com/cookieaudit/cookieaudit/internal/crawldb"
	"github.com/cookieaudit/cookieaudit/internal/matcher"
)

func TestUndeclared(t *testing.T) {
	entries := []crawldb.ConsentEntry{
		entry("https://a.test", "sid", "www.a.test", 0),
		entry("https://a.test", "_ga", "x.test, a.test", 2),
		entry("https://a.test", "ad", "ads.test<br/>.track.test", 3),
	}
	noCMP := observed("https://n.test", "zzz", "n.test")
	noCMP.CMPType = crawldb.NoCMP
	failed := observed("https://f.test", "zzz", "f.test")
	failed.CrawlState = 2
	cookies := []crawldb.ObservedCookie{
		observed("https://a.test", "sid", ".a.test"),
		observed("https://a.test", "_ga", "a.test"),
		observed("https://a.test", "ad", "track.test"),
		observed("https://a.test", "undeclared", "a.test"),
		observed("https://a.test", "undeclared", ".a.test"),
		noCMP,
		failed,
	}

	r := Undeclared(entries, cookies, nop)

	if r.Violations() != 1 {
		t.Fatalf("expected 1 violation, got %d: %v", r.Violations(), r.Details)
	}
	if f := r.Details["https://a.test"][0]; f.Name != "undeclared" {
		t.Errorf("unexpected finding %+v", f)
	}
	if r.Examined != 4 || len(r.Sites) != 1 {
		t.Errorf("expected 4 cookies on 1 site, got %d on %d", r.Examined, len(r.Sites))
	}
}

func TestUndetected(t *testing.T) {
	js := entry("https://a.test", "pixel", "a.test", 3)
	js.TypeID = 5
	social := entry("https://a.test", "share", "social.test", 99)
	social.TypeID = 1
	entries := []crawldb.ConsentEntry{
		entry("https://a.test", "sid", "other.test<br/>a.test", 0),
		entry("https://a.test", "missing", "a.test", 2),
		social,
		js,
	}
	cookies := []crawldb.ObservedCookie{
		observed("https://a.test", "sid", ".a.test"),
		observed("https://b.test", "missing", "a.test"),
	}

	r, detected := Undetected(entries, cookies, nop)

	if r.Examined != 3 {
		t.Errorf("expected 3 HTTP/HTML declarations, got %d", r.Examined)
	}
	if r.Violations() != 2 {
		t.Fatalf("expected 2 undetected, got %d", r.Violations())
	}
	if detected[matcher.SlotNecessary] != 1 {
		t.Errorf("unexpected detected counts %v", detected)
	}
	if r.Counts[matcher.SlotAnalytics] != 1 || r.Counts[matcher.SlotSocialMedia] != 1 {
		t.Errorf("unexpected undetected counts %v", r.Counts)
	}
}
