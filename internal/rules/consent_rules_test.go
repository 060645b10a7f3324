package rules

import (
	"testing"

	"github.com/cookieaudit/cookieaudit/internal/crawldb"
	"github.com/cookieaudit/cookieaudit/internal/matcher"
)

func TestWrongLabel_DefaultGoogleAnalytics(t *testing.T) {
	entries := []crawldb.ConsentEntry{
		entry("https://a.test", "_ga", "a.test", 2),
		entry("https://b.test", "_ga", "b.test", 0),
		entry("https://c.test", "_gid", "c.test", -1),
		entry("https://d.test", "_gat_UA-123-4", "d.test", 99),
		entry("https://e.test", "_gax", "e.test", 0),
		entry("https://f.test", "x_ga", "f.test", 0),
	}
	r := WrongLabel(entries, DefaultOptions().WrongLabel, nop)

	if r.Examined != 4 {
		t.Errorf("expected 4 matching cookies, got %d", r.Examined)
	}
	if got := r.Domains(); len(got) != 2 || got[0] != "https://b.test" || got[1] != "https://d.test" {
		t.Errorf("unexpected domains %v", got)
	}
	if r.Counts[matcher.SlotNecessary] != 1 || r.Counts[matcher.SlotSocialMedia] != 1 {
		t.Errorf("unexpected counts %v", r.Counts)
	}
	if r.PerCMP[crawldb.Cookiebot] != 2 {
		t.Errorf("unexpected per CMP %v", r.PerCMP)
	}
}

func TestWrongLabel_CustomPattern(t *testing.T) {
	p := DefaultParams()
	p.KnownCookiePattern = "^_fbp$"
	p.KnownDomainPattern = "facebook"
	p.ExpectedLabel = 3
	opts, err := p.Compile()
	if err != nil {
		t.Fatal(err)
	}
	entries := []crawldb.ConsentEntry{
		entry("https://a.test", "_fbp", "facebook.com", 1),
		entry("https://b.test", "_fbp", "a.test", 1),
		entry("https://c.test", "_fbp", ".facebook.com", 3),
	}
	r := WrongLabel(entries, opts.WrongLabel, nop)
	if r.Violations() != 1 || r.Details["https://a.test"] == nil {
		t.Errorf("expected one violation on a.test, got %v", r.Details)
	}
}

func TestMajority(t *testing.T) {
	var entries []crawldb.ConsentEntry
	// 11 sites declare the cookie as analytics, one as necessary
	for i := 0; i < 11; i++ {
		entries = append(entries, entry(site(i), "_hjid", "hotjar.com", 2))
	}
	entries = append(entries, entry("https://odd.test", "_hjid", "hotjar.com", 0))
	// duplicate declaration on one site does not vote twice
	entries = append(entries, entry(site(0), " _hjid ", "hotjar.com", 2))

	r, cm := Majority(entries, DefaultOptions().Majority, nop)

	if r.Violations() != 1 {
		t.Fatalf("expected 1 violation, got %d", r.Violations())
	}
	f := r.Details["https://odd.test"][0]
	if f.Majority != 2 || f.MajCount != 11 {
		t.Errorf("unexpected finding %+v", f)
	}
	if f.MajRatio <= 0.9 || f.MajRatio >= 0.93 {
		t.Errorf("expected ratio 11/12, got %f", f.MajRatio)
	}
	if cm[2][0] != 1 {
		t.Errorf("expected confusion matrix entry [2][0] = 1, got %v", cm)
	}
	if r.Examined != 12 {
		t.Errorf("expected 12 unique entries, got %d", r.Examined)
	}
}

func TestMajority_BelowThreshold(t *testing.T) {
	var entries []crawldb.ConsentEntry
	for i := 0; i < 8; i++ {
		entries = append(entries, entry(site(i), "c", "x.test", 2))
	}
	entries = append(entries, entry("https://odd.test", "c", "x.test", 0))
	r, _ := Majority(entries, DefaultOptions().Majority, nop)
	if r.Violations() != 0 {
		t.Errorf("expected no violations below threshold, got %d", r.Violations())
	}
}

func TestMajority_WeakMajority(t *testing.T) {
	var entries []crawldb.ConsentEntry
	for i := 0; i < 6; i++ {
		entries = append(entries, entry(site(i), "c", "x.test", 2))
	}
	for i := 6; i < 12; i++ {
		entries = append(entries, entry(site(i), "c", "x.test", 3))
	}
	r, _ := Majority(entries, DefaultOptions().Majority, nop)
	if r.Violations() != 0 {
		t.Errorf("expected no violations for a split vote, got %d", r.Violations())
	}
}

func TestMajority_UncategorizedMajorityIgnored(t *testing.T) {
	var entries []crawldb.ConsentEntry
	for i := 0; i < 12; i++ {
		entries = append(entries, entry(site(i), "c", "x.test", 4))
	}
	entries = append(entries, entry("https://odd.test", "c", "x.test", 1))
	r, _ := Majority(entries, DefaultOptions().Majority, nop)
	if r.Violations() != 0 {
		t.Errorf("uncategorized majority must not flag, got %d", r.Violations())
	}
}

func TestUnclassified(t *testing.T) {
	entries := []crawldb.ConsentEntry{
		entry("https://a.test", "a", "a.test", 4),
		{SiteURL: "https://b.test", Name: "b", CategoryID: -1, CategoryName: "Unclassified", CMPType: crawldb.OneTrust},
		{SiteURL: "https://c.test", Name: "c", CategoryID: 1, CategoryName: "No clasificados"},
		{SiteURL: "https://d.test", Name: "d", CategoryID: 1, CategoryName: "Preferences unclassified"},
	}
	r := Unclassified(entries, DefaultOptions().Unclassified, nop)
	if r.Violations() != 3 {
		t.Fatalf("expected 3 violations, got %d: %v", r.Violations(), r.Details)
	}
	if _, ok := r.Details["https://d.test"]; ok {
		t.Error("pattern must match at the start of the category name")
	}
	if r.PerCMP[crawldb.OneTrust] != 1 {
		t.Errorf("unexpected per CMP %v", r.PerCMP)
	}
}

func TestContradictory(t *testing.T) {
	entries := []crawldb.ConsentEntry{
		entry("https://a.test", "sid", "a.test", 0),
		entry("https://a.test", "sid", "a.test", 2),
		entry("https://a.test", "sid", "a.test", 0),
		entry("https://b.test", "pref", "b.test", 1),
		entry("https://b.test", "pref", "b.test", 3),
		entry("https://c.test", "ok", "c.test", 2),
		entry("https://c.test", "ok", "c.test", 2),
	}
	r := Contradictory(entries, nop)

	if r.Violations() != 2 {
		t.Fatalf("expected 2 violations, got %d", r.Violations())
	}
	a := r.Details["https://a.test"][0]
	if len(a.AdditionalLabels) != 1 || a.AdditionalLabels[0] != 2 {
		t.Errorf("unexpected additional labels %v", a.AdditionalLabels)
	}
	if r.Extra[NecessaryDomains] != 1 {
		t.Errorf("expected 1 necessary conflict, got %d", r.Extra[NecessaryDomains])
	}
	if _, ok := r.ExtraDomains[NecessaryDomains]["https://a.test"]; !ok || len(r.ExtraDomains[NecessaryDomains]) != 1 {
		t.Errorf("unexpected necessary domains %v", r.ExtraDomains[NecessaryDomains])
	}
	if r.Examined != 3 {
		t.Errorf("expected 3 distinct entries, got %d", r.Examined)
	}
	if got := r.ExtraDomainList(NecessaryDomains); len(got) != 1 || got[0] != "https://a.test" {
		t.Errorf("unexpected necessary domain list %v", got)
	}
	if got := r.ExtraDomainList("missing"); len(got) != 0 {
		t.Errorf("expected empty list, got %v", got)
	}
}

func site(i int) string {
	return "https://site" + string(rune('a'+i)) + ".test"
}
