package matcher

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cookieaudit/cookieaudit/internal/crawldb"
	"github.com/cookieaudit/cookieaudit/pkg/logger"
)

type sliceSource struct {
	rows []crawldb.MatchedCookie
	err  error
}

func (s sliceSource) EachMatchedCookie(ctx context.Context, fn func(crawldb.MatchedCookie) error) error {
	for _, r := range s.rows {
		if err := fn(r); err != nil {
			return err
		}
	}
	return s.err
}

func ts(sec int) string {
	return fmt.Sprintf("2021-03-01T12:00:%02d.000000Z", sec)
}

// row returns a persistent "sid" cookie on https://a.test observed at second
// sec, expiring one day later.
func row(label, sec int) crawldb.MatchedCookie {
	return crawldb.MatchedCookie{
		VisitID:       1,
		SiteURL:       "https://a.test",
		CMPType:       crawldb.Cookiebot,
		Name:          "sid",
		Host:          "example.com",
		Path:          "/",
		ConsentDomain: "example.com",
		Value:         fmt.Sprintf("v%d", sec),
		CategoryID:    label,
		CategoryName:  "Statistics",
		ConsentExpiry: "1 day",
		ActualExpiry:  fmt.Sprintf("2021-03-02T12:00:%02d.000000Z", sec),
		Timestamp:     ts(sec),
		SameSite:      "no_restriction",
	}
}

var keyK = Key{Name: "sid", Host: "example.com", Path: "/", Site: "https://a.test"}

func build(t *testing.T, rows ...crawldb.MatchedCookie) *Result {
	t.Helper()
	res, err := Build(context.Background(), sliceSource{rows: rows}, logger.NewNopLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return res
}

func TestBuild_ThreeMatchingRows(t *testing.T) {
	res := build(t, row(2, 1), row(2, 2), row(2, 3))

	rec, ok := res.Records[keyK]
	if !ok {
		t.Fatal("expected record for key")
	}
	if len(rec.Updates) != 3 {
		t.Fatalf("expected 3 updates, got %d", len(rec.Updates))
	}
	for i, u := range rec.Updates {
		if want := fmt.Sprintf("v%d", i+1); u.Value != want {
			t.Errorf("update %d: expected value %s, got %s", i, want, u.Value)
		}
		if u.Lifetime != 86400 {
			t.Errorf("update %d: expected lifetime 86400, got %d", i, u.Lifetime)
		}
	}
	if res.UniqueCounts[SlotAnalytics] != 1 {
		t.Errorf("expected unique count 1, got %d", res.UniqueCounts[SlotAnalytics])
	}
	if res.UpdateCounts[SlotAnalytics] != 3 {
		t.Errorf("expected update count 3, got %d", res.UpdateCounts[SlotAnalytics])
	}
	if res.Updates != 3 || res.Rows != 3 {
		t.Errorf("expected 3 updates of 3 rows, got %d of %d", res.Updates, res.Rows)
	}
	if rec.Timestamp != ts(1) || rec.Label != SlotAnalytics || rec.ConsentExpiry != "1 day" {
		t.Errorf("record must keep first-seen declared fields: %+v", rec)
	}
}

func TestBuild_LabelConflictRetractsKey(t *testing.T) {
	res := build(t, row(2, 1), row(2, 2), row(3, 3))

	if _, ok := res.Records[keyK]; ok {
		t.Fatal("expected record to be retracted")
	}
	if res.UniqueCounts[SlotAnalytics] != 0 {
		t.Errorf("expected unique count back to 0, got %d", res.UniqueCounts[SlotAnalytics])
	}
	if res.BlacklistedEncounters != 2 {
		t.Errorf("expected 2 blacklisted encounters, got %d", res.BlacklistedEncounters)
	}
	if !res.Blacklisted(keyK) {
		t.Error("expected key in blacklist")
	}
	if keys := res.BlacklistedKeys(); len(keys) != 1 || keys[0] != keyK {
		t.Errorf("unexpected blacklist %v", keys)
	}
}

func TestBuild_BlacklistIsAbsorbing(t *testing.T) {
	res := build(t, row(2, 1), row(3, 2), row(2, 3), row(2, 4))

	if _, ok := res.Records[keyK]; ok {
		t.Fatal("blacklisted key must never reappear")
	}
	// 2 for the retraction, 1 for each later row
	if res.BlacklistedEncounters != 4 {
		t.Errorf("expected 4 blacklisted encounters, got %d", res.BlacklistedEncounters)
	}
	for i, c := range res.UniqueCounts {
		if c != 0 {
			t.Errorf("slot %d: expected unique count 0, got %d", i, c)
		}
	}
}

func TestBuild_CMPConflictRetractsKey(t *testing.T) {
	second := row(2, 2)
	second.CMPType = crawldb.OneTrust
	res := build(t, row(2, 1), second)

	if _, ok := res.Records[keyK]; ok {
		t.Fatal("expected record to be retracted")
	}
	if !res.Blacklisted(keyK) {
		t.Error("expected key in blacklist")
	}
}

func TestBuild_RetractionOnlyAffectsItsKey(t *testing.T) {
	other := row(0, 1)
	other.Name = "lang"
	other.CategoryName = "Necessary"
	res := build(t, other, row(2, 1), row(3, 2))

	otherKey := Key{Name: "lang", Host: "example.com", Path: "/", Site: "https://a.test"}
	if _, ok := res.Records[otherKey]; !ok {
		t.Fatal("unrelated record must survive")
	}
	if res.UniqueCounts[SlotNecessary] != 1 || res.UniqueCounts[SlotAnalytics] != 0 {
		t.Errorf("unexpected unique counts %v", res.UniqueCounts)
	}
}

func TestBuild_UniqueCountsMatchRecords(t *testing.T) {
	var rows []crawldb.MatchedCookie
	labels := []int{0, 1, 2, 3, 4, 99, -1}
	for i, l := range labels {
		r := row(l, 1)
		r.Name = fmt.Sprintf("c%d", i)
		rows = append(rows, r)
		r2 := row(l, 2)
		r2.Name = r.Name
		if i%2 == 0 {
			// conflict on every other cookie
			r2.CategoryID = 2
			if l == 2 {
				r2.CategoryID = 3
			}
		}
		rows = append(rows, r2)
	}
	res := build(t, rows...)

	var grouped [NumSlots]int
	for _, rec := range res.Records {
		grouped[rec.Label]++
	}
	if grouped != res.UniqueCounts {
		t.Errorf("unique counts %v do not match records %v", res.UniqueCounts, grouped)
	}
	if len(res.BlacklistedKeys()) != 4 {
		t.Errorf("expected 4 blacklisted keys, got %d", len(res.BlacklistedKeys()))
	}
}

func TestBuild_DomainMismatch(t *testing.T) {
	r := row(2, 1)
	r.ConsentDomain = "other.test"
	res := build(t, r)

	if res.Mismatches != 1 {
		t.Errorf("expected 1 mismatch, got %d", res.Mismatches)
	}
	if len(res.Records) != 0 {
		t.Errorf("expected no records, got %d", len(res.Records))
	}
}

func TestBuild_MultiDomainDeclaration(t *testing.T) {
	r := row(2, 1)
	r.ConsentDomain = "sub.example.com<br/>other.test"
	r.Host = "x.sub.example.com"
	res := build(t, r)

	if res.Mismatches != 0 || len(res.Records) != 1 {
		t.Fatalf("expected match via first candidate, got %d mismatches and %d records", res.Mismatches, len(res.Records))
	}
}

func TestBuild_FarFutureExpirySkipped(t *testing.T) {
	r := row(2, 1)
	r.ActualExpiry = "+010000-01-01T00:00:00.000Z"
	res := build(t, r)

	if res.SkippedExpiry != 1 {
		t.Errorf("expected 1 skipped row, got %d", res.SkippedExpiry)
	}
	if len(res.Records) != 0 || res.Mismatches != 0 || res.BlacklistedEncounters != 0 || res.Updates != 0 {
		t.Errorf("skipped row must not touch other counters: %+v", res)
	}
	for i := range res.UniqueCounts {
		if res.UniqueCounts[i] != 0 || res.UpdateCounts[i] != 0 {
			t.Errorf("slot %d counters touched", i)
		}
	}
}

func TestBuild_UnparsableExpirySkipped(t *testing.T) {
	r := row(2, 1)
	r.ActualExpiry = "garbage"
	res := build(t, r)
	if res.SkippedExpiry != 1 || len(res.Records) != 0 {
		t.Errorf("expected skipped row, got %+v", res)
	}
}

func TestBuild_SessionCookieHasZeroLifetime(t *testing.T) {
	r := row(2, 1)
	r.Session = true
	r.ActualExpiry = ""
	res := build(t, r)

	rec := res.Records[keyK]
	if rec == nil {
		t.Fatal("expected record")
	}
	if rec.Updates[0].Lifetime != 0 || !rec.Updates[0].Session {
		t.Errorf("unexpected update %+v", rec.Updates[0])
	}
}

func TestBuild_LifetimeTruncates(t *testing.T) {
	r := row(2, 1)
	r.Timestamp = "2021-03-01T12:00:00.900000Z"
	r.ActualExpiry = "2021-03-01T12:00:10.100000Z"
	res := build(t, r)
	if got := res.Records[keyK].Updates[0].Lifetime; got != 9 {
		t.Errorf("expected lifetime 9, got %d", got)
	}
}

func TestBuild_LifetimeBeyondDurationRange(t *testing.T) {
	r := row(2, 1)
	r.ActualExpiry = "9999-12-31T23:59:59.000000Z"
	res := build(t, r)
	if got := res.Records[keyK].Updates[0].Lifetime; got < 7900*365*86400 {
		t.Errorf("expected lifetime of roughly 8000 years, got %d", got)
	}
}

func TestBuild_UnknownCategoryIDSkipped(t *testing.T) {
	res := build(t, row(7, 1))
	if res.InvalidLabels != 1 || len(res.Records) != 0 {
		t.Errorf("expected row to be skipped, got %+v", res)
	}
}

func TestBuild_OutOfOrderTimestampsFail(t *testing.T) {
	_, err := Build(context.Background(), sliceSource{rows: []crawldb.MatchedCookie{row(2, 5), row(2, 3)}}, nil)
	if !errors.Is(err, ErrOutOfOrder) {
		t.Fatalf("expected ErrOutOfOrder, got %v", err)
	}
}

func TestBuild_EqualTimestampsAllowed(t *testing.T) {
	res := build(t, row(2, 1), row(2, 1))
	if n := len(res.Records[keyK].Updates); n != 2 {
		t.Errorf("expected 2 updates, got %d", n)
	}
}

func TestBuild_ValueOnlyDifferenceKeepsAllUpdates(t *testing.T) {
	a, b := row(2, 1), row(2, 2)
	a.Value, b.Value = "first", "second"
	b.Secure = true
	res := build(t, a, b)

	rec := res.Records[keyK]
	if rec == nil || len(rec.Updates) != 2 {
		t.Fatalf("expected 2 updates, got %+v", rec)
	}
	if rec.Updates[0].Value != "first" || rec.Updates[1].Value != "second" || !rec.Updates[1].Secure {
		t.Errorf("updates lost data: %+v", rec.Updates)
	}
	if res.BlacklistedEncounters != 0 {
		t.Errorf("value changes must not blacklist")
	}
}

func TestBuild_DifferentPathIsDifferentKey(t *testing.T) {
	a, b := row(2, 1), row(3, 2)
	b.Path = "/shop"
	res := build(t, a, b)
	if len(res.Records) != 2 || res.BlacklistedEncounters != 0 {
		t.Errorf("expected 2 independent records, got %d records and %d blacklisted", len(res.Records), res.BlacklistedEncounters)
	}
}

func TestBuild_SourceErrorIsFatal(t *testing.T) {
	boom := errors.New("disk I/O error")
	log := logger.NewMockLogger()
	res, err := Build(context.Background(), sliceSource{rows: []crawldb.MatchedCookie{row(2, 1)}, err: boom}, log)
	if !errors.Is(err, boom) {
		t.Fatalf("expected source error, got %v", err)
	}
	if res != nil {
		t.Error("expected no partial result")
	}
	if len(log.ErrorCalls) != 1 {
		t.Errorf("expected one error log, got %v", log.ErrorCalls)
	}
}

func TestBuild_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Build(ctx, sliceSource{rows: []crawldb.MatchedCookie{row(2, 1)}}, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestBuild_LogsConflictAtDebug(t *testing.T) {
	log := logger.NewMockLogger()
	if _, err := Build(context.Background(), sliceSource{rows: []crawldb.MatchedCookie{row(2, 1), row(3, 2)}}, log); err != nil {
		t.Fatal(err)
	}
	found := false
	for _, msg := range log.DebugCalls {
		if strings.Contains(msg, "blacklisting sid;example.com;/;https://a.test") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected conflict debug log, got %v", log.DebugCalls)
	}
}

func TestResult_Sorted(t *testing.T) {
	a, b := row(2, 1), row(2, 1)
	b.SiteURL = "https://0.test"
	c := row(2, 1)
	c.Name = "aaa"
	res := build(t, a, c, b)

	recs := res.Sorted()
	if len(recs) != 3 {
		t.Fatalf("expected 3 records, got %d", len(recs))
	}
	if recs[0].SiteURL != "https://0.test" || recs[1].Name != "aaa" || recs[2].Name != "sid" {
		t.Errorf("unexpected order: %s %s %s", recs[0].Key(), recs[1].Key(), recs[2].Key())
	}
}

func TestKey_String(t *testing.T) {
	if got := keyK.String(); got != "sid;example.com;/;https://a.test" {
		t.Errorf("unexpected key string %q", got)
	}
}

func TestBuild_FromCrawlDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "crawl.sqlite")
	f, err := crawldb.CreateFixture(path)
	if err != nil {
		t.Fatal(err)
	}
	steps := []error{
		f.AddVisit(1, "https://a.test", crawldb.Cookiebot, crawldb.CrawlSucceeded),
		f.AddConsent(crawldb.ConsentEntry{VisitID: 1, Name: "sid", Domain: "example.com", CategoryID: 2, Expiry: "1 day"}),
	}
	for i := 3; i >= 1; i-- {
		r := row(2, i)
		steps = append(steps, f.AddCookie("added-or-changed", crawldb.ObservedCookie{
			VisitID: 1, Name: r.Name, Host: r.Host, Path: r.Path, Value: r.Value,
			ActualExpiry: r.ActualExpiry, Timestamp: r.Timestamp,
		}))
	}
	for _, err := range steps {
		if err != nil {
			t.Fatalf("fixture insert failed: %v", err)
		}
	}
	f.Close()

	db, err := crawldb.Open(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	res, err := Build(context.Background(), db, logger.NewNopLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rec := res.Records[keyK]
	if rec == nil || len(rec.Updates) != 3 {
		t.Fatalf("expected 3 updates, got %+v", rec)
	}
	if rec.Updates[0].Value != "v1" || rec.Updates[2].Value != "v3" {
		t.Errorf("updates not in timestamp order: %+v", rec.Updates)
	}
}
