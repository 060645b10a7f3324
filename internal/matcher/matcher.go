package matcher

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/cookieaudit/cookieaudit/internal/crawldb"
	"github.com/cookieaudit/cookieaudit/pkg/logger"
)

// TimeLayout is the layout of crawler timestamps. Parsing also accepts the
// fractional seconds the crawler writes after the seconds field.
const TimeLayout = "2006-01-02T15:04:05Z"

// ErrOutOfOrder is returned when two rows of the same key arrive with
// decreasing timestamps.
var ErrOutOfOrder = errors.New("matched rows are not ordered by timestamp")

// Source streams matched rows ordered by visit, cookie name and timestamp.
// *crawldb.DB implements it.
type Source interface {
	EachMatchedCookie(ctx context.Context, fn func(crawldb.MatchedCookie) error) error
}

// keyState is the lifecycle of a key within one run. Blacklisted is terminal.
type keyState uint8

const (
	stateNew keyState = iota
	stateActive
	stateBlacklisted
)

// Matcher folds matched rows into records. It is not safe for concurrent use.
type Matcher struct {
	log logger.Logger
	res *Result
}

// New returns a Matcher with an empty result.
func New(log logger.Logger) *Matcher {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Matcher{
		log: log,
		res: &Result{
			Records:   make(map[Key]*Record),
			blacklist: make(map[Key]struct{}),
		},
	}
}

// Build reads every matched row from src and returns the aggregated result.
// A source error aborts the run and no partial result is returned.
func Build(ctx context.Context, src Source, log logger.Logger) (*Result, error) {
	m := New(log)
	err := src.EachMatchedCookie(ctx, func(row crawldb.MatchedCookie) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		return m.Add(row)
	})
	if err != nil {
		m.log.Error("cookie matching aborted: %v", err)
		return nil, err
	}
	res := m.Result()
	res.logSummary(m.log)
	return res, nil
}

// Result returns the result accumulated so far.
func (m *Matcher) Result() *Result {
	return m.res
}

func (m *Matcher) state(k Key) keyState {
	if _, ok := m.res.blacklist[k]; ok {
		return stateBlacklisted
	}
	if _, ok := m.res.Records[k]; ok {
		return stateActive
	}
	return stateNew
}

// Add processes one row. Row anomalies are counted and skipped; only an
// ordering violation is returned as an error.
func (m *Matcher) Add(row crawldb.MatchedCookie) error {
	res := m.res
	res.Rows++

	slot, ok := SlotOf(row.CategoryID)
	if !ok {
		res.InvalidLabels++
		m.log.Debug("skipping %s on %s: unknown category id %d", row.Name, row.SiteURL, row.CategoryID)
		return nil
	}

	// Expiries past year 9999 are written with a "+0" sign prefix and cannot
	// be parsed with the crawler layout.
	if strings.HasPrefix(row.ActualExpiry, "+0") {
		res.SkippedExpiry++
		return nil
	}
	seen, err := time.Parse(TimeLayout, row.Timestamp)
	if err != nil {
		res.SkippedExpiry++
		m.log.Debug("skipping %s on %s: bad timestamp %q", row.Name, row.SiteURL, row.Timestamp)
		return nil
	}
	var lifetime int64
	if !row.Session {
		expiry, err := time.Parse(TimeLayout, row.ActualExpiry)
		if err != nil {
			res.SkippedExpiry++
			m.log.Debug("skipping %s on %s: bad expiry %q", row.Name, row.SiteURL, row.ActualExpiry)
			return nil
		}
		lifetime = lifetimeSeconds(seen, expiry)
	}

	if !DomainsMatch(row.ConsentDomain, row.Host) {
		res.Mismatches++
		return nil
	}

	key := Key{Name: row.Name, Host: row.Host, Path: row.Path, Site: row.SiteURL}
	var rec *Record
	switch m.state(key) {
	case stateBlacklisted:
		res.BlacklistedEncounters++
		return nil
	case stateActive:
		rec = res.Records[key]
		if seen.Before(rec.lastSeen) {
			return fmt.Errorf("%w: %s at %s after %s", ErrOutOfOrder, key, row.Timestamp, rec.lastSeen.Format(time.RFC3339Nano))
		}
		if reason := conflict(rec, row, slot); reason != "" {
			m.retract(rec, row, reason)
			return nil
		}
	case stateNew:
		rec = &Record{
			VisitID:       row.VisitID,
			Name:          row.Name,
			Host:          row.Host,
			ConsentDomain: row.ConsentDomain,
			Path:          row.Path,
			SiteURL:       row.SiteURL,
			Label:         slot,
			CategoryName:  row.CategoryName,
			CMPType:       row.CMPType,
			ConsentExpiry: row.ConsentExpiry,
			Timestamp:     row.Timestamp,
			Updates:       []Update{},
		}
		res.Records[key] = rec
		res.UniqueCounts[slot]++
	}

	rec.Updates = append(rec.Updates, Update{
		Value:    row.Value,
		Lifetime: lifetime,
		Session:  row.Session,
		HTTPOnly: row.HTTPOnly,
		HostOnly: row.HostOnly,
		Secure:   row.Secure,
		SameSite: row.SameSite,
	})
	rec.lastSeen = seen
	res.UpdateCounts[slot]++
	res.Updates++
	return nil
}

// retract moves the record's key to the blacklist. The stored record and the
// offending row are both counted as blacklisted encounters.
func (m *Matcher) retract(rec *Record, row crawldb.MatchedCookie, reason string) {
	key := rec.Key()
	m.log.Debug("blacklisting %s: %s", key, reason)
	m.log.Debug("existing record: label=%d cmp=%d updates=%d", rec.Label, rec.CMPType, len(rec.Updates))
	m.log.Debug("offending row: visit=%d cat_id=%d cmp=%d", row.VisitID, row.CategoryID, row.CMPType)

	m.res.UniqueCounts[rec.Label]--
	delete(m.res.Records, key)
	m.res.blacklist[key] = struct{}{}
	m.res.BlacklistedEncounters += 2
}

func conflict(rec *Record, row crawldb.MatchedCookie, slot Slot) string {
	switch {
	case rec.Name != row.Name:
		return fmt.Sprintf("stored name %q does not match %q", rec.Name, row.Name)
	case rec.Host != row.Host:
		return fmt.Sprintf("stored domain %q does not match %q", rec.Host, row.Host)
	case rec.Path != row.Path:
		return fmt.Sprintf("stored path %q does not match %q", rec.Path, row.Path)
	case rec.SiteURL != row.SiteURL:
		return fmt.Sprintf("stored site %q does not match %q", rec.SiteURL, row.SiteURL)
	case rec.Label != slot:
		return fmt.Sprintf("stored label %d does not match %d", rec.Label, slot)
	case rec.CMPType != row.CMPType:
		return fmt.Sprintf("stored CMP %d does not match %d", rec.CMPType, row.CMPType)
	}
	return ""
}

// lifetimeSeconds returns end - start in seconds, truncated toward zero. It
// does not go through time.Duration, which cannot hold expiries centuries
// away.
func lifetimeSeconds(start, end time.Time) int64 {
	sec := end.Unix() - start.Unix()
	nsec := end.Nanosecond() - start.Nanosecond()
	switch {
	case sec > 0 && nsec < 0:
		sec--
	case sec < 0 && nsec > 0:
		sec++
	}
	return sec
}

// Result is the outcome of one matching run.
type Result struct {
	Records map[Key]*Record

	// UniqueCounts counts records per slot. Retracted records are subtracted.
	UniqueCounts [NumSlots]int
	// UpdateCounts counts admitted updates per slot.
	UpdateCounts [NumSlots]int

	Rows                  int
	Updates               int
	Mismatches            int
	BlacklistedEncounters int
	SkippedExpiry         int
	InvalidLabels         int

	blacklist map[Key]struct{}
}

// Blacklisted reports whether k was retracted during the run.
func (r *Result) Blacklisted(k Key) bool {
	_, ok := r.blacklist[k]
	return ok
}

// BlacklistedKeys returns the retracted keys sorted by their string form.
func (r *Result) BlacklistedKeys() []Key {
	keys := make([]Key, 0, len(r.blacklist))
	for k := range r.blacklist {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
	return keys
}

// Sorted returns the records ordered by site, then key.
func (r *Result) Sorted() []*Record {
	recs := make([]*Record, 0, len(r.Records))
	for _, rec := range r.Records {
		recs = append(recs, rec)
	}
	sort.Slice(recs, func(i, j int) bool {
		if recs[i].SiteURL != recs[j].SiteURL {
			return recs[i].SiteURL < recs[j].SiteURL
		}
		return recs[i].Key().String() < recs[j].Key().String()
	})
	return recs
}

func (r *Result) logSummary(log logger.Logger) {
	log.Info("Extracted %d cookie updates.", r.Updates)
	log.Info("Encountered %d domain mismatches.", r.Mismatches)
	log.Info("Unique training data entries in dictionary: %d", len(r.Records))
	log.Info("Number of unique cookies blacklisted due to inconsistencies %d", len(r.blacklist))
	log.Info("Number of training data updates rejected due to blacklist: %d", r.BlacklistedEncounters)
	if r.SkippedExpiry > 0 || r.InvalidLabels > 0 {
		log.Info("Skipped %d rows with unreadable timestamps and %d with unknown categories.", r.SkippedExpiry, r.InvalidLabels)
	}
	log.Info("Unique cookies per category: %v", r.UniqueCounts)
	log.Info("Updates per category: %v", r.UpdateCounts)

	perSlot, total := r.UpdateStats()
	for _, s := range Slots() {
		log.Info("Average number of updates for category %d: %.3f", s, perSlot[s].Mean)
		log.Info("Standard Deviation of updates for category %d: %.3f", s, perSlot[s].Stdev)
	}
	log.Info("Total average of updates: %.3f", total.Mean)
	log.Info("Standard Deviation of updates: %.3f", total.Stdev)
}
