package crawldb

import (
	"context"
	"fmt"
)

// EachMatchedCookie streams the declared × observed join, ordered by visit,
// cookie name and observation timestamp, calling fn for every row. An error
// returned by fn stops the scan and is returned unchanged.
func (d *DB) EachMatchedCookie(ctx context.Context, fn func(MatchedCookie) error) error {
	rows, err := d.db.QueryContext(ctx, matchedCookiesQuery)
	if err != nil {
		return fmt.Errorf("error: failed to query matched cookies: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			m                                   MatchedCookie
			session, httpOnly, hostOnly, secure int
		)
		if err := rows.Scan(
			&m.VisitID, &m.SiteURL, &m.CMPType, &m.CrawlState,
			&m.Name, &m.Host, &m.Path, &m.ConsentDomain, &m.Value,
			&m.Purpose, &m.CategoryID, &m.CategoryName, &m.TypeName, &m.TypeID,
			&m.ConsentExpiry, &m.ActualExpiry,
			&session, &httpOnly, &hostOnly, &secure,
			&m.SameSite, &m.Timestamp,
		); err != nil {
			return fmt.Errorf("error: failed to scan matched cookie row: %w", err)
		}
		m.Session = session != 0
		m.HTTPOnly = httpOnly != 0
		m.HostOnly = hostOnly != 0
		m.Secure = secure != 0
		if err := fn(m); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error: failed to iterate matched cookie rows: %w", err)
	}
	return nil
}

// EachConsentEntry streams every declared consent entry with its site and CMP.
func (d *DB) EachConsentEntry(ctx context.Context, fn func(ConsentEntry) error) error {
	rows, err := d.db.QueryContext(ctx, consentEntriesQuery)
	if err != nil {
		return fmt.Errorf("error: failed to query consent entries: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var c ConsentEntry
		if err := rows.Scan(
			&c.VisitID, &c.SiteURL, &c.CMPType, &c.CrawlState,
			&c.Name, &c.Domain, &c.Purpose, &c.CategoryID, &c.CategoryName,
			&c.TypeName, &c.TypeID, &c.Expiry,
		); err != nil {
			return fmt.Errorf("error: failed to scan consent entry row: %w", err)
		}
		if err := fn(c); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error: failed to iterate consent entry rows: %w", err)
	}
	return nil
}

// EachObservedCookie streams every non-deleted cookie the crawler observed.
func (d *DB) EachObservedCookie(ctx context.Context, fn func(ObservedCookie) error) error {
	rows, err := d.db.QueryContext(ctx, observedCookiesQuery)
	if err != nil {
		return fmt.Errorf("error: failed to query observed cookies: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			o                                   ObservedCookie
			session, httpOnly, hostOnly, secure int
		)
		if err := rows.Scan(
			&o.VisitID, &o.SiteURL, &o.CMPType, &o.CrawlState,
			&o.Name, &o.Host, &o.Path, &o.Value, &o.ActualExpiry,
			&session, &httpOnly, &hostOnly, &secure,
			&o.SameSite, &o.Timestamp,
		); err != nil {
			return fmt.Errorf("error: failed to scan observed cookie row: %w", err)
		}
		o.Session = session != 0
		o.HTTPOnly = httpOnly != 0
		o.HostOnly = hostOnly != 0
		o.Secure = secure != 0
		if err := fn(o); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error: failed to iterate observed cookie rows: %w", err)
	}
	return nil
}

// ConsentCookieSites returns the sites on which a successful crawl stored a
// Cookiebot CookieConsent cookie matching filter.
func (d *DB) ConsentCookieSites(ctx context.Context, filter ConsentFilter) (map[string]struct{}, error) {
	query := consentCookieSitesQuery
	switch filter {
	case InteractedConsent:
		query += interactedClause
	case RejectedConsent:
		query += rejectedClause
	}

	rows, err := d.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error: failed to query consent cookie sites: %w", err)
	}
	defer rows.Close()

	sites := make(map[string]struct{})
	for rows.Next() {
		var site string
		if err := rows.Scan(&site); err != nil {
			return nil, fmt.Errorf("error: failed to scan consent cookie site: %w", err)
		}
		sites[site] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error: failed to iterate consent cookie sites: %w", err)
	}
	return sites, nil
}

// SuccessfulCrawls returns the number of visits whose consent crawl succeeded.
// It is the denominator for per-site violation ratios.
func (d *DB) SuccessfulCrawls(ctx context.Context) (int, error) {
	var n int
	if err := d.db.QueryRowContext(ctx, successfulCrawlsQuery).Scan(&n); err != nil {
		return 0, fmt.Errorf("error: failed to count successful crawls: %w", err)
	}
	return n, nil
}

// SuccessfulCrawlsByCMP returns the number of successful visits per detected
// CMP, indexed by CMP type.
func (d *DB) SuccessfulCrawlsByCMP(ctx context.Context) ([NumCMPs]int, error) {
	var counts [NumCMPs]int
	rows, err := d.db.QueryContext(ctx, successfulCrawlsByCMPQuery)
	if err != nil {
		return counts, fmt.Errorf("error: failed to count crawls per CMP: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var cmp, n int
		if err := rows.Scan(&cmp, &n); err != nil {
			return counts, fmt.Errorf("error: failed to scan crawl count: %w", err)
		}
		if cmp < NumCMPs {
			counts[cmp] = n
		}
	}
	if err := rows.Err(); err != nil {
		return counts, fmt.Errorf("error: failed to iterate crawl counts: %w", err)
	}
	return counts, nil
}
