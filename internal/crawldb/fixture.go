package crawldb

import (
	"database/sql"
	"fmt"
)

// Schema is the part of the crawler schema the analyses read. It is used to
// build fixture databases.
const Schema = `
CREATE TABLE site_visits (
	visit_id INTEGER PRIMARY KEY,
	site_url TEXT
);
CREATE TABLE consent_crawl_results (
	visit_id INTEGER,
	cmp_type INTEGER,
	crawl_state INTEGER
);
CREATE TABLE consent_data (
	visit_id INTEGER,
	name TEXT,
	domain TEXT,
	purpose TEXT,
	cat_id INTEGER,
	cat_name TEXT,
	type_name TEXT,
	type_id INTEGER,
	expiry TEXT
);
CREATE TABLE javascript_cookies (
	visit_id INTEGER,
	record_type TEXT,
	name TEXT,
	host TEXT,
	path TEXT,
	value TEXT,
	expiry TEXT,
	is_session INTEGER,
	is_http_only INTEGER,
	is_host_only INTEGER,
	is_secure INTEGER,
	same_site TEXT,
	time_stamp TEXT
);`

// Fixture writes a small crawl database. It exists for tests in this and
// other packages and is never used on real crawl data.
type Fixture struct {
	Path string
	db   *sql.DB
}

// CreateFixture creates a database with Schema at path.
func CreateFixture(path string) (*Fixture, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("error: cannot create fixture database: %w", err)
	}
	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("error: cannot create fixture schema: %w", err)
	}
	return &Fixture{Path: path, db: db}, nil
}

// OpenFixture opens an existing fixture database for further inserts.
func OpenFixture(path string) (*Fixture, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("error: cannot open fixture database: %w", err)
	}
	return &Fixture{Path: path, db: db}, nil
}

// Exec runs an arbitrary statement against the fixture.
func (f *Fixture) Exec(query string, args ...any) error {
	_, err := f.db.Exec(query, args...)
	return err
}

// AddVisit inserts a site visit and its consent crawl result.
func (f *Fixture) AddVisit(visitID int64, siteURL string, cmp, crawlState int) error {
	if _, err := f.db.Exec(`INSERT INTO site_visits (visit_id, site_url) VALUES (?, ?)`, visitID, siteURL); err != nil {
		return err
	}
	_, err := f.db.Exec(`INSERT INTO consent_crawl_results (visit_id, cmp_type, crawl_state) VALUES (?, ?, ?)`,
		visitID, cmp, crawlState)
	return err
}

// AddConsent inserts a declared cookie. Site and CMP fields of e are ignored;
// they come from the visit.
func (f *Fixture) AddConsent(e ConsentEntry) error {
	_, err := f.db.Exec(`INSERT INTO consent_data
		(visit_id, name, domain, purpose, cat_id, cat_name, type_name, type_id, expiry)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.VisitID, e.Name, e.Domain, e.Purpose, e.CategoryID, e.CategoryName, e.TypeName, e.TypeID, e.Expiry)
	return err
}

// AddCookie inserts an observed cookie with the given record type, such as
// "added-or-changed" or "deleted".
func (f *Fixture) AddCookie(recordType string, o ObservedCookie) error {
	_, err := f.db.Exec(`INSERT INTO javascript_cookies
		(visit_id, record_type, name, host, path, value, expiry,
		 is_session, is_http_only, is_host_only, is_secure, same_site, time_stamp)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		o.VisitID, recordType, o.Name, o.Host, o.Path, o.Value, o.ActualExpiry,
		boolInt(o.Session), boolInt(o.HTTPOnly), boolInt(o.HostOnly), boolInt(o.Secure),
		o.SameSite, o.Timestamp)
	return err
}

// Close closes the fixture database.
func (f *Fixture) Close() error {
	return f.db.Close()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
