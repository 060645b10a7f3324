// Package crawldb reads the consent crawl database: the SQLite file produced by
// the consent crawler, holding visited sites, the detected consent management
// platform, the cookies declared in each consent notice, and the cookies the
// browser actually observed.
//
// The database is only ever read. Opening it validates the file and schema up
// front so that analysis commands fail before doing any work.
package crawldb
