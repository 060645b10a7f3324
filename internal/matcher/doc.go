// Package matcher joins the cookies a consent notice declares with the cookies
// a crawl actually observed.
//
// Build consumes matched rows in (visit, name, timestamp) order and folds them
// into one Record per (name, host, path, site) key. A key whose rows disagree
// on name, host, path, site, label or CMP is retracted and blacklisted for the
// rest of the run. Every detection rule that works on observed behaviour reads
// the resulting Result.
package matcher
