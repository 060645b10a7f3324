// Package rules implements the violation detection methods run over a crawl
// database.
//
// Rules that only look at what consent notices declare take the consent
// entries as a slice; rules that compare declarations with behaviour take the
// matcher result. Every rule returns a Report keyed by site URL that the
// report package writes to disk.
package rules
