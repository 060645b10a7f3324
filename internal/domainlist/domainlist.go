// Package domainlist prepares the site lists a crawl runs on: it prunes URLs
// that share a domain and diffs Tranco ranking files.
package domainlist

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/url"
	"sort"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// ErrMalformedRow is returned for a Tranco row without a domain column.
var ErrMalformedRow = errors.New("malformed tranco row")

// DomainLabel returns the registrable label of a URL, the part of the host
// left of its public suffix: "https://www.shop.example.co.uk:8080/" gives
// "example".
func DomainLabel(rawURL string) string {
	s := strings.TrimSpace(rawURL)
	host := s
	if u, err := url.Parse(s); err == nil && u.Host != "" {
		host = u.Host
	}
	host = strings.ToLower(host)
	host = strings.TrimPrefix(host, "www.")
	if i := strings.IndexByte(host, ':'); i >= 0 {
		host = host[:i]
	}
	reg, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return host
	}
	suffix, _ := publicsuffix.PublicSuffix(reg)
	return strings.TrimSuffix(reg, "."+suffix)
}

// Deduper keeps the first URL seen per domain label.
type Deduper struct {
	seen       map[string]struct{}
	URLs       []string
	Duplicates []string
}

func NewDeduper() *Deduper {
	return &Deduper{seen: make(map[string]struct{})}
}

// Add records u and reports whether it was kept. Blank lines are ignored.
func (d *Deduper) Add(u string) bool {
	u = strings.TrimSpace(u)
	if u == "" {
		return false
	}
	label := DomainLabel(u)
	if _, dup := d.seen[label]; dup {
		d.Duplicates = append(d.Duplicates, u)
		return false
	}
	d.seen[label] = struct{}{}
	d.URLs = append(d.URLs, u)
	return true
}

// ReadFrom adds every line of r.
func (d *Deduper) ReadFrom(r io.Reader) error {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		d.Add(sc.Text())
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("error: cannot read url list: %w", err)
	}
	return nil
}

// Dedup returns urls without those whose domain label was already seen, and
// the dropped duplicates, both in input order.
func Dedup(urls []string) (kept, duplicates []string) {
	d := NewDeduper()
	for _, u := range urls {
		d.Add(u)
	}
	return d.URLs, d.Duplicates
}

// ReadTranco reads the domains of a Tranco list, one "rank,domain" row per
// line.
func ReadTranco(r io.Reader) (map[string]struct{}, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true
	domains := make(map[string]struct{})
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			return domains, nil
		}
		if err != nil {
			return nil, fmt.Errorf("error: cannot read tranco list: %w", err)
		}
		if len(rec) < 2 {
			line, _ := cr.FieldPos(0)
			return nil, fmt.Errorf("%w at line %d", ErrMalformedRow, line)
		}
		domains[strings.TrimSpace(rec[1])] = struct{}{}
	}
}

// Diff returns the sorted domains of list b that are not in list a.
func Diff(a, b io.Reader) ([]string, error) {
	base, err := ReadTranco(a)
	if err != nil {
		return nil, err
	}
	other, err := ReadTranco(b)
	if err != nil {
		return nil, err
	}
	var out []string
	for d := range other {
		if _, ok := base[d]; !ok {
			out = append(out, d)
		}
	}
	sort.Strings(out)
	return out, nil
}
