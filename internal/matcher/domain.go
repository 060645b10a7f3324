package matcher

import (
	"strings"

	"golang.org/x/text/cases"
)

// DomainSeparator splits alternative domains in a declared consent domain.
const DomainSeparator = "<br/>"

var folder = cases.Fold()

// CanonicalDomain strips a leading http:// or https:// scheme, then a leading
// "www" with an optional single digit, then one leading dot. Case and trailing
// slashes are kept.
func CanonicalDomain(dom string) string {
	if s, ok := strings.CutPrefix(dom, "https://"); ok {
		dom = s
	} else {
		dom = strings.TrimPrefix(dom, "http://")
	}
	if s, ok := strings.CutPrefix(dom, "www"); ok {
		dom = s
		if len(dom) > 0 && dom[0] >= '0' && dom[0] <= '9' {
			dom = dom[1:]
		}
	}
	return strings.TrimPrefix(dom, ".")
}

// DomainsMatch reports whether any domain listed in consentDomain is a
// case-insensitive substring of host, both in canonical form. Empty candidates
// never match.
func DomainsMatch(consentDomain, host string) bool {
	observed := folder.String(CanonicalDomain(host))
	for _, candidate := range strings.Split(consentDomain, DomainSeparator) {
		c := CanonicalDomain(candidate)
		if c == "" {
			continue
		}
		if strings.Contains(observed, folder.String(c)) {
			return true
		}
	}
	return false
}
