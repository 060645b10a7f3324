package matcher

import (
	"strings"
	"time"
)

// Key identifies one cookie on one site.
type Key struct {
	Name string
	Host string
	Path string
	Site string
}

// String joins the key fields with ';', the form used in report files.
func (k Key) String() string {
	return strings.Join([]string{k.Name, k.Host, k.Path, k.Site}, ";")
}

// Record aggregates every admitted observation of a key. The declared fields
// are taken from the first observation.
type Record struct {
	VisitID       int64    `json:"visit_id"`
	Name          string   `json:"name"`
	Host          string   `json:"domain"`
	ConsentDomain string   `json:"consent_domain"`
	Path          string   `json:"path"`
	SiteURL       string   `json:"site_url"`
	Label         Slot     `json:"label"`
	CategoryName  string   `json:"cat_name"`
	CMPType       int      `json:"cmp_type"`
	ConsentExpiry string   `json:"consent_expiry"`
	Timestamp     string   `json:"timestamp"`
	Updates       []Update `json:"variable_data"`

	lastSeen time.Time
}

// Key returns the identity of the record.
func (r *Record) Key() Key {
	return Key{Name: r.Name, Host: r.Host, Path: r.Path, Site: r.SiteURL}
}

// Update is the observed state of a cookie at one point in time. Lifetime is
// the remaining lifetime in whole seconds and 0 for session cookies.
type Update struct {
	Value    string `json:"value"`
	Lifetime int64  `json:"expiry"`
	Session  bool   `json:"session"`
	HTTPOnly bool   `json:"http_only"`
	HostOnly bool   `json:"host_only"`
	Secure   bool   `json:"secure"`
	SameSite string `json:"same_site"`
}
