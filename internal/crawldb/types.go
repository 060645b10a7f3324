package crawldb

// CMP type identifiers as recorded by the crawler. NoCMP marks sites where no
// supported consent management platform was detected.
const (
	NoCMP     = -1
	Cookiebot = 0
	OneTrust  = 1
	Termly    = 2

	// NumCMPs is the number of supported consent management platforms.
	NumCMPs = 3
)

// CrawlSucceeded is the crawl state of a visit whose consent notice was
// extracted without error.
const CrawlSucceeded = 0

// CMPName returns a display name for a CMP type.
func CMPName(cmp int) string {
	switch cmp {
	case Cookiebot:
		return "Cookiebot"
	case OneTrust:
		return "OneTrust"
	case Termly:
		return "Termly"
	default:
		return "none"
	}
}

// MatchedCookie is one row of the join between a declared consent entry and an
// observed cookie with the same name on the same visit.
type MatchedCookie struct {
	VisitID       int64  `json:"visit_id"`
	SiteURL       string `json:"site_url"`
	CMPType       int    `json:"cmp_type"`
	CrawlState    int    `json:"crawl_state"`
	Name          string `json:"name"`
	Host          string `json:"domain"`
	Path          string `json:"path"`
	ConsentDomain string `json:"consent_domain"`
	Value         string `json:"value"`
	Purpose       string `json:"purpose"`
	CategoryID    int    `json:"cat_id"`
	CategoryName  string `json:"cat_name"`
	TypeName      string `json:"type_name"`
	TypeID        int    `json:"type_id"`
	ConsentExpiry string `json:"consent_expiry"`
	ActualExpiry  string `json:"actual_expiry"`
	Session       bool   `json:"is_session"`
	HTTPOnly      bool   `json:"is_http_only"`
	HostOnly      bool   `json:"is_host_only"`
	Secure        bool   `json:"is_secure"`
	SameSite      string `json:"same_site"`
	Timestamp     string `json:"time_stamp"`
}

// ConsentEntry is a cookie declared in a site's consent notice.
// TypeID is 0 when the CMP did not record a cookie type.
type ConsentEntry struct {
	VisitID      int64  `json:"visit_id"`
	SiteURL      string `json:"site_url"`
	CMPType      int    `json:"cmp_type"`
	CrawlState   int    `json:"crawl_state"`
	Name         string `json:"name"`
	Domain       string `json:"domain"`
	Purpose      string `json:"purpose"`
	CategoryID   int    `json:"label"`
	CategoryName string `json:"cat_name"`
	TypeName     string `json:"type_name"`
	TypeID       int    `json:"type_id"`
	Expiry       string `json:"expiry"`
}

// ObservedCookie is a cookie set in the browser during a crawl, independent of
// what the consent notice declared.
type ObservedCookie struct {
	VisitID      int64  `json:"visit_id"`
	SiteURL      string `json:"site_url"`
	CMPType      int    `json:"cmp_type"`
	CrawlState   int    `json:"crawl_state"`
	Name         string `json:"name"`
	Host         string `json:"domain"`
	Path         string `json:"path"`
	Value        string `json:"value"`
	ActualExpiry string `json:"expiry"`
	Session      bool   `json:"is_session"`
	HTTPOnly     bool   `json:"http_only"`
	HostOnly     bool   `json:"host_only"`
	Secure       bool   `json:"secure"`
	SameSite     string `json:"same_site"`
	Timestamp    string `json:"time_stamp"`
}

// ConsentFilter selects which Cookiebot consent cookies ConsentCookieSites
// looks for.
type ConsentFilter int

const (
	// AllConsentCookies matches any stored CookieConsent cookie.
	AllConsentCookies ConsentFilter = iota
	// InteractedConsent matches consent cookies recording an explicit choice.
	InteractedConsent
	// RejectedConsent matches consent cookies recording that every optional
	// category was refused.
	RejectedConsent
)
