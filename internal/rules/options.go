package rules

import (
	"fmt"
	"regexp"
)

// Default rule parameters.
const (
	DefaultKnownCookiePattern  = `(^_ga$|^_gat$|^_gid$|^_gat_gtag_UA_[0-9]+_[0-9]+|^_gat_UA-[0-9]+-[0-9]+)`
	DefaultKnownDomainPattern  = `.*`
	DefaultExpectedLabel       = 2
	DefaultMajorityThreshold   = 10
	DefaultMajorityMinRatio    = 2.0 / 3.0
	DefaultExpiryFactor        = 1.5
	DefaultUnclassifiedPattern = `(unclassified|uncategorized|Unclassified Cookies|no clasificados)`
)

// DefaultExpirySkip lists cookies the expiry rule ignores. The Cookiebot
// consent cookie is first set with a placeholder lifetime of decades and
// corrected once a choice is stored.
var DefaultExpirySkip = []string{"CookieConsent"}

// WrongLabelOptions selects the known cookie and the label it must carry.
// Name is matched at the start of the cookie name, Domain anywhere in the
// declared domain.
type WrongLabelOptions struct {
	Name     *regexp.Regexp
	Domain   *regexp.Regexp
	Expected int
}

// MajorityOptions bounds when a majority label is trusted.
type MajorityOptions struct {
	Threshold int
	MinRatio  float64
}

// ExpiryOptions configures the retention period check.
type ExpiryOptions struct {
	Factor float64
	Skip   map[string]struct{}
}

// UnclassifiedOptions matches category names meaning "unclassified". The
// pattern is matched case-insensitively at the start of the name.
type UnclassifiedOptions struct {
	CategoryName *regexp.Regexp
}

// Options bundles the parameters of all rules.
type Options struct {
	WrongLabel   WrongLabelOptions
	Majority     MajorityOptions
	Expiry       ExpiryOptions
	Unclassified UnclassifiedOptions
}

// Params are the uncompiled rule parameters, as read from a config file.
type Params struct {
	KnownCookiePattern  string
	KnownDomainPattern  string
	ExpectedLabel       int
	MajorityThreshold   int
	MajorityMinRatio    float64
	ExpiryFactor        float64
	ExpirySkip          []string
	UnclassifiedPattern string
}

// DefaultParams returns the parameters of the published analysis.
func DefaultParams() Params {
	return Params{
		KnownCookiePattern:  DefaultKnownCookiePattern,
		KnownDomainPattern:  DefaultKnownDomainPattern,
		ExpectedLabel:       DefaultExpectedLabel,
		MajorityThreshold:   DefaultMajorityThreshold,
		MajorityMinRatio:    DefaultMajorityMinRatio,
		ExpiryFactor:        DefaultExpiryFactor,
		ExpirySkip:          append([]string(nil), DefaultExpirySkip...),
		UnclassifiedPattern: DefaultUnclassifiedPattern,
	}
}

// DefaultOptions returns the compiled default parameters.
func DefaultOptions() Options {
	o, err := DefaultParams().Compile()
	if err != nil {
		panic(err)
	}
	return o
}

// Compile compiles the patterns in p.
func (p Params) Compile() (Options, error) {
	name, err := regexp.Compile(`^(?:` + p.KnownCookiePattern + `)`)
	if err != nil {
		return Options{}, fmt.Errorf("error: invalid cookie name pattern: %w", err)
	}
	domain, err := regexp.Compile(p.KnownDomainPattern)
	if err != nil {
		return Options{}, fmt.Errorf("error: invalid cookie domain pattern: %w", err)
	}
	unclassified, err := regexp.Compile(`(?i)^(?:` + p.UnclassifiedPattern + `)`)
	if err != nil {
		return Options{}, fmt.Errorf("error: invalid unclassified pattern: %w", err)
	}
	skip := make(map[string]struct{}, len(p.ExpirySkip))
	for _, s := range p.ExpirySkip {
		skip[s] = struct{}{}
	}
	return Options{
		WrongLabel:   WrongLabelOptions{Name: name, Domain: domain, Expected: p.ExpectedLabel},
		Majority:     MajorityOptions{Threshold: p.MajorityThreshold, MinRatio: p.MajorityMinRatio},
		Expiry:       ExpiryOptions{Factor: p.ExpiryFactor, Skip: skip},
		Unclassified: UnclassifiedOptions{CategoryName: unclassified},
	}, nil
}
