// Package summary aggregates the reports of all detection methods into
// per-site violation statistics.
package summary

import (
	"github.com/cookieaudit/cookieaudit/internal/matcher"
	"github.com/cookieaudit/cookieaudit/internal/report"
	"github.com/cookieaudit/cookieaudit/internal/rules"
)

// Finding holds the fields of a report entry the summary looks at. Unused
// fields of other methods decode to their zero values.
type Finding struct {
	Label            int     `json:"label"`
	Majority         int     `json:"majority"`
	MajRatio         float64 `json:"maj_ratio"`
	ExpiryRatio      float64 `json:"expiry_ratio"`
	Kind             string  `json:"kind"`
	AdditionalLabels []int   `json:"additional_labels"`
}

// Sites maps a site URL to its findings.
type Sites map[string][]Finding

// NumMethods is the number of detection methods.
const NumMethods = 8

// implicitConsentSlots are the method 7 buckets, all but unknown.
const implicitConsentSlots = int(matcher.SlotSocialMedia) + 1

// Reports are the findings of all methods as read from the output
// directory.
type Reports struct {
	// Methods 1 to 6, at index method-1.
	Methods [6]Sites
	// ImplicitConsent and IgnoredChoices are the label buckets of methods
	// 7 and 8, indexed by slot.
	ImplicitConsent []Sites
	IgnoredChoices  []Sites
}

// Load reads every report from w.
func Load(w *report.Writer) (*Reports, error) {
	r := &Reports{}
	for i := range r.Methods {
		if err := w.ReadJSON(report.CookiesFile(i+1), &r.Methods[i]); err != nil {
			return nil, err
		}
	}
	var err error
	if r.ImplicitConsent, err = loadBuckets(w, 7, implicitConsentSlots); err != nil {
		return nil, err
	}
	if r.IgnoredChoices, err = loadBuckets(w, 8, rules.IgnoredChoicesLabels); err != nil {
		return nil, err
	}
	return r, nil
}

func loadBuckets(w *report.Writer, method, n int) ([]Sites, error) {
	out := make([]Sites, n)
	for i, s := range matcher.Slots()[:n] {
		if err := w.ReadJSON(report.BucketCookiesFile(method, s), &out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// sitesOf returns the union of the sites of the given buckets.
func sitesOf(buckets []Sites, slots ...matcher.Slot) Sites {
	out := make(Sites)
	for _, s := range slots {
		if int(s) >= len(buckets) {
			continue
		}
		for site := range buckets[s] {
			out[site] = nil
		}
	}
	return out
}
