package summary

import (
	"math"
	"slices"
	"sort"

	"github.com/cookieaudit/cookieaudit/internal/matcher"
	"github.com/cookieaudit/cookieaudit/internal/rules"
	"github.com/cookieaudit/cookieaudit/pkg/logger"
)

// Totals are the denominators of the ratios.
type Totals struct {
	// Sites is the number of successfully crawled sites.
	Sites int
	// Cookiebot is the number of those using Cookiebot; zero skips the
	// Cookiebot-only figures.
	Cookiebot int
}

// Level is one step of a cumulative distribution.
type Level struct {
	AtLeast int     `json:"at_least"`
	Sites   int     `json:"sites"`
	Ratio   float64 `json:"ratio"`
}

// Distribution describes how violations spread over sites.
type Distribution struct {
	Title       string              `json:"title"`
	WithProblem int                 `json:"with_problem"`
	Ratio       float64             `json:"ratio"`
	PerMethod   [NumMethods]int     `json:"per_method"`
	MethodRatio [NumMethods]float64 `json:"method_ratio"`
	// Exact maps a number of methods to the number of sites flagged by
	// exactly that many.
	Exact      map[int]int `json:"exact"`
	Cumulative []Level     `json:"cumulative"`
}

// PerSite summarises the number of findings per flagged site.
type PerSite struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Stdev  float64 `json:"stdev"`
}

// Bin is one histogram bucket over [Low, High).
type Bin struct {
	Low   float64 `json:"low"`
	High  float64 `json:"high"`
	Count int     `json:"count"`
}

type WrongLabelStats struct {
	// SitesByLabel is keyed by the declared category id.
	SitesByLabel map[int]int `json:"sites_by_label"`
	PerSite      PerSite     `json:"per_site"`
}

type MajorityStats struct {
	HighRatioSites        int         `json:"high_ratio_sites"`
	SitesByLabel          map[int]int `json:"sites_by_label"`
	HighRatioSitesByLabel map[int]int `json:"high_ratio_sites_by_label"`
	PerSite               PerSite     `json:"per_site"`
}

type ExpiryStats struct {
	WrongExpirySites         int     `json:"wrong_expiry_sites"`
	PersistentAsSessionSites int     `json:"persistent_as_session_sites"`
	SessionAsPersistentSites int     `json:"session_as_persistent_sites"`
	RatioHistogram           []Bin   `json:"ratio_histogram"`
	PerSite                  PerSite `json:"per_site"`
}

type CountStats struct {
	AtLeast5  int     `json:"at_least_5"`
	AtLeast10 int     `json:"at_least_10"`
	AtLeast25 int     `json:"at_least_25"`
	PerSite   PerSite `json:"per_site"`
}

type ContradictoryStats struct {
	NecessaryDualSites     int     `json:"necessary_dual_sites"`
	FunctionalityDualSites int     `json:"functionality_dual_sites"`
	PerSite                PerSite `json:"per_site"`
}

type ConsentStats struct {
	Total               int     `json:"total"`
	NonNecessarySites   int     `json:"non_necessary_sites"`
	NonNecessaryRatio   float64 `json:"non_necessary_ratio"`
	AnalyticsOrAdsSites int     `json:"analytics_or_ads_sites"`
	AnalyticsOrAdsRatio float64 `json:"analytics_or_ads_ratio"`
}

// Summary is the aggregate of all reports.
type Summary struct {
	Total             int                `json:"total"`
	All               Distribution       `json:"all_methods"`
	WithoutUndeclared Distribution       `json:"without_undeclared"`
	WrongLabel        WrongLabelStats    `json:"method1"`
	Majority          MajorityStats      `json:"method2"`
	Expiry            ExpiryStats        `json:"method3"`
	Unclassified      CountStats         `json:"method4"`
	Undeclared        CountStats         `json:"method5"`
	Contradictory     ContradictoryStats `json:"method6"`
	ImplicitConsent   ConsentStats       `json:"method7"`
	IgnoredChoices    ConsentStats       `json:"method8"`
	// IgnoredChoicesCookiebot uses the Cookiebot site count as denominator.
	IgnoredChoicesCookiebot *ConsentStats `json:"method8_cookiebot,omitempty"`
}

// MajorityHighRatio is the majority ratio above which an outlier counts as
// confidently mislabelled.
const MajorityHighRatio = 0.75

// ExpiryRatioEdges are the bin edges of the expiry ratio histogram. The
// last edge stands in for infinity, which JSON cannot represent.
var ExpiryRatioEdges = []float64{1, 1.5, 1.6, 2, 2.5, 5, 10, 100, 1e3, 1e4, 1e6, 1e7, 1e8, 1e9, 1e10, math.MaxFloat64}

// Compute aggregates r.
func Compute(r *Reports, t Totals, log logger.Logger) Summary {
	s := Summary{Total: t.Sites}

	m7 := sitesOf(r.ImplicitConsent, matcher.SlotFunctionality, matcher.SlotAnalytics,
		matcher.SlotAdvertising, matcher.SlotUncategorized, matcher.SlotSocialMedia)
	m8 := sitesOf(r.IgnoredChoices, matcher.SlotFunctionality, matcher.SlotAnalytics,
		matcher.SlotAdvertising, matcher.SlotUncategorized)
	all := []Sites{r.Methods[0], r.Methods[1], r.Methods[2], r.Methods[3], r.Methods[4], r.Methods[5], m7, m8}
	s.All = distribution("All Violation Methods", all, t.Sites)
	withoutUndeclared := slices.Clone(all)
	withoutUndeclared[4] = nil
	s.WithoutUndeclared = distribution("Without Method 5: 'Undeclared Cookies'", withoutUndeclared, t.Sites)

	s.WrongLabel = wrongLabel(r.Methods[0])
	s.Majority = majority(r.Methods[1])
	s.Expiry = expiry(r.Methods[2])
	s.Unclassified = counts(r.Methods[3])
	s.Undeclared = counts(r.Methods[4])
	s.Contradictory = contradictory(r.Methods[5])
	s.ImplicitConsent = consent(r.ImplicitConsent, true, t.Sites)
	s.IgnoredChoices = consent(r.IgnoredChoices, false, t.Sites)
	if t.Cookiebot > 0 {
		cb := consent(r.IgnoredChoices, false, t.Cookiebot)
		s.IgnoredChoicesCookiebot = &cb
	}

	s.log(log)
	return s
}

func distribution(title string, methods []Sites, total int) Distribution {
	d := Distribution{Title: title, Exact: make(map[int]int)}
	perSite := make(map[string]int)
	for i, m := range methods {
		d.PerMethod[i] = len(m)
		d.MethodRatio[i] = ratio(len(m), total)
		for site := range m {
			perSite[site]++
		}
	}
	d.WithProblem = len(perSite)
	d.Ratio = ratio(d.WithProblem, total)

	maxCount := 0
	for _, n := range perSite {
		d.Exact[n]++
		maxCount = max(maxCount, n)
	}
	cum := 0
	for i := maxCount; i > 0; i-- {
		cum += d.Exact[i]
		d.Cumulative = append(d.Cumulative, Level{AtLeast: i, Sites: cum, Ratio: ratio(cum, total)})
	}
	return d
}

func wrongLabel(m Sites) WrongLabelStats {
	st := WrongLabelStats{SitesByLabel: make(map[int]int), PerSite: perSite(m)}
	for _, fs := range m {
		labels := make(map[int]struct{})
		for _, f := range fs {
			labels[f.Label] = struct{}{}
		}
		for l := range labels {
			st.SitesByLabel[l]++
		}
	}
	return st
}

// majority counts outliers whose majority label is analytics or advertising.
func majority(m Sites) MajorityStats {
	st := MajorityStats{
		SitesByLabel:          make(map[int]int),
		HighRatioSitesByLabel: make(map[int]int),
		PerSite:               perSite(m),
	}
	for _, fs := range m {
		labels := make(map[int]struct{})
		high := make(map[int]struct{})
		for _, f := range fs {
			if f.Majority != int(matcher.SlotAnalytics) && f.Majority != int(matcher.SlotAdvertising) {
				continue
			}
			labels[f.Label] = struct{}{}
			if f.MajRatio > MajorityHighRatio {
				high[f.Label] = struct{}{}
			}
		}
		for l := range labels {
			st.SitesByLabel[l]++
		}
		for l := range high {
			st.HighRatioSitesByLabel[l]++
		}
		if len(high) > 0 {
			st.HighRatioSites++
		}
	}
	return st
}

func expiry(m Sites) ExpiryStats {
	st := ExpiryStats{PerSite: perSite(m)}
	var ratios []float64
	for _, fs := range m {
		var wrong, pas, sap bool
		for _, f := range fs {
			if f.ExpiryRatio > 0 {
				ratios = append(ratios, f.ExpiryRatio)
			}
			switch f.Kind {
			case rules.PersistentAsSession:
				pas = true
			case rules.SessionAsPersistent:
				sap = true
			default:
				wrong = true
			}
		}
		if wrong {
			st.WrongExpirySites++
		}
		if pas {
			st.PersistentAsSessionSites++
		}
		if sap {
			st.SessionAsPersistentSites++
		}
	}
	st.RatioHistogram = histogram(ratios, ExpiryRatioEdges)
	return st
}

func counts(m Sites) CountStats {
	st := CountStats{PerSite: perSite(m)}
	for _, fs := range m {
		n := len(fs)
		if n >= 5 {
			st.AtLeast5++
		}
		if n >= 10 {
			st.AtLeast10++
		}
		if n >= 25 {
			st.AtLeast25++
		}
	}
	return st
}

func trackingLabel(l int) bool {
	return l == int(matcher.SlotAnalytics) || l == int(matcher.SlotAdvertising)
}

func hasTrackingLabel(ls []int) bool {
	return slices.ContainsFunc(ls, trackingLabel)
}

// dualLabelled reports whether a finding pairs label with analytics or
// advertising, in either direction.
func dualLabelled(f Finding, label int) bool {
	if trackingLabel(f.Label) && slices.Contains(f.AdditionalLabels, label) {
		return true
	}
	return f.Label == label && hasTrackingLabel(f.AdditionalLabels)
}

func contradictory(m Sites) ContradictoryStats {
	st := ContradictoryStats{PerSite: perSite(m)}
	for _, fs := range m {
		var nec, fun bool
		for _, f := range fs {
			nec = nec || dualLabelled(f, int(matcher.SlotNecessary))
			fun = fun || dualLabelled(f, int(matcher.SlotFunctionality))
		}
		if nec {
			st.NecessaryDualSites++
		}
		if fun {
			st.FunctionalityDualSites++
		}
	}
	return st
}

func consent(buckets []Sites, social bool, total int) ConsentStats {
	others := []matcher.Slot{matcher.SlotFunctionality, matcher.SlotAnalytics, matcher.SlotAdvertising, matcher.SlotUncategorized}
	if social {
		others = append(others, matcher.SlotSocialMedia)
	}
	nonNecessary := len(sitesOf(buckets, others...))
	tracking := len(sitesOf(buckets, matcher.SlotAnalytics, matcher.SlotAdvertising))
	return ConsentStats{
		Total:               total,
		NonNecessarySites:   nonNecessary,
		NonNecessaryRatio:   ratio(nonNecessary, total),
		AnalyticsOrAdsSites: tracking,
		AnalyticsOrAdsRatio: ratio(tracking, total),
	}
}

func perSite(m Sites) PerSite {
	if len(m) == 0 {
		return PerSite{}
	}
	ns := make([]float64, 0, len(m))
	sum := 0.0
	for _, fs := range m {
		ns = append(ns, float64(len(fs)))
		sum += float64(len(fs))
	}
	sort.Float64s(ns)
	p := PerSite{Mean: sum / float64(len(ns))}
	if mid := len(ns) / 2; len(ns)%2 == 1 {
		p.Median = ns[mid]
	} else {
		p.Median = (ns[mid-1] + ns[mid]) / 2
	}
	if len(ns) > 1 {
		var sq float64
		for _, n := range ns {
			sq += (n - p.Mean) * (n - p.Mean)
		}
		p.Stdev = math.Sqrt(sq / float64(len(ns)-1))
	}
	return p
}

// histogram counts values into [edges[i], edges[i+1]). The last bin also
// holds values equal to its upper edge. Values outside the edges are
// dropped.
func histogram(values, edges []float64) []Bin {
	bins := make([]Bin, len(edges)-1)
	for i := range bins {
		bins[i] = Bin{Low: edges[i], High: edges[i+1]}
	}
	last := len(bins) - 1
	for _, v := range values {
		if v < edges[0] || v > edges[len(edges)-1] {
			continue
		}
		i := sort.SearchFloat64s(edges, v)
		// SearchFloat64s returns the first edge >= v.
		if i < len(edges) && edges[i] == v {
			i++
		}
		bins[min(i-1, last)].Count++
	}
	return bins
}

func ratio(n, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(n) / float64(total)
}
