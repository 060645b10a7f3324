package rules

import (
	"strings"

	"github.com/cookieaudit/cookieaudit/internal/crawldb"
	"github.com/cookieaudit/cookieaudit/internal/matcher"
	"github.com/cookieaudit/cookieaudit/pkg/logger"
)

// MajorityFinding is a declaration that deviates from the label most sites
// give the same cookie.
type MajorityFinding struct {
	crawldb.ConsentEntry
	Majority int     `json:"majority"`
	MajCount int     `json:"maj_count"`
	MajRatio float64 `json:"maj_ratio"`
}

// ConfusionMatrix counts outliers by [majority slot][declared slot] over the
// slots a majority may take.
type ConfusionMatrix [matcher.SlotSocialMedia + 1][matcher.SlotSocialMedia + 1]int

type nameDomain struct {
	name, domain string
}

// Majority flags declarations with one of the four main labels that deviate
// from a clear majority label for the same (name, domain) across all sites.
// A majority counts if it has at least opts.Threshold votes and a share above
// opts.MinRatio. Each (site, name, domain) votes once.
func Majority(entries []crawldb.ConsentEntry, opts MajorityOptions, log logger.Logger) (*Report[MajorityFinding], ConfusionMatrix) {
	log.Info("Running method 02: Identifying Outlier Labels")
	r := newReport[MajorityFinding]("method2")

	seen := make(map[string]struct{})
	var unique []crawldb.ConsentEntry
	for _, e := range entries {
		key := strings.TrimSpace(e.SiteURL) + ";" + strings.TrimSpace(e.Name) + ";" + strings.TrimSpace(e.Domain)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, e)
	}

	votes := make(map[nameDomain]*[matcher.NumSlots]int)
	for _, e := range unique {
		k := nameDomain{e.Name, e.Domain}
		v, ok := votes[k]
		if !ok {
			v = new([matcher.NumSlots]int)
			votes[k] = v
		}
		if s, ok := matcher.SlotOf(e.CategoryID); ok {
			v[s]++
		}
	}

	var cm ConfusionMatrix
	for _, e := range unique {
		r.examine(e.SiteURL)
		if e.CategoryID < int(matcher.SlotNecessary) || e.CategoryID > int(matcher.SlotAdvertising) {
			continue
		}
		v := votes[nameDomain{e.Name, e.Domain}]

		// argmax over every slot except unknown; ties go to the lower slot
		majority, sum := matcher.SlotNecessary, 0
		for s := matcher.SlotNecessary; s <= matcher.SlotSocialMedia; s++ {
			sum += v[s]
			if v[s] > v[majority] {
				majority = s
			}
		}
		if majority == matcher.SlotUncategorized {
			continue
		}
		var ratio float64
		if sum > 0 {
			ratio = float64(v[majority]) / float64(sum)
		}
		if sum < opts.Threshold || ratio <= opts.MinRatio || e.CategoryID == int(majority) {
			continue
		}
		r.add(e.SiteURL, e.CMPType, matcher.Slot(e.CategoryID), MajorityFinding{
			ConsentEntry: e,
			Majority:     int(majority),
			MajCount:     v[majority],
			MajRatio:     ratio,
		})
		cm[majority][e.CategoryID]++
	}

	log.Info("Total cookies analyzed: %d", r.Examined)
	log.Info("Number of potential violations: %d", r.Violations())
	log.Info("Number of sites in total: %d", len(r.Sites))
	log.Info("Number of sites with potential violations: %d", len(r.Details))
	log.Info("Majority Necessary: %v", cm[matcher.SlotNecessary][:4])
	log.Info("Majority Functional: %v", cm[matcher.SlotFunctionality][:4])
	log.Info("Majority Analytics: %v", cm[matcher.SlotAnalytics][:4])
	log.Info("Majority Advertising: %v", cm[matcher.SlotAdvertising][:4])
	r.logCMP(log)
	return r, cm
}
