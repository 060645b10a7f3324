package rules

import (
	"strings"

	"github.com/cookieaudit/cookieaudit/internal/matcher"
	"github.com/cookieaudit/cookieaudit/pkg/logger"
)

// Kinds of expiry inconsistency, also used as expiry_diff for the two
// session mismatches.
const (
	PersistentAsSession = "persistent_as_session"
	SessionAsPersistent = "session_as_persistent"
	WrongExpiry         = "wrong_expiry"
)

// ExpiryFinding is a cookie whose observed lifetime contradicts the declared
// retention period. ExpiryRatio is the observed over declared lifetime and
// only set for WrongExpiry.
type ExpiryFinding struct {
	*matcher.Record
	ConsentExpiryStr string  `json:"consent_expiry_str"`
	TrueExpiryStr    string  `json:"true_expiry_str"`
	ExpiryDiff       string  `json:"expiry_diff"`
	ExpiryRatio      float64 `json:"expiry_ratio"`
	Kind             string  `json:"kind"`
}

// Expiry compares the declared retention period of every matched cookie with
// its observed updates and reports the first inconsistent update per cookie:
// a persistent cookie declared as session, a session cookie declared as
// persistent, or a lifetime above opts.Factor times the declared period.
func Expiry(res *matcher.Result, opts ExpiryOptions, log logger.Logger) *Report[ExpiryFinding] {
	log.Info("Running method 03: Incorrect Retention Period")
	r := newReport[ExpiryFinding]("method3")

	for _, rec := range res.Sorted() {
		if _, skip := opts.Skip[rec.Name]; skip || rec.ConsentExpiry == "" {
			continue
		}
		r.examine(rec.SiteURL)

		declared := strings.ToLower(rec.ConsentExpiry)
		switch declared {
		case "session":
			for _, u := range rec.Updates {
				if !u.Session {
					flagSession(r, rec, u, PersistentAsSession)
					break
				}
			}
		case "persistent", "persistant":
			for _, u := range rec.Updates {
				if u.Session {
					flagSession(r, rec, u, SessionAsPersistent)
					break
				}
			}
		default:
			checkLifetime(r, rec, opts.Factor, log)
		}
	}

	log.Info("Number of cookies with expiries: %d", r.Examined)
	log.Info("Number of inconsistencies: %d", r.Violations())
	log.Info("Total number of domains that specified an expiration date: %d", len(r.Sites))
	log.Info("Number of sites with inconsistencies: %d", len(r.Details))
	log.Info("Inconsistencies per CMP Type: %v", r.PerCMP)
	log.Info("Number of persistent cookies declared as session cookies: %d", r.Extra[PersistentAsSession])
	log.Info("Number of session cookies declared as persistent cookies: %d", r.Extra[SessionAsPersistent])
	log.Info("Number of persistent cookies with wrong expiration date: %d", r.Extra[WrongExpiry])
	return r
}

func checkLifetime(r *Report[ExpiryFinding], rec *matcher.Record, factor float64, log logger.Logger) {
	declared, parseErr := DeclaredExpirySeconds(rec.ConsentExpiry, rec.CMPType)
	for _, u := range rec.Updates {
		if u.Session {
			flagSession(r, rec, u, PersistentAsSession)
			return
		}
		if parseErr != nil {
			log.Warning("Skipped because could not convert date: %s", rec.ConsentExpiry)
			return
		}
		if float64(u.Lifetime) > float64(declared)*factor {
			diff := u.Lifetime - declared
			if diff < 0 {
				diff = -diff
			}
			f := ExpiryFinding{
				Record:           rec,
				ConsentExpiryStr: FormatSeconds(declared),
				TrueExpiryStr:    FormatSeconds(u.Lifetime),
				ExpiryDiff:       FormatSeconds(diff),
				Kind:             WrongExpiry,
			}
			if declared > 0 {
				f.ExpiryRatio = float64(u.Lifetime) / float64(declared)
			}
			r.add(rec.SiteURL, rec.CMPType, rec.Label, f)
			r.Extra[WrongExpiry]++
			return
		}
	}
}

func flagSession(r *Report[ExpiryFinding], rec *matcher.Record, u matcher.Update, kind string) {
	r.add(rec.SiteURL, rec.CMPType, rec.Label, ExpiryFinding{
		Record:           rec,
		ConsentExpiryStr: rec.ConsentExpiry,
		TrueExpiryStr:    FormatSeconds(u.Lifetime),
		ExpiryDiff:       kind,
		Kind:             kind,
	})
	r.Extra[kind]++
}
