package cmd

import (
	"context"
	"os"

	"github.com/urfave/cli"

	"github.com/cookieaudit/cookieaudit/cmd/common"
	"github.com/cookieaudit/cookieaudit/internal/crawldb"
	"github.com/cookieaudit/cookieaudit/internal/matcher"
	"github.com/cookieaudit/cookieaudit/internal/report"
	"github.com/cookieaudit/cookieaudit/internal/rules"
)

// need is the set of inputs a detection method reads.
type need uint8

const (
	needConsent need = 1 << iota
	needObserved
	needMatched
)

// inputs are read from the database once per run and shared read-only by
// the methods.
type inputs struct {
	entries  []crawldb.ConsentEntry
	observed []crawldb.ObservedCookie
	matched  *matcher.Result
}

type method struct {
	name        string
	aliases     []string
	usage       string
	description string
	needs       need
	run         func(ctx context.Context, e *env, in *inputs) error
}

var methods = []method{
	{
		name:        "wrong-label",
		aliases:     []string{"m1"},
		usage:       "find known cookies declared with the wrong purpose",
		description: WrongLabelDescription,
		needs:       needConsent,
		run:         runWrongLabel,
	},
	{
		name:        "majority",
		aliases:     []string{"m2"},
		usage:       "find declarations deviating from the majority label",
		description: MajorityDescription,
		needs:       needConsent,
		run:         runMajority,
	},
	{
		name:        "expiry",
		aliases:     []string{"m3"},
		usage:       "find cookies outliving their declared retention period",
		description: ExpiryDescription,
		needs:       needMatched,
		run:         runExpiry,
	},
	{
		name:        "unclassified",
		aliases:     []string{"m4"},
		usage:       "find declared cookies without a purpose",
		description: UnclassifiedDescription,
		needs:       needConsent,
		run:         runUnclassified,
	},
	{
		name:        "undeclared",
		aliases:     []string{"m5"},
		usage:       "find observed cookies missing from the consent notice",
		description: UndeclaredDescription,
		needs:       needConsent | needObserved,
		run:         runUndeclared,
	},
	{
		name:        "contradictory",
		aliases:     []string{"m6"},
		usage:       "find cookies declared with several purposes",
		description: ContradictoryDescription,
		needs:       needConsent,
		run:         runContradictory,
	},
	{
		name:        "implicit-consent",
		aliases:     []string{"m7"},
		usage:       "find cookies stored without an explicit choice",
		description: ImplicitConsentDescription,
		needs:       needMatched,
		run:         runImplicitConsent,
	},
	{
		name:        "ignored-choices",
		aliases:     []string{"m8"},
		usage:       "find cookies stored after the user rejected them",
		description: IgnoredChoicesDescription,
		needs:       needMatched,
		run:         runIgnoredChoices,
	},
	{
		name:        "undetected",
		usage:       "list declared cookies never observed",
		description: UndetectedDescription,
		needs:       needConsent | needObserved,
		run:         runUndetected,
	},
}

// load reads the inputs selected by n.
func load(e *env, n need) (*inputs, error) {
	in := &inputs{}
	var err error
	if n&needConsent != 0 {
		if in.entries, err = rules.LoadConsentEntries(e.ctx, e.db); err != nil {
			return nil, err
		}
		e.log.Info("Read %d consent entries.", len(in.entries))
	}
	if n&needObserved != 0 {
		if in.observed, err = rules.LoadObservedCookies(e.ctx, e.db); err != nil {
			return nil, err
		}
		e.log.Info("Read %d observed cookies.", len(in.observed))
	}
	if n&needMatched != 0 {
		if in.matched, err = buildMatched(e); err != nil {
			return nil, err
		}
	}
	return in, nil
}

// progressSource counts the rows read through it.
type progressSource struct {
	src matcher.Source
	bar *common.RowProgress
}

func (p progressSource) EachMatchedCookie(ctx context.Context, fn func(crawldb.MatchedCookie) error) error {
	defer p.bar.Done()
	return p.src.EachMatchedCookie(ctx, func(row crawldb.MatchedCookie) error {
		p.bar.Increment()
		return fn(row)
	})
}

func buildMatched(e *env) (*matcher.Result, error) {
	var src matcher.Source = e.db
	if showProgress {
		src = progressSource{src: e.db, bar: common.NewRowProgress(os.Stderr, "Reading cookie updates")}
	}
	return matcher.Build(e.ctx, src, e.log)
}

func methodAction(m method) func(*cli.Context) error {
	return func(ctx *cli.Context) error {
		if ctx.Args().First() == "help" {
			return cli.ShowCommandHelp(ctx, ctx.Command.Name)
		}
		dbPath := ctx.Args().First()
		if dbPath == "" {
			return common.UsageErr(ctx, errNoDatabase)
		}
		e, err := newEnv(dbPath)
		if err != nil {
			return common.RuntimeErr(ctx, m.name, "setup", err)
		}
		defer e.close()
		in, err := load(e, m.needs)
		if err != nil {
			return common.RuntimeErr(ctx, m.name, "read", err)
		}
		if err := m.run(e.ctx, e, in); err != nil {
			return common.RuntimeErr(ctx, m.name, "run", err)
		}
		return nil
	}
}

func runWrongLabel(_ context.Context, e *env, in *inputs) error {
	r := rules.WrongLabel(in.entries, e.opts.WrongLabel, e.log)
	return report.Save(e.out, report.CookiesFile(1), report.DomainsFile(1), r)
}

func runMajority(_ context.Context, e *env, in *inputs) error {
	r, _ := rules.Majority(in.entries, e.opts.Majority, e.log)
	return report.Save(e.out, report.CookiesFile(2), report.DomainsFile(2), r)
}

func runExpiry(_ context.Context, e *env, in *inputs) error {
	r := rules.Expiry(in.matched, e.opts.Expiry, e.log)
	return report.Save(e.out, report.CookiesFile(3), report.DomainsFile(3), r)
}

func runUnclassified(_ context.Context, e *env, in *inputs) error {
	r := rules.Unclassified(in.entries, e.opts.Unclassified, e.log)
	return report.Save(e.out, report.CookiesFile(4), report.DomainsFile(4), r)
}

func runUndeclared(_ context.Context, e *env, in *inputs) error {
	r := rules.Undeclared(in.entries, in.observed, e.log)
	return report.Save(e.out, report.CookiesFile(5), report.DomainsFile(5), r)
}

func runContradictory(_ context.Context, e *env, in *inputs) error {
	r := rules.Contradictory(in.entries, e.log)
	if err := report.Save(e.out, report.CookiesFile(6), report.DomainsFile(6), r); err != nil {
		return err
	}
	return e.out.WriteDomains(report.Method6NecessaryDomains, r.ExtraDomainList(rules.NecessaryDomains))
}

func runImplicitConsent(ctx context.Context, e *env, in *inputs) error {
	cookiebot, err := rules.CookiebotUninteracted(ctx, e.db, e.log)
	if err != nil {
		return err
	}
	rep := rules.ImplicitConsent(in.matched, cookiebot, e.log)
	if err := report.SaveBuckets(e.out, 7, rep.All, matcher.NumSlots); err != nil {
		return err
	}
	for _, s := range matcher.Slots() {
		if err := report.Save(e.out, report.CookiebotBucketCookiesFile(s), report.CookiebotBucketDomainsFile(s), rep.Cookiebot[s]); err != nil {
			return err
		}
	}
	return nil
}

func runIgnoredChoices(ctx context.Context, e *env, in *inputs) error {
	rejected, err := e.db.ConsentCookieSites(ctx, crawldb.RejectedConsent)
	if err != nil {
		return err
	}
	b := rules.IgnoredChoices(in.matched, rejected, e.log)
	return report.SaveBuckets(e.out, 8, b, rules.IgnoredChoicesLabels)
}

func runUndetected(_ context.Context, e *env, in *inputs) error {
	r, _ := rules.Undetected(in.entries, in.observed, e.log)
	return report.Save(e.out, report.UndetectedCookies, report.UndetectedDomains, r)
}
