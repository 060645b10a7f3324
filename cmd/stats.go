package cmd

import (
	"github.com/urfave/cli"

	"github.com/cookieaudit/cookieaudit/cmd/common"
	"github.com/cookieaudit/cookieaudit/internal/crawldb"
	"github.com/cookieaudit/cookieaudit/internal/report"
	"github.com/cookieaudit/cookieaudit/internal/stats"
	"github.com/cookieaudit/cookieaudit/internal/summary"
)

func cookieStats(ctx *cli.Context) error {
	if ctx.Args().First() == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	dbPath := ctx.Args().First()
	if dbPath == "" {
		return common.UsageErr(ctx, errNoDatabase)
	}
	e, err := newEnv(dbPath)
	if err != nil {
		return common.RuntimeErr(ctx, "cookie-stats", "setup", err)
	}
	defer e.close()

	s, err := stats.Compute(e.ctx, e.db, e.log)
	if err != nil {
		return common.RuntimeErr(ctx, "cookie-stats", "compute", err)
	}
	if err := e.out.WriteJSON(report.CookieStats, s); err != nil {
		return common.RuntimeErr(ctx, "cookie-stats", "write", err)
	}
	return nil
}

func summarize(ctx *cli.Context) error {
	if ctx.Args().First() == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	dbPath := ctx.Args().First()
	if dbPath == "" && totalSites <= 0 {
		return common.UsageErr(ctx, errNoDatabase)
	}
	e, err := newEnv(dbPath)
	if err != nil {
		return common.RuntimeErr(ctx, "summary", "setup", err)
	}
	defer e.close()

	totals := summary.Totals{Sites: totalSites, Cookiebot: cookiebotSites}
	if e.db != nil {
		if totals.Sites <= 0 {
			if totals.Sites, err = e.db.SuccessfulCrawls(e.ctx); err != nil {
				return common.RuntimeErr(ctx, "summary", "count", err)
			}
		}
		if totals.Cookiebot <= 0 {
			perCMP, err := e.db.SuccessfulCrawlsByCMP(e.ctx)
			if err != nil {
				return common.RuntimeErr(ctx, "summary", "count", err)
			}
			totals.Cookiebot = perCMP[crawldb.Cookiebot]
		}
	}
	e.log.Info("Total Domain Count: %d", totals.Sites)

	reps, err := summary.Load(e.out)
	if err != nil {
		return common.RuntimeErr(ctx, "summary", "load", err)
	}
	s := summary.Compute(reps, totals, e.log)
	if err := e.out.WriteJSON(report.Summary, s); err != nil {
		return common.RuntimeErr(ctx, "summary", "write", err)
	}
	return nil
}
