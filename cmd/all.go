package cmd

import (
	"github.com/urfave/cli"
	"golang.org/x/sync/errgroup"

	"github.com/cookieaudit/cookieaudit/cmd/common"
)

func runAll(ctx *cli.Context) error {
	if ctx.Args().First() == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	dbPath := ctx.Args().First()
	if dbPath == "" {
		return common.UsageErr(ctx, errNoDatabase)
	}
	e, err := newEnv(dbPath)
	if err != nil {
		return common.RuntimeErr(ctx, "all", "setup", err)
	}
	defer e.close()

	var needs need
	for _, m := range methods {
		needs |= m.needs
	}
	in, err := load(e, needs)
	if err != nil {
		return common.RuntimeErr(ctx, "all", "read", err)
	}

	g, gctx := errgroup.WithContext(e.ctx)
	for _, m := range methods {
		m := m
		g.Go(func() error {
			if err := m.run(gctx, e, in); err != nil {
				e.log.Error("%s: %v", m.name, err)
				return err
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return common.RuntimeErr(ctx, "all", "run", err)
	}
	e.log.Info("All detection methods finished, reports in '%s'", e.out.Dir)
	return nil
}
