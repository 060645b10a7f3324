package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/afero"
	"github.com/urfave/cli"

	"github.com/cookieaudit/cookieaudit/cmd/common"
	"github.com/cookieaudit/cookieaudit/internal/domainlist"
)

var (
	errNoInput   = errors.New("no input file provided")
	errTwoInputs = errors.New("expected a base and an other tranco list")
)

// writeList writes lines to listOutput, or to stdout if it is empty.
func writeList(lines []string) error {
	var b strings.Builder
	for _, l := range lines {
		b.WriteString(l)
		b.WriteByte('\n')
	}
	if listOutput == "" {
		fmt.Print(b.String())
		return nil
	}
	return afero.WriteFile(appFs, listOutput, []byte(b.String()), 0644)
}

func dedupDomains(ctx *cli.Context) error {
	if ctx.Args().First() == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	if ctx.NArg() == 0 {
		return common.UsageErr(ctx, errNoInput)
	}
	d := domainlist.NewDeduper()
	for _, path := range ctx.Args() {
		f, err := appFs.Open(path)
		if err != nil {
			return common.RuntimeErr(ctx, "dedup", "open", err)
		}
		err = d.ReadFrom(f)
		f.Close()
		if err != nil {
			return common.RuntimeErr(ctx, "dedup", "read", err)
		}
	}
	for _, u := range d.Duplicates {
		fmt.Printf("duplicate domain for: %s\n", u)
	}
	fmt.Printf("Number of unique URLs: %d\n", len(d.URLs))
	if err := writeList(d.URLs); err != nil {
		return common.RuntimeErr(ctx, "dedup", "write", err)
	}
	return nil
}

func diffDomains(ctx *cli.Context) error {
	if ctx.Args().First() == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	if ctx.NArg() != 2 {
		return common.UsageErr(ctx, errTwoInputs)
	}
	base, err := appFs.Open(ctx.Args().Get(0))
	if err != nil {
		return common.RuntimeErr(ctx, "diff", "open", err)
	}
	defer base.Close()
	other, err := appFs.Open(ctx.Args().Get(1))
	if err != nil {
		return common.RuntimeErr(ctx, "diff", "open", err)
	}
	defer other.Close()

	added, err := domainlist.Diff(base, other)
	if err != nil {
		return common.RuntimeErr(ctx, "diff", "read", err)
	}
	fmt.Printf("Num new URLs: %d\n", len(added))
	if err := writeList(added); err != nil {
		return common.RuntimeErr(ctx, "diff", "write", err)
	}
	return nil
}
