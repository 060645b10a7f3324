// Package cmd wires the detection rules, statistics and list utilities into
// the cookieaudit command line.
package cmd

import (
	"fmt"
	"runtime"

	"github.com/urfave/cli"

	"github.com/cookieaudit/cookieaudit/cmd/common"
)

type BuildArgs struct {
	Version   string
	BuildType string
	Date      string
	Commit    string
}

func methodCommand(m method) cli.Command {
	return cli.Command{
		Name:               m.name,
		Aliases:            m.aliases,
		Usage:              m.usage,
		ArgsUsage:          "<db_path>",
		Description:        m.description,
		CustomHelpTemplate: CMD_HELP_TEMPL,
		OnUsageError:       common.UsageErrorCallback,
		Action:             methodAction(m),
	}
}

func Execute(args []string, bArgs BuildArgs) error {
	commands := make([]cli.Command, 0, len(methods)+6)
	for _, m := range methods {
		commands = append(commands, methodCommand(m))
	}
	commands = append(commands,
		cli.Command{
			Name:               "all",
			Aliases:            []string{"a"},
			Usage:              "run every detection method on one crawl",
			ArgsUsage:          "<db_path>",
			Description:        AllDescription,
			CustomHelpTemplate: CMD_HELP_TEMPL,
			OnUsageError:       common.UsageErrorCallback,
			Action:             runAll,
		},
		cli.Command{
			Name:               "cookie-stats",
			Usage:              "print first- and third-party cookie statistics",
			ArgsUsage:          "<db_path>",
			Description:        CookieStatsDescription,
			CustomHelpTemplate: CMD_HELP_TEMPL,
			OnUsageError:       common.UsageErrorCallback,
			Action:             cookieStats,
		},
		cli.Command{
			Name:                   "summary",
			Aliases:                []string{"s"},
			Usage:                  "aggregate the reports in the output directory",
			ArgsUsage:              "[db_path]",
			Description:            SummaryDescription,
			CustomHelpTemplate:     CMD_HELP_TEMPL,
			OnUsageError:           common.UsageErrorCallback,
			UseShortOptionHandling: true,
			Flags:                  summaryFlags,
			Action:                 summarize,
		},
		cli.Command{
			Name:  "domains",
			Usage: "prepare crawl site lists",
			Subcommands: []cli.Command{
				{
					Name:               "dedup",
					Usage:              "drop urls that share a domain",
					ArgsUsage:          "<file>...",
					Description:        DedupDescription,
					CustomHelpTemplate: CMD_HELP_TEMPL,
					OnUsageError:       common.UsageErrorCallback,
					Flags:              domainsFlags,
					Action:             dedupDomains,
				},
				{
					Name:               "diff",
					Usage:              "list domains of one tranco list missing from another",
					ArgsUsage:          "<base.csv> <other.csv>",
					Description:        DiffDescription,
					CustomHelpTemplate: CMD_HELP_TEMPL,
					OnUsageError:       common.UsageErrorCallback,
					Flags:              domainsFlags,
					Action:             diffDomains,
				},
			},
		},
		cli.Command{
			Name:    "help",
			Aliases: []string{"h"},
			Usage:   "prints the help message",
			Action:  common.Help,
		},
		cli.Command{
			Name:               "version",
			Aliases:            []string{"v"},
			Usage:              "prints installed version of cookieaudit",
			UsageText:          " ",
			CustomHelpTemplate: CMD_HELP_TEMPL,
			Action:             common.GetVersion,
		},
	)

	app := cli.App{
		Name:                  "cookieaudit",
		HelpName:              "cookieaudit",
		Usage:                 "Detects cookie consent violations in a crawl database.",
		Version:               fmt.Sprintf("%s-%s", bArgs.Version, bArgs.BuildType),
		UsageText:             "cookieaudit [global options] <command> [arguments...]",
		Description:           DESCRIPTION,
		CustomAppHelpTemplate: HELP_TEMPL,
		OnUsageError:          common.UsageErrorCallback,
		Commands:              commands,
		Flags:                 globalFlags,
		Action:                common.Help,
		HideHelp:              true,
		HideVersion:           true,
	}
	common.VersionCmdStr = fmt.Sprintf("%s %s (%s_%s)\nBuild: %s=%s\n",
		app.Name,
		app.Version,
		runtime.GOOS,
		runtime.GOARCH,
		bArgs.Date, bArgs.Commit,
	)
	return app.Run(args)
}
