package cmd

import (
	"github.com/spf13/afero"
	"github.com/urfave/cli"

	"github.com/cookieaudit/cookieaudit/internal/report"
)

const defaultLogFile = "detector.log"

// appFs backs report output and list files. Tests replace it.
var appFs afero.Fs = afero.NewOsFs()

var (
	outDir       string
	configPath   string
	logFile      string
	showProgress bool

	globalFlags = []cli.Flag{
		cli.StringFlag{
			Name:        "out, o",
			Usage:       "directory the reports are written to",
			Value:       report.DefaultDir,
			EnvVar:      "COOKIEAUDIT_OUT",
			Destination: &outDir,
		},
		cli.StringFlag{
			Name:        "config, c",
			Usage:       "TOML file overriding the rule parameters",
			EnvVar:      "COOKIEAUDIT_CONFIG",
			Destination: &configPath,
		},
		cli.StringFlag{
			Name:        "log-file",
			Usage:       "file receiving the debug log, empty to disable",
			Value:       defaultLogFile,
			EnvVar:      "COOKIEAUDIT_LOG",
			Destination: &logFile,
		},
		cli.BoolFlag{
			Name:        "progress, p",
			Usage:       "show a progress bar while cookie updates are read",
			EnvVar:      "COOKIEAUDIT_PROGRESS",
			Destination: &showProgress,
		},
	}
)

var (
	totalSites     int
	cookiebotSites int

	summaryFlags = []cli.Flag{
		cli.IntFlag{
			Name:        "total, t",
			Usage:       "number of successfully crawled sites, read from the database if 0",
			Destination: &totalSites,
		},
		cli.IntFlag{
			Name:        "cookiebot-total",
			Usage:       "number of successfully crawled Cookiebot sites, read from the database if 0",
			Destination: &cookiebotSites,
		},
	}
)

var (
	listOutput string

	domainsFlags = []cli.Flag{
		cli.StringFlag{
			Name:        "output, f",
			Usage:       "file the list is written to instead of stdout",
			Destination: &listOutput,
		},
	}
)
