package cmd

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"

	"github.com/cookieaudit/cookieaudit/internal/config"
	"github.com/cookieaudit/cookieaudit/internal/crawldb"
	"github.com/cookieaudit/cookieaudit/internal/report"
	"github.com/cookieaudit/cookieaudit/internal/rules"
	"github.com/cookieaudit/cookieaudit/pkg/logger"
)

var errNoDatabase = errors.New("no database path provided")

// env is what one command run works with.
type env struct {
	ctx  context.Context
	stop context.CancelFunc
	log  logger.Logger
	out  *report.Writer
	opts rules.Options
	// db is nil for commands run without a database.
	db *crawldb.DB
}

func newLogger() (logger.Logger, error) {
	console := logger.NewLeveledLogger(log.New(os.Stderr, "", log.LstdFlags), logger.LevelInfo)
	if logFile == "" {
		return console, nil
	}
	file, err := logger.NewFileLogger(logFile, logger.LevelDebug)
	if err != nil {
		return nil, err
	}
	return logger.NewMultiLogger(console, file), nil
}

// newEnv loads the rule configuration, opens the logs and, if dbPath is set,
// a snapshot of the crawl database.
func newEnv(dbPath string) (*env, error) {
	params, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	opts, err := params.Compile()
	if err != nil {
		return nil, err
	}
	l, err := newLogger()
	if err != nil {
		return nil, err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	e := &env{
		ctx:  ctx,
		stop: stop,
		log:  l,
		out:  report.NewWriter(appFs, outDir, l),
		opts: opts,
	}
	if configPath != "" {
		l.Info("Rule configuration: %s", configPath)
	}
	if dbPath == "" {
		return e, nil
	}
	e.db, err = crawldb.Open(ctx, dbPath, crawldb.WithSnapshot())
	if err != nil {
		e.close()
		return nil, err
	}
	l.Info("Database used: %s", dbPath)
	return e, nil
}

func (e *env) close() {
	if e.db != nil {
		if err := e.db.Close(); err != nil {
			e.log.Warning("closing database: %v", err)
		}
	}
	e.stop()
	_ = e.log.Close()
}
