package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/cookieaudit/cookieaudit/cmd"
	"github.com/cookieaudit/cookieaudit/cmd/common"
)

var (
	version   string
	commit    string
	date      string
	buildType string = "unclassified"
)

var osExit = os.Exit

func execute(args []string) error {
	return cmd.Execute(args, cmd.BuildArgs{
		Version:   version,
		Commit:    commit,
		Date:      date,
		BuildType: buildType,
	})
}

func runMain(args []string, run func([]string) error) int {
	err := run(args)
	if err == nil {
		return 0
	}
	if !errors.Is(err, common.ErrCommandFailed) {
		fmt.Printf("cookieaudit: %s\n", err.Error())
	}
	return 1
}

func main() {
	if code := runMain(os.Args, execute); code != 0 {
		osExit(code)
	}
}
