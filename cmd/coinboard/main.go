// Command coinboard is a crypto market dashboard served to a Telegram chat
// or printed to the terminal.
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"
)

var (
	configPath = flag.String("config", "configs/config.yaml", "Path to configuration file")
	envFile    = flag.String("env", ".env", "Path to an optional .env file with secrets")
)

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")

	commander.Register(&serveCmd{}, "dashboard")
	commander.Register(&snapshotCmd{}, "dashboard")

	commander.Register(&portfolioCmd{}, "state")
	commander.Register(&favCmd{}, "state")
	commander.Register(&themeCmd{}, "state")

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
