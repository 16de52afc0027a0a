// Command goldctl inspects a gold-ledger database from the terminal.
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"
)

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")

	env := newEnv(os.Stdout)
	flag.StringVar(&env.configPath, "config", "config.yaml", "path to config file")
	flag.StringVar(&env.dbPath, "db", "", "path to SQLite database (overrides storage.path)")

	for _, c := range env.commands() {
		commander.Register(c, "")
	}

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
