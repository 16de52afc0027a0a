package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/google/subcommands"

	"github.com/camuig/gold-ledger/internal/config"
	"github.com/camuig/gold-ledger/internal/logger"
	"github.com/camuig/gold-ledger/internal/storage"
)

// runtime is what every command needs once config and database are open.
type runtime struct {
	cfg  *config.Config
	repo *storage.Repository
	log  *logger.Logger
}

type env struct {
	configPath string
	dbPath     string
	out        io.Writer
	open       func() (*runtime, error)
}

func newEnv(out io.Writer) *env {
	e := &env{out: out}
	e.open = e.openFromFlags
	return e
}

func (e *env) commands() []subcommands.Command {
	return []subcommands.Command{
		&priceCmd{env: e},
		&usersCmd{env: e},
		&recordsCmd{env: e},
		&summaryCmd{env: e},
	}
}

func (e *env) openFromFlags() (*runtime, error) {
	cfg, err := config.Load(e.configPath)
	if errors.Is(err, fs.ErrNotExist) {
		cfg = config.Default()
	} else if err != nil {
		return nil, err
	}
	if e.dbPath != "" {
		cfg.Storage.Path = e.dbPath
	}

	// Operators read command output; only problems go to the log.
	log := logger.New("warn")
	db, err := storage.NewDatabase(cfg.Storage.Path, log)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return &runtime{cfg: cfg, repo: storage.NewRepository(db), log: log}, nil
}

func fail(err error) subcommands.ExitStatus {
	fmt.Fprintln(os.Stderr, err)
	return subcommands.ExitFailure
}
