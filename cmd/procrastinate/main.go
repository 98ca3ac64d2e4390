package main

import (
	stderrors "errors"
	"path/filepath"

	"github.com/alecthomas/kong"

	"github.com/procrastinate-org/procrastinate/internal/cli"
	"github.com/procrastinate-org/procrastinate/internal/constants"
	"github.com/procrastinate-org/procrastinate/internal/errors"
	"github.com/procrastinate-org/procrastinate/internal/logger"
	"github.com/procrastinate-org/procrastinate/internal/storage"
)

var version = "dev"

func main() {
	var root cli.CLI
	kctx := kong.Parse(&root,
		kong.Name(constants.AppName),
		kong.Description("Remind yourself of the things you would rather do later."),
		kong.UsageOnError(),
		kong.Vars{"version": version},
	)

	path, err := storage.ResolvePath(root.Local, root.File)
	if err != nil {
		errors.Fatal(err)
	}
	if err := logger.Init(logger.Config{Debug: root.Verbose, DataDir: filepath.Dir(path)}); err != nil {
		errors.Fatal(err)
	}

	store := storage.ForPath(path)
	if err := store.Load(); err != nil {
		if stderrors.Is(err, storage.ErrNotInitialized) {
			err = store.Init()
		}
		if err != nil {
			errors.Fatal(err)
		}
	}

	runErr := kctx.Run(&cli.Context{Store: store, USDates: root.USDate})
	store.Close()
	errors.Fatal(runErr)
}
