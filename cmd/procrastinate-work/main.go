// Command procrastinate-work runs a single notification pass over the
// collection, for cron jobs and shell hooks that do not want a daemon.
package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/alecthomas/kong"

	"github.com/procrastinate-org/procrastinate/internal/constants"
	"github.com/procrastinate-org/procrastinate/internal/errors"
	"github.com/procrastinate-org/procrastinate/internal/logger"
	"github.com/procrastinate-org/procrastinate/internal/notifier"
	"github.com/procrastinate-org/procrastinate/internal/storage"
)

var root struct {
	Key string `arg:"" optional:"" help:"Check only the reminder with this key."`

	Local   bool   `short:"l" help:"Use ./procrastination.json in the current directory."`
	File    string `short:"f" type:"path" help:"Collection file to use. Mutually exclusive with --local."`
	Verbose bool   `short:"v" help:"Enable debug logging."`
	Tray    bool   `help:"Deliver through the tray application instead of the desktop bus."`
}

func main() {
	kong.Parse(&root,
		kong.Name(constants.AppName+"-work"),
		kong.Description("Run one notification pass over the collection."),
		kong.UsageOnError(),
	)

	path, err := storage.ResolvePath(root.Local, root.File)
	if err != nil {
		errors.Fatal(err)
	}
	if err := logger.Init(logger.Config{Debug: root.Verbose, DataDir: filepath.Dir(path)}); err != nil {
		errors.Fatal(err)
	}

	var deliverer notifier.Notifier
	if root.Tray {
		deliverer = notifier.NewTray()
	} else {
		desktop, err := notifier.NewDesktop()
		if err != nil {
			errors.Fatal(err)
		}
		defer desktop.Close()
		deliverer = desktop
	}

	store := storage.ForPath(path)
	if err := store.Load(); err != nil {
		errors.Fatal(err)
	}
	defer store.Close()

	now := time.Now()
	if root.Key != "" {
		kind, found, err := store.Data().NotifyOne(root.Key, deliverer, now)
		if err != nil {
			errors.Fatal(err)
		}
		if !found {
			errors.Fatalf("no reminder with key %q", root.Key)
		}
		changed := kind.Changed()
		changed = store.Data().Cleanup() || changed
		if changed {
			errors.Fatal(store.Save())
		}
		return
	}

	result := store.Data().CheckAll(deliverer, now)
	if result.Changed {
		if err := store.Save(); err != nil {
			errors.Fatal(fmt.Errorf("persist after check: %w", err))
		}
	}
	errors.Fatal(result.Err)
}
