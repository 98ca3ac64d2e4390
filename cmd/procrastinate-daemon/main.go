// Command procrastinate-daemon watches the collection and delivers
// notifications as they come due.
package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/alecthomas/kong"

	"github.com/procrastinate-org/procrastinate/internal/constants"
	"github.com/procrastinate-org/procrastinate/internal/daemon"
	"github.com/procrastinate-org/procrastinate/internal/errors"
	"github.com/procrastinate-org/procrastinate/internal/logger"
	"github.com/procrastinate-org/procrastinate/internal/notifier"
	"github.com/procrastinate-org/procrastinate/internal/storage"
)

var root struct {
	Local   bool   `short:"l" help:"Use ./procrastination.json in the current directory."`
	File    string `short:"f" type:"path" help:"Collection file to use. Mutually exclusive with --local."`
	Verbose bool   `short:"v" help:"Enable debug logging."`
	Tray    bool   `help:"Deliver through the tray application instead of the desktop bus."`

	Min int `default:"1" help:"Minimum seconds between checks."`
	Max int `default:"300" help:"Maximum seconds between checks."`
}

func main() {
	kong.Parse(&root,
		kong.Name(constants.AppName+"-daemon"),
		kong.Description("Watch the collection and notify as reminders come due."),
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

	d := daemon.New(daemon.Options{
		Path:     path,
		Min:      time.Duration(root.Min) * time.Second,
		Max:      time.Duration(root.Max) * time.Second,
		Notifier: deliverer,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("daemon starting", "path", path)
	if err := d.Run(ctx); err != nil {
		errors.Fatal(err)
	}
}
