// Package daemon runs the background loop that checks the collection
// whenever its next entry comes due or the collection file changes on
// disk.
package daemon

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/procrastinate-org/procrastinate/internal/constants"
	"github.com/procrastinate-org/procrastinate/internal/logger"
	"github.com/procrastinate-org/procrastinate/internal/notifier"
	"github.com/procrastinate-org/procrastinate/internal/storage"
)

type Options struct {
	// Path is the collection file to watch and check.
	Path string

	// Min and Max clamp the time between checks.
	Min time.Duration
	Max time.Duration

	Notifier notifier.Notifier
}

type Daemon struct {
	opts     Options
	failures int
}

func New(opts Options) *Daemon {
	if opts.Min <= 0 {
		opts.Min = constants.DefaultMinWaitSec * time.Second
	}
	if opts.Max < opts.Min {
		opts.Max = constants.DefaultMaxWaitSec * time.Second
	}
	return &Daemon{opts: opts}
}

// Clamp bounds a computed wait to the [min, max] window. The infinite
// sentinel and negative waits clamp like any other value, so a daemon
// never sleeps forever and never busy-loops.
func Clamp(wait, min, max time.Duration) time.Duration {
	if wait < min {
		return min
	}
	if wait > max {
		return max
	}
	return wait
}

// CheckOnce loads the collection, runs one notification pass, persists
// any changes, and returns the clamped wait until the next pass.
func (d *Daemon) CheckOnce(now time.Time) (time.Duration, error) {
	store := storage.ForPath(d.opts.Path)
	if err := store.Load(); err != nil {
		return d.opts.Min, err
	}
	defer store.Close()

	result := store.Data().CheckAll(d.opts.Notifier, now)
	if result.Changed {
		if err := store.Save(); err != nil {
			return d.opts.Min, fmt.Errorf("persist after check: %w", err)
		}
	}

	wait := Clamp(result.MinWait, d.opts.Min, d.opts.Max)
	return wait, result.Err
}

// Run loops until ctx is canceled, re-checking when the wait elapses or
// the collection file is rewritten. After too many consecutive failing
// passes it reports the problem as a notification and exits.
func (d *Daemon) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create file watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory: editors and our own Save replace the file,
	// which would drop a watch on the file itself.
	if err := watcher.Add(filepath.Dir(d.opts.Path)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(d.opts.Path), err)
	}

	wait := d.check()
	timer := time.NewTimer(wait)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("daemon stopping")
			return nil

		case <-timer.C:

		case event, ok := <-watcher.Events:
			if !ok {
				return fmt.Errorf("file watcher closed")
			}
			if filepath.Base(event.Name) != filepath.Base(d.opts.Path) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			logger.Debug("collection file changed", "op", event.Op.String())
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return fmt.Errorf("file watcher closed")
			}
			logger.Warn("file watcher error", "error", err)
			continue
		}

		if d.failures >= constants.MaxConsecutiveFailures {
			err := fmt.Errorf("giving up after %d consecutive failed checks", d.failures)
			d.reportError(err)
			return err
		}
		timer.Reset(d.check())
	}
}

// check runs one pass and tracks the consecutive failure count.
func (d *Daemon) check() time.Duration {
	wait, err := d.CheckOnce(time.Now())
	if err != nil {
		d.failures++
		logger.Error("check failed", "error", err, "consecutive", d.failures)
		d.reportError(err)
		return d.opts.Min
	}
	d.failures = 0
	logger.Debug("check complete", "wait", wait)
	return wait
}

// reportError surfaces a daemon problem as a notification, best effort.
func (d *Daemon) reportError(err error) {
	msg := fmt.Sprintf("%v", err)
	if derr := d.opts.Notifier.Deliver("procrastinate daemon error", msg, false); derr != nil {
		logger.Error("could not report error", "error", derr)
	}
}
