// Package cli implements the procrastinate commands.
package cli

import (
	"github.com/alecthomas/kong"

	"github.com/procrastinate-org/procrastinate/internal/storage"
)

// Context carries the shared state every command runs against.
type Context struct {
	Store   storage.Provider
	USDates bool
}

// CLI is the top-level command tree parsed by kong.
type CLI struct {
	Version kong.VersionFlag `help:"Print version and exit."`

	Local   bool   `short:"l" help:"Use ./procrastination.json in the current directory."`
	File    string `short:"f" type:"path" help:"Collection file to use. Mutually exclusive with --local. A .db extension selects the SQLite backend."`
	Verbose bool   `short:"v" help:"Enable debug logging."`
	USDate  bool   `name:"us-date" help:"Print dates month-first."`

	Once   OnceCmd   `cmd:"" help:"Create a one-shot reminder."`
	Repeat RepeatCmd `cmd:"" help:"Create a repeating reminder."`
	Done   DoneCmd   `cmd:"" help:"Remove a reminder."`
	List   ListCmd   `cmd:"" help:"List all reminders."`
	Sleep  SleepCmd  `cmd:"" help:"Snooze a reminder until a one-shot timing."`
}
