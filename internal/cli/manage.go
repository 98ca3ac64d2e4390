package cli

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/procrastinate-org/procrastinate/internal/logger"
	"github.com/procrastinate-org/procrastinate/internal/timing"
)

// DoneCmd removes a reminder, ending the procrastination.
type DoneCmd struct {
	Key string `arg:"" help:"Key of the reminder to remove."`
}

func (c *DoneCmd) Run(ctx *Context) error {
	if !ctx.Store.Data().Remove(c.Key) {
		return fmt.Errorf("no reminder with key %q", c.Key)
	}
	logger.Info("removed reminder", "key", c.Key)
	return ctx.Store.Save()
}

// ListCmd prints every reminder with its next notification.
type ListCmd struct {
	JSON bool `help:"Print the raw collection JSON."`
}

func (c *ListCmd) Run(ctx *Context) error {
	data := ctx.Store.Data()

	if c.JSON {
		raw, err := json.MarshalIndent(data, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(raw))
		return nil
	}

	keys := data.Keys()
	if len(keys) == 0 {
		fmt.Println("nothing to procrastinate on")
		return nil
	}

	now := time.Now()
	for i, key := range keys {
		entry, _ := data.Get(key)
		if i > 0 {
			fmt.Println()
		}
		fmt.Printf("[%s]\n%s\n", key, entry.Describe(now, ctx.USDates))
	}
	return nil
}

// SleepCmd snoozes a reminder: until the given one-shot timing resolves,
// it pre-empts the reminder's own rule whenever it comes earlier.
type SleepCmd struct {
	Key    string   `arg:"" help:"Key of the reminder to snooze."`
	Timing []string `arg:"" name:"timing" help:"One-shot timing expression, e.g. '2h' or 'tomorrow 9:00'."`
}

func (c *SleepCmd) Run(ctx *Context) error {
	now := time.Now()

	entry, ok := ctx.Store.Data().Get(c.Key)
	if !ok {
		return fmt.Errorf("no reminder with key %q", c.Key)
	}

	t, err := timing.ParseOnceTiming(strings.Join(c.Timing, " "), now)
	if err != nil {
		return err
	}
	entry.Sleep = &t

	logger.Info("snoozed reminder", "key", c.Key, "until", t.String())
	return ctx.Store.Save()
}
