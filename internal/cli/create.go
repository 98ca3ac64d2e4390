package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/procrastinate-org/procrastinate/internal/logger"
	"github.com/procrastinate-org/procrastinate/internal/models"
	"github.com/procrastinate-org/procrastinate/internal/timing"
)

// OnceCmd creates a reminder that fires a single time and is then
// removed from the collection.
type OnceCmd struct {
	Timing []string `arg:"" name:"timing" help:"Timing expression, e.g. '2w 3d', 'dom 15 7:42' or 'tomorrow 9:00'."`

	Key     string `short:"k" help:"Key identifying the reminder. Generated when omitted."`
	Title   string `short:"t" help:"Notification title. Defaults to the key."`
	Message string `short:"m" help:"Notification message."`
	Sticky  bool   `short:"s" help:"Notification stays until dismissed."`
}

func (c *OnceCmd) Run(ctx *Context) error {
	now := time.Now()
	expr := strings.Join(c.Timing, " ")

	t, err := timing.ParseOnceTiming(expr, now)
	if err != nil {
		return err
	}
	return insert(ctx, c.Key, c.Title, c.Message, timing.Once(t), c.Sticky, now)
}

// RepeatCmd creates a reminder that re-arms itself after every firing.
type RepeatCmd struct {
	Timing []string `arg:"" name:"timing" help:"Timing expression, e.g. 'daily 9:00', 'wednesday' or 'monthly 1'."`

	Key     string `short:"k" help:"Key identifying the reminder. Generated when omitted."`
	Title   string `short:"t" help:"Notification title. Defaults to the key."`
	Message string `short:"m" help:"Notification message."`
	Sticky  bool   `short:"s" help:"Notification stays until dismissed."`
}

func (c *RepeatCmd) Run(ctx *Context) error {
	now := time.Now()
	expr := strings.Join(c.Timing, " ")

	t, err := timing.ParseRepeatTiming(expr)
	if err != nil {
		return err
	}
	return insert(ctx, c.Key, c.Title, c.Message, timing.Repeating(t), c.Sticky, now)
}

func insert(ctx *Context, key, title, message string, rule timing.Recurrence, sticky bool, now time.Time) error {
	if key == "" {
		key = uuid.NewString()
		fmt.Printf("using generated key %s\n", key)
	}
	if title == "" {
		title = key
	}

	if _, exists := ctx.Store.Data().Get(key); exists {
		return fmt.Errorf("a reminder with key %q already exists", key)
	}

	ctx.Store.Data().Insert(key, models.New(title, message, rule, sticky, now))
	logger.Info("created reminder", "key", key, "timing", rule.String())
	return ctx.Store.Save()
}
