// Package collection applies the per-entry notification decision across
// a whole set of reminders and reports the aggregate outcome a daemon
// needs to schedule its next check.
package collection

import (
	"encoding/json"
	"sort"
	"time"

	"github.com/procrastinate-org/procrastinate/internal/models"
)

// InfiniteWait is the sentinel minimum wait when no entry has a
// computable next occurrence.
const InfiniteWait = time.Duration(1<<63 - 1)

// Collection exclusively owns its entries: no entry is shared with
// another collection, and at most one CheckAll mutates it at a time.
type Collection struct {
	entries map[string]*models.Procrastination
}

func New() *Collection {
	return &Collection{entries: make(map[string]*models.Procrastination)}
}

func (c *Collection) Len() int {
	return len(c.entries)
}

func (c *Collection) Get(key string) (*models.Procrastination, bool) {
	p, ok := c.entries[key]
	return p, ok
}

func (c *Collection) Insert(key string, p *models.Procrastination) {
	c.entries[key] = p
}

func (c *Collection) Remove(key string) bool {
	_, ok := c.entries[key]
	delete(c.entries, key)
	return ok
}

// Keys returns the entry keys in stable sorted order.
func (c *Collection) Keys() []string {
	keys := make([]string, 0, len(c.entries))
	for key := range c.entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// CheckResult aggregates one pass over the collection.
type CheckResult struct {
	// Changed reports whether any entry fired, advanced or was removed,
	// i.e. whether the backing store needs rewriting.
	Changed bool

	// MinWait is the shortest time from now until any armed entry is
	// due, InfiniteWait when none could be computed.
	MinWait time.Duration

	// Err is the first per-entry error of the pass. A failing entry
	// never stops evaluation of the remaining ones.
	Err error
}

// CheckAll runs the notification decision for every entry, folds the
// minimum time-until-due across the still-armed ones, and removes
// retired entries. This is the function the daemon polls to decide how
// long it may sleep.
func (c *Collection) CheckAll(d models.Deliverer, now time.Time) CheckResult {
	result := CheckResult{MinWait: InfiniteWait}

	for _, key := range c.Keys() {
		entry := c.entries[key]

		kind, err := entry.Notify(d, now)
		if err != nil && result.Err == nil {
			result.Err = err
		}
		result.Changed = result.Changed || kind.Changed()

		if !entry.CanNotifyInFuture() {
			continue
		}

		kind, next, err := entry.NextNotification()
		if err != nil {
			if result.Err == nil {
				result.Err = err
			}
			continue
		}
		// No viable upcoming occurrence, so nothing to wait for.
		if kind == models.KindNone {
			continue
		}
		if wait := next.Sub(now); wait < result.MinWait {
			if wait < 0 {
				wait = 0
			}
			result.MinWait = wait
		}
	}

	result.Changed = c.Cleanup() || result.Changed
	return result
}

// NotifyOne runs the decision for a single key. It reports whether the
// entry existed.
func (c *Collection) NotifyOne(key string, d models.Deliverer, now time.Time) (models.NotificationKind, bool, error) {
	entry, ok := c.entries[key]
	if !ok {
		return models.KindNone, false, nil
	}
	kind, err := entry.Notify(d, now)
	return kind, true, err
}

// Cleanup removes every retired entry and reports whether any removal
// occurred.
func (c *Collection) Cleanup() bool {
	changed := false
	for key, entry := range c.entries {
		if entry.Dirty() == models.DirtDelete {
			delete(c.entries, key)
			changed = true
		}
	}
	return changed
}

// MarshalJSON serializes the collection as a plain key-to-entry map.
func (c *Collection) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.entries)
}

// UnmarshalJSON loads a key-to-entry map; every loaded entry starts
// clean.
func (c *Collection) UnmarshalJSON(data []byte) error {
	entries := make(map[string]*models.Procrastination)
	if err := json.Unmarshal(data, &entries); err != nil {
		return err
	}
	c.entries = entries
	return nil
}
