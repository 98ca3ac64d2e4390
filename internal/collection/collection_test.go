package collection

import (
	"errors"
	"testing"
	"time"

	"github.com/procrastinate-org/procrastinate/internal/models"
	"github.com/procrastinate-org/procrastinate/internal/timing"
)

type fakeDeliverer struct {
	err    error
	titles []string
}

func (f *fakeDeliverer) Deliver(title, message string, sticky bool) error {
	f.titles = append(f.titles, title)
	return f.err
}

func date(y int, m time.Month, d, hh, mm int) time.Time {
	return time.Date(y, m, d, hh, mm, 0, 0, time.UTC)
}

func onceDelay(seconds int64) timing.Recurrence {
	return timing.Once(timing.OnceTiming{Delay: &timing.Delay{Count: seconds, Unit: timing.DelaySeconds}})
}

func repeatDelay(seconds int64) timing.Recurrence {
	return timing.Repeating(timing.RepeatTiming{Delay: &timing.Delay{Count: seconds, Unit: timing.DelaySeconds}})
}

func TestCheckAllFiresAndFolds(t *testing.T) {
	created := date(2026, time.March, 10, 12, 0)
	now := created.Add(time.Hour)

	c := New()
	c.Insert("due", models.New("due", "", onceDelay(60), false, created))
	c.Insert("later", models.New("later", "", onceDelay(2*3600), false, created))

	d := &fakeDeliverer{}
	result := c.CheckAll(d, now)
	if result.Err != nil {
		t.Fatal(result.Err)
	}
	if !result.Changed {
		t.Error("expected a change")
	}
	if len(d.titles) != 1 || d.titles[0] != "due" {
		t.Errorf("delivered %v", d.titles)
	}

	// The fired once entry is removed in the same pass.
	if _, ok := c.Get("due"); ok {
		t.Error("retired entry still present")
	}
	if c.Len() != 1 {
		t.Errorf("len=%d", c.Len())
	}

	// MinWait folds to the remaining entry, one hour out.
	if result.MinWait != time.Hour {
		t.Errorf("min wait = %v", result.MinWait)
	}
}

func TestCheckAllEmptyCollection(t *testing.T) {
	c := New()
	result := c.CheckAll(&fakeDeliverer{}, date(2026, time.March, 10, 12, 0))
	if result.Changed {
		t.Error("nothing to change")
	}
	if result.MinWait != InfiniteWait {
		t.Errorf("min wait = %v", result.MinWait)
	}
}

func TestCheckAllContinuesPastErrors(t *testing.T) {
	created := date(2026, time.March, 10, 12, 0)
	now := created.Add(time.Hour)

	c := New()
	// A structurally broken rule fails every evaluation.
	c.Insert("broken", models.New("broken", "", timing.Recurrence{Kind: timing.KindOnce}, false, created))
	c.Insert("due", models.New("due", "", onceDelay(60), false, created))

	d := &fakeDeliverer{}
	result := c.CheckAll(d, now)
	if result.Err == nil {
		t.Fatal("expected the broken entry's error")
	}
	if len(d.titles) != 1 || d.titles[0] != "due" {
		t.Errorf("the healthy entry should still fire, delivered %v", d.titles)
	}
	if !result.Changed {
		t.Error("expected a change from the healthy entry")
	}
}

func TestCheckAllDeliveryFailureKeepsEntry(t *testing.T) {
	created := date(2026, time.March, 10, 12, 0)
	now := created.Add(time.Hour)

	c := New()
	c.Insert("due", models.New("due", "", onceDelay(60), false, created))

	d := &fakeDeliverer{err: errors.New("no bus")}
	result := c.CheckAll(d, now)
	if result.Err == nil {
		t.Fatal("expected delivery error")
	}
	if result.Changed {
		t.Error("failed delivery must not dirty the collection")
	}
	if _, ok := c.Get("due"); !ok {
		t.Error("entry removed despite failed delivery")
	}
	// The entry is overdue, so the daemon should re-check immediately.
	if result.MinWait != 0 {
		t.Errorf("min wait = %v", result.MinWait)
	}
}

func TestNotifyOne(t *testing.T) {
	created := date(2026, time.March, 10, 12, 0)
	now := created.Add(time.Hour)

	c := New()
	c.Insert("due", models.New("due", "", repeatDelay(60), false, created))

	d := &fakeDeliverer{}
	kind, found, err := c.NotifyOne("due", d, now)
	if err != nil {
		t.Fatal(err)
	}
	if !found || kind != models.KindNormal {
		t.Errorf("found=%v kind=%v", found, kind)
	}

	_, found, err = c.NotifyOne("missing", d, now)
	if err != nil {
		t.Fatal(err)
	}
	if found {
		t.Error("reported a missing key as found")
	}
}

func TestKeysSorted(t *testing.T) {
	created := date(2026, time.March, 10, 12, 0)
	c := New()
	for _, key := range []string{"zebra", "apple", "mango"} {
		c.Insert(key, models.New(key, "", onceDelay(60), false, created))
	}
	keys := c.Keys()
	want := []string{"apple", "mango", "zebra"}
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("keys = %v", keys)
		}
	}
}
