package models

import (
	"time"

	"github.com/procrastinate-org/procrastinate/internal/timing"
)

// Dirt tracks what happened to an entry during a check pass. It is
// in-memory only: a freshly loaded entry always starts Clean.
type Dirt int

const (
	DirtClean Dirt = iota
	DirtUpdate
	DirtDelete
)

// NotificationKind reports which timing source a notification decision
// came from.
type NotificationKind int

const (
	KindNone NotificationKind = iota
	KindNormal
	KindSleep
)

// Changed reports whether a notification of this kind fired.
func (k NotificationKind) Changed() bool {
	return k == KindNormal || k == KindSleep
}

func (k NotificationKind) String() string {
	switch k {
	case KindNormal:
		return "normal"
	case KindSleep:
		return "sleep"
	}
	return "none"
}

// Deliverer displays a notification to the user. Sticky notifications
// must persist until explicitly dismissed. A delivery failure propagates;
// the engine never retries.
type Deliverer interface {
	Deliver(title, message string, sticky bool) error
}

// Procrastination is a single reminder entry. Timestamp is the reference
// point for all next-occurrence computation: creation time at first, then
// the last firing time for repeating entries. Sleep is a temporary
// override that pre-empts the base rule when it resolves earlier.
type Procrastination struct {
	Title     string             `json:"title"`
	Message   string             `json:"message"`
	Timing    timing.Recurrence  `json:"timing"`
	Timestamp time.Time          `json:"timestamp"`
	Sticky    bool               `json:"sticky,omitempty"`
	Sleep     *timing.OnceTiming `json:"sleep,omitempty"`

	// dirty is unexported so encoding/json never persists it.
	dirty Dirt
}

// New creates an armed entry whose reference timestamp is now.
func New(title, message string, rule timing.Recurrence, sticky bool, now time.Time) *Procrastination {
	return &Procrastination{
		Title:     title,
		Message:   message,
		Timing:    rule,
		Timestamp: now,
		Sticky:    sticky,
	}
}

// Dirty returns the entry's transient state tag.
func (p *Procrastination) Dirty() Dirt {
	return p.dirty
}

// CanNotifyInFuture reports whether the entry is still armed. Retired
// entries must never be offered to ShouldNotify again.
func (p *Procrastination) CanNotifyInFuture() bool {
	return p.dirty != DirtDelete
}

// NextNotification computes the next due time relative to the entry's
// reference timestamp. Only candidates strictly after the reference are
// viable (forward progress); among viable ones a sleep override wins
// only when strictly earlier, so ties favor the base rule. KindNone
// means no candidate makes forward progress and the entry sits idle.
func (p *Procrastination) NextNotification() (NotificationKind, time.Time, error) {
	kind := KindNone
	var next time.Time

	base, err := p.Timing.NotificationDate(p.Timestamp)
	if err != nil {
		return KindNone, time.Time{}, err
	}
	if base.After(p.Timestamp) {
		kind, next = KindNormal, base
	}

	if p.Sleep != nil {
		sleepAt, err := p.Sleep.NotificationDate(p.Timestamp)
		if err != nil {
			return KindNone, time.Time{}, err
		}
		if sleepAt.After(p.Timestamp) && (kind == KindNone || sleepAt.Before(next)) {
			kind, next = KindSleep, sleepAt
		}
	}
	return kind, next, nil
}

// ShouldNotify decides whether the entry is due at now.
func (p *Procrastination) ShouldNotify(now time.Time) (NotificationKind, error) {
	kind, next, err := p.NextNotification()
	if err != nil {
		return KindNone, err
	}
	if kind != KindNone && now.After(next) {
		return kind, nil
	}
	return KindNone, nil
}

// Notify fires the entry through the deliverer if it is due. On success
// the sleep override is cleared unconditionally and the entry either
// retires (once) or advances its reference timestamp to now (repeat).
// A delivery failure leaves the entry untouched so the notification is
// attempted again on the next pass.
func (p *Procrastination) Notify(d Deliverer, now time.Time) (NotificationKind, error) {
	kind, err := p.ShouldNotify(now)
	if err != nil {
		return KindNone, err
	}
	if kind == KindNone {
		return KindNone, nil
	}

	if err := d.Deliver(p.Title, p.Message, p.Sticky); err != nil {
		return KindNone, err
	}

	p.Sleep = nil
	if p.Timing.IsOnce() {
		p.dirty = DirtDelete
	} else {
		p.Timestamp = now
		p.dirty = DirtUpdate
	}
	return kind, nil
}
