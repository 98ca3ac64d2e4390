// Package notifier delivers notifications to the user, either straight
// over the desktop notification bus or through the companion tray
// application's local webhook.
package notifier

import (
	"fmt"

	"github.com/godbus/dbus/v5"

	"github.com/procrastinate-org/procrastinate/internal/constants"
)

// Notifier displays a notification. Sticky notifications persist until
// the user dismisses them.
type Notifier interface {
	Deliver(title, message string, sticky bool) error
}

// DesktopNotifier talks to org.freedesktop.Notifications on the session
// bus, the default delivery path on Linux desktops.
type DesktopNotifier struct {
	conn *dbus.Conn
}

func NewDesktop() (*DesktopNotifier, error) {
	conn, err := dbus.SessionBus()
	if err != nil {
		return nil, fmt.Errorf("connect to session bus: %w", err)
	}
	return &DesktopNotifier{conn: conn}, nil
}

func (n *DesktopNotifier) Deliver(title, message string, sticky bool) error {
	obj := n.conn.Object("org.freedesktop.Notifications", "/org/freedesktop/Notifications")

	hints := map[string]dbus.Variant{}
	expire := int32(constants.NotificationDurationMs)
	if sticky {
		// Resident plus no expiry keeps the popup until dismissed.
		hints["resident"] = dbus.MakeVariant(true)
		expire = 0
	}

	call := obj.Call("org.freedesktop.Notifications.Notify", 0,
		constants.AppName, uint32(0), "", title, message, []string{}, hints, expire)
	if call.Err != nil {
		return fmt.Errorf("deliver notification: %w", call.Err)
	}
	return nil
}

func (n *DesktopNotifier) Close() error {
	return n.conn.Close()
}

var _ Notifier = (*DesktopNotifier)(nil)
