package constants

const (
	AppName = "procrastinate"

	// FileName is the default collection file in the data directory or,
	// with --local, the current working directory.
	FileName = "procrastination.json"

	// DefaultLocation is the fallback data directory under $HOME when
	// $XDG_DATA_HOME is unset.
	DefaultLocation = ".local/share"

	LogFileName = "procrastinate.log"
)

// Tray notifier settings.
const (
	TrayAppIdentifier      = "procrastinate-tray"
	TrayLockfileName       = "procrastinate-tray.lock"
	KeyringService         = "procrastinate"
	KeyringTraySecretUser  = "tray-webhook"
	NotificationDurationMs = 10000
)

// Daemon scheduling defaults, in seconds.
const (
	DefaultMinWaitSec = 1
	DefaultMaxWaitSec = 300

	// MaxConsecutiveFailures is how many check passes may fail in a row
	// before the daemon gives up.
	MaxConsecutiveFailures = 3
)
