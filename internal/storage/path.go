package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/procrastinate-org/procrastinate/internal/constants"
)

// DataDir returns the per-user data directory, honoring $XDG_DATA_HOME
// and falling back to ~/.local/share.
func DataDir() (string, error) {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, constants.AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, constants.DefaultLocation, constants.AppName), nil
}

// ResolvePath picks the collection file: an explicit file, the working
// directory with local, or the user data directory. The two overrides
// are mutually exclusive.
func ResolvePath(local bool, file string) (string, error) {
	if local && file != "" {
		return "", fmt.Errorf("--local and --file are mutually exclusive")
	}
	if file != "" {
		return file, nil
	}
	if local {
		return constants.FileName, nil
	}
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, constants.FileName), nil
}
