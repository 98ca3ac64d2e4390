package notifier

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	ps "github.com/mitchellh/go-ps"

	"github.com/procrastinate-org/procrastinate/internal/constants"
)

// Mock Process
type mockProcess struct {
	pid        int
	executable string
}

func (m *mockProcess) Pid() int {
	return m.pid
}

func (m *mockProcess) PPid() int {
	return 0
}

func (m *mockProcess) Executable() string {
	return m.executable
}

func TestGetTrayAppConfigDir(t *testing.T) {
	tempDir := t.TempDir()

	oldUserConfigDirFunc := userConfigDirFunc
	defer func() { userConfigDirFunc = oldUserConfigDirFunc }()
	userConfigDirFunc = func() (string, error) {
		return tempDir, nil
	}

	// Default location under the user config dir.
	expectedDefault := filepath.Join(tempDir, constants.TrayAppIdentifier)
	dir, err := GetTrayAppConfigDir()
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if dir != expectedDefault {
		t.Errorf("expected %s, got %s", expectedDefault, dir)
	}

	// A settings.json with a custom lockfile dir overrides it.
	trayConfigDir := filepath.Join(tempDir, constants.TrayAppIdentifier)
	if err := os.MkdirAll(trayConfigDir, 0755); err != nil {
		t.Fatal(err)
	}

	customDir := "/custom/procrastinate/dir"
	settingsJSON := fmt.Sprintf(`{"settings": {"lockfile_dir": "%s"}}`, customDir)
	if err := os.WriteFile(filepath.Join(trayConfigDir, "settings.json"), []byte(settingsJSON), 0644); err != nil {
		t.Fatal(err)
	}

	dir, err = GetTrayAppConfigDir()
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if dir != customDir {
		t.Errorf("expected %s, got %s", customDir, dir)
	}
}

func TestFindAndValidateTrayProcess(t *testing.T) {
	oldFindProcessFunc := findProcessFunc
	oldKeyringGetFunc := keyringGetFunc
	defer func() {
		findProcessFunc = oldFindProcessFunc
		keyringGetFunc = oldKeyringGetFunc
	}()

	lockfilePath := filepath.Join(t.TempDir(), constants.TrayLockfileName)
	keyringGetFunc = func(service, user string) (string, error) {
		return "", errors.New("no keyring entry")
	}
	findProcessFunc = func(pid int) (ps.Process, error) {
		return &mockProcess{pid: pid, executable: "procrastinate-tray"}, nil
	}

	// Lockfile missing.
	if _, _, err := findAndValidateTrayProcess(lockfilePath); err == nil {
		t.Error("expected error for missing lockfile")
	}

	// Malformed lockfile.
	for _, content := range []string{"8080|12345", "invalid"} {
		if err := os.WriteFile(lockfilePath, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
		if _, _, err := findAndValidateTrayProcess(lockfilePath); err == nil {
			t.Errorf("expected error for lockfile %q", content)
		}
	}

	// Empty secret with no keyring fallback.
	if err := os.WriteFile(lockfilePath, []byte("8080|12345|"), 0644); err != nil {
		t.Fatal(err)
	}
	_, _, err := findAndValidateTrayProcess(lockfilePath)
	if err == nil {
		t.Error("expected error for missing secret")
	}
	if err != nil && !strings.Contains(err.Error(), "secret") {
		t.Errorf("expected error about the secret, got: %v", err)
	}

	// Empty secret resolved from the keyring.
	keyringGetFunc = func(service, user string) (string, error) {
		if service != constants.KeyringService || user != constants.KeyringTraySecretUser {
			return "", errors.New("wrong keyring entry")
		}
		return "keyring-secret", nil
	}
	port, secret, err := findAndValidateTrayProcess(lockfilePath)
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if port != "8080" || secret != "keyring-secret" {
		t.Errorf("port=%s secret=%s", port, secret)
	}

	// Invalid ports.
	for _, content := range []string{"|12345|testsecret123", "99999|12345|testsecret123", "abc|12345|testsecret123"} {
		if err := os.WriteFile(lockfilePath, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
		if _, _, err := findAndValidateTrayProcess(lockfilePath); err == nil {
			t.Errorf("expected error for lockfile %q", content)
		}
	}

	if err := os.WriteFile(lockfilePath, []byte("8080|12345|testsecret123"), 0644); err != nil {
		t.Fatal(err)
	}

	// Process not running.
	findProcessFunc = func(pid int) (ps.Process, error) {
		return nil, nil
	}
	if _, _, err := findAndValidateTrayProcess(lockfilePath); err == nil {
		t.Error("expected error for missing process")
	}

	// Wrong executable.
	findProcessFunc = func(pid int) (ps.Process, error) {
		return &mockProcess{pid: pid, executable: "other-app"}, nil
	}
	if _, _, err := findAndValidateTrayProcess(lockfilePath); err == nil {
		t.Error("expected error for wrong executable")
	}

	// Success.
	findProcessFunc = func(pid int) (ps.Process, error) {
		return &mockProcess{pid: pid, executable: "procrastinate-tray"}, nil
	}
	port, secret, err = findAndValidateTrayProcess(lockfilePath)
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if port != "8080" {
		t.Errorf("expected port 8080, got %s", port)
	}
	if secret != "testsecret123" {
		t.Errorf("expected secret testsecret123, got %s", secret)
	}
}

func TestSendNotification(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		secret := r.Header.Get("X-Procrastinate-Secret")
		if secret != "test-secret" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte("Unauthorized"))
			return
		}

		var payload WebhookPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if payload.Title == "fail" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	parts := strings.Split(server.URL, ":")
	port := parts[len(parts)-1]

	err := sendNotification(port, "test-secret", WebhookPayload{Title: "hello", Sticky: true})
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	err = sendNotification(port, "", WebhookPayload{Title: "hello"})
	if err == nil {
		t.Error("expected error for missing secret")
	}

	err = sendNotification(port, "wrong-secret", WebhookPayload{Title: "hello"})
	if err == nil {
		t.Error("expected error for wrong secret")
	}

	err = sendNotification(port, "test-secret", WebhookPayload{Title: "fail"})
	if err == nil {
		t.Error("expected error for server failure")
	}
}
