package session

import (
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-console/internal/config"
	"github.com/spec-kit/helpdesk-console/internal/domain"
)

func newTestSession(t *testing.T) (*Session, string) {
	t.Helper()
	file := filepath.Join(t.TempDir(), "credentials.json")
	sess := New(config.SessionConfig{CredentialsFile: file}, nil, zap.NewNop())
	return sess, file
}

func TestLoadMissingFile(t *testing.T) {
	sess, _ := newTestSession(t)
	if err := sess.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if sess.LoggedIn() {
		t.Error("LoggedIn() = true with no credentials file")
	}
	if _, err := sess.Operator(); err != ErrNotAuthenticated {
		t.Errorf("Operator() error = %v, want ErrNotAuthenticated", err)
	}
}

func TestLoadDiscardsCorruptFile(t *testing.T) {
	sess, file := newTestSession(t)
	if err := os.WriteFile(file, []byte("{broken"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := sess.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if sess.LoggedIn() {
		t.Error("LoggedIn() = true after a corrupt credentials file")
	}
}

func TestCredentialsRoundTrip(t *testing.T) {
	first, file := newTestSession(t)
	first.mu.Lock()
	first.creds = Credentials{
		AccessToken:  "acc",
		RefreshToken: "ref",
		Operator:     domain.Operator{ID: 42, Name: "Ana", RoleName: "supervisor"},
	}
	first.loaded = true
	if err := first.saveLocked(); err != nil {
		first.mu.Unlock()
		t.Fatalf("save: %v", err)
	}
	first.mu.Unlock()

	info, err := os.Stat(file)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("credentials file mode = %v, want 0600", perm)
	}

	second := New(config.SessionConfig{CredentialsFile: file}, nil, zap.NewNop())
	if err := second.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !second.LoggedIn() {
		t.Fatal("LoggedIn() = false after loading saved credentials")
	}
	if second.AccessToken() != "acc" {
		t.Errorf("AccessToken() = %q", second.AccessToken())
	}
	actor, err := second.Actor()
	if err != nil {
		t.Fatalf("Actor: %v", err)
	}
	if actor.OperatorID != 42 || actor.Role != domain.RoleSupervisor {
		t.Errorf("Actor() = %+v", actor)
	}
}

func TestLogoutRemovesFile(t *testing.T) {
	sess, file := newTestSession(t)
	sess.mu.Lock()
	sess.creds = Credentials{AccessToken: "acc"}
	sess.loaded = true
	if err := sess.saveLocked(); err != nil {
		sess.mu.Unlock()
		t.Fatalf("save: %v", err)
	}
	sess.mu.Unlock()

	if err := sess.Logout(); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if sess.LoggedIn() {
		t.Error("LoggedIn() = true after logout")
	}
	if _, err := os.Stat(file); !os.IsNotExist(err) {
		t.Errorf("credentials file still present: %v", err)
	}

	// Logging out twice must not fail on the missing file.
	if err := sess.Logout(); err != nil {
		t.Errorf("second Logout: %v", err)
	}
}
