package profile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDir(t *testing.T) {
	home, _ := os.UserHomeDir()
	got := Dir("default")
	want := filepath.Join(home, ".selah", "profiles", "default")
	if got != want {
		t.Errorf("Dir(default) = %q, want %q", got, want)
	}
}

func TestDBPath(t *testing.T) {
	got := DBPath("test")
	if !strings.HasSuffix(got, filepath.Join("profiles", "test", "selah.db")) {
		t.Errorf("DBPath(test) = %q, want suffix profiles/test/selah.db", got)
	}
}

func TestLockPath(t *testing.T) {
	got := LockPath("test")
	if !strings.HasSuffix(got, filepath.Join("profiles", "test", "LOCK")) {
		t.Errorf("LockPath(test) = %q, want suffix profiles/test/LOCK", got)
	}
}

func TestLogPath(t *testing.T) {
	got := LogPath("test")
	if !strings.HasSuffix(got, filepath.Join("test", "logs", "selahd.log")) {
		t.Errorf("LogPath(test) = %q", got)
	}
}
