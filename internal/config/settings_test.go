package config

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func TestSaveServiceURL_RoundTrip(t *testing.T) {
	withConfigHome(t)

	path, err := SaveServiceURL("http://10.1.2.3:30000/", true)
	if err != nil {
		t.Fatalf("SaveServiceURL() error = %v", err)
	}
	if filepath.Base(path) != remoteServiceURLFile {
		t.Errorf("expected remote file, got %s", path)
	}

	got, err := ResolveServiceURL("", true)
	if err != nil {
		t.Fatalf("ResolveServiceURL() error = %v", err)
	}
	if got.URL != "http://10.1.2.3:30000/" || got.Source != SourceFile {
		t.Errorf("unexpected resolution %+v", got)
	}

	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temporary file left behind")
	}
}

func TestSaveServiceURL_RejectsRelative(t *testing.T) {
	withConfigHome(t)
	if _, err := SaveServiceURL("192.168.49.2:30000", false); err == nil {
		t.Fatal("expected error for URL without scheme")
	}
}

func TestSave_ThenLoad(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.Client.PollInterval = 42 * time.Second
	cfg.Service.URL = "http://saved:30000/"
	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.Client.PollInterval != 42*time.Second || loaded.Service.URL != "http://saved:30000/" {
		t.Errorf("round trip mismatch: %+v", loaded)
	}
}

func TestLockedFile_Exclusive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "service_url")

	first := newLockedFile(path)
	if err := first.lock(); err != nil {
		t.Fatalf("lock() error = %v", err)
	}

	var wg sync.WaitGroup
	var writeErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		writeErr = newLockedFile(path).write([]byte("second\n"))
	}()

	// The writer is blocked while the first lock is held.
	time.Sleep(150 * time.Millisecond)
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("file written while locked")
	}

	if err := first.unlock(); err != nil {
		t.Fatalf("unlock() error = %v", err)
	}
	wg.Wait()

	if writeErr != nil {
		t.Fatalf("write() error = %v", writeErr)
	}
	data, _ := os.ReadFile(path)
	if string(data) != "second\n" {
		t.Errorf("unexpected contents %q", data)
	}
}
