// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"syscall"
	"time"

	"gopkg.in/yaml.v3"
)

var (
	// ErrLockTimeout is returned when file lock acquisition times out.
	ErrLockTimeout = errors.New("configuration locked by another process")
)

const (
	// lockTimeout is the maximum duration to wait for lock acquisition.
	lockTimeout = 5 * time.Second
)

// lockedFile writes one file of the config directory under an exclusive
// lock, replacing it atomically.
type lockedFile struct {
	path     string
	lockFile *os.File
}

func newLockedFile(path string) *lockedFile {
	return &lockedFile{path: path}
}

// lock acquires an exclusive lock on the file.
// Returns ErrLockTimeout if the lock cannot be acquired within the timeout period.
func (f *lockedFile) lock() error {
	lockPath := f.path + ".lock"

	if err := os.MkdirAll(filepath.Dir(lockPath), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	lockFile, err := os.OpenFile(lockPath, os.O_CREATE|os.O_RDWR, 0600)
	if err != nil {
		return fmt.Errorf("failed to open lock file: %w", err)
	}

	deadline := time.Now().Add(lockTimeout)
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		if err := syscall.Flock(int(lockFile.Fd()), syscall.LOCK_EX|syscall.LOCK_NB); err == nil {
			f.lockFile = lockFile
			return nil
		}
		if time.Now().After(deadline) {
			lockFile.Close()
			return ErrLockTimeout
		}
		<-ticker.C
	}
}

// unlock releases the file lock.
func (f *lockedFile) unlock() error {
	if f.lockFile == nil {
		return nil
	}
	defer func() { f.lockFile = nil }()

	if err := syscall.Flock(int(f.lockFile.Fd()), syscall.LOCK_UN); err != nil {
		f.lockFile.Close()
		return fmt.Errorf("failed to unlock: %w", err)
	}
	if err := f.lockFile.Close(); err != nil {
		return fmt.Errorf("failed to close lock file: %w", err)
	}
	return nil
}

// write replaces the file contents while holding the lock.
func (f *lockedFile) write(data []byte) error {
	if err := f.lock(); err != nil {
		return err
	}
	defer f.unlock()

	tempPath := f.path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write temporary file: %w", err)
	}
	if err := os.Rename(tempPath, f.path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}
	return nil
}

// SaveServiceURL stores the URL of the local (or remote) cluster where
// ResolveServiceURL will find it.
func SaveServiceURL(rawURL string, remote bool) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("%q is not an absolute URL", rawURL)
	}

	path, err := ServiceURLPath(remote)
	if err != nil {
		return "", err
	}
	if err := newLockedFile(path).write([]byte(u.String() + "\n")); err != nil {
		return "", err
	}
	return path, nil
}

// Save writes cfg as YAML to path (default: ConfigPath).
func Save(path string, cfg *Config) error {
	if path == "" {
		var err error
		if path, err = ConfigPath(); err != nil {
			return err
		}
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}
	return newLockedFile(path).write(data)
}
