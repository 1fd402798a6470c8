// Package pidfile guards against a second slipbar instance: two processes
// fighting over the same status items would thrash the menu bar.
package pidfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
)

// PIDFile is an acquired single-instance lock.
type PIDFile struct {
	path string
	pid  int
}

// Acquire claims the pid file at path. A file left behind by a crashed
// instance is detected by probing its pid and replaced; a live instance
// yields an error naming its pid.
func Acquire(path string) (*PIDFile, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create pid directory: %w", err)
	}

	if data, err := os.ReadFile(path); err == nil {
		if existing, err := strconv.Atoi(strings.TrimSpace(string(data))); err == nil {
			if alive(existing) {
				return nil, fmt.Errorf("another slipbar instance is already running (pid %d)", existing)
			}
			if err := os.Remove(path); err != nil {
				return nil, fmt.Errorf("failed to remove stale pid file: %w", err)
			}
		}
	}

	pid := os.Getpid()
	if err := os.WriteFile(path, []byte(fmt.Sprintf("%d\n", pid)), 0644); err != nil {
		return nil, fmt.Errorf("failed to write pid file: %w", err)
	}
	return &PIDFile{path: path, pid: pid}, nil
}

// Release removes the pid file, but only while it still names this process;
// a replacement instance's file is left alone.
func (p *PIDFile) Release() error {
	if p == nil {
		return nil
	}
	data, err := os.ReadFile(p.path)
	if err != nil {
		return nil
	}
	if pid, err := strconv.Atoi(strings.TrimSpace(string(data))); err == nil && pid == p.pid {
		return os.Remove(p.path)
	}
	return nil
}

// alive probes a pid with signal 0. EPERM means the process exists but is
// not ours to signal, which still counts as running.
func alive(pid int) bool {
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = process.Signal(syscall.Signal(0))
	if err == nil {
		return true
	}
	return errors.Is(err, syscall.EPERM)
}

// Path returns the standard pid file location for the named binary.
func Path(name string) string {
	return filepath.Join(os.Getenv("HOME"), ".cache", "slipbar", name+".pid")
}
