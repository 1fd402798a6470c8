package testutil

import (
	"bytes"
	"io"
	"log"
	"regexp"
	"strings"
	"sync"
)

// LogCapture redirects the standard logger into a buffer so tests can assert
// on what the app would have logged.
type LogCapture struct {
	buf      bytes.Buffer
	mu       sync.Mutex
	original io.Writer
}

// NewLogCapture creates a new log capture instance
func NewLogCapture() *LogCapture {
	return &LogCapture{original: log.Writer()}
}

// Start begins capturing log output
func (lc *LogCapture) Start() {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	log.SetOutput(&lc.buf)
}

// Stop restores original log output
func (lc *LogCapture) Stop() {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	log.SetOutput(lc.original)
}

// String returns all captured log output
func (lc *LogCapture) String() string {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	return lc.buf.String()
}

// Reset clears the capture buffer
func (lc *LogCapture) Reset() {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	lc.buf.Reset()
}

// Contains checks if the log output contains the given substring
func (lc *LogCapture) Contains(substr string) bool {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	return strings.Contains(lc.buf.String(), substr)
}

// ContainsAll checks if the log output contains all given substrings
func (lc *LogCapture) ContainsAll(substrs ...string) bool {
	lc.mu.Lock()
	defer lc.mu.Unlock()

	content := lc.buf.String()
	for _, substr := range substrs {
		if !strings.Contains(content, substr) {
			return false
		}
	}
	return true
}

// MatchesPattern checks if the log output matches the given regex pattern
func (lc *LogCapture) MatchesPattern(pattern string) bool {
	lc.mu.Lock()
	defer lc.mu.Unlock()

	re, err := regexp.Compile(pattern)
	if err != nil {
		return false
	}
	return re.MatchString(lc.buf.String())
}

// Count returns the number of times a substring appears in the log
func (lc *LogCapture) Count(substr string) int {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	return strings.Count(lc.buf.String(), substr)
}

// Lines returns all captured log lines
func (lc *LogCapture) Lines() []string {
	lc.mu.Lock()
	defer lc.mu.Unlock()

	content := strings.TrimSpace(lc.buf.String())
	if content == "" {
		return nil
	}
	return strings.Split(content, "\n")
}
