package diaglog

import (
	"bufio"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestExport(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "events.log")
	content := `{"ts":"t1","component":"coordinator","event":"hover_show"}` + "\n" +
		`{"ts":"t2","component":"event-tap","event":"tap_reenable"}` + "\n"
	if err := os.WriteFile(logPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	outPath, lines, err := Export(logPath, dir)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if lines != 2 {
		t.Errorf("lines = %d, want 2", lines)
	}

	f, err := os.Open(outPath)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	if !scanner.Scan() {
		t.Fatal("export is empty")
	}
	var bundle DiagBundle
	if err := json.Unmarshal(scanner.Bytes(), &bundle); err != nil {
		t.Fatalf("first line is not a bundle header: %v", err)
	}
	if bundle.EntryCount != 2 || bundle.LogFile != logPath {
		t.Errorf("unexpected bundle header: %+v", bundle)
	}

	var n int
	for scanner.Scan() {
		n++
	}
	if n != 2 {
		t.Errorf("expected 2 verbatim log lines, got %d", n)
	}
}

func TestExport_MissingLog(t *testing.T) {
	dir := t.TempDir()
	if _, _, err := Export(filepath.Join(dir, "absent.log"), dir); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected os.ErrNotExist, got %v", err)
	}
}
