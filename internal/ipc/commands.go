package ipc

import (
	"os"
	"path/filepath"
	"strings"
)

// Command is a one-shot request from the CLI to the running app.
type Command string

const (
	CmdShow               Command = "show"                 // show the hidden section
	CmdHide               Command = "hide"                 // hide the hidden section
	CmdToggle             Command = "toggle"               // toggle the hidden section
	CmdShowAlwaysHidden   Command = "show-always-hidden"   // show the always-hidden section
	CmdToggleAlwaysHidden Command = "toggle-always-hidden" // toggle the always-hidden section
	CmdPause              Command = "pause"                // suspend event handling
	CmdResume             Command = "resume"               // resume event handling
	CmdQuit               Command = "quit"                 // shut the app down
)

// CommandPath returns the command file location.
func CommandPath() string {
	return filepath.Join(cacheDir(), "cmd.txt")
}

// WriteCommand queues a command for the running app.
func WriteCommand(cmd Command) error {
	if err := os.MkdirAll(cacheDir(), 0755); err != nil {
		return err
	}
	return os.WriteFile(CommandPath(), []byte(string(cmd)), 0644)
}

// ReadCommand reads and clears the command file. It returns "" when no
// command is pending; unknown commands are dropped silently so a newer CLI
// never wedges an older app.
func ReadCommand() (Command, error) {
	data, err := os.ReadFile(CommandPath())
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}

	// Clear immediately so a command never executes twice.
	if err := os.WriteFile(CommandPath(), []byte(""), 0644); err != nil {
		return "", err
	}

	cmd, ok := Parse(strings.TrimSpace(string(data)))
	if !ok {
		return "", nil
	}
	return cmd, nil
}

// Parse validates a command string. The bridge and the command file share
// this single source of truth for what the app accepts.
func Parse(s string) (Command, bool) {
	switch cmd := Command(s); cmd {
	case CmdShow, CmdHide, CmdToggle, CmdShowAlwaysHidden, CmdToggleAlwaysHidden,
		CmdPause, CmdResume, CmdQuit:
		return cmd, true
	default:
		return "", false
	}
}
