package tui

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/gdamore/tcell/v2"
)

// editInExternalEditor suspends the screen, opens content in the user's
// editor attached to the terminal, and returns the edited text once the
// editor exits. The screen is resumed before returning, whatever happened.
func editInExternalEditor(screen tcell.Screen, editor, content string) (string, error) {
	tmp, err := os.CreateTemp("", "launchpad-tui-*.md")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	path := tmp.Name()
	defer os.Remove(path)

	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close temp file: %w", err)
	}

	if err := screen.Suspend(); err != nil {
		return "", fmt.Errorf("suspend screen: %w", err)
	}
	cmd := exec.Command(editor, path)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	runErr := cmd.Run()
	if err := screen.Resume(); err != nil {
		return "", fmt.Errorf("resume screen: %w", err)
	}
	if runErr != nil {
		return "", fmt.Errorf("run editor %s: %w", editor, runErr)
	}

	edited, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read temp file: %w", err)
	}
	return string(edited), nil
}
