package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// errInterrupted is returned when the user presses Ctrl+C at a prompt.
var errInterrupted = errors.New("interrupted")

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// ConfirmSingleKey displays a yes/no prompt and waits for a single keypress.
// Returns true for 'y'/'Y', false for 'n'/'N', or error on Ctrl+C.
// No Enter key is required. When stdin is not a terminal the answer is no.
func ConfirmSingleKey(out io.Writer, prompt string) (bool, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		fmt.Fprintf(out, "%s (y/n): n (not a terminal)\n", prompt)
		return false, nil
	}

	for {
		fmt.Fprintf(out, "%s (y/n): ", prompt)
		key, err := readKey(fd)
		if err != nil {
			return false, err
		}

		switch key {
		case 3: // Ctrl+C
			fmt.Fprintln(out, "^C")
			return false, errInterrupted
		case 'y', 'Y':
			fmt.Fprintln(out, "y")
			return true, nil
		case 'n', 'N':
			fmt.Fprintln(out, "n")
			return false, nil
		}
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Invalid key. Please press 'y' or 'n'.")
	}
}

// readKey reads one byte with the terminal in raw mode.
func readKey(fd int) (byte, error) {
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return 0, fmt.Errorf("failed to set raw mode: %w", err)
	}
	defer term.Restore(fd, oldState)

	b := make([]byte, 1)
	if _, err := os.Stdin.Read(b); err != nil {
		return 0, fmt.Errorf("failed to read input: %w", err)
	}
	return b[0], nil
}
