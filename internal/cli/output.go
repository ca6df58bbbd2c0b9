package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/dustin/go-humanize"
	"golang.org/x/term"
)

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

func humanTime(t, now time.Time) string {
	return humanize.RelTime(t, now, "ago", "from now")
}

// stdoutTerminal reports whether w is the process stdout attached to a tty.
func stdoutTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && f == os.Stdout && IsTerminal(f)
}

// renderMarkdown renders a compiled prompt for a human reader. Output that
// is not a terminal gets the raw markdown so agents can consume it.
func renderMarkdown(w io.Writer, markdown string) string {
	if !stdoutTerminal(w) {
		return markdown
	}

	// Cap the wrap width for readability on wide terminals
	const maxReadableWidth = 100
	wrapWidth := 80
	if width, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && width > 0 {
		wrapWidth = width
	}
	if wrapWidth > maxReadableWidth {
		wrapWidth = maxReadableWidth
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(wrapWidth),
	)
	if err != nil {
		return markdown
	}
	rendered, err := renderer.Render(markdown)
	if err != nil {
		return markdown
	}
	return rendered
}
