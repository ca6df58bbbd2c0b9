package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

var sinceParser = func() *when.Parser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return w
}()

// parseSince turns a --since value into an absolute time. It accepts Go
// durations ("90m"), dates ("2026-10-01"), RFC 3339 timestamps, and natural
// phrases such as "2 hours ago" or "yesterday".
func parseSince(raw string, now time.Time) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	if d, err := time.ParseDuration(raw); err == nil {
		if d < 0 {
			d = -d
		}
		return now.Add(-d), nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation("2006-01-02", raw, now.Location()); err == nil {
		return t, nil
	}

	r, err := sinceParser.Parse(raw, now)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --since %q: %w", raw, err)
	}
	if r == nil {
		return time.Time{}, fmt.Errorf("invalid --since %q: expected a duration, a date, or a phrase like \"2 hours ago\"", raw)
	}
	return r.Time, nil
}
