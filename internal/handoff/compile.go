package handoff

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// NothingPending is the compiled result for an empty set of handoffs.
const NothingPending = "Nothing pending.\n"

const blockDelimiter = "---\n\n"

// Compile renders one handoff as a prompt. now is only used to describe how
// long ago the handoff was created, so equal inputs give identical output.
func Compile(h *Handoff, now time.Time) string {
	var sb strings.Builder
	writeHandoff(&sb, h, now, 1)
	return sb.String()
}

// CompileAll renders handoffs newest first under a count header, separated by
// a horizontal rule. An empty input renders NothingPending.
func CompileAll(hs []*Handoff, now time.Time) string {
	if len(hs) == 0 {
		return NothingPending
	}
	sorted := slices.Clone(hs)
	SortNewestFirst(sorted)

	var sb strings.Builder
	fmt.Fprintf(&sb, "# %d pending %s\n\n", len(sorted), pluralize(len(sorted), "handoff", "handoffs"))
	for i, h := range sorted {
		if i > 0 {
			sb.WriteString(blockDelimiter)
		}
		writeHandoff(&sb, h, now, 2)
	}
	return sb.String()
}

type section struct {
	title string
	// Exactly one of lines or text is set.
	lines []string
	text  string
}

func (s section) empty() bool {
	return len(s.lines) == 0 && strings.TrimSpace(s.text) == ""
}

func writeHandoff(sb *strings.Builder, h *Handoff, now time.Time, depth int) {
	heading := strings.Repeat("#", depth)
	fmt.Fprintf(sb, "%s %s handoff: %s\n\n", heading, modeTitle(h.Mode), headline(h.Summary))

	fmt.Fprintf(sb, "- **From:** %s\n", h.Author)
	fmt.Fprintf(sb, "- **Created:** %s (%s)\n",
		h.CreatedAt.UTC().Format("2006-01-02 15:04 UTC"),
		humanize.RelTime(h.CreatedAt, now, "ago", "from now"))
	if ref := h.GitRef.String(); ref != "" {
		fmt.Fprintf(sb, "- **Git:** `%s`\n", ref)
	}
	if len(h.Tags) > 0 {
		fmt.Fprintf(sb, "- **Tags:** %s\n", strings.Join(h.Tags, ", "))
	}
	sb.WriteString("\n")

	// The TL;DR leads and the rest of the warm-up follows the mode sections.
	sections := []section{{title: "TL;DR", text: string(h.WarmUp.TLDR)}}
	switch body := h.Body.(type) {
	case *DeployBody:
		sections = append(sections, deploySections(body)...)
	case *DebugBody:
		sections = append(sections, debugSections(body)...)
	case *PlanBody:
		sections = append(sections, planSections(body)...)
	}
	sections = append(sections, warmUpSections(h.WarmUp)...)
	for _, s := range sections {
		if s.empty() {
			continue
		}
		fmt.Fprintf(sb, "%s# %s\n\n", heading, s.title)
		if len(s.lines) > 0 {
			for _, line := range s.lines {
				sb.WriteString(line)
				sb.WriteString("\n")
			}
		} else {
			sb.WriteString(escapeHeadings(strings.TrimSpace(s.text)))
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}
}

func warmUpSections(w WarmUp) []section {
	files := make([]string, 0, len(w.PriorityFiles))
	for i, f := range w.PriorityFiles {
		prefix := fmt.Sprintf("%d. ", i+1)
		line := fmt.Sprintf("`%s`", f.Path)
		if f.Reason != "" {
			line += ": " + f.Reason
		}
		if f.Focus != "" {
			line += "\nFocus: " + f.Focus
		}
		files = append(files, prefix+indentContinuation(line, strings.Repeat(" ", len(prefix))))
	}
	return []section{
		{title: "Must Know", lines: bullets(w.MustKnow)},
		{title: "Start Here (Priority Files)", lines: files},
		{title: "Suggested First Action", text: string(w.SuggestedStart)},
	}
}

func deploySections(b *DeployBody) []section {
	breaking := make([]string, 0, len(b.BreakingChanges))
	for _, c := range b.BreakingChanges {
		breaking = append(breaking, bullet(fmt.Sprintf("%s (affects %s)", c.What, c.Affected)))
	}
	ship := make([]string, 0, len(b.ShipItems))
	for _, item := range b.ShipItems {
		if item.Description != "" {
			ship = append(ship, bullet(fmt.Sprintf("`%s`: %s", item.Path, item.Description)))
		} else {
			ship = append(ship, bullet(fmt.Sprintf("`%s`", item.Path)))
		}
	}
	envs := make([]string, 0, len(b.EnvConcerns))
	for _, c := range b.EnvConcerns {
		envs = append(envs, bullet(fmt.Sprintf("**%s**: %s", c.Env, c.Concern)))
	}
	return []section{
		{title: "Breaking Changes", lines: breaking},
		{title: "Rollback Plan", text: string(b.RollbackPlan)},
		{title: "Ship", lines: ship},
		{title: "Verify", lines: numbered(b.VerifySteps)},
		{title: "Environment Concerns", lines: envs},
	}
}

func debugSections(b *DebugBody) []section {
	hypotheses := slices.Clone(b.Hypotheses)
	slices.SortStableFunc(hypotheses, func(x, y Hypothesis) int {
		return rank(x.Likelihood, likelihoods) - rank(y.Likelihood, likelihoods)
	})
	hyp := make([]string, 0, len(hypotheses))
	for _, h := range hypotheses {
		hyp = append(hyp, bullet(fmt.Sprintf("[%s] %s", h.Likelihood, h.Text)))
	}

	attempts := slices.Clone(b.Tried)
	slices.SortStableFunc(attempts, func(x, y Attempt) int {
		return rank(x.Outcome, outcomes) - rank(y.Outcome, outcomes)
	})
	tried := make([]string, 0, len(attempts))
	for _, a := range attempts {
		line := fmt.Sprintf("[%s] %s", a.Outcome, a.Text)
		if a.Result != "" {
			line += ": " + a.Result
		}
		tried = append(tried, bullet(line))
	}

	suspects := make([]string, 0, len(b.Suspects))
	for _, s := range b.Suspects {
		suspects = append(suspects, bullet(fmt.Sprintf("`%s`: %s", s.Path, s.Reason)))
	}
	evidence := make([]string, 0, len(b.Evidence))
	for _, e := range b.Evidence {
		evidence = append(evidence, bullet(fmt.Sprintf("[%s] %s", e.Kind, e.Text)))
	}

	return []section{
		{title: "Symptoms", lines: bullets(b.Symptoms)},
		{title: "Hypotheses", lines: hyp},
		{title: "Tried", lines: tried},
		{title: "Suspects", lines: suspects},
		{title: "Evidence", lines: evidence},
		{title: "Repro Steps", text: string(b.ReproSteps)},
		{title: "Try Next", lines: numbered(b.TryNext)},
	}
}

func planSections(b *PlanBody) []section {
	reqs := slices.Clone(b.Requirements)
	slices.SortStableFunc(reqs, func(x, y Requirement) int {
		return rank(x.Priority, priorities) - rank(y.Priority, priorities)
	})
	requirements := make([]string, 0, len(reqs))
	for _, r := range reqs {
		requirements = append(requirements, bullet(fmt.Sprintf("[%s] %s", r.Priority, r.Text)))
	}

	decisions := make([]string, 0, len(b.Decisions))
	for _, d := range b.Decisions {
		if d.Why != "" {
			decisions = append(decisions, bullet(fmt.Sprintf("%s (why: %s)", d.Text, d.Why)))
		} else {
			decisions = append(decisions, bullet(d.Text))
		}
	}

	rejected := make([]string, 0, len(b.Rejected))
	for _, r := range b.Rejected {
		rejected = append(rejected, bullet(fmt.Sprintf("%s: %s", r.Option, r.Reason)))
	}

	qs := slices.Clone(b.Questions)
	slices.SortStableFunc(qs, func(x, y Question) int {
		if x.Blocking != y.Blocking {
			if x.Blocking {
				return -1
			}
			return 1
		}
		return rank(x.Importance, importances) - rank(y.Importance, importances)
	})
	questions := make([]string, 0, len(qs))
	for _, q := range qs {
		label := string(q.Importance)
		if q.Blocking {
			label = "blocking, " + label
		}
		questions = append(questions, bullet(fmt.Sprintf("[%s] %s", label, q.Text)))
	}

	return []section{
		{title: "Requirements", lines: requirements},
		{title: "Decisions", lines: decisions},
		{title: "Rejected Options", lines: rejected},
		{title: "Open Questions", lines: questions},
		{title: "Constraints", lines: bullets(b.Constraints)},
		{title: "Next Steps", lines: numbered(b.NextSteps)},
	}
}

// bullet formats a list item, indenting continuation lines under it.
func bullet(text string) string {
	return "- " + indentContinuation(text, "  ")
}

func bullets[T ~string](items []T) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, bullet(string(item)))
	}
	return out
}

func numbered[T ~string](items []T) []string {
	out := make([]string, 0, len(items))
	for i, item := range items {
		prefix := fmt.Sprintf("%d. ", i+1)
		out = append(out, prefix+indentContinuation(string(item), strings.Repeat(" ", len(prefix))))
	}
	return out
}

func indentContinuation(text, indent string) string {
	text = escapeHeadings(strings.TrimSpace(text))
	return strings.ReplaceAll(text, "\n", "\n"+indent)
}

// headline collapses a summary onto one line so it cannot open new
// sections of its own.
func headline(summary string) string {
	return strings.Join(strings.Fields(summary), " ")
}

// escapeHeadings keeps free text from starting markdown headings that would
// read as sections of the prompt.
func escapeHeadings(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		trimmed := strings.TrimLeft(line, " \t")
		if strings.HasPrefix(trimmed, "#") {
			lines[i] = line[:len(line)-len(trimmed)] + "\\" + trimmed
		}
	}
	return strings.Join(lines, "\n")
}

func modeTitle(m Mode) string {
	switch m {
	case ModeDeploy:
		return "Deploy"
	case ModeDebug:
		return "Debug"
	case ModePlan:
		return "Plan"
	default:
		return string(m)
	}
}

func pluralize(n int, singular, plural string) string {
	if n == 1 {
		return singular
	}
	return plural
}
