package cli

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/ohare93/xagentsync/internal/handoff"
)

// fieldFlags holds the optional values a field subcommand may accept.
type fieldFlags struct {
	description string
	likelihood  string
	result      string
	outcome     string
	kind        string
	priority    string
	why         string
	importance  string
	blocking    bool
	reason      string
	focus       string
}

// fieldCommand describes one fact-recording subcommand.
type fieldCommand struct {
	field   handoff.Field
	use     string
	short   string
	example string
	args    cobra.PositionalArgs
	flags   func(fs *pflag.FlagSet, v *fieldFlags)
	build   func(args []string, v *fieldFlags) (handoff.Fact, error)
}

func joinArgs(args []string) string {
	return strings.Join(args, " ")
}

var fieldCommands = []fieldCommand{
	// deploy
	{
		field:   handoff.FieldShip,
		use:     "ship PATH",
		short:   "Record a file or component that ships",
		example: `xas deploy ship internal/auth -d "token refresh rewrite"`,
		args:    cobra.ExactArgs(1),
		flags: func(fs *pflag.FlagSet, v *fieldFlags) {
			fs.StringVarP(&v.description, "description", "d", "", "What changed")
		},
		build: func(args []string, v *fieldFlags) (handoff.Fact, error) {
			return handoff.ShipItem{Path: args[0], Description: v.description}, nil
		},
	},
	{
		field:   handoff.FieldVerify,
		use:     "verify STEP...",
		short:   "Add a step for checking the deploy worked",
		example: `xas deploy verify "curl -f https://api/healthz"`,
		args:    cobra.MinimumNArgs(1),
		build: func(args []string, _ *fieldFlags) (handoff.Fact, error) {
			return handoff.VerifyStep(joinArgs(args)), nil
		},
	},
	{
		field:   handoff.FieldRollback,
		use:     "rollback PLAN...",
		short:   "Set how to roll back (replaces any earlier plan)",
		example: `xas deploy rollback "revert the tag and redeploy v1.4.2"`,
		args:    cobra.MinimumNArgs(1),
		build: func(args []string, _ *fieldFlags) (handoff.Fact, error) {
			return handoff.RollbackPlan(joinArgs(args)), nil
		},
	},
	{
		field:   handoff.FieldBreaking,
		use:     "breaking WHAT AFFECTED...",
		short:   "Record a breaking change and who it affects",
		example: `xas deploy breaking "/v1/login removed" "mobile clients before 3.2"`,
		args:    cobra.MinimumNArgs(2),
		build: func(args []string, _ *fieldFlags) (handoff.Fact, error) {
			return handoff.BreakingChange{What: args[0], Affected: joinArgs(args[1:])}, nil
		},
	},
	{
		field:   handoff.FieldEnvConcern,
		use:     "env-concern ENV CONCERN...",
		short:   "Record a concern about one environment",
		example: `xas deploy env-concern staging "still on the old schema"`,
		args:    cobra.MinimumNArgs(2),
		build: func(args []string, _ *fieldFlags) (handoff.Fact, error) {
			return handoff.EnvConcern{Env: args[0], Concern: joinArgs(args[1:])}, nil
		},
	},

	// debug
	{
		field:   handoff.FieldSymptom,
		use:     "symptom TEXT...",
		short:   "Record an observed symptom",
		example: `xas debug symptom "500 on payloads above 1MB"`,
		args:    cobra.MinimumNArgs(1),
		build: func(args []string, _ *fieldFlags) (handoff.Fact, error) {
			return handoff.Symptom(joinArgs(args)), nil
		},
	},
	{
		field:   handoff.FieldHypothesis,
		use:     "hypothesis TEXT...",
		short:   "Record a hypothesis about the cause",
		example: `xas debug hypothesis "request body limit" -l high`,
		args:    cobra.MinimumNArgs(1),
		flags: func(fs *pflag.FlagSet, v *fieldFlags) {
			fs.StringVarP(&v.likelihood, "likelihood", "l", string(handoff.LikelihoodMedium), "How likely (high|medium|low)")
		},
		build: func(args []string, v *fieldFlags) (handoff.Fact, error) {
			l, err := handoff.ParseLikelihood(v.likelihood)
			if err != nil {
				return nil, err
			}
			return handoff.Hypothesis{Text: joinArgs(args), Likelihood: l}, nil
		},
	},
	{
		field:   handoff.FieldTried,
		use:     "tried TEXT...",
		short:   "Record something that was tried and what happened",
		example: `xas debug tried "raised nginx limit" -r "no change" -o nothing`,
		args:    cobra.MinimumNArgs(1),
		flags: func(fs *pflag.FlagSet, v *fieldFlags) {
			fs.StringVarP(&v.result, "result", "r", "", "What happened")
			fs.StringVarP(&v.outcome, "outcome", "o", string(handoff.OutcomeNothing), "Outcome (fixed|helped|nothing|worse)")
		},
		build: func(args []string, v *fieldFlags) (handoff.Fact, error) {
			o, err := handoff.ParseOutcome(v.outcome)
			if err != nil {
				return nil, err
			}
			return handoff.Attempt{Text: joinArgs(args), Result: v.result, Outcome: o}, nil
		},
	},
	{
		field:   handoff.FieldSuspect,
		use:     "suspect PATH REASON...",
		short:   "Point at a suspicious file",
		example: `xas debug suspect internal/http/limits.go "hard-coded 1MB cap"`,
		args:    cobra.MinimumNArgs(2),
		build: func(args []string, _ *fieldFlags) (handoff.Fact, error) {
			return handoff.Suspect{Path: args[0], Reason: joinArgs(args[1:])}, nil
		},
	},
	{
		field:   handoff.FieldEvidence,
		use:     "evidence TEXT...",
		short:   "Record a log line, error, or observation",
		example: `xas debug evidence "413 Request Entity Too Large" -k error`,
		args:    cobra.MinimumNArgs(1),
		flags: func(fs *pflag.FlagSet, v *fieldFlags) {
			fs.StringVarP(&v.kind, "kind", "k", string(handoff.EvidenceObservation), "Kind (log|error|observation)")
		},
		build: func(args []string, v *fieldFlags) (handoff.Fact, error) {
			k, err := handoff.ParseEvidenceKind(v.kind)
			if err != nil {
				return nil, err
			}
			return handoff.Evidence{Text: joinArgs(args), Kind: k}, nil
		},
	},
	{
		field:   handoff.FieldRepro,
		use:     "repro STEPS...",
		short:   "Set the reproduction steps (replaces earlier steps)",
		example: `xas debug repro "POST a 2MB JSON body to /upload"`,
		args:    cobra.MinimumNArgs(1),
		build: func(args []string, _ *fieldFlags) (handoff.Fact, error) {
			return handoff.ReproSteps(joinArgs(args)), nil
		},
	},
	{
		field:   handoff.FieldTryNext,
		use:     "try-next TEXT...",
		short:   "Suggest the next experiment",
		example: `xas debug try-next "check the ingress annotation"`,
		args:    cobra.MinimumNArgs(1),
		build: func(args []string, _ *fieldFlags) (handoff.Fact, error) {
			return handoff.TryNext(joinArgs(args)), nil
		},
	},

	// plan
	{
		field:   handoff.FieldRequire,
		use:     "require TEXT...",
		short:   "Record a requirement",
		example: `xas plan require "invoices are immutable" -p must`,
		args:    cobra.MinimumNArgs(1),
		flags: func(fs *pflag.FlagSet, v *fieldFlags) {
			fs.StringVarP(&v.priority, "priority", "p", string(handoff.PriorityShould), "Priority (must|should|could|wont)")
		},
		build: func(args []string, v *fieldFlags) (handoff.Fact, error) {
			p, err := handoff.ParsePriority(v.priority)
			if err != nil {
				return nil, err
			}
			return handoff.Requirement{Text: joinArgs(args), Priority: p}, nil
		},
	},
	{
		field:   handoff.FieldDecided,
		use:     "decided TEXT...",
		short:   "Record a decision",
		example: `xas plan decided "use Stripe" --why "already integrated"`,
		args:    cobra.MinimumNArgs(1),
		flags: func(fs *pflag.FlagSet, v *fieldFlags) {
			fs.StringVar(&v.why, "why", "", "Reason for the decision")
		},
		build: func(args []string, v *fieldFlags) (handoff.Fact, error) {
			return handoff.Decision{Text: joinArgs(args), Why: v.why}, nil
		},
	},
	{
		field:   handoff.FieldRejected,
		use:     "rejected OPTION REASON...",
		short:   "Record an option that was ruled out",
		example: `xas plan rejected "in-house billing" "too much compliance work"`,
		args:    cobra.MinimumNArgs(2),
		build: func(args []string, _ *fieldFlags) (handoff.Fact, error) {
			return handoff.Rejection{Option: args[0], Reason: joinArgs(args[1:])}, nil
		},
	},
	{
		field:   handoff.FieldQuestion,
		use:     "question TEXT...",
		short:   "Record an open question",
		example: `xas plan question "who owns refunds?" -i high --blocking`,
		args:    cobra.MinimumNArgs(1),
		flags: func(fs *pflag.FlagSet, v *fieldFlags) {
			fs.StringVarP(&v.importance, "importance", "i", string(handoff.ImportanceMedium), "Importance (high|medium|low)")
			fs.BoolVar(&v.blocking, "blocking", false, "The work cannot continue until this is answered")
		},
		build: func(args []string, v *fieldFlags) (handoff.Fact, error) {
			i, err := handoff.ParseImportance(v.importance)
			if err != nil {
				return nil, err
			}
			return handoff.Question{Text: joinArgs(args), Importance: i, Blocking: v.blocking}, nil
		},
	},
	{
		field:   handoff.FieldConstraint,
		use:     "constraint TEXT...",
		short:   "Record a constraint",
		example: `xas plan constraint "no downtime during EU business hours"`,
		args:    cobra.MinimumNArgs(1),
		build: func(args []string, _ *fieldFlags) (handoff.Fact, error) {
			return handoff.Constraint(joinArgs(args)), nil
		},
	},
	{
		field:   handoff.FieldNextStep,
		use:     "next-step TEXT...",
		short:   "Add a next step",
		example: `xas plan next-step "draft the invoice schema"`,
		args:    cobra.MinimumNArgs(1),
		build: func(args []string, _ *fieldFlags) (handoff.Fact, error) {
			return handoff.NextStep(joinArgs(args)), nil
		},
	},

	// warm-up, shared by every mode
	{
		field:   handoff.FieldTLDR,
		use:     "tldr TEXT...",
		short:   "Set the TL;DR shown first (replaces any earlier one)",
		example: `xas <mode> tldr "uploads over 1MB fail since the proxy change"`,
		args:    cobra.MinimumNArgs(1),
		build: func(args []string, _ *fieldFlags) (handoff.Fact, error) {
			return handoff.TLDR(joinArgs(args)), nil
		},
	},
	{
		field:   handoff.FieldMustKnow,
		use:     "must-know TEXT...",
		short:   "Record something the next agent must not miss",
		example: `xas <mode> must-know "staging shares the production queue"`,
		args:    cobra.MinimumNArgs(1),
		build: func(args []string, _ *fieldFlags) (handoff.Fact, error) {
			return handoff.MustKnow(joinArgs(args)), nil
		},
	},
	{
		field:   handoff.FieldPriorityFile,
		use:     "priority-file PATH",
		short:   "Add a file to read first (most important first)",
		example: `xas <mode> priority-file internal/api/upload.go -r "size check" --focus "lines 40-80"`,
		args:    cobra.ExactArgs(1),
		flags: func(fs *pflag.FlagSet, v *fieldFlags) {
			fs.StringVarP(&v.reason, "reason", "r", "", "Why the file matters")
			fs.StringVar(&v.focus, "focus", "", "Lines or sections to focus on")
		},
		build: func(args []string, v *fieldFlags) (handoff.Fact, error) {
			return handoff.PriorityFile{Path: args[0], Reason: v.reason, Focus: v.focus}, nil
		},
	},
	{
		field:   handoff.FieldSuggestStart,
		use:     "suggest-start TEXT...",
		short:   "Set the suggested first action (replaces any earlier one)",
		example: `xas <mode> suggest-start "run go test ./internal/api/..."`,
		args:    cobra.MinimumNArgs(1),
		build: func(args []string, _ *fieldFlags) (handoff.Fact, error) {
			return handoff.SuggestedStart(joinArgs(args)), nil
		},
	},
}

// fieldCommandsFor returns the subcommand descriptions for mode, in the
// order its sections are compiled, followed by the warm-up commands.
func fieldCommandsFor(mode handoff.Mode) []fieldCommand {
	var out []fieldCommand
	for _, field := range append(handoff.FieldsFor(mode), handoff.WarmUpFields()...) {
		for _, fc := range fieldCommands {
			if fc.field == field {
				out = append(out, fc)
			}
		}
	}
	return out
}
