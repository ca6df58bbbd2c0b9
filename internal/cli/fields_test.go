package cli

import (
	"errors"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ohare93/xagentsync/internal/handoff"
)

func TestEveryFieldHasACommand(t *testing.T) {
	for _, mode := range handoff.Modes {
		cmds := fieldCommandsFor(mode)
		fields := append(handoff.FieldsFor(mode), handoff.WarmUpFields()...)
		require.Len(t, cmds, len(fields), "mode %s", mode)
		for i, fc := range cmds {
			assert.Equal(t, fields[i], fc.field)
		}
	}
}

func TestModeCommandTree(t *testing.T) {
	cmd := modeCmd(handoff.ModeDebug)
	for _, name := range []string{"new", "symptom", "hypothesis", "tried", "suspect", "evidence", "repro", "try-next",
		"tldr", "must-know", "priority-file", "suggest-start", "summary", "show", "done", "discard"} {
		sub, _, err := cmd.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, sub.Name())
	}
	_, _, err := cmd.Find([]string{"ship"})
	assert.Error(t, err)
}

func buildFact(t *testing.T, field handoff.Field, args []string, set func(*fieldFlags)) (handoff.Fact, error) {
	t.Helper()
	for _, fc := range fieldCommands {
		if fc.field != field {
			continue
		}
		var v fieldFlags
		if fc.flags != nil {
			fc.flags(pflag.NewFlagSet(string(field), pflag.ContinueOnError), &v)
		}
		if set != nil {
			set(&v)
		}
		return fc.build(args, &v)
	}
	t.Fatalf("no command for %s", field)
	return nil, nil
}

func TestFieldBuilders(t *testing.T) {
	tests := []struct {
		name  string
		field handoff.Field
		args  []string
		set   func(*fieldFlags)
		want  handoff.Fact
	}{
		{"ship", handoff.FieldShip, []string{"internal/auth"}, func(v *fieldFlags) { v.description = "rewrite" },
			handoff.ShipItem{Path: "internal/auth", Description: "rewrite"}},
		{"verify joins words", handoff.FieldVerify, []string{"curl", "/healthz"}, nil,
			handoff.VerifyStep("curl /healthz")},
		{"breaking", handoff.FieldBreaking, []string{"/v1/login removed", "mobile", "clients"}, nil,
			handoff.BreakingChange{What: "/v1/login removed", Affected: "mobile clients"}},
		{"env concern", handoff.FieldEnvConcern, []string{"staging", "old", "schema"}, nil,
			handoff.EnvConcern{Env: "staging", Concern: "old schema"}},
		{"hypothesis default likelihood", handoff.FieldHypothesis, []string{"body limit"}, nil,
			handoff.Hypothesis{Text: "body limit", Likelihood: handoff.LikelihoodMedium}},
		{"hypothesis uppercase likelihood", handoff.FieldHypothesis, []string{"body limit"}, func(v *fieldFlags) { v.likelihood = "HIGH" },
			handoff.Hypothesis{Text: "body limit", Likelihood: handoff.LikelihoodHigh}},
		{"tried", handoff.FieldTried, []string{"raised nginx limit"}, func(v *fieldFlags) { v.result = "no change" },
			handoff.Attempt{Text: "raised nginx limit", Result: "no change", Outcome: handoff.OutcomeNothing}},
		{"evidence default kind", handoff.FieldEvidence, []string{"413"}, nil,
			handoff.Evidence{Text: "413", Kind: handoff.EvidenceObservation}},
		{"require default priority", handoff.FieldRequire, []string{"immutable", "invoices"}, nil,
			handoff.Requirement{Text: "immutable invoices", Priority: handoff.PriorityShould}},
		{"decided", handoff.FieldDecided, []string{"use Stripe"}, func(v *fieldFlags) { v.why = "integrated" },
			handoff.Decision{Text: "use Stripe", Why: "integrated"}},
		{"question", handoff.FieldQuestion, []string{"who owns refunds?"}, func(v *fieldFlags) { v.blocking = true },
			handoff.Question{Text: "who owns refunds?", Importance: handoff.ImportanceMedium, Blocking: true}},
		{"next step", handoff.FieldNextStep, []string{"draft", "schema"}, nil,
			handoff.NextStep("draft schema")},
		{"tldr joins words", handoff.FieldTLDR, []string{"uploads", "fail"}, nil,
			handoff.TLDR("uploads fail")},
		{"must know", handoff.FieldMustKnow, []string{"prod is frozen"}, nil,
			handoff.MustKnow("prod is frozen")},
		{"priority file", handoff.FieldPriorityFile, []string{"api/upload.go"}, func(v *fieldFlags) { v.reason = "size check"; v.focus = "lines 40-80" },
			handoff.PriorityFile{Path: "api/upload.go", Reason: "size check", Focus: "lines 40-80"}},
		{"suggest start", handoff.FieldSuggestStart, []string{"run", "the", "tests"}, nil,
			handoff.SuggestedStart("run the tests")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := buildFact(t, tt.field, tt.args, tt.set)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFieldBuilderRejectsBadToken(t *testing.T) {
	_, err := buildFact(t, handoff.FieldTried, []string{"x"}, func(v *fieldFlags) { v.outcome = "meh" })
	var schema *handoff.SchemaError
	require.True(t, errors.As(err, &schema))
	assert.Equal(t, "meh", schema.Raw)
}

func TestWarmUpExamplesNameTheMode(t *testing.T) {
	cmd := modeCmd(handoff.ModePlan)
	sub, _, err := cmd.Find([]string{"must-know"})
	require.NoError(t, err)
	assert.Contains(t, sub.Example, "xas plan must-know")
	assert.NotContains(t, sub.Example, "<mode>")
}

func TestNewCommandFlags(t *testing.T) {
	cmd := modeCmd(handoff.ModeDeploy)
	sub, _, err := cmd.Find([]string{"new"})
	require.NoError(t, err)
	for _, name := range []string{"tag", "branch", "commit", "pr", "tldr", "know", "file", "suggest-start"} {
		assert.NotNil(t, sub.Flags().Lookup(name), name)
	}
}

func TestCommitMessage(t *testing.T) {
	h := &handoff.Handoff{Mode: handoff.ModeDebug, Summary: "500 on large payloads\nmore detail"}
	assert.Equal(t, "xas handoff [debug]: 500 on large payloads", CommitMessage(h))
}
