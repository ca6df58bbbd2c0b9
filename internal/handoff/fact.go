package handoff

import (
	"slices"
	"strings"
)

// Field selects the payload collection a fact is appended to. Field names
// double as the CLI subcommand names.
type Field string

const (
	FieldShip       Field = "ship"
	FieldVerify     Field = "verify"
	FieldRollback   Field = "rollback"
	FieldBreaking   Field = "breaking"
	FieldEnvConcern Field = "env-concern"

	FieldSymptom    Field = "symptom"
	FieldHypothesis Field = "hypothesis"
	FieldTried      Field = "tried"
	FieldSuspect    Field = "suspect"
	FieldEvidence   Field = "evidence"
	FieldRepro      Field = "repro"
	FieldTryNext    Field = "try-next"

	FieldRequire    Field = "require"
	FieldDecided    Field = "decided"
	FieldRejected   Field = "rejected"
	FieldQuestion   Field = "question"
	FieldConstraint Field = "constraint"
	FieldNextStep   Field = "next-step"

	FieldTLDR         Field = "tldr"
	FieldMustKnow     Field = "must-know"
	FieldPriorityFile Field = "priority-file"
	FieldSuggestStart Field = "suggest-start"
)

// warmUpFields are accepted in every mode.
var warmUpFields = []Field{FieldTLDR, FieldMustKnow, FieldPriorityFile, FieldSuggestStart}

var modeFields = map[Mode][]Field{
	ModeDeploy: {FieldBreaking, FieldRollback, FieldShip, FieldVerify, FieldEnvConcern},
	ModeDebug:  {FieldSymptom, FieldHypothesis, FieldTried, FieldSuspect, FieldEvidence, FieldRepro, FieldTryNext},
	ModePlan:   {FieldRequire, FieldDecided, FieldRejected, FieldQuestion, FieldConstraint, FieldNextStep},
}

// Mode returns the mode that owns f, or "" for a warm-up or unknown field.
func (f Field) Mode() Mode {
	for mode, fields := range modeFields {
		for _, candidate := range fields {
			if candidate == f {
				return mode
			}
		}
	}
	return ""
}

// FieldsFor returns the fields of mode in compile order.
func FieldsFor(mode Mode) []Field {
	return append([]Field(nil), modeFields[mode]...)
}

// WarmUp reports whether f belongs to the warm-up shared by all modes.
func (f Field) WarmUp() bool {
	return slices.Contains(warmUpFields, f)
}

// WarmUpFields returns the mode-independent fields in compile order.
func WarmUpFields() []Field {
	return slices.Clone(warmUpFields)
}

// ParseField parses a field selector such as "hypothesis" or "env-concern".
func ParseField(raw string) (Field, error) {
	var all []Field
	for _, m := range Modes {
		all = append(all, modeFields[m]...)
	}
	all = append(all, warmUpFields...)
	return parseToken("field", raw, all)
}

// Fact is one typed record destined for a payload field.
type Fact interface {
	Field() Field
	check() error
}

// required returns a violation for every empty value. Arguments alternate
// between a name and its value.
func required(pairs ...string) error {
	var violations []string
	for i := 0; i+1 < len(pairs); i += 2 {
		if strings.TrimSpace(pairs[i+1]) == "" {
			violations = append(violations, pairs[i]+" is required")
		}
	}
	if len(violations) > 0 {
		return &ValidationError{Violations: violations}
	}
	return nil
}

func checkEnum[T ~string](field string, v T, allowed []T) error {
	if isAllowed(v, allowed) {
		return nil
	}
	return &SchemaError{Field: field, Raw: string(v), Allowed: tokens(allowed)}
}

// checkEach checks every stored entry of one field.
func checkEach[T Fact](items []T) error {
	for _, item := range items {
		if err := item.check(); err != nil {
			return err
		}
	}
	return nil
}

// checkOptional checks a single-valued field only when it is set.
func checkOptional[T interface {
	~string
	Fact
}](v T) error {
	if v == "" {
		return nil
	}
	return v.check()
}

func firstError(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
