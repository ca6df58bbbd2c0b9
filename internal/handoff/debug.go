package handoff

import (
	"fmt"
	"slices"
)

// DebugBody is the payload of a debug handoff.
type DebugBody struct {
	Symptoms   []Symptom    `json:"symptoms"`
	Hypotheses []Hypothesis `json:"hypotheses"`
	Tried      []Attempt    `json:"tried"`
	Suspects   []Suspect    `json:"suspects"`
	Evidence   []Evidence   `json:"evidence"`
	ReproSteps ReproSteps   `json:"repro_steps,omitempty"`
	TryNext    []TryNext    `json:"try_next"`
}

// Symptom is an observed misbehaviour.
type Symptom string

// Hypothesis is a candidate explanation ranked by likelihood.
type Hypothesis struct {
	Text       string     `json:"text"`
	Likelihood Likelihood `json:"likelihood"`
}

// Attempt is something already tried, and what came of it.
type Attempt struct {
	Text    string  `json:"text"`
	Result  string  `json:"result,omitempty"`
	Outcome Outcome `json:"outcome"`
}

// Suspect is a file believed to be involved.
type Suspect struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// Evidence is a log excerpt, error, or observation.
type Evidence struct {
	Text string       `json:"text"`
	Kind EvidenceKind `json:"kind"`
}

// ReproSteps describes how to reproduce the problem. Setting it again
// replaces it.
type ReproSteps string

// TryNext is a suggested next experiment.
type TryNext string

func (Symptom) Field() Field    { return FieldSymptom }
func (Hypothesis) Field() Field { return FieldHypothesis }
func (Attempt) Field() Field    { return FieldTried }
func (Suspect) Field() Field    { return FieldSuspect }
func (Evidence) Field() Field   { return FieldEvidence }
func (ReproSteps) Field() Field { return FieldRepro }
func (TryNext) Field() Field    { return FieldTryNext }

func (s Symptom) check() error { return required("symptom", string(s)) }

func (h Hypothesis) check() error {
	if err := checkEnum(EnumLikelihood, h.Likelihood, likelihoods); err != nil {
		return err
	}
	return required("hypothesis", h.Text)
}

func (a Attempt) check() error {
	if err := checkEnum(EnumOutcome, a.Outcome, outcomes); err != nil {
		return err
	}
	return required("what was tried", a.Text)
}

func (s Suspect) check() error { return required("path", s.Path, "reason", s.Reason) }

func (e Evidence) check() error {
	if err := checkEnum(EnumEvidenceKind, e.Kind, evidenceKinds); err != nil {
		return err
	}
	return required("evidence", e.Text)
}

func (r ReproSteps) check() error { return required("repro steps", string(r)) }
func (t TryNext) check() error    { return required("next experiment", string(t)) }

func (b *DebugBody) Mode() Mode { return ModeDebug }

func (b *DebugBody) Counts() []FieldCount {
	repro := 0
	if b.ReproSteps != "" {
		repro = 1
	}
	return []FieldCount{
		{FieldSymptom, len(b.Symptoms)},
		{FieldHypothesis, len(b.Hypotheses)},
		{FieldTried, len(b.Tried)},
		{FieldSuspect, len(b.Suspects)},
		{FieldEvidence, len(b.Evidence)},
		{FieldRepro, repro},
		{FieldTryNext, len(b.TryNext)},
	}
}

func (b *DebugBody) clone() Body {
	c := *b
	c.Symptoms = slices.Clone(b.Symptoms)
	c.Hypotheses = slices.Clone(b.Hypotheses)
	c.Tried = slices.Clone(b.Tried)
	c.Suspects = slices.Clone(b.Suspects)
	c.Evidence = slices.Clone(b.Evidence)
	c.TryNext = slices.Clone(b.TryNext)
	return &c
}

func (b *DebugBody) validate() error {
	return firstError(
		checkEach(b.Symptoms),
		checkEach(b.Hypotheses),
		checkEach(b.Tried),
		checkEach(b.Suspects),
		checkEach(b.Evidence),
		checkOptional(b.ReproSteps),
		checkEach(b.TryNext),
	)
}

func (b *DebugBody) apply(f Fact) error {
	switch v := f.(type) {
	case Symptom:
		b.Symptoms = append(b.Symptoms, v)
	case Hypothesis:
		b.Hypotheses = append(b.Hypotheses, v)
	case Attempt:
		b.Tried = append(b.Tried, v)
	case Suspect:
		b.Suspects = append(b.Suspects, v)
	case Evidence:
		b.Evidence = append(b.Evidence, v)
	case ReproSteps:
		b.ReproSteps = v
	case TryNext:
		b.TryNext = append(b.TryNext, v)
	default:
		return fmt.Errorf("debug handoffs cannot record %T", f)
	}
	return nil
}
