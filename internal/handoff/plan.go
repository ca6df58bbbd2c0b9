package handoff

import (
	"fmt"
	"slices"
)

// PlanBody is the payload of a plan handoff.
type PlanBody struct {
	Requirements []Requirement `json:"requirements"`
	Decisions    []Decision    `json:"decisions"`
	Rejected     []Rejection   `json:"rejected"`
	Questions    []Question    `json:"questions"`
	Constraints  []Constraint  `json:"constraints"`
	NextSteps    []NextStep    `json:"next_steps"`
}

// Requirement is a MoSCoW-ranked requirement.
type Requirement struct {
	Text     string   `json:"text"`
	Priority Priority `json:"priority"`
}

// Decision is a choice already made, optionally with its rationale.
type Decision struct {
	Text string `json:"text"`
	Why  string `json:"why,omitempty"`
}

// Rejection is an option that was considered and dropped.
type Rejection struct {
	Option string `json:"option"`
	Reason string `json:"reason"`
}

// Question is an open question; blocking questions gate further work.
type Question struct {
	Text       string     `json:"text"`
	Importance Importance `json:"importance"`
	Blocking   bool       `json:"blocking"`
}

// Constraint is a fixed boundary the plan must respect.
type Constraint string

// NextStep is a concrete action to take next.
type NextStep string

func (Requirement) Field() Field { return FieldRequire }
func (Decision) Field() Field    { return FieldDecided }
func (Rejection) Field() Field   { return FieldRejected }
func (Question) Field() Field    { return FieldQuestion }
func (Constraint) Field() Field  { return FieldConstraint }
func (NextStep) Field() Field    { return FieldNextStep }

func (r Requirement) check() error {
	if err := checkEnum(EnumPriority, r.Priority, priorities); err != nil {
		return err
	}
	return required("requirement", r.Text)
}

func (d Decision) check() error  { return required("decision", d.Text) }
func (r Rejection) check() error { return required("option", r.Option, "reason", r.Reason) }

func (q Question) check() error {
	if err := checkEnum(EnumImportance, q.Importance, importances); err != nil {
		return err
	}
	return required("question", q.Text)
}

func (c Constraint) check() error { return required("constraint", string(c)) }
func (n NextStep) check() error   { return required("next step", string(n)) }

func (b *PlanBody) Mode() Mode { return ModePlan }

func (b *PlanBody) Counts() []FieldCount {
	return []FieldCount{
		{FieldRequire, len(b.Requirements)},
		{FieldDecided, len(b.Decisions)},
		{FieldRejected, len(b.Rejected)},
		{FieldQuestion, len(b.Questions)},
		{FieldConstraint, len(b.Constraints)},
		{FieldNextStep, len(b.NextSteps)},
	}
}

func (b *PlanBody) clone() Body {
	c := *b
	c.Requirements = slices.Clone(b.Requirements)
	c.Decisions = slices.Clone(b.Decisions)
	c.Rejected = slices.Clone(b.Rejected)
	c.Questions = slices.Clone(b.Questions)
	c.Constraints = slices.Clone(b.Constraints)
	c.NextSteps = slices.Clone(b.NextSteps)
	return &c
}

func (b *PlanBody) validate() error {
	return firstError(
		checkEach(b.Requirements),
		checkEach(b.Decisions),
		checkEach(b.Rejected),
		checkEach(b.Questions),
		checkEach(b.Constraints),
		checkEach(b.NextSteps),
	)
}

func (b *PlanBody) apply(f Fact) error {
	switch v := f.(type) {
	case Requirement:
		b.Requirements = append(b.Requirements, v)
	case Decision:
		b.Decisions = append(b.Decisions, v)
	case Rejection:
		b.Rejected = append(b.Rejected, v)
	case Question:
		b.Questions = append(b.Questions, v)
	case Constraint:
		b.Constraints = append(b.Constraints, v)
	case NextStep:
		b.NextSteps = append(b.NextSteps, v)
	default:
		return fmt.Errorf("plan handoffs cannot record %T", f)
	}
	return nil
}
