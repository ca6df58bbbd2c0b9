package handoff

import (
	"fmt"
	"slices"
)

// DeployBody is the payload of a deploy handoff.
type DeployBody struct {
	ShipItems       []ShipItem       `json:"ship_items"`
	VerifySteps     []VerifyStep     `json:"verify_steps"`
	RollbackPlan    RollbackPlan     `json:"rollback_plan,omitempty"`
	BreakingChanges []BreakingChange `json:"breaking_changes"`
	EnvConcerns     []EnvConcern     `json:"env_concerns"`
}

// ShipItem is a path that is part of the deploy.
type ShipItem struct {
	Path        string `json:"path"`
	Description string `json:"description,omitempty"`
}

// VerifyStep is a check to run after deploying.
type VerifyStep string

// RollbackPlan describes how to undo the deploy. Setting it again replaces it.
type RollbackPlan string

// BreakingChange names something that changes incompatibly and who is hit.
type BreakingChange struct {
	What     string `json:"what"`
	Affected string `json:"affected"`
}

// EnvConcern is an environment-specific caveat.
type EnvConcern struct {
	Env     string `json:"env"`
	Concern string `json:"concern"`
}

func (ShipItem) Field() Field       { return FieldShip }
func (VerifyStep) Field() Field     { return FieldVerify }
func (RollbackPlan) Field() Field   { return FieldRollback }
func (BreakingChange) Field() Field { return FieldBreaking }
func (EnvConcern) Field() Field     { return FieldEnvConcern }

func (s ShipItem) check() error       { return required("path", s.Path) }
func (v VerifyStep) check() error     { return required("verify step", string(v)) }
func (r RollbackPlan) check() error   { return required("rollback plan", string(r)) }
func (b BreakingChange) check() error { return required("what", b.What, "affected", b.Affected) }
func (e EnvConcern) check() error     { return required("env", e.Env, "concern", e.Concern) }

func (b *DeployBody) Mode() Mode { return ModeDeploy }

func (b *DeployBody) Counts() []FieldCount {
	rollback := 0
	if b.RollbackPlan != "" {
		rollback = 1
	}
	return []FieldCount{
		{FieldBreaking, len(b.BreakingChanges)},
		{FieldRollback, rollback},
		{FieldShip, len(b.ShipItems)},
		{FieldVerify, len(b.VerifySteps)},
		{FieldEnvConcern, len(b.EnvConcerns)},
	}
}

func (b *DeployBody) clone() Body {
	c := *b
	c.ShipItems = slices.Clone(b.ShipItems)
	c.VerifySteps = slices.Clone(b.VerifySteps)
	c.BreakingChanges = slices.Clone(b.BreakingChanges)
	c.EnvConcerns = slices.Clone(b.EnvConcerns)
	return &c
}

func (b *DeployBody) validate() error {
	return firstError(
		checkEach(b.ShipItems),
		checkEach(b.VerifySteps),
		checkOptional(b.RollbackPlan),
		checkEach(b.BreakingChanges),
		checkEach(b.EnvConcerns),
	)
}

func (b *DeployBody) apply(f Fact) error {
	switch v := f.(type) {
	case ShipItem:
		b.ShipItems = append(b.ShipItems, v)
	case VerifyStep:
		b.VerifySteps = append(b.VerifySteps, v)
	case RollbackPlan:
		b.RollbackPlan = v
	case BreakingChange:
		b.BreakingChanges = append(b.BreakingChanges, v)
	case EnvConcern:
		b.EnvConcerns = append(b.EnvConcerns, v)
	default:
		return fmt.Errorf("deploy handoffs cannot record %T", f)
	}
	return nil
}
