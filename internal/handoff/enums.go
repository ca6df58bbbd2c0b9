package handoff

import (
	"strings"
)

// Mode identifies which payload variant a handoff carries.
type Mode string

const (
	ModeDeploy Mode = "deploy"
	ModeDebug  Mode = "debug"
	ModePlan   Mode = "plan"
)

// Modes lists every mode in display order.
var Modes = []Mode{ModeDeploy, ModeDebug, ModePlan}

func (m Mode) String() string { return string(m) }

// Status is the lifecycle state of a handoff.
type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusPending    Status = "pending"
	StatusArchived   Status = "archived"
)

var statuses = []Status{StatusInProgress, StatusPending, StatusArchived}

// Likelihood ranks a debug hypothesis.
type Likelihood string

const (
	LikelihoodHigh   Likelihood = "high"
	LikelihoodMedium Likelihood = "medium"
	LikelihoodLow    Likelihood = "low"
)

var likelihoods = []Likelihood{LikelihoodHigh, LikelihoodMedium, LikelihoodLow}

// Outcome records what happened when something was tried.
type Outcome string

const (
	OutcomeFixed   Outcome = "fixed"
	OutcomeHelped  Outcome = "helped"
	OutcomeNothing Outcome = "nothing"
	OutcomeWorse   Outcome = "worse"
)

var outcomes = []Outcome{OutcomeFixed, OutcomeHelped, OutcomeNothing, OutcomeWorse}

// EvidenceKind classifies a piece of debug evidence.
type EvidenceKind string

const (
	EvidenceLog         EvidenceKind = "log"
	EvidenceError       EvidenceKind = "error"
	EvidenceObservation EvidenceKind = "observation"
)

var evidenceKinds = []EvidenceKind{EvidenceLog, EvidenceError, EvidenceObservation}

// Priority is a MoSCoW classification for plan requirements.
type Priority string

const (
	PriorityMust   Priority = "must"
	PriorityShould Priority = "should"
	PriorityCould  Priority = "could"
	PriorityWont   Priority = "wont"
)

var priorities = []Priority{PriorityMust, PriorityShould, PriorityCould, PriorityWont}

// Importance ranks an open plan question.
type Importance string

const (
	ImportanceHigh   Importance = "high"
	ImportanceMedium Importance = "medium"
	ImportanceLow    Importance = "low"
)

var importances = []Importance{ImportanceHigh, ImportanceMedium, ImportanceLow}

// Enum field names, used in SchemaError and by ParseEnum.
const (
	EnumMode         = "mode"
	EnumStatus       = "status"
	EnumLikelihood   = "likelihood"
	EnumOutcome      = "outcome"
	EnumEvidenceKind = "kind"
	EnumPriority     = "priority"
	EnumImportance   = "importance"
)

func parseToken[T ~string](field, raw string, allowed []T) (T, error) {
	token := strings.ToLower(strings.TrimSpace(raw))
	for _, v := range allowed {
		if string(v) == token {
			return v, nil
		}
	}
	var zero T
	return zero, &SchemaError{Field: field, Raw: raw, Allowed: tokens(allowed)}
}

func tokens[T ~string](values []T) []string {
	names := make([]string, len(values))
	for i, v := range values {
		names[i] = string(v)
	}
	return names
}

// rank returns the position of v in order, or len(order) if absent.
func rank[T comparable](v T, order []T) int {
	for i, o := range order {
		if o == v {
			return i
		}
	}
	return len(order)
}

func isAllowed[T comparable](v T, allowed []T) bool {
	return rank(v, allowed) < len(allowed)
}

// ParseMode parses a mode token.
func ParseMode(raw string) (Mode, error) { return parseToken(EnumMode, raw, Modes) }

// ParseStatus parses a status token.
func ParseStatus(raw string) (Status, error) { return parseToken(EnumStatus, raw, statuses) }

// ParseLikelihood parses a hypothesis likelihood token.
func ParseLikelihood(raw string) (Likelihood, error) {
	return parseToken(EnumLikelihood, raw, likelihoods)
}

// ParseOutcome parses a tried-outcome token.
func ParseOutcome(raw string) (Outcome, error) { return parseToken(EnumOutcome, raw, outcomes) }

// ParseEvidenceKind parses an evidence kind token.
func ParseEvidenceKind(raw string) (EvidenceKind, error) {
	return parseToken(EnumEvidenceKind, raw, evidenceKinds)
}

// ParsePriority parses a MoSCoW priority token.
func ParsePriority(raw string) (Priority, error) {
	return parseToken(EnumPriority, raw, priorities)
}

// ParseImportance parses a question importance token.
func ParseImportance(raw string) (Importance, error) {
	return parseToken(EnumImportance, raw, importances)
}

// ParseEnum validates raw against the tokens allowed for the named enum field
// and returns the normalized token.
func ParseEnum(field, raw string) (string, error) {
	var (
		v   string
		err error
	)
	switch field {
	case EnumMode:
		var m Mode
		m, err = ParseMode(raw)
		v = string(m)
	case EnumStatus:
		var s Status
		s, err = ParseStatus(raw)
		v = string(s)
	case EnumLikelihood:
		var l Likelihood
		l, err = ParseLikelihood(raw)
		v = string(l)
	case EnumOutcome:
		var o Outcome
		o, err = ParseOutcome(raw)
		v = string(o)
	case EnumEvidenceKind:
		var k EvidenceKind
		k, err = ParseEvidenceKind(raw)
		v = string(k)
	case EnumPriority:
		var p Priority
		p, err = ParsePriority(raw)
		v = string(p)
	case EnumImportance:
		var i Importance
		i, err = ParseImportance(raw)
		v = string(i)
	default:
		return "", &SchemaError{Field: field, Raw: raw}
	}
	return v, err
}

func (m *Mode) UnmarshalText(b []byte) error {
	v, err := ParseMode(string(b))
	*m = v
	return err
}

func (s *Status) UnmarshalText(b []byte) error {
	v, err := ParseStatus(string(b))
	*s = v
	return err
}

func (l *Likelihood) UnmarshalText(b []byte) error {
	v, err := ParseLikelihood(string(b))
	*l = v
	return err
}

func (o *Outcome) UnmarshalText(b []byte) error {
	v, err := ParseOutcome(string(b))
	*o = v
	return err
}

func (k *EvidenceKind) UnmarshalText(b []byte) error {
	v, err := ParseEvidenceKind(string(b))
	*k = v
	return err
}

func (p *Priority) UnmarshalText(b []byte) error {
	v, err := ParsePriority(string(b))
	*p = v
	return err
}

func (i *Importance) UnmarshalText(b []byte) error {
	v, err := ParseImportance(string(b))
	*i = v
	return err
}
