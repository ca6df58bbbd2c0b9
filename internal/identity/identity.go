// Package identity stores which agent is writing handoffs in this workspace.
package identity

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// FileName is the identity document inside the state directory.
const FileName = "current_agent.json"

// ErrNotSet is returned when no identity has been configured.
var ErrNotSet = errors.New("no agent identity set; run 'xas whoami --set <name>'")

var validName = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._@-]*$`)

// Agent is the persisted identity.
type Agent struct {
	ID    string    `json:"agent_id"`
	SetAt time.Time `json:"set_at"`
}

// Provider resolves the current author for new handoffs.
type Provider struct {
	// Override wins over the stored identity when non-empty (XAS_AGENT).
	Override string

	path string
}

// New returns a provider backed by stateDir/current_agent.json.
func New(stateDir string) *Provider {
	return &Provider{path: filepath.Join(stateDir, FileName)}
}

// ValidateName rejects names that would be awkward in commit messages and
// file listings.
func ValidateName(name string) error {
	if !validName.MatchString(name) {
		return fmt.Errorf("invalid agent name %q: use letters, digits, '.', '_', '@' or '-'", name)
	}
	return nil
}

// Get returns the stored identity, or ErrNotSet.
func (p *Provider) Get() (*Agent, error) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotSet
		}
		return nil, fmt.Errorf("failed to read %s: %w", FileName, err)
	}
	var a Agent
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", FileName, err)
	}
	if a.ID == "" {
		return nil, ErrNotSet
	}
	return &a, nil
}

// CurrentAuthor returns the override if set, otherwise the stored identity.
func (p *Provider) CurrentAuthor() (string, error) {
	if name := strings.TrimSpace(p.Override); name != "" {
		if err := ValidateName(name); err != nil {
			return "", err
		}
		return name, nil
	}
	a, err := p.Get()
	if err != nil {
		return "", err
	}
	return a.ID, nil
}

// Set persists name as the workspace identity.
func (p *Provider) Set(name string, now time.Time) (*Agent, error) {
	name = strings.TrimSpace(name)
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	a := &Agent{ID: name, SetAt: now.UTC()}
	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal identity: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(p.path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}
	if err := os.WriteFile(p.path, append(data, '\n'), 0644); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", FileName, err)
	}
	return a, nil
}
