// Package policy holds the canonicalization policy: product phrases bound to
// the code and rate they must resolve to.
package policy

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"gstrates/internal/domain"
)

//go:embed default.yaml
var defaultPolicy []byte

var codeRe = regexp.MustCompile(`^\d{2,8}$`)

// Rule binds a description substring to a canonical (code, rate).
type Rule struct {
	Phrase string  `yaml:"phrase" json:"phrase"`
	Code   string  `yaml:"code" json:"hsn_code"`
	Rate   float64 `yaml:"rate" json:"gst_rate"`
}

// Policy is an ordered rule list. The zero value matches nothing.
type Policy struct {
	Rules []Rule `yaml:"rules" json:"rules"`
}

// Default returns the policy shipped with the binary.
func Default() *Policy {
	p, err := Parse(defaultPolicy)
	if err != nil {
		panic(fmt.Sprintf("policy: embedded default is invalid: %v", err))
	}
	return p
}

// Load reads a policy file, or returns Default when path is empty.
func Load(path string) (*Policy, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("policy: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML policy.
func Parse(data []byte) (*Policy, error) {
	var p Policy
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("policy: parse: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	for i := range p.Rules {
		p.Rules[i].Phrase = strings.ToLower(strings.TrimSpace(p.Rules[i].Phrase))
	}
	return &p, nil
}

// Validate checks every rule.
func (p *Policy) Validate() error {
	for i, r := range p.Rules {
		if strings.TrimSpace(r.Phrase) == "" {
			return fmt.Errorf("%w: rule %d has an empty phrase", domain.ErrInvalidPolicy, i)
		}
		if !codeRe.MatchString(r.Code) {
			return fmt.Errorf("%w: rule %d code %q must be 2-8 digits", domain.ErrInvalidPolicy, i, r.Code)
		}
		if r.Rate < 0 || r.Rate > 100 {
			return fmt.Errorf("%w: rule %d rate %v out of range", domain.ErrInvalidPolicy, i, r.Rate)
		}
	}
	return nil
}

// MatchDescription returns the rules whose phrase occurs in desc,
// case-insensitively, in policy order.
func (p *Policy) MatchDescription(desc string) []Rule {
	if p == nil || len(p.Rules) == 0 {
		return nil
	}
	lower := strings.ToLower(desc)
	var out []Rule
	for _, r := range p.Rules {
		if strings.Contains(lower, r.Phrase) {
			out = append(out, r)
		}
	}
	return out
}
