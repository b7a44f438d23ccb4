package classify

import (
	"regexp"
	"strings"

	curex "github.com/cucumber/cucumber-expressions-go"

	"github.com/pmaojo/hexalens/internal/hexalens/domain"
)

// NamingRule maps a name pattern to a fixed classification. Patterns with
// {} placeholders are matched as Cucumber Expressions, then as regex,
// then as a plain substring.
type NamingRule struct {
	Pattern   string                      `json:"pattern"`
	Target    domain.ClassificationTarget `json:"target"`
	Kind      string                      `json:"kind"`
	Direction domain.PortDirection        `json:"direction,omitempty"`
}

// OverrideSpec pins the classification of one subject regardless of what
// the criteria would decide.
type OverrideSpec struct {
	Target    domain.ClassificationTarget `json:"target"`
	Kind      string                      `json:"kind"`
	Direction domain.PortDirection        `json:"direction,omitempty"`
	Reason    string                      `json:"reason,omitempty"`
}

// Profile tunes a classification run: criterion priority overrides,
// per-subject pins, exclusions and team naming conventions.
type Profile struct {
	Name              string                         `json:"name"`
	PriorityOverrides map[string]int                 `json:"priority_overrides,omitempty"`
	Overrides         map[domain.TypeID]OverrideSpec `json:"overrides,omitempty"`
	Exclusions        []string                       `json:"exclusions,omitempty"`
	NamingRules       []NamingRule                   `json:"naming_rules,omitempty"`
}

// DefaultProfile has the built-in criteria at their default priorities.
func DefaultProfile() *Profile {
	return &Profile{Name: "default"}
}

// Excluded reports whether the subject matches one of the profile's
// exclusion patterns.
func (p *Profile) Excluded(id domain.TypeID) bool {
	for _, pattern := range p.Exclusions {
		if matchPattern(string(id), pattern) {
			return true
		}
	}
	return false
}

// DomainCriteria is the domain-pass criteria list with priority overrides
// and naming rules applied.
func (p *Profile) DomainCriteria() []Criterion {
	criteria := p.applyOverrides(DefaultDomainCriteria())
	for _, rule := range p.NamingRules {
		if rule.Target == domain.TargetDomain {
			criteria = append(criteria, namingRuleCriterion{rule: rule, forms: nonInterfaceForms})
		}
	}
	return criteria
}

// PortCriteria is the port-pass criteria list with priority overrides and
// naming rules applied.
func (p *Profile) PortCriteria() []Criterion {
	criteria := p.applyOverrides(DefaultPortCriteria())
	for _, rule := range p.NamingRules {
		if rule.Target == domain.TargetPort {
			criteria = append(criteria, namingRuleCriterion{rule: rule, forms: interfaceForms})
		}
	}
	return criteria
}

func (p *Profile) applyOverrides(criteria []Criterion) []Criterion {
	if len(p.PriorityOverrides) == 0 {
		return criteria
	}
	out := make([]Criterion, len(criteria))
	for i, c := range criteria {
		if prio, ok := p.PriorityOverrides[c.Name()]; ok {
			out[i] = reprioritized{Criterion: c, priority: prio}
		} else {
			out[i] = c
		}
	}
	return out
}

// reprioritized wraps a criterion with a profile-supplied priority.
type reprioritized struct {
	Criterion
	priority int
}

func (r reprioritized) Priority() int { return r.priority }

// namingRuleCriterion turns a profile naming rule into an EXPLICIT
// criterion at marker priority.
type namingRuleCriterion struct {
	rule  NamingRule
	forms []domain.DeclKind
}

func (n namingRuleCriterion) Name() string                    { return "naming-rule:" + n.rule.Pattern }
func (n namingRuleCriterion) Priority() int                   { return 100 }
func (n namingRuleCriterion) TargetKind() string              { return n.rule.Kind }
func (n namingRuleCriterion) Direction() domain.PortDirection { return n.rule.Direction }

func (n namingRuleCriterion) AppliesTo(t *domain.TypeNode) bool {
	for _, f := range n.forms {
		if t.Kind == f {
			return true
		}
	}
	return false
}

func (n namingRuleCriterion) Evaluate(t *domain.TypeNode, _ *Context) MatchResult {
	if !matchPattern(t.Simple, n.rule.Pattern) {
		return NoMatch()
	}
	return Match(domain.ConfidenceExplicit,
		"name matches profile rule '"+n.rule.Pattern+"'",
		domain.NamingEvidence("profile naming rule '"+n.rule.Pattern+"' matched", string(t.ID)))
}

var paramRegistry = curex.NewParameterTypeRegistry()

// matchPattern tries a Cucumber Expression first if the pattern carries
// {} placeholders, then regex, then plain substring.
func matchPattern(text, pattern string) bool {
	if strings.Contains(pattern, "{") && strings.Contains(pattern, "}") {
		expression, err := curex.NewCucumberExpression(pattern, paramRegistry)
		if err == nil {
			args, err := expression.Match(text)
			return err == nil && args != nil
		}
	}

	re, err := regexp.Compile(pattern)
	if err == nil {
		return re.MatchString(text)
	}

	return strings.Contains(text, pattern)
}
