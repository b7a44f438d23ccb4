package classify

import (
	"fmt"
	"strings"

	"github.com/pmaojo/hexalens/internal/hexalens/domain"
)

var interfaceForms = []domain.DeclKind{domain.DeclInterface}

// drivenNameSuffixes flag interfaces whose name already states a driven
// role; the command and query heuristics never fire on these.
var drivenNameSuffixes = []string{"Repository", "Gateway", "Adapter", "Store", "Client", "Dao", "Dto"}

var commandVerbs = []string{
	"create", "update", "delete", "save", "remove", "add",
	"register", "submit", "execute", "apply", "publish", "send",
	"process", "handle",
}

var queryVerbs = []string{
	"get", "find", "list", "search", "fetch", "query",
	"count", "load", "read", "is", "has", "exists",
}

// namingSuffixCriterion matches an interface whose simple name ends in a
// conventional port suffix.
type namingSuffixCriterion struct {
	suffix    string
	kind      domain.PortKind
	direction domain.PortDirection
	// unless lists longer suffixes claimed by more specific criteria.
	unless []string
}

func (n namingSuffixCriterion) Name() string                    { return "naming-" + strings.ToLower(n.suffix) }
func (n namingSuffixCriterion) Priority() int                   { return 80 }
func (n namingSuffixCriterion) TargetKind() string              { return string(n.kind) }
func (n namingSuffixCriterion) Direction() domain.PortDirection { return n.direction }

func (n namingSuffixCriterion) AppliesTo(t *domain.TypeNode) bool {
	return t.IsInterface()
}

func (n namingSuffixCriterion) Evaluate(t *domain.TypeNode, _ *Context) MatchResult {
	if t.Simple == n.suffix || !strings.HasSuffix(t.Simple, n.suffix) {
		return NoMatch()
	}
	for _, longer := range n.unless {
		if strings.HasSuffix(t.Simple, longer) {
			return NoMatch()
		}
	}
	return Match(domain.ConfidenceHigh,
		fmt.Sprintf("name ends in '%s'", n.suffix),
		domain.NamingEvidence(
			fmt.Sprintf("interface '%s' follows the '*%s' convention", t.Simple, n.suffix),
			string(t.ID)))
}

// commandPatternCriterion matches driving interfaces whose methods are
// predominantly imperative, or that take a command parameter.
type commandPatternCriterion struct{}

func (commandPatternCriterion) Name() string                    { return "command-pattern" }
func (commandPatternCriterion) Priority() int                   { return 75 }
func (commandPatternCriterion) TargetKind() string              { return string(domain.PortCommand) }
func (commandPatternCriterion) Direction() domain.PortDirection { return domain.DirectionDriving }

func (commandPatternCriterion) AppliesTo(t *domain.TypeNode) bool {
	return t.IsInterface() && !hasDrivenName(t)
}

func (commandPatternCriterion) Evaluate(t *domain.TypeNode, ctx *Context) MatchResult {
	methods := ctx.Graph.MethodsOf(t.ID)
	if len(methods) == 0 {
		return NoMatch()
	}
	imperative := 0
	for _, m := range methods {
		if startsWithVerb(m.Name, commandVerbs) || takesCommand(m) {
			imperative++
		}
	}
	if imperative*2 <= len(methods) {
		return NoMatch()
	}
	return Match(domain.ConfidenceMedium,
		fmt.Sprintf("%d of %d methods are imperative", imperative, len(methods)),
		domain.BehavioralEvidence(
			fmt.Sprintf("method names and parameters follow the command pattern (%d/%d)", imperative, len(methods)),
			string(t.ID)))
}

// queryPatternCriterion matches driving interfaces whose methods are
// predominantly interrogative.
type queryPatternCriterion struct{}

func (queryPatternCriterion) Name() string                    { return "query-pattern" }
func (queryPatternCriterion) Priority() int                   { return 75 }
func (queryPatternCriterion) TargetKind() string              { return string(domain.PortQuery) }
func (queryPatternCriterion) Direction() domain.PortDirection { return domain.DirectionDriving }

func (queryPatternCriterion) AppliesTo(t *domain.TypeNode) bool {
	return t.IsInterface() && !hasDrivenName(t)
}

func (queryPatternCriterion) Evaluate(t *domain.TypeNode, ctx *Context) MatchResult {
	methods := ctx.Graph.MethodsOf(t.ID)
	if len(methods) == 0 {
		return NoMatch()
	}
	interrogative := 0
	for _, m := range methods {
		if startsWithVerb(m.Name, queryVerbs) && m.Returns != nil {
			interrogative++
		}
	}
	if interrogative*2 <= len(methods) {
		return NoMatch()
	}
	return Match(domain.ConfidenceMedium,
		fmt.Sprintf("%d of %d methods are interrogative", interrogative, len(methods)),
		domain.BehavioralEvidence(
			fmt.Sprintf("method names follow the query pattern (%d/%d)", interrogative, len(methods)),
			string(t.ID)))
}

func hasDrivenName(t *domain.TypeNode) bool {
	for _, suffix := range drivenNameSuffixes {
		if strings.HasSuffix(t.Simple, suffix) {
			return true
		}
	}
	return false
}

func startsWithVerb(name string, verbs []string) bool {
	lower := strings.ToLower(name)
	for _, v := range verbs {
		if lower == v {
			return true
		}
		if strings.HasPrefix(lower, v) && len(name) > len(v) {
			rest := name[len(v):]
			if rest[0] >= 'A' && rest[0] <= 'Z' || rest[0] == '_' {
				return true
			}
		}
	}
	return false
}

func takesCommand(m *domain.MethodNode) bool {
	for _, p := range m.Params {
		lower := strings.ToLower(p.Name)
		if lower == "command" || lower == "cmd" {
			return true
		}
		if strings.HasSuffix(p.Type.Qualified, "Command") {
			return true
		}
	}
	return false
}

// DefaultPortCriteria is the built-in criteria set for the port pass.
func DefaultPortCriteria() []Criterion {
	criteria := []Criterion{
		commandPatternCriterion{},
		queryPatternCriterion{},
	}
	markers := []struct {
		marker    string
		kind      domain.PortKind
		direction domain.PortDirection
	}{
		{"Repository", domain.PortRepository, domain.DirectionDriven},
		{"UseCase", domain.PortUseCase, domain.DirectionDriving},
		{"Gateway", domain.PortGateway, domain.DirectionDriven},
		{"Command", domain.PortCommand, domain.DirectionDriving},
		{"Query", domain.PortQuery, domain.DirectionDriving},
		{"DrivingPort", domain.PortUseCase, domain.DirectionDriving},
		{"DrivenPort", domain.PortGateway, domain.DirectionDriven},
	}
	for _, m := range markers {
		criteria = append(criteria, markerCriterion{
			marker:    m.marker,
			kind:      string(m.kind),
			direction: m.direction,
			forms:     interfaceForms,
		})
	}
	suffixes := []struct {
		suffix    string
		kind      domain.PortKind
		direction domain.PortDirection
		unless    []string
	}{
		{"Repository", domain.PortRepository, domain.DirectionDriven, nil},
		{"UseCase", domain.PortUseCase, domain.DirectionDriving, nil},
		{"Gateway", domain.PortGateway, domain.DirectionDriven, nil},
		{"Client", domain.PortGateway, domain.DirectionDriven, nil},
		{"Publisher", domain.PortGateway, domain.DirectionDriven, nil},
		{"Notifier", domain.PortGateway, domain.DirectionDriven, nil},
		{"Service", domain.PortUseCase, domain.DirectionDriving, nil},
		{"CommandHandler", domain.PortCommand, domain.DirectionDriving, nil},
		{"QueryHandler", domain.PortQuery, domain.DirectionDriving, nil},
		{"Handler", domain.PortUseCase, domain.DirectionDriving, []string{"CommandHandler", "QueryHandler"}},
	}
	for _, s := range suffixes {
		criteria = append(criteria, namingSuffixCriterion{
			suffix:    s.suffix,
			kind:      s.kind,
			direction: s.direction,
			unless:    s.unless,
		})
	}
	return criteria
}
