package audit

import (
	"fmt"

	"github.com/pmaojo/hexalens/internal/hexalens/domain"
)

// Validator checks one architectural constraint. Validators never mutate
// the graph and run independently of each other.
type Validator interface {
	Name() string
	Validate(q *Query) []domain.Violation
}

// DefaultValidators is the built-in validator set, in report order.
func DefaultValidators() []Validator {
	return []Validator{
		dependencyDirectionValidator{},
		dependencyInversionValidator{},
		portCoverageValidator{},
		portIsInterfaceValidator{},
		portDirectionValidator{},
		layerIsolationValidator{},
	}
}

// RunValidators runs every validator and concatenates the findings.
func RunValidators(q *Query, validators []Validator) []domain.Violation {
	var out []domain.Violation
	for _, v := range validators {
		out = append(out, v.Validate(q)...)
	}
	return out
}

// dependencyDirectionValidator flags domain and application layer types
// that depend on infrastructure layer types.
type dependencyDirectionValidator struct{}

func (dependencyDirectionValidator) Name() string { return "dependency-direction" }

func (dependencyDirectionValidator) Validate(q *Query) []domain.Violation {
	var out []domain.Violation
	for _, lv := range q.FindLayerViolations() {
		out = append(out, domain.Violation{
			Constraint: "dependency-direction",
			Severity:   domain.SeverityBlocker,
			Message: fmt.Sprintf("%s layer type '%s' depends on infrastructure type '%s'",
				lv.FromLayer, lv.From, lv.To),
			Types: []domain.TypeID{lv.From, lv.To},
			Evidence: []domain.Evidence{
				domain.DependencyEvidence(
					fmt.Sprintf("dependency edge from '%s' (%s) to '%s' (%s)",
						lv.From, lv.FromLayer, lv.To, lv.ToLayer),
					string(lv.From), string(lv.To)),
			},
		})
	}
	return out
}

// dependencyInversionValidator flags application layer types that reach
// infrastructure through a concrete type instead of a port interface.
type dependencyInversionValidator struct{}

func (dependencyInversionValidator) Name() string { return "dependency-inversion" }

func (dependencyInversionValidator) Validate(q *Query) []domain.Violation {
	var out []domain.Violation
	for _, t := range q.graph.Types() {
		if q.LayerOf(t.ID) != LayerApplication {
			continue
		}
		for _, dep := range q.graph.DependenciesOf(t.ID) {
			if q.LayerOf(dep) != LayerInfrastructure {
				continue
			}
			node, ok := q.graph.Node(dep)
			if !ok || node.IsInterface() {
				continue
			}
			out = append(out, domain.Violation{
				Constraint: "dependency-inversion",
				Severity:   domain.SeverityCritical,
				Message: fmt.Sprintf("application type '%s' depends on concrete infrastructure type '%s' instead of a port",
					t.ID, dep),
				Types: []domain.TypeID{t.ID, dep},
				Evidence: []domain.Evidence{
					domain.DependencyEvidence(
						fmt.Sprintf("'%s' is a %s declaration, not an interface", dep, node.Kind),
						string(t.ID), string(dep)),
				},
			})
		}
	}
	return out
}

// portCoverageValidator flags classified ports with no infrastructure
// layer adapter depending on them.
type portCoverageValidator struct{}

func (portCoverageValidator) Name() string { return "port-coverage" }

func (portCoverageValidator) Validate(q *Query) []domain.Violation {
	var out []domain.Violation
	for _, res := range classifiedPorts(q) {
		if hasInfraDependent(q, res.Subject) {
			continue
		}
		out = append(out, domain.Violation{
			Constraint: "port-coverage",
			Severity:   domain.SeverityMajor,
			Message:    fmt.Sprintf("port '%s' (%s) has no infrastructure adapter", res.Subject, res.Kind),
			Types:      []domain.TypeID{res.Subject},
			Evidence: []domain.Evidence{
				domain.DependencyEvidence(
					"no infrastructure layer type depends on this port", string(res.Subject)),
			},
		})
	}
	return out
}

// portIsInterfaceValidator flags classified ports whose declaration form
// is not an interface.
type portIsInterfaceValidator struct{}

func (portIsInterfaceValidator) Name() string { return "port-is-interface" }

func (portIsInterfaceValidator) Validate(q *Query) []domain.Violation {
	var out []domain.Violation
	for _, res := range classifiedPorts(q) {
		node, ok := q.graph.Node(res.Subject)
		if !ok || node.IsInterface() {
			continue
		}
		out = append(out, domain.Violation{
			Constraint: "port-is-interface",
			Severity:   domain.SeverityCritical,
			Message:    fmt.Sprintf("port '%s' is declared as a %s, not an interface", res.Subject, node.Kind),
			Types:      []domain.TypeID{res.Subject},
			Evidence: []domain.Evidence{
				domain.StructuralEvidence(
					fmt.Sprintf("declaration form is '%s'", node.Kind), string(res.Subject)),
			},
		})
	}
	return out
}

// portDirectionValidator flags ports that no application layer type
// touches. A driving port in the same namespace as an application type
// counts as reached.
type portDirectionValidator struct{}

func (portDirectionValidator) Name() string { return "port-direction" }

func (portDirectionValidator) Validate(q *Query) []domain.Violation {
	var out []domain.Violation
	for _, res := range classifiedPorts(q) {
		if hasApplicationDependent(q, res.Subject) {
			continue
		}
		if res.Direction == domain.DirectionDriving && coLocatedWithApplication(q, res.Subject) {
			continue
		}
		out = append(out, domain.Violation{
			Constraint: "port-direction",
			Severity:   domain.SeverityMajor,
			Message: fmt.Sprintf("%s port '%s' is not used by any application layer type",
				res.Direction, res.Subject),
			Types: []domain.TypeID{res.Subject},
			Evidence: []domain.Evidence{
				domain.DependencyEvidence(
					"no application layer type depends on this port", string(res.Subject)),
			},
		})
	}
	return out
}

// layerIsolationValidator flags unstable namespaces depending on more
// stable ones.
type layerIsolationValidator struct{}

func (layerIsolationValidator) Name() string { return "layer-isolation" }

func (layerIsolationValidator) Validate(q *Query) []domain.Violation {
	var out []domain.Violation
	for _, sv := range q.FindStabilityViolations() {
		out = append(out, domain.Violation{
			Constraint: "layer-isolation",
			Severity:   domain.SeverityMajor,
			Message: fmt.Sprintf("unstable '%s' (instability %.2f) depends on more stable '%s' (instability %.2f)",
				sv.From, sv.FromInstability, sv.To, sv.ToInstability),
			Types: []domain.TypeID{sv.From, sv.To},
			Evidence: []domain.Evidence{
				domain.DependencyEvidence(
					fmt.Sprintf("unstable code must not reach into more stable code (%.2f -> %.2f)",
						sv.FromInstability, sv.ToInstability),
					string(sv.From), string(sv.To)),
			},
		})
	}
	return out
}

func classifiedPorts(q *Query) []domain.ClassificationResult {
	var out []domain.ClassificationResult
	for _, res := range q.results.ByTarget(domain.TargetPort) {
		if res.Status == domain.StatusClassified {
			out = append(out, res)
		}
	}
	return out
}

func hasInfraDependent(q *Query, port domain.TypeID) bool {
	for _, dep := range q.graph.DependentsOf(port) {
		if q.LayerOf(dep) == LayerInfrastructure {
			return true
		}
	}
	return false
}

func hasApplicationDependent(q *Query, port domain.TypeID) bool {
	for _, dep := range q.graph.DependentsOf(port) {
		if q.LayerOf(dep) == LayerApplication {
			return true
		}
	}
	return false
}

func coLocatedWithApplication(q *Query, port domain.TypeID) bool {
	node, ok := q.graph.Node(port)
	if !ok {
		return false
	}
	for _, t := range q.graph.TypesInNamespace(node.Namespace) {
		if t.ID != port && q.LayerOf(t.ID) == LayerApplication {
			return true
		}
	}
	return false
}
