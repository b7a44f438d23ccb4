package classify

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pmaojo/hexalens/internal/hexalens/domain"
)

// markerCriterion matches an explicit metadata tag and assigns a fixed
// kind. One flat instance per (marker, kind, direction) replaces a
// subclass hierarchy; explicit markers always outrank heuristics.
type markerCriterion struct {
	marker    string
	kind      string
	direction domain.PortDirection
	forms     []domain.DeclKind
}

func (m markerCriterion) Name() string                    { return "explicit-" + strings.ToLower(m.marker) }
func (m markerCriterion) Priority() int                   { return 100 }
func (m markerCriterion) TargetKind() string              { return m.kind }
func (m markerCriterion) Direction() domain.PortDirection { return m.direction }

func (m markerCriterion) AppliesTo(t *domain.TypeNode) bool {
	for _, f := range m.forms {
		if t.Kind == f {
			return true
		}
	}
	return false
}

func (m markerCriterion) Evaluate(t *domain.TypeNode, _ *Context) MatchResult {
	if !t.HasTag(m.marker) {
		return NoMatch()
	}
	return Match(domain.ConfidenceExplicit,
		fmt.Sprintf("explicit '%s' marker", m.marker),
		domain.TagEvidence(fmt.Sprintf("type carries the '%s' marker", m.marker), string(t.ID)))
}

var nonInterfaceForms = []domain.DeclKind{domain.DeclClass, domain.DeclRecord, domain.DeclEnum}

// identitySuffixes end a field name that denotes an identity.
var identitySuffixes = []string{"Id", "ID", "_id", "Identifier"}

// identityFieldCriterion classifies types holding an identity field as
// entities: a field literally named an identity marker, ending in an
// identity suffix, or tagged as one.
type identityFieldCriterion struct{}

func (identityFieldCriterion) Name() string                    { return "identity-field" }
func (identityFieldCriterion) Priority() int                   { return 60 }
func (identityFieldCriterion) TargetKind() string              { return string(domain.KindEntity) }
func (identityFieldCriterion) Direction() domain.PortDirection { return "" }

func (identityFieldCriterion) AppliesTo(t *domain.TypeNode) bool {
	return t.Kind == domain.DeclClass || t.Kind == domain.DeclRecord
}

func (identityFieldCriterion) Evaluate(t *domain.TypeNode, ctx *Context) MatchResult {
	if ctx.InfraAnchored(t.ID) {
		return NoMatch()
	}
	for _, f := range ctx.Graph.FieldsOf(t.ID) {
		if isIdentityField(f) {
			return Match(domain.ConfidenceMedium,
				fmt.Sprintf("field '%s' identifies the instance", f.Name),
				domain.StructuralEvidence(
					fmt.Sprintf("identity field '%s' of type '%s'", f.Name, f.Type.Qualified), f.ID))
		}
	}
	return NoMatch()
}

func isIdentityField(f *domain.FieldNode) bool {
	lower := strings.ToLower(f.Name)
	if lower == "id" || lower == "identifier" {
		return true
	}
	for _, suffix := range identitySuffixes {
		if f.Name != suffix && strings.HasSuffix(f.Name, suffix) {
			return true
		}
	}
	return f.HasTag("Id") || f.HasTag("Identity")
}

// immutabilityCriterion classifies fully immutable carriers as value
// objects: records and enums by form, classes when every field is final
// and no setter exists.
type immutabilityCriterion struct{}

func (immutabilityCriterion) Name() string                    { return "immutable-carrier" }
func (immutabilityCriterion) Priority() int                   { return 50 }
func (immutabilityCriterion) TargetKind() string              { return string(domain.KindValueObject) }
func (immutabilityCriterion) Direction() domain.PortDirection { return "" }

func (immutabilityCriterion) AppliesTo(t *domain.TypeNode) bool {
	for _, f := range nonInterfaceForms {
		if t.Kind == f {
			return true
		}
	}
	return false
}

func (immutabilityCriterion) Evaluate(t *domain.TypeNode, ctx *Context) MatchResult {
	if ctx.InfraAnchored(t.ID) {
		return NoMatch()
	}
	switch t.Kind {
	case domain.DeclRecord:
		return Match(domain.ConfidenceHigh, "record declarations are immutable by form",
			domain.StructuralEvidence("declared as a record", string(t.ID)))
	case domain.DeclEnum:
		return Match(domain.ConfidenceHigh, "enum declarations are immutable by form",
			domain.StructuralEvidence("declared as an enum", string(t.ID)))
	}

	fields := ctx.Graph.FieldsOf(t.ID)
	if len(fields) == 0 {
		return NoMatch()
	}
	for _, f := range fields {
		if !f.HasModifier(domain.ModFinal) {
			return NoMatch()
		}
	}
	for _, m := range ctx.Graph.MethodsOf(t.ID) {
		if strings.HasPrefix(m.Name, "set") || strings.HasPrefix(m.Name, "Set") {
			return NoMatch()
		}
	}
	return Match(domain.ConfidenceMedium,
		fmt.Sprintf("all %d fields are final and no setter exists", len(fields)),
		domain.StructuralEvidence("every field is final, no mutating accessor", string(t.ID)))
}

// repositoryDominantCriterion promotes the primary managed type of a
// classified repository port to aggregate root. It requires the port pass
// to have run first; with no port results it never matches.
type repositoryDominantCriterion struct{}

func (repositoryDominantCriterion) Name() string                    { return "repository-dominant" }
func (repositoryDominantCriterion) Priority() int                   { return 80 }
func (repositoryDominantCriterion) TargetKind() string              { return string(domain.KindAggregateRoot) }
func (repositoryDominantCriterion) Direction() domain.PortDirection { return "" }

func (repositoryDominantCriterion) AppliesTo(t *domain.TypeNode) bool {
	return t.Kind == domain.DeclClass || t.Kind == domain.DeclRecord
}

func (repositoryDominantCriterion) Evaluate(t *domain.TypeNode, ctx *Context) MatchResult {
	if ctx.InfraAnchored(t.ID) {
		return NoMatch()
	}
	for _, portID := range sortedPortIDs(ctx) {
		res := ctx.Ports[portID]
		if res.Status != domain.StatusClassified || res.Kind != string(domain.PortRepository) {
			continue
		}
		if dominantManagedType(ctx, portID) == t.ID {
			return Match(domain.ConfidenceHigh,
				fmt.Sprintf("primary managed type of repository '%s'", portID),
				domain.DependencyEvidence(
					fmt.Sprintf("repository '%s' manages '%s' as its dominant type", portID, t.ID),
					string(portID), string(t.ID)))
		}
	}
	return NoMatch()
}

func sortedPortIDs(ctx *Context) []domain.TypeID {
	ids := make([]domain.TypeID, 0, len(ctx.Ports))
	for id := range ctx.Ports {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// dominantManagedType is the declared type appearing most often in the
// repository's method signatures; ties break lexicographically.
func dominantManagedType(ctx *Context, port domain.TypeID) domain.TypeID {
	counts := make(map[domain.TypeID]int)
	for _, m := range ctx.Graph.MethodsOf(port) {
		for _, p := range m.Params {
			countRef(ctx, &p.Type, counts)
		}
		if m.Returns != nil {
			countRef(ctx, m.Returns, counts)
		}
	}
	var best domain.TypeID
	bestCount := 0
	ids := make([]domain.TypeID, 0, len(counts))
	for id := range counts {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		if counts[id] > bestCount {
			best, bestCount = id, counts[id]
		}
	}
	return best
}

func countRef(ctx *Context, ref *domain.TypeRef, counts map[domain.TypeID]int) {
	id := domain.TypeID(ref.Qualified)
	if t, ok := ctx.Graph.Node(id); ok && !t.IsInterface() {
		counts[id]++
	}
	for i := range ref.Args {
		countRef(ctx, &ref.Args[i], counts)
	}
}

// portDependencyCriterion classifies orchestrators that hold classified
// ports as application services.
type portDependencyCriterion struct{}

func (portDependencyCriterion) Name() string                    { return "port-dependency" }
func (portDependencyCriterion) Priority() int                   { return 40 }
func (portDependencyCriterion) TargetKind() string              { return string(domain.KindApplicationService) }
func (portDependencyCriterion) Direction() domain.PortDirection { return "" }

func (portDependencyCriterion) AppliesTo(t *domain.TypeNode) bool {
	return t.Kind == domain.DeclClass
}

func (portDependencyCriterion) Evaluate(t *domain.TypeNode, ctx *Context) MatchResult {
	if ctx.InfraAnchored(t.ID) {
		return NoMatch()
	}
	for _, f := range ctx.Graph.FieldsOf(t.ID) {
		dep := domain.TypeID(f.Type.Qualified)
		if res, ok := ctx.Ports[dep]; ok && res.Status == domain.StatusClassified {
			return Match(domain.ConfidenceMedium,
				fmt.Sprintf("depends on port '%s' through field '%s'", dep, f.Name),
				domain.DependencyEvidence(
					fmt.Sprintf("field '%s' holds classified port '%s'", f.Name, dep), f.ID))
		}
	}
	return NoMatch()
}

// statelessServiceCriterion classifies stateless behavior holders without
// port dependencies as domain services.
type statelessServiceCriterion struct{}

func (statelessServiceCriterion) Name() string                    { return "stateless-service" }
func (statelessServiceCriterion) Priority() int                   { return 30 }
func (statelessServiceCriterion) TargetKind() string              { return string(domain.KindDomainService) }
func (statelessServiceCriterion) Direction() domain.PortDirection { return "" }

func (statelessServiceCriterion) AppliesTo(t *domain.TypeNode) bool {
	return t.Kind == domain.DeclClass
}

func (statelessServiceCriterion) Evaluate(t *domain.TypeNode, ctx *Context) MatchResult {
	if ctx.InfraAnchored(t.ID) {
		return NoMatch()
	}
	if len(ctx.Graph.FieldsOf(t.ID)) > 0 || len(ctx.Graph.MethodsOf(t.ID)) == 0 {
		return NoMatch()
	}
	for _, dep := range ctx.Graph.DependenciesOf(t.ID) {
		if _, ok := ctx.Ports[dep]; ok {
			return NoMatch()
		}
	}
	return Match(domain.ConfidenceMedium,
		"stateless behavior holder without port dependencies",
		domain.BehavioralEvidence(
			fmt.Sprintf("no fields, %d methods, no port dependency", len(ctx.Graph.MethodsOf(t.ID))),
			string(t.ID)))
}

// DefaultDomainCriteria is the built-in criteria set for the domain pass.
func DefaultDomainCriteria() []Criterion {
	criteria := []Criterion{
		repositoryDominantCriterion{},
		identityFieldCriterion{},
		immutabilityCriterion{},
		portDependencyCriterion{},
		statelessServiceCriterion{},
	}
	markers := []struct {
		marker string
		kind   domain.DomainKind
	}{
		{"AggregateRoot", domain.KindAggregateRoot},
		{"Entity", domain.KindEntity},
		{"ValueObject", domain.KindValueObject},
		{"Identity", domain.KindIdentifier},
		{"DomainEvent", domain.KindDomainEvent},
		{"DomainService", domain.KindDomainService},
		{"ApplicationService", domain.KindApplicationService},
	}
	for _, m := range markers {
		criteria = append(criteria, markerCriterion{
			marker: m.marker,
			kind:   string(m.kind),
			forms:  nonInterfaceForms,
		})
	}
	return criteria
}
