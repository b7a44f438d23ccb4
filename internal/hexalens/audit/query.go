package audit

import (
	"math"
	"sort"
	"strings"

	"github.com/pmaojo/hexalens/internal/hexalens/classify"
	"github.com/pmaojo/hexalens/internal/hexalens/domain"
	"github.com/pmaojo/hexalens/internal/hexalens/graph"
)

// Layer names derived from anchors and classification results.
const (
	LayerDomain         = "domain"
	LayerApplication    = "application"
	LayerInfrastructure = "infrastructure"
	LayerPresentation   = "presentation"
	LayerUnknown        = "unknown"
)

// Query computes structural metrics over a built graph and its
// classification results. All methods are read-only and total over any
// well-formed graph, cyclic ones included.
type Query struct {
	graph   *graph.Graph
	results *classify.Results
	// ContextRoot, when set, groups namespaces into bounded contexts by
	// their first segment below it.
	ContextRoot string
}

// NewQuery builds a query engine over one graph and one classification run.
func NewQuery(g *graph.Graph, results *classify.Results) *Query {
	return &Query{graph: g, results: results}
}

// Results exposes the classification run the query was built over.
func (q *Query) Results() *classify.Results { return q.results }

// Graph exposes the graph the query was built over.
func (q *Query) Graph() *graph.Graph { return q.graph }

// FindDependencyCycles enumerates every simple type-level cycle. Each
// cycle is reported once, starting at its lexicographically smallest
// member, ordered by that starting id.
func (q *Query) FindDependencyCycles() []domain.DependencyCycle {
	adj := make(map[string][]string, q.graph.Len())
	for _, t := range q.graph.Types() {
		for _, dep := range q.graph.DependenciesOf(t.ID) {
			adj[string(t.ID)] = append(adj[string(t.ID)], string(dep))
		}
	}
	return findCycles(adj, domain.CycleTypeLevel)
}

// FindPackageCycles enumerates namespace-level cycles over the aggregated
// edge set. Edges inside one namespace are dropped.
func (q *Query) FindPackageCycles() []domain.DependencyCycle {
	adj := make(map[string][]string)
	seen := make(map[[2]string]bool)
	for _, t := range q.graph.Types() {
		for _, dep := range q.graph.DependenciesOf(t.ID) {
			from := t.Namespace
			to := q.namespaceOf(dep)
			if from == to || to == "" {
				continue
			}
			key := [2]string{from, to}
			if seen[key] {
				continue
			}
			seen[key] = true
			adj[from] = append(adj[from], to)
		}
	}
	return findCycles(adj, domain.CyclePackageLevel)
}

// FindBoundedContextCycles enumerates cycles between bounded contexts.
// Without a configured context root every type falls into one context and
// no cycle is reported.
func (q *Query) FindBoundedContextCycles() []domain.DependencyCycle {
	if q.ContextRoot == "" {
		return nil
	}
	adj := make(map[string][]string)
	seen := make(map[[2]string]bool)
	for _, t := range q.graph.Types() {
		for _, dep := range q.graph.DependenciesOf(t.ID) {
			from := q.contextOf(t.Namespace)
			to := q.contextOf(q.namespaceOf(dep))
			if from == "" || to == "" || from == to {
				continue
			}
			key := [2]string{from, to}
			if seen[key] {
				continue
			}
			seen[key] = true
			adj[from] = append(adj[from], to)
		}
	}
	return findCycles(adj, domain.CycleBoundedContextLevel)
}

// DependsOnScore is the number of distinct types reachable from id via
// dependency edges. The type itself does not count.
func (q *Query) DependsOnScore(id domain.TypeID) int {
	visited := map[domain.TypeID]bool{id: true}
	stack := []domain.TypeID{id}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, dep := range q.graph.DependenciesOf(cur) {
			if !visited[dep] {
				visited[dep] = true
				stack = append(stack, dep)
			}
		}
	}
	return len(visited) - 1
}

// CCD is the cumulative dependency of a namespace: the sum of each member
// type's depends-on score.
func (q *Query) CCD(ns string) int {
	sum := 0
	for _, t := range q.graph.TypesInNamespace(ns) {
		sum += q.DependsOnScore(t.ID)
	}
	return sum
}

// NCCD normalizes a namespace's CCD by the square of its member count.
func (q *Query) NCCD(ns string) float64 {
	n := len(q.graph.TypesInNamespace(ns))
	if n == 0 {
		return 0
	}
	return float64(q.CCD(ns)) / float64(n*n)
}

// LakosMetrics computes the whole-graph Lakos numbers. CCD here counts
// each component itself plus its transitive dependencies.
func (q *Query) LakosMetrics() domain.LakosMetrics {
	n := q.graph.Len()
	if n == 0 {
		return domain.LakosMetrics{}
	}
	ccd := 0
	for _, t := range q.graph.Types() {
		ccd += 1 + q.DependsOnScore(t.ID)
	}
	acd := float64(ccd) / float64(n)
	nccd := 0.0
	if n > 1 {
		nccd = float64(ccd) / (float64(n) * math.Log2(float64(n)))
	}
	return domain.LakosMetrics{
		Components: n,
		CCD:        ccd,
		ACD:        acd,
		NCCD:       nccd,
		RACD:       acd / float64(n),
	}
}

// AnalyzePackageCoupling computes Ca, Ce and abstractness for one
// namespace. Instability and distance derive from the returned value.
func (q *Query) AnalyzePackageCoupling(ns string) domain.CouplingMetrics {
	members := q.graph.TypesInNamespace(ns)
	inside := make(map[domain.TypeID]bool, len(members))
	abstract := 0
	for _, t := range members {
		inside[t.ID] = true
		if t.IsAbstract() {
			abstract++
		}
	}

	afferent := make(map[domain.TypeID]bool)
	efferent := make(map[domain.TypeID]bool)
	for _, t := range members {
		for _, dep := range q.graph.DependenciesOf(t.ID) {
			if !inside[dep] {
				efferent[dep] = true
			}
		}
		for _, dependent := range q.graph.DependentsOf(t.ID) {
			if !inside[dependent] {
				afferent[dependent] = true
			}
		}
	}

	abstractness := 0.0
	if len(members) > 0 {
		abstractness = float64(abstract) / float64(len(members))
	}
	return domain.CouplingMetrics{
		Namespace:    ns,
		Afferent:     len(afferent),
		Efferent:     len(efferent),
		Abstractness: abstractness,
	}
}

// AllPackageCoupling computes coupling for every namespace, ordered by
// namespace.
func (q *Query) AllPackageCoupling() []domain.CouplingMetrics {
	namespaces := q.graph.Namespaces()
	out := make([]domain.CouplingMetrics, 0, len(namespaces))
	for _, ns := range namespaces {
		out = append(out, q.AnalyzePackageCoupling(ns))
	}
	return out
}

// FindAggregates groups each type classified AGGREGATE_ROOT with the
// entities and value objects reachable from it, ordered by root id.
func (q *Query) FindAggregates() []domain.AggregateInfo {
	var out []domain.AggregateInfo
	for _, res := range q.results.ByTarget(domain.TargetDomain) {
		if res.Status != domain.StatusClassified || res.Kind != string(domain.KindAggregateRoot) {
			continue
		}
		agg := domain.AggregateInfo{Root: res.Subject}
		visited := map[domain.TypeID]bool{res.Subject: true}
		stack := []domain.TypeID{res.Subject}
		for len(stack) > 0 {
			cur := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			for _, dep := range q.graph.DependenciesOf(cur) {
				if visited[dep] {
					continue
				}
				visited[dep] = true
				member, ok := q.results.ByID[dep]
				if !ok || member.Status != domain.StatusClassified {
					continue
				}
				switch member.Kind {
				case string(domain.KindEntity):
					agg.Entities = append(agg.Entities, dep)
					stack = append(stack, dep)
				case string(domain.KindValueObject), string(domain.KindIdentifier):
					agg.ValueObjects = append(agg.ValueObjects, dep)
					stack = append(stack, dep)
				}
			}
		}
		sortIDs(agg.Entities)
		sortIDs(agg.ValueObjects)
		out = append(out, agg)
	}
	return out
}

// AggregateCohesion is the ratio of structural edges internal to the
// aggregate over (member count − 1), capped at 1. Single-member
// aggregates score 1.
func (q *Query) AggregateCohesion(agg domain.AggregateInfo) float64 {
	members := 1 + len(agg.Entities) + len(agg.ValueObjects)
	if members <= 1 {
		return 1
	}
	ids := make([]domain.TypeID, 0, members)
	ids = append(ids, agg.Root)
	ids = append(ids, agg.Entities...)
	ids = append(ids, agg.ValueObjects...)
	internal := 0
	for _, id := range ids {
		for _, e := range q.graph.EdgesFrom(id) {
			if agg.Contains(e.To) {
				internal++
			}
		}
	}
	cohesion := float64(internal) / float64(members-1)
	if cohesion > 1 {
		return 1
	}
	return cohesion
}

// LayerOf derives the architectural layer of a type from its anchor and
// classification.
func (q *Query) LayerOf(id domain.TypeID) string {
	if a, ok := q.results.Anchors[id]; ok {
		switch a.Kind {
		case domain.AnchorInfra:
			return LayerInfrastructure
		case domain.AnchorDriving:
			return LayerPresentation
		}
	}
	res, ok := q.results.ByID[id]
	if !ok || res.Status != domain.StatusClassified {
		return LayerUnknown
	}
	if res.Target == domain.TargetPort {
		return LayerApplication
	}
	if res.Kind == string(domain.KindApplicationService) {
		return LayerApplication
	}
	return LayerDomain
}

// FindLayerViolations reports dependencies from domain or application
// layer types into the infrastructure layer, ordered by (from, to).
func (q *Query) FindLayerViolations() []domain.LayerViolation {
	var out []domain.LayerViolation
	for _, t := range q.graph.Types() {
		fromLayer := q.LayerOf(t.ID)
		if fromLayer != LayerDomain && fromLayer != LayerApplication {
			continue
		}
		for _, dep := range q.graph.DependenciesOf(t.ID) {
			if q.LayerOf(dep) == LayerInfrastructure {
				out = append(out, domain.LayerViolation{
					From:      t.ID,
					To:        dep,
					FromLayer: fromLayer,
					ToLayer:   LayerInfrastructure,
				})
			}
		}
	}
	return out
}

// FindStabilityViolations reports dependencies where an unstable namespace
// reaches into a more stable one, ordered by (from, to).
func (q *Query) FindStabilityViolations() []domain.StabilityViolation {
	instability := make(map[string]float64)
	for _, ns := range q.graph.Namespaces() {
		instability[ns] = q.AnalyzePackageCoupling(ns).Instability()
	}

	var out []domain.StabilityViolation
	for _, t := range q.graph.Types() {
		from := instability[t.Namespace]
		for _, dep := range q.graph.DependenciesOf(t.ID) {
			ns := q.namespaceOf(dep)
			if ns == t.Namespace {
				continue
			}
			to := instability[ns]
			if from > to {
				out = append(out, domain.StabilityViolation{
					From:            t.ID,
					To:              dep,
					FromInstability: from,
					ToInstability:   to,
				})
			}
		}
	}
	return out
}

func (q *Query) namespaceOf(id domain.TypeID) string {
	if t, ok := q.graph.Node(id); ok {
		return t.Namespace
	}
	return ""
}

// contextOf maps a namespace to its bounded context: the first segment
// below the configured root.
func (q *Query) contextOf(ns string) string {
	if ns == q.ContextRoot {
		return ""
	}
	prefix := q.ContextRoot + "."
	rest := ""
	switch {
	case strings.HasPrefix(ns, prefix):
		rest = strings.TrimPrefix(ns, prefix)
	case strings.HasPrefix(ns, q.ContextRoot+"/"):
		rest = strings.TrimPrefix(ns, q.ContextRoot+"/")
	default:
		return ""
	}
	if i := strings.IndexAny(rest, "./"); i >= 0 {
		return rest[:i]
	}
	return rest
}

// findCycles enumerates every simple cycle in the adjacency map. Each
// cycle starts at its smallest node; the search from a start node only
// walks nodes not smaller than it, so no cycle is reported twice.
func findCycles(adj map[string][]string, kind domain.CycleKind) []domain.DependencyCycle {
	nodes := make([]string, 0, len(adj))
	for n := range adj {
		nodes = append(nodes, n)
		sort.Strings(adj[n])
	}
	sort.Strings(nodes)

	var cycles []domain.DependencyCycle
	for _, start := range nodes {
		onPath := map[string]bool{start: true}
		path := []string{start}
		var walk func(cur string)
		walk = func(cur string) {
			for _, next := range adj[cur] {
				if next < start {
					continue
				}
				if next == start {
					cycle := make([]string, len(path)+1)
					copy(cycle, path)
					cycle[len(path)] = start
					cycles = append(cycles, domain.DependencyCycle{Kind: kind, Path: cycle})
					continue
				}
				if onPath[next] {
					continue
				}
				onPath[next] = true
				path = append(path, next)
				walk(next)
				path = path[:len(path)-1]
				delete(onPath, next)
			}
		}
		walk(start)
	}
	return cycles
}

func sortIDs(ids []domain.TypeID) {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
}
