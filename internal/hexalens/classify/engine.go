// Package classify implements the criteria-based classification engine:
// the anchor pre-pass, the domain and port criteria sets, and the two-pass
// orchestrator that merges their results.
package classify

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pmaojo/hexalens/internal/hexalens/domain"
	"github.com/pmaojo/hexalens/internal/hexalens/graph"
)

// Context is the read-only state a criterion may consult. Ports holds the
// port-pass results and is empty while the port pass itself runs.
type Context struct {
	Graph   *graph.Graph
	Anchors map[domain.TypeID]domain.AnchorResult
	Ports   map[domain.TypeID]domain.ClassificationResult
}

// InfraAnchored reports whether the type was anchored INFRA_ANCHOR.
func (c *Context) InfraAnchored(id domain.TypeID) bool {
	a, ok := c.Anchors[id]
	return ok && a.Kind == domain.AnchorInfra
}

// MatchResult is the outcome of evaluating one criterion against one
// subject. The zero value is NoMatch.
type MatchResult struct {
	Matched       bool
	Confidence    domain.Confidence
	Justification string
	Evidence      []domain.Evidence
}

// NoMatch is normal control flow, not an error.
func NoMatch() MatchResult { return MatchResult{} }

// Match builds a positive result with the given confidence and evidence.
func Match(conf domain.Confidence, justification string, evidence ...domain.Evidence) MatchResult {
	return MatchResult{
		Matched:       true,
		Confidence:    conf,
		Justification: justification,
		Evidence:      evidence,
	}
}

// Criterion is a named, prioritized, side-effect-free predicate. Criteria
// never share mutable state, so evaluation order does not affect the
// outcome; only declared priority does.
type Criterion interface {
	Name() string
	Priority() int
	// TargetKind is the kind this criterion assigns when it matches.
	TargetKind() string
	// Direction is set for port criteria and empty for domain criteria.
	Direction() domain.PortDirection
	// AppliesTo is the applicability guard (e.g. "only interfaces").
	AppliesTo(t *domain.TypeNode) bool
	Evaluate(t *domain.TypeNode, ctx *Context) MatchResult
}

// contribution is one positive criterion match, flattened for resolution.
type contribution struct {
	kind          string
	direction     domain.PortDirection
	criterion     string
	priority      int
	confidence    domain.Confidence
	justification string
	evidence      []domain.Evidence
}

// Engine evaluates a fixed list of criteria against a subject and resolves
// the matches into one ClassificationResult.
type Engine struct {
	criteria []Criterion
	target   domain.ClassificationTarget
}

// NewEngine builds an engine for the given target with a fixed criteria
// list.
func NewEngine(target domain.ClassificationTarget, criteria []Criterion) *Engine {
	return &Engine{criteria: criteria, target: target}
}

// Classify evaluates every applicable criterion and resolves the matches.
//
// Resolution: the numerically highest priority wins. If all top-priority
// matches agree on kind they collapse into a single CLASSIFIED result with
// merged evidence; if they disagree the result is CONFLICT, listing every
// contender. No match at all yields UNCLASSIFIED.
func (e *Engine) Classify(t *domain.TypeNode, ctx *Context) domain.ClassificationResult {
	var contributions []contribution
	for _, c := range e.criteria {
		if !c.AppliesTo(t) {
			continue
		}
		res := c.Evaluate(t, ctx)
		if !res.Matched {
			continue
		}
		contributions = append(contributions, contribution{
			kind:          c.TargetKind(),
			direction:     c.Direction(),
			criterion:     c.Name(),
			priority:      c.Priority(),
			confidence:    res.Confidence,
			justification: res.Justification,
			evidence:      res.Evidence,
		})
	}
	return e.resolve(t.ID, contributions)
}

func (e *Engine) resolve(subject domain.TypeID, contributions []contribution) domain.ClassificationResult {
	if len(contributions) == 0 {
		return domain.Unclassified(subject, e.target)
	}

	// Deterministic order: priority desc, confidence desc, name asc.
	sort.Slice(contributions, func(i, j int) bool {
		a, b := contributions[i], contributions[j]
		if a.priority != b.priority {
			return a.priority > b.priority
		}
		if a.confidence != b.confidence {
			return a.confidence > b.confidence
		}
		return a.criterion < b.criterion
	})

	top := contributions[0].priority
	var topSet []contribution
	for _, c := range contributions {
		if c.priority == top {
			topSet = append(topSet, c)
		}
	}

	kinds := make(map[string]bool)
	for _, c := range topSet {
		kinds[c.kind] = true
	}
	if len(kinds) > 1 {
		return e.conflict(subject, topSet)
	}

	// Single kind at the top priority: the highest-confidence contender
	// wins; same-kind agreement corroborates, so its evidence is merged in.
	winner := topSet[0]
	evidence := append([]domain.Evidence(nil), winner.evidence...)
	for _, c := range topSet[1:] {
		evidence = append(evidence, c.evidence...)
	}

	var conflicts []domain.Conflict
	for _, c := range contributions {
		if c.kind != winner.kind {
			conflicts = append(conflicts, domain.Conflict{
				Kind:       c.kind,
				Criterion:  c.criterion,
				Confidence: c.confidence,
				Priority:   c.priority,
				Detail:     "also matched: " + c.justification,
			})
		}
	}

	return domain.ClassificationResult{
		Subject:       subject,
		Target:        e.target,
		Kind:          winner.kind,
		Direction:     winner.direction,
		Confidence:    winner.confidence,
		Status:        domain.StatusClassified,
		Criterion:     winner.criterion,
		Priority:      winner.priority,
		Justification: winner.justification,
		Evidence:      evidence,
		Conflicts:     conflicts,
	}
}

func (e *Engine) conflict(subject domain.TypeID, topSet []contribution) domain.ClassificationResult {
	var parts []string
	var conflicts []domain.Conflict
	for _, c := range topSet {
		parts = append(parts, fmt.Sprintf("%s(%s)", c.criterion, c.kind))
		conflicts = append(conflicts, domain.Conflict{
			Kind:       c.kind,
			Criterion:  c.criterion,
			Confidence: c.confidence,
			Priority:   c.priority,
			Detail:     c.justification,
		})
	}
	return domain.ClassificationResult{
		Subject:       subject,
		Target:        e.target,
		Status:        domain.StatusConflict,
		Priority:      topSet[0].priority,
		Justification: "tied criteria disagree: " + strings.Join(parts, ", "),
		Conflicts:     conflicts,
	}
}
