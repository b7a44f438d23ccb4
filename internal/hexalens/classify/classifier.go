package classify

import (
	"fmt"
	"sort"

	"github.com/pmaojo/hexalens/internal/hexalens/domain"
	"github.com/pmaojo/hexalens/internal/hexalens/graph"
)

// Results is the immutable outcome of one classification run.
type Results struct {
	ByID        map[domain.TypeID]domain.ClassificationResult
	Anchors     map[domain.TypeID]domain.AnchorResult
	Diagnostics []domain.Diagnostic
}

// All returns every result ordered by subject id.
func (r *Results) All() []domain.ClassificationResult {
	out := make([]domain.ClassificationResult, 0, len(r.ByID))
	for _, res := range r.ByID {
		out = append(out, res)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Subject < out[j].Subject })
	return out
}

// ByTarget returns the results for one target, ordered by subject id.
func (r *Results) ByTarget(target domain.ClassificationTarget) []domain.ClassificationResult {
	var out []domain.ClassificationResult
	for _, res := range r.All() {
		if res.Target == target {
			out = append(out, res)
		}
	}
	return out
}

// ByStatus returns the results with one status, ordered by subject id.
func (r *Results) ByStatus(status domain.ClassificationStatus) []domain.ClassificationResult {
	var out []domain.ClassificationResult
	for _, res := range r.All() {
		if res.Status == status {
			out = append(out, res)
		}
	}
	return out
}

// Classifier runs anchor detection, the port pass and the domain pass, in
// that order. The domain pass reads the port pass results through Context.
type Classifier struct {
	profile *Profile
	anchors AnchorConfig
}

// NewClassifier builds a classifier for the given profile and anchor
// configuration. A nil profile means the default profile.
func NewClassifier(profile *Profile, anchors AnchorConfig) *Classifier {
	if profile == nil {
		profile = DefaultProfile()
	}
	return &Classifier{profile: profile, anchors: anchors}
}

// Run classifies every declared type in the graph. A panic while
// classifying one subject is recorded as an ERROR diagnostic and the
// subject stays UNCLASSIFIED; the run always completes.
func (c *Classifier) Run(g *graph.Graph) *Results {
	results := &Results{
		ByID:    make(map[domain.TypeID]domain.ClassificationResult, g.Len()),
		Anchors: DetectAnchors(g, c.anchors),
	}

	portEngine := NewEngine(domain.TargetPort, c.profile.PortCriteria())
	portCtx := &Context{Graph: g, Anchors: results.Anchors}
	ports := make(map[domain.TypeID]domain.ClassificationResult)
	for _, t := range g.Types() {
		if !t.IsInterface() {
			continue
		}
		res, diag := c.classifyOne(portEngine, t, portCtx, domain.TargetPort)
		if diag != nil {
			results.Diagnostics = append(results.Diagnostics, *diag)
		}
		ports[t.ID] = res
		results.ByID[t.ID] = res
	}

	domainEngine := NewEngine(domain.TargetDomain, c.profile.DomainCriteria())
	domainCtx := &Context{Graph: g, Anchors: results.Anchors, Ports: ports}
	for _, t := range g.Types() {
		if t.IsInterface() {
			continue
		}
		res, diag := c.classifyOne(domainEngine, t, domainCtx, domain.TargetDomain)
		if diag != nil {
			results.Diagnostics = append(results.Diagnostics, *diag)
		}
		results.ByID[t.ID] = res
	}

	return results
}

func (c *Classifier) classifyOne(engine *Engine, t *domain.TypeNode, ctx *Context, target domain.ClassificationTarget) (res domain.ClassificationResult, diag *domain.Diagnostic) {
	defer func() {
		if r := recover(); r != nil {
			res = domain.Unclassified(t.ID, target)
			diag = &domain.Diagnostic{
				Level:   domain.DiagError,
				Subject: string(t.ID),
				Message: fmt.Sprintf("classification panicked: %v", r),
			}
		}
	}()

	if c.profile.Excluded(t.ID) {
		return domain.Unclassified(t.ID, target), nil
	}
	if spec, ok := c.profile.Overrides[t.ID]; ok && spec.Target == target {
		return overrideResult(t.ID, spec), nil
	}
	return engine.Classify(t, ctx), nil
}

func overrideResult(subject domain.TypeID, spec OverrideSpec) domain.ClassificationResult {
	justification := "pinned by profile override"
	if spec.Reason != "" {
		justification = spec.Reason
	}
	return domain.ClassificationResult{
		Subject:       subject,
		Target:        spec.Target,
		Kind:          spec.Kind,
		Direction:     spec.Direction,
		Confidence:    domain.ConfidenceExplicit,
		Status:        domain.StatusClassified,
		Criterion:     "override",
		Justification: justification,
		Evidence: []domain.Evidence{
			domain.TagEvidence("profile override pins this classification", string(subject)),
		},
	}
}
