package audit

import (
	"math"

	"github.com/pmaojo/hexalens/internal/hexalens/domain"
)

const (
	cyclePenalty     = 5
	stabilityPenalty = 3
)

// dddConstraints are the findings scored against DDD compliance; every
// other constraint scores against hexagonal compliance.
var dddConstraints = map[string]bool{
	"dependency-direction": true,
	"layer-isolation":      true,
}

// HealthCalculator derives the composite health score from a finished
// audit.
type HealthCalculator struct{}

// Calculate scores the codebase from its violations, cycles and coupling
// numbers. Sub-scores live in [0,100].
func (HealthCalculator) Calculate(q *Query, violations []domain.Violation, cycles []domain.DependencyCycle) domain.HealthScore {
	classified := 0
	for _, res := range q.results.All() {
		if res.Status == domain.StatusClassified {
			classified++
		}
	}

	dddViolations, hexViolations := 0, 0
	for _, v := range violations {
		if dddConstraints[v.Constraint] {
			dddViolations++
		} else {
			hexViolations++
		}
	}

	// A cross-package type cycle shows up again at package level; only the
	// type-level findings count toward the penalty.
	typeCycles := 0
	for _, c := range cycles {
		if c.Kind == domain.CycleTypeLevel {
			typeCycles++
		}
	}

	stability := len(q.FindStabilityViolations())
	dependency := clamp(100 - cyclePenalty*typeCycles - stabilityPenalty*stability)

	coupling := 100
	if all := q.AllPackageCoupling(); len(all) > 0 {
		total := 0.0
		for _, c := range all {
			total += c.Distance()
		}
		coupling = int(math.Round((1 - total/float64(len(all))) * 100))
	}

	nccd := q.LakosMetrics().NCCD
	cohesion := int(math.Round((1 - math.Min(nccd, 2)/2) * 100))

	return domain.ComputeHealthScore(
		proportionScore(dddViolations, classified),
		proportionScore(hexViolations, classified),
		dependency,
		clamp(coupling),
		clamp(cohesion),
	)
}

// proportionScore maps a violation count against the classified
// population to [0,100]. An empty population with no findings scores 100.
func proportionScore(violations, population int) int {
	if violations == 0 {
		return 100
	}
	if population == 0 {
		return 0
	}
	ratio := float64(violations) / float64(population)
	return clamp(int(math.Round((1 - math.Min(ratio, 1)) * 100)))
}

func clamp(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
