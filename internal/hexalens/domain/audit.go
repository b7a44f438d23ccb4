package domain

import "math"

// CycleKind is the granularity at which a dependency cycle was found.
type CycleKind string

const (
	CycleTypeLevel           CycleKind = "TYPE_LEVEL"
	CyclePackageLevel        CycleKind = "PACKAGE_LEVEL"
	CycleBoundedContextLevel CycleKind = "BOUNDED_CONTEXT_LEVEL"
)

// DependencyCycle is an ordered path of node identifiers that returns to
// its start. Path holds at least three entries (start, ..., start).
type DependencyCycle struct {
	Kind CycleKind `json:"kind"`
	Path []string  `json:"path"`
}

// CouplingMetrics holds the package coupling numbers for one namespace.
type CouplingMetrics struct {
	Namespace    string  `json:"namespace"`
	Afferent     int     `json:"afferent"`
	Efferent     int     `json:"efferent"`
	Abstractness float64 `json:"abstractness"`
}

// Instability is Ce/(Ca+Ce), or 0 when the namespace has no couplings.
func (c CouplingMetrics) Instability() float64 {
	total := c.Afferent + c.Efferent
	if total == 0 {
		return 0
	}
	return float64(c.Efferent) / float64(total)
}

// Distance is |A + I - 1|, the distance from the main sequence.
func (c CouplingMetrics) Distance() float64 {
	return math.Abs(c.Abstractness + c.Instability() - 1)
}

// LakosMetrics aggregates transitive coupling for a component set.
type LakosMetrics struct {
	Components int     `json:"components"`
	CCD        int     `json:"ccd"`
	ACD        float64 `json:"acd"`
	NCCD       float64 `json:"nccd"`
	RACD       float64 `json:"racd"`
}

// AggregateInfo groups an aggregate root with the entities and value
// objects reachable from it.
type AggregateInfo struct {
	Root         TypeID   `json:"root"`
	Entities     []TypeID `json:"entities,omitempty"`
	ValueObjects []TypeID `json:"value_objects,omitempty"`
}

// Contains reports whether the aggregate includes the given type.
func (a AggregateInfo) Contains(id TypeID) bool {
	if a.Root == id {
		return true
	}
	for _, e := range a.Entities {
		if e == id {
			return true
		}
	}
	for _, v := range a.ValueObjects {
		if v == id {
			return true
		}
	}
	return false
}

// LayerViolation is a dependency from a type to a type in a layer it must
// not reach.
type LayerViolation struct {
	From      TypeID `json:"from"`
	To        TypeID `json:"to"`
	FromLayer string `json:"from_layer"`
	ToLayer   string `json:"to_layer"`
}

// StabilityViolation is an unstable type depending on a more stable one.
type StabilityViolation struct {
	From            TypeID  `json:"from"`
	To              TypeID  `json:"to"`
	FromInstability float64 `json:"from_instability"`
	ToInstability   float64 `json:"to_instability"`
}

// Severity grades a constraint violation.
type Severity string

const (
	SeverityBlocker  Severity = "BLOCKER"
	SeverityCritical Severity = "CRITICAL"
	SeverityMajor    Severity = "MAJOR"
	SeverityMinor    Severity = "MINOR"
	SeverityInfo     Severity = "INFO"
)

// Violation is one typed finding produced by a constraint validator.
type Violation struct {
	Constraint string          `json:"constraint"`
	Severity   Severity        `json:"severity"`
	Message    string          `json:"message"`
	Types      []TypeID        `json:"types,omitempty"`
	Location   *SourceLocation `json:"location,omitempty"`
	Evidence   []Evidence      `json:"evidence,omitempty"`
}

// Health score weights, in percent. They sum to 100.
const (
	weightDDD        = 25
	weightHex        = 25
	weightDependency = 20
	weightCoupling   = 15
	weightCohesion   = 15
)

// HealthScore is the weighted composite quality score of a codebase.
type HealthScore struct {
	DDDCompliance     int    `json:"ddd_compliance"`
	HexCompliance     int    `json:"hex_compliance"`
	DependencyQuality int    `json:"dependency_quality"`
	Coupling          int    `json:"coupling"`
	Cohesion          int    `json:"cohesion"`
	Overall           int    `json:"overall"`
	Grade             string `json:"grade"`
}

// ComputeHealthScore combines the five sub-scores into the weighted overall
// score and derives the letter grade.
func ComputeHealthScore(ddd, hex, dependency, coupling, cohesion int) HealthScore {
	overall := (ddd*weightDDD + hex*weightHex + dependency*weightDependency +
		coupling*weightCoupling + cohesion*weightCohesion) / 100
	return HealthScore{
		DDDCompliance:     ddd,
		HexCompliance:     hex,
		DependencyQuality: dependency,
		Coupling:          coupling,
		Cohesion:          cohesion,
		Overall:           overall,
		Grade:             gradeFor(overall),
	}
}

func gradeFor(overall int) string {
	switch {
	case overall >= 90:
		return "A"
	case overall >= 80:
		return "B"
	case overall >= 70:
		return "C"
	case overall >= 60:
		return "D"
	default:
		return "F"
	}
}
