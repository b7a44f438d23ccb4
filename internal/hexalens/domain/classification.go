package domain

// AnchorKind is the pre-classification label for a type.
type AnchorKind string

const (
	AnchorInfra   AnchorKind = "INFRA_ANCHOR"
	AnchorDriving AnchorKind = "DRIVING_ANCHOR"
	AnchorDomain  AnchorKind = "DOMAIN_ANCHOR"
)

// AnchorResult labels one type with its anchor and the evidence that
// triggered it.
type AnchorResult struct {
	Type     TypeID     `json:"type"`
	Kind     AnchorKind `json:"kind"`
	Evidence []Evidence `json:"evidence,omitempty"`
}

// Confidence grades how certain a criterion match is.
// Higher values win confidence tie-breaks.
type Confidence int

const (
	ConfidenceLow Confidence = iota + 1
	ConfidenceMedium
	ConfidenceHigh
	ConfidenceExplicit
)

var confidenceNames = map[Confidence]string{
	ConfidenceLow:      "LOW",
	ConfidenceMedium:   "MEDIUM",
	ConfidenceHigh:     "HIGH",
	ConfidenceExplicit: "EXPLICIT",
}

func (c Confidence) String() string {
	if name, ok := confidenceNames[c]; ok {
		return name
	}
	return "UNKNOWN"
}

// EvidenceKind tags the variant of a piece of evidence.
type EvidenceKind string

const (
	EvidenceStructural EvidenceKind = "STRUCTURAL"
	EvidenceBehavioral EvidenceKind = "BEHAVIORAL"
	EvidenceDependency EvidenceKind = "DEPENDENCY"
	EvidenceNaming     EvidenceKind = "NAMING"
	EvidenceTag        EvidenceKind = "TAG"
)

// Evidence is a structured justification citing the triggering fact.
// Refs point at the node ids (types, fields, methods) involved.
type Evidence struct {
	Kind        EvidenceKind `json:"kind"`
	Description string       `json:"description"`
	Refs        []string     `json:"refs,omitempty"`
}

// StructuralEvidence builds a STRUCTURAL evidence entry.
func StructuralEvidence(description string, refs ...string) Evidence {
	return Evidence{Kind: EvidenceStructural, Description: description, Refs: refs}
}

// BehavioralEvidence builds a BEHAVIORAL evidence entry.
func BehavioralEvidence(description string, refs ...string) Evidence {
	return Evidence{Kind: EvidenceBehavioral, Description: description, Refs: refs}
}

// DependencyEvidence builds a DEPENDENCY evidence entry.
func DependencyEvidence(description string, refs ...string) Evidence {
	return Evidence{Kind: EvidenceDependency, Description: description, Refs: refs}
}

// NamingEvidence builds a NAMING evidence entry.
func NamingEvidence(description string, refs ...string) Evidence {
	return Evidence{Kind: EvidenceNaming, Description: description, Refs: refs}
}

// TagEvidence builds a TAG evidence entry.
func TagEvidence(description string, refs ...string) Evidence {
	return Evidence{Kind: EvidenceTag, Description: description, Refs: refs}
}

// ClassificationTarget separates the two classification passes.
type ClassificationTarget string

const (
	TargetDomain ClassificationTarget = "DOMAIN"
	TargetPort   ClassificationTarget = "PORT"
)

// DomainKind is the DDD role assigned by the domain pass.
type DomainKind string

const (
	KindAggregateRoot      DomainKind = "AGGREGATE_ROOT"
	KindEntity             DomainKind = "ENTITY"
	KindValueObject        DomainKind = "VALUE_OBJECT"
	KindIdentifier         DomainKind = "IDENTIFIER"
	KindDomainEvent        DomainKind = "DOMAIN_EVENT"
	KindDomainService      DomainKind = "DOMAIN_SERVICE"
	KindApplicationService DomainKind = "APPLICATION_SERVICE"
)

// PortKind is the hexagonal port role assigned by the port pass.
type PortKind string

const (
	PortRepository PortKind = "REPOSITORY"
	PortUseCase    PortKind = "USE_CASE"
	PortGateway    PortKind = "GATEWAY"
	PortCommand    PortKind = "COMMAND"
	PortQuery      PortKind = "QUERY"
)

// PortDirection distinguishes inbound from outbound boundary interfaces.
type PortDirection string

const (
	DirectionDriving PortDirection = "DRIVING"
	DirectionDriven  PortDirection = "DRIVEN"
)

// ClassificationStatus is the outcome of classifying one subject.
type ClassificationStatus string

const (
	StatusClassified   ClassificationStatus = "CLASSIFIED"
	StatusConflict     ClassificationStatus = "CONFLICT"
	StatusUnclassified ClassificationStatus = "UNCLASSIFIED"
)

// Conflict records a criterion that competed with the winner
// (or, for CONFLICT status, one of the tied contenders).
type Conflict struct {
	Kind       string     `json:"kind"`
	Criterion  string     `json:"criterion"`
	Confidence Confidence `json:"confidence"`
	Priority   int        `json:"priority"`
	Detail     string     `json:"detail,omitempty"`
}

// ClassificationResult is the immutable outcome for one subject.
// Direction is set only for PORT-target results.
type ClassificationResult struct {
	Subject       TypeID               `json:"subject"`
	Target        ClassificationTarget `json:"target"`
	Kind          string               `json:"kind,omitempty"`
	Direction     PortDirection        `json:"direction,omitempty"`
	Confidence    Confidence           `json:"confidence,omitempty"`
	Status        ClassificationStatus `json:"status"`
	Criterion     string               `json:"criterion,omitempty"`
	Priority      int                  `json:"priority,omitempty"`
	Justification string               `json:"justification,omitempty"`
	Evidence      []Evidence           `json:"evidence,omitempty"`
	Conflicts     []Conflict           `json:"conflicts,omitempty"`
}

// Unclassified builds an UNCLASSIFIED result for the given target.
func Unclassified(subject TypeID, target ClassificationTarget) ClassificationResult {
	return ClassificationResult{Subject: subject, Target: target, Status: StatusUnclassified}
}
