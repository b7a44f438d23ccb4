package classify

import (
	"fmt"
	"strings"

	"github.com/pmaojo/hexalens/internal/hexalens/domain"
	"github.com/pmaojo/hexalens/internal/hexalens/graph"
)

// AnchorConfig holds the marker sets the anchor detector matches against.
// The defaults cover the common JVM and Go frameworks; config can extend
// every set.
type AnchorConfig struct {
	DrivingTags       []string `json:"driving_tags,omitempty"`
	InfraTags         []string `json:"infra_tags,omitempty"`
	InfraSegments     []string `json:"infra_segments,omitempty"`
	InfraTypePrefixes []string `json:"infra_type_prefixes,omitempty"`
}

// DefaultAnchorConfig returns the built-in marker sets.
func DefaultAnchorConfig() AnchorConfig {
	return AnchorConfig{
		DrivingTags: []string{
			"RestController", "Controller", "ControllerAdvice",
			"KafkaListener", "JmsListener", "RabbitListener",
			"Scheduled", "QueryMapping", "MutationMapping",
			"Path", "HttpHandler",
		},
		InfraTags: []string{
			"Repository", "Entity", "Table", "Embeddable", "Document",
			"gorm", "bun", "db", "sqlx",
		},
		InfraSegments: []string{
			"infrastructure", "infra", "adapter", "adapters", "persistence",
		},
		InfraTypePrefixes: []string{
			"org.springframework.jdbc.", "org.springframework.data.",
			"org.springframework.web.client.", "org.springframework.kafka.",
			"org.springframework.amqp.", "jakarta.persistence.",
			"javax.persistence.", "feign.",
			"database/sql.", "gorm.io/", "github.com/jmoiron/sqlx.",
			"github.com/redis/", "net/http.Client", "go.mongodb.org/",
		},
	}
}

// DetectAnchors labels every class and record declaration with an anchor.
// Interfaces, enums and annotation types are not anchored. Evaluation is
// strict priority order, first match wins:
//
//  1. driving metadata tag       -> DRIVING_ANCHOR
//  2. infrastructure tag         -> INFRA_ANCHOR
//  3. infrastructure namespace   -> INFRA_ANCHOR
//  4. infrastructure field type  -> INFRA_ANCHOR
//  5. default                    -> DOMAIN_ANCHOR
func DetectAnchors(g *graph.Graph, cfg AnchorConfig) map[domain.TypeID]domain.AnchorResult {
	anchors := make(map[domain.TypeID]domain.AnchorResult)
	for _, t := range g.Types() {
		if t.Kind != domain.DeclClass && t.Kind != domain.DeclRecord {
			continue
		}
		anchors[t.ID] = detectAnchor(t, g, cfg)
	}
	return anchors
}

func detectAnchor(t *domain.TypeNode, g *graph.Graph, cfg AnchorConfig) domain.AnchorResult {
	for _, tag := range t.Tags {
		if containsTag(cfg.DrivingTags, tag.Name) {
			return domain.AnchorResult{
				Type: t.ID,
				Kind: domain.AnchorDriving,
				Evidence: []domain.Evidence{domain.TagEvidence(
					fmt.Sprintf("tag '%s' marks a framework entry point", tag.Name), string(t.ID))},
			}
		}
	}

	for _, tag := range t.Tags {
		if containsTag(cfg.InfraTags, tag.Name) {
			return domain.AnchorResult{
				Type: t.ID,
				Kind: domain.AnchorInfra,
				Evidence: []domain.Evidence{domain.TagEvidence(
					fmt.Sprintf("tag '%s' marks infrastructure", tag.Name), string(t.ID))},
			}
		}
	}

	if seg, ok := matchInfraNamespace(t.Namespace, cfg.InfraSegments); ok {
		return domain.AnchorResult{
			Type: t.ID,
			Kind: domain.AnchorInfra,
			Evidence: []domain.Evidence{domain.StructuralEvidence(
				fmt.Sprintf("namespace '%s' contains infrastructure segment '%s'", t.Namespace, seg))},
		}
	}

	for _, f := range g.FieldsOf(t.ID) {
		if prefix, ok := matchInfraType(f.Type.Qualified, cfg.InfraTypePrefixes); ok {
			return domain.AnchorResult{
				Type: t.ID,
				Kind: domain.AnchorInfra,
				Evidence: []domain.Evidence{domain.DependencyEvidence(
					fmt.Sprintf("field '%s' has infrastructure type '%s' (prefix '%s')",
						f.Name, f.Type.Qualified, prefix), f.ID)},
			}
		}
	}

	return domain.AnchorResult{Type: t.ID, Kind: domain.AnchorDomain}
}

func containsTag(set []string, name string) bool {
	for _, s := range set {
		if s == name {
			return true
		}
	}
	return false
}

func matchInfraNamespace(ns string, segments []string) (string, bool) {
	if ns == "" {
		return "", false
	}
	parts := strings.FieldsFunc(strings.ToLower(ns), func(r rune) bool {
		return r == '.' || r == '/'
	})
	for _, p := range parts {
		for _, seg := range segments {
			if p == seg {
				return seg, true
			}
		}
	}
	return "", false
}

func matchInfraType(qualified string, prefixes []string) (string, bool) {
	if qualified == "" {
		return "", false
	}
	for _, p := range prefixes {
		if strings.HasPrefix(qualified, p) {
			return p, true
		}
	}
	return "", false
}
