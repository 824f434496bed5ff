package export

import (
	"fmt"
	"hash/fnv"
	"sort"
	"strings"

	"github.com/vanderheijden86/casedesk/pkg/analysis"
	"github.com/vanderheijden86/casedesk/pkg/model"
)

// MermaidConfig configures the Mermaid graph generation.
type MermaidConfig struct {
	ShowNoLinksNode bool // If true, adds a "No linked cases" node when no edges exist
	// LinkedOnly drops cases that share nothing with another case.
	LinkedOnly bool
}

// GenerateLinkGraph draws the cases as a Mermaid graph with one edge per
// shared caller or related entity. Nodes are classed by severity.
func GenerateLinkGraph(cases []model.Case, links *analysis.Links, config MermaidConfig) string {
	var sb strings.Builder

	sb.WriteString("graph LR\n")

	// Class definitions for styling
	sb.WriteString("    classDef high fill:#FF5555,stroke:#333,color:#000\n")
	sb.WriteString("    classDef medium fill:#FFB86C,stroke:#333,color:#000\n")
	sb.WriteString("    classDef low fill:#50FA7B,stroke:#333,color:#000\n")
	sb.WriteString("    classDef done fill:#6272A4,stroke:#333,color:#fff\n")
	sb.WriteString("\n")

	// Sort cases for deterministic output
	sorted := make([]model.Case, 0, len(cases))
	for _, c := range cases {
		if config.LinkedOnly && (links == nil || len(links.Neighbors(c.ID)) == 0) {
			continue
		}
		sorted = append(sorted, c)
	}
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].ID < sorted[j].ID
	})

	// Build deterministic, collision-free Mermaid IDs
	safeIDMap := make(map[string]string)
	usedSafe := make(map[string]bool)

	getSafeID := func(orig string) string {
		if safe, ok := safeIDMap[orig]; ok {
			return safe
		}
		base := sanitizeMermaidID(orig)
		safe := base
		if usedSafe[safe] {
			// Collision: derive stable hash-based suffix
			h := fnv.New32a()
			_, _ = h.Write([]byte(orig))
			safe = fmt.Sprintf("%s_%x", base, h.Sum32())
		}
		usedSafe[safe] = true
		safeIDMap[orig] = safe
		return safe
	}

	present := make(map[string]bool, len(sorted))
	for _, c := range sorted {
		getSafeID(c.ID)
		present[c.ID] = true
	}

	// Nodes
	for _, c := range sorted {
		safeID := getSafeID(c.ID)
		sb.WriteString(fmt.Sprintf("    %s[\"%s<br/>%s\"]\n", safeID, sanitizeMermaidText(c.ID), sanitizeMermaidText(c.Source)))

		class := string(c.Severity)
		if c.Status.IsTerminal() {
			class = "done"
		}
		switch class {
		case "high", "medium", "low", "done":
			sb.WriteString(fmt.Sprintf("    class %s %s\n", safeID, class))
		}
	}

	sb.WriteString("\n")

	// Edges, once per pair
	hasLinks := false
	if links != nil {
		for _, c := range sorted {
			for _, nb := range links.Neighbors(c.ID) {
				if nb <= c.ID || !present[nb] {
					continue
				}
				sb.WriteString(fmt.Sprintf("    %s --- %s\n", getSafeID(c.ID), getSafeID(nb)))
				hasLinks = true
			}
		}
	}

	if config.ShowNoLinksNode && !hasLinks {
		sb.WriteString("    NoLinks[\"No linked cases\"]\n")
	}

	return sb.String()
}
