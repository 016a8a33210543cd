package graph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/adflow/pkg/domain"
)

// Overlay contains session data to visualize on the graph.
type Overlay struct {
	Visited []domain.Stage
	Current domain.Stage
}

// OverlayFrom marks every stage that ran at least once, and the current one.
func OverlayFrom(s *domain.State) *Overlay {
	o := &Overlay{Current: s.CurrentStep}
	for st, n := range s.IterationCount {
		if n > 0 {
			o.Visited = append(o.Visited, st)
		}
	}
	sort.Slice(o.Visited, func(i, j int) bool { return o.Visited[i].Position() < o.Visited[j].Position() })
	return o
}

// refinementOf maps refinement stages to the stage whose output they rework.
var refinementOf = map[domain.Stage]domain.Stage{
	domain.StageRefineScript:   domain.StageSelectScript,
	domain.StageRefineImages:   domain.StageGenerateImages,
	domain.StageRefineCampaign: domain.StagePreviewCampaign,
}

// GenerateMermaid produces a Mermaid flowchart of the stage table.
// Shapes:
//   - ingest and complete: ((Circle))
//   - selections: [/Parallelogram/]
//   - everything else calls a generator: [[Subroutine]]
//
// The forward order is drawn solid, refinement loops and the global jumps
// (new URL, campaign phrase) dotted.
func GenerateMermaid(overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, st := range domain.ForwardOrder {
		opener, closer := "[[", "]]"
		switch {
		case st == domain.StageIngest || st == domain.StageComplete:
			opener, closer = "((", "))"
		case strings.HasPrefix(string(st), "select_"):
			opener, closer = "[/", "/]"
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", st, opener, label(st), closer)
	}
	fmt.Fprintf(&sb, "    %s{\"%s\"}\n", domain.StageConfirmRestart, label(domain.StageConfirmRestart))
	sb.WriteString("    any((\"any stage\"))\n")

	for i := 0; i+1 < len(domain.ForwardOrder); i++ {
		fmt.Fprintf(&sb, "    %s --> %s\n", domain.ForwardOrder[i], domain.ForwardOrder[i+1])
	}
	for _, st := range domain.ForwardOrder {
		if base, ok := refinementOf[st]; ok {
			fmt.Fprintf(&sb, "    %s -. \"feedback\" .-> %s\n", st, base)
		}
	}
	fmt.Fprintf(&sb, "    any -. \"new URL\" .-> %s\n", domain.StageConfirmRestart)
	fmt.Fprintf(&sb, "    %s -- \"yes\" --> %s\n", domain.StageConfirmRestart, domain.StageIngest)
	fmt.Fprintf(&sb, "    %s -. \"no\" .-> any\n", domain.StageConfirmRestart)
	fmt.Fprintf(&sb, "    any -. \"campaign phrase\" .-> %s\n", domain.StageAuthenticateCampaign)

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Black text keeps contrast on both light and dark themes.
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		seen := make(map[domain.Stage]bool)
		for _, st := range overlay.Visited {
			if st.IsValid() && !seen[st] {
				seen[st] = true
				fmt.Fprintf(&sb, "    class %s visited;\n", st)
			}
		}
		if overlay.Current.IsValid() {
			fmt.Fprintf(&sb, "    class %s current;\n", overlay.Current)
		}
	}

	return sb.String()
}

func label(st domain.Stage) string {
	return strings.ReplaceAll(string(st), "_", " ")
}
