package graph_test

import (
	"strings"
	"testing"

	"github.com/aretw0/adflow/internal/presentation/graph"
	"github.com/aretw0/adflow/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestGenerateMermaid(t *testing.T) {
	out := graph.GenerateMermaid(nil)

	for _, want := range []string{
		"graph TD",
		`ingest(("ingest"))`,
		`complete(("complete"))`,
		`select_script[/"select script"/]`,
		`draft_scripts[["draft scripts"]]`,
		`confirm_restart{"confirm restart"}`,
		"ingest --> analyze",
		"refine_campaign --> publish_campaign",
		"publish_campaign --> complete",
		`refine_images -. "feedback" .-> generate_images`,
		`confirm_restart -- "yes" --> ingest`,
		`any -. "campaign phrase" .-> authenticate_campaign`,
	} {
		assert.Contains(t, out, want)
	}
	assert.NotContains(t, out, "classDef")
}

func TestGenerateMermaid_Overlay(t *testing.T) {
	s := domain.NewState("g")
	s.IterationCount[domain.StageAnalyze] = 2
	s.IterationCount[domain.StageIngest] = 1
	s.IterationCount[domain.StageDraftScripts] = 0
	s.CurrentStep = domain.StageAnalyze

	overlay := graph.OverlayFrom(s)
	assert.Equal(t, []domain.Stage{domain.StageIngest, domain.StageAnalyze}, overlay.Visited)

	out := graph.GenerateMermaid(overlay)
	assert.Contains(t, out, "class ingest visited;")
	assert.Contains(t, out, "class analyze visited;")
	assert.Contains(t, out, "class analyze current;")
	assert.NotContains(t, out, "class draft_scripts visited;")
	assert.Equal(t, 1, strings.Count(out, "current;"))
}

func TestGenerateMermaid_IgnoresUnknownStages(t *testing.T) {
	out := graph.GenerateMermaid(&graph.Overlay{Visited: []domain.Stage{"bogus"}, Current: "bogus"})
	assert.NotContains(t, out, "bogus")
}
