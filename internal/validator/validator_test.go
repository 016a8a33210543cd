package validator

import (
	"strings"
	"testing"

	"github.com/aretw0/adflow/internal/runtime"
	"github.com/aretw0/adflow/pkg/adapters/stub"
	"github.com/aretw0/adflow/pkg/domain"
)

func TestValidateTable(t *testing.T) {
	x := runtime.NewExecutor(stub.New().Collaborators())

	// Scenario A: the shipped table
	if err := ValidateTable(domain.FirstStage, runtime.Route, x.Has); err != nil {
		t.Errorf("shipped table failed validation: %v", err)
	}

	// Scenario B: missing node
	noRender := func(s domain.Stage) bool { return s != domain.StageRenderVideo && x.Has(s) }
	err := ValidateTable(domain.FirstStage, runtime.Route, noRender)
	if err == nil {
		t.Fatal("expected an error for a stage without a node")
	}
	if !strings.Contains(err.Error(), "no node for stage 'render_video'") {
		t.Errorf("unexpected error: %v", err)
	}

	// Scenario C: only "next" and "stay" route, with a dead end after analyze
	linear := func(current domain.Stage, intent domain.Intent) (domain.Stage, bool) {
		switch intent {
		case domain.IntentStay:
			return current, true
		case domain.IntentNext:
			if current == domain.StageAnalyze {
				return "nowhere", true
			}
			return current.Next(), true
		}
		return "", false
	}
	err = ValidateTable(domain.FirstStage, linear, x.Has)
	if err == nil {
		t.Fatal("expected errors for a broken table")
	}
	msg := err.Error()
	for _, want := range []string{
		"'analyze' routes next to unknown stage 'nowhere'",
		"stage 'draft_scripts' is unreachable",
		"stage 'complete' is unreachable",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("expected %q in:\n%s", want, msg)
		}
	}
}
