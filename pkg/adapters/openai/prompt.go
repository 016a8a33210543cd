package openai

import (
	"fmt"
	"strings"

	"github.com/aretw0/adflow/pkg/domain"
)

const systemPrompt = `You are the navigation router of an ad creation workflow.
Decide where the user wants to go, given their message and the current step.

Steps, in order:
%s

Rules:
- "next", "looks good", "continue" or any approval of the current output -> "next"
- a request to change something owned by an earlier or later step -> that step's name
- an explicit request to go to a step -> that step's name
- feedback about the current step's output -> "stay"
- while at draft_scripts, picking one of the scripts -> "select_script"
- while at select_script, feedback on the chosen script -> "refine_script"
- wanting to stop -> "complete"

Answer with JSON only:
{"intent": "next" | "stay" | "complete" | "<step name>", "reasoning": "<one sentence>"}
`

func buildPrompt(current domain.Stage, message string) string {
	var steps strings.Builder
	for i, st := range domain.ForwardOrder {
		fmt.Fprintf(&steps, "%d. %s\n", i+1, st)
	}
	return fmt.Sprintf(systemPrompt, strings.TrimRight(steps.String(), "\n")) +
		fmt.Sprintf("\nCurrent step: %s\nUser message: %s\n", current, message)
}
