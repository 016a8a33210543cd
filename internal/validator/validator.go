// Package validator checks the stage table for broken links and unreachable stages.
package validator

import (
	"fmt"
	"strings"

	"github.com/aretw0/adflow/pkg/domain"
)

// RouteFunc expands an intent at a stage, like runtime.Route.
type RouteFunc func(current domain.Stage, intent domain.Intent) (domain.Stage, bool)

// ValidateTable crawls the table from start, following every intent a
// request can resolve to. It reports targets with no node behind them
// (has returns false) and forward stages the crawl never reaches.
func ValidateTable(start domain.Stage, route RouteFunc, has func(domain.Stage) bool) error {
	intents := []domain.Intent{
		domain.IntentNext,
		domain.IntentStay,
		domain.IntentComplete,
		domain.IntentNewSubject,
		domain.IntentRestartConfirmed,
	}
	for _, s := range domain.ForwardOrder {
		intents = append(intents, domain.IntentFor(s))
	}

	var errors []string
	visited := make(map[domain.Stage]bool)
	queue := []domain.Stage{start}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if visited[current] {
			continue
		}
		visited[current] = true

		if !has(current) {
			errors = append(errors, fmt.Sprintf("no node for stage '%s'", current))
			continue
		}

		for _, intent := range intents {
			target, ok := route(current, intent)
			if !ok {
				continue
			}
			if !target.IsValid() {
				errors = append(errors, fmt.Sprintf("'%s' routes %s to unknown stage '%s'", current, intent, target))
				continue
			}
			if !visited[target] {
				queue = append(queue, target)
			}
		}
	}

	for _, s := range domain.ForwardOrder {
		if !visited[s] {
			errors = append(errors, fmt.Sprintf("stage '%s' is unreachable from '%s'", s, start))
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("found %d errors:\n- %s", len(errors), strings.Join(errors, "\n- "))
	}
	return nil
}
