package runtime

import "github.com/aretw0/adflow/pkg/domain"

// Route maps (current step, intent) to the stage to execute.
// ok is false when the intent names nothing in the table; the call then
// terminates without touching the state.
//
// Every stage routes to itself, "next" follows domain.ForwardOrder, "stay"
// re-enters the current step and "complete" jumps to the terminal state.
func Route(current domain.Stage, intent domain.Intent) (target domain.Stage, ok bool) {
	switch intent {
	case domain.IntentNext:
		return current.Next(), true
	case domain.IntentStay:
		return current, true
	case domain.IntentComplete:
		return domain.StageComplete, true
	case domain.IntentNewSubject, domain.IntentConfirmRestart:
		return domain.StageConfirmRestart, true
	case domain.IntentRestartConfirmed:
		return domain.StageIngest, true
	}
	if s, isStage := intent.Stage(); isStage {
		return s, true
	}
	return "", false
}

// Stages returns the forward-order table, for transports and graph rendering.
func Stages() []domain.Stage {
	return append([]domain.Stage(nil), domain.ForwardOrder...)
}
