package domain

// Intent is a symbol of the navigation vocabulary: a stage name or one of the
// control symbols below.
type Intent string

const (
	IntentNext     Intent = "next"
	IntentStay     Intent = "stay"
	IntentComplete Intent = "complete"

	// IntentNewSubject is produced when a subject URL shows up mid-pipeline.
	IntentNewSubject Intent = "new_subject_submission"
	// IntentConfirmRestart names the control state waiting for a yes/no answer.
	IntentConfirmRestart Intent = "confirm_restart"

	// Outcomes of the confirm_restart state.
	IntentRestartConfirmed Intent = "restart_confirmed"
	IntentRestartDeclined  Intent = "restart_declined"
)

// IntentFor returns the intent that targets stage s directly.
func IntentFor(s Stage) Intent { return Intent(s) }

// Stage reports the stage named by the intent, if any.
func (i Intent) Stage() (Stage, bool) {
	s := Stage(i)
	if s == StageConfirmRestart || !s.IsValid() {
		return "", false
	}
	return s, true
}

// IsNavigational reports whether i is one of the symbols an intent classifier may
// answer with: next, stay, complete or a stage name.
func (i Intent) IsNavigational() bool {
	switch i {
	case IntentNext, IntentStay, IntentComplete:
		return true
	}
	_, ok := i.Stage()
	return ok
}
