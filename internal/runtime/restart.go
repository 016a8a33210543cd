package runtime

import "github.com/aretw0/adflow/pkg/domain"

// enterRestart parks the session in confirm_restart until the user answers.
func enterRestart(s *domain.State, url string) {
	prev := s.CurrentStep
	s.PreviousStep = &prev
	s.PendingURL = &url
	s.CurrentStep = domain.StageConfirmRestart
	s.ClearError()
}

// confirmRestart wipes the pipeline and points ingestion at the pending URL.
// Ingestion itself runs on the next call.
func confirmRestart(s *domain.State) {
	var url string
	if s.PendingURL != nil {
		url = *s.PendingURL
	}
	resetPipeline(s)
	if url != "" {
		s.SourceURL = &url
	}
	s.CurrentStep = domain.StageIngest
}

// declineRestart resumes where the user was, payloads intact.
func declineRestart(s *domain.State) {
	prev := domain.FirstStage
	if s.PreviousStep != nil {
		prev = *s.PreviousStep
	}
	s.CurrentStep = prev
	s.PendingURL = nil
	s.PreviousStep = nil
}

// resetPipeline returns the state to its defaults, keeping only the session
// identity, the conversation log and the intent of the current call.
func resetPipeline(s *domain.State) {
	fresh := domain.NewState(s.SessionID)
	fresh.Messages = s.Messages
	fresh.NavigationIntent = s.NavigationIntent
	fresh.CurrentStep = s.CurrentStep
	*s = *fresh
}
