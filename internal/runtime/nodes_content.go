package runtime

import (
	"context"
	"errors"

	"github.com/aretw0/adflow/pkg/domain"
	"github.com/aretw0/adflow/pkg/ports"
)

// maxScripts caps the drafts kept per generation.
const maxScripts = 3

var errNoScripts = errors.New("script writer returned no scripts")

func contentNodes() map[domain.Stage]node {
	return map[domain.Stage]node{
		domain.StageIngest:       {check: checkIngest, run: runIngest},
		domain.StageAnalyze:      {check: checkAnalyze, run: runAnalyze},
		domain.StageDraftScripts: {check: checkDraftScripts, run: runDraftScripts},
		domain.StageSelectScript: {check: checkSelectScript, run: runSelectScript},
		domain.StageRefineScript: {check: checkRefineScript, run: runRefineScript},
	}
}

// sourceRef picks the source reference: request field, then a URL in the
// message, then what the state already holds.
func sourceRef(s *domain.State, in *stepInput) string {
	if in.req.Fields.SourceURL != "" {
		return in.req.Fields.SourceURL
	}
	if in.res.URL != "" {
		return in.res.URL
	}
	if u, ok := extractURL(in.message); ok {
		return u
	}
	if s.SourceURL != nil {
		return *s.SourceURL
	}
	return ""
}

// subjectOf returns the product the pipeline works on.
func subjectOf(s *domain.State) *domain.Subject {
	if s.SelectedSubject != nil {
		return s.SelectedSubject
	}
	return s.SubjectData
}

func checkIngest(s *domain.State, in *stepInput) string {
	if sourceRef(s, in) == "" {
		return "no source reference provided"
	}
	return ""
}

func runIngest(ctx context.Context, x *Executor, s *domain.State, in *stepInput) (outcome, error) {
	source := sourceRef(s, in)

	if s.SubjectData != nil && s.SourceURL != nil && *s.SourceURL == source {
		selectProduct(s, in)
		return outcomeCached, nil
	}

	if x.collab.Ingestor == nil {
		return outcomeNoop, missing("ingestor")
	}
	var subject *domain.Subject
	err := x.call(ctx, s, "ingest", func(ctx context.Context) error {
		var err error
		subject, err = x.collab.Ingestor.Ingest(ctx, source)
		return err
	})
	if err != nil {
		return outcomeNoop, err
	}

	if s.SubjectData != nil {
		// A different source invalidates everything derived from the old one.
		resetPipeline(s)
	}
	s.SourceURL = &source
	s.SubjectData = subject
	s.SelectedSubject = subject
	selectProduct(s, in)
	return outcomeDone, nil
}

// selectProduct narrows a store listing down to one of its products.
func selectProduct(s *domain.State, in *stepInput) {
	if !s.SubjectData.IsStore() {
		return
	}
	products := s.SubjectData.Products
	if idx := in.req.Fields.SubjectIndex; idx != nil && *idx >= 0 && *idx < len(products) {
		p := products[*idx]
		s.SelectedSubject = &p
	}
}

func checkAnalyze(s *domain.State, in *stepInput) string {
	if subjectOf(s) == nil {
		return "no subject data available"
	}
	return ""
}

func runAnalyze(ctx context.Context, x *Executor, s *domain.State, in *stepInput) (outcome, error) {
	if x.collab.Analyzer == nil {
		return outcomeNoop, missing("analyzer")
	}
	feedback := s.AnalysisFeedback
	if in.feedback != "" {
		feedback = append(append([]string(nil), feedback...), in.feedback)
	}

	var analysis *domain.Analysis
	err := x.call(ctx, s, "analyze", func(ctx context.Context) error {
		var err error
		analysis, err = x.collab.Analyzer.Analyze(ctx, ports.AnalyzeInput{
			Subject:  subjectOf(s),
			Feedback: feedback,
			Previous: s.Analysis,
		})
		return err
	})
	if err != nil {
		return outcomeNoop, err
	}

	s.AnalysisFeedback = feedback
	s.Analysis = analysis
	return outcomeDone, nil
}

func checkDraftScripts(s *domain.State, in *stepInput) string {
	if s.Analysis == nil {
		return "no analysis available"
	}
	return ""
}

func runDraftScripts(ctx context.Context, x *Executor, s *domain.State, in *stepInput) (outcome, error) {
	if x.collab.Scripts == nil {
		return outcomeNoop, missing("script writer")
	}
	feedback := s.ScriptFeedback
	if in.feedback != "" {
		feedback = append(append([]string(nil), feedback...), in.feedback)
	}

	var scripts []string
	err := x.call(ctx, s, "draft_scripts", func(ctx context.Context) error {
		var err error
		scripts, err = x.collab.Scripts.DraftScripts(ctx, ports.DraftInput{
			Subject:  subjectOf(s),
			Analysis: s.Analysis,
			Feedback: feedback,
			Current:  s.Scripts,
		})
		return err
	})
	if err != nil {
		return outcomeNoop, err
	}
	if len(scripts) == 0 {
		return outcomeNoop, errNoScripts
	}
	if len(scripts) > maxScripts {
		scripts = scripts[:maxScripts]
	}

	s.ScriptFeedback = feedback
	s.Scripts = scripts
	// New drafts invalidate the selection and its refinements.
	s.SelectedScript = nil
	s.SelectedScriptIndex = nil
	s.ScriptRefinementFeedback = nil
	return outcomeDone, nil
}

func checkSelectScript(s *domain.State, in *stepInput) string {
	if len(s.Scripts) == 0 {
		return "no scripts available"
	}
	return ""
}

func runSelectScript(ctx context.Context, x *Executor, s *domain.State, in *stepInput) (outcome, error) {
	var (
		idx int
		ok  bool
	)
	if f := in.req.Fields.ScriptIndex; f != nil {
		idx, ok = *f, *f >= 0 && *f < len(s.Scripts)
	} else {
		idx, ok = parseIndex(in.message, len(s.Scripts))
	}
	if !ok {
		return outcomeNoop, nil
	}

	if s.SelectedScriptIndex == nil || *s.SelectedScriptIndex != idx {
		s.ScriptRefinementFeedback = nil
	}
	script := s.Scripts[idx]
	s.SelectedScriptIndex = &idx
	s.SelectedScript = &script
	return outcomeDone, nil
}

func checkRefineScript(s *domain.State, in *stepInput) string {
	if s.SelectedScript == nil {
		return "no script selected"
	}
	return ""
}

func runRefineScript(ctx context.Context, x *Executor, s *domain.State, in *stepInput) (outcome, error) {
	if in.feedback == "" {
		return outcomeNoop, nil
	}
	if x.collab.Scripts == nil {
		return outcomeNoop, missing("script writer")
	}
	history := append(append([]string(nil), s.ScriptRefinementFeedback...), in.feedback)

	var refined string
	err := x.call(ctx, s, "refine_script", func(ctx context.Context) error {
		var err error
		refined, err = x.collab.Scripts.RefineScript(ctx, ports.RefineInput{
			Script:   *s.SelectedScript,
			Feedback: in.feedback,
			History:  history,
		})
		return err
	})
	if err != nil {
		return outcomeNoop, err
	}

	s.ScriptRefinementFeedback = history
	s.SelectedScript = &refined
	return outcomeDone, nil
}
