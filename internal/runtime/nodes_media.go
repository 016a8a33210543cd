package runtime

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aretw0/adflow/pkg/domain"
	"github.com/aretw0/adflow/pkg/ports"
)

var errNoAvatars = errors.New("no avatars available")

func mediaNodes() map[domain.Stage]node {
	return map[domain.Stage]node{
		domain.StageGenerateImages:  {check: checkGenerateImages, run: runImages},
		domain.StageRefineImages:    {check: checkRefineImages, run: runImages},
		domain.StageSynthesizeAudio: {check: checkSynthesizeAudio, run: runSynthesizeAudio},
		domain.StageSelectAvatar:    {run: runSelectAvatar},
		domain.StageRenderVideo:     {check: checkRenderVideo, run: runRenderVideo},
	}
}

// imagePrompt composes the visual brief from the subject, the selected script
// and every image feedback entry so far.
func imagePrompt(subject *domain.Subject, script string, feedback []string) string {
	var b strings.Builder
	b.WriteString("Advertising visual")
	if subject != nil && subject.Title != "" {
		fmt.Fprintf(&b, " for %q", subject.Title)
	}
	b.WriteString(". Scene: ")
	b.WriteString(strings.TrimSpace(script))
	if len(feedback) > 0 {
		b.WriteString(". Adjustments: ")
		b.WriteString(strings.Join(feedback, "; "))
	}
	return b.String()
}

func checkGenerateImages(s *domain.State, in *stepInput) string {
	if s.SelectedScript == nil {
		return "no script selected"
	}
	if s.SourceURL == nil {
		return "no source reference available"
	}
	return ""
}

func checkRefineImages(s *domain.State, in *stepInput) string {
	if len(s.GeneratedImages) == 0 {
		return "no images generated"
	}
	return checkGenerateImages(s, in)
}

func runImages(ctx context.Context, x *Executor, s *domain.State, in *stepInput) (outcome, error) {
	feedback := s.ImageFeedback
	if in.feedback != "" {
		feedback = append(append([]string(nil), feedback...), in.feedback)
	}
	prompt := imagePrompt(subjectOf(s), *s.SelectedScript, feedback)

	count := x.numImages
	if n := in.req.Fields.NumImages; n != nil && *n > 0 {
		count = *n
	}
	sameCount := in.req.Fields.NumImages == nil || count == len(s.GeneratedImages)
	if len(s.GeneratedImages) > 0 && s.ImagePrompt != nil && *s.ImagePrompt == prompt && sameCount {
		return outcomeCached, nil
	}

	if x.collab.Images == nil {
		return outcomeNoop, missing("image generator")
	}
	var images []string
	err := x.call(ctx, s, "generate_images", func(ctx context.Context) error {
		var err error
		images, err = x.collab.Images.GenerateImages(ctx, ports.ImageInput{
			SourceURL: *s.SourceURL,
			Prompt:    prompt,
			Count:     count,
		})
		return err
	})
	if err != nil {
		return outcomeNoop, err
	}

	s.ImageFeedback = feedback
	s.ImagePrompt = &prompt
	s.GeneratedImages = images
	return outcomeDone, nil
}

func checkSynthesizeAudio(s *domain.State, in *stepInput) string {
	if s.SelectedScript == nil {
		return "no script selected"
	}
	return ""
}

func runSynthesizeAudio(ctx context.Context, x *Executor, s *domain.State, in *stepInput) (outcome, error) {
	text := *s.SelectedScript
	if s.AudioRef != nil && s.AudioScript != nil && *s.AudioScript == text {
		return outcomeCached, nil
	}

	if x.collab.Voice == nil {
		return outcomeNoop, missing("voice synthesizer")
	}
	var ref string
	err := x.call(ctx, s, "synthesize_audio", func(ctx context.Context) error {
		var err error
		ref, err = x.collab.Voice.Synthesize(ctx, text)
		return err
	})
	if err != nil {
		return outcomeNoop, err
	}

	s.AudioRef = &ref
	s.AudioScript = &text
	return outcomeDone, nil
}

func runSelectAvatar(ctx context.Context, x *Executor, s *domain.State, in *stepInput) (outcome, error) {
	listed := false
	if len(s.AvatarCatalog) == 0 {
		if x.collab.Avatars == nil {
			return outcomeNoop, missing("avatar studio")
		}
		var catalog []domain.Avatar
		err := x.call(ctx, s, "list_avatars", func(ctx context.Context) error {
			var err error
			catalog, err = x.collab.Avatars.ListAvatars(ctx)
			return err
		})
		if err != nil {
			return outcomeNoop, err
		}
		if len(catalog) == 0 {
			return outcomeNoop, errNoAvatars
		}
		s.AvatarCatalog = catalog
		listed = true
	}

	var chosen string
	switch {
	case in.req.Fields.AvatarID != "":
		if !hasAvatar(s.AvatarCatalog, in.req.Fields.AvatarID) {
			return outcomeNoop, fmt.Errorf("avatar %s not found", in.req.Fields.AvatarID)
		}
		chosen = in.req.Fields.AvatarID
	default:
		if id, ok := matchAvatar(in.message, s.AvatarCatalog); ok {
			chosen = id
		} else if s.SelectedAvatarID == nil {
			chosen = s.AvatarCatalog[0].ID
		}
	}

	if chosen == "" {
		if listed {
			return outcomeDone, nil
		}
		return outcomeNoop, nil
	}
	s.SelectedAvatarID = &chosen
	return outcomeDone, nil
}

func hasAvatar(catalog []domain.Avatar, id string) bool {
	for _, a := range catalog {
		if a.ID == id {
			return true
		}
	}
	return false
}

func checkRenderVideo(s *domain.State, in *stepInput) string {
	if s.AudioRef == nil {
		return "no audio available"
	}
	if s.SelectedAvatarID == nil {
		return "no avatar selected"
	}
	return ""
}

// runRenderVideo starts a render, or polls the existing one when audio and
// avatar are unchanged. A finished render is served from state.
func runRenderVideo(ctx context.Context, x *Executor, s *domain.State, in *stepInput) (outcome, error) {
	if x.collab.Avatars == nil {
		return outcomeNoop, missing("avatar studio")
	}
	inputs := *s.AudioRef + "|" + *s.SelectedAvatarID

	if s.VideoID != nil && s.VideoInputs != nil && *s.VideoInputs == inputs {
		if s.VideoStatus != nil && *s.VideoStatus == ports.VideoCompleted {
			return outcomeCached, nil
		}
		var st ports.VideoStatus
		err := x.call(ctx, s, "poll_video", func(ctx context.Context) error {
			var err error
			st, err = x.collab.Avatars.PollVideo(ctx, *s.VideoID)
			return err
		})
		if err != nil {
			return outcomeNoop, err
		}
		s.VideoStatus = &st.Status
		if st.VideoRef != "" {
			s.VideoRef = &st.VideoRef
		}
		if st.Status == ports.VideoFailed {
			return outcomeNoop, fmt.Errorf("video render %s failed", *s.VideoID)
		}
		return outcomeCached, nil
	}

	var id string
	err := x.call(ctx, s, "render_video", func(ctx context.Context) error {
		var err error
		id, err = x.collab.Avatars.RenderVideo(ctx, *s.AudioRef, *s.SelectedAvatarID)
		return err
	})
	if err != nil {
		return outcomeNoop, err
	}

	status := ports.VideoProcessing
	s.VideoID = &id
	s.VideoInputs = &inputs
	s.VideoStatus = &status
	s.VideoRef = nil
	return outcomeDone, nil
}
