package domain

import "strings"

// Stage names one step of the production pipeline, or one of the control states.
type Stage string

const (
	StageIngest          Stage = "ingest"
	StageAnalyze         Stage = "analyze"
	StageDraftScripts    Stage = "draft_scripts"
	StageSelectScript    Stage = "select_script"
	StageRefineScript    Stage = "refine_script"
	StageGenerateImages  Stage = "generate_images"
	StageRefineImages    Stage = "refine_images"
	StageSynthesizeAudio Stage = "synthesize_audio"
	StageSelectAvatar    Stage = "select_avatar"
	StageRenderVideo     Stage = "render_video"

	StageAuthenticateCampaign Stage = "authenticate_campaign"
	StageSelectAccount        Stage = "select_account"
	StageSelectMedia          Stage = "select_media"
	StagePreviewCampaign      Stage = "preview_campaign"
	StageRefineCampaign       Stage = "refine_campaign"
	StagePublishCampaign      Stage = "publish_campaign"

	// Control states.
	StageConfirmRestart Stage = "confirm_restart"
	StageComplete       Stage = "complete"
)

// ForwardOrder is the fixed pipeline order used to expand "next".
// The last entry is the terminal control state.
var ForwardOrder = []Stage{
	StageIngest,
	StageAnalyze,
	StageDraftScripts,
	StageSelectScript,
	StageRefineScript,
	StageGenerateImages,
	StageRefineImages,
	StageSynthesizeAudio,
	StageSelectAvatar,
	StageRenderVideo,
	StageAuthenticateCampaign,
	StageSelectAccount,
	StageSelectMedia,
	StagePreviewCampaign,
	StageRefineCampaign,
	StagePublishCampaign,
	StageComplete,
}

// FirstStage is where every fresh session starts.
const FirstStage = StageIngest

// String implements fmt.Stringer.
func (s Stage) String() string { return string(s) }

// IsValid reports whether s belongs to the fixed vocabulary, control states included.
func (s Stage) IsValid() bool {
	if s == StageConfirmRestart {
		return true
	}
	return s.Position() >= 0
}

// Position returns the index of s in ForwardOrder, or -1.
func (s Stage) Position() int {
	for i, st := range ForwardOrder {
		if st == s {
			return i
		}
	}
	return -1
}

// Next returns the stage immediately forward of s.
// The terminal stage, and anything outside the forward order, yields StageComplete.
func (s Stage) Next() Stage {
	i := s.Position()
	if i < 0 || i+1 >= len(ForwardOrder) {
		return StageComplete
	}
	return ForwardOrder[i+1]
}

// IsCampaign reports whether s belongs to the ad-campaign sub-chain.
func (s Stage) IsCampaign() bool {
	i := s.Position()
	return i >= StageAuthenticateCampaign.Position() && i <= StagePublishCampaign.Position()
}

// ParseStage converts a raw symbol into a Stage, ignoring case and surrounding space.
func ParseStage(raw string) (Stage, error) {
	s := Stage(strings.ToLower(strings.TrimSpace(raw)))
	if !s.IsValid() {
		return "", ErrUnknownStage
	}
	return s, nil
}
