package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStage_Next(t *testing.T) {
	for i := 0; i < len(ForwardOrder)-1; i++ {
		assert.Equal(t, ForwardOrder[i+1], ForwardOrder[i].Next(), "next of %s", ForwardOrder[i])
	}
	assert.Equal(t, StageComplete, StagePublishCampaign.Next())
	assert.Equal(t, StageComplete, StageComplete.Next())
}

func TestStage_IsValid(t *testing.T) {
	assert.True(t, StageIngest.IsValid())
	assert.True(t, StageConfirmRestart.IsValid())
	assert.True(t, StageComplete.IsValid())
	assert.False(t, Stage("teleport").IsValid())

	_, err := ParseStage("teleport")
	assert.ErrorIs(t, err, ErrUnknownStage)
	s, err := ParseStage("render_video")
	assert.NoError(t, err)
	assert.Equal(t, StageRenderVideo, s)
	s, err = ParseStage(" Render_Video ")
	assert.NoError(t, err)
	assert.Equal(t, StageRenderVideo, s)
}

func TestStage_IsCampaign(t *testing.T) {
	assert.True(t, StageAuthenticateCampaign.IsCampaign())
	assert.True(t, StagePublishCampaign.IsCampaign())
	assert.False(t, StageRenderVideo.IsCampaign())
	assert.False(t, StageComplete.IsCampaign())
}

func TestIntent_IsNavigational(t *testing.T) {
	assert.True(t, IntentNext.IsNavigational())
	assert.True(t, IntentStay.IsNavigational())
	assert.True(t, IntentComplete.IsNavigational())
	assert.True(t, IntentFor(StageAnalyze).IsNavigational())
	assert.False(t, IntentNewSubject.IsNavigational())
	assert.False(t, IntentConfirmRestart.IsNavigational())
	assert.False(t, Intent("dance").IsNavigational())
}
