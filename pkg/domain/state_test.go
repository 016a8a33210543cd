package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewState_Defaults(t *testing.T) {
	s := NewState("abc")
	assert.Equal(t, "abc", s.SessionID)
	assert.Equal(t, StageIngest, s.CurrentStep)
	assert.Empty(t, s.Messages)
	assert.Nil(t, s.SubjectData)
	assert.Nil(t, s.Scripts)
	assert.Nil(t, s.Error)
	assert.Equal(t, 0, s.Iterations(StageIngest))
}

func TestState_CloneIsolation(t *testing.T) {
	s := NewState("abc")
	s.Scripts = []string{"a", "b"}
	s.SelectedScript = Ptr("a")
	s.SubjectData = &Subject{Title: "Widget", Products: []Subject{{Title: "Child", Images: []string{"x"}}}}
	s.CampaignConfig = &CampaignConfig{Campaign: CampaignSpec{SpecialAdCategories: []string{"NONE"}}}
	s.Bump(StageIngest)

	c := s.Clone()
	c.Scripts[0] = "changed"
	*c.SelectedScript = "changed"
	c.SubjectData.Products[0].Images[0] = "changed"
	c.CampaignConfig.Campaign.SpecialAdCategories[0] = "changed"
	c.Bump(StageIngest)

	assert.Equal(t, "a", s.Scripts[0])
	assert.Equal(t, "a", *s.SelectedScript)
	assert.Equal(t, "x", s.SubjectData.Products[0].Images[0])
	assert.Equal(t, "NONE", s.CampaignConfig.Campaign.SpecialAdCategories[0])
	assert.Equal(t, 1, s.Iterations(StageIngest))
	assert.Equal(t, 2, c.Iterations(StageIngest))
}

func TestState_LastUserMessage(t *testing.T) {
	s := NewState("abc")
	_, ok := s.LastUserMessage()
	assert.False(t, ok)

	s.AppendMessage(RoleUser, "first")
	s.AppendMessage(RoleAssistant, "reply")
	msg, ok := s.LastUserMessage()
	assert.True(t, ok)
	assert.Equal(t, "first", msg)
}

func TestState_Redacted(t *testing.T) {
	s := NewState("s")
	assert.Nil(t, s.Redacted().AccessToken)

	s.AccessToken = Ptr("EAAB-secret")
	r := s.Redacted()
	assert.Equal(t, SecretMask, *r.AccessToken)
	assert.Equal(t, "EAAB-secret", *s.AccessToken)

	resp := NewResponse(s)
	assert.Equal(t, SecretMask, *resp.State.AccessToken)

	var nilState *State
	assert.Nil(t, nilState.Redacted())
}
