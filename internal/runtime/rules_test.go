package runtime

import (
	"testing"

	"github.com/aretw0/adflow/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestExtractURL(t *testing.T) {
	tests := []struct {
		msg  string
		want string
		ok   bool
	}{
		{"https://shop.example/widget", "https://shop.example/widget", true},
		{"try this one: http://new-product.test.", "http://new-product.test", true},
		{"see www.example.com/item?id=2)", "www.example.com/item?id=2", true},
		{"(https://a.test/x), thanks", "https://a.test/x", true},
		{"make it funnier", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := extractURL(tt.msg)
		assert.Equal(t, tt.ok, ok, tt.msg)
		assert.Equal(t, tt.want, got, tt.msg)
	}
}

func TestIsAffirmative(t *testing.T) {
	for _, msg := range []string{"yes", "Yes!", "ok", "OK, go ahead", "sure thing", "confirm"} {
		assert.True(t, isAffirmative(msg), msg)
	}
	for _, msg := range []string{"no", "nope", "maybe yes", "", "yesterday"} {
		assert.False(t, isAffirmative(msg), msg)
	}
}

func TestMatchesTrigger(t *testing.T) {
	assert.True(t, matchesTrigger("Let's create a campaign now", DefaultCampaignTriggers))
	assert.True(t, matchesTrigger("RUN ADS for this", DefaultCampaignTriggers))
	assert.True(t, matchesTrigger("make a facebook ad", DefaultCampaignTriggers))
	assert.False(t, matchesTrigger("make it funny", DefaultCampaignTriggers))
	assert.False(t, matchesTrigger("anything", nil))
}

func TestParseIndex(t *testing.T) {
	tests := []struct {
		msg  string
		n    int
		want int
		ok   bool
	}{
		{"option 2", 3, 1, true},
		{"script 3", 3, 2, true},
		{"choose 2", 3, 1, true},
		{"I'll pick #1", 3, 0, true},
		{"2", 3, 1, true},
		{"the second one please", 3, 1, true},
		{"go with the 3rd", 3, 2, true},
		{"first", 3, 0, true},
		{"option 4", 3, 0, false},
		{"option 0", 3, 0, false},
		{"make it 30 seconds", 3, 0, false},
		{"none of these", 3, 0, false},
		{"option 1", 0, 0, false},
	}
	for _, tt := range tests {
		got, ok := parseIndex(tt.msg, tt.n)
		assert.Equal(t, tt.ok, ok, tt.msg)
		if tt.ok {
			assert.Equal(t, tt.want, got, tt.msg)
		}
	}
}

func TestMatchAvatar(t *testing.T) {
	catalog := []domain.Avatar{{ID: "av-anna", Name: "Anna"}, {ID: "av-ben", Name: "Ben"}}

	id, ok := matchAvatar("I'd like Ben", catalog)
	assert.True(t, ok)
	assert.Equal(t, "av-ben", id)

	id, ok = matchAvatar("use av-anna", catalog)
	assert.True(t, ok)
	assert.Equal(t, "av-anna", id)

	id, ok = matchAvatar("option 2", catalog)
	assert.True(t, ok)
	assert.Equal(t, "av-ben", id)

	_, ok = matchAvatar("benevolent", catalog)
	assert.False(t, ok)
}

func TestMatchMedia(t *testing.T) {
	catalog := []domain.Media{
		{ID: "img-0", Kind: domain.MediaImage},
		{ID: "img-1", Kind: domain.MediaImage},
		{ID: "video-0", Kind: domain.MediaVideo},
	}

	m, ok := matchMedia("use the video", catalog)
	assert.True(t, ok)
	assert.Equal(t, "video-0", m.ID)

	m, ok = matchMedia("img-1 please", catalog)
	assert.True(t, ok)
	assert.Equal(t, "img-1", m.ID)

	// Two images: the kind keyword alone is ambiguous.
	_, ok = matchMedia("an image", catalog)
	assert.False(t, ok)
}
