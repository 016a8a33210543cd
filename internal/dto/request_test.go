package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeRequest(t *testing.T) {
	req, err := DecodeRequest(map[string]any{
		"session_id":   "s1",
		"message":      "option 2",
		"script_index": "1",
		"num_images":   3.0,
		"fields": map[string]any{
			"avatar_id":    "ava",
			"script_index": 2,
		},
		"unknown": true,
	})
	require.NoError(t, err)

	assert.Equal(t, "s1", req.SessionID)
	assert.Equal(t, "option 2", req.Message)
	require.NotNil(t, req.Fields.ScriptIndex)
	assert.Equal(t, 1, *req.Fields.ScriptIndex, "top-level keys win")
	assert.Equal(t, 3, *req.Fields.NumImages)
	assert.Equal(t, "ava", req.Fields.AvatarID)
	assert.Nil(t, req.Fields.SubjectIndex)
}

func TestDecodeRequest_Invalid(t *testing.T) {
	_, err := DecodeRequest(map[string]any{"script_index": "two"})
	assert.Error(t, err)
}

func TestDecodeRequest_Empty(t *testing.T) {
	req, err := DecodeRequest(nil)
	require.NoError(t, err)
	assert.Empty(t, req.SessionID)
	assert.False(t, req.HasMessage())
}
