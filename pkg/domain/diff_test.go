package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiff(t *testing.T) {
	base := func() *State {
		s := NewState("sess-1")
		s.AppendMessage(RoleUser, "https://shop.example/widget")
		return s
	}

	t.Run("Initial Load (Old is Nil)", func(t *testing.T) {
		s := base()
		d := Diff(nil, s)
		require.NotNil(t, d)
		assert.Equal(t, "sess-1", d.SessionID)
		require.NotNil(t, d.CurrentStep)
		assert.Equal(t, StageIngest, *d.CurrentStep)
		assert.Len(t, d.Messages, 1)
	})

	t.Run("No Changes", func(t *testing.T) {
		assert.Nil(t, Diff(base(), base()))
	})

	t.Run("Step And Payload Change", func(t *testing.T) {
		old := base()
		s := old.Clone()
		s.CurrentStep = StageAnalyze
		s.Analysis = &Analysis{Summary: "great widget"}
		s.AppendMessage(RoleUser, "looks good")

		d := Diff(old, s)
		require.NotNil(t, d)
		assert.Equal(t, StageAnalyze, *d.CurrentStep)
		require.Contains(t, d.Fields, "analysis")
		var a Analysis
		require.NoError(t, json.Unmarshal(d.Fields["analysis"], &a))
		assert.Equal(t, "great widget", a.Summary)
		assert.Equal(t, []Message{{Role: RoleUser, Content: "looks good"}}, d.Messages)
	})

	t.Run("Removed Field Is Null", func(t *testing.T) {
		old := base()
		old.SetError("no analysis available")
		s := old.Clone()
		s.ClearError()

		d := Diff(old, s)
		require.NotNil(t, d)
		assert.Equal(t, json.RawMessage("null"), d.Fields["error"])
		assert.Nil(t, d.CurrentStep)
	})

	t.Run("Nil New State", func(t *testing.T) {
		assert.Nil(t, Diff(base(), nil))
	})
}
