package runtime

import (
	"testing"

	"github.com/aretw0/adflow/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestRoute_ForwardClosure(t *testing.T) {
	order := domain.ForwardOrder
	for i := 0; i < len(order)-1; i++ {
		target, ok := Route(order[i], domain.IntentNext)
		assert.True(t, ok)
		assert.Equal(t, order[i+1], target, "next from %s", order[i])
	}

	target, ok := Route(domain.StageComplete, domain.IntentNext)
	assert.True(t, ok)
	assert.Equal(t, domain.StageComplete, target)
}

func TestRoute_SelfAndControl(t *testing.T) {
	for _, s := range domain.ForwardOrder {
		target, ok := Route(s, domain.IntentFor(s))
		assert.True(t, ok)
		assert.Equal(t, s, target)

		target, ok = Route(s, domain.IntentStay)
		assert.True(t, ok)
		assert.Equal(t, s, target)
	}

	target, ok := Route(domain.StageAnalyze, domain.IntentComplete)
	assert.True(t, ok)
	assert.Equal(t, domain.StageComplete, target)

	target, ok = Route(domain.StageAnalyze, domain.IntentFor(domain.StageRenderVideo))
	assert.True(t, ok)
	assert.Equal(t, domain.StageRenderVideo, target)
}

func TestRoute_UnknownTerminates(t *testing.T) {
	_, ok := Route(domain.StageAnalyze, domain.Intent("teleport"))
	assert.False(t, ok)
	_, ok = Route(domain.StageAnalyze, domain.Intent(""))
	assert.False(t, ok)
}
