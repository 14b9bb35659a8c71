package ecs_test

import (
	"testing"

	"github.com/archivale/ecs/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDespawnBumpsGeneration(t *testing.T) {
	w := ecs.NewWorld()
	e := w.Spawn(Position{X: 1})

	require.NoError(t, w.Despawn(e))
	assert.False(t, w.Contains(e))

	again := w.Spawn(Position{X: 2})
	assert.Equal(t, e.ID, again.ID)
	assert.NotEqual(t, e.Generation, again.Generation)

	_, err := ecs.Get[Position](w, e)
	assert.ErrorAs(t, err, &ecs.NoSuchEntity{})
}

func TestContainsAndIdentity(t *testing.T) {
	w := ecs.NewWorld()
	e := w.Spawn(Position{}, Velocity{})
	assert.True(t, w.Contains(e))

	stale := ecs.Entity{ID: e.ID, Generation: e.Generation + 1}
	assert.False(t, w.Contains(stale))
}
