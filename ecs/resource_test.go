package ecs_test

import (
	"testing"

	"github.com/archivale/ecs/ecs"
	"github.com/stretchr/testify/assert"
)

type GameClock struct {
	Tick int
}

func TestResourceSetGetRemove(t *testing.T) {
	w := ecs.NewWorld()
	assert.False(t, ecs.HasResource[GameClock](w))

	ecs.SetResource(w, GameClock{Tick: 1})
	assert.True(t, ecs.HasResource[GameClock](w))

	clock, ok := ecs.Resource[GameClock](w)
	assert.True(t, ok)
	assert.Equal(t, 1, clock.Tick)

	ecs.SetResource(w, GameClock{Tick: 2})
	clock, _ = ecs.Resource[GameClock](w)
	assert.Equal(t, 2, clock.Tick)

	ecs.RemoveResource[GameClock](w)
	assert.False(t, ecs.HasResource[GameClock](w))
}
