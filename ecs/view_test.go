package ecs_test

import (
	"testing"

	"github.com/archivale/ecs/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Kinematics struct {
	Pos *Position
	Vel *Velocity
}

type KinematicsWithName struct {
	Pos  *Position
	Vel  *Velocity
	Name *Name `ecs:"optional"`
}

func TestViewFillsRequiredFields(t *testing.T) {
	w := ecs.NewWorld()
	e := w.Spawn(Position{X: 1, Y: 2}, Velocity{DX: 3, DY: 4})

	view := ecs.NewView[Kinematics](w)
	got := view.Get(e)
	require.NotNil(t, got)
	assert.Equal(t, float32(1), got.Pos.X)
	assert.Equal(t, float32(3), got.Vel.DX)
}

func TestViewMissingRequiredFieldReturnsNil(t *testing.T) {
	w := ecs.NewWorld()
	e := w.Spawn(Position{X: 1})

	view := ecs.NewView[Kinematics](w)
	assert.Nil(t, view.Get(e))
}

func TestViewOptionalFieldNilWhenAbsent(t *testing.T) {
	w := ecs.NewWorld()
	e := w.Spawn(Position{X: 1}, Velocity{DX: 2})

	view := ecs.NewView[KinematicsWithName](w)
	got := view.Get(e)
	require.NotNil(t, got)
	assert.Nil(t, got.Name)
}

func TestViewIterMatchesOnlyQualifyingArchetypes(t *testing.T) {
	w := ecs.NewWorld()
	w.Spawn(Position{X: 1}, Velocity{DX: 1})
	w.Spawn(Position{X: 2})

	view := ecs.NewView[Kinematics](w)
	count := 0
	for _, k := range view.Iter() {
		count++
		assert.NotNil(t, k.Pos)
		assert.NotNil(t, k.Vel)
	}
	assert.Equal(t, 1, count)
}

func TestViewSpawn(t *testing.T) {
	w := ecs.NewWorld()
	view := ecs.NewView[Kinematics](w)

	pos := Position{X: 5}
	vel := Velocity{DX: 6}
	e := view.Spawn(Kinematics{Pos: &pos, Vel: &vel})

	g, err := ecs.Get[Position](w, e)
	require.NoError(t, err)
	assert.Equal(t, float32(5), g.Value().X)
	g.Release()
}
