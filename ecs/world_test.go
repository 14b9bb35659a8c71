package ecs_test

import (
	"testing"

	"github.com/archivale/ecs/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Scenario 1: distinct archetypes for distinct component sets; missing
// component returns an error rather than a zero value.
func TestSpawnDistinctArchetypes(t *testing.T) {
	w := ecs.NewWorld()
	a := w.Spawn(Score(123), Tag("abc"))
	b := w.Spawn(Score(456), PlayerController{})

	ga, err := ecs.Get[Score](w, a)
	require.NoError(t, err)
	assert.EqualValues(t, 123, *ga.Value())
	ga.Release()

	gb, err := ecs.Get[Score](w, b)
	require.NoError(t, err)
	assert.EqualValues(t, 456, *gb.Value())
	gb.Release()

	_, err = ecs.Get[Tag](w, b)
	assert.Error(t, err)
}

// Scenario 2: remove a pair of component types, leaving the rest.
func TestRemoveNarrowsArchetype(t *testing.T) {
	w := ecs.NewWorld()
	e := w.Spawn(Score(1), Tag("x"), PlayerController{})

	vals, err := w.Remove(e, []ecs.TypeID{ecs.TypeOf[Score](w), ecs.TypeOf[Tag](w)})
	require.NoError(t, err)
	require.Len(t, vals, 2)
	assert.EqualValues(t, 1, vals[0])
	assert.Equal(t, Tag("x"), vals[1])

	_, err = ecs.Get[Score](w, e)
	assert.Error(t, err)

	g, err := ecs.Get[PlayerController](w, e)
	require.NoError(t, err)
	g.Release()
}

// Scenario 3: inserting the same type again overwrites in place; no new
// archetype, no removed-log entry.
func TestInsertOverwriteSameArchetype(t *testing.T) {
	w := ecs.NewWorld()
	e := w.Spawn(Score(1))
	before := w.ArchetypesGeneration()

	require.NoError(t, w.Insert(e, Score(2)))
	assert.Equal(t, before, w.ArchetypesGeneration())

	g, err := ecs.Get[Score](w, e)
	require.NoError(t, err)
	assert.EqualValues(t, 2, *g.Value())
	g.Release()

	assert.Empty(t, ecs.Removed[Score](w))
}

// Scenario 4: despawn logs removal and invalidates the handle.
func TestDespawnLogsRemoval(t *testing.T) {
	w := ecs.NewWorld()
	e := w.Spawn(Score(1))

	require.NoError(t, w.Despawn(e))
	assert.Contains(t, ecs.Removed[Score](w), e)

	_, err := ecs.Get[Score](w, e)
	assert.Error(t, err)
}

// Scenario 5: spawn_batch spawns one entity per value and preserves order.
func TestSpawnBatch(t *testing.T) {
	w := ecs.NewWorld()
	values := func(yield func(Score) bool) {
		for i := 0; i < 1000; i++ {
			if !yield(Score(i)) {
				return
			}
		}
	}

	entities := ecs.SpawnBatch(w, values)
	require.Len(t, entities, 1000)
	for i, e := range entities {
		g, err := ecs.Get[Score](w, e)
		require.NoError(t, err)
		assert.EqualValues(t, i, *g.Value())
		g.Release()
	}
}

// Scenario 6: archetypes_generation increments only on archetype creation.
func TestArchetypesGenerationMonotone(t *testing.T) {
	w := ecs.NewWorld()
	g0 := w.ArchetypesGeneration()

	w.Spawn(Score(1))
	g1 := w.ArchetypesGeneration()
	assert.NotEqual(t, g0, g1)

	w.Spawn(Score(2))
	assert.Equal(t, g1, w.ArchetypesGeneration())
}

// I6: inserting a new value for an already-present type sets mutated but
// not a second added, and leaves the entity in the same archetype.
func TestInsertIdempotentOverwriteTracksMutatedOnly(t *testing.T) {
	w := ecs.NewWorld()
	e := w.Spawn(Score(1))

	view, err := w.Entity(e)
	require.NoError(t, err)
	assert.True(t, ecs.Added[Score](view))
	assert.True(t, ecs.Mutated[Score](view))

	w.ClearTrackers()
	assert.False(t, ecs.Added[Score](view))
	assert.False(t, ecs.Mutated[Score](view))

	require.NoError(t, w.Insert(e, Score(2)))

	g, err := ecs.Get[Score](w, e)
	require.NoError(t, err)
	assert.EqualValues(t, 2, *g.Value())
	g.Release()

	assert.False(t, ecs.Added[Score](view), "overwrite must not set added a second time")
	assert.True(t, ecs.Mutated[Score](view))
}

// I9: migrating one entity never disturbs another entity's values, though
// it may relocate a sibling via swap-remove.
func TestMigrationPreservesSiblingValues(t *testing.T) {
	w := ecs.NewWorld()
	a := w.Spawn(Score(1))
	b := w.Spawn(Score(2))
	c := w.Spawn(Score(3))

	require.NoError(t, w.Insert(a, Tag("now-has-tag")))

	gb, err := ecs.Get[Score](w, b)
	require.NoError(t, err)
	assert.EqualValues(t, 2, *gb.Value())
	gb.Release()

	gc, err := ecs.Get[Score](w, c)
	require.NoError(t, err)
	assert.EqualValues(t, 3, *gc.Value())
	gc.Release()
}

func TestClearLogsEveryComponentAndResetsDirectory(t *testing.T) {
	w := ecs.NewWorld()
	e := w.Spawn(Score(1), Tag("x"))

	w.Clear()
	assert.False(t, w.Contains(e))
	assert.Contains(t, ecs.Removed[Score](w), e)
	assert.Contains(t, ecs.Removed[Tag](w), e)

	again := w.Spawn(Score(9))
	assert.Equal(t, uint32(0), again.ID)
}

// I3: a handle from before Clear must never alias one issued after, even
// when the recycled id is identical — the generation must differ too.
func TestClearBumpsGenerationSoStaleHandlesStayRejected(t *testing.T) {
	w := ecs.NewWorld()
	e := w.Spawn(Score(1))

	w.Clear()
	again := w.Spawn(Score(9))

	assert.Equal(t, e.ID, again.ID)
	assert.NotEqual(t, e.Generation, again.Generation)
	assert.False(t, w.Contains(e))
	assert.True(t, w.Contains(again))
}

func TestClearTrackersEmptiesRemovedLog(t *testing.T) {
	w := ecs.NewWorld()
	e := w.Spawn(Score(1))
	require.NoError(t, w.Despawn(e))
	require.NotEmpty(t, ecs.Removed[Score](w))

	w.ClearTrackers()
	assert.Empty(t, ecs.Removed[Score](w))
}

func TestSpawnAsEntityRefusesCollision(t *testing.T) {
	w := ecs.NewWorld()
	e := w.Spawn(Score(1))

	err := w.SpawnAsEntity(e, Score(2))
	assert.Error(t, err)
}

func TestRemoveMissingComponentFails(t *testing.T) {
	w := ecs.NewWorld()
	e := w.Spawn(Score(1))

	_, err := w.Remove(e, []ecs.TypeID{ecs.TypeOf[Tag](w)})
	assert.Error(t, err)

	g, err := ecs.Get[Score](w, e)
	require.NoError(t, err, "a failed remove must not partially remove")
	g.Release()
}

func TestEntityViewExposesAllComponents(t *testing.T) {
	w := ecs.NewWorld()
	e := w.Spawn(Position{X: 1, Y: 2}, Score(7))

	view, err := w.Entity(e)
	require.NoError(t, err)
	assert.Len(t, view.Types(), 2)
	assert.ElementsMatch(t, []any{Position{X: 1, Y: 2}, Score(7)}, view.Values())

	pos, ok := ecs.Component[Position](view)
	require.True(t, ok)
	assert.Equal(t, float32(1), pos.X)

	require.NoError(t, w.Despawn(e))
	_, err = w.Entity(e)
	assert.Error(t, err)
}

func TestIterVisitsEveryLiveEntity(t *testing.T) {
	w := ecs.NewWorld()
	a := w.Spawn(Position{X: 1})
	b := w.Spawn(Position{X: 2}, Velocity{DX: 1})
	w.Despawn(w.Spawn(Position{X: 3}))

	seen := map[ecs.Entity]bool{}
	for e, view := range w.Iter() {
		pos, ok := ecs.Component[Position](view)
		require.True(t, ok)
		seen[e] = true
		_ = pos
	}
	assert.True(t, seen[a])
	assert.True(t, seen[b])
	assert.Len(t, seen, 2)
}

