package ecs

import (
	"encoding/binary"
	"iter"
	"reflect"
	"slices"
	"unsafe"

	"github.com/kamstrup/intmap"
)

// World owns every archetype and the entity directory, and routes every
// structural operation (spawn, insert, remove, despawn, clear) to the
// right archetype migration. Its shape — a registry, a directory, an
// archetype slice plus an index keyed by sorted type-id vector — is
// grounded on plus3-ooftn's Storage type, generalized to the archetype
// index TheBitDrifter-warehouse/storage.go keeps and the generational
// directory from original_source's hecs World.
type World struct {
	registry   *Registry
	directory  *directory
	archetypes []*Archetype
	index      map[string]archetypeID
	generation uint64
	removed    *intmap.Map[TypeID, []Entity]
	resources  *resources
}

// NewWorld returns a world with its empty archetype (archetype 0, the
// empty component-set required by spec invariant 3) already created.
func NewWorld() *World {
	w := &World{
		registry:  NewRegistry(),
		directory: newDirectory(),
		index:     make(map[string]archetypeID),
		removed:   intmap.New[TypeID, []Entity](64),
		resources: newResources(),
	}
	w.archetypeFor(nil, nil)
	return w
}

func typeIDsKey(ids []TypeID) string {
	buf := make([]byte, len(ids)*4)
	for i, id := range ids {
		binary.LittleEndian.PutUint32(buf[i*4:], uint32(id))
	}
	return string(buf)
}

// archetypeFor returns the archetype for exactly this sorted type-id
// vector, creating it (and bumping the archetype generation) if this is
// the first time the set is observed.
func (w *World) archetypeFor(ids []TypeID, infos []*TypeInfo) *Archetype {
	key := typeIDsKey(ids)
	if id, ok := w.index[key]; ok {
		return w.archetypes[id]
	}
	id := archetypeID(len(w.archetypes))
	a := newArchetype(id, infos)
	w.archetypes = append(w.archetypes, a)
	w.index[key] = id
	w.generation++
	return a
}

func (w *World) logRemoved(id TypeID, e Entity) {
	list, _ := w.removed.Get(id)
	w.removed.Put(id, append(list, e))
}

// Spawn creates a new entity carrying the given components, placing it in
// the archetype matching their sorted type-set (spec §4.3).
func (w *World) Spawn(components ...any) Entity {
	b := newBundle(w.registry, components)
	ids := b.typeIDs()
	arch := w.archetypeFor(ids, b.infos)

	e := w.directory.allocate()
	row := arch.allocate(e)
	b.drive(func(info *TypeInfo, ptr unsafe.Pointer) {
		arch.putDynamic(row, info.ID, ptr, info.Size, true)
	})
	w.directory.setLocation(e.ID, arch.id, row)
	return e
}

// SpawnAsEntity spawns using a caller-supplied id+generation instead of
// minting a fresh one. Per spec §9, a colliding id is refused rather than
// left undefined.
func (w *World) SpawnAsEntity(e Entity, components ...any) error {
	if !w.directory.allocateAs(e) {
		return DuplicateEntityError{Entity: e}
	}
	b := newBundle(w.registry, components)
	ids := b.typeIDs()
	arch := w.archetypeFor(ids, b.infos)

	row := arch.allocate(e)
	b.drive(func(info *TypeInfo, ptr unsafe.Pointer) {
		arch.putDynamic(row, info.ID, ptr, info.Size, true)
	})
	w.directory.setLocation(e.ID, arch.id, row)
	return nil
}

// SpawnBatch spawns one entity per value yielded by seq, all of the single
// statically known component type T, into one shared archetype. The
// sequence is always drained to completion (spec §4.4's MUST-finish
// resolution of the spawn_batch open question): there is no way to hold a
// partially-consumed Go range-over-func iterator across calls, so eager,
// full consumption is the only representable — and spec-compliant —
// behavior.
func SpawnBatch[T any](w *World, seq iter.Seq[T]) []Entity {
	info := w.registry.lookup(reflect.TypeFor[T]())
	ids := []TypeID{info.ID}
	arch := w.archetypeFor(ids, []*TypeInfo{info})

	var entities []Entity
	for v := range seq {
		e := w.directory.allocate()
		row := arch.allocate(e)
		arch.putDynamic(row, info.ID, valuePointer(any(v)), info.Size, true)
		w.directory.setLocation(e.ID, arch.id, row)
		entities = append(entities, e)
	}
	return entities
}

// Insert adds or overwrites components on an existing entity, migrating it
// to a new archetype when the bundle introduces a type it did not already
// carry (spec §4.5).
func (w *World) Insert(e Entity, components ...any) error {
	loc, ok := w.directory.locate(e)
	if !ok {
		return NoSuchEntity{Entity: e}
	}
	src := w.archetypes[loc.archetype]
	b := newBundle(w.registry, components)
	bundleIDs := b.typeIDs()

	for _, id := range bundleIDs {
		if idx, ok := src.columnIndex(id); ok {
			src.columns[idx].dropRow(loc.row)
		}
	}

	targetIDs := unionSortedTypeIDs(src.typeIDs, bundleIDs)

	if slices.Equal(targetIDs, src.typeIDs) {
		b.drive(func(info *TypeInfo, ptr unsafe.Pointer) {
			idx, _ := src.columnIndex(info.ID)
			c := src.columns[idx]
			c.put(loc.row, ptr, info.Size)
			c.mutated.set(loc.row, true)
		})
		return nil
	}

	targetInfos := make([]*TypeInfo, len(targetIDs))
	for i, id := range targetIDs {
		targetInfos[i] = w.registry.infoByID(id)
	}
	target := w.archetypeFor(targetIDs, targetInfos)
	row := target.allocate(e)

	moved, movedOK := src.moveTo(loc.row, func(srcPtr unsafe.Pointer, info *TypeInfo, wasAdded, wasMutated bool) {
		if containsTypeID(bundleIDs, info.ID) {
			return
		}
		target.putPreserving(row, info.ID, srcPtr, info.Size, wasAdded, wasMutated)
	})

	b.drive(func(info *TypeInfo, ptr unsafe.Pointer) {
		target.putDynamic(row, info.ID, ptr, info.Size, true)
	})

	w.directory.setLocation(e.ID, target.id, row)
	if movedOK {
		w.directory.setLocation(moved.ID, loc.archetype, loc.row)
	}
	return nil
}

// Remove strips the named component types from e, returning their values
// (ownership transferred to the caller) in the same order as ids. Fails
// with MissingComponentError — and removes nothing — if any id is absent
// (spec §4.6: "no partial removal").
func (w *World) Remove(e Entity, ids []TypeID) ([]any, error) {
	loc, ok := w.directory.locate(e)
	if !ok {
		return nil, NoSuchEntity{Entity: e}
	}
	src := w.archetypes[loc.archetype]
	for _, id := range ids {
		if !src.Has(id) {
			return nil, MissingComponentError{Type: w.registry.infoByID(id).Type}
		}
	}

	results := make([]any, len(ids))
	for i, id := range ids {
		idx, _ := src.columnIndex(id)
		c := src.columns[idx]
		ptr := c.get(loc.row, c.info.Size)
		results[i] = reflect.NewAt(c.info.Type, ptr).Elem().Interface()
	}

	sortedIDs := slices.Sorted(slices.Values(ids))
	targetIDs := subtractSortedTypeIDs(src.typeIDs, sortedIDs)
	targetInfos := make([]*TypeInfo, len(targetIDs))
	for i, id := range targetIDs {
		targetInfos[i] = w.registry.infoByID(id)
	}
	target := w.archetypeFor(targetIDs, targetInfos)
	row := target.allocate(e)

	moved, movedOK := src.moveTo(loc.row, func(srcPtr unsafe.Pointer, info *TypeInfo, wasAdded, wasMutated bool) {
		if containsTypeID(sortedIDs, info.ID) {
			w.logRemoved(info.ID, e)
			return
		}
		target.putPreserving(row, info.ID, srcPtr, info.Size, wasAdded, wasMutated)
	})

	w.directory.setLocation(e.ID, target.id, row)
	if movedOK {
		w.directory.setLocation(moved.ID, loc.archetype, loc.row)
	}
	return results, nil
}

// TypeOf returns the stable TypeID for T, registering it if this is the
// first time the world has seen it. Used to build the dynamic type-sets
// World.Remove expects when more than one type must be removed atomically.
func TypeOf[T any](w *World) TypeID {
	return w.registry.lookup(reflect.TypeFor[T]()).ID
}

// RemoveOne removes a single statically typed component and returns its
// value, a convenience wrapper over Remove for the common single-type
// case.
func RemoveOne[T any](w *World, e Entity) (T, error) {
	var zero T
	info := w.registry.lookup(reflect.TypeFor[T]())
	vals, err := w.Remove(e, []TypeID{info.ID})
	if err != nil {
		return zero, err
	}
	return vals[0].(T), nil
}

// Despawn destroys e: its components are dropped, its directory slot is
// recycled with a bumped generation, and every component type it carried
// is logged as removed (spec §4.7).
func (w *World) Despawn(e Entity) error {
	loc, ok := w.directory.locate(e)
	if !ok {
		return NoSuchEntity{Entity: e}
	}
	arch := w.archetypes[loc.archetype]
	for _, id := range arch.typeIDs {
		w.logRemoved(id, e)
	}
	moved, movedOK := arch.remove(loc.row)
	w.directory.free(e.ID)
	if movedOK {
		w.directory.setLocation(moved.ID, loc.archetype, loc.row)
	}
	return nil
}

// Contains reports whether e names a currently live entity.
func (w *World) Contains(e Entity) bool {
	_, ok := w.directory.locate(e)
	return ok
}

// Clear despawns every entity in every archetype, logging each of their
// components as removed, then resets the directory. Archetypes themselves
// survive (spec §4.7).
func (w *World) Clear() {
	for _, arch := range w.archetypes {
		for row := 0; row < arch.len; row++ {
			e := arch.entities[row]
			for _, id := range arch.typeIDs {
				w.logRemoved(id, e)
			}
		}
		arch.clear()
	}
	w.directory.reset()
}

// ClearTrackers zeroes every archetype's added/mutated bitsets and empties
// the removed-components log.
func (w *World) ClearTrackers() {
	for _, arch := range w.archetypes {
		arch.clearTrackers()
	}
	w.removed = intmap.New[TypeID, []Entity](64)
}

// ArchetypesGeneration returns the monotone counter bumped whenever a new
// archetype is created (spec §4.9, I8).
func (w *World) ArchetypesGeneration() uint64 { return w.generation }

// Archetypes enumerates every archetype, including the empty one, so an
// external query planner can pre-compute which ones match its pattern.
func (w *World) Archetypes() []*Archetype { return w.archetypes }

// Removed returns the entities from which a component of type T has been
// removed (by Remove, Despawn, or Clear) since the last ClearTrackers.
func Removed[T any](w *World) []Entity {
	info := w.registry.lookup(reflect.TypeFor[T]())
	list, _ := w.removed.Get(info.ID)
	return list
}

// Reserve ensures the archetype for the sole component type T can hold n
// more rows without growing, amortizing allocation for a known-size batch
// of upcoming spawns.
func Reserve[T any](w *World, n int) {
	info := w.registry.lookup(reflect.TypeFor[T]())
	ids := []TypeID{info.ID}
	arch := w.archetypeFor(ids, []*TypeInfo{info})
	arch.growTo(arch.len + n)
}

// EntityView is a handle into one entity's current row, used by Iter to
// hand callers typed access to the entity's components without exposing
// the archetype directly.
type EntityView struct {
	w *World
	e Entity
}

// Component returns entity's value of type T, if it currently carries one.
func Component[T any](v EntityView) (T, bool) {
	var zero T
	loc, ok := v.w.directory.locate(v.e)
	if !ok {
		return zero, false
	}
	arch := v.w.archetypes[loc.archetype]
	info := v.w.registry.lookup(reflect.TypeFor[T]())
	ptr, ok := arch.getDynamic(loc.row, info.ID, info.Size)
	if !ok {
		return zero, false
	}
	return *(*T)(ptr), true
}

// Added reports whether v's component of type T was written with its added
// bit set since the last ClearTrackers, or false if v has no such
// component.
func Added[T any](v EntityView) bool {
	loc, ok := v.w.directory.locate(v.e)
	if !ok {
		return false
	}
	info := v.w.registry.lookup(reflect.TypeFor[T]())
	return v.w.archetypes[loc.archetype].Added(info.ID, loc.row)
}

// Mutated reports whether v's component of type T was written since the
// last ClearTrackers, or false if v has no such component.
func Mutated[T any](v EntityView) bool {
	loc, ok := v.w.directory.locate(v.e)
	if !ok {
		return false
	}
	info := v.w.registry.lookup(reflect.TypeFor[T]())
	return v.w.archetypes[loc.archetype].Mutated(info.ID, loc.row)
}

// Types returns the component types the viewed entity currently carries, in
// canonical (ascending TypeID) order.
func (v EntityView) Types() []TypeID {
	loc, ok := v.w.directory.locate(v.e)
	if !ok {
		return nil
	}
	return v.w.archetypes[loc.archetype].Types()
}

// Values returns a boxed copy of every component the viewed entity currently
// carries, in the same order as Types.
func (v EntityView) Values() []any {
	loc, ok := v.w.directory.locate(v.e)
	if !ok {
		return nil
	}
	arch := v.w.archetypes[loc.archetype]
	out := make([]any, len(arch.typeIDs))
	for i, id := range arch.typeIDs {
		info := v.w.registry.infoByID(id)
		ptr, _ := arch.getDynamic(loc.row, id, info.Size)
		out[i] = reflect.NewAt(info.Type, ptr).Elem().Interface()
	}
	return out
}

// Entity returns a view onto e's current row across all the components it
// carries (spec §6, the entity(Entity) operation). Unlike Iter, which only
// ever yields live entities, this validates e up front.
func (w *World) Entity(e Entity) (EntityView, error) {
	if !w.Contains(e) {
		return EntityView{}, NoSuchEntity{Entity: e}
	}
	return EntityView{w: w, e: e}, nil
}

// Iter yields every live entity paired with a view onto its current row,
// in archetype order (spec §4.9). Mutating the world mid-traversal is
// undefined — callers must finish or abandon the traversal before any
// structural operation, per spec §5.
func (w *World) Iter() iter.Seq2[Entity, EntityView] {
	return func(yield func(Entity, EntityView) bool) {
		for _, arch := range w.archetypes {
			for row := 0; row < arch.len; row++ {
				e := arch.entities[row]
				if !yield(e, EntityView{w: w, e: e}) {
					return
				}
			}
		}
	}
}
