package ecs

import (
	"unsafe"

	"github.com/TheBitDrifter/mask"
)

type archetypeID uint32

// emitFunc receives one retained component's bytes during a move_to drive
// (spec §4.2): the caller decides where src's bytes end up, so insert and
// remove can route individual components to a target archetype or to the
// removed-components log in a single pass over the source row.
type emitFunc func(src unsafe.Pointer, info *TypeInfo, wasAdded, wasMutated bool)

// Archetype is a column store for every entity sharing one exact
// component-set. Columns are kept in ascending TypeID order so two bundles
// built from the same components in different orders resolve to the same
// Archetype (spec I5, order independence).
//
// The column/growth mechanics are grounded on
// delaneyj-arche/ecs/{archetype,storage}.go's reflect+unsafe buffers; the
// overall shape (an id, a Table()-like set of columns, row bookkeeping) is
// grounded on TheBitDrifter-warehouse/archetype.go and plus3-ooftn's
// Archetype type.
type Archetype struct {
	id       archetypeID
	typeIDs  []TypeID
	columns  []*column // parallel to typeIDs
	entities []Entity  // row -> owning entity
	len      int
	cap      int
}

func newArchetype(id archetypeID, infos []*TypeInfo) *Archetype {
	ids := make([]TypeID, len(infos))
	cols := make([]*column, len(infos))
	for i, info := range infos {
		ids[i] = info.ID
		cols[i] = newColumn(info, 1)
	}
	return &Archetype{
		id:       id,
		typeIDs:  ids,
		columns:  cols,
		entities: make([]Entity, 1),
		cap:      1,
	}
}

// ID returns the archetype's identifier.
func (a *Archetype) ID() uint32 { return uint32(a.id) }

// Len returns the number of live rows.
func (a *Archetype) Len() int { return a.len }

// Types returns the sorted TypeIDs that define this archetype's
// component-set.
func (a *Archetype) Types() []TypeID { return a.typeIDs }

// EntityAt returns the entity occupying row.
func (a *Archetype) EntityAt(row int) Entity { return a.entities[row] }

// Has reports whether this archetype carries a column for id.
func (a *Archetype) Has(id TypeID) bool {
	_, ok := a.columnIndex(id)
	return ok
}

// Added reports whether the component for id at row was written with its
// added bit set since the last clearTrackers, or false if this archetype
// has no column for id (spec §3, §4.10 — the per-row change-tracking
// markers external systems must be able to observe).
func (a *Archetype) Added(id TypeID, row int) bool {
	idx, ok := a.columnIndex(id)
	if !ok {
		return false
	}
	return a.columns[idx].added.test(row)
}

// Mutated reports whether the component for id at row was written since the
// last clearTrackers, or false if this archetype has no column for id.
func (a *Archetype) Mutated(id TypeID, row int) bool {
	idx, ok := a.columnIndex(id)
	if !ok {
		return false
	}
	return a.columns[idx].mutated.test(row)
}

func (a *Archetype) columnIndex(id TypeID) (int, bool) {
	lo, hi := 0, len(a.typeIDs)
	for lo < hi {
		mid := (lo + hi) / 2
		if a.typeIDs[mid] < id {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo < len(a.typeIDs) && a.typeIDs[lo] == id {
		return lo, true
	}
	return -1, false
}

// signature returns a fast, order-insensitive fingerprint of this
// archetype's component-set for use by query predicates (see query.go).
// It is a performance aid, never the source of truth for archetype
// identity — the sorted typeIDs vector (and the world's archetype index
// keyed on it) remains canonical.
func (a *Archetype) signature() mask.Mask {
	var m mask.Mask
	for _, id := range a.typeIDs {
		m.Mark(uint32(id))
	}
	return m
}

// growTo ensures the archetype (entity column, every component column, and
// their trackers) can hold at least n rows, growing capacity by at least a
// factor of 2 (spec §4.2).
func (a *Archetype) growTo(n int) {
	if n <= a.cap {
		return
	}
	newCap := a.cap * 2
	if newCap < n {
		newCap = n
	}
	grown := make([]Entity, newCap)
	copy(grown, a.entities)
	a.entities = grown
	a.cap = newCap
	for _, c := range a.columns {
		c.growTo(newCap)
	}
}

// allocate reserves a new row for e. Component cells are left
// uninitialized; the caller must putDynamic every column of this archetype
// before the row is considered valid.
func (a *Archetype) allocate(e Entity) int {
	row := a.len
	a.len++
	a.growTo(a.len)
	a.entities[row] = e
	return row
}

// putDynamic memcpy-moves size bytes from src into the column for id at
// row. If markAdded, the added bit is set; the mutated bit is always set.
func (a *Archetype) putDynamic(row int, id TypeID, src unsafe.Pointer, size uintptr, markAdded bool) {
	idx, ok := a.columnIndex(id)
	if !ok {
		fatalf("archetype %d has no column for type id %d", a.id, id)
	}
	c := a.columns[idx]
	c.put(row, src, size)
	if markAdded {
		c.added.set(row, true)
	}
	c.mutated.set(row, true)
}

// putPreserving writes src's bytes into the column for id at row without
// recomputing the added/mutated bits — the caller supplies bits read from
// the source archetype. Used when migrating retained components during
// insert/remove (spec §4.5 step 4, §4.6 step 3), where a component's
// history must survive the move.
func (a *Archetype) putPreserving(row int, id TypeID, src unsafe.Pointer, size uintptr, wasAdded, wasMutated bool) {
	idx, ok := a.columnIndex(id)
	if !ok {
		fatalf("archetype %d has no column for type id %d", a.id, id)
	}
	c := a.columns[idx]
	c.put(row, src, size)
	c.added.set(row, wasAdded)
	c.mutated.set(row, wasMutated)
}

// getDynamic returns the address of the cell for id at row, or false if
// this archetype has no such column.
func (a *Archetype) getDynamic(row int, id TypeID, size uintptr) (unsafe.Pointer, bool) {
	idx, ok := a.columnIndex(id)
	if !ok {
		return nil, false
	}
	return a.columns[idx].get(row, size), true
}

// remove drops every component at row (calling each type's drop function),
// then swap-removes the row. It returns the entity that was moved into
// row's place, if any, so the caller can fix up its directory entry.
func (a *Archetype) remove(row int) (Entity, bool) {
	for _, c := range a.columns {
		c.dropRow(row)
	}
	return a.removeRowBytes(row)
}

// moveTo hands every component at row to emit — giving the caller the
// chance to place the bytes into a target archetype or log them as
// removed — then removes row without calling drops, since ownership of
// the bytes has already been transferred.
func (a *Archetype) moveTo(row int, emit emitFunc) (Entity, bool) {
	for _, c := range a.columns {
		emit(c.at(row), c.info, c.added.test(row), c.mutated.test(row))
	}
	return a.removeRowBytes(row)
}

// removeRowBytes performs the swap-remove of row's bytes and tracker bits
// without touching drop functions.
func (a *Archetype) removeRowBytes(row int) (Entity, bool) {
	last := a.len - 1
	var moved Entity
	movedAny := false
	if row != last {
		for _, c := range a.columns {
			c.swapLast(row, last)
		}
		a.entities[row] = a.entities[last]
		moved = a.entities[row]
		movedAny = true
	}
	a.len--
	return moved, movedAny
}

// clear drops every live component value and resets len to 0, preserving
// capacity.
func (a *Archetype) clear() {
	for row := 0; row < a.len; row++ {
		for _, c := range a.columns {
			c.dropRow(row)
		}
	}
	a.len = 0
}

// clearTrackers zeroes every column's added and mutated bitsets.
func (a *Archetype) clearTrackers() {
	for _, c := range a.columns {
		c.added.clearAll()
		c.mutated.clearAll()
	}
}
