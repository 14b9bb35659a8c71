package ecs

import (
	"reflect"
	"unsafe"
)

// column is one archetype's contiguous, aligned backing store for a single
// component type, plus its change-tracking bitsets and dynamic borrow
// count. Growth is geometric (factor 2) and relocates existing values by
// plain byte copy, which is sound because components are required to be
// trivially relocatable (spec §9, Relocatability). The buffer is obtained
// via reflect.New(reflect.ArrayOf(...)) so an arbitrary runtime-known
// component type gets a correctly sized and aligned Go allocation without
// any per-type code; this mirrors the reflect-backed storage in
// delaneyj-arche/ecs/storage.go, adapted here to also carry the
// added/mutated trackers and the borrow discipline this spec requires.
type column struct {
	info    *TypeInfo
	buffer  reflect.Value // addressable [cap]T array
	ptr     unsafe.Pointer
	cap     int
	added   bitset
	mutated bitset
	borrow  int32 // >0: shared count; <0: exclusive (-1); 0: free
}

func newColumn(info *TypeInfo, capacity int) *column {
	if capacity < 1 {
		capacity = 1
	}
	buf := reflect.New(reflect.ArrayOf(capacity, info.Type)).Elem()
	c := &column{
		info:   info,
		buffer: buf,
		ptr:    buf.Addr().UnsafePointer(),
		cap:    capacity,
	}
	c.added.grow(capacity)
	c.mutated.grow(capacity)
	return c
}

// growTo ensures the column can hold at least n rows, growing capacity by
// at least a factor of 2 as required by spec §4.2.
func (c *column) growTo(n int) {
	if n <= c.cap {
		return
	}
	newCap := c.cap * 2
	if newCap < n {
		newCap = n
	}
	old := c.buffer
	c.buffer = reflect.New(reflect.ArrayOf(newCap, c.info.Type)).Elem()
	c.ptr = c.buffer.Addr().UnsafePointer()
	reflect.Copy(c.buffer, old)
	c.cap = newCap
	c.added.grow(newCap)
	c.mutated.grow(newCap)
}

func (c *column) at(row int) unsafe.Pointer {
	return unsafe.Add(c.ptr, uintptr(row)*c.info.Size)
}

// put memcpy-moves the component bytes at src into row, asserting on every
// call (spec §5) that the caller's element size matches the column's.
func (c *column) put(row int, src unsafe.Pointer, size uintptr) {
	assertSize(c.info, size)
	copyBytes(c.at(row), src, c.info.Size)
}

func (c *column) get(row int, size uintptr) unsafe.Pointer {
	assertSize(c.info, size)
	return c.at(row)
}

func (c *column) dropRow(row int) {
	c.info.drop(c.at(row))
}

// swapLast relocates row `last`'s bytes and tracker bits into `row`,
// implementing the swap-remove half of Archetype.remove/moveTo.
func (c *column) swapLast(row, last int) {
	if row == last {
		return
	}
	copyBytes(c.at(row), c.at(last), c.info.Size)
	c.added.set(row, c.added.test(last))
	c.mutated.set(row, c.mutated.test(last))
}

// acquireShared / acquireExclusive / release implement the per-column
// dynamic borrow counters of spec §5 and §9: conflicts are fatal, never a
// recoverable error.
func (c *column) acquireShared() {
	if c.borrow < 0 {
		fatalf("borrow conflict: shared borrow of %s requested while an exclusive borrow is outstanding", c.info.Type)
	}
	c.borrow++
}

func (c *column) acquireExclusive() {
	if c.borrow != 0 {
		fatalf("borrow conflict: exclusive borrow of %s requested while %d other borrow(s) are outstanding", c.info.Type, c.borrow)
	}
	c.borrow = -1
}

func (c *column) release() {
	switch {
	case c.borrow > 0:
		c.borrow--
	case c.borrow < 0:
		c.borrow = 0
	}
}

// assertSize is the safety-critical check spec §5 requires at every
// put_dynamic/get_dynamic site: the caller's notion of the element size
// must match the column's recorded size.
func assertSize(info *TypeInfo, size uintptr) {
	if size != info.Size {
		fatalf("size mismatch for component %s: column element size %d, accessor size %d", info.Type, info.Size, size)
	}
}
