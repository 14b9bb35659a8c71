package ecs

import (
	"fmt"
	"reflect"

	"github.com/TheBitDrifter/bark"
)

// NoSuchEntity is returned when an Entity handle is unknown or has already
// been despawned (its generation no longer matches the directory slot).
type NoSuchEntity struct {
	Entity Entity
}

func (e NoSuchEntity) Error() string {
	return fmt.Sprintf("no such entity: %v", e.Entity)
}

// MissingComponentError is returned when an operation names a component
// type the entity does not currently carry.
type MissingComponentError struct {
	Type reflect.Type
}

func (e MissingComponentError) Error() string {
	return fmt.Sprintf("entity does not have component: %s", e.Type)
}

// DuplicateEntityError is returned by SpawnAsEntity when the requested id
// already names a live entity.
type DuplicateEntityError struct {
	Entity Entity
}

func (e DuplicateEntityError) Error() string {
	return fmt.Sprintf("entity already exists: %v", e.Entity)
}

// fatalf reports a programming-bug condition — a borrow conflict or a
// size/alignment mismatch in a type-erased accessor — per spec §7: these
// are never recoverable errors, they abort the operation loudly.
func fatalf(format string, args ...any) {
	panic(bark.AddTrace(fmt.Errorf(format, args...)))
}
