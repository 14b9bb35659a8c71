package ecs_test

// Fixture component types shared across the test files in this package.

type Position struct {
	X, Y float32
}

type Velocity struct {
	DX, DY float32
}

type Name struct {
	Value string
}

type Health struct {
	Current int
	Max     int
}

type PlayerController struct{}

type Score int32

type Tag string

type destroyCounter struct {
	n *int
}

func (d destroyCounter) Destroy() {
	*d.n++
}
