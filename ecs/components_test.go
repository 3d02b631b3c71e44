package ecs_test

import "github.com/plus3/molview/ecs"

type Atom struct {
	Index  int
	Symbol string
}

type Position struct {
	X, Y, Z float32
}

type Bond struct {
	A, B  int
	Order int
}

type Radius float32

type Selected struct{}

type Label string

type Neighbors struct {
	Indices []int
}

// Panel carries a render callback, like a debug UI window.
type Panel struct {
	Render func()
}

func newTestRegistry() *ecs.ComponentRegistry {
	registry := ecs.NewComponentRegistry()
	ecs.RegisterComponent[Atom](registry)
	ecs.RegisterComponent[Position](registry)
	ecs.RegisterComponent[Bond](registry)
	ecs.RegisterComponent[Radius](registry)
	ecs.RegisterComponent[Selected](registry)
	ecs.RegisterComponent[Label](registry)
	ecs.RegisterComponent[Neighbors](registry)
	ecs.RegisterComponent[Panel](registry)
	return registry
}

// spawnWater spawns the three atoms and two bonds of a water molecule.
func spawnWater(storage *ecs.Storage) (atoms [3]ecs.EntityId, bonds [2]ecs.EntityId) {
	atoms[0] = storage.Spawn(Atom{Index: 0, Symbol: "O"}, Position{}, Radius(0.66))
	atoms[1] = storage.Spawn(Atom{Index: 1, Symbol: "H"}, Position{X: 0.96}, Radius(0.31))
	atoms[2] = storage.Spawn(Atom{Index: 2, Symbol: "H"}, Position{X: -0.24, Y: 0.93}, Radius(0.31))
	bonds[0] = storage.Spawn(Bond{A: 0, B: 1, Order: 1})
	bonds[1] = storage.Spawn(Bond{A: 0, B: 2, Order: 1})
	return atoms, bonds
}
