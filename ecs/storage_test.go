package ecs_test

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plus3/molview/ecs"
)

func TestEntityIdEncoding(t *testing.T) {
	id := ecs.NewEntityId(0xCAFE, 42)
	assert.Equal(t, uint32(0xCAFE), id.ArchetypeId())
	assert.Equal(t, uint32(42), id.Index())

	id = ecs.NewEntityId(0xFFFFFFFF, 0xFFFFFFFF)
	assert.Equal(t, uint32(0xFFFFFFFF), id.ArchetypeId())
	assert.Equal(t, uint32(0xFFFFFFFF), id.Index())
}

func TestSpawnAndGetComponent(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	atoms, bonds := spawnWater(storage)

	atom, ok := storage.GetComponent(atoms[1], reflect.TypeFor[Atom]()).(*Atom)
	require.True(t, ok)
	assert.Equal(t, Atom{Index: 1, Symbol: "H"}, *atom)

	radius, ok := storage.GetComponent(atoms[0], reflect.TypeFor[Radius]()).(*Radius)
	require.True(t, ok)
	assert.Equal(t, Radius(0.66), *radius)

	assert.Nil(t, storage.GetComponent(bonds[0], reflect.TypeFor[Atom]()))
	assert.Equal(t, atoms[0].ArchetypeId(), atoms[2].ArchetypeId(), "same component set, same archetype")
	assert.NotEqual(t, atoms[0].ArchetypeId(), bonds[0].ArchetypeId())
}

func TestSpawnOrderIndependent(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	a := storage.Spawn(Atom{Symbol: "C"}, Position{})
	b := storage.Spawn(Position{}, Atom{Symbol: "N"})
	c := storage.Spawn(&Atom{Symbol: "O"}, &Position{})
	assert.Equal(t, a.ArchetypeId(), b.ArchetypeId())
	assert.Equal(t, a.ArchetypeId(), c.ArchetypeId())
}

func TestComponentsAreMutableInPlace(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	id := storage.Spawn(Atom{Symbol: "C"}, Position{X: 1})

	storage.GetComponent(id, reflect.TypeFor[Position]()).(*Position).Z = 5

	pos := storage.GetComponent(id, reflect.TypeFor[Position]()).(*Position)
	assert.Equal(t, Position{X: 1, Z: 5}, *pos)
}

func TestDeleteReusesSlot(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	atoms, _ := spawnWater(storage)

	storage.Delete(atoms[1])
	assert.Nil(t, storage.GetComponent(atoms[1], reflect.TypeFor[Atom]()))

	other := storage.GetComponent(atoms[2], reflect.TypeFor[Atom]()).(*Atom)
	assert.Equal(t, 2, other.Index, "indices of the other atoms are stable")

	again := storage.Spawn(Atom{Index: 3, Symbol: "D"}, Position{}, Radius(0.31))
	assert.Equal(t, atoms[1], again)

	storage.Delete(ecs.NewEntityId(0xDEAD, 0))
	storage.Delete(atoms[1])
	storage.Delete(atoms[1])
	assert.Equal(t, 2, storage.GetArchetypeById(atoms[0].ArchetypeId()).Len())
}

func TestManyEntitiesSpanBlocks(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())

	ids := make([]ecs.EntityId, 200)
	for i := range ids {
		ids[i] = storage.Spawn(Atom{Index: i, Symbol: "C"})
	}
	for i := 0; i < len(ids); i += 2 {
		storage.Delete(ids[i])
	}

	archetype := storage.GetArchetypeById(ids[0].ArchetypeId())
	require.NotNil(t, archetype)
	assert.Equal(t, 100, archetype.Len())

	var seen []int
	for id := range archetype.Iter() {
		seen = append(seen, storage.GetComponent(id, reflect.TypeFor[Atom]()).(*Atom).Index)
	}
	require.Len(t, seen, 100)
	assert.Equal(t, 1, seen[0])
	assert.Equal(t, 199, seen[99])
}

func TestArchetypes(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	atoms, bonds := spawnWater(storage)

	archetype := storage.GetArchetypeById(atoms[0].ArchetypeId())
	require.NotNil(t, archetype)
	assert.Equal(t, atoms[0].ArchetypeId(), archetype.ID())
	assert.Equal(t, []reflect.Type{
		reflect.TypeFor[Atom](),
		reflect.TypeFor[Position](),
		reflect.TypeFor[Radius](),
	}, archetype.Types())
	assert.True(t, archetype.HasComponent(reflect.TypeFor[Radius]()))
	assert.False(t, archetype.HasComponent(reflect.TypeFor[Bond]()))

	all := storage.GetArchetypes()
	require.Len(t, all, 2)
	assert.Less(t, all[0].ID(), all[1].ID())
	assert.Contains(t, []uint32{all[0].ID(), all[1].ID()}, bonds[0].ArchetypeId())

	assert.Nil(t, storage.GetArchetypeById(0xDEAD))
}

func TestSliceComponent(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	id := storage.Spawn(Atom{Symbol: "C"}, Neighbors{Indices: []int{1, 2, 3, 4}})

	n := storage.GetComponent(id, reflect.TypeFor[Neighbors]()).(*Neighbors)
	n.Indices = append(n.Indices, 5)
	assert.Len(t, storage.GetComponent(id, reflect.TypeFor[Neighbors]()).(*Neighbors).Indices, 5)
}

func TestSpawnPanics(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())

	assert.Panics(t, func() { storage.Spawn() })
	assert.Panics(t, func() { storage.Spawn(map[string]int{"C": 4}) })
	assert.Panics(t, func() { storage.Spawn(func() {}) })
	assert.PanicsWithValue(t, "component type float64 not registered", func() { storage.Spawn(1.5) })
}

func TestEntityRef(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	atoms, _ := spawnWater(storage)

	ref := storage.CreateEntityRef(atoms[0])
	require.NotNil(t, ref)
	assert.Same(t, ref, storage.CreateEntityRef(atoms[0]))

	id, ok := storage.ResolveEntityRef(ref)
	assert.True(t, ok)
	assert.Equal(t, atoms[0], id)

	other := storage.CreateEntityRef(atoms[1])
	storage.Delete(atoms[0])

	_, ok = storage.ResolveEntityRef(ref)
	assert.False(t, ok)
	assert.Nil(t, ref.Archetype)

	id, ok = storage.ResolveEntityRef(other)
	assert.True(t, ok, "refs to other atoms survive")
	assert.Equal(t, atoms[1], id)

	reused := storage.Spawn(Atom{Index: 9, Symbol: "O"}, Position{}, Radius(0.66))
	assert.Equal(t, atoms[0], reused)
	_, ok = storage.ResolveEntityRef(ref)
	assert.False(t, ok, "a reused slot does not revive the ref")

	assert.Nil(t, storage.CreateEntityRef(ecs.NewEntityId(0xDEAD, 0)))
	_, ok = storage.ResolveEntityRef(nil)
	assert.False(t, ok)
}
