package ecs

// EntityId packs the archetype id into the upper 32 bits and the slot index into
// the lower 32. Ids of deleted entities may be reused by later spawns.
type EntityId uint64

func NewEntityId(archetypeId uint32, index uint32) EntityId {
	return EntityId(uint64(archetypeId)<<32 | uint64(index))
}

func (e EntityId) ArchetypeId() uint32 {
	return uint32(e >> 32)
}

func (e EntityId) Index() uint32 {
	return uint32(e & 0xFFFFFFFF)
}

// EntityRef follows one entity. Id becomes 0 once the entity is deleted.
type EntityRef struct {
	Id        EntityId
	Archetype *Archetype
}
