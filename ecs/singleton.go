package ecs

import (
	"reflect"
	"unsafe"
)

// Singleton gives direct access to the one value of T held by a Storage, outside
// any entity. Worlds keep their document, camera and per-frame state this way.
type Singleton[T any] struct {
	storage      *Storage
	componentPtr unsafe.Pointer
}

// NewSingleton returns an accessor for T, first storing initializer (or the zero
// value) when the storage has no T yet. An existing value is left untouched.
func NewSingleton[T any](storage *Storage, initializer ...T) *Singleton[T] {
	typ := reflect.TypeFor[T]()

	entry := storage.getSingletonEntry(typ)
	if entry == nil {
		var value T
		if len(initializer) > 0 {
			value = initializer[0]
		}
		storage.AddSingleton(value)
		entry = storage.getSingletonEntry(typ)
	}

	return &Singleton[T]{storage: storage, componentPtr: entry.dataPtr}
}

// Init binds the accessor to storage. Scheduler.Register calls it for every
// Singleton field of a system.
func (s *Singleton[T]) Init(storage *Storage) {
	s.storage = storage
	s.componentPtr = nil
	s.lookup()
}

// Get returns the stored value, or nil when the storage has no T.
func (s *Singleton[T]) Get() *T {
	if s.componentPtr == nil {
		s.lookup()
	}
	return (*T)(s.componentPtr)
}

func (s *Singleton[T]) Exists() bool {
	return s.Get() != nil
}

func (s *Singleton[T]) lookup() {
	if s.storage == nil {
		return
	}
	if entry := s.storage.getSingletonEntry(reflect.TypeFor[T]()); entry != nil {
		s.componentPtr = entry.dataPtr
	}
}
