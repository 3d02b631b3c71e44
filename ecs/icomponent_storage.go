package ecs

import "iter"

// iComponentStorage is one type-erased component column.
type iComponentStorage interface {
	Append(item any) int
	Delete(index int)
	Get(index int) any
	Has(index int) bool
	Iter() iter.Seq[int]
}
