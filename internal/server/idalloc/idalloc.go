// Package idalloc picks the id of a record about to be appended to a
// collection.
package idalloc

import "fmt"

// Strategy names.
const (
	Max   = "max"
	Count = "count"
)

// Strategy returns the next id given the ids already in the collection.
type Strategy interface {
	Next(ids []int64) int64
}

// MaxStrategy returns max(id)+1, so an id is never handed out twice even
// after deletions.
type MaxStrategy struct{}

func (MaxStrategy) Next(ids []int64) int64 {
	var highest int64
	for _, id := range ids {
		if id > highest {
			highest = id
		}
	}
	return highest + 1
}

// CountStrategy returns len+1. After a deletion it can repeat an id that is
// still in use; it exists for compatibility with data written that way.
type CountStrategy struct{}

func (CountStrategy) Next(ids []int64) int64 {
	return int64(len(ids)) + 1
}

// New resolves a strategy by name. An empty name means Max.
func New(name string) (Strategy, error) {
	switch name {
	case "", Max:
		return MaxStrategy{}, nil
	case Count:
		return CountStrategy{}, nil
	default:
		return nil, fmt.Errorf("unknown id strategy %q", name)
	}
}

// IDs collects the ids of records.
func IDs[T any](records []T, id func(T) int64) []int64 {
	ids := make([]int64, len(records))
	for i, r := range records {
		ids[i] = id(r)
	}
	return ids
}
