package ports

import (
	"github.com/kromsten/cosmwasm/domain/entities"
)

// Storage is the contract's key/value store for one invocation. The host
// never observes partial writes from concurrent transactions; the embedder
// hands each call a transactional view.
type Storage interface {
	// Get returns the value for key, or nil if the key does not exist.
	// Empty values are not distinguishable from missing keys and must not
	// be stored.
	Get(key []byte) ([]byte, error)

	// Set stores value under key. value must not be empty.
	Set(key, value []byte) error

	// Delete removes key. Deleting a missing key is a no-op.
	Delete(key []byte) error

	// Range returns an iterator over [start, end) in the given order.
	// A nil start iterates from the first key, a nil end through the last.
	// The iterator observes a snapshot: writes made while it is open do
	// not show up in its results.
	Range(start, end []byte, order entities.Order) (Iterator, error)
}

// Iterator walks a key range. Implementations are not safe for concurrent
// use; an invocation is single-threaded so none is needed.
type Iterator interface {
	// Next returns the next record, or nil when the range is exhausted.
	Next() (*entities.Record, error)

	// Close releases the iterator. Next must not be called afterwards.
	Close() error
}
