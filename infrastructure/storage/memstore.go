// Package storage provides an in-memory implementation of the storage port,
// used by tests and by embedders that keep contract state outside a chain.
package storage

import (
	"bytes"
	"fmt"

	"github.com/google/btree"

	"github.com/kromsten/cosmwasm/domain/entities"
	"github.com/kromsten/cosmwasm/domain/ports"
)

type item struct {
	key   []byte
	value []byte
}

func lessItem(a, b item) bool {
	return bytes.Compare(a.key, b.key) < 0
}

const btreeDegree = 32

// MemStore is an ordered in-memory key/value store backing one contract's
// state. It is not safe for concurrent use; an invocation is
// single-threaded and each store belongs to one invocation at a time.
type MemStore struct {
	tree *btree.BTreeG[item]
}

var _ ports.Storage = (*MemStore)(nil)

// NewMemStore creates an empty store.
func NewMemStore() *MemStore {
	return &MemStore{tree: btree.NewG(btreeDegree, lessItem)}
}

// Get implements ports.Storage.
func (s *MemStore) Get(key []byte) ([]byte, error) {
	it, ok := s.tree.Get(item{key: key})
	if !ok {
		return nil, nil
	}
	out := make([]byte, len(it.value))
	copy(out, it.value)
	return out, nil
}

// Set implements ports.Storage. Empty values are rejected because the
// boundary cannot distinguish them from missing keys.
func (s *MemStore) Set(key, value []byte) error {
	if len(key) == 0 {
		return fmt.Errorf("memstore: empty key")
	}
	if len(value) == 0 {
		return fmt.Errorf("memstore: empty value, use Delete instead")
	}
	k := make([]byte, len(key))
	copy(k, key)
	v := make([]byte, len(value))
	copy(v, value)
	s.tree.ReplaceOrInsert(item{key: k, value: v})
	return nil
}

// Delete implements ports.Storage.
func (s *MemStore) Delete(key []byte) error {
	s.tree.Delete(item{key: key})
	return nil
}

// Range implements ports.Storage. The iterator walks a copy-on-write clone,
// so writes made while it is open do not affect its results.
func (s *MemStore) Range(start, end []byte, order entities.Order) (ports.Iterator, error) {
	if !order.Valid() {
		return nil, fmt.Errorf("memstore: invalid order %d", order)
	}
	snapshot := s.tree.Clone()

	var records []entities.Record
	collect := func(it item) bool {
		records = append(records, entities.Record{Key: it.key, Value: it.value})
		return true
	}

	switch {
	case start == nil && end == nil:
		snapshot.Ascend(collect)
	case start == nil:
		snapshot.AscendLessThan(item{key: end}, collect)
	case end == nil:
		snapshot.AscendGreaterOrEqual(item{key: start}, collect)
	default:
		snapshot.AscendRange(item{key: start}, item{key: end}, collect)
	}

	if order == entities.Descending {
		for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
			records[i], records[j] = records[j], records[i]
		}
	}
	return &sliceIterator{records: records}, nil
}

// Len returns the number of stored keys.
func (s *MemStore) Len() int {
	return s.tree.Len()
}

type sliceIterator struct {
	records []entities.Record
	pos     int
	closed  bool
}

func (it *sliceIterator) Next() (*entities.Record, error) {
	if it.closed {
		return nil, fmt.Errorf("memstore: iterator used after close")
	}
	if it.pos >= len(it.records) {
		return nil, nil
	}
	rec := it.records[it.pos]
	it.pos++
	return &rec, nil
}

func (it *sliceIterator) Close() error {
	it.closed = true
	it.records = nil
	return nil
}
