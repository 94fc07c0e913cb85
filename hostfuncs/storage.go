package hostfuncs

import (
	"bytes"
	"fmt"

	"github.com/kromsten/cosmwasm/domain/entities"
	"github.com/kromsten/cosmwasm/domain/errors"
)

// DBRead loads the value stored under key. A nil result means the key does
// not exist.
func (e *Env) DBRead(key []byte) ([]byte, error) {
	if err := e.checkKey(key); err != nil {
		return nil, err
	}
	if err := e.gas.ConsumeGas(e.costs.ReadFlat+e.costs.ReadPerByte*uint64(len(key)), "db_read"); err != nil {
		return nil, err
	}
	value, err := e.storage.Get(key)
	if err != nil {
		return nil, fmt.Errorf("db_read: %w", err)
	}
	if value != nil {
		if err := e.gas.ConsumeGas(e.costs.ReadPerByte*uint64(len(value)), "db_read value"); err != nil {
			return nil, err
		}
	}
	return value, nil
}

// DBWrite stores value under key. Empty values are rejected; the boundary
// cannot represent them distinctly from missing keys.
func (e *Env) DBWrite(key, value []byte) error {
	if err := e.checkKey(key); err != nil {
		return err
	}
	if len(value) == 0 {
		return errors.Generic("db_write: value must not be empty, use db_remove instead")
	}
	if len(value) > e.limits.MaxValueLength {
		return &errors.SizeLimitError{Subject: "storage value", Size: len(value), Limit: e.limits.MaxValueLength}
	}
	cost := e.costs.WriteFlat + e.costs.WritePerByte*uint64(len(key)+len(value))
	if err := e.gas.ConsumeGas(cost, "db_write"); err != nil {
		return err
	}
	return e.storage.Set(key, value)
}

// DBRemove deletes key. Removing a missing key is a no-op.
func (e *Env) DBRemove(key []byte) error {
	if err := e.checkKey(key); err != nil {
		return err
	}
	if err := e.gas.ConsumeGas(e.costs.RemoveFlat, "db_remove"); err != nil {
		return err
	}
	return e.storage.Delete(key)
}

// DBScan opens a range iterator over [start, end) and returns its opaque
// handle. Requires the iterator feature.
func (e *Env) DBScan(start, end []byte, order entities.Order) (uint32, error) {
	if !e.features.Has(entities.FeatureIterator) {
		return 0, &errors.FeatureError{Feature: string(entities.FeatureIterator), Subject: "db_scan"}
	}
	if !order.Valid() {
		return 0, errors.Generic("db_scan: invalid order %d", int32(order))
	}
	if start != nil && end != nil && bytes.Compare(start, end) > 0 {
		// an inverted range is legal but always empty; normalize so the
		// storage backend never sees it
		start = end
	}
	if len(e.iterators) >= e.limits.MaxIterators {
		return 0, errors.Generic("db_scan: too many open iterators (max %d)", e.limits.MaxIterators)
	}
	if err := e.gas.ConsumeGas(e.costs.ScanFlat, "db_scan"); err != nil {
		return 0, err
	}

	it, err := e.storage.Range(start, end, order)
	if err != nil {
		return 0, fmt.Errorf("db_scan: %w", err)
	}
	e.nextIteratorID++
	e.iterators[e.nextIteratorID] = it
	return e.nextIteratorID, nil
}

// DBNext advances the iterator. A nil record signals the end of the range,
// after which the handle is released.
func (e *Env) DBNext(iteratorID uint32) (*entities.Record, error) {
	if !e.features.Has(entities.FeatureIterator) {
		return nil, &errors.FeatureError{Feature: string(entities.FeatureIterator), Subject: "db_next"}
	}
	it, ok := e.iterators[iteratorID]
	if !ok {
		return nil, errors.Generic("db_next: unknown iterator id %d", iteratorID)
	}
	if err := e.gas.ConsumeGas(e.costs.NextFlat, "db_next"); err != nil {
		return nil, err
	}

	rec, err := it.Next()
	if err != nil {
		return nil, fmt.Errorf("db_next: %w", err)
	}
	if rec == nil {
		delete(e.iterators, iteratorID)
		if err := it.Close(); err != nil {
			return nil, fmt.Errorf("db_next: close: %w", err)
		}
		return nil, nil
	}
	cost := e.costs.ReadPerByte * uint64(len(rec.Key)+len(rec.Value))
	if err := e.gas.ConsumeGas(cost, "db_next record"); err != nil {
		return nil, err
	}
	return rec, nil
}

// openIterators reports the number of live iterator handles.
func (e *Env) openIterators() int {
	return len(e.iterators)
}

func (e *Env) checkKey(key []byte) error {
	if len(key) == 0 {
		return errors.Generic("storage key must not be empty")
	}
	if len(key) > e.limits.MaxKeyLength {
		return &errors.SizeLimitError{Subject: "storage key", Size: len(key), Limit: e.limits.MaxKeyLength}
	}
	return nil
}
