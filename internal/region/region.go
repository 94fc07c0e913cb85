// Package region implements the descriptor format used to pass byte ranges
// across the guest boundary. The contract runs in isolated linear memory, so
// every value crossing over is described by a 12-byte Region struct living
// in guest memory: offset, capacity and length, all little-endian u32.
package region

import (
	"fmt"

	"github.com/kromsten/cosmwasm/domain/errors"
)

// Size of the Region struct in guest memory.
const Size = 12

// Region is a decoded descriptor.
type Region struct {
	// Offset of the data within linear memory. Never zero for a valid
	// region.
	Offset uint32
	// Capacity of the allocation the region points into.
	Capacity uint32
	// Length of the meaningful data, <= Capacity.
	Length uint32
}

// Memory is the subset of wazero's api.Memory the codec needs. Declared
// here so the codec can be tested against a plain byte slice.
type Memory interface {
	Read(offset, byteCount uint32) ([]byte, bool)
	Write(offset uint32, v []byte) bool
	ReadUint32Le(offset uint32) (uint32, bool)
	WriteUint32Le(offset, v uint32) bool
}

// ReadDescriptor decodes the Region struct at ptr.
func ReadDescriptor(mem Memory, ptr uint32) (Region, error) {
	if ptr == 0 {
		return Region{}, &errors.RegionError{Op: "read", Msg: "null region pointer"}
	}
	offset, ok1 := mem.ReadUint32Le(ptr)
	capacity, ok2 := mem.ReadUint32Le(ptr + 4)
	length, ok3 := mem.ReadUint32Le(ptr + 8)
	if !ok1 || !ok2 || !ok3 {
		return Region{}, &errors.RegionError{Op: "read", Msg: fmt.Sprintf("descriptor at %d out of bounds", ptr)}
	}
	r := Region{Offset: offset, Capacity: capacity, Length: length}
	if err := r.validate(); err != nil {
		return Region{}, err
	}
	return r, nil
}

func (r Region) validate() error {
	if r.Offset == 0 {
		return &errors.RegionError{Op: "validate", Msg: "zero offset"}
	}
	if r.Length > r.Capacity {
		return &errors.RegionError{
			Op:  "validate",
			Msg: fmt.Sprintf("length %d exceeds capacity %d", r.Length, r.Capacity),
		}
	}
	if uint64(r.Offset)+uint64(r.Capacity) > uint64(1)<<32 {
		return &errors.RegionError{Op: "validate", Msg: "region exceeds 32 bit address space"}
	}
	return nil
}

// ReadData reads the bytes a region at ptr describes, enforcing limit as an
// upper bound on the length.
func ReadData(mem Memory, ptr uint32, limit int) ([]byte, error) {
	r, err := ReadDescriptor(mem, ptr)
	if err != nil {
		return nil, err
	}
	if int(r.Length) > limit {
		return nil, &errors.SizeLimitError{Subject: "region data", Size: int(r.Length), Limit: limit}
	}
	if r.Length == 0 {
		return []byte{}, nil
	}
	data, ok := mem.Read(r.Offset, r.Length)
	if !ok {
		return nil, &errors.RegionError{
			Op:  "read",
			Msg: fmt.Sprintf("data range [%d, %d) out of bounds", r.Offset, r.Offset+r.Length),
		}
	}
	// mem.Read returns a view into the module memory. Copy, since the
	// guest may grow or mutate it while the host still holds the slice.
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// WriteData fills the region at ptr with data and updates its length field.
// Fails if the region's capacity is too small.
func WriteData(mem Memory, ptr uint32, data []byte) error {
	r, err := ReadDescriptor(mem, ptr)
	if err != nil {
		return err
	}
	if uint64(len(data)) > uint64(r.Capacity) {
		return &errors.RegionError{
			Op:  "write",
			Msg: fmt.Sprintf("data length %d exceeds region capacity %d", len(data), r.Capacity),
		}
	}
	if len(data) > 0 && !mem.Write(r.Offset, data) {
		return &errors.RegionError{
			Op:  "write",
			Msg: fmt.Sprintf("data range [%d, %d) out of bounds", r.Offset, int(r.Offset)+len(data)),
		}
	}
	if !mem.WriteUint32Le(ptr+8, uint32(len(data))) {
		return &errors.RegionError{Op: "write", Msg: "length field out of bounds"}
	}
	return nil
}

// PackCodePtr packs an error code and a region pointer into the u64 return
// value used by the recover/sign imports: code in the high half, pointer in
// the low half.
func PackCodePtr(code, ptr uint32) uint64 {
	return uint64(code)<<32 | uint64(ptr)
}

// UnpackCodePtr splits a packed u64 result.
func UnpackCodePtr(packed uint64) (code, ptr uint32) {
	return uint32(packed >> 32), uint32(packed)
}
