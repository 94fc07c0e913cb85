package wazero

import (
	"context"

	"github.com/tetratelabs/wazero/api"

	"github.com/kromsten/cosmwasm/domain/errors"
	"github.com/kromsten/cosmwasm/internal/region"
)

// readRegion reads the bytes described by the Region at ptr. Broken
// descriptors are fatal for the call. Takes the narrow region.Memory
// interface, which wazero's api.Memory satisfies, so the codec paths are
// testable against a plain byte slice.
func readRegion(mem region.Memory, ptr uint32, limit int) []byte {
	data, err := region.ReadData(mem, ptr, limit)
	if err != nil {
		panic(err)
	}
	return data
}

// readOptionalRegion treats a null pointer as absent.
func readOptionalRegion(mem region.Memory, ptr uint32, limit int) []byte {
	if ptr == 0 {
		return nil
	}
	return readRegion(mem, ptr, limit)
}

// WriteInput copies data into a fresh guest Region and returns its pointer.
// Used by the executor to pass env, info and msg arguments to entrypoints.
func WriteInput(ctx context.Context, mod api.Module, data []byte) (ptr uint32, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = recoveredError(r)
		}
	}()
	return writeToGuest(ctx, mod, data), nil
}

// ReadResult reads the Region an entrypoint returned.
func ReadResult(mod api.Module, ptr uint32, limit int) ([]byte, error) {
	return region.ReadData(mod.Memory(), ptr, limit)
}

func recoveredError(r any) error {
	if err, ok := r.(error); ok {
		return err
	}
	return errors.Generic("%v", r)
}

// writeToGuest allocates a Region in the guest through its allocate export
// and fills it with data. Returns the Region pointer.
func writeToGuest(ctx context.Context, mod api.Module, data []byte) uint32 {
	allocate := mod.ExportedFunction("allocate")
	if allocate == nil {
		panic(errors.Generic("contract has no allocate export"))
	}
	results, err := allocate.Call(ctx, uint64(len(data)))
	if err != nil {
		panic(errors.Generic("guest allocate of %d bytes failed: %s", len(data), err))
	}
	if len(results) != 1 {
		panic(errors.Generic("guest allocate returned %d results", len(results)))
	}
	ptr := uint32(results[0])
	if err := region.WriteData(mod.Memory(), ptr, data); err != nil {
		panic(err)
	}
	return ptr
}
