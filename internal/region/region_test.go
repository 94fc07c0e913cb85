package region

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sliceMemory backs the Memory interface with a plain byte slice.
type sliceMemory []byte

func (m sliceMemory) Read(offset, byteCount uint32) ([]byte, bool) {
	if uint64(offset)+uint64(byteCount) > uint64(len(m)) {
		return nil, false
	}
	return m[offset : offset+byteCount], true
}

func (m sliceMemory) Write(offset uint32, v []byte) bool {
	if uint64(offset)+uint64(len(v)) > uint64(len(m)) {
		return false
	}
	copy(m[offset:], v)
	return true
}

func (m sliceMemory) ReadUint32Le(offset uint32) (uint32, bool) {
	if uint64(offset)+4 > uint64(len(m)) {
		return 0, false
	}
	return binary.LittleEndian.Uint32(m[offset:]), true
}

func (m sliceMemory) WriteUint32Le(offset, v uint32) bool {
	if uint64(offset)+4 > uint64(len(m)) {
		return false
	}
	binary.LittleEndian.PutUint32(m[offset:], v)
	return true
}

// putRegion writes a descriptor at ptr.
func putRegion(m sliceMemory, ptr, offset, capacity, length uint32) {
	m.WriteUint32Le(ptr, offset)
	m.WriteUint32Le(ptr+4, capacity)
	m.WriteUint32Le(ptr+8, length)
}

func TestReadData(t *testing.T) {
	mem := make(sliceMemory, 256)
	copy(mem[100:], "hello world")
	putRegion(mem, 16, 100, 32, 11)

	data, err := ReadData(mem, 16, 1024)
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(data))
}

func TestReadData_CopiesOutOfGuestMemory(t *testing.T) {
	mem := make(sliceMemory, 256)
	copy(mem[100:], "aaaa")
	putRegion(mem, 16, 100, 8, 4)

	data, err := ReadData(mem, 16, 1024)
	require.NoError(t, err)

	copy(mem[100:], "bbbb")
	assert.Equal(t, "aaaa", string(data))
}

func TestReadData_Errors(t *testing.T) {
	mem := make(sliceMemory, 256)

	t.Run("null pointer", func(t *testing.T) {
		_, err := ReadData(mem, 0, 1024)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "null region pointer")
	})

	t.Run("zero offset", func(t *testing.T) {
		putRegion(mem, 16, 0, 8, 4)
		_, err := ReadData(mem, 16, 1024)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "zero offset")
	})

	t.Run("length exceeds capacity", func(t *testing.T) {
		putRegion(mem, 16, 100, 4, 8)
		_, err := ReadData(mem, 16, 1024)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "exceeds capacity")
	})

	t.Run("over limit", func(t *testing.T) {
		putRegion(mem, 16, 100, 64, 64)
		_, err := ReadData(mem, 16, 32)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "too large")
	})

	t.Run("data out of bounds", func(t *testing.T) {
		putRegion(mem, 16, 250, 32, 32)
		_, err := ReadData(mem, 16, 1024)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "out of bounds")
	})

	t.Run("descriptor out of bounds", func(t *testing.T) {
		_, err := ReadData(mem, 254, 1024)
		require.Error(t, err)
	})
}

func TestWriteData(t *testing.T) {
	mem := make(sliceMemory, 256)
	putRegion(mem, 16, 100, 16, 0)

	require.NoError(t, WriteData(mem, 16, []byte("payload")))

	r, err := ReadDescriptor(mem, 16)
	require.NoError(t, err)
	assert.Equal(t, uint32(7), r.Length)

	data, err := ReadData(mem, 16, 1024)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))
}

func TestWriteData_CapacityTooSmall(t *testing.T) {
	mem := make(sliceMemory, 256)
	putRegion(mem, 16, 100, 4, 0)

	err := WriteData(mem, 16, []byte("too long for region"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds region capacity")
}

func TestPackCodePtr(t *testing.T) {
	packed := PackCodePtr(3, 0xDEAD)
	code, ptr := UnpackCodePtr(packed)
	assert.Equal(t, uint32(3), code)
	assert.Equal(t, uint32(0xDEAD), ptr)

	code, ptr = UnpackCodePtr(PackCodePtr(0, 0))
	assert.Zero(t, code)
	assert.Zero(t, ptr)
}
