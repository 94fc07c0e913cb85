// Package sections implements the length-suffixed framing used to move
// multiple byte slices through a single region: each section's payload is
// followed by its length as a big-endian u32. Suffixing (rather than
// prefixing) lets the guest decode in place from the end without knowing
// the count up front.
package sections

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/kromsten/cosmwasm/domain/errors"
)

// Encode frames the given sections into one buffer.
func Encode(sections [][]byte) ([]byte, error) {
	total := 0
	for _, s := range sections {
		if len(s) > math.MaxUint32 {
			return nil, errors.Overflow("section length %d exceeds u32 range", len(s))
		}
		total += len(s) + 4
	}
	out := make([]byte, 0, total)
	for _, s := range sections {
		out = append(out, s...)
		out = binary.BigEndian.AppendUint32(out, uint32(len(s)))
	}
	return out, nil
}

// Decode splits a framed buffer into exactly count sections.
func Decode(data []byte, count int) ([][]byte, error) {
	sections := make([][]byte, count)
	rest := data
	for i := count - 1; i >= 0; i-- {
		if len(rest) < 4 {
			return nil, fmt.Errorf("truncated sections data: %d sections expected, ran out at %d", count, i)
		}
		length := binary.BigEndian.Uint32(rest[len(rest)-4:])
		rest = rest[:len(rest)-4]
		if uint64(length) > uint64(len(rest)) {
			return nil, fmt.Errorf("section %d length %d exceeds remaining %d bytes", i, length, len(rest))
		}
		sections[i] = rest[len(rest)-int(length):]
		rest = rest[:len(rest)-int(length)]
	}
	if len(rest) != 0 {
		return nil, fmt.Errorf("%d trailing bytes after decoding %d sections", len(rest), count)
	}
	return sections, nil
}

// DecodeAll splits a framed buffer into however many sections it holds.
func DecodeAll(data []byte) ([][]byte, error) {
	var sections [][]byte
	rest := data
	for len(rest) > 0 {
		if len(rest) < 4 {
			return nil, fmt.Errorf("truncated sections data: %d trailing bytes", len(rest))
		}
		length := binary.BigEndian.Uint32(rest[len(rest)-4:])
		rest = rest[:len(rest)-4]
		if uint64(length) > uint64(len(rest)) {
			return nil, fmt.Errorf("section length %d exceeds remaining %d bytes", length, len(rest))
		}
		sections = append(sections, rest[len(rest)-int(length):])
		rest = rest[:len(rest)-int(length)]
	}
	// suffix framing yields sections back to front
	for i, j := 0, len(sections)-1; i < j; i, j = i+1, j-1 {
		sections[i], sections[j] = sections[j], sections[i]
	}
	return sections, nil
}

// EncodePair frames a key/value record. The iterator protocol signals the
// end of a range with an empty key, so a nil key encodes the terminator.
func EncodePair(key, value []byte) ([]byte, error) {
	return Encode([][]byte{key, value})
}

// DecodePair splits a two-section buffer into key and value.
func DecodePair(data []byte) (key, value []byte, err error) {
	parts, err := Decode(data, 2)
	if err != nil {
		return nil, nil, err
	}
	return parts[0], parts[1], nil
}
