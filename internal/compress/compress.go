// Package compress implements the block compression used by snapshots.
package compress

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Type defines the compression algorithm used.
type Type uint8

const (
	// None stores blocks uncompressed.
	None Type = 0
	// LZ4 is fast block compression, good for frequently loaded snapshots.
	LZ4 Type = 1
	// ZSTD gives a better ratio at a higher CPU cost.
	ZSTD Type = 2
)

// String returns the algorithm name.
func (t Type) String() string {
	switch t {
	case None:
		return "none"
	case LZ4:
		return "lz4"
	case ZSTD:
		return "zstd"
	default:
		return fmt.Sprintf("compression(%d)", uint8(t))
	}
}

// Valid reports whether t is a known algorithm.
func (t Type) Valid() bool {
	return t <= ZSTD
}

// ErrCorrupt is returned when a block cannot be decoded.
var ErrCorrupt = errors.New("compress: corrupt block")

// ErrTooLarge is returned for blocks larger than MaxBlockSize.
var ErrTooLarge = errors.New("compress: block too large")

// HeaderSize is the size of the block header.
// Format: [UncompressedSize uint32][CompressedSize uint32][Data...]
// If CompressedSize == 0, the block is stored uncompressed.
const HeaderSize = 8

// MaxBlockSize is the largest uncompressed block Block writes and Unblock
// accepts.
const MaxBlockSize = 1 << 30

// maxLZ4Ratio bounds the uncompressed/compressed ratio of an LZ4 block.
// A single LZ4 sequence expands at most ~255x.
const maxLZ4Ratio = 255

// zstdPrealloc caps the output buffer reserved before decoding.
const zstdPrealloc = 4 << 20

// ZSTD encoder/decoder pools for efficiency
var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	return enc
}

func putZstdEncoder(enc *zstd.Encoder) {
	zstdEncoderPool.Put(enc)
}

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil, zstd.WithDecoderMaxMemory(MaxBlockSize))
	return dec
}

func putZstdDecoder(dec *zstd.Decoder) {
	zstdDecoderPool.Put(dec)
}

// Block compresses data into a single block with header.
// Data that does not shrink below 90% is stored uncompressed.
func Block(data []byte, t Type) ([]byte, error) {
	if len(data) > MaxBlockSize {
		return nil, ErrTooLarge
	}

	var compressed []byte
	switch t {
	case None:
	case LZ4:
		var err error
		if compressed, err = compressLZ4(data); err != nil {
			return nil, err
		}
	case ZSTD:
		compressed = compressZSTD(data)
	default:
		return nil, fmt.Errorf("compress: unknown type %s", t)
	}

	if len(compressed) == 0 || float64(len(compressed)) > float64(len(data))*0.9 {
		result := make([]byte, HeaderSize+len(data))
		binary.LittleEndian.PutUint32(result[0:], uint32(len(data)))
		binary.LittleEndian.PutUint32(result[4:], 0)
		copy(result[HeaderSize:], data)
		return result, nil
	}

	result := make([]byte, HeaderSize+len(compressed))
	binary.LittleEndian.PutUint32(result[0:], uint32(len(data)))
	binary.LittleEndian.PutUint32(result[4:], uint32(len(compressed)))
	copy(result[HeaderSize:], compressed)
	return result, nil
}

func compressLZ4(data []byte) ([]byte, error) {
	compressed := make([]byte, lz4.CompressBlockBound(len(data)))

	n, err := lz4.CompressBlock(data, compressed, nil)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil // Incompressible
	}
	return compressed[:n], nil
}

func compressZSTD(data []byte) []byte {
	enc := getZstdEncoder()
	defer putZstdEncoder(enc)

	return enc.EncodeAll(data, nil)
}

// Unblock decodes a block produced by Block with the same type.
func Unblock(data []byte, t Type) ([]byte, error) {
	if len(data) < HeaderSize {
		return nil, fmt.Errorf("%w: block too small for header", ErrCorrupt)
	}

	uncompressedSize := binary.LittleEndian.Uint32(data[0:])
	compressedSize := binary.LittleEndian.Uint32(data[4:])

	if uncompressedSize > MaxBlockSize {
		return nil, fmt.Errorf("%w: uncompressed size %d exceeds limit", ErrCorrupt, uncompressedSize)
	}

	if compressedSize == 0 {
		if uint64(len(data)) != HeaderSize+uint64(uncompressedSize) {
			return nil, fmt.Errorf("%w: stored block size mismatch", ErrCorrupt)
		}
		return data[HeaderSize:], nil
	}

	if uint64(len(data)) != HeaderSize+uint64(compressedSize) {
		return nil, fmt.Errorf("%w: compressed block size mismatch", ErrCorrupt)
	}
	compressed := data[HeaderSize:]

	switch t {
	case LZ4:
		if uint64(uncompressedSize) > uint64(compressedSize)*maxLZ4Ratio+64 {
			return nil, fmt.Errorf("%w: uncompressed size %d impossible for %d compressed bytes", ErrCorrupt, uncompressedSize, compressedSize)
		}
		result := make([]byte, uncompressedSize)
		n, err := lz4.UncompressBlock(compressed, result)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
		}
		if uint32(n) != uncompressedSize {
			return nil, fmt.Errorf("%w: decompressed size mismatch", ErrCorrupt)
		}
		return result, nil

	case ZSTD:
		dec := getZstdDecoder()
		defer putZstdDecoder(dec)

		decoded, err := dec.DecodeAll(compressed, make([]byte, 0, min(uncompressedSize, zstdPrealloc)))
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
		}
		if uint32(len(decoded)) != uncompressedSize {
			return nil, fmt.Errorf("%w: decompressed size mismatch", ErrCorrupt)
		}
		return decoded, nil

	default:
		return nil, fmt.Errorf("%w: compressed block for type %s", ErrCorrupt, t)
	}
}
