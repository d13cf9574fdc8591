// Package index stores the document corpus as two parallel artifacts: a
// binary vector file and a chunk metadata file, kept in the same order.
package index

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

// vectorMagic identifies a vector file.
var vectorMagic = [4]byte{'T', 'Q', 'V', 'I'}

const vectorVersion uint32 = 1

// ErrBadVectorFile is returned for a truncated or foreign vector file.
var ErrBadVectorFile = errors.New("invalid vector file")

// WriteVectors writes vectors as a little-endian float32 matrix behind a
// small header of magic, version, count and dimensions.
func WriteVectors(w io.Writer, vectors [][]float32) error {
	dims := 0
	if len(vectors) > 0 {
		dims = len(vectors[0])
	}
	for i, v := range vectors {
		if len(v) != dims {
			return fmt.Errorf("vector %d has %d dimensions, expected %d", i, len(v), dims)
		}
	}

	bw := bufio.NewWriter(w)
	header := []any{vectorMagic, vectorVersion, uint32(len(vectors)), uint32(dims)}
	for _, field := range header {
		if err := binary.Write(bw, binary.LittleEndian, field); err != nil {
			return fmt.Errorf("failed to write vector header: %w", err)
		}
	}

	buf := make([]byte, 4*dims)
	for _, v := range vectors {
		for j, f := range v {
			binary.LittleEndian.PutUint32(buf[4*j:], math.Float32bits(f))
		}
		if _, err := bw.Write(buf); err != nil {
			return fmt.Errorf("failed to write vectors: %w", err)
		}
	}
	return bw.Flush()
}

// ReadVectors reads a file written by WriteVectors.
func ReadVectors(r io.Reader) ([][]float32, error) {
	br := bufio.NewReader(r)

	var magic [4]byte
	var version, count, dims uint32
	for _, field := range []any{&magic, &version, &count, &dims} {
		if err := binary.Read(br, binary.LittleEndian, field); err != nil {
			return nil, fmt.Errorf("%w: header: %v", ErrBadVectorFile, err)
		}
	}
	if magic != vectorMagic {
		return nil, fmt.Errorf("%w: bad magic", ErrBadVectorFile)
	}
	if version != vectorVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrBadVectorFile, version)
	}

	vectors := make([][]float32, count)
	buf := make([]byte, 4*dims)
	for i := range vectors {
		if _, err := io.ReadFull(br, buf); err != nil {
			return nil, fmt.Errorf("%w: vector %d: %v", ErrBadVectorFile, i, err)
		}
		v := make([]float32, dims)
		for j := range v {
			v[j] = math.Float32frombits(binary.LittleEndian.Uint32(buf[4*j:]))
		}
		vectors[i] = v
	}
	return vectors, nil
}
