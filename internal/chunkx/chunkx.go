// Package chunkx splits asset bodies into upload sized blocks and produces
// the gzip encoding of an identity body.
package chunkx

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	boxochunker "github.com/ipfs/boxo/chunker"
	"github.com/klauspost/compress/gzip"
)

// Split cuts the content of r into blocks of at most size bytes. An empty
// reader yields one empty block so every asset has at least one chunk.
func Split(r io.Reader, size int) ([][]byte, error) {
	if size <= 0 {
		return nil, fmt.Errorf("invalid chunk size %d", size)
	}
	splitter := boxochunker.NewSizeSplitter(r, int64(size))
	var out [][]byte
	for {
		b, err := splitter.NextBytes()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	if len(out) == 0 {
		out = append(out, []byte{})
	}
	return out, nil
}

// SplitBytes is Split over an in-memory body.
func SplitBytes(data []byte, size int) ([][]byte, error) {
	return Split(bytes.NewReader(data), size)
}

// Gzip compresses data at the best compression level.
func Gzip(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := gzip.NewWriterLevel(&buf, gzip.BestCompression)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Gunzip reverses Gzip.
func Gunzip(data []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}
