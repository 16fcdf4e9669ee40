package engine

import (
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Codec is the stream encoding of a column file.
type Codec string

const (
	CodecPlain Codec = "plain"
	CodecZstd  Codec = "zstd"
	CodecLZ4   Codec = "lz4"
)

// Codecs lists the supported codecs in detection order.
var Codecs = []Codec{CodecPlain, CodecZstd, CodecLZ4}

// ParseCodec accepts a codec name; the empty string means plain.
func ParseCodec(s string) (Codec, error) {
	switch Codec(strings.ToLower(strings.TrimSpace(s))) {
	case "", CodecPlain:
		return CodecPlain, nil
	case CodecZstd:
		return CodecZstd, nil
	case CodecLZ4:
		return CodecLZ4, nil
	}
	return "", fmt.Errorf("unsupported codec %q (want plain, zstd or lz4)", s)
}

func (c Codec) extension() string {
	switch c {
	case CodecZstd:
		return ".zst"
	case CodecLZ4:
		return ".lz4"
	}
	return ""
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

// newWriter wraps w so that bytes written are encoded. Close flushes the
// encoder but does not close w.
func (c Codec) newWriter(w io.Writer) (io.WriteCloser, error) {
	switch c {
	case CodecZstd:
		enc, err := zstd.NewWriter(w)
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
		}
		return enc, nil
	case CodecLZ4:
		return lz4.NewWriter(w), nil
	}
	return nopWriteCloser{w}, nil
}

// newReader wraps r so that reads are decoded. Close releases decoder state
// but does not close r.
func (c Codec) newReader(r io.Reader) (io.ReadCloser, error) {
	switch c {
	case CodecZstd:
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
		}
		return dec.IOReadCloser(), nil
	case CodecLZ4:
		return io.NopCloser(lz4.NewReader(r)), nil
	}
	return io.NopCloser(r), nil
}
