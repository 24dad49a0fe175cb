package frame

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"
)

// deflate appends the zlib stream for src to dst.
func deflate(dst, src []byte) ([]byte, error) {
	buf := bytes.NewBuffer(dst)
	zw := zlib.NewWriter(buf)
	if _, err := zw.Write(src); err != nil {
		return nil, fmt.Errorf("frame: deflate: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("frame: deflate: %w", err)
	}
	return buf.Bytes(), nil
}

// inflate decompresses src, which must expand to exactly want bytes. At
// most want+1 bytes are produced so an oversized stream is caught without
// being fully expanded.
// Bytes left after the end of the zlib stream are rejected with
// ErrTrailingBytes.
func inflate(src []byte, want int) ([]byte, error) {
	sr := bytes.NewReader(src)
	zr, err := zlib.NewReader(sr)
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	out := make([]byte, 0, want)
	buf := bytes.NewBuffer(out)
	n, err := io.Copy(buf, io.LimitReader(zr, int64(want)+1))
	if err != nil {
		return nil, err
	}
	if n != int64(want) {
		return nil, fmt.Errorf("%w: got %d want %d", ErrInflatedLength, n, want)
	}
	if sr.Len() != 0 {
		return nil, fmt.Errorf("%w: %d after zlib stream", ErrTrailingBytes, sr.Len())
	}
	return buf.Bytes(), nil
}
