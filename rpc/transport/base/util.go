package base

import (
	"errors"
	"fmt"
	"io"
)

// writeFull writes the whole frame. A short write without error is reported
// as io.ErrShortWrite.
func writeFull(w io.Writer, frame []byte) error {
	n, err := w.Write(frame)
	if err != nil {
		return err
	}
	if n != len(frame) {
		return io.ErrShortWrite
	}
	return nil
}

// readExactly reads until exactly n bytes have been accumulated. A single
// read may return any part of a frame, so reads are repeated until the
// frame is complete.
func readExactly(r io.Reader, n int) ([]byte, error) {
	buf := make([]byte, n)
	read, err := io.ReadFull(r, buf)
	if err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) || (errors.Is(err, io.EOF) && n > 0) {
			return nil, fmt.Errorf("peer closed connection after %d of %d bytes: %w", read, n, io.ErrUnexpectedEOF)
		}
		return nil, err
	}
	return buf, nil
}
