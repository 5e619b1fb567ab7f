// Package capture records accepted POWER packets as zstd-compressed JSON
// lines, one file per game, so a game can be replayed later.
package capture

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/klauspost/compress/zstd"
)

const Suffix = ".jsonl.zst"

type Writer struct {
	dir string

	mu      sync.Mutex
	curGame string
	f       *os.File
	enc     *zstd.Encoder
	w       *bufio.Writer
}

func NewWriter(dir string) *Writer {
	return &Writer{dir: dir}
}

func (w *Writer) PathFor(gameID string) string {
	return filepath.Join(w.dir, gameID+Suffix)
}

// Write appends one raw packet to the file of gameID, switching files when
// the game changes.
func (w *Writer) Write(gameID string, raw []byte) error {
	if gameID == "" {
		return fmt.Errorf("capture: empty game id")
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	if gameID != w.curGame {
		if err := w.rotateLocked(gameID); err != nil {
			return err
		}
	}
	if _, err := w.w.Write(bytes.TrimSpace(raw)); err != nil {
		return err
	}
	if err := w.w.WriteByte('\n'); err != nil {
		return err
	}
	return w.w.Flush()
}

func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closeLocked()
}

func (w *Writer) rotateLocked(gameID string) error {
	if err := w.closeLocked(); err != nil {
		return err
	}
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(w.PathFor(gameID), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return err
	}
	w.f = f
	w.enc = enc
	w.w = bufio.NewWriterSize(enc, 64*1024)
	w.curGame = gameID
	return nil
}

func (w *Writer) closeLocked() error {
	var err1 error
	if w.w != nil {
		err1 = w.w.Flush()
	}
	if w.enc != nil {
		if err := w.enc.Close(); err1 == nil {
			err1 = err
		}
		w.enc = nil
	}
	if w.f != nil {
		if err := w.f.Close(); err1 == nil {
			err1 = err
		}
		w.f = nil
	}
	w.w = nil
	w.curGame = ""
	return err1
}

type fileReader struct {
	io.Reader
	closers []func() error
}

func (r *fileReader) Close() error {
	var first error
	for _, c := range r.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Open opens a packet stream; files ending in ".zst" are decompressed.
// "-" reads stdin.
func Open(path string) (io.ReadCloser, error) {
	var f *os.File
	if path == "-" {
		f = os.Stdin
	} else {
		var err error
		if f, err = os.Open(path); err != nil {
			return nil, err
		}
	}
	if !strings.HasSuffix(path, ".zst") {
		return f, nil
	}
	dec, err := zstd.NewReader(f)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return &fileReader{
		Reader: dec,
		closers: []func() error{
			func() error { dec.Close(); return nil },
			f.Close,
		},
	}, nil
}

// Scan calls fn for every non-empty line of r.
func Scan(r io.Reader, fn func(line []byte) error) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 8*1024*1024)
	for sc.Scan() {
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}
		if err := fn(line); err != nil {
			return err
		}
	}
	return sc.Err()
}

// ReadFile scans every packet of a capture file.
func ReadFile(path string, fn func(line []byte) error) error {
	rc, err := Open(path)
	if err != nil {
		return err
	}
	defer rc.Close()
	if err := Scan(rc, fn); err != nil {
		return fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return nil
}
