package cli

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
)

// ErrInputCanceled is returned when input is canceled by context.
var ErrInputCanceled = errors.New("input canceled")

// LineReader reads lines from an input in the background so a pending read
// can be abandoned when its context ends. The input is only read while a
// ReadLine call wants a line, so other readers of the same file (a hidden
// password prompt) are not raced between calls. A line typed after an
// abandoned read is delivered to the next call.
type LineReader struct {
	scanner  *bufio.Scanner
	err      error
	requests chan struct{}
	lines    chan string
	once     sync.Once
	pending  bool
	done     bool
}

// NewLineReader creates a line reader over r.
func NewLineReader(r io.Reader) *LineReader {
	if r == nil {
		panic("reader cannot be nil")
	}
	return &LineReader{
		scanner:  bufio.NewScanner(r),
		requests: make(chan struct{}, 1),
		lines:    make(chan string),
	}
}

func (r *LineReader) start() {
	go func() {
		for range r.requests {
			if !r.scanner.Scan() {
				break
			}
			r.lines <- r.scanner.Text()
		}
		r.err = r.scanner.Err()
		if r.err == nil {
			r.err = io.EOF
		}
		close(r.lines)
	}()
}

// ReadLine returns the next line with surrounding space trimmed.
func (r *LineReader) ReadLine(ctx context.Context) (string, error) {
	if ctx.Err() != nil {
		return "", ErrInputCanceled
	}
	if r.done {
		return "", r.err
	}
	r.once.Do(r.start)

	if !r.pending {
		r.requests <- struct{}{}
		r.pending = true
	}

	select {
	case <-ctx.Done():
		return "", ErrInputCanceled
	case line, ok := <-r.lines:
		r.pending = false
		if !ok {
			r.done = true
			return "", r.err
		}
		return strings.TrimSpace(line), nil
	}
}
