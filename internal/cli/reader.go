package cli

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
)

// ErrInputCancelled is returned when input is canceled by context.
var ErrInputCancelled = errors.New("input canceled")

// LineReader reads terminal lines without blocking past context cancellation.
type LineReader struct {
	reader  *bufio.Reader
	results chan readResult
	mu      sync.Mutex
	pending bool
}

type readResult struct {
	err   error
	value string
}

// NewLineReader wraps r.
func NewLineReader(r io.Reader) *LineReader {
	return &LineReader{
		reader:  bufio.NewReader(r),
		results: make(chan readResult, 1),
	}
}

// ReadLine returns the next trimmed line. A read abandoned by cancellation is
// delivered to the following call instead of being lost.
func (r *LineReader) ReadLine(ctx context.Context) (string, error) {
	r.mu.Lock()
	if !r.pending {
		r.pending = true
		go func() {
			value, err := r.reader.ReadString('\n')
			r.results <- readResult{value: value, err: err}
		}()
	}
	r.mu.Unlock()

	select {
	case <-ctx.Done():
		return "", ErrInputCancelled
	case res := <-r.results:
		r.mu.Lock()
		r.pending = false
		r.mu.Unlock()

		// A final line without a newline still counts.
		if errors.Is(res.err, io.EOF) && res.value != "" {
			return strings.TrimSpace(res.value), nil
		}
		if res.err != nil {
			return "", res.err
		}
		return strings.TrimSpace(res.value), nil
	}
}
