package orderlog

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Writer buffers accepted raw order lines and appends them to a log file in
// batches: on the flush interval and on Close. It satisfies the broker
// Publisher shape so it can sit behind a fan-out next to the queue publisher.
type Writer struct {
	mu   sync.Mutex
	path string
	buf  []string

	done chan struct{}
	wg   sync.WaitGroup
}

func New(dir string, filename string, flushEvery time.Duration) (*Writer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir: %w", err)
	}
	w := &Writer{
		path: filepath.Join(dir, filename),
		done: make(chan struct{}),
	}
	w.wg.Add(1)
	go w.flushLoop(flushEvery)
	return w, nil
}

func (w *Writer) flushLoop(every time.Duration) {
	defer w.wg.Done()
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			_ = w.Flush()
		case <-w.done:
			return
		}
	}
}

// Publish buffers one raw order line.
func (w *Writer) Publish(_ context.Context, _ []byte, value []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.buf = append(w.buf, string(value))
	return nil
}

// Flush appends the buffered lines to the log file. The buffer is kept on a
// write failure so no accepted line is lost.
func (w *Writer) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.buf) == 0 {
		return nil
	}
	f, err := os.OpenFile(w.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open: %w", err)
	}
	defer f.Close()
	for _, line := range w.buf {
		if _, err := fmt.Fprintln(f, line); err != nil {
			return fmt.Errorf("append: %w", err)
		}
	}
	w.buf = w.buf[:0]
	return nil
}

// Close stops the flush loop and writes anything still buffered.
func (w *Writer) Close() error {
	close(w.done)
	w.wg.Wait()
	return w.Flush()
}
