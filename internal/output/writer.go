// Package output writes records as newline-delimited JSON.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
)

// Writer encodes one record per line. Safe for concurrent use.
type Writer struct {
	mu        sync.Mutex
	encoder   *json.Encoder
	count     int
	closeFunc func() error
}

// NewWriter creates a writer on w. Close does not close w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{
		encoder: json.NewEncoder(w),
	}
}

// NewFileWriter creates or truncates filename.
func NewFileWriter(filename string) (*Writer, error) {
	file, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}

	return &Writer{
		encoder:   json.NewEncoder(file),
		closeFunc: file.Close,
	}, nil
}

// Write encodes a single record.
func (w *Writer) Write(record any) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.encoder.Encode(record); err != nil {
		return fmt.Errorf("failed to write record: %w", err)
	}

	w.count++
	return nil
}

// WriteAll writes each element of records in order.
func WriteAll[T any](w *Writer, records []T) error {
	for i := range records {
		if err := w.Write(records[i]); err != nil {
			return err
		}
	}
	return nil
}

// Count returns the number of records written.
func (w *Writer) Count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.count
}

// Close releases the underlying file, if any.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closeFunc != nil {
		return w.closeFunc()
	}
	return nil
}
