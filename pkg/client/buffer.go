package client

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"

	"github.com/rs/zerolog"
)

// BufferedResponse is a fully drained snapshot of an HTTP response.
// A live body can only be read once; the snapshot can be logged and then
// decoded down either the success or the error branch.
type BufferedResponse struct {
	Status  int
	Headers http.Header
	Text    string
}

// BufferError reports a body read failure. Status and headers were captured
// before the read started and are kept for diagnostics.
type BufferError struct {
	Status  int
	Headers http.Header
	Err     error
}

// Error implements the error interface.
func (e *BufferError) Error() string {
	return fmt.Sprintf("read response body (status %d): %v", e.Status, e.Err)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *BufferError) Unwrap() error {
	return e.Err
}

// Buffer drains and closes resp.Body exactly once.
func Buffer(resp *http.Response) (*BufferedResponse, error) {
	if resp == nil {
		return nil, errors.New("response cannot be nil")
	}
	defer resp.Body.Close()

	status := resp.StatusCode
	headers := resp.Header.Clone()
	if headers == nil {
		headers = http.Header{}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &BufferError{Status: status, Headers: headers, Err: err}
	}

	return &BufferedResponse{
		Status:  status,
		Headers: headers,
		Text:    string(body),
	}, nil
}

// MarshalZerologObject renders the snapshot with headers in sorted order.
func (b *BufferedResponse) MarshalZerologObject(e *zerolog.Event) {
	keys := make([]string, 0, len(b.Headers))
	for k := range b.Headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	headers := zerolog.Dict()
	for _, k := range keys {
		headers.Strs(k, b.Headers[k])
	}

	e.Int("status", b.Status).
		Dict("headers", headers).
		Str("text", b.Text)
}
