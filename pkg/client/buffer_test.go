package client

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

type trackingBody struct {
	io.Reader
	closed int
}

func (b *trackingBody) Close() error {
	b.closed++
	return nil
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, io.ErrUnexpectedEOF
}

func TestBuffer(t *testing.T) {
	body := &trackingBody{Reader: strings.NewReader(`{"ok":true}`)}
	resp := &http.Response{
		StatusCode: http.StatusCreated,
		Header:     http.Header{"X-Request-Cost": {"1.5"}},
		Body:       body,
	}

	buffered, err := Buffer(resp)
	if err != nil {
		t.Fatalf("Buffer() error = %v", err)
	}

	if buffered.Status != http.StatusCreated {
		t.Errorf("Status = %d, want 201", buffered.Status)
	}
	if buffered.Text != `{"ok":true}` {
		t.Errorf("Text = %q", buffered.Text)
	}
	if buffered.Headers.Get("X-Request-Cost") != "1.5" {
		t.Errorf("Headers = %v", buffered.Headers)
	}
	if body.closed != 1 {
		t.Errorf("body closed %d times, want 1", body.closed)
	}

	resp.Header.Set("X-Request-Cost", "9")
	if buffered.Headers.Get("X-Request-Cost") != "1.5" {
		t.Error("snapshot headers must not alias the response headers")
	}
}

func TestBuffer_NilHeaders(t *testing.T) {
	buffered, err := Buffer(&http.Response{StatusCode: 200, Body: io.NopCloser(strings.NewReader(""))})
	if err != nil {
		t.Fatalf("Buffer() error = %v", err)
	}
	if buffered.Headers == nil {
		t.Error("Headers should be empty, not nil")
	}
	if buffered.Text != "" {
		t.Errorf("Text = %q, want empty", buffered.Text)
	}
}

func TestBuffer_Errors(t *testing.T) {
	if _, err := Buffer(nil); err == nil {
		t.Error("Expected error for nil response")
	}

	body := &trackingBody{Reader: failingReader{}}
	_, err := Buffer(&http.Response{StatusCode: 502, Header: http.Header{}, Body: body})

	var bufErr *BufferError
	if !errors.As(err, &bufErr) {
		t.Fatalf("error = %v, want *BufferError", err)
	}
	if bufErr.Status != 502 {
		t.Errorf("BufferError.Status = %d, want 502", bufErr.Status)
	}
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Error("BufferError should unwrap to the read error")
	}
	if body.closed != 1 {
		t.Errorf("body closed %d times, want 1", body.closed)
	}
}

func TestBufferedResponse_MarshalZerologObject(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := zerolog.New(buf)

	logger.Info().Object("response", &BufferedResponse{
		Status:  404,
		Headers: http.Header{"X-B": {"2"}, "X-A": {"1"}},
		Text:    "missing",
	}).Msg("")

	want := `{"level":"info","response":{"status":404,"headers":{"X-A":["1"],"X-B":["2"]},"text":"missing"}}` + "\n"
	if buf.String() != want {
		t.Errorf("log = %s, want %s", buf.String(), want)
	}
}
