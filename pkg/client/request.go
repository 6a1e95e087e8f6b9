package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// Request performs Send, Buffer and a status-based decode. Bodies of
// responses below 400 decode into T; everything else decodes into an
// APIErrorEnvelope and comes back as a KindServerError AppError.
func Request[T any](ctx context.Context, c *Client, profile *ServerProfile, method, url string) (T, error) {
	var zero T

	buffered, err := c.requestBuffered(ctx, profile, method, url)
	if err != nil {
		return zero, err
	}

	out, err := Decode[T](method, url, buffered)
	if err != nil {
		if appErr, ok := err.(*AppError); ok {
			c.fail(appErr)
			c.logger.Warn().
				Str("method", method).
				Str("url", url).
				Int("status", buffered.Status).
				Str("kind", string(appErr.Kind)).
				Msg("Canvas request error")
		}
		return zero, err
	}

	return out, nil
}

// Get issues a GET for path relative to the profile's host.
func Get[T any](ctx context.Context, c *Client, profile *ServerProfile, path string) (T, error) {
	return Request[T](ctx, c, profile, http.MethodGet, profile.URL(path))
}

// Decode branches on the snapshot status and decodes its text. It never
// attempts the success type for a status of 400 or above, and a body at
// such a status without an "errors" field is not an envelope.
func Decode[T any](method, url string, b *BufferedResponse) (T, error) {
	var out T

	if b.Status < 400 {
		if err := json.Unmarshal([]byte(b.Text), &out); err != nil {
			return out, &AppError{Kind: KindDeserializeFailed, Method: method, URL: url, Status: b.Status, Err: err}
		}
		return out, nil
	}

	var envelope APIErrorEnvelope
	if err := json.Unmarshal([]byte(b.Text), &envelope); err != nil {
		return out, &AppError{Kind: KindDeserializeFailed, Method: method, URL: url, Status: b.Status, Err: err}
	}
	if err := validate.Struct(&envelope); err != nil {
		return out, &AppError{Kind: KindDeserializeFailed, Method: method, URL: url, Status: b.Status, Err: fmt.Errorf("not an error envelope: %w", err)}
	}

	return out, &AppError{Kind: KindServerError, Method: method, URL: url, Status: b.Status, Envelope: &envelope}
}
