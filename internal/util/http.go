package util

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
)

var (
	ErrUnexpectedStatus = errors.New("unexpected response status")
	ErrTooLarge         = errors.New("response body too large")
)

// GetBytes fetches url and returns at most maxBytes of its body.
// Non-200 responses and oversized bodies are errors.
func GetBytes(ctx context.Context, client *http.Client, url string, maxBytes int64) ([]byte, error) {
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(body)) > maxBytes {
		return nil, fmt.Errorf("%w: limit %d bytes", ErrTooLarge, maxBytes)
	}
	return body, nil
}
