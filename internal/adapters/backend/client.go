package backend

import (
	"biodiversity-map-service/internal/adapters/httpclient"
	"biodiversity-map-service/internal/domain"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// envelope is the backend's response wrapper.
type envelope[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Message string `json:"message"`
}

// Client implements ports.ObservationBackend and ports.SuggestionProvider
// against the profile observation API.
//
// The client is safe for concurrent use.
type Client struct {
	http    *httpclient.Client
	baseURL string
}

func NewClient(baseURL string, hc *httpclient.Client) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("backend base url is empty")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("parse backend base url: %w", err)
	}
	if hc == nil {
		hc = httpclient.New()
	}

	return &Client{http: hc, baseURL: baseURL}, nil
}

// get decodes an envelope and unwraps data, mapping success=false to
// domain.ErrBackendFailure.
func get[T any](ctx context.Context, c *Client, endpoint string, q url.Values) (T, error) {
	var zero T

	u := c.baseURL + endpoint
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	var env envelope[T]
	if err := c.http.GetJSON(ctx, u, &env); err != nil {
		return zero, err
	}
	if !env.Success {
		msg := strings.TrimSpace(env.Message)
		if msg == "" {
			msg = "no message"
		}
		return zero, fmt.Errorf("%w: %s", domain.ErrBackendFailure, msg)
	}

	return env.Data, nil
}
