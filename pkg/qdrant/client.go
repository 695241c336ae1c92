package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client is the Qdrant HTTP API client.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new Qdrant client.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// EnsureCollection creates the collection if it does not exist yet.
// Re-creating an existing collection is not an error.
func (c *Client) EnsureCollection(ctx context.Context, req CreateCollectionRequest) error {
	url := fmt.Sprintf("%s/collections/%s", c.baseURL, req.Name)
	status, err := c.do(ctx, http.MethodPut, url, req, nil)
	if err != nil {
		return err
	}
	if status != http.StatusOK && status != http.StatusCreated && status != http.StatusConflict {
		return fmt.Errorf("qdrant API error: %d", status)
	}
	return nil
}

// UpsertPoints inserts or updates points. Upserts are idempotent by point id:
// the same id overwrites.
func (c *Client) UpsertPoints(ctx context.Context, collection string, req UpsertPointsRequest) error {
	url := fmt.Sprintf("%s/collections/%s/points?wait=true", c.baseURL, collection)
	status, err := c.do(ctx, http.MethodPut, url, req, nil)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("qdrant API error: %d", status)
	}
	return nil
}

// SearchPoints performs semantic search in a collection.
func (c *Client) SearchPoints(ctx context.Context, collection string, req SearchRequest) (*SearchResponse, error) {
	url := fmt.Sprintf("%s/collections/%s/points/search", c.baseURL, collection)
	var result SearchResponse
	status, err := c.do(ctx, http.MethodPost, url, req, &result)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("qdrant API error: %d", status)
	}
	return &result, nil
}

// DeletePoints deletes points by ids. Deleting a missing id is not an error.
func (c *Client) DeletePoints(ctx context.Context, collection string, ids []string) error {
	url := fmt.Sprintf("%s/collections/%s/points/delete?wait=true", c.baseURL, collection)
	status, err := c.do(ctx, http.MethodPost, url, DeletePointsRequest{Points: ids}, nil)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("qdrant API error: %d", status)
	}
	return nil
}

// ScrollPoints pages through every point in a collection, with payloads.
// Used for wholesale mirror rebuilds.
func (c *Client) ScrollPoints(ctx context.Context, collection string, req ScrollRequest) (*ScrollResponse, error) {
	url := fmt.Sprintf("%s/collections/%s/points/scroll", c.baseURL, collection)
	var result ScrollResponse
	status, err := c.do(ctx, http.MethodPost, url, req, &result)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("qdrant API error: %d", status)
	}
	return &result, nil
}

// do issues one JSON request and decodes the response into out when non-nil.
func (c *Client) do(ctx context.Context, method, url string, in, out any) (int, error) {
	body, err := json.Marshal(in)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, url, bytes.NewBuffer(body))
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return 0, fmt.Errorf("failed to call qdrant API: %w", err)
	}
	defer resp.Body.Close()

	if out != nil && resp.StatusCode == http.StatusOK {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("failed to decode response: %w", err)
		}
	} else {
		_, _ = io.Copy(io.Discard, resp.Body)
	}
	return resp.StatusCode, nil
}
