package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/daybook-app/daybook/internal/api"
	"github.com/daybook-app/daybook/internal/common"
)

// HTTPClient implements Client over the JSON HTTP contract.
type HTTPClient struct {
	baseURL string
	tokens  TokenSource
	http    *http.Client
}

// NewHTTPClient builds a client for the server at baseURL. A nil httpClient
// falls back to http.DefaultClient.
func NewHTTPClient(baseURL string, tokens TokenSource, httpClient *http.Client) *HTTPClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		tokens:  tokens,
		http:    httpClient,
	}
}

// doJSON performs a bearer-authenticated request with an optional JSON body
// and decodes a JSON response into out (when out is non-nil).
func (c *HTTPClient) doJSON(ctx context.Context, method, path string, body, out any) error {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return fmt.Errorf("failed to obtain credential: %w", err)
	}
	if token == "" {
		return common.ErrNotAuthenticated
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request %s %s failed: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return responseError(method, path, resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response of %s %s: %w", method, path, err)
		}
	}
	return nil
}

func responseError(method, path string, resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var apiErr api.ErrorResponse
	msg := strings.TrimSpace(string(data))
	if err := json.Unmarshal(data, &apiErr); err == nil && apiErr.Error != "" {
		msg = apiErr.Error
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return fmt.Errorf("%s %s (%d): %s: %w", method, path, resp.StatusCode, msg, common.ErrUnauthorized)
	}
	return fmt.Errorf("%s %s failed (%d): %s", method, path, resp.StatusCode, msg)
}

func (c *HTTPClient) Push(ctx context.Context, req api.PushRequest) (*api.PushResponse, error) {
	var resp api.PushResponse
	if err := c.doJSON(ctx, http.MethodPost, "/sync/push", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) Pull(ctx context.Context, lastSyncedAt *string) (*api.PullResponse, error) {
	var resp api.PullResponse
	req := api.PullRequest{LastSyncedAt: lastSyncedAt}
	if err := c.doJSON(ctx, http.MethodPost, "/sync/pull", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) PresignUpload(ctx context.Context, req api.PresignRequest) (*api.PresignResponse, error) {
	var resp api.PresignResponse
	if err := c.doJSON(ctx, http.MethodPost, "/upload/presigned-url", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UploadFile PUTs directly to the presigned URL; no bearer header is sent,
// the URL itself carries the authorization.
func (c *HTTPClient) UploadFile(ctx context.Context, uploadURL, contentType string, body io.Reader, size int64) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, uploadURL, body)
	if err != nil {
		return fmt.Errorf("failed to build upload request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.ContentLength = size

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("upload failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("upload rejected with status %d", resp.StatusCode)
	}
	return nil
}

func (c *HTTPClient) DeleteImage(ctx context.Context, key string) error {
	return c.doJSON(ctx, http.MethodDelete, "/upload/"+key, nil, nil)
}

func (c *HTTPClient) DeleteAccount(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodDelete, "/account", nil, nil)
}
