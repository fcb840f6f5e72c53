package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/kaistout4/ImageGallerySPA/api"
)

var _ Fetcher = (*Client)(nil)

// APIError is a non-2xx answer from the gallery API
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("gallery api: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("gallery api: %d %s", e.StatusCode, e.Message)
}

// Client talks to the gallery HTTP API
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient returns a Client for the server at baseURL. A nil httpClient
// uses http.DefaultClient.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
	}
}

func (c *Client) ListImages(ctx context.Context, credential string) ([]api.Image, error) {
	var images []api.Image
	if err := c.do(ctx, http.MethodGet, "/api/images", credential, nil, "", &images); err != nil {
		return nil, err
	}
	return images, nil
}

func (c *Client) SearchImages(ctx context.Context, credential, query string) ([]api.Image, error) {
	var images []api.Image
	path := "/api/images/search?q=" + url.QueryEscape(query)
	if err := c.do(ctx, http.MethodGet, path, credential, nil, "", &images); err != nil {
		return nil, err
	}
	return images, nil
}

func (c *Client) GetImage(ctx context.Context, credential, id string) (*api.Image, error) {
	var img api.Image
	if err := c.do(ctx, http.MethodGet, "/api/images/"+url.PathEscape(id), credential, nil, "", &img); err != nil {
		return nil, err
	}
	return &img, nil
}

func (c *Client) RenameImage(ctx context.Context, credential, id, name string) error {
	body, err := json.Marshal(api.RenameRequest{Name: name})
	if err != nil {
		return fmt.Errorf("failed to encode rename request: %w", err)
	}

	return c.do(ctx, http.MethodPut, "/api/images/"+url.PathEscape(id), credential,
		bytes.NewReader(body), "application/json", nil)
}

// UploadImage sends the file read from r as a new image called name
func (c *Client) UploadImage(ctx context.Context, credential, name, filename string, r io.Reader) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	if err := mw.WriteField("name", name); err != nil {
		return fmt.Errorf("failed to write name field: %w", err)
	}

	part, err := mw.CreateFormFile("image", filename)
	if err != nil {
		return fmt.Errorf("failed to create file part: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return fmt.Errorf("failed to copy image data: %w", err)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("failed to finish multipart body: %w", err)
	}

	return c.do(ctx, http.MethodPost, "/api/images", credential, &buf, mw.FormDataContentType(), nil)
}

func (c *Client) do(ctx context.Context, method, path, credential string, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	if credential != "" {
		req.Header.Set("Authorization", "Bearer "+credential)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var errBody api.ErrorResponse
		if json.NewDecoder(resp.Body).Decode(&errBody) == nil {
			apiErr.Message = errBody.Message
		}
		return apiErr
	}

	if out == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s %s response: %w", method, path, err)
	}

	return nil
}
