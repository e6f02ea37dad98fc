package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrNoBaseURL is returned by calls on a client without a base URL.
var ErrNoBaseURL = errors.New("api base url is empty")

// StatusError reports a non-2xx response.
type StatusError struct {
	Op     string
	Status string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s status %s", e.Op, e.Status)
	}
	return fmt.Sprintf("%s status %s: %s", e.Op, e.Status, e.Body)
}

type Client struct {
	http  *http.Client
	base  string
	token string
}

// New returns a client for the asset API rooted at base, e.g.
// https://editor.p5js.org/editor. An empty token sends no Authorization.
func New(base, token string) *Client {
	return &Client{
		http:  &http.Client{Timeout: 10 * time.Second},
		base:  strings.TrimRight(base, "/"),
		token: token,
	}
}

// NewWithTransport is like New but routes requests through rt.
func NewWithTransport(base, token string, rt http.RoundTripper) *Client {
	c := New(base, token)
	c.http.Transport = rt
	return c
}

// ---------- Assets ----------

// Asset is one uploaded file as reported by the storage service.
type Asset struct {
	Key        string `json:"key"`
	Name       string `json:"name"`
	URL        string `json:"url"`
	Size       int64  `json:"size"`
	SketchID   string `json:"sketchId,omitempty"`
	SketchName string `json:"sketchName,omitempty"`
}

// AssetList is the payload of the list endpoint.
type AssetList struct {
	Assets    []Asset `json:"assets"`
	TotalSize int64   `json:"totalSize"`
}

// ListAssets fetches every asset of the authenticated user.
func (c *Client) ListAssets(ctx context.Context) (AssetList, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/S3/objects")
	if err != nil {
		return AssetList{}, err
	}
	res, err := c.http.Do(req)
	if err != nil {
		return AssetList{}, fmt.Errorf("assets.list: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return AssetList{}, statusError("assets.list", res)
	}
	var payload AssetList
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		return AssetList{}, fmt.Errorf("assets.list decode: %w", err)
	}
	if payload.Assets == nil {
		payload.Assets = []Asset{}
	}
	return payload, nil
}

// DeleteAsset removes the object stored under key.
func (c *Client) DeleteAsset(ctx context.Context, key string) error {
	if strings.TrimSpace(key) == "" {
		return errors.New("asset key is empty")
	}
	req, err := c.newRequest(ctx, http.MethodDelete, "/S3/"+url.PathEscape(key))
	if err != nil {
		return err
	}
	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("assets.delete: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return statusError("assets.delete", res)
	}
	_, _ = io.Copy(io.Discard, res.Body)
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, path string) (*http.Request, error) {
	if c.base == "" {
		return nil, ErrNoBaseURL
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, nil)
	if err != nil {
		return nil, err
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func statusError(op string, res *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(res.Body, 512))
	return &StatusError{
		Op:     op,
		Status: res.Status,
		Code:   res.StatusCode,
		Body:   strings.TrimSpace(string(body)),
	}
}
