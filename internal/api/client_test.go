package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func jsonResponse(code int, body string) *http.Response {
	return &http.Response{
		StatusCode: code,
		Status:     http.StatusText(code),
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     make(http.Header),
	}
}

func TestListAssets(t *testing.T) {
	c := NewWithTransport("https://editor.test/editor/", "token", roundTripFunc(func(req *http.Request) (*http.Response, error) {
		if req.Method != http.MethodGet || req.URL.Path != "/editor/S3/objects" {
			t.Fatalf("unexpected request %s %s", req.Method, req.URL.Path)
		}
		if got := req.Header.Get("Authorization"); got != "Bearer token" {
			t.Fatalf("unexpected auth header: %q", got)
		}
		body := `{"assets":[{"key":"abc","name":"foo.png","url":"https://cdn.test/abc","size":2048,"sketchId":"42","sketchName":"My Sketch"},
			{"key":"def","name":"bar.mp3","url":"https://cdn.test/def","size":0}],"totalSize":2048}`
		return jsonResponse(200, body), nil
	}))

	list, err := c.ListAssets(context.Background())
	if err != nil {
		t.Fatalf("ListAssets returned error: %v", err)
	}
	if len(list.Assets) != 2 || list.TotalSize != 2048 {
		t.Fatalf("unexpected list: %+v", list)
	}
	first := list.Assets[0]
	if first.Key != "abc" || first.Name != "foo.png" || first.Size != 2048 || first.SketchID != "42" || first.SketchName != "My Sketch" {
		t.Fatalf("unexpected first asset: %+v", first)
	}
	if list.Assets[1].SketchID != "" {
		t.Fatalf("expected no sketch for second asset: %+v", list.Assets[1])
	}
}

func TestListAssetsEmptyPayload(t *testing.T) {
	c := NewWithTransport("https://editor.test/editor", "", roundTripFunc(func(req *http.Request) (*http.Response, error) {
		if req.Header.Get("Authorization") != "" {
			t.Fatalf("expected no auth header without token")
		}
		return jsonResponse(200, `{}`), nil
	}))
	list, err := c.ListAssets(context.Background())
	if err != nil {
		t.Fatalf("ListAssets returned error: %v", err)
	}
	if list.Assets == nil || len(list.Assets) != 0 {
		t.Fatalf("expected empty non-nil assets, got %#v", list.Assets)
	}
}

func TestListAssetsStatusError(t *testing.T) {
	c := NewWithTransport("https://editor.test/editor", "token", roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(401, `{"error":"unauthorized"}`), nil
	}))
	_, err := c.ListAssets(context.Background())
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if se.Code != 401 || !strings.Contains(se.Error(), "unauthorized") {
		t.Fatalf("unexpected status error: %v", se)
	}
}

func TestNoBaseURL(t *testing.T) {
	c := New("", "token")
	if _, err := c.ListAssets(context.Background()); !errors.Is(err, ErrNoBaseURL) {
		t.Fatalf("expected ErrNoBaseURL, got %v", err)
	}
}

func TestDeleteAsset(t *testing.T) {
	calls := 0
	c := NewWithTransport("https://editor.test/editor", "token", roundTripFunc(func(req *http.Request) (*http.Response, error) {
		calls++
		if req.Method != http.MethodDelete {
			t.Fatalf("unexpected method %s", req.Method)
		}
		if req.URL.EscapedPath() != "/editor/S3/user%2Fabc.png" {
			t.Fatalf("unexpected path %s", req.URL.EscapedPath())
		}
		return jsonResponse(200, `{"success":true}`), nil
	}))
	if err := c.DeleteAsset(context.Background(), "user/abc.png"); err != nil {
		t.Fatalf("DeleteAsset returned error: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected 1 call, got %d", calls)
	}
}

func TestDeleteAssetRejectsEmptyKey(t *testing.T) {
	c := NewWithTransport("https://editor.test/editor", "token", roundTripFunc(func(req *http.Request) (*http.Response, error) {
		t.Fatalf("no request expected")
		return nil, nil
	}))
	if err := c.DeleteAsset(context.Background(), " "); err == nil {
		t.Fatal("expected error for empty key")
	}
}

func TestDeleteAssetStatusError(t *testing.T) {
	c := NewWithTransport("https://editor.test/editor", "token", roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(404, ``), nil
	}))
	err := c.DeleteAsset(context.Background(), "abc")
	var se *StatusError
	if !errors.As(err, &se) || se.Code != 404 {
		t.Fatalf("expected 404 StatusError, got %v", err)
	}
}

func TestDeleteAssetThroughTransportSendsOnce(t *testing.T) {
	frt := &fakeRT{queue: []any{
		&http.Response{StatusCode: 503, Status: "503 Service Unavailable"},
		&http.Response{StatusCode: 404, Status: "404 Not Found"},
	}}
	tr := NewRetryingLimiterTransport(fastOpts(newFakeClock()))
	tr.Base = frt
	c := NewWithTransport("https://editor.test/editor", "token", tr)

	err := c.DeleteAsset(context.Background(), "abc")
	var se *StatusError
	if !errors.As(err, &se) || se.Code != 503 {
		t.Fatalf("expected the 503 to surface, got %v", err)
	}
	if frt.calls.Load() != 1 {
		t.Fatalf("expected 1 round trip, got %d", frt.calls.Load())
	}
}
