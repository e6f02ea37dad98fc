package cli

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

type fakeAPI struct {
	mu      sync.Mutex
	deleted []string
}

func (f *fakeAPI) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /S3/objects", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"assets":[
			{"key":"abc","name":"foo.png","url":"https://cdn.test/abc","size":1000,"sketchId":"42","sketchName":"My Sketch"},
			{"key":"def","name":"bar.mp3","url":"https://cdn.test/def","size":500}
		],"totalSize":1500}`))
	})
	mux.HandleFunc("DELETE /S3/{key}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.deleted = append(f.deleted, r.PathValue("key"))
		f.mu.Unlock()
		w.WriteHeader(http.StatusOK)
	})
	return mux
}

func run(t *testing.T, srv *httptest.Server, args ...string) (string, error) {
	t.Helper()
	out, _, err := runWith(t, filepath.Join(t.TempDir(), "rc"), srv, args...)
	return out, err
}

// runWith executes the command line against the rc file at rcPath and
// returns stdout and stderr.
func runWith(t *testing.T, rcPath string, srv *httptest.Server, args ...string) (string, string, error) {
	t.Helper()
	for _, k := range []string{"ASSETS_API_URL", "ASSETS_TOKEN", "ASSETS_USERNAME", "ASSETS_EDITOR_URL", "ASSETS_LOCALE", "ASSETS_LOG_LEVEL", "DEBUG"} {
		t.Setenv(k, "")
	}
	base := []string{"--config", rcPath, "--locale", "en-US"}
	if srv != nil {
		base = append(base, "--api-url", srv.URL)
	}
	root, a := newRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append(args, base...))
	err := execute(root, a)
	return out.String(), errOut.String(), err
}

func TestCommandStructure(t *testing.T) {
	root := NewRootCmd()
	for _, name := range []string{"list", "delete", "version", "config"} {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd == nil || cmd.Name() != name {
			t.Fatalf("command %q not registered: %v", name, err)
		}
		if cmd.Short == "" {
			t.Errorf("command %q has no short help", name)
		}
	}
}

func TestListPrintsTable(t *testing.T) {
	api := &fakeAPI{}
	srv := httptest.NewServer(api.handler())
	defer srv.Close()

	out, err := run(t, srv, "list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	for _, want := range []string{"Name", "foo.png", "bar.mp3", "My Sketch", "1.0 kB", "abc", "Total: 1.5 kB"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestDeleteWithYes(t *testing.T) {
	api := &fakeAPI{}
	srv := httptest.NewServer(api.handler())
	defer srv.Close()

	out, err := run(t, srv, "delete", "abc", "--yes")
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(api.deleted) != 1 || api.deleted[0] != "abc" {
		t.Fatalf("expected one delete for abc, got %v", api.deleted)
	}
	if !strings.Contains(out, "Deleted foo.png") {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestDeleteUnknownKey(t *testing.T) {
	api := &fakeAPI{}
	srv := httptest.NewServer(api.handler())
	defer srv.Close()

	if _, err := run(t, srv, "delete", "nope", "--yes"); err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("expected not found error, got %v", err)
	}
	if len(api.deleted) != 0 {
		t.Fatalf("expected no delete, got %v", api.deleted)
	}
}

func TestVersion(t *testing.T) {
	out, err := run(t, nil, "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if strings.TrimSpace(out) != "assets "+Version {
		t.Fatalf("unexpected version output %q", out)
	}
}

func TestFailedCommandStillReportsMetrics(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	}))
	defer srv.Close()

	rc := filepath.Join(t.TempDir(), "rc")
	if err := os.WriteFile(rc, []byte("ASSETS_LOG_LEVEL=info\n"), 0o600); err != nil {
		t.Fatalf("write rc: %v", err)
	}
	_, errOut, err := runWith(t, rc, srv, "list")
	if err == nil {
		t.Fatal("expected list to fail")
	}
	if !strings.Contains(errOut, "api metrics") || !strings.Contains(errOut, "requests=1") {
		t.Fatalf("expected metrics in the log, got:\n%s", errOut)
	}
}

func TestConfigSetWritesRCFile(t *testing.T) {
	rc := filepath.Join(t.TempDir(), "rc")
	if _, _, err := runWith(t, rc, nil, "config", "set", "--token", "secret", "--username", "ada", "--api-url", "http://localhost:8000/editor"); err != nil {
		t.Fatalf("config set: %v", err)
	}
	data, err := os.ReadFile(rc)
	if err != nil {
		t.Fatalf("read rc: %v", err)
	}
	for _, want := range []string{"ASSETS_TOKEN", "secret", "ASSETS_USERNAME", "ada", "http://localhost:8000/editor"} {
		if !strings.Contains(string(data), want) {
			t.Fatalf("expected %q in rc file:\n%s", want, data)
		}
	}

	// a later set keeps what it does not mention
	if _, _, err := runWith(t, rc, nil, "config", "set", "--username", "grace"); err != nil {
		t.Fatalf("second config set: %v", err)
	}
	out, _, err := runWith(t, rc, nil, "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	for _, want := range []string{"http://localhost:8000/editor", "grace", "token:      (set)"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in:\n%s", want, out)
		}
	}
	if strings.Contains(out, "secret") {
		t.Fatalf("show must not print the token:\n%s", out)
	}
}
