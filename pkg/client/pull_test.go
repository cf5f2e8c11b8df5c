package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/opencontainers/go-digest"

	"github.com/louisbrown1/amazon-sagemaker-examples/pkg/client/progress"
	"github.com/louisbrown1/amazon-sagemaker-examples/pkg/types"
)

func TestClientPing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/artifacts" {
			http.NotFound(w, r)
			return
		}
		json.NewEncoder(w).Encode(types.Index{MediaType: MediaTypeModelIndexJson})
	}))
	defer server.Close()

	cli := NewClient(server.URL, "")
	if err := cli.Ping(context.Background()); err != nil {
		t.Errorf("Ping() error = %v", err)
	}

	server.Close()
	if err := cli.Ping(context.Background()); err == nil {
		t.Errorf("Ping() should fail once the server is gone")
	}
}

func TestPullBlobFile(t *testing.T) {
	content := []byte("layer weights")
	d := digest.FromBytes(content)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/artifacts/demo/blobs/"+d.String() {
			http.NotFound(w, r)
			return
		}
		w.Write(content)
	}))
	defer server.Close()

	cli := NewClient(server.URL, "")
	desc := types.Descriptor{
		Name:      "weights.bin",
		MediaType: MediaTypeModelFile,
		Digest:    d,
		Size:      int64(len(content)),
		Mode:      0o600,
	}
	dir := t.TempDir()

	bar := &progress.Bar{}
	if err := cli.PullBlob(context.Background(), "demo", desc, dir, bar); err != nil {
		t.Fatalf("PullBlob() error = %v", err)
	}
	got, err := os.ReadFile(filepath.Join(dir, "weights.bin"))
	if err != nil {
		t.Fatalf("read pulled file: %v", err)
	}
	if string(got) != string(content) {
		t.Errorf("pulled content = %q, want %q", got, content)
	}
	if !bar.Done || bar.Status != "done" {
		t.Errorf("bar = %+v, want done", bar)
	}

	// a second pull sees the blob on disk and skips the download
	bar = &progress.Bar{}
	if err := cli.PullBlob(context.Background(), "demo", desc, dir, bar); err != nil {
		t.Fatalf("PullBlob() again error = %v", err)
	}
	if bar.Status != "already exists" {
		t.Errorf("bar status = %q, want already exists", bar.Status)
	}
}
