package client

import (
	"context"
	"io"
	"net/http"

	"github.com/opencontainers/go-digest"

	"github.com/louisbrown1/amazon-sagemaker-examples/pkg/types"
)

func (t *APIClient) UploadBlob(ctx context.Context, repository string, desc types.Descriptor, body RequestBody) error {
	header := map[string]string{"Content-Type": "application/octet-stream"}
	path := "/artifacts/" + repository + "/blobs/" + desc.Digest.String()
	_, err := t.request(ctx, "PUT", path, header, body, nil)
	return err
}

func (t *APIClient) GetBlob(ctx context.Context, repository string, digest digest.Digest) (io.ReadCloser, int64, error) {
	path := "/artifacts/" + repository + "/blobs/" + digest.String()
	resp, err := t.request(ctx, "GET", path, nil, nil, nil)
	if err != nil {
		return nil, -1, err
	}
	return resp.Body, resp.ContentLength, nil
}

func (t *APIClient) HeadBlob(ctx context.Context, repository string, digest digest.Digest) (bool, error) {
	path := "/artifacts/" + repository + "/blobs/" + digest.String()
	resp, err := t.request(ctx, "HEAD", path, nil, nil, nil)
	if err != nil {
		return false, err
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK, nil
}

func (t *APIClient) GetManifest(ctx context.Context, repository string, version string) (*types.Manifest, error) {
	if version == "" {
		version = "latest"
	}
	manifest := &types.Manifest{}
	path := "/artifacts/" + repository + "/manifests/" + version
	if _, err := t.request(ctx, "GET", path, nil, nil, manifest); err != nil {
		return nil, err
	}
	return manifest, nil
}

func (t *APIClient) PutManifest(ctx context.Context, repository string, version string, manifest types.Manifest) error {
	if version == "" {
		version = "latest"
	}
	header := map[string]string{"Content-Type": "application/json"}
	path := "/artifacts/" + repository + "/manifests/" + version
	_, err := t.request(ctx, "PUT", path, header, manifest, nil)
	return err
}

func (t *APIClient) GetIndex(ctx context.Context, repository string, search string) (*types.Index, error) {
	index := &types.Index{}
	path := "/artifacts/" + repository + "/index" + query("search", search)
	if _, err := t.request(ctx, "GET", path, nil, nil, index); err != nil {
		return nil, err
	}
	return index, nil
}

func (t *APIClient) GetGlobalIndex(ctx context.Context, search string) (*types.Index, error) {
	index := &types.Index{}
	path := "/artifacts" + query("search", search)
	if _, err := t.request(ctx, "GET", path, nil, nil, index); err != nil {
		return nil, err
	}
	return index, nil
}
