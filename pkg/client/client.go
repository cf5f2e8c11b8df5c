package client

import (
	"context"
	"net/http"

	"github.com/opencontainers/go-digest"
)

const (
	MediaTypeModelIndexJson      = "application/vnd.sagex.model.index.v1.json"
	MediaTypeModelManifestJson   = "application/vnd.sagex.model.manifest.v1.json"
	MediaTypeModelConfigYaml     = "application/vnd.sagex.model.config.v1.yaml"
	MediaTypeModelFile           = "application/vnd.sagex.model.file.v1"
	MediaTypeModelDirectoryTarGz = "application/vnd.sagex.model.directory.v1.tar+gz"
	MediaTypeSourceArchiveTarGz  = "application/vnd.sagex.source.v1.tar+gz"
)

var EmptyFileDigest = digest.Canonical.FromBytes(nil)

// Client talks to one platform instance: the training-job, model and
// endpoint APIs plus the artifact store behind them.
type Client struct {
	Remote *APIClient
}

func NewClient(addr string, auth string) *Client {
	return &Client{
		Remote: &APIClient{
			Addr:          addr,
			Authorization: auth,
			Client:        http.DefaultClient,
		},
	}
}

func (c *Client) Ping(ctx context.Context) error {
	if _, err := c.Remote.GetGlobalIndex(ctx, ""); err != nil {
		return err
	}
	return nil
}
