package client

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/louisbrown1/amazon-sagemaker-examples/pkg/client/progress"
	"github.com/louisbrown1/amazon-sagemaker-examples/pkg/types"
)

// Pull downloads repo@version into the given directory, blob by blob.
func (c *Client) Pull(ctx context.Context, repo string, version string, into string) error {
	if fi, err := os.Stat(into); err != nil {
		if !os.IsNotExist(err) {
			return err
		}
		if err := os.MkdirAll(into, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", into, err)
		}
	} else if !fi.IsDir() {
		return fmt.Errorf("%s is not a directory", into)
	}

	manifest, err := c.Remote.GetManifest(ctx, repo, version)
	if err != nil {
		return err
	}
	blobs := manifest.Blobs
	if manifest.Config.Name != "" {
		blobs = append(blobs, manifest.Config)
	}
	return c.PullBlobs(ctx, repo, into, blobs)
}

func (c *Client) PullBlobs(ctx context.Context, repo string, basedir string, blobs []types.Descriptor) error {
	mb := progress.NewMultiBar(os.Stdout, 40, PushConcurrency)
	go mb.Run(ctx)

	for _, blob := range blobs {
		blob := blob
		mb.Go(blob.Name, "pending", func(b *progress.Bar) error {
			return c.PullBlob(ctx, repo, blob, basedir, b)
		})
	}
	return mb.Wait()
}

func (c *Client) PullBlob(ctx context.Context, repo string, desc types.Descriptor, basedir string, bar *progress.Bar) error {
	ok, err := checkLocalBlob(ctx, basedir, desc)
	if err != nil {
		return err
	}
	if ok {
		bar.SetProgress(desc.Size, desc.Size)
		bar.SetStatus(desc.Name, "already exists")
		return nil
	}
	switch desc.MediaType {
	case MediaTypeModelDirectoryTarGz:
		return c.pullDirectory(ctx, repo, desc, basedir, bar)
	default:
		return c.pullFile(ctx, repo, desc, basedir, bar)
	}
}

func (c *Client) pullDirectory(ctx context.Context, repo string, desc types.Descriptor, basedir string, bar *progress.Bar) error {
	rc, length, err := c.Remote.GetBlob(ctx, repo, desc.Digest)
	if err != nil {
		return err
	}
	defer rc.Close()

	reader := bar.WrapReader(rc, desc.Name, length, "pulling", "done", "failed")
	return UnTGZ(ctx, filepath.Join(basedir, desc.Name), reader)
}

func (c *Client) pullFile(ctx context.Context, repo string, desc types.Descriptor, basedir string, bar *progress.Bar) error {
	rc, length, err := c.Remote.GetBlob(ctx, repo, desc.Digest)
	if err != nil {
		return err
	}
	defer rc.Close()

	perm := desc.Mode.Perm()
	if perm == 0 {
		perm = 0o644
	}
	filename := filepath.Join(basedir, desc.Name)
	if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(filename, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	defer f.Close()

	writer := bar.WrapWriter(f, desc.Name, length, "pulling", "done", "failed")
	_, err = io.Copy(writer, rc)
	return err
}
