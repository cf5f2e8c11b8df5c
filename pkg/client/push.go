package client

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/opencontainers/go-digest"

	"github.com/louisbrown1/amazon-sagemaker-examples/pkg/client/progress"
	"github.com/louisbrown1/amazon-sagemaker-examples/pkg/types"
)

const PushConcurrency = 5

// Push uploads the model directory at basedir as repository
// repo@version: every blob first, then the manifest.
func (c *Client) Push(ctx context.Context, repo, version string, configfile, basedir string, annotations map[string]string) error {
	manifest, err := PackManifest(ctx, basedir, configfile, annotations)
	if err != nil {
		return err
	}

	mb := progress.NewMultiBar(os.Stdout, 40, PushConcurrency)
	go mb.Run(ctx)

	for i := range manifest.Blobs {
		desc := &manifest.Blobs[i]
		mb.Go(desc.Name, "pending", func(b *progress.Bar) error {
			switch desc.MediaType {
			case MediaTypeModelDirectoryTarGz:
				return c.pushDirectory(ctx, basedir, desc, repo, b)
			default:
				return c.pushFile(ctx, basedir, desc, repo, b)
			}
		})
	}
	if manifest.Config.Name != "" {
		mb.Go(manifest.Config.Name, "pending", func(b *progress.Bar) error {
			return c.pushFile(ctx, basedir, &manifest.Config, repo, b)
		})
	}
	if err := mb.Wait(); err != nil {
		return err
	}

	mb.Go("manifest", "pushing", func(b *progress.Bar) error {
		if err := c.Remote.PutManifest(ctx, repo, version, manifest); err != nil {
			return err
		}
		b.SetStatus("manifest", "done")
		return nil
	})
	return mb.Wait()
}

func (c *Client) PushBlob(ctx context.Context, repo string, desc DescriptorWithContent, bar *progress.Bar) error {
	if desc.Digest == EmptyFileDigest {
		bar.SetStatus(desc.Digest.Hex()[:8], "empty")
		return nil
	}
	exist, err := c.Remote.HeadBlob(ctx, repo, desc.Digest)
	if err != nil {
		return err
	}
	if exist {
		bar.SetProgress(desc.Size, desc.Size)
		bar.SetStatus(desc.Digest.Hex()[:8], "skipped")
		return nil
	}
	body := RequestBody{
		ContentLength: desc.Size,
		ContentBody: func() (io.ReadCloser, error) {
			rc, err := desc.GetContent()
			if err != nil {
				return nil, err
			}
			return bar.WrapReader(rc, desc.Digest.Hex()[:8], desc.Size, "pushing", "done", "failed"), nil
		},
	}
	return c.Remote.UploadBlob(ctx, repo, desc.Descriptor, body)
}

func (c *Client) pushDirectory(ctx context.Context, basedir string, desc *types.Descriptor, repo string, bar *progress.Bar) error {
	tgzfile := filepath.Join(basedir, ".sagex", desc.Name+".tar.gz")
	entrydir := filepath.Join(basedir, desc.Name)

	fi, err := os.Stat(entrydir)
	if err != nil {
		return err
	}
	bar.SetStatus(desc.Name, "digesting")

	dgst, err := TGZ(ctx, entrydir, tgzfile)
	if err != nil {
		return err
	}
	tgzfi, err := os.Stat(tgzfile)
	if err != nil {
		return err
	}
	desc.Digest = dgst
	desc.Size = tgzfi.Size()
	desc.Mode = fi.Mode()
	desc.Modified = fi.ModTime()

	return c.PushBlob(ctx, repo, DescriptorWithContent{
		Descriptor: *desc,
		GetContent: func() (io.ReadCloser, error) { return os.Open(tgzfile) },
	}, bar)
}

func (c *Client) pushFile(ctx context.Context, basedir string, desc *types.Descriptor, repo string, bar *progress.Bar) error {
	filename := filepath.Join(basedir, desc.Name)

	fi, err := os.Stat(filename)
	if err != nil {
		return err
	}
	f, err := os.Open(filename)
	if err != nil {
		return err
	}
	bar.SetStatus(desc.Name, "digesting")
	dgst, err := digest.FromReader(f)
	_ = f.Close()
	if err != nil {
		return err
	}
	desc.Digest = dgst
	desc.Size = fi.Size()
	desc.Mode = fi.Mode()
	desc.Modified = fi.ModTime()

	return c.PushBlob(ctx, repo, DescriptorWithContent{
		Descriptor: *desc,
		GetContent: func() (io.ReadCloser, error) { return os.Open(filename) },
	}, bar)
}
