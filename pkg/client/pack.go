package client

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mholt/archiver/v4"
	"github.com/opencontainers/go-digest"
	"golang.org/x/exp/slices"

	"github.com/louisbrown1/amazon-sagemaker-examples/pkg/types"
)

type DescriptorWithContent struct {
	types.Descriptor
	GetContent func() (io.ReadCloser, error)
}

var tgz = archiver.CompressedArchive{
	Archival:    archiver.Tar{},
	Compression: archiver.Gz{},
}

// TGZ archives dir into intofile (omit intofile to only digest) and
// returns the canonical digest of the archive stream.
func TGZ(ctx context.Context, dir string, intofile string) (digest.Digest, error) {
	files, err := archiver.FilesFromDisk(
		&archiver.FromDiskOptions{ClearAttributes: true},
		map[string]string{dir + string(os.PathSeparator): ""},
	)
	if err != nil {
		return "", err
	}

	writers := []io.Writer{}
	if intofile != "" {
		if err := os.MkdirAll(filepath.Dir(intofile), 0o755); err != nil {
			return "", err
		}
		f, err := os.Create(intofile)
		if err != nil {
			return "", err
		}
		defer f.Close()
		writers = append(writers, f)
	}
	d := digest.Canonical.Digester()
	writers = append(writers, d.Hash())

	if err := tgz.Archive(ctx, io.MultiWriter(writers...), files); err != nil {
		return "", err
	}
	return d.Digest(), nil
}

func UnTGZ(ctx context.Context, intodir string, reader io.Reader) error {
	return tgz.Extract(ctx, reader, nil, func(ctx context.Context, f archiver.File) error {
		local := filepath.Join(intodir, f.NameInArchive)
		if f.IsDir() {
			return os.MkdirAll(local, f.Mode())
		}
		src, err := f.Open()
		if err != nil {
			return err
		}
		defer src.Close()

		if err := os.MkdirAll(filepath.Dir(local), 0o755); err != nil {
			return err
		}
		dst, err := os.OpenFile(local, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, f.Mode())
		if err != nil {
			return err
		}
		defer dst.Close()

		_, err = io.Copy(dst, src)
		return err
	})
}

// PackManifest walks dir and builds an unresolved manifest: every
// regular file becomes a file blob, every top-level directory a
// tar.gz blob, configfile the config descriptor. Digests are filled
// during push.
func PackManifest(ctx context.Context, dir string, configfile string, annotations map[string]string) (types.Manifest, error) {
	manifest := types.Manifest{
		MediaType:   MediaTypeModelManifestJson,
		Blobs:       []types.Descriptor{},
		Annotations: annotations,
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return types.Manifest{}, err
	}
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		switch {
		case entry.Name() == configfile:
			manifest.Config = types.Descriptor{Name: entry.Name(), MediaType: MediaTypeModelConfigYaml}
		case entry.IsDir():
			manifest.Blobs = append(manifest.Blobs, types.Descriptor{Name: entry.Name(), MediaType: MediaTypeModelDirectoryTarGz})
		default:
			manifest.Blobs = append(manifest.Blobs, types.Descriptor{Name: entry.Name(), MediaType: MediaTypeModelFile})
		}
	}
	slices.SortFunc(manifest.Blobs, types.SortDescriptorName)
	return manifest, nil
}

func checkLocalBlob(ctx context.Context, dir string, desc types.Descriptor) (bool, error) {
	local := filepath.Join(dir, desc.Name)
	fi, err := os.Stat(local)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	if fi.IsDir() {
		d, err := TGZ(ctx, local, "")
		if err != nil {
			return false, err
		}
		return d == desc.Digest, nil
	}
	f, err := os.Open(local)
	if err != nil {
		return false, err
	}
	defer f.Close()
	d, err := digest.FromReader(f)
	if err != nil {
		return false, err
	}
	return d == desc.Digest, nil
}
