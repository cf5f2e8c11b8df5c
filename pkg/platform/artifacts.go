package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path"
	"regexp"
	"sync"

	"github.com/opencontainers/go-digest"
	"golang.org/x/exp/slices"
	"golang.org/x/sync/errgroup"

	apierrors "github.com/louisbrown1/amazon-sagemaker-examples/pkg/errors"
	"github.com/louisbrown1/amazon-sagemaker-examples/pkg/types"
)

const (
	ArtifactIndexFileName = "index.json"

	MediaTypeIndexJson    = "application/vnd.sagex.model.index.v1.json"
	MediaTypeManifestJson = "application/vnd.sagex.model.manifest.v1.json"
)

func BlobDigestPath(repository string, d digest.Digest) string {
	if d == "" {
		d = ":"
	}
	return path.Join(repository, "blobs", d.Algorithm().String(), d.Hex())
}

func ManifestPath(repository string, reference string) string {
	return path.Join(repository, "manifests", reference)
}

func IndexPath(repository string) string {
	return path.Join(repository, ArtifactIndexFileName)
}

// BlobResponse carries either inline content or a redirect to
// presigned object storage.
type BlobResponse struct {
	Content          *BlobContent
	RedirectLocation string
}

// ArtifactStore keeps digest-addressed blobs and named manifests on an
// FSProvider, maintaining per-repository and global indexes.
type ArtifactStore struct {
	FS             FSProvider
	EnableRedirect bool
}

func NewArtifactStore(ctx context.Context, opts *Options) (*ArtifactStore, error) {
	var fs FSProvider
	if opts.S3 != nil && opts.S3.URL != "" {
		s3fs, err := NewS3FSProvider(ctx, opts.S3)
		if err != nil {
			return nil, err
		}
		fs = s3fs
	} else if opts.Local != nil && opts.Local.Basepath != "" {
		if opts.EnableRedirect {
			return nil, apierrors.NewInternalError(fmt.Errorf("local storage does not support redirect"))
		}
		localfs, err := NewLocalFSProvider(opts.Local)
		if err != nil {
			return nil, err
		}
		fs = localfs
	} else {
		return nil, apierrors.NewInternalError(fmt.Errorf("no storage provider is configured"))
	}
	return &ArtifactStore{FS: fs, EnableRedirect: opts.EnableRedirect}, nil
}

func (m *ArtifactStore) ExistsManifest(ctx context.Context, repository string, reference string) (bool, error) {
	ok, err := m.FS.Exists(ctx, ManifestPath(repository, reference))
	if err != nil {
		return false, apierrors.NewInternalError(err)
	}
	return ok, nil
}

func (m *ArtifactStore) GetManifest(ctx context.Context, repository string, reference string) (*types.Manifest, error) {
	body, err := m.FS.Get(ctx, ManifestPath(repository, reference))
	if err != nil {
		if IsStorageNotFound(err) {
			return nil, apierrors.NewManifestUnknownError(reference)
		}
		return nil, apierrors.NewInternalError(err)
	}
	defer body.Close()

	manifest := &types.Manifest{}
	if err := json.NewDecoder(body).Decode(manifest); err != nil {
		return nil, apierrors.NewManifestInvalidError(err)
	}
	return manifest, nil
}

func (m *ArtifactStore) PutManifest(ctx context.Context, repository string, reference string, contentType string, manifest types.Manifest) error {
	content, err := json.Marshal(manifest)
	if err != nil {
		return apierrors.NewManifestInvalidError(err)
	}
	blob := BlobContent{
		Content:       io.NopCloser(bytes.NewReader(content)),
		ContentLength: int64(len(content)),
		ContentType:   contentType,
	}
	if err := m.FS.Put(ctx, ManifestPath(repository, reference), blob); err != nil {
		return apierrors.NewInternalError(err)
	}
	return m.RefreshIndex(ctx, repository)
}

func (m *ArtifactStore) DeleteManifest(ctx context.Context, repository string, reference string) error {
	if err := m.FS.Remove(ctx, ManifestPath(repository, reference), false); err != nil {
		if IsStorageNotFound(err) {
			return apierrors.NewManifestUnknownError(reference)
		}
		return apierrors.NewInternalError(err)
	}
	return m.RefreshIndex(ctx, repository)
}

func (m *ArtifactStore) GetIndex(ctx context.Context, repository string, search string) (types.Index, error) {
	body, err := m.FS.Get(ctx, IndexPath(repository))
	if err != nil {
		if IsStorageNotFound(err) {
			return types.Index{}, apierrors.NewIndexUnknownError(repository)
		}
		return types.Index{}, apierrors.NewInternalError(err)
	}
	defer body.Close()

	var index types.Index
	if err := json.NewDecoder(body).Decode(&index); err != nil {
		return types.Index{}, apierrors.NewInternalError(err)
	}
	return filterIndex(index, search)
}

func (m *ArtifactStore) GetGlobalIndex(ctx context.Context, search string) (types.Index, error) {
	body, err := m.FS.Get(ctx, IndexPath(""))
	if err != nil {
		if IsStorageNotFound(err) {
			// empty store, not an error
			return types.Index{SchemaVersion: 1, MediaType: MediaTypeIndexJson}, nil
		}
		return types.Index{}, apierrors.NewInternalError(err)
	}
	defer body.Close()

	var index types.Index
	if err := json.NewDecoder(body).Decode(&index); err != nil {
		return types.Index{}, apierrors.NewInternalError(err)
	}
	return filterIndex(index, search)
}

func filterIndex(index types.Index, search string) (types.Index, error) {
	if search == "" {
		return index, nil
	}
	searchregexp, err := regexp.Compile(search)
	if err != nil {
		return types.Index{}, apierrors.NewParameterInvalidError(fmt.Sprintf("search %s: %v", search, err))
	}
	matched := []types.Descriptor{}
	for _, manifest := range index.Manifests {
		if searchregexp.MatchString(manifest.Name) {
			matched = append(matched, manifest)
		}
	}
	index.Manifests = matched
	return index, nil
}

func (m *ArtifactStore) putIndex(ctx context.Context, repository string, index types.Index) error {
	slices.SortFunc(index.Manifests, types.SortDescriptorName)
	index.SchemaVersion = 1
	index.MediaType = MediaTypeIndexJson
	content, err := json.Marshal(index)
	if err != nil {
		return apierrors.NewInternalError(err)
	}
	blob := BlobContent{
		Content:       io.NopCloser(bytes.NewReader(content)),
		ContentLength: int64(len(content)),
		ContentType:   MediaTypeIndexJson,
	}
	if err := m.FS.Put(ctx, IndexPath(repository), blob); err != nil {
		return apierrors.NewInternalError(err)
	}
	return nil
}

// RefreshIndex rebuilds the repository index from its manifests, then
// the global index from all repository indexes.
func (m *ArtifactStore) RefreshIndex(ctx context.Context, repository string) error {
	metas, err := m.FS.List(ctx, ManifestPath(repository, ""), false)
	if err != nil {
		return apierrors.NewInternalError(err)
	}

	eg := errgroup.Group{}
	manifests := sync.Map{}
	for _, meta := range metas {
		meta := meta
		eg.Go(func() error {
			manifest, err := m.GetManifest(ctx, repository, meta.Name)
			if err != nil {
				return err
			}
			size := manifest.Config.Size
			for _, blob := range manifest.Blobs {
				size += blob.Size
			}
			manifests.Store(meta.Name, types.Descriptor{
				Name:        meta.Name,
				MediaType:   MediaTypeManifestJson,
				Modified:    meta.LastModified,
				Annotations: manifest.Annotations,
				Size:        size,
			})
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return apierrors.NewInternalError(err)
	}

	index := types.Index{}
	manifests.Range(func(key, value any) bool {
		index.Manifests = append(index.Manifests, value.(types.Descriptor))
		return true
	})
	if len(index.Manifests) != 0 {
		if err := m.putIndex(ctx, repository, index); err != nil {
			return err
		}
	}
	return m.refreshGlobalIndex(ctx)
}

func (m *ArtifactStore) refreshGlobalIndex(ctx context.Context) error {
	metas, err := m.FS.List(ctx, "", true)
	if err != nil {
		return apierrors.NewInternalError(err)
	}
	index := types.Index{}
	for _, meta := range metas {
		if meta.Name == ArtifactIndexFileName || path.Base(meta.Name) != ArtifactIndexFileName {
			continue
		}
		index.Manifests = append(index.Manifests, types.Descriptor{
			Name:      path.Dir(meta.Name),
			MediaType: MediaTypeIndexJson,
			Modified:  meta.LastModified,
		})
	}
	return m.putIndex(ctx, "", index)
}

func (m *ArtifactStore) ExistsBlob(ctx context.Context, repository string, d digest.Digest) (bool, error) {
	ok, err := m.FS.Exists(ctx, BlobDigestPath(repository, d))
	if err != nil {
		return false, apierrors.NewInternalError(err)
	}
	return ok, nil
}

func (m *ArtifactStore) GetBlob(ctx context.Context, repository string, d digest.Digest) (*BlobResponse, error) {
	p := BlobDigestPath(repository, d)
	if m.EnableRedirect {
		location, err := m.FS.GetLocation(ctx, p)
		if err != nil {
			return nil, apierrors.NewInternalError(err)
		}
		return &BlobResponse{RedirectLocation: location}, nil
	}
	content, err := m.FS.Get(ctx, p)
	if err != nil {
		if IsStorageNotFound(err) {
			return nil, apierrors.NewBlobUnknownError(d)
		}
		return nil, apierrors.NewInternalError(err)
	}
	return &BlobResponse{Content: &content}, nil
}

func (m *ArtifactStore) PutBlob(ctx context.Context, repository string, d digest.Digest, content BlobContent) (*BlobResponse, error) {
	p := BlobDigestPath(repository, d)
	if m.EnableRedirect {
		location, err := m.FS.PutLocation(ctx, p)
		if err != nil {
			return nil, apierrors.NewInternalError(err)
		}
		return &BlobResponse{RedirectLocation: location}, nil
	}
	if err := m.FS.Put(ctx, p, content); err != nil {
		return nil, apierrors.NewInternalError(err)
	}
	return &BlobResponse{}, nil
}

func (m *ArtifactStore) DeleteBlob(ctx context.Context, repository string, d digest.Digest) error {
	if err := m.FS.Remove(ctx, BlobDigestPath(repository, d), false); err != nil {
		if IsStorageNotFound(err) {
			return nil
		}
		return apierrors.NewInternalError(err)
	}
	return nil
}

func (m *ArtifactStore) RemoveRepository(ctx context.Context, repository string) error {
	if err := m.FS.Remove(ctx, repository, true); err != nil {
		return apierrors.NewInternalError(err)
	}
	return m.refreshGlobalIndex(ctx)
}
