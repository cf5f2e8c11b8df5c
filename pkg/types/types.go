package types

import (
	"io/fs"
	"strings"
	"time"

	"github.com/opencontainers/go-digest"
)

// Descriptor describes a single content-addressed object in the
// artifact store: a packaged source archive, a model file, or a
// serialized model directory tree.
type Descriptor struct {
	Name        string            `json:"name"`
	MediaType   string            `json:"mediaType,omitempty"`
	Digest      digest.Digest     `json:"digest,omitempty"`
	Size        int64             `json:"size,omitempty"`
	Mode        fs.FileMode       `json:"mode,omitempty"`
	Modified    time.Time         `json:"modified,omitempty"`
	Annotations map[string]string `json:"annotations,omitempty"`
}

func SortDescriptorName(a, b Descriptor) bool {
	return strings.Compare(a.Name, b.Name) < 0
}

type Index struct {
	SchemaVersion int               `json:"schemaVersion"`
	MediaType     string            `json:"mediaType,omitempty"`
	Manifests     []Descriptor      `json:"manifests"`
	Annotations   map[string]string `json:"annotations,omitempty"`
}

type Manifest struct {
	SchemaVersion int               `json:"schemaVersion"`
	MediaType     string            `json:"mediaType,omitempty"`
	Config        Descriptor        `json:"config"`
	Blobs         []Descriptor      `json:"blobs"`
	Annotations   map[string]string `json:"annotations,omitempty"`
}

// ArtifactRef points at a single blob in the artifact store.
type ArtifactRef struct {
	Repository string        `json:"repository"`
	Name       string        `json:"name,omitempty"`
	Digest     digest.Digest `json:"digest"`
	Size       int64         `json:"size,omitempty"`
}

func (r *ArtifactRef) Empty() bool {
	return r == nil || r.Digest == ""
}
