package platform

import (
	"context"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/opencontainers/go-digest"

	apierrors "github.com/louisbrown1/amazon-sagemaker-examples/pkg/errors"
)

func BlobDigestFun(w http.ResponseWriter, r *http.Request, fun func(ctx context.Context, repository string, digest digest.Digest)) {
	repository, _ := GetRepositoryReference(r)
	digeststr := mux.Vars(r)["digest"]
	d, err := digest.Parse(digeststr)
	if err != nil {
		ResponseError(w, apierrors.NewDigestInvalidError(digeststr))
		return
	}
	fun(r.Context(), repository, d)
}

func (p *Platform) HeadBlob(w http.ResponseWriter, r *http.Request) {
	BlobDigestFun(w, r, func(ctx context.Context, repository string, d digest.Digest) {
		ok, err := p.Artifacts.ExistsBlob(ctx, repository, d)
		if err != nil {
			ResponseError(w, err)
			return
		}
		if ok {
			w.WriteHeader(http.StatusOK)
		} else {
			w.WriteHeader(http.StatusNotFound)
		}
	})
}

func (p *Platform) GetBlob(w http.ResponseWriter, r *http.Request) {
	BlobDigestFun(w, r, func(ctx context.Context, repository string, d digest.Digest) {
		resp, err := p.Artifacts.GetBlob(ctx, repository, d)
		if err != nil {
			ResponseError(w, err)
			return
		}
		if resp.RedirectLocation != "" {
			w.Header().Set("Location", resp.RedirectLocation)
			w.WriteHeader(http.StatusFound)
			return
		}
		defer resp.Content.Close()
		w.Header().Set("Content-Length", strconv.FormatInt(resp.Content.ContentLength, 10))
		if resp.Content.ContentType != "" {
			w.Header().Set("Content-Type", resp.Content.ContentType)
		}
		w.WriteHeader(http.StatusOK)
		io.Copy(w, resp.Content)
	})
}

func (p *Platform) PutBlob(w http.ResponseWriter, r *http.Request) {
	BlobDigestFun(w, r, func(ctx context.Context, repository string, d digest.Digest) {
		content := BlobContent{
			Content:       r.Body,
			ContentLength: r.ContentLength,
			ContentType:   r.Header.Get("Content-Type"),
		}
		resp, err := p.Artifacts.PutBlob(ctx, repository, d, content)
		if err != nil {
			ResponseError(w, err)
			return
		}
		if resp.RedirectLocation != "" {
			w.Header().Set("Location", resp.RedirectLocation)
			w.WriteHeader(http.StatusFound)
			return
		}
		w.WriteHeader(http.StatusCreated)
	})
}
