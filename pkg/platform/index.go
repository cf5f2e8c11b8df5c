package platform

import (
	"net/http"
)

func (p *Platform) GetGlobalIndex(w http.ResponseWriter, r *http.Request) {
	index, err := p.Artifacts.GetGlobalIndex(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		ResponseError(w, err)
		return
	}
	ResponseOK(w, index)
}

func (p *Platform) GetIndex(w http.ResponseWriter, r *http.Request) {
	repository, _ := GetRepositoryReference(r)
	index, err := p.Artifacts.GetIndex(r.Context(), repository, r.URL.Query().Get("search"))
	if err != nil {
		ResponseError(w, err)
		return
	}
	ResponseOK(w, index)
}

// DeleteIndex removes the whole repository: manifests, blobs and the
// index itself.
func (p *Platform) DeleteIndex(w http.ResponseWriter, r *http.Request) {
	repository, _ := GetRepositoryReference(r)
	if err := p.Artifacts.RemoveRepository(r.Context(), repository); err != nil {
		ResponseError(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}
