package platform

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	apierrors "github.com/louisbrown1/amazon-sagemaker-examples/pkg/errors"
	"github.com/louisbrown1/amazon-sagemaker-examples/pkg/types"
)

func GetRepositoryReference(r *http.Request) (string, string) {
	vars := mux.Vars(r)
	return vars["name"], vars["reference"]
}

func (p *Platform) GetManifest(w http.ResponseWriter, r *http.Request) {
	repository, reference := GetRepositoryReference(r)
	manifest, err := p.Artifacts.GetManifest(r.Context(), repository, reference)
	if err != nil {
		ResponseError(w, err)
		return
	}
	ResponseOK(w, manifest)
}

func (p *Platform) PutManifest(w http.ResponseWriter, r *http.Request) {
	repository, reference := GetRepositoryReference(r)
	var manifest types.Manifest
	if err := json.NewDecoder(r.Body).Decode(&manifest); err != nil {
		ResponseError(w, apierrors.NewManifestInvalidError(err))
		return
	}
	contenttype := r.Header.Get("Content-Type")
	if err := p.Artifacts.PutManifest(r.Context(), repository, reference, contenttype, manifest); err != nil {
		ResponseError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (p *Platform) DeleteManifest(w http.ResponseWriter, r *http.Request) {
	repository, reference := GetRepositoryReference(r)
	if err := p.Artifacts.DeleteManifest(r.Context(), repository, reference); err != nil {
		ResponseError(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}
