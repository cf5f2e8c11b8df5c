package platform

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	apierrors "github.com/louisbrown1/amazon-sagemaker-examples/pkg/errors"
	"github.com/louisbrown1/amazon-sagemaker-examples/pkg/types"
)

func (p *Platform) CreateModel(w http.ResponseWriter, r *http.Request) {
	model := types.Model{}
	if err := json.NewDecoder(r.Body).Decode(&model); err != nil {
		ResponseError(w, apierrors.NewModelInvalidError(err))
		return
	}
	if err := model.Validate(); err != nil {
		ResponseError(w, apierrors.NewModelInvalidError(err))
		return
	}
	// the model data must already be in the artifact store
	data := model.PrimaryContainer.ModelData
	ok, err := p.Artifacts.ExistsBlob(r.Context(), data.Repository, data.Digest)
	if err != nil {
		ResponseError(w, err)
		return
	}
	if !ok {
		ResponseError(w, apierrors.NewBlobUnknownError(data.Digest))
		return
	}
	if err := p.Store.PutModel(&model); err != nil {
		ResponseError(w, apierrors.NewInternalError(err))
		return
	}
	ResponseCreated(w, model)
}

func (p *Platform) ListModels(w http.ResponseWriter, r *http.Request) {
	models, err := p.Store.ListModels()
	if err != nil {
		ResponseError(w, apierrors.NewInternalError(err))
		return
	}
	ResponseOK(w, models)
}

func (p *Platform) GetModel(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	model, ok, err := p.Store.GetModel(name)
	if err != nil {
		ResponseError(w, apierrors.NewInternalError(err))
		return
	}
	if !ok {
		ResponseError(w, apierrors.NewModelUnknownError(name))
		return
	}
	ResponseOK(w, model)
}

func (p *Platform) DeleteModel(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	_, ok, err := p.Store.GetModel(name)
	if err != nil {
		ResponseError(w, apierrors.NewInternalError(err))
		return
	}
	if !ok {
		ResponseError(w, apierrors.NewModelUnknownError(name))
		return
	}
	eps, err := p.Store.ListEndpoints()
	if err != nil {
		ResponseError(w, apierrors.NewInternalError(err))
		return
	}
	for _, ep := range eps {
		if ep.ModelName == name && ep.Status.State != types.EndpointStateDeleting {
			ResponseError(w, apierrors.NewModelInvalidError(
				fmt.Errorf("model %s is in use by endpoint %s", name, ep.Name)))
			return
		}
	}
	if err := p.Store.DeleteModel(name); err != nil {
		ResponseError(w, apierrors.NewInternalError(err))
		return
	}
	w.WriteHeader(http.StatusAccepted)
}
