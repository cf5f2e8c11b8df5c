package platform

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	apierrors "github.com/louisbrown1/amazon-sagemaker-examples/pkg/errors"
	"github.com/louisbrown1/amazon-sagemaker-examples/pkg/types"
)

func (p *Platform) CreateEndpoint(w http.ResponseWriter, r *http.Request) {
	ep := types.Endpoint{}
	if err := json.NewDecoder(r.Body).Decode(&ep); err != nil {
		ResponseError(w, apierrors.NewEndpointInvalidError(err))
		return
	}
	if ep.Resources.InstanceCount == 0 {
		ep.Resources.InstanceCount = 1
	}
	if err := ep.Validate(); err != nil {
		ResponseError(w, apierrors.NewEndpointInvalidError(err))
		return
	}
	if _, ok, err := p.Store.GetEndpoint(ep.Name); err != nil {
		ResponseError(w, apierrors.NewInternalError(err))
		return
	} else if ok {
		ResponseError(w, apierrors.NewEndpointInvalidError(fmt.Errorf("endpoint %s already exists", ep.Name)))
		return
	}
	if _, ok, err := p.Store.GetModel(ep.ModelName); err != nil {
		ResponseError(w, apierrors.NewInternalError(err))
		return
	} else if !ok {
		ResponseError(w, apierrors.NewModelUnknownError(ep.ModelName))
		return
	}
	ep.Status = types.EndpointStatus{
		State:        types.EndpointStateCreating,
		CreationTime: time.Now().UTC(),
	}
	if err := p.Store.PutEndpoint(&ep); err != nil {
		ResponseError(w, apierrors.NewInternalError(err))
		return
	}
	p.controller.Notify()
	ResponseCreated(w, ep)
}

func (p *Platform) ListEndpoints(w http.ResponseWriter, r *http.Request) {
	eps, err := p.Store.ListEndpoints()
	if err != nil {
		ResponseError(w, apierrors.NewInternalError(err))
		return
	}
	ResponseOK(w, eps)
}

func (p *Platform) GetEndpoint(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	ep, ok, err := p.Store.GetEndpoint(name)
	if err != nil {
		ResponseError(w, apierrors.NewInternalError(err))
		return
	}
	if !ok {
		ResponseError(w, apierrors.NewEndpointUnknownError(name))
		return
	}
	ResponseOK(w, ep)
}

func (p *Platform) DeleteEndpoint(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	ep, ok, err := p.Store.GetEndpoint(name)
	if err != nil {
		ResponseError(w, apierrors.NewInternalError(err))
		return
	}
	if !ok {
		ResponseError(w, apierrors.NewEndpointUnknownError(name))
		return
	}
	ep.Status.State = types.EndpointStateDeleting
	if err := p.Store.PutEndpoint(ep); err != nil {
		ResponseError(w, apierrors.NewInternalError(err))
		return
	}
	p.controller.Notify()
	w.WriteHeader(http.StatusAccepted)
}

// InvokeEndpoint forwards one prediction request to the serving backend
// hosting the endpoint's model and relays the response unmodified.
func (p *Platform) InvokeEndpoint(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	ep, ok, err := p.Store.GetEndpoint(name)
	if err != nil {
		ResponseError(w, apierrors.NewInternalError(err))
		return
	}
	if !ok {
		ResponseError(w, apierrors.NewEndpointUnknownError(name))
		return
	}
	if ep.Status.State != types.EndpointStateInService {
		ResponseError(w, apierrors.NewEndpointNotReadyError(name))
		return
	}
	model, ok, err := p.Store.GetModel(ep.ModelName)
	if err != nil {
		ResponseError(w, apierrors.NewInternalError(err))
		return
	}
	if !ok {
		ResponseError(w, apierrors.NewModelUnknownError(ep.ModelName))
		return
	}
	backend, ok := p.Backends.Resolve(model.PrimaryContainer.Image)
	if !ok {
		ResponseError(w, apierrors.NewInternalError(fmt.Errorf("no serving backend for image %s", model.PrimaryContainer.Image)))
		return
	}

	req, err := http.NewRequestWithContext(r.Context(), http.MethodPost, backend+"/invocations", r.Body)
	if err != nil {
		ResponseError(w, apierrors.NewInternalError(err))
		return
	}
	req.Header.Set("Content-Type", r.Header.Get("Content-Type"))
	req.Header.Set("Accept", r.Header.Get("Accept"))
	req.Header.Set("X-Sagex-Model", model.Name)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		ResponseError(w, apierrors.NewInternalError(err))
		return
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	w.WriteHeader(resp.StatusCode)
	io.Copy(w, resp.Body)
}
