package platform

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	apierrors "github.com/louisbrown1/amazon-sagemaker-examples/pkg/errors"
	"github.com/louisbrown1/amazon-sagemaker-examples/pkg/types"
)

func (p *Platform) CreateJob(w http.ResponseWriter, r *http.Request) {
	job := types.TrainingJob{}
	if err := json.NewDecoder(r.Body).Decode(&job); err != nil {
		ResponseError(w, apierrors.NewJobInvalidError(err))
		return
	}
	if job.Name == "" {
		ResponseError(w, apierrors.NewNameInvalidError(job.Name))
		return
	}
	if err := job.Spec.Validate(); err != nil {
		ResponseError(w, apierrors.NewJobInvalidError(err))
		return
	}
	_, exists, err := p.Store.GetJob(job.Name)
	if err != nil {
		ResponseError(w, apierrors.NewInternalError(err))
		return
	}
	if exists {
		ResponseError(w, apierrors.NewJobConflictError(job.Name))
		return
	}
	job.Status = types.TrainingJobStatus{
		State:        types.JobStatePending,
		CreationTime: time.Now().UTC(),
	}
	if err := p.Store.PutJob(&job); err != nil {
		ResponseError(w, apierrors.NewInternalError(err))
		return
	}
	p.controller.Notify()
	ResponseCreated(w, job)
}

func (p *Platform) ListJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := p.Store.ListJobs()
	if err != nil {
		ResponseError(w, apierrors.NewInternalError(err))
		return
	}
	ResponseOK(w, jobs)
}

func (p *Platform) GetJob(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	job, ok, err := p.Store.GetJob(name)
	if err != nil {
		ResponseError(w, apierrors.NewInternalError(err))
		return
	}
	if !ok {
		ResponseError(w, apierrors.NewJobUnknownError(name))
		return
	}
	ResponseOK(w, job)
}

// StopJob requests a graceful stop. Pending jobs stop immediately,
// running jobs move to Stopping and the controller signals the runner.
func (p *Platform) StopJob(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	job, ok, err := p.Store.GetJob(name)
	if err != nil {
		ResponseError(w, apierrors.NewInternalError(err))
		return
	}
	if !ok {
		ResponseError(w, apierrors.NewJobUnknownError(name))
		return
	}
	switch job.Status.State {
	case types.JobStatePending:
		now := time.Now().UTC()
		job.Status.State = types.JobStateStopped
		job.Status.TrainingEnd = &now
	case types.JobStateInProgress:
		job.Status.State = types.JobStateStopping
	default:
		// already terminal or stopping, nothing to do
		ResponseOK(w, job)
		return
	}
	if err := p.Store.PutJob(job); err != nil {
		ResponseError(w, apierrors.NewInternalError(err))
		return
	}
	p.controller.Notify()
	ResponseOK(w, job)
}
