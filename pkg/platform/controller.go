package platform

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-logr/logr"

	"github.com/louisbrown1/amazon-sagemaker-examples/pkg/types"
)

// endpointReadyTimeout bounds how long an endpoint may stay Creating
// while its serving backend is unreachable.
const endpointReadyTimeout = 5 * time.Minute

// Controller drives the declared state in the record store to
// completion: it picks up pending training jobs, runs them through the
// Runner, and walks endpoints through their lifecycle.
type Controller struct {
	platform *Platform
	runner   Runner
	interval time.Duration
	maxJobs  int
	notify   chan struct{}

	mu      sync.Mutex
	running map[string]context.CancelFunc
}

func NewController(p *Platform, opts *Options) *Controller {
	return &Controller{
		platform: p,
		runner:   NewLocalRunner(p.Artifacts, opts.DataDir+"/jobs"),
		interval: opts.ReconcileInterval,
		maxJobs:  opts.MaxConcurrentJobs,
		notify:   make(chan struct{}, 1),
		running:  map[string]context.CancelFunc{},
	}
}

// Notify wakes the reconcile loop without waiting for the next tick.
func (c *Controller) Notify() {
	select {
	case c.notify <- struct{}{}:
	default:
	}
}

func (c *Controller) Run(ctx context.Context) {
	log := logr.FromContextOrDiscard(ctx).WithName("controller")
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	for {
		if err := c.reconcile(ctx); err != nil {
			log.Error(err, "reconcile")
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		case <-c.notify:
		}
	}
}

func (c *Controller) reconcile(ctx context.Context) error {
	if err := c.reconcileJobs(ctx); err != nil {
		return err
	}
	return c.reconcileEndpoints(ctx)
}

func (c *Controller) reconcileJobs(ctx context.Context) error {
	jobs, err := c.platform.Store.ListJobs()
	if err != nil {
		return err
	}
	// oldest first so pickup order matches submission order
	for i, j := 0, len(jobs)-1; i < j; i, j = i+1, j-1 {
		jobs[i], jobs[j] = jobs[j], jobs[i]
	}
	for i := range jobs {
		job := &jobs[i]
		switch job.Status.State {
		case types.JobStateStopping, types.JobStateStopped:
			// a job can be Stopped while its runner is still up when the
			// stop handler raced startJob; cancel it either way
			c.mu.Lock()
			cancel, ok := c.running[job.Name]
			c.mu.Unlock()
			if ok {
				cancel()
				continue
			}
			if job.Status.State != types.JobStateStopping {
				continue
			}
			// nothing is running it, the daemon restarted mid-stop
			now := time.Now().UTC()
			job.Status.State = types.JobStateStopped
			job.Status.TrainingEnd = &now
			if err := c.platform.Store.PutJob(job); err != nil {
				return err
			}
		case types.JobStateInProgress:
			c.mu.Lock()
			_, ok := c.running[job.Name]
			c.mu.Unlock()
			if !ok {
				job.Status.State = types.JobStateFailed
				job.Status.FailureReason = "training interrupted by daemon restart"
				if err := c.platform.Store.PutJob(job); err != nil {
					return err
				}
			}
		case types.JobStatePending:
			c.mu.Lock()
			slots := c.maxJobs - len(c.running)
			c.mu.Unlock()
			if slots <= 0 {
				continue
			}
			if err := c.startJob(ctx, job); err != nil {
				return err
			}
		}
	}
	return nil
}

func (c *Controller) startJob(ctx context.Context, job *types.TrainingJob) error {
	now := time.Now().UTC()
	job.Status.State = types.JobStateInProgress
	job.Status.TrainingStart = &now
	if err := c.platform.Store.PutJob(job); err != nil {
		return err
	}

	jobctx, cancel := context.WithCancel(ctx)
	c.mu.Lock()
	c.running[job.Name] = cancel
	c.mu.Unlock()

	go func() {
		defer func() {
			cancel()
			c.mu.Lock()
			delete(c.running, job.Name)
			c.mu.Unlock()
			c.Notify()
		}()
		c.finishJob(ctx, job, c.runner.Run(jobctx, job))
	}()
	return nil
}

// finishJob records the outcome. The store is re-read first so a stop
// requested while training ran is not overwritten.
func (c *Controller) finishJob(ctx context.Context, job *types.TrainingJob, result RunResult) {
	log := logr.FromContextOrDiscard(ctx).WithName("controller")
	current, ok, err := c.platform.Store.GetJob(job.Name)
	if err != nil || !ok {
		log.Error(err, "load job after run", "job", job.Name)
		return
	}
	now := time.Now().UTC()
	current.Status.TrainingEnd = &now
	current.Status.ExitCode = result.ExitCode
	switch {
	case current.Status.State == types.JobStateStopping || current.Status.State == types.JobStateStopped:
		current.Status.State = types.JobStateStopped
	case result.Err != nil:
		current.Status.State = types.JobStateFailed
		current.Status.FailureReason = result.Err.Error()
	default:
		current.Status.State = types.JobStateCompleted
		current.Status.ModelArtifacts = result.ModelArtifacts
	}
	if err := c.platform.Store.PutJob(current); err != nil {
		log.Error(err, "save job after run", "job", job.Name)
	}
	log.Info("training job finished", "job", job.Name, "state", current.Status.State)
}

func (c *Controller) reconcileEndpoints(ctx context.Context) error {
	eps, err := c.platform.Store.ListEndpoints()
	if err != nil {
		return err
	}
	for i := range eps {
		ep := &eps[i]
		switch ep.Status.State {
		case types.EndpointStateCreating:
			if err := c.bringUpEndpoint(ctx, ep); err != nil {
				return err
			}
		case types.EndpointStateDeleting:
			if err := c.platform.Store.DeleteEndpoint(ep.Name); err != nil {
				return err
			}
		}
	}
	return nil
}

func (c *Controller) bringUpEndpoint(ctx context.Context, ep *types.Endpoint) error {
	model, ok, err := c.platform.Store.GetModel(ep.ModelName)
	if err != nil {
		return err
	}
	if !ok {
		ep.Status.State = types.EndpointStateFailed
		ep.Status.FailureReason = "model " + ep.ModelName + " not found"
		return c.platform.Store.PutEndpoint(ep)
	}
	backend, ok := c.platform.Backends.Resolve(model.PrimaryContainer.Image)
	if !ok {
		ep.Status.State = types.EndpointStateFailed
		ep.Status.FailureReason = "no serving backend for image " + model.PrimaryContainer.Image
		return c.platform.Store.PutEndpoint(ep)
	}
	if pingBackend(ctx, backend) {
		ep.Status.State = types.EndpointStateInService
		return c.platform.Store.PutEndpoint(ep)
	}
	if time.Since(ep.Status.CreationTime) > endpointReadyTimeout {
		ep.Status.State = types.EndpointStateFailed
		ep.Status.FailureReason = "serving backend did not become ready"
		return c.platform.Store.PutEndpoint(ep)
	}
	// backend not ready yet, retry next reconcile
	return nil
}

func pingBackend(ctx context.Context, backend string) bool {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, backend+"/ping", nil)
	if err != nil {
		return false
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode < 500
}
