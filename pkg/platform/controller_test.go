package platform

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/louisbrown1/amazon-sagemaker-examples/pkg/client"
	"github.com/louisbrown1/amazon-sagemaker-examples/pkg/types"
)

// scriptJob stages a shell entry point as the job's source archive and
// returns the job record, ready to be put into the store as Pending.
func scriptJob(t *testing.T, p *Platform, name string, script string, maxRuntimeSeconds int64) *types.TrainingJob {
	t.Helper()
	srcdir := t.TempDir()
	if err := os.WriteFile(filepath.Join(srcdir, "train.sh"), []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}
	tgzfile := filepath.Join(t.TempDir(), "sourcedir.tar.gz")
	dgst, err := client.TGZ(context.Background(), srcdir, tgzfile)
	if err != nil {
		t.Fatal(err)
	}
	raw, err := os.ReadFile(tgzfile)
	if err != nil {
		t.Fatal(err)
	}
	putTestBlobWithDigest(t, p.Artifacts, "jobs/"+name, dgst, raw)

	return &types.TrainingJob{
		Name: name,
		Spec: types.TrainingJobSpec{
			EntryPoint:        "train.sh",
			TrainingImage:     "jax-training:latest",
			SourceArchive:     &types.ArtifactRef{Repository: "jobs/" + name, Name: "sourcedir.tar.gz", Digest: dgst},
			Resources:         types.ResourceConfig{InstanceCount: 1},
			MaxRuntimeSeconds: maxRuntimeSeconds,
		},
		Status: types.TrainingJobStatus{
			State:        types.JobStatePending,
			CreationTime: time.Now().UTC(),
		},
	}
}

func waitForJobState(t *testing.T, store *RecordStore, name string, want types.JobState) *types.TrainingJob {
	t.Helper()
	deadline := time.Now().Add(15 * time.Second)
	var last types.JobState
	for time.Now().Before(deadline) {
		job, ok, err := store.GetJob(name)
		if err != nil {
			t.Fatal(err)
		}
		if ok {
			last = job.Status.State
			if last == want {
				return job
			}
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("job %s never reached %s, last state %s", name, want, last)
	return nil
}

func TestControllerStopsRunningJob(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires /bin/sh")
	}
	p := testPlatform(t)
	p.controller.interval = 50 * time.Millisecond

	job := scriptJob(t, p, "stop-1", "sleep 30\n", 0)
	if err := p.Store.PutJob(job); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go p.controller.Run(ctx)

	waitForJobState(t, p.Store, "stop-1", types.JobStateInProgress)

	current, _, err := p.Store.GetJob("stop-1")
	if err != nil {
		t.Fatal(err)
	}
	current.Status.State = types.JobStateStopping
	if err := p.Store.PutJob(current); err != nil {
		t.Fatal(err)
	}
	p.controller.Notify()

	stopped := waitForJobState(t, p.Store, "stop-1", types.JobStateStopped)
	if stopped.Status.TrainingEnd == nil {
		t.Errorf("stopped job has no end time")
	}
	if stopped.Status.ModelArtifacts != nil {
		t.Errorf("stopped job should not record artifacts, got %v", stopped.Status.ModelArtifacts)
	}
}

func TestControllerMaxRuntimeAbort(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires /bin/sh")
	}
	p := testPlatform(t)
	p.controller.interval = 50 * time.Millisecond

	job := scriptJob(t, p, "slow-1", "sleep 30\n", 1)
	if err := p.Store.PutJob(job); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go p.controller.Run(ctx)

	failed := waitForJobState(t, p.Store, "slow-1", types.JobStateFailed)
	if !strings.Contains(failed.Status.FailureReason, "training aborted") {
		t.Errorf("failure reason = %q, want a runtime abort", failed.Status.FailureReason)
	}
}

func TestControllerRecoversOrphanedJobs(t *testing.T) {
	p := testPlatform(t)

	// records left behind by a daemon that died mid-run and mid-stop
	orphaned := &types.TrainingJob{
		Name:   "orphan-running",
		Spec:   types.TrainingJobSpec{EntryPoint: "train.sh", TrainingImage: "img", Resources: types.ResourceConfig{InstanceCount: 1}},
		Status: types.TrainingJobStatus{State: types.JobStateInProgress, CreationTime: time.Now().UTC()},
	}
	stopping := &types.TrainingJob{
		Name:   "orphan-stopping",
		Spec:   types.TrainingJobSpec{EntryPoint: "train.sh", TrainingImage: "img", Resources: types.ResourceConfig{InstanceCount: 1}},
		Status: types.TrainingJobStatus{State: types.JobStateStopping, CreationTime: time.Now().UTC()},
	}
	for _, job := range []*types.TrainingJob{orphaned, stopping} {
		if err := p.Store.PutJob(job); err != nil {
			t.Fatal(err)
		}
	}

	if err := p.controller.reconcileJobs(context.Background()); err != nil {
		t.Fatalf("reconcileJobs() error = %v", err)
	}

	failed, _, err := p.Store.GetJob("orphan-running")
	if err != nil {
		t.Fatal(err)
	}
	if failed.Status.State != types.JobStateFailed || !strings.Contains(failed.Status.FailureReason, "daemon restart") {
		t.Errorf("orphaned running job = %s %q, want Failed by restart", failed.Status.State, failed.Status.FailureReason)
	}

	stopped, _, err := p.Store.GetJob("orphan-stopping")
	if err != nil {
		t.Fatal(err)
	}
	if stopped.Status.State != types.JobStateStopped || stopped.Status.TrainingEnd == nil {
		t.Errorf("orphaned stopping job = %s, want Stopped with an end time", stopped.Status.State)
	}
}

func TestFinishJobKeepsStop(t *testing.T) {
	p := testPlatform(t)

	// a stop handler won the race and wrote Stopped while the runner
	// still ran; its result must not flip the job to Completed
	job := &types.TrainingJob{
		Name:   "raced-1",
		Spec:   types.TrainingJobSpec{EntryPoint: "train.sh", TrainingImage: "img", Resources: types.ResourceConfig{InstanceCount: 1}},
		Status: types.TrainingJobStatus{State: types.JobStateStopped, CreationTime: time.Now().UTC()},
	}
	if err := p.Store.PutJob(job); err != nil {
		t.Fatal(err)
	}

	result := RunResult{ModelArtifacts: &types.ArtifactRef{Repository: "jobs/raced-1", Digest: "sha256:abc"}}
	p.controller.finishJob(context.Background(), job, result)

	current, _, err := p.Store.GetJob("raced-1")
	if err != nil {
		t.Fatal(err)
	}
	if current.Status.State != types.JobStateStopped {
		t.Errorf("job state = %s, want Stopped to survive the run result", current.Status.State)
	}
	if current.Status.ModelArtifacts != nil {
		t.Errorf("stopped job should not record artifacts")
	}
}

func TestControllerEndpointLifecycle(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/ping" {
			w.WriteHeader(http.StatusOK)
			return
		}
		http.NotFound(w, r)
	}))
	defer backend.Close()

	p := testPlatform(t)
	p.Backends = StaticBackends{"jax-serving": backend.URL}

	model := &types.Model{
		Name: "mnist",
		PrimaryContainer: types.Container{
			Image:     "jax-serving:latest",
			ModelData: &types.ArtifactRef{Repository: "jobs/mnist", Digest: "sha256:abc"},
		},
	}
	if err := p.Store.PutModel(model); err != nil {
		t.Fatal(err)
	}

	ready := &types.Endpoint{
		Name:      "mnist",
		ModelName: "mnist",
		Resources: types.ResourceConfig{InstanceCount: 1},
		Status:    types.EndpointStatus{State: types.EndpointStateCreating, CreationTime: time.Now().UTC()},
	}
	noBackend := &types.Endpoint{
		Name:      "unroutable",
		ModelName: "unroutable-model",
		Resources: types.ResourceConfig{InstanceCount: 1},
		Status:    types.EndpointStatus{State: types.EndpointStateCreating, CreationTime: time.Now().UTC()},
	}
	deleting := &types.Endpoint{
		Name:      "retired",
		ModelName: "mnist",
		Resources: types.ResourceConfig{InstanceCount: 1},
		Status:    types.EndpointStatus{State: types.EndpointStateDeleting, CreationTime: time.Now().UTC()},
	}
	unrouted := &types.Model{
		Name: "unroutable-model",
		PrimaryContainer: types.Container{
			Image:     "other-serving:latest",
			ModelData: &types.ArtifactRef{Repository: "jobs/other", Digest: "sha256:def"},
		},
	}
	if err := p.Store.PutModel(unrouted); err != nil {
		t.Fatal(err)
	}
	for _, ep := range []*types.Endpoint{ready, noBackend, deleting} {
		if err := p.Store.PutEndpoint(ep); err != nil {
			t.Fatal(err)
		}
	}

	if err := p.controller.reconcileEndpoints(context.Background()); err != nil {
		t.Fatalf("reconcileEndpoints() error = %v", err)
	}

	got, _, err := p.Store.GetEndpoint("mnist")
	if err != nil {
		t.Fatal(err)
	}
	if got.Status.State != types.EndpointStateInService {
		t.Errorf("endpoint mnist = %s, want InService after ping", got.Status.State)
	}

	got, _, err = p.Store.GetEndpoint("unroutable")
	if err != nil {
		t.Fatal(err)
	}
	if got.Status.State != types.EndpointStateFailed {
		t.Errorf("endpoint unroutable = %s, want Failed without a backend", got.Status.State)
	}

	if _, ok, _ := p.Store.GetEndpoint("retired"); ok {
		t.Errorf("deleting endpoint should be removed from the store")
	}
}

func TestControllerEndpointReadyTimeout(t *testing.T) {
	// a backend that is configured but not answering
	dead := httptest.NewServer(http.NotFoundHandler())
	deadURL := dead.URL
	dead.Close()

	p := testPlatform(t)
	p.Backends = StaticBackends{"jax-serving": deadURL}

	model := &types.Model{
		Name: "mnist",
		PrimaryContainer: types.Container{
			Image:     "jax-serving:latest",
			ModelData: &types.ArtifactRef{Repository: "jobs/mnist", Digest: "sha256:abc"},
		},
	}
	if err := p.Store.PutModel(model); err != nil {
		t.Fatal(err)
	}

	fresh := &types.Endpoint{
		Name:      "fresh",
		ModelName: "mnist",
		Resources: types.ResourceConfig{InstanceCount: 1},
		Status:    types.EndpointStatus{State: types.EndpointStateCreating, CreationTime: time.Now().UTC()},
	}
	expired := &types.Endpoint{
		Name:      "expired",
		ModelName: "mnist",
		Resources: types.ResourceConfig{InstanceCount: 1},
		Status: types.EndpointStatus{
			State:        types.EndpointStateCreating,
			CreationTime: time.Now().UTC().Add(-endpointReadyTimeout - time.Minute),
		},
	}
	for _, ep := range []*types.Endpoint{fresh, expired} {
		if err := p.Store.PutEndpoint(ep); err != nil {
			t.Fatal(err)
		}
	}

	if err := p.controller.reconcileEndpoints(context.Background()); err != nil {
		t.Fatalf("reconcileEndpoints() error = %v", err)
	}

	got, _, err := p.Store.GetEndpoint("fresh")
	if err != nil {
		t.Fatal(err)
	}
	if got.Status.State != types.EndpointStateCreating {
		t.Errorf("fresh endpoint = %s, want to stay Creating and retry", got.Status.State)
	}
	got, _, err = p.Store.GetEndpoint("expired")
	if err != nil {
		t.Fatal(err)
	}
	if got.Status.State != types.EndpointStateFailed || !strings.Contains(got.Status.FailureReason, "ready") {
		t.Errorf("expired endpoint = %s %q, want Failed after the ready timeout", got.Status.State, got.Status.FailureReason)
	}
}
