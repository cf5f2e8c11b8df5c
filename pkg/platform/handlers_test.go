package platform

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	apierrors "github.com/louisbrown1/amazon-sagemaker-examples/pkg/errors"
	"github.com/louisbrown1/amazon-sagemaker-examples/pkg/types"
)

func testPlatform(t *testing.T) *Platform {
	t.Helper()
	p := &Platform{
		Store:     testStore(t),
		Artifacts: testArtifactStore(t),
		Backends:  StaticBackends{},
	}
	opts := DefaultOptions()
	opts.DataDir = t.TempDir()
	p.controller = NewController(p, opts)
	return p
}

func do(t *testing.T, handler http.Handler, method, target string, body io.Reader) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func decodeErrorInfo(t *testing.T, w *httptest.ResponseRecorder) apierrors.ErrorInfo {
	t.Helper()
	info := apierrors.ErrorInfo{}
	if err := json.NewDecoder(w.Body).Decode(&info); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	return info
}

func TestJobHandlers(t *testing.T) {
	p := testPlatform(t)
	handler := p.route()

	if w := do(t, handler, "GET", "/healthz", nil); w.Code != http.StatusOK {
		t.Fatalf("GET /healthz = %d", w.Code)
	}

	if w := do(t, handler, "POST", "/jobs", strings.NewReader("not json")); w.Code != http.StatusBadRequest {
		t.Errorf("POST /jobs with bad body = %d, want 400", w.Code)
	}

	job := types.TrainingJob{
		Name: "mnist-1",
		Spec: types.TrainingJobSpec{
			EntryPoint:    "train.py",
			TrainingImage: "jax-training:latest",
			Resources:     types.ResourceConfig{InstanceCount: 1},
		},
	}
	raw, _ := json.Marshal(job)

	w := do(t, handler, "POST", "/jobs", bytes.NewReader(raw))
	if w.Code != http.StatusCreated {
		t.Fatalf("POST /jobs = %d, body %s", w.Code, w.Body)
	}
	created := types.TrainingJob{}
	if err := json.NewDecoder(w.Body).Decode(&created); err != nil {
		t.Fatal(err)
	}
	if created.Status.State != types.JobStatePending || created.Status.CreationTime.IsZero() {
		t.Errorf("created job status = %v, want pending with a creation time", created.Status)
	}

	w = do(t, handler, "POST", "/jobs", bytes.NewReader(raw))
	if w.Code != http.StatusConflict {
		t.Errorf("POST /jobs again = %d, want 409", w.Code)
	}
	if info := decodeErrorInfo(t, w); info.Code != apierrors.ErrCodeJobConflict {
		t.Errorf("conflict code = %v", info.Code)
	}

	if w := do(t, handler, "GET", "/jobs/mnist-1", nil); w.Code != http.StatusOK {
		t.Errorf("GET /jobs/mnist-1 = %d", w.Code)
	}
	w = do(t, handler, "GET", "/jobs/missing", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("GET /jobs/missing = %d, want 404", w.Code)
	}
	if info := decodeErrorInfo(t, w); info.Code != apierrors.ErrCodeJobUnknown {
		t.Errorf("unknown code = %v", info.Code)
	}

	w = do(t, handler, "GET", "/jobs", nil)
	jobs := []*types.TrainingJob{}
	if err := json.NewDecoder(w.Body).Decode(&jobs); err != nil {
		t.Fatal(err)
	}
	if len(jobs) != 1 {
		t.Errorf("GET /jobs = %d jobs, want 1", len(jobs))
	}

	// stopping a pending job is immediate
	w = do(t, handler, "POST", "/jobs/mnist-1/stop", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("POST /jobs/mnist-1/stop = %d", w.Code)
	}
	stopped := types.TrainingJob{}
	if err := json.NewDecoder(w.Body).Decode(&stopped); err != nil {
		t.Fatal(err)
	}
	if stopped.Status.State != types.JobStateStopped || stopped.Status.TrainingEnd == nil {
		t.Errorf("stopped job status = %v, want stopped with an end time", stopped.Status)
	}

	// stopping again is a no-op
	if w := do(t, handler, "POST", "/jobs/mnist-1/stop", nil); w.Code != http.StatusOK {
		t.Errorf("stop on a stopped job = %d, want 200", w.Code)
	}
}

func TestModelHandlers(t *testing.T) {
	p := testPlatform(t)
	handler := p.route()

	d := putTestBlob(t, p.Artifacts, "jobs/mnist-1", []byte("weights"))
	model := types.Model{
		Name: "mnist",
		PrimaryContainer: types.Container{
			Image:     "jax-serving:latest",
			ModelData: &types.ArtifactRef{Repository: "jobs/mnist-1", Digest: d},
		},
	}
	raw, _ := json.Marshal(model)
	if w := do(t, handler, "POST", "/models", bytes.NewReader(raw)); w.Code != http.StatusCreated {
		t.Fatalf("POST /models = %d, body %s", w.Code, w.Body)
	}

	// model data must exist in the artifact store
	missing := model
	missing.Name = "mnist-missing"
	missing.PrimaryContainer.ModelData = &types.ArtifactRef{
		Repository: "jobs/mnist-1",
		Digest:     "sha256:e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
	}
	raw, _ = json.Marshal(missing)
	w := do(t, handler, "POST", "/models", bytes.NewReader(raw))
	if w.Code != http.StatusNotFound {
		t.Errorf("POST /models with missing data = %d, want 404", w.Code)
	}

	if w := do(t, handler, "GET", "/models/mnist", nil); w.Code != http.StatusOK {
		t.Errorf("GET /models/mnist = %d", w.Code)
	}
	if w := do(t, handler, "DELETE", "/models/mnist", nil); w.Code != http.StatusAccepted {
		t.Errorf("DELETE /models/mnist = %d, want 202", w.Code)
	}
	if w := do(t, handler, "GET", "/models/mnist", nil); w.Code != http.StatusNotFound {
		t.Errorf("GET /models/mnist after delete = %d, want 404", w.Code)
	}
}

func TestEndpointHandlers(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/invocations" {
			http.NotFound(w, r)
			return
		}
		in := types.PredictInput{}
		json.NewDecoder(r.Body).Decode(&in)
		out := types.PredictOutput{Predictions: in.Instances}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(out)
	}))
	defer backend.Close()

	p := testPlatform(t)
	p.Backends = StaticBackends{"jax-serving": backend.URL}
	handler := p.route()

	d := putTestBlob(t, p.Artifacts, "jobs/mnist-1", []byte("weights"))
	model := &types.Model{
		Name: "mnist",
		PrimaryContainer: types.Container{
			Image:     "jax-serving:latest",
			ModelData: &types.ArtifactRef{Repository: "jobs/mnist-1", Digest: d},
		},
	}
	if err := p.Store.PutModel(model); err != nil {
		t.Fatal(err)
	}

	raw, _ := json.Marshal(types.Endpoint{Name: "mnist", ModelName: "mnist"})
	w := do(t, handler, "POST", "/endpoints", bytes.NewReader(raw))
	if w.Code != http.StatusCreated {
		t.Fatalf("POST /endpoints = %d, body %s", w.Code, w.Body)
	}

	// not invokable until the controller brings it in service
	w = do(t, handler, "POST", "/endpoints/mnist/invocations", strings.NewReader(`{"instances":[[1,2]]}`))
	if w.Code != http.StatusConflict {
		t.Errorf("invoke on creating endpoint = %d, want 409", w.Code)
	}
	if info := decodeErrorInfo(t, w); info.Code != apierrors.ErrCodeEndpointNotReady {
		t.Errorf("not ready code = %v", info.Code)
	}

	ep, _, err := p.Store.GetEndpoint("mnist")
	if err != nil {
		t.Fatal(err)
	}
	ep.Status.State = types.EndpointStateInService
	if err := p.Store.PutEndpoint(ep); err != nil {
		t.Fatal(err)
	}

	w = do(t, handler, "POST", "/endpoints/mnist/invocations", strings.NewReader(`{"instances":[[1,2],[3,4]]}`))
	if w.Code != http.StatusOK {
		t.Fatalf("invoke = %d, body %s", w.Code, w.Body)
	}
	out := types.PredictOutput{}
	if err := json.NewDecoder(w.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if len(out.Predictions) != 2 {
		t.Errorf("predictions = %v, want the echoed instances", out.Predictions)
	}

	if w := do(t, handler, "DELETE", "/endpoints/mnist", nil); w.Code != http.StatusAccepted {
		t.Errorf("DELETE /endpoints/mnist = %d, want 202", w.Code)
	}
}
