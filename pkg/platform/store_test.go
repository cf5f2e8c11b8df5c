package platform

import (
	"reflect"
	"testing"
	"time"

	"github.com/louisbrown1/amazon-sagemaker-examples/pkg/types"
)

func testStore(t *testing.T) *RecordStore {
	t.Helper()
	store, err := OpenRecordStore(t.TempDir() + "/state")
	if err != nil {
		t.Fatalf("OpenRecordStore() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestRecordStoreJobs(t *testing.T) {
	store := testStore(t)

	if _, ok, err := store.GetJob("missing"); err != nil || ok {
		t.Fatalf("GetJob() on empty store = %v, %v", ok, err)
	}

	older := &types.TrainingJob{
		Name: "job-a",
		Spec: types.TrainingJobSpec{EntryPoint: "train.py", TrainingImage: "img"},
		Status: types.TrainingJobStatus{
			State:        types.JobStatePending,
			CreationTime: time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC),
		},
	}
	newer := &types.TrainingJob{
		Name: "job-b",
		Spec: types.TrainingJobSpec{EntryPoint: "train.py", TrainingImage: "img"},
		Status: types.TrainingJobStatus{
			State:        types.JobStatePending,
			CreationTime: time.Date(2026, 8, 25, 11, 0, 0, 0, time.UTC),
		},
	}
	for _, job := range []*types.TrainingJob{older, newer} {
		if err := store.PutJob(job); err != nil {
			t.Fatalf("PutJob() error = %v", err)
		}
	}

	got, ok, err := store.GetJob("job-a")
	if err != nil || !ok {
		t.Fatalf("GetJob() = %v, %v", ok, err)
	}
	if got.Name != older.Name || got.Spec.EntryPoint != older.Spec.EntryPoint || got.Status.State != older.Status.State {
		t.Errorf("GetJob() = %v, want %v", got, older)
	}
	if !got.Status.CreationTime.Equal(older.Status.CreationTime) {
		t.Errorf("GetJob() creation time = %v, want %v", got.Status.CreationTime, older.Status.CreationTime)
	}

	jobs, err := store.ListJobs()
	if err != nil {
		t.Fatalf("ListJobs() error = %v", err)
	}
	if len(jobs) != 2 || jobs[0].Name != "job-b" || jobs[1].Name != "job-a" {
		t.Errorf("ListJobs() should order newest first, got %v", jobs)
	}

	if err := store.DeleteJob("job-a"); err != nil {
		t.Fatalf("DeleteJob() error = %v", err)
	}
	if _, ok, _ := store.GetJob("job-a"); ok {
		t.Errorf("GetJob() after delete should miss")
	}
}

func TestRecordStoreModelsAndEndpoints(t *testing.T) {
	store := testStore(t)

	model := &types.Model{
		Name: "mnist",
		PrimaryContainer: types.Container{
			Image:     "jax-serving:latest",
			ModelData: &types.ArtifactRef{Repository: "jobs/mnist", Digest: "sha256:abc"},
		},
	}
	if err := store.PutModel(model); err != nil {
		t.Fatalf("PutModel() error = %v", err)
	}
	got, ok, err := store.GetModel("mnist")
	if err != nil || !ok {
		t.Fatalf("GetModel() = %v, %v", ok, err)
	}
	if !reflect.DeepEqual(got, model) {
		t.Errorf("GetModel() = %v, want %v", got, model)
	}

	ep := &types.Endpoint{
		Name:      "mnist",
		ModelName: "mnist",
		Resources: types.ResourceConfig{InstanceCount: 1},
		Status:    types.EndpointStatus{State: types.EndpointStateCreating},
	}
	if err := store.PutEndpoint(ep); err != nil {
		t.Fatalf("PutEndpoint() error = %v", err)
	}
	eps, err := store.ListEndpoints()
	if err != nil {
		t.Fatalf("ListEndpoints() error = %v", err)
	}
	if len(eps) != 1 || eps[0].Name != ep.Name || eps[0].ModelName != ep.ModelName || eps[0].Status.State != ep.Status.State {
		t.Errorf("ListEndpoints() = %v, want %v", eps, ep)
	}

	// keys must not leak across kinds
	models, err := store.ListModels()
	if err != nil {
		t.Fatalf("ListModels() error = %v", err)
	}
	if len(models) != 1 {
		t.Errorf("ListModels() = %v, want only the model", models)
	}
}
