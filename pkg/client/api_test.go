package client

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/louisbrown1/amazon-sagemaker-examples/pkg/errors"
	"github.com/louisbrown1/amazon-sagemaker-examples/pkg/types"
)

func TestAPIClientErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(errors.NewJobUnknownError("missing"))
	}))
	defer server.Close()

	cli := &APIClient{Addr: server.URL}
	_, err := cli.GetTrainingJob(context.Background(), "missing")
	if !errors.IsErrCode(err, errors.ErrCodeJobUnknown) {
		t.Errorf("GetTrainingJob() error = %v, want JOB_UNKNOWN", err)
	}
	info := errors.ErrorInfo{}
	if !stderrors.As(err, &info) || info.HttpStatus != http.StatusNotFound {
		t.Errorf("error status = %v, want 404", info.HttpStatus)
	}
}

func TestAPIClientNonJSONError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gateway exploded", http.StatusBadGateway)
	}))
	defer server.Close()

	cli := &APIClient{Addr: server.URL}
	err := cli.StopTrainingJob(context.Background(), "mnist")
	if err == nil {
		t.Fatalf("StopTrainingJob() should surface the upstream failure")
	}
	info := errors.ErrorInfo{}
	if !stderrors.As(err, &info) || info.HttpStatus != http.StatusBadGateway {
		t.Errorf("error = %v, want the raw 502 body wrapped", err)
	}
}

func TestAPIClientListTrainingJobs(t *testing.T) {
	want := []types.TrainingJob{
		{Name: "job-a", Spec: types.TrainingJobSpec{EntryPoint: "train.py", TrainingImage: "img"}},
		{Name: "job-b", Spec: types.TrainingJobSpec{EntryPoint: "train.py", TrainingImage: "img"}},
	}
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "GET" || r.URL.Path != "/jobs" {
			http.NotFound(w, r)
			return
		}
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(want)
	}))
	defer server.Close()

	cli := &APIClient{Addr: server.URL, Authorization: "Bearer token"}
	jobs, err := cli.ListTrainingJobs(context.Background())
	if err != nil {
		t.Fatalf("ListTrainingJobs() error = %v", err)
	}
	if len(jobs) != 2 || jobs[0].Name != "job-a" || jobs[1].Name != "job-b" {
		t.Errorf("ListTrainingJobs() = %v, want %v", jobs, want)
	}
	if gotAuth != "Bearer token" {
		t.Errorf("authorization header = %q", gotAuth)
	}
}

func TestAPIClientInvokeEndpoint(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/endpoints/mnist/invocations" {
			http.NotFound(w, r)
			return
		}
		in := types.PredictInput{}
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		json.NewEncoder(w).Encode(types.PredictOutput{Predictions: in.Instances})
	}))
	defer server.Close()

	cli := &APIClient{Addr: server.URL}
	in := types.PredictInput{Instances: []json.RawMessage{
		json.RawMessage(`[1,2]`),
		json.RawMessage(`[3,4]`),
	}}
	out, err := cli.InvokeEndpoint(context.Background(), "mnist", in)
	if err != nil {
		t.Fatalf("InvokeEndpoint() error = %v", err)
	}
	if len(out.Predictions) != 2 {
		t.Errorf("InvokeEndpoint() = %v, want two predictions", out.Predictions)
	}
}
