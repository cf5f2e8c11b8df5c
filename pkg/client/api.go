package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"

	"github.com/louisbrown1/amazon-sagemaker-examples/pkg/errors"
	"github.com/louisbrown1/amazon-sagemaker-examples/pkg/types"
)

type APIClient struct {
	Addr          string
	Authorization string
	Client        *http.Client
}

// RequestBody carries a streaming request body whose length is known
// up front, so uploads can set Content-Length without buffering.
type RequestBody struct {
	ContentLength int64
	ContentBody   func() (io.ReadCloser, error)
}

func (t *APIClient) CreateTrainingJob(ctx context.Context, job *types.TrainingJob) error {
	_, err := t.request(ctx, "POST", "/jobs", nil, job, nil)
	return err
}

func (t *APIClient) GetTrainingJob(ctx context.Context, name string) (*types.TrainingJob, error) {
	job := &types.TrainingJob{}
	if _, err := t.request(ctx, "GET", "/jobs/"+name, nil, nil, job); err != nil {
		return nil, err
	}
	return job, nil
}

func (t *APIClient) ListTrainingJobs(ctx context.Context) ([]types.TrainingJob, error) {
	jobs := []types.TrainingJob{}
	if _, err := t.request(ctx, "GET", "/jobs", nil, nil, &jobs); err != nil {
		return nil, err
	}
	return jobs, nil
}

func (t *APIClient) StopTrainingJob(ctx context.Context, name string) error {
	_, err := t.request(ctx, "POST", "/jobs/"+name+"/stop", nil, nil, nil)
	return err
}

func (t *APIClient) CreateModel(ctx context.Context, model *types.Model) error {
	_, err := t.request(ctx, "POST", "/models", nil, model, nil)
	return err
}

func (t *APIClient) GetModel(ctx context.Context, name string) (*types.Model, error) {
	model := &types.Model{}
	if _, err := t.request(ctx, "GET", "/models/"+name, nil, nil, model); err != nil {
		return nil, err
	}
	return model, nil
}

func (t *APIClient) ListModels(ctx context.Context) ([]types.Model, error) {
	models := []types.Model{}
	if _, err := t.request(ctx, "GET", "/models", nil, nil, &models); err != nil {
		return nil, err
	}
	return models, nil
}

func (t *APIClient) DeleteModel(ctx context.Context, name string) error {
	_, err := t.request(ctx, "DELETE", "/models/"+name, nil, nil, nil)
	return err
}

func (t *APIClient) CreateEndpoint(ctx context.Context, ep *types.Endpoint) error {
	_, err := t.request(ctx, "POST", "/endpoints", nil, ep, nil)
	return err
}

func (t *APIClient) GetEndpoint(ctx context.Context, name string) (*types.Endpoint, error) {
	ep := &types.Endpoint{}
	if _, err := t.request(ctx, "GET", "/endpoints/"+name, nil, nil, ep); err != nil {
		return nil, err
	}
	return ep, nil
}

func (t *APIClient) ListEndpoints(ctx context.Context) ([]types.Endpoint, error) {
	eps := []types.Endpoint{}
	if _, err := t.request(ctx, "GET", "/endpoints", nil, nil, &eps); err != nil {
		return nil, err
	}
	return eps, nil
}

func (t *APIClient) DeleteEndpoint(ctx context.Context, name string) error {
	_, err := t.request(ctx, "DELETE", "/endpoints/"+name, nil, nil, nil)
	return err
}

// InvokeEndpoint posts one batch of instances to the endpoint's
// prediction API and returns the per-instance predictions.
func (t *APIClient) InvokeEndpoint(ctx context.Context, name string, in types.PredictInput) (*types.PredictOutput, error) {
	header := map[string]string{"Content-Type": "application/json"}
	out := &types.PredictOutput{}
	if _, err := t.request(ctx, "POST", "/endpoints/"+name+"/invocations", header, in, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (t *APIClient) request(ctx context.Context, method, path string, header map[string]string, body any, into any) (*http.Response, error) {
	addr := t.Addr + path

	var reqbody io.Reader
	var contentLength int64
	var getBody func() (io.ReadCloser, error)
	switch val := body.(type) {
	case nil:
	case RequestBody:
		contentLength = val.ContentLength
		getBody = val.ContentBody
		rc, err := val.ContentBody()
		if err != nil {
			return nil, err
		}
		reqbody = rc
	case io.Reader:
		reqbody = val
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return nil, err
		}
		reqbody = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, addr, reqbody)
	if err != nil {
		return nil, err
	}
	if contentLength > 0 {
		req.ContentLength = contentLength
	}
	if getBody != nil {
		req.GetBody = getBody
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	if t.Authorization != "" {
		req.Header.Set("Authorization", t.Authorization)
	}
	httpclient := t.Client
	if httpclient == nil {
		httpclient = http.DefaultClient
	}
	resp, err := httpclient.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 && req.Method != "HEAD" {
		defer resp.Body.Close()
		var apierr errors.ErrorInfo
		if resp.Header.Get("Content-Type") == "application/json" {
			if err := json.NewDecoder(resp.Body).Decode(&apierr); err != nil {
				return nil, err
			}
		} else {
			bodystr, _ := io.ReadAll(resp.Body)
			apierr.Message = string(bodystr)
		}
		apierr.HttpStatus = resp.StatusCode
		return nil, apierr
	}
	if into != nil {
		defer resp.Body.Close()
		if err := json.NewDecoder(resp.Body).Decode(into); err != nil {
			return nil, err
		}
	}
	return resp, nil
}

func query(kv ...string) string {
	vals := url.Values{}
	for i := 0; i+1 < len(kv); i += 2 {
		if kv[i+1] != "" {
			vals.Set(kv[i], kv[i+1])
		}
	}
	if encoded := vals.Encode(); encoded != "" {
		return "?" + encoded
	}
	return ""
}
