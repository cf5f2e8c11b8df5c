package estimator

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-logr/logr"
	"k8s.io/apimachinery/pkg/util/wait"

	"github.com/louisbrown1/amazon-sagemaker-examples/pkg/client"
	"github.com/louisbrown1/amazon-sagemaker-examples/pkg/types"
)

// Deploy registers the model built by the estimator's factory and
// stands up an endpoint for it, blocking until it is in service.
func (e *Estimator) Deploy(ctx context.Context, instanceType string, instanceCount int, opts ModelOptions) (*Predictor, error) {
	model, err := e.CreateModel(opts)
	if err != nil {
		return nil, err
	}
	if err := e.Session.Remote.CreateModel(ctx, model); err != nil {
		return nil, err
	}

	endpoint := &types.Endpoint{
		Name:      model.Name,
		ModelName: model.Name,
		Resources: types.ResourceConfig{InstanceType: instanceType, InstanceCount: max(instanceCount, 1)},
	}
	if err := e.Session.Remote.CreateEndpoint(ctx, endpoint); err != nil {
		return nil, err
	}
	logr.FromContextOrDiscard(ctx).Info("endpoint requested", "endpoint", endpoint.Name)

	interval := e.PollInterval
	if interval == 0 {
		interval = DefaultPollInterval
	}
	var current *types.Endpoint
	err = wait.PollImmediateUntilWithContext(ctx, interval, func(ctx context.Context) (bool, error) {
		got, err := e.Session.Remote.GetEndpoint(ctx, endpoint.Name)
		if err != nil {
			return false, err
		}
		current = got
		return got.Status.State.Terminal(), nil
	})
	if err != nil {
		return nil, err
	}
	if current.Status.State != types.EndpointStateInService {
		return nil, fmt.Errorf("endpoint %s is %s: %s", endpoint.Name, current.Status.State, current.Status.FailureReason)
	}
	return &Predictor{Endpoint: endpoint.Name, ModelName: model.Name, Session: e.Session}, nil
}

// Predictor issues synchronous predictions against one endpoint.
type Predictor struct {
	Endpoint  string
	ModelName string
	Session   *client.Client
}

// Predict sends a batch of instances and returns the raw per-instance
// predictions for the caller to decode.
func (p *Predictor) Predict(ctx context.Context, instances []json.RawMessage) ([]json.RawMessage, error) {
	out, err := p.Session.Remote.InvokeEndpoint(ctx, p.Endpoint, types.PredictInput{Instances: instances})
	if err != nil {
		return nil, err
	}
	return out.Predictions, nil
}

// PredictValues marshals each instance before sending.
func (p *Predictor) PredictValues(ctx context.Context, instances ...any) ([]json.RawMessage, error) {
	raw := make([]json.RawMessage, 0, len(instances))
	for _, inst := range instances {
		b, err := json.Marshal(inst)
		if err != nil {
			return nil, err
		}
		raw = append(raw, b)
	}
	return p.Predict(ctx, raw)
}

// Delete tears the endpoint down. The registered model stays.
func (p *Predictor) Delete(ctx context.Context) error {
	return p.Session.Remote.DeleteEndpoint(ctx, p.Endpoint)
}
