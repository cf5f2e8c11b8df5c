package estimator

import (
	"fmt"

	"github.com/louisbrown1/amazon-sagemaker-examples/pkg/types"
)

// ContainerLogLevelEnv is the environment variable serving containers
// read their log verbosity from.
const ContainerLogLevelEnv = "CONTAINER_LOG_LEVEL"

// ModelOptions are the caller-adjustable fields of CreateModel. Unset
// fields inherit from the estimator or get defaults.
type ModelOptions struct {
	Name string
	// EnableNetworkIsolation is tri-state: nil means "not specified",
	// which defaults to off.
	EnableNetworkIsolation *bool
	Environment            map[string]string
	Role                   string
	VPCConfig              *types.VPCConfig
}

// ModelFactory turns a finished training job into a deployable model
// descriptor.
type ModelFactory interface {
	CreateModel(e *Estimator, job *types.TrainingJob, opts ModelOptions) (*types.Model, error)
}

// CreateModel builds the model descriptor for the last training job
// via the configured factory.
func (e *Estimator) CreateModel(opts ModelOptions) (*types.Model, error) {
	job := e.latestJob
	if job == nil {
		return nil, fmt.Errorf("no training job: call Fit or Attach first")
	}
	if job.Status.ModelArtifacts.Empty() {
		return nil, fmt.Errorf("training job %s produced no model artifacts", job.Name)
	}
	factory := e.ModelFactory
	if factory == nil {
		factory = TrainingImageModelFactory{}
	}
	return factory.CreateModel(e, job, opts)
}

// TrainingImageModelFactory serves the model with the same image that
// trained it.
type TrainingImageModelFactory struct{}

func (TrainingImageModelFactory) CreateModel(e *Estimator, job *types.TrainingJob, opts ModelOptions) (*types.Model, error) {
	return buildModel(job.Spec.TrainingImage, e, job, opts)
}

// ServingImageModelFactory points the model at a pre-built serving
// image instead of the training image. Everything else the estimator
// holds -- role, container log level, VPC configuration -- is carried
// over unchanged; the network-isolation flag and the model name get
// defaults only when the caller left them unset.
type ServingImageModelFactory struct {
	Image string
}

func (f ServingImageModelFactory) CreateModel(e *Estimator, job *types.TrainingJob, opts ModelOptions) (*types.Model, error) {
	if f.Image == "" {
		return nil, fmt.Errorf("serving image is required")
	}
	return buildModel(f.Image, e, job, opts)
}

func buildModel(image string, e *Estimator, job *types.TrainingJob, opts ModelOptions) (*types.Model, error) {
	name := opts.Name
	if name == "" {
		name = job.Name
	}
	isolation := false
	if opts.EnableNetworkIsolation != nil {
		isolation = *opts.EnableNetworkIsolation
	}
	role := opts.Role
	if role == "" {
		role = e.Role
	}
	vpc := opts.VPCConfig
	if vpc == nil {
		vpc = e.VPCConfig
	}

	env := map[string]string{}
	if e.ContainerLogLevel != "" {
		env[ContainerLogLevelEnv] = e.ContainerLogLevel
	}
	for k, v := range opts.Environment {
		env[k] = v
	}

	model := &types.Model{
		Name: name,
		PrimaryContainer: types.Container{
			Image:       image,
			ModelData:   job.Status.ModelArtifacts,
			Environment: env,
		},
		Role:                   role,
		VPCConfig:              vpc,
		EnableNetworkIsolation: isolation,
	}
	if err := model.Validate(); err != nil {
		return nil, err
	}
	return model, nil
}
