package estimator

import (
	"reflect"
	"testing"

	"github.com/louisbrown1/amazon-sagemaker-examples/pkg/types"
)

func finishedJob() *types.TrainingJob {
	return &types.TrainingJob{
		Name: "mnist-20260825-120000",
		Spec: types.TrainingJobSpec{
			EntryPoint:    "train.py",
			TrainingImage: "jax-training:latest",
			Resources:     types.ResourceConfig{InstanceCount: 1},
		},
		Status: types.TrainingJobStatus{
			State: types.JobStateCompleted,
			ModelArtifacts: &types.ArtifactRef{
				Repository: "jobs/mnist-20260825-120000",
				Name:       "model.tar.gz",
				Digest:     "sha256:e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
				Size:       128,
			},
		},
	}
}

func TestServingModelFactoryForwardsConfig(t *testing.T) {
	vpc := &types.VPCConfig{Subnets: []string{"subnet-1"}, SecurityGroupIDs: []string{"sg-1"}}
	e := &Estimator{
		TrainingImage:     "jax-training:latest",
		Role:              "arn:aws:iam::0:role/training",
		ContainerLogLevel: "DEBUG",
		VPCConfig:         vpc,
		ModelFactory:      ServingImageModelFactory{Image: "jax-serving:latest"},
	}
	e.latestJob = finishedJob()

	model, err := e.CreateModel(ModelOptions{})
	if err != nil {
		t.Fatalf("CreateModel() error = %v", err)
	}

	// only the image changes, everything else carries over
	if model.PrimaryContainer.Image != "jax-serving:latest" {
		t.Errorf("image = %v, want the serving image", model.PrimaryContainer.Image)
	}
	if model.Role != e.Role {
		t.Errorf("role = %v, want %v", model.Role, e.Role)
	}
	if !reflect.DeepEqual(model.VPCConfig, vpc) {
		t.Errorf("vpc = %v, want %v", model.VPCConfig, vpc)
	}
	if got := model.PrimaryContainer.Environment[ContainerLogLevelEnv]; got != "DEBUG" {
		t.Errorf("container log level = %v, want DEBUG", got)
	}
	if !reflect.DeepEqual(model.PrimaryContainer.ModelData, e.latestJob.Status.ModelArtifacts) {
		t.Errorf("model data = %v, want the job artifact", model.PrimaryContainer.ModelData)
	}
	if model.Name != e.latestJob.Name {
		t.Errorf("name = %v, want the job name by default", model.Name)
	}
	if model.EnableNetworkIsolation {
		t.Errorf("network isolation should default to off")
	}
}

func TestServingModelFactoryExplicitOptions(t *testing.T) {
	isolation := true
	e := &Estimator{
		Role:         "arn:aws:iam::0:role/training",
		ModelFactory: ServingImageModelFactory{Image: "jax-serving:latest"},
	}
	e.latestJob = finishedJob()

	model, err := e.CreateModel(ModelOptions{
		Name:                   "custom-model",
		EnableNetworkIsolation: &isolation,
		Role:                   "arn:aws:iam::0:role/serving",
		Environment:            map[string]string{"WORKERS": "2"},
	})
	if err != nil {
		t.Fatalf("CreateModel() error = %v", err)
	}
	if model.Name != "custom-model" {
		t.Errorf("name = %v, want custom-model", model.Name)
	}
	if !model.EnableNetworkIsolation {
		t.Errorf("network isolation should follow the explicit option")
	}
	if model.Role != "arn:aws:iam::0:role/serving" {
		t.Errorf("role = %v, want the explicit role", model.Role)
	}
	if got := model.PrimaryContainer.Environment["WORKERS"]; got != "2" {
		t.Errorf("environment WORKERS = %v, want 2", got)
	}
}

func TestServingModelFactoryRequiresImage(t *testing.T) {
	e := &Estimator{ModelFactory: ServingImageModelFactory{}}
	e.latestJob = finishedJob()
	if _, err := e.CreateModel(ModelOptions{}); err == nil {
		t.Errorf("CreateModel() should fail without a serving image")
	}
}

func TestCreateModelRequiresArtifacts(t *testing.T) {
	e := &Estimator{ModelFactory: ServingImageModelFactory{Image: "jax-serving:latest"}}
	if _, err := e.CreateModel(ModelOptions{}); err == nil {
		t.Errorf("CreateModel() should fail without a training job")
	}
	job := finishedJob()
	job.Status.ModelArtifacts = nil
	e.latestJob = job
	if _, err := e.CreateModel(ModelOptions{}); err == nil {
		t.Errorf("CreateModel() should fail without model artifacts")
	}
}

func TestTrainingImageModelFactoryIsDefault(t *testing.T) {
	e := &Estimator{TrainingImage: "jax-training:latest"}
	e.latestJob = finishedJob()
	model, err := e.CreateModel(ModelOptions{})
	if err != nil {
		t.Fatalf("CreateModel() error = %v", err)
	}
	if model.PrimaryContainer.Image != "jax-training:latest" {
		t.Errorf("image = %v, want the training image", model.PrimaryContainer.Image)
	}
}

func TestGenerateJobName(t *testing.T) {
	name := GenerateJobName("mnist")
	if len(name) != len("mnist")+len("-20060102-150405") {
		t.Errorf("GenerateJobName() = %v, want base plus timestamp", name)
	}
	if got := GenerateJobName(""); len(got) <= len("-20060102-150405") {
		t.Errorf("GenerateJobName() with empty base = %v, want a default base", got)
	}
}
