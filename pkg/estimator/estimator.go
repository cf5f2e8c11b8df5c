// Package estimator is the client-side face of a training run: it
// packages a local source directory, submits it as a training job,
// waits for the artifact, and turns the finished job into a deployable
// model behind an HTTP endpoint.
package estimator

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/go-logr/logr"
	"k8s.io/apimachinery/pkg/util/wait"

	"github.com/louisbrown1/amazon-sagemaker-examples/pkg/client"
	"github.com/louisbrown1/amazon-sagemaker-examples/pkg/types"
)

const (
	DefaultPollInterval = 5 * time.Second
	SourceArchiveName   = "sourcedir.tar.gz"
)

type Estimator struct {
	// EntryPoint is the training script inside SourceDir.
	EntryPoint string
	SourceDir  string

	TrainingImage   string
	Role            string
	HyperParameters types.HyperParameters

	InstanceType  string
	InstanceCount int
	OutputPath    string
	MaxRuntime    time.Duration

	// BaseJobName prefixes generated job names.
	BaseJobName string

	// ContainerLogLevel is forwarded into the container environment.
	ContainerLogLevel string

	VPCConfig              *types.VPCConfig
	EnableNetworkIsolation bool
	Environment            map[string]string

	// Session is the platform client jobs are submitted through.
	Session *client.Client

	// ModelFactory builds the deployable model descriptor from a
	// finished job. Nil means the training image serves the model.
	ModelFactory ModelFactory

	// PollInterval overrides DefaultPollInterval when set.
	PollInterval time.Duration

	latestJob *types.TrainingJob
}

// Fit packages the source directory, submits a training job named
// after BaseJobName, and blocks until the job reaches a terminal
// state. Channels map channel names to their data sources.
func (e *Estimator) Fit(ctx context.Context, channels map[string]string) error {
	if e.Session == nil {
		return fmt.Errorf("estimator has no session")
	}
	name := GenerateJobName(e.BaseJobName)

	archive, err := e.uploadSource(ctx, name)
	if err != nil {
		return fmt.Errorf("upload source: %w", err)
	}

	job := &types.TrainingJob{
		Name: name,
		Spec: types.TrainingJobSpec{
			EntryPoint:             e.EntryPoint,
			SourceArchive:          archive,
			TrainingImage:          e.TrainingImage,
			Role:                   e.Role,
			HyperParameters:        e.HyperParameters.Clone(),
			Channels:               channels,
			Resources:              types.ResourceConfig{InstanceType: e.InstanceType, InstanceCount: max(e.InstanceCount, 1)},
			OutputPath:             e.OutputPath,
			MaxRuntimeSeconds:      int64(e.MaxRuntime.Seconds()),
			VPCConfig:              e.VPCConfig,
			EnableNetworkIsolation: e.EnableNetworkIsolation,
			Environment:            e.Environment,
		},
	}
	if err := e.Session.Remote.CreateTrainingJob(ctx, job); err != nil {
		return err
	}
	logr.FromContextOrDiscard(ctx).Info("training job submitted", "job", name)

	finished, err := e.WaitForJob(ctx, name)
	if err != nil {
		return err
	}
	e.latestJob = finished
	switch finished.Status.State {
	case types.JobStateCompleted:
		return nil
	case types.JobStateStopped:
		return fmt.Errorf("training job %s was stopped", name)
	default:
		return fmt.Errorf("training job %s failed: %s", name, finished.Status.FailureReason)
	}
}

// WaitForJob polls the job until it reaches a terminal state.
func (e *Estimator) WaitForJob(ctx context.Context, name string) (*types.TrainingJob, error) {
	interval := e.PollInterval
	if interval == 0 {
		interval = DefaultPollInterval
	}
	var job *types.TrainingJob
	err := wait.PollImmediateUntilWithContext(ctx, interval, func(ctx context.Context) (bool, error) {
		got, err := e.Session.Remote.GetTrainingJob(ctx, name)
		if err != nil {
			return false, err
		}
		job = got
		return got.Status.State.Terminal(), nil
	})
	if err != nil {
		return nil, err
	}
	return job, nil
}

// LatestTrainingJob returns the job produced by the last Fit, if any.
func (e *Estimator) LatestTrainingJob() *types.TrainingJob {
	return e.latestJob
}

// Attach rebuilds estimator state from an already submitted job, the
// way a fresh process resumes a long-running run.
func (e *Estimator) Attach(ctx context.Context, jobName string) error {
	job, err := e.WaitForJob(ctx, jobName)
	if err != nil {
		return err
	}
	e.latestJob = job
	if job.Status.State != types.JobStateCompleted {
		return fmt.Errorf("training job %s is %s: %s", jobName, job.Status.State, job.Status.FailureReason)
	}
	return nil
}

func (e *Estimator) uploadSource(ctx context.Context, jobName string) (*types.ArtifactRef, error) {
	tmp, err := os.MkdirTemp("", "sagex-source-*")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(tmp)

	tgzfile := filepath.Join(tmp, SourceArchiveName)
	dgst, err := client.TGZ(ctx, e.SourceDir, tgzfile)
	if err != nil {
		return nil, err
	}
	fi, err := os.Stat(tgzfile)
	if err != nil {
		return nil, err
	}

	repo := JobRepository(jobName)
	desc := types.Descriptor{
		Name:      SourceArchiveName,
		MediaType: client.MediaTypeSourceArchiveTarGz,
		Digest:    dgst,
		Size:      fi.Size(),
	}
	body := client.RequestBody{
		ContentLength: fi.Size(),
		ContentBody:   func() (io.ReadCloser, error) { return os.Open(tgzfile) },
	}
	if err := e.Session.Remote.UploadBlob(ctx, repo, desc, body); err != nil {
		return nil, err
	}
	return &types.ArtifactRef{
		Repository: repo,
		Name:       SourceArchiveName,
		Digest:     dgst,
		Size:       fi.Size(),
	}, nil
}

// JobRepository is the artifact repository holding a job's source
// archive and its produced model artifact.
func JobRepository(jobName string) string {
	return "jobs/" + jobName
}

// GenerateJobName appends a UTC timestamp to the base name, so
// repeated runs of the same estimator stay distinguishable.
func GenerateJobName(base string) string {
	if base == "" {
		base = "training-job"
	}
	return base + "-" + time.Now().UTC().Format("20060102-150405")
}
