package types

import (
	"fmt"
	"strconv"
	"time"

	"k8s.io/apimachinery/pkg/api/resource"
)

type JobState string

const (
	JobStatePending    JobState = "Pending"
	JobStateInProgress JobState = "InProgress"
	JobStateCompleted  JobState = "Completed"
	JobStateFailed     JobState = "Failed"
	JobStateStopping   JobState = "Stopping"
	JobStateStopped    JobState = "Stopped"
)

// Terminal reports whether a job in this state will never change state again.
func (s JobState) Terminal() bool {
	switch s {
	case JobStateCompleted, JobStateFailed, JobStateStopped:
		return true
	}
	return false
}

type TrainingJob struct {
	Name   string            `json:"name"`
	Spec   TrainingJobSpec   `json:"spec"`
	Status TrainingJobStatus `json:"status"`
}

type TrainingJobSpec struct {
	// EntryPoint is the training script executed inside the training
	// image, relative to the root of the source archive.
	EntryPoint    string       `json:"entryPoint"`
	SourceArchive *ArtifactRef `json:"sourceArchive,omitempty"`
	TrainingImage string       `json:"trainingImage"`
	Role          string       `json:"role,omitempty"`

	HyperParameters HyperParameters `json:"hyperParameters,omitempty"`

	// Channels map a channel name to the data source the platform
	// stages under input/data/<name> before the entry point runs.
	Channels map[string]string `json:"channels,omitempty"`

	Resources  ResourceConfig `json:"resources"`
	OutputPath string         `json:"outputPath,omitempty"`

	// MaxRuntimeSeconds bounds the wall-clock time of the training
	// process. Zero means no limit.
	MaxRuntimeSeconds int64 `json:"maxRuntimeSeconds,omitempty"`

	VPCConfig              *VPCConfig        `json:"vpcConfig,omitempty"`
	EnableNetworkIsolation bool              `json:"enableNetworkIsolation,omitempty"`
	Environment            map[string]string `json:"environment,omitempty"`
}

type TrainingJobStatus struct {
	State          JobState     `json:"state"`
	FailureReason  string       `json:"failureReason,omitempty"`
	ExitCode       *int         `json:"exitCode,omitempty"`
	ModelArtifacts *ArtifactRef `json:"modelArtifacts,omitempty"`
	CreationTime   time.Time    `json:"creationTime,omitempty"`
	TrainingStart  *time.Time   `json:"trainingStart,omitempty"`
	TrainingEnd    *time.Time   `json:"trainingEnd,omitempty"`
}

type ResourceConfig struct {
	InstanceType  string            `json:"instanceType"`
	InstanceCount int               `json:"instanceCount"`
	VolumeSize    resource.Quantity `json:"volumeSize,omitempty"`
}

type VPCConfig struct {
	Subnets          []string `json:"subnets,omitempty"`
	SecurityGroupIDs []string `json:"securityGroupIds,omitempty"`
}

// HyperParameters is a flat mapping of option name to scalar value.
// Values are carried as strings on the wire, the way the job API
// serializes them into the training container's configuration file.
type HyperParameters map[string]string

func (h HyperParameters) Set(name, value string) { h[name] = value }

func (h HyperParameters) SetInt(name string, value int64) {
	h[name] = strconv.FormatInt(value, 10)
}

func (h HyperParameters) SetFloat(name string, value float64) {
	h[name] = strconv.FormatFloat(value, 'g', -1, 64)
}

func (h HyperParameters) SetBool(name string, value bool) {
	h[name] = strconv.FormatBool(value)
}

func (h HyperParameters) Get(name string) (string, bool) {
	v, ok := h[name]
	return v, ok
}

func (h HyperParameters) GetInt(name string, def int64) int64 {
	v, ok := h[name]
	if !ok {
		return def
	}
	i, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return def
	}
	return i
}

func (h HyperParameters) GetFloat(name string, def float64) float64 {
	v, ok := h[name]
	if !ok {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func (h HyperParameters) Clone() HyperParameters {
	if h == nil {
		return nil
	}
	out := make(HyperParameters, len(h))
	for k, v := range h {
		out[k] = v
	}
	return out
}

func (s TrainingJobSpec) Validate() error {
	if s.TrainingImage == "" {
		return fmt.Errorf("training image is required")
	}
	if s.EntryPoint == "" {
		return fmt.Errorf("entry point is required")
	}
	if s.Resources.InstanceCount < 1 {
		return fmt.Errorf("instance count must be at least 1")
	}
	return nil
}
