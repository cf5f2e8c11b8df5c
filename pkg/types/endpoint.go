package types

import (
	"encoding/json"
	"fmt"
	"time"
)

type EndpointState string

const (
	EndpointStateCreating     EndpointState = "Creating"
	EndpointStateInService    EndpointState = "InService"
	EndpointStateFailed       EndpointState = "Failed"
	EndpointStateDeleting     EndpointState = "Deleting"
	EndpointStateOutOfService EndpointState = "OutOfService"
)

func (s EndpointState) Terminal() bool {
	switch s {
	case EndpointStateInService, EndpointStateFailed, EndpointStateOutOfService:
		return true
	}
	return false
}

type Endpoint struct {
	Name      string         `json:"name"`
	ModelName string         `json:"modelName"`
	Resources ResourceConfig `json:"resources"`
	Status    EndpointStatus `json:"status"`
}

type EndpointStatus struct {
	State         EndpointState `json:"state"`
	FailureReason string        `json:"failureReason,omitempty"`
	CreationTime  time.Time     `json:"creationTime,omitempty"`
}

func (e Endpoint) Validate() error {
	if e.Name == "" {
		return fmt.Errorf("endpoint name is required")
	}
	if e.ModelName == "" {
		return fmt.Errorf("endpoint %s: model name is required", e.Name)
	}
	if e.Resources.InstanceCount < 1 {
		return fmt.Errorf("endpoint %s: instance count must be at least 1", e.Name)
	}
	return nil
}

// PredictInput and PredictOutput follow the serialized-model server's
// row-oriented wire contract: a list of input instances in, a list of
// per-instance predictions out.
type PredictInput struct {
	Instances []json.RawMessage `json:"instances"`
}

type PredictOutput struct {
	Predictions []json.RawMessage `json:"predictions"`
}
