package platform

import (
	"encoding/json"
	"errors"
	"sort"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/louisbrown1/amazon-sagemaker-examples/pkg/types"
)

const (
	jobKeyPrefix      = "jobs/"
	modelKeyPrefix    = "models/"
	endpointKeyPrefix = "endpoints/"
)

// RecordStore is the control-plane state database: training jobs,
// models and endpoints as JSON records keyed by kind and name.
type RecordStore struct {
	db *leveldb.DB
}

func OpenRecordStore(path string) (*RecordStore, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, err
	}
	return &RecordStore{db: db}, nil
}

func (s *RecordStore) Close() error {
	return s.db.Close()
}

func (s *RecordStore) put(prefix, name string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.db.Put([]byte(prefix+name), raw, nil)
}

func (s *RecordStore) get(prefix, name string, into any) (bool, error) {
	raw, err := s.db.Get([]byte(prefix+name), nil)
	if err != nil {
		if errors.Is(err, leveldb.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(raw, into); err != nil {
		return false, err
	}
	return true, nil
}

func (s *RecordStore) delete(prefix, name string) error {
	return s.db.Delete([]byte(prefix+name), nil)
}

func (s *RecordStore) list(prefix string, each func(raw []byte) error) error {
	iter := s.db.NewIterator(util.BytesPrefix([]byte(prefix)), nil)
	defer iter.Release()
	for iter.Next() {
		value := make([]byte, len(iter.Value()))
		copy(value, iter.Value())
		if err := each(value); err != nil {
			return err
		}
	}
	return iter.Error()
}

func (s *RecordStore) PutJob(job *types.TrainingJob) error {
	return s.put(jobKeyPrefix, job.Name, job)
}

func (s *RecordStore) GetJob(name string) (*types.TrainingJob, bool, error) {
	job := &types.TrainingJob{}
	ok, err := s.get(jobKeyPrefix, name, job)
	return job, ok, err
}

func (s *RecordStore) DeleteJob(name string) error {
	return s.delete(jobKeyPrefix, name)
}

func (s *RecordStore) ListJobs() ([]types.TrainingJob, error) {
	jobs := []types.TrainingJob{}
	err := s.list(jobKeyPrefix, func(raw []byte) error {
		var job types.TrainingJob
		if err := json.Unmarshal(raw, &job); err != nil {
			return err
		}
		jobs = append(jobs, job)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(jobs, func(i, j int) bool {
		return jobs[i].Status.CreationTime.After(jobs[j].Status.CreationTime)
	})
	return jobs, nil
}

func (s *RecordStore) PutModel(model *types.Model) error {
	return s.put(modelKeyPrefix, model.Name, model)
}

func (s *RecordStore) GetModel(name string) (*types.Model, bool, error) {
	model := &types.Model{}
	ok, err := s.get(modelKeyPrefix, name, model)
	return model, ok, err
}

func (s *RecordStore) DeleteModel(name string) error {
	return s.delete(modelKeyPrefix, name)
}

func (s *RecordStore) ListModels() ([]types.Model, error) {
	models := []types.Model{}
	err := s.list(modelKeyPrefix, func(raw []byte) error {
		var model types.Model
		if err := json.Unmarshal(raw, &model); err != nil {
			return err
		}
		models = append(models, model)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return models, nil
}

func (s *RecordStore) PutEndpoint(ep *types.Endpoint) error {
	return s.put(endpointKeyPrefix, ep.Name, ep)
}

func (s *RecordStore) GetEndpoint(name string) (*types.Endpoint, bool, error) {
	ep := &types.Endpoint{}
	ok, err := s.get(endpointKeyPrefix, name, ep)
	return ep, ok, err
}

func (s *RecordStore) DeleteEndpoint(name string) error {
	return s.delete(endpointKeyPrefix, name)
}

func (s *RecordStore) ListEndpoints() ([]types.Endpoint, error) {
	eps := []types.Endpoint{}
	err := s.list(endpointKeyPrefix, func(raw []byte) error {
		var ep types.Endpoint
		if err := json.Unmarshal(raw, &ep); err != nil {
			return err
		}
		eps = append(eps, ep)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return eps, nil
}
