package platform

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/go-logr/logr"

	"github.com/louisbrown1/amazon-sagemaker-examples/pkg/client"
	"github.com/louisbrown1/amazon-sagemaker-examples/pkg/types"
)

const (
	ModelArtifactName = "model.tar.gz"

	MediaTypeModelArtifactTarGz = "application/vnd.sagex.model.directory.v1.tar+gz"
)

type RunResult struct {
	ModelArtifacts *types.ArtifactRef
	ExitCode       *int
	Err            error
}

// Runner executes one training job to completion and returns the
// produced model artifact.
type Runner interface {
	Run(ctx context.Context, job *types.TrainingJob) RunResult
}

// LocalRunner executes training jobs as subprocesses on the daemon
// host, staging a workspace laid out the way training containers
// expect it:
//
//	<ws>/input/config/hyperparameters.json
//	<ws>/input/config/inputdataconfig.json
//	<ws>/input/data/<channel>/
//	<ws>/code/        extracted source archive, the working directory
//	<ws>/model/       whatever the script leaves here becomes the artifact
//	<ws>/output/      training log and failure reason
type LocalRunner struct {
	Artifacts *ArtifactStore
	Basepath  string
}

func NewLocalRunner(artifacts *ArtifactStore, basepath string) *LocalRunner {
	return &LocalRunner{Artifacts: artifacts, Basepath: basepath}
}

func (l *LocalRunner) Run(ctx context.Context, job *types.TrainingJob) RunResult {
	log := logr.FromContextOrDiscard(ctx).WithName("runner").WithValues("job", job.Name)

	if job.Spec.MaxRuntimeSeconds > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(job.Spec.MaxRuntimeSeconds)*time.Second)
		defer cancel()
	}

	ws := filepath.Join(l.Basepath, job.Name)
	if err := l.stageWorkspace(ctx, ws, job); err != nil {
		return RunResult{Err: fmt.Errorf("stage workspace: %w", err)}
	}

	logfile, err := os.Create(filepath.Join(ws, "output", "training.log"))
	if err != nil {
		return RunResult{Err: err}
	}
	defer logfile.Close()

	args := entryCommand(job.Spec.EntryPoint)
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Dir = filepath.Join(ws, "code")
	cmd.Env = trainingEnviron(ws, job)
	cmd.Stdout = logfile
	cmd.Stderr = logfile

	log.Info("training started", "entrypoint", job.Spec.EntryPoint)
	runErr := cmd.Run()

	result := RunResult{}
	if cmd.ProcessState != nil {
		code := cmd.ProcessState.ExitCode()
		result.ExitCode = &code
	}
	if runErr != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			runErr = fmt.Errorf("training aborted: %w", ctxErr)
		}
		os.WriteFile(filepath.Join(ws, "output", "failure"), []byte(runErr.Error()), DefaultFileMode)
		result.Err = runErr
		return result
	}

	artifact, err := l.collectModel(ctx, ws, job)
	if err != nil {
		result.Err = fmt.Errorf("collect model: %w", err)
		return result
	}
	result.ModelArtifacts = artifact
	log.Info("training finished", "artifact", artifact.Digest)
	return result
}

func (l *LocalRunner) stageWorkspace(ctx context.Context, ws string, job *types.TrainingJob) error {
	for _, dir := range []string{"input/config", "input/data", "code", "model", "output"} {
		if err := os.MkdirAll(filepath.Join(ws, dir), DefaultDirMode); err != nil {
			return err
		}
	}

	if src := job.Spec.SourceArchive; !src.Empty() {
		blob, err := l.Artifacts.GetBlob(ctx, src.Repository, src.Digest)
		if err != nil {
			return err
		}
		defer blob.Content.Close()
		if err := client.UnTGZ(ctx, filepath.Join(ws, "code"), blob.Content); err != nil {
			return err
		}
	}

	hps := job.Spec.HyperParameters
	if hps == nil {
		hps = types.HyperParameters{}
	}
	if err := writeJSON(filepath.Join(ws, "input", "config", "hyperparameters.json"), hps); err != nil {
		return err
	}

	inputconfig := map[string]map[string]string{}
	for name, uri := range job.Spec.Channels {
		inputconfig[name] = map[string]string{"uri": uri}
		// local channel sources are linked straight into the workspace
		if fi, err := os.Stat(uri); err == nil && fi.IsDir() {
			os.Symlink(uri, filepath.Join(ws, "input", "data", name))
		}
	}
	return writeJSON(filepath.Join(ws, "input", "config", "inputdataconfig.json"), inputconfig)
}

func (l *LocalRunner) collectModel(ctx context.Context, ws string, job *types.TrainingJob) (*types.ArtifactRef, error) {
	tgzfile := filepath.Join(ws, ModelArtifactName)
	dgst, err := client.TGZ(ctx, filepath.Join(ws, "model"), tgzfile)
	if err != nil {
		return nil, err
	}
	fi, err := os.Stat(tgzfile)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(tgzfile)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	repository := "jobs/" + job.Name
	content := BlobContent{
		Content:       f,
		ContentLength: fi.Size(),
		ContentType:   MediaTypeModelArtifactTarGz,
	}
	if _, err := l.Artifacts.PutBlob(ctx, repository, dgst, content); err != nil {
		return nil, err
	}

	manifest := types.Manifest{
		SchemaVersion: 1,
		MediaType:     MediaTypeManifestJson,
		Blobs: []types.Descriptor{{
			Name:      ModelArtifactName,
			MediaType: MediaTypeModelArtifactTarGz,
			Digest:    dgst,
			Size:      fi.Size(),
		}},
		Annotations: map[string]string{"job": job.Name, "image": job.Spec.TrainingImage},
	}
	if src := job.Spec.SourceArchive; !src.Empty() {
		manifest.Blobs = append(manifest.Blobs, types.Descriptor{
			Name:      src.Name,
			MediaType: client.MediaTypeSourceArchiveTarGz,
			Digest:    src.Digest,
			Size:      src.Size,
		})
	}
	if err := l.Artifacts.PutManifest(ctx, repository, "latest", MediaTypeManifestJson, manifest); err != nil {
		return nil, err
	}
	return &types.ArtifactRef{
		Repository: repository,
		Name:       ModelArtifactName,
		Digest:     dgst,
		Size:       fi.Size(),
	}, nil
}

// entryCommand picks an interpreter by extension, the way managed
// training images dispatch their user script.
func entryCommand(entrypoint string) []string {
	switch filepath.Ext(entrypoint) {
	case ".py":
		return []string{"python3", entrypoint}
	case ".sh":
		return []string{"/bin/sh", entrypoint}
	default:
		if !strings.Contains(entrypoint, string(os.PathSeparator)) {
			entrypoint = "." + string(os.PathSeparator) + entrypoint
		}
		return []string{entrypoint}
	}
}

func trainingEnviron(ws string, job *types.TrainingJob) []string {
	env := os.Environ()
	env = append(env,
		"SM_MODEL_DIR="+filepath.Join(ws, "model"),
		"SM_INPUT_DIR="+filepath.Join(ws, "input"),
		"SM_INPUT_CONFIG_DIR="+filepath.Join(ws, "input", "config"),
		"SM_OUTPUT_DATA_DIR="+filepath.Join(ws, "output"),
		"SM_CURRENT_HOST=algo-1",
		"SM_HOSTS=algo-1",
		"TRAINING_JOB_NAME="+job.Name,
	)
	channels := make([]string, 0, len(job.Spec.Channels))
	for name := range job.Spec.Channels {
		channels = append(channels, name)
		env = append(env, "SM_CHANNEL_"+strings.ToUpper(name)+"="+filepath.Join(ws, "input", "data", name))
	}
	sort.Strings(channels)
	env = append(env, "SM_CHANNELS="+strings.Join(channels, ","))
	for k, v := range job.Spec.Environment {
		env = append(env, k+"="+v)
	}
	return env
}

func writeJSON(filename string, v any) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filename, raw, DefaultFileMode)
}
