package platform

import (
	"net/http"

	"github.com/gorilla/mux"
)

const (
	NameRegexp      = `[a-z0-9]+(?:[._-][a-z0-9]+)*(?:/[a-z0-9]+(?:[._-][a-z0-9]+)*)*`
	ReferenceRegexp = `[a-zA-Z0-9_][a-zA-Z0-9._-]{0,127}`
	DigestRegexp    = `[A-Za-z][A-Za-z0-9]*(?:[-_+.][A-Za-z][A-Za-z0-9]*)*[:][[:xdigit:]]{32,}`
)

func (p *Platform) route() http.Handler {
	mux := mux.NewRouter()
	mux = mux.StrictSlash(true)

	mux.Methods("GET").Path("/healthz").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	// training jobs
	mux.Methods("POST").Path("/jobs").HandlerFunc(MaxBytesReadHandler(p.CreateJob, MaxBytesRead))
	mux.Methods("GET").Path("/jobs").HandlerFunc(p.ListJobs)
	mux.Methods("GET").Path("/jobs/{name:" + ReferenceRegexp + "}").HandlerFunc(p.GetJob)
	mux.Methods("POST").Path("/jobs/{name:" + ReferenceRegexp + "}/stop").HandlerFunc(p.StopJob)

	// models
	mux.Methods("POST").Path("/models").HandlerFunc(MaxBytesReadHandler(p.CreateModel, MaxBytesRead))
	mux.Methods("GET").Path("/models").HandlerFunc(p.ListModels)
	mux.Methods("GET").Path("/models/{name:" + ReferenceRegexp + "}").HandlerFunc(p.GetModel)
	mux.Methods("DELETE").Path("/models/{name:" + ReferenceRegexp + "}").HandlerFunc(p.DeleteModel)

	// endpoints
	mux.Methods("POST").Path("/endpoints").HandlerFunc(MaxBytesReadHandler(p.CreateEndpoint, MaxBytesRead))
	mux.Methods("GET").Path("/endpoints").HandlerFunc(p.ListEndpoints)
	mux.Methods("GET").Path("/endpoints/{name:" + ReferenceRegexp + "}").HandlerFunc(p.GetEndpoint)
	mux.Methods("DELETE").Path("/endpoints/{name:" + ReferenceRegexp + "}").HandlerFunc(p.DeleteEndpoint)
	mux.Methods("POST").Path("/endpoints/{name:" + ReferenceRegexp + "}/invocations").HandlerFunc(p.InvokeEndpoint)

	// artifact store
	mux.Methods("GET").Path("/artifacts").HandlerFunc(p.GetGlobalIndex)
	repository := mux.PathPrefix("/artifacts/{name:" + NameRegexp + "}").Subrouter()
	repository.Methods("GET").Path("/index").HandlerFunc(p.GetIndex)
	repository.Methods("DELETE").Path("/index").HandlerFunc(p.DeleteIndex)

	manifests := repository.PathPrefix("/manifests").Subrouter()
	manifests.Methods("GET").Path("/{reference:" + ReferenceRegexp + "}").HandlerFunc(p.GetManifest)
	manifests.Methods("PUT").Path("/{reference:" + ReferenceRegexp + "}").HandlerFunc(MaxBytesReadHandler(p.PutManifest, MaxBytesRead))
	manifests.Methods("DELETE").Path("/{reference:" + ReferenceRegexp + "}").HandlerFunc(p.DeleteManifest)

	blobs := repository.PathPrefix("/blobs").Subrouter()
	blobs.Methods("HEAD").Path("/{digest:" + DigestRegexp + "}").HandlerFunc(p.HeadBlob)
	blobs.Methods("GET").Path("/{digest:" + DigestRegexp + "}").HandlerFunc(p.GetBlob)
	blobs.Methods("PUT").Path("/{digest:" + DigestRegexp + "}").HandlerFunc(p.PutBlob)

	return mux
}
