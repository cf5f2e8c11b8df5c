package platform

import (
	"context"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/go-logr/logr"
	"github.com/gorilla/handlers"

	apierrors "github.com/louisbrown1/amazon-sagemaker-examples/pkg/errors"
)

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// LoggingFilter logs every request with its status and latency. Access
// logs additionally go to stdout in combined format.
func LoggingFilter(log logr.Logger, next http.Handler) http.Handler {
	next = handlers.CombinedLoggingHandler(os.Stdout, next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		log.V(1).Info("request", "method", r.Method, "path", r.URL.Path, "status", sw.status, "duration", time.Since(start).String())
	})
}

// NewOIDCAuthFilter verifies bearer tokens against the issuer's keyset.
// The health endpoint stays open for probes.
func NewOIDCAuthFilter(ctx context.Context, issuer string, next http.Handler) (http.Handler, error) {
	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, err
	}
	verifier := provider.Verifier(&oidc.Config{SkipClientIDCheck: true})
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/healthz" {
			next.ServeHTTP(w, r)
			return
		}
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if token == "" {
			ResponseError(w, apierrors.NewUnauthorizedError("missing bearer token"))
			return
		}
		if _, err := verifier.Verify(r.Context(), token); err != nil {
			ResponseError(w, apierrors.NewUnauthorizedError(err.Error()))
			return
		}
		next.ServeHTTP(w, r)
	}), nil
}
