// Package platform is the control plane: it accepts training jobs,
// runs them to produce model artifacts, registers deployable models,
// and hosts prediction endpoints in front of serving backends.
package platform

import (
	"context"
	"log"
	"net"
	"net/http"

	"github.com/go-logr/logr"
	"github.com/go-logr/stdr"
)

type Platform struct {
	Store     *RecordStore
	Artifacts *ArtifactStore
	Backends  BackendResolver

	controller *Controller
}

func NewPlatform(ctx context.Context, opts *Options) (*Platform, error) {
	artifacts, err := NewArtifactStore(ctx, opts)
	if err != nil {
		return nil, err
	}
	store, err := OpenRecordStore(opts.DataDir + "/state")
	if err != nil {
		return nil, err
	}
	p := &Platform{
		Store:     store,
		Artifacts: artifacts,
		Backends:  StaticBackends(opts.Backends),
	}
	p.controller = NewController(p, opts)
	return p, nil
}

func (p *Platform) Close() error {
	return p.Store.Close()
}

func Run(ctx context.Context, opts *Options) error {
	logger := stdr.NewWithOptions(log.Default(), stdr.Options{LogCaller: stdr.Error})
	ctx = logr.NewContext(ctx, logger)

	platform, err := NewPlatform(ctx, opts)
	if err != nil {
		return err
	}
	defer platform.Close()

	go platform.controller.Run(ctx)

	handler := platform.route()
	handler = LoggingFilter(logger, handler)
	if opts.OIDC.Issuer != "" {
		handler, err = NewOIDCAuthFilter(ctx, opts.OIDC.Issuer, handler)
		if err != nil {
			return err
		}
	}

	server := http.Server{
		Addr:    opts.Listen,
		Handler: handler,
		BaseContext: func(l net.Listener) context.Context {
			return ctx
		},
	}
	go func() {
		<-ctx.Done()
		server.Shutdown(context.Background())
	}()
	if opts.TLS.CertFile != "" && opts.TLS.KeyFile != "" {
		logger.Info("platform listening", "https", opts.Listen)
		return server.ListenAndServeTLS(opts.TLS.CertFile, opts.TLS.KeyFile)
	}
	logger.Info("platform listening", "http", opts.Listen)
	return server.ListenAndServe()
}
