package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/go-logr/logr"
	"github.com/go-logr/stdr"
	"github.com/spf13/cobra"

	"github.com/louisbrown1/amazon-sagemaker-examples/pkg/platform"
	"github.com/louisbrown1/amazon-sagemaker-examples/pkg/version"
)

const ErrExitCode = 1

func main() {
	if err := NewPlatformCmd().Execute(); err != nil {
		fmt.Println(err.Error())
		os.Exit(ErrExitCode)
	}
}

func NewPlatformCmd() *cobra.Command {
	options := platform.DefaultOptions()
	cmd := &cobra.Command{
		Use:     "sagexd",
		Short:   "sagexd",
		Version: version.Get().String(),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, os.Kill)
			defer cancel()

			log.SetFlags(log.LstdFlags | log.Lshortfile)
			ctx = logr.NewContext(ctx, stdr.NewWithOptions(log.Default(), stdr.Options{LogCaller: stdr.Error}))

			return platform.Run(ctx, options)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&options.Listen, "listen", options.Listen, "listen address")
	flags.StringVar(&options.TLS.CAFile, "tls-ca", options.TLS.CAFile, "tls ca file")
	flags.StringVar(&options.TLS.CertFile, "tls-cert", options.TLS.CertFile, "tls cert file")
	flags.StringVar(&options.TLS.KeyFile, "tls-key", options.TLS.KeyFile, "tls key file")
	flags.StringVar(&options.S3.Bucket, "s3-bucket", options.S3.Bucket, "s3 bucket")
	flags.StringVar(&options.S3.URL, "s3-url", options.S3.URL, "s3 url, artifacts use local storage when empty")
	flags.StringVar(&options.S3.AccessKey, "s3-access-key", options.S3.AccessKey, "s3 access key")
	flags.StringVar(&options.S3.SecretKey, "s3-secret-key", options.S3.SecretKey, "s3 secret key")
	flags.DurationVar(&options.S3.PresignExpire, "s3-presign-expire", options.S3.PresignExpire, "s3 presign expire")
	flags.StringVar(&options.S3.Region, "s3-region", options.S3.Region, "s3 region")
	flags.StringVar(&options.Local.Basepath, "local-path", options.Local.Basepath, "local artifact storage path")
	flags.StringVar(&options.OIDC.Issuer, "oidc-issuer", options.OIDC.Issuer, "oidc issuer")
	flags.BoolVar(&options.EnableRedirect, "enable-redirect", options.EnableRedirect, "enable blob storage redirect")
	flags.StringVar(&options.DataDir, "data-dir", options.DataDir, "state database and job workspace directory")
	flags.StringToStringVar(&options.Backends, "backend", options.Backends, "serving backend as image-prefix=url, repeatable, key 'default' is the catch-all")
	flags.IntVar(&options.MaxConcurrentJobs, "max-concurrent-jobs", options.MaxConcurrentJobs, "training jobs running at once")
	flags.DurationVar(&options.ReconcileInterval, "reconcile-interval", options.ReconcileInterval, "controller scan interval")

	return cmd
}
