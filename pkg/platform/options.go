package platform

import (
	"crypto/tls"
	"crypto/x509"
	"os"
	"time"
)

type Options struct {
	Listen         string
	TLS            *TLSOptions
	S3             *S3Options
	Local          *LocalFSOptions
	EnableRedirect bool
	OIDC           *OIDCOptions

	// DataDir holds the control-plane state database and job
	// workspaces.
	DataDir string

	// Backends maps a serving image reference to the base URL of the
	// running serving container that hosts it.
	Backends map[string]string

	// MaxConcurrentJobs bounds how many training jobs run at once.
	MaxConcurrentJobs int

	// ReconcileInterval is how often the controller scans for work.
	ReconcileInterval time.Duration
}

func DefaultOptions() *Options {
	return &Options{
		Listen:            ":8080",
		TLS:               &TLSOptions{},
		S3:                NewDefaultS3Options(),
		Local:             NewDefaultLocalFSOptions(),
		OIDC:              &OIDCOptions{},
		EnableRedirect:    false,
		DataDir:           "data",
		Backends:          map[string]string{},
		MaxConcurrentJobs: 2,
		ReconcileInterval: 2 * time.Second,
	}
}

type OIDCOptions struct {
	Issuer string
}

type TLSOptions struct {
	CertFile string
	KeyFile  string
	CAFile   string
}

func (t *TLSOptions) ToTLSConfig() (*tls.Config, error) {
	pool, err := x509.SystemCertPool()
	if err != nil {
		return nil, err
	}
	config := &tls.Config{ClientCAs: pool}
	if t.CAFile != "" {
		capem, err := os.ReadFile(t.CAFile)
		if err != nil {
			return nil, err
		}
		config.ClientCAs.AppendCertsFromPEM(capem)
	}
	certificate, err := tls.LoadX509KeyPair(t.CertFile, t.KeyFile)
	if err != nil {
		return nil, err
	}
	config.Certificates = append(config.Certificates, certificate)
	return config, nil
}

type S3Options struct {
	URL           string        `json:"url,omitempty"`
	Region        string        `json:"region,omitempty"`
	Bucket        string        `json:"bucket,omitempty"`
	AccessKey     string        `json:"accessKey,omitempty"`
	SecretKey     string        `json:"secretKey,omitempty"`
	PresignExpire time.Duration `json:"presignExpire,omitempty"`
	Prefix        string        `json:"prefix,omitempty"`
}

func NewDefaultS3Options() *S3Options {
	return &S3Options{
		Bucket:        "artifacts",
		URL:           "",
		PresignExpire: time.Hour,
		Prefix:        "artifacts",
	}
}

type LocalFSOptions struct {
	Basepath string
}

func NewDefaultLocalFSOptions() *LocalFSOptions {
	return &LocalFSOptions{
		Basepath: "data/artifacts",
	}
}
