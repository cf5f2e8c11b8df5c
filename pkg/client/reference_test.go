package client

import (
	"reflect"
	"testing"
)

func TestParseReference(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    Reference
		wantErr bool
	}{
		{
			name: "valid",
			raw:  "https://sagex.example.com/jobs/mnist@sha256:abcdef",
			want: Reference{
				Registry:   "https://sagex.example.com",
				Repository: "jobs/mnist",
				Version:    "sha256:abcdef",
			},
		},
		{
			raw: "https://sagex.example.com:8443/jobs/name@v1",
			want: Reference{
				Registry:   "https://sagex.example.com:8443",
				Repository: "jobs/name",
				Version:    "v1",
			},
		},
		{
			raw: "https://sagex.example.com/jobs/name",
			want: Reference{
				Registry:   "https://sagex.example.com",
				Repository: "jobs/name",
			},
		},
		{
			name: "scheme defaulted",
			raw:  "sagex.example.com/models/mnist@v2",
			want: Reference{
				Registry:   "https://sagex.example.com",
				Repository: "models/mnist",
				Version:    "v2",
			},
		},
		{
			name: "registry only",
			raw:  "http://sagex.example.com",
			want: Reference{
				Registry: "http://sagex.example.com",
			},
		},
		{
			name:    "missing host",
			raw:     "https:///repository@v1",
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseReference(tt.raw)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseReference() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseReference() = %v, want %v", got, tt.want)
			}
		})
	}
}
