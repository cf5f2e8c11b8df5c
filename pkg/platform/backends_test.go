package platform

import "testing"

func TestStaticBackendsResolve(t *testing.T) {
	backends := StaticBackends{
		"jax-serving":        "http://127.0.0.1:9001",
		"jax-serving:latest": "http://127.0.0.1:9002",
		"default":            "http://127.0.0.1:9000",
	}
	tests := []struct {
		name  string
		image string
		want  string
		ok    bool
	}{
		{name: "longest prefix wins", image: "jax-serving:latest", want: "http://127.0.0.1:9002", ok: true},
		{name: "shorter prefix", image: "jax-serving:v1", want: "http://127.0.0.1:9001", ok: true},
		{name: "catch-all", image: "unknown-image:v1", want: "http://127.0.0.1:9000", ok: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := backends.Resolve(tt.image)
			if got != tt.want || ok != tt.ok {
				t.Errorf("Resolve(%s) = %v, %v, want %v, %v", tt.image, got, ok, tt.want, tt.ok)
			}
		})
	}

	empty := StaticBackends{}
	if _, ok := empty.Resolve("anything"); ok {
		t.Errorf("Resolve() on an empty table should miss")
	}
}
