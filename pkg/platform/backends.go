package platform

import (
	"strings"
)

// BackendResolver maps a container image to the base URL of the serving
// process that hosts it. In-cluster this would be a scheduler; here the
// daemon is configured with a static table.
type BackendResolver interface {
	Resolve(image string) (string, bool)
}

// StaticBackends resolves by longest image prefix, with the "default"
// entry as catch-all.
type StaticBackends map[string]string

func (b StaticBackends) Resolve(image string) (string, bool) {
	matched, matchedlen := "", -1
	for prefix, addr := range b {
		if prefix == "default" {
			continue
		}
		if strings.HasPrefix(image, prefix) && len(prefix) > matchedlen {
			matched, matchedlen = addr, len(prefix)
		}
	}
	if matchedlen >= 0 {
		return matched, true
	}
	if addr, ok := b["default"]; ok {
		return addr, true
	}
	return "", false
}
