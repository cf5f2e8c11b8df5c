package artifact

import (
	"os"
	"strings"

	"github.com/louisbrown1/amazon-sagemaker-examples/cmd/sagex/repo"
	"github.com/louisbrown1/amazon-sagemaker-examples/pkg/client"
)

// ResolveReference parses an artifact reference and resolves its
// registry part through the configured servers: either
// <repo-name>/<repository>[@version] or a full URL.
func ResolveReference(raw string) (client.Reference, *client.Client, error) {
	auth := os.Getenv(repo.AuthEnv)
	if !strings.Contains(raw, "://") {
		splits := strings.SplitN(raw, "/", 2)
		if details, err := repo.DefaultRepoManager.Get(splits[0]); err == nil {
			if auth == "" && details.Token != "" {
				auth = "Bearer " + details.Token
			}
			if len(splits) == 2 {
				raw = details.URL + "/" + splits[1]
			} else {
				raw = details.URL
			}
		}
	}
	ref, err := client.ParseReference(raw)
	if err != nil {
		return client.Reference{}, nil, err
	}
	return ref, client.NewClient(ref.Registry, auth), nil
}
