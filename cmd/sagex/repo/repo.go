package repo

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/go-logr/logr"
	"github.com/go-logr/stdr"
	"github.com/spf13/cobra"

	"github.com/louisbrown1/amazon-sagemaker-examples/pkg/client"
)

func NewRepoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repo",
		Short: "Platform server management",
		Long:  "Platform server management",
	}
	cmd.AddCommand(NewRepoAddCmd())
	cmd.AddCommand(NewRepoListCmd())
	cmd.AddCommand(NewRepoRemoveCmd())

	return cmd
}

func BaseContext() (context.Context, context.CancelFunc) {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, os.Kill)
	if os.Getenv("DEBUG") == "1" {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
		ctx = logr.NewContext(ctx, stdr.NewWithOptions(log.Default(), stdr.Options{LogCaller: stdr.Error}))
	}
	return ctx, cancel
}

type RepoFile struct {
	Repos []RepoDetails `json:"repos,omitempty"`
}

type RepoDetails struct {
	Name  string `json:"name,omitempty"`
	URL   string `json:"url,omitempty"`
	Token string `json:"token,omitempty"`
}

func (r RepoDetails) Client() *client.Client {
	auth := ""
	if r.Token != "" {
		auth = "Bearer " + r.Token
	}
	return client.NewClient(r.URL, auth)
}

var DefaultRepoManager = Repomanager{
	Path: func() string {
		home, err := os.UserHomeDir()
		if err != nil {
			panic(err)
		}
		return filepath.Join(home, ".sagex", "repos.json")
	}(),
}

type Repomanager struct {
	Path  string
	repos RepoFile
}

func (r *Repomanager) Set(item RepoDetails) error {
	if _, err := url.ParseRequestURI(item.URL); err != nil {
		return fmt.Errorf("invalid url: %s", item.URL)
	}

	if err := r.load(); err != nil {
		return err
	}
	var exists bool
	for i, repo := range r.repos.Repos {
		if repo.Name == item.Name {
			r.repos.Repos[i] = item
			exists = true
			break
		}
	}
	if !exists {
		r.repos.Repos = append(r.repos.Repos, item)
	}
	return r.save()
}

func (r *Repomanager) Get(name string) (RepoDetails, error) {
	if err := r.load(); err != nil {
		return RepoDetails{}, err
	}
	for _, repo := range r.repos.Repos {
		if repo.Name == name || repo.URL == name {
			return repo, nil
		}
	}
	return RepoDetails{}, fmt.Errorf("repo %s not found", name)
}

func (r *Repomanager) Remove(name string) error {
	if err := r.load(); err != nil {
		return err
	}
	for i, repo := range r.repos.Repos {
		if repo.Name == name {
			r.repos.Repos = append(r.repos.Repos[:i], r.repos.Repos[i+1:]...)
			return r.save()
		}
	}
	return fmt.Errorf("repo %s not found", name)
}

func (r *Repomanager) List() []RepoDetails {
	if err := r.load(); err != nil {
		return []RepoDetails{}
	}
	return r.repos.Repos
}

func (r *Repomanager) load() error {
	content, err := os.ReadFile(r.Path)
	if err != nil {
		if !os.IsNotExist(err) {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(r.Path), 0o755); err != nil {
			return err
		}
		content = []byte("{}")
	}
	return json.Unmarshal(content, &r.repos)
}

func (r *Repomanager) save() error {
	content, err := json.MarshalIndent(r.repos, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(r.Path, content, 0o644)
}

// ResolveClient turns a server argument, either a configured repo name
// or a bare URL, into a platform client.
func ResolveClient(server string) (*client.Client, error) {
	if details, err := DefaultRepoManager.Get(server); err == nil {
		return details.Client(), nil
	}
	ref, err := client.ParseReference(server)
	if err != nil {
		return nil, err
	}
	return client.NewClient(ref.Registry, os.Getenv(AuthEnv)), nil
}

const AuthEnv = "SAGEX_AUTH"
