// Package github resolves canonical repository keys to live popularity counts.
package github

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/tamcore/exploitscout/internal/model"
)

// DefaultBaseURL is the GitHub REST API root
const DefaultBaseURL = "https://api.github.com"

// Fetcher retrieves a JSON document relative to an API base URL
type Fetcher interface {
	Fetch(ctx context.Context, path string, v any) error
}

// pathSegment matches an owner or repository name that addresses itself
// when joined into a request path
var pathSegment = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// repository is the subset of GET /repos/{owner}/{repo} we read
type repository struct {
	StargazersCount *int `json:"stargazers_count"`
	Forks           *int `json:"forks"`
	ForksCount      *int `json:"forks_count"`
}

// Resolver looks repositories up on the code host
type Resolver struct {
	fetcher Fetcher
}

// NewResolver creates a resolver on top of fetcher
func NewResolver(fetcher Fetcher) *Resolver {
	return &Resolver{fetcher: fetcher}
}

// Resolve fetches the repository addressed by key (repos/<owner>/<name>).
// A repository that no longer exists surfaces as a transport not-found error.
func (r *Resolver) Resolve(ctx context.Context, key string) (model.Repository, error) {
	if !validKey(key) {
		return model.Repository{}, fmt.Errorf("invalid repository key %q", key)
	}

	var repo repository
	if err := r.fetcher.Fetch(ctx, key, &repo); err != nil {
		return model.Repository{}, fmt.Errorf("failed to resolve %s: %w", key, err)
	}

	if repo.StargazersCount == nil {
		return model.Repository{}, fmt.Errorf("%s: response has no stargazers_count", key)
	}

	forks := repo.Forks
	if forks == nil {
		forks = repo.ForksCount
	}
	if forks == nil {
		return model.Repository{}, fmt.Errorf("%s: response has no fork count", key)
	}

	return model.Repository{
		Key:   key,
		Stars: max(*repo.StargazersCount, 0),
		Forks: max(*forks, 0),
	}, nil
}

func validKey(key string) bool {
	parts := strings.Split(key, "/")
	if len(parts) != 3 || parts[0] != "repos" {
		return false
	}
	for _, part := range parts[1:] {
		if part == "." || part == ".." || !pathSegment.MatchString(part) {
			return false
		}
	}
	return true
}
