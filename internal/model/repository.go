package model

import (
	"fmt"
	"sort"
	"strings"
)

// Repository is a code repository with its popularity counters
type Repository struct {
	// Key is the canonical repos/<owner>/<name> path
	Key   string `json:"key"`
	Stars int    `json:"stars"`
	Forks int    `json:"forks"`
}

// String renders one summary line for the repository
func (r Repository) String() string {
	return fmt.Sprintf("• %s (stars: %d, forks: %d)", r.Key, r.Stars, r.Forks)
}

// RanksAbove reports whether a is more popular than b: more stars, or equal
// stars and more forks.
func RanksAbove(a, b Repository) bool {
	if a.Stars != b.Stars {
		return a.Stars > b.Stars
	}
	return a.Forks > b.Forks
}

// SortByPopularity orders repos most popular first. Equal entries keep their
// relative order.
func SortByPopularity(repos []Repository) {
	sort.SliceStable(repos, func(i, j int) bool {
		return RanksAbove(repos[i], repos[j])
	})
}

// RenderRepositories joins the summary lines of repos, one per line
func RenderRepositories(repos []Repository) string {
	lines := make([]string, len(repos))
	for i, r := range repos {
		lines[i] = r.String()
	}
	return strings.Join(lines, "\n")
}
