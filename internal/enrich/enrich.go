// Package enrich resolves the exploit repositories of vulnerability records and
// ranks them by popularity.
package enrich

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/tamcore/exploitscout/internal/logging"
	"github.com/tamcore/exploitscout/internal/metrics"
	"github.com/tamcore/exploitscout/internal/model"
	"github.com/tamcore/exploitscout/internal/transport"
)

// DefaultWorkers bounds concurrent resolutions per record
const DefaultWorkers = 4

// Resolver looks up one repository by canonical key
type Resolver interface {
	Resolve(ctx context.Context, key string) (model.Repository, error)
}

// Enricher fills in RankedRepositories on vulnerability records
type Enricher struct {
	resolver Resolver
	workers  int
	logger   *zap.Logger
	metrics  *metrics.Metrics
}

// New creates an Enricher. workers below 1 selects DefaultWorkers.
func New(resolver Resolver, workers int, logger *zap.Logger, m *metrics.Metrics) *Enricher {
	if workers < 1 {
		workers = DefaultWorkers
	}
	return &Enricher{
		resolver: resolver,
		workers:  workers,
		logger:   logging.OrNop(logger),
		metrics:  m,
	}
}

// Enrich returns a copy of vuln whose RankedRepositories holds every exploit
// repository that resolved, most popular first. Repositories that fail to
// resolve are dropped. Only cancellation of ctx fails the call.
func (e *Enricher) Enrich(ctx context.Context, vuln model.Vulnerability) (model.Vulnerability, error) {
	keys := vuln.ExploitRepositories.Sorted()
	vuln.RankedRepositories = []model.Repository{}
	if len(keys) == 0 {
		return vuln, nil
	}

	// one slot per key so completion order cannot leak into the result
	slots := make([]*model.Repository, len(keys))

	g := new(errgroup.Group)
	g.SetLimit(e.workers)

	for i, key := range keys {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			repo, err := e.resolver.Resolve(ctx, key)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				e.dropRepository(vuln.ID, key, err)
				return nil
			}

			slots[i] = &repo
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return vuln, err
	}

	ranked := make([]model.Repository, 0, len(slots))
	for _, repo := range slots {
		if repo != nil {
			ranked = append(ranked, *repo)
		}
	}
	model.SortByPopularity(ranked)

	e.metrics.RepositoriesResolved(len(ranked))
	vuln.RankedRepositories = ranked
	return vuln, nil
}

// EnrichAll enriches each record in order, stopping only on cancellation
func (e *Enricher) EnrichAll(ctx context.Context, vulns []model.Vulnerability) ([]model.Vulnerability, error) {
	enriched := make([]model.Vulnerability, 0, len(vulns))
	for _, vuln := range vulns {
		v, err := e.Enrich(ctx, vuln)
		if err != nil {
			return enriched, err
		}
		enriched = append(enriched, v)
	}
	return enriched, nil
}

func (e *Enricher) dropRepository(cve, key string, err error) {
	if transport.IsNotFound(err) {
		e.metrics.RepositoryDropped(metrics.ReasonNotFound)
		e.logger.Info("exploit repository no longer exists", zap.String("cve", cve), zap.String("key", key))
		return
	}

	e.metrics.RepositoryDropped(metrics.ReasonError)
	e.logger.Warn("dropping exploit repository", zap.String("cve", cve), zap.String("key", key), zap.Error(err))
}
