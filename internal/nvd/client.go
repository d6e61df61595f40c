// Package nvd queries the National Vulnerability Database and builds
// structured vulnerability records from its CVE and CPE APIs.
package nvd

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/tamcore/exploitscout/internal/logging"
	"github.com/tamcore/exploitscout/internal/metrics"
	"github.com/tamcore/exploitscout/internal/model"
)

// DefaultBaseURL is the NVD REST root the cves/ and cpes/ paths hang off
const DefaultBaseURL = "https://services.nvd.nist.gov/rest/json"

// Fetcher retrieves a JSON document relative to an API base URL
type Fetcher interface {
	Fetch(ctx context.Context, path string, v any) error
}

// Client is the vulnerability query service
type Client struct {
	fetcher Fetcher
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// NewClient creates a query service on top of fetcher. logger and m may be nil.
func NewClient(fetcher Fetcher, logger *zap.Logger, m *metrics.Metrics) *Client {
	return &Client{
		fetcher: fetcher,
		logger:  logging.OrNop(logger),
		metrics: m,
	}
}

// SearchProducts returns the CPE products matching keyword
func (c *Client) SearchProducts(ctx context.Context, keyword string) ([]model.Product, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, errors.New("search keyword is empty")
	}

	path := "cpes/2.0?" + url.Values{"keywordSearch": {keyword}}.Encode()

	var resp cpeResponse
	if err := c.fetcher.Fetch(ctx, path, &resp); err != nil {
		return nil, fmt.Errorf("failed to search products for %q: %w", keyword, err)
	}

	products := make([]model.Product, 0, len(resp.Products))
	for _, p := range resp.Products {
		products = append(products, model.Product{
			Name:  p.CPE.CPEName,
			Title: productTitle(p),
		})
	}

	c.logger.Debug("product search complete", zap.String("keyword", keyword), zap.Int("products", len(products)))
	return products, nil
}

func productTitle(p cpeProduct) string {
	for _, t := range p.CPE.Titles {
		if t.Lang == "en" {
			return t.Title
		}
	}
	if len(p.CPE.Titles) > 0 {
		return p.CPE.Titles[0].Title
	}
	return p.CPE.CPEName
}

// Query fetches the CVEs affecting cpeName and keeps those with severity of
// at least minSeverity, in upstream order. Records that cannot be built are
// logged and left out; a failed fetch is returned as is.
func (c *Client) Query(ctx context.Context, cpeName string, minSeverity float64) ([]model.Vulnerability, error) {
	cpeName = strings.TrimSpace(cpeName)
	if cpeName == "" {
		return nil, errors.New("CPE name is empty")
	}

	path := "cves/2.0?" + url.Values{"cpeName": {cpeName}}.Encode()

	var resp cveResponse
	if err := c.fetcher.Fetch(ctx, path, &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch vulnerabilities for %s: %w", cpeName, err)
	}

	vulns := make([]model.Vulnerability, 0, len(resp.Vulnerabilities))
	for _, item := range resp.Vulnerabilities {
		vuln, err := BuildRecord(item.CVE, c.logger)
		if err != nil {
			c.dropRecord(item.CVE.ID, err)
			continue
		}
		vulns = append(vulns, vuln)
	}

	filtered := FilterBySeverity(vulns, minSeverity)

	c.logger.Debug("vulnerability query complete",
		zap.String("cpe", cpeName),
		zap.Int("fetched", len(resp.Vulnerabilities)),
		zap.Int("built", len(vulns)),
		zap.Int("kept", len(filtered)),
		zap.Float64("min_severity", minSeverity),
	)

	return filtered, nil
}

func (c *Client) dropRecord(id string, err error) {
	reason := metrics.ReasonMissingData
	var schemeErr *UnsupportedSchemeError
	if errors.As(err, &schemeErr) {
		reason = metrics.ReasonUnsupportedScheme
	}

	c.metrics.RecordDropped(reason)
	c.logger.Warn("dropping vulnerability record",
		zap.String("cve", id),
		zap.String("reason", reason),
		zap.Error(err),
	)
}
