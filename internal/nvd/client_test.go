package nvd

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/tamcore/exploitscout/internal/metrics"
	"github.com/tamcore/exploitscout/internal/transport"
)

const testCPE = "cpe:2.3:a:gwtproject:gwt:1.4:*:*:*:*:*:*:*"

const cveFixture = `{
  "resultsPerPage": 5,
  "totalResults": 5,
  "vulnerabilities": [
    {"cve": {
      "id": "CVE-2008-0001",
      "descriptions": [{"lang": "en", "value": "Unspecified vulnerability in GWT before 1.4.61 has unknown impact."}],
      "metrics": {"cvssMetricV2": [{"cvssData": {"version": "2.0", "vectorString": "AV:N/AC:L/Au:N/C:P/I:P/A:P", "baseScore": 7.5}}]},
      "references": [
        {"url": "https://github.com/acme/gwt-poc/blob/main/poc.html", "tags": ["Exploit"]},
        {"url": "https://github.com/acme/gwt-poc", "tags": ["Exploit", "Third Party Advisory"]}
      ]
    }},
    {"cve": {
      "id": "CVE-2008-0002",
      "descriptions": [{"lang": "en", "value": "Low impact issue. More text."}],
      "metrics": {"cvssMetricV31": [{"cvssData": {"baseScore": 3.1}}], "cvssMetricV2": [{"cvssData": {"baseScore": 5.0}}]},
      "references": []
    }},
    {"cve": {
      "id": "CVE-2008-0003",
      "descriptions": [{"lang": "en", "value": "Rejected entry."}],
      "metrics": {},
      "references": []
    }},
    {"cve": {
      "id": "CVE-2008-0004",
      "descriptions": [{"lang": "ja", "value": "説明"}],
      "metrics": {"cvssMetricV31": [{"cvssData": {"baseScore": 9.0}}]}
    }},
    {"cve": {
      "id": "CVE-2008-0005",
      "descriptions": [{"lang": "en", "value": "Exactly at the boundary."}],
      "metrics": {"cvssMetricV31": [{"cvssData": {"baseScore": 5.0}}]},
      "references": [{"url": "https://github.com/solo/exploit"}]
    }}
  ]
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *metrics.Metrics) {
	t.Helper()

	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	m := metrics.New()
	fetcher := transport.NewClient("nvd", ts.URL, 5*time.Second)
	fetcher.Metrics = m

	return NewClient(fetcher, zaptest.NewLogger(t), m), m
}

func TestClient_Query(t *testing.T) {
	client, m := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/cves/2.0", r.URL.Path)
		assert.Equal(t, testCPE, r.URL.Query().Get("cpeName"))
		_, _ = w.Write([]byte(cveFixture))
	})

	vulns, err := client.Query(context.Background(), testCPE, 0)
	require.NoError(t, err)

	ids := make([]string, len(vulns))
	for i, v := range vulns {
		ids[i] = v.ID
	}
	assert.Equal(t, []string{"CVE-2008-0001", "CVE-2008-0002", "CVE-2008-0005"}, ids)

	first := vulns[0]
	assert.Equal(t, 7.5, first.Severity)
	assert.Equal(t, SchemeV2, first.Scheme)
	assert.Equal(t, "Unspecified vulnerability in GWT before 1.4.61 has unknown impact.", first.Summary)
	assert.Equal(t, []string{"repos/acme/gwt-poc"}, first.ExploitRepositories.Sorted())

	second := vulns[1]
	assert.Equal(t, 3.1, second.Severity)
	assert.Equal(t, "Low impact issue.", second.Summary)
	assert.Equal(t, 0, second.ExploitRepositories.Len())

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RecordsDropped.WithLabelValues(metrics.ReasonUnsupportedScheme)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RecordsDropped.WithLabelValues(metrics.ReasonMissingData)))
}

func TestClient_QueryThresholdInclusive(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(cveFixture))
	})

	vulns, err := client.Query(context.Background(), testCPE, 5.0)
	require.NoError(t, err)

	ids := make([]string, len(vulns))
	for i, v := range vulns {
		ids[i] = v.ID
	}
	assert.Equal(t, []string{"CVE-2008-0001", "CVE-2008-0005"}, ids)
}

func TestClient_QueryNoResults(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(cveFixture))
	})

	vulns, err := client.Query(context.Background(), testCPE, 9.9)
	require.NoError(t, err)
	assert.Empty(t, vulns)
}

func TestClient_QueryPropagatesFetchError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("message", "Invalid cpeName")
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := client.Query(context.Background(), "cpe:bogus", 0)
	require.Error(t, err)
	assert.True(t, transport.IsNotFound(err))
	assert.Contains(t, err.Error(), "Invalid cpeName")
}

func TestClient_QueryRejectsEmptyCPE(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})

	_, err := client.Query(context.Background(), "  ", 0)
	assert.Error(t, err)
}

func TestClient_SearchProducts(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/cpes/2.0", r.URL.Path)
		assert.Equal(t, "google web toolkit", r.URL.Query().Get("keywordSearch"))
		_, _ = w.Write([]byte(`{
		  "totalResults": 3,
		  "products": [
		    {"cpe": {"cpeName": "cpe:2.3:a:google:gwt:1.4:*:*:*:*:*:*:*", "titles": [{"title": "Google GWT 1.4", "lang": "en"}]}},
		    {"cpe": {"cpeName": "cpe:2.3:a:google:gwt:1.5:*:*:*:*:*:*:*", "titles": [{"title": "GWT 1.5 日本語", "lang": "ja"}, {"title": "Google GWT 1.5", "lang": "en"}]}},
		    {"cpe": {"cpeName": "cpe:2.3:a:google:gwt:1.6:*:*:*:*:*:*:*", "titles": []}}
		  ]
		}`))
	})

	products, err := client.SearchProducts(context.Background(), " google web toolkit ")
	require.NoError(t, err)
	require.Len(t, products, 3)

	assert.Equal(t, "Google GWT 1.4 (cpe:2.3:a:google:gwt:1.4:*:*:*:*:*:*:*)", products[0].String())
	assert.Equal(t, "Google GWT 1.5", products[1].Title)
	assert.Equal(t, "cpe:2.3:a:google:gwt:1.6:*:*:*:*:*:*:*", products[2].Title)
}

func TestClient_SearchProductsErrors(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := client.SearchProducts(context.Background(), "")
	assert.EqualError(t, err, "search keyword is empty")

	_, err = client.SearchProducts(context.Background(), "gwt")
	require.Error(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, transport.StatusCode(err))
}
