package cmd

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tamcore/exploitscout/internal/model"
)

const testCPE = "cpe:2.3:a:acme:widget:2.0:*:*:*:*:*:*:*"

func fakeNVD(t *testing.T) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/cpes/2.0":
			_, _ = w.Write([]byte(`{"products": [{"cpe": {"cpeName": "` + testCPE + `", "titles": [{"title": "Acme Widget 2.0", "lang": "en"}]}}]}`))
		case "/cves/2.0":
			assert.Equal(t, testCPE, r.URL.Query().Get("cpeName"))
			_, _ = w.Write([]byte(`{"vulnerabilities": [
			  {"cve": {"id": "CVE-2024-1000",
			    "descriptions": [{"lang": "en", "value": "Remote code execution in widget 2.0. Details follow."}],
			    "metrics": {"cvssMetricV31": [{"cvssData": {"baseScore": 9.8}}]},
			    "references": [
			      {"url": "https://github.com/acme/poc/blob/main/x.py", "tags": ["Exploit"]},
			      {"url": "https://github.com/acme/popular-poc", "tags": ["Exploit"]},
			      {"url": "https://github.com/acme/deleted", "tags": ["Exploit"]}
			    ]}},
			  {"cve": {"id": "CVE-2024-1001",
			    "descriptions": [{"lang": "en", "value": "Minor leak."}],
			    "metrics": {"cvssMetricV2": [{"cvssData": {"baseScore": 2.1}}]}}}
			]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(ts.Close)
	return ts
}

func fakeGitHub(t *testing.T) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/repos/acme/poc":
			_, _ = w.Write([]byte(`{"stargazers_count": 7, "forks": 2}`))
		case "/repos/acme/popular-poc":
			_, _ = w.Write([]byte(`{"stargazers_count": 700, "forks": 90}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"message": "Not Found"}`))
		}
	}))
	t.Cleanup(ts.Close)
	return ts
}

// run executes the root command in an empty working directory and returns
// stdout. Flag values persist between runs, so tests pass every flag they rely on.
func run(t *testing.T, args ...string) string {
	t.Helper()

	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", dir)

	old := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w

	rootCmd.SetArgs(args)
	execErr := rootCmd.Execute()

	_ = w.Close()
	os.Stdout = old
	out, err := io.ReadAll(r)
	require.NoError(t, err)

	require.NoError(t, execErr)
	return string(out)
}

func TestSearchCommand(t *testing.T) {
	nvdSrv := fakeNVD(t)

	out := run(t, "search", "widget", "--nvd-url", nvdSrv.URL, "--json=false")
	assert.Contains(t, out, "1. Acme Widget 2.0 ("+testCPE+")")
}

func TestCVEsCommandRanksExploits(t *testing.T) {
	nvdSrv, ghSrv := fakeNVD(t), fakeGitHub(t)
	metricsFile := filepath.Join(t.TempDir(), "scout.prom")

	out := run(t, "cves", testCPE,
		"--nvd-url", nvdSrv.URL,
		"--github-url", ghSrv.URL,
		"--min-severity", "5",
		"--exploits",
		"--json=false",
		"--metrics-file", metricsFile,
	)

	assert.Contains(t, out, "CVE-2024-1000")
	assert.Contains(t, out, "Remote code execution in widget 2.0.")
	assert.NotContains(t, out, "CVE-2024-1001")
	assert.Regexp(t, `(?s)repos/acme/popular-poc \(stars: 700, forks: 90\).*repos/acme/poc \(stars: 7, forks: 2\)`, out)
	assert.NotContains(t, out, "repos/acme/deleted")

	data, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `exploitscout_repositories_dropped_total{reason="not_found"} 1`)
}

func TestCVEsCommandJSON(t *testing.T) {
	nvdSrv := fakeNVD(t)

	out := run(t, "cves", testCPE, "--nvd-url", nvdSrv.URL, "--min-severity", "0", "--exploits=false", "--json", "--metrics-file", "")

	var vulns []model.Vulnerability
	require.NoError(t, json.Unmarshal([]byte(out), &vulns))
	require.Len(t, vulns, 2)
	assert.Equal(t, "CVE-2024-1000", vulns[0].ID)
	assert.Equal(t, 3, vulns[0].ExploitRepositories.Len())
	assert.Empty(t, vulns[0].RankedRepositories)
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		input    string
		maxLen   int
		expected string
	}{
		{"short", 10, "short"},
		{"exactly-10", 10, "exactly-10"},
		{"this is far too long", 10, "this is..."},
		{"ünïcödé-text", 8, "ünïcö..."},
	}

	for _, tt := range tests {
		if got := truncate(tt.input, tt.maxLen); got != tt.expected {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.input, tt.maxLen, got, tt.expected)
		}
	}
}
