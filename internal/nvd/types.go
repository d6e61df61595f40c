package nvd

// cveResponse is the body of GET cves/2.0
type cveResponse struct {
	ResultsPerPage  int       `json:"resultsPerPage"`
	TotalResults    int       `json:"totalResults"`
	Vulnerabilities []cveItem `json:"vulnerabilities"`
}

type cveItem struct {
	CVE CVE `json:"cve"`
}

// CVE is the raw vulnerability object as served by the NVD 2.0 API
type CVE struct {
	ID           string                  `json:"id"`
	VulnStatus   string                  `json:"vulnStatus,omitempty"`
	Descriptions []Description           `json:"descriptions"`
	Metrics      map[string][]CVSSMetric `json:"metrics"`
	References   []Reference             `json:"references"`
}

// Description is one language-tagged description text
type Description struct {
	Lang  string `json:"lang"`
	Value string `json:"value"`
}

// Reference is an external link attached to a CVE
type Reference struct {
	URL    string   `json:"url"`
	Source string   `json:"source,omitempty"`
	Tags   []string `json:"tags,omitempty"`
}

// CVSSMetric is one score entry under a metrics scheme key
type CVSSMetric struct {
	Source   string   `json:"source,omitempty"`
	Type     string   `json:"type,omitempty"`
	CVSSData CVSSData `json:"cvssData"`
}

// CVSSData holds the scored vector. BaseScore is nil when the field is absent.
type CVSSData struct {
	Version      string   `json:"version,omitempty"`
	VectorString string   `json:"vectorString,omitempty"`
	BaseScore    *float64 `json:"baseScore,omitempty"`
	BaseSeverity string   `json:"baseSeverity,omitempty"`
}

// cpeResponse is the body of GET cpes/2.0
type cpeResponse struct {
	TotalResults int          `json:"totalResults"`
	Products     []cpeProduct `json:"products"`
}

type cpeProduct struct {
	CPE struct {
		CPEName    string     `json:"cpeName"`
		Deprecated bool       `json:"deprecated"`
		Titles     []cpeTitle `json:"titles"`
	} `json:"cpe"`
}

type cpeTitle struct {
	Title string `json:"title"`
	Lang  string `json:"lang"`
}
