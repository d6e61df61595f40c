// Package model holds the structured records produced by the pipeline.
package model

import "fmt"

// Product is a CPE entry returned by a keyword search
type Product struct {
	// Name is the CPE name used as the vulnerability query key
	Name  string `json:"cpeName"`
	Title string `json:"title"`
}

// String renders the product the way the search listing shows it
func (p Product) String() string {
	return fmt.Sprintf("%s (%s)", p.Title, p.Name)
}

// Vulnerability is one CVE with its reconciled severity and exploit references
type Vulnerability struct {
	ID string `json:"id"`

	// Severity is the base score of the single scheme selected for this CVE
	Severity float64 `json:"severity"`

	// Scheme is the metric key the severity was taken from (e.g. cvssMetricV31)
	Scheme string `json:"scheme"`
	Vector string `json:"vector,omitempty"`

	// Summary is the first sentence of the English description
	Summary string `json:"summary"`

	// ExploitRepositories are canonical keys of repositories tagged as exploit code
	ExploitRepositories KeySet `json:"exploit_repositories"`

	// RankedRepositories is empty until enrichment runs
	RankedRepositories []Repository `json:"ranked_repositories"`
}

// HasExploits reports whether any exploit repository was referenced
func (v Vulnerability) HasExploits() bool {
	return v.ExploitRepositories.Len() > 0
}
