package nvd

import "github.com/tamcore/exploitscout/internal/model"

// FilterBySeverity keeps records scoring at least threshold, in input order
func FilterBySeverity(vulns []model.Vulnerability, threshold float64) []model.Vulnerability {
	filtered := make([]model.Vulnerability, 0, len(vulns))

	for _, vuln := range vulns {
		if vuln.Severity >= threshold {
			filtered = append(filtered, vuln)
		}
	}

	return filtered
}
