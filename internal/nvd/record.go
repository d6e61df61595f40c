package nvd

import (
	"go.uber.org/zap"

	"github.com/tamcore/exploitscout/internal/model"
)

// BuildRecord turns one raw CVE into a Vulnerability. It fails with
// *UnsupportedSchemeError when no supported score is present and with
// *MissingDataError when the id, an English description or a usable base
// score is missing.
func BuildRecord(cve CVE, logger *zap.Logger) (model.Vulnerability, error) {
	if cve.ID == "" {
		return model.Vulnerability{}, &MissingDataError{CVE: "<unknown>", Field: "id"}
	}

	sev, err := reconcileSeverity(cve.ID, cve.Metrics)
	if err != nil {
		return model.Vulnerability{}, err
	}

	description, ok := englishDescription(cve.Descriptions)
	if !ok {
		return model.Vulnerability{}, &MissingDataError{CVE: cve.ID, Field: "english description"}
	}

	return model.Vulnerability{
		ID:                  cve.ID,
		Severity:            sev.Score,
		Scheme:              sev.Scheme,
		Vector:              sev.Vector,
		Summary:             Summarize(description),
		ExploitRepositories: ExtractExploitRepositories(cve.References, logger),
		RankedRepositories:  []model.Repository{},
	}, nil
}
