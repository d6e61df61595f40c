package nvd

import (
	"errors"
	"fmt"
	"sort"

	gocvss20 "github.com/pandatix/go-cvss/20"
	gocvss30 "github.com/pandatix/go-cvss/30"
	gocvss31 "github.com/pandatix/go-cvss/31"
	gocvss40 "github.com/pandatix/go-cvss/40"
)

// Metric keys used by the NVD 2.0 API
const (
	SchemeV40 = "cvssMetricV40"
	SchemeV31 = "cvssMetricV31"
	SchemeV30 = "cvssMetricV30"
	SchemeV2  = "cvssMetricV2"
)

// SupportedSchemes lists the recognised metric keys, newest first
var SupportedSchemes = []string{SchemeV40, SchemeV31, SchemeV30, SchemeV2}

// severity is the reconciled score of one CVE
type severity struct {
	Scheme string
	Score  float64
	Vector string
}

// reconcileSeverity picks the newest supported scheme that has an entry and
// takes the first entry's base score. A missing base score is recomputed from
// the vector string.
func reconcileSeverity(id string, metrics map[string][]CVSSMetric) (severity, error) {
	for _, scheme := range SupportedSchemes {
		entries := metrics[scheme]
		if len(entries) == 0 {
			continue
		}

		data := entries[0].CVSSData
		score, err := baseScore(scheme, data)
		if err != nil {
			return severity{}, &MissingDataError{CVE: id, Field: fmt.Sprintf("%s baseScore (%v)", scheme, err)}
		}
		if score < 0 || score > 10 {
			return severity{}, &MissingDataError{CVE: id, Field: fmt.Sprintf("%s baseScore in range 0-10 (got %.1f)", scheme, score)}
		}

		return severity{Scheme: scheme, Score: score, Vector: data.VectorString}, nil
	}

	present := make([]string, 0, len(metrics))
	for k := range metrics {
		present = append(present, k)
	}
	sort.Strings(present)

	return severity{}, &UnsupportedSchemeError{CVE: id, Present: present}
}

func baseScore(scheme string, data CVSSData) (float64, error) {
	if data.BaseScore != nil {
		return *data.BaseScore, nil
	}
	if data.VectorString == "" {
		return 0, errors.New("no score or vector")
	}
	return vectorScore(scheme, data.VectorString)
}

// vectorScore computes the base score of a CVSS vector for the given scheme
func vectorScore(scheme, vector string) (float64, error) {
	switch scheme {
	case SchemeV40:
		cvss, err := gocvss40.ParseVector(vector)
		if err != nil {
			return 0, err
		}
		return cvss.Score(), nil
	case SchemeV31:
		cvss, err := gocvss31.ParseVector(vector)
		if err != nil {
			return 0, err
		}
		return cvss.BaseScore(), nil
	case SchemeV30:
		cvss, err := gocvss30.ParseVector(vector)
		if err != nil {
			return 0, err
		}
		return cvss.BaseScore(), nil
	case SchemeV2:
		cvss, err := gocvss20.ParseVector(vector)
		if err != nil {
			return 0, err
		}
		return cvss.BaseScore(), nil
	default:
		return 0, fmt.Errorf("unsupported scheme %s", scheme)
	}
}
