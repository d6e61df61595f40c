package nvd

import (
	"errors"
	"fmt"
	"strings"
)

// errMalformedReference marks a reference URL that does not name a repository.
// It never leaves this package.
var errMalformedReference = errors.New("malformed repository reference")

// MissingDataError is returned when a CVE lacks a field the record requires
type MissingDataError struct {
	CVE   string
	Field string
}

func (e *MissingDataError) Error() string {
	return fmt.Sprintf("%s: missing %s", e.CVE, e.Field)
}

// UnsupportedSchemeError is returned when none of the supported CVSS schemes
// carries a score. Present lists the metric keys the CVE did have.
type UnsupportedSchemeError struct {
	CVE     string
	Present []string
}

func (e *UnsupportedSchemeError) Error() string {
	if len(e.Present) == 0 {
		return fmt.Sprintf("%s: no severity metrics", e.CVE)
	}
	return fmt.Sprintf("%s: no supported severity scheme (have %s)", e.CVE, strings.Join(e.Present, ", "))
}
