package filter

import (
	"strings"

	"github.com/cognicore/clarifier/pkg/clarifier/ingest"
	"github.com/cognicore/clarifier/pkg/clarifier/query"
)

// AdmitQuery applies the final gate for a query candidate and returns its
// stripped form. Texts containing an item, equal to the bare query, or
// whose stripped form still contains the bare query are rejected.
func AdmitQuery(qc *query.Context, text string) (string, bool) {
	if qc.ContainsAnyItem(text) || text == qc.Bare() {
		return "", false
	}
	c := ingest.StripCandidate(text)
	if c == "" || strings.Contains(c, qc.Bare()) {
		return "", false
	}
	return c, true
}

// AdmitItem applies the final gate for an item candidate and returns its
// stripped form. Texts containing an item, or whose stripped form equals
// an item, are rejected.
func AdmitItem(qc *query.Context, text string) (string, bool) {
	if qc.ContainsAnyItem(text) {
		return "", false
	}
	c := ingest.StripCandidate(text)
	if c == "" || qc.IsItem(c) {
		return "", false
	}
	return c, true
}
