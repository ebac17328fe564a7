// Package sequence allocates unique, gapless, monotonically increasing
// integers scoped to (tenant id, sequence name). These feed fiscal document
// numbering (NF-e/NFC-e), where a duplicated or skipped number is a legal
// violation, not a bug.
package sequence

import (
	"fmt"
	"time"
)

// Environment is the fiscal issuance mode. Homologation and production
// counters are always distinct sequences, even for the same tenant and
// series: the environment is folded into the sequence name so switching a
// tenant's fiscal environment starts a fresh, independently-numbered
// sequence instead of continuing the other environment's numbers.
type Environment string

const (
	EnvHomologacao Environment = "homologacao"
	EnvProducao    Environment = "producao"
)

// Valid reports whether e is a known environment
func (e Environment) Valid() bool {
	return e == EnvHomologacao || e == EnvProducao
}

// DocumentType is the fiscal document model a sequence numbers
type DocumentType string

const (
	DocNFe  DocumentType = "nfe"
	DocNFCe DocumentType = "nfce"
)

// Valid reports whether d is a known document type
func (d DocumentType) Valid() bool {
	return d == DocNFe || d == DocNFCe
}

// Key builds the sequence name for a fiscal document series,
// e.g. Key(DocNFCe, 1, EnvProducao) == "nfce-1-producao"
func Key(docType DocumentType, series int, env Environment) string {
	return fmt.Sprintf("%s-%d-%s", docType, series, env)
}

// Counter is one (tenant id, sequence name) counter row
type Counter struct {
	TenantID  int64     `json:"tenant_id"`
	Name      string    `json:"name"`
	Value     int64     `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}
