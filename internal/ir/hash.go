package ir

import (
	"crypto/sha256"
	"encoding/hex"
)

// DomainModule is the domain prefix for module fingerprints. The version
// suffix enables future encoding migration.
const DomainModule = "shapecheck/module/v1"

// Fingerprint computes the content-addressed identity of a module:
// SHA256(domain + 0x00 + canonical bytes), hex encoded. The null separator
// prevents domain/data boundary ambiguity.
//
// The fingerprint is stable across runs for structurally identical modules
// and is recorded in the bytecode header and the run journal.
func Fingerprint(m *Module) string {
	h := sha256.New()
	h.Write([]byte(DomainModule))
	h.Write([]byte{0x00})
	h.Write(AppendCanonical(nil, m))
	return hex.EncodeToString(h.Sum(nil))
}
