package grades

import (
	"crypto/sha256"
	"fmt"
)

// RuleVersion identifies the set of formulas implemented by this package.
// Bump it whenever a formula or threshold changes.
const RuleVersion = "PT_DGES_V1"

// RuleVersionHash returns a short, stable fingerprint of RuleVersion that is
// stored next to persisted results.
func RuleVersionHash() string {
	hash := sha256.Sum256([]byte(RuleVersion))
	return fmt.Sprintf("%x", hash[:8])
}
