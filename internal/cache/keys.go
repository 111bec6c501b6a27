package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"go-jobsearch-backend/internal/domain"
)

// Key namespace: jobsearch:{version}:{strategy}:{identity}:{digest}
const keyPrefix = "jobsearch:v1"

// Key derives the deterministic cache key for one (strategy, criteria,
// identity) triple. FilterCriteria is already canonical (sorted sets,
// trimmed strings), and Go struct JSON field order is fixed, so equal
// requests always hash to the same digest. The digest is truncated to keep
// keys bounded.
func Key(strategy string, criteria domain.FilterCriteria, identity string) string {
	if identity == "" {
		identity = domain.AnonymousIdentity
	}

	blob, err := json.Marshal(criteria)
	if err != nil {
		// Criteria is a plain value struct; this cannot fail in practice.
		blob = []byte(fmt.Sprintf("%+v", criteria))
	}
	sum := sha256.Sum256(blob)
	digest := hex.EncodeToString(sum[:])[:24]

	return fmt.Sprintf("%s:%s:%s:%s", keyPrefix, strategy, identity, digest)
}
