package tagtree

import (
	"encoding/hex"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// ttlTagPrefix namespaces TTL pseudo-tag keys. These keys are opaque and
// never user-constructed; the embedded nonce makes every storing frame mint
// its own.
const ttlTagPrefix = "tagtree:ttl:"

// newFingerprint returns a random 128-bit nonce as 32 hex characters.
// Fingerprints carry no ordering or meaning; equality is all that matters.
func newFingerprint() string {
	u := uuid.New()
	return hex.EncodeToString(u[:])
}

// ttlTagKey derives a fresh TTL pseudo-tag key for the given ttl.
func ttlTagKey(ttl time.Duration) string {
	secs := int64(ttl / time.Second)
	return ttlTagPrefix + strconv.FormatInt(secs, 10) + ":" + newFingerprint()
}
