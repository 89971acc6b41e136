package cache

import (
	"crypto/sha256"
	"encoding/hex"
)

// Key derives the cache key for a (voice, text) pair.
// The digest is taken over the literal bytes of "voice:text", so case and
// whitespace are significant and the same pair always maps to the same
// entry across restarts. Collisions between distinct pairs are treated as
// an accepted risk of the digest.
func Key(voice, text string) string {
	hash := sha256.Sum256([]byte(voice + ":" + text))
	return hex.EncodeToString(hash[:])
}
