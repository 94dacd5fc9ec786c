package domain

import (
	"crypto/sha256"
	"encoding/hex"
)

// fingerprintLen is the number of hex characters kept from the digest.
// Twelve characters (48 bits) match the identifiers already published
// in existing feeds, so event links stay stable across deployments.
const fingerprintLen = 12

// Fingerprint derives the deterministic identifier of one logical event
// from its date, normalised venue and normalised title. Equal tuples
// always yield equal identifiers; the consuming page depends on that
// for stable links and bookmarks.
func Fingerprint(date, normalisedVenue, normalisedTitle string) string {
	sum := sha256.Sum256([]byte(date + "|" + normalisedVenue + "|" + normalisedTitle))
	return hex.EncodeToString(sum[:])[:fingerprintLen]
}
