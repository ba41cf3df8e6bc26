// Package domain defines the result-fingerprint contract.
package domain

import "github.com/bwmarrin/snowflake"

// Service binds an exam result to its owner with a keyed fingerprint so a
// forged or altered certificate cannot verify without the server secret.
//
// The fingerprint deliberately covers only the (userID, score, isoDate)
// triple that defines a result, not the rendered certificate: layout can
// evolve without invalidating issued hashes. Rotating the secret invalidates
// every previously issued fingerprint.
type Service interface {
	// Fingerprint returns a deterministic 64-character lowercase hex hash.
	Fingerprint(userID snowflake.ID, score int, isoDate string) string

	// Verify recomputes the fingerprint and compares in constant time.
	Verify(userID snowflake.ID, score int, isoDate string, presentedHash string) bool
}
