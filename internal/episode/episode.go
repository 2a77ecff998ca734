// Package episode defines the episode descriptor the core operates on. The
// descriptor itself is produced by an external queue collaborator (spec §6,
// "Media-library enumeration") and is immutable for the lifetime of a
// season run.
package episode

import (
	"os"

	"github.com/google/uuid"
)

// Episode identifies a single installment within a series/season.
type Episode struct {
	ID       uuid.UUID
	Series   string
	Season   int
	Name     string
	FilePath string
}

// Verify reports whether the episode's file exists on disk, matching the
// queue collaborator's verification step (spec §4.6 preconditions).
func Verify(ep Episode) bool {
	_, err := os.Stat(ep.FilePath)
	return err == nil
}

// VerifyAll filters episodes down to those whose backing file exists,
// preserving input order.
func VerifyAll(episodes []Episode) []Episode {
	verified := make([]Episode, 0, len(episodes))
	for _, ep := range episodes {
		if Verify(ep) {
			verified = append(verified, ep)
		}
	}
	return verified
}

// Comparable reports whether two episodes carry non-empty fingerprints and
// are therefore eligible for pairwise comparison (spec §3).
func Comparable(lhs, rhs []uint32) bool {
	return len(lhs) > 0 && len(rhs) > 0
}
