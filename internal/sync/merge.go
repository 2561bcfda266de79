package sync

import "github.com/hungduong/loveanniversary/internal/models"

// Merge resolves a local and a remote document by last-write-wins on the
// lastUpdated timestamp. The remote copy wins only when it is strictly
// newer; ties keep the local copy. When the remote wins its top-level
// fields overwrite the local ones wholesale, with absent remote
// collections falling back to the local values. The returned document is
// always a fresh copy, and the bool reports whether the remote won.
func Merge(local, remote *models.Document) (*models.Document, bool) {
	if remote == nil {
		return local.Clone(), false
	}
	if local == nil {
		return remote.Clone(), true
	}
	if !remote.LastUpdated.After(local.LastUpdated) {
		return local.Clone(), false
	}

	merged := local.Clone()
	r := remote.Clone()

	if r.Version != "" {
		merged.Version = r.Version
	}
	merged.LastUpdated = r.LastUpdated
	merged.CoupleInfo = r.CoupleInfo
	merged.Settings = r.Settings

	if r.Memories != nil {
		merged.Memories = r.Memories
	}
	if r.Photos != nil {
		merged.Photos = r.Photos
	}
	if r.LoveNotes != nil {
		merged.LoveNotes = r.LoveNotes
	}

	return merged, true
}
