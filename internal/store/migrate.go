package store

import "github.com/hungduong/loveanniversary/internal/models"

// migrate upgrades a document persisted under an older schema version.
// Fields present in the old document are copied onto a freshly constructed
// default document, preferring old values, and a bare calendar-date
// startDate is normalized to a full timestamp. Documents already at the
// current version pass through (startDate normalization still applies in
// the load path).
func (s *Store) migrate(old *models.Document) *models.Document {
	if old.Version == models.SchemaVersion {
		return old
	}

	doc := s.defaultDocument()

	if old.Memories != nil {
		doc.Memories = old.Memories
	}
	if len(old.Photos) > 0 {
		doc.Photos = old.Photos
	}
	if old.LoveNotes != nil {
		doc.LoveNotes = old.LoveNotes
	}

	if old.CoupleInfo.Person1.Name != "" {
		doc.CoupleInfo.Person1 = old.CoupleInfo.Person1
	}
	if old.CoupleInfo.Person2.Name != "" {
		doc.CoupleInfo.Person2 = old.CoupleInfo.Person2
	}
	if old.CoupleInfo.StartDate != "" {
		doc.CoupleInfo.StartDate = NormalizeStartDate(old.CoupleInfo.StartDate)
	}
	if old.CoupleInfo.SpecialDates != nil {
		doc.CoupleInfo.SpecialDates = old.CoupleInfo.SpecialDates
	}

	if old.Settings.Theme != "" {
		doc.Settings = old.Settings
	}

	if !old.LastUpdated.IsZero() {
		doc.LastUpdated = old.LastUpdated
	}

	return doc
}
